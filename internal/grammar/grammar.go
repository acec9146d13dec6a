// Package grammar implements RFC 3986 character classes, percent-encoding and URI syntax checks.
package grammar

//go:generate go tool errtrace -w .

import (
	"net"
	"strings"

	"github.com/ghettovoice/urlbuilder/internal/errorutil"
)

type Error string

func (e Error) Error() string { return string(e) }

func (Error) Grammar() bool { return true }

const (
	ErrEmptyInput     Error = "empty input"
	ErrMalformedInput Error = "malformed input"
)

func newMalformedInputErr(args ...any) error {
	return errorutil.NewWrapperError(ErrMalformedInput, args...) //errtrace:skip
}

// IsScheme checks scheme rule: ALPHA *( ALPHA / DIGIT / "+" / "-" / "." ).
func IsScheme[T ~string | ~[]byte](s T) bool {
	if len(s) == 0 || !isAlpha(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isAlpha(s[i]) && !isDigit(s[i]) && s[i] != '+' && s[i] != '-' && s[i] != '.' {
			return false
		}
	}
	return true
}

// IsPort checks that s is a non-empty decimal number that fits into uint16.
func IsPort[T ~string | ~[]byte](s T) bool {
	if len(s) == 0 || len(s) > 5 {
		return false
	}
	var n int
	for i := range len(s) {
		if !isDigit(s[i]) {
			return false
		}
		n = n*10 + int(s[i]-'0')
	}
	return n <= 0xFFFF
}

// IsHost checks host rule: IP-literal / IPv4address / reg-name.
// An empty host is not a valid host, although it is allowed in an authority component.
func IsHost[T ~string | ~[]byte](s T) bool {
	if len(s) == 0 {
		return false
	}
	if s[0] == '[' {
		return IsIPLiteral(s)
	}
	return IsRegName(s)
}

// IsIPLiteral checks IP-literal rule: "[" ( IPv6address / IPv6addrz / IPvFuture ) "]".
func IsIPLiteral[T ~string | ~[]byte](s T) bool {
	if len(s) < 3 || s[0] != '[' || s[len(s)-1] != ']' {
		return false
	}
	ip := string(s[1 : len(s)-1])
	if ip[0] == 'v' || ip[0] == 'V' {
		return isIPvFuture(ip)
	}
	if i := strings.Index(ip, "%25"); i >= 0 {
		if zone := ip[i+3:]; zone == "" || !isValidChars(zone, IsCharUnreserved) {
			return false
		}
		ip = ip[:i]
	}
	return IsIPv6(ip)
}

// IsIPv6 reports whether s is a textual IPv6 address without brackets.
func IsIPv6[T ~string | ~[]byte](s T) bool {
	return strings.Contains(string(s), ":") && net.ParseIP(string(s)) != nil
}

func isIPvFuture(s string) bool {
	// "v" 1*HEXDIG "." 1*( unreserved / sub-delims / ":" )
	ver, addr, ok := strings.Cut(s[1:], ".")
	if !ok || ver == "" || addr == "" {
		return false
	}
	for i := range len(ver) {
		if !ishex(ver[i]) {
			return false
		}
	}
	return isValidChars(addr, IsUserInfoChar)
}

// IsRegName checks reg-name rule: *( unreserved / pct-encoded / sub-delims ).
// IPv4 addresses are matched by this rule as well.
func IsRegName[T ~string | ~[]byte](s T) bool {
	return isValidChars(s, func(c byte) bool { return IsCharUnreserved(c) || IsSubDelim(c) })
}

// IsUserInfo checks userinfo rule: *( unreserved / pct-encoded / sub-delims / ":" ).
func IsUserInfo[T ~string | ~[]byte](s T) bool { return isValidChars(s, IsUserInfoChar) }

// IsPath checks that s consists of segments of pchar and "/" separators.
func IsPath[T ~string | ~[]byte](s T) bool {
	return isValidChars(s, func(c byte) bool { return c == '/' || IsPChar(c) })
}

// IsQuery checks query rule: *( pchar / "/" / "?" ). The fragment rule is the same.
func IsQuery[T ~string | ~[]byte](s T) bool { return isValidChars(s, IsQueryChar) }

// isValidChars reports whether every byte of s is accepted by isChar
// or is a part of a well-formed pct-encoded triplet.
func isValidChars[T ~string | ~[]byte](s T, isChar func(c byte) bool) bool {
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '%':
			if i+2 >= len(s) || !ishex(s[i+1]) || !ishex(s[i+2]) {
				return false
			}
			i += 2
		case !isChar(s[i]):
			return false
		}
	}
	return true
}
