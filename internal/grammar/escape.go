package grammar

import "bytes"

// Unescape converts each 3-byte encoded substring of the form "% HEXDIG HEXDIG" into the hex-decoded byte.
// Malformed sequences are left as is.
func Unescape[T ~string | ~[]byte](s T) T {
	if len(s) == 0 {
		return s
	}

	var b bytes.Buffer
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if isPctTriplet(s, i) {
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
		} else {
			b.WriteByte(s[i])
		}
	}
	return T(b.Bytes())
}

// Escape replaces each byte matched by shouldEscape with its "% HEXDIG HEXDIG" form using uppercase hex digits.
// Bytes are taken from the UTF-8 encoding of s, so a multi-byte rune is escaped as a full sequence of triplets.
// The "%" char is always escaped.
// If shouldEscape is nil, everything except unreserved chars is escaped.
func Escape[T ~string | ~[]byte](s T, shouldEscape func(c byte) bool) T {
	return escape(s, shouldEscape, false)
}

// EscapeEncoded is like [Escape] but keeps well-formed pct-encoded triplets already present in s.
// Only a "%" that does not start a triplet is escaped.
func EscapeEncoded[T ~string | ~[]byte](s T, shouldEscape func(c byte) bool) T {
	return escape(s, shouldEscape, true)
}

func escape[T ~string | ~[]byte](s T, shouldEscape func(c byte) bool, keepTriplets bool) T {
	if len(s) == 0 {
		return s
	}

	if shouldEscape == nil {
		shouldEscape = func(c byte) bool { return !IsCharUnreserved(c) }
	}

	var b bytes.Buffer
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch {
		case keepTriplets && isPctTriplet(s, i):
			b.WriteByte(s[i])
			b.WriteByte(s[i+1])
			b.WriteByte(s[i+2])
			i += 2
		case s[i] == '%' || shouldEscape(s[i]):
			b.WriteByte('%')
			b.WriteByte(upperhex[s[i]>>4])
			b.WriteByte(upperhex[s[i]&15])
		default:
			b.WriteByte(s[i])
		}
	}
	return T(b.Bytes())
}

const upperhex = "0123456789ABCDEF"

func isPctTriplet[T ~string | ~[]byte](s T, i int) bool {
	return s[i] == '%' && i+2 < len(s) && ishex(s[i+1]) && ishex(s[i+2])
}

func ishex(c byte) bool {
	switch {
	case '0' <= c && c <= '9':
		return true
	case 'a' <= c && c <= 'f':
		return true
	case 'A' <= c && c <= 'F':
		return true
	}
	return false
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}
