package types

import (
	"errors"
	"fmt"
	"net"
	"slices"
	"strconv"
	"strings"

	"braces.dev/errtrace"
	"github.com/miekg/dns"

	"github.com/ghettovoice/urlbuilder/internal/errorutil"
	"github.com/ghettovoice/urlbuilder/internal/grammar"
	"github.com/ghettovoice/urlbuilder/internal/util"
)

// Addr is a container for host and optional port of a URI authority.
type Addr struct {
	host    string
	ip      net.IP
	port    uint16
	hasPort bool
}

// Host returns an [Addr] containing the provided host and no port.
// IP literal brackets are stripped.
func Host(host string) Addr {
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	ip := net.ParseIP(host)
	if v := ip.To4(); v != nil {
		ip = v
	}
	return Addr{
		host: host,
		ip:   ip,
	}
}

// HostPort returns an [Addr] containing the provided host and port.
func HostPort(host string, port uint16) Addr {
	addr := Host(host)
	addr.port, addr.hasPort = port, true
	return addr
}

// ParseAddr parses a "host[:port]" string into an [Addr].
func ParseAddr[T ~string | ~[]byte](s T) (Addr, error) {
	if len(s) == 0 {
		return Addr{}, errtrace.Wrap(grammar.ErrEmptyInput)
	}

	host, port, hasPort, err := grammar.SplitHostPort(string(s))
	if err != nil {
		return Addr{}, errtrace.Wrap(errorutil.NewWrapperError(grammar.ErrMalformedInput, err))
	}
	if !grammar.IsHost(host) {
		return Addr{}, errtrace.Wrap(errorutil.NewWrapperError(grammar.ErrMalformedInput, "invalid host %q", host))
	}
	if !hasPort {
		return Host(host), nil
	}
	p, _ := strconv.ParseUint(port, 10, 16)
	return HostPort(host, uint16(p)), nil
}

// Host returns the hostname portion of the address without IP literal brackets.
func (addr Addr) Host() string { return addr.host }

// IP returns the parsed IP representation when the host is an IP literal, otherwise nil.
func (addr Addr) IP() net.IP { return addr.ip }

// Port returns the port, in case it is set, and bool flag indicating whether it is set.
func (addr Addr) Port() (uint16, bool) { return addr.port, addr.hasPort }

// IsIPv6 reports whether the host is an IPv6 address.
func (addr Addr) IsIPv6() bool { return addr.ip != nil && addr.ip.To4() == nil }

// HostString returns the host as it appears in a URI, bracketed for IPv6.
func (addr Addr) HostString() string {
	if strings.Contains(addr.host, ":") {
		return "[" + addr.host + "]"
	}
	return addr.host
}

// String formats the address as host[:port], adding brackets for IPv6 literals when required.
func (addr Addr) String() string {
	if !addr.hasPort {
		return addr.HostString()
	}
	return addr.HostString() + ":" + strconv.Itoa(int(addr.port))
}

// Format implements fmt.Formatter to support custom formatting verbs for Addr values.
func (addr Addr) Format(f fmt.State, verb rune) {
	switch verb {
	case 's':
		fmt.Fprint(f, addr.String())
		return
	case 'q':
		fmt.Fprint(f, strconv.Quote(addr.String()))
		return
	default:
		if !f.Flag('+') && !f.Flag('#') {
			fmt.Fprint(f, addr.String())
			return
		}

		type hideMethods Addr
		type Addr hideMethods
		fmt.Fprintf(f, fmt.FormatString(f, verb), Addr(addr))
		return
	}
}

// Clone returns a deep copy of the address including the underlying IP slice.
func (addr Addr) Clone() Addr {
	addr.ip = slices.Clone(addr.ip)
	return addr
}

// Equal reports whether the address equals the provided value, accepting Addr and *Addr.
// IP hosts are compared as addresses, domain names are compared case-insensitively
// in their fully qualified form, so "Example.COM." equals "example.com".
func (addr Addr) Equal(val any) bool {
	var other Addr
	switch v := val.(type) {
	case Addr:
		other = v
	case *Addr:
		if v == nil {
			return false
		}
		other = *v
	default:
		return false
	}

	var hostMatch bool
	switch {
	case addr.ip == nil && other.ip == nil:
		hostMatch = eqHostName(addr.host, other.host)
	case addr.ip != nil && other.ip != nil:
		hostMatch = addr.ip.Equal(other.ip)
	default:
		return false
	}

	return hostMatch && addr.port == other.port && addr.hasPort == other.hasPort
}

func eqHostName(h1, h2 string) bool {
	if _, ok := dns.IsDomainName(h1); ok {
		if _, ok := dns.IsDomainName(h2); ok {
			return util.EqFold(dns.Fqdn(h1), dns.Fqdn(h2))
		}
	}
	return util.EqFold(grammar.Unescape(h1), grammar.Unescape(h2))
}

// IsValid reports whether the address contains a syntactically valid host component.
func (addr Addr) IsValid() bool { return grammar.IsHost(addr.HostString()) }

// IsZero reports whether the address has zero host, IP and port information.
func (addr Addr) IsZero() bool { return addr.host == "" && addr.ip == nil && !addr.hasPort }

// MarshalText encodes the address into its textual representation.
func (addr Addr) MarshalText() (text []byte, err error) {
	return []byte(addr.String()), nil
}

// UnmarshalText parses a textual representation of an address into the receiver.
func (addr *Addr) UnmarshalText(text []byte) error {
	var err error
	*addr, err = ParseAddr(text)
	if errors.Is(err, grammar.ErrEmptyInput) {
		return nil
	}
	return errtrace.Wrap(err)
}
