package uri

//go:generate go tool errtrace -w .

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"braces.dev/errtrace"

	"github.com/ghettovoice/urlbuilder/internal/errorutil"
	"github.com/ghettovoice/urlbuilder/internal/grammar"
	"github.com/ghettovoice/urlbuilder/internal/ioutil"
	"github.com/ghettovoice/urlbuilder/internal/types"
	"github.com/ghettovoice/urlbuilder/internal/util"
)

// Addr represents a network address consisting of a host and optional port.
type Addr = types.Addr

// RenderOptions contains options for rendering.
type RenderOptions = types.RenderOptions

const (
	ErrEmptyInput     = grammar.ErrEmptyInput
	ErrMalformedInput = grammar.ErrMalformedInput
)

// QueryPair is a single "key[=value]" element of a query, still pct-encoded.
type QueryPair struct {
	Key      string
	Value    string
	HasValue bool
}

// URI is a syntactically valid absolute URI.
// The zero value is not valid, use [Parse] to obtain one.
type URI struct {
	parts grammar.URIParts
	url   *url.URL
}

// Parse parses an absolute URI from the given input s (string or []byte).
func Parse[T ~string | ~[]byte](s T) (*URI, error) {
	parts, err := grammar.ParseURI(s)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	u, err := url.Parse(string(s))
	if err != nil {
		return nil, errtrace.Wrap(errorutil.NewWrapperError(grammar.ErrMalformedInput, err))
	}
	return &URI{parts: *parts, url: u}, nil
}

// MustParse is like [Parse] but panics on error.
func MustParse[T ~string | ~[]byte](s T) *URI { return util.Must2(Parse(s)) }

// Scheme returns the URI scheme as it appears in the input.
func (u *URI) Scheme() string {
	if u == nil {
		return ""
	}
	return u.parts.Scheme
}

// HasAuthority reports whether the URI has an authority component, possibly empty as in "file:///".
func (u *URI) HasAuthority() bool { return u != nil && u.parts.HasAuthority }

// User returns the pct-encoded user info and a flag whether it is present.
func (u *URI) User() (string, bool) {
	if u == nil {
		return "", false
	}
	return u.parts.UserInfo, u.parts.HasUserInfo
}

// Host returns the host without IP literal brackets.
func (u *URI) Host() string { return u.Addr().Host() }

// RawHost returns the host exactly as it appears in the URI, IP literals keep their brackets.
func (u *URI) RawHost() string {
	if u == nil {
		return ""
	}
	return u.parts.Host
}

// Port returns the port and a flag whether it is present.
func (u *URI) Port() (uint16, bool) { return u.Addr().Port() }

// Addr returns the host and port of the authority.
func (u *URI) Addr() Addr {
	if u == nil || !u.parts.HasAuthority {
		return Addr{}
	}
	if !u.parts.HasPort {
		return types.Host(u.parts.Host)
	}
	p, _ := strconv.ParseUint(u.parts.Port, 10, 16)
	return types.HostPort(u.parts.Host, uint16(p))
}

// Path returns the pct-encoded path.
func (u *URI) Path() string {
	if u == nil {
		return ""
	}
	return u.parts.Path
}

// IsOpaque reports whether the URI is not hierarchical,
// i.e. it has no authority and the path does not start with "/".
func (u *URI) IsOpaque() bool {
	return u != nil && !u.parts.HasAuthority && u.parts.Path != "" && u.parts.Path[0] != '/'
}

// Opaque returns the scheme-specific part of an opaque URI, see [URI.IsOpaque].
func (u *URI) Opaque() (string, bool) {
	if !u.IsOpaque() {
		return "", false
	}
	return u.parts.Path, true
}

// Segments returns pct-encoded path segments of a hierarchical URI.
// The leading "/" is not represented, so "/a/b/" gives ["a", "b", ""] and "/" gives [""].
// Empty and opaque paths give nil.
func (u *URI) Segments() []string {
	if u == nil || u.parts.Path == "" || u.IsOpaque() {
		return nil
	}
	return strings.Split(strings.TrimPrefix(u.parts.Path, "/"), "/")
}

// Query returns the pct-encoded query and a flag whether it is present.
func (u *URI) Query() (string, bool) {
	if u == nil {
		return "", false
	}
	return u.parts.Query, u.parts.HasQuery
}

// QueryPairs splits the query into pct-encoded pairs, preserving order and duplicates.
func (u *URI) QueryPairs() []QueryPair {
	if u == nil || !u.parts.HasQuery {
		return nil
	}
	elems := strings.Split(u.parts.Query, "&")
	pairs := make([]QueryPair, len(elems))
	for i, el := range elems {
		k, v, ok := strings.Cut(el, "=")
		pairs[i] = QueryPair{Key: k, Value: v, HasValue: ok}
	}
	return pairs
}

// Fragment returns the pct-encoded fragment and a flag whether it is present.
func (u *URI) Fragment() (string, bool) {
	if u == nil {
		return "", false
	}
	return u.parts.Fragment, u.parts.HasFragment
}

// URL returns a copy of the URI as [net/url.URL].
func (u *URI) URL() *url.URL {
	if u == nil || u.url == nil {
		return nil
	}
	u2 := *u.url
	if u.url.User != nil {
		u2.User = cloneUserinfo(u.url.User)
	}
	return &u2
}

func cloneUserinfo(ui *url.Userinfo) *url.Userinfo {
	if pwd, ok := ui.Password(); ok {
		return url.UserPassword(ui.Username(), pwd)
	}
	return url.User(ui.Username())
}

// Clone returns a deep copy of the URI.
func (u *URI) Clone() *URI {
	if u == nil {
		return nil
	}
	return &URI{parts: u.parts, url: u.URL()}
}

// RenderTo writes the URI to the provided writer.
// Components are written exactly as they were parsed.
func (u *URI) RenderTo(w io.Writer, _ *RenderOptions) (num int, err error) {
	if u == nil {
		return 0, nil
	}

	p := &u.parts
	cw := ioutil.GetCountingWriter(w)
	defer ioutil.FreeCountingWriter(cw)
	cw.Fprint(p.Scheme, ":")
	if p.HasAuthority {
		cw.Fprint("//")
		if p.HasUserInfo {
			cw.Fprint(p.UserInfo, "@")
		}
		cw.Fprint(p.Host)
		if p.HasPort {
			cw.Fprint(":", p.Port)
		}
	}
	cw.Fprint(p.Path)
	if p.HasQuery {
		cw.Fprint("?", p.Query)
	}
	if p.HasFragment {
		cw.Fprint("#", p.Fragment)
	}
	return errtrace.Wrap2(cw.Result())
}

// Render returns the string representation of the URI.
func (u *URI) Render(opts *RenderOptions) string {
	if u == nil {
		return ""
	}
	sb := util.GetStringBuilder()
	defer util.FreeStringBuilder(sb)
	u.RenderTo(sb, opts) //nolint:errcheck
	return sb.String()
}

// String returns the string representation of the URI.
func (u *URI) String() string { return u.Render(nil) }

// Format implements fmt.Formatter for custom formatting of the URI.
func (u *URI) Format(f fmt.State, verb rune) {
	switch verb {
	case 's', 'v':
		if verb == 'v' && (f.Flag('+') || f.Flag('#')) {
			type hideMethods URI
			type URI hideMethods
			fmt.Fprintf(f, fmt.FormatString(f, verb), (*URI)(u))
			return
		}
		u.RenderTo(f, nil) //nolint:errcheck
		return
	case 'q':
		fmt.Fprint(f, strconv.Quote(u.String()))
		return
	default:
		fmt.Fprintf(f, "%%!%c(*uri.URI=%s)", verb, u.String())
		return
	}
}

// LogValue implements [slog.LogValuer], the password part of the user info is masked.
func (u *URI) LogValue() slog.Value {
	if u == nil {
		return slog.StringValue("<nil>")
	}
	if uu := u.URL(); uu != nil {
		return slog.StringValue(uu.Redacted())
	}
	return slog.StringValue(u.String())
}

// Equal compares this URI with another for equality.
// Scheme and host are compared case-insensitively, other components byte for byte.
func (u *URI) Equal(val any) bool {
	var other *URI
	switch v := val.(type) {
	case URI:
		other = &v
	case *URI:
		other = v
	default:
		return false
	}

	if u == other {
		return true
	} else if u == nil || other == nil {
		return false
	}

	p1, p2 := &u.parts, &other.parts
	return util.EqFold(p1.Scheme, p2.Scheme) &&
		p1.HasAuthority == p2.HasAuthority &&
		p1.HasUserInfo == p2.HasUserInfo && p1.UserInfo == p2.UserInfo &&
		u.Addr().Equal(other.Addr()) &&
		p1.Path == p2.Path &&
		p1.HasQuery == p2.HasQuery && p1.Query == p2.Query &&
		p1.HasFragment == p2.HasFragment && p1.Fragment == p2.Fragment
}

// IsValid checks whether the URI is syntactically valid.
func (u *URI) IsValid() bool {
	if u == nil {
		return false
	}
	_, err := grammar.ParseURI(u.String())
	return err == nil
}

// MarshalText implements [encoding.TextMarshaler].
func (u *URI) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (u *URI) UnmarshalText(text []byte) error {
	u1, err := Parse(text)
	if err != nil {
		*u = URI{}
		return errtrace.Wrap(err)
	}
	*u = *u1
	return nil
}
