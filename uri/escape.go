package uri

import "github.com/ghettovoice/urlbuilder/internal/grammar"

// Component identifies a part of a URI that has its own set of legal chars.
type Component uint8

const (
	// UserInfoComponent is the user info text before "@".
	UserInfoComponent Component = iota + 1
	// PathSegmentComponent is a single path segment between "/" separators.
	PathSegmentComponent
	// QueryComponent is a query parameter key or value.
	QueryComponent
	// GenericComponent is a fragment or a scheme-specific part.
	GenericComponent
)

func (c Component) String() string {
	switch c {
	case UserInfoComponent:
		return "user info"
	case PathSegmentComponent:
		return "path segment"
	case QueryComponent:
		return "query"
	case GenericComponent:
		return "generic"
	default:
		return "unknown"
	}
}

// ShouldEscape reports whether byte b must be pct-encoded inside the component.
// Unknown components escape everything except unreserved chars.
func (c Component) ShouldEscape(b byte) bool {
	switch c {
	case UserInfoComponent:
		return !grammar.IsUserInfoCharUnreserved(b)
	case PathSegmentComponent:
		return !grammar.IsPathSegmentCharUnreserved(b)
	case QueryComponent:
		return !grammar.IsQueryCharUnreserved(b)
	case GenericComponent:
		return !grammar.IsGenericCharUnreserved(b)
	default:
		return !grammar.IsCharUnreserved(b)
	}
}

// Escape pct-encodes s for placing into the component c.
// Multi-byte chars are encoded as the full sequence of their UTF-8 bytes, "%" becomes "%25".
func Escape(s string, c Component) string { return grammar.Escape(s, c.ShouldEscape) }

// EscapeEncoded is like [Escape] but keeps pct-encoded triplets already present in s, e.g. "a%2Fb".
func EscapeEncoded(s string, c Component) string { return grammar.EscapeEncoded(s, c.ShouldEscape) }

// Unescape decodes all well-formed pct-encoded triplets of s.
func Unescape(s string) string { return grammar.Unescape(s) }
