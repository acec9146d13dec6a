package builder

//go:generate go tool errtrace -w .

import (
	"fmt"
	"iter"
	"log/slog"
	"reflect"
	"strings"

	"braces.dev/errtrace"
	"github.com/benbjohnson/immutable"

	"github.com/ghettovoice/urlbuilder/internal/errorutil"
	"github.com/ghettovoice/urlbuilder/internal/grammar"
	"github.com/ghettovoice/urlbuilder/internal/util"
	"github.com/ghettovoice/urlbuilder/log"
	"github.com/ghettovoice/urlbuilder/uritemplate"
)

// ErrInvalidURI is returned when the rendered builder is not a valid absolute URI.
const ErrInvalidURI errorutil.Error = "invalid URI"

// component is a piece of URI text.
// Encoded text comes from an already pct-encoded URI, raw text is escaped during rendering.
// Pre-encoded text is raw text whose pct-encoded triplets are kept as is.
type component struct {
	text       string
	encoded    bool
	preEncoded bool
}

func raw(s string) component { return component{text: s} }

func encoded(s string) component { return component{text: s, encoded: true} }

func preEncoded(s string) component { return component{text: s, preEncoded: true} }

// plain returns the decoded text.
func (c component) plain() string {
	if c.encoded || c.preEncoded {
		return grammar.Unescape(c.text)
	}
	return c.text
}

type queryPair struct {
	key, value component
	hasValue   bool
}

// Builder is an immutable absolute URI builder.
// Use [New], [Parse] or [ParseTemplate] to create one, the zero value renders to an empty string.
// Mutators may be called on a nil builder, it is treated as empty.
type Builder struct {
	scheme      string
	userInfo    component
	hasUserInfo bool
	host        component
	hasHost     bool
	port        uint16
	hasPort     bool
	opaque      component
	hasOpaque   bool
	path        *immutable.List[component]
	query       *immutable.List[queryPair]
	fragment    component
	hasFragment bool

	// authority decomposed from the URI like "file:///", rendered even if empty
	emptyAuthority bool
	// no path after the authority like "https://example.com"
	bareAuthority bool

	bindings     uritemplate.Bindings
	templatesOff bool
	pending      immutable.Set[string]
	hasPending   bool

	logger *slog.Logger
}

// New creates a new builder with the scheme and host.
// The scheme is validated unless it contains a template placeholder.
func New(scheme, host string) (*Builder, error) {
	if !uritemplate.HasPlaceholders(scheme) && !grammar.IsScheme(scheme) {
		return nil, errtrace.Wrap(errorutil.NewInvalidArgumentError("invalid scheme %q", scheme))
	}
	b := &Builder{scheme: scheme}
	if host != "" {
		b.host, b.hasHost = raw(host), true
	}
	return b, nil
}

// MustNew is like [New] but panics on error.
func MustNew(scheme, host string) *Builder { return util.Must2(New(scheme, host)) }

// NewWithPort creates a new builder with the scheme, host and port.
func NewWithPort(scheme, host string, port int) (*Builder, error) {
	if port < 0 || port > 65535 {
		return nil, errtrace.Wrap(errorutil.NewInvalidArgumentError("invalid port %d", port))
	}
	b, err := New(scheme, host)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	b.port, b.hasPort = uint16(port), true
	return b, nil
}

func (b *Builder) clone() *Builder {
	if b == nil {
		return &Builder{}
	}
	b2 := *b
	return &b2
}

func (b *Builder) log() *slog.Logger {
	if b == nil || b.logger == nil {
		return log.Default()
	}
	return b.logger
}

func (b *Builder) segments() *immutable.List[component] {
	if b == nil || b.path == nil {
		return immutable.NewList[component]()
	}
	return b.path
}

func (b *Builder) pairs() *immutable.List[queryPair] {
	if b == nil || b.query == nil {
		return immutable.NewList[queryPair]()
	}
	return b.query
}

// hierarchical drops the scheme-specific part, authority and path mutators switch back to the hierarchical form.
func (b *Builder) hierarchical() {
	b.opaque, b.hasOpaque = component{}, false
}

// Scheme returns a new builder with the scheme replaced.
func (b *Builder) Scheme(s string) *Builder {
	b2 := b.clone()
	b2.scheme = s
	return b2
}

// Hostname returns a new builder with the host replaced.
// An IPv6 address may be passed with or without brackets. An empty host removes it.
func (b *Builder) Hostname(h string) *Builder {
	b2 := b.clone()
	b2.hierarchical()
	b2.host, b2.hasHost = raw(h), h != ""
	return b2
}

// Port returns a new builder with the port replaced.
func (b *Builder) Port(p uint16) *Builder {
	b2 := b.clone()
	b2.hierarchical()
	b2.port, b2.hasPort = p, true
	return b2
}

// ClearPort returns a new builder without the port.
func (b *Builder) ClearPort() *Builder {
	b2 := b.clone()
	b2.port, b2.hasPort = 0, false
	return b2
}

// UserInfo returns a new builder with the user info replaced.
// The text is escaped as a whole, so a ":" between user and password is kept.
func (b *Builder) UserInfo(u string) *Builder {
	b2 := b.clone()
	b2.hierarchical()
	b2.userInfo, b2.hasUserInfo = raw(u), true
	return b2
}

// ClearUserInfo returns a new builder without the user info.
func (b *Builder) ClearUserInfo() *Builder {
	b2 := b.clone()
	b2.userInfo, b2.hasUserInfo = component{}, false
	return b2
}

// Fragment returns a new builder with the fragment replaced.
func (b *Builder) Fragment(f string) *Builder {
	b2 := b.clone()
	b2.fragment, b2.hasFragment = raw(f), true
	return b2
}

// ClearFragment returns a new builder without the fragment.
func (b *Builder) ClearFragment() *Builder {
	b2 := b.clone()
	b2.fragment, b2.hasFragment = component{}, false
	return b2
}

// Path returns a new builder with path segments appended.
// The input is split on "/" and empty pieces are dropped.
// If the input starts with "/", the existing path is discarded first.
// An empty input is a no-op.
func (b *Builder) Path(s string) *Builder {
	if s == "" {
		return b.clone()
	}
	b2 := b.clone()
	b2.hierarchical()
	b2.bareAuthority = false
	path := b2.segments()
	if s[0] == '/' {
		path = immutable.NewList[component]()
	}
	for seg := range strings.SplitSeq(s, "/") {
		if seg != "" {
			path = path.Append(raw(seg))
		}
	}
	b2.path = path
	return b2
}

// RawPath returns a new builder with one path segment appended as is, without splitting on "/".
// A leading "/" still discards the existing path. Pct-encoded triplets like "%2F" are preserved.
func (b *Builder) RawPath(s string) *Builder {
	if s == "" {
		return b.clone()
	}
	b2 := b.clone()
	b2.hierarchical()
	b2.bareAuthority = false
	path := b2.segments()
	if s[0] == '/' {
		path = immutable.NewList[component]()
		s = s[1:]
	}
	if s != "" {
		path = path.Append(preEncoded(s))
	}
	b2.path = path
	return b2
}

// PathSegments applies [Builder.Path] to each segment from left to right.
func (b *Builder) PathSegments(segs ...string) *Builder {
	b2 := b.clone()
	for _, seg := range segs {
		b2 = b2.Path(seg)
	}
	return b2
}

// ClearPath returns a new builder with an empty path.
func (b *Builder) ClearPath() *Builder {
	b2 := b.clone()
	b2.path = nil
	b2.bareAuthority = false
	return b2
}

// formatValue formats v with [fmt.Sprint], pointers without String or Error methods are dereferenced.
// It reports false for nil and nil pointers.
func formatValue(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer {
		return fmt.Sprint(v), true
	}
	if rv.IsNil() {
		return "", false
	}
	switch v.(type) {
	case fmt.Stringer, error:
		return fmt.Sprint(v), true
	}
	return fmt.Sprint(rv.Elem().Interface()), true
}

// QueryParam returns a new builder with the query pair "key=value" appended,
// the value is formatted with [fmt.Sprint] and pointers are dereferenced.
// Pairs with the same key are kept in order.
// A nil value, including a nil pointer like (*string)(nil), removes all pairs with the key.
func (b *Builder) QueryParam(key string, value any) *Builder {
	b2 := b.clone()
	s, ok := formatValue(value)
	if !ok {
		b2.query = b2.removePairs(key)
		return b2
	}
	b2.query = b2.pairs().Append(queryPair{key: raw(key), value: raw(s), hasValue: true})
	return b2
}

func (b *Builder) removePairs(key string) *immutable.List[queryPair] {
	pairs := b.pairs()
	filtered := immutable.NewListBuilder[queryPair]()
	for it := pairs.Iterator(); !it.Done(); {
		_, p := it.Next()
		if p.key.plain() != key {
			filtered.Append(p)
		}
	}
	if filtered.Len() == pairs.Len() {
		return pairs
	}
	return filtered.List()
}

// QueryParams applies [Builder.QueryParam] with the key to each value in order.
func (b *Builder) QueryParams(key string, values ...any) *Builder {
	b2 := b.clone()
	for _, v := range values {
		b2 = b2.QueryParam(key, v)
	}
	return b2
}

// QueryFlag returns a new builder with a valueless query pair appended, rendered as the bare key.
func (b *Builder) QueryFlag(key string) *Builder {
	b2 := b.clone()
	b2.query = b2.pairs().Append(queryPair{key: raw(key)})
	return b2
}

// QueryPairs applies [Builder.QueryParam] to each pair of the sequence.
// Compose with [Builder.ClearQuery] to replace the whole query.
func (b *Builder) QueryPairs(pairs iter.Seq2[string, any]) *Builder {
	b2 := b.clone()
	for k, v := range pairs {
		b2 = b2.QueryParam(k, v)
	}
	return b2
}

// ClearQuery returns a new builder without query pairs.
func (b *Builder) ClearQuery() *Builder {
	b2 := b.clone()
	b2.query = nil
	return b2
}

// SchemeSpecificPart returns a new builder in the opaque form "scheme:ssp", like "mailto:user@example.com".
// The authority and path are removed, query and fragment are kept.
func (b *Builder) SchemeSpecificPart(s string) *Builder {
	b2 := b.clone()
	b2.opaque, b2.hasOpaque = raw(s), true
	b2.userInfo, b2.hasUserInfo = component{}, false
	b2.host, b2.hasHost = component{}, false
	b2.port, b2.hasPort = 0, false
	b2.path = nil
	b2.emptyAuthority, b2.bareAuthority = false, false
	return b2
}

// ClearSchemeSpecificPart returns a new builder in the hierarchical form.
func (b *Builder) ClearSchemeSpecificPart() *Builder {
	b2 := b.clone()
	b2.hierarchical()
	return b2
}

// WithLogger returns a new builder that logs to the logger.
// If nil, the [log.Default] is used.
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b2 := b.clone()
	b2.logger = l
	return b2
}

func listItems[T any](l *immutable.List[T]) []T {
	items := make([]T, 0, l.Len())
	for it := l.Iterator(); !it.Done(); {
		_, v := it.Next()
		items = append(items, v)
	}
	return items
}
