package builder

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"braces.dev/errtrace"
	"golang.org/x/net/idna"
	"golang.org/x/text/unicode/norm"

	"github.com/ghettovoice/urlbuilder/internal/errorutil"
	"github.com/ghettovoice/urlbuilder/internal/grammar"
	"github.com/ghettovoice/urlbuilder/internal/ioutil"
	"github.com/ghettovoice/urlbuilder/internal/types"
	"github.com/ghettovoice/urlbuilder/internal/util"
	"github.com/ghettovoice/urlbuilder/uri"
	"github.com/ghettovoice/urlbuilder/uritemplate"
)

// RenderOptions contains options for rendering.
type RenderOptions = types.RenderOptions

// Decomposed text is re-emitted as is, only bytes illegal anywhere in the component are escaped.
func lenientEscape(c uri.Component) func(b byte) bool {
	switch c {
	case uri.UserInfoComponent:
		return func(b byte) bool { return !grammar.IsUserInfoChar(b) }
	case uri.PathSegmentComponent:
		return func(b byte) bool { return !grammar.IsPChar(b) }
	default:
		return func(b byte) bool { return !grammar.IsQueryChar(b) }
	}
}

func shouldEscapeHostChar(c byte) bool {
	return !grammar.IsCharUnreserved(c) && !grammar.IsSubDelim(c) && c != ':' && c != '[' && c != ']'
}

type renderer struct {
	b    *Builder
	opts *RenderOptions
	res  uritemplate.Resolver
}

func (r *renderer) norm(s string) string {
	if r.opts.UseNFC() {
		return norm.NFC.String(s)
	}
	return s
}

func (r *renderer) text(c component, kind uri.Component) string {
	lit := func(s string) string {
		switch {
		case c.encoded:
			return grammar.EscapeEncoded(s, lenientEscape(kind))
		case c.preEncoded:
			return uri.EscapeEncoded(r.norm(s), kind)
		default:
			return uri.Escape(r.norm(s), kind)
		}
	}
	val := func(s string) string { return uri.Escape(r.norm(s), kind) }
	return r.res.Resolve(c.text, lit, val)
}

func (r *renderer) scheme() string {
	return r.res.Resolve(r.b.scheme, nil, nil)
}

func (r *renderer) host() string {
	escHost := grammar.Escape[string]
	if r.b.host.encoded {
		escHost = grammar.EscapeEncoded[string]
	}
	lit, val := r.norm, r.norm
	if !r.opts.UseIDNA() {
		lit = func(s string) string { return escHost(r.norm(s), shouldEscapeHostChar) }
		val = func(s string) string { return grammar.Escape(r.norm(s), shouldEscapeHostChar) }
	}
	h := r.res.Resolve(r.b.host.text, lit, val)
	if r.opts.UseIDNA() && !strings.ContainsAny(h, ":[") {
		hu := h
		if r.b.host.encoded {
			hu = grammar.Unescape(h)
		}
		if a, err := idna.Lookup.ToASCII(hu); err == nil {
			h = a
		} else {
			r.b.log().Debug("failed to convert host to ASCII",
				slog.String("host", h),
				slog.Any("error", err),
			)
			h = escHost(h, shouldEscapeHostChar)
		}
	}
	if strings.Contains(h, ":") && !strings.HasPrefix(h, "[") {
		h = "[" + h + "]"
	}
	return h
}

func (b *Builder) hasAuthority() bool {
	return b.emptyAuthority || b.hasHost || b.hasUserInfo || b.hasPort
}

// RenderTo writes the builder to the writer without validation.
// Placeholders are substituted with bound values and every component is pct-encoded.
func (b *Builder) RenderTo(w io.Writer, opts *RenderOptions) (num int, err error) {
	if b == nil {
		return 0, nil
	}

	r := &renderer{b: b, opts: opts, res: b.resolver()}
	cw := ioutil.GetCountingWriter(w)
	defer ioutil.FreeCountingWriter(cw)
	if b.scheme != "" {
		cw.Fprint(r.scheme(), ":")
	}
	if b.hasOpaque {
		cw.Fprint(r.text(b.opaque, uri.GenericComponent))
	} else {
		cw.Call(r.renderHierarchy)
	}
	cw.Call(r.renderQuery)
	if b.hasFragment {
		cw.Fprint("#", r.text(b.fragment, uri.GenericComponent))
	}
	return errtrace.Wrap2(cw.Result())
}

func (r *renderer) renderHierarchy(w io.Writer) (num int, err error) {
	b := r.b
	cw := ioutil.GetCountingWriter(w)
	defer ioutil.FreeCountingWriter(cw)
	auth := b.hasAuthority()
	if auth {
		cw.Fprint("//")
		if b.hasUserInfo {
			cw.Fprint(r.text(b.userInfo, uri.UserInfoComponent), "@")
		}
		if b.hasHost {
			cw.Fprint(r.host())
		}
		if b.hasPort {
			cw.Fprintf(":%d", b.port)
		}
	}
	path := b.segments()
	if path.Len() == 0 {
		if auth && !b.bareAuthority {
			cw.Fprint("/")
		}
		return errtrace.Wrap2(cw.Result())
	}
	for it := path.Iterator(); !it.Done(); {
		_, seg := it.Next()
		cw.Fprint("/", r.text(seg, uri.PathSegmentComponent))
	}
	return errtrace.Wrap2(cw.Result())
}

func (r *renderer) renderQuery(w io.Writer) (num int, err error) {
	b := r.b
	query := b.pairs()
	if query.Len() == 0 {
		return 0, nil
	}

	cw := ioutil.GetCountingWriter(w)
	defer ioutil.FreeCountingWriter(cw)
	var n int
	for it := query.Iterator(); !it.Done(); {
		_, p := it.Next()
		if b.isPendingPair(p) {
			continue
		}
		if n == 0 {
			cw.Fprint("?")
		} else {
			cw.Fprint("&")
		}
		cw.Fprint(r.text(p.key, uri.QueryComponent))
		if p.hasValue {
			cw.Fprint("=", r.text(p.value, uri.QueryComponent))
		}
		n++
	}
	return errtrace.Wrap2(cw.Result())
}

// Render returns the builder text without validation.
func (b *Builder) Render(opts *RenderOptions) string {
	if b == nil {
		return ""
	}
	sb := util.GetStringBuilder()
	defer util.FreeStringBuilder(sb)
	b.RenderTo(sb, opts) //nolint:errcheck
	return sb.String()
}

// String returns the builder text without validation.
func (b *Builder) String() string { return b.Render(nil) }

// ToURI renders the builder with default options and parses the result.
// It fails with [ErrInvalidURI] if the result is not a valid absolute URI.
func (b *Builder) ToURI() (*uri.URI, error) { return errtrace.Wrap2(b.ToURIOptions(nil)) }

// ToURIOptions is like [Builder.ToURI] but renders with the options.
func (b *Builder) ToURIOptions(opts *RenderOptions) (*uri.URI, error) {
	s := b.Render(opts)
	u, err := uri.Parse(s)
	if err != nil {
		b.log().Debug("failed to build URI",
			slog.String("uri", s),
			slog.Any("error", err),
		)
		return nil, errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidURI, err))
	}
	return u, nil
}

// URL is like [Builder.ToURI] but returns the [net/url.URL].
func (b *Builder) URL() (*url.URL, error) {
	u, err := b.ToURI()
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	return u.URL(), nil
}

// MarshalText implements [encoding.TextMarshaler].
// The builder must render to a valid absolute URI.
func (b *Builder) MarshalText() ([]byte, error) {
	u, err := b.ToURI()
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	return []byte(u.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (b *Builder) UnmarshalText(text []byte) error {
	b2, err := Parse(text)
	if err != nil {
		*b = Builder{}
		return errtrace.Wrap(err)
	}
	*b = *b2
	return nil
}

// IsValid reports whether the builder renders to a valid absolute URI.
func (b *Builder) IsValid() bool {
	if b == nil {
		return false
	}
	u, err := uri.Parse(b.String())
	return err == nil && types.IsValid(u)
}

// Equal reports whether both builders render to the same text.
// A [uri.URI] value is compared with the validated result of the builder.
func (b *Builder) Equal(val any) bool {
	var other *Builder
	switch v := val.(type) {
	case Builder:
		other = &v
	case *Builder:
		other = v
	case uri.URI, *uri.URI:
		if b == nil {
			return false
		}
		u, err := b.ToURI()
		return err == nil && types.IsEqual(u, v)
	default:
		return false
	}

	if b == other {
		return true
	} else if b == nil || other == nil {
		return false
	}
	return b.String() == other.String()
}

// Format implements fmt.Formatter for custom formatting of the builder.
func (b *Builder) Format(f fmt.State, verb rune) {
	switch verb {
	case 's', 'v':
		if verb == 'v' && (f.Flag('+') || f.Flag('#')) {
			type hideMethods Builder
			type Builder hideMethods
			fmt.Fprintf(f, fmt.FormatString(f, verb), (*Builder)(b))
			return
		}
		b.RenderTo(f, nil) //nolint:errcheck
		return
	case 'q':
		fmt.Fprint(f, strconv.Quote(b.String()))
		return
	default:
		fmt.Fprintf(f, "%%!%c(*builder.Builder=%s)", verb, b.String())
		return
	}
}

// LogValue implements [slog.LogValuer], the user info password is masked.
func (b *Builder) LogValue() slog.Value {
	if b == nil {
		return slog.StringValue("<nil>")
	}
	if u, err := uri.Parse(b.String()); err == nil {
		return u.LogValue()
	}
	return slog.StringValue(b.redacted().String())
}

func (b *Builder) redacted() *Builder {
	if !b.hasUserInfo {
		return b
	}
	user, _, ok := strings.Cut(b.userInfo.text, ":")
	if !ok {
		return b
	}
	b2 := b.clone()
	b2.userInfo.text = user + ":xxxxx"
	return b2
}
