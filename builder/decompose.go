package builder

import (
	"net/url"

	"braces.dev/errtrace"
	"github.com/benbjohnson/immutable"

	"github.com/ghettovoice/urlbuilder/internal/errorutil"
	"github.com/ghettovoice/urlbuilder/internal/util"
	"github.com/ghettovoice/urlbuilder/uri"
)

// Parse creates a new builder from an absolute URI given as a string or a byte slice.
func Parse[T ~string | ~[]byte](s T) (*Builder, error) {
	u, err := uri.Parse(s)
	if err != nil {
		return nil, errtrace.Wrap(errorutil.NewInvalidArgumentError(err))
	}
	return FromURI(u), nil
}

// MustParse is like [Parse] but panics on error.
func MustParse[T ~string | ~[]byte](s T) *Builder { return util.Must2(Parse(s)) }

// FromURI creates a new builder from the URI components.
// Components keep their pct-encoding, so rendering the builder without changes reproduces the URI.
func FromURI(u *uri.URI) *Builder {
	b := &Builder{}
	if u == nil {
		return b
	}

	b.scheme = u.Scheme()
	if ssp, ok := u.Opaque(); ok {
		b.opaque, b.hasOpaque = encoded(ssp), true
	} else {
		if u.HasAuthority() {
			b.emptyAuthority = true
			b.bareAuthority = u.Path() == ""
			if ui, ok := u.User(); ok {
				b.userInfo, b.hasUserInfo = encoded(ui), true
			}
			if h := u.RawHost(); h != "" {
				b.host, b.hasHost = encoded(h), true
			}
			b.port, b.hasPort = u.Port()
		}
		if segs := u.Segments(); len(segs) > 0 {
			path := immutable.NewListBuilder[component]()
			for _, seg := range segs {
				path.Append(encoded(seg))
			}
			b.path = path.List()
		}
	}

	if pairs := u.QueryPairs(); len(pairs) > 0 {
		query := immutable.NewListBuilder[queryPair]()
		for _, p := range pairs {
			query.Append(queryPair{key: encoded(p.Key), value: encoded(p.Value), hasValue: p.HasValue})
		}
		b.query = query.List()
	}
	if f, ok := u.Fragment(); ok {
		b.fragment, b.hasFragment = encoded(f), true
	}
	return b
}

// FromURL creates a new builder from the [net/url.URL].
// The URL must be absolute.
func FromURL(u *url.URL) (*Builder, error) {
	if u == nil {
		return nil, errtrace.Wrap(errorutil.NewInvalidArgumentError("nil URL"))
	}
	return errtrace.Wrap2(Parse(u.String()))
}
