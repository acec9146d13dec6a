package builder

import (
	"log/slog"
	"maps"
	"slices"

	"braces.dev/errtrace"
	"github.com/benbjohnson/immutable"

	"github.com/ghettovoice/urlbuilder/internal/errorutil"
	"github.com/ghettovoice/urlbuilder/internal/util"
	"github.com/ghettovoice/urlbuilder/log"
	"github.com/ghettovoice/urlbuilder/uri"
	"github.com/ghettovoice/urlbuilder/uritemplate"
)

const maxLogText = 256

// TemplateOptions configure [ParseTemplate].
type TemplateOptions struct {
	// Tokenizer is used to turn the template into an ordinary URI and back.
	// If nil, the [uritemplate.DefaultTokenizer] is used.
	Tokenizer uritemplate.Tokenizer
	// Logger is the logger inherited by the builder.
	// If nil, the [log.Default] is used.
	Logger *slog.Logger
}

func (o *TemplateOptions) tokenizer() uritemplate.Tokenizer {
	if o == nil || o.Tokenizer == nil {
		return uritemplate.DefaultTokenizer()
	}
	return o.Tokenizer
}

func (o *TemplateOptions) log() *slog.Logger {
	if o == nil || o.Logger == nil {
		return log.Default()
	}
	return o.Logger
}

// ParseTemplate creates a new builder from the URI template.
// Supported expressions are "{name}", "{/name}", "{?name}" and "{&name}", each with one or more comma separated names.
// A template without expressions is parsed as an ordinary URI.
// Query pairs produced by "{?name}" and "{&name}" are omitted from the output until the name is bound.
func ParseTemplate(tmpl string, opts *TemplateOptions) (*Builder, error) {
	tk := opts.tokenizer()
	res, err := tk.Tokenize(tmpl)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}

	u, err := uri.Parse(res.Text)
	if err != nil {
		opts.log().Debug("failed to parse tokenized template",
			slog.String("template", util.Ellipsis(tmpl, maxLogText)),
			slog.String("text", util.Ellipsis(res.Text, maxLogText)),
			slog.Any("error", err),
		)
		return nil, errtrace.Wrap(errorutil.NewInvalidArgumentError(err))
	}

	b := FromURI(u)
	if opts != nil {
		b.logger = opts.Logger
	}
	if len(res.Tokens) == 0 {
		return b, nil
	}

	detok := func(c component) component {
		if s, ok := tk.Detokenize(c.text, res.Tokens); ok {
			c.text = s
		}
		return c
	}

	if s, ok := tk.Detokenize(b.scheme, res.Tokens); ok {
		b.scheme = s
	}
	b.userInfo = detok(b.userInfo)
	b.host = detok(b.host)
	b.opaque = detok(b.opaque)
	b.fragment = detok(b.fragment)
	if b.path != nil {
		path := immutable.NewListBuilder[component]()
		for it := b.path.Iterator(); !it.Done(); {
			_, seg := it.Next()
			path.Append(detok(seg))
		}
		b.path = path.List()
	}
	if b.query != nil {
		query := immutable.NewListBuilder[queryPair]()
		for it := b.query.Iterator(); !it.Done(); {
			_, p := it.Next()
			p.key, p.value = detok(p.key), detok(p.value)
			query.Append(p)
		}
		b.query = query.List()
	}
	if len(res.QueryNames) > 0 {
		b.pending, b.hasPending = immutable.NewSet[string](nil, res.QueryNames...), true
	}

	opts.log().Debug("template parsed",
		slog.String("template", util.Ellipsis(tmpl, maxLogText)),
		slog.Int("expressions", len(res.Tokens)),
		slog.Any("query_names", res.QueryNames),
		slog.Any("builder", log.CalcValue(func() any { return b.LogValue() })),
	)
	return b, nil
}

// MustParseTemplate is like [ParseTemplate] but panics on error.
func MustParseTemplate(tmpl string, opts *TemplateOptions) *Builder {
	return util.Must2(ParseTemplate(tmpl, opts))
}

// EnableTemplates returns a new builder with template substitution turned on or off.
// Templates are enabled by default. With templates disabled placeholders are rendered as literal text.
func (b *Builder) EnableTemplates(on bool) *Builder {
	b2 := b.clone()
	b2.templatesOff = !on
	return b2
}

// TemplatesEnabled reports whether template substitution is enabled.
func (b *Builder) TemplatesEnabled() bool { return b == nil || !b.templatesOff }

// ResolveTemplate returns a new builder with the value bound to the template name,
// the value is formatted like in [Builder.QueryParam].
// A nil value or a nil pointer unbinds the name, it then expands to an empty string,
// while a query pair of "{?name}" stays omitted.
func (b *Builder) ResolveTemplate(name string, value any) *Builder {
	b2 := b.clone()
	s, ok := formatValue(value)
	if !ok {
		b2.bindings = b2.bindings.Unbind(name)
		return b2
	}
	b2.bindings = b2.bindings.Bind(name, s)
	if b2.hasPending && b2.pending.Has(name) {
		b2.pending = b2.pending.Delete(name)
	}
	return b2
}

// ResolveTemplates applies [Builder.ResolveTemplate] to each name and value in sorted name order.
func (b *Builder) ResolveTemplates(values map[string]any) *Builder {
	b2 := b.clone()
	for _, name := range slices.Sorted(maps.Keys(values)) {
		b2 = b2.ResolveTemplate(name, values[name])
	}
	return b2
}

func (b *Builder) resolver() uritemplate.Resolver {
	return uritemplate.Resolver{Bindings: b.bindings, Enabled: !b.templatesOff}
}

// isPendingPair reports whether the pair came from an unbound "{?name}" expression.
func (b *Builder) isPendingPair(p queryPair) bool {
	if b.templatesOff || !b.hasPending || !p.hasValue {
		return false
	}
	key := p.key.text
	return b.pending.Has(key) && p.value.text == "{"+key+"}"
}
