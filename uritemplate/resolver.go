package uritemplate

import (
	"regexp"
	"strings"

	"github.com/ghettovoice/urlbuilder/internal/util"
)

// EscapeFunc escapes a piece of component text.
type EscapeFunc func(s string) string

var placeholderRe = regexp.MustCompile(`\{(` + varnameExpr + `)\}`)

// Expand replaces every "{name}" and "{a,b}" placeholder in s with bound values.
// Literal text around placeholders is passed to lit, bound values to val, nil means identity.
// Values of a name list are joined with "," skipping unbound names,
// an unbound name expands to an empty string.
func Expand(s string, b Bindings, lit, val EscapeFunc) string {
	if val == nil {
		val = identity
	}
	return expand(s, lit, func(names string) string {
		sb := util.GetStringBuilder()
		defer util.FreeStringBuilder(sb)
		var n int
		for name := range strings.SplitSeq(names, ",") {
			v, ok := b.Lookup(name)
			if !ok {
				continue
			}
			if n > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(val(v))
			n++
		}
		return sb.String()
	})
}

// Keep is like [Expand] but leaves placeholders untouched, only literal text is passed to lit.
func Keep(s string, lit EscapeFunc) string {
	return expand(s, lit, func(names string) string { return "{" + names + "}" })
}

func expand(s string, lit EscapeFunc, repl func(names string) string) string {
	if lit == nil {
		lit = identity
	}

	sb := util.GetStringBuilder()
	defer util.FreeStringBuilder(sb)

	var last int
	for _, m := range placeholderRe.FindAllStringSubmatchIndex(s, -1) {
		sb.WriteString(lit(s[last:m[0]]))
		sb.WriteString(repl(s[m[2]:m[3]]))
		last = m[1]
	}
	sb.WriteString(lit(s[last:]))
	return sb.String()
}

func identity(s string) string { return s }

// HasPlaceholders reports whether s contains at least one placeholder.
func HasPlaceholders(s string) bool { return placeholderRe.MatchString(s) }

// Resolver expands placeholders with bindings when enabled.
type Resolver struct {
	Bindings Bindings
	Enabled  bool
}

// Active reports whether the resolver changes the text at all:
// it is enabled and there is at least one known name.
func (r Resolver) Active() bool { return r.Enabled && r.Bindings.Len() > 0 }

// Resolve expands s if the resolver is active.
// An enabled resolver without bindings keeps placeholders as is,
// a disabled one treats the whole text as literal.
func (r Resolver) Resolve(s string, lit, val EscapeFunc) string {
	switch {
	case !r.Enabled:
		if lit == nil {
			return s
		}
		return lit(s)
	case r.Bindings.Len() == 0:
		return Keep(s, lit)
	default:
		return Expand(s, r.Bindings, lit, val)
	}
}
