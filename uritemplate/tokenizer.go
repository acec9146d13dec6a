package uritemplate

//go:generate go tool errtrace -w .

import (
	"log/slog"
	"maps"
	"regexp"
	"slices"
	"strings"

	"braces.dev/errtrace"

	"github.com/ghettovoice/urlbuilder/internal/errorutil"
	"github.com/ghettovoice/urlbuilder/internal/grammar"
	"github.com/ghettovoice/urlbuilder/internal/util"
	"github.com/ghettovoice/urlbuilder/log"
)

// ErrTokenSource is returned when the token source can not produce a usable unique token.
const ErrTokenSource errorutil.Error = "token source exhausted"

// Operator is a template expression operator.
type Operator byte

const (
	OpSimple        Operator = 0
	OpPath          Operator = '/'
	OpQuery         Operator = '?'
	OpQueryContinue Operator = '&'
)

// IsQuery reports whether the operator expands to query pairs.
func (op Operator) IsQuery() bool { return op == OpQuery || op == OpQueryContinue }

func (op Operator) String() string {
	if op == OpSimple {
		return ""
	}
	return string(op)
}

// Var is the part of a template expression that was replaced by a single token.
type Var struct {
	Op    Operator
	Names []string
}

// Placeholder returns the text that represents the variable in a detokenized component, e.g. "{a,b}".
func (v Var) Placeholder() string { return "{" + strings.Join(v.Names, ",") + "}" }

// Tokenized is the result of template tokenization.
type Tokenized struct {
	// Text is the template with every expression rewritten to ordinary URI text.
	Text string
	// Tokens maps each generated token to the variable it stands for.
	Tokens map[string]Var
	// QueryNames lists unique names introduced by "?" and "&" expressions in order of appearance.
	QueryNames []string
}

// Tokenizer converts a URI template to an ordinary URI text and back.
type Tokenizer interface {
	// Tokenize rewrites all template expressions of tmpl with unique tokens.
	Tokenize(tmpl string) (*Tokenized, error)
	// Detokenize replaces tokens found in the component with placeholders.
	// It reports whether any token was found.
	Detokenize(component string, tokens map[string]Var) (string, bool)
}

// Options configure [StdTokenizer].
type Options struct {
	// TokenSource is the source of tokens.
	// If nil, the [DefaultTokenSource] is used.
	TokenSource TokenSource
	// TokenLength is the length of generated tokens.
	// If zero, the [DefaultTokenLength] is used.
	TokenLength int
	// MaxAttempts limits the number of generated tokens per expression.
	// If zero, the [DefaultMaxAttempts] is used.
	MaxAttempts int
	// Logger is the logger used by the tokenizer.
	// If nil, the [log.Default] is used.
	Logger *slog.Logger
}

const (
	DefaultTokenLength = 8
	DefaultMaxAttempts = 100
)

func (o *Options) tokenSource() TokenSource {
	if o == nil || o.TokenSource == nil {
		return DefaultTokenSource()
	}
	return o.TokenSource
}

func (o *Options) tokenLength() int {
	if o == nil || o.TokenLength <= 0 {
		return DefaultTokenLength
	}
	return o.TokenLength
}

func (o *Options) maxAttempts() int {
	if o == nil || o.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return o.MaxAttempts
}

func (o *Options) log() *slog.Logger {
	if o == nil || o.Logger == nil {
		return log.Default()
	}
	return o.Logger
}

// StdTokenizer is the default [Tokenizer] implementation based on random tokens.
// It is safe for concurrent use if the token source is.
type StdTokenizer struct {
	src    TokenSource
	tokLen int
	maxAtt int
	log    *slog.Logger
}

// NewStdTokenizer creates a new tokenizer. Options are optional, nil means defaults.
func NewStdTokenizer(opts *Options) *StdTokenizer {
	return &StdTokenizer{
		src:    opts.tokenSource(),
		tokLen: opts.tokenLength(),
		maxAtt: opts.maxAttempts(),
		log:    opts.log(),
	}
}

var defTokenizer = NewStdTokenizer(nil)

// Long templates are cut in debug logs.
const maxLogText = 256

// DefaultTokenizer returns a tokenizer with default options.
func DefaultTokenizer() *StdTokenizer { return defTokenizer }

const varnameExpr = `[A-Za-z0-9_.%]+(?:,[A-Za-z0-9_.%]+)*`

var exprRe = regexp.MustCompile(`\{([/?&]?)(` + varnameExpr + `)\}`)

// Tokenize rewrites every template expression with unique tokens:
//   - "{a}" becomes "tok", "{a,b}" becomes a single "tok" standing for both names;
//   - "{/a,b}" becomes "/tok1/tok2";
//   - "{?a,b}" and "{&a,b}" become "?a=tok1&b=tok2", the first separator is "?"
//     only if there is no "?" before the expression.
//
// Every token is absent from the template text, is not a substring of another token
// and occurs exactly once in the rewritten text.
// A template without expressions is returned as is.
func (t *StdTokenizer) Tokenize(tmpl string) (*Tokenized, error) {
	if tmpl == "" {
		return nil, errtrace.Wrap(grammar.ErrEmptyInput)
	}

	for range t.maxAtt {
		res, err := t.tokenize(tmpl)
		if err != nil {
			return nil, errtrace.Wrap(err)
		}
		if tok, n, ok := ambiguousToken(res); ok {
			// token glued with surrounding text produced another occurrence
			t.log.Debug("template token is ambiguous in rewritten text, retry",
				slog.String("template", util.Ellipsis(tmpl, maxLogText)),
				slog.String("token", tok),
				slog.Int("count", n),
			)
			continue
		}

		t.log.Debug("template tokenized",
			slog.String("template", util.Ellipsis(tmpl, maxLogText)),
			slog.String("text", util.Ellipsis(res.Text, maxLogText)),
			slog.Any("tokens", log.FmtValue(res.Tokens, false)),
		)
		return res, nil
	}
	return nil, errtrace.Wrap(errorutil.NewWrapperError(ErrTokenSource, "no unambiguous tokens for %q", tmpl))
}

func ambiguousToken(res *Tokenized) (string, int, bool) {
	for tok := range res.Tokens {
		if n := strings.Count(res.Text, tok); n != 1 {
			return tok, n, true
		}
	}
	return "", 0, false
}

func (t *StdTokenizer) tokenize(tmpl string) (*Tokenized, error) {
	res := &Tokenized{Tokens: make(map[string]Var)}
	sb := util.GetStringBuilder()
	defer util.FreeStringBuilder(sb)

	seenQuery := make(map[string]bool)
	var last int
	for _, m := range exprRe.FindAllStringSubmatchIndex(tmpl, -1) {
		sb.WriteString(tmpl[last:m[0]])
		last = m[1]

		op := OpSimple
		if m[3] > m[2] {
			op = Operator(tmpl[m[2]])
		}
		names := strings.Split(tmpl[m[4]:m[5]], ",")

		switch op {
		case OpSimple:
			tok, err := t.newToken(tmpl, res.Tokens)
			if err != nil {
				return nil, errtrace.Wrap(err)
			}
			res.Tokens[tok] = Var{Op: op, Names: names}
			sb.WriteString(tok)
		case OpPath:
			for _, name := range names {
				tok, err := t.newToken(tmpl, res.Tokens)
				if err != nil {
					return nil, errtrace.Wrap(err)
				}
				res.Tokens[tok] = Var{Op: op, Names: []string{name}}
				sb.WriteString("/")
				sb.WriteString(tok)
			}
		default:
			for i, name := range names {
				tok, err := t.newToken(tmpl, res.Tokens)
				if err != nil {
					return nil, errtrace.Wrap(err)
				}
				res.Tokens[tok] = Var{Op: op, Names: []string{name}}
				if i == 0 && !strings.Contains(sb.String(), "?") {
					sb.WriteString("?")
				} else {
					sb.WriteString("&")
				}
				sb.WriteString(name)
				sb.WriteString("=")
				sb.WriteString(tok)
				if !seenQuery[name] {
					seenQuery[name] = true
					res.QueryNames = append(res.QueryNames, name)
				}
			}
		}
	}
	sb.WriteString(tmpl[last:])
	res.Text = sb.String()
	return res, nil
}

func (t *StdTokenizer) newToken(tmpl string, prev map[string]Var) (string, error) {
	for range t.maxAtt {
		tok := t.src.Token(t.tokLen)
		if isUsableToken(tok, tmpl, prev) {
			return tok, nil
		}
		t.log.Debug("template token collision, regenerate",
			slog.String("template", util.Ellipsis(tmpl, maxLogText)),
			slog.String("token", tok),
		)
	}
	return "", errtrace.Wrap(errorutil.NewWrapperError(ErrTokenSource, "no unique token after %d attempts", t.maxAtt))
}

func isUsableToken(tok, tmpl string, prev map[string]Var) bool {
	if tok == "" || strings.Contains(tmpl, tok) {
		return false
	}
	for _, c := range []byte(tok) {
		if !grammar.IsCharUnreserved(c) {
			return false
		}
	}
	for p := range prev {
		if strings.Contains(p, tok) || strings.Contains(tok, p) {
			return false
		}
	}
	return true
}

// Detokenize replaces every token found in the component with the placeholder of its variable.
func (*StdTokenizer) Detokenize(component string, tokens map[string]Var) (string, bool) {
	var found bool
	for _, tok := range slices.Sorted(maps.Keys(tokens)) {
		if strings.Contains(component, tok) {
			component = strings.ReplaceAll(component, tok, tokens[tok].Placeholder())
			found = true
		}
	}
	return component, found
}
