package uritemplate

import "github.com/ghettovoice/urlbuilder/internal/util"

//go:generate go tool mockgen -destination ../internal/testutil/templatemock/token_source.go -package templatemock . TokenSource

// TokenSource generates candidate tokens for template expressions.
// Tokens should consist of chars allowed in any URI component, lowercase letters are recommended.
// Uniqueness is verified by the tokenizer, so the source may return colliding values.
type TokenSource interface {
	Token(n int) string
}

// TokenSourceFunc is an adapter to allow the use of ordinary functions as [TokenSource].
type TokenSourceFunc func(n int) string

// Token calls fn(n).
func (fn TokenSourceFunc) Token(n int) string { return fn(n) }

var defTokenSrc TokenSource = TokenSourceFunc(util.RandAlphaLC)

// DefaultTokenSource returns a token source that generates random lowercase ASCII letters.
// It is safe for concurrent use.
func DefaultTokenSource() TokenSource { return defTokenSrc }
