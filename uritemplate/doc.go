// Package uritemplate implements a subset of RFC 6570 URI Templates used by the builder package.
//
// Supported expressions are simple string expansion "{name}", path segment
// expansion "{/name}", form-style query expansion "{?name}" and query
// continuation "{&name}". Every expression may list several comma-separated names.
//
// A template can not be parsed as an ordinary URI since braces are not allowed
// in most URI components. [StdTokenizer] solves this by replacing every expression
// with random letters that form ordinary URI text (the "tokens"). The rewritten text
// is parsed by a regular URI parser and tokens are put back as "{name}" placeholders
// into each decomposed component with [Tokenizer.Detokenize]:
//
//	https://example.com/users{/id}{?fields}
//	https://example.com/users/qxwlmbvz?fields=hfkqpzta   // tokenized
//	path: ["users", "{id}"], query: [fields={fields}]      // detokenized components
//
// [Expand] later substitutes bound values from [Bindings] into each component.
package uritemplate
