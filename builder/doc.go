// Package builder provides an immutable absolute URI builder.
//
// A [Builder] is created from a scheme and host ([New]), from an existing URI ([Parse], [FromURI], [FromURL])
// or from a URI template ([ParseTemplate]). Every mutator returns a new builder and never changes the receiver,
// so builders can be shared between goroutines and used as prototypes:
//
//	api := builder.MustNew("https", "example.com").Path("/api/v1")
//	u, err := api.PathSegments("users", id).QueryParam("fields", "name").ToURI()
//
// Each component is percent-encoded with its own set of legal chars.
// Text decomposed from an existing URI is kept as is, raw text passed to mutators is escaped.
//
// Templates support "{name}", "{/name}", "{?name}" and "{&name}" expressions.
// Bound values are substituted during rendering, query pairs of unbound "?" and "&" expressions are omitted:
//
//	b := builder.MustParseTemplate("https://example.com/users/{id}{?fields}", nil)
//	b.ResolveTemplate("id", 42).String() // https://example.com/users/42
package builder
