// Package uri provides a validated absolute URI value according to RFC 3986.
//
// # Parsing
//
// [Parse] splits the input into scheme, authority, path, query and fragment
// and checks every component against the RFC 3986 grammar:
//
//	u, err := uri.Parse("https://user@example.com:8443/a/b?q=1#top")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	u.Scheme()    // "https"
//	u.Segments()  // []string{"a", "b"}
//
// Components are kept exactly as they appear in the input, still pct-encoded,
// so rendering a parsed URI reproduces the input byte for byte.
// A URI without an authority whose path does not start with "/" is opaque,
// its scheme-specific part is returned by [URI.Opaque]:
//
//	u, _ := uri.Parse("mailto:john@example.com")
//	ssp, _ := u.Opaque() // "john@example.com"
//
// # Escaping
//
// [Escape] pct-encodes raw text for a particular URI [Component].
// Each component has its own set of chars allowed to appear verbatim,
// for example "@" is kept in a path segment but escaped in user info,
// "&" and "=" are escaped in query keys and values.
// The "%" char is always escaped, so "a%20b" is sent as "a%2520b".
// [EscapeEncoded] keeps well-formed triplets for text that is already pct-encoded, like "a%2Fb".
//
// # Errors
//
// Parse errors wrap [ErrEmptyInput] or [ErrMalformedInput]; both are grammar errors.
package uri
