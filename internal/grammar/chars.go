package grammar

func isAlpha(c byte) bool { return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' }

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

// IsCharUnreserved checks unreserved rule: ALPHA / DIGIT / "-" / "." / "_" / "~".
func IsCharUnreserved(c byte) bool {
	return isAlpha(c) || isDigit(c) || c == '-' || c == '.' || c == '_' || c == '~'
}

var subDelims = map[byte]bool{
	'!':  true,
	'$':  true,
	'&':  true,
	'\'': true,
	'(':  true,
	')':  true,
	'*':  true,
	'+':  true,
	',':  true,
	';':  true,
	'=':  true,
}

// IsSubDelim checks sub-delims rule.
func IsSubDelim(c byte) bool { return subDelims[c] }

// IsUserInfoChar checks the chars allowed in userinfo: unreserved / sub-delims / ":".
func IsUserInfoChar(c byte) bool { return IsCharUnreserved(c) || IsSubDelim(c) || c == ':' }

// IsPChar checks pchar rule without pct-encoded: unreserved / sub-delims / ":" / "@".
func IsPChar(c byte) bool { return IsUserInfoChar(c) || c == '@' }

// IsQueryChar checks the chars allowed in query and fragment: pchar / "/" / "?".
func IsQueryChar(c byte) bool { return IsPChar(c) || c == '/' || c == '?' }

// IsUserInfoCharUnreserved reports whether c may appear verbatim inside user info text.
// "@" is escaped since it terminates the user info.
func IsUserInfoCharUnreserved(c byte) bool { return IsUserInfoChar(c) }

var pathSegmentReserved = map[byte]bool{
	'&': true,
	'=': true,
}

// IsPathSegmentCharUnreserved reports whether c may appear verbatim inside a single path segment.
// "/" is escaped to keep the segment boundary, "&" and "=" are escaped as well.
func IsPathSegmentCharUnreserved(c byte) bool { return IsPChar(c) && !pathSegmentReserved[c] }

var queryComponentReserved = map[byte]bool{
	'&': true,
	'=': true,
}

// IsQueryCharUnreserved reports whether c may appear verbatim inside a query parameter key or value.
// "&" and "=" are escaped since they delimit query pairs.
func IsQueryCharUnreserved(c byte) bool { return IsQueryChar(c) && !queryComponentReserved[c] }

// IsGenericCharUnreserved reports whether c may appear verbatim inside a fragment or a scheme-specific part.
func IsGenericCharUnreserved(c byte) bool { return IsQueryChar(c) }
