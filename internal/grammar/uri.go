package grammar

import (
	"regexp"
	"strings"

	"braces.dev/errtrace"

	"github.com/ghettovoice/urlbuilder/internal/errorutil"
)

// URIParts holds raw (still pct-encoded) components of an absolute URI.
type URIParts struct {
	Scheme       string
	HasAuthority bool
	UserInfo     string
	HasUserInfo  bool
	Host         string
	Port         string
	HasPort      bool
	Path         string
	Query        string
	HasQuery     bool
	Fragment     string
	HasFragment  bool
}

// RFC 3986, Appendix B.
var uriRe = regexp.MustCompile(`^(?:([^:/?#]+):)?(//([^/?#]*))?([^?#]*)(\?([^#]*))?(#(.*))?$`)

// ParseURI splits an absolute URI from the given input s (string or []byte)
// and checks each component against RFC 3986 rules.
func ParseURI[T ~string | ~[]byte](s T) (*URIParts, error) {
	if len(s) == 0 {
		return nil, errtrace.Wrap(ErrEmptyInput)
	}

	m := uriRe.FindStringSubmatch(string(s))
	if m == nil {
		return nil, errtrace.Wrap(newMalformedInputErr("unexpected URI structure"))
	}

	p := &URIParts{
		Scheme:       m[1],
		HasAuthority: m[2] != "",
		Path:         m[4],
		Query:        m[6],
		HasQuery:     m[5] != "",
		Fragment:     m[8],
		HasFragment:  m[7] != "",
	}

	var errs []error
	if !IsScheme(p.Scheme) {
		errs = append(errs, errorutil.Errorf("invalid scheme %q", p.Scheme))
	}
	if p.HasAuthority {
		if err := p.splitAuthority(m[3]); err != nil {
			errs = append(errs, err)
		}
	}
	if !IsPath(p.Path) {
		errs = append(errs, errorutil.Errorf("invalid path %q", p.Path))
	} else if !p.HasAuthority && strings.HasPrefix(p.Path, "//") {
		errs = append(errs, errorutil.Errorf("path %q without authority starts with \"//\"", p.Path))
	}
	if p.HasQuery && !IsQuery(p.Query) {
		errs = append(errs, errorutil.Errorf("invalid query %q", p.Query))
	}
	if p.HasFragment && !IsQuery(p.Fragment) {
		errs = append(errs, errorutil.Errorf("invalid fragment %q", p.Fragment))
	}

	if len(errs) > 0 {
		return nil, errtrace.Wrap(newMalformedInputErr(errorutil.JoinPrefix("invalid URI:", errs...)))
	}
	return p, nil
}

func (p *URIParts) splitAuthority(auth string) error {
	if i := strings.LastIndexByte(auth, '@'); i >= 0 {
		p.UserInfo, p.HasUserInfo = auth[:i], true
		auth = auth[i+1:]
		if !IsUserInfo(p.UserInfo) {
			return errorutil.Errorf("invalid user info %q", p.UserInfo) //errtrace:skip
		}
	}

	host, port, hasPort, err := SplitHostPort(auth)
	if err != nil {
		return errtrace.Wrap(err)
	}
	p.Host, p.Port, p.HasPort = host, port, hasPort

	if host != "" && !IsHost(host) {
		return errorutil.Errorf("invalid host %q", host) //errtrace:skip
	}
	return nil
}

// SplitHostPort splits "host[:port]" into host and port, keeping IP literal brackets in host.
// An empty port after the colon is treated as absent.
func SplitHostPort(s string) (host, port string, hasPort bool, err error) {
	host = s
	if strings.HasPrefix(s, "[") {
		i := strings.IndexByte(s, ']')
		if i < 0 {
			return "", "", false, errorutil.Errorf("unclosed IP literal %q", s) //errtrace:skip
		}
		host, port = s[:i+1], s[i+1:]
		if port != "" && port[0] != ':' {
			return "", "", false, errorutil.Errorf("unexpected %q after IP literal", port) //errtrace:skip
		}
	} else if i := strings.LastIndexByte(s, ':'); i >= 0 {
		host, port = s[:i], s[i:]
	}

	if port == "" || port == ":" {
		return host, "", false, nil
	}
	port = port[1:]
	if !IsPort(port) {
		return "", "", false, errorutil.Errorf("invalid port %q", port) //errtrace:skip
	}
	return host, port, true, nil
}
