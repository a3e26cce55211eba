package uri

import (
	stderrors "errors"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/kbukum/httpkit/errors"
)

var (
	errMissingHost = stderrors.New("missing host")
	errPortRange   = stderrors.New("port out of range")
)

var defaultPorts = map[string]int{
	"http":    80,
	"https":   443,
	"socks5":  1080,
	"socks5h": 1080,
}

// URL is an immutable URL value. Use Parse or ParseStrict to build one.
type URL struct {
	scheme   string
	host     string
	port     int
	user     string
	password string
	path     string
	query    string
	fragment string
}

// Parse parses raw permissively. A missing scheme is read as http and input
// that cannot be parsed yields a URL with empty fields instead of an error.
func Parse(raw string) *URL {
	u, err := parse(raw)
	if err != nil {
		return &URL{}
	}
	return u
}

// ParseStrict parses raw and fails with a PARSE_ERROR when the input is
// malformed or names no host.
func ParseStrict(raw string) (*URL, error) {
	u, err := parse(raw)
	if err != nil {
		return nil, errors.ParseFailure(raw, err)
	}
	if u.host == "" {
		return nil, errors.ParseFailure(raw, errMissingHost)
	}
	return u, nil
}

func parse(raw string) (*URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return &URL{}, nil
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	pu, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}

	u := &URL{
		scheme:   strings.ToLower(pu.Scheme),
		host:     pu.Hostname(),
		path:     pu.EscapedPath(),
		query:    pu.RawQuery,
		fragment: pu.Fragment,
	}
	if pu.User != nil {
		u.user = pu.User.Username()
		u.password, _ = pu.User.Password()
	}
	if p := pu.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		if port < 1 || port > 65535 {
			return nil, errPortRange
		}
		u.port = port
	} else {
		u.port = defaultPorts[u.scheme]
	}
	return u, nil
}

// Scheme returns the lower-cased scheme.
func (u *URL) Scheme() string { return u.scheme }

// Host returns the host name without port.
func (u *URL) Host() string { return u.host }

// Port returns the explicit port, or the scheme's default port, or 0.
func (u *URL) Port() int { return u.port }

// User returns the userinfo user name.
func (u *URL) User() string { return u.user }

// Password returns the userinfo password.
func (u *URL) Password() string { return u.password }

// Path returns the escaped path.
func (u *URL) Path() string { return u.path }

// Query returns the raw query string without the leading '?'.
func (u *URL) Query() string { return u.query }

// Fragment returns the fragment without the leading '#'.
func (u *URL) Fragment() string { return u.fragment }

// HasCredentials reports whether the URL carries a user name.
func (u *URL) HasCredentials() bool { return u.user != "" }

// IsZero reports whether parsing produced no usable components.
func (u *URL) IsZero() bool { return u == nil || (u.scheme == "" && u.host == "") }

// Hostname renders scheme://host[:port], omitting the port when it is the
// scheme's default.
func (u *URL) Hostname() string {
	if u.host == "" {
		return ""
	}
	return u.scheme + "://" + u.Authority()
}

// Authority renders host[:port], omitting the port when it is the scheme's
// default. IPv6 hosts are bracketed.
func (u *URL) Authority() string {
	if u.port == 0 || u.port == defaultPorts[u.scheme] {
		if strings.Contains(u.host, ":") {
			return "[" + u.host + "]"
		}
		return u.host
	}
	return u.Address()
}

// Address renders host:port suitable for dialing.
func (u *URL) Address() string {
	return net.JoinHostPort(u.host, strconv.Itoa(u.port))
}

// Resource renders path[?query]; an empty path becomes "/".
func (u *URL) Resource() string {
	r := u.path
	if r == "" {
		r = "/"
	}
	if u.query != "" {
		r += "?" + u.query
	}
	return r
}

// String renders the URL, credentials included.
func (u *URL) String() string {
	if u.IsZero() {
		return ""
	}
	var b strings.Builder
	b.WriteString(u.scheme)
	b.WriteString("://")
	if u.user != "" {
		b.WriteString(url.UserPassword(u.user, u.password).String())
		b.WriteByte('@')
	}
	b.WriteString(u.Authority())
	b.WriteString(u.Resource())
	if u.fragment != "" {
		b.WriteByte('#')
		b.WriteString(u.fragment)
	}
	return b.String()
}

// Redacted is String with the password replaced by "xxxxx".
func (u *URL) Redacted() string {
	if u.password == "" {
		return u.String()
	}
	c := *u
	c.password = "xxxxx"
	return c.String()
}

// WithScheme returns a copy of u using scheme. The port is kept as is.
func (u *URL) WithScheme(scheme string) *URL {
	c := *u
	c.scheme = scheme
	return &c
}

// Resolve resolves ref against u the way a browser follows a Location header.
func (u *URL) Resolve(ref string) *URL {
	base, err := url.Parse(u.String())
	if err != nil {
		return Parse(ref)
	}
	next, err := base.Parse(ref)
	if err != nil {
		return &URL{}
	}
	return Parse(next.String())
}
