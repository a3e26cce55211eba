package uri

import (
	"strconv"
	"strings"
)

// SchemeMapper substitutes a scheme. Unknown schemes must be returned as is.
type SchemeMapper interface {
	Apply(scheme string) string
}

// WithSchemeMap returns a copy of u whose scheme went through m. The receiver
// is left untouched.
func (u *URL) WithSchemeMap(m SchemeMapper) *URL {
	if m == nil {
		c := *u
		return &c
	}
	return u.WithScheme(m.Apply(u.scheme))
}

// Format renders u according to pattern:
//
//	s scheme    u user      a password  h host      o port
//	p path      q query     f fragment  H hostname  R resource
//
// A backslash escapes the next character; anything else is copied literally,
// so "s://h:o" renders "tcp://proxy:3128". An IPv6 host renders bracketed
// so the output parses back.
func (u *URL) Format(pattern string) string {
	var b strings.Builder
	escaped := false
	for _, r := range pattern {
		if escaped {
			b.WriteRune(r)
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		switch r {
		case 's':
			b.WriteString(u.scheme)
		case 'u':
			b.WriteString(u.user)
		case 'a':
			b.WriteString(u.password)
		case 'h':
			if strings.Contains(u.host, ":") {
				b.WriteString("[" + u.host + "]")
			} else {
				b.WriteString(u.host)
			}
		case 'o':
			if u.port != 0 {
				b.WriteString(strconv.Itoa(u.port))
			}
		case 'p':
			b.WriteString(u.path)
		case 'q':
			b.WriteString(u.query)
		case 'f':
			b.WriteString(u.fragment)
		case 'H':
			b.WriteString(u.Hostname())
		case 'R':
			b.WriteString(u.Resource())
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
