package message

import (
	"net/http"
	"strings"

	"github.com/kbukum/httpkit/uri"
)

// DefaultProtocolVersion is used when a request does not set one.
const DefaultProtocolVersion = "1.1"

// Request is an outbound HTTP request. The zero value is not usable; build one
// with NewRequest or FromURL.
type Request struct {
	method          string
	host            string
	resource        string
	protocolVersion string
	headers         headerLines
	content         []byte
}

// NewRequest creates a request. An empty method defaults to GET, an empty
// resource to "/". host is scheme://host[:port].
func NewRequest(method, resource, host string) *Request {
	if method == "" {
		method = http.MethodGet
	}
	if resource == "" {
		resource = "/"
	}
	return &Request{
		method:          strings.ToUpper(method),
		host:            host,
		resource:        resource,
		protocolVersion: DefaultProtocolVersion,
	}
}

// FromURL creates a request targeting raw, splitting it into host and resource.
func FromURL(method, raw string) *Request {
	u := uri.Parse(raw)
	return NewRequest(method, u.Resource(), u.Hostname())
}

// Method returns the request method.
func (r *Request) Method() string { return r.method }

// SetMethod replaces the request method verbatim.
func (r *Request) SetMethod(method string) { r.method = method }

// Host returns scheme://host[:port].
func (r *Request) Host() string { return r.host }

// Resource returns path[?query].
func (r *Request) Resource() string { return r.resource }

// URL returns the absolute target URL.
func (r *Request) URL() *uri.URL {
	return uri.Parse(r.host + r.resource)
}

// ProtocolVersion returns the HTTP version, e.g. "1.1".
func (r *Request) ProtocolVersion() string { return r.protocolVersion }

// SetProtocolVersion sets the HTTP version.
func (r *Request) SetProtocolVersion(v string) { r.protocolVersion = v }

// Headers returns the header lines in insertion order. The slice is a copy.
func (r *Request) Headers() []string {
	out := make([]string, len(r.headers))
	copy(out, r.headers)
	return out
}

// Header returns the first value for name, case-insensitive.
func (r *Request) Header(name string) string { return r.headers.get(name) }

// HeaderValues returns every value for name, in order.
func (r *Request) HeaderValues(name string) []string { return r.headers.values(name) }

// AddHeader appends a "Name: Value" line.
func (r *Request) AddHeader(line string) { r.headers = append(r.headers, line) }

// AddHeaders appends several header lines in order.
func (r *Request) AddHeaders(lines ...string) { r.headers = append(r.headers, lines...) }

// SetHeaders replaces all header lines.
func (r *Request) SetHeaders(lines []string) {
	r.headers = append(headerLines(nil), lines...)
}

// Content returns the raw body.
func (r *Request) Content() []byte { return r.content }

// SetContent sets the raw body. It is sent as is.
func (r *Request) SetContent(b []byte) { r.content = b }

// IsSecure reports whether the target uses https.
func (r *Request) IsSecure() bool { return strings.HasPrefix(r.host, "https://") }

// Clone returns a deep copy of r.
func (r *Request) Clone() *Request {
	c := *r
	c.headers = append(headerLines(nil), r.headers...)
	if r.content != nil {
		c.content = append([]byte(nil), r.content...)
	}
	return &c
}
