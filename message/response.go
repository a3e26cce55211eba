package message

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
)

// Response is a received HTTP response.
type Response struct {
	StatusCode      int
	ReasonPhrase    string
	ProtocolVersion string
	headers         headerLines
	Content         []byte
}

// Headers returns the header lines in the order they were received.
func (r *Response) Headers() []string {
	out := make([]string, len(r.headers))
	copy(out, r.headers)
	return out
}

// Header returns the first value for name, case-insensitive.
func (r *Response) Header(name string) string { return r.headers.get(name) }

// HeaderValues returns every value for name, in order.
func (r *Response) HeaderValues(name string) []string { return r.headers.values(name) }

// AddHeader appends a "Name: Value" line.
func (r *Response) AddHeader(line string) { r.headers = append(r.headers, line) }

// StatusLine renders e.g. "HTTP/1.1 200 OK".
func (r *Response) StatusLine() string {
	return fmt.Sprintf("HTTP/%s %d %s", r.ProtocolVersion, r.StatusCode, r.ReasonPhrase)
}

// IsSuccessful reports a 2xx status.
func (r *Response) IsSuccessful() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

// IsRedirect reports a 3xx status.
func (r *Response) IsRedirect() bool { return r.StatusCode >= 300 && r.StatusCode < 400 }

// IsClientError reports a 4xx status.
func (r *Response) IsClientError() bool { return r.StatusCode >= 400 && r.StatusCode < 500 }

// IsServerError reports a 5xx status.
func (r *Response) IsServerError() bool { return r.StatusCode >= 500 }

// FromHTTP populates a Response from a parsed wire response and reads its
// body to the end. The caller still owns closing resp.Body.
func FromHTTP(resp *http.Response) (*Response, error) {
	out := &Response{
		StatusCode:      resp.StatusCode,
		ReasonPhrase:    reason(resp),
		ProtocolVersion: fmt.Sprintf("%d.%d", resp.ProtoMajor, resp.ProtoMinor),
	}

	// http.Header loses arrival order; sort names so output is stable.
	names := make([]string, 0, len(resp.Header))
	for name := range resp.Header {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, v := range resp.Header[name] {
			out.headers = append(out.headers, name+": "+v)
		}
	}

	if resp.Body != nil {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return out, err
		}
		out.Content = body
	}
	return out, nil
}

func reason(resp *http.Response) string {
	// resp.Status is "200 OK"
	if _, after, ok := strings.Cut(resp.Status, " "); ok {
		return after
	}
	return http.StatusText(resp.StatusCode)
}
