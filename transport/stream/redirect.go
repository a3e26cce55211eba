package stream

import (
	"net/http"
	"strings"

	"github.com/kbukum/httpkit/message"
)

// nextRequest returns the request that follows resp when resp is a redirect
// with a usable Location.
//
// 303 turns any method but HEAD into a bodiless GET, as do 301 and 302 for
// POST. 307 and 308 replay the request unchanged. Host is always dropped and
// Authorization and Cookie are dropped when the redirect leaves the origin.
func nextRequest(prev *message.Request, resp *message.Response) (*message.Request, bool) {
	switch resp.StatusCode {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
	default:
		return nil, false
	}
	loc := resp.Header("Location")
	if loc == "" {
		return nil, false
	}
	from := prev.URL()
	to := from.Resolve(loc)
	if to.Host() == "" {
		return nil, false
	}

	method := prev.Method()
	content := prev.Content()
	dropBody := false
	switch resp.StatusCode {
	case http.StatusSeeOther:
		if method != http.MethodHead {
			method, dropBody = http.MethodGet, true
		}
	case http.StatusMovedPermanently, http.StatusFound:
		if method == http.MethodPost {
			method, dropBody = http.MethodGet, true
		}
	}
	if dropBody {
		content = nil
	}

	crossOrigin := to.Hostname() != from.Hostname()
	var headers []string
	for _, line := range prev.Headers() {
		name := message.HeaderName(line)
		switch {
		case strings.EqualFold(name, "Host"):
			continue
		case dropBody && (strings.EqualFold(name, "Content-Length") || strings.EqualFold(name, "Content-Type")):
			continue
		case crossOrigin && (strings.EqualFold(name, "Authorization") || strings.EqualFold(name, "Cookie")):
			continue
		}
		headers = append(headers, line)
	}

	next := message.NewRequest(method, to.Resource(), to.Hostname())
	next.SetProtocolVersion(prev.ProtocolVersion())
	next.SetHeaders(headers)
	next.SetContent(content)
	return next, true
}
