package stream

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kbukum/httpkit/uri"
)

// writeRequest serialises an HTTP/1.x request for target onto w.
//
// On a forward route the request target is always absolute-form, as a
// proxy requires, and proxy credentials stay in the header block. On a
// direct route proxy credentials are stripped and the target is always
// origin-form. Host, Content-Length and Connection are filled in unless the
// caller set them.
func writeRequest(w io.Writer, target *uri.URL, opts *Options, rt route) error {
	lines := opts.HTTP.HeaderLines()
	if rt == routeDirect {
		lines = withoutProxyAuth(lines)
	}

	requestTarget := target.Resource()
	if rt == routeForward {
		requestTarget = target.Hostname() + target.Resource()
	}

	version := opts.HTTP.ProtocolVersion
	if version == "" {
		version = "1.1"
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "%s %s HTTP/%s\r\n", opts.HTTP.Method, requestTarget, version)
	if !hasHeader(lines, "Host") {
		b.WriteString("Host: " + target.Authority() + "\r\n")
	}
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\r\n")
	}
	if len(opts.HTTP.Content) > 0 && !hasHeader(lines, "Content-Length") && !hasHeader(lines, "Transfer-Encoding") {
		b.WriteString("Content-Length: " + strconv.Itoa(len(opts.HTTP.Content)) + "\r\n")
	}
	if !hasHeader(lines, "Connection") {
		b.WriteString("Connection: close\r\n")
	}
	b.WriteString("\r\n")
	b.Write(opts.HTTP.Content)

	_, err := w.Write(b.Bytes())
	return err
}

func hasHeader(lines []string, name string) bool {
	for _, line := range lines {
		n, _, ok := strings.Cut(line, ":")
		if ok && strings.EqualFold(strings.TrimSpace(n), name) {
			return true
		}
	}
	return false
}

func withoutProxyAuth(lines []string) []string {
	out := lines[:0:0]
	for _, line := range lines {
		if !isProxyAuth(line) {
			out = append(out, line)
		}
	}
	return out
}
