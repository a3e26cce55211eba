package stream

import (
	"strings"

	"github.com/kbukum/httpkit/errors"
	"github.com/kbukum/httpkit/transport"
)

// ProxyAuthMode selects how proxy routing is expressed in Options.
type ProxyAuthMode int

const (
	// ProxyAuthHeader adds a Proxy-Authorization header when the proxy has
	// credentials, and requests absolute-form targets when it has none.
	ProxyAuthHeader ProxyAuthMode = iota
	// ProxyAuthFullURI always requests absolute-form targets. Credentials, if
	// any, are still sent as a header.
	ProxyAuthFullURI
)

// String returns the configuration name of the mode.
func (m ProxyAuthMode) String() string {
	switch m {
	case ProxyAuthHeader:
		return "header"
	case ProxyAuthFullURI:
		return "full_uri"
	default:
		return "unknown"
	}
}

// ParseProxyAuthMode converts a configuration value. Empty selects
// ProxyAuthHeader.
func ParseProxyAuthMode(s string) (ProxyAuthMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "header":
		return ProxyAuthHeader, nil
	case "full_uri", "fulluri":
		return ProxyAuthFullURI, nil
	default:
		return 0, errors.Unsupported("proxy_auth_mode", s)
	}
}

// ContextBuilder converts a request and client settings into Options.
// The zero value is ready to use.
type ContextBuilder struct {
	formatter *ProxyFormatter
	mode      ProxyAuthMode
}

// BuilderOption configures a ContextBuilder.
type BuilderOption func(*ContextBuilder)

// WithProxyAuthMode sets the proxy authentication policy.
func WithProxyAuthMode(m ProxyAuthMode) BuilderOption {
	return func(b *ContextBuilder) { b.mode = m }
}

// WithProxyFormatter replaces the proxy formatter.
func WithProxyFormatter(f *ProxyFormatter) BuilderOption {
	return func(b *ContextBuilder) { b.formatter = f }
}

// NewContextBuilder creates a builder.
func NewContextBuilder(opts ...BuilderOption) *ContextBuilder {
	b := &ContextBuilder{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Mode returns the proxy authentication policy.
func (b *ContextBuilder) Mode() ProxyAuthMode { return b.mode }

// Build produces the Options for req under s. It fails with INVALID_REQUEST
// when the method is empty and with CONFIGURATION_ERROR when the proxy URL
// cannot be rendered.
func (b *ContextBuilder) Build(req transport.Request, s transport.Settings) (*Options, error) {
	method := req.Method()
	if method == "" {
		return nil, errors.InvalidRequest("method", "request method is required")
	}

	opts := &Options{
		HTTP: HTTPOptions{
			Method:          method,
			Header:          strings.Join(req.Headers(), "\r\n"),
			Content:         copyBytes(req.Content()),
			ProtocolVersion: req.ProtocolVersion(),
			IgnoreErrors:    s.IgnoreErrors(),
			MaxRedirects:    s.MaxRedirects(),
			Timeout:         s.Timeout().Seconds(),
		},
		TLS: TLSOptions{
			VerifyPeer: s.VerifyPeer(),
		},
	}

	proxy := s.Proxy()
	if proxy == nil {
		return opts, nil
	}

	po, err := b.proxyFormatter().Format(proxy)
	if err != nil {
		return nil, err
	}
	opts.HTTP.Proxy = po.Proxy

	if po.AuthHeader != "" {
		opts.HTTP.Header = appendHeader(opts.HTTP.Header, po.AuthHeader)
	}
	if po.AuthHeader == "" || b.mode == ProxyAuthFullURI {
		opts.HTTP.RequestFullURI = true
	}
	return opts, nil
}

func (b *ContextBuilder) proxyFormatter() *ProxyFormatter {
	if b.formatter == nil {
		return NewProxyFormatter()
	}
	return b.formatter
}

// appendHeader adds line to a CRLF-joined block, inserting a separator only
// when the block is not empty.
func appendHeader(block, line string) string {
	if block == "" {
		return line
	}
	return block + "\r\n" + line
}

func splitHeaderBlock(block string) []string {
	if block == "" {
		return nil
	}
	return strings.Split(block, "\r\n")
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
