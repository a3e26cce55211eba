package stream

import (
	"encoding/base64"
	"fmt"

	"github.com/kbukum/httpkit/errors"
	"github.com/kbukum/httpkit/uri"
)

// ProxyAuthorizationHeader is the header carrying proxy credentials.
const ProxyAuthorizationHeader = "Proxy-Authorization"

// ProxyOption is the formatted proxy for one request.
type ProxyOption struct {
	// Proxy is "scheme://host:port" with the tunnel scheme applied.
	Proxy string
	// AuthHeader is a full "Proxy-Authorization: Basic ..." line, empty when
	// the proxy URL has no user.
	AuthHeader string
}

// ProxyFormatter renders proxy URLs into stream transport options.
type ProxyFormatter struct {
	schemes SchemeMap
}

// FormatterOption configures a ProxyFormatter.
type FormatterOption func(*ProxyFormatter)

// WithSchemeMap replaces the default scheme map.
func WithSchemeMap(m SchemeMap) FormatterOption {
	return func(f *ProxyFormatter) { f.schemes = m }
}

// NewProxyFormatter creates a formatter using DefaultSchemeMap unless
// overridden.
func NewProxyFormatter(opts ...FormatterOption) *ProxyFormatter {
	f := &ProxyFormatter{schemes: DefaultSchemeMap()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format remaps the proxy scheme and renders the connection string and, when
// the URL carries a user, the Basic credentials header.
func (f *ProxyFormatter) Format(proxy *uri.URL) (ProxyOption, error) {
	if proxy.IsZero() || proxy.Host() == "" {
		return ProxyOption{}, errors.Configuration("proxy URL is malformed or has no host")
	}
	if proxy.Port() == 0 {
		return ProxyOption{}, errors.Configuration(
			fmt.Sprintf("proxy URL %q has no port and scheme %q has no default", proxy.Redacted(), proxy.Scheme()))
	}

	opt := ProxyOption{
		Proxy: proxy.WithSchemeMap(f.schemes).Format("s://h:o"),
	}
	if proxy.HasCredentials() {
		opt.AuthHeader = ProxyAuthorizationHeader + ": Basic " + BasicCredentials(proxy.User(), proxy.Password())
	}
	return opt, nil
}

// BasicCredentials base64-encodes "user:password".
func BasicCredentials(user, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(user + ":" + password))
}
