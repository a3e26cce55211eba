package native

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/kbukum/httpkit/errors"
	"github.com/kbukum/httpkit/logger"
	"github.com/kbukum/httpkit/message"
	"github.com/kbukum/httpkit/security"
	"github.com/kbukum/httpkit/transport"
	"github.com/kbukum/httpkit/uri"
)

var supportedProxySchemes = map[string]bool{
	"http":    true,
	"https":   true,
	"socks5":  true,
	"socks5h": true,
}

// Transport sends requests through net/http. Round trippers are cached per
// proxy and peer verification setting so connections are reused.
type Transport struct {
	tls *security.TLSConfig
	log *logger.Logger

	mu   sync.Mutex
	pool map[string]*http.Transport
}

var _ transport.Transport = (*Transport)(nil)

// Option configures a Transport.
type Option func(*Transport)

// WithTLS sets the base TLS configuration.
func WithTLS(cfg *security.TLSConfig) Option {
	return func(t *Transport) { t.tls = cfg }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(t *Transport) { t.log = l }
}

// New creates a native transport.
func New(opts ...Option) *Transport {
	t := &Transport{pool: make(map[string]*http.Transport)}
	for _, opt := range opts {
		opt(t)
	}
	if t.log == nil {
		t.log = logger.WithComponent("native")
	}
	return t
}

// Kind returns transport.KindNative.
func (t *Transport) Kind() transport.Kind { return transport.KindNative }

// Send performs the request, following redirects up to s.MaxRedirects. When
// s.IgnoreErrors is false a 4xx or 5xx final response is returned together
// with a classified *transport.Error.
func (t *Transport) Send(ctx context.Context, req *message.Request, s transport.Settings) (*message.Response, error) {
	httpReq, err := buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	rt, err := t.roundTripper(s)
	if err != nil {
		return nil, err
	}

	maxRedirects := s.MaxRedirects()
	client := &http.Client{
		Transport: rt,
		Timeout:   s.Timeout(),
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) > maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}

	start := time.Now()
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, transport.FromNetError(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	out, err := message.FromHTTP(resp)
	if err != nil {
		return nil, transport.FromNetError(ctx, fmt.Errorf("read response body: %w", err))
	}

	t.log.Debug("exchange complete", map[string]interface{}{
		"method":   httpReq.Method,
		"url":      req.URL().Redacted(),
		"status":   out.StatusCode,
		"duration": time.Since(start).String(),
	})

	if !s.IgnoreErrors() {
		if e := transport.ClassifyStatusCode(out.StatusCode); e != nil {
			return out, e
		}
	}
	return out, nil
}

// Close releases idle connections held by cached round trippers.
func (t *Transport) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, rt := range t.pool {
		rt.CloseIdleConnections()
	}
}

func (t *Transport) roundTripper(s transport.Settings) (*http.Transport, error) {
	proxy := s.Proxy()
	key := fmt.Sprintf("%t|%s", s.VerifyPeer(), proxy.String())

	t.mu.Lock()
	defer t.mu.Unlock()
	if rt, ok := t.pool[key]; ok {
		return rt, nil
	}

	rt := http.DefaultTransport.(*http.Transport).Clone()
	rt.Proxy = nil

	tlsCfg, err := t.tls.ForPeer("", s.VerifyPeer()).Build()
	if err != nil {
		return nil, errors.Configuration(err.Error()).WithCause(err)
	}
	if tlsCfg != nil {
		rt.TLSClientConfig = tlsCfg
	}

	if proxy != nil {
		pu, err := proxyURL(proxy)
		if err != nil {
			return nil, err
		}
		rt.Proxy = http.ProxyURL(pu)
	}

	t.pool[key] = rt
	return rt, nil
}

func proxyURL(proxy *uri.URL) (*url.URL, error) {
	if proxy.IsZero() || proxy.Host() == "" {
		return nil, errors.Configuration("proxy URL is malformed or has no host")
	}
	if !supportedProxySchemes[proxy.Scheme()] {
		return nil, errors.Unsupported("proxy scheme", proxy.Scheme())
	}
	pu := &url.URL{Scheme: proxy.Scheme(), Host: proxy.Address()}
	if proxy.HasCredentials() {
		pu.User = url.UserPassword(proxy.User(), proxy.Password())
	}
	return pu, nil
}

// buildRequest converts a message.Request into an *http.Request.
func buildRequest(ctx context.Context, req *message.Request) (*http.Request, error) {
	if req.Method() == "" {
		return nil, errors.InvalidRequest("method", "request method is required")
	}
	target := req.URL()
	if target.Host() == "" {
		return nil, errors.InvalidRequest("url", "request target has no host")
	}

	var body io.Reader
	if content := req.Content(); len(content) > 0 {
		body = bytes.NewReader(content)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method(), target.String(), body)
	if err != nil {
		return nil, errors.InvalidRequest("url", err.Error()).WithCause(err)
	}

	for _, line := range req.Headers() {
		name, value, ok := message.SplitHeader(line)
		if !ok || name == "" {
			continue
		}
		switch {
		case strings.EqualFold(name, "Host"):
			httpReq.Host = value
		case strings.EqualFold(name, "Content-Length"):
		default:
			httpReq.Header.Add(name, value)
		}
	}
	return httpReq, nil
}
