package testutil

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/kbukum/httpkit/component"
)

// ViaHeader is added by ForwardProxy to every forwarded response.
const ViaHeader = "1.1 httpkit-testproxy"

// ProxyRecord is what a ForwardProxy saw for one request.
type ProxyRecord struct {
	Method string
	// Target is the request target as received: absolute-form, origin-form
	// or, for CONNECT, host:port.
	Target             string
	AbsoluteForm       bool
	ProxyAuthorization string
}

// ForwardProxy is an HTTP proxy for transport tests. It forwards
// absolute-form requests, rejects origin-form ones with 400, tunnels
// CONNECT, and answers 407 when credentials are configured and the request
// does not carry them.
type ForwardProxy struct {
	name     string
	user     string
	password string

	mu      sync.Mutex
	srv     *httptest.Server
	records []ProxyRecord
}

var _ TestComponent = (*ForwardProxy)(nil)

// NewForwardProxy creates a proxy that accepts any client.
func NewForwardProxy(name string) *ForwardProxy {
	return &ForwardProxy{name: name}
}

// WithCredentials requires Basic proxy credentials.
func (p *ForwardProxy) WithCredentials(user, password string) *ForwardProxy {
	p.user, p.password = user, password
	return p
}

func (p *ForwardProxy) Name() string { return p.name }

// Start launches the proxy on a loopback port.
func (p *ForwardProxy) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.srv != nil {
		return fmt.Errorf("testutil: proxy %s already started", p.name)
	}
	p.srv = httptest.NewServer(http.HandlerFunc(p.serve))
	return nil
}

// Stop closes the proxy.
func (p *ForwardProxy) Stop(ctx context.Context) error {
	p.mu.Lock()
	srv := p.srv
	p.srv = nil
	p.mu.Unlock()
	if srv != nil {
		srv.CloseClientConnections()
		srv.Close()
	}
	return nil
}

func (p *ForwardProxy) Health(ctx context.Context) component.Health {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.srv == nil {
		return component.Health{Name: p.name, Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: p.name, Status: component.StatusHealthy}
}

// Reset forgets recorded requests.
func (p *ForwardProxy) Reset(ctx context.Context) error {
	p.mu.Lock()
	p.records = nil
	p.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the recorded requests.
func (p *ForwardProxy) Snapshot(ctx context.Context) (interface{}, error) {
	return p.Records(), nil
}

// Restore replaces the recorded requests with a snapshot.
func (p *ForwardProxy) Restore(ctx context.Context, snapshot interface{}) error {
	recs, ok := snapshot.([]ProxyRecord)
	if !ok {
		return fmt.Errorf("testutil: unexpected snapshot type %T", snapshot)
	}
	p.mu.Lock()
	p.records = append([]ProxyRecord(nil), recs...)
	p.mu.Unlock()
	return nil
}

// URL returns "http://127.0.0.1:port".
func (p *ForwardProxy) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.srv == nil {
		return ""
	}
	return p.srv.URL
}

// Address returns "127.0.0.1:port".
func (p *ForwardProxy) Address() string {
	return strings.TrimPrefix(p.URL(), "http://")
}

// Records returns every request received so far.
func (p *ForwardProxy) Records() []ProxyRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]ProxyRecord(nil), p.records...)
}

func (p *ForwardProxy) serve(w http.ResponseWriter, r *http.Request) {
	auth := r.Header.Get("Proxy-Authorization")
	p.mu.Lock()
	p.records = append(p.records, ProxyRecord{
		Method:             r.Method,
		Target:             r.RequestURI,
		AbsoluteForm:       r.URL.IsAbs(),
		ProxyAuthorization: auth,
	})
	p.mu.Unlock()

	if p.user != "" {
		want := "Basic " + base64.StdEncoding.EncodeToString([]byte(p.user+":"+p.password))
		if auth != want {
			w.Header().Set("Proxy-Authenticate", `Basic realm="httpkit"`)
			http.Error(w, "proxy authentication required", http.StatusProxyAuthRequired)
			return
		}
	}

	if r.Method == http.MethodConnect {
		p.tunnel(w, r)
		return
	}
	p.forward(w, r)
}

func (p *ForwardProxy) forward(w http.ResponseWriter, r *http.Request) {
	if !r.URL.IsAbs() {
		http.Error(w, "proxy requires an absolute-form request target", http.StatusBadRequest)
		return
	}

	out, err := http.NewRequestWithContext(r.Context(), r.Method, r.URL.String(), r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	for name, values := range r.Header {
		if isHopByHop(name) {
			continue
		}
		out.Header[name] = values
	}
	out.ContentLength = r.ContentLength

	resp, err := (&http.Transport{}).RoundTrip(out)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	for name, values := range resp.Header {
		if isHopByHop(name) {
			continue
		}
		w.Header()[name] = values
	}
	w.Header().Add("Via", ViaHeader)
	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, resp.Body)
}

func (p *ForwardProxy) tunnel(w http.ResponseWriter, r *http.Request) {
	upstream, err := net.Dial("tcp", r.Host)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	hj, ok := w.(http.Hijacker)
	if !ok {
		_ = upstream.Close()
		http.Error(w, "hijacking not supported", http.StatusInternalServerError)
		return
	}
	client, buf, err := hj.Hijack()
	if err != nil {
		_ = upstream.Close()
		return
	}
	_, _ = client.Write([]byte("HTTP/1.1 200 Connection established\r\n\r\n"))

	go pipe(upstream, buf.Reader, client)
	go pipe(client, upstream, upstream)
}

func pipe(dst net.Conn, src io.Reader, srcConn net.Conn) {
	_, _ = io.Copy(dst, src)
	_ = dst.Close()
	_ = srcConn.Close()
}

var hopByHop = []string{
	"Connection", "Proxy-Connection", "Keep-Alive", "Proxy-Authorization",
	"Proxy-Authenticate", "Te", "Trailer", "Transfer-Encoding", "Upgrade",
}

func isHopByHop(name string) bool {
	for _, h := range hopByHop {
		if strings.EqualFold(h, name) {
			return true
		}
	}
	return false
}
