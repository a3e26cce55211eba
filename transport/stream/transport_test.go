package stream

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/httpkit/errors"
	"github.com/kbukum/httpkit/message"
	"github.com/kbukum/httpkit/security"
	"github.com/kbukum/httpkit/security/tlstest"
	"github.com/kbukum/httpkit/testutil"
	"github.com/kbukum/httpkit/transport"
	"github.com/kbukum/httpkit/uri"
)

func startEcho(t *testing.T) *testutil.EchoServer {
	t.Helper()
	srv := testutil.NewEchoServer("echo")
	testutil.T(t).Setup(srv)
	return srv
}

func startProxy(t *testing.T, p *testutil.ForwardProxy) *testutil.ForwardProxy {
	t.Helper()
	testutil.T(t).Setup(p)
	return p
}

func direct() transport.StaticSettings {
	return transport.StaticSettings{Ignore: true, Redirects: 5, Wait: 5 * time.Second, Verify: true}
}

func decodeEcho(t *testing.T, resp *message.Response) testutil.EchoPayload {
	t.Helper()
	var p testutil.EchoPayload
	if err := json.Unmarshal(resp.Content, &p); err != nil {
		t.Fatalf("decode echo payload: %v (%q)", err, resp.Content)
	}
	return p
}

func TestTransport_Kind(t *testing.T) {
	if New().Kind() != transport.KindStream {
		t.Error("expected KindStream")
	}
}

func TestTransport_DirectGet(t *testing.T) {
	srv := startEcho(t)
	req := message.FromURL("GET", srv.URL()+"/echo?x=1")
	req.AddHeader("X-Trace: abc")

	resp, err := New().Send(context.Background(), req, direct())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 200 || resp.ReasonPhrase != "OK" {
		t.Fatalf("unexpected status %s", resp.StatusLine())
	}
	p := decodeEcho(t, resp)
	if p.Method != "GET" || p.URI != "/echo?x=1" {
		t.Errorf("unexpected echo %+v", p)
	}
	if got := p.Headers["X-Trace"]; len(got) != 1 || got[0] != "abc" {
		t.Errorf("custom header not sent: %v", p.Headers)
	}
	if p.Host != strings.TrimPrefix(srv.URL(), "http://") {
		t.Errorf("unexpected Host %q", p.Host)
	}
}

func TestTransport_PostBody(t *testing.T) {
	srv := startEcho(t)
	req := message.FromURL("POST", srv.URL()+"/echo")
	req.AddHeader("Content-Type: text/plain")
	req.SetContent([]byte("hello world"))

	resp, err := New().Send(context.Background(), req, direct())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := decodeEcho(t, resp)
	if p.Body != "hello world" {
		t.Errorf("unexpected body %q", p.Body)
	}
	if got := p.Headers["Content-Type"]; len(got) != 1 || got[0] != "text/plain" {
		t.Errorf("unexpected Content-Type %v", got)
	}
}

func TestTransport_FollowsRedirects(t *testing.T) {
	srv := startEcho(t)
	req := message.FromURL("GET", srv.URL()+"/redirect/3")

	resp, err := New().Send(context.Background(), req, direct())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200 after redirects, got %d", resp.StatusCode)
	}
	if got := len(srv.Requests()); got != 4 {
		t.Errorf("expected 4 requests, got %d", got)
	}
}

func TestTransport_RedirectLimit(t *testing.T) {
	srv := startEcho(t)
	s := direct()
	s.Redirects = 1

	resp, err := New().Send(context.Background(), message.FromURL("GET", srv.URL()+"/redirect/3"), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 302 {
		t.Errorf("expected the last redirect response, got %d", resp.StatusCode)
	}
	if got := len(srv.Requests()); got != 2 {
		t.Errorf("expected 2 requests, got %d", got)
	}
}

func TestTransport_NoRedirects(t *testing.T) {
	srv := startEcho(t)
	s := direct()
	s.Redirects = 0

	resp, err := New().Send(context.Background(), message.FromURL("GET", srv.URL()+"/redirect/1"), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 302 || resp.Header("Location") != "/echo" {
		t.Errorf("unexpected response %s Location=%q", resp.StatusLine(), resp.Header("Location"))
	}
}

func TestTransport_SeeOtherSwitchesToGet(t *testing.T) {
	srv := startEcho(t)
	req := message.FromURL("POST", srv.URL()+"/see-other")
	req.SetContent([]byte("form"))

	resp, err := New().Send(context.Background(), req, direct())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := decodeEcho(t, resp)
	if p.Method != "GET" || p.Body != "" {
		t.Errorf("expected bodiless GET after 303, got %+v", p)
	}
}

func TestTransport_StatusErrors(t *testing.T) {
	srv := startEcho(t)
	req := message.FromURL("GET", srv.URL()+"/status/404")

	resp, err := New().Send(context.Background(), req, direct())
	if err != nil {
		t.Fatalf("ignore_errors=true should not fail: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}

	s := direct()
	s.Ignore = false
	resp, err = New().Send(context.Background(), req, s)
	if !transport.IsNotFound(err) {
		t.Fatalf("expected not found error, got %v", err)
	}
	if resp == nil || resp.StatusCode != 404 {
		t.Error("expected the response alongside the error")
	}

	_, err = New().Send(context.Background(), message.FromURL("GET", srv.URL()+"/status/503"), s)
	if !transport.IsServerError(err) || !transport.IsRetryable(err) {
		t.Errorf("expected retryable server error, got %v", err)
	}
}

func TestTransport_Timeout(t *testing.T) {
	srv := startEcho(t)
	s := direct()
	s.Wait = 100 * time.Millisecond

	start := time.Now()
	_, err := New().Send(context.Background(), message.FromURL("GET", srv.URL()+"/slow?ms=2000"), s)
	if !transport.IsTimeout(err) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("timeout not enforced promptly")
	}
}

func TestTransport_TimeoutCoversRedirects(t *testing.T) {
	srv := startEcho(t)
	s := direct()
	s.Wait = 500 * time.Millisecond

	// Each hop finishes inside the timeout; the chain does not.
	req := message.FromURL("GET", srv.URL()+"/slow?ms=300&next=%2Fslow%3Fms%3D300")
	start := time.Now()
	_, err := New().Send(context.Background(), req, s)
	if !transport.IsTimeout(err) {
		t.Fatalf("expected timeout across the redirect chain, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 900*time.Millisecond {
		t.Errorf("timeout applied per hop: send took %s", elapsed)
	}
}

func TestTransport_ContextCancel(t *testing.T) {
	srv := startEcho(t)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := New().Send(ctx, message.FromURL("GET", srv.URL()+"/slow?ms=2000"), direct())
	if !transport.IsTimeout(err) {
		t.Fatalf("expected cancellation to surface as timeout, got %v", err)
	}
}

func TestTransport_ConnectionRefused(t *testing.T) {
	srv := testutil.NewEchoServer("gone")
	testutil.T(t).Setup(srv)
	addr := srv.URL()
	if err := srv.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}

	_, err := New().Send(context.Background(), message.FromURL("GET", addr+"/echo"), direct())
	if !transport.IsConnection(err) {
		t.Fatalf("expected connection error, got %v", err)
	}
}

func TestTransport_ForwardProxyWithoutCredentials(t *testing.T) {
	srv := startEcho(t)
	proxy := startProxy(t, testutil.NewForwardProxy("proxy"))
	s := direct()
	s.ProxyURL = uri.Parse(proxy.URL())

	resp, err := New().Send(context.Background(), message.FromURL("GET", srv.URL()+"/echo"), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Header("Via") != testutil.ViaHeader {
		t.Errorf("response did not pass through proxy: %v", resp.Headers())
	}
	recs := proxy.Records()
	if len(recs) != 1 || !recs[0].AbsoluteForm {
		t.Fatalf("expected one absolute-form request, got %+v", recs)
	}
	if recs[0].Target != srv.URL()+"/echo" {
		t.Errorf("unexpected proxy target %q", recs[0].Target)
	}
}

func TestTransport_ForwardProxyWithCredentials(t *testing.T) {
	srv := startEcho(t)
	proxy := startProxy(t, testutil.NewForwardProxy("proxy").WithCredentials("alice", "secret"))
	s := direct()
	s.ProxyURL = uri.Parse("http://alice:secret@" + proxy.Address())

	resp, err := New().Send(context.Background(), message.FromURL("GET", srv.URL()+"/echo"), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %s", resp.StatusLine())
	}
	recs := proxy.Records()
	if len(recs) != 1 || recs[0].ProxyAuthorization != "Basic YWxpY2U6c2VjcmV0" {
		t.Fatalf("unexpected proxy records %+v", recs)
	}
	if !recs[0].AbsoluteForm || recs[0].Target != srv.URL()+"/echo" {
		t.Errorf("expected absolute-form target with credentials, got %q", recs[0].Target)
	}
	if last, _ := srv.Last(); last.Header.Get("Proxy-Authorization") != "" {
		t.Error("proxy credentials reached the origin")
	}
}

func TestTransport_ForwardProxyRejectsBadCredentials(t *testing.T) {
	srv := startEcho(t)
	proxy := startProxy(t, testutil.NewForwardProxy("proxy").WithCredentials("alice", "secret"))
	s := direct()
	s.Ignore = false
	s.ProxyURL = uri.Parse("http://alice:wrong@" + proxy.Address())

	resp, err := New().Send(context.Background(), message.FromURL("GET", srv.URL()+"/echo"), s)
	if !transport.IsAuth(err) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if resp.StatusCode != 407 {
		t.Errorf("expected 407, got %d", resp.StatusCode)
	}
}

func TestTransport_ConnectTunnel(t *testing.T) {
	certs := tlstest.GenerateTLSCerts(t)
	srv := testutil.NewTLSEchoServer("tls-echo", &certs.ServerTLS)
	testutil.T(t).Setup(srv)
	proxy := startProxy(t, testutil.NewForwardProxy("proxy").WithCredentials("alice", "secret"))

	s := direct()
	s.ProxyURL = uri.Parse("http://alice:secret@" + proxy.Address())
	tr := New(WithDialer(&Dialer{TLS: &security.TLSConfig{CAFile: certs.CAFile}}))

	resp, err := tr.Send(context.Background(), message.FromURL("GET", srv.URL()+"/echo"), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := decodeEcho(t, resp)
	if p.URI != "/echo" {
		t.Errorf("expected origin-form inside the tunnel, got %q", p.URI)
	}
	if _, ok := p.Headers["Proxy-Authorization"]; ok {
		t.Error("proxy credentials sent inside the tunnel")
	}

	recs := proxy.Records()
	if len(recs) != 1 || recs[0].Method != "CONNECT" {
		t.Fatalf("expected a single CONNECT, got %+v", recs)
	}
	if recs[0].ProxyAuthorization != "Basic YWxpY2U6c2VjcmV0" {
		t.Errorf("CONNECT carried %q", recs[0].ProxyAuthorization)
	}
}

func TestTransport_ConnectTunnelRejected(t *testing.T) {
	srv := testutil.NewTLSEchoServer("tls-echo", nil)
	testutil.T(t).Setup(srv)
	proxy := startProxy(t, testutil.NewForwardProxy("proxy").WithCredentials("alice", "secret"))

	s := direct()
	s.Verify = false
	s.ProxyURL = uri.Parse(proxy.URL())

	_, err := New().Send(context.Background(), message.FromURL("GET", srv.URL()+"/echo"), s)
	if !transport.IsAuth(err) {
		t.Fatalf("expected auth error from CONNECT, got %v", err)
	}
}

func TestTransport_TLSVerification(t *testing.T) {
	srv := testutil.NewTLSEchoServer("tls-echo", nil)
	testutil.T(t).Setup(srv)
	req := message.FromURL("GET", srv.URL()+"/echo")

	if _, err := New().Send(context.Background(), req, direct()); !transport.IsConnection(err) {
		t.Fatalf("expected verification failure, got %v", err)
	}

	s := direct()
	s.Verify = false
	resp, err := New().Send(context.Background(), req, s)
	if err != nil {
		t.Fatalf("unexpected error with verify_peer=false: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestTransport_UnsupportedProxyScheme(t *testing.T) {
	s := direct()
	s.ProxyURL = uri.Parse("gopher://proxy.example:70")

	_, err := New().Send(context.Background(), message.FromURL("GET", "http://example.com/"), s)
	if !errors.HasCode(err, errors.ErrCodeUnsupported) {
		t.Fatalf("expected UNSUPPORTED, got %v", err)
	}
}

func TestTransport_DoRequiresHost(t *testing.T) {
	_, err := New().Do(context.Background(), uri.Parse(""), &Options{HTTP: HTTPOptions{Method: "GET"}})
	if !errors.HasCode(err, errors.ErrCodeInvalidRequest) {
		t.Fatalf("expected INVALID_REQUEST, got %v", err)
	}
}
