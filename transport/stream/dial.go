package stream

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/proxy"

	"github.com/kbukum/httpkit/errors"
	"github.com/kbukum/httpkit/security"
	"github.com/kbukum/httpkit/transport"
	"github.com/kbukum/httpkit/uri"
)

// route describes how the request reaches the origin once connected.
type route int

const (
	// routeDirect means the connection ends at the origin, either dialed
	// directly or through a tunnel (CONNECT or SOCKS).
	routeDirect route = iota
	// routeForward means a plain HTTP proxy reads the request and forwards it.
	routeForward
)

// Dialer opens connections for the stream transport.
type Dialer struct {
	// KeepAlive for TCP connections. Zero uses the net default.
	KeepAlive time.Duration
	// TLS is the base configuration for https targets and ssl proxies.
	// Peer verification and server name are set per connection.
	TLS *security.TLSConfig
}

// Dial connects to target according to opts, through the configured proxy
// if any. The returned route tells the caller how to frame the request.
func (d *Dialer) Dial(ctx context.Context, target *uri.URL, opts *Options) (net.Conn, route, error) {
	secure := target.Scheme() == "https"

	if opts.HTTP.Proxy == "" {
		conn, err := d.dialTCP(ctx, target.Address())
		if err != nil {
			return nil, routeDirect, err
		}
		if secure {
			conn, err = d.handshake(ctx, conn, target.Host(), opts.TLS.VerifyPeer)
		}
		return conn, routeDirect, err
	}

	p := uri.Parse(opts.HTTP.Proxy)
	if p.Host() == "" {
		return nil, routeDirect, errors.Configuration(fmt.Sprintf("proxy %q is malformed", opts.HTTP.Proxy))
	}

	switch p.Scheme() {
	case "tcp", "http":
		conn, err := d.dialTCP(ctx, p.Address())
		if err != nil {
			return nil, routeDirect, err
		}
		return d.viaHTTPProxy(ctx, conn, target, opts)
	case "ssl", "https":
		conn, err := d.dialTCP(ctx, p.Address())
		if err != nil {
			return nil, routeDirect, err
		}
		conn, err = d.handshake(ctx, conn, p.Host(), opts.TLS.VerifyPeer)
		if err != nil {
			return nil, routeDirect, err
		}
		return d.viaHTTPProxy(ctx, conn, target, opts)
	case "socks5", "socks5h":
		conn, err := d.dialSOCKS(ctx, p, target)
		if err != nil {
			return nil, routeDirect, err
		}
		if secure {
			conn, err = d.handshake(ctx, conn, target.Host(), opts.TLS.VerifyPeer)
		}
		return conn, routeDirect, err
	default:
		return nil, routeDirect, errors.Unsupported("proxy scheme", p.Scheme())
	}
}

// viaHTTPProxy either keeps conn as a forwarding proxy connection or, for
// https targets, opens a CONNECT tunnel and upgrades it to TLS.
func (d *Dialer) viaHTTPProxy(ctx context.Context, conn net.Conn, target *uri.URL, opts *Options) (net.Conn, route, error) {
	if target.Scheme() != "https" {
		return conn, routeForward, nil
	}
	if err := connectTunnel(ctx, conn, target.Address(), proxyAuthLines(opts.HTTP.HeaderLines())); err != nil {
		_ = conn.Close()
		return nil, routeDirect, err
	}
	tconn, err := d.handshake(ctx, conn, target.Host(), opts.TLS.VerifyPeer)
	return tconn, routeDirect, err
}

func (d *Dialer) netDialer() *net.Dialer {
	return &net.Dialer{KeepAlive: d.KeepAlive}
}

func (d *Dialer) dialTCP(ctx context.Context, addr string) (net.Conn, error) {
	return d.netDialer().DialContext(ctx, "tcp", addr)
}

func (d *Dialer) dialSOCKS(ctx context.Context, p, target *uri.URL) (net.Conn, error) {
	var auth *proxy.Auth
	if p.HasCredentials() {
		auth = &proxy.Auth{User: p.User(), Password: p.Password()}
	}
	sd, err := proxy.SOCKS5("tcp", p.Address(), auth, d.netDialer())
	if err != nil {
		return nil, err
	}
	cd, ok := sd.(proxy.ContextDialer)
	if !ok {
		return sd.Dial("tcp", target.Address())
	}
	return cd.DialContext(ctx, "tcp", target.Address())
}

func (d *Dialer) handshake(ctx context.Context, conn net.Conn, serverName string, verify bool) (net.Conn, error) {
	cfg, err := d.tlsConfig(serverName, verify)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	tconn := tls.Client(conn, cfg)
	if err := tconn.HandshakeContext(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return tconn, nil
}

func (d *Dialer) tlsConfig(serverName string, verify bool) (*tls.Config, error) {
	cfg, err := d.TLS.ForPeer(serverName, verify).Build()
	if err != nil {
		return nil, errors.Configuration(err.Error()).WithCause(err)
	}
	if cfg == nil {
		cfg = &tls.Config{ServerName: serverName, MinVersion: tls.VersionTLS12}
	}
	return cfg, nil
}

// connectTunnel asks an HTTP proxy to open a tunnel to addr. Proxy
// credentials are sent here and nowhere else on a tunnelled route.
func connectTunnel(ctx context.Context, conn net.Conn, addr string, auth []string) error {
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
		defer conn.SetDeadline(time.Time{})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CONNECT %s HTTP/1.1\r\nHost: %s\r\n", addr, addr)
	for _, line := range auth {
		b.WriteString(line)
		b.WriteString("\r\n")
	}
	b.WriteString("\r\n")
	if _, err := conn.Write([]byte(b.String())); err != nil {
		return err
	}

	resp, err := http.ReadResponse(bufio.NewReader(conn), &http.Request{Method: http.MethodConnect})
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e := transport.ClassifyStatusCode(resp.StatusCode)
		if e == nil {
			e = &transport.Error{StatusCode: resp.StatusCode, Code: transport.ErrCodeConnection}
		}
		e.Message = "proxy CONNECT failed: " + resp.Status
		return e
	}
	return nil
}

func proxyAuthLines(lines []string) []string {
	var out []string
	for _, line := range lines {
		if isProxyAuth(line) {
			out = append(out, line)
		}
	}
	return out
}

func isProxyAuth(line string) bool {
	name, _, ok := strings.Cut(line, ":")
	return ok && strings.EqualFold(strings.TrimSpace(name), ProxyAuthorizationHeader)
}
