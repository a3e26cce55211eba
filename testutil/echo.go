package testutil

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/httpkit/component"
)

// RecordedRequest is what an EchoServer saw for one request.
type RecordedRequest struct {
	Method     string
	RequestURI string
	Host       string
	Header     http.Header
	Body       []byte
}

// EchoPayload is the JSON body returned by the /echo route.
type EchoPayload struct {
	Method  string              `json:"method"`
	URI     string              `json:"uri"`
	Host    string              `json:"host"`
	Headers map[string][]string `json:"headers"`
	Body    string              `json:"body"`
}

// EchoServer is an HTTP origin for transport tests. It records every request
// and serves a few fixed routes:
//
//	/echo            request echoed back as EchoPayload JSON
//	/status/:code    responds with code
//	/redirect/:n     chain of n 302 hops ending at /echo
//	/see-other       303 to /echo
//	/slow?ms=N       sleeps N milliseconds before answering, then
//	                 redirects to next= when given
//
// Unknown paths are echoed too.
type EchoServer struct {
	name   string
	secure bool
	cert   *tls.Certificate

	mu       sync.Mutex
	srv      *httptest.Server
	requests []RecordedRequest
}

var _ TestComponent = (*EchoServer)(nil)

// NewEchoServer creates a plain HTTP echo server. Call Start before use.
func NewEchoServer(name string) *EchoServer {
	return &EchoServer{name: name}
}

// NewTLSEchoServer creates an https echo server using cert, or the
// httptest default certificate when cert is nil.
func NewTLSEchoServer(name string, cert *tls.Certificate) *EchoServer {
	return &EchoServer{name: name, secure: true, cert: cert}
}

func (e *EchoServer) Name() string { return e.name }

// Start launches the server on a loopback port.
func (e *EchoServer) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.srv != nil {
		return fmt.Errorf("testutil: echo server %s already started", e.name)
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(e.record)
	r.Any("/echo", echo)
	r.Any("/status/:code", status)
	r.GET("/redirect/:n", redirectChain)
	r.Any("/see-other", func(c *gin.Context) { c.Redirect(http.StatusSeeOther, "/echo") })
	r.GET("/slow", slow)
	r.NoRoute(echo)

	if !e.secure {
		e.srv = httptest.NewServer(r)
		return nil
	}
	e.srv = httptest.NewUnstartedServer(r)
	if e.cert != nil {
		e.srv.TLS = &tls.Config{Certificates: []tls.Certificate{*e.cert}}
	}
	e.srv.StartTLS()
	return nil
}

// Stop closes the server.
func (e *EchoServer) Stop(ctx context.Context) error {
	e.mu.Lock()
	srv := e.srv
	e.srv = nil
	e.mu.Unlock()
	if srv != nil {
		srv.Close()
	}
	return nil
}

func (e *EchoServer) Health(ctx context.Context) component.Health {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.srv == nil {
		return component.Health{Name: e.name, Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: e.name, Status: component.StatusHealthy}
}

// Reset forgets recorded requests.
func (e *EchoServer) Reset(ctx context.Context) error {
	e.mu.Lock()
	e.requests = nil
	e.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the recorded requests.
func (e *EchoServer) Snapshot(ctx context.Context) (interface{}, error) {
	return e.Requests(), nil
}

// Restore replaces the recorded requests with a snapshot.
func (e *EchoServer) Restore(ctx context.Context, snapshot interface{}) error {
	reqs, ok := snapshot.([]RecordedRequest)
	if !ok {
		return fmt.Errorf("testutil: unexpected snapshot type %T", snapshot)
	}
	e.mu.Lock()
	e.requests = append([]RecordedRequest(nil), reqs...)
	e.mu.Unlock()
	return nil
}

// URL returns the base URL, e.g. "http://127.0.0.1:41234".
func (e *EchoServer) URL() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.srv == nil {
		return ""
	}
	return e.srv.URL
}

// Requests returns every request received so far.
func (e *EchoServer) Requests() []RecordedRequest {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]RecordedRequest(nil), e.requests...)
}

// Last returns the most recent request.
func (e *EchoServer) Last() (RecordedRequest, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.requests) == 0 {
		return RecordedRequest{}, false
	}
	return e.requests[len(e.requests)-1], true
}

func (e *EchoServer) record(c *gin.Context) {
	body, _ := io.ReadAll(c.Request.Body)
	c.Set("body", body)

	e.mu.Lock()
	e.requests = append(e.requests, RecordedRequest{
		Method:     c.Request.Method,
		RequestURI: c.Request.RequestURI,
		Host:       c.Request.Host,
		Header:     c.Request.Header.Clone(),
		Body:       body,
	})
	e.mu.Unlock()
	c.Next()
}

func echo(c *gin.Context) {
	body, _ := c.Get("body")
	b, _ := body.([]byte)
	c.JSON(http.StatusOK, EchoPayload{
		Method:  c.Request.Method,
		URI:     c.Request.RequestURI,
		Host:    c.Request.Host,
		Headers: c.Request.Header,
		Body:    string(b),
	})
}

func status(c *gin.Context) {
	code, err := strconv.Atoi(c.Param("code"))
	if err != nil || code < 200 || code > 599 {
		c.String(http.StatusBadRequest, "bad status %q", c.Param("code"))
		return
	}
	c.String(code, "status %d", code)
}

func redirectChain(c *gin.Context) {
	n, err := strconv.Atoi(c.Param("n"))
	if err != nil || n <= 1 {
		c.Redirect(http.StatusFound, "/echo")
		return
	}
	c.Redirect(http.StatusFound, "/redirect/"+strconv.Itoa(n-1))
}

func slow(c *gin.Context) {
	ms, _ := strconv.Atoi(c.Query("ms"))
	select {
	case <-time.After(time.Duration(ms) * time.Millisecond):
		if next := c.Query("next"); next != "" {
			c.Redirect(http.StatusFound, next)
			return
		}
		c.String(http.StatusOK, "slept %dms", ms)
	case <-c.Request.Context().Done():
	}
}
