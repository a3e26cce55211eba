package transport

import (
	"context"
	"strings"
	"time"

	"github.com/kbukum/httpkit/errors"
	"github.com/kbukum/httpkit/message"
	"github.com/kbukum/httpkit/uri"
)

// Request is the read-only view of a request consumed by transports and the
// stream context builder. *message.Request implements it.
type Request interface {
	Method() string
	Headers() []string
	Content() []byte
	ProtocolVersion() string
	URL() *uri.URL
}

// Settings is the client-level configuration surface shared by transports.
type Settings interface {
	IgnoreErrors() bool
	MaxRedirects() int
	Timeout() time.Duration
	VerifyPeer() bool
	// Proxy returns nil when no proxy is configured.
	Proxy() *uri.URL
}

// Transport sends a request and returns its response.
type Transport interface {
	Kind() Kind
	Send(ctx context.Context, req *message.Request, s Settings) (*message.Response, error)
}

// Kind identifies a transport variant.
type Kind int

const (
	// KindStream sends over raw connections.
	KindStream Kind = iota
	// KindNative sends through net/http.
	KindNative
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindStream:
		return "stream"
	case KindNative:
		return "native"
	default:
		return "unknown"
	}
}

// ParseKind converts a configuration value into a Kind. An empty value
// selects KindStream.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "stream":
		return KindStream, nil
	case "native":
		return KindNative, nil
	default:
		return 0, errors.Unsupported("transport", s)
	}
}

// StaticSettings is a plain Settings value, handy for tests and one-off sends.
type StaticSettings struct {
	Ignore    bool
	Redirects int
	Wait      time.Duration
	Verify    bool
	ProxyURL  *uri.URL
}

func (s StaticSettings) IgnoreErrors() bool     { return s.Ignore }
func (s StaticSettings) MaxRedirects() int      { return s.Redirects }
func (s StaticSettings) Timeout() time.Duration { return s.Wait }
func (s StaticSettings) VerifyPeer() bool       { return s.Verify }
func (s StaticSettings) Proxy() *uri.URL        { return s.ProxyURL }
