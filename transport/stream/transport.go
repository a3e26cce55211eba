package stream

import (
	"bufio"
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/kbukum/httpkit/errors"
	"github.com/kbukum/httpkit/logger"
	"github.com/kbukum/httpkit/message"
	"github.com/kbukum/httpkit/transport"
	"github.com/kbukum/httpkit/uri"
)

// Transport sends requests over raw connections driven by Options.
type Transport struct {
	builder *ContextBuilder
	dialer  *Dialer
	log     *logger.Logger
}

var _ transport.Transport = (*Transport)(nil)

// Option configures a Transport.
type Option func(*Transport)

// WithBuilder sets the context builder.
func WithBuilder(b *ContextBuilder) Option {
	return func(t *Transport) { t.builder = b }
}

// WithDialer sets the dialer.
func WithDialer(d *Dialer) Option {
	return func(t *Transport) { t.dialer = d }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(t *Transport) { t.log = l }
}

// New creates a stream transport.
func New(opts ...Option) *Transport {
	t := &Transport{}
	for _, opt := range opts {
		opt(t)
	}
	if t.builder == nil {
		t.builder = NewContextBuilder()
	}
	if t.dialer == nil {
		t.dialer = &Dialer{}
	}
	if t.log == nil {
		t.log = logger.WithComponent("stream")
	}
	return t
}

// Kind returns transport.KindStream.
func (t *Transport) Kind() transport.Kind { return transport.KindStream }

// Builder returns the context builder used by Send.
func (t *Transport) Builder() *ContextBuilder { return t.builder }

// Send builds Options for req and performs the exchange, following redirects
// up to s.MaxRedirects. s.Timeout bounds the whole send, redirects included.
// When s.IgnoreErrors is false a 4xx or 5xx final response is returned
// together with a classified *transport.Error.
func (t *Transport) Send(ctx context.Context, req *message.Request, s transport.Settings) (*message.Response, error) {
	if timeout := s.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	current := req
	for hops := 0; ; hops++ {
		opts, err := t.builder.Build(current, s)
		if err != nil {
			return nil, err
		}
		resp, err := t.Do(ctx, current.URL(), opts)
		if err != nil {
			return nil, err
		}

		next, ok := nextRequest(current, resp)
		if !ok || hops >= opts.HTTP.MaxRedirects {
			if !opts.HTTP.IgnoreErrors {
				if e := transport.ClassifyStatusCode(resp.StatusCode); e != nil {
					return resp, e
				}
			}
			return resp, nil
		}
		t.log.Debug("following redirect", map[string]interface{}{
			"status": resp.StatusCode,
			"from":   current.URL().Redacted(),
			"to":     next.URL().Redacted(),
			"hop":    hops + 1,
		})
		current = next
	}
}

// Do performs a single exchange with target described by opts. Redirects are
// not followed and status codes are not classified. The Timeout in opts
// never extends a deadline already set on ctx.
func (t *Transport) Do(ctx context.Context, target *uri.URL, opts *Options) (*message.Response, error) {
	if target.IsZero() || target.Host() == "" {
		return nil, errors.InvalidRequest("url", "request target has no host")
	}
	if opts.HTTP.Method == "" {
		return nil, errors.InvalidRequest("method", "request method is required")
	}

	if timeout := time.Duration(opts.HTTP.Timeout * float64(time.Second)); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	conn, rt, err := t.dialer.Dial(ctx, target, opts)
	if err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		return nil, transport.FromNetError(ctx, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if err := writeRequest(conn, target, opts, rt); err != nil {
		return nil, transport.FromNetError(ctx, err)
	}

	hr, err := http.ReadResponse(bufio.NewReader(conn), &http.Request{Method: opts.HTTP.Method})
	if err != nil {
		var ne net.Error
		if ctx.Err() != nil || stderrors.As(err, &ne) {
			return nil, transport.FromNetError(ctx, err)
		}
		return nil, transport.NewProtocolError(err)
	}
	defer hr.Body.Close()

	resp, err := message.FromHTTP(hr)
	if err != nil {
		return nil, transport.FromNetError(ctx, err)
	}

	t.log.Debug("exchange complete", map[string]interface{}{
		"method":   opts.HTTP.Method,
		"url":      target.Redacted(),
		"status":   resp.StatusCode,
		"proxied":  opts.HTTP.Proxy != "",
		"duration": time.Since(start).String(),
	})
	return resp, nil
}
