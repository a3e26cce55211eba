package httpclient

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/httpkit/errors"
	"github.com/kbukum/httpkit/logger"
	"github.com/kbukum/httpkit/message"
	"github.com/kbukum/httpkit/observability"
	"github.com/kbukum/httpkit/resilience"
	"github.com/kbukum/httpkit/transport"
	"github.com/kbukum/httpkit/transport/stream"
	"github.com/kbukum/httpkit/uri"
	"github.com/kbukum/httpkit/util"
)

// Client sends requests through the configured transport. It implements
// transport.Settings, so its configuration is what transports and the
// stream context builder see.
type Client struct {
	cfg       Config
	kind      transport.Kind
	proxy     *uri.URL
	transport transport.Transport
	builder   *stream.ContextBuilder
	registry  *Registry
	base      *logger.Logger
	log       *logger.Logger
	metrics   *observability.Metrics

	rl *resilience.RateLimiter
	bh *resilience.Bulkhead
	cb *resilience.CircuitBreaker
}

var _ transport.Settings = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithTransport replaces the transport selected by Config.Transport.
func WithTransport(t transport.Transport) Option {
	return func(c *Client) { c.transport = t }
}

// WithLogger sets the base logger for the client and its transports.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.base = l }
}

// WithBuilder replaces the stream context builder.
func WithBuilder(b *stream.ContextBuilder) Option {
	return func(c *Client) { c.builder = b }
}

// WithRegistry sets the registry transports are created from.
func WithRegistry(r *Registry) Option {
	return func(c *Client) { c.registry = r }
}

// WithMetrics records send metrics on m. Without it the client records on
// the global meter provider, a no-op until one is installed.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New validates cfg and creates a Client.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	kind, _ := transport.ParseKind(cfg.Transport)
	mode, _ := stream.ParseProxyAuthMode(cfg.ProxyAuthMode)

	c := &Client{cfg: cfg, kind: kind}
	if cfg.Proxy != "" {
		proxy, err := uri.ParseStrict(cfg.Proxy)
		if err != nil {
			return nil, errors.Configuration("invalid httpclient proxy").WithCause(err)
		}
		c.proxy = proxy
	}

	for _, opt := range opts {
		opt(c)
	}

	base := c.base
	if base == nil {
		base = logger.GetGlobalLogger()
	}
	c.log = base.WithComponent("httpclient").WithFields(logger.Fields(logger.FieldClient, cfg.Name))

	if c.builder == nil {
		c.builder = stream.NewContextBuilder(stream.WithProxyAuthMode(mode))
	}
	if c.registry == nil {
		c.registry = DefaultRegistry()
	}
	if c.transport == nil {
		t, err := c.registry.Create(kind, Deps{TLS: cfg.TLS, Builder: c.builder, Logger: c.base})
		if err != nil {
			return nil, err
		}
		c.transport = t
	} else {
		c.kind = c.transport.Kind()
	}

	if c.metrics == nil {
		m, err := observability.NewMetrics(observability.Meter("github.com/kbukum/httpkit/httpclient"))
		if err != nil {
			c.log.Warn("send metrics disabled", logger.Fields(logger.FieldError, err.Error()))
		}
		c.metrics = m
	}

	c.initResilience()
	return c, nil
}

func (c *Client) initResilience() {
	if c.cfg.RateLimiter != nil {
		rc := *c.cfg.RateLimiter
		if rc.OnLimit == nil {
			rc.OnLimit = func(name string, wait time.Duration) {
				c.log.Debug("rate limited", logger.Fields("limiter", name, "wait_ms", wait.Milliseconds()))
			}
		}
		c.rl = resilience.NewRateLimiter(rc)
	}
	if c.cfg.Bulkhead != nil {
		bc := *c.cfg.Bulkhead
		if bc.OnReject == nil {
			bc.OnReject = func(name string, err error) {
				c.log.Warn("bulkhead rejected send", logger.Fields("bulkhead", name, logger.FieldError, err.Error()))
			}
		}
		c.bh = resilience.NewBulkhead(bc)
	}
	if c.cfg.CircuitBreaker != nil {
		cc := *c.cfg.CircuitBreaker
		if cc.IsFailure == nil {
			cc.IsFailure = countsAgainstCircuit
		}
		if cc.OnStateChange == nil {
			cc.OnStateChange = func(name string, from, to resilience.State) {
				c.log.Warn("circuit breaker state changed", logger.Fields("breaker", name, "from", from.String(), "to", to.String()))
			}
		}
		c.cb = resilience.NewCircuitBreaker(cc)
	}
}

// Name returns the configured client name.
func (c *Client) Name() string { return c.cfg.Name }

// Kind returns the kind of the transport in use.
func (c *Client) Kind() transport.Kind { return c.kind }

// Config returns the effective configuration, defaults applied.
func (c *Client) Config() Config { return c.cfg }

// IgnoreErrors implements transport.Settings.
func (c *Client) IgnoreErrors() bool { return util.DerefOr(c.cfg.IgnoreErrors, true) }

// MaxRedirects implements transport.Settings.
func (c *Client) MaxRedirects() int { return util.DerefOr(c.cfg.MaxRedirects, DefaultMaxRedirects) }

// Timeout implements transport.Settings.
func (c *Client) Timeout() time.Duration { return c.cfg.Timeout }

// VerifyPeer implements transport.Settings. Peers are verified unless
// tls.skip_verify is set.
func (c *Client) VerifyPeer() bool { return c.cfg.TLS == nil || !c.cfg.TLS.SkipVerify }

// Proxy implements transport.Settings.
func (c *Client) Proxy() *uri.URL { return c.proxy }

// StreamContext returns the stream transport options req would be sent
// with, default headers included.
func (c *Client) StreamContext(req *message.Request) (*stream.Options, error) {
	if req == nil {
		return nil, errors.InvalidRequest("request", "is nil")
	}
	return c.builder.Build(c.prepare(req), c)
}

// Send sends req and returns the final response. Rate limiting, the
// bulkhead and the circuit breaker apply to each attempt; retries apply
// only when configured, and only to errors, so with IgnoreErrors set a 5xx
// response is returned as is.
func (c *Client) Send(ctx context.Context, req *message.Request) (*message.Response, error) {
	if req == nil {
		return nil, errors.InvalidRequest("request", "is nil")
	}
	req = c.prepare(req)

	requestID := logger.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
		ctx = logger.ContextWithRequestID(ctx, requestID)
	}

	obs := observability.NewSend(c.cfg.Name, c.kind.String(), req.Method(), req.URL().Redacted(), requestID, c.metrics)
	if c.proxy != nil {
		obs.Proxy = c.proxy.Authority()
	}
	ctx, span := obs.Start(ctx)

	resp, err := c.sendWithRetry(ctx, req)

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	obs.End(ctx, span, status, errorType(err), err)

	fields := logger.Fields(
		logger.FieldMethod, req.Method(),
		logger.FieldURL, req.URL().Redacted(),
		logger.FieldTransport, c.kind.String(),
		logger.FieldStatus, status,
		logger.FieldDuration, obs.Duration().Milliseconds(),
	)
	if c.proxy != nil {
		fields[logger.FieldProxy] = c.proxy.Authority()
	}
	log := c.log.WithContext(ctx)
	if err != nil {
		log.Warn("send failed", logger.MergeWithError(fields, err))
	} else {
		log.Debug("send completed", fields)
	}
	return resp, err
}

// Close releases idle connections held by the transport.
func (c *Client) Close() error {
	if closer, ok := c.transport.(interface{ Close() }); ok {
		closer.Close()
	}
	return nil
}

// IsAvailable reports false while the circuit breaker is open.
func (c *Client) IsAvailable(context.Context) bool {
	return c.cb == nil || c.cb.State() != resilience.StateOpen
}

func (c *Client) sendWithRetry(ctx context.Context, req *message.Request) (*message.Response, error) {
	if c.cfg.Retry == nil {
		return c.attempt(ctx, req)
	}

	rc := *c.cfg.Retry
	if rc.RetryIf == nil {
		rc.RetryIf = transport.IsRetryable
	}
	if rc.OnRetry == nil {
		rc.OnRetry = func(attempt int, err error, backoff time.Duration) {
			c.log.WithContext(ctx).Debug("retrying send", logger.Fields(
				logger.FieldAttempt, attempt,
				logger.FieldError, err.Error(),
				"backoff_ms", backoff.Milliseconds(),
			))
		}
	}
	return resilience.Retry(ctx, rc, func() (*message.Response, error) {
		return c.attempt(ctx, req)
	})
}

// attempt runs one send through the rate limiter, bulkhead and circuit
// breaker, in that order.
func (c *Client) attempt(ctx context.Context, req *message.Request) (*message.Response, error) {
	if c.rl != nil {
		if err := c.rl.Wait(ctx); err != nil {
			return nil, transport.FromNetError(ctx, err)
		}
	}

	var resp *message.Response
	send := func() error {
		var err error
		resp, err = c.transport.Send(ctx, req, c)
		return err
	}
	guarded := send
	if c.cb != nil {
		guarded = func() error { return c.cb.Execute(send) }
	}

	var err error
	if c.bh != nil {
		err = c.bh.Execute(ctx, guarded)
	} else {
		err = guarded()
	}
	return resp, rejection(ctx, err)
}

// prepare returns req with the configured default headers appended for
// names req does not carry. req itself is left untouched.
func (c *Client) prepare(req *message.Request) *message.Request {
	if len(c.cfg.Headers) == 0 {
		return req
	}
	out := req.Clone()
	for _, line := range c.cfg.Headers {
		if req.Header(message.HeaderName(line)) == "" {
			out.AddHeader(line)
		}
	}
	return out
}

// rejection maps resilience guard errors onto transport errors so callers
// classify them like any other send failure.
func rejection(ctx context.Context, err error) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, resilience.ErrCircuitOpen):
		return &transport.Error{Code: transport.ErrCodeConnection, Message: err.Error(), Err: err}
	case stderrors.Is(err, resilience.ErrBulkheadFull), stderrors.Is(err, resilience.ErrBulkheadTimeout):
		return &transport.Error{Code: transport.ErrCodeRateLimit, Message: err.Error(), Retryable: true, Err: err}
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return transport.FromNetError(ctx, err)
	}
	return err
}

// countsAgainstCircuit trips the breaker on wire failures and 5xx, not on
// request or configuration errors.
func countsAgainstCircuit(err error) bool {
	var te *transport.Error
	if !stderrors.As(err, &te) {
		return false
	}
	switch te.Code {
	case transport.ErrCodeTimeout, transport.ErrCodeConnection, transport.ErrCodeServer, transport.ErrCodeProtocol:
		return true
	}
	return false
}

func errorType(err error) string {
	if err == nil {
		return ""
	}
	var te *transport.Error
	if stderrors.As(err, &te) {
		return te.Code.String()
	}
	if appErr, ok := errors.AsAppError(err); ok {
		return string(appErr.Code)
	}
	return "UNKNOWN"
}
