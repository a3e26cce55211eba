package httpclient

import (
	"context"
	"fmt"

	"github.com/kbukum/httpkit/component"
	"github.com/kbukum/httpkit/errors"
	"github.com/kbukum/httpkit/uri"
	"github.com/kbukum/httpkit/util"
)

// Component manages a Client's lifecycle. The client is built on Start, or
// on the first call to Client.
type Component struct {
	cfg    Config
	client *component.Lazy[*Client]
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates a component that builds a Client from cfg and opts.
func NewComponent(cfg Config, opts ...Option) *Component {
	cfg.ApplyDefaults()
	c := &Component{cfg: cfg}
	c.client = component.NewLazy(cfg.Name, func(context.Context) (*Client, error) {
		return New(cfg, opts...)
	}).WithHealthCheck(func(ctx context.Context, cl *Client) error {
		if !cl.IsAvailable(ctx) {
			return fmt.Errorf("circuit open")
		}
		return nil
	}).WithCloser(func(cl *Client) error {
		return cl.Close()
	})
	return c
}

// Name returns the client name.
func (c *Component) Name() string { return c.cfg.Name }

// Start builds the client.
func (c *Component) Start(ctx context.Context) error {
	_, err := c.client.Get(ctx)
	return err
}

// Stop closes the client's idle connections.
func (c *Component) Stop(context.Context) error {
	return c.client.Close()
}

// Health is unhealthy before Start and while the circuit breaker is open.
func (c *Component) Health(ctx context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	if err := c.client.HealthCheck(ctx); err != nil {
		h.Status = component.StatusUnhealthy
		h.Message = err.Error()
	}
	return h
}

// Describe summarises the client configuration. Proxy credentials are
// redacted.
func (c *Component) Describe() component.Description {
	details := fmt.Sprintf("transport=%s timeout=%s max_redirects=%d", c.cfg.Transport, c.cfg.Timeout, util.Deref(c.cfg.MaxRedirects))
	if c.cfg.Proxy != "" {
		details += " proxy=" + uri.Parse(c.cfg.Proxy).Redacted()
	}
	return component.Description{Name: c.Name(), Type: "http-client", Details: details}
}

// Client returns the client, building it if Start has not run.
func (c *Component) Client(ctx context.Context) (*Client, error) {
	cl, err := c.client.Get(ctx)
	if err != nil {
		if _, ok := errors.AsAppError(err); ok {
			return nil, err
		}
		return nil, errors.Internal(err)
	}
	return cl, nil
}
