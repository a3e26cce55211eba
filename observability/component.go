package observability

import (
	"context"
	stderrors "errors"
	"sync"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/httpkit/component"
	"github.com/kbukum/httpkit/errors"
	"github.com/kbukum/httpkit/util"
	"github.com/kbukum/httpkit/validation"
)

// Config groups the tracing and metrics sections of a config file.
//
//	observability:
//	  tracing:
//	    enabled: true
//	    endpoint: otel-collector:4318
//	  metrics:
//	    enabled: true
//	    interval: 30s
type Config struct {
	Tracing TracerConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics MeterConfig  `yaml:"metrics" mapstructure:"metrics"`
}

// ApplyDefaults fills unset fields of the enabled sections, taking the
// service identity from the surrounding config.
func (c *Config) ApplyDefaults(service, version, environment string) {
	if c.Tracing.Enabled {
		d := DefaultTracerConfig(service)
		c.Tracing.ServiceName = util.Coalesce(c.Tracing.ServiceName, service)
		c.Tracing.ServiceVersion = util.Coalesce(c.Tracing.ServiceVersion, version, d.ServiceVersion)
		c.Tracing.Environment = util.Coalesce(c.Tracing.Environment, environment)
		c.Tracing.Endpoint = util.Coalesce(c.Tracing.Endpoint, d.Endpoint)
		if c.Tracing.SampleRate == 0 {
			c.Tracing.SampleRate = d.SampleRate
		}
	}
	if c.Metrics.Enabled {
		d := DefaultMeterConfig(service)
		c.Metrics.ServiceName = util.Coalesce(c.Metrics.ServiceName, service)
		c.Metrics.ServiceVersion = util.Coalesce(c.Metrics.ServiceVersion, version, d.ServiceVersion)
		c.Metrics.Environment = util.Coalesce(c.Metrics.Environment, environment)
		c.Metrics.Endpoint = util.Coalesce(c.Metrics.Endpoint, d.Endpoint)
		if c.Metrics.Interval == 0 {
			c.Metrics.Interval = d.Interval
		}
	}
}

// Enabled reports whether either exporter is on.
func (c *Config) Enabled() bool {
	return c.Tracing.Enabled || c.Metrics.Enabled
}

// Validate checks the enabled sections.
func (c *Config) Validate() error {
	v := validation.New()
	if c.Tracing.Enabled {
		v.Required("tracing.endpoint", c.Tracing.Endpoint).
			Custom(c.Tracing.SampleRate >= 0 && c.Tracing.SampleRate <= 1,
				"tracing.sample_rate", "must be between 0 and 1")
	}
	if c.Metrics.Enabled {
		v.Required("metrics.endpoint", c.Metrics.Endpoint).
			Custom(c.Metrics.Interval >= 0, "metrics.interval", "must not be negative")
	}
	if err := v.Validate(); err != nil {
		return errors.Configuration("invalid observability config").WithCause(err)
	}
	return nil
}

// Component installs the configured tracer and meter providers on Start
// and flushes them on Stop. A disabled section leaves the global no-op
// provider in place.
type Component struct {
	cfg Config

	mu sync.Mutex
	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider
}

var _ component.Component = (*Component)(nil)

// NewComponent returns a component for cfg.
func NewComponent(cfg Config) *Component {
	return &Component{cfg: cfg}
}

// Name implements component.Component.
func (c *Component) Name() string { return "observability" }

// Start implements component.Component.
func (c *Component) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfg.Tracing.Enabled && c.tp == nil {
		tp, err := InitTracer(ctx, &c.cfg.Tracing)
		if err != nil {
			return errors.Internal(err)
		}
		c.tp = tp
	}
	if c.cfg.Metrics.Enabled && c.mp == nil {
		mp, err := InitMeter(ctx, &c.cfg.Metrics)
		if err != nil {
			return errors.Internal(err)
		}
		c.mp = mp
	}
	return nil
}

// Stop implements component.Component.
func (c *Component) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	if c.tp != nil {
		errs = append(errs, c.tp.Shutdown(ctx))
		c.tp = nil
	}
	if c.mp != nil {
		errs = append(errs, c.mp.Shutdown(ctx))
		c.mp = nil
	}
	return stderrors.Join(errs...)
}

// Health implements component.Component.
func (c *Component) Health(_ context.Context) component.Health {
	c.mu.Lock()
	defer c.mu.Unlock()

	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	if (c.cfg.Tracing.Enabled && c.tp == nil) || (c.cfg.Metrics.Enabled && c.mp == nil) {
		h.Status = component.StatusUnhealthy
		h.Message = "not started"
	}
	return h
}

// Describe implements component.Describable.
func (c *Component) Describe() component.Description {
	d := component.Description{Name: c.Name(), Type: "observability", Details: "disabled"}
	switch {
	case c.cfg.Tracing.Enabled && c.cfg.Metrics.Enabled:
		d.Details = "tracing+metrics endpoint=" + c.cfg.Tracing.Endpoint
	case c.cfg.Tracing.Enabled:
		d.Details = "tracing endpoint=" + c.cfg.Tracing.Endpoint
	case c.cfg.Metrics.Enabled:
		d.Details = "metrics endpoint=" + c.cfg.Metrics.Endpoint
	}
	return d
}
