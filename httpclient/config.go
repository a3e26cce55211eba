package httpclient

import (
	"time"

	"github.com/kbukum/httpkit/errors"
	"github.com/kbukum/httpkit/resilience"
	"github.com/kbukum/httpkit/transport"
	"github.com/kbukum/httpkit/transport/stream"
	"github.com/kbukum/httpkit/util"
	"github.com/kbukum/httpkit/validation"
)

const (
	DefaultName         = "default"
	DefaultTransport    = "stream"
	DefaultMaxRedirects = 5
	DefaultTimeout      = 5 * time.Second
)

// Config configures a Client. It is loaded from the "httpclient" section of
// the config file; see LoadConfig.
type Config struct {
	// Name identifies the client in logs, spans and metrics.
	Name string `yaml:"name" mapstructure:"name"`

	// Transport selects the transport variant: stream or native.
	Transport string `yaml:"transport" mapstructure:"transport" validate:"oneof=stream native"`

	// IgnoreErrors returns 4xx/5xx responses without an error. Defaults to true.
	IgnoreErrors *bool `yaml:"ignore_errors" mapstructure:"ignore_errors"`

	// MaxRedirects caps followed redirects; 0 disables following. Defaults to 5.
	MaxRedirects *int `yaml:"max_redirects" mapstructure:"max_redirects" validate:"omitempty,min=0"`

	// Timeout bounds a whole send, redirects included. Defaults to 5s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gt=0"`

	// Proxy is an http, https, socks5 or socks5h proxy URL, credentials allowed.
	Proxy string `yaml:"proxy" mapstructure:"proxy" validate:"omitempty,proxy_url"`

	// ProxyAuthMode is header or full_uri; see stream.ProxyAuthMode.
	ProxyAuthMode string `yaml:"proxy_auth_mode" mapstructure:"proxy_auth_mode" validate:"oneof=header full_uri"`

	// Headers are "Name: value" lines added to every request that does not
	// already carry a header of the same name.
	Headers []string `yaml:"headers" mapstructure:"headers" validate:"dive,header_line"`

	// TLS configures certificate verification and client certificates.
	// skip_verify turns peer verification off.
	TLS *TLSConfig `yaml:"tls" mapstructure:"tls"`

	// Retry, CircuitBreaker, RateLimiter and Bulkhead are off when nil.
	Retry          *resilience.RetryConfig          `yaml:"retry" mapstructure:"retry"`
	CircuitBreaker *resilience.CircuitBreakerConfig `yaml:"circuit_breaker" mapstructure:"circuit_breaker"`
	RateLimiter    *resilience.RateLimiterConfig    `yaml:"rate_limiter" mapstructure:"rate_limiter"`
	Bulkhead       *resilience.BulkheadConfig       `yaml:"bulkhead" mapstructure:"bulkhead"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.Transport == "" {
		c.Transport = DefaultTransport
	}
	if c.IgnoreErrors == nil {
		c.IgnoreErrors = util.Ptr(true)
	}
	if c.MaxRedirects == nil {
		c.MaxRedirects = util.Ptr(DefaultMaxRedirects)
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.ProxyAuthMode == "" {
		c.ProxyAuthMode = stream.ProxyAuthHeader.String()
	}
	if c.CircuitBreaker != nil && c.CircuitBreaker.Name == "" {
		c.CircuitBreaker.Name = c.Name
	}
	if c.RateLimiter != nil && c.RateLimiter.Name == "" {
		c.RateLimiter.Name = c.Name
	}
	if c.Bulkhead != nil && c.Bulkhead.Name == "" {
		c.Bulkhead.Name = c.Name
	}
}

// Validate checks the configuration after ApplyDefaults and returns a
// CONFIGURATION_ERROR naming every bad field.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return errors.Configuration("invalid httpclient config").WithCause(err)
	}
	if _, err := transport.ParseKind(c.Transport); err != nil {
		return errors.Configuration("invalid httpclient transport").WithCause(err)
	}
	if _, err := stream.ParseProxyAuthMode(c.ProxyAuthMode); err != nil {
		return errors.Configuration("invalid httpclient proxy_auth_mode").WithCause(err)
	}
	if c.TLS != nil {
		if err := c.TLS.Validate(); err != nil {
			return errors.Configuration("invalid httpclient tls").WithCause(err)
		}
	}
	return nil
}

// DefaultRetryConfig returns a retry config that retries transport errors
// marked retryable: timeouts, connection failures, 429 and 5xx.
func DefaultRetryConfig() *resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	cfg.RetryIf = transport.IsRetryable
	return &cfg
}

// DefaultCircuitBreakerConfig returns a default circuit breaker config.
func DefaultCircuitBreakerConfig(name string) *resilience.CircuitBreakerConfig {
	cfg := resilience.DefaultCircuitBreakerConfig(name)
	return &cfg
}

// DefaultRateLimiterConfig returns a default rate limiter config.
func DefaultRateLimiterConfig(name string) *resilience.RateLimiterConfig {
	cfg := resilience.DefaultRateLimiterConfig(name)
	return &cfg
}

// DefaultBulkheadConfig returns a default bulkhead config.
func DefaultBulkheadConfig(name string) *resilience.BulkheadConfig {
	cfg := resilience.DefaultBulkheadConfig(name)
	return &cfg
}
