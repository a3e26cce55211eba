package component

import "context"

// HealthStatus is the health state a component reports.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health is a component's health report.
type Health struct {
	Name    string       `json:"name" yaml:"name"`
	Status  HealthStatus `json:"status" yaml:"status"`
	Message string       `json:"message,omitempty" yaml:"message,omitempty"`
}

// Component is something with a start/stop lifecycle: an HTTP client, a
// test server, a forward proxy.
type Component interface {
	// Name is unique within a Registry.
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Health(ctx context.Context) Health
}

// Description summarises a component for display.
type Description struct {
	// Name defaults to the component's Name() when empty.
	Name string `json:"name" yaml:"name"`
	// Type is a category such as "http-client" or "forward-proxy".
	Type string `json:"type" yaml:"type"`
	// Details is a one-line summary, e.g. "transport=stream timeout=5s".
	Details string `json:"details,omitempty" yaml:"details,omitempty"`
}

// Describable is implemented by components that can describe themselves.
type Describable interface {
	Describe() Description
}
