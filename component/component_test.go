package component

import (
	"context"
	"fmt"
	"testing"
)

type mockComponent struct {
	name       string
	startErr   error
	stopErr    error
	health     Health
	startOrder *[]string
	stopOrder  *[]string
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	if m.startOrder != nil {
		*m.startOrder = append(*m.startOrder, m.name)
	}
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	if m.stopOrder != nil {
		*m.stopOrder = append(*m.stopOrder, m.name)
	}
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) Health {
	return m.health
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("expected non-nil registry")
	}
}

func TestRegister(t *testing.T) {
	r := NewRegistry()
	c := &mockComponent{name: "echo", health: Health{Name: "echo", Status: StatusHealthy}}

	if err := r.Register(c); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	c := &mockComponent{name: "echo"}
	r.Register(c)

	err := r.Register(&mockComponent{name: "echo"})
	if err == nil {
		t.Error("expected error for duplicate registration")
	}
}

func TestGet(t *testing.T) {
	r := NewRegistry()
	c := &mockComponent{name: "echo"}
	r.Register(c)

	got := r.Get("echo")
	if got == nil {
		t.Fatal("expected to get registered component")
	}
	if got.Name() != "echo" {
		t.Errorf("expected 'echo', got %q", got.Name())
	}
}

func TestGetNotFound(t *testing.T) {
	r := NewRegistry()
	got := r.Get("missing")
	if got != nil {
		t.Error("expected nil for unregistered component")
	}
}

func TestStartAll(t *testing.T) {
	r := NewRegistry()
	order := []string{}

	r.Register(&mockComponent{
		name: "echo", startOrder: &order,
		health: Health{Name: "echo", Status: StatusHealthy},
	})
	r.Register(&mockComponent{
		name: "proxy", startOrder: &order,
		health: Health{Name: "proxy", Status: StatusHealthy},
	})

	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}

	if len(order) != 2 {
		t.Fatalf("expected 2 starts, got %d", len(order))
	}
	if order[0] != "echo" || order[1] != "proxy" {
		t.Errorf("expected start order [echo, proxy], got %v", order)
	}
}

func TestStartAllError(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockComponent{name: "echo", startErr: fmt.Errorf("connection refused")})

	err := r.StartAll(context.Background())
	if err == nil {
		t.Error("expected error from StartAll")
	}
}

func TestStopAllReverseOrder(t *testing.T) {
	r := NewRegistry()
	order := []string{}

	r.Register(&mockComponent{name: "echo", stopOrder: &order, health: Health{Name: "echo", Status: StatusHealthy}})
	r.Register(&mockComponent{name: "proxy", stopOrder: &order, health: Health{Name: "proxy", Status: StatusHealthy}})
	r.Register(&mockComponent{name: "client", stopOrder: &order, health: Health{Name: "client", Status: StatusHealthy}})

	r.StartAll(context.Background())
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}

	if len(order) != 3 {
		t.Fatalf("expected 3 stops, got %d", len(order))
	}
	if order[0] != "client" || order[1] != "proxy" || order[2] != "echo" {
		t.Errorf("expected reverse stop order [client, proxy, echo], got %v", order)
	}
}

func TestStopAllSkipsUnstarted(t *testing.T) {
	r := NewRegistry()
	order := []string{}
	r.Register(&mockComponent{name: "echo", stopOrder: &order})

	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if len(order) != 0 {
		t.Errorf("expected 0 stops for unstarted components, got %d", len(order))
	}
}

func TestStopAllWithErrors(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockComponent{
		name: "echo", stopErr: fmt.Errorf("stop failed"),
		health: Health{Name: "echo", Status: StatusHealthy},
	})
	r.StartAll(context.Background())

	err := r.StopAll(context.Background())
	if err == nil {
		t.Error("expected error from StopAll")
	}
}

func TestHealthAll(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockComponent{
		name:   "echo",
		health: Health{Name: "echo", Status: StatusHealthy, Message: "connected"},
	})
	r.Register(&mockComponent{
		name:   "proxy",
		health: Health{Name: "proxy", Status: StatusUnhealthy, Message: "timeout"},
	})

	results := r.HealthAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Status != StatusHealthy {
		t.Errorf("expected echo healthy, got %s", results[0].Status)
	}
	if results[1].Status != StatusUnhealthy {
		t.Errorf("expected proxy unhealthy, got %s", results[1].Status)
	}
}

func TestHealthStatusConstants(t *testing.T) {
	if StatusHealthy != "healthy" {
		t.Errorf("expected 'healthy', got %q", StatusHealthy)
	}
	if StatusUnhealthy != "unhealthy" {
		t.Errorf("expected 'unhealthy', got %q", StatusUnhealthy)
	}
	if StatusDegraded != "degraded" {
		t.Errorf("expected 'degraded', got %q", StatusDegraded)
	}
}

func TestStartAllSkipsStarted(t *testing.T) {
	r := NewRegistry()
	order := []string{}
	r.Register(&mockComponent{name: "client", startOrder: &order})

	r.StartAll(context.Background())
	r.StartAll(context.Background())
	if len(order) != 1 {
		t.Errorf("expected a single start, got %v", order)
	}
}

func TestStopAllContinuesPastErrors(t *testing.T) {
	r := NewRegistry()
	order := []string{}
	r.Register(&mockComponent{name: "echo", stopOrder: &order})
	r.Register(&mockComponent{name: "proxy", stopOrder: &order, stopErr: fmt.Errorf("boom")})
	r.StartAll(context.Background())

	if err := r.StopAll(context.Background()); err == nil {
		t.Error("expected joined stop error")
	}
	if len(order) != 2 {
		t.Errorf("expected both components stopped, got %v", order)
	}
}

type describedComponent struct {
	mockComponent
	desc Description
}

func (d *describedComponent) Describe() Description { return d.desc }

func TestDescribe(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockComponent{name: "plain"})
	r.Register(&describedComponent{
		mockComponent: mockComponent{name: "client"},
		desc:          Description{Type: "http-client", Details: "transport=stream"},
	})

	got := r.Describe()
	if len(got) != 1 {
		t.Fatalf("expected 1 description, got %d", len(got))
	}
	if got[0].Name != "client" || got[0].Type != "http-client" {
		t.Errorf("unexpected description %+v", got[0])
	}
}

func TestLazy(t *testing.T) {
	builds := 0
	l := NewLazy("client", func(ctx context.Context) (int, error) {
		builds++
		return 42, nil
	})

	if l.Ready() {
		t.Error("expected not ready before Get")
	}
	if err := l.HealthCheck(context.Background()); err == nil {
		t.Error("expected health check to fail before Get")
	}

	for i := 0; i < 2; i++ {
		v, err := l.Get(context.Background())
		if err != nil || v != 42 {
			t.Fatalf("Get: %v, %v", v, err)
		}
	}
	if builds != 1 {
		t.Errorf("expected one build, got %d", builds)
	}
}

func TestLazyBuildFailureRetries(t *testing.T) {
	fail := true
	l := NewLazy("client", func(ctx context.Context) (string, error) {
		if fail {
			return "", fmt.Errorf("not yet")
		}
		return "ok", nil
	})

	if _, err := l.Get(context.Background()); err == nil {
		t.Fatal("expected build error")
	}
	fail = false
	if v, err := l.Get(context.Background()); err != nil || v != "ok" {
		t.Fatalf("expected retry to succeed, got %q, %v", v, err)
	}
}

func TestLazyHealthCheckAndClose(t *testing.T) {
	closed := ""
	l := NewLazy("client", func(ctx context.Context) (string, error) { return "conn", nil }).
		WithHealthCheck(func(ctx context.Context, v string) error { return fmt.Errorf("%s degraded", v) }).
		WithCloser(func(v string) error {
			closed = v
			return nil
		})

	l.Get(context.Background())
	if err := l.HealthCheck(context.Background()); err == nil {
		t.Error("expected custom health check error")
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if closed != "conn" {
		t.Errorf("closer got %q", closed)
	}
	if l.Ready() {
		t.Error("expected not ready after Close")
	}
}
