package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/kbukum/httpkit/component"
)

// Manager starts a group of test components through a component.Registry
// and stops them, in reverse order, when the test ends.
//
//	m := testutil.NewManager(t)
//	srv := m.Add(testutil.NewEchoServer("echo")).(*testutil.EchoServer)
//	m.StartAll()
type Manager struct {
	t          testing.TB
	ctx        context.Context
	registry   *component.Registry
	components []TestComponent
}

// NewManager creates a Manager bound to t.
func NewManager(t testing.TB) *Manager {
	m := &Manager{t: t, ctx: context.Background(), registry: component.NewRegistry()}
	t.Cleanup(func() {
		if err := m.registry.StopAll(m.ctx); err != nil {
			t.Errorf("stop test components: %v", err)
		}
	})
	return m
}

// Add registers c and returns it. A duplicate name is fatal.
func (m *Manager) Add(c TestComponent) TestComponent {
	m.t.Helper()
	if err := m.registry.Register(c); err != nil {
		m.t.Fatalf("add %s: %v", c.Name(), err)
	}
	m.components = append(m.components, c)
	return c
}

// StartAll starts every added component not yet running.
func (m *Manager) StartAll() {
	m.t.Helper()
	if err := m.registry.StartAll(m.ctx); err != nil {
		m.t.Fatalf("start test components: %v", err)
	}
}

// ResetAll clears the recorded state of every component.
func (m *Manager) ResetAll() error {
	for _, c := range m.components {
		if err := c.Reset(m.ctx); err != nil {
			return fmt.Errorf("reset %s: %w", c.Name(), err)
		}
	}
	return nil
}

// Health reports the health of every component.
func (m *Manager) Health() []component.Health {
	return m.registry.HealthAll(m.ctx)
}

// Get returns the component added as name, or nil.
func (m *Manager) Get(name string) TestComponent {
	c, _ := m.registry.Get(name).(TestComponent)
	return c
}
