package testutil

import (
	"context"
	"testing"
)

// THelper ties component lifecycles to a test.
type THelper struct {
	t   testing.TB
	ctx context.Context
}

// T returns a helper for t.
//
//	srv := testutil.NewEchoServer("echo")
//	testutil.T(t).Setup(srv)
func T(t testing.TB) *THelper {
	return &THelper{t: t, ctx: context.Background()}
}

// WithContext sets the context passed to Start, Stop and Reset.
func (h *THelper) WithContext(ctx context.Context) *THelper {
	h.ctx = ctx
	return h
}

// Setup starts c and stops it when the test ends. A start failure is fatal.
func (h *THelper) Setup(c TestComponent) {
	h.t.Helper()
	if err := c.Start(h.ctx); err != nil {
		h.t.Fatalf("start %s: %v", c.Name(), err)
	}
	h.t.Cleanup(func() {
		if err := c.Stop(h.ctx); err != nil {
			h.t.Errorf("stop %s: %v", c.Name(), err)
		}
	})
}

// Reset clears c's recorded state.
func (h *THelper) Reset(c TestComponent) {
	h.t.Helper()
	if err := c.Reset(h.ctx); err != nil {
		h.t.Fatalf("reset %s: %v", c.Name(), err)
	}
}

// Snapshot returns c's recorded state.
func (h *THelper) Snapshot(c TestComponent) interface{} {
	h.t.Helper()
	s, err := c.Snapshot(h.ctx)
	if err != nil {
		h.t.Fatalf("snapshot %s: %v", c.Name(), err)
	}
	return s
}

// Restore puts back state returned by Snapshot.
func (h *THelper) Restore(c TestComponent, snapshot interface{}) {
	h.t.Helper()
	if err := c.Restore(h.ctx, snapshot); err != nil {
		h.t.Fatalf("restore %s: %v", c.Name(), err)
	}
}
