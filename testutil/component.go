package testutil

import (
	"context"

	"github.com/kbukum/httpkit/component"
)

// TestComponent is a component whose recorded state can be cleared, saved
// and put back between test cases.
type TestComponent interface {
	component.Component

	// Reset clears recorded state; the component keeps running.
	Reset(ctx context.Context) error
	// Snapshot returns a copy of the recorded state.
	Snapshot(ctx context.Context) (interface{}, error)
	// Restore replaces the recorded state with a Snapshot result.
	Restore(ctx context.Context, snapshot interface{}) error
}
