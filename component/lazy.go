package component

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/httpkit/errors"
)

// Lazy builds a value on first use and keeps it until Close. A failed build
// is retried on the next Get.
type Lazy[T any] struct {
	name  string
	build func(context.Context) (T, error)
	check func(context.Context, T) error
	close func(T) error

	mu    sync.RWMutex
	value T
	ready bool
}

// NewLazy creates a Lazy that builds its value with build.
func NewLazy[T any](name string, build func(context.Context) (T, error)) *Lazy[T] {
	return &Lazy[T]{name: name, build: build}
}

// WithHealthCheck sets the check run by HealthCheck once the value exists.
func (l *Lazy[T]) WithHealthCheck(fn func(context.Context, T) error) *Lazy[T] {
	l.check = fn
	return l
}

// WithCloser sets the function Close runs on the built value.
func (l *Lazy[T]) WithCloser(fn func(T) error) *Lazy[T] {
	l.close = fn
	return l
}

// Name returns the name given to NewLazy.
func (l *Lazy[T]) Name() string { return l.name }

// Get returns the value, building it if needed.
func (l *Lazy[T]) Get(ctx context.Context) (T, error) {
	l.mu.RLock()
	if l.ready {
		v := l.value
		l.mu.RUnlock()
		return v, nil
	}
	l.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ready {
		return l.value, nil
	}

	var zero T
	if l.build == nil {
		return zero, errors.Internal(fmt.Errorf("no builder for %s", l.name))
	}
	v, err := l.build(ctx)
	if err != nil {
		return zero, err
	}
	l.value, l.ready = v, true
	return v, nil
}

// Ready reports whether the value has been built.
func (l *Lazy[T]) Ready() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ready
}

// HealthCheck fails until the value is built, then runs the health check.
func (l *Lazy[T]) HealthCheck(ctx context.Context) error {
	l.mu.RLock()
	v, ready := l.value, l.ready
	l.mu.RUnlock()

	if !ready {
		return fmt.Errorf("%s not initialized", l.name)
	}
	if l.check != nil {
		return l.check(ctx, v)
	}
	return nil
}

// Close runs the closer on the built value and forgets it.
func (l *Lazy[T]) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.ready {
		return nil
	}
	var err error
	if l.close != nil {
		err = l.close(l.value)
	}
	var zero T
	l.value, l.ready = zero, false
	return err
}
