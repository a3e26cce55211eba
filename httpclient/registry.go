package httpclient

import (
	"sort"
	"sync"

	"github.com/kbukum/httpkit/errors"
	"github.com/kbukum/httpkit/logger"
	"github.com/kbukum/httpkit/security"
	"github.com/kbukum/httpkit/transport"
	"github.com/kbukum/httpkit/transport/native"
	"github.com/kbukum/httpkit/transport/stream"
)

// Deps carries what a transport factory may need from the client.
type Deps struct {
	TLS     *security.TLSConfig
	Builder *stream.ContextBuilder
	Logger  *logger.Logger
}

// Factory creates a transport.
type Factory func(Deps) transport.Transport

// Registry maps transport kinds to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[transport.Kind]Factory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[transport.Kind]Factory)}
}

// DefaultRegistry returns a Registry with the stream and native transports.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(transport.KindStream, newStream)
	r.Register(transport.KindNative, newNative)
	return r
}

// Register sets the factory for kind, replacing any earlier one.
func (r *Registry) Register(kind transport.Kind, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[kind] = f
}

// Create builds a transport of the given kind.
func (r *Registry) Create(kind transport.Kind, deps Deps) (transport.Transport, error) {
	r.mu.RLock()
	f, ok := r.factories[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.Unsupported("transport", kind.String())
	}
	return f(deps), nil
}

// Kinds returns the registered kinds in ascending order.
func (r *Registry) Kinds() []transport.Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]transport.Kind, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

func newStream(d Deps) transport.Transport {
	opts := []stream.Option{stream.WithDialer(&stream.Dialer{TLS: d.TLS})}
	if d.Builder != nil {
		opts = append(opts, stream.WithBuilder(d.Builder))
	}
	if d.Logger != nil {
		opts = append(opts, stream.WithLogger(d.Logger.WithComponent("stream")))
	}
	return stream.New(opts...)
}

func newNative(d Deps) transport.Transport {
	opts := []native.Option{native.WithTLS(d.TLS)}
	if d.Logger != nil {
		opts = append(opts, native.WithLogger(d.Logger.WithComponent("native")))
	}
	return native.New(opts...)
}
