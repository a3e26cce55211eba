// Package resilience provides the fault-tolerance guards a client can put
// in front of its transport.
//
//   - RateLimiter: token bucket that paces outgoing sends
//   - Bulkhead: caps the number of sends in flight
//   - CircuitBreaker: fails fast while the remote end keeps failing
//   - Retry: re-runs a send with exponential backoff
//
// Each config struct carries yaml and mapstructure tags so it can be loaded
// from the client's configuration block. Callback fields are code-only.
//
//	rl := resilience.NewRateLimiter(resilience.RateLimiterConfig{Rate: 100, Burst: 20})
//	bh := resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: 10})
//	cb := resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("api"))
//
//	if err := rl.Wait(ctx); err != nil {
//		return err
//	}
//	err := bh.Execute(ctx, func() error {
//		return cb.Execute(func() error {
//			_, err := tr.Send(ctx, req, settings)
//			return err
//		})
//	})
package resilience
