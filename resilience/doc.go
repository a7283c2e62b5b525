// Package resilience holds the fault-tolerance primitives the dispatcher
// composes around every remote call:
//
//   - Retry: retries transient failures with exponential backoff
//   - CircuitBreaker: fails fast while a remote keeps failing (gobreaker)
//   - RateLimiter: token bucket limiting of outgoing calls (x/time/rate)
//   - Bulkhead: bounds concurrent calls (x/sync/semaphore)
//
// The dispatcher nests them as bulkhead, retry, rate limiter, breaker:
//
//	err := bh.Execute(ctx, func() error {
//	    return resilience.RetryFunc(ctx, retryCfg, func(attempt int) error {
//	        if err := rl.Wait(ctx); err != nil {
//	            return err
//	        }
//	        return cb.Execute(func() error { return send(ctx) })
//	    })
//	})
package resilience
