// Package resilience provides the timeout and retry policy used for
// credential verification calls.
//
// Every attempt is raced against a deadline. Failures are classified as
// transient (timeouts, connection resets and refusals, socket errors,
// generic fetch failures) or permanent (everything else, including an
// explicit credential rejection). Transient failures are retried up to
// MaxRetries additional times, strictly one after another, with jittered
// exponential backoff; permanent failures return immediately.
//
// # Usage
//
//	policy := resilience.DefaultPolicy() // 10s timeout, 2 retries, 1s base delay
//
//	latency, err := resilience.Execute(ctx, policy, func(ctx context.Context) (time.Duration, error) {
//	    return verifier.Ping(ctx)
//	})
//
// An Executor additionally shares a token-bucket RateLimiter across every
// call to one endpoint:
//
//	exec := resilience.NewExecutor(policy,
//	    resilience.WithRateLimiter(resilience.NewRateLimiter(resilience.RateLimiterConfig{Rate: 5})),
//	)
//	out, err := resilience.Do(ctx, exec, op)
package resilience
