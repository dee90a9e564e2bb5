// Package health verifies integration credentials and caches the outcome.
//
// A Service sits between callers and a remote Verifier. Each check normalizes
// the service identifier, serves a cached HealthResult when one is younger
// than the cache TTL, and otherwise calls the verifier through a
// resilience.Executor (per-attempt timeout, jittered retries for transient
// failures). Whatever happens is normalized into a HealthResult and written
// through to the cache, errors included, so callers only ever inspect Status.
//
// # Basic Usage
//
//	svc, err := health.NewService(health.DefaultConfig(), verifier)
//	if err != nil {
//	    return err
//	}
//	result := svc.Check(ctx, "stripe", false)
//	if result.IsError() {
//	    log.Printf("stripe: %s", result.Message)
//	}
//
// # Batches
//
// CheckAll runs checks in chunks of BatchOptions.Concurrency. Results come back
// in input order; OnProgress and OnResult fire in completion order.
//
// # Testing a replacement credential
//
// TestWithoutSaving verifies a candidate value without touching the cache, so
// a bad replacement cannot overwrite the active credential's status.
package health
