// Package observe provides observability primitives for credential checks.
//
// It is a pure instrumentation library: no verification, no transport, no I/O
// beyond exporter setup. The health service wraps every check, test and probe
// in a Middleware so each operation gets a span, metrics and one log line.
//
// Exported telemetry carries the "credwatch" service name unless configured
// otherwise, and spans and instruments use the InstrumentationName scope.
// NewObserver installs otel globals only when Config.RegisterGlobal is set.
//
// Log fields that may carry secret material (see RedactedFields) are replaced
// with "[REDACTED]" before they are written.
package observe
