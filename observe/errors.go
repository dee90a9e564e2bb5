package observe

import "errors"

// Telemetry configuration errors. Config.Validate wraps them with the
// offending value.
var (
	ErrInvalidSamplePct       = errors.New("observe: sample_pct must be between 0.0 and 1.0")
	ErrInvalidTracingExporter = errors.New("observe: invalid tracing exporter")
	ErrInvalidMetricsExporter = errors.New("observe: invalid metrics exporter")
	ErrInvalidLogLevel        = errors.New("observe: invalid log level")
	ErrInvalidAttribute       = errors.New("observe: invalid resource attribute")
)

var (
	// ErrNilObserver is returned by MiddlewareFromObserver for a nil Observer.
	ErrNilObserver = errors.New("observe: observer is nil")

	// ErrMissingOperation indicates CheckMeta.Operation is empty.
	ErrMissingOperation = errors.New("observe: operation is required")
)

// Sampling bounds for TracingConfig.SamplePct.
const (
	MinSamplePct = 0.0
	MaxSamplePct = 1.0
)

// Accepted exporter and level names. The empty string leaves the exporter
// unset, which the factories treat like "none".
var (
	ValidTracingExporters = []string{"otlp", "jaeger", "stdout", "none", ""}
	ValidMetricsExporters = []string{"otlp", "prometheus", "stdout", "none", ""}
	ValidLogLevels        = []string{"debug", "info", "warn", "error", ""}
)

// RedactedFields lists log field keys whose values are replaced before
// writing. Verification candidates and signing material appear under these.
var RedactedFields = []string{
	"candidate",
	"secret",
	"api_key",
	"apiKey",
	"credential",
	"token",
	"signing_key",
	"authorization",
	"password",
}
