package observe_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonwraymond/credwatch/observe"
)

func ExampleNewObserver() {
	cfg := observe.DefaultConfig()
	cfg.Version = "1.0.0"
	cfg.Environment = "production"
	cfg.Tracing.Enabled = true

	ctx := context.Background()
	obs, err := observe.NewObserver(ctx, cfg)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	defer func() {
		_ = obs.Shutdown(ctx)
	}()

	fmt.Println("Observer created successfully")
	// Output:
	// Observer created successfully
}

func ExampleNewObserver_validation() {
	cfg := observe.DefaultConfig()
	cfg.Tracing = observe.TracingConfig{Enabled: true, Exporter: "zipkin", SamplePct: 1}

	_, err := observe.NewObserver(context.Background(), cfg)
	if errors.Is(err, observe.ErrInvalidTracingExporter) {
		fmt.Println("Caught:", err)
	}
	// Output:
	// Caught: observe: invalid tracing exporter: "zipkin"
}

func ExampleCheckMeta_SpanName() {
	meta := observe.CheckMeta{Service: "stripe", Operation: observe.OpCheck}
	fmt.Println(meta.SpanName())
	// Output:
	// credential.check
}

func ExampleLogger_With() {
	var buf bytes.Buffer
	logger := observe.NewLoggerWithWriter("info", &buf)

	logger.With(observe.F("service", "openai")).Info(context.Background(), "testing candidate",
		observe.F("candidate", "sk-live-123"),
	)

	output := buf.String()
	fmt.Println("Contains service:", strings.Contains(output, `"service":"openai"`))
	fmt.Println("Candidate redacted:", strings.Contains(output, `"candidate":"[REDACTED]"`))
	// Output:
	// Contains service: true
	// Candidate redacted: true
}

func ExampleMiddleware_Wrap() {
	ctx := context.Background()

	cfg := observe.Config{
		ServiceName: "credwatch",
		Tracing:     observe.TracingConfig{Enabled: true, Exporter: "none"},
		Metrics:     observe.MetricsConfig{Enabled: true, Exporter: "none"},
		Logging:     observe.LoggingConfig{Enabled: false},
	}
	obs, _ := observe.NewObserver(ctx, cfg)
	defer func() {
		_ = obs.Shutdown(ctx)
	}()

	mw, _ := observe.MiddlewareFromObserver(obs)

	check := mw.Wrap(func(ctx context.Context, meta observe.CheckMeta) observe.Outcome {
		return observe.Outcome{Status: "operational"}
	})

	outcome := check(ctx, observe.CheckMeta{Service: "github", Operation: observe.OpCheck})
	fmt.Println("Status:", outcome.Status)
	// Output:
	// Status: operational
}

func ExampleParseLogLevel() {
	levels := []string{"debug", "info", "warn", "error", "unknown"}
	for _, s := range levels {
		level := observe.ParseLogLevel(s)
		fmt.Printf("%s -> %s\n", s, level)
	}
	// Output:
	// debug -> debug
	// info -> info
	// warn -> warn
	// error -> error
	// unknown -> info
}
