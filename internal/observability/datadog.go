// Package observability wires optional trace export for the CLI tools.
//
// Traces are exported to a local Datadog Agent via OTLP HTTP; the agent
// handles authentication, buffering, and forwarding. Tracing is
// best-effort: if the exporter cannot be created the tools run without it.
package observability

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/firebase/genkit/go/core/tracing"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Config identifies the local agent and the service reporting to it.
type Config struct {
	AgentHost   string
	Environment string
	ServiceName string
}

// SetupDatadog registers an OTLP span processor with Genkit's tracer
// provider and returns a shutdown function. Must run before genkit.Init so
// the provider is ready when plugins start producing spans.
func SetupDatadog(ctx context.Context, cfg Config) func() {
	agentHost := cfg.AgentHost
	if agentHost == "" {
		agentHost = "localhost:4318"
	}

	// Genkit's TracerProvider picks these up at Init.
	// SAFETY: os.Setenv is not concurrent-safe, but setup runs exactly once
	// at startup before any goroutines are spawned.
	if cfg.ServiceName != "" {
		_ = os.Setenv("OTEL_SERVICE_NAME", cfg.ServiceName)
	}
	if cfg.Environment != "" {
		_ = os.Setenv("OTEL_RESOURCE_ATTRIBUTES", "deployment.environment="+cfg.Environment)
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(agentHost),
		otlptracehttp.WithInsecure(), // local agent, no TLS
	)
	if err != nil {
		slog.Warn("creating trace exporter, tracing disabled", "error", err)
		return func() {}
	}

	processor := sdktrace.NewBatchSpanProcessor(exporter)
	tracing.TracerProvider().RegisterSpanProcessor(processor)

	slog.Debug("tracing enabled",
		"agent", agentHost,
		"service", cfg.ServiceName,
		"environment", cfg.Environment,
	)

	shutdown := tracing.TracerProvider().Shutdown

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Warn("shutting down tracer provider", "error", err)
		}
	}
}
