// Package telemetry configures the global OpenTelemetry tracer provider.
//
// Tracing is disabled unless one of the standard OTLP endpoint environment
// variables is set, in which case spans are exported over OTLP/gRPC. The
// exporter reads the remaining OTEL_EXPORTER_OTLP_* variables itself.
package telemetry

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/macropower/patsub/pkg/version"
)

const ServiceName = "patsub"

// EndpointEnvVars enable tracing when any of them is set.
var EndpointEnvVars = []string{
	"OTEL_EXPORTER_OTLP_TRACES_ENDPOINT",
	"OTEL_EXPORTER_OTLP_ENDPOINT",
}

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(ctx context.Context) error

// Enabled reports whether an OTLP endpoint is configured.
func Enabled() bool {
	for _, name := range EndpointEnvVars {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			return true
		}
	}

	return false
}

// Setup installs a batching tracer provider as the global provider. When no
// endpoint is configured it leaves the no-op provider in place and returns a
// no-op [ShutdownFunc].
func Setup(ctx context.Context) (ShutdownFunc, error) {
	if !Enabled() {
		return func(context.Context) error { return nil }, nil
	}

	exp, err := otlptracegrpc.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", ServiceName),
			attribute.String("service.version", version.GetVersion()),
		)),
	)

	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}
