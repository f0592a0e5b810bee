// Package telemetry installs the OpenTelemetry tracer provider that
// receives the session client's request spans.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

const serviceName = "adminctl"

// ShutdownFunc flushes and stops the provider.
type ShutdownFunc func(ctx context.Context) error

// Setup exports spans over OTLP/HTTP to endpoint and registers the provider
// globally. An empty endpoint leaves the no-op provider in place.
func Setup(ctx context.Context, endpoint, version string) (ShutdownFunc, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := NewProvider(version, sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

// NewProvider builds a tracer provider tagged with the service resource.
func NewProvider(version string, opts ...sdktrace.TracerProviderOption) *sdktrace.TracerProvider {
	res := resource.NewSchemaless(
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(version),
	)
	return sdktrace.NewTracerProvider(append([]sdktrace.TracerProviderOption{sdktrace.WithResource(res)}, opts...)...)
}
