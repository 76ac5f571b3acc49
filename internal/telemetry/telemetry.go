// Package telemetry installs the OpenTelemetry tracer provider. Spans are always
// recorded so request logs carry trace ids; they are exported over OTLP/gRPC only
// when an endpoint is configured.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Config describes the service and the optional collector endpoint.
type Config struct {
	ServiceName    string
	ServiceVersion string
	// Endpoint is host:port or a URL such as http://localhost:4317. An http scheme
	// selects a plaintext connection.
	Endpoint string
}

// ShutdownFunc flushes pending spans and releases the exporter.
type ShutdownFunc func(context.Context) error

// Setup installs a global tracer provider and W3C trace-context propagation.
func Setup(ctx context.Context, cfg Config) (ShutdownFunc, error) {
	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
	)
	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}

	if cfg.Endpoint != "" {
		host, insecure, err := parseEndpoint(cfg.Endpoint)
		if err != nil {
			return nil, err
		}
		exporterOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(host)}
		if insecure {
			exporterOpts = append(exporterOpts, otlptracegrpc.WithInsecure())
		}
		exporter, err := otlptracegrpc.New(ctx, exporterOpts...)
		if err != nil {
			return nil, fmt.Errorf("creating otlp trace exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp.Shutdown, nil
}

// parseEndpoint returns the host:port to dial and whether to skip TLS.
func parseEndpoint(endpoint string) (string, bool, error) {
	if !strings.Contains(endpoint, "://") {
		return endpoint, false, nil
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("parsing otlp endpoint %q: %w", endpoint, err)
	}
	if u.Host == "" {
		return "", false, errors.New("otlp endpoint has no host: " + endpoint)
	}
	return u.Host, u.Scheme == "http", nil
}
