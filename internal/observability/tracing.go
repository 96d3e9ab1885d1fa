package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "modellerbridge/bridge"

// SetupTracing installs an OTLP/HTTP tracer provider when endpoint is set.
// With no endpoint the global no-op provider is left in place.
func SetupTracing(ctx context.Context, endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("observability: otlp exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", service),
		)),
	)
	otel.SetTracerProvider(tp)
	logger := ComponentLogger("tracing")
	logger.Info().Str("endpoint", endpoint).Msg("observability.SetupTracing exporter ready")
	return tp.Shutdown, nil
}

// StartToolSpan opens a span for one tool run. The returned func ends it.
func StartToolSpan(ctx context.Context, namespace, mode string) (context.Context, func(outcome string, err error)) {
	return startToolSpan(ctx, otel.Tracer(tracerName), namespace, mode)
}

func startToolSpan(ctx context.Context, tracer trace.Tracer, namespace, mode string) (context.Context, func(string, error)) {
	ctx, span := tracer.Start(ctx, "tool:"+namespace,
		trace.WithAttributes(
			attribute.String("modellerbridge.tool", namespace),
			attribute.String("modellerbridge.mode", mode),
		),
	)
	return ctx, func(outcome string, err error) {
		span.SetAttributes(attribute.String("modellerbridge.outcome", outcome))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}
