package observability

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/danmuck/modellerbridge/internal/testutil/testlog"
)

func TestToolSpanRecordsOutcome(t *testing.T) {
	testlog.Start(t)

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())

	_, end := startToolSpan(context.Background(), tp.Tracer("test"), "tmg2.Assign", "named")
	end("runtime_error", errors.New("boom"))

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected one span, got %d", len(spans))
	}
	if spans[0].Name != "tool:tmg2.Assign" {
		t.Fatalf("unexpected span name: %q", spans[0].Name)
	}
	if spans[0].Status.Code != codes.Error {
		t.Fatalf("expected error status, got %v", spans[0].Status.Code)
	}
}

func TestSetupTracingWithoutEndpointIsNoop(t *testing.T) {
	testlog.Start(t)

	shutdown, err := SetupTracing(context.Background(), "", "modellerbridge")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	_, end := StartToolSpan(context.Background(), "x", "positional")
	end("ok", nil)
}

func TestSetupTracingWithEndpointInstallsProvider(t *testing.T) {
	testlog.Start(t)

	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	shutdown, err := SetupTracing(context.Background(), "127.0.0.1:4318", "modellerbridge")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
		t.Fatalf("expected sdk tracer provider, got %T", otel.GetTracerProvider())
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
