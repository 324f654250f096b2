// Package telemetry wraps the OTel SDK's trace-only initialization: a
// TracerProvider with no exporter wired, since this is a single-process
// batch tool with nothing to ship spans to. Calling code still gets real
// span creation/parenting semantics via otel.Tracer(...); Shutdown simply
// releases the provider.
package telemetry

import (
	"context"
	"runtime/debug"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"
)

// Providers holds the process-wide TracerProvider.
type Providers struct {
	tp *sdktrace.TracerProvider
}

// Init builds and registers a TracerProvider tagged with serviceName. No
// exporter is attached; spans are created and ended but never shipped
// anywhere, which is enough for the model client and graph runtime to
// parent per-call/per-node spans under a per-record root.
func Init(serviceName string, logger *zap.Logger) (*Providers, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	res, err := resource.New(context.Background(), resource.WithAttributes(
		semconv.ServiceNameKey.String(serviceName),
		semconv.ServiceVersionKey.String(buildVersion()),
	))
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)

	logger.Info("tracing initialized", zap.String("service_name", serviceName))
	return &Providers{tp: tp}, nil
}

// Shutdown releases the TracerProvider. Safe to call on a nil Providers.
func (p *Providers) Shutdown(ctx context.Context) error {
	if p == nil || p.tp == nil {
		return nil
	}
	return p.tp.Shutdown(ctx)
}

// buildVersion extracts the module version from Go build info, falling
// back to "dev" for unreleased builds.
func buildVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev"
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}
