package telemetry

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

	"github.com/flemzord/tgnotify/pkg/botapi"
)

const instrumentationName = "github.com/flemzord/tgnotify"

// TracingConfig configures the OTLP/HTTP exporter.
type TracingConfig struct {
	// Endpoint is the collector URL, e.g. http://localhost:4318. Empty
	// disables tracing.
	Endpoint    string
	Insecure    bool
	ServiceName string
	SampleRatio float64
}

// ShutdownFunc flushes and stops a tracer provider.
type ShutdownFunc func(context.Context) error

// SetupTracing installs a global tracer provider exporting over OTLP/HTTP.
// With an empty endpoint it does nothing and returns a no-op shutdown.
func SetupTracing(ctx context.Context, cfg TracingConfig) (ShutdownFunc, error) {
	if cfg.Endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exp, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("telemetry: creating exporter: %w", err)
	}

	name := cfg.ServiceName
	if name == "" {
		name = "tgnotify"
	}
	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(attribute.String("service.name", name)))
	if err != nil {
		return nil, fmt.Errorf("telemetry: building resource: %w", err)
	}

	ratio := cfg.SampleRatio
	if ratio <= 0 || ratio > 1 {
		ratio = 1
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// Observer implements botapi.Observer with a client span per HTTP attempt
// and, when metrics are set, Prometheus samples.
type Observer struct {
	tracer  trace.Tracer
	metrics *Metrics
}

// NewObserver returns an observer using tp, or the global provider when
// tp is nil. m may be nil.
func NewObserver(m *Metrics, tp trace.TracerProvider) *Observer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Observer{tracer: tp.Tracer(instrumentationName), metrics: m}
}

// StartCall implements botapi.Observer.
func (o *Observer) StartCall(ctx context.Context, method string) (context.Context, func(botapi.CallEvent)) {
	ctx, span := o.tracer.Start(ctx, "telegram "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("telegram.method", method)),
	)
	return ctx, func(ev botapi.CallEvent) {
		span.SetAttributes(attribute.Int("telegram.attempt", ev.Attempt))
		if ev.StatusCode != 0 {
			span.SetAttributes(attribute.Int("http.response.status_code", ev.StatusCode))
		}
		if ev.Err != nil {
			span.RecordError(ev.Err)
			span.SetStatus(codes.Error, ev.Err.Error())
		}
		span.End()

		if o.metrics != nil {
			o.metrics.ObserveCall(ev)
		}
	}
}
