// AngelaMos | 2026
// telemetry.go

package core

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/apptnu/portal/internal/config"
)

// Span attribute keys for portal records.
const (
	AttrUserID         = attribute.Key("portal.user.id")
	AttrMemberID       = attribute.Key("portal.member.id")
	AttrRegistrationID = attribute.Key("portal.registration.id")
	AttrEventKey       = attribute.Key("portal.event.routing_key")
)

const (
	serviceNamespace  = "apptnu"
	defaultSampleRate = 0.1
)

type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
}

// NewTelemetry installs the global tracer provider. With tracing disabled
// spans are still created, so the span helpers below stay safe, but
// nothing is exported.
func NewTelemetry(
	ctx context.Context,
	otelCfg config.OtelConfig,
	appCfg config.AppConfig,
) (*Telemetry, error) {
	if !otelCfg.Enabled || otelCfg.Endpoint == "" {
		return &Telemetry{TracerProvider: sdktrace.NewTracerProvider()}, nil
	}

	exporter, err := otlptracegrpc.New(ctx, exporterOptions(otelCfg)...)
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(otelCfg.ServiceName),
			semconv.ServiceNamespace(serviceNamespace),
			semconv.ServiceVersion(appCfg.Version),
			semconv.DeploymentEnvironment(appCfg.Environment),
		),
		resource.WithHost(),
		resource.WithProcess(),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(5*time.Second),
			sdktrace.WithMaxExportBatchSize(512),
		),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(otelCfg.SampleRate)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Telemetry{TracerProvider: tp}, nil
}

func exporterOptions(cfg config.OtelConfig) []otlptracegrpc.Option {
	creds := credentials.NewClientTLSFromCert(nil, "")
	if cfg.Insecure {
		creds = insecure.NewCredentials()
	}

	return []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithTimeout(5 * time.Second),
		otlptracegrpc.WithTLSCredentials(creds),
	}
}

// sampler keeps the parent's decision and samples new traces at rate.
// Rates outside (0, 1] fall back to the default.
func sampler(rate float64) sdktrace.Sampler {
	if rate <= 0 || rate > 1 {
		rate = defaultSampleRate
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))
}

func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t.TracerProvider == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := t.TracerProvider.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown tracer provider: %w", err)
	}

	return nil
}

// Tracer returns the named tracer from the global provider.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

func TraceIDFromContext(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		return span.SpanContext().TraceID().String()
	}
	return ""
}

func SetSpanError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func TagUser(ctx context.Context, userID int64) {
	trace.SpanFromContext(ctx).SetAttributes(AttrUserID.Int64(userID))
}

func TagMember(ctx context.Context, memberID int64) {
	trace.SpanFromContext(ctx).SetAttributes(AttrMemberID.Int64(memberID))
}

func TagRegistration(ctx context.Context, registrationID int64) {
	trace.SpanFromContext(ctx).SetAttributes(AttrRegistrationID.Int64(registrationID))
}

// RecordEvent notes a domain event on the current span. A publish error
// is attached to the span event but does not mark the span failed.
func RecordEvent(ctx context.Context, routingKey string, publishErr error) {
	attrs := []attribute.KeyValue{AttrEventKey.String(routingKey)}
	if publishErr != nil {
		attrs = append(attrs, attribute.String("error", publishErr.Error()))
	}
	trace.SpanFromContext(ctx).AddEvent("domain_event", trace.WithAttributes(attrs...))
}
