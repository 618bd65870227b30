package telemetry

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/telhub-io/telhub/core"
)

// OTelSenderConfig configures the OpenTelemetry sender
type OTelSenderConfig struct {
	// ServiceName identifies the host process in exported traces
	ServiceName string
	// ServiceVersion is attached to the exported resource
	ServiceVersion string
	// Endpoint of an OTLP gRPC collector. Empty selects the stdout
	// exporter, which is useful for local development.
	Endpoint string
}

// OTelSender implements core.Sender by recording telemetry events as span
// events on a long-lived session span. Usage events become span events;
// structured errors go through the span's error-recording entry point.
// Export is batched by the SDK; Flush forces the batch out.
type OTelSender struct {
	provider *sdktrace.TracerProvider
	ctx      context.Context
	span     trace.Span

	sentCounter  metric.Int64Counter
	errorCounter metric.Int64Counter

	mu     sync.Mutex
	closed bool
}

// NewOTelSender creates an OpenTelemetry-backed sender
func NewOTelSender(cfg OTelSenderConfig) (*OTelSender, error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "telhub"
	}
	if cfg.ServiceVersion == "" {
		cfg.ServiceVersion = "0.0.0"
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	var exporter sdktrace.SpanExporter
	if cfg.Endpoint == "" {
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	} else {
		exporter, err = otlptracegrpc.New(context.Background(),
			otlptracegrpc.WithEndpoint(cfg.Endpoint),
			otlptracegrpc.WithInsecure(),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	tracer := tp.Tracer("telhub")
	ctx, span := tracer.Start(context.Background(), "telemetry.session")

	meter := otel.Meter("telhub")
	sent, err := meter.Int64Counter("telhub.events.sent",
		metric.WithDescription("Telemetry events exported as span events"))
	if err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}
	errs, err := meter.Int64Counter("telhub.errors.sent",
		metric.WithDescription("Structured errors recorded on the session span"))
	if err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}

	return &OTelSender{
		provider:     tp,
		ctx:          ctx,
		span:         span,
		sentCounter:  sent,
		errorCounter: errs,
	}, nil
}

// SendEvent records a telemetry event on the session span
func (s *OTelSender) SendEvent(name string, properties map[string]string, measurements map[string]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	attrs := make([]attribute.KeyValue, 0, len(properties)+len(measurements))
	for k, v := range properties {
		attrs = append(attrs, attribute.String(k, v))
	}
	for k, v := range measurements {
		attrs = append(attrs, attribute.Float64(k, v))
	}

	s.span.AddEvent(name, trace.WithAttributes(attrs...))
	s.sentCounter.Add(s.ctx, 1)
}

// SendError records a structured error on the session span. The error is
// forwarded as-is; this is the dedicated error-reporting entry point.
func (s *OTelSender) SendError(err error, properties map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || err == nil {
		return
	}

	attrs := make([]attribute.KeyValue, 0, len(properties))
	for k, v := range properties {
		attrs = append(attrs, attribute.String(k, v))
	}

	s.span.RecordError(err, trace.WithAttributes(attrs...))
	s.errorCounter.Add(s.ctx, 1)
}

// Flush forces the batched exporter to deliver everything recorded so far
func (s *OTelSender) Flush(ctx context.Context) error {
	return s.provider.ForceFlush(ctx)
}

// Shutdown ends the session span and tears down the provider. The sender
// must not be used afterwards.
func (s *OTelSender) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.span.End()
	s.mu.Unlock()

	return s.provider.Shutdown(ctx)
}

// Compile-time capability checks
var (
	_ core.Sender  = (*OTelSender)(nil)
	_ core.Flusher = (*OTelSender)(nil)
)
