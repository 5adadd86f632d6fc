package observability

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Observability bundles the otel meter and tracer used by the HTTP layer,
// the workers and the scorer.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	meter          otelmetric.Meter
	tracer         trace.Tracer

	requestCounter  otelmetric.Int64Counter
	requestDuration otelmetric.Float64Histogram
}

// New registers a prometheus-backed meter provider and, when jaegerEndpoint is
// set, a jaeger-backed tracer provider. Failures degrade to no-op instruments.
func New(serviceName, jaegerEndpoint string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{tracer: otel.Tracer(serviceName)}
	}

	var tp *sdktrace.TracerProvider
	if jaegerEndpoint != "" {
		tp, err = newJaegerProvider(serviceName, jaegerEndpoint)
		if err != nil {
			log.Printf("Failed to create Jaeger exporter: %v", err)
		} else {
			otel.SetTracerProvider(tp)
		}
	}

	o := newWithReader(serviceName, exporter, tp)
	otel.SetMeterProvider(o.meterProvider)
	return o
}

func newJaegerProvider(serviceName, endpoint string) (*sdktrace.TracerProvider, error) {
	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(endpoint)))
	if err != nil {
		return nil, fmt.Errorf("jaeger exporter: %w", err)
	}
	res := resource.NewSchemaless(attribute.String("service.name", serviceName))
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	), nil
}

func newWithReader(serviceName string, reader metric.Reader, tp *sdktrace.TracerProvider) *Observability {
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	meter := provider.Meter(serviceName)

	requestCounter, _ := meter.Int64Counter(
		"requests.processed",
		otelmetric.WithDescription("Number of requests and jobs processed"),
	)
	requestDuration, _ := meter.Float64Histogram(
		"requests.duration",
		otelmetric.WithDescription("Request and job processing duration"),
		otelmetric.WithUnit("ms"),
	)

	var tracer trace.Tracer
	if tp != nil {
		tracer = tp.Tracer(serviceName)
	} else {
		tracer = otel.Tracer(serviceName)
	}

	return &Observability{
		meterProvider:   provider,
		tracerProvider:  tp,
		meter:           meter,
		tracer:          tracer,
		requestCounter:  requestCounter,
		requestDuration: requestDuration,
	}
}

// StartSpan starts a span named name. Safe on a zero Observability.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := o.tracer
	if tracer == nil {
		tracer = otel.Tracer("collabquest")
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// RecordRequest counts one processed request or job. operation is a route or task type.
func (o *Observability) RecordRequest(ctx context.Context, operation, status string, duration time.Duration) {
	attrs := otelmetric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
	if o.requestCounter != nil {
		o.requestCounter.Add(ctx, 1, attrs)
	}
	if o.requestDuration != nil {
		o.requestDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
}
