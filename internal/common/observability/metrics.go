package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type Observability struct {
	meterProvider   *metric.MeterProvider
	meter           otelmetric.Meter
	runCounter      otelmetric.Int64Counter
	runDuration     otelmetric.Float64Histogram
	documentCounter otelmetric.Int64Counter
	webhookCounter  otelmetric.Int64Counter
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	res := resource.NewWithAttributes(semconv.SchemaURL,
		semconv.ServiceName(serviceName))
	provider := metric.NewMeterProvider(metric.WithReader(exporter), metric.WithResource(res))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	runCounter, _ := meter.Int64Counter(
		"packet.runs",
		otelmetric.WithDescription("Number of packet generation runs"),
	)

	runDuration, _ := meter.Float64Histogram(
		"packet.run.duration",
		otelmetric.WithDescription("Packet generation duration"),
		otelmetric.WithUnit("ms"),
	)

	documentCounter, _ := meter.Int64Counter(
		"packet.documents.filled",
		otelmetric.WithDescription("Number of document instances filled"),
	)

	webhookCounter, _ := meter.Int64Counter(
		"webhook.events",
		otelmetric.WithDescription("Number of webhook events processed"),
	)

	return &Observability{
		meterProvider:   provider,
		meter:           meter,
		runCounter:      runCounter,
		runDuration:     runDuration,
		documentCounter: documentCounter,
		webhookCounter:  webhookCounter,
	}
}

func (o *Observability) RecordRun(ctx context.Context, status string) {
	if o.runCounter != nil {
		o.runCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordRunDuration(ctx context.Context, duration time.Duration, status string) {
	if o.runDuration != nil {
		o.runDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordDocumentFilled(ctx context.Context, templateKey string, fallback bool) {
	if o.documentCounter != nil {
		o.documentCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("template", templateKey),
			attribute.Bool("fallback", fallback),
		))
	}
}

func (o *Observability) RecordWebhookEvent(ctx context.Context, event, status string) {
	if o.webhookCounter != nil {
		o.webhookCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("event", event),
			attribute.String("status", status),
		))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.meterProvider.Shutdown(ctx)
	}
}
