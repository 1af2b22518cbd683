package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes the pricing domain instruments.
type Metrics struct {
	workOrdersPriced      metric.Int64Counter
	pricingPreviews       metric.Int64Counter
	deductionWithoutLabor metric.Int64Counter
	skippedLines          metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				log.Info("shutting down meter provider")
				return provider.Shutdown(ctx)
			},
		})
	}

	log.Info("metrics initialized",
		zap.String("endpoint", cfg.ExporterEndpoint),
		zap.String("protocol", cfg.ExporterProtocol),
	)
	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "glazier"
	}
	meter := provider.Meter(name)

	workOrdersPriced, err := meter.Int64Counter("glazier_work_orders_priced_total",
		metric.WithDescription("Work orders priced and persisted, by operation."))
	if err != nil {
		return nil, err
	}
	pricingPreviews, err := meter.Int64Counter("glazier_pricing_preview_total",
		metric.WithDescription("Live pricing previews computed."))
	if err != nil {
		return nil, err
	}
	deductionWithoutLabor, err := meter.Int64Counter("glazier_tax_deduction_without_labor_total",
		metric.WithDescription("Orders with the labor deduction enabled but no labor lines."))
	if err != nil {
		return nil, err
	}
	skippedLines, err := meter.Int64Counter("glazier_pricing_skipped_lines_total",
		metric.WithDescription("Lines left unpriced because their catalog item was missing."))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		workOrdersPriced:      workOrdersPriced,
		pricingPreviews:       pricingPreviews,
		deductionWithoutLabor: deductionWithoutLabor,
		skippedLines:          skippedLines,
	}, nil
}

// NewNoop returns instruments that record nothing.
func NewNoop() *Metrics {
	m, _ := New(Config{}, noop.NewMeterProvider())
	return m
}

// RecordWorkOrderPriced counts a persisted pricing run; operation is
// "create" or "update".
func (m *Metrics) RecordWorkOrderPriced(ctx context.Context, orgID, operation string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("org_id", strings.TrimSpace(orgID)),
		attribute.String("operation", strings.TrimSpace(operation)),
	)
	m.workOrdersPriced.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordPricingPreview(ctx context.Context, orgID string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("org_id", strings.TrimSpace(orgID)))
	m.pricingPreviews.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordDeductionWithoutLabor(ctx context.Context, orgID, source string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("org_id", strings.TrimSpace(orgID)),
		attribute.String("source", strings.TrimSpace(source)),
	)
	m.deductionWithoutLabor.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordSkippedLines(ctx context.Context, orgID string, n int) {
	if m == nil || n <= 0 {
		return
	}
	attrs := FilterAttributes(attribute.String("org_id", strings.TrimSpace(orgID)))
	m.skippedLines.Add(ctx, int64(n), metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"org_id":      {},
	"operation":   {},
	"source":      {},
	"endpoint":    {},
	"status_code": {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
