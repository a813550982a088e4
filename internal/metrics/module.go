package metrics

import (
	"context"

	"github.com/nplate/relay/internal/eventbus"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
)

// Module provides a Prometheus-backed MeterProvider, the [Sink] built on
// top of it, and wires the eventbus [Bridge] so the sink updates itself
// without either core package knowing metrics exist.
var Module = fx.Module("metrics",
	fx.Provide(NewExporter),
	fx.Provide(NewMeterProvider),
	fx.Provide(func(mp *metric.MeterProvider) (Sink, error) {
		return NewOTel(mp.Meter("relay"))
	}),
	fx.Invoke(func(lc fx.Lifecycle, bus *eventbus.Bus, sink Sink) error {
		ctx, cancel := context.WithCancel(context.Background())
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				cancel()
				return nil
			},
		})
		return Bridge(ctx, bus, sink)
	}),
)

// NewExporter builds the Prometheus exporter that both the MeterProvider
// (as its reader) and the HTTP transport's `/metrics` route (via
// promhttp.Handler, reading the default Prometheus registerer this exporter
// registers itself with) depend on.
func NewExporter() (*prometheus.Exporter, error) {
	return prometheus.New()
}

// NewMeterProvider builds the process-wide MeterProvider with exporter
// registered as its reader.
func NewMeterProvider(lc fx.Lifecycle, exporter *prometheus.Exporter) *metric.MeterProvider {
	mp := metric.NewMeterProvider(metric.WithReader(exporter))
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return mp.Shutdown(ctx)
		},
	})
	return mp
}
