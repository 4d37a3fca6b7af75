package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"context"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type ShutdownFunc func(ctx context.Context) error

// NewConsoleMetricsExporter serves for test/dev environment.
// The stats are pushed to stdout (or the writer given by opts) every interval.
func NewConsoleMetricsExporter(interval, timeout time.Duration, opts ...stdoutmetric.Option) (ShutdownFunc, error) {
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(
		exporter,
		metric.WithInterval(interval),
		metric.WithTimeout(timeout),
	)))
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}

// NewPrometheusMetricsExporter serves for the product environment.
// The returned handler exposes the stats registered into registry for
// pull by HTTP. A nil registry creates a private one.
func NewPrometheusMetricsExporter(registry *promclient.Registry) (ShutdownFunc, http.Handler, error) {
	if registry == nil {
		registry = promclient.NewRegistry()
	}
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(mp)
	return mp.Shutdown, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), nil
}
