package metrics

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HealthMetrics reports the outcome of readiness checks per dependency.
type HealthMetrics struct {
	up           metric.Int64ObservableGauge
	checkLatency metric.Float64Histogram
	serviceInfo  metric.Int64ObservableGauge

	mu     sync.Mutex
	status map[string]bool
}

func NewHealthMetrics(meter metric.Meter) (*HealthMetrics, error) {
	hm := &HealthMetrics{status: make(map[string]bool)}

	var err error

	hm.up, err = meter.Int64ObservableGauge(
		"dependency.up",
		metric.WithDescription("Dependency availability at the last readiness check (1=up, 0=down)"),
		metric.WithUnit("{status}"),
	)
	if err != nil {
		return nil, err
	}

	hm.checkLatency, err = meter.Float64Histogram(
		"dependency.response_time",
		metric.WithDescription("Dependency readiness check latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.0),
	)
	if err != nil {
		return nil, err
	}

	hm.serviceInfo, err = meter.Int64ObservableGauge(
		"service.info",
		metric.WithDescription("Service metadata information"),
		metric.WithUnit("{info}"),
	)
	if err != nil {
		return nil, err
	}

	_, err = meter.RegisterCallback(
		func(ctx context.Context, observer metric.Observer) error {
			hm.mu.Lock()
			defer hm.mu.Unlock()

			for name, ok := range hm.status {
				value := int64(0)
				if ok {
					value = 1
				}
				observer.ObserveInt64(hm.up, value, metric.WithAttributes(attribute.String("dependency", name)))
			}
			return nil
		},
		hm.up,
	)
	if err != nil {
		return nil, err
	}

	return hm, nil
}

// RegisterServiceInfo exposes version and environment as a constant gauge.
func (hm *HealthMetrics) RegisterServiceInfo(meter metric.Meter, serviceName, version, env string) error {
	_, err := meter.RegisterCallback(
		func(ctx context.Context, observer metric.Observer) error {
			observer.ObserveInt64(hm.serviceInfo, 1, metric.WithAttributes(
				attribute.String("service_name", serviceName),
				attribute.String("version", version),
				attribute.String("environment", env),
			))
			return nil
		},
		hm.serviceInfo,
	)
	return err
}

func (hm *HealthMetrics) RecordCheck(ctx context.Context, dependency string, duration time.Duration, err error) {
	if hm == nil || hm.checkLatency == nil {
		return
	}

	hm.checkLatency.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("dependency", dependency)))

	hm.mu.Lock()
	hm.status[dependency] = err == nil
	hm.mu.Unlock()
}
