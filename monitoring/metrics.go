package monitoring

import (
	"context"
	"fmt"
	"os"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	sinkMeterName = "go-resilience/monitoring-sink"

	metricEventsRecorded  = "monitoring.sink.events_recorded"
	metricEventsDelivered = "monitoring.sink.events_delivered"
	metricEventsDropped   = "monitoring.sink.events_dropped"
)

var (
	meterOnce sync.Once

	eventsRecorded  metric.Int64Counter
	eventsDelivered metric.Int64Counter
	eventsDropped   metric.Int64Counter
)

// logMetricError logs an instrument initialization failure to stderr. Metric
// failures must never break the sink.
func logMetricError(name string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: Failed to initialize sink metric %s: %v\n", name, err)
	}
}

// ensureMeterInitialized lazily creates the sink's counters from the global
// meter provider. A noop provider yields noop instruments, so this is safe
// even when no metrics SDK is wired.
func ensureMeterInitialized() {
	meterOnce.Do(func() {
		meter := otel.Meter(sinkMeterName)

		var err error
		eventsRecorded, err = meter.Int64Counter(
			metricEventsRecorded,
			metric.WithDescription("Events accepted by the monitoring sink"),
			metric.WithUnit("{event}"),
		)
		logMetricError(metricEventsRecorded, err)

		eventsDelivered, err = meter.Int64Counter(
			metricEventsDelivered,
			metric.WithDescription("Events successfully delivered to the collector"),
			metric.WithUnit("{event}"),
		)
		logMetricError(metricEventsDelivered, err)

		eventsDropped, err = meter.Int64Counter(
			metricEventsDropped,
			metric.WithDescription("Events dropped after repeated delivery failure or queue overflow"),
			metric.WithUnit("{event}"),
		)
		logMetricError(metricEventsDropped, err)
	})
}

func addCounter(ctx context.Context, counter metric.Int64Counter, n int64) {
	if counter != nil {
		counter.Add(ctx, n)
	}
}
