package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "venably"

// Metrics holds all booking engine metric instruments.
type Metrics struct {
	BookingsCreated   metric.Int64Counter
	BookingsCancelled metric.Int64Counter
	ContractsWritten  metric.Int64Counter
	ConflictsBlocking metric.Int64Counter
	ConflictsAdvisory metric.Int64Counter
	TxRetries         metric.Int64Counter
	CommitDuration    metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.BookingsCreated, err = meter.Int64Counter("venably.bookings.created",
		metric.WithDescription("Number of bookings committed"))
	if err != nil {
		return nil, err
	}

	m.BookingsCancelled, err = meter.Int64Counter("venably.bookings.cancelled",
		metric.WithDescription("Number of bookings soft-cancelled"))
	if err != nil {
		return nil, err
	}

	m.ContractsWritten, err = meter.Int64Counter("venably.contracts.written",
		metric.WithDescription("Number of contract create/update commits"))
	if err != nil {
		return nil, err
	}

	m.ConflictsBlocking, err = meter.Int64Counter("venably.conflicts.blocking",
		metric.WithDescription("Number of writes rejected by blocking conflicts"))
	if err != nil {
		return nil, err
	}

	m.ConflictsAdvisory, err = meter.Int64Counter("venably.conflicts.advisory",
		metric.WithDescription("Number of advisory conflict warnings returned"))
	if err != nil {
		return nil, err
	}

	m.TxRetries, err = meter.Int64Counter("venably.tx.retries",
		metric.WithDescription("Number of serialization-failure retries"))
	if err != nil {
		return nil, err
	}

	m.CommitDuration, err = meter.Float64Histogram("venably.commit.duration_seconds",
		metric.WithDescription("Validate-then-commit cycle duration in seconds"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
