package queue

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the engine's OpenTelemetry instruments. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	admissions      metric.Int64Counter
	transitions     metric.Int64Counter
	serviceDuration metric.Float64Histogram
}

// NewMetrics creates the engine instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	admissions, err := meter.Int64Counter(
		"waitline_tickets_admitted_total",
		metric.WithDescription("Tickets admitted into queues"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create admissions counter: %w", err)
	}

	transitions, err := meter.Int64Counter(
		"waitline_ticket_transitions_total",
		metric.WithDescription("Ticket lifecycle transitions"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transitions counter: %w", err)
	}

	serviceDuration, err := meter.Float64Histogram(
		"waitline_service_duration_minutes",
		metric.WithDescription("Observed per-ticket service duration"),
		metric.WithUnit("min"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create service duration histogram: %w", err)
	}

	return &Metrics{
		admissions:      admissions,
		transitions:     transitions,
		serviceDuration: serviceDuration,
	}, nil
}

func (m *Metrics) recordAdmission(ctx context.Context, class PriorityClass) {
	if m == nil {
		return
	}
	m.admissions.Add(ctx, 1, metric.WithAttributes(attribute.String("priority", string(class))))
}

func (m *Metrics) recordTransition(ctx context.Context, action Action, to Status) {
	if m == nil {
		return
	}
	m.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", string(action)),
		attribute.String("to_status", string(to)),
	))
}

func (m *Metrics) recordServiceDuration(ctx context.Context, minutes float64) {
	if m == nil {
		return
	}
	m.serviceDuration.Record(ctx, minutes)
}
