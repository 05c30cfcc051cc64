// Package telemetry holds the protocol's metric instruments.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics counts what the scan and record pipeline does. All counters are
// additive and safe for concurrent use.
type Metrics struct {
	sightings  metric.Int64Counter
	rejected   metric.Int64Counter
	resolved   metric.Int64Counter
	recorded   metric.Int64Counter
	suppressed metric.Int64Counter
}

// NewMetrics creates the protocol counters on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error
	if m.sightings, err = meter.Int64Counter("beacon.sightings",
		metric.WithDescription("Beacon advertisements delivered by the OS scanner")); err != nil {
		return nil, err
	}
	if m.rejected, err = meter.Int64Counter("beacon.candidates_rejected",
		metric.WithDescription("Sightings rejected by the pre-filter before any store lookup")); err != nil {
		return nil, err
	}
	if m.resolved, err = meter.Int64Counter("sessions.resolved",
		metric.WithDescription("Sightings resolved to an active session")); err != nil {
		return nil, err
	}
	if m.recorded, err = meter.Int64Counter("attendance.recorded",
		metric.WithDescription("Attendance records committed")); err != nil {
		return nil, err
	}
	if m.suppressed, err = meter.Int64Counter("attendance.duplicates_suppressed",
		metric.WithDescription("Submission attempts absorbed by the client-side cool-down")); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) Sighting(ctx context.Context) {
	if m != nil {
		m.sightings.Add(ctx, 1)
	}
}

func (m *Metrics) CandidateRejected(ctx context.Context) {
	if m != nil {
		m.rejected.Add(ctx, 1)
	}
}

func (m *Metrics) Resolved(ctx context.Context) {
	if m != nil {
		m.resolved.Add(ctx, 1)
	}
}

func (m *Metrics) Recorded(ctx context.Context, method string) {
	if m != nil {
		m.recorded.Add(ctx, 1, metric.WithAttributes(attribute.String("method", method)))
	}
}

func (m *Metrics) DuplicateSuppressed(ctx context.Context) {
	if m != nil {
		m.suppressed.Add(ctx, 1)
	}
}
