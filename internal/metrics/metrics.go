package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

type Metrics struct {
	Database  *DatabaseMetrics
	Messaging *MessagingMetrics
	Health    *HealthMetrics

	teamsRegistered      metric.Int64Counter
	membersRegistered    metric.Int64Counter
	submissionsFailed    metric.Int64Counter
	paymentsVerified     metric.Int64Counter
	verificationOutcomes metric.Int64Counter
}

func New(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.teamsRegistered, err = meter.Int64Counter(
		"zignasa.teams.registered",
		metric.WithDescription("Total number of teams created by registration submissions"),
		metric.WithUnit("{team}"),
	)
	if err != nil {
		return nil, err
	}

	m.membersRegistered, err = meter.Int64Counter(
		"zignasa.members.registered",
		metric.WithDescription("Total number of team member registrations stored"),
		metric.WithUnit("{member}"),
	)
	if err != nil {
		return nil, err
	}

	m.submissionsFailed, err = meter.Int64Counter(
		"zignasa.submissions.failed",
		metric.WithDescription("Registration submissions rejected or failed, by error kind"),
		metric.WithUnit("{submission}"),
	)
	if err != nil {
		return nil, err
	}

	m.paymentsVerified, err = meter.Int64Counter(
		"zignasa.payments.verified",
		metric.WithDescription("Payments verified by the verification endpoint"),
		metric.WithUnit("{payment}"),
	)
	if err != nil {
		return nil, err
	}

	m.verificationOutcomes, err = meter.Int64Counter(
		"zignasa.confirmation.outcomes",
		metric.WithDescription("Confirmation page outcomes by terminal state"),
		metric.WithUnit("{outcome}"),
	)
	if err != nil {
		return nil, err
	}

	m.Database, err = NewDatabaseMetrics(meter)
	if err != nil {
		return nil, err
	}

	m.Messaging, err = NewMessagingMetrics(meter)
	if err != nil {
		return nil, err
	}

	m.Health, err = NewHealthMetrics(meter)
	if err != nil {
		return nil, err
	}

	if err := RegisterRuntime(meter); err != nil {
		return nil, err
	}

	return m, nil
}

// NewMock returns Metrics backed by a no-op meter for tests.
func NewMock() *Metrics {
	m, err := New(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Metrics) RecordTeamRegistered(ctx context.Context, track string, members int) {
	attrs := metric.WithAttributes(attribute.String("track", track))
	m.teamsRegistered.Add(ctx, 1, attrs)
	m.membersRegistered.Add(ctx, int64(members), attrs)
}

func (m *Metrics) RecordSubmissionFailed(ctx context.Context, kind string) {
	m.submissionsFailed.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *Metrics) RecordPaymentVerified(ctx context.Context, track string) {
	m.paymentsVerified.Add(ctx, 1, metric.WithAttributes(attribute.String("track", track)))
}

func (m *Metrics) RecordConfirmationOutcome(ctx context.Context, state string) {
	m.verificationOutcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("state", state)))
}
