package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/alquipy/notifier/internal/domain"
)

// TracingPublisher wraps a domain.OutcomePublisher with OpenTelemetry tracing.
type TracingPublisher struct {
	next   domain.OutcomePublisher
	tracer trace.Tracer
}

// Compile-time check: TracingPublisher implements domain.OutcomePublisher.
var _ domain.OutcomePublisher = (*TracingPublisher)(nil)

// NewTracingPublisher creates a tracing decorator around the given publisher.
func NewTracingPublisher(next domain.OutcomePublisher) *TracingPublisher {
	return &TracingPublisher{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (p *TracingPublisher) Publish(ctx context.Context, outcome domain.DispatchOutcome) error {
	ctx, span := p.tracer.Start(ctx, "OutcomePublisher.Publish",
		trace.WithAttributes(
			attribute.String("scenario", string(outcome.Scenario)),
			attribute.String("listing.id", outcome.ListingID),
			attribute.Int("recipients", outcome.Recipients),
		),
	)
	defer span.End()

	err := p.next.Publish(ctx, outcome)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
