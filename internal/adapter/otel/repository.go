package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/alquipy/notifier/internal/domain"
)

const tracerName = "github.com/alquipy/notifier/internal/adapter/otel"

// TracingRepository wraps a domain.FilterRepository with OpenTelemetry tracing.
// Each method creates a span with semantic attributes and records errors.
type TracingRepository struct {
	next   domain.FilterRepository
	tracer trace.Tracer
}

// Compile-time check: TracingRepository implements domain.FilterRepository.
var _ domain.FilterRepository = (*TracingRepository)(nil)

// NewTracingRepository creates a tracing decorator around the given repository.
func NewTracingRepository(next domain.FilterRepository) *TracingRepository {
	return &TracingRepository{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (r *TracingRepository) WaitlistByListing(ctx context.Context, listingID string) ([]domain.WaitlistFilter, error) {
	ctx, span := r.tracer.Start(ctx, "FilterRepository.WaitlistByListing",
		trace.WithAttributes(attribute.String("listing.id", listingID)),
	)
	defer span.End()

	entries, err := r.next.WaitlistByListing(ctx, listingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("result.count", len(entries)))
	}
	return entries, err
}

func (r *TracingRepository) ActiveAlerts(ctx context.Context) ([]domain.AlertFilter, error) {
	ctx, span := r.tracer.Start(ctx, "FilterRepository.ActiveAlerts")
	defer span.End()

	alerts, err := r.next.ActiveAlerts(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("result.count", len(alerts)))
	}
	return alerts, err
}

func (r *TracingRepository) CreateWaitlistEntry(ctx context.Context, entry domain.WaitlistFilter) error {
	ctx, span := r.tracer.Start(ctx, "FilterRepository.CreateWaitlistEntry",
		trace.WithAttributes(attribute.String("listing.id", entry.ListingID)),
	)
	defer span.End()

	err := r.next.CreateWaitlistEntry(ctx, entry)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (r *TracingRepository) CreateAlert(ctx context.Context, alert domain.AlertFilter) error {
	ctx, span := r.tracer.Start(ctx, "FilterRepository.CreateAlert",
		trace.WithAttributes(attribute.String("alert.id", alert.ID)),
	)
	defer span.End()

	err := r.next.CreateAlert(ctx, alert)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
