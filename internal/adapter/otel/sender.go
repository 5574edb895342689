package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/alquipy/notifier/internal/domain"
)

// TracingSender wraps a domain.MessageSender with OpenTelemetry tracing.
// Recipient addresses stay out of span attributes; only the count is
// recorded.
type TracingSender struct {
	next   domain.MessageSender
	tracer trace.Tracer
}

// Compile-time check: TracingSender implements domain.MessageSender.
var _ domain.MessageSender = (*TracingSender)(nil)

// NewTracingSender creates a tracing decorator around the given sender.
func NewTracingSender(next domain.MessageSender) *TracingSender {
	return &TracingSender{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (s *TracingSender) Send(ctx context.Context, subject, body string, to []string) error {
	ctx, span := s.tracer.Start(ctx, "MessageSender.Send",
		trace.WithAttributes(
			attribute.String("message.subject", subject),
			attribute.Int("message.recipients", len(to)),
		),
	)
	defer span.End()

	err := s.next.Send(ctx, subject, body, to)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
