package app

import (
	"context"
	"errors"

	"github.com/alquipy/notifier/internal/domain"
)

// Classifier determines which notification scenarios apply to a listing
// transition. The rules are independent: zero, one, or several scenarios
// may fire from a single transition.
type Classifier struct {
	validator domain.TransitionValidator
}

// NewClassifier creates a classifier backed by the given lifecycle validator.
func NewClassifier(validator domain.TransitionValidator) *Classifier {
	return &Classifier{validator: validator}
}

// Classify inspects a before/after pair and returns the scenarios whose
// trigger condition holds. A transition without a previous state (creation)
// fires nothing; a transition without a current state is malformed.
func (c *Classifier) Classify(ctx context.Context, tr domain.ListingTransition) ([]domain.NotificationScenario, error) {
	if tr.Current == nil {
		return nil, &domain.ClassificationError{Reason: "missing current record"}
	}
	if tr.Previous == nil {
		return nil, nil
	}

	prev, curr := *tr.Previous, *tr.Current
	var scenarios []domain.NotificationScenario

	reactivated, err := c.eventOccurred(ctx,
		prev.AvailabilityStatus(), curr.AvailabilityStatus(), domain.EventReactivate)
	if err != nil {
		return nil, err
	}
	if reactivated {
		scenarios = append(scenarios, domain.ListingReactivated{})
	}

	if prev.Price != nil && curr.Price != nil && *curr.Price < *prev.Price {
		scenarios = append(scenarios, domain.PriceDropped{
			PreviousPrice: *prev.Price,
			NewPrice:      *curr.Price,
		})
	}

	verified, err := c.eventOccurred(ctx,
		prev.VerificationStatus(), curr.VerificationStatus(), domain.EventVerify)
	if err != nil {
		return nil, err
	}
	if verified {
		scenarios = append(scenarios, domain.NewVerifiedListing{})
	}

	return scenarios, nil
}

// eventOccurred reports whether applying the lifecycle event to the previous
// status is valid and lands exactly on the current status. An invalid
// transition simply means the event did not happen.
func (c *Classifier) eventOccurred(ctx context.Context, previous, current domain.Status, event domain.Event) (bool, error) {
	dst, err := c.validator.Apply(ctx, previous, event)
	if err != nil {
		var trErr *domain.TransitionError
		if errors.As(err, &trErr) {
			return false, nil
		}
		return false, err
	}
	return dst == current, nil
}
