package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for simple conditions without extra context.
var (
	ErrHandoffNotFound = errors.New("handoff entry not found")
	ErrInvalidAddress  = errors.New("invalid contact address")
)

// ClassificationError is returned when a transition payload is malformed
// (most importantly, a missing current record). It is a client error.
type ClassificationError struct {
	Reason string
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classifying transition: %s", e.Reason)
}

// ResolutionError is returned when the subscriber repository is unreachable
// or returns a malformed response while resolving a scenario.
type ResolutionError struct {
	Scenario  ScenarioKind
	ListingID string
	Err       error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolving subscribers for %s on listing %s: %v", e.Scenario, e.ListingID, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// DispatchError is returned when the email transport rejects a send. It
// carries the transport's reported detail; the batch is not retried.
type DispatchError struct {
	Scenario  ScenarioKind
	ListingID string
	Detail    string
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatching %s for listing %s: %s", e.Scenario, e.ListingID, e.Detail)
}

// TransitionError is returned when a lifecycle event is not valid from the
// current status.
type TransitionError struct {
	Event   Event
	Current Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("event %q is not valid from state %q", e.Event, e.Current)
}
