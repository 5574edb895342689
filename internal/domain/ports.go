package domain

import "context"

// FilterRepository defines the subscriber lookup contract. Reads are scoped
// queries, never full scans: waitlist entries by listing, alerts by active
// flag.
type FilterRepository interface {
	WaitlistByListing(ctx context.Context, listingID string) ([]WaitlistFilter, error)
	ActiveAlerts(ctx context.Context) ([]AlertFilter, error)
	CreateWaitlistEntry(ctx context.Context, entry WaitlistFilter) error
	CreateAlert(ctx context.Context, alert AlertFilter) error
}

// MessageSender delivers one rendered message to a recipient set as a
// single batch send.
type MessageSender interface {
	Send(ctx context.Context, subject, body string, to []string) error
}

// OutcomePublisher emits dispatch outcomes for downstream consumers.
type OutcomePublisher interface {
	Publish(ctx context.Context, outcome DispatchOutcome) error
}

// TransitionValidator checks whether a lifecycle event is valid from a
// given status and returns the destination status.
type TransitionValidator interface {
	Apply(ctx context.Context, current Status, event Event) (Status, error)
}

// ListingParser extracts structured listing fields from the free text of
// a rental post.
type ListingParser interface {
	Parse(ctx context.Context, text string) (ParsedListing, error)
}

// HandoffStore passes a payload between two request/response legs. Entries
// expire after a fixed window and are removed on first successful read.
type HandoffStore interface {
	Put(ctx context.Context, payload []byte) (string, error)
	// Take returns ErrHandoffNotFound when the token is unknown or expired.
	Take(ctx context.Context, token string) ([]byte, error)
}
