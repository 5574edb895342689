package river

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/riverqueue/river"

	"github.com/alquipy/notifier/internal/domain"
)

// Compile-time check: Publisher implements domain.OutcomePublisher.
var _ domain.OutcomePublisher = (*Publisher)(nil)

// OutcomeJobArgs carries one dispatch outcome into the job queue. River
// serializes this as JSON into its job table. The subject and recipient
// count travel with the job, so the worker never re-resolves anything.
type OutcomeJobArgs struct {
	Scenario   string `json:"scenario"`
	ListingID  string `json:"listing_id"`
	Subject    string `json:"subject"`
	Recipients int    `json:"recipients"`
	Delivered  bool   `json:"delivered"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (OutcomeJobArgs) Kind() string { return "notification.dispatched" }

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Publisher implements domain.OutcomePublisher by enqueuing River jobs.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher backed by the given River client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// Publish enqueues a dispatch outcome as an async job in River.
func (p *Publisher) Publish(ctx context.Context, outcome domain.DispatchOutcome) error {
	_, err := p.client.Insert(ctx, OutcomeJobArgs{
		Scenario:   string(outcome.Scenario),
		ListingID:  outcome.ListingID,
		Subject:    outcome.Subject,
		Recipients: outcome.Recipients,
		Delivered:  outcome.Delivered,
	}, nil)
	if err != nil {
		return fmt.Errorf("enqueuing outcome job: %w", err)
	}
	return nil
}
