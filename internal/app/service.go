package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"

	"github.com/alquipy/notifier/internal/domain"
)

// NotifyService orchestrates the notification pipeline: classify the
// transition, resolve matching subscribers, aggregate recipients, render
// the message, and dispatch it. Each invocation is stateless; stages run
// strictly sequentially.
type NotifyService struct {
	classifier *Classifier
	repo       domain.FilterRepository
	sender     domain.MessageSender
	renderer   *Renderer
	publisher  domain.OutcomePublisher
	operator   string
}

// NewNotifyService creates a service with the given adapters. operator is
// the fixed address cc'd on new-verified-listing notifications.
func NewNotifyService(
	classifier *Classifier,
	repo domain.FilterRepository,
	sender domain.MessageSender,
	renderer *Renderer,
	publisher domain.OutcomePublisher,
	operator string,
) *NotifyService {
	return &NotifyService{
		classifier: classifier,
		repo:       repo,
		sender:     sender,
		renderer:   renderer,
		publisher:  publisher,
		operator:   operator,
	}
}

// ScenarioOutcome reports how one fired scenario ended. A zero
// RecipientCount with Delivered=false means the scenario was a no-op.
type ScenarioOutcome struct {
	Scenario domain.ScenarioKind
	Result   domain.DispatchResult
}

// RunReport summarizes one pipeline invocation across all fired scenarios.
type RunReport struct {
	Outcomes []ScenarioOutcome
}

// Notified returns the total number of recipients across all dispatches.
func (r RunReport) Notified() int {
	total := 0
	for _, o := range r.Outcomes {
		if o.Result.Delivered {
			total += o.Result.RecipientCount
		}
	}
	return total
}

// NoOp reports whether the run dispatched nothing: either no scenario
// fired or every fired scenario resolved zero recipients.
func (r RunReport) NoOp() bool {
	return r.Notified() == 0
}

// HandleTransition runs the full pipeline for one change event. Scenarios
// that co-fire are processed independently, each with its own render and
// dispatch. The first scenario failure aborts the invocation; scenarios
// already dispatched stay dispatched.
func (s *NotifyService) HandleTransition(ctx context.Context, tr domain.ListingTransition) (RunReport, error) {
	scenarios, err := s.classifier.Classify(ctx, tr)
	if err != nil {
		return RunReport{}, err
	}

	var report RunReport
	for _, scenario := range scenarios {
		outcome, err := s.runScenario(ctx, scenario, *tr.Current)
		if err != nil {
			slog.ErrorContext(ctx, "scenario failed",
				"scenario", scenario.Kind(),
				"listing_id", tr.Current.ID,
				"error", err,
			)
			return report, err
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	return report, nil
}

func (s *NotifyService) runScenario(ctx context.Context, scenario domain.NotificationScenario, listing domain.ListingSnapshot) (ScenarioOutcome, error) {
	kind := scenario.Kind()

	matches, err := s.resolve(ctx, kind, listing)
	if err != nil {
		return ScenarioOutcome{}, &domain.ResolutionError{
			Scenario:  kind,
			ListingID: listing.ID,
			Err:       err,
		}
	}

	recipients := AggregateRecipients(matches, kind, s.operator)
	if len(matches) == 0 || len(recipients) == 0 {
		slog.InfoContext(ctx, "no recipients, skipping dispatch",
			"scenario", kind,
			"listing_id", listing.ID,
		)
		return ScenarioOutcome{Scenario: kind}, nil
	}

	subject, body, err := s.renderer.Render(scenario, listing)
	if err != nil {
		return ScenarioOutcome{}, fmt.Errorf("rendering %s for listing %s: %w", kind, listing.ID, err)
	}

	if err := s.sender.Send(ctx, subject, body, recipients); err != nil {
		return ScenarioOutcome{}, &domain.DispatchError{
			Scenario:  kind,
			ListingID: listing.ID,
			Detail:    err.Error(),
		}
	}

	outcome := domain.DispatchOutcome{
		Scenario:   kind,
		ListingID:  listing.ID,
		Subject:    subject,
		Recipients: len(recipients),
		Delivered:  true,
	}
	if err := s.publisher.Publish(ctx, outcome); err != nil {
		// The email already went out; losing the downstream event is not
		// worth failing the invocation over.
		slog.WarnContext(ctx, "publishing dispatch outcome failed",
			"scenario", kind,
			"listing_id", listing.ID,
			"error", err,
		)
	}

	slog.InfoContext(ctx, "notification dispatched",
		"scenario", kind,
		"listing_id", listing.ID,
		"recipients", len(recipients),
	)

	return ScenarioOutcome{
		Scenario: kind,
		Result: domain.DispatchResult{
			RecipientCount: len(recipients),
			Delivered:      true,
		},
	}, nil
}

// resolve fetches the candidate pool for a scenario and keeps only eligible
// filters that pass the criteria matcher. Waitlist scenarios use a targeted
// lookup by listing id; new-verified scans active alerts.
func (s *NotifyService) resolve(ctx context.Context, kind domain.ScenarioKind, listing domain.ListingSnapshot) ([]domain.SubscriptionFilter, error) {
	var out []domain.SubscriptionFilter

	switch kind {
	case domain.ScenarioReactivated, domain.ScenarioPriceDrop:
		entries, err := s.repo.WaitlistByListing(ctx, listing.ID)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.Contact() == "" || !e.Matches(listing) {
				continue
			}
			out = append(out, e)
		}

	case domain.ScenarioNewVerified:
		alerts, err := s.repo.ActiveAlerts(ctx)
		if err != nil {
			return nil, err
		}
		for _, a := range alerts {
			if !a.Active || a.Contact() == "" || !a.Matches(listing) {
				continue
			}
			out = append(out, a)
		}
	}

	return out, nil
}

// RegisterWaitlist records a subscriber's interest in one specific listing.
func (s *NotifyService) RegisterWaitlist(ctx context.Context, listingID, email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.ErrInvalidAddress
	}
	entry := domain.WaitlistFilter{ListingID: listingID, Email: email}
	if err := s.repo.CreateWaitlistEntry(ctx, entry); err != nil {
		return fmt.Errorf("creating waitlist entry: %w", err)
	}
	return nil
}

// RegisterAlert saves a new alert filter. New alerts start active.
func (s *NotifyService) RegisterAlert(ctx context.Context, alert domain.AlertFilter) (domain.AlertFilter, error) {
	if _, err := mail.ParseAddress(alert.Email); err != nil {
		return domain.AlertFilter{}, domain.ErrInvalidAddress
	}

	id, err := generateID()
	if err != nil {
		return domain.AlertFilter{}, fmt.Errorf("generating alert id: %w", err)
	}
	alert.ID = id
	alert.Active = true

	if err := s.repo.CreateAlert(ctx, alert); err != nil {
		return domain.AlertFilter{}, fmt.Errorf("creating alert: %w", err)
	}
	return alert, nil
}
