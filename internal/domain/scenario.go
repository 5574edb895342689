package domain

import "math"

// ScenarioKind names the reason a notification is being considered.
type ScenarioKind string

const (
	ScenarioReactivated ScenarioKind = "listing_reactivated"
	ScenarioPriceDrop   ScenarioKind = "price_dropped"
	ScenarioNewVerified ScenarioKind = "new_verified_listing"
)

// NotificationScenario is a classified trigger produced by the event
// classifier. Each variant carries what its message template needs beyond
// the listing snapshot itself.
type NotificationScenario interface {
	Kind() ScenarioKind
}

// ListingReactivated fires when a listing goes from inactive back to active.
type ListingReactivated struct{}

func (ListingReactivated) Kind() ScenarioKind { return ScenarioReactivated }

// PriceDropped fires when a listing's published price decreases.
type PriceDropped struct {
	PreviousPrice int64
	NewPrice      int64
}

func (PriceDropped) Kind() ScenarioKind { return ScenarioPriceDrop }

// Savings returns the absolute monthly price reduction.
func (s PriceDropped) Savings() int64 { return s.PreviousPrice - s.NewPrice }

// Percent returns the drop as a rounded percentage of the previous price.
func (s PriceDropped) Percent() int {
	return int(math.Round(float64(s.Savings()) / float64(s.PreviousPrice) * 100))
}

// NewVerifiedListing fires when a listing passes verification.
type NewVerifiedListing struct{}

func (NewVerifiedListing) Kind() ScenarioKind { return ScenarioNewVerified }

// DispatchResult describes how a single send attempt ended.
type DispatchResult struct {
	RecipientCount int
	Delivered      bool
	FailureDetail  string
}

// DispatchOutcome describes one completed scenario run. It is published
// for downstream consumers (audit, webhooks) after dispatch.
type DispatchOutcome struct {
	Scenario   ScenarioKind
	ListingID  string
	Subject    string
	Recipients int
	Delivered  bool
}
