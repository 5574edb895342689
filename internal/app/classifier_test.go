package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alquipy/notifier/internal/adapter/fsm"
	"github.com/alquipy/notifier/internal/app"
	"github.com/alquipy/notifier/internal/domain"
)

func int64p(v int64) *int64 { return &v }
func intp(v int) *int       { return &v }

func newClassifier() *app.Classifier {
	return app.NewClassifier(fsm.New())
}

func snapshot(mutate ...func(*domain.ListingSnapshot)) *domain.ListingSnapshot {
	l := domain.ListingSnapshot{
		ID:       "p1",
		Title:    "Casa Luque",
		City:     "Luque",
		Type:     domain.PropertyHouse,
		Price:    int64p(2_000_000),
		Currency: domain.CurrencyGuarani,
		Verified: true,
		Active:   true,
	}
	for _, m := range mutate {
		m(&l)
	}
	return &l
}

func kinds(scenarios []domain.NotificationScenario) []domain.ScenarioKind {
	out := make([]domain.ScenarioKind, len(scenarios))
	for i, s := range scenarios {
		out[i] = s.Kind()
	}
	return out
}

func TestClassify_Reactivation(t *testing.T) {
	c := newClassifier()

	tr := domain.ListingTransition{
		Previous: snapshot(func(l *domain.ListingSnapshot) { l.Active = false }),
		Current:  snapshot(),
	}

	scenarios, err := c.Classify(context.Background(), tr)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	got := kinds(scenarios)
	if len(got) != 1 || got[0] != domain.ScenarioReactivated {
		t.Errorf("scenarios = %v, want exactly [%s]", got, domain.ScenarioReactivated)
	}
}

func TestClassify_PriceDrop(t *testing.T) {
	c := newClassifier()

	tr := domain.ListingTransition{
		Previous: snapshot(func(l *domain.ListingSnapshot) { l.Price = int64p(1_000_000) }),
		Current:  snapshot(func(l *domain.ListingSnapshot) { l.Price = int64p(800_000) }),
	}

	scenarios, err := c.Classify(context.Background(), tr)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if len(scenarios) != 1 {
		t.Fatalf("got %d scenarios, want 1", len(scenarios))
	}

	drop, ok := scenarios[0].(domain.PriceDropped)
	if !ok {
		t.Fatalf("scenario = %T, want PriceDropped", scenarios[0])
	}
	if drop.Percent() != 20 {
		t.Errorf("Percent() = %d, want 20", drop.Percent())
	}
	if drop.PreviousPrice != 1_000_000 || drop.NewPrice != 800_000 {
		t.Errorf("prices = (%d, %d), want (1000000, 800000)", drop.PreviousPrice, drop.NewPrice)
	}
}

func TestClassify_NewVerified(t *testing.T) {
	c := newClassifier()

	tr := domain.ListingTransition{
		Previous: snapshot(func(l *domain.ListingSnapshot) { l.Verified = false }),
		Current:  snapshot(),
	}

	scenarios, err := c.Classify(context.Background(), tr)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	got := kinds(scenarios)
	if len(got) != 1 || got[0] != domain.ScenarioNewVerified {
		t.Errorf("scenarios = %v, want exactly [%s]", got, domain.ScenarioNewVerified)
	}
}

func TestClassify_CoFiringScenarios(t *testing.T) {
	c := newClassifier()

	// Reactivation and price drop in the same update fire independently.
	tr := domain.ListingTransition{
		Previous: snapshot(func(l *domain.ListingSnapshot) {
			l.Active = false
			l.Price = int64p(1_500_000)
		}),
		Current: snapshot(func(l *domain.ListingSnapshot) { l.Price = int64p(1_200_000) }),
	}

	scenarios, err := c.Classify(context.Background(), tr)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if len(scenarios) != 2 {
		t.Fatalf("got %d scenarios (%v), want 2", len(scenarios), kinds(scenarios))
	}
}

func TestClassify_NoScenario(t *testing.T) {
	c := newClassifier()

	tests := []struct {
		name string
		tr   domain.ListingTransition
	}{
		{
			name: "creation has no previous",
			tr:   domain.ListingTransition{Current: snapshot()},
		},
		{
			name: "nothing relevant changed",
			tr:   domain.ListingTransition{Previous: snapshot(), Current: snapshot()},
		},
		{
			name: "price increased",
			tr: domain.ListingTransition{
				Previous: snapshot(func(l *domain.ListingSnapshot) { l.Price = int64p(1_000_000) }),
				Current:  snapshot(func(l *domain.ListingSnapshot) { l.Price = int64p(1_200_000) }),
			},
		},
		{
			name: "price appeared where there was none",
			tr: domain.ListingTransition{
				Previous: snapshot(func(l *domain.ListingSnapshot) { l.Price = nil }),
				Current:  snapshot(),
			},
		},
		{
			name: "deactivation",
			tr: domain.ListingTransition{
				Previous: snapshot(),
				Current:  snapshot(func(l *domain.ListingSnapshot) { l.Active = false }),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scenarios, err := c.Classify(context.Background(), tt.tr)
			if err != nil {
				t.Fatalf("Classify failed: %v", err)
			}
			if len(scenarios) != 0 {
				t.Errorf("scenarios = %v, want none", kinds(scenarios))
			}
		})
	}
}

func TestClassify_MissingCurrent(t *testing.T) {
	c := newClassifier()

	_, err := c.Classify(context.Background(), domain.ListingTransition{Previous: snapshot()})

	var clsErr *domain.ClassificationError
	if !errors.As(err, &clsErr) {
		t.Fatalf("expected ClassificationError, got %v", err)
	}
}
