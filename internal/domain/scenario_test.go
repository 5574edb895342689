package domain_test

import (
	"testing"

	"github.com/alquipy/notifier/internal/domain"
)

func TestPriceDropped_Percent(t *testing.T) {
	tests := []struct {
		name     string
		previous int64
		current  int64
		percent  int
		savings  int64
	}{
		{name: "exact 20 percent", previous: 1_000_000, current: 800_000, percent: 20, savings: 200_000},
		{name: "rounds down", previous: 3_000_000, current: 2_000_000, percent: 33, savings: 1_000_000},
		{name: "rounds up", previous: 3_000_000, current: 1_000_000, percent: 67, savings: 2_000_000},
		{name: "tiny drop rounds to zero", previous: 1_000_000, current: 999_000, percent: 0, savings: 1_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := domain.PriceDropped{PreviousPrice: tt.previous, NewPrice: tt.current}
			if got := s.Percent(); got != tt.percent {
				t.Errorf("Percent() = %d, want %d", got, tt.percent)
			}
			if got := s.Savings(); got != tt.savings {
				t.Errorf("Savings() = %d, want %d", got, tt.savings)
			}
		})
	}
}

func TestLifecycleStatuses(t *testing.T) {
	l := domain.ListingSnapshot{Active: true, Verified: false}

	if got := l.AvailabilityStatus(); got != domain.StatusActive {
		t.Errorf("AvailabilityStatus() = %q, want %q", got, domain.StatusActive)
	}
	if got := l.VerificationStatus(); got != domain.StatusUnverified {
		t.Errorf("VerificationStatus() = %q, want %q", got, domain.StatusUnverified)
	}

	l.Active = false
	l.Verified = true
	if got := l.AvailabilityStatus(); got != domain.StatusInactive {
		t.Errorf("AvailabilityStatus() = %q, want %q", got, domain.StatusInactive)
	}
	if got := l.VerificationStatus(); got != domain.StatusVerified {
		t.Errorf("VerificationStatus() = %q, want %q", got, domain.StatusVerified)
	}
}
