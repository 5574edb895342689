package domain

// SubscriptionFilter is a subscriber's standing interest in listings.
// Two variants exist: WaitlistFilter (interest in one specific listing)
// and AlertFilter (criteria over the whole catalog).
type SubscriptionFilter interface {
	// Contact returns the address the subscriber wants notifications at.
	Contact() string
	// Matches reports whether the listing satisfies every constraint the
	// subscriber set. Unset constraints impose no restriction.
	Matches(l ListingSnapshot) bool
}

// WaitlistFilter is a subscriber waiting on one specific listing.
type WaitlistFilter struct {
	ListingID string
	Email     string
}

func (f WaitlistFilter) Contact() string { return f.Email }

func (f WaitlistFilter) Matches(l ListingSnapshot) bool {
	return f.ListingID == l.ID
}

// AlertFilter is a saved search: every set field must hold for a listing
// to match. Zero values (empty string, nil pointer, false) mean the
// subscriber doesn't care about that field.
type AlertFilter struct {
	ID           string
	Email        string
	City         string
	Type         PropertyType
	MaxPrice     *int64
	MinBedrooms  *int
	NoGuarantor  bool
	NoDeposit    bool
	PetsRequired bool
	Active       bool
}

func (f AlertFilter) Contact() string { return f.Email }

func (f AlertFilter) Matches(l ListingSnapshot) bool {
	if f.City != "" && f.City != l.City {
		return false
	}
	if f.Type != "" && f.Type != l.Type {
		return false
	}
	if f.MaxPrice != nil {
		// A listing without a published price never satisfies a price cap.
		if l.Price == nil || *l.Price > *f.MaxPrice {
			return false
		}
	}
	if f.MinBedrooms != nil {
		if l.Bedrooms == nil || *l.Bedrooms < *f.MinBedrooms {
			return false
		}
	}
	if f.NoGuarantor && l.Requirements.Guarantor != TriNo {
		return false
	}
	if f.NoDeposit && l.Requirements.Deposit != TriNo {
		return false
	}
	if f.PetsRequired && l.PetsAllowed != TriYes {
		return false
	}
	return true
}
