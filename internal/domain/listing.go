package domain

// PropertyType enumerates the listing categories the marketplace publishes.
// Values match the column values used by the data service.
type PropertyType string

const (
	PropertyHouse      PropertyType = "casa"
	PropertyApartment  PropertyType = "departamento"
	PropertyDuplex     PropertyType = "duplex"
	PropertyCommercial PropertyType = "local_comercial"
	PropertyRoom       PropertyType = "pieza"
)

// Currency identifies the unit a listing price is published in.
type Currency string

const (
	CurrencyGuarani Currency = "Gs"
	CurrencyDollar  Currency = "USD"
)

// TriState captures yes/no/unspecified answers on listing requirements.
type TriState string

const (
	TriYes         TriState = "si"
	TriNo          TriState = "no"
	TriUnspecified TriState = ""
)

// Requirements describes what a landlord asks of applicants.
type Requirements struct {
	Guarantor TriState
	Deposit   TriState
}

// ListingSnapshot is an immutable view of a listing at one point in time.
// Price and Bedrooms are nil when the listing doesn't publish them;
// Currency is only meaningful when Price is present.
type ListingSnapshot struct {
	ID           string
	Title        string
	City         string
	Neighborhood string
	Type         PropertyType
	Price        *int64
	Currency     Currency
	Bedrooms     *int
	Verified     bool
	Active       bool
	Requirements Requirements
	PetsAllowed  TriState
}

// ListingTransition pairs the previous and current state of one listing
// update. Previous is nil when the event is a creation.
type ListingTransition struct {
	Previous *ListingSnapshot
	Current  *ListingSnapshot
}

// ParsedListing holds the structured fields extracted from a free-text
// rental post by the listing parser.
type ParsedListing struct {
	Title        string
	Price        *int64
	Currency     Currency
	City         string
	Neighborhood string
	Type         PropertyType
	Bedrooms     *int
	Bathrooms    *int
	Description  string
	Phone        string
}
