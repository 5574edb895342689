package domain

// Status represents one axis of a listing's lifecycle. A listing has two
// independent axes: availability (active/inactive) and verification
// (unverified/verified).
type Status string

const (
	StatusActive     Status = "active"
	StatusInactive   Status = "inactive"
	StatusVerified   Status = "verified"
	StatusUnverified Status = "unverified"
)

// Event represents a lifecycle change between two listing states.
type Event string

const (
	EventReactivate Event = "reactivate"
	EventDeactivate Event = "deactivate"
	EventVerify     Event = "verify"
)

// Transition defines a valid state change: an event moves a listing axis
// from Src to Dst.
type Transition struct {
	Event Event
	Src   Status
	Dst   Status
}

// Transitions defines all lifecycle changes the classifier cares about.
// This is domain knowledge consumed by the FSM adapter.
var Transitions = []Transition{
	{Event: EventReactivate, Src: StatusInactive, Dst: StatusActive},
	{Event: EventDeactivate, Src: StatusActive, Dst: StatusInactive},
	{Event: EventVerify, Src: StatusUnverified, Dst: StatusVerified},
}

// AvailabilityStatus derives the availability axis from the Active flag.
func (l ListingSnapshot) AvailabilityStatus() Status {
	if l.Active {
		return StatusActive
	}
	return StatusInactive
}

// VerificationStatus derives the verification axis from the Verified flag.
func (l ListingSnapshot) VerificationStatus() Status {
	if l.Verified {
		return StatusVerified
	}
	return StatusUnverified
}
