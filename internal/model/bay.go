package model

// ResourceType classifies a bookable physical resource.
type ResourceType string

const (
	ResourceSimulator      ResourceType = "simulator"
	ResourceConferenceRoom ResourceType = "conference_room"
)

// Bay is a bookable physical resource: a simulator bay or a conference room.
// The bays endpoint returns simulators; the resources endpoint returns the
// generic resource list, which wins on id collision.
type Bay struct {
	ID   int64        `json:"id"`
	Name string       `json:"name"`
	Type ResourceType `json:"type"`
}

// BayStatus is the derived per-resource view: occupancy plus closure overlay.
// It is recomputed on every aggregation pass and never persisted.
type BayStatus struct {
	ID             int64            `json:"id"`
	Name           string           `json:"name"`
	Type           ResourceType     `json:"type"`
	IsOccupied     bool             `json:"is_occupied"`
	IsClosed       bool             `json:"is_closed"`
	ClosureReason  string           `json:"closure_reason,omitempty"`
	CurrentBooking *BookingSnapshot `json:"current_booking,omitempty"`
}
