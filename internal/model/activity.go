package model

import "time"

// Activity entry types written by the optimistic mutation layer.
const (
	ActivityBookingApproved = "booking_approved"
	ActivityBookingDeclined = "booking_declined"
	ActivityCheckedIn       = "booking_checked_in"
)

// ActivityEntry is one row of the recent-activity feed. Server entries are
// read-only; synthetic entries are appended locally ahead of server
// confirmation and removed again on rollback.
type ActivityEntry struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	BookingID string    `json:"booking_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Synthetic bool      `json:"optimistic,omitempty"`
}

// Notification is a staff notification row. The aggregation treats these as
// read-only; there is no optimistic mutation path for them.
type Notification struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
