package model

// BookingStatus is the lifecycle status of a booking-like record.
type BookingStatus string

const (
	StatusPending             BookingStatus = "pending"
	StatusPendingApproval     BookingStatus = "pending_approval"
	StatusCancellationPending BookingStatus = "cancellation_pending"
	StatusApproved            BookingStatus = "approved"
	StatusAttended            BookingStatus = "attended"
	StatusNoShow              BookingStatus = "no_show"
	StatusDeclined            BookingStatus = "declined"
	StatusCancelled           BookingStatus = "cancelled"
	StatusCheckedOut          BookingStatus = "checked_out"
)

// Pending reports whether the status belongs to the pending family
// (awaiting a staff decision).
func (s BookingStatus) Pending() bool {
	switch s {
	case StatusPending, StatusPendingApproval, StatusCancellationPending:
		return true
	}
	return false
}

// Terminal reports whether the status no longer occupies a resource.
func (s BookingStatus) Terminal() bool {
	switch s {
	case StatusCheckedOut, StatusCancelled, StatusDeclined, StatusNoShow:
		return true
	}
	return false
}

// BookingSource tags where a booking-like record was loaded from.
type BookingSource string

const (
	SourceBookingRequest BookingSource = "booking_request"
	SourceBooking        BookingSource = "booking"
	SourceCalendar       BookingSource = "calendar"
)

// BookingRecord is the unified view of "something occupying a bay or room
// at a time", regardless of which upstream collection it came from.
// Numeric upstream ids are canonicalized to their decimal string form;
// calendar-import ids keep their "cal_" prefix.
type BookingRecord struct {
	ID            string        `json:"id"`
	UserEmail     string        `json:"user_email,omitempty"`
	UserName      string        `json:"user_name"`
	ResourceID    int64         `json:"resource_id"`
	ResourceName  string        `json:"resource_name"`
	ResourceType  ResourceType  `json:"resource_type"`
	Date          string        `json:"date"`       // YYYY-MM-DD, facility-local
	StartTime     string        `json:"start_time"` // HH:MM, 24-hour
	EndTime       string        `json:"end_time"`
	Status        BookingStatus `json:"status"`
	Source        BookingSource `json:"source"`
	HasUnpaidFees bool          `json:"has_unpaid_fees"`
	TotalOwed     float64       `json:"total_owed"`
	Unmatched     bool          `json:"is_unmatched"`
	HasConflict   bool          `json:"has_conflict"`
}

// Key identifies a record uniquely across source collections.
func (b BookingRecord) Key() string {
	return string(b.Source) + "/" + b.ID
}

// BookingSnapshot is the narrowed projection attached to an occupied bay.
type BookingSnapshot struct {
	ID       string        `json:"id"`
	UserName string        `json:"user_name"`
	EndTime  string        `json:"end_time"`
	Status   BookingStatus `json:"status"`
}
