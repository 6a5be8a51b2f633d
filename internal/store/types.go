package store

import (
	"time"

	"command-center-backend/internal/model"
)

// Snapshot is a typed copy of the store's state at one instant. Slices are
// copies; callers may reorder or trim them freely.
type Snapshot struct {
	PendingRequests  []model.BookingRecord
	PendingBookings  []model.BookingRecord
	TodayBookings    []model.BookingRecord
	UpcomingBookings []model.BookingRecord
	Tours            []model.Tour
	Events           []model.Event
	WellnessClasses  []model.WellnessClass
	Bays             []model.Bay
	Resources        []model.Bay
	Closures         []model.Closure
	Announcements    []model.Announcement
	RecentActivity   []model.ActivityEntry
	Notifications    []model.Notification
	Contacts         []model.Contact

	// LastSynced is the newest upstream write across all resources.
	LastSynced time.Time
	// FullyLoaded reports whether every core resource has been fetched at
	// least once since startup.
	FullyLoaded bool
}
