package clubapi

import (
	"context"
	"net/url"
	"time"

	"command-center-backend/internal/model"
	"command-center-backend/internal/timeutil"
)

// FetchBookingRequests loads every booking request, resolved ones included.
// The pending filter is applied downstream so a request that flips state
// between two fetches still reconciles cleanly.
func (c *Client) FetchBookingRequests(ctx context.Context) ([]model.BookingRecord, error) {
	var dtos []bookingDTO
	query := url.Values{"include_all": {"true"}}
	if err := c.getList(ctx, "/api/booking-requests", query, &dtos); err != nil {
		return nil, err
	}
	return normalizeBookings(dtos, model.SourceBookingRequest), nil
}

// FetchPendingBookings loads ad-hoc bookings that still await a decision.
func (c *Client) FetchPendingBookings(ctx context.Context) ([]model.BookingRecord, error) {
	var dtos []bookingDTO
	if err := c.getList(ctx, "/api/bookings/pending", nil, &dtos); err != nil {
		return nil, err
	}
	return normalizeBookings(dtos, model.SourceBooking), nil
}

// FetchBookings loads approved bookings inside the given date range,
// boundaries included.
func (c *Client) FetchBookings(ctx context.Context, start, end time.Time) ([]model.BookingRecord, error) {
	var dtos []bookingDTO
	query := url.Values{
		"start_date": {timeutil.DateString(start)},
		"end_date":   {timeutil.DateString(end)},
	}
	if err := c.getList(ctx, "/api/bookings", query, &dtos); err != nil {
		return nil, err
	}
	return normalizeBookings(dtos, model.SourceBooking), nil
}

// FetchTours loads upcoming prospect tours.
func (c *Client) FetchTours(ctx context.Context) ([]model.Tour, error) {
	var dtos []tourDTO
	query := url.Values{"upcoming": {"true"}}
	if err := c.getList(ctx, "/api/tours", query, &dtos); err != nil {
		return nil, err
	}
	tours := make([]model.Tour, 0, len(dtos))
	for _, d := range dtos {
		tours = append(tours, d.normalize())
	}
	return tours, nil
}

// FetchEvents loads club events.
func (c *Client) FetchEvents(ctx context.Context) ([]model.Event, error) {
	var dtos []eventDTO
	if err := c.getList(ctx, "/api/events", nil, &dtos); err != nil {
		return nil, err
	}
	events := make([]model.Event, 0, len(dtos))
	for _, d := range dtos {
		events = append(events, d.normalize())
	}
	return events, nil
}

// FetchWellnessClasses loads scheduled wellness classes.
func (c *Client) FetchWellnessClasses(ctx context.Context) ([]model.WellnessClass, error) {
	var dtos []wellnessDTO
	if err := c.getList(ctx, "/api/wellness-classes", nil, &dtos); err != nil {
		return nil, err
	}
	classes := make([]model.WellnessClass, 0, len(dtos))
	for _, d := range dtos {
		classes = append(classes, d.normalize())
	}
	return classes, nil
}

// FetchBays loads the simulator bay list.
func (c *Client) FetchBays(ctx context.Context) ([]model.Bay, error) {
	return c.fetchResourceList(ctx, "/api/bays")
}

// FetchResources loads the generic bookable resources (conference rooms and
// any non-bay spaces).
func (c *Client) FetchResources(ctx context.Context) ([]model.Bay, error) {
	return c.fetchResourceList(ctx, "/api/resources")
}

func (c *Client) fetchResourceList(ctx context.Context, path string) ([]model.Bay, error) {
	var dtos []resourceDTO
	if err := c.getList(ctx, path, nil, &dtos); err != nil {
		return nil, err
	}
	bays := make([]model.Bay, 0, len(dtos))
	for _, d := range dtos {
		bays = append(bays, d.normalize())
	}
	return bays, nil
}

// FetchClosures loads facility closure notices.
func (c *Client) FetchClosures(ctx context.Context) ([]model.Closure, error) {
	var dtos []closureDTO
	if err := c.getList(ctx, "/api/closures", nil, &dtos); err != nil {
		return nil, err
	}
	closures := make([]model.Closure, 0, len(dtos))
	for _, d := range dtos {
		closures = append(closures, d.normalize())
	}
	return closures, nil
}

// FetchAnnouncements loads club announcements.
func (c *Client) FetchAnnouncements(ctx context.Context) ([]model.Announcement, error) {
	var dtos []announcementDTO
	if err := c.getList(ctx, "/api/announcements", nil, &dtos); err != nil {
		return nil, err
	}
	announcements := make([]model.Announcement, 0, len(dtos))
	for _, d := range dtos {
		announcements = append(announcements, d.normalize(c.loc))
	}
	return announcements, nil
}

// FetchRecentActivity loads the recent-activity feed.
func (c *Client) FetchRecentActivity(ctx context.Context) ([]model.ActivityEntry, error) {
	var dtos []activityDTO
	if err := c.getList(ctx, "/api/recent-activity", nil, &dtos); err != nil {
		return nil, err
	}
	entries := make([]model.ActivityEntry, 0, len(dtos))
	for _, d := range dtos {
		entries = append(entries, d.normalize(c.loc))
	}
	return entries, nil
}

// FetchNotifications loads the notification feed for one staff account.
func (c *Client) FetchNotifications(ctx context.Context, email string) ([]model.Notification, error) {
	var dtos []notificationDTO
	query := url.Values{"user_email": {email}}
	if err := c.getList(ctx, "/api/notifications", query, &dtos); err != nil {
		return nil, err
	}
	notifications := make([]model.Notification, 0, len(dtos))
	for _, d := range dtos {
		notifications = append(notifications, d.normalize(c.loc))
	}
	return notifications, nil
}

// FetchContacts loads the member-name directory.
func (c *Client) FetchContacts(ctx context.Context) ([]model.Contact, error) {
	var dtos []contactDTO
	if err := c.getList(ctx, "/api/contacts", nil, &dtos); err != nil {
		return nil, err
	}
	contacts := make([]model.Contact, 0, len(dtos))
	for _, d := range dtos {
		contacts = append(contacts, d.normalize())
	}
	return contacts, nil
}

// RequestDecision is the payload for resolving a booking request. Status is
// "approved" or "declined"; ResourceID optionally reassigns the bay and
// TrackmanExternalID links the launch-monitor session.
type RequestDecision struct {
	Status             string  `json:"status"`
	ResourceID         *int64  `json:"resource_id,omitempty"`
	TrackmanExternalID *string `json:"trackman_external_id,omitempty"`
}

// UpdateBookingRequest resolves a booking request upstream.
func (c *Client) UpdateBookingRequest(ctx context.Context, id string, decision RequestDecision) error {
	return c.put(ctx, "/api/booking-requests/"+url.PathEscape(id), decision)
}

// CheckInBooking marks a booking attended (or the given status). A 402
// reply surfaces as a StatusError with its RequiresRoster discriminator.
func (c *Client) CheckInBooking(ctx context.Context, id, status string) error {
	payload := struct {
		Status string `json:"status,omitempty"`
	}{Status: status}
	return c.put(ctx, "/api/bookings/"+url.PathEscape(id)+"/checkin", payload)
}
