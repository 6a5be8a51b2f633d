// Package view assembles the command-center view model. Every function here
// is a pure function of the snapshot it is handed: rebuilding from the same
// inputs yields the same view, which is what makes optimistic rollback safe.
package view

import (
	"sort"
	"time"

	"command-center-backend/internal/model"
	"command-center-backend/internal/store"
	"command-center-backend/internal/timeutil"
)

// UpcomingBooking is the narrowed projection used outside the current day.
type UpcomingBooking struct {
	ID           string             `json:"id"`
	UserName     string             `json:"user_name"`
	ResourceName string             `json:"resource_name"`
	ResourceType model.ResourceType `json:"resource_type"`
	Date         string             `json:"date"`
	StartTime    string             `json:"start_time"`
	EndTime      string             `json:"end_time"`
}

// ScheduleItem is the winner of the tour-versus-booking "what's next"
// competition.
type ScheduleItem struct {
	Kind      string           `json:"kind"` // "tour" or "booking"
	Title     string           `json:"title"`
	Date      string           `json:"date"`
	StartTime string           `json:"start_time"`
	Tour      *model.Tour      `json:"tour,omitempty"`
	Booking   *UpcomingBooking `json:"booking,omitempty"`
}

// ActivityItem is the winner of the event-versus-wellness competition.
type ActivityItem struct {
	Kind      string               `json:"kind"` // "event" or "wellness"
	Title     string               `json:"title"`
	Date      string               `json:"date"`
	StartTime string               `json:"start_time"`
	Event     *model.Event         `json:"event,omitempty"`
	Wellness  *model.WellnessClass `json:"wellness,omitempty"`
}

// Model is the single object the dashboard consumes. It is assembled fresh
// on every pass and never stored.
type Model struct {
	PendingQueue     []model.BookingRecord `json:"pending_queue"`
	TodayBookings    []model.BookingRecord `json:"today_bookings"`
	UpcomingBookings []UpcomingBooking     `json:"upcoming_bookings"`
	Tours            []model.Tour          `json:"tours"`
	Events           []model.Event         `json:"events"`
	WellnessClasses  []model.WellnessClass `json:"wellness_classes"`
	NextScheduleItem *ScheduleItem         `json:"next_schedule_item,omitempty"`
	NextActivityItem *ActivityItem         `json:"next_activity_item,omitempty"`
	BayStatuses      []model.BayStatus     `json:"bay_statuses"`
	RelevantClosures []model.Closure       `json:"relevant_closures"`
	UpcomingClosure  *model.Closure        `json:"upcoming_closure,omitempty"`
	Announcements    []model.Announcement  `json:"announcements"`
	RecentActivity   []model.ActivityEntry `json:"recent_activity"`
	Notifications    []model.Notification  `json:"notifications"`
	IsLoading        bool                  `json:"is_loading"`
	LastSynced       time.Time             `json:"last_synced"`
}

// Params carries the per-pass inputs that are not part of the snapshot.
type Params struct {
	Now      time.Time
	Location *time.Location
	Rule     model.UnmatchedRule
}

const (
	tourCap         = 10
	eventCap        = 10
	wellnessCap     = 5
	announcementCap = 5
)

// Build assembles the view model from a snapshot. The derivation order
// matters: occupancy and the closure overlay read the outputs of the
// earlier steps.
func Build(snap *store.Snapshot, p Params) *Model {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	now := p.Now.In(loc)
	today := timeutil.DateString(now)
	tomorrow := timeutil.DateString(now.AddDate(0, 0, 1))
	clock := timeutil.ClockString(now)

	dir := NewDirectory(snap.Contacts)

	m := &Model{
		PendingQueue:     buildPendingQueue(snap.PendingRequests, snap.PendingBookings, dir, p.Rule),
		TodayBookings:    finishRecords(snap.TodayBookings, dir, p.Rule),
		UpcomingBookings: buildUpcomingBookings(snap.UpcomingBookings, dir, today, clock),
		Tours:            upcomingTours(snap.Tours, today, tourCap),
		Events:           upcomingEvents(snap.Events, today, eventCap),
		WellnessClasses:  upcomingWellness(snap.WellnessClasses, today, wellnessCap),
		RelevantClosures: relevantClosures(snap.Closures, today, tomorrow, clock),
		UpcomingClosure:  upcomingClosure(snap.Closures, tomorrow),
		Announcements:    activeAnnouncements(snap.Announcements, announcementCap),
		RecentActivity:   snap.RecentActivity,
		Notifications:    snap.Notifications,
		IsLoading:        !snap.FullyLoaded,
		LastSynced:       snap.LastSynced,
	}

	m.NextScheduleItem = nextScheduleItem(m.Tours, m.UpcomingBookings, today, clock, loc)
	m.NextActivityItem = nextActivityItem(m.Events, m.WellnessClasses, loc)
	m.BayStatuses = buildBayStatuses(snap.Bays, snap.Resources, m.TodayBookings, snap.Closures, today, clock)

	return m
}

// finishRecord derives the unmatched flag from the raw record, then applies
// name resolution. The order matters: the heuristic inspects the upstream
// placeholder name, not the resolved one.
func finishRecord(rec model.BookingRecord, dir Directory, rule model.UnmatchedRule) model.BookingRecord {
	rec.Unmatched = rule.Matches(rec)
	rec.UserName = dir.Resolve(rec.UserEmail, rec.UserName)
	return rec
}

func finishRecords(records []model.BookingRecord, dir Directory, rule model.UnmatchedRule) []model.BookingRecord {
	out := make([]model.BookingRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, finishRecord(rec, dir, rule))
	}
	return out
}

// buildPendingQueue concatenates request-sourced pending rows ahead of
// ad-hoc pending bookings. The same id appearing in both collections is a
// transient sync artifact; the request row wins.
func buildPendingQueue(requests, adHoc []model.BookingRecord, dir Directory, rule model.UnmatchedRule) []model.BookingRecord {
	queue := make([]model.BookingRecord, 0, len(requests)+len(adHoc))
	seen := make(map[string]bool, len(requests))

	for _, rec := range requests {
		if !rec.Status.Pending() {
			continue
		}
		queue = append(queue, finishRecord(rec, dir, rule))
		seen[rec.ID] = true
	}
	for _, rec := range adHoc {
		if !rec.Status.Pending() || seen[rec.ID] {
			continue
		}
		queue = append(queue, finishRecord(rec, dir, rule))
	}
	return queue
}

// buildUpcomingBookings filters the 30-day window down to bookings that
// have not ended yet and projects them for display.
func buildUpcomingBookings(records []model.BookingRecord, dir Directory, today, clock string) []UpcomingBooking {
	out := make([]UpcomingBooking, 0, len(records))
	for _, rec := range records {
		if rec.Date < today {
			continue
		}
		if rec.Date == today && rec.EndTime <= clock {
			continue
		}
		out = append(out, UpcomingBooking{
			ID:           rec.ID,
			UserName:     dir.Resolve(rec.UserEmail, rec.UserName),
			ResourceName: rec.ResourceName,
			ResourceType: rec.ResourceType,
			Date:         rec.Date,
			StartTime:    rec.StartTime,
			EndTime:      rec.EndTime,
		})
	}
	// Zero-padded ISO-like strings make lexicographic comparison safe.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out
}

// SortPendingByDate orders a copy of the queue by date and start time. The
// merged queue keeps provenance order by default; surfaces that want a
// chronological read use this variant.
func SortPendingByDate(queue []model.BookingRecord) []model.BookingRecord {
	out := append([]model.BookingRecord(nil), queue...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out
}

func activeAnnouncements(announcements []model.Announcement, cap int) []model.Announcement {
	out := make([]model.Announcement, 0, len(announcements))
	for _, a := range announcements {
		if !a.IsActive {
			continue
		}
		out = append(out, a)
		if len(out) == cap {
			break
		}
	}
	return out
}
