package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"command-center-backend/internal/model"
	"command-center-backend/internal/store"
)

// now is 2025-03-10 10:30 UTC throughout the view tests.
var testNow = time.Date(2025, 3, 10, 10, 30, 0, 0, time.UTC)

func testParams() Params {
	return Params{
		Now:      testNow,
		Location: time.UTC,
		Rule: model.UnmatchedRule{
			EmailPatterns: []string{"placeholder"},
			NameMarkers:   []string{"Unknown"},
		},
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	snap := &store.Snapshot{
		PendingRequests: []model.BookingRecord{
			{ID: "1", Status: model.StatusPending, Source: model.SourceBookingRequest,
				Date: "2025-03-11", StartTime: "09:00", EndTime: "10:00"},
		},
		TodayBookings: []model.BookingRecord{
			{ID: "2", Status: model.StatusApproved, ResourceID: 1,
				Date: "2025-03-10", StartTime: "10:00", EndTime: "11:00"},
		},
		Bays:        []model.Bay{{ID: 1, Name: "Bay 1", Type: model.ResourceSimulator}},
		FullyLoaded: true,
		LastSynced:  testNow,
	}

	first := Build(snap, testParams())
	second := Build(snap, testParams())
	assert.Equal(t, first, second, "same inputs must yield the same view")
}

func TestPendingQueueOrderAndDedup(t *testing.T) {
	snap := &store.Snapshot{
		Contacts: []model.Contact{
			{Email: "alex@club.test", FirstName: "Alex", LastName: "Chen"},
		},
		PendingRequests: []model.BookingRecord{
			{ID: "1", Status: model.StatusPending, Source: model.SourceBookingRequest,
				UserEmail: "alex@club.test"},
			{ID: "2", Status: model.StatusApproved, Source: model.SourceBookingRequest},
			{ID: "3", Status: model.StatusCancellationPending, Source: model.SourceBookingRequest},
		},
		PendingBookings: []model.BookingRecord{
			// Same id as a request row: the request wins.
			{ID: "3", Status: model.StatusPending, Source: model.SourceBooking},
			{ID: "4", Status: model.StatusPendingApproval, Source: model.SourceBooking,
				UserName: "Walk In"},
		},
	}

	m := Build(snap, testParams())
	require.Len(t, m.PendingQueue, 3)

	assert.Equal(t, "1", m.PendingQueue[0].ID)
	assert.Equal(t, "Alex Chen", m.PendingQueue[0].UserName)
	assert.Equal(t, model.SourceBookingRequest, m.PendingQueue[0].Source)

	assert.Equal(t, "3", m.PendingQueue[1].ID)
	assert.Equal(t, model.SourceBookingRequest, m.PendingQueue[1].Source,
		"duplicated id keeps the request-sourced row")

	assert.Equal(t, "4", m.PendingQueue[2].ID)
	assert.Equal(t, "Walk In", m.PendingQueue[2].UserName)
}

func TestPendingQueueUnmatchedFlag(t *testing.T) {
	snap := &store.Snapshot{
		PendingRequests: []model.BookingRecord{
			{ID: "1", Status: model.StatusPending, UserEmail: "placeholder-17@sys.test"},
			{ID: "2", Status: model.StatusPending, UserName: "Unknown Golfer"},
			{ID: "3", Status: model.StatusPending, UserName: "Sam Ruiz"},
			{ID: "4", Status: model.StatusPending, Unmatched: true, UserName: "Flagged Upstream"},
		},
	}

	m := Build(snap, testParams())
	require.Len(t, m.PendingQueue, 4)
	assert.True(t, m.PendingQueue[0].Unmatched, "placeholder email pattern")
	assert.True(t, m.PendingQueue[1].Unmatched, "name marker")
	assert.False(t, m.PendingQueue[2].Unmatched)
	assert.True(t, m.PendingQueue[3].Unmatched, "explicit upstream flag")
}

func TestUpcomingBookingsWindowAndSort(t *testing.T) {
	snap := &store.Snapshot{
		Contacts: []model.Contact{
			{Email: "alex@club.test", FirstName: "Alex", LastName: "Chen"},
		},
		UpcomingBookings: []model.BookingRecord{
			{ID: "old", Date: "2025-03-09", StartTime: "09:00", EndTime: "10:00"},
			{ID: "ended", Date: "2025-03-10", StartTime: "08:00", EndTime: "09:00"},
			{ID: "ending-now", Date: "2025-03-10", StartTime: "09:30", EndTime: "10:30"},
			{ID: "running", Date: "2025-03-10", StartTime: "10:00", EndTime: "11:00",
				UserEmail: "alex@club.test"},
			{ID: "next-week", Date: "2025-03-17", StartTime: "08:00", EndTime: "09:00"},
			{ID: "tomorrow", Date: "2025-03-11", StartTime: "07:00", EndTime: "08:00"},
		},
	}

	m := Build(snap, testParams())

	var ids []string
	for _, b := range m.UpcomingBookings {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{"running", "tomorrow", "next-week"}, ids,
		"past and already-ended bookings drop out; the rest sort by date then start")
	assert.Equal(t, "Alex Chen", m.UpcomingBookings[0].UserName)
}

func TestAnnouncementsActiveAndCapped(t *testing.T) {
	var announcements []model.Announcement
	for i := int64(1); i <= 7; i++ {
		announcements = append(announcements, model.Announcement{ID: i, IsActive: true})
	}
	announcements = append(announcements, model.Announcement{ID: 99, IsActive: false})

	m := Build(&store.Snapshot{Announcements: announcements}, testParams())
	require.Len(t, m.Announcements, 5)
	for _, a := range m.Announcements {
		assert.True(t, a.IsActive)
	}
}

func TestBuildLoadingAndLastSynced(t *testing.T) {
	partial := Build(&store.Snapshot{FullyLoaded: false}, testParams())
	assert.True(t, partial.IsLoading)

	full := Build(&store.Snapshot{FullyLoaded: true, LastSynced: testNow}, testParams())
	assert.False(t, full.IsLoading)
	assert.Equal(t, testNow, full.LastSynced)
}
