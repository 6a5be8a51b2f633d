package view

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"command-center-backend/internal/model"
	"command-center-backend/internal/store"
)

func TestUpcomingToursFilterSortCap(t *testing.T) {
	tours := []model.Tour{
		{ID: 1, Date: "2025-03-09", StartTime: "10:00", Status: "scheduled"}, // past
		{ID: 2, Date: "2025-03-12", StartTime: "10:00", Status: "cancelled"},
		{ID: 3, Date: "2025-03-11", StartTime: "14:00", Status: "scheduled"},
		{ID: 4, Date: "2025-03-11", StartTime: "09:00", Status: "scheduled"},
	}
	for i := int64(0); i < 12; i++ {
		tours = append(tours, model.Tour{
			ID: 100 + i, Date: "2025-03-20", StartTime: fmt.Sprintf("%02d:00", 8+i),
			Status: "scheduled",
		})
	}

	m := Build(&store.Snapshot{Tours: tours}, testParams())

	require.Len(t, m.Tours, 10, "tour list caps at ten")
	assert.Equal(t, int64(4), m.Tours[0].ID, "same-day tours sort by start time")
	assert.Equal(t, int64(3), m.Tours[1].ID)
	for _, tour := range m.Tours {
		assert.Equal(t, "scheduled", tour.Status)
		assert.GreaterOrEqual(t, tour.Date, "2025-03-10")
	}
}

func TestNextTourSkipsAlreadyStarted(t *testing.T) {
	// Clock is 10:30; the 09:00 tour already started but stays listed.
	tours := []model.Tour{
		{ID: 1, Date: "2025-03-10", StartTime: "09:00", Status: "scheduled"},
		{ID: 2, Date: "2025-03-10", StartTime: "15:00", Status: "scheduled"},
	}

	m := Build(&store.Snapshot{Tours: tours}, testParams())

	require.Len(t, m.Tours, 2)
	require.NotNil(t, m.NextScheduleItem)
	require.NotNil(t, m.NextScheduleItem.Tour)
	assert.Equal(t, int64(2), m.NextScheduleItem.Tour.ID)
}

func TestNextScheduleItemTourWinsTies(t *testing.T) {
	snap := &store.Snapshot{
		Tours: []model.Tour{
			{ID: 1, ProspectName: "Jordan Lee", Date: "2025-03-11",
				StartTime: "09:00", Status: "scheduled"},
		},
		UpcomingBookings: []model.BookingRecord{
			{ID: "b1", UserName: "Sam Ruiz", Date: "2025-03-11",
				StartTime: "09:00", EndTime: "10:00"},
		},
	}

	m := Build(snap, testParams())
	require.NotNil(t, m.NextScheduleItem)
	assert.Equal(t, "tour", m.NextScheduleItem.Kind)
	assert.Equal(t, "Jordan Lee", m.NextScheduleItem.Title)
}

func TestNextScheduleItemEarlierBookingWins(t *testing.T) {
	snap := &store.Snapshot{
		Tours: []model.Tour{
			{ID: 1, Date: "2025-03-11", StartTime: "09:00", Status: "scheduled"},
		},
		UpcomingBookings: []model.BookingRecord{
			{ID: "b1", UserName: "Sam Ruiz", Date: "2025-03-10",
				StartTime: "16:00", EndTime: "17:00"},
		},
	}

	m := Build(snap, testParams())
	require.NotNil(t, m.NextScheduleItem)
	assert.Equal(t, "booking", m.NextScheduleItem.Kind)
	assert.Equal(t, "b1", m.NextScheduleItem.Booking.ID)
}

func TestNextScheduleItemUnparseableDateLoses(t *testing.T) {
	snap := &store.Snapshot{
		Tours: []model.Tour{
			{ID: 1, Date: "2025-04-20", StartTime: "09:00", Status: "scheduled"},
		},
		UpcomingBookings: []model.BookingRecord{
			// Day 32 never parses. The row compares as far future and loses,
			// even though its date string sorts ahead of the tour's.
			{ID: "bad", Date: "2025-03-32", StartTime: "08:00", EndTime: "09:00"},
		},
	}

	m := Build(snap, testParams())
	require.NotNil(t, m.NextScheduleItem)
	assert.Equal(t, "tour", m.NextScheduleItem.Kind)
}

func TestNextActivityItemEventWinsTies(t *testing.T) {
	snap := &store.Snapshot{
		Events: []model.Event{
			{ID: 1, Title: "League Night", Date: "2025-03-12", StartTime: "18:00"},
		},
		WellnessClasses: []model.WellnessClass{
			{ID: 2, Title: "Mobility", Date: "2025-03-12", StartTime: "18:00"},
		},
	}

	m := Build(snap, testParams())
	require.NotNil(t, m.NextActivityItem)
	assert.Equal(t, "event", m.NextActivityItem.Kind)
	assert.Equal(t, "League Night", m.NextActivityItem.Title)
}

func TestNextActivityItemWellnessOnly(t *testing.T) {
	snap := &store.Snapshot{
		WellnessClasses: []model.WellnessClass{
			{ID: 2, Title: "Sunrise Yoga", Date: "2025-03-11", StartTime: "06:30"},
		},
	}

	m := Build(snap, testParams())
	require.NotNil(t, m.NextActivityItem)
	assert.Equal(t, "wellness", m.NextActivityItem.Kind)
	assert.Equal(t, "Sunrise Yoga", m.NextActivityItem.Title)
}

func TestWellnessCapIsFive(t *testing.T) {
	var classes []model.WellnessClass
	for i := int64(0); i < 8; i++ {
		classes = append(classes, model.WellnessClass{
			ID: i, Date: "2025-03-15", StartTime: fmt.Sprintf("%02d:00", 8+i),
		})
	}

	m := Build(&store.Snapshot{WellnessClasses: classes}, testParams())
	assert.Len(t, m.WellnessClasses, 5)
}

func TestScheduleInstantsRespectLocation(t *testing.T) {
	// Same wall-clock inputs, different zone: the winner must not change,
	// both candidates are combined in the same location.
	chicago, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	params := testParams()
	params.Location = chicago
	params.Now = time.Date(2025, 3, 10, 16, 30, 0, 0, time.UTC) // 10:30 in Chicago

	snap := &store.Snapshot{
		Tours: []model.Tour{
			{ID: 1, Date: "2025-03-10", StartTime: "11:00", Status: "scheduled"},
		},
	}

	m := Build(snap, params)
	require.NotNil(t, m.NextScheduleItem)
	assert.Equal(t, "tour", m.NextScheduleItem.Kind)
}
