package view

import (
	"sort"
	"time"

	"command-center-backend/internal/model"
	"command-center-backend/internal/timeutil"
)

func upcomingTours(tours []model.Tour, today string, cap int) []model.Tour {
	out := make([]model.Tour, 0, len(tours))
	for _, tour := range tours {
		if tour.Date < today || tour.Status != "scheduled" {
			continue
		}
		out = append(out, tour)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].StartTime < out[j].StartTime
	})
	if len(out) > cap {
		out = out[:cap]
	}
	return out
}

func upcomingEvents(events []model.Event, today string, cap int) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, event := range events {
		if event.Date < today || event.Status == "cancelled" {
			continue
		}
		out = append(out, event)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].StartTime < out[j].StartTime
	})
	if len(out) > cap {
		out = out[:cap]
	}
	return out
}

func upcomingWellness(classes []model.WellnessClass, today string, cap int) []model.WellnessClass {
	out := make([]model.WellnessClass, 0, len(classes))
	for _, class := range classes {
		if class.Date < today || class.Status == "cancelled" {
			continue
		}
		out = append(out, class)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].StartTime < out[j].StartTime
	})
	if len(out) > cap {
		out = out[:cap]
	}
	return out
}

// nextTour returns the first tour that has not started yet. Tours already
// under way today stay in the capped list but are skipped here.
func nextTour(tours []model.Tour, today, clock string) *model.Tour {
	for i := range tours {
		if tours[i].Date == today && tours[i].StartTime < clock {
			continue
		}
		return &tours[i]
	}
	return nil
}

// nextScheduleItem compares the next tour against the next upcoming booking
// by combined date+time instant. The tour wins ties; an unparseable
// date/time pair compares as far future instead of failing the pass.
func nextScheduleItem(tours []model.Tour, bookings []UpcomingBooking, today, clock string, loc *time.Location) *ScheduleItem {
	tour := nextTour(tours, today, clock)
	var booking *UpcomingBooking
	if len(bookings) > 0 {
		booking = &bookings[0]
	}

	if tour == nil && booking == nil {
		return nil
	}

	tourAt := timeutil.FarFuture
	if tour != nil {
		tourAt = timeutil.CombineOrFuture(tour.Date, tour.StartTime, loc)
	}
	bookingAt := timeutil.FarFuture
	if booking != nil {
		bookingAt = timeutil.CombineOrFuture(booking.Date, booking.StartTime, loc)
	}

	if tour != nil && !bookingAt.Before(tourAt) {
		return &ScheduleItem{
			Kind:      "tour",
			Title:     tour.ProspectName,
			Date:      tour.Date,
			StartTime: tour.StartTime,
			Tour:      tour,
		}
	}
	return &ScheduleItem{
		Kind:      "booking",
		Title:     booking.UserName,
		Date:      booking.Date,
		StartTime: booking.StartTime,
		Booking:   booking,
	}
}

// nextActivityItem runs the same competition between the first event and
// the first wellness class. The event wins ties.
func nextActivityItem(events []model.Event, classes []model.WellnessClass, loc *time.Location) *ActivityItem {
	var event *model.Event
	if len(events) > 0 {
		event = &events[0]
	}
	var class *model.WellnessClass
	if len(classes) > 0 {
		class = &classes[0]
	}

	if event == nil && class == nil {
		return nil
	}

	eventAt := timeutil.FarFuture
	if event != nil {
		eventAt = timeutil.CombineOrFuture(event.Date, event.StartTime, loc)
	}
	classAt := timeutil.FarFuture
	if class != nil {
		classAt = timeutil.CombineOrFuture(class.Date, class.StartTime, loc)
	}

	if event != nil && !classAt.Before(eventAt) {
		return &ActivityItem{
			Kind:      "event",
			Title:     event.Title,
			Date:      event.Date,
			StartTime: event.StartTime,
			Event:     event,
		}
	}
	return &ActivityItem{
		Kind:      "wellness",
		Title:     class.Title,
		Date:      class.Date,
		StartTime: class.StartTime,
		Wellness:  class,
	}
}
