package view

import (
	"sort"

	"command-center-backend/internal/model"
	"command-center-backend/internal/parse"
)

// relevantClosures keeps closures worth showing on the dashboard: anything
// still in effect today plus anything starting by tomorrow. A closure
// ending today drops out once its end time passes.
func relevantClosures(closures []model.Closure, today, tomorrow, clock string) []model.Closure {
	out := make([]model.Closure, 0, len(closures))
	for _, c := range closures {
		if c.EndDate < today || c.StartDate > tomorrow {
			continue
		}
		if c.EndDate == today && c.EndTime != "" && c.EndTime <= clock {
			continue
		}
		out = append(out, c)
	}
	return out
}

// upcomingClosure picks the earliest closure beyond the relevant window,
// for teaser widgets.
func upcomingClosure(closures []model.Closure, tomorrow string) *model.Closure {
	var next *model.Closure
	for i := range closures {
		c := closures[i]
		if c.StartDate <= tomorrow {
			continue
		}
		if next == nil ||
			c.StartDate < next.StartDate ||
			(c.StartDate == next.StartDate && c.StartTime < next.StartTime) {
			next = &closures[i]
		}
	}
	if next == nil {
		return nil
	}
	copied := *next
	return &copied
}

// closureActive reports whether a closure blocks resources right now. The
// time-of-day window only applies when both times are set.
func closureActive(c model.Closure, today, clock string) bool {
	if c.StartDate > today {
		return false
	}
	if c.EndDate != "" && c.EndDate < today {
		return false
	}
	if c.StartTime != "" && c.EndTime != "" {
		if clock < c.StartTime || clock >= c.EndTime {
			return false
		}
	}
	return true
}

// buildBayStatuses derives one status per known resource: occupancy from
// today's bookings, closure state from the active closures. Generic
// resources override bays on id collision.
func buildBayStatuses(bays, resources []model.Bay, todays []model.BookingRecord, closures []model.Closure, today, clock string) []model.BayStatus {
	merged := make(map[int64]model.Bay, len(bays)+len(resources))
	order := make([]int64, 0, len(bays)+len(resources))
	for _, b := range bays {
		if _, exists := merged[b.ID]; !exists {
			order = append(order, b.ID)
		}
		merged[b.ID] = b
	}
	for _, r := range resources {
		if _, exists := merged[r.ID]; !exists {
			order = append(order, r.ID)
		}
		merged[r.ID] = r
	}

	// Occupant per resource id: any non-terminal booking whose window
	// contains "now". Overlaps are a data-quality issue; last write wins.
	occupants := make(map[int64]model.BookingRecord)
	for _, rec := range todays {
		if rec.Status.Terminal() {
			continue
		}
		if rec.StartTime == "" || rec.EndTime == "" {
			continue
		}
		if rec.StartTime <= clock && clock < rec.EndTime {
			occupants[rec.ResourceID] = rec
		}
	}

	type activeClosure struct {
		areas  parse.AreaSet
		reason string
	}
	var active []activeClosure
	for _, c := range closures {
		if !closureActive(c, today, clock) {
			continue
		}
		areas := parse.ParseAffectedAreas(c.AffectedAreas)
		if areas.Empty() {
			continue
		}
		reason := c.Reason
		if reason == "" {
			reason = c.Title
		}
		active = append(active, activeClosure{areas: areas, reason: reason})
	}

	statuses := make([]model.BayStatus, 0, len(order))
	for _, id := range order {
		bay := merged[id]
		status := model.BayStatus{
			ID:   bay.ID,
			Name: bay.Name,
			Type: bay.Type,
		}

		if occupant, ok := occupants[bay.ID]; ok {
			status.IsOccupied = true
			status.CurrentBooking = &model.BookingSnapshot{
				ID:       occupant.ID,
				UserName: occupant.UserName,
				EndTime:  occupant.EndTime,
				Status:   occupant.Status,
			}
		}

		isRoom := bay.Type == model.ResourceConferenceRoom
		for _, c := range active {
			if c.areas.Covers(bay.ID, isRoom) {
				status.IsClosed = true
				status.ClosureReason = c.reason
				break
			}
		}

		statuses = append(statuses, status)
	}

	sort.SliceStable(statuses, func(i, j int) bool {
		iRoom := statuses[i].Type == model.ResourceConferenceRoom
		jRoom := statuses[j].Type == model.ResourceConferenceRoom
		if iRoom != jRoom {
			return jRoom
		}
		return parse.NaturalLess(statuses[i].Name, statuses[j].Name)
	})
	return statuses
}
