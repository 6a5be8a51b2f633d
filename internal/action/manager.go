// Package action runs the staff mutations (approve, deny, check-in)
// optimistically: the store is patched before the upstream call confirms
// and restored to its exact prior state when the call fails.
package action

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"command-center-backend/internal/clubapi"
	"command-center-backend/internal/events"
	"command-center-backend/internal/model"
	"command-center-backend/internal/store"
)

// ErrInProgress is returned when the same action key is already running.
var ErrInProgress = errors.New("action already in progress")

// Corrective flows a 402 check-in reply routes into.
const (
	FlowCompleteRoster = "complete_roster"
	FlowCollectPayment = "collect_payment"
)

// Upstream is the slice of the club API the mutations need.
type Upstream interface {
	UpdateBookingRequest(ctx context.Context, id string, decision clubapi.RequestDecision) error
	CheckInBooking(ctx context.Context, id, status string) error
}

// Manager owns the per-action state machine: idle, in-flight, then either
// committed or rolled back. Duplicate triggers for a key are rejected while
// it is in flight; approve and deny on the same id use distinct keys and
// are not mutually locked, matching the upstream contract where the server
// is the final arbiter.
type Manager struct {
	upstream Upstream
	store    store.Store
	bus      *events.Bus
	now      func() time.Time

	mu       sync.Mutex
	inFlight map[string]bool
}

// NewManager creates a manager publishing completions on bus.
func NewManager(upstream Upstream, s store.Store, bus *events.Bus) *Manager {
	return &Manager{
		upstream: upstream,
		store:    s,
		bus:      bus,
		now:      time.Now,
		inFlight: make(map[string]bool),
	}
}

// ActiveKeys lists the action keys currently in flight, so the dashboard
// can disable their triggers.
func (m *Manager) ActiveKeys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.inFlight))
	for key := range m.inFlight {
		keys = append(keys, key)
	}
	return keys
}

func (m *Manager) begin(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inFlight[key] {
		return ErrInProgress
	}
	m.inFlight[key] = true
	return nil
}

func (m *Manager) finish(key string) {
	m.mu.Lock()
	delete(m.inFlight, key)
	m.mu.Unlock()
}

// ApproveOptions carries the optional approve parameters.
type ApproveOptions struct {
	ResourceID         *int64
	TrackmanExternalID *string
}

// Approve resolves a pending booking request as approved. The request is
// removed from the pending collections and a synthetic activity entry is
// written before the upstream call; both are undone if it fails.
func (m *Manager) Approve(ctx context.Context, id string, opts ApproveOptions) error {
	return m.resolveRequest(ctx, id, model.StatusApproved, opts)
}

// Deny resolves a pending booking request as declined.
func (m *Manager) Deny(ctx context.Context, id string) error {
	return m.resolveRequest(ctx, id, model.StatusDeclined, ApproveOptions{})
}

func (m *Manager) resolveRequest(ctx context.Context, id string, decision model.BookingStatus, opts ApproveOptions) error {
	verb := "approve"
	activityType := model.ActivityBookingApproved
	if decision == model.StatusDeclined {
		verb = "deny"
		activityType = model.ActivityBookingDeclined
	}

	key := verb + "-" + id
	if err := m.begin(key); err != nil {
		return err
	}
	defer m.finish(key)

	capturedRequests, _ := m.store.Entry(store.KeyPendingRequests)
	capturedBookings, _ := m.store.Entry(store.KeyPendingBookings)

	name := m.removePending(store.KeyPendingRequests, id)
	if adHoc := m.removePending(store.KeyPendingBookings, id); name == "" {
		name = adHoc
	}
	if name == "" {
		name = "Guest"
	}

	message := fmt.Sprintf("Approved booking request for %s", name)
	if decision == model.StatusDeclined {
		message = fmt.Sprintf("Declined booking request for %s", name)
	}
	entryID := m.appendActivity(key, activityType, id, message)

	err := m.upstream.UpdateBookingRequest(ctx, id, clubapi.RequestDecision{
		Status:             string(decision),
		ResourceID:         opts.ResourceID,
		TrackmanExternalID: opts.TrackmanExternalID,
	})
	if err != nil {
		m.restore(store.KeyPendingRequests, capturedRequests, pendingAbsent(id))
		m.restore(store.KeyPendingBookings, capturedBookings, pendingAbsent(id))
		m.removeActivity(entryID)
		return fmt.Errorf("failed to %s booking request %s: %w", verb, id, err)
	}

	m.publishCompleted(verb, id)
	return nil
}

// CheckInResult reports the outcome of a check-in. RequiredFlow is empty on
// success; a 402 reply sets it to the corrective flow the staff member must
// run, after the optimistic change has been rolled back.
type CheckInResult struct {
	RequiredFlow string
	Message      string
}

// CheckIn flips a booking to the target status (attended when empty). A 402
// reply is a domain outcome, not an error: the result names the corrective
// flow and err is nil.
func (m *Manager) CheckIn(ctx context.Context, id string, target model.BookingStatus) (*CheckInResult, error) {
	if target == "" {
		target = model.StatusAttended
	}

	key := "checkin-" + id
	if err := m.begin(key); err != nil {
		return nil, err
	}
	defer m.finish(key)

	capturedToday, _ := m.store.Entry(store.KeyTodayBookings)

	name := m.flipStatus(store.KeyTodayBookings, id, target)
	if name == "" {
		name = "Guest"
	}
	entryID := m.appendActivity(key, model.ActivityCheckedIn, id,
		fmt.Sprintf("Checked in %s", name))

	statusParam := ""
	if target != model.StatusAttended {
		statusParam = string(target)
	}

	err := m.upstream.CheckInBooking(ctx, id, statusParam)
	if err == nil {
		m.publishCompleted("checkin", id)
		return &CheckInResult{}, nil
	}

	m.restore(store.KeyTodayBookings, capturedToday, statusIs(id, target))
	m.removeActivity(entryID)

	if statusErr, ok := clubapi.AsPaymentRequired(err); ok {
		flow := FlowCollectPayment
		if statusErr.RequiresRoster {
			flow = FlowCompleteRoster
		}
		return &CheckInResult{RequiredFlow: flow, Message: statusErr.Message}, nil
	}
	return nil, fmt.Errorf("failed to check in booking %s: %w", id, err)
}

// removePending drops the record with the given id from a pending
// collection and returns its display name, if it was present.
func (m *Manager) removePending(key, id string) string {
	var name string
	m.store.Update(key, func(data any) any {
		records, _ := data.([]model.BookingRecord)
		out := make([]model.BookingRecord, 0, len(records))
		for _, rec := range records {
			if rec.ID == id {
				name = rec.UserName
				continue
			}
			out = append(out, rec)
		}
		return out
	})
	return name
}

// flipStatus sets the booking's status in a collection and returns its
// display name, if it was present.
func (m *Manager) flipStatus(key, id string, status model.BookingStatus) string {
	var name string
	m.store.Update(key, func(data any) any {
		records, _ := data.([]model.BookingRecord)
		out := append([]model.BookingRecord(nil), records...)
		for i := range out {
			if out[i].ID == id {
				out[i].Status = status
				name = out[i].UserName
			}
		}
		return out
	})
	return name
}

// appendActivity prepends a synthetic feed entry and returns its id. The id
// embeds the action key so rollback can remove exactly this entry.
func (m *Manager) appendActivity(key, activityType, bookingID, message string) string {
	entryID := key + "-" + uuid.NewString()
	entry := model.ActivityEntry{
		ID:        entryID,
		Type:      activityType,
		Message:   message,
		BookingID: bookingID,
		CreatedAt: m.now(),
		Synthetic: true,
	}
	m.store.Update(store.KeyActivity, func(data any) any {
		entries, _ := data.([]model.ActivityEntry)
		return append([]model.ActivityEntry{entry}, entries...)
	})
	return entryID
}

func (m *Manager) removeActivity(entryID string) {
	m.store.Update(store.KeyActivity, func(data any) any {
		entries, _ := data.([]model.ActivityEntry)
		out := make([]model.ActivityEntry, 0, len(entries))
		for _, e := range entries {
			if e.ID == entryID {
				continue
			}
			out = append(out, e)
		}
		return out
	})
}

// restore puts a captured entry back, unless the current state no longer
// matches what the optimistic update produced: a newer authoritative write
// (UpdatedAt moved) or a superseding local update must not be stomped.
func (m *Manager) restore(key string, captured store.Entry, stillOurs func(data any) bool) {
	m.store.UpdateEntry(key, func(current store.Entry) store.Entry {
		if !current.UpdatedAt.Equal(captured.UpdatedAt) {
			return current
		}
		if stillOurs != nil && !stillOurs(current.Data) {
			return current
		}
		return captured
	})
}

// pendingAbsent guards a pending-removal rollback: restore only while the
// id is still gone from the collection.
func pendingAbsent(id string) func(data any) bool {
	return func(data any) bool {
		records, _ := data.([]model.BookingRecord)
		for _, rec := range records {
			if rec.ID == id {
				return false
			}
		}
		return true
	}
}

// statusIs guards a status-flip rollback: restore only while the booking
// still carries the optimistic status.
func statusIs(id string, status model.BookingStatus) func(data any) bool {
	return func(data any) bool {
		records, _ := data.([]model.BookingRecord)
		for _, rec := range records {
			if rec.ID == id {
				return rec.Status == status
			}
		}
		return false
	}
}

func (m *Manager) publishCompleted(action, id string) {
	if m.bus == nil {
		return
	}
	m.bus.Publish(events.Event{
		Name: events.ActionCompleted,
		Data: map[string]any{"action": action, "id": id},
	})
}
