package syncer

import (
	"context"
	"log"
	"strconv"
	"time"

	"command-center-backend/config"
	"command-center-backend/internal/clubapi"
	"command-center-backend/internal/events"
	"command-center-backend/internal/model"
	"command-center-backend/internal/notification"
	"command-center-backend/internal/store"
)

// AlertDispatcher queues push alerts for delivery to subscribed staff
// browsers. *notification.WorkerPool satisfies it.
type AlertDispatcher interface {
	Dispatch(alert notification.Alert)
}

// fetchFunc loads one resource from the club platform.
type fetchFunc func(ctx context.Context) (any, error)

// wrap adapts a typed fetch to the table's common shape.
func wrap[T any](fn func(ctx context.Context) ([]T, error)) fetchFunc {
	return func(ctx context.Context) (any, error) {
		items, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return items, nil
	}
}

// refreshOrder fixes the fetch sequence inside a cycle. Booking queues come
// first so the pending-alert diff at the end of the cycle sees fresh data.
var refreshOrder = []string{
	store.KeyPendingRequests,
	store.KeyPendingBookings,
	store.KeyTodayBookings,
	store.KeyUpcomingBookings,
	store.KeyTours,
	store.KeyEvents,
	store.KeyWellnessClasses,
	store.KeyBays,
	store.KeyResources,
	store.KeyClosures,
	store.KeyAnnouncements,
	store.KeyActivity,
	store.KeyContacts,
	store.KeyNotifications,
}

// bookingKeys are the entries invalidated by live booking traffic and by
// completed staff actions.
var bookingKeys = []string{
	store.KeyPendingRequests,
	store.KeyPendingBookings,
	store.KeyTodayBookings,
	store.KeyUpcomingBookings,
	store.KeyActivity,
}

// Service keeps the store in step with the club platform. A single Run
// goroutine owns every refresh, so cycles never overlap and the store only
// moves from one consistent snapshot to the next.
type Service struct {
	cfg      *config.Config
	store    store.Store
	client   *clubapi.Client
	bus      *events.Bus
	alerts   AlertDispatcher
	fetchers map[string]fetchFunc
	now      func() time.Time

	// prevPending is nil until the first cycle seeds it; after that it maps
	// pending request ids to user names for the new-request diff.
	prevPending map[string]string
}

// NewService creates a sync service. alerts may be nil when push is disabled.
func NewService(cfg *config.Config, st store.Store, client *clubapi.Client, bus *events.Bus, alerts AlertDispatcher) *Service {
	s := &Service{
		cfg:    cfg,
		store:  st,
		client: client,
		bus:    bus,
		alerts: alerts,
		now:    time.Now,
	}

	s.fetchers = map[string]fetchFunc{
		store.KeyPendingRequests: wrap(client.FetchBookingRequests),
		store.KeyPendingBookings: wrap(client.FetchPendingBookings),
		store.KeyTodayBookings: func(ctx context.Context) (any, error) {
			today := s.localNow()
			return client.FetchBookings(ctx, today, today)
		},
		store.KeyUpcomingBookings: func(ctx context.Context) (any, error) {
			today := s.localNow()
			return client.FetchBookings(ctx, today, today.AddDate(0, 0, s.cfg.Upstream.BookingWindowDays))
		},
		store.KeyTours:           wrap(client.FetchTours),
		store.KeyEvents:          wrap(client.FetchEvents),
		store.KeyWellnessClasses: wrap(client.FetchWellnessClasses),
		store.KeyBays:            wrap(client.FetchBays),
		store.KeyResources:       wrap(client.FetchResources),
		store.KeyClosures:        wrap(client.FetchClosures),
		store.KeyAnnouncements:   wrap(client.FetchAnnouncements),
		store.KeyActivity:        wrap(client.FetchRecentActivity),
		store.KeyContacts:        wrap(client.FetchContacts),
	}
	// The notification feed is scoped to one staff account; without a
	// configured email there is nothing to fetch.
	if cfg.Upstream.StaffEmail != "" {
		s.fetchers[store.KeyNotifications] = func(ctx context.Context) (any, error) {
			return client.FetchNotifications(ctx, s.cfg.Upstream.StaffEmail)
		}
	}
	return s
}

// Run starts the polling loop and the event subscription. It blocks until
// ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	log.Println("Starting sync service...")

	updates, unsubscribe := s.bus.Subscribe(16)
	defer unsubscribe()

	s.RefreshAll(ctx)

	timer := time.NewTimer(s.cfg.Upstream.PollInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Sync service shutting down.")
			return
		case <-timer.C:
			s.RefreshAll(ctx)
			timer.Reset(s.cfg.Upstream.PollInterval)
		case ev := <-updates:
			s.handleEvent(ctx, ev)
		}
	}
}

func (s *Service) handleEvent(ctx context.Context, ev events.Event) {
	switch ev.Name {
	case events.LiveConnected:
		// A reconnect may have missed pushes, so resync everything.
		s.RefreshAll(ctx)
	case events.AutoConfirmed:
		s.dispatchAutoConfirmAlert(ev)
		s.Invalidate(ctx, bookingKeys...)
	case events.BookingUpdate, events.ActionCompleted:
		s.Invalidate(ctx, bookingKeys...)
	}
}

// RefreshAll fetches every resource the dashboard aggregates.
func (s *Service) RefreshAll(ctx context.Context) {
	log.Println("Executing sync cycle...")
	for _, key := range refreshOrder {
		s.refreshKey(ctx, key)
	}
	s.dispatchPendingAlerts()
	log.Println("Sync cycle finished.")
}

// Invalidate refetches the named entries immediately. Keys without a
// registered fetcher are ignored so callers can pass the full booking set
// unconditionally.
func (s *Service) Invalidate(ctx context.Context, keys ...string) {
	pendingTouched := false
	for _, key := range keys {
		if _, ok := s.fetchers[key]; !ok {
			continue
		}
		s.refreshKey(ctx, key)
		if key == store.KeyPendingRequests || key == store.KeyPendingBookings {
			pendingTouched = true
		}
	}
	if pendingTouched {
		s.dispatchPendingAlerts()
	}
}

func (s *Service) refreshKey(ctx context.Context, key string) {
	fetch, ok := s.fetchers[key]
	if !ok {
		return
	}
	data, err := fetch(ctx)
	if err != nil {
		// Keep serving the previous data; the entry is only flagged so the
		// health endpoint can report it.
		log.Printf("Error refreshing %s: %v", key, err)
		s.store.MarkStale(key)
		return
	}
	s.store.Replace(key, data, s.now().UTC())
}

// dispatchPendingAlerts compares the pending queue against the previous
// cycle and pushes an alert for every newly arrived request. The first
// cycle after startup only seeds the baseline: requests that were already
// waiting when the service came up are on the dashboard, not in a push.
func (s *Service) dispatchPendingAlerts() {
	current := s.pendingByID()
	prev := s.prevPending
	s.prevPending = current

	if prev == nil || s.alerts == nil {
		return
	}
	for id, name := range current {
		if _, ok := prev[id]; ok {
			continue
		}
		if name == "" {
			name = "A member"
		}
		s.alerts.Dispatch(notification.Alert{
			Title:     "New booking request",
			Body:      name + " is waiting for approval",
			BookingID: id,
		})
	}
}

// dispatchAutoConfirmAlert pushes a heads-up when the platform confirms a
// booking without staff involvement. The live payload is best-effort; missing
// fields degrade to a generic message.
func (s *Service) dispatchAutoConfirmAlert(ev events.Event) {
	if s.alerts == nil {
		return
	}
	name, _ := ev.Data["user_name"].(string)
	if name == "" {
		name = "A member"
	}
	var id string
	switch v := ev.Data["id"].(type) {
	case string:
		id = v
	case float64:
		id = strconv.FormatFloat(v, 'f', -1, 64)
	}
	s.alerts.Dispatch(notification.Alert{
		Title:     "Booking auto-confirmed",
		Body:      "Booking for " + name + " was confirmed automatically",
		BookingID: id,
	})
}

// pendingByID collects the ids of every record still awaiting a decision,
// across both pending collections.
func (s *Service) pendingByID() map[string]string {
	pending := make(map[string]string)
	for _, key := range []string{store.KeyPendingRequests, store.KeyPendingBookings} {
		entry, ok := s.store.Entry(key)
		if !ok {
			continue
		}
		records, ok := entry.Data.([]model.BookingRecord)
		if !ok {
			continue
		}
		for _, rec := range records {
			if !rec.Status.Pending() {
				continue
			}
			if _, seen := pending[rec.ID]; !seen {
				pending[rec.ID] = rec.UserName
			}
		}
	}
	return pending
}

func (s *Service) localNow() time.Time {
	return s.now().In(s.cfg.Upstream.Location())
}
