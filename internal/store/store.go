package store

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"command-center-backend/internal/model"
)

// Resource keys held by the store. Each key maps to the result of one
// upstream collection fetch.
const (
	KeyPendingRequests  = "pending_requests"
	KeyPendingBookings  = "pending_bookings"
	KeyTodayBookings    = "today_bookings"
	KeyUpcomingBookings = "upcoming_bookings"
	KeyTours            = "tours"
	KeyEvents           = "events"
	KeyWellnessClasses  = "wellness_classes"
	KeyBays             = "bays"
	KeyResources        = "resources"
	KeyClosures         = "closures"
	KeyAnnouncements    = "announcements"
	KeyActivity         = "recent_activity"
	KeyNotifications    = "notifications"
	KeyContacts         = "contacts"
)

// coreKeys are the resources the dashboard cannot render without. The
// notifications feed is optional and excluded.
var coreKeys = []string{
	KeyPendingRequests,
	KeyPendingBookings,
	KeyTodayBookings,
	KeyUpcomingBookings,
	KeyTours,
	KeyEvents,
	KeyWellnessClasses,
	KeyBays,
	KeyResources,
	KeyClosures,
	KeyAnnouncements,
	KeyActivity,
	KeyContacts,
}

// CoreKeys returns the resources required before the dashboard leaves its
// loading state.
func CoreKeys() []string {
	return append([]string(nil), coreKeys...)
}

// AllKeys returns every resource key the store tracks.
func AllKeys() []string {
	return append(CoreKeys(), KeyNotifications)
}

// Entry wraps one resource payload with its bookkeeping. UpdatedAt is the
// time of the last authoritative upstream write, not of local edits.
type Entry struct {
	Data      any
	UpdatedAt time.Time
	Stale     bool
}

// Store is the in-memory state shared by the sync loop, the action layer
// and the HTTP handlers.
type Store interface {
	// Replace installs fresh upstream data for a key and clears its stale flag.
	Replace(key string, data any, now time.Time)
	// Update applies a local optimistic edit. The entry keeps its UpdatedAt
	// so the dashboard's last-synced stamp only moves on real upstream data.
	Update(key string, fn func(data any) any)
	// UpdateEntry applies an edit with access to the full entry, for callers
	// that need the bookkeeping (rollback guards compare UpdatedAt).
	UpdateEntry(key string, fn func(current Entry) Entry)
	// Entry returns the raw entry for a key.
	Entry(key string) (Entry, bool)
	// MarkStale flags keys whose upstream state is known to have moved on.
	MarkStale(keys ...string)
	// StaleKeys lists the currently stale keys in no particular order.
	StaleKeys() []string
	// Loaded reports whether every given key has been written at least once.
	Loaded(keys ...string) bool
	// Snapshot assembles a typed copy of the current state.
	Snapshot() *Snapshot
}

// memStore implements Store on top of a go-cache instance. Entries never
// expire; the sync loop overwrites them in place.
type memStore struct {
	mu    sync.Mutex // serializes writers; reads go straight to the cache
	cache *cache.Cache
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() Store {
	return &memStore{cache: cache.New(cache.NoExpiration, 0)}
}

func (s *memStore) Replace(key string, data any, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Set(key, Entry{Data: data, UpdatedAt: now}, cache.NoExpiration)
}

func (s *memStore) Update(key string, fn func(data any) any) {
	s.UpdateEntry(key, func(current Entry) Entry {
		current.Data = fn(current.Data)
		return current
	})
}

func (s *memStore) UpdateEntry(key string, fn func(current Entry) Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, _ := s.entry(key)
	s.cache.Set(key, fn(entry), cache.NoExpiration)
}

func (s *memStore) Entry(key string) (Entry, bool) {
	return s.entry(key)
}

func (s *memStore) MarkStale(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		entry, ok := s.entry(key)
		if !ok {
			continue
		}
		entry.Stale = true
		s.cache.Set(key, entry, cache.NoExpiration)
	}
}

func (s *memStore) StaleKeys() []string {
	var stale []string
	for _, key := range AllKeys() {
		if entry, ok := s.entry(key); ok && entry.Stale {
			stale = append(stale, key)
		}
	}
	return stale
}

func (s *memStore) Loaded(keys ...string) bool {
	for _, key := range keys {
		if _, ok := s.entry(key); !ok {
			return false
		}
	}
	return true
}

func (s *memStore) entry(key string) (Entry, bool) {
	raw, ok := s.cache.Get(key)
	if !ok {
		return Entry{}, false
	}
	entry, ok := raw.(Entry)
	return entry, ok
}

// sliceEntry copies the typed payload out of an entry. A missing or
// mistyped payload yields nil.
func sliceEntry[T any](e Entry, ok bool) []T {
	if !ok || e.Data == nil {
		return nil
	}
	v, _ := e.Data.([]T)
	return append([]T(nil), v...)
}

func (s *memStore) Snapshot() *Snapshot {
	snap := &Snapshot{}
	read := func(key string) (Entry, bool) {
		e, ok := s.entry(key)
		if ok && e.UpdatedAt.After(snap.LastSynced) {
			snap.LastSynced = e.UpdatedAt
		}
		return e, ok
	}

	snap.PendingRequests = sliceEntry[model.BookingRecord](read(KeyPendingRequests))
	snap.PendingBookings = sliceEntry[model.BookingRecord](read(KeyPendingBookings))
	snap.TodayBookings = sliceEntry[model.BookingRecord](read(KeyTodayBookings))
	snap.UpcomingBookings = sliceEntry[model.BookingRecord](read(KeyUpcomingBookings))
	snap.Tours = sliceEntry[model.Tour](read(KeyTours))
	snap.Events = sliceEntry[model.Event](read(KeyEvents))
	snap.WellnessClasses = sliceEntry[model.WellnessClass](read(KeyWellnessClasses))
	snap.Bays = sliceEntry[model.Bay](read(KeyBays))
	snap.Resources = sliceEntry[model.Bay](read(KeyResources))
	snap.Closures = sliceEntry[model.Closure](read(KeyClosures))
	snap.Announcements = sliceEntry[model.Announcement](read(KeyAnnouncements))
	snap.RecentActivity = sliceEntry[model.ActivityEntry](read(KeyActivity))
	snap.Notifications = sliceEntry[model.Notification](read(KeyNotifications))
	snap.Contacts = sliceEntry[model.Contact](read(KeyContacts))
	snap.FullyLoaded = s.Loaded(coreKeys...)

	return snap
}
