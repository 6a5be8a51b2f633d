package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"command-center-backend/config"
	"command-center-backend/internal/action"
	"command-center-backend/internal/clubapi"
	"command-center-backend/internal/events"
	"command-center-backend/internal/model"
	"command-center-backend/internal/store"
)

// mockUpstream implements action.Upstream with pluggable behavior.
type mockUpstream struct {
	updateFunc  func(ctx context.Context, id string, decision clubapi.RequestDecision) error
	checkInFunc func(ctx context.Context, id, status string) error

	decisions []clubapi.RequestDecision
}

func (m *mockUpstream) UpdateBookingRequest(ctx context.Context, id string, decision clubapi.RequestDecision) error {
	m.decisions = append(m.decisions, decision)
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, decision)
	}
	return nil
}

func (m *mockUpstream) CheckInBooking(ctx context.Context, id, status string) error {
	if m.checkInFunc != nil {
		return m.checkInFunc(ctx, id, status)
	}
	return nil
}

type testAPI struct {
	router   *gin.Engine
	store    store.Store
	actions  *action.Manager
	upstream *mockUpstream
}

func newTestAPIWithPush(t *testing.T, webpushOptions *webpush.Options) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemStore()
	upstream := &mockUpstream{}
	actions := action.NewManager(upstream, st, events.NewBus())

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.PushSubscription{}))

	cfg := &config.Config{}
	cfg.Server.RateLimitPerSec = 1000
	cfg.Server.RateLimitBurst = 1000
	cfg.Server.CacheTTLSeconds = 30
	cfg.Matching.PlaceholderEmailPatterns = []string{"placeholder", "unknown@", "noreply"}
	cfg.Matching.PlaceholderNameMarkers = []string{"Unknown"}

	return &testAPI{
		router:   NewRouter(cfg, st, actions, nil, db, webpushOptions),
		store:    st,
		actions:  actions,
		upstream: upstream,
	}
}

func newTestAPI(t *testing.T) *testAPI {
	return newTestAPIWithPush(t, &webpush.Options{VAPIDPublicKey: "test-public-key"})
}

func (a *testAPI) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// seedLoadedStore writes every core resource so the view leaves its loading
// state; individual tests overwrite the keys they care about.
func seedLoadedStore(st store.Store, now time.Time) {
	st.Replace(store.KeyPendingRequests, []model.BookingRecord{}, now)
	st.Replace(store.KeyPendingBookings, []model.BookingRecord{}, now)
	st.Replace(store.KeyTodayBookings, []model.BookingRecord{}, now)
	st.Replace(store.KeyUpcomingBookings, []model.BookingRecord{}, now)
	st.Replace(store.KeyTours, []model.Tour{}, now)
	st.Replace(store.KeyEvents, []model.Event{}, now)
	st.Replace(store.KeyWellnessClasses, []model.WellnessClass{}, now)
	st.Replace(store.KeyBays, []model.Bay{}, now)
	st.Replace(store.KeyResources, []model.Bay{}, now)
	st.Replace(store.KeyClosures, []model.Closure{}, now)
	st.Replace(store.KeyAnnouncements, []model.Announcement{}, now)
	st.Replace(store.KeyActivity, []model.ActivityEntry{}, now)
	st.Replace(store.KeyContacts, []model.Contact{}, now)
}

func pendingRequest(id, name, email string) model.BookingRecord {
	return model.BookingRecord{
		ID:           id,
		UserName:     name,
		UserEmail:    email,
		ResourceID:   1,
		ResourceName: "Bay 1",
		ResourceType: model.ResourceSimulator,
		Date:         "2031-01-02",
		StartTime:    "10:00",
		EndTime:      "11:00",
		Status:       model.StatusPending,
		Source:       model.SourceBookingRequest,
	}
}

func TestGetCommandCenter(t *testing.T) {
	api := newTestAPI(t)
	now := time.Now().UTC()
	seedLoadedStore(api.store, now)
	api.store.Replace(store.KeyPendingRequests, []model.BookingRecord{
		pendingRequest("7", "Unknown Member", "alex@club.test"),
	}, now)
	api.store.Replace(store.KeyContacts, []model.Contact{
		{Email: "alex@club.test", FirstName: "Alex", LastName: "Chen"},
	}, now)

	w := api.do(http.MethodGet, "/api/command-center", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		PendingQueue    []model.BookingRecord `json:"pending_queue"`
		IsLoading       bool                  `json:"is_loading"`
		ActionsInFlight []string              `json:"actions_in_flight"`
		LastSynced      time.Time             `json:"last_synced"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	require.Len(t, resp.PendingQueue, 1)
	assert.Equal(t, "Alex Chen", resp.PendingQueue[0].UserName, "the directory should resolve the placeholder name")
	assert.True(t, resp.PendingQueue[0].Unmatched)
	assert.False(t, resp.IsLoading)
	assert.Empty(t, resp.ActionsInFlight)
	assert.False(t, resp.LastSynced.IsZero())
}

func TestGetCommandCenterLoadingState(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodGet, "/api/command-center", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		IsLoading bool `json:"is_loading"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.IsLoading, "an empty store has not finished its first sync")
}

func TestGetPendingSortsByDate(t *testing.T) {
	api := newTestAPI(t)
	now := time.Now().UTC()
	seedLoadedStore(api.store, now)

	late := pendingRequest("8", "Sam Ruiz", "")
	late.Date = "2031-01-05"
	early := pendingRequest("7", "Alex Chen", "")
	early.Date = "2031-01-02"
	api.store.Replace(store.KeyPendingRequests, []model.BookingRecord{late, early}, now)

	w := api.do(http.MethodGet, "/api/pending", "")
	require.Equal(t, http.StatusOK, w.Code)

	var queue []model.BookingRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &queue))
	require.Len(t, queue, 2)
	assert.Equal(t, "7", queue[0].ID)
	assert.Equal(t, "8", queue[1].ID)
}

func TestApproveRequest(t *testing.T) {
	api := newTestAPI(t)
	now := time.Now().UTC()
	seedLoadedStore(api.store, now)
	api.store.Replace(store.KeyPendingRequests, []model.BookingRecord{
		pendingRequest("7", "Alex Chen", ""),
	}, now)

	w := api.do(http.MethodPost, "/api/booking-requests/7/approve", `{"resource_id": 3}`)
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, api.upstream.decisions, 1)
	assert.Equal(t, "approved", api.upstream.decisions[0].Status)
	require.NotNil(t, api.upstream.decisions[0].ResourceID)
	assert.Equal(t, int64(3), *api.upstream.decisions[0].ResourceID)

	assert.Empty(t, api.store.Snapshot().PendingRequests, "the approved request should leave the queue")
}

func TestApproveRequestBadBody(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/booking-requests/7/approve", `{"resource_id": "not a number"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, api.upstream.decisions)
}

func TestDuplicateActionConflicts(t *testing.T) {
	api := newTestAPI(t)
	now := time.Now().UTC()
	seedLoadedStore(api.store, now)
	api.store.Replace(store.KeyPendingRequests, []model.BookingRecord{
		pendingRequest("7", "Alex Chen", ""),
	}, now)

	release := make(chan struct{})
	api.upstream.updateFunc = func(context.Context, string, clubapi.RequestDecision) error {
		<-release
		return nil
	}

	first := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		first <- api.do(http.MethodPost, "/api/booking-requests/7/approve", "")
	}()

	require.Eventually(t, func() bool {
		return len(api.actions.ActiveKeys()) == 1
	}, time.Second, 5*time.Millisecond)

	w := api.do(http.MethodPost, "/api/booking-requests/7/approve", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	close(release)
	select {
	case w1 := <-first:
		assert.Equal(t, http.StatusOK, w1.Code)
	case <-time.After(2 * time.Second):
		t.Fatal("first approve did not finish")
	}
}

func TestCheckInPaymentRequired(t *testing.T) {
	api := newTestAPI(t)
	now := time.Now().UTC()
	seedLoadedStore(api.store, now)
	api.store.Replace(store.KeyTodayBookings, []model.BookingRecord{{
		ID: "42", UserName: "Jordan Lee", Status: model.StatusApproved,
	}}, now)

	api.upstream.checkInFunc = func(context.Context, string, string) error {
		return &clubapi.StatusError{
			Code:           http.StatusPaymentRequired,
			Message:        "Guest roster incomplete",
			RequiresRoster: true,
		}
	}

	w := api.do(http.MethodPost, "/api/bookings/42/checkin", "")
	require.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.JSONEq(t, `{"error": "Guest roster incomplete", "action": "complete_roster"}`, w.Body.String())

	snap := api.store.Snapshot()
	require.Len(t, snap.TodayBookings, 1)
	assert.Equal(t, model.StatusApproved, snap.TodayBookings[0].Status, "the optimistic check-in should be rolled back")
}

func TestCheckInUpstreamFailure(t *testing.T) {
	api := newTestAPI(t)
	now := time.Now().UTC()
	seedLoadedStore(api.store, now)
	api.store.Replace(store.KeyTodayBookings, []model.BookingRecord{{
		ID: "42", UserName: "Jordan Lee", Status: model.StatusApproved,
	}}, now)

	api.upstream.checkInFunc = func(context.Context, string, string) error {
		return context.DeadlineExceeded
	}

	w := api.do(http.MethodPost, "/api/bookings/42/checkin", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)

	snap := api.store.Snapshot()
	require.Len(t, snap.TodayBookings, 1)
	assert.Equal(t, model.StatusApproved, snap.TodayBookings[0].Status)
}

func TestSubscriptionLifecycle(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPut, "/api/subscriptions", `{"endpoint": "https://push.test/a", "p256dh": "k", "auth": "s"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = api.do(http.MethodGet, "/api/subscriptions?endpoint=https://push.test/a", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"subscribed":true`)

	w = api.do(http.MethodDelete, "/api/subscriptions", `{"endpoint": "https://push.test/a"}`)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(http.MethodGet, "/api/subscriptions?endpoint=https://push.test/a", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPutSubscriptionRejectsMissingFields(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPut, "/api/subscriptions", `{"endpoint": "https://push.test/a"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetVAPIDPublicKey(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodGet, "/api/vapid_public_key", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"public_key": "test-public-key"}`, w.Body.String())
}

func TestGetVAPIDPublicKeyUnconfigured(t *testing.T) {
	api := newTestAPIWithPush(t, &webpush.Options{})

	w := api.do(http.MethodGet, "/api/vapid_public_key", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestClosuresResponseIsCached(t *testing.T) {
	api := newTestAPI(t)
	now := time.Now().UTC()
	seedLoadedStore(api.store, now)
	api.store.Replace(store.KeyClosures, []model.Closure{{
		ID: 1, Title: "Winter maintenance", StartDate: "2020-01-01", EndDate: "2999-12-31",
	}}, now)

	w := api.do(http.MethodGet, "/api/closures", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Winter maintenance")

	// The store moves on, but the cached response is still served.
	api.store.Replace(store.KeyClosures, []model.Closure{}, now.Add(time.Minute))

	w = api.do(http.MethodGet, "/api/closures", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Winter maintenance")
}

func TestHealthReportsStaleResources(t *testing.T) {
	api := newTestAPI(t)
	now := time.Now().UTC()
	seedLoadedStore(api.store, now)

	w := api.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	api.store.MarkStale(store.KeyTours)

	w = api.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status         string   `json:"status"`
		StaleResources []string `json:"stale_resources"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Contains(t, resp.StaleResources, store.KeyTours)
}
