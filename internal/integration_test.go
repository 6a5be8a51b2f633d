package internal

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
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
	"command-center-backend/internal/api"
	"command-center-backend/internal/clubapi"
	"command-center-backend/internal/events"
	"command-center-backend/internal/model"
	"command-center-backend/internal/store"
	"command-center-backend/internal/syncer"
)

// capturedWrite records one mutation the mock platform received.
type capturedWrite struct {
	method string
	path   string
	body   string
}

// mockPlatform fakes the club platform API. GET paths without a canned body
// answer with an empty list; writes are recorded for assertions.
type mockPlatform struct {
	mu      sync.Mutex
	bodies  map[string]string
	writes  []capturedWrite
	failAll bool
}

func (m *mockPlatform) set(path, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bodies[path] = body
}

func (m *mockPlatform) setFailing(failing bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAll = failing
}

func (m *mockPlatform) captured() []capturedWrite {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]capturedWrite(nil), m.writes...)
}

func (m *mockPlatform) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r.Method != http.MethodGet {
		body, _ := io.ReadAll(r.Body)
		m.writes = append(m.writes, capturedWrite{method: r.Method, path: r.URL.Path, body: string(body)})
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
		return
	}

	if m.failAll {
		http.Error(w, `{"error":"platform unavailable"}`, http.StatusServiceUnavailable)
		return
	}

	body, ok := m.bodies[r.URL.Path]
	if !ok {
		body = "[]"
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(body))
}

// TestCommandCenterLifecycle walks the full stack: a sync cycle against a
// mock club platform, the aggregated dashboard read, and a staff approval
// flowing back upstream while the local view updates optimistically.
func TestCommandCenterLifecycle(t *testing.T) {
	// --- Test Setup ---
	gin.SetMode(gin.TestMode)

	// 1. Mock club platform with a pending request, a bay and the member
	// directory entry that resolves the request's placeholder name.
	platform := &mockPlatform{bodies: make(map[string]string)}
	platform.set("/api/booking-requests", `[{
		"id": 7,
		"user_name": "Unknown Member",
		"user_email": "casey@club.test",
		"status": "pending",
		"resource_id": 1,
		"resource_name": "Bay 1",
		"resource_type": "simulator",
		"date": "2031-04-01",
		"start_time": "10:00",
		"end_time": "11:00"
	}]`)
	platform.set("/api/bays", `[{"id": 1, "name": "Bay 1"}]`)
	platform.set("/api/contacts", `[{"email": "casey@club.test", "first_name": "Casey", "last_name": "Nakamura"}]`)

	server := httptest.NewServer(platform)
	defer server.Close()

	// 2. Configuration pointing at the mock.
	cfg := &config.Config{}
	cfg.Upstream.BaseURL = server.URL
	cfg.Upstream.APIKey = "test-key"
	cfg.Upstream.Timeout = 5 * time.Second
	cfg.Upstream.PollInterval = time.Hour
	cfg.Upstream.BookingWindowDays = 30
	cfg.Server.RateLimitPerSec = 1000
	cfg.Server.RateLimitBurst = 1000
	cfg.Server.CacheTTLSeconds = 1
	cfg.Matching.PlaceholderNameMarkers = []string{"Unknown"}

	// 3. In-memory SQLite for push subscriptions.
	testDB, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, testDB.AutoMigrate(&model.PushSubscription{}))

	// 4. The real wiring: store, bus, client, syncer, actions, router.
	appStore := store.NewMemStore()
	bus := events.NewBus()
	client := clubapi.NewClient(&cfg.Upstream)
	syncSvc := syncer.NewService(cfg, appStore, client, bus, nil)
	actions := action.NewManager(client, appStore, bus)
	router := api.NewRouter(cfg, appStore, actions, nil, testDB, &webpush.Options{VAPIDPublicKey: "pk"})

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	type dashboard struct {
		PendingQueue   []model.BookingRecord `json:"pending_queue"`
		BayStatuses    []model.BayStatus     `json:"bay_statuses"`
		RecentActivity []model.ActivityEntry `json:"recent_activity"`
		IsLoading      bool                  `json:"is_loading"`
	}
	getDashboard := func(t *testing.T) dashboard {
		t.Helper()
		w := do(http.MethodGet, "/api/command-center", "")
		require.Equal(t, http.StatusOK, w.Code)
		var d dashboard
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
		return d
	}

	// --- Cycle 1: First sync populates the dashboard ---
	t.Run("Cycle 1: First Sync Populates The Dashboard", func(t *testing.T) {
		syncSvc.RefreshAll(context.Background())

		d := getDashboard(t)
		assert.False(t, d.IsLoading, "a full cycle should clear the loading state")
		require.Len(t, d.PendingQueue, 1)
		assert.Equal(t, "7", d.PendingQueue[0].ID)
		assert.Equal(t, "Casey Nakamura", d.PendingQueue[0].UserName, "the directory should resolve the placeholder name")
		assert.True(t, d.PendingQueue[0].Unmatched, "the raw placeholder name should still flag the record")
		require.Len(t, d.BayStatuses, 1)
		assert.Equal(t, "Bay 1", d.BayStatuses[0].Name)
	})

	// --- Cycle 2: Staff approval flows back upstream ---
	t.Run("Cycle 2: Approval Flows Back Upstream", func(t *testing.T) {
		w := do(http.MethodPost, "/api/booking-requests/7/approve", `{"resource_id": 2}`)
		require.Equal(t, http.StatusOK, w.Code)

		writes := platform.captured()
		require.Len(t, writes, 1, "the approval should reach the platform")
		assert.Equal(t, http.MethodPut, writes[0].method)
		assert.Equal(t, "/api/booking-requests/7", writes[0].path)
		assert.JSONEq(t, `{"status": "approved", "resource_id": 2}`, writes[0].body)

		d := getDashboard(t)
		assert.Empty(t, d.PendingQueue, "the approved request should leave the queue")
		require.NotEmpty(t, d.RecentActivity)
		assert.Equal(t, "Approved booking request for Casey Nakamura", d.RecentActivity[0].Message)
		assert.True(t, d.RecentActivity[0].Synthetic)
	})

	// --- Cycle 3: A failing platform degrades but keeps serving ---
	t.Run("Cycle 3: Failing Platform Degrades But Keeps Serving", func(t *testing.T) {
		platform.setFailing(true)
		syncSvc.RefreshAll(context.Background())

		w := do(http.MethodGet, "/health", "")
		require.Equal(t, http.StatusOK, w.Code)
		var health struct {
			Status         string   `json:"status"`
			StaleResources []string `json:"stale_resources"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
		assert.Equal(t, "degraded", health.Status)
		assert.NotEmpty(t, health.StaleResources)

		d := getDashboard(t)
		require.Len(t, d.BayStatuses, 1, "stale data keeps serving")

		platform.setFailing(false)
		syncSvc.RefreshAll(context.Background())

		w = do(http.MethodGet, "/health", "")
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
		assert.Equal(t, "ok", health.Status, "a clean cycle should recover the health state")
	})
}
