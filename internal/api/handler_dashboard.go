package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"command-center-backend/internal/view"
)

// commandCenterResponse is the view model plus the mutation state the
// dashboard needs to disable buttons for in-flight actions.
type commandCenterResponse struct {
	*view.Model
	ActionsInFlight []string `json:"actions_in_flight"`
}

// GetCommandCenter handles GET /api/command-center.
func (h *Handler) GetCommandCenter(c *gin.Context) {
	c.JSON(http.StatusOK, commandCenterResponse{
		Model:           h.buildView(),
		ActionsInFlight: h.actions.ActiveKeys(),
	})
}

// GetBays handles GET /api/bays.
func (h *Handler) GetBays(c *gin.Context) {
	c.JSON(http.StatusOK, h.buildView().BayStatuses)
}

// GetPending handles GET /api/pending. Unlike the queue inside the full
// view model, this listing is sorted chronologically.
func (h *Handler) GetPending(c *gin.Context) {
	c.JSON(http.StatusOK, view.SortPendingByDate(h.buildView().PendingQueue))
}

// GetClosures handles GET /api/closures.
func (h *Handler) GetClosures(c *gin.Context) {
	vm := h.buildView()
	c.JSON(http.StatusOK, gin.H{
		"relevant": vm.RelevantClosures,
		"upcoming": vm.UpcomingClosure,
	})
}

// GetAnnouncements handles GET /api/announcements.
func (h *Handler) GetAnnouncements(c *gin.Context) {
	c.JSON(http.StatusOK, h.buildView().Announcements)
}

// GetHealth handles GET /health. Stale resources are reported but do not
// fail the check; the service still serves its previous data.
func (h *Handler) GetHealth(c *gin.Context) {
	stale := h.store.StaleKeys()
	status := "ok"
	if len(stale) > 0 {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":          status,
		"stale_resources": stale,
	})
}
