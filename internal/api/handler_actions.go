package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"command-center-backend/internal/action"
	"command-center-backend/internal/model"
)

type approveRequest struct {
	ResourceID         *int64  `json:"resource_id"`
	TrackmanExternalID *string `json:"trackman_external_id"`
}

// ApproveRequest handles POST /api/booking-requests/:id/approve. The body
// is optional; it may reassign the bay or attach a launch-monitor session.
func (h *Handler) ApproveRequest(c *gin.Context) {
	var req approveRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	err := h.actions.Approve(c.Request.Context(), c.Param("id"), action.ApproveOptions{
		ResourceID:         req.ResourceID,
		TrackmanExternalID: req.TrackmanExternalID,
	})
	if err != nil {
		h.actionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "approved"})
}

// DenyRequest handles POST /api/booking-requests/:id/deny.
func (h *Handler) DenyRequest(c *gin.Context) {
	if err := h.actions.Deny(c.Request.Context(), c.Param("id")); err != nil {
		h.actionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "declined"})
}

type checkInRequest struct {
	Status string `json:"status"`
}

// CheckInBooking handles POST /api/bookings/:id/checkin. A 402 from the
// platform is not a failure: the response names the corrective flow the
// dashboard should open.
func (h *Handler) CheckInBooking(c *gin.Context) {
	var req checkInRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	result, err := h.actions.CheckIn(c.Request.Context(), c.Param("id"), model.BookingStatus(req.Status))
	if err != nil {
		h.actionError(c, err)
		return
	}
	if result.RequiredFlow != "" {
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error":  result.Message,
			"action": result.RequiredFlow,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "checked_in"})
}

// actionError translates mutation-layer failures. A duplicate trigger is a
// client-side race (409); anything else means the platform write failed
// after the optimistic state was rolled back (502).
func (h *Handler) actionError(c *gin.Context, err error) {
	if errors.Is(err, action.ErrInProgress) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
}
