package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"command-center-backend/config"
	"command-center-backend/internal/action"
	"command-center-backend/internal/live"
	"command-center-backend/internal/mw"
	"command-center-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, s store.Store, actions *action.Manager, hub *live.Hub, db *gorm.DB, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(cfg, s, actions, db, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	// Closures and announcements move slowly; a short response cache keeps
	// a wall of dashboards from rebuilding the view for them per request.
	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	// Health sits outside the rate-limited group so probes cannot starve it.
	r.GET("/health", handler.GetHealth)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/command-center", handler.GetCommandCenter)
		api.GET("/bays", handler.GetBays)
		api.GET("/pending", handler.GetPending)

		api.POST("/booking-requests/:id/approve", handler.ApproveRequest)
		api.POST("/booking-requests/:id/deny", handler.DenyRequest)
		api.POST("/bookings/:id/checkin", handler.CheckInBooking)

		api.GET("/closures", caching, handler.GetClosures)
		api.GET("/announcements", caching, handler.GetAnnouncements)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)

		if hub != nil {
			api.GET("/ws", hub.ServeWS)
		}
	}

	return r
}
