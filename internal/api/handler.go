package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"command-center-backend/config"
	"command-center-backend/internal/action"
	"command-center-backend/internal/model"
	"command-center-backend/internal/store"
	"command-center-backend/internal/view"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	actions *action.Manager
	db      *gorm.DB
	webpush *webpush.Options
	rule    model.UnmatchedRule
	loc     *time.Location
	now     func() time.Time
}

// NewHandler creates a new API handler.
func NewHandler(cfg *config.Config, s store.Store, actions *action.Manager, db *gorm.DB, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:   s,
		actions: actions,
		db:      db,
		webpush: webpushOptions,
		rule: model.UnmatchedRule{
			EmailPatterns: cfg.Matching.PlaceholderEmailPatterns,
			NameMarkers:   cfg.Matching.PlaceholderNameMarkers,
		},
		loc: cfg.Upstream.Location(),
		now: time.Now,
	}
}

// buildView assembles a fresh view model from the current snapshot.
func (h *Handler) buildView() *view.Model {
	return view.Build(h.store.Snapshot(), view.Params{
		Now:      h.now(),
		Location: h.loc,
		Rule:     h.rule,
	})
}
