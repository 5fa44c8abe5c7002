package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mirantsoa/clinic-api/internal/apperr"
	"github.com/mirantsoa/clinic-api/internal/auth"
	"github.com/mirantsoa/clinic-api/internal/config"
	"github.com/mirantsoa/clinic-api/internal/services"
	"github.com/mirantsoa/clinic-api/internal/store"
	"github.com/mirantsoa/clinic-api/internal/tenant"
)

// StoreProvider hands out the repository set for a tenant plus the shared
// stock store. Satisfied by *tenant.Registry in production and by fakes in
// tests.
type StoreProvider interface {
	ForTenant(ctx context.Context, tenant string) (*store.Repos, error)
	Stock() store.StockStore
}

type Handler struct {
	Stores   StoreProvider
	Sessions *auth.Manager
	Notifier *services.Notifier
	Cfg      *config.Config
	Log      *logrus.Logger
}

func NewHandler(stores StoreProvider, sessions *auth.Manager, notifier *services.Notifier, cfg *config.Config, log *logrus.Logger) *Handler {
	return &Handler{
		Stores:   stores,
		Sessions: sessions,
		Notifier: notifier,
		Cfg:      cfg,
		Log:      log,
	}
}

// repos resolves the tenant from the request and returns its repository set.
// On failure it writes the error response and returns false.
func (h *Handler) repos(c *gin.Context) (*store.Repos, string, bool) {
	tenantID, err := tenant.FromRequest(c)
	if err != nil {
		h.respondError(c, err)
		return nil, "", false
	}
	repos, err := h.Stores.ForTenant(c.Request.Context(), tenantID)
	if err != nil {
		h.respondError(c, apperr.Internal("tenant database unavailable", err))
		return nil, "", false
	}
	return repos, tenantID, true
}

// respondError translates any failure to the error taxonomy: a JSON body with
// an "error" field and the matching status code. Unclassified errors are
// logged with their cause and surface as a bare 500.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := apperr.Status(err)
	if status == http.StatusInternalServerError {
		h.Log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}
	c.JSON(status, gin.H{"error": apperr.Message(err)})
}

// objectID parses the :id route param, rejecting malformed ids as client
// errors.
func objectID(c *gin.Context) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("invalid id")
	}
	return id, nil
}

// dateRange reads optional startDate/endDate query params (YYYY-MM-DD). The
// end date is inclusive of its entire day, down to the last instant.
func dateRange(c *gin.Context) (*time.Time, *time.Time) {
	var from, to *time.Time
	if s := c.Query("startDate"); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			from = &t
		}
	}
	if s := c.Query("endDate"); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
			to = &t
		}
	}
	return from, to
}

// storeErr maps repository sentinels to taxonomy entries.
func storeErr(err error, notFoundMsg, conflictMsg string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound(notFoundMsg)
	case errors.Is(err, store.ErrDuplicate):
		return apperr.Conflict(conflictMsg)
	default:
		return apperr.Internal("database operation failed", err)
	}
}
