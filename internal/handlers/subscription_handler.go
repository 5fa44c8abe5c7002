package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mirantsoa/clinic-api/internal/apperr"
	"github.com/mirantsoa/clinic-api/internal/models"
	"github.com/mirantsoa/clinic-api/internal/store"
	"github.com/mirantsoa/clinic-api/internal/tenant"
)

type createSubscriptionRequest struct {
	PlanType     string  `json:"planType" binding:"required"`
	Seats        int     `json:"seats" binding:"required,min=1"`
	PricePerSeat float64 `json:"pricePerSeat" binding:"required"`
	BillingRef   string  `json:"billingRef" binding:"required"`
	PeriodEnd    string  `json:"periodEnd" binding:"required"`
}

func (h *Handler) CreateSubscription(c *gin.Context) {
	repos, _, ok := h.repos(c)
	if !ok {
		return
	}

	var req createSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.Validation(err.Error()))
		return
	}

	periodEnd, err := parseDate(req.PeriodEnd)
	if err != nil {
		h.respondError(c, err)
		return
	}

	sub := models.Subscription{
		ID:           primitive.NewObjectID(),
		PlanType:     req.PlanType,
		Seats:        req.Seats,
		PricePerSeat: req.PricePerSeat,
		BillingRef:   req.BillingRef,
		Status:       models.SubscriptionActive,
		PeriodEnd:    periodEnd,
	}

	if err := repos.Subscriptions.Create(c.Request.Context(), &sub); err != nil {
		h.respondError(c, storeErr(err, "subscription not found", "a subscription with this billing reference already exists"))
		return
	}

	c.JSON(http.StatusCreated, sub)
}

func (h *Handler) ListSubscriptions(c *gin.Context) {
	repos, _, ok := h.repos(c)
	if !ok {
		return
	}

	subs, err := repos.Subscriptions.List(c.Request.Context())
	if err != nil {
		h.respondError(c, apperr.Internal("failed to retrieve subscriptions", err))
		return
	}

	c.JSON(http.StatusOK, subs)
}

func (h *Handler) GetSubscription(c *gin.Context) {
	repos, _, ok := h.repos(c)
	if !ok {
		return
	}

	id, err := objectID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	sub, err := repos.Subscriptions.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, storeErr(err, "subscription not found", ""))
		return
	}

	c.JSON(http.StatusOK, sub)
}

type updateSubscriptionRequest struct {
	PlanType     *string  `json:"planType,omitempty"`
	Seats        *int     `json:"seats,omitempty"`
	PricePerSeat *float64 `json:"pricePerSeat,omitempty"`
	Status       *string  `json:"status,omitempty"`
	PeriodEnd    *string  `json:"periodEnd,omitempty"`
}

func (h *Handler) UpdateSubscription(c *gin.Context) {
	repos, _, ok := h.repos(c)
	if !ok {
		return
	}

	id, err := objectID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var req updateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.Validation("invalid request body"))
		return
	}

	update := store.SubscriptionUpdate{
		PlanType:     req.PlanType,
		Seats:        req.Seats,
		PricePerSeat: req.PricePerSeat,
		Status:       req.Status,
	}
	if req.PeriodEnd != nil {
		t, err := parseDate(*req.PeriodEnd)
		if err != nil {
			h.respondError(c, err)
			return
		}
		update.PeriodEnd = &t
	}

	if update.IsEmpty() {
		h.respondError(c, apperr.Validation("no fields to update"))
		return
	}

	if err := repos.Subscriptions.Update(c.Request.Context(), id, update); err != nil {
		h.respondError(c, storeErr(err, "subscription not found", ""))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "subscription updated"})
}

func (h *Handler) DeleteSubscription(c *gin.Context) {
	repos, _, ok := h.repos(c)
	if !ok {
		return
	}

	id, err := objectID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := repos.Subscriptions.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, storeErr(err, "subscription not found", ""))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "subscription deleted"})
}

// ExpireSubscriptions is the cron-triggered sweep: it marks every active
// subscription past its period end as expired for the tenant named in the
// X-Tenant header. Gated by the cron shared-secret middleware.
func (h *Handler) ExpireSubscriptions(c *gin.Context) {
	tenantID, err := tenant.FromRequest(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	repos, err := h.Stores.ForTenant(c.Request.Context(), tenantID)
	if err != nil {
		h.respondError(c, apperr.Internal("tenant database unavailable", err))
		return
	}

	n, err := repos.Subscriptions.ExpireDue(c.Request.Context(), time.Now().UTC())
	if err != nil {
		h.respondError(c, apperr.Internal("failed to expire subscriptions", err))
		return
	}

	h.Log.WithField("tenant", tenantID).WithField("expired", n).Info("subscription sweep complete")
	c.JSON(http.StatusOK, gin.H{"expired": n})
}
