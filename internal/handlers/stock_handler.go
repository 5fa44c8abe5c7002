package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mirantsoa/clinic-api/internal/apperr"
	"github.com/mirantsoa/clinic-api/internal/models"
	"github.com/mirantsoa/clinic-api/internal/store"
)

// Stock handlers run against the shared stock database, not the tenant's
// own. Requests still authenticate against a tenant; only the data is shared.

type createStockItemRequest struct {
	Name           string `json:"name" binding:"required"`
	Quantity       int    `json:"quantity"`
	MinQuantity    int    `json:"minQuantity"`
	ExpirationDate string `json:"expirationDate"`
}

func (h *Handler) CreateStockItem(c *gin.Context) {
	var req createStockItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.Validation(err.Error()))
		return
	}
	if req.Quantity < 0 || req.MinQuantity < 0 {
		h.respondError(c, apperr.Validation("quantities cannot be negative"))
		return
	}

	item := models.StockItem{
		ID:          primitive.NewObjectID(),
		Name:        req.Name,
		Quantity:    req.Quantity,
		MinQuantity: req.MinQuantity,
	}
	if req.ExpirationDate != "" {
		t, err := parseDate(req.ExpirationDate)
		if err != nil {
			h.respondError(c, err)
			return
		}
		item.ExpirationDate = &t
	}

	if err := h.Stores.Stock().CreateItem(c.Request.Context(), &item); err != nil {
		h.respondError(c, storeErr(err, "stock item not found", ""))
		return
	}

	c.JSON(http.StatusCreated, item)
}

func (h *Handler) ListStockItems(c *gin.Context) {
	items, err := h.Stores.Stock().ListItems(c.Request.Context())
	if err != nil {
		h.respondError(c, apperr.Internal("failed to retrieve stock items", err))
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) GetStockItem(c *gin.Context) {
	id, err := objectID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	item, err := h.Stores.Stock().GetItem(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, storeErr(err, "stock item not found", ""))
		return
	}
	c.JSON(http.StatusOK, item)
}

type updateStockItemRequest struct {
	Name           *string `json:"name,omitempty"`
	MinQuantity    *int    `json:"minQuantity,omitempty"`
	ExpirationDate *string `json:"expirationDate,omitempty"`
}

// UpdateStockItem covers metadata only. Quantity is off limits here: it moves
// exclusively through movements so the audit trail stays complete.
func (h *Handler) UpdateStockItem(c *gin.Context) {
	id, err := objectID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var req updateStockItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.Validation("invalid request body"))
		return
	}

	update := store.StockItemUpdate{
		Name:        req.Name,
		MinQuantity: req.MinQuantity,
	}
	if req.ExpirationDate != nil {
		t, err := parseDate(*req.ExpirationDate)
		if err != nil {
			h.respondError(c, err)
			return
		}
		update.ExpirationDate = &t
	}

	if update.IsEmpty() {
		h.respondError(c, apperr.Validation("no fields to update"))
		return
	}

	if err := h.Stores.Stock().UpdateItem(c.Request.Context(), id, update); err != nil {
		h.respondError(c, storeErr(err, "stock item not found", ""))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "stock item updated"})
}

func (h *Handler) DeleteStockItem(c *gin.Context) {
	id, err := objectID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.Stores.Stock().DeleteItem(c.Request.Context(), id); err != nil {
		h.respondError(c, storeErr(err, "stock item not found", ""))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "stock item deleted"})
}

type movementRequest struct {
	Type           string `json:"type" binding:"required"`
	Quantity       int    `json:"quantity" binding:"required"`
	Note           string `json:"note"`
	ExpirationDate string `json:"expirationDate"`
}

// CreateStockMovement applies an incoming or outgoing movement atomically:
// the quantity change and the movement record commit together or not at all.
func (h *Handler) CreateStockMovement(c *gin.Context) {
	id, err := objectID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var req movementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.Validation(err.Error()))
		return
	}
	if req.Type != models.MovementIncoming && req.Type != models.MovementOutgoing {
		h.respondError(c, apperr.Validation("type must be incoming or outgoing"))
		return
	}
	if req.Quantity <= 0 {
		h.respondError(c, apperr.Validation("quantity must be positive"))
		return
	}

	mvReq := store.MovementRequest{
		Type:     req.Type,
		Quantity: req.Quantity,
		Note:     req.Note,
	}
	if req.ExpirationDate != "" {
		t, err := parseDate(req.ExpirationDate)
		if err != nil {
			h.respondError(c, err)
			return
		}
		mvReq.ExpirationDate = &t
	}

	mv, err := h.Stores.Stock().ApplyMovement(c.Request.Context(), id, mvReq)
	if err != nil {
		var insufficient *models.InsufficientStockError
		switch {
		case errors.As(err, &insufficient):
			h.respondError(c, apperr.Validation(insufficient.Error()))
		case errors.Is(err, store.ErrNotFound):
			h.respondError(c, apperr.NotFound("stock item not found"))
		default:
			h.respondError(c, apperr.Internal("failed to apply movement", err))
		}
		return
	}

	c.JSON(http.StatusCreated, mv)
}

func (h *Handler) ListStockMovements(c *gin.Context) {
	id, err := objectID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	movements, err := h.Stores.Stock().ListMovements(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, apperr.Internal("failed to retrieve movements", err))
		return
	}

	c.JSON(http.StatusOK, movements)
}
