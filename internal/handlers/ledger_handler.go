package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mirantsoa/clinic-api/internal/apperr"
	"github.com/mirantsoa/clinic-api/internal/models"
	"github.com/mirantsoa/clinic-api/internal/store"
)

// Bills and income are the same ledger shape over two collections, so the
// handlers share one implementation selected by repo.

type createLedgerRequest struct {
	Amount      float64 `json:"amount" binding:"required"`
	Date        string  `json:"date" binding:"required"`
	Description string  `json:"description" binding:"required"`
}

func (h *Handler) CreateBill(c *gin.Context)   { h.createLedgerEntry(c, billsRepo) }
func (h *Handler) CreateIncome(c *gin.Context) { h.createLedgerEntry(c, incomeRepo) }
func (h *Handler) ListBills(c *gin.Context)    { h.listLedgerEntries(c, billsRepo) }
func (h *Handler) ListIncome(c *gin.Context)   { h.listLedgerEntries(c, incomeRepo) }
func (h *Handler) GetBill(c *gin.Context)      { h.getLedgerEntry(c, billsRepo) }
func (h *Handler) GetIncome(c *gin.Context)    { h.getLedgerEntry(c, incomeRepo) }
func (h *Handler) UpdateBill(c *gin.Context)   { h.updateLedgerEntry(c, billsRepo) }
func (h *Handler) UpdateIncome(c *gin.Context) { h.updateLedgerEntry(c, incomeRepo) }
func (h *Handler) DeleteBill(c *gin.Context)   { h.deleteLedgerEntry(c, billsRepo) }
func (h *Handler) DeleteIncome(c *gin.Context) { h.deleteLedgerEntry(c, incomeRepo) }

type ledgerSelector func(r *store.Repos) store.LedgerRepo

func billsRepo(r *store.Repos) store.LedgerRepo  { return r.Bills }
func incomeRepo(r *store.Repos) store.LedgerRepo { return r.Income }

func (h *Handler) createLedgerEntry(c *gin.Context, sel ledgerSelector) {
	repos, _, ok := h.repos(c)
	if !ok {
		return
	}

	var req createLedgerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.Validation(err.Error()))
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		h.respondError(c, err)
		return
	}

	entry := models.LedgerEntry{
		ID:          primitive.NewObjectID(),
		Amount:      req.Amount,
		Date:        date,
		Description: req.Description,
	}

	if err := sel(repos).Create(c.Request.Context(), &entry); err != nil {
		h.respondError(c, storeErr(err, "entry not found", ""))
		return
	}

	c.JSON(http.StatusCreated, entry)
}

func (h *Handler) listLedgerEntries(c *gin.Context, sel ledgerSelector) {
	repos, _, ok := h.repos(c)
	if !ok {
		return
	}

	from, to := dateRange(c)
	entries, err := sel(repos).List(c.Request.Context(), store.LedgerFilter{From: from, To: to})
	if err != nil {
		h.respondError(c, apperr.Internal("failed to retrieve entries", err))
		return
	}

	c.JSON(http.StatusOK, entries)
}

func (h *Handler) getLedgerEntry(c *gin.Context, sel ledgerSelector) {
	repos, _, ok := h.repos(c)
	if !ok {
		return
	}

	id, err := objectID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	entry, err := sel(repos).Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, storeErr(err, "entry not found", ""))
		return
	}

	c.JSON(http.StatusOK, entry)
}

type updateLedgerRequest struct {
	Amount      *float64 `json:"amount,omitempty"`
	Date        *string  `json:"date,omitempty"`
	Description *string  `json:"description,omitempty"`
}

func (h *Handler) updateLedgerEntry(c *gin.Context, sel ledgerSelector) {
	repos, _, ok := h.repos(c)
	if !ok {
		return
	}

	id, err := objectID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var req updateLedgerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.Validation("invalid request body"))
		return
	}

	update := store.LedgerUpdate{
		Amount:      req.Amount,
		Description: req.Description,
	}
	if req.Date != nil {
		t, err := parseDate(*req.Date)
		if err != nil {
			h.respondError(c, err)
			return
		}
		update.Date = &t
	}

	if update.IsEmpty() {
		h.respondError(c, apperr.Validation("no fields to update"))
		return
	}

	if err := sel(repos).Update(c.Request.Context(), id, update); err != nil {
		h.respondError(c, storeErr(err, "entry not found", ""))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "entry updated"})
}

func (h *Handler) deleteLedgerEntry(c *gin.Context, sel ledgerSelector) {
	repos, _, ok := h.repos(c)
	if !ok {
		return
	}

	id, err := objectID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := sel(repos).Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, storeErr(err, "entry not found", ""))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "entry deleted"})
}
