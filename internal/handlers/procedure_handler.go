package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mirantsoa/clinic-api/internal/apperr"
	"github.com/mirantsoa/clinic-api/internal/models"
	"github.com/mirantsoa/clinic-api/internal/store"
)

type createProcedureRequest struct {
	Name     string `json:"name" binding:"required"`
	Category string `json:"category" binding:"required"`
	Date     string `json:"date" binding:"required"`
	Doctor   string `json:"doctor" binding:"required"`
	Patient  string `json:"patient" binding:"required"`
}

func (h *Handler) CreateProcedure(c *gin.Context) {
	repos, _, ok := h.repos(c)
	if !ok {
		return
	}

	var req createProcedureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.Validation(err.Error()))
		return
	}

	if !models.ValidProcedureCategory(req.Category) {
		h.respondError(c, apperr.Validation("unknown procedure category"))
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		h.respondError(c, err)
		return
	}

	proc := models.Procedure{
		ID:       primitive.NewObjectID(),
		Name:     req.Name,
		Category: req.Category,
		Date:     date,
		Doctor:   req.Doctor,
		Patient:  req.Patient,
	}

	if err := repos.Procedures.Create(c.Request.Context(), &proc); err != nil {
		h.respondError(c, storeErr(err, "procedure not found", ""))
		return
	}

	c.JSON(http.StatusCreated, proc)
}

func (h *Handler) ListProcedures(c *gin.Context) {
	repos, _, ok := h.repos(c)
	if !ok {
		return
	}

	from, to := dateRange(c)
	procedures, err := repos.Procedures.List(c.Request.Context(), store.ProcedureFilter{
		From:     from,
		To:       to,
		Category: c.Query("category"),
	})
	if err != nil {
		h.respondError(c, apperr.Internal("failed to retrieve procedures", err))
		return
	}

	c.JSON(http.StatusOK, procedures)
}

func (h *Handler) GetProcedure(c *gin.Context) {
	repos, _, ok := h.repos(c)
	if !ok {
		return
	}

	id, err := objectID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	proc, err := repos.Procedures.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, storeErr(err, "procedure not found", ""))
		return
	}

	c.JSON(http.StatusOK, proc)
}

type updateProcedureRequest struct {
	Name     *string `json:"name,omitempty"`
	Category *string `json:"category,omitempty"`
	Date     *string `json:"date,omitempty"`
	Doctor   *string `json:"doctor,omitempty"`
	Patient  *string `json:"patient,omitempty"`
}

func (h *Handler) UpdateProcedure(c *gin.Context) {
	repos, _, ok := h.repos(c)
	if !ok {
		return
	}

	id, err := objectID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var req updateProcedureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.Validation("invalid request body"))
		return
	}

	update := store.ProcedureUpdate{
		Name:    req.Name,
		Doctor:  req.Doctor,
		Patient: req.Patient,
	}
	if req.Category != nil {
		if !models.ValidProcedureCategory(*req.Category) {
			h.respondError(c, apperr.Validation("unknown procedure category"))
			return
		}
		update.Category = req.Category
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

	if err := repos.Procedures.Update(c.Request.Context(), id, update); err != nil {
		h.respondError(c, storeErr(err, "procedure not found", ""))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "procedure updated"})
}

func (h *Handler) DeleteProcedure(c *gin.Context) {
	repos, _, ok := h.repos(c)
	if !ok {
		return
	}

	id, err := objectID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := repos.Procedures.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, storeErr(err, "procedure not found", ""))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "procedure deleted"})
}

// parseDate accepts RFC3339 or a bare YYYY-MM-DD.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, apperr.Validation("invalid date, use RFC3339 or YYYY-MM-DD")
}
