package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mirantsoa/clinic-api/internal/apperr"
	"github.com/mirantsoa/clinic-api/internal/models"
	"github.com/mirantsoa/clinic-api/internal/store"
)

type createAppointmentRequest struct {
	Date         string `json:"date" binding:"required"`
	Professional string `json:"professional" binding:"required"`
	Patient      string `json:"patient" binding:"required"`
	Service      string `json:"service" binding:"required"`
	Status       string `json:"status"`
	WithMeeting  bool   `json:"withMeeting"`
	NotifyEmail  string `json:"notifyEmail"`
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	repos, _, ok := h.repos(c)
	if !ok {
		return
	}

	var req createAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.Validation(err.Error()))
		return
	}

	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		h.respondError(c, apperr.Validation("invalid date, use RFC3339"))
		return
	}

	status := req.Status
	if status == "" {
		status = models.AppointmentPending
	}
	if !models.ValidAppointmentStatus(status) {
		h.respondError(c, apperr.Validation("status must be Pending, Confirmed or Canceled"))
		return
	}

	apt := models.Appointment{
		ID:           primitive.NewObjectID(),
		Status:       status,
		Date:         date,
		Professional: req.Professional,
		Patient:      req.Patient,
		Service:      req.Service,
		CreatedAt:    time.Now().UTC(),
	}
	if req.WithMeeting {
		apt.MeetingID = uuid.NewString()
		apt.MeetingURL = fmt.Sprintf("https://meet.jit.si/%s", apt.MeetingID)
	}

	if err := repos.Appointments.Create(c.Request.Context(), &apt); err != nil {
		h.respondError(c, storeErr(err, "appointment not found", "appointment already exists"))
		return
	}

	if req.NotifyEmail != "" {
		h.Notifier.AppointmentConfirmation(req.NotifyEmail, &apt)
	}

	c.JSON(http.StatusCreated, apt)
}

// ListAppointments supports date-range and status filters, sorted by date.
func (h *Handler) ListAppointments(c *gin.Context) {
	repos, _, ok := h.repos(c)
	if !ok {
		return
	}

	from, to := dateRange(c)
	appointments, err := repos.Appointments.List(c.Request.Context(), store.AppointmentFilter{
		From:   from,
		To:     to,
		Status: c.Query("status"),
	})
	if err != nil {
		h.respondError(c, apperr.Internal("failed to retrieve appointments", err))
		return
	}

	c.JSON(http.StatusOK, appointments)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	repos, _, ok := h.repos(c)
	if !ok {
		return
	}

	id, err := objectID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	apt, err := repos.Appointments.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, storeErr(err, "appointment not found", ""))
		return
	}

	c.JSON(http.StatusOK, apt)
}

type updateAppointmentRequest struct {
	Date         *string `json:"date,omitempty"`
	Professional *string `json:"professional,omitempty"`
	Patient      *string `json:"patient,omitempty"`
	Service      *string `json:"service,omitempty"`
	Status       *string `json:"status,omitempty"`
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	repos, _, ok := h.repos(c)
	if !ok {
		return
	}

	id, err := objectID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var req updateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.Validation("invalid request body"))
		return
	}

	update := store.AppointmentUpdate{
		Professional: req.Professional,
		Patient:      req.Patient,
		Service:      req.Service,
	}
	if req.Date != nil {
		t, err := time.Parse(time.RFC3339, *req.Date)
		if err != nil {
			h.respondError(c, apperr.Validation("invalid date, use RFC3339"))
			return
		}
		update.Date = &t
	}
	if req.Status != nil {
		if !models.ValidAppointmentStatus(*req.Status) {
			h.respondError(c, apperr.Validation("status must be Pending, Confirmed or Canceled"))
			return
		}
		update.Status = req.Status
	}

	if update.IsEmpty() {
		h.respondError(c, apperr.Validation("no fields to update"))
		return
	}

	if err := repos.Appointments.Update(c.Request.Context(), id, update); err != nil {
		h.respondError(c, storeErr(err, "appointment not found", ""))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "appointment updated"})
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	repos, _, ok := h.repos(c)
	if !ok {
		return
	}

	id, err := objectID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := repos.Appointments.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, storeErr(err, "appointment not found", ""))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "appointment deleted"})
}
