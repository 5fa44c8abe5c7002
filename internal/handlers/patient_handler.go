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

type diagnosisPayload struct {
	Date      string `json:"date" binding:"required"`
	Diagnosis string `json:"diagnosis" binding:"required"`
	Notes     string `json:"notes"`
}

type createPatientRequest struct {
	UserID        string            `json:"userId" binding:"required"`
	Status        string            `json:"status"`
	Allergies     string            `json:"allergies"`
	Medications   string            `json:"medications"`
	History       string            `json:"history"`
	Notes         string            `json:"notes"`
	LastDiagnosis *diagnosisPayload `json:"lastDiagnosis,omitempty"`
}

// CreatePatient attaches a clinical record to an existing user with role
// "user". The record is one-to-one with its user.
func (h *Handler) CreatePatient(c *gin.Context) {
	repos, _, ok := h.repos(c)
	if !ok {
		return
	}

	var req createPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.Validation(err.Error()))
		return
	}

	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		h.respondError(c, apperr.Validation("invalid userId"))
		return
	}

	status := req.Status
	if status == "" {
		status = models.PatientActive
	}
	if !models.ValidPatientStatus(status) {
		h.respondError(c, apperr.Validation("status must be Active, Inactive or Archived"))
		return
	}

	user, err := repos.Users.Get(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, storeErr(err, "user not found", ""))
		return
	}
	if user.Role != models.RoleUser {
		h.respondError(c, apperr.Validation("patient records can only be attached to users with role \"user\""))
		return
	}
	if _, err := repos.Patients.GetByUser(c.Request.Context(), userID); err == nil {
		h.respondError(c, apperr.Conflict("a patient record already exists for this user"))
		return
	}

	patient := models.PatientDetails{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		Status:      status,
		Allergies:   req.Allergies,
		Medications: req.Medications,
		History:     req.History,
		Notes:       req.Notes,
		UpdatedAt:   time.Now().UTC(),
	}
	if req.LastDiagnosis != nil {
		d, err := parseDiagnosis(req.LastDiagnosis)
		if err != nil {
			h.respondError(c, err)
			return
		}
		patient.LastDiagnosis = d
	}

	if err := repos.Patients.Create(c.Request.Context(), &patient); err != nil {
		h.respondError(c, storeErr(err, "patient not found", ""))
		return
	}

	c.JSON(http.StatusCreated, patient)
}

func (h *Handler) ListPatients(c *gin.Context) {
	repos, _, ok := h.repos(c)
	if !ok {
		return
	}

	status := c.Query("status")
	if status != "" && !models.ValidPatientStatus(status) {
		h.respondError(c, apperr.Validation("status must be Active, Inactive or Archived"))
		return
	}

	patients, err := repos.Patients.List(c.Request.Context(), status)
	if err != nil {
		h.respondError(c, apperr.Internal("failed to retrieve patients", err))
		return
	}

	c.JSON(http.StatusOK, patients)
}

func (h *Handler) GetPatient(c *gin.Context) {
	repos, _, ok := h.repos(c)
	if !ok {
		return
	}

	id, err := objectID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	patient, err := repos.Patients.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, storeErr(err, "patient not found", ""))
		return
	}

	c.JSON(http.StatusOK, patient)
}

type updatePatientRequest struct {
	Status        *string           `json:"status,omitempty"`
	Allergies     *string           `json:"allergies,omitempty"`
	Medications   *string           `json:"medications,omitempty"`
	History       *string           `json:"history,omitempty"`
	Notes         *string           `json:"notes,omitempty"`
	LastDiagnosis *diagnosisPayload `json:"lastDiagnosis,omitempty"`
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	repos, _, ok := h.repos(c)
	if !ok {
		return
	}

	id, err := objectID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var req updatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.Validation("invalid request body"))
		return
	}

	update := store.PatientUpdate{
		Allergies:   req.Allergies,
		Medications: req.Medications,
		History:     req.History,
		Notes:       req.Notes,
	}
	if req.Status != nil {
		if !models.ValidPatientStatus(*req.Status) {
			h.respondError(c, apperr.Validation("status must be Active, Inactive or Archived"))
			return
		}
		update.Status = req.Status
	}
	if req.LastDiagnosis != nil {
		d, err := parseDiagnosis(req.LastDiagnosis)
		if err != nil {
			h.respondError(c, err)
			return
		}
		update.LastDiagnosis = d
	}

	if update.IsEmpty() {
		h.respondError(c, apperr.Validation("no fields to update"))
		return
	}

	if err := repos.Patients.Update(c.Request.Context(), id, update); err != nil {
		h.respondError(c, storeErr(err, "patient not found", ""))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "patient updated"})
}

func (h *Handler) DeletePatient(c *gin.Context) {
	repos, _, ok := h.repos(c)
	if !ok {
		return
	}

	id, err := objectID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := repos.Patients.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, storeErr(err, "patient not found", ""))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "patient deleted"})
}

func parseDiagnosis(p *diagnosisPayload) (*models.Diagnosis, error) {
	date, err := parseDate(p.Date)
	if err != nil {
		return nil, err
	}
	return &models.Diagnosis{
		Date:      date,
		Diagnosis: p.Diagnosis,
		Notes:     p.Notes,
	}, nil
}
