package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mirantsoa/clinic-api/internal/apperr"
	"github.com/mirantsoa/clinic-api/internal/models"
)

type createDocumentRequest struct {
	UserID      string `json:"userId" binding:"required"`
	Name        string `json:"name" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
	Content     []byte `json:"content" binding:"required"` // base64 in JSON
}

func (h *Handler) CreateDocument(c *gin.Context) {
	repos, _, ok := h.repos(c)
	if !ok {
		return
	}

	var req createDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.Validation(err.Error()))
		return
	}

	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		h.respondError(c, apperr.Validation("invalid userId"))
		return
	}

	if _, err := repos.Users.Get(c.Request.Context(), userID); err != nil {
		h.respondError(c, storeErr(err, "user not found", ""))
		return
	}

	doc := models.Document{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		Name:        req.Name,
		ContentType: req.ContentType,
		Size:        int64(len(req.Content)),
		Content:     req.Content,
		UploadedAt:  time.Now().UTC(),
	}

	if err := repos.Documents.Create(c.Request.Context(), &doc); err != nil {
		h.respondError(c, storeErr(err, "document not found", ""))
		return
	}

	doc.Content = nil // don't echo the payload back
	c.JSON(http.StatusCreated, doc)
}

// ListDocuments returns a user's documents without their raw content.
func (h *Handler) ListDocuments(c *gin.Context) {
	repos, _, ok := h.repos(c)
	if !ok {
		return
	}

	userIDHex := c.Query("userId")
	if userIDHex == "" {
		h.respondError(c, apperr.Validation("userId query parameter is required"))
		return
	}
	userID, err := primitive.ObjectIDFromHex(userIDHex)
	if err != nil {
		h.respondError(c, apperr.Validation("invalid userId"))
		return
	}

	docs, err := repos.Documents.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, apperr.Internal("failed to retrieve documents", err))
		return
	}

	c.JSON(http.StatusOK, docs)
}

// GetDocument streams the raw document bytes with their stored content type.
func (h *Handler) GetDocument(c *gin.Context) {
	repos, _, ok := h.repos(c)
	if !ok {
		return
	}

	id, err := objectID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	doc, err := repos.Documents.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, storeErr(err, "document not found", ""))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+doc.Name+`"`)
	c.Data(http.StatusOK, doc.ContentType, doc.Content)
}

func (h *Handler) DeleteDocument(c *gin.Context) {
	repos, _, ok := h.repos(c)
	if !ok {
		return
	}

	id, err := objectID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := repos.Documents.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, storeErr(err, "document not found", ""))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "document deleted"})
}
