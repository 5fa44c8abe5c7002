package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mirantsoa/clinic-api/internal/apperr"
	"github.com/mirantsoa/clinic-api/internal/auth"
	"github.com/mirantsoa/clinic-api/internal/middleware"
	"github.com/mirantsoa/clinic-api/internal/models"
	"github.com/mirantsoa/clinic-api/internal/store"
)

func (h *Handler) ListUsers(c *gin.Context) {
	repos, _, ok := h.repos(c)
	if !ok {
		return
	}

	role := c.Query("role")
	if role != "" && !models.ValidRole(role) {
		h.respondError(c, apperr.Validation("unknown role"))
		return
	}

	users, err := repos.Users.List(c.Request.Context(), role)
	if err != nil {
		h.respondError(c, apperr.Internal("failed to retrieve users", err))
		return
	}

	c.JSON(http.StatusOK, users)
}

func (h *Handler) GetUser(c *gin.Context) {
	repos, _, ok := h.repos(c)
	if !ok {
		return
	}

	id, err := objectID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	user, err := repos.Users.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, storeErr(err, "user not found", ""))
		return
	}

	c.JSON(http.StatusOK, user)
}

type updateUserRequest struct {
	FullName *string `json:"fullName,omitempty"`
	Role     *string `json:"role,omitempty"`
	Status   *string `json:"status,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Password *string `json:"password,omitempty"`
}

// UpdateUser also drops the cached role so a role change becomes visible on
// the next stale verification instead of the next cache expiry.
func (h *Handler) UpdateUser(c *gin.Context) {
	repos, tenantID, ok := h.repos(c)
	if !ok {
		return
	}

	id, err := objectID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.Validation("invalid request body"))
		return
	}

	update := store.UserUpdate{
		FullName: req.FullName,
		Phone:    req.Phone,
	}
	if req.Role != nil {
		if !models.ValidRole(*req.Role) {
			h.respondError(c, apperr.Validation("unknown role"))
			return
		}
		update.Role = req.Role
	}
	if req.Status != nil {
		if *req.Status != models.UserActive && *req.Status != models.UserInactive {
			h.respondError(c, apperr.Validation("status must be Active or Inactive"))
			return
		}
		update.Status = req.Status
	}
	if req.Password != nil {
		if len(*req.Password) < 8 {
			h.respondError(c, apperr.Validation("password must be at least 8 characters"))
			return
		}
		hashed, err := auth.HashPassword(*req.Password)
		if err != nil {
			h.respondError(c, apperr.Internal("failed to hash password", err))
			return
		}
		update.Password = &hashed
	}

	if update.IsEmpty() {
		h.respondError(c, apperr.Validation("no fields to update"))
		return
	}

	if err := repos.Users.Update(c.Request.Context(), id, update); err != nil {
		h.respondError(c, storeErr(err, "user not found", ""))
		return
	}

	if update.Role != nil {
		h.Sessions.InvalidateRole(c.Request.Context(), tenantID, id.Hex())
	}

	c.JSON(http.StatusOK, gin.H{"message": "user updated"})
}

// DeleteUser removes a user and drops any cached role, revoking their
// sessions at the next role check.
func (h *Handler) DeleteUser(c *gin.Context) {
	repos, tenantID, ok := h.repos(c)
	if !ok {
		return
	}

	id, err := objectID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if id.Hex() == c.GetString(middleware.ContextUserID) {
		h.respondError(c, apperr.Validation("cannot delete your own account"))
		return
	}

	if err := repos.Users.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, storeErr(err, "user not found", ""))
		return
	}

	h.Sessions.InvalidateRole(c.Request.Context(), tenantID, id.Hex())

	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}
