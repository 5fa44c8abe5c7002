package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mirantsoa/clinic-api/internal/apperr"
	"github.com/mirantsoa/clinic-api/internal/auth"
	"github.com/mirantsoa/clinic-api/internal/middleware"
	"github.com/mirantsoa/clinic-api/internal/models"
	"github.com/mirantsoa/clinic-api/internal/store"
)

type RegisterUserRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
}

// RegisterUser creates a user inside the tenant. Owner-gated via route
// middleware; the default role is "user".
func (h *Handler) RegisterUser(c *gin.Context) {
	repos, _, ok := h.repos(c)
	if !ok {
		return
	}

	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.Validation(err.Error()))
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if !models.ValidRole(role) {
		h.respondError(c, apperr.Validation("unknown role"))
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		h.respondError(c, apperr.Internal("failed to hash password", err))
		return
	}

	user := models.User{
		ID:       primitive.NewObjectID(),
		FullName: req.FullName,
		Email:    req.Email,
		Password: hashed,
		Role:     role,
		Status:   models.UserActive,
		Phone:    req.Phone,
	}

	if err := repos.Users.Create(c.Request.Context(), &user); err != nil {
		h.respondError(c, storeErr(err, "user not found", "an account with this email already exists"))
		return
	}

	c.JSON(http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login checks credentials and sets the session cookie. The token embeds
// identity, tenant and role with a short role window.
func (h *Handler) Login(c *gin.Context) {
	repos, tenantID, ok := h.repos(c)
	if !ok {
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.Validation("email and password are required"))
		return
	}

	user, err := repos.Users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.respondError(c, apperr.Auth("invalid credentials"))
		return
	}
	if !auth.CheckPasswordHash(req.Password, user.Password) {
		h.respondError(c, apperr.Auth("invalid credentials"))
		return
	}

	token, err := h.Sessions.Issue(user.Email, user.ID.Hex(), tenantID, user.Role)
	if err != nil {
		h.respondError(c, apperr.Internal("could not create session", err))
		return
	}

	middleware.SetSessionCookie(c, h.Cfg.Session.CookieName, token, int(h.Sessions.SessionTTL().Seconds()))

	user.Password = ""
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout clears the session cookie.
func (h *Handler) Logout(c *gin.Context) {
	middleware.ClearSessionCookie(c, h.Cfg.Session.CookieName)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// VerifyRole forces a role re-fetch from the tenant database, re-issues the
// cookie with the fresh role window and returns the current role.
func (h *Handler) VerifyRole(c *gin.Context) {
	tenantID := c.GetString(middleware.ContextTenant)

	tokenStr, err := c.Cookie(h.Cfg.Session.CookieName)
	if err != nil || tokenStr == "" {
		h.respondError(c, apperr.Auth("authentication required"))
		return
	}

	session, err := h.Sessions.RefreshRole(c.Request.Context(), tokenStr, tenantID)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrSessionRevoked):
			middleware.ClearSessionCookie(c, h.Cfg.Session.CookieName)
			h.respondError(c, apperr.Auth("session revoked"))
		case errors.Is(err, auth.ErrTenantMismatch):
			h.respondError(c, apperr.Forbidden("session does not belong to this tenant"))
		case errors.Is(err, auth.ErrInvalidToken):
			h.respondError(c, apperr.Auth("invalid or expired session"))
		case errors.Is(err, store.ErrNotFound):
			h.respondError(c, apperr.Auth("session revoked"))
		default:
			h.respondError(c, apperr.Internal("failed to refresh role", err))
		}
		return
	}

	middleware.SetSessionCookie(c, h.Cfg.Session.CookieName, session.RefreshedToken, int(h.Sessions.SessionTTL().Seconds()))
	c.JSON(http.StatusOK, gin.H{"role": session.Claims.Role})
}
