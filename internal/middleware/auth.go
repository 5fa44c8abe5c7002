package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mirantsoa/clinic-api/internal/auth"
	"github.com/mirantsoa/clinic-api/internal/tenant"
)

const (
	ContextUserID = "userID"
	ContextRole   = "userRole"
	ContextEmail  = "userEmail"
	ContextTenant = "tenant"
)

// Auth verifies the session cookie against the requested tenant and exposes
// the caller's identity on the gin context. When verification renewed the
// role window, the cookie is replaced with the refreshed token.
func Auth(sessions *auth.Manager, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, err := tenant.FromRequest(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing tenant identifier"})
			return
		}

		tokenStr, err := c.Cookie(cookieName)
		if err != nil || tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		session, err := sessions.Verify(c.Request.Context(), tokenStr, tenantID)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrTenantMismatch):
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "session does not belong to this tenant"})
			case errors.Is(err, auth.ErrSessionRevoked):
				clearSessionCookie(c, cookieName)
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session revoked"})
			case errors.Is(err, auth.ErrInvalidToken):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to verify session"})
			}
			return
		}

		if session.RefreshedToken != "" {
			setSessionCookie(c, cookieName, session.RefreshedToken, int(sessions.SessionTTL().Seconds()))
		}

		c.Set(ContextUserID, session.Claims.UserID)
		c.Set(ContextRole, session.Claims.Role)
		c.Set(ContextEmail, session.Claims.Email)
		c.Set(ContextTenant, tenantID)

		c.Next()
	}
}

// RequireRole gates a route group behind an allow-list of roles.
func RequireRole(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		for _, a := range allowed {
			if role == a {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "permission denied"})
	}
}

func setSessionCookie(c *gin.Context, name, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, token, maxAge, "/", "", false, true)
}

func clearSessionCookie(c *gin.Context, name string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, "", -1, "/", "", false, true)
}

// SetSessionCookie is used by the auth handlers on login.
func SetSessionCookie(c *gin.Context, name, token string, maxAge int) {
	setSessionCookie(c, name, token, maxAge)
}

// ClearSessionCookie is used by the auth handlers on logout.
func ClearSessionCookie(c *gin.Context, name string) {
	clearSessionCookie(c, name)
}
