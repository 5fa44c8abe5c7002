package tenant

import (
	"regexp"

	"github.com/gin-gonic/gin"

	"github.com/mirantsoa/clinic-api/internal/apperr"
)

// HeaderName carries the tenant on legacy non-tenant-scoped routes.
const HeaderName = "X-Tenant"

var tenantPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,62}$`)

// FromRequest resolves the tenant identifier from the :tenant route param,
// falling back to the X-Tenant header on legacy routes. A missing or
// malformed tenant is a client error, never a 500.
func FromRequest(c *gin.Context) (string, error) {
	id := c.Param("tenant")
	if id == "" {
		id = c.GetHeader(HeaderName)
	}
	if id == "" {
		return "", apperr.Validation("missing tenant identifier")
	}
	if !tenantPattern.MatchString(id) {
		return "", apperr.Validation("invalid tenant identifier")
	}
	return id, nil
}
