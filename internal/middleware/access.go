package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agency-portal/internal/authz"
)

// RequireAdmin lets only admins through. It must run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		if !id.IsAdmin() {
			abort(c, http.StatusForbidden, "forbidden", "admin access required")
			return
		}
		c.Next()
	}
}

// RequireAccess checks the caller's role against a global resource.
func RequireAccess(enforcer *authz.Enforcer, resource string, act authz.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		allowed, err := enforcer.Can(id, resource, act)
		if err != nil {
			abort(c, http.StatusInternalServerError, "internal error", "failed to check permissions")
			return
		}
		if !allowed {
			abort(c, http.StatusForbidden, "forbidden", "you do not have access to "+resource)
			return
		}
		c.Next()
	}
}
