package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Sanyister/SubjectTeacherApi/internal/api/metrics"
	"github.com/Sanyister/SubjectTeacherApi/internal/core/domain"
)

// RBAC enforces role-based access control on top of the token gate. The
// request passes when the verified claims hold at least one of the allowed
// roles; a valid token without the role is a 403, never a 401.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(ClaimsKey).(*domain.AuthClaims)
			if !ok || claims == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}

			for _, role := range allowedRoles {
				if claims.HasRole(role) {
					return next(c)
				}
			}

			metrics.RoleDenialsTotal.Inc()
			return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
		}
	}
}
