package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Sanyister/SubjectTeacherApi/internal/api/middleware"
	"github.com/Sanyister/SubjectTeacherApi/internal/core/domain"
)

// ctxClaims extracts the verified claims injected by the Auth middleware.
// A missing claims object means the gate never ran for this route, which is
// a wiring bug surfaced as 401 rather than a panic.
func ctxClaims(c echo.Context) (*domain.AuthClaims, error) {
	claims, ok := c.Get(middleware.ClaimsKey).(*domain.AuthClaims)
	if !ok || claims == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return claims, nil
}
