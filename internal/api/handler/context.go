package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/adonwheels/identity-api/internal/api/middleware"
	"github.com/adonwheels/identity-api/internal/core/domain"
)

// ctxIdentity extracts the caller identity injected by the Auth middleware.
// A missing identity means the route was mounted without the middleware.
func ctxIdentity(c echo.Context) (*domain.Identity, error) {
	id, ok := c.Get(middleware.IdentityKey).(*domain.Identity)
	if !ok || id == nil || id.SubjectID == "" {
		return nil, domain.ErrTokenInvalid
	}
	return id, nil
}
