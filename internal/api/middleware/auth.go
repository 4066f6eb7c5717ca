package middleware

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/adonwheels/identity-api/internal/core/domain"
	"github.com/adonwheels/identity-api/internal/core/ports"
)

// IdentityKey is the echo.Context key holding the caller's *domain.Identity.
const IdentityKey = "identity"

// Auth validates the Bearer token and injects the caller identity into the
// context. When required is non-empty, tokens of any other kind are
// rejected with domain.ErrForbidden.
func Auth(authz ports.Authorizer, required domain.Kind) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return err
			}

			identity, err := authz.Authorize(c.Request().Context(), token, required)
			if err != nil {
				return err
			}

			c.Set(IdentityKey, identity)
			return next(c)
		}
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", fmt.Errorf("%w: missing authorization header", domain.ErrTokenInvalid)
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", fmt.Errorf("%w: malformed authorization header", domain.ErrTokenInvalid)
	}
	return token, nil
}
