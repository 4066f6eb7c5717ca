package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/adonwheels/identity-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"success": false, "message": "..."}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Success: false, Message: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			logUnhandled(log, c, err)
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrMissingField):
		// Wrapped with the names of the missing fields.
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrInvalidKind):
		return http.StatusBadRequest, domain.ErrInvalidKind.Error()
	case errors.Is(err, domain.ErrPasswordTooLong):
		return http.StatusBadRequest, domain.ErrPasswordTooLong.Error()
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusBadRequest, domain.ErrDuplicateEmail.Error()
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, domain.ErrUserNotFound.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, domain.ErrInvalidCredentials.Error()
	case errors.Is(err, domain.ErrTokenExpired):
		return http.StatusUnauthorized, domain.ErrTokenExpired.Error()
	case errors.Is(err, domain.ErrTokenInvalid):
		return http.StatusUnauthorized, domain.ErrTokenInvalid.Error()
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, domain.ErrForbidden.Error()
	}

	// Storage failures and anything unexpected: log the real cause, return a generic message.
	logUnhandled(log, c, err)
	return http.StatusInternalServerError, "internal server error"
}

func logUnhandled(log zerolog.Logger, c echo.Context, err error) {
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")
}
