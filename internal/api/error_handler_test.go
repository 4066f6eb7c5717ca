package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adonwheels/identity-api/internal/core/domain"
)

func TestHTTPErrorHandler_StatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"missing field", fmt.Errorf("%w: name", domain.ErrMissingField), http.StatusBadRequest},
		{"invalid kind", domain.ErrInvalidKind, http.StatusBadRequest},
		{"password too long", domain.ErrPasswordTooLong, http.StatusBadRequest},
		{"duplicate email", fmt.Errorf("register: %w", domain.ErrDuplicateEmail), http.StatusBadRequest},
		{"user not found", domain.ErrUserNotFound, http.StatusNotFound},
		{"invalid credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"token invalid", fmt.Errorf("%w: signature is invalid", domain.ErrTokenInvalid), http.StatusUnauthorized},
		{"token expired", domain.ErrTokenExpired, http.StatusUnauthorized},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden},
		{"storage", fmt.Errorf("%w: insert: connection reset", domain.ErrStorage), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
		{"echo error", echo.NewHTTPError(http.StatusMethodNotAllowed, "method not allowed"), http.StatusMethodNotAllowed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			e.HTTPErrorHandler = NewHTTPErrorHandler(zerolog.Nop())
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			e.HTTPErrorHandler(tc.err, c)

			assert.Equal(t, tc.code, rec.Code)
			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestHTTPErrorHandler_SuppressesStorageCause(t *testing.T) {
	var logs bytes.Buffer
	e := echo.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(zerolog.New(&logs))
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/auth/register", nil), rec)

	e.HTTPErrorHandler(fmt.Errorf("%w: mongo: secret-host:27017 unreachable", domain.ErrStorage), c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret-host")
	assert.Contains(t, logs.String(), "secret-host")
}

func TestHTTPErrorHandler_MissingFieldNamesField(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(zerolog.Nop())
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

	e.HTTPErrorHandler(fmt.Errorf("%w: password", domain.ErrMissingField), c)

	assert.Contains(t, rec.Body.String(), "password")
}
