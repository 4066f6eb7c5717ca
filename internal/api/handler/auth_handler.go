package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/adonwheels/identity-api/internal/core/domain"
	"github.com/adonwheels/identity-api/internal/core/ports"
)

type AuthHandler struct {
	identity ports.IdentityService
}

func NewAuthHandler(identity ports.IdentityService) *AuthHandler {
	return &AuthHandler{identity: identity}
}

type vehicleDetailsRequest struct {
	VehicleType        string `json:"vehicleType" validate:"max=64"`
	Model              string `json:"model" validate:"max=64"`
	RegistrationNumber string `json:"registrationNumber" validate:"max=32"`
}

type registerRequest struct {
	Name          string `json:"name" validate:"max=128"`
	Email         string `json:"email" validate:"max=254"`
	Password      string `json:"password" validate:"maxbytes=72"`
	Type          string `json:"type"`
	ContactNumber string `json:"contactNumber" validate:"max=32"`

	CompanyName    string                 `json:"companyName" validate:"max=128"`
	VehicleDetails *vehicleDetailsRequest `json:"vehicleDetails"`
	Address        string                 `json:"address" validate:"max=256"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"max=254"`
	Password string `json:"password" validate:"maxbytes=72"`
	Type     string `json:"type"`
}

type authResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Token   string      `json:"token"`
	Type    domain.Kind `json:"type"`
}

// Register creates an account of the requested type and returns a session token.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details; kind-specific fields are ignored for other types"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]any
// @Failure      500   {object}  map[string]any
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	in := ports.RegisterInput{
		Name:          req.Name,
		Email:         req.Email,
		Password:      req.Password,
		Kind:          req.Type,
		ContactNumber: req.ContactNumber,
		CompanyName:   req.CompanyName,
		Address:       req.Address,
	}
	if req.VehicleDetails != nil {
		in.VehicleDetails = &domain.VehicleDetails{
			VehicleType:        req.VehicleDetails.VehicleType,
			Model:              req.VehicleDetails.Model,
			RegistrationNumber: req.VehicleDetails.RegistrationNumber,
		}
	}

	res, err := h.identity.Register(c.Request().Context(), in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, authResponse{
		Success: true,
		Message: "User registered successfully",
		Token:   res.Token,
		Type:    res.Kind,
	})
}

// Login authenticates against the accounts of the declared type.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials and account type"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]any
// @Failure      404   {object}  map[string]any
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.identity.Login(c.Request().Context(), ports.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Kind:     req.Type,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{
		Success: true,
		Message: "Login successful",
		Token:   res.Token,
		Type:    res.Kind,
	})
}
