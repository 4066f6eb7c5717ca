package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/adonwheels/identity-api/internal/core/domain"
	"github.com/adonwheels/identity-api/internal/core/ports"
)

type AccountHandler struct {
	identity ports.IdentityService
}

func NewAccountHandler(identity ports.IdentityService) *AccountHandler {
	return &AccountHandler{identity: identity}
}

type meResponse struct {
	Success bool            `json:"success"`
	Account *domain.Account `json:"account"`
}

type publishersResponse struct {
	Success    bool              `json:"success"`
	Publishers []*domain.Account `json:"publishers"`
}

type bodyShopsResponse struct {
	Success   bool              `json:"success"`
	BodyShops []*domain.Account `json:"bodyShops"`
}

// Me returns the account of the authenticated caller.
//
// @Summary      Current account
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  meResponse
// @Failure      401  {object}  map[string]any
// @Router       /api/me [get]
func (h *AccountHandler) Me(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	account, err := h.identity.Resolve(c.Request().Context(), *id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, meResponse{Success: true, Account: account})
}

// ListPublishers returns every publisher account.
//
// @Summary      List publishers
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  publishersResponse
// @Failure      401  {object}  map[string]any
// @Failure      403  {object}  map[string]any
// @Router       /api/admin/publishers [get]
func (h *AccountHandler) ListPublishers(c echo.Context) error {
	accounts, err := h.identity.ListAccounts(c.Request().Context(), domain.KindPublisher)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, publishersResponse{Success: true, Publishers: nonNil(accounts)})
}

// ListBodyShops returns every body shop account.
//
// @Summary      List body shops
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  bodyShopsResponse
// @Failure      401  {object}  map[string]any
// @Failure      403  {object}  map[string]any
// @Router       /api/admin/bodyshops [get]
func (h *AccountHandler) ListBodyShops(c echo.Context) error {
	accounts, err := h.identity.ListAccounts(c.Request().Context(), domain.KindBodyShop)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bodyShopsResponse{Success: true, BodyShops: nonNil(accounts)})
}

// nonNil keeps empty listings serialized as [] rather than null.
func nonNil(accounts []*domain.Account) []*domain.Account {
	if accounts == nil {
		return []*domain.Account{}
	}
	return accounts
}
