package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adonwheels/identity-api/internal/api/middleware"
	"github.com/adonwheels/identity-api/internal/core/domain"
)

func TestAccountHandler_Me(t *testing.T) {
	stub := &stubIdentityService{
		resolveFn: func(_ context.Context, id domain.Identity) (*domain.Account, error) {
			assert.Equal(t, domain.Identity{SubjectID: "abc", Kind: domain.KindBodyShop}, id)
			return &domain.Account{
				ID:           "abc",
				Kind:         domain.KindBodyShop,
				Name:         "Shop",
				Email:        "shop@example.com",
				PasswordHash: "$2a$10$secret",
				Profile:      domain.BodyShopProfile{Address: "1 Main St"},
			}, nil
		},
	}
	h := NewAccountHandler(stub)

	rec := httptest.NewRecorder()
	c := newTestEcho().NewContext(httptest.NewRequest(http.MethodGet, "/api/me", nil), rec)
	c.Set(middleware.IdentityKey, &domain.Identity{SubjectID: "abc", Kind: domain.KindBodyShop})

	require.NoError(t, h.Me(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")
	assert.Contains(t, rec.Body.String(), "1 Main St")

	var resp struct {
		Success bool `json:"success"`
		Account struct {
			ID   string `json:"id"`
			Type string `json:"type"`
		} `json:"account"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "abc", resp.Account.ID)
	assert.Equal(t, "BodyShop", resp.Account.Type)
}

func TestAccountHandler_Me_WithoutIdentity(t *testing.T) {
	h := NewAccountHandler(&stubIdentityService{})
	c := newTestEcho().NewContext(httptest.NewRequest(http.MethodGet, "/api/me", nil), httptest.NewRecorder())

	assert.ErrorIs(t, h.Me(c), domain.ErrTokenInvalid)
}

func TestAccountHandler_Me_ResolveFails(t *testing.T) {
	stub := &stubIdentityService{
		resolveFn: func(context.Context, domain.Identity) (*domain.Account, error) {
			return nil, domain.ErrTokenInvalid
		},
	}
	h := NewAccountHandler(stub)
	c := newTestEcho().NewContext(httptest.NewRequest(http.MethodGet, "/api/me", nil), httptest.NewRecorder())
	c.Set(middleware.IdentityKey, &domain.Identity{SubjectID: "gone", Kind: domain.KindAdmin})

	assert.ErrorIs(t, h.Me(c), domain.ErrTokenInvalid)
}

func TestAccountHandler_Listings(t *testing.T) {
	var requested []domain.Kind
	stub := &stubIdentityService{
		listFn: func(_ context.Context, kind domain.Kind) ([]*domain.Account, error) {
			requested = append(requested, kind)
			if kind == domain.KindBodyShop {
				return nil, nil
			}
			return []*domain.Account{{ID: "p1", Kind: kind, Name: "Pub"}}, nil
		},
	}
	h := NewAccountHandler(stub)
	e := newTestEcho()

	rec := httptest.NewRecorder()
	require.NoError(t, h.ListPublishers(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	var pubs publishersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pubs))
	assert.True(t, pubs.Success)
	require.Len(t, pubs.Publishers, 1)
	assert.Equal(t, "p1", pubs.Publishers[0].ID)

	rec = httptest.NewRecorder()
	require.NoError(t, h.ListBodyShops(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)))
	assert.JSONEq(t, `{"success":true,"bodyShops":[]}`, rec.Body.String())

	assert.Equal(t, []domain.Kind{domain.KindPublisher, domain.KindBodyShop}, requested)
}

func TestAccountHandler_ListError(t *testing.T) {
	boom := errors.New("boom")
	stub := &stubIdentityService{
		listFn: func(context.Context, domain.Kind) ([]*domain.Account, error) { return nil, boom },
	}
	h := NewAccountHandler(stub)
	c := newTestEcho().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	assert.ErrorIs(t, h.ListPublishers(c), boom)
}
