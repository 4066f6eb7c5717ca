package ports

import (
	"context"

	"github.com/adonwheels/identity-api/internal/core/domain"
)

// RegisterInput carries the registration payload. Fields that do not apply
// to Kind are ignored.
type RegisterInput struct {
	Name          string
	Email         string
	Password      string
	Kind          string
	ContactNumber string

	CompanyName    string
	VehicleDetails *domain.VehicleDetails
	Address        string
}

type LoginInput struct {
	Email    string
	Password string
	Kind     string
}

// AuthResult is returned by a successful Register or Login.
type AuthResult struct {
	Token string
	Kind  domain.Kind
}

// Authorizer verifies session tokens. An empty required kind accepts any kind.
type Authorizer interface {
	Authorize(ctx context.Context, token string, required domain.Kind) (*domain.Identity, error)
}

// IdentityService is the Identity & Access use-case boundary.
type IdentityService interface {
	Authorizer
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	Resolve(ctx context.Context, identity domain.Identity) (*domain.Account, error)
	ListAccounts(ctx context.Context, kind domain.Kind) ([]*domain.Account, error)
}
