package ports

import (
	"context"

	"github.com/adonwheels/identity-api/internal/core/domain"
)

// AccountRepository persists credential records, one collection per kind.
// Implementations return domain.ErrUserNotFound for missing records and
// domain.ErrDuplicateEmail when the per-kind email uniqueness constraint rejects a write.
type AccountRepository interface {
	EmailExists(ctx context.Context, kind domain.Kind, email string) (bool, error)
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByEmail(ctx context.Context, kind domain.Kind, email string) (*domain.Account, error)
	FindByID(ctx context.Context, kind domain.Kind, id string) (*domain.Account, error)
	List(ctx context.Context, kind domain.Kind) ([]*domain.Account, error)
}

// EmailReserver holds a short-lived claim on an email address while a
// registration is in flight.
type EmailReserver interface {
	Reserve(ctx context.Context, email string) (bool, error)
	Release(ctx context.Context, email string) error
}

// PasswordHasher hashes and verifies passwords. Compare returns
// domain.ErrInvalidCredentials on mismatch.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Compare(ctx context.Context, hash, password string) error
}
