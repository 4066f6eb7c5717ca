package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/adonwheels/identity-api/internal/core/domain"
	"github.com/adonwheels/identity-api/internal/core/ports"
	"github.com/adonwheels/identity-api/internal/pkg/metrics"
)

// dummyPassword is hashed once and compared against when a login names an
// unknown email, so both outcomes cost one bcrypt comparison.
const dummyPassword = "adonwheels-timing-equaliser"

// IdentityService implements registration, login and token authorization
// across the four account kinds.
type IdentityService struct {
	repo     ports.AccountRepository
	reserver ports.EmailReserver
	hasher   ports.PasswordHasher
	tokens   *TokenManager
	log      zerolog.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewIdentityService(
	repo ports.AccountRepository,
	reserver ports.EmailReserver,
	hasher ports.PasswordHasher,
	tokens *TokenManager,
	log zerolog.Logger,
) *IdentityService {
	return &IdentityService{
		repo:     repo,
		reserver: reserver,
		hasher:   hasher,
		tokens:   tokens,
		log:      log,
	}
}

// Register validates the input, rejects emails already present in any
// collection, stores one record in the collection of the requested kind and
// issues a session token for it.
func (s *IdentityService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	account, err := newAccount(in)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(kindLabel(in.Kind), "invalid").Inc()
		return nil, err
	}
	kind := account.Kind

	release, err := s.reserve(ctx, account.Email)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(kind.String(), "duplicate_email").Inc()
		return nil, err
	}
	defer release()

	taken, err := s.emailTaken(ctx, account.Email)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(kind.String(), "error").Inc()
		return nil, fmt.Errorf("register: email lookup: %w", err)
	}
	if taken {
		metrics.RegistrationsTotal.WithLabelValues(kind.String(), "duplicate_email").Inc()
		return nil, domain.ErrDuplicateEmail
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(kind.String(), "error").Inc()
		return nil, fmt.Errorf("register: hash password: %w", err)
	}
	account.PasswordHash = hash
	account.CreatedAt = time.Now().UTC()

	created, err := s.repo.Create(ctx, account)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			// Lost the race against a concurrent registration of the same email.
			metrics.RegistrationsTotal.WithLabelValues(kind.String(), "duplicate_email").Inc()
			return nil, domain.ErrDuplicateEmail
		}
		metrics.RegistrationsTotal.WithLabelValues(kind.String(), "error").Inc()
		return nil, fmt.Errorf("register: %w", err)
	}

	token, err := s.tokens.Issue(created.ID, kind)
	if err != nil {
		s.log.Error().Err(err).Str("account_id", created.ID).Str("kind", kind.String()).Msg("account created but token issuance failed")
		metrics.RegistrationsTotal.WithLabelValues(kind.String(), "error").Inc()
		return nil, fmt.Errorf("register: %w", err)
	}

	metrics.RegistrationsTotal.WithLabelValues(kind.String(), "success").Inc()
	s.log.Info().Str("account_id", created.ID).Str("kind", kind.String()).Msg("account registered")

	return &ports.AuthResult{Token: token, Kind: kind}, nil
}

// Login authenticates against the collection of the declared kind only. An
// email registered under a different kind is reported as not found.
func (s *IdentityService) Login(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error) {
	email := normalizeEmail(in.Email)
	kindName := strings.TrimSpace(in.Kind)
	if email == "" || strings.TrimSpace(in.Password) == "" || kindName == "" {
		metrics.LoginsTotal.WithLabelValues(kindLabel(kindName), "invalid").Inc()
		return nil, fmt.Errorf("%w: email, password and type are required", domain.ErrMissingField)
	}
	if len(in.Password) > domain.MaxPasswordBytes {
		metrics.LoginsTotal.WithLabelValues(kindLabel(kindName), "invalid").Inc()
		return nil, domain.ErrPasswordTooLong
	}

	kind, err := domain.ParseKind(kindName)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("unknown", "invalid").Inc()
		return nil, err
	}

	account, err := s.repo.FindByEmail(ctx, kind, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		// Same bcrypt cost as a real mismatch.
		_ = s.hasher.Compare(ctx, s.dummy(ctx), in.Password)
		metrics.LoginsTotal.WithLabelValues(kind.String(), "user_not_found").Inc()
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(kind.String(), "error").Inc()
		return nil, fmt.Errorf("login: %w", err)
	}

	if err := s.hasher.Compare(ctx, account.PasswordHash, in.Password); err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues(kind.String(), "invalid_credentials").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		metrics.LoginsTotal.WithLabelValues(kind.String(), "error").Inc()
		return nil, fmt.Errorf("login: compare password: %w", err)
	}

	token, err := s.tokens.Issue(account.ID, kind)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(kind.String(), "error").Inc()
		return nil, fmt.Errorf("login: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues(kind.String(), "success").Inc()
	s.log.Debug().Str("account_id", account.ID).Str("kind", kind.String()).Msg("login succeeded")

	return &ports.AuthResult{Token: token, Kind: kind}, nil
}

// Authorize verifies the token and, when required is set, that the token
// was issued to an account of that kind.
func (s *IdentityService) Authorize(_ context.Context, token string, required domain.Kind) (*domain.Identity, error) {
	identity, err := s.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, domain.ErrTokenExpired) {
			metrics.AuthorizationsTotal.WithLabelValues("expired").Inc()
		} else {
			metrics.AuthorizationsTotal.WithLabelValues("invalid").Inc()
		}
		return nil, err
	}

	if required != "" && identity.Kind != required {
		metrics.AuthorizationsTotal.WithLabelValues("forbidden").Inc()
		return nil, domain.ErrForbidden
	}

	metrics.AuthorizationsTotal.WithLabelValues("allowed").Inc()
	return identity, nil
}

// Resolve loads the account an identity refers to. A subject that does not
// exist in the collection of the token's kind invalidates the token.
func (s *IdentityService) Resolve(ctx context.Context, identity domain.Identity) (*domain.Account, error) {
	if !identity.Kind.Valid() {
		return nil, domain.ErrTokenInvalid
	}

	account, err := s.repo.FindByID(ctx, identity.Kind, identity.SubjectID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: subject not found for kind %s", domain.ErrTokenInvalid, identity.Kind)
		}
		return nil, fmt.Errorf("resolve identity: %w", err)
	}
	if account.Kind != identity.Kind {
		return nil, domain.ErrTokenInvalid
	}
	return account, nil
}

// ListAccounts returns every account of the given kind.
func (s *IdentityService) ListAccounts(ctx context.Context, kind domain.Kind) ([]*domain.Account, error) {
	if !kind.Valid() {
		return nil, domain.ErrInvalidKind
	}
	accounts, err := s.repo.List(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("list %s accounts: %w", kind, err)
	}
	return accounts, nil
}

// reserve claims email for the duration of a registration. A reservation
// store outage is tolerated; the unique indexes remain the final guard.
func (s *IdentityService) reserve(ctx context.Context, email string) (func(), error) {
	noop := func() {}
	if s.reserver == nil {
		return noop, nil
	}

	ok, err := s.reserver.Reserve(ctx, email)
	if err != nil {
		s.log.Warn().Err(err).Msg("email reservation unavailable, relying on unique indexes")
		return noop, nil
	}
	if !ok {
		return nil, domain.ErrDuplicateEmail
	}

	return func() {
		if err := s.reserver.Release(context.WithoutCancel(ctx), email); err != nil {
			s.log.Warn().Err(err).Msg("failed to release email reservation")
		}
	}, nil
}

// emailTaken looks the email up in all four collections concurrently.
func (s *IdentityService) emailTaken(ctx context.Context, email string) (bool, error) {
	found := make([]bool, len(domain.Kinds))

	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range domain.Kinds {
		g.Go(func() error {
			exists, err := s.repo.EmailExists(gctx, kind, email)
			if err != nil {
				return fmt.Errorf("%s: %w", kind, err)
			}
			found[i] = exists
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}
	return slices.Contains(found, true), nil
}

// PrepareDummyHash computes the hash that unknown-email logins are compared
// against. Call it once at startup; later calls are no-ops.
func (s *IdentityService) PrepareDummyHash(ctx context.Context) error {
	var err error
	s.dummyOnce.Do(func() {
		s.dummyHash, err = s.hasher.Hash(ctx, dummyPassword)
	})
	if err != nil {
		return fmt.Errorf("prepare dummy password hash: %w", err)
	}
	return nil
}

func (s *IdentityService) dummy(ctx context.Context) string {
	if err := s.PrepareDummyHash(ctx); err != nil {
		s.log.Error().Err(err).Msg("dummy password hash unavailable")
	}
	return s.dummyHash
}

// newAccount validates a registration request and builds the account with
// the profile variant of its kind. The password hash is filled in later.
func newAccount(in ports.RegisterInput) (*domain.Account, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	kindName := strings.TrimSpace(in.Kind)

	var missing []string
	if name == "" {
		missing = append(missing, "name")
	}
	if email == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(in.Password) == "" {
		missing = append(missing, "password")
	}
	if kindName == "" {
		missing = append(missing, "type")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingField, strings.Join(missing, ", "))
	}

	if len(in.Password) > domain.MaxPasswordBytes {
		return nil, domain.ErrPasswordTooLong
	}

	kind, err := domain.ParseKind(kindName)
	if err != nil {
		return nil, err
	}

	var profile domain.Profile
	switch kind {
	case domain.KindAdmin:
		profile = domain.AdminProfile{}
	case domain.KindAdvertiser:
		profile = domain.AdvertiserProfile{CompanyName: strings.TrimSpace(in.CompanyName)}
	case domain.KindPublisher:
		if in.VehicleDetails == nil || strings.TrimSpace(in.VehicleDetails.RegistrationNumber) == "" {
			return nil, fmt.Errorf("%w: vehicleDetails.registrationNumber", domain.ErrMissingField)
		}
		vd := *in.VehicleDetails
		vd.RegistrationNumber = strings.TrimSpace(vd.RegistrationNumber)
		profile = domain.PublisherProfile{VehicleDetails: vd}
	case domain.KindBodyShop:
		profile = domain.BodyShopProfile{Address: strings.TrimSpace(in.Address)}
	}

	return &domain.Account{
		Kind:          kind,
		Name:          name,
		Email:         email,
		ContactNumber: strings.TrimSpace(in.ContactNumber),
		Profile:       profile,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func kindLabel(s string) string {
	if k := domain.Kind(strings.TrimSpace(s)); k.Valid() {
		return k.String()
	}
	return "unknown"
}
