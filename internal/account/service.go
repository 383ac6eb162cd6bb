package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	dErrors "civiceye/pkg/domain-errors"
	"civiceye/pkg/platform/sentinel"
)

// bcryptCost matches the cost the legacy deployment used for its hashes.
const bcryptCost = 12

// Service owns account registration, authentication, and principal lookup.
type Service struct {
	store  Store
	logger *slog.Logger
	clock  func() time.Time
}

// Option configures a Service instance.
type Option func(*Service)

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewService(store Store, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: logger,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a citizen account. Self-registration never grants authority
// roles; admin accounts are seeded.
func (s *Service) Register(ctx context.Context, name, email, password string) (Account, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))

	var missing []string
	if name == "" {
		missing = append(missing, "name")
	}
	if email == "" {
		missing = append(missing, "email")
	}
	if password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return Account{}, dErrors.New(dErrors.CodeValidation,
			"Missing required fields: "+strings.Join(missing, ", "))
	}
	if len(password) < 8 {
		return Account{}, dErrors.New(dErrors.CodeValidation, "Password must be at least 8 characters")
	}

	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return Account{}, dErrors.New(dErrors.CodeConflict, "Email already registered.")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return Account{}, translateStoreErr(err, "check existing email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return Account{}, dErrors.Wrap(err, dErrors.CodeInternal, "hash password")
	}

	acct := Account{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         RoleCitizen,
		CreatedAt:    s.clock(),
	}
	if err := s.store.Save(ctx, acct); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return Account{}, dErrors.New(dErrors.CodeConflict, "Email already registered.")
		}
		return Account{}, translateStoreErr(err, "save account")
	}

	s.logger.InfoContext(ctx, "account registered", "account_id", acct.ID)
	return acct, nil
}

// Authenticate verifies email+password and returns the matching account.
// Unknown email and wrong password produce the same error so the endpoint does
// not leak which part failed.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Account, error) {
	invalid := dErrors.New(dErrors.CodeUnauthorized, "Invalid credentials.")

	acct, err := s.store.FindByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Account{}, invalid
		}
		return Account{}, translateStoreErr(err, "find account")
	}

	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)) != nil {
		return Account{}, invalid
	}
	return acct, nil
}

// Lookup resolves a principal ID to its account.
func (s *Service) Lookup(ctx context.Context, id string) (Account, error) {
	acct, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Account{}, dErrors.New(dErrors.CodeNotFound, "Account not found.")
		}
		return Account{}, translateStoreErr(err, "find account")
	}
	return acct, nil
}

func translateStoreErr(err error, op string) error {
	return dErrors.Wrap(fmt.Errorf("%s: %w", op, err), dErrors.CodeUnavailable, "account store unavailable")
}
