package account

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	dErrors "civiceye/pkg/domain-errors"
)

var testLogger = slog.New(slog.DiscardHandler)

func assertCode(t *testing.T, err error, code dErrors.Code) *dErrors.Error {
	t.Helper()
	var domainErr *dErrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
	return domainErr
}

func TestRegister(t *testing.T) {
	t.Run("creates a citizen account", func(t *testing.T) {
		now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		svc := NewService(NewInMemoryStore(), testLogger, WithClock(func() time.Time { return now }))

		acct, err := svc.Register(context.Background(), "Asha Verma", "asha@example.com", "s3cret-pass")
		require.NoError(t, err)

		assert.NotEmpty(t, acct.ID)
		assert.Equal(t, "Asha Verma", acct.Name)
		assert.Equal(t, "asha@example.com", acct.Email)
		assert.Equal(t, RoleCitizen, acct.Role, "self-registration never grants authority roles")
		assert.Equal(t, now, acct.CreatedAt)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte("s3cret-pass")))
	})

	t.Run("normalizes email casing and whitespace", func(t *testing.T) {
		svc := NewService(NewInMemoryStore(), testLogger)

		acct, err := svc.Register(context.Background(), "  Asha  ", "  Asha@Example.COM ", "s3cret-pass")
		require.NoError(t, err)
		assert.Equal(t, "asha@example.com", acct.Email)
		assert.Equal(t, "Asha", acct.Name)
	})

	t.Run("names every missing field", func(t *testing.T) {
		svc := NewService(NewInMemoryStore(), testLogger)

		_, err := svc.Register(context.Background(), "", "", "")
		domainErr := assertCode(t, err, dErrors.CodeValidation)
		assert.Equal(t, "Missing required fields: name, email, password", domainErr.Message)
	})

	t.Run("rejects short passwords", func(t *testing.T) {
		svc := NewService(NewInMemoryStore(), testLogger)

		_, err := svc.Register(context.Background(), "Asha", "asha@example.com", "short")
		domainErr := assertCode(t, err, dErrors.CodeValidation)
		assert.Equal(t, "Password must be at least 8 characters", domainErr.Message)
	})

	t.Run("duplicate email is a conflict regardless of casing", func(t *testing.T) {
		svc := NewService(NewInMemoryStore(), testLogger)

		_, err := svc.Register(context.Background(), "Asha", "asha@example.com", "s3cret-pass")
		require.NoError(t, err)

		_, err = svc.Register(context.Background(), "Imposter", "ASHA@example.com", "other-pass")
		domainErr := assertCode(t, err, dErrors.CodeConflict)
		assert.Equal(t, "Email already registered.", domainErr.Message)
	})

	t.Run("store failure is unavailable", func(t *testing.T) {
		svc := NewService(failingStore{}, testLogger)

		_, err := svc.Register(context.Background(), "Asha", "asha@example.com", "s3cret-pass")
		assertCode(t, err, dErrors.CodeUnavailable)
	})
}

func TestAuthenticate(t *testing.T) {
	register := func(t *testing.T) (*Service, Account) {
		t.Helper()
		svc := NewService(NewInMemoryStore(), testLogger)
		acct, err := svc.Register(context.Background(), "Asha", "asha@example.com", "s3cret-pass")
		require.NoError(t, err)
		return svc, acct
	}

	t.Run("valid credentials return the account", func(t *testing.T) {
		svc, acct := register(t)

		got, err := svc.Authenticate(context.Background(), "asha@example.com", "s3cret-pass")
		require.NoError(t, err)
		assert.Equal(t, acct.ID, got.ID)
	})

	t.Run("email lookup is case-insensitive", func(t *testing.T) {
		svc, _ := register(t)

		_, err := svc.Authenticate(context.Background(), " ASHA@Example.com ", "s3cret-pass")
		assert.NoError(t, err)
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		svc, _ := register(t)

		_, unknownErr := svc.Authenticate(context.Background(), "nobody@example.com", "s3cret-pass")
		_, wrongErr := svc.Authenticate(context.Background(), "asha@example.com", "wrong-pass")

		unknown := assertCode(t, unknownErr, dErrors.CodeUnauthorized)
		wrong := assertCode(t, wrongErr, dErrors.CodeUnauthorized)
		assert.Equal(t, "Invalid credentials.", unknown.Message)
		assert.Equal(t, unknown.Message, wrong.Message)
	})
}

func TestLookup(t *testing.T) {
	t.Run("resolves an id", func(t *testing.T) {
		svc := NewService(NewInMemoryStore(), testLogger)
		acct, err := svc.Register(context.Background(), "Asha", "asha@example.com", "s3cret-pass")
		require.NoError(t, err)

		got, err := svc.Lookup(context.Background(), acct.ID)
		require.NoError(t, err)
		assert.Equal(t, acct.Email, got.Email)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		svc := NewService(NewInMemoryStore(), testLogger)

		_, err := svc.Lookup(context.Background(), "missing")
		domainErr := assertCode(t, err, dErrors.CodeNotFound)
		assert.Equal(t, "Account not found.", domainErr.Message)
	})
}

func TestProfileRedaction(t *testing.T) {
	acct := Account{
		ID:           "id-1",
		Name:         "Asha",
		Email:        "asha@example.com",
		PasswordHash: "$2a$12$hash",
		Role:         RoleCitizen,
		IsVerified:   true,
		Phone:        "9999999999",
	}

	profile := acct.Profile()
	assert.Equal(t, acct.ID, profile.ID)
	assert.Equal(t, acct.Role, profile.Role)
	assert.True(t, profile.IsVerified)
}

type failingStore struct{}

func (failingStore) Save(context.Context, Account) error { return errors.New("db down") }

func (failingStore) FindByEmail(context.Context, string) (Account, error) {
	return Account{}, errors.New("db down")
}

func (failingStore) FindByID(context.Context, string) (Account, error) {
	return Account{}, errors.New("db down")
}
