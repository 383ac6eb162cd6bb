package seeder

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"civiceye/internal/account"
	"civiceye/internal/pnr"
)

func TestRun(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	accounts := account.NewInMemoryStore()
	ledger := pnr.NewInMemoryStore()
	seeder := New(accounts, ledger, logger)

	require.NoError(t, seeder.Run(context.Background()))

	t.Run("seeds the sample ledger", func(t *testing.T) {
		entry, err := ledger.FindByPNR(context.Background(), "1234567890")
		require.NoError(t, err)
		assert.Equal(t, "Delhi", entry.Source)
		assert.Equal(t, "Mumbai", entry.Destination)
		assert.True(t, entry.Valid)

		invalid, err := ledger.FindByPNR(context.Background(), "3333333333")
		require.NoError(t, err)
		assert.False(t, invalid.Valid)
	})

	t.Run("seeds a verified railway admin", func(t *testing.T) {
		admin, err := accounts.FindByEmail(context.Background(), "demo@civiceye.com")
		require.NoError(t, err)
		assert.Equal(t, account.RoleRailwayAdmin, admin.Role)
		assert.True(t, admin.IsVerified)
		assert.NoError(t, bcrypt.CompareHashAndPassword(
			[]byte(admin.PasswordHash), []byte("demo1234")))
	})

	t.Run("re-running leaves existing rows alone", func(t *testing.T) {
		admin, err := accounts.FindByEmail(context.Background(), "demo@civiceye.com")
		require.NoError(t, err)

		require.NoError(t, seeder.Run(context.Background()))

		again, err := accounts.FindByEmail(context.Background(), "demo@civiceye.com")
		require.NoError(t, err)
		assert.Equal(t, admin.ID, again.ID, "seeding must not mint a second admin")
	})
}
