package pnr

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "civiceye/pkg/domain-errors"
)

var testLogger = slog.New(slog.DiscardHandler)

func seededService(t *testing.T, entries ...LedgerEntry) *Service {
	t.Helper()
	store := NewInMemoryStore()
	for _, entry := range entries {
		require.NoError(t, store.Save(context.Background(), entry))
	}
	return NewService(store, testLogger)
}

func TestVerify(t *testing.T) {
	travel := time.Date(2026, 2, 21, 0, 0, 0, 0, time.UTC)

	t.Run("valid entry returns the journey details", func(t *testing.T) {
		svc := seededService(t, LedgerEntry{
			PNR:         "1234567890",
			Source:      "Delhi",
			Destination: "Mumbai",
			TravelDate:  travel,
			Valid:       true,
		})

		result, err := svc.Verify(context.Background(), "1234567890")
		require.NoError(t, err)

		assert.True(t, result.Verified)
		assert.Equal(t, "PNR verified successfully.", result.Message)
		assert.Equal(t, "Delhi", result.Source)
		assert.Equal(t, "Mumbai", result.Destination)
		require.NotNil(t, result.TravelDate)
		assert.Equal(t, travel, *result.TravelDate)
	})

	t.Run("invalidated entry is a successful call, not an error", func(t *testing.T) {
		svc := seededService(t, LedgerEntry{
			PNR:   "3333333333",
			Valid: false,
		})

		result, err := svc.Verify(context.Background(), "3333333333")
		require.NoError(t, err)

		assert.False(t, result.Verified)
		assert.Equal(t, "PNR found but marked as invalid/expired.", result.Message)
		assert.Empty(t, result.Source, "an invalid entry must not leak journey details")
		assert.Nil(t, result.TravelDate)
	})

	t.Run("ledger miss is not found", func(t *testing.T) {
		svc := seededService(t)

		_, err := svc.Verify(context.Background(), "0000000000")
		var domainErr *dErrors.Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, dErrors.CodeNotFound, domainErr.Code)
		assert.Equal(t, "PNR not found in the system. Please check and try again.", domainErr.Message)
	})

	t.Run("store failure surfaces as unavailable", func(t *testing.T) {
		svc := NewService(failingStore{}, testLogger)

		_, err := svc.Verify(context.Background(), "1234567890")
		var domainErr *dErrors.Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, dErrors.CodeUnavailable, domainErr.Code)
	})
}

func TestVerify_FormatGate(t *testing.T) {
	// The format check runs before any store access; a store that panics on
	// use proves the malformed candidates never reach the ledger.
	svc := NewService(panickingStore{}, testLogger)

	for _, candidate := range []string{
		"",
		"123",
		"12345678901",
		"123456789a",
		" 1234567890",
		"12345 7890",
		"१२३४५६७८९०",
	} {
		t.Run("rejects "+candidate, func(t *testing.T) {
			_, err := svc.Verify(context.Background(), candidate)
			var domainErr *dErrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, dErrors.CodeValidation, domainErr.Code)
			assert.Equal(t, "PNR must be exactly 10 digits.", domainErr.Message)
		})
	}
}

type failingStore struct{}

func (failingStore) Save(context.Context, LedgerEntry) error {
	return errors.New("ledger down")
}

func (failingStore) FindByPNR(context.Context, string) (LedgerEntry, error) {
	return LedgerEntry{}, errors.New("ledger down")
}

type panickingStore struct{}

func (panickingStore) Save(context.Context, LedgerEntry) error {
	panic("ledger touched")
}

func (panickingStore) FindByPNR(context.Context, string) (LedgerEntry, error) {
	panic("ledger touched")
}
