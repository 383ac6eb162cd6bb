// Package seeder loads demo reference data: the sample PNR ledger and the
// demo authority account. Intended for local development and the in-memory
// store; production ledgers arrive through operational imports.
package seeder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"civiceye/internal/account"
	"civiceye/internal/pnr"
	"civiceye/pkg/platform/sentinel"
)

const (
	demoAdminEmail    = "demo@civiceye.com"
	demoAdminName     = "Demo Admin"
	demoAdminPassword = "demo1234"
)

// Seeder inserts demo data into the given stores.
type Seeder struct {
	accounts account.Store
	ledger   pnr.Store
	logger   *slog.Logger
}

func New(accounts account.Store, ledger pnr.Store, logger *slog.Logger) *Seeder {
	return &Seeder{accounts: accounts, ledger: ledger, logger: logger}
}

// Run seeds the PNR ledger and the demo railway admin. Safe to re-run:
// existing rows are left alone.
func (s *Seeder) Run(ctx context.Context) error {
	if err := s.seedLedger(ctx); err != nil {
		return err
	}
	if err := s.seedDemoAdmin(ctx); err != nil {
		return err
	}
	s.logger.Info("demo data seeded")
	return nil
}

func (s *Seeder) seedLedger(ctx context.Context) error {
	for _, entry := range sampleLedger() {
		if _, err := s.ledger.FindByPNR(ctx, entry.PNR); err == nil {
			continue
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return fmt.Errorf("check ledger entry: %w", err)
		}
		if err := s.ledger.Save(ctx, entry); err != nil {
			return fmt.Errorf("seed ledger entry: %w", err)
		}
	}
	return nil
}

func (s *Seeder) seedDemoAdmin(ctx context.Context) error {
	if _, err := s.accounts.FindByEmail(ctx, demoAdminEmail); err == nil {
		return nil
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return fmt.Errorf("check demo admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoAdminPassword), 12)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}
	acct := account.Account{
		ID:           uuid.NewString(),
		Name:         demoAdminName,
		Email:        demoAdminEmail,
		PasswordHash: string(hash),
		Role:         account.RoleRailwayAdmin,
		IsVerified:   true,
		CreatedAt:    time.Now(),
	}
	if err := s.accounts.Save(ctx, acct); err != nil {
		return fmt.Errorf("seed demo admin: %w", err)
	}
	return nil
}

func mustDate(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

// sampleLedger mirrors the journeys the tracker demo walks through, including
// one invalid entry for exercising the found-but-invalid path.
func sampleLedger() []pnr.LedgerEntry {
	return []pnr.LedgerEntry{
		{PNR: "1234567890", Source: "Delhi", Destination: "Mumbai", TravelDate: mustDate("2026-02-21"), Valid: true},
		{PNR: "9876543210", Source: "Chennai", Destination: "Bangalore", TravelDate: mustDate("2026-02-20"), Valid: true},
		{PNR: "1111111111", Source: "Kolkata", Destination: "Patna", TravelDate: mustDate("2026-02-19"), Valid: true},
		{PNR: "2222222222", Source: "Lucknow", Destination: "Varanasi", TravelDate: mustDate("2026-02-18"), Valid: true},
		{PNR: "3333333333", Source: "Jaipur", Destination: "Ahmedabad", TravelDate: mustDate("2026-02-17"), Valid: false},
		{PNR: "4444444444", Source: "Hyderabad", Destination: "Pune", TravelDate: mustDate("2026-02-22"), Valid: true},
		{PNR: "5555555555", Source: "Mumbai", Destination: "Goa", TravelDate: mustDate("2026-02-23"), Valid: true},
	}
}
