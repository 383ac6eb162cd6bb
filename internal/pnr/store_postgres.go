package pnr

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"civiceye/pkg/platform/sentinel"
)

// PostgresStore reads the PNR ledger from PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed ledger store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, entry LedgerEntry) error {
	query := `
		INSERT INTO pnr_ledger (pnr, source, destination, travel_date, valid)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (pnr) DO UPDATE SET
			source = EXCLUDED.source,
			destination = EXCLUDED.destination,
			travel_date = EXCLUDED.travel_date,
			valid = EXCLUDED.valid
	`
	_, err := s.db.ExecContext(ctx, query,
		entry.PNR, entry.Source, entry.Destination, entry.TravelDate, entry.Valid)
	if err != nil {
		return fmt.Errorf("save ledger entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByPNR(ctx context.Context, pnr string) (LedgerEntry, error) {
	query := `
		SELECT pnr, source, destination, travel_date, valid
		FROM pnr_ledger
		WHERE pnr = $1
	`
	var entry LedgerEntry
	err := s.db.QueryRowContext(ctx, query, pnr).Scan(
		&entry.PNR, &entry.Source, &entry.Destination, &entry.TravelDate, &entry.Valid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return LedgerEntry{}, sentinel.ErrNotFound
		}
		return LedgerEntry{}, fmt.Errorf("find ledger entry: %w", err)
	}
	return entry, nil
}
