package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"civiceye/pkg/platform/sentinel"
)

// PostgresStore persists accounts in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed account store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, acct Account) error {
	query := `
		INSERT INTO accounts (id, name, email, password_hash, role, is_verified, phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			password_hash = EXCLUDED.password_hash,
			role = EXCLUDED.role,
			is_verified = EXCLUDED.is_verified,
			phone = EXCLUDED.phone
	`
	_, err := s.db.ExecContext(ctx, query,
		acct.ID,
		acct.Name,
		strings.ToLower(acct.Email),
		acct.PasswordHash,
		string(acct.Role),
		acct.IsVerified,
		acct.Phone,
		acct.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("save account: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (Account, error) {
	return s.findOne(ctx, `WHERE id = $1`, id)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (Account, error) {
	return s.findOne(ctx, `WHERE email = $1`, strings.ToLower(email))
}

func (s *PostgresStore) findOne(ctx context.Context, where string, arg any) (Account, error) {
	query := `
		SELECT id, name, email, password_hash, role, is_verified, phone, created_at
		FROM accounts ` + where

	var acct Account
	var role string
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&acct.ID,
		&acct.Name,
		&acct.Email,
		&acct.PasswordHash,
		&role,
		&acct.IsVerified,
		&acct.Phone,
		&acct.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Account{}, sentinel.ErrNotFound
		}
		return Account{}, fmt.Errorf("find account: %w", err)
	}
	acct.Role = Role(role)
	return acct, nil
}

// isUniqueViolation reports whether the error is a PostgreSQL unique-constraint
// rejection (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	type sqlState interface{ SQLState() string }
	var state sqlState
	if errors.As(err, &state) {
		return state.SQLState() == "23505"
	}
	return false
}
