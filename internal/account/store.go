package account

import "context"

// Store abstracts account persistence so the service can run against the
// in-memory implementation in tests and PostgreSQL in production.
type Store interface {
	Save(ctx context.Context, acct Account) error
	FindByID(ctx context.Context, id string) (Account, error)
	FindByEmail(ctx context.Context, email string) (Account, error)
}
