package pnr

import "context"

// Store abstracts the PNR ledger. Save exists only for seeding; the
// verification path never writes.
type Store interface {
	Save(ctx context.Context, entry LedgerEntry) error
	FindByPNR(ctx context.Context, pnr string) (LedgerEntry, error)
}
