// Package ticketid generates the human-readable complaint identifiers
// (CIV-YYYY-NNNN). Generation is expressed as a pure function over an injected
// existence check and clock so it is testable without a real store.
package ticketid

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// maxAttempts bounds the random phase before falling back to a
// timestamp-derived suffix.
const maxAttempts = 20

// ExistsFunc reports whether a candidate ticket ID is already taken.
type ExistsFunc func(ctx context.Context, ticketID string) (bool, error)

// Clock returns the current time. Injected for testability.
type Clock func() time.Time

// Generate produces a ticket ID that is unique against the store at the moment
// of the check. It tries random 4-digit suffixes, then falls back to a base-36
// encoding of the current millisecond clock, which cannot collide with a
// concurrent random candidate of the same instant and never needs a store
// round trip. The returned bool reports whether the fallback path was taken.
//
// The existence check is advisory: the check-then-insert sequence is racy by
// nature and the store's unique index on ticket_id is the real backstop.
// Callers must treat an insert-time collision as retryable, not fatal.
func Generate(ctx context.Context, exists ExistsFunc, now Clock) (string, bool, error) {
	year := now().Year()

	for attempt := 0; attempt < maxAttempts; attempt++ {
		candidate := fmt.Sprintf("CIV-%d-%04d", year, 1000+rand.Intn(9000))
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", false, fmt.Errorf("ticket id existence check: %w", err)
		}
		if !taken {
			return candidate, false, nil
		}
	}

	// All random attempts collided. Derive a suffix from the clock instead;
	// this path must never itself fail.
	ts := strconv.FormatInt(now().UnixMilli(), 36)
	if len(ts) > 4 {
		ts = ts[len(ts)-4:]
	}
	return fmt.Sprintf("CIV-%d-%s", year, strings.ToUpper(ts)), true, nil
}

const aliasAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewAnonymousAlias returns a display alias like "Citizen-X4K2P9". The suffix
// is short, non-cryptographic randomness: fine for a display label, unfit for
// anything that must be unguessable.
func NewAnonymousAlias() string {
	var b strings.Builder
	b.WriteString("Citizen-")
	for i := 0; i < 6; i++ {
		b.WriteByte(aliasAlphabet[rand.Intn(len(aliasAlphabet))])
	}
	return b.String()
}
