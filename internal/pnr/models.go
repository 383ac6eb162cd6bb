package pnr

import "time"

// LedgerEntry is a pre-seeded journey record. The ledger is reference data and
// is read-only from the service's perspective.
type LedgerEntry struct {
	PNR         string
	Source      string
	Destination string
	TravelDate  time.Time
	Valid       bool
}

// Result is the outcome of a verification call. The PNR digits themselves are
// never part of the result: a ledger hit only yields the non-sensitive journey
// fields so the client can pre-fill the complaint form.
type Result struct {
	Verified    bool       `json:"verified"`
	Message     string     `json:"message,omitempty"`
	Source      string     `json:"source,omitempty"`
	Destination string     `json:"destination,omitempty"`
	TravelDate  *time.Time `json:"travelDate,omitempty"`
}
