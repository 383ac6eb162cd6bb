package store

import (
	"context"
	"time"

	"civiceye/internal/complaint/models"
)

//go:generate mockgen -source=store.go -destination=mocks/mocks.go -package=mocks Store

// Locator identifies one complaint either by internal ID or by ticket ID.
// Exactly one field should be set.
type Locator struct {
	InternalID string
	TicketID   string
}

// Store abstracts complaint persistence.
//
// Implementations must enforce a unique constraint on the ticket ID (Insert
// returns sentinel.ErrConflict on violation) and must apply AppendTransition
// as a single atomic mutation: the status field update and the history/remark
// appends either all commit or none do. Application-level read-modify-write
// would lose history entries under concurrent transitions.
type Store interface {
	Insert(ctx context.Context, c models.Complaint) error
	FindByID(ctx context.Context, id string) (models.Complaint, error)
	FindByTicketID(ctx context.Context, ticketID string) (models.Complaint, error)
	TicketIDExists(ctx context.Context, ticketID string) (bool, error)

	// ListBySubmitter returns the submitter's complaints, newest first.
	ListBySubmitter(ctx context.Context, submitterID string) ([]models.Complaint, error)

	// List returns one page of complaints matching the filter, newest first,
	// plus the total match count.
	List(ctx context.Context, filter models.ListFilter) ([]models.Complaint, int, error)

	// AppendTransition atomically sets the status, appends the history entry,
	// and (when remark is non-nil) appends the remark. Returns the updated
	// complaint or sentinel.ErrNotFound.
	AppendTransition(ctx context.Context, loc Locator, change models.StatusChange, remark *models.Remark) (models.Complaint, error)

	// CountByStatus counts complaints of the given type (empty = all types)
	// in the given status (empty = any status).
	CountByStatus(ctx context.Context, typ models.Type, status models.Status) (int, error)

	// DailyTrend buckets submissions of the given type by calendar day since
	// the cutoff. Days with no complaints are absent.
	DailyTrend(ctx context.Context, typ models.Type, since time.Time) ([]models.DailyTrendItem, error)
}
