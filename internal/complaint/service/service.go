// Package service implements the complaint lifecycle: submission with ticket
// allocation, role-scoped reads, and the append-only status transition flow.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"civiceye/internal/audit"
	"civiceye/internal/complaint/cache"
	"civiceye/internal/complaint/metrics"
	"civiceye/internal/complaint/models"
	"civiceye/internal/complaint/store"
	"civiceye/internal/complaint/ticketid"
	dErrors "civiceye/pkg/domain-errors"
	"civiceye/pkg/platform/sentinel"
)

// Service owns complaint business logic on top of the persistence layer.
type Service struct {
	store      store.Store
	cache      cache.TrackerCache
	audit      audit.Publisher
	metrics    *metrics.Metrics
	logger     *slog.Logger
	clock      func() time.Time
	newID      func() string
	trackerTTL time.Duration
}

// Option configures a Service instance.
type Option func(*Service)

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTrackerCache enables the public tracker cache with the given TTL.
func WithTrackerCache(c cache.TrackerCache, ttl time.Duration) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
			s.trackerTTL = ttl
		}
	}
}

// WithAuditPublisher wires the lifecycle event sink.
func WithAuditPublisher(p audit.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.audit = p
		}
	}
}

func NewService(st store.Store, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:  st,
		cache:  cache.NopTrackerCache{},
		audit:  audit.NopPublisher{},
		logger: logger,
		clock:  time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitMeta carries request-scoped context that is not part of the citizen's
// payload: the authenticated principal (empty for guests), the device label,
// and the correlation id for audit events.
type SubmitMeta struct {
	SubmitterID  string
	SubmittedVia string
	RequestID    string
}

// Submit validates and persists a new complaint, allocating its ticket ID.
//
// Anonymity is absolute once chosen: an anonymous complaint stores no
// submitter reference at all, only a display alias. A guest submission is
// anonymous regardless of what the payload says, since there is no principal
// to link.
//
// The ticket ID existence check races with concurrent submissions, so a
// unique-index conflict at insert time triggers one full regenerate-and-retry
// before giving up.
func (s *Service) Submit(ctx context.Context, req models.SubmitRequest, meta SubmitMeta) (models.Complaint, error) {
	start := s.clock()
	if err := req.Validate(); err != nil {
		return models.Complaint{}, err
	}

	anonymous := req.IsAnonymous || meta.SubmitterID == ""

	var c models.Complaint
	for attempt := 0; attempt < 2; attempt++ {
		tid, fellBack, err := ticketid.Generate(ctx, s.store.TicketIDExists, s.clock)
		if err != nil {
			return models.Complaint{}, translateStoreErr(err, "allocate ticket id")
		}
		if fellBack && s.metrics != nil {
			s.metrics.TicketIDFallbacks.Inc()
		}

		now := s.clock()
		c = models.Complaint{
			ID:                 s.newID(),
			TicketID:           tid,
			ReporterName:       req.ReporterName,
			SourceStation:      req.SourceStation,
			DestinationStation: req.DestinationStation,
			DateOfTravel:       req.ParsedDateOfTravel(),
			TimeOfIncident:     req.TimeOfIncident,
			Category:           req.Category,
			Degree:             req.Degree,
			PNRVerified:        req.PNRVerified,
			Evidence:           req.Evidence,
			Status:             models.StatusUnderReview,
			StatusHistory: []models.StatusChange{{
				Status:    models.StatusUnderReview,
				Remark:    "Complaint submitted",
				Timestamp: now,
			}},
			IsAnonymous:  anonymous,
			SubmittedVia: meta.SubmittedVia,
			Type:         models.TypeRailway,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		// The free-text category detail only means anything for "Other".
		if req.Category == models.CategoryOther {
			c.CategoryOther = req.CategoryOther
		}
		if anonymous {
			c.AnonymousAlias = ticketid.NewAnonymousAlias()
		} else {
			c.SubmittedBy = meta.SubmitterID
		}

		err = s.store.Insert(ctx, c)
		if err == nil {
			break
		}
		if errors.Is(err, sentinel.ErrConflict) {
			s.logger.Warn("ticket id collided at insert, regenerating", "ticket_id", tid)
			if attempt == 0 {
				continue
			}
			return models.Complaint{}, dErrors.New(dErrors.CodeConflict,
				"Could not allocate a ticket id. Please retry.")
		}
		return models.Complaint{}, translateStoreErr(err, "insert complaint")
	}

	if s.metrics != nil {
		s.metrics.Submissions.WithLabelValues(string(c.Type)).Inc()
		s.metrics.ObserveSubmit(start)
	}
	s.publishAudit(ctx, audit.Event{
		Action:    audit.ActionComplaintSubmitted,
		TicketID:  c.TicketID,
		ActorID:   c.SubmittedBy,
		ToStatus:  string(c.Status),
		RequestID: meta.RequestID,
	})
	s.logger.Info("complaint submitted",
		"ticket_id", c.TicketID,
		"type", string(c.Type),
		"anonymous", c.IsAnonymous,
	)
	return c, nil
}

// ListMine returns the caller's non-anonymous complaints as owner views,
// newest first. Anonymous submissions are unreachable here by construction:
// they carry no submitter reference to match on.
func (s *Service) ListMine(ctx context.Context, userID string) ([]models.OwnerView, error) {
	complaints, err := s.store.ListBySubmitter(ctx, userID)
	if err != nil {
		return nil, translateStoreErr(err, "list complaints")
	}
	views := make([]models.OwnerView, len(complaints))
	for i, c := range complaints {
		views[i] = c.ToOwnerView()
	}
	return views, nil
}

// Track resolves a ticket ID to the public tracker projection. No
// authentication, so this is also the strictest view.
func (s *Service) Track(ctx context.Context, ticketID string) (models.TrackerView, error) {
	ticketID = strings.ToUpper(strings.TrimSpace(ticketID))
	if ticketID == "" {
		return models.TrackerView{}, dErrors.New(dErrors.CodeValidation, "Ticket id is required.")
	}

	view, hit, err := s.cache.Get(ctx, ticketID)
	if err != nil {
		// Cache trouble degrades to a store read, never to an error.
		s.logger.Warn("tracker cache read failed", "error", err)
	}
	if hit {
		if s.metrics != nil {
			s.metrics.TrackerCacheHits.Inc()
		}
		return view, nil
	}
	if s.metrics != nil {
		s.metrics.TrackerCacheMisses.Inc()
	}

	c, err := s.store.FindByTicketID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.TrackerView{}, dErrors.New(dErrors.CodeNotFound, "Complaint not found.")
		}
		return models.TrackerView{}, translateStoreErr(err, "find complaint")
	}

	view = c.ToTrackerView()
	if err := s.cache.Set(ctx, view, s.trackerTTL); err != nil {
		s.logger.Warn("tracker cache write failed", "error", err)
	}
	return view, nil
}

// ListForAuthority returns one page of authority views plus the total match
// count. The caller is responsible for pinning filter.Type to the principal's
// jurisdiction.
func (s *Service) ListForAuthority(ctx context.Context, filter models.ListFilter) ([]models.AuthorityView, int, error) {
	filter.Normalize()
	filter.Search = strings.ToUpper(strings.TrimSpace(filter.Search))

	complaints, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, 0, translateStoreErr(err, "list complaints")
	}
	views := make([]models.AuthorityView, len(complaints))
	for i, c := range complaints {
		views[i] = c.ToAuthorityView()
	}
	return views, total, nil
}

// Detail returns the authority projection of one complaint by internal id.
// A complaint outside the caller's jurisdiction reads as not found rather
// than forbidden, so ids cannot be probed across scopes.
func (s *Service) Detail(ctx context.Context, id string, scope models.Type) (models.AuthorityView, error) {
	c, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.AuthorityView{}, dErrors.New(dErrors.CodeNotFound, "Complaint not found.")
		}
		return models.AuthorityView{}, translateStoreErr(err, "find complaint")
	}
	if scope != "" && c.Type != scope {
		return models.AuthorityView{}, dErrors.New(dErrors.CodeNotFound, "Complaint not found.")
	}
	return c.ToAuthorityView(), nil
}

// TransitionMeta identifies the acting authority for attribution and audit.
type TransitionMeta struct {
	ActorID   string
	RequestID string
}

// Transition moves a complaint to a new status, appending the history entry
// and the optional remark in one atomic store mutation. The complaint is
// addressed by internal id or by ticket id, whichever the locator carries.
// Any current status may move to any valid status; corrections are routine
// for triage staff, so no transition graph is enforced.
func (s *Service) Transition(ctx context.Context, loc store.Locator, req models.TransitionRequest, meta TransitionMeta) (models.Complaint, error) {
	req.Sanitize()
	if !req.Status.Valid() {
		return models.Complaint{}, dErrors.New(dErrors.CodeValidation, "Invalid status value.")
	}

	now := s.clock()
	change := models.StatusChange{
		Status:    req.Status,
		ChangedBy: meta.ActorID,
		Remark:    req.Remark,
		Timestamp: now,
	}
	var remark *models.Remark
	if req.Remark != "" {
		remark = &models.Remark{Text: req.Remark, AddedBy: meta.ActorID, Timestamp: now}
	}

	c, err := s.store.AppendTransition(ctx, loc, change, remark)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Complaint{}, dErrors.New(dErrors.CodeNotFound, "Complaint not found.")
		}
		return models.Complaint{}, translateStoreErr(err, "append transition")
	}

	if err := s.cache.Invalidate(ctx, c.TicketID); err != nil {
		s.logger.Warn("tracker cache invalidation failed", "ticket_id", c.TicketID, "error", err)
	}
	if s.metrics != nil {
		s.metrics.Transitions.WithLabelValues(string(req.Status)).Inc()
	}

	from := ""
	if n := len(c.StatusHistory); n >= 2 {
		from = string(c.StatusHistory[n-2].Status)
	}
	s.publishAudit(ctx, audit.Event{
		Action:     audit.ActionStatusChanged,
		TicketID:   c.TicketID,
		ActorID:    meta.ActorID,
		FromStatus: from,
		ToStatus:   string(c.Status),
		RequestID:  meta.RequestID,
	})
	s.logger.Info("complaint status updated",
		"ticket_id", c.TicketID,
		"status", string(c.Status),
		"actor", meta.ActorID,
	)
	return c, nil
}

func (s *Service) publishAudit(ctx context.Context, event audit.Event) {
	event.Timestamp = s.clock()
	if err := s.audit.Publish(ctx, event); err != nil {
		s.logger.Warn("audit publish failed", "action", string(event.Action), "error", err)
	}
}

// translateStoreErr maps infrastructure failures to the store_unavailable
// domain code while leaving existing domain errors untouched.
func translateStoreErr(err error, op string) error {
	var existing *dErrors.Error
	if errors.As(err, &existing) {
		return err
	}
	if errors.Is(err, sentinel.ErrUnavailable) {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "Storage is temporarily unavailable.")
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, op+" failed")
}
