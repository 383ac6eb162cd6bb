package pnr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"civiceye/internal/pnr/metrics"
	"civiceye/internal/pnr/tracer"
	dErrors "civiceye/pkg/domain-errors"
	"civiceye/pkg/platform/sentinel"
)

// Service validates journey references against the ledger. It has no side
// effects, is idempotent, and never persists or logs the candidate digits.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  tracer.Tracer
}

// ServiceOption configures a Service instance.
type ServiceOption func(*Service)

// WithTracer sets the tracer implementation.
func WithTracer(t tracer.Tracer) ServiceOption {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithMetrics sets the metrics collectors.
func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

func NewService(store Store, logger *slog.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		store:  store,
		logger: logger,
		tracer: tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Verify checks a candidate against the ledger.
//
// Malformed input fails before any store access. A ledger miss is an error
// (NotFound); a ledger hit with valid=false is a successful call returning
// Verified=false. The two must not be collapsed: the client messaging differs
// and only the miss is a 404.
func (s *Service) Verify(ctx context.Context, candidate string) (Result, error) {
	start := time.Now()

	if !isTenDigits(candidate) {
		s.observe(metrics.OutcomeBadFormat, start)
		return Result{}, dErrors.New(dErrors.CodeValidation, "PNR must be exactly 10 digits.")
	}

	ctx, span := s.tracer.Start(ctx, tracer.SpanLedgerLookup)
	entry, err := s.store.FindByPNR(ctx, candidate)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			span.SetAttributes(tracer.Bool(tracer.AttrFound, false))
			span.End(nil)
			s.observe(metrics.OutcomeNotFound, start)
			return Result{}, dErrors.New(dErrors.CodeNotFound,
				"PNR not found in the system. Please check and try again.")
		}
		span.End(err)
		s.observe(metrics.OutcomeStoreFailure, start)
		s.logger.ErrorContext(ctx, "ledger lookup failed", "error", err)
		return Result{}, dErrors.Wrap(fmt.Errorf("ledger lookup: %w", err),
			dErrors.CodeUnavailable, "PNR ledger unavailable")
	}
	span.SetAttributes(
		tracer.Bool(tracer.AttrFound, true),
		tracer.Bool(tracer.AttrVerified, entry.Valid),
	)
	span.End(nil)

	if !entry.Valid {
		s.observe(metrics.OutcomeInvalid, start)
		return Result{
			Verified: false,
			Message:  "PNR found but marked as invalid/expired.",
		}, nil
	}

	s.observe(metrics.OutcomeVerified, start)
	travelDate := entry.TravelDate
	return Result{
		Verified:    true,
		Message:     "PNR verified successfully.",
		Source:      entry.Source,
		Destination: entry.Destination,
		TravelDate:  &travelDate,
	}, nil
}

func (s *Service) observe(outcome string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveVerify(outcome, time.Since(start).Seconds())
	}
}

// isTenDigits reports whether the candidate is exactly 10 ASCII digits.
// Deliberately not a regexp: this runs on every submission attempt.
func isTenDigits(s string) bool {
	if len(s) != 10 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
