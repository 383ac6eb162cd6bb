package models

import (
	"strings"
	"time"

	dErrors "civiceye/pkg/domain-errors"
)

// SubmitRequest is the complaint submission payload. The raw PNR is
// deliberately absent from this type: only the verification boolean produced
// upstream crosses this boundary.
type SubmitRequest struct {
	ReporterName       string    `json:"reporterName"`
	SourceStation      string    `json:"sourceStation"`
	DestinationStation string    `json:"destinationStation"`
	DateOfTravel       string    `json:"dateOfTravel"`
	TimeOfIncident     string    `json:"timeOfIncident"`
	Category           Category  `json:"complaintCategory"`
	CategoryOther      string    `json:"complaintCategoryOther"`
	Degree             Degree    `json:"complaintDegree"`
	PNRVerified        bool      `json:"pnrVerified"`
	IsAnonymous        bool      `json:"isAnonymous"`
	Evidence           *Evidence `json:"evidence"`
}

// Sanitize trims whitespace off the narrative fields.
func (r *SubmitRequest) Sanitize() {
	r.ReporterName = strings.TrimSpace(r.ReporterName)
	r.SourceStation = strings.TrimSpace(r.SourceStation)
	r.DestinationStation = strings.TrimSpace(r.DestinationStation)
	r.TimeOfIncident = strings.TrimSpace(r.TimeOfIncident)
	r.Category = Category(strings.TrimSpace(string(r.Category)))
	r.CategoryOther = strings.TrimSpace(r.CategoryOther)
	r.Degree = Degree(strings.TrimSpace(string(r.Degree)))
}

// Validate reports every violated constraint, not just the first, so the
// client can fix the whole form in one round trip.
func (r *SubmitRequest) Validate() error {
	var missing []string
	if r.SourceStation == "" {
		missing = append(missing, "sourceStation")
	}
	if r.DestinationStation == "" {
		missing = append(missing, "destinationStation")
	}
	if r.Category == "" {
		missing = append(missing, "complaintCategory")
	}
	if r.Degree == "" {
		missing = append(missing, "complaintDegree")
	}
	if len(missing) > 0 {
		return dErrors.New(dErrors.CodeValidation,
			"Missing required fields: "+strings.Join(missing, ", "))
	}

	if !r.Category.Valid() {
		return dErrors.New(dErrors.CodeValidation, "Invalid complaint category.")
	}
	if !r.Degree.Valid() {
		return dErrors.New(dErrors.CodeValidation, "Invalid complaint degree.")
	}
	if r.DateOfTravel != "" {
		if _, err := time.Parse("2006-01-02", r.DateOfTravel); err != nil {
			return dErrors.New(dErrors.CodeValidation, "dateOfTravel must be YYYY-MM-DD.")
		}
	}
	return nil
}

// ParsedDateOfTravel returns the travel date or nil when absent. Call only
// after Validate.
func (r *SubmitRequest) ParsedDateOfTravel() *time.Time {
	if r.DateOfTravel == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", r.DateOfTravel)
	if err != nil {
		return nil
	}
	return &t
}

// TransitionRequest is the status update payload used by both the internal-id
// and the ticket-id update paths.
type TransitionRequest struct {
	Status Status `json:"status"`
	Remark string `json:"remark"`
}

// Sanitize trims the remark.
func (r *TransitionRequest) Sanitize() {
	r.Remark = strings.TrimSpace(r.Remark)
}

// ListFilter narrows the authority listing.
type ListFilter struct {
	Type Type
	// Statuses filters to any of the given states; empty means all.
	Statuses []Status
	// Search is a ticketId substring, matched case-insensitively.
	Search   string
	Page     int
	PageSize int
}

// Normalize clamps pagination to sane bounds.
func (f *ListFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 20
	}
	if f.PageSize > 100 {
		f.PageSize = 100
	}
}

// AnalyticsSummary is the authority dashboard read model.
type AnalyticsSummary struct {
	Total      int              `json:"total"`
	ByStatus   map[Status]int   `json:"byStatus"`
	DailyTrend []DailyTrendItem `json:"dailyTrend"`
}

// DailyTrendItem is one calendar day's submission count. Days with no
// complaints are absent from the sequence.
type DailyTrendItem struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}
