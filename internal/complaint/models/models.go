package models

import "time"

// Status is the complaint lifecycle state. Wire values keep the human-readable
// strings the tracker UI and seeded data already use.
type Status string

const (
	StatusUnderReview   Status = "Under Review"
	StatusInvestigating Status = "Investigating"
	StatusActionTaken   Status = "Action Taken"
	StatusResolved      Status = "Resolved"
	StatusRejected      Status = "Rejected"
)

// AllStatuses lists the closed status enum in display order.
var AllStatuses = []Status{
	StatusUnderReview,
	StatusInvestigating,
	StatusActionTaken,
	StatusResolved,
	StatusRejected,
}

// Valid reports whether the status is one of the five known values.
func (s Status) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Category classifies the complaint. Empty is allowed at the type level but
// rejected by submission validation.
type Category string

const (
	CategoryOvercharging Category = "Overcharging"
	CategoryMisbehavior  Category = "Misbehavior"
	CategoryHygieneIssue Category = "Hygiene Issue"
	CategoryOther        Category = "Other"
)

// Valid reports whether the category is a known value or empty.
func (c Category) Valid() bool {
	switch c {
	case CategoryOvercharging, CategoryMisbehavior, CategoryHygieneIssue, CategoryOther, "":
		return true
	}
	return false
}

// Degree grades complaint severity.
type Degree string

const (
	DegreeMinor    Degree = "Minor"
	DegreeModerate Degree = "Moderate"
	DegreeSerious  Degree = "Serious"
)

// Valid reports whether the degree is a known value or empty.
func (d Degree) Valid() bool {
	switch d {
	case DegreeMinor, DegreeModerate, DegreeSerious, "":
		return true
	}
	return false
}

// Type partitions complaints between the two authority scopes.
type Type string

const (
	TypeRailway Type = "railway"
	TypeTraffic Type = "traffic"
)

// Evidence is the descriptor handed over by the upload collaborator. The core
// stores only this; raw bytes never pass through it.
type Evidence struct {
	URL      string `json:"url"`
	MimeType string `json:"mimeType"`
}

// StatusChange is one entry of the append-only audit trail.
type StatusChange struct {
	Status    Status    `json:"status"`
	ChangedBy string    `json:"changedBy,omitempty"`
	Remark    string    `json:"remark"`
	Timestamp time.Time `json:"timestamp"`
}

// Remark is an authority annotation attached during a status transition.
type Remark struct {
	Text      string    `json:"text"`
	AddedBy   string    `json:"addedBy"`
	Timestamp time.Time `json:"timestamp"`
}

// Complaint is the central record.
//
// Invariants:
//   - TicketID is unique for all time and immutable once assigned.
//   - StatusHistory is never empty and its last entry's status equals Status.
//   - SubmittedBy is empty iff IsAnonymous is true.
//   - No field ever holds the raw PNR digits; PNRVerified is the only trace of
//     the verification step.
type Complaint struct {
	ID       string
	TicketID string

	ReporterName       string
	SourceStation      string
	DestinationStation string
	DateOfTravel       *time.Time
	TimeOfIncident     string
	Category           Category
	CategoryOther      string
	Degree             Degree

	PNRVerified bool
	Evidence    *Evidence

	Status        Status
	StatusHistory []StatusChange
	Remarks       []Remark

	SubmittedBy    string
	IsAnonymous    bool
	AnonymousAlias string
	SubmittedVia   string

	Type Type

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep copy so callers can hand out complaints without
// exposing shared slice backing arrays.
func (c Complaint) Clone() Complaint {
	out := c
	out.StatusHistory = append([]StatusChange(nil), c.StatusHistory...)
	out.Remarks = append([]Remark(nil), c.Remarks...)
	if c.Evidence != nil {
		ev := *c.Evidence
		out.Evidence = &ev
	}
	if c.DateOfTravel != nil {
		d := *c.DateOfTravel
		out.DateOfTravel = &d
	}
	return out
}
