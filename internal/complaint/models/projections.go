package models

import "time"

// The three role-scoped projections. Redaction is done by construction: each
// projection type simply has no field for what its audience must not see, so a
// leak would require adding the field back, not forgetting a delete.

// OwnerView is what a citizen sees of their own complaints. It omits the raw
// status history (actor identities) and the internal verification flag.
type OwnerView struct {
	ID                 string     `json:"id"`
	TicketID           string     `json:"ticketId"`
	ReporterName       string     `json:"reporterName,omitempty"`
	SourceStation      string     `json:"sourceStation"`
	DestinationStation string     `json:"destinationStation"`
	DateOfTravel       *time.Time `json:"dateOfTravel,omitempty"`
	TimeOfIncident     string     `json:"timeOfIncident,omitempty"`
	Category           Category   `json:"complaintCategory"`
	CategoryOther      string     `json:"complaintCategoryOther,omitempty"`
	Degree             Degree     `json:"complaintDegree"`
	Evidence           *Evidence  `json:"evidence,omitempty"`
	Status             Status     `json:"status"`
	IsAnonymous        bool       `json:"isAnonymous"`
	AnonymousAlias     string     `json:"anonymousAlias,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// TrackerView is the public projection, reachable without authentication.
// Strictest of the three: no evidence URL, no submitter linkage, no
// verification flag.
type TrackerView struct {
	TicketID           string         `json:"ticketId"`
	SourceStation      string         `json:"sourceStation"`
	DestinationStation string         `json:"destinationStation"`
	Status             Status         `json:"status"`
	Category           Category       `json:"complaintCategory"`
	Degree             Degree         `json:"complaintDegree"`
	CreatedAt          time.Time      `json:"createdAt"`
	StatusHistory      []StatusChange `json:"statusHistory"`
}

// AuthorityView is what admins see. Submitter identity appears only through
// the anonymous alias or remark attribution, never as contact info.
type AuthorityView struct {
	ID                 string         `json:"id"`
	TicketID           string         `json:"ticketId"`
	SourceStation      string         `json:"sourceStation"`
	DestinationStation string         `json:"destinationStation"`
	DateOfTravel       *time.Time     `json:"dateOfTravel,omitempty"`
	TimeOfIncident     string         `json:"timeOfIncident,omitempty"`
	Category           Category       `json:"complaintCategory"`
	CategoryOther      string         `json:"complaintCategoryOther,omitempty"`
	Degree             Degree         `json:"complaintDegree"`
	Evidence           *Evidence      `json:"evidence,omitempty"`
	Status             Status         `json:"status"`
	StatusHistory      []StatusChange `json:"statusHistory"`
	Remarks            []Remark       `json:"remarks"`
	IsAnonymous        bool           `json:"isAnonymous"`
	AnonymousAlias     string         `json:"anonymousAlias,omitempty"`
	SubmittedVia       string         `json:"submittedVia,omitempty"`
	Type               Type           `json:"type"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
}

// ToOwnerView projects the complaint for its submitter.
func (c Complaint) ToOwnerView() OwnerView {
	return OwnerView{
		ID:                 c.ID,
		TicketID:           c.TicketID,
		ReporterName:       c.ReporterName,
		SourceStation:      c.SourceStation,
		DestinationStation: c.DestinationStation,
		DateOfTravel:       c.DateOfTravel,
		TimeOfIncident:     c.TimeOfIncident,
		Category:           c.Category,
		CategoryOther:      c.CategoryOther,
		Degree:             c.Degree,
		Evidence:           c.Evidence,
		Status:             c.Status,
		IsAnonymous:        c.IsAnonymous,
		AnonymousAlias:     c.AnonymousAlias,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

// ToTrackerView projects the complaint for the public tracker.
func (c Complaint) ToTrackerView() TrackerView {
	history := make([]StatusChange, len(c.StatusHistory))
	for i, change := range c.StatusHistory {
		// Actor identities stay internal on the public surface.
		change.ChangedBy = ""
		history[i] = change
	}
	return TrackerView{
		TicketID:           c.TicketID,
		SourceStation:      c.SourceStation,
		DestinationStation: c.DestinationStation,
		Status:             c.Status,
		Category:           c.Category,
		Degree:             c.Degree,
		CreatedAt:          c.CreatedAt,
		StatusHistory:      history,
	}
}

// ToAuthorityView projects the complaint for authority accounts.
func (c Complaint) ToAuthorityView() AuthorityView {
	return AuthorityView{
		ID:                 c.ID,
		TicketID:           c.TicketID,
		SourceStation:      c.SourceStation,
		DestinationStation: c.DestinationStation,
		DateOfTravel:       c.DateOfTravel,
		TimeOfIncident:     c.TimeOfIncident,
		Category:           c.Category,
		CategoryOther:      c.CategoryOther,
		Degree:             c.Degree,
		Evidence:           c.Evidence,
		Status:             c.Status,
		StatusHistory:      c.StatusHistory,
		Remarks:            c.Remarks,
		IsAnonymous:        c.IsAnonymous,
		AnonymousAlias:     c.AnonymousAlias,
		SubmittedVia:       c.SubmittedVia,
		Type:               c.Type,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}
