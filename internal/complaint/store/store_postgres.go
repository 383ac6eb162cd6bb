package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"civiceye/internal/complaint/models"
	"civiceye/pkg/platform/sentinel"
)

// PostgresStore persists complaints in PostgreSQL. The status history and
// remarks live as jsonb arrays on the complaint row so a transition is one
// UPDATE statement: status field, history append, and remark append commit
// atomically or not at all.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed complaint store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const complaintColumns = `
	id, ticket_id, reporter_name, source_station, destination_station,
	date_of_travel, time_of_incident, category, category_other, degree,
	pnr_verified, evidence, status, status_history, remarks,
	submitted_by, is_anonymous, anonymous_alias, submitted_via, type,
	created_at, updated_at`

func (s *PostgresStore) Insert(ctx context.Context, c models.Complaint) error {
	history, err := json.Marshal(c.StatusHistory)
	if err != nil {
		return fmt.Errorf("marshal status history: %w", err)
	}
	remarks, err := json.Marshal(c.Remarks)
	if err != nil {
		return fmt.Errorf("marshal remarks: %w", err)
	}
	var evidence any
	if c.Evidence != nil {
		evidence, err = json.Marshal(c.Evidence)
		if err != nil {
			return fmt.Errorf("marshal evidence: %w", err)
		}
	}

	query := `
		INSERT INTO complaints (` + complaintColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`
	_, err = s.db.ExecContext(ctx, query,
		c.ID, c.TicketID, c.ReporterName, c.SourceStation, c.DestinationStation,
		c.DateOfTravel, c.TimeOfIncident, string(c.Category), c.CategoryOther, string(c.Degree),
		c.PNRVerified, evidence, string(c.Status), history, remarks,
		nullable(c.SubmittedBy), c.IsAnonymous, c.AnonymousAlias, c.SubmittedVia, string(c.Type),
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert complaint: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (models.Complaint, error) {
	return s.findOne(ctx, `WHERE id = $1`, id)
}

func (s *PostgresStore) FindByTicketID(ctx context.Context, ticketID string) (models.Complaint, error) {
	return s.findOne(ctx, `WHERE ticket_id = $1`, ticketID)
}

func (s *PostgresStore) findOne(ctx context.Context, where string, arg any) (models.Complaint, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+complaintColumns+` FROM complaints `+where, arg)
	c, err := scanComplaint(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Complaint{}, sentinel.ErrNotFound
		}
		return models.Complaint{}, fmt.Errorf("find complaint: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) TicketIDExists(ctx context.Context, ticketID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM complaints WHERE ticket_id = $1)`, ticketID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ticket id exists: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) ListBySubmitter(ctx context.Context, submitterID string) ([]models.Complaint, error) {
	query := `
		SELECT ` + complaintColumns + `
		FROM complaints
		WHERE submitted_by = $1 AND NOT is_anonymous
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, submitterID)
	if err != nil {
		return nil, fmt.Errorf("list by submitter: %w", err)
	}
	defer rows.Close()
	return collectComplaints(rows)
}

func (s *PostgresStore) List(ctx context.Context, filter models.ListFilter) ([]models.Complaint, int, error) {
	where := `WHERE 1=1`
	var args []any
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		where += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			statuses[i] = string(status)
		}
		args = append(args, pq.Array(statuses))
		where += fmt.Sprintf(" AND status = ANY($%d)", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += fmt.Sprintf(" AND ticket_id ILIKE $%d", len(args))
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM complaints `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count complaints: %w", err)
	}

	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)
	query := fmt.Sprintf(
		`SELECT %s FROM complaints %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		complaintColumns, where, len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list complaints: %w", err)
	}
	defer rows.Close()

	complaints, err := collectComplaints(rows)
	if err != nil {
		return nil, 0, err
	}
	return complaints, total, nil
}

func (s *PostgresStore) AppendTransition(ctx context.Context, loc Locator, change models.StatusChange, remark *models.Remark) (models.Complaint, error) {
	changeJSON, err := json.Marshal([]models.StatusChange{change})
	if err != nil {
		return models.Complaint{}, fmt.Errorf("marshal status change: %w", err)
	}
	remarkJSON := []byte(`[]`)
	if remark != nil {
		remarkJSON, err = json.Marshal([]models.Remark{*remark})
		if err != nil {
			return models.Complaint{}, fmt.Errorf("marshal remark: %w", err)
		}
	}

	where := `id = $5`
	arg := loc.InternalID
	if arg == "" {
		where = `ticket_id = $5`
		arg = loc.TicketID
	}

	// Single-statement update keeps the status field and both appends atomic
	// under concurrent transitions.
	query := `
		UPDATE complaints
		SET status = $1,
			status_history = status_history || $2::jsonb,
			remarks = remarks || $3::jsonb,
			updated_at = $4
		WHERE ` + where + `
		RETURNING ` + complaintColumns

	row := s.db.QueryRowContext(ctx, query,
		string(change.Status), changeJSON, remarkJSON, change.Timestamp, arg)
	c, err := scanComplaint(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Complaint{}, sentinel.ErrNotFound
		}
		return models.Complaint{}, fmt.Errorf("append transition: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) CountByStatus(ctx context.Context, typ models.Type, status models.Status) (int, error) {
	query := `SELECT COUNT(*) FROM complaints WHERE 1=1`
	var args []any
	if typ != "" {
		args = append(args, string(typ))
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if status != "" {
		args = append(args, string(status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count by status: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) DailyTrend(ctx context.Context, typ models.Type, since time.Time) ([]models.DailyTrendItem, error) {
	query := `
		SELECT to_char(created_at, 'YYYY-MM-DD') AS day, COUNT(*)
		FROM complaints
		WHERE created_at >= $1
	`
	args := []any{since}
	if typ != "" {
		args = append(args, string(typ))
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	query += ` GROUP BY day ORDER BY day`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("daily trend: %w", err)
	}
	defer rows.Close()

	var out []models.DailyTrendItem
	for rows.Next() {
		var item models.DailyTrendItem
		if err := rows.Scan(&item.Date, &item.Count); err != nil {
			return nil, fmt.Errorf("scan trend row: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trend rows: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComplaint(row rowScanner) (models.Complaint, error) {
	var (
		c            models.Complaint
		dateOfTravel sql.NullTime
		category     string
		degree       string
		evidence     []byte
		status       string
		history      []byte
		remarks      []byte
		submittedBy  sql.NullString
		typ          string
	)
	err := row.Scan(
		&c.ID, &c.TicketID, &c.ReporterName, &c.SourceStation, &c.DestinationStation,
		&dateOfTravel, &c.TimeOfIncident, &category, &c.CategoryOther, &degree,
		&c.PNRVerified, &evidence, &status, &history, &remarks,
		&submittedBy, &c.IsAnonymous, &c.AnonymousAlias, &c.SubmittedVia, &typ,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return models.Complaint{}, err
	}

	c.Category = models.Category(category)
	c.Degree = models.Degree(degree)
	c.Status = models.Status(status)
	c.Type = models.Type(typ)
	if dateOfTravel.Valid {
		d := dateOfTravel.Time
		c.DateOfTravel = &d
	}
	if submittedBy.Valid {
		c.SubmittedBy = submittedBy.String
	}
	if len(evidence) > 0 {
		var ev models.Evidence
		if err := json.Unmarshal(evidence, &ev); err != nil {
			return models.Complaint{}, fmt.Errorf("unmarshal evidence: %w", err)
		}
		c.Evidence = &ev
	}
	if err := json.Unmarshal(history, &c.StatusHistory); err != nil {
		return models.Complaint{}, fmt.Errorf("unmarshal status history: %w", err)
	}
	if err := json.Unmarshal(remarks, &c.Remarks); err != nil {
		return models.Complaint{}, fmt.Errorf("unmarshal remarks: %w", err)
	}
	return c, nil
}

func collectComplaints(rows *sql.Rows) ([]models.Complaint, error) {
	var out []models.Complaint
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan complaint: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate complaints: %w", err)
	}
	return out, nil
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// isUniqueViolation reports whether the error is a PostgreSQL unique-constraint
// rejection (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	type sqlState interface{ SQLState() string }
	var state sqlState
	if errors.As(err, &state) {
		return state.SQLState() == "23505"
	}
	return false
}
