package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ctrack-io/ctrack/internal/db"
	"github.com/ctrack-io/ctrack/internal/domain"
)

// SQLiteActivityRepo implements ActivityRepo using a SQLite database.
// Payloads are stored as JSON envelopes keyed by the action kind.
type SQLiteActivityRepo struct {
	db db.DBTX
}

// NewSQLiteActivityRepo creates a new SQLiteActivityRepo.
func NewSQLiteActivityRepo(conn db.DBTX) *SQLiteActivityRepo {
	return &SQLiteActivityRepo{db: conn}
}

const activityColumns = `id, issue_id, user_id, action, payload, created_at`

func (r *SQLiteActivityRepo) Create(ctx context.Context, a *domain.Activity) error {
	payload, err := domain.EncodePayload(a.Payload)
	if err != nil {
		return fmt.Errorf("encoding activity payload: %w", err)
	}
	query := `INSERT INTO activities (` + activityColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		a.ID,
		a.IssueID,
		nullableStringToValue(a.UserID),
		string(a.Action),
		string(payload),
		a.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting activity: %w", err)
	}
	return nil
}

func (r *SQLiteActivityRepo) ListByIssue(ctx context.Context, issueID string) ([]*domain.Activity, error) {
	return r.queryActivities(ctx,
		`SELECT `+activityColumns+` FROM activities WHERE issue_id = ? ORDER BY created_at DESC, id DESC`,
		issueID)
}

func (r *SQLiteActivityRepo) ListByProject(ctx context.Context, projectID string, since *time.Time, limit int) ([]*domain.Activity, error) {
	query := `SELECT a.id, a.issue_id, a.user_id, a.action, a.payload, a.created_at
		FROM activities a
		JOIN issues i ON i.id = a.issue_id
		WHERE i.project_id = ?`
	args := []any{projectID}
	if since != nil {
		query += ` AND a.created_at >= ?`
		args = append(args, since.UTC().Format(time.RFC3339))
	}
	query += ` ORDER BY a.created_at DESC, a.id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return r.queryActivities(ctx, query, args...)
}

func (r *SQLiteActivityRepo) queryActivities(ctx context.Context, query string, args ...any) ([]*domain.Activity, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}
	defer rows.Close()

	var activities []*domain.Activity
	for rows.Next() {
		a, err := scanActivity(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning activity row: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activities: %w", err)
	}
	return activities, nil
}

func scanActivity(scan func(dest ...any) error) (*domain.Activity, error) {
	var a domain.Activity
	var userID sql.NullString
	var action, payload, createdAtStr string
	if err := scan(&a.ID, &a.IssueID, &userID, &action, &payload, &createdAtStr); err != nil {
		return nil, err
	}
	a.UserID = nullStringToPtr(userID)
	a.Action = domain.ActivityAction(action)
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)

	p, err := domain.DecodePayload([]byte(payload))
	if err != nil {
		return nil, fmt.Errorf("decoding payload for activity %s: %w", a.ID, err)
	}
	a.Payload = p
	return &a, nil
}
