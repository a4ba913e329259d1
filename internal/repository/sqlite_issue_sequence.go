package repository

import (
	"context"
	"fmt"

	"github.com/ctrack-io/ctrack/internal/db"
)

// SQLiteIssueSequenceRepo allocates project-scoped issue numbers atomically
// using the issue_sequences table.
type SQLiteIssueSequenceRepo struct {
	db db.DBTX
}

// NewSQLiteIssueSequenceRepo creates a new SQLiteIssueSequenceRepo.
func NewSQLiteIssueSequenceRepo(conn db.DBTX) *SQLiteIssueSequenceRepo {
	return &SQLiteIssueSequenceRepo{db: conn}
}

// NextIssueNumber returns the next available issue number for a project.
// Allocation is atomic and safe under concurrent writes.
func (r *SQLiteIssueSequenceRepo) NextIssueNumber(ctx context.Context, projectID string) (int, error) {
	seedQuery := `INSERT OR IGNORE INTO issue_sequences (project_id, next_number)
		SELECT ?, COALESCE(MAX(issue_number), 0) + 1
		FROM issues WHERE project_id = ?`
	if _, err := r.db.ExecContext(ctx, seedQuery, projectID, projectID); err != nil {
		return 0, fmt.Errorf("seeding issue sequence for %s: %w", projectID, err)
	}

	var next int
	allocQuery := `UPDATE issue_sequences
		SET next_number = next_number + 1
		WHERE project_id = ?
		RETURNING next_number - 1`
	if err := r.db.QueryRowContext(ctx, allocQuery, projectID).Scan(&next); err != nil {
		return 0, fmt.Errorf("allocating next issue number for project %s: %w", projectID, err)
	}

	return next, nil
}
