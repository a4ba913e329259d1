package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ctrack-io/ctrack/internal/db"
	"github.com/ctrack-io/ctrack/internal/domain"
)

// SQLiteSprintRepo implements SprintRepo using a SQLite database.
type SQLiteSprintRepo struct {
	db db.DBTX
}

// NewSQLiteSprintRepo creates a new SQLiteSprintRepo.
func NewSQLiteSprintRepo(conn db.DBTX) *SQLiteSprintRepo {
	return &SQLiteSprintRepo{db: conn}
}

const sprintColumns = `id, project_id, name, goal, start_date, end_date, status,
	initial_story_points, completed_story_points, created_at, updated_at`

func (r *SQLiteSprintRepo) Create(ctx context.Context, s *domain.Sprint) error {
	query := `INSERT INTO sprints (` + sprintColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.ProjectID,
		s.Name,
		s.Goal,
		s.StartDate.Format(dateLayout),
		s.EndDate.Format(dateLayout),
		string(s.Status),
		nullableIntToValue(s.InitialStoryPoints),
		nullableIntToValue(s.CompletedStoryPoints),
		s.CreatedAt.Format(time.RFC3339),
		s.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting sprint: %w", err)
	}
	return nil
}

func (r *SQLiteSprintRepo) GetByID(ctx context.Context, id string) (*domain.Sprint, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sprintColumns+` FROM sprints WHERE id = ?`, id)
	s, err := scanSprint(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("sprint not found")
		}
		return nil, fmt.Errorf("scanning sprint: %w", err)
	}
	return s, nil
}

func (r *SQLiteSprintRepo) ListByProject(ctx context.Context, projectID string, status domain.SprintStatus) ([]*domain.Sprint, error) {
	query := `SELECT ` + sprintColumns + ` FROM sprints WHERE project_id = ?`
	args := []any{projectID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY start_date DESC`
	return r.querySprints(ctx, query, args...)
}

func (r *SQLiteSprintRepo) GetActive(ctx context.Context, projectID string) (*domain.Sprint, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sprintColumns+` FROM sprints
		WHERE project_id = ? AND status = 'active' LIMIT 1`, projectID)
	s, err := scanSprint(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // no active sprint
		}
		return nil, fmt.Errorf("scanning active sprint: %w", err)
	}
	return s, nil
}

func (r *SQLiteSprintRepo) ListCompleted(ctx context.Context, projectID string, limit int) ([]*domain.Sprint, error) {
	query := `SELECT ` + sprintColumns + ` FROM sprints
		WHERE project_id = ? AND status = 'completed'
		ORDER BY end_date DESC`
	args := []any{projectID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return r.querySprints(ctx, query, args...)
}

func (r *SQLiteSprintRepo) Update(ctx context.Context, s *domain.Sprint) error {
	query := `UPDATE sprints SET name = ?, goal = ?, start_date = ?, end_date = ?,
		status = ?, initial_story_points = ?, completed_story_points = ?, updated_at = ?
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		s.Name,
		s.Goal,
		s.StartDate.Format(dateLayout),
		s.EndDate.Format(dateLayout),
		string(s.Status),
		nullableIntToValue(s.InitialStoryPoints),
		nullableIntToValue(s.CompletedStoryPoints),
		s.UpdatedAt.Format(time.RFC3339),
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("updating sprint: %w", err)
	}
	return nil
}

func (r *SQLiteSprintRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sprints WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting sprint: %w", err)
	}
	return nil
}

func (r *SQLiteSprintRepo) querySprints(ctx context.Context, query string, args ...any) ([]*domain.Sprint, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing sprints: %w", err)
	}
	defer rows.Close()

	var sprints []*domain.Sprint
	for rows.Next() {
		s, err := scanSprint(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning sprint row: %w", err)
		}
		sprints = append(sprints, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sprints: %w", err)
	}
	return sprints, nil
}

func scanSprint(scan func(dest ...any) error) (*domain.Sprint, error) {
	var s domain.Sprint
	var status, startStr, endStr, createdAtStr, updatedAtStr string
	var initial, completed sql.NullInt64

	err := scan(
		&s.ID, &s.ProjectID, &s.Name, &s.Goal, &startStr, &endStr, &status,
		&initial, &completed, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		return nil, err
	}

	s.Status = domain.SprintStatus(status)
	s.InitialStoryPoints = nullIntToPtr(initial)
	s.CompletedStoryPoints = nullIntToPtr(completed)

	var parseErr error
	s.StartDate, parseErr = time.Parse(dateLayout, startStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing start_date: %w", parseErr)
	}
	s.EndDate, parseErr = time.Parse(dateLayout, endStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing end_date: %w", parseErr)
	}
	s.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)
	s.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAtStr)

	return &s, nil
}
