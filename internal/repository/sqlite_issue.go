package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ctrack-io/ctrack/internal/db"
	"github.com/ctrack-io/ctrack/internal/domain"
)

// SQLiteIssueRepo implements IssueRepo using a SQLite database.
type SQLiteIssueRepo struct {
	db db.DBTX
}

// NewSQLiteIssueRepo creates a new SQLiteIssueRepo.
func NewSQLiteIssueRepo(conn db.DBTX) *SQLiteIssueRepo {
	return &SQLiteIssueRepo{db: conn}
}

const issueColumns = `id, project_id, key, issue_number, type, title, description,
	status_id, priority, assignee_id, reporter_id, epic_id, sprint_id,
	story_points, due_date, created_at, updated_at`

func (r *SQLiteIssueRepo) Create(ctx context.Context, i *domain.Issue) error {
	query := `INSERT INTO issues (` + issueColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		i.ID,
		i.ProjectID,
		i.Key,
		i.Number,
		i.Type,
		i.Title,
		i.Description,
		i.StatusID,
		string(i.Priority),
		nullableStringToValue(i.AssigneeID),
		i.ReporterID,
		nullableStringToValue(i.EpicID),
		nullableStringToValue(i.SprintID),
		nullableIntToValue(i.StoryPoints),
		nullableTimeToString(i.DueDate, dateLayout),
		i.CreatedAt.Format(time.RFC3339),
		i.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting issue: %w", err)
	}
	return nil
}

func (r *SQLiteIssueRepo) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+issueColumns+` FROM issues WHERE id = ?`, id)
	i, err := scanIssue(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("issue not found")
		}
		return nil, fmt.Errorf("scanning issue: %w", err)
	}
	return i, nil
}

func (r *SQLiteIssueRepo) GetByKey(ctx context.Context, key string) (*domain.Issue, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+issueColumns+` FROM issues WHERE UPPER(key) = UPPER(?)`, key)
	i, err := scanIssue(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("issue not found: %s", key)
		}
		return nil, fmt.Errorf("scanning issue: %w", err)
	}
	return i, nil
}

func (r *SQLiteIssueRepo) ListByProject(ctx context.Context, projectID string, f IssueFilters) ([]*domain.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues WHERE project_id = ?`
	args := []any{projectID}

	if f.StatusID != "" {
		query += ` AND status_id = ?`
		args = append(args, f.StatusID)
	}
	if f.Type != "" {
		query += ` AND type = ?`
		args = append(args, f.Type)
	}
	if f.AssigneeID != "" {
		query += ` AND assignee_id = ?`
		args = append(args, f.AssigneeID)
	}
	if f.Priority != "" {
		query += ` AND priority = ?`
		args = append(args, string(f.Priority))
	}
	if f.EpicID != "" {
		query += ` AND epic_id = ?`
		args = append(args, f.EpicID)
	}
	if f.Search != "" {
		query += ` AND title LIKE '%' || ? || '%'`
		args = append(args, f.Search)
	}
	query += ` ORDER BY created_at DESC`

	return r.queryIssues(ctx, query, args...)
}

func (r *SQLiteIssueRepo) ListBySprint(ctx context.Context, sprintID string) ([]*domain.Issue, error) {
	return r.queryIssues(ctx,
		`SELECT `+issueColumns+` FROM issues WHERE sprint_id = ? ORDER BY created_at`, sprintID)
}

func (r *SQLiteIssueRepo) ListBacklog(ctx context.Context, projectID string) ([]*domain.Issue, error) {
	// Backlog: issues not attached to any planned or active sprint.
	query := `SELECT ` + issueColumns + ` FROM issues
		WHERE project_id = ?
		AND (sprint_id IS NULL OR sprint_id NOT IN (
			SELECT id FROM sprints WHERE status IN ('planned','active')
		))
		ORDER BY CASE priority
			WHEN 'highest' THEN 0
			WHEN 'high' THEN 1
			WHEN 'medium' THEN 2
			WHEN 'low' THEN 3
			ELSE 4
		END, created_at DESC`
	return r.queryIssues(ctx, query, projectID)
}

func (r *SQLiteIssueRepo) Update(ctx context.Context, i *domain.Issue) error {
	query := `UPDATE issues SET type = ?, title = ?, description = ?, status_id = ?,
		priority = ?, assignee_id = ?, epic_id = ?, sprint_id = ?, story_points = ?,
		due_date = ?, updated_at = ?
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		i.Type,
		i.Title,
		i.Description,
		i.StatusID,
		string(i.Priority),
		nullableStringToValue(i.AssigneeID),
		nullableStringToValue(i.EpicID),
		nullableStringToValue(i.SprintID),
		nullableIntToValue(i.StoryPoints),
		nullableTimeToString(i.DueDate, dateLayout),
		i.UpdatedAt.Format(time.RFC3339),
		i.ID,
	)
	if err != nil {
		return fmt.Errorf("updating issue: %w", err)
	}
	return nil
}

func (r *SQLiteIssueRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM issues WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting issue: %w", err)
	}
	return nil
}

// MoveIncomplete detaches a completing sprint's unfinished issues (those not
// in a done-category status) to the backlog when target is nil, or reassigns
// them to the target sprint.
func (r *SQLiteIssueRepo) MoveIncomplete(ctx context.Context, sprintID string, target *string, doneStatusIDs []string) (int, error) {
	query := `UPDATE issues SET sprint_id = ?, updated_at = ? WHERE sprint_id = ?`
	args := []any{nullableStringToValue(target), nowUTC(), sprintID}

	if len(doneStatusIDs) > 0 {
		query += ` AND status_id NOT IN (`
		for i, id := range doneStatusIDs {
			if i > 0 {
				query += `,`
			}
			query += `?`
			args = append(args, id)
		}
		query += `)`
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("moving incomplete sprint issues: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting moved issues: %w", err)
	}
	return int(n), nil
}

func (r *SQLiteIssueRepo) queryIssues(ctx context.Context, query string, args ...any) ([]*domain.Issue, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing issues: %w", err)
	}
	defer rows.Close()

	var issues []*domain.Issue
	for rows.Next() {
		i, err := scanIssue(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning issue row: %w", err)
		}
		issues = append(issues, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating issues: %w", err)
	}
	return issues, nil
}

func scanIssue(scan func(dest ...any) error) (*domain.Issue, error) {
	var i domain.Issue
	var priority string
	var assigneeID, epicID, sprintID, dueDateStr sql.NullString
	var storyPoints sql.NullInt64
	var createdAtStr, updatedAtStr string

	err := scan(
		&i.ID, &i.ProjectID, &i.Key, &i.Number, &i.Type, &i.Title, &i.Description,
		&i.StatusID, &priority, &assigneeID, &i.ReporterID, &epicID, &sprintID,
		&storyPoints, &dueDateStr, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		return nil, err
	}

	i.Priority = domain.Priority(priority)
	i.AssigneeID = nullStringToPtr(assigneeID)
	i.EpicID = nullStringToPtr(epicID)
	i.SprintID = nullStringToPtr(sprintID)
	i.StoryPoints = nullIntToPtr(storyPoints)
	i.DueDate = parseNullableTime(dueDateStr, dateLayout)
	i.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)
	i.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAtStr)

	return &i, nil
}
