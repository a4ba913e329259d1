package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ctrack-io/ctrack/internal/db"
	"github.com/ctrack-io/ctrack/internal/domain"
)

// SQLiteTransitionRepo implements TransitionRepo using a SQLite database.
type SQLiteTransitionRepo struct {
	db db.DBTX
}

// NewSQLiteTransitionRepo creates a new SQLiteTransitionRepo.
func NewSQLiteTransitionRepo(conn db.DBTX) *SQLiteTransitionRepo {
	return &SQLiteTransitionRepo{db: conn}
}

const transitionColumns = `id, project_id, from_status_id, to_status_id, name, allowed_roles`

func (r *SQLiteTransitionRepo) Create(ctx context.Context, t *domain.WorkflowTransition) error {
	query := `INSERT INTO workflow_transitions (` + transitionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.ProjectID,
		t.FromStatusID,
		t.ToStatusID,
		t.Name,
		rolesToString(t.AllowedRoles),
	)
	if err != nil {
		return fmt.Errorf("inserting workflow transition: %w", err)
	}
	return nil
}

func (r *SQLiteTransitionRepo) GetByID(ctx context.Context, id string) (*domain.WorkflowTransition, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transitionColumns+` FROM workflow_transitions WHERE id = ?`, id)

	t, err := scanTransition(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("workflow transition not found")
		}
		return nil, fmt.Errorf("scanning workflow transition: %w", err)
	}
	return t, nil
}

func (r *SQLiteTransitionRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.WorkflowTransition, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transitionColumns+` FROM workflow_transitions WHERE project_id = ?`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing workflow transitions: %w", err)
	}
	defer rows.Close()

	var transitions []*domain.WorkflowTransition
	for rows.Next() {
		t, err := scanTransition(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning workflow transition row: %w", err)
		}
		transitions = append(transitions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating workflow transitions: %w", err)
	}
	return transitions, nil
}

func (r *SQLiteTransitionRepo) Update(ctx context.Context, t *domain.WorkflowTransition) error {
	query := `UPDATE workflow_transitions SET name = ?, allowed_roles = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, t.Name, rolesToString(t.AllowedRoles), t.ID)
	if err != nil {
		return fmt.Errorf("updating workflow transition: %w", err)
	}
	return nil
}

func (r *SQLiteTransitionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM workflow_transitions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting workflow transition: %w", err)
	}
	return nil
}

func scanTransition(scan func(dest ...any) error) (*domain.WorkflowTransition, error) {
	var t domain.WorkflowTransition
	var roles string
	if err := scan(&t.ID, &t.ProjectID, &t.FromStatusID, &t.ToStatusID, &t.Name, &roles); err != nil {
		return nil, err
	}
	t.AllowedRoles = stringToRoles(roles)
	return &t, nil
}
