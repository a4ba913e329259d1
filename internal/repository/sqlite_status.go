package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ctrack-io/ctrack/internal/db"
	"github.com/ctrack-io/ctrack/internal/domain"
)

// SQLiteStatusRepo implements StatusRepo using a SQLite database.
type SQLiteStatusRepo struct {
	db db.DBTX
}

// NewSQLiteStatusRepo creates a new SQLiteStatusRepo.
func NewSQLiteStatusRepo(conn db.DBTX) *SQLiteStatusRepo {
	return &SQLiteStatusRepo{db: conn}
}

const statusColumns = `id, project_id, name, category, color, sort_order`

func (r *SQLiteStatusRepo) Create(ctx context.Context, s *domain.Status) error {
	query := `INSERT INTO statuses (` + statusColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		nullableStringToValue(s.ProjectID),
		s.Name,
		string(s.Category),
		s.Color,
		s.Order,
	)
	if err != nil {
		return fmt.Errorf("inserting status: %w", err)
	}
	return nil
}

func (r *SQLiteStatusRepo) GetByID(ctx context.Context, id string) (*domain.Status, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+statusColumns+` FROM statuses WHERE id = ?`, id)

	s, err := scanStatus(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("status not found")
		}
		return nil, fmt.Errorf("scanning status: %w", err)
	}
	return s, nil
}

func (r *SQLiteStatusRepo) ListForProject(ctx context.Context, projectID string) ([]*domain.Status, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+statusColumns+` FROM statuses
		WHERE project_id = ? OR project_id IS NULL
		ORDER BY sort_order, name`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing statuses: %w", err)
	}
	defer rows.Close()

	var statuses []*domain.Status
	for rows.Next() {
		s, err := scanStatus(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning status row: %w", err)
		}
		statuses = append(statuses, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating statuses: %w", err)
	}
	return statuses, nil
}

func (r *SQLiteStatusRepo) Update(ctx context.Context, s *domain.Status) error {
	query := `UPDATE statuses SET name = ?, category = ?, color = ?, sort_order = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		s.Name, string(s.Category), s.Color, s.Order, s.ID)
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}
	return nil
}

// Delete removes a status. The schema cascades the deletion to transition
// rows but rejects it while issues still reference the status.
func (r *SQLiteStatusRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM statuses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting status: %w", err)
	}
	return nil
}

func scanStatus(scan func(dest ...any) error) (*domain.Status, error) {
	var s domain.Status
	var projectID sql.NullString
	var category string
	if err := scan(&s.ID, &projectID, &s.Name, &category, &s.Color, &s.Order); err != nil {
		return nil, err
	}
	s.ProjectID = nullStringToPtr(projectID)
	s.Category = domain.StatusCategory(category)
	return &s, nil
}
