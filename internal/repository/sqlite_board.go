package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ctrack-io/ctrack/internal/db"
	"github.com/ctrack-io/ctrack/internal/domain"
)

// SQLiteBoardRepo implements BoardRepo using a SQLite database. The column
// layout is stored as a JSON array of status IDs.
type SQLiteBoardRepo struct {
	db db.DBTX
}

// NewSQLiteBoardRepo creates a new SQLiteBoardRepo.
func NewSQLiteBoardRepo(conn db.DBTX) *SQLiteBoardRepo {
	return &SQLiteBoardRepo{db: conn}
}

const boardColumns = `id, project_id, name, board_type, columns, sprint_id, created_at, updated_at`

func (r *SQLiteBoardRepo) Create(ctx context.Context, b *domain.Board) error {
	columns, err := json.Marshal(b.Columns)
	if err != nil {
		return fmt.Errorf("marshaling board columns: %w", err)
	}
	query := `INSERT INTO boards (` + boardColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		b.ID,
		b.ProjectID,
		b.Name,
		string(b.Type),
		string(columns),
		nullableStringToValue(b.SprintID),
		b.CreatedAt.Format(time.RFC3339),
		b.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting board: %w", err)
	}
	return nil
}

func (r *SQLiteBoardRepo) GetByID(ctx context.Context, id string) (*domain.Board, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+boardColumns+` FROM boards WHERE id = ?`, id)
	b, err := scanBoard(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("board not found")
		}
		return nil, fmt.Errorf("scanning board: %w", err)
	}
	return b, nil
}

func (r *SQLiteBoardRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.Board, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+boardColumns+` FROM boards WHERE project_id = ? ORDER BY created_at`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing boards: %w", err)
	}
	defer rows.Close()

	var boards []*domain.Board
	for rows.Next() {
		b, err := scanBoard(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning board row: %w", err)
		}
		boards = append(boards, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating boards: %w", err)
	}
	return boards, nil
}

func (r *SQLiteBoardRepo) Update(ctx context.Context, b *domain.Board) error {
	columns, err := json.Marshal(b.Columns)
	if err != nil {
		return fmt.Errorf("marshaling board columns: %w", err)
	}
	query := `UPDATE boards SET name = ?, board_type = ?, columns = ?, sprint_id = ?, updated_at = ?
		WHERE id = ?`
	_, err = r.db.ExecContext(ctx, query,
		b.Name,
		string(b.Type),
		string(columns),
		nullableStringToValue(b.SprintID),
		b.UpdatedAt.Format(time.RFC3339),
		b.ID,
	)
	if err != nil {
		return fmt.Errorf("updating board: %w", err)
	}
	return nil
}

func (r *SQLiteBoardRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM boards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting board: %w", err)
	}
	return nil
}

func scanBoard(scan func(dest ...any) error) (*domain.Board, error) {
	var b domain.Board
	var boardType, columns, createdAtStr, updatedAtStr string
	var sprintID sql.NullString
	err := scan(&b.ID, &b.ProjectID, &b.Name, &boardType, &columns,
		&sprintID, &createdAtStr, &updatedAtStr)
	if err != nil {
		return nil, err
	}
	b.Type = domain.BoardType(boardType)
	b.SprintID = nullStringToPtr(sprintID)
	b.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)
	b.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAtStr)

	if err := json.Unmarshal([]byte(columns), &b.Columns); err != nil {
		return nil, fmt.Errorf("parsing board columns for %s: %w", b.ID, err)
	}
	return &b, nil
}
