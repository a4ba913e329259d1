package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ctrack-io/ctrack/internal/db"
	"github.com/ctrack-io/ctrack/internal/domain"
)

// SQLiteProjectRepo implements ProjectRepo using a SQLite database.
type SQLiteProjectRepo struct {
	db db.DBTX
}

// NewSQLiteProjectRepo creates a new SQLiteProjectRepo.
func NewSQLiteProjectRepo(conn db.DBTX) *SQLiteProjectRepo {
	return &SQLiteProjectRepo{db: conn}
}

const projectColumns = `id, key, name, description, owner_id, is_archived, created_at, updated_at`

func (r *SQLiteProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	query := `INSERT INTO projects (` + projectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.Key,
		p.Name,
		p.Description,
		p.OwnerID,
		boolToInt(p.IsArchived),
		p.CreatedAt.Format(time.RFC3339),
		p.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}
	return nil
}

func (r *SQLiteProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	return scanProject(row)
}

func (r *SQLiteProjectRepo) GetByKey(ctx context.Context, key string) (*domain.Project, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE UPPER(key) = UPPER(?)`, key)
	return scanProject(row)
}

func (r *SQLiteProjectRepo) List(ctx context.Context, includeArchived bool) ([]*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	if !includeArchived {
		query += ` WHERE is_archived = 0`
	}
	query += ` ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p, err := scanProjectFromRows(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return projects, nil
}

func (r *SQLiteProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	query := `UPDATE projects SET key = ?, name = ?, description = ?, is_archived = ?, updated_at = ?
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		p.Key,
		p.Name,
		p.Description,
		boolToInt(p.IsArchived),
		p.UpdatedAt.Format(time.RFC3339),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating project: %w", err)
	}
	return nil
}

func (r *SQLiteProjectRepo) Archive(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE projects SET is_archived = 1, updated_at = ? WHERE id = ?`, nowUTC(), id)
	if err != nil {
		return fmt.Errorf("archiving project: %w", err)
	}
	return nil
}

func (r *SQLiteProjectRepo) Unarchive(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE projects SET is_archived = 0, updated_at = ? WHERE id = ?`, nowUTC(), id)
	if err != nil {
		return fmt.Errorf("unarchiving project: %w", err)
	}
	return nil
}

func (r *SQLiteProjectRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	return nil
}

func (r *SQLiteProjectRepo) AddMember(ctx context.Context, m *domain.ProjectMember) error {
	query := `INSERT INTO project_members (project_id, user_id, role, joined_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(project_id, user_id) DO UPDATE SET role = excluded.role`
	_, err := r.db.ExecContext(ctx, query,
		m.ProjectID, m.UserID, string(m.Role), m.JoinedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("adding project member: %w", err)
	}
	return nil
}

func (r *SQLiteProjectRepo) RemoveMember(ctx context.Context, projectID, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM project_members WHERE project_id = ? AND user_id = ?`, projectID, userID)
	if err != nil {
		return fmt.Errorf("removing project member: %w", err)
	}
	return nil
}

func (r *SQLiteProjectRepo) GetMember(ctx context.Context, projectID, userID string) (*domain.ProjectMember, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT project_id, user_id, role, joined_at FROM project_members
		WHERE project_id = ? AND user_id = ?`, projectID, userID)

	var m domain.ProjectMember
	var roleStr, joinedAtStr string
	err := row.Scan(&m.ProjectID, &m.UserID, &roleStr, &joinedAtStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user is not a member of this project")
		}
		return nil, fmt.Errorf("scanning project member: %w", err)
	}
	m.Role = domain.ProjectRole(roleStr)
	m.JoinedAt, _ = time.Parse(time.RFC3339, joinedAtStr)
	return &m, nil
}

func (r *SQLiteProjectRepo) ListMembers(ctx context.Context, projectID string) ([]*domain.ProjectMember, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT project_id, user_id, role, joined_at FROM project_members
		WHERE project_id = ? ORDER BY joined_at`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing project members: %w", err)
	}
	defer rows.Close()

	var members []*domain.ProjectMember
	for rows.Next() {
		var m domain.ProjectMember
		var roleStr, joinedAtStr string
		if err := rows.Scan(&m.ProjectID, &m.UserID, &roleStr, &joinedAtStr); err != nil {
			return nil, fmt.Errorf("scanning project member row: %w", err)
		}
		m.Role = domain.ProjectRole(roleStr)
		m.JoinedAt, _ = time.Parse(time.RFC3339, joinedAtStr)
		members = append(members, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating project members: %w", err)
	}
	return members, nil
}

func scanProject(row *sql.Row) (*domain.Project, error) {
	var p domain.Project
	var archived int
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&p.ID, &p.Key, &p.Name, &p.Description, &p.OwnerID,
		&archived, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("project not found")
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}

	p.IsArchived = intToBool(archived)

	var parseErr error
	p.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	p.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}

	return &p, nil
}

func scanProjectFromRows(rows *sql.Rows) (*domain.Project, error) {
	var p domain.Project
	var archived int
	var createdAtStr, updatedAtStr string

	err := rows.Scan(
		&p.ID, &p.Key, &p.Name, &p.Description, &p.OwnerID,
		&archived, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning project row: %w", err)
	}

	p.IsArchived = intToBool(archived)
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAtStr)

	return &p, nil
}
