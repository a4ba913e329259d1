package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ctrack-io/ctrack/internal/db"
	"github.com/ctrack-io/ctrack/internal/domain"
)

// SQLiteAttachmentRepo implements AttachmentRepo using a SQLite database.
type SQLiteAttachmentRepo struct {
	db db.DBTX
}

// NewSQLiteAttachmentRepo creates a new SQLiteAttachmentRepo.
func NewSQLiteAttachmentRepo(conn db.DBTX) *SQLiteAttachmentRepo {
	return &SQLiteAttachmentRepo{db: conn}
}

const attachmentColumns = `id, issue_id, uploader_id, filename, stored_path, size, content_type, created_at`

func (r *SQLiteAttachmentRepo) Create(ctx context.Context, a *domain.Attachment) error {
	query := `INSERT INTO attachments (` + attachmentColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.IssueID,
		nullableStringToValue(a.UploaderID),
		a.Filename,
		a.StoredPath,
		a.Size,
		a.ContentType,
		a.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting attachment: %w", err)
	}
	return nil
}

func (r *SQLiteAttachmentRepo) GetByID(ctx context.Context, id string) (*domain.Attachment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+attachmentColumns+` FROM attachments WHERE id = ?`, id)
	a, err := scanAttachment(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("attachment not found")
		}
		return nil, fmt.Errorf("scanning attachment: %w", err)
	}
	return a, nil
}

func (r *SQLiteAttachmentRepo) ListByIssue(ctx context.Context, issueID string) ([]*domain.Attachment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+attachmentColumns+` FROM attachments WHERE issue_id = ? ORDER BY created_at`, issueID)
	if err != nil {
		return nil, fmt.Errorf("listing attachments: %w", err)
	}
	defer rows.Close()

	var attachments []*domain.Attachment
	for rows.Next() {
		a, err := scanAttachment(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning attachment row: %w", err)
		}
		attachments = append(attachments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating attachments: %w", err)
	}
	return attachments, nil
}

func (r *SQLiteAttachmentRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM attachments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting attachment: %w", err)
	}
	return nil
}

func scanAttachment(scan func(dest ...any) error) (*domain.Attachment, error) {
	var a domain.Attachment
	var uploaderID sql.NullString
	var createdAtStr string
	err := scan(&a.ID, &a.IssueID, &uploaderID, &a.Filename, &a.StoredPath,
		&a.Size, &a.ContentType, &createdAtStr)
	if err != nil {
		return nil, err
	}
	a.UploaderID = nullStringToPtr(uploaderID)
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)
	return &a, nil
}
