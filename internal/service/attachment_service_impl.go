package service

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/ctrack-io/ctrack/internal/domain"
	"github.com/ctrack-io/ctrack/internal/repository"
	"github.com/google/uuid"
)

type attachmentService struct {
	attachments repository.AttachmentRepo
	issues      repository.IssueRepo
	dataDir     string
}

// NewAttachmentService stores attachment files under dataDir/attachments.
func NewAttachmentService(attachments repository.AttachmentRepo, issues repository.IssueRepo, dataDir string) AttachmentService {
	return &attachmentService{attachments: attachments, issues: issues, dataDir: dataDir}
}

func (s *attachmentService) Attach(ctx context.Context, issueID, srcPath string, uploaderID *string) (*domain.Attachment, error) {
	issue, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		return nil, err
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return nil, fmt.Errorf("opening attachment source: %w", err)
	}
	defer src.Close()

	id := uuid.New().String()
	filename := filepath.Base(srcPath)
	dir := filepath.Join(s.dataDir, "attachments", issue.Key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating attachment directory: %w", err)
	}

	// Prefix with the attachment ID so repeated uploads of the same
	// filename never collide.
	storedPath := filepath.Join(dir, id+"-"+filename)
	dst, err := os.Create(storedPath)
	if err != nil {
		return nil, fmt.Errorf("creating attachment file: %w", err)
	}
	defer dst.Close()

	size, err := io.Copy(dst, src)
	if err != nil {
		os.Remove(storedPath)
		return nil, fmt.Errorf("copying attachment: %w", err)
	}

	a := &domain.Attachment{
		ID:          id,
		IssueID:     issueID,
		UploaderID:  uploaderID,
		Filename:    filename,
		StoredPath:  storedPath,
		Size:        size,
		ContentType: mime.TypeByExtension(filepath.Ext(filename)),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.attachments.Create(ctx, a); err != nil {
		os.Remove(storedPath)
		return nil, err
	}
	return a, nil
}

func (s *attachmentService) ListByIssue(ctx context.Context, issueID string) ([]*domain.Attachment, error) {
	return s.attachments.ListByIssue(ctx, issueID)
}

func (s *attachmentService) Remove(ctx context.Context, id string) error {
	a, err := s.attachments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.attachments.Delete(ctx, id); err != nil {
		return err
	}
	if err := os.Remove(a.StoredPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing stored file: %w", err)
	}
	return nil
}
