package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ctrack-io/ctrack/internal/db"
	"github.com/ctrack-io/ctrack/internal/domain"
	"github.com/ctrack-io/ctrack/internal/importer"
	"github.com/ctrack-io/ctrack/internal/repository"
)

type importService struct {
	uow db.UnitOfWork
}

func NewImportService(uow db.UnitOfWork) ImportService {
	return &importService{uow: uow}
}

func (s *importService) ImportProject(ctx context.Context, filePath, ownerID string) (*ImportResult, error) {
	schema, err := importer.LoadImportSchema(filePath)
	if err != nil {
		return nil, fmt.Errorf("loading import file: %w", err)
	}

	if errs := importer.ValidateImportSchema(schema); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}

	bundle, err := importer.Convert(schema, ownerID)
	if err != nil {
		return nil, fmt.Errorf("converting import schema: %w", err)
	}

	// The whole import commits or none of it does.
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txProjects := repository.NewSQLiteProjectRepo(tx)
		txStatuses := repository.NewSQLiteStatusRepo(tx)
		txTransitions := repository.NewSQLiteTransitionRepo(tx)
		txSprints := repository.NewSQLiteSprintRepo(tx)
		txIssues := repository.NewSQLiteIssueRepo(tx)

		if err := txProjects.Create(ctx, bundle.Project); err != nil {
			return fmt.Errorf("creating project: %w", err)
		}
		if err := txProjects.AddMember(ctx, &domain.ProjectMember{
			ProjectID: bundle.Project.ID,
			UserID:    ownerID,
			Role:      domain.RoleAdmin,
			JoinedAt:  time.Now().UTC(),
		}); err != nil {
			return fmt.Errorf("adding project owner: %w", err)
		}

		for _, st := range bundle.Statuses {
			if err := txStatuses.Create(ctx, st); err != nil {
				return fmt.Errorf("creating status %q: %w", st.Name, err)
			}
		}
		for _, tr := range bundle.Transitions {
			if err := txTransitions.Create(ctx, tr); err != nil {
				return fmt.Errorf("creating transition: %w", err)
			}
		}
		for _, sp := range bundle.Sprints {
			if err := txSprints.Create(ctx, sp); err != nil {
				return fmt.Errorf("creating sprint %q: %w", sp.Name, err)
			}
		}
		for _, issue := range bundle.Issues {
			if err := txIssues.Create(ctx, issue); err != nil {
				return fmt.Errorf("creating issue %q: %w", issue.Key, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ImportResult{
		Project:         bundle.Project,
		StatusCount:     len(bundle.Statuses),
		TransitionCount: len(bundle.Transitions),
		SprintCount:     len(bundle.Sprints),
		IssueCount:      len(bundle.Issues),
	}, nil
}

func formatValidationErrors(errs []error) error {
	msg := fmt.Sprintf("import validation failed (%d errors):", len(errs))
	for _, e := range errs {
		msg += "\n  - " + e.Error()
	}
	return fmt.Errorf("%s", msg)
}
