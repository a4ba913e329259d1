package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ctrack-io/ctrack/internal/db"
	"github.com/ctrack-io/ctrack/internal/domain"
	"github.com/ctrack-io/ctrack/internal/repository"
	"github.com/google/uuid"
)

type sprintService struct {
	sprints  repository.SprintRepo
	issues   repository.IssueRepo
	statuses repository.StatusRepo
	uow      db.UnitOfWork
	obs      UseCaseObserver
}

func NewSprintService(
	sprints repository.SprintRepo,
	issues repository.IssueRepo,
	statuses repository.StatusRepo,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) SprintService {
	return &sprintService{
		sprints:  sprints,
		issues:   issues,
		statuses: statuses,
		uow:      uow,
		obs:      useCaseObserverOrNoop(observers),
	}
}

func (s *sprintService) Create(ctx context.Context, sp *domain.Sprint) error {
	sp.Name = strings.TrimSpace(sp.Name)
	if sp.Name == "" {
		return fmt.Errorf("sprint name is required")
	}
	if err := sp.ValidateDates(); err != nil {
		return err
	}
	if sp.ID == "" {
		sp.ID = uuid.New().String()
	}
	if sp.Status == "" {
		sp.Status = domain.SprintPlanned
	}
	now := time.Now().UTC()
	sp.CreatedAt = now
	sp.UpdatedAt = now
	return s.sprints.Create(ctx, sp)
}

func (s *sprintService) GetByID(ctx context.Context, id string) (*domain.Sprint, error) {
	return s.sprints.GetByID(ctx, id)
}

func (s *sprintService) ListByProject(ctx context.Context, projectID string, status domain.SprintStatus) ([]*domain.Sprint, error) {
	return s.sprints.ListByProject(ctx, projectID, status)
}

func (s *sprintService) Active(ctx context.Context, projectID string) (*domain.Sprint, error) {
	return s.sprints.GetActive(ctx, projectID)
}

func (s *sprintService) Update(ctx context.Context, sp *domain.Sprint) error {
	if err := sp.ValidateDates(); err != nil {
		return err
	}
	sp.UpdatedAt = time.Now().UTC()
	return s.sprints.Update(ctx, sp)
}

func (s *sprintService) Delete(ctx context.Context, id string) error {
	sp, err := s.sprints.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if sp.Status == domain.SprintActive {
		return fmt.Errorf("an active sprint cannot be deleted; complete it first")
	}
	return s.sprints.Delete(ctx, id)
}

func (s *sprintService) Start(ctx context.Context, id string) error {
	fields := map[string]any{"sprint_id": id}
	return observe(ctx, s.obs, "sprint.start", fields, func() error {
		return s.start(ctx, id)
	})
}

func (s *sprintService) start(ctx context.Context, id string) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txSprints := repository.NewSQLiteSprintRepo(tx)
		txIssues := repository.NewSQLiteIssueRepo(tx)

		sp, err := txSprints.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if sp.Status != domain.SprintPlanned {
			return fmt.Errorf("only a planned sprint can be started (sprint is %s)", sp.Status)
		}
		if active, err := txSprints.GetActive(ctx, sp.ProjectID); err != nil {
			return err
		} else if active != nil {
			return fmt.Errorf("sprint %q is already active; complete it first", active.Name)
		}

		// Snapshot the committed story points at start.
		issues, err := txIssues.ListBySprint(ctx, sp.ID)
		if err != nil {
			return err
		}
		committed := sumStoryPoints(issues)

		sp.Status = domain.SprintActive
		sp.InitialStoryPoints = &committed
		sp.UpdatedAt = time.Now().UTC()
		return txSprints.Update(ctx, sp)
	})
}

func (s *sprintService) Complete(ctx context.Context, id string, targetSprintID *string) (*CompletionResult, error) {
	var result *CompletionResult
	fields := map[string]any{"sprint_id": id}
	err := observe(ctx, s.obs, "sprint.complete", fields, func() error {
		var err error
		result, err = s.complete(ctx, id, targetSprintID)
		return err
	})
	return result, err
}

func (s *sprintService) complete(ctx context.Context, id string, targetSprintID *string) (*CompletionResult, error) {
	var result CompletionResult

	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txSprints := repository.NewSQLiteSprintRepo(tx)
		txIssues := repository.NewSQLiteIssueRepo(tx)
		txStatuses := repository.NewSQLiteStatusRepo(tx)

		sp, err := txSprints.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if sp.Status != domain.SprintActive {
			return fmt.Errorf("only an active sprint can be completed (sprint is %s)", sp.Status)
		}

		if targetSprintID != nil {
			target, err := txSprints.GetByID(ctx, *targetSprintID)
			if err != nil {
				return err
			}
			if target.ID == sp.ID {
				return fmt.Errorf("a sprint cannot carry issues over to itself")
			}
			if target.ProjectID != sp.ProjectID {
				return fmt.Errorf("target sprint belongs to a different project")
			}
			if target.Status == domain.SprintCompleted {
				return fmt.Errorf("target sprint %q is already completed", target.Name)
			}
		}

		doneStatusIDs, err := doneStatusIDsForProject(ctx, txStatuses, sp.ProjectID)
		if err != nil {
			return err
		}

		issues, err := txIssues.ListBySprint(ctx, sp.ID)
		if err != nil {
			return err
		}
		doneSet := make(map[string]bool, len(doneStatusIDs))
		for _, sid := range doneStatusIDs {
			doneSet[sid] = true
		}
		completed := 0
		for _, issue := range issues {
			if doneSet[issue.StatusID] && issue.StoryPoints != nil {
				completed += *issue.StoryPoints
			}
		}

		moved, err := txIssues.MoveIncomplete(ctx, sp.ID, targetSprintID, doneStatusIDs)
		if err != nil {
			return err
		}

		sp.Status = domain.SprintCompleted
		sp.CompletedStoryPoints = &completed
		sp.UpdatedAt = time.Now().UTC()
		if err := txSprints.Update(ctx, sp); err != nil {
			return err
		}

		result = CompletionResult{Sprint: sp, CompletedPoints: completed, MovedIssues: moved}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func sumStoryPoints(issues []*domain.Issue) int {
	total := 0
	for _, i := range issues {
		if i.StoryPoints != nil {
			total += *i.StoryPoints
		}
	}
	return total
}

func doneStatusIDsForProject(ctx context.Context, statuses repository.StatusRepo, projectID string) ([]string, error) {
	all, err := statuses.ListForProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	var done []string
	for _, st := range all {
		if st.Category == domain.CategoryDone {
			done = append(done, st.ID)
		}
	}
	return done, nil
}
