package service

import (
	"context"
	"fmt"

	"github.com/ctrack-io/ctrack/internal/domain"
	"github.com/ctrack-io/ctrack/internal/repository"
	"github.com/ctrack-io/ctrack/internal/workflow"
	"github.com/google/uuid"
)

type workflowService struct {
	statuses    repository.StatusRepo
	transitions repository.TransitionRepo
}

func NewWorkflowService(statuses repository.StatusRepo, transitions repository.TransitionRepo) WorkflowService {
	return &workflowService{statuses: statuses, transitions: transitions}
}

func (s *workflowService) CreateStatus(ctx context.Context, st *domain.Status) error {
	if st.Name == "" {
		return fmt.Errorf("status name is required")
	}
	switch st.Category {
	case domain.CategoryTodo, domain.CategoryInProgress, domain.CategoryDone:
	default:
		return fmt.Errorf("unknown status category %q", st.Category)
	}
	if st.ID == "" {
		st.ID = uuid.New().String()
	}
	return s.statuses.Create(ctx, st)
}

func (s *workflowService) UpdateStatus(ctx context.Context, st *domain.Status) error {
	existing, err := s.statuses.GetByID(ctx, st.ID)
	if err != nil {
		return err
	}
	if existing.IsGlobal() {
		return fmt.Errorf("global statuses cannot be modified")
	}
	return s.statuses.Update(ctx, st)
}

func (s *workflowService) DeleteStatus(ctx context.Context, id string) error {
	existing, err := s.statuses.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.IsGlobal() {
		return fmt.Errorf("global statuses cannot be deleted")
	}
	return s.statuses.Delete(ctx, id)
}

func (s *workflowService) ListStatuses(ctx context.Context, projectID string) ([]*domain.Status, error) {
	return s.statuses.ListForProject(ctx, projectID)
}

func (s *workflowService) AddTransition(ctx context.Context, t *domain.WorkflowTransition) error {
	if t.FromStatusID == t.ToStatusID {
		return fmt.Errorf("a transition cannot start and end on the same status")
	}
	for _, id := range []string{t.FromStatusID, t.ToStatusID} {
		st, err := s.statuses.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("transition references unknown status %s", id)
		}
		if !st.IsGlobal() && *st.ProjectID != t.ProjectID {
			return fmt.Errorf("status %q belongs to a different project", st.Name)
		}
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return s.transitions.Create(ctx, t)
}

func (s *workflowService) RemoveTransition(ctx context.Context, id string) error {
	return s.transitions.Delete(ctx, id)
}

func (s *workflowService) ListTransitions(ctx context.Context, projectID string) ([]*domain.WorkflowTransition, error) {
	return s.transitions.ListByProject(ctx, projectID)
}

func (s *workflowService) Registry(ctx context.Context, projectID string) (*workflow.Registry, error) {
	statuses, err := s.statuses.ListForProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	rules, err := s.transitions.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	ordered := make([]domain.Status, 0, len(statuses))
	for _, st := range statuses {
		ordered = append(ordered, *st)
	}
	return workflow.NewRegistry(ordered, rules), nil
}
