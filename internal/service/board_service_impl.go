package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ctrack-io/ctrack/internal/domain"
	"github.com/ctrack-io/ctrack/internal/repository"
	"github.com/google/uuid"
)

type boardService struct {
	boards  repository.BoardRepo
	issues  repository.IssueRepo
	wf      WorkflowService
	sprints repository.SprintRepo
}

func NewBoardService(
	boards repository.BoardRepo,
	issues repository.IssueRepo,
	wf WorkflowService,
	sprints repository.SprintRepo,
) BoardService {
	return &boardService{boards: boards, issues: issues, wf: wf, sprints: sprints}
}

func (s *boardService) Create(ctx context.Context, b *domain.Board) error {
	b.Name = strings.TrimSpace(b.Name)
	if b.Name == "" {
		return fmt.Errorf("board name is required")
	}
	if b.Type == "" {
		b.Type = domain.BoardKanban
	}
	if b.Type != domain.BoardKanban && b.Type != domain.BoardScrum {
		return fmt.Errorf("unknown board type %q", b.Type)
	}
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if len(b.Columns) == 0 {
		columns, err := s.defaultColumns(ctx, b.ProjectID)
		if err != nil {
			return err
		}
		b.Columns = columns
	}
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	return s.boards.Create(ctx, b)
}

// defaultColumns lays out one column per project status, in status order.
func (s *boardService) defaultColumns(ctx context.Context, projectID string) ([]string, error) {
	statuses, err := s.wf.ListStatuses(ctx, projectID)
	if err != nil {
		return nil, err
	}
	columns := make([]string, 0, len(statuses))
	for _, st := range statuses {
		columns = append(columns, st.ID)
	}
	return columns, nil
}

func (s *boardService) GetByID(ctx context.Context, id string) (*domain.Board, error) {
	return s.boards.GetByID(ctx, id)
}

func (s *boardService) ListByProject(ctx context.Context, projectID string) ([]*domain.Board, error) {
	return s.boards.ListByProject(ctx, projectID)
}

func (s *boardService) Update(ctx context.Context, b *domain.Board) error {
	b.UpdatedAt = time.Now().UTC()
	return s.boards.Update(ctx, b)
}

func (s *boardService) Delete(ctx context.Context, id string) error {
	return s.boards.Delete(ctx, id)
}

func (s *boardService) DefaultForProject(ctx context.Context, projectID string) (*domain.Board, error) {
	boards, err := s.boards.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if len(boards) > 0 {
		return boards[0], nil
	}

	board := &domain.Board{
		ProjectID: projectID,
		Name:      "Board",
		Type:      domain.BoardKanban,
	}
	if err := s.Create(ctx, board); err != nil {
		return nil, err
	}
	return board, nil
}

func (s *boardService) Load(ctx context.Context, boardID string, f domain.BoardFilters) (*domain.BoardData, error) {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}

	// A scrum board without an explicit sprint filter shows the active sprint.
	sprintID := f.SprintID
	if sprintID == "" && board.SprintID != nil {
		sprintID = *board.SprintID
	}
	if sprintID == "" && board.Type == domain.BoardScrum {
		active, err := s.sprints.GetActive(ctx, board.ProjectID)
		if err != nil {
			return nil, err
		}
		if active != nil {
			sprintID = active.ID
		}
	}

	statuses, err := s.wf.ListStatuses(ctx, board.ProjectID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.Status, len(statuses))
	for _, st := range statuses {
		byID[st.ID] = st
	}

	var issues []*domain.Issue
	if sprintID != "" {
		issues, err = s.issues.ListBySprint(ctx, sprintID)
	} else {
		issues, err = s.issues.ListByProject(ctx, board.ProjectID, repository.IssueFilters{})
	}
	if err != nil {
		return nil, err
	}
	issues = filterBoardIssues(issues, f)

	grouped := make(map[string][]*domain.Issue)
	for _, issue := range issues {
		grouped[issue.StatusID] = append(grouped[issue.StatusID], issue)
	}

	columns := make([]domain.BoardColumn, 0, len(board.Columns))
	for _, statusID := range board.Columns {
		st, ok := byID[statusID]
		if !ok {
			// Column references a status that was since deleted.
			continue
		}
		columns = append(columns, domain.BoardColumn{
			Status: *st,
			Issues: grouped[statusID],
		})
	}

	transitions, err := s.wf.ListTransitions(ctx, board.ProjectID)
	if err != nil {
		return nil, err
	}

	return &domain.BoardData{Board: board, Columns: columns, Transitions: transitions}, nil
}

func filterBoardIssues(issues []*domain.Issue, f domain.BoardFilters) []*domain.Issue {
	var out []*domain.Issue
	search := strings.ToLower(f.Search)
	for _, i := range issues {
		if f.Unassigned && i.AssigneeID != nil {
			continue
		}
		if f.AssigneeID != "" && (i.AssigneeID == nil || *i.AssigneeID != f.AssigneeID) {
			continue
		}
		if f.IssueType != "" && i.Type != f.IssueType {
			continue
		}
		if f.Priority != "" && i.Priority != f.Priority {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(i.Title), search) &&
			!strings.Contains(strings.ToLower(i.Key), search) {
			continue
		}
		out = append(out, i)
	}
	return out
}
