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

const commentPreviewLen = 80

type issueService struct {
	issues   repository.IssueRepo
	comments repository.CommentRepo
	projects ProjectService
	wf       WorkflowService
	users    repository.UserRepo
	sprints  repository.SprintRepo
	uow      db.UnitOfWork
	obs      UseCaseObserver
}

func NewIssueService(
	issues repository.IssueRepo,
	comments repository.CommentRepo,
	projects ProjectService,
	wf WorkflowService,
	users repository.UserRepo,
	sprints repository.SprintRepo,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) IssueService {
	return &issueService{
		issues:   issues,
		comments: comments,
		projects: projects,
		wf:       wf,
		users:    users,
		sprints:  sprints,
		uow:      uow,
		obs:      useCaseObserverOrNoop(observers),
	}
}

func (s *issueService) Create(ctx context.Context, i *domain.Issue) error {
	i.Title = strings.TrimSpace(i.Title)
	if i.Title == "" {
		return fmt.Errorf("issue title is required")
	}
	if i.Type == "" {
		i.Type = "task"
	}
	if !domain.ValidIssueTypes[i.Type] {
		return fmt.Errorf("unknown issue type %q", i.Type)
	}
	if i.Priority == "" {
		i.Priority = domain.PriorityMedium
	}
	if !domain.ValidPriorities[string(i.Priority)] {
		return fmt.Errorf("unknown priority %q", i.Priority)
	}

	project, err := s.projects.GetByID(ctx, i.ProjectID)
	if err != nil {
		return err
	}
	if project.IsArchived {
		return fmt.Errorf("project %s is archived", project.Key)
	}

	if i.StatusID == "" {
		first, err := s.firstTodoStatus(ctx, i.ProjectID)
		if err != nil {
			return err
		}
		i.StatusID = first
	}

	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	i.CreatedAt = now
	i.UpdatedAt = now

	// Number allocation, insert, and the created activity commit atomically
	// so a failed insert never burns a key.
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txSequences := repository.NewSQLiteIssueSequenceRepo(tx)
		txIssues := repository.NewSQLiteIssueRepo(tx)
		txActivities := repository.NewSQLiteActivityRepo(tx)

		number, err := txSequences.NextIssueNumber(ctx, i.ProjectID)
		if err != nil {
			return err
		}
		i.Number = number
		i.Key = domain.MakeIssueKey(project.Key, number)

		if err := txIssues.Create(ctx, i); err != nil {
			return err
		}
		return recordActivity(ctx, txActivities, i.ID, &i.ReporterID,
			&domain.CreatedPayload{IssueKey: i.Key, Title: i.Title})
	})
}

// firstTodoStatus picks the default status for new issues: the lowest-ordered
// todo-category status visible to the project.
func (s *issueService) firstTodoStatus(ctx context.Context, projectID string) (string, error) {
	statuses, err := s.wf.ListStatuses(ctx, projectID)
	if err != nil {
		return "", err
	}
	for _, st := range statuses {
		if st.Category == domain.CategoryTodo {
			return st.ID, nil
		}
	}
	return "", fmt.Errorf("project has no todo-category status for new issues")
}

func (s *issueService) GetByKey(ctx context.Context, key string) (*domain.Issue, error) {
	return s.issues.GetByKey(ctx, key)
}

func (s *issueService) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	return s.issues.GetByID(ctx, id)
}

func (s *issueService) ListByProject(ctx context.Context, projectID string, f repository.IssueFilters) ([]*domain.Issue, error) {
	return s.issues.ListByProject(ctx, projectID, f)
}

func (s *issueService) ListBacklog(ctx context.Context, projectID string) ([]*domain.Issue, error) {
	return s.issues.ListBacklog(ctx, projectID)
}

func (s *issueService) Update(ctx context.Context, i *domain.Issue, actorID string) error {
	if !domain.ValidIssueTypes[i.Type] {
		return fmt.Errorf("unknown issue type %q", i.Type)
	}
	if !domain.ValidPriorities[string(i.Priority)] {
		return fmt.Errorf("unknown priority %q", i.Priority)
	}

	old, err := s.issues.GetByID(ctx, i.ID)
	if err != nil {
		return err
	}
	if i.StatusID != old.StatusID {
		return fmt.Errorf("status cannot be changed by edit; use move")
	}

	changes := diffIssueFields(old, i)
	typeChanged := old.Type != i.Type
	priorityChanged := old.Priority != i.Priority

	i.UpdatedAt = time.Now().UTC()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txIssues := repository.NewSQLiteIssueRepo(tx)
		txActivities := repository.NewSQLiteActivityRepo(tx)

		if err := txIssues.Update(ctx, i); err != nil {
			return err
		}
		if len(changes) > 0 {
			if err := recordActivity(ctx, txActivities, i.ID, &actorID,
				&domain.UpdatedPayload{Changes: changes}); err != nil {
				return err
			}
		}
		if typeChanged {
			if err := recordActivity(ctx, txActivities, i.ID, &actorID,
				&domain.TypeChangedPayload{From: old.Type, To: i.Type}); err != nil {
				return err
			}
		}
		if priorityChanged {
			if err := recordActivity(ctx, txActivities, i.ID, &actorID,
				&domain.PriorityChangedPayload{From: old.Priority, To: i.Priority}); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *issueService) Delete(ctx context.Context, id string) error {
	return s.issues.Delete(ctx, id)
}

func (s *issueService) Move(ctx context.Context, issueID, toStatusID, actorID string) error {
	fields := map[string]any{"issue_id": issueID, "to_status": toStatusID}
	return observe(ctx, s.obs, "issue.move", fields, func() error {
		return s.move(ctx, issueID, toStatusID, actorID)
	})
}

func (s *issueService) move(ctx context.Context, issueID, toStatusID, actorID string) error {
	issue, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		return err
	}

	registry, err := s.wf.Registry(ctx, issue.ProjectID)
	if err != nil {
		return err
	}

	statuses := registry.Statuses()
	var from, to *domain.Status
	for idx := range statuses {
		st := &statuses[idx]
		switch st.ID {
		case issue.StatusID:
			from = st
		case toStatusID:
			to = st
		}
	}
	if to == nil {
		return fmt.Errorf("unknown status %s", toStatusID)
	}
	if from == nil {
		return fmt.Errorf("issue %s has a status outside its project's workflow", issue.Key)
	}

	if !registry.Allowed(issue.StatusID, toStatusID) {
		return fmt.Errorf("transition %s -> %s is not allowed by the project workflow", from.Name, to.Name)
	}

	// The matching rule may further restrict who can execute it.
	if !registry.Unconstrained() {
		role, err := s.projects.MemberRole(ctx, issue.ProjectID, actorID)
		if err != nil {
			return err
		}
		rules, err := s.wf.ListTransitions(ctx, issue.ProjectID)
		if err != nil {
			return err
		}
		for _, rule := range rules {
			if rule.FromStatusID == issue.StatusID && rule.ToStatusID == toStatusID {
				if !rule.RoleAllowed(role) {
					return fmt.Errorf("role %s may not execute transition %s -> %s", role, from.Name, to.Name)
				}
				break
			}
		}
	}

	issue.StatusID = toStatusID
	issue.UpdatedAt = time.Now().UTC()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txIssues := repository.NewSQLiteIssueRepo(tx)
		txActivities := repository.NewSQLiteActivityRepo(tx)

		if err := txIssues.Update(ctx, issue); err != nil {
			return err
		}
		return recordActivity(ctx, txActivities, issue.ID, &actorID,
			&domain.StatusChangedPayload{
				FromStatusID: from.ID,
				FromName:     from.Name,
				FromCategory: from.Category,
				ToStatusID:   to.ID,
				ToName:       to.Name,
				ToCategory:   to.Category,
			})
	})
}

func (s *issueService) AvailableTransitions(ctx context.Context, issueID, actorID string) ([]*domain.Status, error) {
	issue, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		return nil, err
	}
	registry, err := s.wf.Registry(ctx, issue.ProjectID)
	if err != nil {
		return nil, err
	}

	allowedByRole := func(toStatusID string) bool { return true }
	if !registry.Unconstrained() {
		role, err := s.projects.MemberRole(ctx, issue.ProjectID, actorID)
		if err != nil {
			return nil, err
		}
		rules, err := s.wf.ListTransitions(ctx, issue.ProjectID)
		if err != nil {
			return nil, err
		}
		allowedByRole = func(toStatusID string) bool {
			for _, rule := range rules {
				if rule.FromStatusID == issue.StatusID && rule.ToStatusID == toStatusID {
					return rule.RoleAllowed(role)
				}
			}
			return true
		}
	}

	statuses := registry.Statuses()
	byID := make(map[string]*domain.Status, len(statuses))
	for idx := range statuses {
		byID[statuses[idx].ID] = &statuses[idx]
	}

	var targets []*domain.Status
	for _, id := range registry.AvailableFrom(issue.StatusID) {
		if allowedByRole(id) {
			targets = append(targets, byID[id])
		}
	}
	return targets, nil
}

func (s *issueService) Assign(ctx context.Context, issueID string, assigneeID *string, actorID string) error {
	issue, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		return err
	}
	if strPtrEqual(issue.AssigneeID, assigneeID) {
		return nil
	}

	payload := &domain.AssignedPayload{FromUserID: issue.AssigneeID, ToUserID: assigneeID}
	if issue.AssigneeID != nil {
		if u, err := s.users.GetByID(ctx, *issue.AssigneeID); err == nil {
			payload.FromName = u.Label()
		}
	}
	if assigneeID != nil {
		u, err := s.users.GetByID(ctx, *assigneeID)
		if err != nil {
			return fmt.Errorf("assignee: %w", err)
		}
		payload.ToName = u.Label()
	}

	issue.AssigneeID = assigneeID
	issue.UpdatedAt = time.Now().UTC()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txIssues := repository.NewSQLiteIssueRepo(tx)
		txActivities := repository.NewSQLiteActivityRepo(tx)
		if err := txIssues.Update(ctx, issue); err != nil {
			return err
		}
		return recordActivity(ctx, txActivities, issue.ID, &actorID, payload)
	})
}

func (s *issueService) SetSprint(ctx context.Context, issueID string, sprintID *string, actorID string) error {
	issue, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		return err
	}
	if strPtrEqual(issue.SprintID, sprintID) {
		return nil
	}

	payload := &domain.SprintChangedPayload{FromSprintID: issue.SprintID, ToSprintID: sprintID}
	if issue.SprintID != nil {
		if sp, err := s.sprints.GetByID(ctx, *issue.SprintID); err == nil {
			payload.FromName = sp.Name
		}
	}
	if sprintID != nil {
		sprint, err := s.sprints.GetByID(ctx, *sprintID)
		if err != nil {
			return err
		}
		if sprint.ProjectID != issue.ProjectID {
			return fmt.Errorf("sprint %s belongs to a different project", sprint.Name)
		}
		if sprint.Status == domain.SprintCompleted {
			return fmt.Errorf("sprint %s is already completed", sprint.Name)
		}
		payload.ToName = sprint.Name
	}

	issue.SprintID = sprintID
	issue.UpdatedAt = time.Now().UTC()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txIssues := repository.NewSQLiteIssueRepo(tx)
		txActivities := repository.NewSQLiteActivityRepo(tx)
		if err := txIssues.Update(ctx, issue); err != nil {
			return err
		}
		return recordActivity(ctx, txActivities, issue.ID, &actorID, payload)
	})
}

func (s *issueService) AddComment(ctx context.Context, issueID, authorID, content string) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("comment content is required")
	}
	if _, err := s.issues.GetByID(ctx, issueID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	comment := &domain.Comment{
		ID:        uuid.New().String(),
		IssueID:   issueID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	preview := content
	if len(preview) > commentPreviewLen {
		preview = preview[:commentPreviewLen]
	}

	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txComments := repository.NewSQLiteCommentRepo(tx)
		txActivities := repository.NewSQLiteActivityRepo(tx)
		if err := txComments.Create(ctx, comment); err != nil {
			return err
		}
		return recordActivity(ctx, txActivities, issueID, &authorID,
			&domain.CommentedPayload{CommentID: comment.ID, Preview: preview})
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *issueService) ListComments(ctx context.Context, issueID string) ([]*domain.Comment, error) {
	return s.comments.ListByIssue(ctx, issueID)
}

func (s *issueService) DeleteComment(ctx context.Context, commentID string) error {
	return s.comments.Delete(ctx, commentID)
}
