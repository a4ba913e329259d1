package repository

import (
	"context"
	"time"

	"github.com/ctrack-io/ctrack/internal/domain"
)

type UserRepo interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	GetByKey(ctx context.Context, key string) (*domain.Project, error)
	List(ctx context.Context, includeArchived bool) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	Archive(ctx context.Context, id string) error
	Unarchive(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error

	AddMember(ctx context.Context, m *domain.ProjectMember) error
	RemoveMember(ctx context.Context, projectID, userID string) error
	GetMember(ctx context.Context, projectID, userID string) (*domain.ProjectMember, error)
	ListMembers(ctx context.Context, projectID string) ([]*domain.ProjectMember, error)
}

type StatusRepo interface {
	Create(ctx context.Context, s *domain.Status) error
	GetByID(ctx context.Context, id string) (*domain.Status, error)
	// ListForProject returns the project's own statuses plus the global
	// defaults, ordered by sort order.
	ListForProject(ctx context.Context, projectID string) ([]*domain.Status, error)
	Update(ctx context.Context, s *domain.Status) error
	Delete(ctx context.Context, id string) error
}

type TransitionRepo interface {
	Create(ctx context.Context, t *domain.WorkflowTransition) error
	GetByID(ctx context.Context, id string) (*domain.WorkflowTransition, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.WorkflowTransition, error)
	Update(ctx context.Context, t *domain.WorkflowTransition) error
	Delete(ctx context.Context, id string) error
}

// IssueFilters narrows ListByProject. Zero values mean no filter.
type IssueFilters struct {
	StatusID   string
	Type       string
	AssigneeID string
	Priority   domain.Priority
	EpicID     string
	Search     string
}

type IssueRepo interface {
	Create(ctx context.Context, i *domain.Issue) error
	GetByID(ctx context.Context, id string) (*domain.Issue, error)
	GetByKey(ctx context.Context, key string) (*domain.Issue, error)
	ListByProject(ctx context.Context, projectID string, f IssueFilters) ([]*domain.Issue, error)
	ListBySprint(ctx context.Context, sprintID string) ([]*domain.Issue, error)
	// ListBacklog returns issues not assigned to any planned or active sprint,
	// ordered by priority then recency.
	ListBacklog(ctx context.Context, projectID string) ([]*domain.Issue, error)
	Update(ctx context.Context, i *domain.Issue) error
	Delete(ctx context.Context, id string) error

	// ClearSprint detaches all incomplete issues from a sprint (nil target)
	// or moves them to the target sprint. Returns the number of issues moved.
	MoveIncomplete(ctx context.Context, sprintID string, target *string, doneStatusIDs []string) (int, error)
}

// IssueSequenceRepo allocates per-project issue numbers.
type IssueSequenceRepo interface {
	NextIssueNumber(ctx context.Context, projectID string) (int, error)
}

type SprintRepo interface {
	Create(ctx context.Context, s *domain.Sprint) error
	GetByID(ctx context.Context, id string) (*domain.Sprint, error)
	ListByProject(ctx context.Context, projectID string, status domain.SprintStatus) ([]*domain.Sprint, error)
	GetActive(ctx context.Context, projectID string) (*domain.Sprint, error)
	ListCompleted(ctx context.Context, projectID string, limit int) ([]*domain.Sprint, error)
	Update(ctx context.Context, s *domain.Sprint) error
	Delete(ctx context.Context, id string) error
}

type CommentRepo interface {
	Create(ctx context.Context, c *domain.Comment) error
	GetByID(ctx context.Context, id string) (*domain.Comment, error)
	ListByIssue(ctx context.Context, issueID string) ([]*domain.Comment, error)
	Update(ctx context.Context, c *domain.Comment) error
	Delete(ctx context.Context, id string) error
}

type AttachmentRepo interface {
	Create(ctx context.Context, a *domain.Attachment) error
	GetByID(ctx context.Context, id string) (*domain.Attachment, error)
	ListByIssue(ctx context.Context, issueID string) ([]*domain.Attachment, error)
	Delete(ctx context.Context, id string) error
}

type ActivityRepo interface {
	Create(ctx context.Context, a *domain.Activity) error
	ListByIssue(ctx context.Context, issueID string) ([]*domain.Activity, error)
	// ListByProject returns a project's activity feed, newest first.
	ListByProject(ctx context.Context, projectID string, since *time.Time, limit int) ([]*domain.Activity, error)
}

type BoardRepo interface {
	Create(ctx context.Context, b *domain.Board) error
	GetByID(ctx context.Context, id string) (*domain.Board, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Board, error)
	Update(ctx context.Context, b *domain.Board) error
	Delete(ctx context.Context, id string) error
}
