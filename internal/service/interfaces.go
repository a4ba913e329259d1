package service

import (
	"context"
	"time"

	"github.com/ctrack-io/ctrack/internal/domain"
	"github.com/ctrack-io/ctrack/internal/repository"
	"github.com/ctrack-io/ctrack/internal/workflow"
)

type UserService interface {
	Create(ctx context.Context, u *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}

type ProjectService interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	GetByKey(ctx context.Context, key string) (*domain.Project, error)
	List(ctx context.Context, includeArchived bool) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	Archive(ctx context.Context, id string) error
	Unarchive(ctx context.Context, id string) error
	Delete(ctx context.Context, id string, force bool) error

	AddMember(ctx context.Context, projectID, userID string, role domain.ProjectRole) error
	RemoveMember(ctx context.Context, projectID, userID string) error
	ListMembers(ctx context.Context, projectID string) ([]*domain.ProjectMember, error)
	// MemberRole resolves a user's effective role in a project. The project
	// owner is always an admin regardless of membership rows.
	MemberRole(ctx context.Context, projectID, userID string) (domain.ProjectRole, error)
}

// WorkflowService manages per-project statuses and transition rules and
// answers which moves are currently legal.
type WorkflowService interface {
	CreateStatus(ctx context.Context, s *domain.Status) error
	UpdateStatus(ctx context.Context, s *domain.Status) error
	DeleteStatus(ctx context.Context, id string) error
	ListStatuses(ctx context.Context, projectID string) ([]*domain.Status, error)

	AddTransition(ctx context.Context, t *domain.WorkflowTransition) error
	RemoveTransition(ctx context.Context, id string) error
	ListTransitions(ctx context.Context, projectID string) ([]*domain.WorkflowTransition, error)

	// Registry snapshots a project's statuses and transition rules for
	// repeated legality checks without further data access.
	Registry(ctx context.Context, projectID string) (*workflow.Registry, error)
}

type IssueService interface {
	Create(ctx context.Context, i *domain.Issue) error
	GetByKey(ctx context.Context, key string) (*domain.Issue, error)
	GetByID(ctx context.Context, id string) (*domain.Issue, error)
	ListByProject(ctx context.Context, projectID string, f repository.IssueFilters) ([]*domain.Issue, error)
	ListBacklog(ctx context.Context, projectID string) ([]*domain.Issue, error)
	Update(ctx context.Context, i *domain.Issue, actorID string) error
	Delete(ctx context.Context, id string) error

	// Move transitions an issue to a new status, enforcing the project's
	// workflow rules and the actor's role, and records the change.
	Move(ctx context.Context, issueID, toStatusID, actorID string) error
	// AvailableTransitions returns the statuses the issue may move to,
	// filtered by the transition rules the actor's role may execute.
	AvailableTransitions(ctx context.Context, issueID, actorID string) ([]*domain.Status, error)

	Assign(ctx context.Context, issueID string, assigneeID *string, actorID string) error
	SetSprint(ctx context.Context, issueID string, sprintID *string, actorID string) error

	AddComment(ctx context.Context, issueID, authorID, content string) (*domain.Comment, error)
	ListComments(ctx context.Context, issueID string) ([]*domain.Comment, error)
	DeleteComment(ctx context.Context, commentID string) error
}

type SprintService interface {
	Create(ctx context.Context, s *domain.Sprint) error
	GetByID(ctx context.Context, id string) (*domain.Sprint, error)
	ListByProject(ctx context.Context, projectID string, status domain.SprintStatus) ([]*domain.Sprint, error)
	Active(ctx context.Context, projectID string) (*domain.Sprint, error)
	Update(ctx context.Context, s *domain.Sprint) error
	Delete(ctx context.Context, id string) error

	// Start activates a planned sprint and snapshots its committed story
	// points. Only one sprint per project may be active.
	Start(ctx context.Context, id string) error
	// Complete closes an active sprint, snapshots completed points, and moves
	// unfinished issues to the backlog or to the target sprint.
	Complete(ctx context.Context, id string, targetSprintID *string) (*CompletionResult, error)
}

// CompletionResult summarizes what happened when a sprint was completed.
type CompletionResult struct {
	Sprint          *domain.Sprint
	CompletedPoints int
	MovedIssues     int
}

type BoardService interface {
	Create(ctx context.Context, b *domain.Board) error
	GetByID(ctx context.Context, id string) (*domain.Board, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Board, error)
	Update(ctx context.Context, b *domain.Board) error
	Delete(ctx context.Context, id string) error

	// Load resolves a board into ordered columns of issues plus the
	// project's transition rules.
	Load(ctx context.Context, boardID string, f domain.BoardFilters) (*domain.BoardData, error)
	// DefaultForProject returns the project's first board, creating a Kanban
	// board over all project statuses when none exists.
	DefaultForProject(ctx context.Context, projectID string) (*domain.Board, error)
}

type ActivityService interface {
	IssueHistory(ctx context.Context, issueID string) ([]*domain.Activity, error)
	ProjectFeed(ctx context.Context, projectID string, since *time.Time, limit int) ([]*domain.Activity, error)
}

type AttachmentService interface {
	// Attach copies the file at srcPath into the data directory and records
	// its metadata against the issue.
	Attach(ctx context.Context, issueID, srcPath string, uploaderID *string) (*domain.Attachment, error)
	ListByIssue(ctx context.Context, issueID string) ([]*domain.Attachment, error)
	// Remove deletes the metadata row and the stored file.
	Remove(ctx context.Context, id string) error
}

// SprintReport is the post-completion summary for a single sprint.
type SprintReport struct {
	Sprint          *domain.Sprint
	TotalIssues     int
	CompletedIssues int
	TotalPoints     int
	CompletedPoints int
}

// VelocityEntry is one sprint's contribution to a velocity report.
type VelocityEntry struct {
	Sprint          *domain.Sprint
	CommittedPoints int
	CompletedPoints int
}

// VelocityReport covers a project's recent completed sprints.
type VelocityReport struct {
	Entries       []VelocityEntry
	AveragePoints float64
}

// BurndownPoint is one day on a burndown chart.
type BurndownPoint struct {
	Day       time.Time
	Ideal     float64
	Remaining int
}

// BurndownReport charts remaining story points over a sprint's days.
type BurndownReport struct {
	Sprint      *domain.Sprint
	TotalPoints int
	Points      []BurndownPoint
}

type ReportService interface {
	SprintReport(ctx context.Context, sprintID string) (*SprintReport, error)
	Velocity(ctx context.Context, projectID string, lastN int) (*VelocityReport, error)
	Burndown(ctx context.Context, sprintID string) (*BurndownReport, error)
}

// ImportResult holds the outcome of a project import.
type ImportResult struct {
	Project         *domain.Project
	StatusCount     int
	TransitionCount int
	SprintCount     int
	IssueCount      int
}

type ImportService interface {
	// ImportProject loads, validates, and persists a project import file.
	// The owner becomes the project's admin and the reporter of every
	// imported issue.
	ImportProject(ctx context.Context, filePath, ownerID string) (*ImportResult, error)
}
