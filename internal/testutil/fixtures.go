package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ctrack-io/ctrack/internal/domain"
	"github.com/google/uuid"
)

var testKeyCounter atomic.Int64

// User options
type UserOption func(*domain.User)

func WithEmail(email string) UserOption {
	return func(u *domain.User) {
		u.Email = email
	}
}

func WithDisplayName(name string) UserOption {
	return func(u *domain.User) {
		u.DisplayName = name
	}
}

func NewTestUser(username string, opts ...UserOption) *domain.User {
	u := &domain.User{
		ID:        uuid.New().String(),
		Username:  username,
		Email:     username + "@example.com",
		CreatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Project options
type ProjectOption func(*domain.Project)

func WithProjectKey(key string) ProjectOption {
	return func(p *domain.Project) {
		p.Key = key
	}
}

func WithDescription(d string) ProjectOption {
	return func(p *domain.Project) {
		p.Description = d
	}
}

func WithArchived() ProjectOption {
	return func(p *domain.Project) {
		p.IsArchived = true
	}
}

func defaultProjectKey(name string) string {
	upper := strings.ToUpper(name)
	var letters []byte
	for i := 0; i < len(upper) && len(letters) < 3; i++ {
		if upper[i] >= 'A' && upper[i] <= 'Z' {
			letters = append(letters, upper[i])
		}
	}
	for len(letters) < 2 {
		letters = append(letters, 'X')
	}
	// Letters-only suffix keeps generated keys valid project keys.
	n := testKeyCounter.Add(1)
	suffix := []byte{byte('A' + (n/26)%26), byte('A' + n%26)}
	return fmt.Sprintf("%s%s", letters, suffix)
}

func NewTestProject(ownerID, name string, opts ...ProjectOption) *domain.Project {
	now := time.Now().UTC()
	p := &domain.Project{
		ID:        uuid.New().String(),
		Key:       defaultProjectKey(name),
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Status options
type StatusOption func(*domain.Status)

func WithStatusProject(projectID string) StatusOption {
	return func(s *domain.Status) {
		s.ProjectID = &projectID
	}
}

func WithStatusOrder(order int) StatusOption {
	return func(s *domain.Status) {
		s.Order = order
	}
}

func WithStatusColor(color string) StatusOption {
	return func(s *domain.Status) {
		s.Color = color
	}
}

func NewTestStatus(name string, category domain.StatusCategory, opts ...StatusOption) *domain.Status {
	s := &domain.Status{
		ID:       uuid.New().String(),
		Name:     name,
		Category: category,
		Color:    "#6b7280",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Transition options
type TransitionOption func(*domain.WorkflowTransition)

func WithTransitionName(name string) TransitionOption {
	return func(t *domain.WorkflowTransition) {
		t.Name = name
	}
}

func WithAllowedRoles(roles ...domain.ProjectRole) TransitionOption {
	return func(t *domain.WorkflowTransition) {
		t.AllowedRoles = roles
	}
}

func NewTestTransition(projectID, fromStatusID, toStatusID string, opts ...TransitionOption) *domain.WorkflowTransition {
	t := &domain.WorkflowTransition{
		ID:           uuid.New().String(),
		ProjectID:    projectID,
		FromStatusID: fromStatusID,
		ToStatusID:   toStatusID,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Issue options
type IssueOption func(*domain.Issue)

func WithIssueType(t string) IssueOption {
	return func(i *domain.Issue) {
		i.Type = t
	}
}

func WithPriority(p domain.Priority) IssueOption {
	return func(i *domain.Issue) {
		i.Priority = p
	}
}

func WithAssignee(userID string) IssueOption {
	return func(i *domain.Issue) {
		i.AssigneeID = &userID
	}
}

func WithSprint(sprintID string) IssueOption {
	return func(i *domain.Issue) {
		i.SprintID = &sprintID
	}
}

func WithEpic(epicID string) IssueOption {
	return func(i *domain.Issue) {
		i.EpicID = &epicID
	}
}

func WithStoryPoints(sp int) IssueOption {
	return func(i *domain.Issue) {
		i.StoryPoints = &sp
	}
}

func WithDueDate(d time.Time) IssueOption {
	return func(i *domain.Issue) {
		i.DueDate = &d
	}
}

func WithIssueStatus(statusID string) IssueOption {
	return func(i *domain.Issue) {
		i.StatusID = statusID
	}
}

func NewTestIssue(p *domain.Project, number int, reporterID, statusID, title string, opts ...IssueOption) *domain.Issue {
	now := time.Now().UTC()
	i := &domain.Issue{
		ID:         uuid.New().String(),
		ProjectID:  p.ID,
		Key:        domain.MakeIssueKey(p.Key, number),
		Number:     number,
		Type:       "task",
		Title:      title,
		StatusID:   statusID,
		Priority:   domain.PriorityMedium,
		ReporterID: reporterID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Sprint options
type SprintOption func(*domain.Sprint)

func WithSprintStatus(s domain.SprintStatus) SprintOption {
	return func(sp *domain.Sprint) {
		sp.Status = s
	}
}

func WithSprintDates(start, end time.Time) SprintOption {
	return func(sp *domain.Sprint) {
		sp.StartDate = start
		sp.EndDate = end
	}
}

func WithSprintGoal(goal string) SprintOption {
	return func(sp *domain.Sprint) {
		sp.Goal = goal
	}
}

func WithSprintPoints(initial, completed int) SprintOption {
	return func(sp *domain.Sprint) {
		sp.InitialStoryPoints = &initial
		sp.CompletedStoryPoints = &completed
	}
}

func NewTestSprint(projectID, name string, opts ...SprintOption) *domain.Sprint {
	now := time.Now().UTC()
	sp := &domain.Sprint{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Name:      name,
		StartDate: now.AddDate(0, 0, -7),
		EndDate:   now.AddDate(0, 0, 7),
		Status:    domain.SprintPlanned,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(sp)
	}
	return sp
}

// NewTestComment creates a comment fixture on an issue.
func NewTestComment(issueID, authorID, content string) *domain.Comment {
	now := time.Now().UTC()
	return &domain.Comment{
		ID:        uuid.New().String(),
		IssueID:   issueID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Board options
type BoardOption func(*domain.Board)

func WithBoardType(t domain.BoardType) BoardOption {
	return func(b *domain.Board) {
		b.Type = t
	}
}

func WithBoardColumns(statusIDs ...string) BoardOption {
	return func(b *domain.Board) {
		b.Columns = statusIDs
	}
}

func WithBoardSprint(sprintID string) BoardOption {
	return func(b *domain.Board) {
		b.SprintID = &sprintID
	}
}

func NewTestBoard(projectID, name string, opts ...BoardOption) *domain.Board {
	now := time.Now().UTC()
	b := &domain.Board{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Name:      name,
		Type:      domain.BoardKanban,
		Columns:   []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}
