package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/ctrack-io/ctrack/internal/db"
	"github.com/ctrack-io/ctrack/internal/domain"
	"github.com/ctrack-io/ctrack/internal/repository"
	"github.com/ctrack-io/ctrack/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueService_Create(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()
	owner, proj := env.seedProject(t, "create")

	issue := &domain.Issue{
		ProjectID:  proj.ID,
		Title:      "  First issue  ",
		ReporterID: owner.ID,
	}
	require.NoError(t, env.issues.Create(ctx, issue))

	assert.Equal(t, 1, issue.Number)
	assert.Equal(t, proj.Key+"-1", issue.Key)
	assert.Equal(t, "First issue", issue.Title)
	assert.Equal(t, "task", issue.Type)
	assert.Equal(t, domain.PriorityMedium, issue.Priority)
	assert.Equal(t, db.SeedStatusTodo, issue.StatusID)

	second := env.seedIssue(t, proj, owner.ID, "Second issue")
	assert.Equal(t, proj.Key+"-2", second.Key)

	history, err := env.feed.IssueHistory(ctx, issue.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.ActionCreated, history[0].Action)
	created, ok := history[0].Payload.(*domain.CreatedPayload)
	require.True(t, ok)
	assert.Equal(t, issue.Key, created.IssueKey)
}

func TestIssueService_Create_Validation(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()
	owner, proj := env.seedProject(t, "createval")

	err := env.issues.Create(ctx, &domain.Issue{ProjectID: proj.ID, Title: "   ", ReporterID: owner.ID})
	assert.ErrorContains(t, err, "title is required")

	err = env.issues.Create(ctx, &domain.Issue{ProjectID: proj.ID, Title: "x", Type: "incident", ReporterID: owner.ID})
	assert.ErrorContains(t, err, "unknown issue type")

	err = env.issues.Create(ctx, &domain.Issue{ProjectID: proj.ID, Title: "x", Priority: "urgent", ReporterID: owner.ID})
	assert.ErrorContains(t, err, "unknown priority")
}

func TestIssueService_Create_ArchivedProjectRejected(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()
	owner, proj := env.seedProject(t, "archived")
	require.NoError(t, env.projects.Archive(ctx, proj.ID))

	err := env.issues.Create(ctx, &domain.Issue{ProjectID: proj.ID, Title: "x", ReporterID: owner.ID})
	assert.ErrorContains(t, err, "archived")
}

func TestIssueService_Move_Unconstrained(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()
	owner, proj := env.seedProject(t, "moveopen")
	issue := env.seedIssue(t, proj, owner.ID, "Move me")

	// No transition rules defined: any cross-status move is legal.
	require.NoError(t, env.issues.Move(ctx, issue.ID, db.SeedStatusDone, owner.ID))

	got, err := env.issues.GetByID(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, db.SeedStatusDone, got.StatusID)

	history, err := env.feed.IssueHistory(ctx, issue.ID)
	require.NoError(t, err)
	require.Len(t, history, 2) // newest first
	assert.Equal(t, domain.ActionStatusChanged, history[0].Action)
	moved, ok := history[0].Payload.(*domain.StatusChangedPayload)
	require.True(t, ok)
	assert.Equal(t, db.SeedStatusTodo, moved.FromStatusID)
	assert.Equal(t, db.SeedStatusDone, moved.ToStatusID)
	assert.Equal(t, domain.CategoryDone, moved.ToCategory)
}

func TestIssueService_Move_SameStatusRejected(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()
	owner, proj := env.seedProject(t, "moveself")
	issue := env.seedIssue(t, proj, owner.ID, "Stay put")

	err := env.issues.Move(ctx, issue.ID, issue.StatusID, owner.ID)
	assert.ErrorContains(t, err, "not allowed")
}

func TestIssueService_Move_RestrictedByRules(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()
	owner, proj := env.seedProject(t, "moverules")
	issue := env.seedIssue(t, proj, owner.ID, "Follow the flow")

	require.NoError(t, env.wf.AddTransition(ctx,
		testutil.NewTestTransition(proj.ID, db.SeedStatusTodo, db.SeedStatusInProgress)))

	// Todo -> Done is not a listed pair anymore.
	err := env.issues.Move(ctx, issue.ID, db.SeedStatusDone, owner.ID)
	assert.ErrorContains(t, err, "not allowed")

	require.NoError(t, env.issues.Move(ctx, issue.ID, db.SeedStatusInProgress, owner.ID))
	got, err := env.issues.GetByID(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, db.SeedStatusInProgress, got.StatusID)
}

func TestIssueService_Move_RoleRestriction(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()
	owner, proj := env.seedProject(t, "moverole")
	issue := env.seedIssue(t, proj, owner.ID, "Needs review sign-off")

	dev := testutil.NewTestUser("moverole-dev")
	require.NoError(t, env.users.Create(ctx, dev))
	require.NoError(t, env.projects.AddMember(ctx, proj.ID, dev.ID, domain.RoleDeveloper))

	require.NoError(t, env.wf.AddTransition(ctx,
		testutil.NewTestTransition(proj.ID, db.SeedStatusTodo, db.SeedStatusDone,
			testutil.WithAllowedRoles(domain.RoleManager, domain.RoleAdmin))))

	err := env.issues.Move(ctx, issue.ID, db.SeedStatusDone, dev.ID)
	assert.ErrorContains(t, err, "role developer may not")

	// The owner is an implicit admin and clears the role gate.
	require.NoError(t, env.issues.Move(ctx, issue.ID, db.SeedStatusDone, owner.ID))
}

func TestIssueService_AvailableTransitions(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()
	owner, proj := env.seedProject(t, "avail")
	issue := env.seedIssue(t, proj, owner.ID, "Where can I go")

	dev := testutil.NewTestUser("avail-dev")
	require.NoError(t, env.users.Create(ctx, dev))
	require.NoError(t, env.projects.AddMember(ctx, proj.ID, dev.ID, domain.RoleDeveloper))

	require.NoError(t, env.wf.AddTransition(ctx,
		testutil.NewTestTransition(proj.ID, db.SeedStatusTodo, db.SeedStatusInProgress)))
	require.NoError(t, env.wf.AddTransition(ctx,
		testutil.NewTestTransition(proj.ID, db.SeedStatusTodo, db.SeedStatusDone,
			testutil.WithAllowedRoles(domain.RoleAdmin))))

	targets, err := env.issues.AvailableTransitions(ctx, issue.ID, dev.ID)
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, db.SeedStatusInProgress, targets[0].ID)

	targets, err = env.issues.AvailableTransitions(ctx, issue.ID, owner.ID)
	require.NoError(t, err)
	assert.Len(t, targets, 2)
}

func TestIssueService_Update(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()
	owner, proj := env.seedProject(t, "update")
	issue := env.seedIssue(t, proj, owner.ID, "Old title")

	points := 5
	issue.Title = "New title"
	issue.StoryPoints = &points
	issue.Priority = domain.PriorityHigh
	require.NoError(t, env.issues.Update(ctx, issue, owner.ID))

	got, err := env.issues.GetByID(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, "New title", got.Title)
	require.NotNil(t, got.StoryPoints)
	assert.Equal(t, 5, *got.StoryPoints)

	history, err := env.feed.IssueHistory(ctx, issue.ID)
	require.NoError(t, err)
	require.Len(t, history, 3) // created + updated + priority_changed

	var updated *domain.UpdatedPayload
	var prio *domain.PriorityChangedPayload
	for _, act := range history {
		switch p := act.Payload.(type) {
		case *domain.UpdatedPayload:
			updated = p
		case *domain.PriorityChangedPayload:
			prio = p
		}
	}
	require.NotNil(t, updated)
	require.Len(t, updated.Changes, 2)
	fields := []string{updated.Changes[0].Field, updated.Changes[1].Field}
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "story_points")
	require.NotNil(t, prio)
	assert.Equal(t, domain.PriorityMedium, prio.From)
	assert.Equal(t, domain.PriorityHigh, prio.To)
}

func TestIssueService_Update_StatusChangeRejected(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()
	owner, proj := env.seedProject(t, "updatestatus")
	issue := env.seedIssue(t, proj, owner.ID, "No sneaky moves")

	issue.StatusID = db.SeedStatusDone
	err := env.issues.Update(ctx, issue, owner.ID)
	assert.ErrorContains(t, err, "use move")
}

func TestIssueService_Assign(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()
	owner, proj := env.seedProject(t, "assign")
	issue := env.seedIssue(t, proj, owner.ID, "Assign me")

	dev := testutil.NewTestUser("assign-dev", testutil.WithDisplayName("Dev One"))
	require.NoError(t, env.users.Create(ctx, dev))

	require.NoError(t, env.issues.Assign(ctx, issue.ID, &dev.ID, owner.ID))

	got, err := env.issues.GetByID(ctx, issue.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AssigneeID)
	assert.Equal(t, dev.ID, *got.AssigneeID)

	// Assigning to the current assignee is a no-op: no extra activity.
	require.NoError(t, env.issues.Assign(ctx, issue.ID, &dev.ID, owner.ID))

	history, err := env.feed.IssueHistory(ctx, issue.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assigned, ok := history[0].Payload.(*domain.AssignedPayload)
	require.True(t, ok)
	assert.Equal(t, "Dev One", assigned.ToName)
	assert.Nil(t, assigned.FromUserID)
}

func TestIssueService_SetSprint(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()
	owner, proj := env.seedProject(t, "setsprint")
	issue := env.seedIssue(t, proj, owner.ID, "Sprint me")

	sprint := testutil.NewTestSprint(proj.ID, "Sprint 1")
	require.NoError(t, env.sprints.Create(ctx, sprint))

	require.NoError(t, env.issues.SetSprint(ctx, issue.ID, &sprint.ID, owner.ID))
	got, err := env.issues.GetByID(ctx, issue.ID)
	require.NoError(t, err)
	require.NotNil(t, got.SprintID)
	assert.Equal(t, sprint.ID, *got.SprintID)

	history, err := env.feed.IssueHistory(ctx, issue.ID)
	require.NoError(t, err)
	moved, ok := history[0].Payload.(*domain.SprintChangedPayload)
	require.True(t, ok)
	assert.Equal(t, "Sprint 1", moved.ToName)
}

func TestIssueService_SetSprint_Guards(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()
	owner, proj := env.seedProject(t, "sprintguard")
	_, other := env.seedProject(t, "sprintguardtwo")
	issue := env.seedIssue(t, proj, owner.ID, "Guarded")

	foreign := testutil.NewTestSprint(other.ID, "Foreign")
	require.NoError(t, env.sprints.Create(ctx, foreign))
	err := env.issues.SetSprint(ctx, issue.ID, &foreign.ID, owner.ID)
	assert.ErrorContains(t, err, "different project")

	done := testutil.NewTestSprint(proj.ID, "Done sprint",
		testutil.WithSprintStatus(domain.SprintCompleted))
	require.NoError(t, env.sprintRepo.Create(ctx, done))
	err = env.issues.SetSprint(ctx, issue.ID, &done.ID, owner.ID)
	assert.ErrorContains(t, err, "already completed")
}

func TestIssueService_AddComment(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()
	owner, proj := env.seedProject(t, "comment")
	issue := env.seedIssue(t, proj, owner.ID, "Discuss")

	long := strings.Repeat("a", commentPreviewLen+20)
	comment, err := env.issues.AddComment(ctx, issue.ID, owner.ID, long)
	require.NoError(t, err)

	comments, err := env.issues.ListComments(ctx, issue.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, long, comments[0].Content)

	history, err := env.feed.IssueHistory(ctx, issue.ID)
	require.NoError(t, err)
	commented, ok := history[0].Payload.(*domain.CommentedPayload)
	require.True(t, ok)
	assert.Equal(t, comment.ID, commented.CommentID)
	assert.Len(t, commented.Preview, commentPreviewLen)

	_, err = env.issues.AddComment(ctx, issue.ID, owner.ID, "   ")
	assert.ErrorContains(t, err, "content is required")
}

func TestIssueService_Create_RollsBackOnFailure(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()
	owner, proj := env.seedProject(t, "rollback")

	// Creating an issue runs three writes inside the transaction: the
	// sequence seed, the issue insert, and the created activity.
	// Failing the third must roll back the first two.
	failing := &testutil.FailOnNthExecUoW{
		DB:     env.conn,
		FailOn: 3,
		Err:    fmt.Errorf("injected activity failure"),
	}
	comments := repository.NewSQLiteCommentRepo(env.conn)
	issues := NewIssueService(env.issueRepo, comments, env.projects, env.wf, env.userRepo, env.sprintRepo, failing)

	err := issues.Create(ctx, &domain.Issue{ProjectID: proj.ID, Title: "Doomed", ReporterID: owner.ID})
	require.ErrorContains(t, err, "injected activity failure")

	backlog, err := env.issues.ListBacklog(ctx, proj.ID)
	require.NoError(t, err)
	assert.Empty(t, backlog)

	// The sequence row rolled back too, so the next issue still gets number 1.
	issue := env.seedIssue(t, proj, owner.ID, "Survivor")
	assert.Equal(t, 1, issue.Number)
}
