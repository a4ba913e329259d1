package repository

import (
	"context"
	"testing"
	"time"

	"github.com/ctrack-io/ctrack/internal/db"
	"github.com/ctrack-io/ctrack/internal/domain"
	"github.com/ctrack-io/ctrack/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCascadeDelete_ProjectToIssues verifies that deleting a project cascades to its issues.
func TestCascadeDelete_ProjectToIssues(t *testing.T) {
	d := newDomainDB(t)
	ctx := context.Background()
	user, proj := seedProject(t, d, "CascadeProj")

	issue := testutil.NewTestIssue(proj, 1, user.ID, db.SeedStatusTodo, "Child issue")
	require.NoError(t, d.issues.Create(ctx, issue))

	require.NoError(t, d.projects.Delete(ctx, proj.ID))

	_, err := d.issues.GetByID(ctx, issue.ID)
	assert.Error(t, err, "issue should be cascade-deleted when project is deleted")
}

// TestCascadeDelete_ProjectToSprintsAndMembers verifies projects -> sprints and project_members cascade.
func TestCascadeDelete_ProjectToSprintsAndMembers(t *testing.T) {
	d := newDomainDB(t)
	ctx := context.Background()
	user, proj := seedProject(t, d, "CascadeProj2")

	sprint := testutil.NewTestSprint(proj.ID, "Sprint")
	require.NoError(t, d.sprints.Create(ctx, sprint))

	member := &domain.ProjectMember{
		ProjectID: proj.ID,
		UserID:    user.ID,
		Role:      domain.RoleAdmin,
		JoinedAt:  time.Now().UTC(),
	}
	require.NoError(t, d.projects.AddMember(ctx, member))

	require.NoError(t, d.projects.Delete(ctx, proj.ID))

	_, err := d.sprints.GetByID(ctx, sprint.ID)
	assert.Error(t, err, "sprint should be cascade-deleted when project is deleted")

	_, err = d.projects.GetMember(ctx, proj.ID, user.ID)
	assert.Error(t, err, "membership should be cascade-deleted when project is deleted")
}

// TestCascadeDelete_IssueToCommentsAndActivities verifies issues -> comments/activities cascade.
func TestCascadeDelete_IssueToCommentsAndActivities(t *testing.T) {
	d := newDomainDB(t)
	ctx := context.Background()
	commentRepo := NewSQLiteCommentRepo(d.conn)
	activityRepo := NewSQLiteActivityRepo(d.conn)
	user, proj := seedProject(t, d, "CascadeIssue")

	issue := testutil.NewTestIssue(proj, 1, user.ID, db.SeedStatusTodo, "Parent")
	require.NoError(t, d.issues.Create(ctx, issue))

	comment := testutil.NewTestComment(issue.ID, user.ID, "first!")
	require.NoError(t, commentRepo.Create(ctx, comment))

	act := &domain.Activity{
		ID:        uuid.New().String(),
		IssueID:   issue.ID,
		UserID:    &user.ID,
		Action:    domain.ActionCreated,
		Payload:   &domain.CreatedPayload{IssueKey: issue.Key, Title: issue.Title},
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, activityRepo.Create(ctx, act))

	require.NoError(t, d.issues.Delete(ctx, issue.ID))

	_, err := commentRepo.GetByID(ctx, comment.ID)
	assert.Error(t, err, "comment should be cascade-deleted when issue is deleted")

	acts, err := activityRepo.ListByIssue(ctx, issue.ID)
	require.NoError(t, err)
	assert.Empty(t, acts, "activities should be cascade-deleted when issue is deleted")
}

// TestCascadeDelete_StatusToTransitions verifies that deleting a status removes
// every transition rule that references it.
func TestCascadeDelete_StatusToTransitions(t *testing.T) {
	d := newDomainDB(t)
	ctx := context.Background()
	statusRepo := NewSQLiteStatusRepo(d.conn)
	transitionRepo := NewSQLiteTransitionRepo(d.conn)
	_, proj := seedProject(t, d, "CascadeStatus")

	review := testutil.NewTestStatus("Review", domain.CategoryInProgress,
		testutil.WithStatusProject(proj.ID))
	require.NoError(t, statusRepo.Create(ctx, review))

	into := testutil.NewTestTransition(proj.ID, db.SeedStatusTodo, review.ID)
	outOf := testutil.NewTestTransition(proj.ID, review.ID, db.SeedStatusDone)
	unrelated := testutil.NewTestTransition(proj.ID, db.SeedStatusTodo, db.SeedStatusDone)
	require.NoError(t, transitionRepo.Create(ctx, into))
	require.NoError(t, transitionRepo.Create(ctx, outOf))
	require.NoError(t, transitionRepo.Create(ctx, unrelated))

	require.NoError(t, statusRepo.Delete(ctx, review.ID))

	list, err := transitionRepo.ListByProject(ctx, proj.ID)
	require.NoError(t, err)
	require.Len(t, list, 1, "both transitions touching the status should be gone")
	assert.Equal(t, unrelated.ID, list[0].ID)
}

// TestRestrictDelete_StatusReferencedByIssue verifies that a status still used
// by issues cannot be deleted.
func TestRestrictDelete_StatusReferencedByIssue(t *testing.T) {
	d := newDomainDB(t)
	ctx := context.Background()
	statusRepo := NewSQLiteStatusRepo(d.conn)
	user, proj := seedProject(t, d, "RestrictStatus")

	blocked := testutil.NewTestStatus("Blocked", domain.CategoryInProgress,
		testutil.WithStatusProject(proj.ID))
	require.NoError(t, statusRepo.Create(ctx, blocked))

	issue := testutil.NewTestIssue(proj, 1, user.ID, blocked.ID, "Stuck")
	require.NoError(t, d.issues.Create(ctx, issue))

	err := statusRepo.Delete(ctx, blocked.ID)
	assert.Error(t, err, "deleting a status referenced by issues should fail")

	// After the issue moves away, deletion succeeds.
	issue.StatusID = db.SeedStatusTodo
	issue.UpdatedAt = time.Now().UTC()
	require.NoError(t, d.issues.Update(ctx, issue))
	assert.NoError(t, statusRepo.Delete(ctx, blocked.ID))
}

// TestSetNull_SprintDeleteDetachesIssues verifies issues.sprint_id ON DELETE SET NULL.
func TestSetNull_SprintDeleteDetachesIssues(t *testing.T) {
	d := newDomainDB(t)
	ctx := context.Background()
	user, proj := seedProject(t, d, "SetNullSprint")

	sprint := testutil.NewTestSprint(proj.ID, "Doomed")
	require.NoError(t, d.sprints.Create(ctx, sprint))

	issue := testutil.NewTestIssue(proj, 1, user.ID, db.SeedStatusTodo, "Detached",
		testutil.WithSprint(sprint.ID))
	require.NoError(t, d.issues.Create(ctx, issue))

	require.NoError(t, d.sprints.Delete(ctx, sprint.ID))

	fetched, err := d.issues.GetByID(ctx, issue.ID)
	require.NoError(t, err)
	assert.Nil(t, fetched.SprintID, "issue should survive sprint deletion with sprint cleared")
}

// TestForeignKey_IssueRequiresProject verifies FK constraint on issues.project_id.
func TestForeignKey_IssueRequiresProject(t *testing.T) {
	d := newDomainDB(t)
	ctx := context.Background()
	user := testutil.NewTestUser("orphan-reporter")
	require.NoError(t, d.users.Create(ctx, user))

	ghost := &domain.Project{ID: "nonexistent-project", Key: "GHO"}
	issue := testutil.NewTestIssue(ghost, 1, user.ID, db.SeedStatusTodo, "Orphan")
	err := d.issues.Create(ctx, issue)
	assert.Error(t, err, "creating issue with nonexistent project should fail FK constraint")
}

// TestRestrictDelete_ProjectOwner verifies users cannot be deleted while owning projects.
func TestForeignKey_ProjectRequiresOwner(t *testing.T) {
	d := newDomainDB(t)
	ctx := context.Background()

	proj := testutil.NewTestProject("nonexistent-user", "Ownerless")
	err := d.projects.Create(ctx, proj)
	assert.Error(t, err, "creating project with nonexistent owner should fail FK constraint")
}
