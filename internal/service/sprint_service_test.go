package service

import (
	"context"
	"testing"

	"github.com/ctrack-io/ctrack/internal/db"
	"github.com/ctrack-io/ctrack/internal/domain"
	"github.com/ctrack-io/ctrack/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSprintService_Start(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()
	owner, proj := env.seedProject(t, "start")

	sprint := testutil.NewTestSprint(proj.ID, "Sprint 1")
	require.NoError(t, env.sprints.Create(ctx, sprint))

	env.seedIssue(t, proj, owner.ID, "Three pointer",
		testutil.WithSprint(sprint.ID), testutil.WithStoryPoints(3))
	env.seedIssue(t, proj, owner.ID, "Five pointer",
		testutil.WithSprint(sprint.ID), testutil.WithStoryPoints(5))
	env.seedIssue(t, proj, owner.ID, "Unestimated",
		testutil.WithSprint(sprint.ID))

	require.NoError(t, env.sprints.Start(ctx, sprint.ID))

	got, err := env.sprints.GetByID(ctx, sprint.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SprintActive, got.Status)
	require.NotNil(t, got.InitialStoryPoints)
	assert.Equal(t, 8, *got.InitialStoryPoints)
}

func TestSprintService_Start_OnlyOneActive(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()
	_, proj := env.seedProject(t, "oneactive")

	first := testutil.NewTestSprint(proj.ID, "Sprint 1")
	second := testutil.NewTestSprint(proj.ID, "Sprint 2")
	require.NoError(t, env.sprints.Create(ctx, first))
	require.NoError(t, env.sprints.Create(ctx, second))

	require.NoError(t, env.sprints.Start(ctx, first.ID))

	err := env.sprints.Start(ctx, second.ID)
	assert.ErrorContains(t, err, "already active")

	// Restarting an active sprint is also rejected.
	err = env.sprints.Start(ctx, first.ID)
	assert.ErrorContains(t, err, "only a planned sprint")
}

func TestSprintService_Complete_CarryOverToBacklog(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()
	owner, proj := env.seedProject(t, "complete")

	sprint := testutil.NewTestSprint(proj.ID, "Sprint 1")
	require.NoError(t, env.sprints.Create(ctx, sprint))

	done := env.seedIssue(t, proj, owner.ID, "Finished",
		testutil.WithSprint(sprint.ID), testutil.WithStoryPoints(5))
	open := env.seedIssue(t, proj, owner.ID, "Unfinished",
		testutil.WithSprint(sprint.ID), testutil.WithStoryPoints(3))

	require.NoError(t, env.sprints.Start(ctx, sprint.ID))
	require.NoError(t, env.issues.Move(ctx, done.ID, db.SeedStatusDone, owner.ID))

	result, err := env.sprints.Complete(ctx, sprint.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, result.CompletedPoints)
	assert.Equal(t, 1, result.MovedIssues)
	assert.Equal(t, domain.SprintCompleted, result.Sprint.Status)

	// The unfinished issue went back to the backlog; the done issue stays.
	gotOpen, err := env.issues.GetByID(ctx, open.ID)
	require.NoError(t, err)
	assert.Nil(t, gotOpen.SprintID)

	gotDone, err := env.issues.GetByID(ctx, done.ID)
	require.NoError(t, err)
	require.NotNil(t, gotDone.SprintID)
	assert.Equal(t, sprint.ID, *gotDone.SprintID)
}

func TestSprintService_Complete_CarryOverToTargetSprint(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()
	owner, proj := env.seedProject(t, "carrytarget")

	sprint := testutil.NewTestSprint(proj.ID, "Sprint 1")
	next := testutil.NewTestSprint(proj.ID, "Sprint 2")
	require.NoError(t, env.sprints.Create(ctx, sprint))
	require.NoError(t, env.sprints.Create(ctx, next))

	open := env.seedIssue(t, proj, owner.ID, "Carry me",
		testutil.WithSprint(sprint.ID), testutil.WithStoryPoints(2))

	require.NoError(t, env.sprints.Start(ctx, sprint.ID))

	result, err := env.sprints.Complete(ctx, sprint.ID, &next.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, result.CompletedPoints)
	assert.Equal(t, 1, result.MovedIssues)

	got, err := env.issues.GetByID(ctx, open.ID)
	require.NoError(t, err)
	require.NotNil(t, got.SprintID)
	assert.Equal(t, next.ID, *got.SprintID)
}

func TestSprintService_Complete_TargetValidation(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()
	_, proj := env.seedProject(t, "targetval")
	_, other := env.seedProject(t, "targetvaltwo")

	sprint := testutil.NewTestSprint(proj.ID, "Sprint 1")
	require.NoError(t, env.sprints.Create(ctx, sprint))
	require.NoError(t, env.sprints.Start(ctx, sprint.ID))

	_, err := env.sprints.Complete(ctx, sprint.ID, &sprint.ID)
	assert.ErrorContains(t, err, "itself")

	foreign := testutil.NewTestSprint(other.ID, "Foreign")
	require.NoError(t, env.sprints.Create(ctx, foreign))
	_, err = env.sprints.Complete(ctx, sprint.ID, &foreign.ID)
	assert.ErrorContains(t, err, "different project")

	closed := testutil.NewTestSprint(proj.ID, "Closed",
		testutil.WithSprintStatus(domain.SprintCompleted))
	require.NoError(t, env.sprintRepo.Create(ctx, closed))
	_, err = env.sprints.Complete(ctx, sprint.ID, &closed.ID)
	assert.ErrorContains(t, err, "already completed")
}

func TestSprintService_Complete_RequiresActive(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()
	_, proj := env.seedProject(t, "notactive")

	sprint := testutil.NewTestSprint(proj.ID, "Planned")
	require.NoError(t, env.sprints.Create(ctx, sprint))

	_, err := env.sprints.Complete(ctx, sprint.ID, nil)
	assert.ErrorContains(t, err, "only an active sprint")
}

func TestSprintService_Delete_ActiveRejected(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()
	_, proj := env.seedProject(t, "deleteactive")

	sprint := testutil.NewTestSprint(proj.ID, "Sprint 1")
	require.NoError(t, env.sprints.Create(ctx, sprint))
	require.NoError(t, env.sprints.Start(ctx, sprint.ID))

	err := env.sprints.Delete(ctx, sprint.ID)
	assert.ErrorContains(t, err, "cannot be deleted")

	_, err = env.sprints.Complete(ctx, sprint.ID, nil)
	require.NoError(t, err)
	require.NoError(t, env.sprints.Delete(ctx, sprint.ID))
}
