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

func TestWorkflowService_Statuses(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()
	_, proj := env.seedProject(t, "statuses")

	st := testutil.NewTestStatus("Blocked", domain.CategoryInProgress,
		testutil.WithStatusProject(proj.ID), testutil.WithStatusOrder(10))
	require.NoError(t, env.wf.CreateStatus(ctx, st))

	// Project view: four seeded globals plus the custom one.
	statuses, err := env.wf.ListStatuses(ctx, proj.ID)
	require.NoError(t, err)
	assert.Len(t, statuses, 5)

	st.Name = "On Hold"
	require.NoError(t, env.wf.UpdateStatus(ctx, st))
	require.NoError(t, env.wf.DeleteStatus(ctx, st.ID))

	statuses, err = env.wf.ListStatuses(ctx, proj.ID)
	require.NoError(t, err)
	assert.Len(t, statuses, 4)
}

func TestWorkflowService_CreateStatus_BadCategory(t *testing.T) {
	env := newSvcEnv(t)
	_, proj := env.seedProject(t, "badcat")

	st := testutil.NewTestStatus("Weird", "paused", testutil.WithStatusProject(proj.ID))
	err := env.wf.CreateStatus(context.Background(), st)
	assert.ErrorContains(t, err, "unknown status category")
}

func TestWorkflowService_GlobalStatusesProtected(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()

	todo, err := env.wf.ListStatuses(ctx, "")
	require.NoError(t, err)
	require.NotEmpty(t, todo)

	global := *todo[0]
	global.Name = "Renamed"
	assert.ErrorContains(t, env.wf.UpdateStatus(ctx, &global), "cannot be modified")
	assert.ErrorContains(t, env.wf.DeleteStatus(ctx, global.ID), "cannot be deleted")
}

func TestWorkflowService_AddTransition_Validation(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()
	_, proj := env.seedProject(t, "transval")
	_, other := env.seedProject(t, "transvaltwo")

	err := env.wf.AddTransition(ctx,
		testutil.NewTestTransition(proj.ID, db.SeedStatusTodo, db.SeedStatusTodo))
	assert.ErrorContains(t, err, "same status")

	foreign := testutil.NewTestStatus("Theirs", domain.CategoryTodo,
		testutil.WithStatusProject(other.ID))
	require.NoError(t, env.wf.CreateStatus(ctx, foreign))

	err = env.wf.AddTransition(ctx,
		testutil.NewTestTransition(proj.ID, db.SeedStatusTodo, foreign.ID))
	assert.ErrorContains(t, err, "different project")

	err = env.wf.AddTransition(ctx,
		testutil.NewTestTransition(proj.ID, db.SeedStatusTodo, "no-such-status"))
	assert.ErrorContains(t, err, "unknown status")
}

func TestWorkflowService_Registry(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()
	_, proj := env.seedProject(t, "registry")

	// No rules yet: any cross-status pair is legal.
	registry, err := env.wf.Registry(ctx, proj.ID)
	require.NoError(t, err)
	assert.True(t, registry.Unconstrained())
	assert.True(t, registry.Allowed(db.SeedStatusTodo, db.SeedStatusDone))
	assert.False(t, registry.Allowed(db.SeedStatusTodo, db.SeedStatusTodo))

	tr := testutil.NewTestTransition(proj.ID, db.SeedStatusTodo, db.SeedStatusInProgress)
	require.NoError(t, env.wf.AddTransition(ctx, tr))

	registry, err = env.wf.Registry(ctx, proj.ID)
	require.NoError(t, err)
	assert.False(t, registry.Unconstrained())
	assert.True(t, registry.Allowed(db.SeedStatusTodo, db.SeedStatusInProgress))
	assert.False(t, registry.Allowed(db.SeedStatusTodo, db.SeedStatusDone))
	assert.Equal(t, []string{db.SeedStatusInProgress}, registry.AvailableFrom(db.SeedStatusTodo))

	require.NoError(t, env.wf.RemoveTransition(ctx, tr.ID))
	registry, err = env.wf.Registry(ctx, proj.ID)
	require.NoError(t, err)
	assert.True(t, registry.Unconstrained())
}
