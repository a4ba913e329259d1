package service

import (
	"context"
	"testing"

	"github.com/ctrack-io/ctrack/internal/domain"
	"github.com/ctrack-io/ctrack/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectService_Create(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()

	owner := testutil.NewTestUser("proj-owner")
	require.NoError(t, env.users.Create(ctx, owner))

	proj := testutil.NewTestProject(owner.ID, "Tracker", testutil.WithProjectKey("trk"))
	require.NoError(t, env.projects.Create(ctx, proj))

	assert.Equal(t, "TRK", proj.Key)

	// The owner joins as admin on creation.
	members, err := env.projects.ListMembers(ctx, proj.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, owner.ID, members[0].UserID)
	assert.Equal(t, domain.RoleAdmin, members[0].Role)
}

func TestProjectService_Create_KeyValidation(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()

	owner := testutil.NewTestUser("key-owner")
	require.NoError(t, env.users.Create(ctx, owner))

	for _, key := range []string{"", "A", "TRK1", "WAYTOOLONGKEY"} {
		proj := testutil.NewTestProject(owner.ID, "Bad key", testutil.WithProjectKey(key))
		err := env.projects.Create(ctx, proj)
		assert.Error(t, err, "key %q should be rejected", key)
	}
}

func TestProjectService_Delete_RequiresArchive(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()
	_, proj := env.seedProject(t, "delete")

	err := env.projects.Delete(ctx, proj.ID, false)
	assert.ErrorContains(t, err, "archived")

	require.NoError(t, env.projects.Archive(ctx, proj.ID))
	require.NoError(t, env.projects.Delete(ctx, proj.ID, false))

	_, err = env.projects.GetByID(ctx, proj.ID)
	assert.Error(t, err)
}

func TestProjectService_Delete_Force(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()
	_, proj := env.seedProject(t, "forcedelete")

	require.NoError(t, env.projects.Delete(ctx, proj.ID, true))
}

func TestProjectService_Members(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()
	owner, proj := env.seedProject(t, "members")

	dev := testutil.NewTestUser("members-dev")
	require.NoError(t, env.users.Create(ctx, dev))

	require.NoError(t, env.projects.AddMember(ctx, proj.ID, dev.ID, domain.RoleDeveloper))

	role, err := env.projects.MemberRole(ctx, proj.ID, dev.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleDeveloper, role)

	// The owner is an admin even though membership was created separately.
	role, err = env.projects.MemberRole(ctx, proj.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, role)

	err = env.projects.AddMember(ctx, proj.ID, dev.ID, "superuser")
	assert.ErrorContains(t, err, "unknown role")

	err = env.projects.RemoveMember(ctx, proj.ID, owner.ID)
	assert.ErrorContains(t, err, "owner cannot be removed")

	require.NoError(t, env.projects.RemoveMember(ctx, proj.ID, dev.ID))
	members, err := env.projects.ListMembers(ctx, proj.ID)
	require.NoError(t, err)
	assert.Len(t, members, 1)
}
