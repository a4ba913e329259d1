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

func TestBoardService_DefaultForProject(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()
	_, proj := env.seedProject(t, "defboard")

	board, err := env.boards.DefaultForProject(ctx, proj.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BoardKanban, board.Type)
	// One column per seeded global status, in status order.
	assert.Equal(t, []string{
		db.SeedStatusTodo, db.SeedStatusInProgress, db.SeedStatusInReview, db.SeedStatusDone,
	}, board.Columns)

	// A second call returns the same board instead of creating another.
	again, err := env.boards.DefaultForProject(ctx, proj.ID)
	require.NoError(t, err)
	assert.Equal(t, board.ID, again.ID)
}

func TestBoardService_Load(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()
	owner, proj := env.seedProject(t, "loadboard")

	todo := env.seedIssue(t, proj, owner.ID, "Still open")
	doing := env.seedIssue(t, proj, owner.ID, "In flight")
	require.NoError(t, env.issues.Move(ctx, doing.ID, db.SeedStatusInProgress, owner.ID))

	board, err := env.boards.DefaultForProject(ctx, proj.ID)
	require.NoError(t, err)

	data, err := env.boards.Load(ctx, board.ID, domain.BoardFilters{})
	require.NoError(t, err)
	require.Len(t, data.Columns, 4)

	assert.Equal(t, db.SeedStatusTodo, data.Columns[0].Status.ID)
	require.Len(t, data.Columns[0].Issues, 1)
	assert.Equal(t, todo.ID, data.Columns[0].Issues[0].ID)

	assert.Equal(t, db.SeedStatusInProgress, data.Columns[1].Status.ID)
	require.Len(t, data.Columns[1].Issues, 1)
	assert.Equal(t, doing.ID, data.Columns[1].Issues[0].ID)

	assert.Empty(t, data.Columns[2].Issues)
	assert.Empty(t, data.Columns[3].Issues)
}

func TestBoardService_Load_Filters(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()
	owner, proj := env.seedProject(t, "filterboard")

	dev := testutil.NewTestUser("filterboard-dev")
	require.NoError(t, env.users.Create(ctx, dev))

	mine := env.seedIssue(t, proj, owner.ID, "Login page bug",
		testutil.WithAssignee(dev.ID), testutil.WithIssueType("bug"))
	env.seedIssue(t, proj, owner.ID, "Unrelated story")

	board, err := env.boards.DefaultForProject(ctx, proj.ID)
	require.NoError(t, err)

	data, err := env.boards.Load(ctx, board.ID, domain.BoardFilters{AssigneeID: dev.ID})
	require.NoError(t, err)
	require.Len(t, data.Columns[0].Issues, 1)
	assert.Equal(t, mine.ID, data.Columns[0].Issues[0].ID)

	data, err = env.boards.Load(ctx, board.ID, domain.BoardFilters{Unassigned: true})
	require.NoError(t, err)
	require.Len(t, data.Columns[0].Issues, 1)
	assert.Equal(t, "Unrelated story", data.Columns[0].Issues[0].Title)

	data, err = env.boards.Load(ctx, board.ID, domain.BoardFilters{Search: "login"})
	require.NoError(t, err)
	require.Len(t, data.Columns[0].Issues, 1)
	assert.Equal(t, mine.ID, data.Columns[0].Issues[0].ID)

	data, err = env.boards.Load(ctx, board.ID, domain.BoardFilters{IssueType: "epic"})
	require.NoError(t, err)
	assert.Empty(t, data.Columns[0].Issues)
}

func TestBoardService_Load_ScrumShowsActiveSprint(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()
	owner, proj := env.seedProject(t, "scrumboard")

	sprint := testutil.NewTestSprint(proj.ID, "Sprint 1")
	require.NoError(t, env.sprints.Create(ctx, sprint))

	inSprint := env.seedIssue(t, proj, owner.ID, "Committed work",
		testutil.WithSprint(sprint.ID))
	env.seedIssue(t, proj, owner.ID, "Backlog noise")

	require.NoError(t, env.sprints.Start(ctx, sprint.ID))

	board := testutil.NewTestBoard(proj.ID, "Scrum",
		testutil.WithBoardType(domain.BoardScrum))
	require.NoError(t, env.boards.Create(ctx, board))

	data, err := env.boards.Load(ctx, board.ID, domain.BoardFilters{})
	require.NoError(t, err)
	require.Len(t, data.Columns[0].Issues, 1)
	assert.Equal(t, inSprint.ID, data.Columns[0].Issues[0].ID)
}

func TestBoardService_Create_Validation(t *testing.T) {
	env := newSvcEnv(t)
	ctx := context.Background()
	_, proj := env.seedProject(t, "boardval")

	err := env.boards.Create(ctx, testutil.NewTestBoard(proj.ID, "   "))
	assert.ErrorContains(t, err, "name is required")

	err = env.boards.Create(ctx, testutil.NewTestBoard(proj.ID, "Odd",
		testutil.WithBoardType("timeline")))
	assert.ErrorContains(t, err, "unknown board type")
}
