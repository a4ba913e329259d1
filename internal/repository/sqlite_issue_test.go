package repository

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/ctrack-io/ctrack/internal/db"
	"github.com/ctrack-io/ctrack/internal/domain"
	"github.com/ctrack-io/ctrack/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProject(t *testing.T, database *domainDB, name string) (*domain.User, *domain.Project) {
	t.Helper()
	ctx := context.Background()
	user := testutil.NewTestUser(name + "-owner")
	require.NoError(t, database.users.Create(ctx, user))
	proj := testutil.NewTestProject(user.ID, name)
	require.NoError(t, database.projects.Create(ctx, proj))
	return user, proj
}

// domainDB bundles the repos most issue tests need.
type domainDB struct {
	conn     *sql.DB
	users    *SQLiteUserRepo
	projects *SQLiteProjectRepo
	issues   *SQLiteIssueRepo
	sprints  *SQLiteSprintRepo
}

func newDomainDB(t *testing.T) *domainDB {
	conn := testutil.NewTestDB(t)
	return &domainDB{
		conn:     conn,
		users:    NewSQLiteUserRepo(conn),
		projects: NewSQLiteProjectRepo(conn),
		issues:   NewSQLiteIssueRepo(conn),
		sprints:  NewSQLiteSprintRepo(conn),
	}
}

func TestIssueRepo_CreateAndGetByID(t *testing.T) {
	d := newDomainDB(t)
	ctx := context.Background()
	user, proj := seedProject(t, d, "IssueBasic")

	due := time.Now().UTC().AddDate(0, 0, 14)
	issue := testutil.NewTestIssue(proj, 1, user.ID, db.SeedStatusTodo, "Fix login timeout",
		testutil.WithIssueType("bug"),
		testutil.WithPriority(domain.PriorityHigh),
		testutil.WithStoryPoints(3),
		testutil.WithDueDate(due),
	)
	require.NoError(t, d.issues.Create(ctx, issue))

	fetched, err := d.issues.GetByID(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, issue.Key, fetched.Key)
	assert.Equal(t, 1, fetched.Number)
	assert.Equal(t, "bug", fetched.Type)
	assert.Equal(t, domain.PriorityHigh, fetched.Priority)
	require.NotNil(t, fetched.StoryPoints)
	assert.Equal(t, 3, *fetched.StoryPoints)
	require.NotNil(t, fetched.DueDate)
	assert.Equal(t, due.Format("2006-01-02"), fetched.DueDate.Format("2006-01-02"))
	assert.Nil(t, fetched.AssigneeID)
	assert.Nil(t, fetched.SprintID)
}

func TestIssueRepo_GetByKey_CaseInsensitive(t *testing.T) {
	d := newDomainDB(t)
	ctx := context.Background()
	user, proj := seedProject(t, d, "IssueKey")

	issue := testutil.NewTestIssue(proj, 7, user.ID, db.SeedStatusTodo, "Key lookup")
	require.NoError(t, d.issues.Create(ctx, issue))

	fetched, err := d.issues.GetByKey(ctx, issue.Key)
	require.NoError(t, err)
	assert.Equal(t, issue.ID, fetched.ID)

	lower, err := d.issues.GetByKey(ctx, strings.ToLower(issue.Key))
	require.NoError(t, err)
	assert.Equal(t, issue.ID, lower.ID)
}

func TestIssueRepo_UniqueKey(t *testing.T) {
	d := newDomainDB(t)
	ctx := context.Background()
	user, proj := seedProject(t, d, "IssueDup")

	i1 := testutil.NewTestIssue(proj, 1, user.ID, db.SeedStatusTodo, "First")
	i2 := testutil.NewTestIssue(proj, 1, user.ID, db.SeedStatusTodo, "Second")
	require.NoError(t, d.issues.Create(ctx, i1))

	err := d.issues.Create(ctx, i2)
	assert.Error(t, err, "duplicate issue key should violate unique index")
}

func TestIssueRepo_ListByProject_Filters(t *testing.T) {
	d := newDomainDB(t)
	ctx := context.Background()
	user, proj := seedProject(t, d, "IssueFilters")

	assignee := testutil.NewTestUser("filter-assignee")
	require.NoError(t, d.users.Create(ctx, assignee))

	bug := testutil.NewTestIssue(proj, 1, user.ID, db.SeedStatusTodo, "Crash on save",
		testutil.WithIssueType("bug"),
		testutil.WithPriority(domain.PriorityHighest),
		testutil.WithAssignee(assignee.ID))
	story := testutil.NewTestIssue(proj, 2, user.ID, db.SeedStatusInProgress, "Onboarding flow",
		testutil.WithIssueType("story"))
	task := testutil.NewTestIssue(proj, 3, user.ID, db.SeedStatusTodo, "Rotate credentials")
	require.NoError(t, d.issues.Create(ctx, bug))
	require.NoError(t, d.issues.Create(ctx, story))
	require.NoError(t, d.issues.Create(ctx, task))

	all, err := d.issues.ListByProject(ctx, proj.ID, IssueFilters{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byStatus, err := d.issues.ListByProject(ctx, proj.ID, IssueFilters{StatusID: db.SeedStatusTodo})
	require.NoError(t, err)
	assert.Len(t, byStatus, 2)

	byType, err := d.issues.ListByProject(ctx, proj.ID, IssueFilters{Type: "bug"})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, bug.ID, byType[0].ID)

	byAssignee, err := d.issues.ListByProject(ctx, proj.ID, IssueFilters{AssigneeID: assignee.ID})
	require.NoError(t, err)
	require.Len(t, byAssignee, 1)
	assert.Equal(t, bug.ID, byAssignee[0].ID)

	bySearch, err := d.issues.ListByProject(ctx, proj.ID, IssueFilters{Search: "onboard"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, story.ID, bySearch[0].ID)
}

func TestIssueRepo_Backlog_ExcludesSprintIssuesAndOrdersByPriority(t *testing.T) {
	d := newDomainDB(t)
	ctx := context.Background()
	user, proj := seedProject(t, d, "Backlog")

	active := testutil.NewTestSprint(proj.ID, "Sprint 1", testutil.WithSprintStatus(domain.SprintActive))
	done := testutil.NewTestSprint(proj.ID, "Sprint 0", testutil.WithSprintStatus(domain.SprintCompleted))
	require.NoError(t, d.sprints.Create(ctx, active))
	require.NoError(t, d.sprints.Create(ctx, done))

	inSprint := testutil.NewTestIssue(proj, 1, user.ID, db.SeedStatusTodo, "Sprint work",
		testutil.WithSprint(active.ID))
	low := testutil.NewTestIssue(proj, 2, user.ID, db.SeedStatusTodo, "Low priority",
		testutil.WithPriority(domain.PriorityLow))
	urgent := testutil.NewTestIssue(proj, 3, user.ID, db.SeedStatusTodo, "Urgent",
		testutil.WithPriority(domain.PriorityHighest))
	fromOldSprint := testutil.NewTestIssue(proj, 4, user.ID, db.SeedStatusTodo, "Carried over",
		testutil.WithSprint(done.ID))
	require.NoError(t, d.issues.Create(ctx, inSprint))
	require.NoError(t, d.issues.Create(ctx, low))
	require.NoError(t, d.issues.Create(ctx, urgent))
	require.NoError(t, d.issues.Create(ctx, fromOldSprint))

	backlog, err := d.issues.ListBacklog(ctx, proj.ID)
	require.NoError(t, err)
	require.Len(t, backlog, 3, "active-sprint issue should not appear in backlog")
	assert.Equal(t, urgent.ID, backlog[0].ID, "highest priority first")
}

func TestIssueRepo_Update_NullableFields(t *testing.T) {
	d := newDomainDB(t)
	ctx := context.Background()
	user, proj := seedProject(t, d, "IssueNulls")

	assignee := testutil.NewTestUser("nulls-assignee")
	require.NoError(t, d.users.Create(ctx, assignee))

	issue := testutil.NewTestIssue(proj, 1, user.ID, db.SeedStatusTodo, "Mutable",
		testutil.WithAssignee(assignee.ID), testutil.WithStoryPoints(5))
	require.NoError(t, d.issues.Create(ctx, issue))

	issue.AssigneeID = nil
	issue.StoryPoints = nil
	issue.Title = "Mutable v2"
	issue.UpdatedAt = time.Now().UTC()
	require.NoError(t, d.issues.Update(ctx, issue))

	fetched, err := d.issues.GetByID(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mutable v2", fetched.Title)
	assert.Nil(t, fetched.AssigneeID)
	assert.Nil(t, fetched.StoryPoints)
}

func TestIssueRepo_MoveIncomplete_ToBacklog(t *testing.T) {
	d := newDomainDB(t)
	ctx := context.Background()
	user, proj := seedProject(t, d, "MoveIncomplete")

	sprint := testutil.NewTestSprint(proj.ID, "Sprint A", testutil.WithSprintStatus(domain.SprintActive))
	require.NoError(t, d.sprints.Create(ctx, sprint))

	finished := testutil.NewTestIssue(proj, 1, user.ID, db.SeedStatusDone, "Shipped",
		testutil.WithSprint(sprint.ID))
	open1 := testutil.NewTestIssue(proj, 2, user.ID, db.SeedStatusTodo, "Open A",
		testutil.WithSprint(sprint.ID))
	open2 := testutil.NewTestIssue(proj, 3, user.ID, db.SeedStatusInProgress, "Open B",
		testutil.WithSprint(sprint.ID))
	require.NoError(t, d.issues.Create(ctx, finished))
	require.NoError(t, d.issues.Create(ctx, open1))
	require.NoError(t, d.issues.Create(ctx, open2))

	moved, err := d.issues.MoveIncomplete(ctx, sprint.ID, nil, []string{db.SeedStatusDone})
	require.NoError(t, err)
	assert.Equal(t, 2, moved)

	// Done issue stays attached for sprint history.
	f, err := d.issues.GetByID(ctx, finished.ID)
	require.NoError(t, err)
	require.NotNil(t, f.SprintID)
	assert.Equal(t, sprint.ID, *f.SprintID)

	o, err := d.issues.GetByID(ctx, open1.ID)
	require.NoError(t, err)
	assert.Nil(t, o.SprintID)
}

func TestIssueRepo_MoveIncomplete_ToTargetSprint(t *testing.T) {
	d := newDomainDB(t)
	ctx := context.Background()
	user, proj := seedProject(t, d, "MoveTarget")

	from := testutil.NewTestSprint(proj.ID, "Sprint A", testutil.WithSprintStatus(domain.SprintActive))
	to := testutil.NewTestSprint(proj.ID, "Sprint B")
	require.NoError(t, d.sprints.Create(ctx, from))
	require.NoError(t, d.sprints.Create(ctx, to))

	open := testutil.NewTestIssue(proj, 1, user.ID, db.SeedStatusTodo, "Carry me",
		testutil.WithSprint(from.ID))
	require.NoError(t, d.issues.Create(ctx, open))

	moved, err := d.issues.MoveIncomplete(ctx, from.ID, &to.ID, []string{db.SeedStatusDone})
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	fetched, err := d.issues.GetByID(ctx, open.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.SprintID)
	assert.Equal(t, to.ID, *fetched.SprintID)
}

func TestIssueSequence_AllocatesMonotonically(t *testing.T) {
	conn := testutil.NewTestDB(t)
	seqRepo := NewSQLiteIssueSequenceRepo(conn)
	userRepo := NewSQLiteUserRepo(conn)
	projRepo := NewSQLiteProjectRepo(conn)
	ctx := context.Background()

	user := testutil.NewTestUser("seq-owner")
	require.NoError(t, userRepo.Create(ctx, user))
	proj := testutil.NewTestProject(user.ID, "Sequenced")
	require.NoError(t, projRepo.Create(ctx, proj))

	n1, err := seqRepo.NextIssueNumber(ctx, proj.ID)
	require.NoError(t, err)
	n2, err := seqRepo.NextIssueNumber(ctx, proj.ID)
	require.NoError(t, err)
	n3, err := seqRepo.NextIssueNumber(ctx, proj.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, n1)
	assert.Equal(t, 2, n2)
	assert.Equal(t, 3, n3)
}

func TestIssueSequence_SeedsPastExistingIssues(t *testing.T) {
	conn := testutil.NewTestDB(t)
	seqRepo := NewSQLiteIssueSequenceRepo(conn)
	userRepo := NewSQLiteUserRepo(conn)
	projRepo := NewSQLiteProjectRepo(conn)
	issueRepo := NewSQLiteIssueRepo(conn)
	ctx := context.Background()

	user := testutil.NewTestUser("seed-owner")
	require.NoError(t, userRepo.Create(ctx, user))
	proj := testutil.NewTestProject(user.ID, "Imported")
	require.NoError(t, projRepo.Create(ctx, proj))

	// Imported issues occupy numbers 1-5 without touching the sequence table.
	for n := 1; n <= 5; n++ {
		issue := testutil.NewTestIssue(proj, n, user.ID, db.SeedStatusTodo, "Imported issue")
		require.NoError(t, issueRepo.Create(ctx, issue))
	}

	next, err := seqRepo.NextIssueNumber(ctx, proj.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, next)
}
