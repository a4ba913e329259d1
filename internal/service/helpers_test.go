package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/ctrack-io/ctrack/internal/db"
	"github.com/ctrack-io/ctrack/internal/domain"
	"github.com/ctrack-io/ctrack/internal/repository"
	"github.com/ctrack-io/ctrack/internal/testutil"
	"github.com/stretchr/testify/require"
)

// svcEnv wires the full service stack over one in-memory database.
type svcEnv struct {
	conn *sql.DB
	uow  db.UnitOfWork

	users    UserService
	projects ProjectService
	wf       WorkflowService
	issues   IssueService
	sprints  SprintService
	boards   BoardService
	feed     ActivityService
	reports  ReportService

	userRepo     repository.UserRepo
	issueRepo    repository.IssueRepo
	sprintRepo   repository.SprintRepo
	activityRepo repository.ActivityRepo
}

func newSvcEnv(t *testing.T) *svcEnv {
	t.Helper()
	conn := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(conn)

	userRepo := repository.NewSQLiteUserRepo(conn)
	projRepo := repository.NewSQLiteProjectRepo(conn)
	statusRepo := repository.NewSQLiteStatusRepo(conn)
	transitionRepo := repository.NewSQLiteTransitionRepo(conn)
	issueRepo := repository.NewSQLiteIssueRepo(conn)
	sprintRepo := repository.NewSQLiteSprintRepo(conn)
	commentRepo := repository.NewSQLiteCommentRepo(conn)
	activityRepo := repository.NewSQLiteActivityRepo(conn)
	boardRepo := repository.NewSQLiteBoardRepo(conn)

	projects := NewProjectService(projRepo, uow)
	wf := NewWorkflowService(statusRepo, transitionRepo)

	return &svcEnv{
		conn:         conn,
		uow:          uow,
		users:        NewUserService(userRepo),
		projects:     projects,
		wf:           wf,
		issues:       NewIssueService(issueRepo, commentRepo, projects, wf, userRepo, sprintRepo, uow),
		sprints:      NewSprintService(sprintRepo, issueRepo, statusRepo, uow),
		boards:       NewBoardService(boardRepo, issueRepo, wf, sprintRepo),
		feed:         NewActivityService(activityRepo),
		reports:      NewReportService(sprintRepo, issueRepo, statusRepo, activityRepo),
		userRepo:     userRepo,
		issueRepo:    issueRepo,
		sprintRepo:   sprintRepo,
		activityRepo: activityRepo,
	}
}

// seedProject creates an owner and a project through the service layer.
func (e *svcEnv) seedProject(t *testing.T, name string) (*domain.User, *domain.Project) {
	t.Helper()
	ctx := context.Background()

	owner := testutil.NewTestUser(name + "-owner")
	require.NoError(t, e.users.Create(ctx, owner))

	proj := testutil.NewTestProject(owner.ID, name)
	require.NoError(t, e.projects.Create(ctx, proj))
	return owner, proj
}

// seedIssue creates an issue through the service layer so it gets a real key.
func (e *svcEnv) seedIssue(t *testing.T, proj *domain.Project, reporterID, title string, opts ...func(*domain.Issue)) *domain.Issue {
	t.Helper()
	issue := &domain.Issue{
		ProjectID:  proj.ID,
		Title:      title,
		ReporterID: reporterID,
	}
	for _, opt := range opts {
		opt(issue)
	}
	require.NoError(t, e.issues.Create(context.Background(), issue))
	return issue
}
