package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ctrack-io/ctrack/internal/cli"
	"github.com/ctrack-io/ctrack/internal/db"
	"github.com/ctrack-io/ctrack/internal/repository"
	"github.com/ctrack-io/ctrack/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Determine DB path: env var or default ~/.ctrack/ctrack.db
	dbPath := os.Getenv("CTRACK_DB")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".ctrack", "ctrack.db")
	}

	// Attachment files live next to the database unless overridden.
	dataDir := os.Getenv("CTRACK_DATA_DIR")
	if dataDir == "" {
		dataDir = filepath.Join(filepath.Dir(dbPath), "attachments")
	}

	// Open database
	database, err := db.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	userRepo := repository.NewSQLiteUserRepo(database)
	projectRepo := repository.NewSQLiteProjectRepo(database)
	statusRepo := repository.NewSQLiteStatusRepo(database)
	transitionRepo := repository.NewSQLiteTransitionRepo(database)
	issueRepo := repository.NewSQLiteIssueRepo(database)
	commentRepo := repository.NewSQLiteCommentRepo(database)
	sprintRepo := repository.NewSQLiteSprintRepo(database)
	boardRepo := repository.NewSQLiteBoardRepo(database)
	activityRepo := repository.NewSQLiteActivityRepo(database)
	attachmentRepo := repository.NewSQLiteAttachmentRepo(database)

	// Wire unit of work for transactional operations
	uow := db.NewSQLiteUnitOfWork(database)

	// Use-case logging goes to stderr when CTRACK_LOG is set.
	var observer service.UseCaseObserver = service.NoopUseCaseObserver{}
	if os.Getenv("CTRACK_LOG") != "" {
		observer = service.NewLogUseCaseObserver(os.Stderr)
	}

	// Wire services
	projectSvc := service.NewProjectService(projectRepo, uow)
	workflowSvc := service.NewWorkflowService(statusRepo, transitionRepo)
	issueSvc := service.NewIssueService(issueRepo, commentRepo, projectSvc, workflowSvc, userRepo, sprintRepo, uow, observer)

	app := &cli.App{
		Users:       service.NewUserService(userRepo),
		Projects:    projectSvc,
		Workflow:    workflowSvc,
		Issues:      issueSvc,
		Sprints:     service.NewSprintService(sprintRepo, issueRepo, statusRepo, uow, observer),
		Boards:      service.NewBoardService(boardRepo, issueRepo, workflowSvc, sprintRepo),
		Feed:        service.NewActivityService(activityRepo),
		Attachments: service.NewAttachmentService(attachmentRepo, issueRepo, dataDir),
		Reports:     service.NewReportService(sprintRepo, issueRepo, statusRepo, activityRepo),
		Import:      service.NewImportService(uow),

		CurrentUsername: os.Getenv("CTRACK_USER"),
	}

	// Detect interactive terminal for TUI entrypoints.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	// Execute root command
	rootCmd := cli.NewRootCmd(app)
	return rootCmd.Execute()
}
