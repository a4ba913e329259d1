package cli

import (
	"github.com/ctrack-io/ctrack/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Users       service.UserService
	Projects    service.ProjectService
	Workflow    service.WorkflowService
	Issues      service.IssueService
	Sprints     service.SprintService
	Boards      service.BoardService
	Feed        service.ActivityService
	Attachments service.AttachmentService
	Reports     service.ReportService
	Import      service.ImportService

	// CurrentUsername identifies the acting user (from CTRACK_USER).
	CurrentUsername string

	// IsInteractive reports whether stdin is a terminal; gates TUI entrypoints.
	IsInteractive func() bool
}

// NewRootCmd creates the top-level "ctrack" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "ctrack",
		Short: "Issue tracker with sprints, boards, and workflow rules",
	}

	root.AddCommand(
		newUserCmd(app),
		newProjectCmd(app),
		newIssueCmd(app),
		newBacklogCmd(app),
		newSprintCmd(app),
		newBoardCmd(app),
		newWorkflowCmd(app),
		newFeedCmd(app),
		newReportCmd(app),
	)

	return root
}
