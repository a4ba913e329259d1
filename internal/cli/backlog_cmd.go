package cli

import (
	"context"
	"fmt"

	"github.com/ctrack-io/ctrack/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newBacklogCmd(app *App) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "backlog",
		Short: "List issues not assigned to any sprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, project)
			if err != nil {
				return err
			}
			issues, err := app.Issues.ListBacklog(ctx, projectID)
			if err != nil {
				return err
			}
			if len(issues) == 0 {
				fmt.Println("Backlog is empty.")
				return nil
			}
			fmt.Printf("%s\n", formatter.FormatIssueList(issueListData(ctx, app, projectID, issues)))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project key or ID")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}
