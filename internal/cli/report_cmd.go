package cli

import (
	"context"
	"fmt"

	"github.com/ctrack-io/ctrack/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newReportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Sprint and velocity reports",
	}

	cmd.AddCommand(
		newReportSprintCmd(app),
		newReportVelocityCmd(app),
		newReportBurndownCmd(app),
	)

	return cmd
}

func newReportSprintCmd(app *App) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "sprint SPRINT",
		Short: "Summary of a single sprint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, project)
			if err != nil {
				return err
			}
			sprint, err := resolveSprint(ctx, app, projectID, args[0])
			if err != nil {
				return err
			}
			report, err := app.Reports.SprintReport(ctx, sprint.ID)
			if err != nil {
				return err
			}
			fmt.Printf("%s\n", formatter.FormatSprintReport(report))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project key or ID")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func newReportVelocityCmd(app *App) *cobra.Command {
	var project string
	var last int

	cmd := &cobra.Command{
		Use:   "velocity",
		Short: "Completed points across recent sprints",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, project)
			if err != nil {
				return err
			}
			report, err := app.Reports.Velocity(ctx, projectID, last)
			if err != nil {
				return err
			}
			fmt.Printf("%s\n", formatter.FormatVelocity(report))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project key or ID")
	cmd.Flags().IntVar(&last, "last", 5, "Number of completed sprints to include")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func newReportBurndownCmd(app *App) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "burndown SPRINT",
		Short: "Remaining story points over a sprint's days",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, project)
			if err != nil {
				return err
			}
			sprint, err := resolveSprint(ctx, app, projectID, args[0])
			if err != nil {
				return err
			}
			report, err := app.Reports.Burndown(ctx, sprint.ID)
			if err != nil {
				return err
			}
			fmt.Printf("%s\n", formatter.FormatBurndown(report))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project key or ID")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}
