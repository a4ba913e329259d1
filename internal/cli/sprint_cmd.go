package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/ctrack-io/ctrack/internal/cli/formatter"
	"github.com/ctrack-io/ctrack/internal/domain"
	"github.com/ctrack-io/ctrack/internal/repository"
	"github.com/spf13/cobra"
)

func newSprintCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sprint",
		Short: "Manage sprints",
	}

	cmd.AddCommand(
		newSprintAddCmd(app),
		newSprintListCmd(app),
		newSprintInspectCmd(app),
		newSprintStartCmd(app),
		newSprintCompleteCmd(app),
		newSprintRemoveCmd(app),
	)

	return cmd
}

func newSprintAddCmd(app *App) *cobra.Command {
	var project, name, goal, start, end string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new sprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, project)
			if err != nil {
				return err
			}

			startDate, err := time.Parse("2006-01-02", start)
			if err != nil {
				return fmt.Errorf("invalid start date %q (expected YYYY-MM-DD)", start)
			}
			endDate, err := time.Parse("2006-01-02", end)
			if err != nil {
				return fmt.Errorf("invalid end date %q (expected YYYY-MM-DD)", end)
			}

			s := &domain.Sprint{
				ProjectID: projectID,
				Name:      name,
				Goal:      goal,
				StartDate: startDate,
				EndDate:   endDate,
				Status:    domain.SprintPlanned,
			}
			if err := app.Sprints.Create(ctx, s); err != nil {
				return err
			}
			fmt.Printf("Created sprint %s\n", s.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project key or ID")
	cmd.Flags().StringVar(&name, "name", "", "Sprint name")
	cmd.Flags().StringVar(&goal, "goal", "", "Sprint goal")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func newSprintListCmd(app *App) *cobra.Command {
	var project, status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a project's sprints",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, project)
			if err != nil {
				return err
			}
			sprints, err := app.Sprints.ListByProject(ctx, projectID, domain.SprintStatus(status))
			if err != nil {
				return err
			}
			if len(sprints) == 0 {
				fmt.Println("No sprints found.")
				return nil
			}
			fmt.Printf("%s\n", formatter.FormatSprintList(sprints))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project key or ID")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (planned|active|completed)")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func newSprintInspectCmd(app *App) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "inspect SPRINT",
		Short: "Show sprint details and its issues",
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

			issues, err := app.Issues.ListByProject(ctx, projectID, repository.IssueFilters{})
			if err != nil {
				return err
			}
			inSprint := issues[:0]
			for _, i := range issues {
				if i.SprintID != nil && *i.SprintID == sprint.ID {
					inSprint = append(inSprint, i)
				}
			}

			statuses := make(map[string]*domain.Status)
			if list, err := app.Workflow.ListStatuses(ctx, projectID); err == nil {
				for _, s := range list {
					statuses[s.ID] = s
				}
			}

			fmt.Printf("%s\n", formatter.FormatSprintDetail(sprint, inSprint, statuses))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project key or ID")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func newSprintStartCmd(app *App) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "start SPRINT",
		Short: "Start a planned sprint",
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
			if err := app.Sprints.Start(ctx, sprint.ID); err != nil {
				return err
			}
			fmt.Printf("Started sprint %s\n", sprint.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project key or ID")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func newSprintCompleteCmd(app *App) *cobra.Command {
	var project, to string

	cmd := &cobra.Command{
		Use:   "complete SPRINT",
		Short: "Complete an active sprint",
		Long: `Complete an active sprint. Unfinished issues move to the backlog,
or to another planned sprint when --to is given.`,
		Args: cobra.ExactArgs(1),
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

			var target *domain.Sprint
			var targetID *string
			if to != "" {
				target, err = resolveSprint(ctx, app, projectID, to)
				if err != nil {
					return err
				}
				targetID = &target.ID
			}

			result, err := app.Sprints.Complete(ctx, sprint.ID, targetID)
			if err != nil {
				return err
			}
			fmt.Println(formatter.FormatCompletionSummary(result, target))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project key or ID")
	cmd.Flags().StringVar(&to, "to", "", "Sprint to carry unfinished issues into")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func newSprintRemoveCmd(app *App) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "remove SPRINT",
		Short: "Delete a sprint",
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
			if err := app.Sprints.Delete(ctx, sprint.ID); err != nil {
				return err
			}
			fmt.Printf("Deleted sprint %s\n", sprint.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project key or ID")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}
