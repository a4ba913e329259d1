package cli

import (
	"context"
	"fmt"

	"github.com/ctrack-io/ctrack/internal/cli/formatter"
	"github.com/ctrack-io/ctrack/internal/domain"
	"github.com/spf13/cobra"
)

func newWorkflowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflow",
		Short: "Manage statuses and transition rules",
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Manage statuses",
	}
	statusCmd.AddCommand(
		newStatusAddCmd(app),
		newStatusListCmd(app),
		newStatusUpdateCmd(app),
		newStatusRemoveCmd(app),
	)

	transitionCmd := &cobra.Command{
		Use:   "transition",
		Short: "Manage transition rules",
	}
	transitionCmd.AddCommand(
		newTransitionAddCmd(app),
		newTransitionListCmd(app),
		newTransitionRemoveCmd(app),
	)

	cmd.AddCommand(statusCmd, transitionCmd)
	return cmd
}

func newStatusAddCmd(app *App) *cobra.Command {
	var project, name, category, color string
	var order int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a project status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, project)
			if err != nil {
				return err
			}

			s := &domain.Status{
				ProjectID: &projectID,
				Name:      name,
				Category:  domain.StatusCategory(category),
				Color:     color,
				Order:     order,
			}
			if err := app.Workflow.CreateStatus(ctx, s); err != nil {
				return err
			}
			fmt.Printf("Created status %s\n", s.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project key or ID")
	cmd.Flags().StringVar(&name, "name", "", "Status name")
	cmd.Flags().StringVar(&category, "category", "in_progress", "Category (todo|in_progress|done)")
	cmd.Flags().StringVar(&color, "color", "", "Display color")
	cmd.Flags().IntVar(&order, "order", 0, "Sort order")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newStatusListCmd(app *App) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List statuses available to a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID := ""
			if project != "" {
				var err error
				projectID, err = resolveProjectID(ctx, app, project)
				if err != nil {
					return err
				}
			}
			statuses, err := app.Workflow.ListStatuses(ctx, projectID)
			if err != nil {
				return err
			}
			fmt.Printf("%s\n", formatter.FormatStatusList(statuses))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project key or ID (omit for global statuses only)")

	return cmd
}

func newStatusUpdateCmd(app *App) *cobra.Command {
	var project, name, category, color string
	var order int

	cmd := &cobra.Command{
		Use:   "update STATUS",
		Short: "Update a project status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, project)
			if err != nil {
				return err
			}
			s, err := resolveStatus(ctx, app, projectID, args[0])
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("name") {
				s.Name = name
			}
			if cmd.Flags().Changed("category") {
				s.Category = domain.StatusCategory(category)
			}
			if cmd.Flags().Changed("color") {
				s.Color = color
			}
			if cmd.Flags().Changed("order") {
				s.Order = order
			}
			if err := app.Workflow.UpdateStatus(ctx, s); err != nil {
				return err
			}
			fmt.Printf("Updated status %s\n", s.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project key or ID")
	cmd.Flags().StringVar(&name, "name", "", "Status name")
	cmd.Flags().StringVar(&category, "category", "", "Category (todo|in_progress|done)")
	cmd.Flags().StringVar(&color, "color", "", "Display color")
	cmd.Flags().IntVar(&order, "order", 0, "Sort order")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func newStatusRemoveCmd(app *App) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "remove STATUS",
		Short: "Delete a project status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, project)
			if err != nil {
				return err
			}
			s, err := resolveStatus(ctx, app, projectID, args[0])
			if err != nil {
				return err
			}
			if err := app.Workflow.DeleteStatus(ctx, s.ID); err != nil {
				return err
			}
			fmt.Printf("Deleted status %s\n", s.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project key or ID")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func newTransitionAddCmd(app *App) *cobra.Command {
	var project, from, to, name string
	var roles []string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Allow a move between two statuses",
		Long: `Allow a move between two statuses. As soon as a project has any
transition rules, only the listed moves are permitted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, project)
			if err != nil {
				return err
			}
			fromStatus, err := resolveStatus(ctx, app, projectID, from)
			if err != nil {
				return err
			}
			toStatus, err := resolveStatus(ctx, app, projectID, to)
			if err != nil {
				return err
			}

			t := &domain.WorkflowTransition{
				ProjectID:    projectID,
				FromStatusID: fromStatus.ID,
				ToStatusID:   toStatus.ID,
				Name:         name,
			}
			for _, r := range roles {
				t.AllowedRoles = append(t.AllowedRoles, domain.ProjectRole(r))
			}
			if err := app.Workflow.AddTransition(ctx, t); err != nil {
				return err
			}
			fmt.Printf("Allowed %s → %s\n", fromStatus.Name, toStatus.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project key or ID")
	cmd.Flags().StringVar(&from, "from", "", "Source status")
	cmd.Flags().StringVar(&to, "to", "", "Target status")
	cmd.Flags().StringVar(&name, "name", "", "Transition label")
	cmd.Flags().StringSliceVar(&roles, "roles", nil, "Roles allowed to execute this move (default: any)")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func newTransitionListCmd(app *App) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a project's transition rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, project)
			if err != nil {
				return err
			}
			transitions, err := app.Workflow.ListTransitions(ctx, projectID)
			if err != nil {
				return err
			}

			statuses := make(map[string]*domain.Status)
			if list, err := app.Workflow.ListStatuses(ctx, projectID); err == nil {
				for _, s := range list {
					statuses[s.ID] = s
				}
			}
			fmt.Printf("%s\n", formatter.FormatTransitionList(transitions, statuses))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project key or ID")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func newTransitionRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove TRANSITION_ID",
		Short: "Delete a transition rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Workflow.RemoveTransition(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Println("Deleted transition rule.")
			return nil
		},
	}
}
