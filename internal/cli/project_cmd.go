package cli

import (
	"context"
	"fmt"

	"github.com/ctrack-io/ctrack/internal/cli/formatter"
	"github.com/ctrack-io/ctrack/internal/domain"
	"github.com/ctrack-io/ctrack/internal/repository"
	"github.com/spf13/cobra"
)

func newProjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	cmd.AddCommand(
		newProjectAddCmd(app),
		newProjectListCmd(app),
		newProjectInspectCmd(app),
		newProjectUpdateCmd(app),
		newProjectArchiveCmd(app),
		newProjectUnarchiveCmd(app),
		newProjectRemoveCmd(app),
		newProjectMemberCmd(app),
		newProjectImportCmd(app),
	)

	return cmd
}

func newProjectAddCmd(app *App) *cobra.Command {
	var key, name, description string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new project",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			owner, err := currentUser(ctx, app)
			if err != nil {
				return err
			}

			p := &domain.Project{
				Key:         key,
				Name:        name,
				Description: description,
				OwnerID:     owner.ID,
			}
			if err := app.Projects.Create(ctx, p); err != nil {
				return err
			}

			fmt.Printf("Created project %s [%s]\n", p.Name, p.Key)
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "Project key (2-10 uppercase letters, e.g. PROJ)")
	cmd.Flags().StringVar(&name, "name", "", "Project name")
	cmd.Flags().StringVar(&description, "description", "", "Project description")
	_ = cmd.MarkFlagRequired("key")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newProjectListCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := app.Projects.List(context.Background(), all)
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				fmt.Println("No projects found.")
				return nil
			}
			fmt.Printf("%s\n", formatter.FormatProjectList(projects))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include archived projects")

	return cmd
}

func newProjectInspectCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect PROJECT",
		Short: "Show project details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			p, err := app.Projects.GetByID(ctx, projectID)
			if err != nil {
				return err
			}

			members, err := app.Projects.ListMembers(ctx, projectID)
			if err != nil {
				return err
			}
			statuses, err := app.Workflow.ListStatuses(ctx, projectID)
			if err != nil {
				return err
			}
			issues, err := app.Issues.ListByProject(ctx, projectID, repository.IssueFilters{})
			if err != nil {
				return err
			}

			doneSet := make(map[string]bool)
			for _, s := range statuses {
				if s.Category == domain.CategoryDone {
					doneSet[s.ID] = true
				}
			}
			open, done := 0, 0
			for _, i := range issues {
				if doneSet[i.StatusID] {
					done++
				} else {
					open++
				}
			}

			users := userMap(ctx, app, members)
			data := formatter.ProjectDetailData{
				Project:  p,
				Owner:    users[p.OwnerID],
				Members:  members,
				Users:    users,
				Statuses: statuses,
				Open:     open,
				Done:     done,
			}
			fmt.Printf("%s\n", formatter.FormatProjectDetail(data))
			return nil
		},
	}
}

// userMap fetches the users behind a member list, keyed by ID. Lookup
// failures degrade to missing entries rather than aborting the view.
func userMap(ctx context.Context, app *App, members []*domain.ProjectMember) map[string]*domain.User {
	users := make(map[string]*domain.User, len(members))
	for _, m := range members {
		if _, ok := users[m.UserID]; ok {
			continue
		}
		if u, err := app.Users.GetByID(ctx, m.UserID); err == nil {
			users[u.ID] = u
		}
	}
	return users
}

func newProjectUpdateCmd(app *App) *cobra.Command {
	var name, description string

	cmd := &cobra.Command{
		Use:   "update PROJECT",
		Short: "Update a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			p, err := app.Projects.GetByID(ctx, projectID)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("name") {
				p.Name = name
			}
			if cmd.Flags().Changed("description") {
				p.Description = description
			}
			if err := app.Projects.Update(ctx, p); err != nil {
				return err
			}

			fmt.Printf("Updated project %s [%s]\n", p.Name, p.Key)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Project name")
	cmd.Flags().StringVar(&description, "description", "", "Project description")

	return cmd
}

func newProjectArchiveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "archive PROJECT",
		Short: "Archive a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Projects.Archive(ctx, projectID); err != nil {
				return err
			}
			fmt.Printf("Archived project %s\n", args[0])
			return nil
		},
	}
}

func newProjectUnarchiveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "unarchive PROJECT",
		Short: "Unarchive a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Projects.Unarchive(ctx, projectID); err != nil {
				return err
			}
			fmt.Printf("Unarchived project %s\n", args[0])
			return nil
		},
	}
}

func newProjectRemoveCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "remove PROJECT",
		Short: "Remove a project and all its issues",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Projects.Delete(ctx, projectID, force); err != nil {
				return err
			}
			fmt.Printf("Removed project %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Remove even if the project is not archived")

	return cmd
}

func newProjectMemberCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Manage project members",
	}

	var role string
	addCmd := &cobra.Command{
		Use:   "add PROJECT USER",
		Short: "Add a member to a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			u, err := resolveUser(ctx, app, args[1])
			if err != nil {
				return err
			}
			if err := app.Projects.AddMember(ctx, projectID, u.ID, domain.ProjectRole(role)); err != nil {
				return err
			}
			fmt.Printf("Added %s to %s as %s\n", u.Label(), args[0], role)
			return nil
		},
	}
	addCmd.Flags().StringVar(&role, "role", "developer", "Member role (admin|manager|developer|viewer)")

	removeCmd := &cobra.Command{
		Use:   "remove PROJECT USER",
		Short: "Remove a member from a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			u, err := resolveUser(ctx, app, args[1])
			if err != nil {
				return err
			}
			if err := app.Projects.RemoveMember(ctx, projectID, u.ID); err != nil {
				return err
			}
			fmt.Printf("Removed %s from %s\n", u.Label(), args[0])
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list PROJECT",
		Short: "List project members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			members, err := app.Projects.ListMembers(ctx, projectID)
			if err != nil {
				return err
			}
			users := userMap(ctx, app, members)
			rows := make([][]string, 0, len(members))
			for _, m := range members {
				name := m.UserID
				if u, ok := users[m.UserID]; ok {
					name = u.Label()
				}
				rows = append(rows, []string{
					formatter.Bold(name),
					formatter.RoleBadge(m.Role),
					formatter.Dim(formatter.HumanDate(m.JoinedAt)),
				})
			}
			fmt.Println(formatter.RenderTable([]string{"MEMBER", "ROLE", "JOINED"}, rows))
			return nil
		},
	}

	cmd.AddCommand(addCmd, removeCmd, listCmd)
	return cmd
}

func newProjectImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import a project from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			owner, err := currentUser(ctx, app)
			if err != nil {
				return err
			}

			result, err := app.Import.ImportProject(ctx, args[0], owner.ID)
			if err != nil {
				return err
			}

			fmt.Printf("Imported project %s [%s] — %d statuses, %d transitions, %d sprints, %d issues\n",
				result.Project.Name, result.Project.Key,
				result.StatusCount, result.TransitionCount, result.SprintCount, result.IssueCount)
			return nil
		},
	}
}
