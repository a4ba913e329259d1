package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ctrack-io/ctrack/internal/cli/formatter"
	"github.com/ctrack-io/ctrack/internal/domain"
	"github.com/ctrack-io/ctrack/internal/repository"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newIssueCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Manage issues",
	}

	cmd.AddCommand(
		newIssueAddCmd(app),
		newIssueListCmd(app),
		newIssueInspectCmd(app),
		newIssueUpdateCmd(app),
		newIssueMoveCmd(app),
		newIssueAssignCmd(app),
		newIssueSprintCmd(app),
		newIssueCommentCmd(app),
		newIssueAttachCmd(app),
		newIssueHistoryCmd(app),
		newIssueRemoveCmd(app),
	)

	return cmd
}

// issueEditFlags registers the flags shared by `issue add` and `issue update`.
func issueEditFlags(flags *pflag.FlagSet, title, issueType, description, priority, points, due, epic *string) {
	flags.StringVar(title, "title", "", "Issue title")
	flags.StringVar(issueType, "type", "task", "Issue type (epic|story|task|bug|subtask)")
	flags.StringVar(description, "description", "", "Issue description")
	flags.StringVar(priority, "priority", "medium", "Priority (lowest|low|medium|high|highest)")
	flags.StringVar(points, "points", "", "Story points")
	flags.StringVar(due, "due", "", "Due date (YYYY-MM-DD)")
	flags.StringVar(epic, "epic", "", "Epic issue key")
}

func parsePoints(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return nil, fmt.Errorf("invalid story points %q", s)
	}
	return &v, nil
}

func parseDue(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("invalid due date %q (expected YYYY-MM-DD)", s)
	}
	return &t, nil
}

func newIssueAddCmd(app *App) *cobra.Command {
	var project, title, issueType, description, priority, points, due, epic string
	var interactive bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new issue",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			reporter, err := currentUser(ctx, app)
			if err != nil {
				return err
			}
			projectID, err := resolveProjectID(ctx, app, project)
			if err != nil {
				return err
			}

			if interactive {
				if app.IsInteractive != nil && !app.IsInteractive() {
					return fmt.Errorf("--interactive requires a terminal")
				}
				issue, err := runIssueForm(ctx, app, projectID, reporter.ID)
				if err != nil {
					return err
				}
				fmt.Printf("Created issue %s\n", issue.Key)
				return nil
			}

			if title == "" {
				return fmt.Errorf("--title is required (or use --interactive)")
			}

			sp, err := parsePoints(points)
			if err != nil {
				return err
			}
			dueDate, err := parseDue(due)
			if err != nil {
				return err
			}

			issue := &domain.Issue{
				ProjectID:   projectID,
				Title:       title,
				Type:        issueType,
				Description: description,
				Priority:    domain.Priority(priority),
				ReporterID:  reporter.ID,
				StoryPoints: sp,
				DueDate:     dueDate,
			}
			if epic != "" {
				e, err := resolveIssue(ctx, app, epic)
				if err != nil {
					return err
				}
				issue.EpicID = &e.ID
			}

			if err := app.Issues.Create(ctx, issue); err != nil {
				return err
			}
			fmt.Printf("Created issue %s\n", issue.Key)
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project key or ID")
	issueEditFlags(cmd.Flags(), &title, &issueType, &description, &priority, &points, &due, &epic)
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Fill in fields interactively")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func newIssueListCmd(app *App) *cobra.Command {
	var project, status, issueType, assignee, priority, epic, search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List issues in a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, project)
			if err != nil {
				return err
			}

			f := repository.IssueFilters{
				Type:     issueType,
				Priority: domain.Priority(priority),
				Search:   search,
			}
			if status != "" {
				st, err := resolveStatus(ctx, app, projectID, status)
				if err != nil {
					return err
				}
				f.StatusID = st.ID
			}
			if assignee != "" {
				u, err := resolveUser(ctx, app, assignee)
				if err != nil {
					return err
				}
				f.AssigneeID = u.ID
			}
			if epic != "" {
				e, err := resolveIssue(ctx, app, epic)
				if err != nil {
					return err
				}
				f.EpicID = e.ID
			}

			issues, err := app.Issues.ListByProject(ctx, projectID, f)
			if err != nil {
				return err
			}
			if len(issues) == 0 {
				fmt.Println("No issues found.")
				return nil
			}
			fmt.Printf("%s\n", formatter.FormatIssueList(issueListData(ctx, app, projectID, issues)))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project key or ID")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status name")
	cmd.Flags().StringVar(&issueType, "type", "", "Filter by issue type")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Filter by assignee")
	cmd.Flags().StringVar(&priority, "priority", "", "Filter by priority")
	cmd.Flags().StringVar(&epic, "epic", "", "Filter by epic key")
	cmd.Flags().StringVar(&search, "search", "", "Search in title and description")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

// issueListData builds the status and user lookups a rendered issue list needs.
func issueListData(ctx context.Context, app *App, projectID string, issues []*domain.Issue) formatter.IssueListData {
	data := formatter.IssueListData{
		Issues:   issues,
		Statuses: make(map[string]*domain.Status),
		Users:    make(map[string]*domain.User),
	}
	if statuses, err := app.Workflow.ListStatuses(ctx, projectID); err == nil {
		for _, s := range statuses {
			data.Statuses[s.ID] = s
		}
	}
	for _, i := range issues {
		if i.AssigneeID == nil {
			continue
		}
		if _, ok := data.Users[*i.AssigneeID]; ok {
			continue
		}
		if u, err := app.Users.GetByID(ctx, *i.AssigneeID); err == nil {
			data.Users[u.ID] = u
		}
	}
	return data
}

func newIssueInspectCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect ISSUE",
		Short: "Show issue details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			issue, err := resolveIssue(ctx, app, args[0])
			if err != nil {
				return err
			}

			data := formatter.IssueDetailData{
				Issue: issue,
				Users: make(map[string]*domain.User),
			}
			if st, err := resolveStatus(ctx, app, issue.ProjectID, issue.StatusID); err == nil {
				data.Status = st
			}
			if issue.AssigneeID != nil {
				data.Assignee, _ = app.Users.GetByID(ctx, *issue.AssigneeID)
			}
			data.Reporter, _ = app.Users.GetByID(ctx, issue.ReporterID)
			if issue.EpicID != nil {
				data.Epic, _ = app.Issues.GetByID(ctx, *issue.EpicID)
			}
			if issue.SprintID != nil {
				data.Sprint, _ = app.Sprints.GetByID(ctx, *issue.SprintID)
			}
			data.Comments, _ = app.Issues.ListComments(ctx, issue.ID)
			for _, c := range data.Comments {
				if _, ok := data.Users[c.AuthorID]; ok {
					continue
				}
				if u, err := app.Users.GetByID(ctx, c.AuthorID); err == nil {
					data.Users[u.ID] = u
				}
			}
			if actor, err := currentUser(ctx, app); err == nil {
				data.Targets, _ = app.Issues.AvailableTransitions(ctx, issue.ID, actor.ID)
			}

			fmt.Printf("%s\n", formatter.FormatIssueDetail(data))
			return nil
		},
	}
}

func newIssueUpdateCmd(app *App) *cobra.Command {
	var title, issueType, description, priority, points, due, epic string

	cmd := &cobra.Command{
		Use:   "update ISSUE",
		Short: "Update an issue's fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			actor, err := currentUser(ctx, app)
			if err != nil {
				return err
			}
			issue, err := resolveIssue(ctx, app, args[0])
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("title") {
				issue.Title = title
			}
			if cmd.Flags().Changed("type") {
				issue.Type = issueType
			}
			if cmd.Flags().Changed("description") {
				issue.Description = description
			}
			if cmd.Flags().Changed("priority") {
				issue.Priority = domain.Priority(priority)
			}
			if cmd.Flags().Changed("points") {
				sp, err := parsePoints(points)
				if err != nil {
					return err
				}
				issue.StoryPoints = sp
			}
			if cmd.Flags().Changed("due") {
				dueDate, err := parseDue(due)
				if err != nil {
					return err
				}
				issue.DueDate = dueDate
			}
			if cmd.Flags().Changed("epic") {
				if epic == "" {
					issue.EpicID = nil
				} else {
					e, err := resolveIssue(ctx, app, epic)
					if err != nil {
						return err
					}
					issue.EpicID = &e.ID
				}
			}

			if err := app.Issues.Update(ctx, issue, actor.ID); err != nil {
				return err
			}
			fmt.Printf("Updated issue %s\n", issue.Key)
			return nil
		},
	}

	issueEditFlags(cmd.Flags(), &title, &issueType, &description, &priority, &points, &due, &epic)

	return cmd
}

func newIssueMoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "move ISSUE STATUS",
		Short: "Move an issue to another status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			actor, err := currentUser(ctx, app)
			if err != nil {
				return err
			}
			issue, err := resolveIssue(ctx, app, args[0])
			if err != nil {
				return err
			}
			st, err := resolveStatus(ctx, app, issue.ProjectID, args[1])
			if err != nil {
				return err
			}
			if err := app.Issues.Move(ctx, issue.ID, st.ID, actor.ID); err != nil {
				return err
			}
			fmt.Printf("Moved %s to %s\n", issue.Key, st.Name)
			return nil
		},
	}
}

func newIssueAssignCmd(app *App) *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "assign ISSUE [USER]",
		Short: "Assign an issue (or clear with --none)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			actor, err := currentUser(ctx, app)
			if err != nil {
				return err
			}
			issue, err := resolveIssue(ctx, app, args[0])
			if err != nil {
				return err
			}

			if clear {
				if err := app.Issues.Assign(ctx, issue.ID, nil, actor.ID); err != nil {
					return err
				}
				fmt.Printf("Unassigned %s\n", issue.Key)
				return nil
			}
			if len(args) < 2 {
				return fmt.Errorf("specify a user or --none")
			}
			u, err := resolveUser(ctx, app, args[1])
			if err != nil {
				return err
			}
			if err := app.Issues.Assign(ctx, issue.ID, &u.ID, actor.ID); err != nil {
				return err
			}
			fmt.Printf("Assigned %s to %s\n", issue.Key, u.Label())
			return nil
		},
	}

	cmd.Flags().BoolVar(&clear, "none", false, "Clear the assignee")

	return cmd
}

func newIssueSprintCmd(app *App) *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "sprint ISSUE [SPRINT]",
		Short: "Move an issue into a sprint (or back to the backlog with --none)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			actor, err := currentUser(ctx, app)
			if err != nil {
				return err
			}
			issue, err := resolveIssue(ctx, app, args[0])
			if err != nil {
				return err
			}

			if clear {
				if err := app.Issues.SetSprint(ctx, issue.ID, nil, actor.ID); err != nil {
					return err
				}
				fmt.Printf("Moved %s to the backlog\n", issue.Key)
				return nil
			}
			if len(args) < 2 {
				return fmt.Errorf("specify a sprint or --none")
			}
			sprint, err := resolveSprint(ctx, app, issue.ProjectID, args[1])
			if err != nil {
				return err
			}
			if err := app.Issues.SetSprint(ctx, issue.ID, &sprint.ID, actor.ID); err != nil {
				return err
			}
			fmt.Printf("Moved %s into sprint %s\n", issue.Key, sprint.Name)
			return nil
		},
	}

	cmd.Flags().BoolVar(&clear, "none", false, "Move the issue back to the backlog")

	return cmd
}

func newIssueCommentCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comment",
		Short: "Manage issue comments",
	}

	addCmd := &cobra.Command{
		Use:   "add ISSUE TEXT",
		Short: "Comment on an issue",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			actor, err := currentUser(ctx, app)
			if err != nil {
				return err
			}
			issue, err := resolveIssue(ctx, app, args[0])
			if err != nil {
				return err
			}
			if _, err := app.Issues.AddComment(ctx, issue.ID, actor.ID, args[1]); err != nil {
				return err
			}
			fmt.Printf("Commented on %s\n", issue.Key)
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list ISSUE",
		Short: "List an issue's comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			issue, err := resolveIssue(ctx, app, args[0])
			if err != nil {
				return err
			}
			comments, err := app.Issues.ListComments(ctx, issue.ID)
			if err != nil {
				return err
			}
			if len(comments) == 0 {
				fmt.Println("No comments.")
				return nil
			}
			for _, c := range comments {
				author := c.AuthorID
				if u, err := app.Users.GetByID(ctx, c.AuthorID); err == nil {
					author = u.Label()
				}
				fmt.Printf("%s %s\n%s\n\n", formatter.Bold(author),
					formatter.Dim(formatter.HumanTimestamp(c.CreatedAt)), c.Content)
			}
			return nil
		},
	}

	removeCmd := &cobra.Command{
		Use:   "remove COMMENT_ID",
		Short: "Delete a comment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Issues.DeleteComment(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Println("Deleted comment.")
			return nil
		},
	}

	cmd.AddCommand(addCmd, listCmd, removeCmd)
	return cmd
}

func newIssueAttachCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attach",
		Short: "Manage issue attachments",
	}

	addCmd := &cobra.Command{
		Use:   "add ISSUE FILE",
		Short: "Attach a file to an issue",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			actor, err := currentUser(ctx, app)
			if err != nil {
				return err
			}
			issue, err := resolveIssue(ctx, app, args[0])
			if err != nil {
				return err
			}
			att, err := app.Attachments.Attach(ctx, issue.ID, args[1], &actor.ID)
			if err != nil {
				return err
			}
			fmt.Printf("Attached %s (%d bytes) to %s\n", att.Filename, att.Size, issue.Key)
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list ISSUE",
		Short: "List an issue's attachments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			issue, err := resolveIssue(ctx, app, args[0])
			if err != nil {
				return err
			}
			attachments, err := app.Attachments.ListByIssue(ctx, issue.ID)
			if err != nil {
				return err
			}
			if len(attachments) == 0 {
				fmt.Println("No attachments.")
				return nil
			}
			rows := make([][]string, 0, len(attachments))
			for _, a := range attachments {
				rows = append(rows, []string{
					formatter.TruncID(a.ID),
					formatter.Bold(a.Filename),
					formatter.Dim(a.ContentType),
					fmt.Sprintf("%d", a.Size),
					formatter.Dim(formatter.HumanTimestamp(a.CreatedAt)),
				})
			}
			fmt.Println(formatter.RenderTable([]string{"ID", "FILE", "TYPE", "BYTES", "ADDED"}, rows))
			return nil
		},
	}

	removeCmd := &cobra.Command{
		Use:   "remove ATTACHMENT_ID",
		Short: "Delete an attachment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Attachments.Remove(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Println("Deleted attachment.")
			return nil
		},
	}

	cmd.AddCommand(addCmd, listCmd, removeCmd)
	return cmd
}

func newIssueHistoryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history ISSUE",
		Short: "Show an issue's activity history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			issue, err := resolveIssue(ctx, app, args[0])
			if err != nil {
				return err
			}
			activities, err := app.Feed.IssueHistory(ctx, issue.ID)
			if err != nil {
				return err
			}
			if len(activities) == 0 {
				fmt.Println("No activity.")
				return nil
			}

			users := make(map[string]*domain.User)
			for _, act := range activities {
				if act.UserID == nil {
					continue
				}
				if _, ok := users[*act.UserID]; ok {
					continue
				}
				if u, err := app.Users.GetByID(ctx, *act.UserID); err == nil {
					users[u.ID] = u
				}
			}
			fmt.Printf("%s", formatter.FormatIssueHistory(activities, users))
			return nil
		},
	}
}

func newIssueRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ISSUE",
		Short: "Delete an issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			issue, err := resolveIssue(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Issues.Delete(ctx, issue.ID); err != nil {
				return err
			}
			fmt.Printf("Deleted issue %s\n", issue.Key)
			return nil
		},
	}
}
