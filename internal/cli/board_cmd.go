package cli

import (
	"context"
	"fmt"

	"github.com/ctrack-io/ctrack/internal/cli/formatter"
	"github.com/ctrack-io/ctrack/internal/domain"
	"github.com/spf13/cobra"
)

func newBoardCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Manage and view boards",
	}

	cmd.AddCommand(
		newBoardAddCmd(app),
		newBoardListCmd(app),
		newBoardShowCmd(app),
		newBoardRemoveCmd(app),
	)

	return cmd
}

func newBoardAddCmd(app *App) *cobra.Command {
	var project, name, boardType string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a board",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, project)
			if err != nil {
				return err
			}

			statuses, err := app.Workflow.ListStatuses(ctx, projectID)
			if err != nil {
				return err
			}
			columns := make([]string, 0, len(statuses))
			for _, s := range statuses {
				columns = append(columns, s.ID)
			}

			b := &domain.Board{
				ProjectID: projectID,
				Name:      name,
				Type:      domain.BoardType(boardType),
				Columns:   columns,
			}
			if err := app.Boards.Create(ctx, b); err != nil {
				return err
			}
			fmt.Printf("Created %s board %s\n", b.Type, b.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project key or ID")
	cmd.Flags().StringVar(&name, "name", "", "Board name")
	cmd.Flags().StringVar(&boardType, "type", "kanban", "Board type (kanban|scrum)")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newBoardListCmd(app *App) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a project's boards",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, project)
			if err != nil {
				return err
			}
			boards, err := app.Boards.ListByProject(ctx, projectID)
			if err != nil {
				return err
			}
			if len(boards) == 0 {
				fmt.Println("No boards found.")
				return nil
			}
			rows := make([][]string, 0, len(boards))
			for _, b := range boards {
				rows = append(rows, []string{
					formatter.TruncID(b.ID),
					formatter.Bold(b.Name),
					string(b.Type),
					fmt.Sprintf("%d", len(b.Columns)),
				})
			}
			fmt.Println(formatter.RenderTable([]string{"ID", "NAME", "TYPE", "COLUMNS"}, rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project key or ID")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func newBoardShowCmd(app *App) *cobra.Command {
	var project, board, assignee, issueType, search string
	var unassigned, interactive bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a board's columns and issues",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, project)
			if err != nil {
				return err
			}

			var b *domain.Board
			if board != "" {
				boards, err := app.Boards.ListByProject(ctx, projectID)
				if err != nil {
					return err
				}
				for _, candidate := range boards {
					if candidate.Name == board || candidate.ID == board {
						b = candidate
						break
					}
				}
				if b == nil {
					return fmt.Errorf("board not found: %q", board)
				}
			} else {
				b, err = app.Boards.DefaultForProject(ctx, projectID)
				if err != nil {
					return err
				}
			}

			f := domain.BoardFilters{
				IssueType:  issueType,
				Unassigned: unassigned,
				Search:     search,
			}
			if assignee != "" {
				u, err := resolveUser(ctx, app, assignee)
				if err != nil {
					return err
				}
				f.AssigneeID = u.ID
			}

			if interactive {
				if app.IsInteractive != nil && !app.IsInteractive() {
					return fmt.Errorf("--interactive requires a terminal")
				}
				return runBoardTUI(app, b, f)
			}

			data, err := app.Boards.Load(ctx, b.ID, f)
			if err != nil {
				return err
			}
			fmt.Printf("%s\n", formatter.FormatBoard(data))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project key or ID")
	cmd.Flags().StringVar(&board, "board", "", "Board name or ID (default: the project's first board)")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Only show issues assigned to this user")
	cmd.Flags().BoolVar(&unassigned, "unassigned", false, "Only show unassigned issues")
	cmd.Flags().StringVar(&issueType, "type", "", "Only show issues of this type")
	cmd.Flags().StringVar(&search, "search", "", "Search in title and description")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Open the board in an interactive view")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func newBoardRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove BOARD_ID",
		Short: "Delete a board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Boards.Delete(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Println("Deleted board.")
			return nil
		},
	}
}
