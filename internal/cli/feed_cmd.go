package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/ctrack-io/ctrack/internal/cli/formatter"
	"github.com/ctrack-io/ctrack/internal/domain"
	"github.com/spf13/cobra"
)

func newFeedCmd(app *App) *cobra.Command {
	var project, since string
	var limit int

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show a project's activity feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, project)
			if err != nil {
				return err
			}

			var sinceTime *time.Time
			if since != "" {
				t, err := time.Parse("2006-01-02", since)
				if err != nil {
					return fmt.Errorf("invalid since date %q (expected YYYY-MM-DD)", since)
				}
				sinceTime = &t
			}

			activities, err := app.Feed.ProjectFeed(ctx, projectID, sinceTime, limit)
			if err != nil {
				return err
			}
			if len(activities) == 0 {
				fmt.Println("No activity.")
				return nil
			}

			data := formatter.FeedData{
				Activities: activities,
				Issues:     make(map[string]*domain.Issue),
				Users:      make(map[string]*domain.User),
			}
			for _, act := range activities {
				if _, ok := data.Issues[act.IssueID]; !ok {
					if i, err := app.Issues.GetByID(ctx, act.IssueID); err == nil {
						data.Issues[i.ID] = i
					}
				}
				if act.UserID == nil {
					continue
				}
				if _, ok := data.Users[*act.UserID]; ok {
					continue
				}
				if u, err := app.Users.GetByID(ctx, *act.UserID); err == nil {
					data.Users[u.ID] = u
				}
			}

			fmt.Printf("%s", formatter.FormatFeed(data))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project key or ID")
	cmd.Flags().StringVar(&since, "since", "", "Only show activity after this date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 30, "Maximum entries to show")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}
