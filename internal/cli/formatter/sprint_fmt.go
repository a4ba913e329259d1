package formatter

import (
	"fmt"
	"strings"

	"github.com/ctrack-io/ctrack/internal/domain"
	"github.com/ctrack-io/ctrack/internal/service"
)

// FormatSprintList renders sprints as a table.
func FormatSprintList(sprints []*domain.Sprint) string {
	rows := make([][]string, 0, len(sprints))
	for _, s := range sprints {
		window := fmt.Sprintf("%s – %s", s.StartDate.Format("Jan 2"), s.EndDate.Format("Jan 2"))
		committed := Dim("--")
		if s.InitialStoryPoints != nil {
			committed = StyleFg.Render(fmt.Sprintf("%d", *s.InitialStoryPoints))
		}
		completed := Dim("--")
		if s.CompletedStoryPoints != nil {
			completed = StyleGreen.Render(fmt.Sprintf("%d", *s.CompletedStoryPoints))
		}
		rows = append(rows, []string{
			TruncID(s.ID),
			StyleFg.Render(s.Name),
			SprintStatusPill(s.Status),
			Dim(window),
			committed,
			completed,
		})
	}
	return RenderTable([]string{"ID", "NAME", "STATE", "DATES", "COMMITTED", "DONE"}, rows)
}

// FormatSprintDetail renders one sprint with its goal and point totals.
func FormatSprintDetail(s *domain.Sprint, issues []*domain.Issue, statuses map[string]*domain.Status) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n", Bold(s.Name), SprintStatusPill(s.Status))
	if s.Goal != "" {
		fmt.Fprintf(&b, "%s %s\n", Dim("Goal:"), StyleFg.Render(s.Goal))
	}
	fmt.Fprintf(&b, "%s %s – %s\n", Dim("Dates:"),
		s.StartDate.Format("Jan 2, 2006"), s.EndDate.Format("Jan 2, 2006"))
	if s.InitialStoryPoints != nil {
		fmt.Fprintf(&b, "%s %d committed", Dim("Points:"), *s.InitialStoryPoints)
		if s.CompletedStoryPoints != nil {
			fmt.Fprintf(&b, ", %s completed", StyleGreen.Render(fmt.Sprintf("%d", *s.CompletedStoryPoints)))
		}
		b.WriteString("\n")
	}

	if len(issues) > 0 {
		b.WriteString("\n" + Header(fmt.Sprintf("Issues (%d)", len(issues))) + "\n")
		for _, i := range issues {
			status := Dim(i.StatusID)
			if st, ok := statuses[i.StatusID]; ok {
				status = StatusPill(st)
			}
			fmt.Fprintf(&b, "  %s  %s  %s  %s\n",
				Bold(i.Key), StyleFg.Render(Truncate(i.Title, 40)), status, Points(i.StoryPoints))
		}
	}

	return b.String()
}

// FormatCompletionSummary renders the outcome of completing a sprint.
func FormatCompletionSummary(r *service.CompletionResult, target *domain.Sprint) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Completed sprint %s — %s story points done",
		Bold(r.Sprint.Name), StyleGreen.Render(fmt.Sprintf("%d", r.CompletedPoints)))
	if r.MovedIssues > 0 {
		dest := "the backlog"
		if target != nil {
			dest = fmt.Sprintf("sprint %s", Bold(target.Name))
		}
		fmt.Fprintf(&b, ", %d unfinished issues moved to %s", r.MovedIssues, dest)
	}
	return b.String()
}
