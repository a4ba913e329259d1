package formatter

import (
	"fmt"
	"strings"

	"github.com/ctrack-io/ctrack/internal/domain"
)

// IssueListData carries lookup maps so list rows can show names, not IDs.
type IssueListData struct {
	Issues   []*domain.Issue
	Statuses map[string]*domain.Status
	Users    map[string]*domain.User
}

// FormatIssueList renders issues as a table.
func FormatIssueList(d IssueListData) string {
	rows := make([][]string, 0, len(d.Issues))
	for _, i := range d.Issues {
		status := Dim(i.StatusID)
		if s, ok := d.Statuses[i.StatusID]; ok {
			status = StatusPill(s)
		}
		assignee := Dim("--")
		if i.AssigneeID != nil {
			if u, ok := d.Users[*i.AssigneeID]; ok {
				assignee = StyleFg.Render(u.Label())
			}
		}
		rows = append(rows, []string{
			Bold(i.Key),
			TypeBadge(i.Type),
			StyleFg.Render(Truncate(i.Title, 48)),
			status,
			PriorityBadge(i.Priority),
			Points(i.StoryPoints),
			assignee,
		})
	}
	return RenderTable([]string{"KEY", "TYPE", "TITLE", "STATUS", "PRIORITY", "PTS", "ASSIGNEE"}, rows)
}

// IssueDetailData bundles everything the issue detail view shows.
type IssueDetailData struct {
	Issue    *domain.Issue
	Status   *domain.Status
	Assignee *domain.User
	Reporter *domain.User
	Epic     *domain.Issue
	Sprint   *domain.Sprint
	Comments []*domain.Comment
	Users    map[string]*domain.User
	Targets  []*domain.Status // statuses this issue may move to
}

// FormatIssueDetail renders a single issue with its metadata and comments.
func FormatIssueDetail(d IssueDetailData) string {
	var b strings.Builder
	i := d.Issue

	fmt.Fprintf(&b, "%s  %s  %s\n", Bold(i.Key), TypeBadge(i.Type), StyleFg.Render(i.Title))
	if d.Status != nil {
		fmt.Fprintf(&b, "%s %s\n", Dim("Status:"), StatusPill(d.Status))
	}
	fmt.Fprintf(&b, "%s %s\n", Dim("Priority:"), PriorityBadge(i.Priority))
	if d.Assignee != nil {
		fmt.Fprintf(&b, "%s %s\n", Dim("Assignee:"), StyleFg.Render(d.Assignee.Label()))
	}
	if d.Reporter != nil {
		fmt.Fprintf(&b, "%s %s\n", Dim("Reporter:"), StyleFg.Render(d.Reporter.Label()))
	}
	if d.Epic != nil {
		fmt.Fprintf(&b, "%s %s %s\n", Dim("Epic:"), Bold(d.Epic.Key), StyleFg.Render(d.Epic.Title))
	}
	if d.Sprint != nil {
		fmt.Fprintf(&b, "%s %s %s\n", Dim("Sprint:"), StyleFg.Render(d.Sprint.Name), SprintStatusPill(d.Sprint.Status))
	}
	if i.StoryPoints != nil {
		fmt.Fprintf(&b, "%s %d\n", Dim("Points:"), *i.StoryPoints)
	}
	if i.DueDate != nil {
		fmt.Fprintf(&b, "%s %s\n", Dim("Due:"), DueDateStyled(*i.DueDate))
	}
	fmt.Fprintf(&b, "%s %s\n", Dim("Created:"), HumanTimestamp(i.CreatedAt))

	if i.Description != "" {
		b.WriteString("\n" + Header("Description") + "\n")
		fmt.Fprintf(&b, "%s\n", StyleFg.Render(i.Description))
	}

	if len(d.Targets) > 0 {
		b.WriteString("\n" + Header("Available moves") + "\n")
		pills := make([]string, 0, len(d.Targets))
		for _, s := range d.Targets {
			pills = append(pills, StatusPill(s))
		}
		fmt.Fprintf(&b, "  %s\n", strings.Join(pills, "  "))
	}

	if len(d.Comments) > 0 {
		b.WriteString("\n" + Header(fmt.Sprintf("Comments (%d)", len(d.Comments))) + "\n")
		for _, c := range d.Comments {
			author := c.AuthorID
			if u, ok := d.Users[c.AuthorID]; ok {
				author = u.Label()
			}
			fmt.Fprintf(&b, "%s %s\n%s\n", Bold(author), Dim(HumanTimestamp(c.CreatedAt)), StyleFg.Render(c.Content))
		}
	}

	return b.String()
}
