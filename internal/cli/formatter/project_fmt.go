package formatter

import (
	"fmt"
	"strings"

	"github.com/ctrack-io/ctrack/internal/domain"
)

// FormatProjectList renders projects as a table.
func FormatProjectList(projects []*domain.Project) string {
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		state := StyleGreen.Render("● Active")
		if p.IsArchived {
			state = StyleDim.Render("✖ Archived")
		}
		rows = append(rows, []string{
			Bold(p.Key),
			StyleFg.Render(p.Name),
			state,
			Dim(HumanDate(p.CreatedAt)),
		})
	}
	return RenderTable([]string{"KEY", "NAME", "STATE", "CREATED"}, rows)
}

// ProjectDetailData bundles everything the project detail view shows.
type ProjectDetailData struct {
	Project  *domain.Project
	Owner    *domain.User
	Members  []*domain.ProjectMember
	Users    map[string]*domain.User // keyed by user ID
	Statuses []*domain.Status
	Open     int
	Done     int
}

// FormatProjectDetail renders a single project with members and issue counts.
func FormatProjectDetail(d ProjectDetailData) string {
	var b strings.Builder
	p := d.Project

	fmt.Fprintf(&b, "%s  %s\n", Bold(p.Key), StyleFg.Render(p.Name))
	if p.Description != "" {
		fmt.Fprintf(&b, "%s\n", Dim(p.Description))
	}
	b.WriteString("\n")

	if d.Owner != nil {
		fmt.Fprintf(&b, "%s %s\n", Dim("Owner:"), StyleFg.Render(d.Owner.Label()))
	}
	fmt.Fprintf(&b, "%s %s open, %s done\n",
		Dim("Issues:"),
		StyleFg.Render(fmt.Sprintf("%d", d.Open)),
		StyleGreen.Render(fmt.Sprintf("%d", d.Done)))
	if p.IsArchived {
		fmt.Fprintf(&b, "%s\n", StyleDim.Render("✖ Archived"))
	}

	if len(d.Members) > 0 {
		b.WriteString("\n" + Header("Members") + "\n")
		for _, m := range d.Members {
			name := m.UserID
			if u, ok := d.Users[m.UserID]; ok {
				name = u.Label()
			}
			fmt.Fprintf(&b, "  %s  %s\n", StyleFg.Render(name), RoleBadge(m.Role))
		}
	}

	if len(d.Statuses) > 0 {
		b.WriteString("\n" + Header("Workflow") + "\n")
		pills := make([]string, 0, len(d.Statuses))
		for _, s := range d.Statuses {
			pills = append(pills, StatusPill(s))
		}
		fmt.Fprintf(&b, "  %s\n", strings.Join(pills, Dim(" → ")))
	}

	return b.String()
}
