package formatter

import (
	"strings"

	"github.com/ctrack-io/ctrack/internal/domain"
)

// FormatStatusList renders workflow statuses as a table.
func FormatStatusList(statuses []*domain.Status) string {
	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		scope := Dim("global")
		if !s.IsGlobal() {
			scope = StyleFg.Render("project")
		}
		rows = append(rows, []string{
			TruncID(s.ID),
			StatusPill(s),
			Dim(string(s.Category)),
			scope,
		})
	}
	return RenderTable([]string{"ID", "STATUS", "CATEGORY", "SCOPE"}, rows)
}

// FormatTransitionList renders transition rules as a table. The statuses map
// resolves status IDs to names.
func FormatTransitionList(transitions []*domain.WorkflowTransition, statuses map[string]*domain.Status) string {
	if len(transitions) == 0 {
		return Dim("No transition rules: every cross-status move is allowed.")
	}

	name := func(id string) string {
		if s, ok := statuses[id]; ok {
			return s.Name
		}
		return id
	}

	rows := make([][]string, 0, len(transitions))
	for _, t := range transitions {
		roles := Dim("any")
		if len(t.AllowedRoles) > 0 {
			badges := make([]string, 0, len(t.AllowedRoles))
			for _, r := range t.AllowedRoles {
				badges = append(badges, RoleBadge(r))
			}
			roles = strings.Join(badges, " ")
		}
		label := t.Name
		if label == "" {
			label = "--"
		}
		rows = append(rows, []string{
			TruncID(t.ID),
			StyleFg.Render(name(t.FromStatusID)) + Dim(" → ") + StyleFg.Render(name(t.ToStatusID)),
			Dim(label),
			roles,
		})
	}
	return RenderTable([]string{"ID", "TRANSITION", "NAME", "ROLES"}, rows)
}
