package formatter

import (
	"fmt"
	"strings"

	"github.com/ctrack-io/ctrack/internal/domain"
)

// DescribeActivity renders one activity entry's payload as a sentence
// fragment, e.g. "moved In Progress → Done".
func DescribeActivity(act *domain.Activity) string {
	switch p := act.Payload.(type) {
	case *domain.CreatedPayload:
		return fmt.Sprintf("created %s %s", Bold(p.IssueKey), Dim(Truncate(p.Title, 40)))
	case *domain.UpdatedPayload:
		fields := make([]string, 0, len(p.Changes))
		for _, c := range p.Changes {
			fields = append(fields, c.Field)
		}
		return fmt.Sprintf("updated %s", Dim(strings.Join(fields, ", ")))
	case *domain.StatusChangedPayload:
		return fmt.Sprintf("moved %s %s %s",
			CategoryStyle(p.FromCategory).Render(p.FromName),
			Dim("→"),
			CategoryStyle(p.ToCategory).Render(p.ToName))
	case *domain.AssignedPayload:
		if p.ToUserID == nil {
			return "unassigned"
		}
		return fmt.Sprintf("assigned to %s", StyleFg.Render(p.ToName))
	case *domain.CommentedPayload:
		return fmt.Sprintf("commented %s", Dim(fmt.Sprintf("%q", Truncate(p.Preview, 40))))
	case *domain.SprintChangedPayload:
		if p.ToSprintID == nil {
			return "moved to the backlog"
		}
		return fmt.Sprintf("moved to sprint %s", StyleFg.Render(p.ToName))
	case *domain.TypeChangedPayload:
		return fmt.Sprintf("changed type %s %s %s", TypeBadge(p.From), Dim("→"), TypeBadge(p.To))
	case *domain.PriorityChangedPayload:
		return fmt.Sprintf("changed priority %s %s %s", PriorityBadge(p.From), Dim("→"), PriorityBadge(p.To))
	default:
		return string(act.Action)
	}
}

// FeedData bundles a project feed with the lookups needed to render it.
type FeedData struct {
	Activities []*domain.Activity
	Issues     map[string]*domain.Issue // keyed by issue ID
	Users      map[string]*domain.User
}

// FormatFeed renders a project activity feed, newest first.
func FormatFeed(d FeedData) string {
	var b strings.Builder
	for _, act := range d.Activities {
		actor := Dim("someone")
		if act.UserID != nil {
			if u, ok := d.Users[*act.UserID]; ok {
				actor = Bold(u.Label())
			}
		}
		key := ""
		if i, ok := d.Issues[act.IssueID]; ok {
			key = Bold(i.Key) + " "
		}
		fmt.Fprintf(&b, "%s  %s%s %s\n",
			Dim(HumanTimestamp(act.CreatedAt)), key, actor, DescribeActivity(act))
	}
	return b.String()
}

// FormatIssueHistory renders one issue's activity log, newest first.
func FormatIssueHistory(activities []*domain.Activity, users map[string]*domain.User) string {
	var b strings.Builder
	for _, act := range activities {
		actor := Dim("someone")
		if act.UserID != nil {
			if u, ok := users[*act.UserID]; ok {
				actor = Bold(u.Label())
			}
		}
		fmt.Fprintf(&b, "%s  %s %s\n", Dim(HumanTimestamp(act.CreatedAt)), actor, DescribeActivity(act))
	}
	return b.String()
}
