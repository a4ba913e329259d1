package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/ctrack-io/ctrack/internal/domain"
)

// resolveProjectID resolves a project identifier which can be a project key
// (case-insensitive), a full UUID, or a UUID prefix.
func resolveProjectID(ctx context.Context, app *App, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("project is required")
	}

	if p, err := app.Projects.GetByKey(ctx, input); err == nil {
		return p.ID, nil
	}

	projects, err := app.Projects.List(ctx, true)
	if err != nil {
		return "", err
	}

	for _, p := range projects {
		if p.ID == input {
			return p.ID, nil
		}
	}

	var matches []string
	for _, p := range projects {
		if strings.HasPrefix(p.ID, input) {
			matches = append(matches, p.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("project not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("project ID prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}

// resolveIssue resolves an issue identifier: an issue key like "PROJ-42"
// (case-insensitive) or a full UUID.
func resolveIssue(ctx context.Context, app *App, input string) (*domain.Issue, error) {
	if strings.Contains(input, "-") && len(input) < 36 {
		if issue, err := app.Issues.GetByKey(ctx, strings.ToUpper(input)); err == nil {
			return issue, nil
		}
	}
	issue, err := app.Issues.GetByID(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("issue not found: %q", input)
	}
	return issue, nil
}

// resolveStatus resolves a status within a project by name (case-insensitive),
// full ID, or ID prefix.
func resolveStatus(ctx context.Context, app *App, projectID, input string) (*domain.Status, error) {
	statuses, err := app.Workflow.ListStatuses(ctx, projectID)
	if err != nil {
		return nil, err
	}

	for _, s := range statuses {
		if strings.EqualFold(s.Name, input) {
			return s, nil
		}
	}
	for _, s := range statuses {
		if s.ID == input {
			return s, nil
		}
	}
	var matches []*domain.Status
	for _, s := range statuses {
		if strings.HasPrefix(s.ID, input) {
			matches = append(matches, s)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("status not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("status %q is ambiguous (%d matches)", input, len(matches))
	}
}

// resolveUser resolves a user by username or UUID.
func resolveUser(ctx context.Context, app *App, input string) (*domain.User, error) {
	if u, err := app.Users.GetByUsername(ctx, input); err == nil {
		return u, nil
	}
	u, err := app.Users.GetByID(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("user not found: %q", input)
	}
	return u, nil
}

// resolveSprint resolves a sprint within a project by name (case-insensitive),
// full ID, or ID prefix.
func resolveSprint(ctx context.Context, app *App, projectID, input string) (*domain.Sprint, error) {
	sprints, err := app.Sprints.ListByProject(ctx, projectID, "")
	if err != nil {
		return nil, err
	}

	for _, s := range sprints {
		if strings.EqualFold(s.Name, input) {
			return s, nil
		}
	}
	var matches []*domain.Sprint
	for _, s := range sprints {
		if s.ID == input || strings.HasPrefix(s.ID, input) {
			matches = append(matches, s)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("sprint not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("sprint %q is ambiguous (%d matches)", input, len(matches))
	}
}

// currentUser resolves the acting user from CTRACK_USER.
func currentUser(ctx context.Context, app *App) (*domain.User, error) {
	if app.CurrentUsername == "" {
		return nil, fmt.Errorf("no acting user configured (set CTRACK_USER to your username)")
	}
	u, err := app.Users.GetByUsername(ctx, app.CurrentUsername)
	if err != nil {
		return nil, fmt.Errorf("user %q not found (create it with `ctrack user add`)", app.CurrentUsername)
	}
	return u, nil
}
