package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/ctrack-io/ctrack/internal/cli/formatter"
	"github.com/ctrack-io/ctrack/internal/domain"
)

// ctrackHuhTheme styles huh forms with the formatter palette.
func ctrackHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused state: orange accent
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	// Blurred state: dimmed
	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// validateRequired rejects an empty value.
func validateRequired(s string) error {
	if s == "" {
		return fmt.Errorf("this field is required")
	}
	return nil
}

// validateOptionalDate accepts empty or a YYYY-MM-DD date.
func validateOptionalDate(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return fmt.Errorf("use YYYY-MM-DD format")
	}
	return nil
}

// validateNonNegativeInt accepts empty or a non-negative integer.
func validateNonNegativeInt(s string) error {
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return fmt.Errorf("enter a non-negative number")
	}
	return nil
}

// runIssueForm walks the user through creating an issue interactively and
// persists it. The created issue is returned.
func runIssueForm(ctx context.Context, app *App, projectID, reporterID string) (*domain.Issue, error) {
	var title, description, issueType, priority, points, due string
	issueType = "task"
	priority = string(domain.PriorityMedium)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("Short summary").
				Value(&title).
				Validate(validateRequired),
			huh.NewText().
				Title("Description").
				Placeholder("Optional details").
				Value(&description),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Type").
				Options(
					huh.NewOption("Task", "task"),
					huh.NewOption("Story", "story"),
					huh.NewOption("Bug", "bug"),
					huh.NewOption("Epic", "epic"),
					huh.NewOption("Subtask", "subtask"),
				).
				Value(&issueType),
			huh.NewSelect[string]().
				Title("Priority").
				Options(
					huh.NewOption("Highest", string(domain.PriorityHighest)),
					huh.NewOption("High", string(domain.PriorityHigh)),
					huh.NewOption("Medium", string(domain.PriorityMedium)),
					huh.NewOption("Low", string(domain.PriorityLow)),
					huh.NewOption("Lowest", string(domain.PriorityLowest)),
				).
				Value(&priority),
			huh.NewInput().
				Title("Story Points (blank for none)").
				Placeholder("3").
				Value(&points).
				Validate(validateNonNegativeInt),
			huh.NewInput().
				Title("Due Date (YYYY-MM-DD, blank for none)").
				Placeholder("2026-09-30").
				Value(&due).
				Validate(validateOptionalDate),
		),
	).WithTheme(ctrackHuhTheme()).WithShowHelp(false)

	if err := form.Run(); err != nil {
		return nil, err
	}

	issue := &domain.Issue{
		ProjectID:   projectID,
		Title:       title,
		Description: description,
		Type:        issueType,
		Priority:    domain.Priority(priority),
		ReporterID:  reporterID,
	}
	if points != "" {
		v, _ := strconv.Atoi(points)
		issue.StoryPoints = &v
	}
	if due != "" {
		t, _ := time.Parse("2006-01-02", due)
		issue.DueDate = &t
	}

	if err := app.Issues.Create(ctx, issue); err != nil {
		return nil, err
	}
	return issue, nil
}
