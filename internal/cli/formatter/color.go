package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ctrack-io/ctrack/internal/domain"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// CategoryStyle returns the style for a status category.
func CategoryStyle(c domain.StatusCategory) lipgloss.Style {
	switch c {
	case domain.CategoryDone:
		return StyleGreen
	case domain.CategoryInProgress:
		return StyleBlue
	case domain.CategoryTodo:
		return StyleDim
	default:
		return StyleDim
	}
}

// StatusPill returns a colored indicator for a workflow status, e.g.
// "● In Progress".
func StatusPill(s *domain.Status) string {
	switch s.Category {
	case domain.CategoryDone:
		return StyleGreen.Render("✔ " + s.Name)
	case domain.CategoryInProgress:
		return StyleBlue.Render("● " + s.Name)
	default:
		return StyleDim.Render("○ " + s.Name)
	}
}

// PriorityBadge returns a colored priority label.
func PriorityBadge(p domain.Priority) string {
	switch p {
	case domain.PriorityHighest:
		return StyleRed.Render("⇈ Highest")
	case domain.PriorityHigh:
		return StyleRed.Render("↑ High")
	case domain.PriorityMedium:
		return StyleYellow.Render("= Medium")
	case domain.PriorityLow:
		return StyleBlue.Render("↓ Low")
	case domain.PriorityLowest:
		return StyleDim.Render("⇊ Lowest")
	default:
		return StyleDim.Render(string(p))
	}
}

// TypeBadge returns a purple-styled issue type label.
func TypeBadge(t string) string {
	if t == "" {
		return StyleDim.Render("--")
	}
	label := strings.ToUpper(t[:1]) + t[1:]
	return StylePurple.Render(label)
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
