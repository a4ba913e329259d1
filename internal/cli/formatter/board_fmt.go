package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ctrack-io/ctrack/internal/domain"
)

const boardColumnWidth = 28

// FormatBoard renders a board as side-by-side columns, one per status.
func FormatBoard(data *domain.BoardData) string {
	if len(data.Columns) == 0 {
		return Dim("Board has no columns.")
	}

	colStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		Padding(0, 1).
		Width(boardColumnWidth)

	rendered := make([]string, 0, len(data.Columns))
	for _, col := range data.Columns {
		var b strings.Builder
		fmt.Fprintf(&b, "%s %s\n", StatusPill(&col.Status), Dim(fmt.Sprintf("(%d)", len(col.Issues))))
		for _, i := range col.Issues {
			fmt.Fprintf(&b, "\n%s %s\n%s", Bold(i.Key), Points(i.StoryPoints),
				StyleFg.Render(Truncate(i.Title, boardColumnWidth-2)))
		}
		rendered = append(rendered, colStyle.Render(b.String()))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}
