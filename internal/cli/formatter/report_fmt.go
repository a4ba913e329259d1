package formatter

import (
	"fmt"
	"strings"

	"github.com/ctrack-io/ctrack/internal/service"
)

// FormatSprintReport renders a sprint's completion summary with a progress bar.
func FormatSprintReport(r *service.SprintReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n\n", Bold(r.Sprint.Name), SprintStatusPill(r.Sprint.Status))
	fmt.Fprintf(&b, "%s %d of %d issues done\n", Dim("Issues:"), r.CompletedIssues, r.TotalIssues)
	fmt.Fprintf(&b, "%s %d of %d story points done\n", Dim("Points:"), r.CompletedPoints, r.TotalPoints)

	if r.TotalPoints > 0 {
		pct := float64(r.CompletedPoints) / float64(r.TotalPoints)
		fmt.Fprintf(&b, "\n%s\n", RenderProgress(pct, 30))
	}
	return b.String()
}

// FormatVelocity renders recent sprint velocity as a horizontal bar chart.
func FormatVelocity(r *service.VelocityReport) string {
	if len(r.Entries) == 0 {
		return Dim("No completed sprints yet.")
	}

	max := 0
	for _, e := range r.Entries {
		if e.CommittedPoints > max {
			max = e.CommittedPoints
		}
		if e.CompletedPoints > max {
			max = e.CompletedPoints
		}
	}

	const barWidth = 24
	var b strings.Builder
	b.WriteString(Header("Velocity") + "\n")
	for _, e := range r.Entries {
		fmt.Fprintf(&b, "%-20s %s %s\n",
			Truncate(e.Sprint.Name, 20),
			StyleDim.Render(RenderBar(e.CommittedPoints, max, barWidth)),
			Dim(fmt.Sprintf("%d committed", e.CommittedPoints)))
		fmt.Fprintf(&b, "%-20s %s %s\n", "",
			StyleGreen.Render(RenderBar(e.CompletedPoints, max, barWidth)),
			Dim(fmt.Sprintf("%d completed", e.CompletedPoints)))
	}
	fmt.Fprintf(&b, "\n%s %.1f points per sprint\n", Dim("Average:"), r.AveragePoints)
	return b.String()
}

// FormatBurndown renders a burndown chart: one row per day, remaining points
// as a bar with the ideal value alongside.
func FormatBurndown(r *service.BurndownReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", Header(fmt.Sprintf("Burndown — %s", r.Sprint.Name)))

	const barWidth = 30
	for _, p := range r.Points {
		bar := RenderBar(p.Remaining, r.TotalPoints, barWidth)
		style := StyleGreen
		if float64(p.Remaining) > p.Ideal {
			style = StyleRed
		}
		fmt.Fprintf(&b, "%s %s %s\n",
			Dim(p.Day.Format("Jan 02")),
			style.Render(fmt.Sprintf("%-*s", barWidth, bar)),
			Dim(fmt.Sprintf("%2d left (ideal %.0f)", p.Remaining, p.Ideal)))
	}
	return b.String()
}
