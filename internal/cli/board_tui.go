package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ctrack-io/ctrack/internal/cli/formatter"
	"github.com/ctrack-io/ctrack/internal/domain"
	"github.com/ctrack-io/ctrack/internal/workflow"
)

// boardLoadedMsg signals that board data has been (re)loaded.
type boardLoadedMsg struct {
	data *domain.BoardData
	err  error
}

// issueMovedMsg reports the outcome of a move; a successful move triggers
// a reload.
type issueMovedMsg struct {
	err error
}

// boardModel is the interactive board view. Left/right selects a column,
// up/down an issue, and "m" enters move mode where the column keys pick the
// target status. Moves are validated against the project's transition rules
// before being issued, so illegal targets are never offered.
type boardModel struct {
	app     *App
	board   *domain.Board
	filters domain.BoardFilters

	data     *domain.BoardData
	registry *workflow.Registry

	col     int
	row     []int // cursor row per column
	moving  bool
	target  int // candidate column while in move mode
	loading bool
	status  string
	err     error
	width   int
}

func newBoardModel(app *App, board *domain.Board, filters domain.BoardFilters) *boardModel {
	return &boardModel{
		app:     app,
		board:   board,
		filters: filters,
		loading: true,
	}
}

// runBoardTUI opens the interactive board and blocks until the user quits.
func runBoardTUI(app *App, board *domain.Board, filters domain.BoardFilters) error {
	_, err := tea.NewProgram(newBoardModel(app, board, filters), tea.WithAltScreen()).Run()
	return err
}

func (m *boardModel) keyBindings() []key.Binding {
	if m.moving {
		return []key.Binding{
			key.NewBinding(key.WithKeys("left", "right"), key.WithHelp("←/→", "pick column")),
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm move")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		}
	}
	return []key.Binding{
		key.NewBinding(key.WithKeys("left", "right"), key.WithHelp("←/→", "column")),
		key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "issue")),
		key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "move issue")),
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	}
}

func (m *boardModel) Init() tea.Cmd {
	return m.load()
}

func (m *boardModel) load() tea.Cmd {
	app, boardID, filters := m.app, m.board.ID, m.filters
	return func() tea.Msg {
		data, err := app.Boards.Load(context.Background(), boardID, filters)
		return boardLoadedMsg{data: data, err: err}
	}
}

func (m *boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case boardLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.data = msg.data
		statuses := make([]domain.Status, 0, len(msg.data.Columns))
		for _, c := range msg.data.Columns {
			statuses = append(statuses, c.Status)
		}
		m.registry = workflow.NewRegistry(statuses, msg.data.Transitions)
		m.clampCursor()
		return m, nil

	case issueMovedMsg:
		m.moving = false
		if msg.err != nil {
			m.status = formatter.StyleRed.Render(msg.err.Error())
			return m, nil
		}
		m.status = ""
		m.loading = true
		return m, m.load()

	case tea.KeyMsg:
		if m.data == nil {
			if msg.String() == "q" || msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		}
		if m.moving {
			return m.updateMoving(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			if m.col > 0 {
				m.col--
			}
		case "right", "l":
			if m.col < len(m.data.Columns)-1 {
				m.col++
			}
		case "up", "k":
			if m.row[m.col] > 0 {
				m.row[m.col]--
			}
		case "down", "j":
			if m.row[m.col] < len(m.data.Columns[m.col].Issues)-1 {
				m.row[m.col]++
			}
		case "m":
			if m.selectedIssue() != nil {
				m.moving = true
				m.target = m.col
				m.status = ""
			}
		case "r":
			m.loading = true
			return m, m.load()
		}
	}
	return m, nil
}

func (m *boardModel) updateMoving(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.moving = false
		m.status = ""
	case "left", "h":
		if m.target > 0 {
			m.target--
		}
	case "right", "l":
		if m.target < len(m.data.Columns)-1 {
			m.target++
		}
	case "enter":
		issue := m.selectedIssue()
		if issue == nil {
			m.moving = false
			return m, nil
		}
		to := m.data.Columns[m.target].Status
		if !m.registry.Allowed(issue.StatusID, to.ID) {
			m.status = formatter.StyleRed.Render(
				fmt.Sprintf("move to %s is not allowed", to.Name))
			return m, nil
		}
		return m, m.moveIssue(issue.ID, to.ID)
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m *boardModel) moveIssue(issueID, toStatusID string) tea.Cmd {
	app := m.app
	return func() tea.Msg {
		ctx := context.Background()
		actor, err := currentUser(ctx, app)
		if err != nil {
			return issueMovedMsg{err: err}
		}
		return issueMovedMsg{err: app.Issues.Move(ctx, issueID, toStatusID, actor.ID)}
	}
}

func (m *boardModel) selectedIssue() *domain.Issue {
	if m.data == nil || m.col >= len(m.data.Columns) {
		return nil
	}
	col := m.data.Columns[m.col]
	r := m.row[m.col]
	if r < 0 || r >= len(col.Issues) {
		return nil
	}
	return col.Issues[r]
}

// clampCursor keeps the per-column cursors valid after a reload changes
// column contents.
func (m *boardModel) clampCursor() {
	rows := make([]int, len(m.data.Columns))
	for i := range m.data.Columns {
		r := 0
		if i < len(m.row) {
			r = m.row[i]
		}
		if max := len(m.data.Columns[i].Issues) - 1; r > max {
			r = max
		}
		if r < 0 {
			r = 0
		}
		rows[i] = r
	}
	m.row = rows
	if m.col >= len(m.data.Columns) {
		m.col = len(m.data.Columns) - 1
	}
	if m.col < 0 {
		m.col = 0
	}
}

const boardTUIColWidth = 30

func (m *boardModel) View() string {
	if m.loading {
		return "\n  " + formatter.Dim("Loading board...")
	}
	if m.err != nil {
		return "\n  " + formatter.StyleRed.Render("Error: "+m.err.Error())
	}
	if m.data == nil || len(m.data.Columns) == 0 {
		return "\n  " + formatter.Dim("Board has no columns.")
	}

	cols := make([]string, 0, len(m.data.Columns))
	for i, col := range m.data.Columns {
		cols = append(cols, m.renderColumn(i, col))
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, cols...)

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + formatter.Header(m.board.Name) + "\n\n")
	b.WriteString(body)
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString("  " + m.status + "\n")
	}
	b.WriteString("  " + m.renderHelp() + "\n")
	return b.String()
}

func (m *boardModel) renderColumn(idx int, col domain.BoardColumn) string {
	borderColor := formatter.ColorDim
	if idx == m.col && !m.moving {
		borderColor = formatter.ColorBlue
	}
	if m.moving && idx == m.target {
		borderColor = formatter.ColorYellow
		if issue := m.selectedIssue(); issue != nil && m.registry.Allowed(issue.StatusID, col.Status.ID) {
			borderColor = formatter.ColorGreen
		}
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(boardTUIColWidth)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n",
		formatter.CategoryStyle(col.Status.Category).Bold(true).Render(strings.ToUpper(col.Status.Name)),
		formatter.Dim(fmt.Sprintf("(%d)", len(col.Issues))))

	if len(col.Issues) == 0 {
		b.WriteString(formatter.Dim("empty"))
	}
	for i, issue := range col.Issues {
		cursor := "  "
		if idx == m.col && i == m.row[m.col] {
			cursor = formatter.StyleGreen.Render("▸ ")
		}
		line := fmt.Sprintf("%s%s %s", cursor, formatter.Bold(issue.Key),
			formatter.Truncate(issue.Title, boardTUIColWidth-12))
		b.WriteString(line + "\n")
		b.WriteString("    " + formatter.PriorityBadge(issue.Priority) +
			" " + formatter.Dim(formatter.Points(issue.StoryPoints)) + "\n")
	}

	return style.Render(b.String())
}

func (m *boardModel) renderHelp() string {
	parts := make([]string, 0, 6)
	for _, kb := range m.keyBindings() {
		parts = append(parts, fmt.Sprintf("%s %s",
			formatter.StyleFg.Render(kb.Help().Key),
			formatter.Dim(kb.Help().Desc)))
	}
	return strings.Join(parts, formatter.Dim("  •  "))
}
