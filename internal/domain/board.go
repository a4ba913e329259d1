package domain

import "time"

// Board is a Kanban or Scrum view over a project's issues. Columns is the
// ordered list of status IDs shown as board columns.
type Board struct {
	ID        string
	ProjectID string
	Name      string
	Type      BoardType
	Columns   []string
	SprintID  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BoardFilters narrows the issues shown on a board. Zero values mean
// "no filter" for that dimension.
type BoardFilters struct {
	AssigneeID string
	Unassigned bool
	IssueType  string
	Priority   Priority
	Search     string
	SprintID   string
}

// BoardColumn is one rendered column: a status plus the issues currently in it.
type BoardColumn struct {
	Status Status
	Issues []*Issue
}

// BoardData is the fully resolved board: ordered columns with their issues,
// plus the project's transition rules so callers can evaluate drag targets
// without further lookups.
type BoardData struct {
	Board       *Board
	Columns     []BoardColumn
	Transitions []*WorkflowTransition
}
