package domain

type StatusCategory string

const (
	CategoryTodo       StatusCategory = "todo"
	CategoryInProgress StatusCategory = "in_progress"
	CategoryDone       StatusCategory = "done"
)

type Priority string

const (
	PriorityLowest  Priority = "lowest"
	PriorityLow     Priority = "low"
	PriorityMedium  Priority = "medium"
	PriorityHigh    Priority = "high"
	PriorityHighest Priority = "highest"
)

// PriorityRank orders priorities from most to least urgent for sorting.
func PriorityRank(p Priority) int {
	switch p {
	case PriorityHighest:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	case PriorityLowest:
		return 4
	default:
		return 5
	}
}

type SprintStatus string

const (
	SprintPlanned   SprintStatus = "planned"
	SprintActive    SprintStatus = "active"
	SprintCompleted SprintStatus = "completed"
)

type ProjectRole string

const (
	RoleAdmin     ProjectRole = "admin"
	RoleManager   ProjectRole = "manager"
	RoleDeveloper ProjectRole = "developer"
	RoleViewer    ProjectRole = "viewer"
)

type BoardType string

const (
	BoardKanban BoardType = "kanban"
	BoardScrum  BoardType = "scrum"
)

type ActivityAction string

const (
	ActionCreated         ActivityAction = "created"
	ActionUpdated         ActivityAction = "updated"
	ActionStatusChanged   ActivityAction = "status_changed"
	ActionAssigned        ActivityAction = "assigned"
	ActionCommented       ActivityAction = "commented"
	ActionSprintChanged   ActivityAction = "sprint_changed"
	ActionTypeChanged     ActivityAction = "type_changed"
	ActionPriorityChanged ActivityAction = "priority_changed"
)

// ValidIssueTypes is the canonical set of accepted issue type strings.
var ValidIssueTypes = map[string]bool{
	"epic": true, "story": true, "task": true, "bug": true, "subtask": true,
}

// ValidPriorities is the canonical set of accepted priority strings.
var ValidPriorities = map[string]bool{
	"lowest": true, "low": true, "medium": true, "high": true, "highest": true,
}
