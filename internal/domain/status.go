package domain

// Status is a named stage in a project's issue lifecycle. A nil ProjectID
// marks a global status shared by every project.
type Status struct {
	ID        string
	ProjectID *string
	Name      string
	Category  StatusCategory
	Color     string
	Order     int
}

// IsGlobal reports whether the status is shared across projects.
func (s *Status) IsGlobal() bool {
	return s.ProjectID == nil
}

// WorkflowTransition is an explicitly permitted directed move between two
// statuses within a project. An empty AllowedRoles list means any role may
// execute the transition.
type WorkflowTransition struct {
	ID           string
	ProjectID    string
	FromStatusID string
	ToStatusID   string
	Name         string
	AllowedRoles []ProjectRole
}

// RoleAllowed reports whether the given role may execute this transition.
func (t *WorkflowTransition) RoleAllowed(role ProjectRole) bool {
	if len(t.AllowedRoles) == 0 {
		return true
	}
	for _, r := range t.AllowedRoles {
		if r == role {
			return true
		}
	}
	return false
}
