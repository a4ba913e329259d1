// Package workflow decides which status-to-status moves are legal for a
// project. It is pure: callers supply the project's transition rules and get
// back a boolean, with no data access and no side effects, so the same check
// runs identically in the board UI (to reject a move before it is issued)
// and in the issue service (the authoritative check before persisting).
package workflow

import "github.com/ctrack-io/ctrack/internal/domain"

// Transition is a directed edge in a project's transition graph.
type Transition struct {
	FromStatusID string
	ToStatusID   string
}

// Allowed reports whether moving an issue from status `from` to status `to`
// is legal under the given transition rules.
//
// Rules, in order:
//  1. A move to the same status is never a valid move.
//  2. A project with no transition rules is unconstrained: any move is legal.
//  3. Otherwise the exact directed pair (from, to) must be listed.
//
// Unknown status IDs fall out of rule 3 as false; validating that the IDs
// exist is the caller's concern.
func Allowed(from, to string, transitions []Transition) bool {
	if from == to {
		return false
	}
	if len(transitions) == 0 {
		return true
	}
	for _, t := range transitions {
		if t.FromStatusID == from && t.ToStatusID == to {
			return true
		}
	}
	return false
}

// Registry is a per-project snapshot of statuses and transition rules,
// typically built once per board load and consulted on every candidate move.
type Registry struct {
	statuses    []domain.Status
	transitions []Transition
}

// NewRegistry builds a Registry from a project's statuses and transition rows.
func NewRegistry(statuses []domain.Status, rules []*domain.WorkflowTransition) *Registry {
	transitions := make([]Transition, 0, len(rules))
	for _, r := range rules {
		transitions = append(transitions, Transition{
			FromStatusID: r.FromStatusID,
			ToStatusID:   r.ToStatusID,
		})
	}
	return &Registry{statuses: statuses, transitions: transitions}
}

// Allowed reports whether the move from -> to is legal under this registry.
func (r *Registry) Allowed(from, to string) bool {
	return Allowed(from, to, r.transitions)
}

// AvailableFrom returns the status IDs an issue in `from` may move to, in
// the registry's status order.
func (r *Registry) AvailableFrom(from string) []string {
	var targets []string
	for _, s := range r.statuses {
		if r.Allowed(from, s.ID) {
			targets = append(targets, s.ID)
		}
	}
	return targets
}

// Statuses returns the registry's statuses in order.
func (r *Registry) Statuses() []domain.Status {
	return r.statuses
}

// Unconstrained reports whether the project defines no transition rules.
func (r *Registry) Unconstrained() bool {
	return len(r.transitions) == 0
}
