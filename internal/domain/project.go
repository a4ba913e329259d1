package domain

import (
	"fmt"
	"regexp"
	"time"
)

var projectKeyPattern = regexp.MustCompile(`^[A-Z]{2,10}$`)

type Project struct {
	ID          string
	Key         string
	Name        string
	Description string
	OwnerID     string
	IsArchived  bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidateKey checks that Key is non-empty and matches the required format:
// 2-10 uppercase letters (e.g. PROJ, CTRK).
func (p *Project) ValidateKey() error {
	if p.Key == "" {
		return fmt.Errorf("project key is required (use --key flag)")
	}
	if !projectKeyPattern.MatchString(p.Key) {
		return fmt.Errorf("project key %q must be 2-10 uppercase letters (e.g. PROJ)", p.Key)
	}
	return nil
}

type ProjectMember struct {
	ProjectID string
	UserID    string
	Role      ProjectRole
	JoinedAt  time.Time
}

// CanEdit reports whether the member may create and edit issues.
func (m *ProjectMember) CanEdit() bool {
	return m.Role != RoleViewer
}

// CanManage reports whether the member may manage project settings,
// workflow rules, and sprints.
func (m *ProjectMember) CanManage() bool {
	return m.Role == RoleAdmin || m.Role == RoleManager
}
