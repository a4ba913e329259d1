package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/ctrack-io/ctrack/internal/db"
	"github.com/ctrack-io/ctrack/internal/domain"
	"github.com/google/uuid"
)

// Bundle holds fully converted domain objects ready for persistence.
type Bundle struct {
	Project     *domain.Project
	Statuses    []*domain.Status
	Transitions []*domain.WorkflowTransition
	Sprints     []*domain.Sprint
	Issues      []*domain.Issue
}

// Convert transforms a validated ImportSchema into domain objects. Issues are
// numbered in file order starting at 1. Call ValidateImportSchema first;
// Convert assumes the schema is valid.
func Convert(schema *ImportSchema, ownerID string) (*Bundle, error) {
	now := time.Now().UTC()

	project := &domain.Project{
		ID:          uuid.New().String(),
		Key:         strings.ToUpper(schema.Project.Key),
		Name:        schema.Project.Name,
		Description: schema.Project.Description,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	statusIDs := make(map[string]string) // ref -> UUID
	statuses := make([]*domain.Status, 0, len(schema.Statuses))
	for _, s := range schema.Statuses {
		id := uuid.New().String()
		statusIDs[s.Ref] = id
		color := s.Color
		if color == "" {
			color = "#8a3ffc"
		}
		statuses = append(statuses, &domain.Status{
			ID:        id,
			ProjectID: &project.ID,
			Name:      s.Name,
			Category:  domain.StatusCategory(s.Category),
			Color:     color,
			Order:     s.Order,
		})
	}

	transitions := make([]*domain.WorkflowTransition, 0, len(schema.Transitions))
	for _, t := range schema.Transitions {
		roles := make([]domain.ProjectRole, 0, len(t.AllowedRoles))
		for _, r := range t.AllowedRoles {
			roles = append(roles, domain.ProjectRole(r))
		}
		transitions = append(transitions, &domain.WorkflowTransition{
			ID:           uuid.New().String(),
			ProjectID:    project.ID,
			FromStatusID: statusIDs[t.FromRef],
			ToStatusID:   statusIDs[t.ToRef],
			Name:         t.Name,
			AllowedRoles: roles,
		})
	}

	sprintIDs := make(map[string]string)
	sprints := make([]*domain.Sprint, 0, len(schema.Sprints))
	for _, s := range schema.Sprints {
		id := uuid.New().String()
		sprintIDs[s.Ref] = id
		start, _ := time.Parse("2006-01-02", s.StartDate)
		end, _ := time.Parse("2006-01-02", s.EndDate)
		status := s.Status
		if status == "" {
			status = string(domain.SprintPlanned)
		}
		sprints = append(sprints, &domain.Sprint{
			ID:        id,
			ProjectID: project.ID,
			Name:      s.Name,
			Goal:      s.Goal,
			StartDate: start,
			EndDate:   end,
			Status:    domain.SprintStatus(status),
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	// Issues resolve epic refs forward, so map IDs before building.
	issueIDs := make(map[string]string)
	for _, iss := range schema.Issues {
		issueIDs[iss.Ref] = uuid.New().String()
	}

	defaultStatus := db.SeedStatusTodo
	for _, s := range statuses {
		if s.Category == domain.CategoryTodo {
			defaultStatus = s.ID
			break
		}
	}

	issues := make([]*domain.Issue, 0, len(schema.Issues))
	for n, iss := range schema.Issues {
		number := n + 1

		statusID := defaultStatus
		if iss.StatusRef != "" {
			id, ok := statusIDs[iss.StatusRef]
			if !ok {
				return nil, fmt.Errorf("status_ref %q not found for issue %q", iss.StatusRef, iss.Ref)
			}
			statusID = id
		}

		issueType := iss.Type
		if issueType == "" {
			issueType = "task"
		}
		priority := iss.Priority
		if priority == "" {
			priority = string(domain.PriorityMedium)
		}

		var sprintID *string
		if iss.SprintRef != nil && *iss.SprintRef != "" {
			id, ok := sprintIDs[*iss.SprintRef]
			if !ok {
				return nil, fmt.Errorf("sprint_ref %q not found for issue %q", *iss.SprintRef, iss.Ref)
			}
			sprintID = &id
		}

		var epicID *string
		if iss.EpicRef != nil && *iss.EpicRef != "" {
			id, ok := issueIDs[*iss.EpicRef]
			if !ok {
				return nil, fmt.Errorf("epic_ref %q not found for issue %q", *iss.EpicRef, iss.Ref)
			}
			epicID = &id
		}

		issues = append(issues, &domain.Issue{
			ID:          issueIDs[iss.Ref],
			ProjectID:   project.ID,
			Key:         domain.MakeIssueKey(project.Key, number),
			Number:      number,
			Type:        issueType,
			Title:       iss.Title,
			Description: iss.Description,
			StatusID:    statusID,
			Priority:    domain.Priority(priority),
			ReporterID:  ownerID,
			EpicID:      epicID,
			SprintID:    sprintID,
			StoryPoints: iss.StoryPoints,
			DueDate:     parseOptionalDate(iss.DueDate),
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	return &Bundle{
		Project:     project,
		Statuses:    statuses,
		Transitions: transitions,
		Sprints:     sprints,
		Issues:      issues,
	}, nil
}

func parseOptionalDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil
	}
	return &t
}
