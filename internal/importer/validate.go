package importer

import (
	"fmt"
	"regexp"
	"time"

	"github.com/ctrack-io/ctrack/internal/domain"
)

var (
	importKeyPattern     = regexp.MustCompile(`^[A-Za-z]{2,10}$`)
	validStatusCategory  = map[string]bool{"todo": true, "in_progress": true, "done": true}
	validSprintStatuses  = map[string]bool{"planned": true, "active": true, "completed": true}
	validTransitionRoles = map[string]bool{"admin": true, "manager": true, "developer": true, "viewer": true}
)

// ValidateImportSchema checks the import schema for errors before conversion.
// Returns a slice of all validation errors found.
func ValidateImportSchema(schema *ImportSchema) []error {
	var errs []error

	errs = append(errs, validateProject(&schema.Project)...)

	statusRefs := make(map[string]bool)
	errs = append(errs, validateStatuses(schema.Statuses, statusRefs)...)
	errs = append(errs, validateTransitions(schema.Transitions, statusRefs)...)

	sprintRefs := make(map[string]bool)
	errs = append(errs, validateSprints(schema.Sprints, sprintRefs)...)

	errs = append(errs, validateIssues(schema.Issues, statusRefs, sprintRefs)...)

	return errs
}

func validateProject(p *ProjectImport) []error {
	var errs []error

	if p.Key == "" {
		errs = append(errs, fmt.Errorf("project.key is required"))
	} else if !importKeyPattern.MatchString(p.Key) {
		errs = append(errs, fmt.Errorf("project.key %q must be 2-10 letters", p.Key))
	}
	if p.Name == "" {
		errs = append(errs, fmt.Errorf("project.name is required"))
	}

	return errs
}

func validateStatuses(statuses []StatusImport, statusRefs map[string]bool) []error {
	var errs []error

	for i, s := range statuses {
		prefix := fmt.Sprintf("statuses[%d]", i)

		if s.Ref == "" {
			errs = append(errs, fmt.Errorf("%s.ref is required", prefix))
		} else if statusRefs[s.Ref] {
			errs = append(errs, fmt.Errorf("%s.ref: duplicate ref %q", prefix, s.Ref))
		} else {
			statusRefs[s.Ref] = true
		}

		if s.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}
		if s.Category == "" {
			errs = append(errs, fmt.Errorf("%s.category is required", prefix))
		} else if !validStatusCategory[s.Category] {
			errs = append(errs, fmt.Errorf("%s.category: invalid value %q", prefix, s.Category))
		}
	}

	return errs
}

func validateTransitions(transitions []TransitionImport, statusRefs map[string]bool) []error {
	var errs []error

	seen := make(map[string]bool)
	for i, t := range transitions {
		prefix := fmt.Sprintf("transitions[%d]", i)

		if t.FromRef == "" {
			errs = append(errs, fmt.Errorf("%s.from_ref is required", prefix))
		} else if !statusRefs[t.FromRef] {
			errs = append(errs, fmt.Errorf("%s.from_ref: ref %q not found in statuses", prefix, t.FromRef))
		}

		if t.ToRef == "" {
			errs = append(errs, fmt.Errorf("%s.to_ref is required", prefix))
		} else if !statusRefs[t.ToRef] {
			errs = append(errs, fmt.Errorf("%s.to_ref: ref %q not found in statuses", prefix, t.ToRef))
		}

		if t.FromRef != "" && t.FromRef == t.ToRef {
			errs = append(errs, fmt.Errorf("%s: from_ref and to_ref are both %q", prefix, t.FromRef))
		}

		pair := t.FromRef + "->" + t.ToRef
		if t.FromRef != "" && t.ToRef != "" {
			if seen[pair] {
				errs = append(errs, fmt.Errorf("%s: duplicate transition %s", prefix, pair))
			}
			seen[pair] = true
		}

		for _, role := range t.AllowedRoles {
			if !validTransitionRoles[role] {
				errs = append(errs, fmt.Errorf("%s.allowed_roles: invalid role %q", prefix, role))
			}
		}
	}

	return errs
}

func validateSprints(sprints []SprintImport, sprintRefs map[string]bool) []error {
	var errs []error

	activeCount := 0
	for i, s := range sprints {
		prefix := fmt.Sprintf("sprints[%d]", i)

		if s.Ref == "" {
			errs = append(errs, fmt.Errorf("%s.ref is required", prefix))
		} else if sprintRefs[s.Ref] {
			errs = append(errs, fmt.Errorf("%s.ref: duplicate ref %q", prefix, s.Ref))
		} else {
			sprintRefs[s.Ref] = true
		}

		if s.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}
		if s.Status != "" && !validSprintStatuses[s.Status] {
			errs = append(errs, fmt.Errorf("%s.status: invalid value %q", prefix, s.Status))
		}
		if s.Status == "active" {
			activeCount++
		}

		start, startErrs := requireDate(prefix+".start_date", s.StartDate)
		end, endErrs := requireDate(prefix+".end_date", s.EndDate)
		errs = append(errs, startErrs...)
		errs = append(errs, endErrs...)
		if len(startErrs) == 0 && len(endErrs) == 0 && !start.Before(end) {
			errs = append(errs, fmt.Errorf("%s: start_date %q must be before end_date %q", prefix, s.StartDate, s.EndDate))
		}
	}
	if activeCount > 1 {
		errs = append(errs, fmt.Errorf("sprints: at most one sprint may be active (found %d)", activeCount))
	}

	return errs
}

func validateIssues(issues []IssueImport, statusRefs, sprintRefs map[string]bool) []error {
	var errs []error

	issueRefs := make(map[string]bool)
	epicRefs := make(map[string]bool)
	for _, iss := range issues {
		if iss.Ref != "" && iss.Type == "epic" {
			epicRefs[iss.Ref] = true
		}
	}

	for i, iss := range issues {
		prefix := fmt.Sprintf("issues[%d]", i)

		if iss.Ref == "" {
			errs = append(errs, fmt.Errorf("%s.ref is required", prefix))
		} else if issueRefs[iss.Ref] {
			errs = append(errs, fmt.Errorf("%s.ref: duplicate ref %q", prefix, iss.Ref))
		} else {
			issueRefs[iss.Ref] = true
		}

		if iss.Title == "" {
			errs = append(errs, fmt.Errorf("%s.title is required", prefix))
		}
		if iss.Type != "" && !domain.ValidIssueTypes[iss.Type] {
			errs = append(errs, fmt.Errorf("%s.type: invalid value %q", prefix, iss.Type))
		}
		if iss.Priority != "" && !domain.ValidPriorities[iss.Priority] {
			errs = append(errs, fmt.Errorf("%s.priority: invalid value %q", prefix, iss.Priority))
		}
		if iss.StatusRef != "" && !statusRefs[iss.StatusRef] {
			errs = append(errs, fmt.Errorf("%s.status_ref: ref %q not found in statuses", prefix, iss.StatusRef))
		}
		if iss.SprintRef != nil && *iss.SprintRef != "" && !sprintRefs[*iss.SprintRef] {
			errs = append(errs, fmt.Errorf("%s.sprint_ref: ref %q not found in sprints", prefix, *iss.SprintRef))
		}
		if iss.EpicRef != nil && *iss.EpicRef != "" {
			if *iss.EpicRef == iss.Ref {
				errs = append(errs, fmt.Errorf("%s.epic_ref: an issue cannot be its own epic", prefix))
			} else if !epicRefs[*iss.EpicRef] {
				errs = append(errs, fmt.Errorf("%s.epic_ref: ref %q is not an epic issue", prefix, *iss.EpicRef))
			}
		}
		if iss.StoryPoints != nil && *iss.StoryPoints < 0 {
			errs = append(errs, fmt.Errorf("%s.story_points must not be negative", prefix))
		}
		if iss.DueDate != nil && *iss.DueDate != "" {
			if _, err := time.Parse("2006-01-02", *iss.DueDate); err != nil {
				errs = append(errs, fmt.Errorf("%s.due_date: invalid date format %q (expected YYYY-MM-DD)", prefix, *iss.DueDate))
			}
		}
	}

	return errs
}

func requireDate(field, value string) (time.Time, []error) {
	if value == "" {
		return time.Time{}, []error{fmt.Errorf("%s is required", field)}
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, []error{fmt.Errorf("%s: invalid date format %q (expected YYYY-MM-DD)", field, value)}
	}
	return t, nil
}
