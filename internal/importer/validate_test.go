package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func validSchema() *ImportSchema {
	return &ImportSchema{
		Project: ProjectImport{Key: "DEMO", Name: "Demo"},
		Statuses: []StatusImport{
			{Ref: "todo", Name: "To Do", Category: "todo"},
			{Ref: "done", Name: "Done", Category: "done"},
		},
		Transitions: []TransitionImport{
			{FromRef: "todo", ToRef: "done", AllowedRoles: []string{"developer"}},
		},
		Sprints: []SprintImport{
			{Ref: "s1", Name: "Sprint 1", StartDate: "2026-08-03", EndDate: "2026-08-17"},
		},
		Issues: []IssueImport{
			{Ref: "e1", Title: "Epic", Type: "epic"},
			{Ref: "i1", Title: "Story", Type: "story", StatusRef: "todo", SprintRef: strPtr("s1"), EpicRef: strPtr("e1")},
		},
	}
}

func assertHasError(t *testing.T, errs []error, substr string) {
	t.Helper()
	for _, e := range errs {
		if strings.Contains(e.Error(), substr) {
			return
		}
	}
	t.Errorf("expected an error containing %q, got %v", substr, errs)
}

func TestValidateImportSchema_Valid(t *testing.T) {
	assert.Empty(t, ValidateImportSchema(validSchema()))
}

func TestValidateImportSchema_Project(t *testing.T) {
	s := validSchema()
	s.Project.Key = "X1"
	s.Project.Name = ""
	errs := ValidateImportSchema(s)
	assertHasError(t, errs, "project.key")
	assertHasError(t, errs, "project.name is required")
}

func TestValidateImportSchema_DuplicateStatusRefs(t *testing.T) {
	s := validSchema()
	s.Statuses = append(s.Statuses, StatusImport{Ref: "todo", Name: "Again", Category: "todo"})
	assertHasError(t, ValidateImportSchema(s), `duplicate ref "todo"`)
}

func TestValidateImportSchema_BadStatusCategory(t *testing.T) {
	s := validSchema()
	s.Statuses[0].Category = "waiting"
	assertHasError(t, ValidateImportSchema(s), "category: invalid value")
}

func TestValidateImportSchema_TransitionRefs(t *testing.T) {
	s := validSchema()
	s.Transitions = []TransitionImport{
		{FromRef: "todo", ToRef: "missing"},
		{FromRef: "todo", ToRef: "todo"},
		{FromRef: "todo", ToRef: "done", AllowedRoles: []string{"root"}},
		{FromRef: "todo", ToRef: "done"},
		{FromRef: "todo", ToRef: "done"},
	}
	errs := ValidateImportSchema(s)
	assertHasError(t, errs, `ref "missing" not found in statuses`)
	assertHasError(t, errs, `from_ref and to_ref are both "todo"`)
	assertHasError(t, errs, `invalid role "root"`)
	assertHasError(t, errs, "duplicate transition todo->done")
}

func TestValidateImportSchema_Sprints(t *testing.T) {
	s := validSchema()
	s.Sprints = []SprintImport{
		{Ref: "s1", Name: "A", StartDate: "2026-08-17", EndDate: "2026-08-03", Status: "active"},
		{Ref: "s2", Name: "B", StartDate: "not-a-date", EndDate: "2026-08-31", Status: "active"},
		{Ref: "s3", Name: "C", StartDate: "2026-09-01", EndDate: "2026-09-14", Status: "paused"},
	}
	errs := ValidateImportSchema(s)
	assertHasError(t, errs, "must be before end_date")
	assertHasError(t, errs, "invalid date format")
	assertHasError(t, errs, "status: invalid value")
	assertHasError(t, errs, "at most one sprint may be active")
}

func TestValidateImportSchema_Issues(t *testing.T) {
	s := validSchema()
	s.Issues = []IssueImport{
		{Ref: "i1", Title: ""},
		{Ref: "i1", Title: "Dup ref"},
		{Ref: "i2", Title: "Bad refs", Type: "incident", Priority: "urgent",
			StatusRef: "missing", SprintRef: strPtr("nope"), StoryPoints: intPtr(-1),
			DueDate: strPtr("31/12/2026")},
		{Ref: "i3", Title: "Self epic", EpicRef: strPtr("i3")},
		{Ref: "i4", Title: "Epic is a story", EpicRef: strPtr("i2")},
	}
	errs := ValidateImportSchema(s)
	assertHasError(t, errs, `duplicate ref "i1"`)
	assertHasError(t, errs, "title is required")
	assertHasError(t, errs, `type: invalid value "incident"`)
	assertHasError(t, errs, `priority: invalid value "urgent"`)
	assertHasError(t, errs, `status_ref: ref "missing" not found`)
	assertHasError(t, errs, `sprint_ref: ref "nope" not found`)
	assertHasError(t, errs, "story_points must not be negative")
	assertHasError(t, errs, "due_date: invalid date format")
	assertHasError(t, errs, "cannot be its own epic")
	assertHasError(t, errs, `ref "i2" is not an epic issue`)
}
