package importer

import (
	"testing"

	"github.com/ctrack-io/ctrack/internal/db"
	"github.com/ctrack-io/ctrack/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	bundle, err := Convert(validSchema(), "owner-1")
	require.NoError(t, err)

	assert.Equal(t, "DEMO", bundle.Project.Key)
	assert.Equal(t, "owner-1", bundle.Project.OwnerID)
	require.Len(t, bundle.Statuses, 2)
	require.Len(t, bundle.Transitions, 1)
	require.Len(t, bundle.Sprints, 1)
	require.Len(t, bundle.Issues, 2)

	// Statuses are project-scoped and keep their categories.
	for _, st := range bundle.Statuses {
		require.NotNil(t, st.ProjectID)
		assert.Equal(t, bundle.Project.ID, *st.ProjectID)
	}

	// The transition's refs resolved to the generated status IDs.
	tr := bundle.Transitions[0]
	assert.Equal(t, bundle.Statuses[0].ID, tr.FromStatusID)
	assert.Equal(t, bundle.Statuses[1].ID, tr.ToStatusID)
	assert.Equal(t, []domain.ProjectRole{domain.RoleDeveloper}, tr.AllowedRoles)

	// Issues are numbered in file order.
	epic, story := bundle.Issues[0], bundle.Issues[1]
	assert.Equal(t, "DEMO-1", epic.Key)
	assert.Equal(t, 1, epic.Number)
	assert.Equal(t, "DEMO-2", story.Key)
	assert.Equal(t, 2, story.Number)

	// The story's refs resolved to generated IDs.
	assert.Equal(t, bundle.Statuses[0].ID, story.StatusID)
	require.NotNil(t, story.SprintID)
	assert.Equal(t, bundle.Sprints[0].ID, *story.SprintID)
	require.NotNil(t, story.EpicID)
	assert.Equal(t, epic.ID, *story.EpicID)

	// Every issue reports to the importing owner.
	assert.Equal(t, "owner-1", epic.ReporterID)
	assert.Equal(t, "owner-1", story.ReporterID)
}

func TestConvert_Defaults(t *testing.T) {
	schema := &ImportSchema{
		Project: ProjectImport{Key: "demo", Name: "Demo"},
		Issues:  []IssueImport{{Ref: "i1", Title: "Bare"}},
	}
	bundle, err := Convert(schema, "owner-1")
	require.NoError(t, err)

	assert.Equal(t, "DEMO", bundle.Project.Key)

	issue := bundle.Issues[0]
	assert.Equal(t, "task", issue.Type)
	assert.Equal(t, domain.PriorityMedium, issue.Priority)
	// No imported statuses: issues land on the seeded global default.
	assert.Equal(t, db.SeedStatusTodo, issue.StatusID)
}

func TestConvert_DefaultStatusPrefersImportedTodo(t *testing.T) {
	schema := validSchema()
	schema.Issues = []IssueImport{{Ref: "i1", Title: "No explicit status"}}
	bundle, err := Convert(schema, "owner-1")
	require.NoError(t, err)

	// The first todo-category imported status becomes the default.
	assert.Equal(t, bundle.Statuses[0].ID, bundle.Issues[0].StatusID)
}

func TestConvert_SprintDefaults(t *testing.T) {
	schema := validSchema()
	bundle, err := Convert(schema, "owner-1")
	require.NoError(t, err)

	sp := bundle.Sprints[0]
	assert.Equal(t, domain.SprintPlanned, sp.Status)
	assert.Equal(t, "2026-08-03", sp.StartDate.Format("2006-01-02"))
	assert.Equal(t, "2026-08-17", sp.EndDate.Format("2006-01-02"))
}
