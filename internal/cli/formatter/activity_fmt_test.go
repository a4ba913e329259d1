package formatter

import (
	"testing"
	"time"

	"github.com/ctrack-io/ctrack/internal/domain"
	"github.com/stretchr/testify/assert"
)

func activity(p domain.ActivityPayload) *domain.Activity {
	return &domain.Activity{
		ID:        "a1",
		IssueID:   "i1",
		Action:    p.Kind(),
		Payload:   p,
		CreatedAt: time.Now().UTC(),
	}
}

func TestDescribeActivity_Created(t *testing.T) {
	out := DescribeActivity(activity(&domain.CreatedPayload{IssueKey: "TRK-7", Title: "Fix login"}))
	assert.Contains(t, out, "created")
	assert.Contains(t, out, "TRK-7")
}

func TestDescribeActivity_StatusChanged(t *testing.T) {
	out := DescribeActivity(activity(&domain.StatusChangedPayload{
		FromName: "To Do", FromCategory: domain.CategoryTodo,
		ToName: "Done", ToCategory: domain.CategoryDone,
	}))
	assert.Contains(t, out, "To Do")
	assert.Contains(t, out, "Done")
	assert.Contains(t, out, "moved")
}

func TestDescribeActivity_Unassigned(t *testing.T) {
	out := DescribeActivity(activity(&domain.AssignedPayload{FromUserID: strPtr("u1"), FromName: "Ada"}))
	assert.Equal(t, "unassigned", out)
}

func TestDescribeActivity_UpdatedListsFields(t *testing.T) {
	out := DescribeActivity(activity(&domain.UpdatedPayload{Changes: []domain.FieldChange{
		{Field: "title", Old: "a", New: "b"},
		{Field: "due_date", Old: "", New: "2026-09-01"},
	}}))
	assert.Contains(t, out, "title")
	assert.Contains(t, out, "due_date")
}

func strPtr(s string) *string { return &s }
