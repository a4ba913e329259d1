package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ctrack-io/ctrack/internal/domain"
	"github.com/ctrack-io/ctrack/internal/repository"
	"github.com/google/uuid"
)

// recordActivity persists one activity entry for an issue. The repo may be
// transaction-scoped.
func recordActivity(ctx context.Context, activities repository.ActivityRepo, issueID string, actorID *string, payload domain.ActivityPayload) error {
	act := &domain.Activity{
		ID:        uuid.New().String(),
		IssueID:   issueID,
		UserID:    actorID,
		Action:    payload.Kind(),
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
	if err := activities.Create(ctx, act); err != nil {
		return fmt.Errorf("recording %s activity: %w", payload.Kind(), err)
	}
	return nil
}

// diffIssueFields compares the editable scalar fields of two issue versions
// and returns one FieldChange per difference. Status, assignee, sprint, type,
// and priority changes are excluded: those are recorded as their own
// dedicated activity kinds.
func diffIssueFields(old, updated *domain.Issue) []domain.FieldChange {
	var changes []domain.FieldChange
	if old.Title != updated.Title {
		changes = append(changes, domain.FieldChange{Field: "title", Old: old.Title, New: updated.Title})
	}
	if old.Description != updated.Description {
		changes = append(changes, domain.FieldChange{Field: "description", Old: old.Description, New: updated.Description})
	}
	if oldSP, newSP := intPtrLabel(old.StoryPoints), intPtrLabel(updated.StoryPoints); oldSP != newSP {
		changes = append(changes, domain.FieldChange{Field: "story_points", Old: oldSP, New: newSP})
	}
	if oldDue, newDue := datePtrLabel(old.DueDate), datePtrLabel(updated.DueDate); oldDue != newDue {
		changes = append(changes, domain.FieldChange{Field: "due_date", Old: oldDue, New: newDue})
	}
	if oldEpic, newEpic := strPtrLabel(old.EpicID), strPtrLabel(updated.EpicID); oldEpic != newEpic {
		changes = append(changes, domain.FieldChange{Field: "epic", Old: oldEpic, New: newEpic})
	}
	return changes
}

func intPtrLabel(v *int) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%d", *v)
}

func datePtrLabel(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.Format("2006-01-02")
}

func strPtrLabel(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
