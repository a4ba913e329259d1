package domain

import (
	"fmt"
	"time"
)

type Sprint struct {
	ID                   string
	ProjectID            string
	Name                 string
	Goal                 string
	StartDate            time.Time
	EndDate              time.Time
	Status               SprintStatus
	InitialStoryPoints   *int
	CompletedStoryPoints *int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// ValidateDates checks that the sprint starts strictly before it ends.
func (s *Sprint) ValidateDates() error {
	if !s.StartDate.Before(s.EndDate) {
		return fmt.Errorf("sprint start date must be before end date")
	}
	return nil
}

// RemainingStoryPoints returns committed minus completed points, or nil if
// the sprint was never started.
func (s *Sprint) RemainingStoryPoints() *int {
	if s.InitialStoryPoints == nil {
		return nil
	}
	completed := 0
	if s.CompletedStoryPoints != nil {
		completed = *s.CompletedStoryPoints
	}
	remaining := *s.InitialStoryPoints - completed
	return &remaining
}
