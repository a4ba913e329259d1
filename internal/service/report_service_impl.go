package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ctrack-io/ctrack/internal/domain"
	"github.com/ctrack-io/ctrack/internal/repository"
)

type reportService struct {
	sprints    repository.SprintRepo
	issues     repository.IssueRepo
	statuses   repository.StatusRepo
	activities repository.ActivityRepo
}

func NewReportService(
	sprints repository.SprintRepo,
	issues repository.IssueRepo,
	statuses repository.StatusRepo,
	activities repository.ActivityRepo,
) ReportService {
	return &reportService{sprints: sprints, issues: issues, statuses: statuses, activities: activities}
}

func (s *reportService) SprintReport(ctx context.Context, sprintID string) (*SprintReport, error) {
	sp, err := s.sprints.GetByID(ctx, sprintID)
	if err != nil {
		return nil, err
	}
	issues, err := s.issues.ListBySprint(ctx, sprintID)
	if err != nil {
		return nil, err
	}
	doneIDs, err := doneStatusIDsForProject(ctx, s.statuses, sp.ProjectID)
	if err != nil {
		return nil, err
	}
	doneSet := make(map[string]bool, len(doneIDs))
	for _, id := range doneIDs {
		doneSet[id] = true
	}

	report := &SprintReport{Sprint: sp}
	for _, i := range issues {
		report.TotalIssues++
		points := 0
		if i.StoryPoints != nil {
			points = *i.StoryPoints
		}
		report.TotalPoints += points
		if doneSet[i.StatusID] {
			report.CompletedIssues++
			report.CompletedPoints += points
		}
	}
	return report, nil
}

func (s *reportService) Velocity(ctx context.Context, projectID string, lastN int) (*VelocityReport, error) {
	if lastN <= 0 {
		lastN = 5
	}
	completed, err := s.sprints.ListCompleted(ctx, projectID, lastN)
	if err != nil {
		return nil, err
	}

	report := &VelocityReport{}
	total := 0
	for _, sp := range completed {
		entry := VelocityEntry{Sprint: sp}
		if sp.InitialStoryPoints != nil {
			entry.CommittedPoints = *sp.InitialStoryPoints
		}
		if sp.CompletedStoryPoints != nil {
			entry.CompletedPoints = *sp.CompletedStoryPoints
		}
		total += entry.CompletedPoints
		report.Entries = append(report.Entries, entry)
	}
	if len(report.Entries) > 0 {
		report.AveragePoints = float64(total) / float64(len(report.Entries))
	}
	return report, nil
}

func (s *reportService) Burndown(ctx context.Context, sprintID string) (*BurndownReport, error) {
	sp, err := s.sprints.GetByID(ctx, sprintID)
	if err != nil {
		return nil, err
	}
	if sp.Status == domain.SprintPlanned {
		return nil, fmt.Errorf("sprint %q has not started yet", sp.Name)
	}

	issues, err := s.issues.ListBySprint(ctx, sprintID)
	if err != nil {
		return nil, err
	}
	doneIDs, err := doneStatusIDsForProject(ctx, s.statuses, sp.ProjectID)
	if err != nil {
		return nil, err
	}
	doneSet := make(map[string]bool, len(doneIDs))
	for _, id := range doneIDs {
		doneSet[id] = true
	}

	total := 0
	if sp.InitialStoryPoints != nil {
		total = *sp.InitialStoryPoints
	} else {
		total = sumStoryPoints(issues)
	}

	// Resolve when each issue reached a done status.
	type donePoints struct {
		at     time.Time
		points int
	}
	var completions []donePoints
	for _, issue := range issues {
		if issue.StoryPoints == nil || !doneSet[issue.StatusID] {
			continue
		}
		at, err := s.doneTime(ctx, issue)
		if err != nil {
			return nil, err
		}
		completions = append(completions, donePoints{at: at, points: *issue.StoryPoints})
	}

	start := sp.StartDate
	end := sp.EndDate
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if sp.Status == domain.SprintActive && today.Before(end) {
		end = today
	}

	totalDays := int(sp.EndDate.Sub(sp.StartDate).Hours()/24) + 1
	report := &BurndownReport{Sprint: sp, TotalPoints: total}
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		dayEnd := day.AddDate(0, 0, 1)
		burned := 0
		for _, c := range completions {
			if c.at.Before(dayEnd) {
				burned += c.points
			}
		}
		dayIndex := int(day.Sub(sp.StartDate).Hours() / 24)
		ideal := float64(total)
		if totalDays > 1 {
			ideal = float64(total) * float64(totalDays-1-dayIndex) / float64(totalDays-1)
		}
		report.Points = append(report.Points, BurndownPoint{
			Day:       day,
			Ideal:     ideal,
			Remaining: total - burned,
		})
	}
	return report, nil
}

// doneTime finds when an issue last moved into a done-category status, falling
// back to the issue's update time when no status activity was recorded (issues
// imported already done, for instance).
func (s *reportService) doneTime(ctx context.Context, issue *domain.Issue) (time.Time, error) {
	history, err := s.activities.ListByIssue(ctx, issue.ID)
	if err != nil {
		return time.Time{}, err
	}
	// Newest first: the first status change is the one that produced the
	// issue's current status.
	for _, act := range history {
		if act.Action != domain.ActionStatusChanged {
			continue
		}
		if p, ok := act.Payload.(*domain.StatusChangedPayload); ok && p.ToCategory == domain.CategoryDone {
			return act.CreatedAt, nil
		}
		break
	}
	return issue.UpdatedAt, nil
}
