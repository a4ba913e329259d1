package service

import (
	"context"
	"time"

	"github.com/ctrack-io/ctrack/internal/domain"
	"github.com/ctrack-io/ctrack/internal/repository"
)

type activityService struct {
	activities repository.ActivityRepo
}

func NewActivityService(activities repository.ActivityRepo) ActivityService {
	return &activityService{activities: activities}
}

func (s *activityService) IssueHistory(ctx context.Context, issueID string) ([]*domain.Activity, error) {
	return s.activities.ListByIssue(ctx, issueID)
}

func (s *activityService) ProjectFeed(ctx context.Context, projectID string, since *time.Time, limit int) ([]*domain.Activity, error) {
	return s.activities.ListByProject(ctx, projectID, since, limit)
}
