package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ctrack-io/ctrack/internal/db"
	"github.com/ctrack-io/ctrack/internal/domain"
	"github.com/ctrack-io/ctrack/internal/repository"
	"github.com/google/uuid"
)

type projectService struct {
	projects repository.ProjectRepo
	uow      db.UnitOfWork
}

func NewProjectService(projects repository.ProjectRepo, uow db.UnitOfWork) ProjectService {
	return &projectService{projects: projects, uow: uow}
}

func (s *projectService) Create(ctx context.Context, p *domain.Project) error {
	p.Key = strings.ToUpper(strings.TrimSpace(p.Key))
	if err := p.ValidateKey(); err != nil {
		return err
	}
	if p.Name == "" {
		return fmt.Errorf("project name is required")
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	// The owner joins as admin in the same transaction.
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txProjects := repository.NewSQLiteProjectRepo(tx)
		if err := txProjects.Create(ctx, p); err != nil {
			return err
		}
		return txProjects.AddMember(ctx, &domain.ProjectMember{
			ProjectID: p.ID,
			UserID:    p.OwnerID,
			Role:      domain.RoleAdmin,
			JoinedAt:  now,
		})
	})
}

func (s *projectService) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	return s.projects.GetByID(ctx, id)
}

func (s *projectService) GetByKey(ctx context.Context, key string) (*domain.Project, error) {
	return s.projects.GetByKey(ctx, key)
}

func (s *projectService) List(ctx context.Context, includeArchived bool) ([]*domain.Project, error) {
	return s.projects.List(ctx, includeArchived)
}

func (s *projectService) Update(ctx context.Context, p *domain.Project) error {
	p.UpdatedAt = time.Now().UTC()
	return s.projects.Update(ctx, p)
}

func (s *projectService) Archive(ctx context.Context, id string) error {
	return s.projects.Archive(ctx, id)
}

func (s *projectService) Unarchive(ctx context.Context, id string) error {
	return s.projects.Unarchive(ctx, id)
}

func (s *projectService) Delete(ctx context.Context, id string, force bool) error {
	if !force {
		p, err := s.projects.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !p.IsArchived {
			return fmt.Errorf("project must be archived before deletion (use --force to override)")
		}
	}
	return s.projects.Delete(ctx, id)
}

func (s *projectService) AddMember(ctx context.Context, projectID, userID string, role domain.ProjectRole) error {
	switch role {
	case domain.RoleAdmin, domain.RoleManager, domain.RoleDeveloper, domain.RoleViewer:
	default:
		return fmt.Errorf("unknown role %q", role)
	}
	return s.projects.AddMember(ctx, &domain.ProjectMember{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
		JoinedAt:  time.Now().UTC(),
	})
}

func (s *projectService) RemoveMember(ctx context.Context, projectID, userID string) error {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if p.OwnerID == userID {
		return fmt.Errorf("the project owner cannot be removed")
	}
	return s.projects.RemoveMember(ctx, projectID, userID)
}

func (s *projectService) ListMembers(ctx context.Context, projectID string) ([]*domain.ProjectMember, error) {
	return s.projects.ListMembers(ctx, projectID)
}

func (s *projectService) MemberRole(ctx context.Context, projectID, userID string) (domain.ProjectRole, error) {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return "", err
	}
	if p.OwnerID == userID {
		return domain.RoleAdmin, nil
	}
	m, err := s.projects.GetMember(ctx, projectID, userID)
	if err != nil {
		return "", err
	}
	return m.Role, nil
}
