package service

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"projecthub/internal/authz"
	"projecthub/internal/model"
	"projecthub/pkg/apierror"
)

type ProjectService struct {
	projects ProjectStore
}

func NewProjectService(projects ProjectStore) *ProjectService {
	return &ProjectService{projects: projects}
}

// Create is role-gated: only admins create projects. The created project is
// owned by the acting user.
func (s *ProjectService) Create(ctx context.Context, actor model.Actor, req model.CreateProjectRequest) (model.Project, error) {
	if !authz.RoleAllowed(actor.Role, model.RoleAdmin) {
		return model.Project{}, forbidden()
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.Project{}, apierror.New("BAD_REQUEST", "project name is required", "name", http.StatusBadRequest)
	}

	now := time.Now().UTC()
	project := model.Project{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		OwnerID:     actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.projects.Create(ctx, project); err != nil {
		return model.Project{}, err
	}

	return project, nil
}

// List returns the actor's own projects; admins see all of them.
func (s *ProjectService) List(ctx context.Context, actor model.Actor) ([]model.Project, error) {
	if actor.IsAdmin() {
		return s.projects.ListAll(ctx)
	}
	return s.projects.ListByOwner(ctx, actor.ID)
}

func (s *ProjectService) Update(ctx context.Context, actor model.Actor, id string, req model.UpdateProjectRequest) (model.Project, error) {
	// Not-found is reported before the ownership check.
	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return model.Project{}, err
	}

	if !authz.CanMutateProject(actor, project.OwnerID) {
		return model.Project{}, forbidden()
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return model.Project{}, apierror.New("BAD_REQUEST", "project name cannot be empty", "name", http.StatusBadRequest)
		}
		project.Name = name
	}
	if req.Description != nil {
		project.Description = strings.TrimSpace(*req.Description)
	}

	project.UpdatedAt = time.Now().UTC()
	if err := s.projects.Update(ctx, project); err != nil {
		return model.Project{}, err
	}

	return project, nil
}

func (s *ProjectService) Delete(ctx context.Context, actor model.Actor, id string) error {
	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if !authz.CanMutateProject(actor, project.OwnerID) {
		return forbidden()
	}

	return s.projects.Delete(ctx, id)
}
