package service

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"projecthub/internal/model"
	"projecthub/pkg/apierror"
)

// In-memory stores mirroring the behavior of the pgx repositories, so the
// session and project logic can be exercised without a database.

type memUserStore struct {
	mu    sync.Mutex
	users map[string]model.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: map[string]model.User{}}
}

func (s *memUserStore) FindByID(_ context.Context, id string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return model.User{}, apierror.New("USER_NOT_FOUND", "user not found", id, http.StatusNotFound)
	}
	return user, nil
}

func (s *memUserStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return model.User{}, apierror.New("USER_NOT_FOUND", "user not found", email, http.StatusNotFound)
}

func (s *memUserStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memUserStore) Create(_ context.Context, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[u.ID] = u
	return nil
}

func (s *memUserStore) Update(_ context.Context, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[u.ID]
	if !ok {
		return apierror.New("USER_NOT_FOUND", "user not found", u.ID, http.StatusNotFound)
	}
	u.RefreshToken = existing.RefreshToken
	s.users[u.ID] = u
	return nil
}

func (s *memUserStore) SetRefreshToken(_ context.Context, userID string, refreshToken *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return apierror.New("USER_NOT_FOUND", "user not found", userID, http.StatusNotFound)
	}
	user.RefreshToken = refreshToken
	s.users[userID] = user
	return nil
}

func (s *memUserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return apierror.New("USER_NOT_FOUND", "user not found", id, http.StatusNotFound)
	}
	delete(s.users, id)
	return nil
}

func (s *memUserStore) List(_ context.Context) ([]model.PublicUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]model.PublicUser, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user.Public())
	}
	return users, nil
}

type memProjectStore struct {
	mu       sync.Mutex
	projects map[string]model.Project
}

func newMemProjectStore() *memProjectStore {
	return &memProjectStore{projects: map[string]model.Project{}}
}

func (s *memProjectStore) FindByID(_ context.Context, id string) (model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	project, ok := s.projects[id]
	if !ok {
		return model.Project{}, apierror.New("PROJECT_NOT_FOUND", "project not found", id, http.StatusNotFound)
	}
	return project, nil
}

func (s *memProjectStore) Create(_ context.Context, p model.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.projects[p.ID] = p
	return nil
}

func (s *memProjectStore) Update(_ context.Context, p model.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[p.ID]; !ok {
		return apierror.New("PROJECT_NOT_FOUND", "project not found", p.ID, http.StatusNotFound)
	}
	s.projects[p.ID] = p
	return nil
}

func (s *memProjectStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[id]; !ok {
		return apierror.New("PROJECT_NOT_FOUND", "project not found", id, http.StatusNotFound)
	}
	delete(s.projects, id)
	return nil
}

func (s *memProjectStore) ListByOwner(_ context.Context, ownerID string) ([]model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects := make([]model.Project, 0)
	for _, project := range s.projects {
		if project.OwnerID == ownerID {
			projects = append(projects, project)
		}
	}
	return projects, nil
}

func (s *memProjectStore) ListAll(_ context.Context) ([]model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects := make([]model.Project, 0, len(s.projects))
	for _, project := range s.projects {
		projects = append(projects, project)
	}
	return projects, nil
}
