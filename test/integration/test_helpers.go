//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"projecthub/internal/config"
	"projecthub/internal/handler"
	"projecthub/internal/middleware"
	"projecthub/internal/model"
	"projecthub/internal/router"
	"projecthub/internal/service"
	"projecthub/internal/token"
	"projecthub/pkg/apierror"
)

// The integration tests exercise the full HTTP stack against in-memory
// stores, so they run without a PostgreSQL instance.

type memUsers struct {
	mu    sync.Mutex
	users map[string]model.User
}

func (s *memUsers) FindByID(_ context.Context, id string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return model.User{}, apierror.New("USER_NOT_FOUND", "user not found", id, http.StatusNotFound)
	}
	return user, nil
}

func (s *memUsers) FindByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return model.User{}, apierror.New("USER_NOT_FOUND", "user not found", email, http.StatusNotFound)
}

func (s *memUsers) ExistsByEmail(_ context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memUsers) Create(_ context.Context, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return nil
}

func (s *memUsers) Update(_ context.Context, u model.User) error {
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

func (s *memUsers) SetRefreshToken(_ context.Context, userID string, refreshToken *string) error {
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

func (s *memUsers) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return apierror.New("USER_NOT_FOUND", "user not found", id, http.StatusNotFound)
	}
	delete(s.users, id)
	return nil
}

func (s *memUsers) List(_ context.Context) ([]model.PublicUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]model.PublicUser, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user.Public())
	}
	return users, nil
}

type memProjects struct {
	mu       sync.Mutex
	projects map[string]model.Project
}

func (s *memProjects) FindByID(_ context.Context, id string) (model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	project, ok := s.projects[id]
	if !ok {
		return model.Project{}, apierror.New("PROJECT_NOT_FOUND", "project not found", id, http.StatusNotFound)
	}
	return project, nil
}

func (s *memProjects) Create(_ context.Context, p model.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[p.ID] = p
	return nil
}

func (s *memProjects) Update(_ context.Context, p model.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[p.ID]; !ok {
		return apierror.New("PROJECT_NOT_FOUND", "project not found", p.ID, http.StatusNotFound)
	}
	s.projects[p.ID] = p
	return nil
}

func (s *memProjects) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[id]; !ok {
		return apierror.New("PROJECT_NOT_FOUND", "project not found", id, http.StatusNotFound)
	}
	delete(s.projects, id)
	return nil
}

func (s *memProjects) ListByOwner(_ context.Context, ownerID string) ([]model.Project, error) {
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

func (s *memProjects) ListAll(_ context.Context) ([]model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	projects := make([]model.Project, 0, len(s.projects))
	for _, project := range s.projects {
		projects = append(projects, project)
	}
	return projects, nil
}

type memAudit struct {
	mu      sync.Mutex
	entries []model.AuditEntry
}

func (s *memAudit) Log(_ context.Context, entry model.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *memAudit) Query(_ context.Context, _ model.AuditQuery) ([]model.AuditEntry, model.Meta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.AuditEntry, len(s.entries))
	copy(out, s.entries)
	return out, model.Meta{Page: 1, Limit: 50, Total: len(out), TotalPages: 1}, nil
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	manager, err := token.NewManager(token.Config{
		AccessSecret:  []byte("access-test-secret"),
		RefreshSecret: []byte("refresh-test-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
	})
	require.NoError(t, err)

	users := &memUsers{users: map[string]model.User{}}
	projects := &memProjects{projects: map[string]model.Project{}}

	auditService := service.NewAuditService(&memAudit{})
	authService := service.NewAuthService(users, manager)
	projectService := service.NewProjectService(projects)
	authMiddleware := middleware.NewAuthMiddleware(manager, authService)

	cfg := &config.Config{
		ServerPort:       "8080",
		RequestTimeout:   30 * time.Second,
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     1000,
		AuthRateLimitRPM: 1000,
	}

	server := httptest.NewServer(router.New(cfg, authMiddleware, router.Handlers{
		Auth:    handler.NewAuthHandler(authService, auditService, false, 24*time.Hour),
		User:    handler.NewUserHandler(authService, auditService),
		Project: handler.NewProjectHandler(projectService, auditService),
		Audit:   handler.NewAuditHandler(auditService),
	}))
	t.Cleanup(server.Close)

	// Seed an admin; the public register endpoint only creates this role
	// when asked explicitly, which keeps the fixture honest about it.
	registerUser(t, server, "admin@example.com", "admin-pass", "Admin", "admin")

	return server
}

func registerUser(t *testing.T, server *httptest.Server, email, password, name, role string) {
	t.Helper()

	payload, err := json.Marshal(map[string]string{
		"email": email, "password": password, "name": name, "role": role,
	})
	require.NoError(t, err)

	resp, err := http.Post(server.URL+"/api/auth/register", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

type loginResult struct {
	AccessToken   string
	UserID        string
	RefreshCookie *http.Cookie
}

func login(t *testing.T, server *httptest.Server, email, password string) loginResult {
	t.Helper()

	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	require.NoError(t, err)

	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed struct {
		Data struct {
			AccessToken string `json:"access_token"`
			User        struct {
				ID string `json:"id"`
			} `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	require.NotEmpty(t, parsed.Data.AccessToken)

	result := loginResult{AccessToken: parsed.Data.AccessToken, UserID: parsed.Data.User.ID}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "refresh_token" {
			result.RefreshCookie = cookie
		}
	}
	require.NotNil(t, result.RefreshCookie, "login must set the refresh cookie")
	require.True(t, result.RefreshCookie.HttpOnly, "refresh cookie must be HTTP-only")

	return result
}

func doJSON(t *testing.T, method, url string, body any, accessToken string, cookies ...*http.Cookie) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeData(t *testing.T, resp *http.Response, out any) {
	t.Helper()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()

	var envelope struct {
		Error *model.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.NotNil(t, envelope.Error)
	return envelope.Error.Code
}
