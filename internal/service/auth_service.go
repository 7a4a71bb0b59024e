package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"projecthub/internal/authz"
	"projecthub/internal/model"
	"projecthub/internal/token"
	"projecthub/pkg/apierror"
)

const bcryptCost = 12

// AuthService owns the session lifecycle. It is the sole writer of the
// persisted refresh-token slot: login overwrites it, logout clears it, and
// refresh only compares against it.
type AuthService struct {
	users  UserStore
	tokens *token.Manager
}

func NewAuthService(users UserStore, tokens *token.Manager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.PublicUser, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)
	role := strings.ToLower(strings.TrimSpace(req.Role))

	if email == "" || req.Password == "" || name == "" {
		return model.PublicUser{}, apierror.New("BAD_REQUEST", "email, password and name are required", "", http.StatusBadRequest)
	}
	if len(req.Password) < 6 {
		return model.PublicUser{}, apierror.New("BAD_REQUEST", "password must be at least 6 characters", "password", http.StatusBadRequest)
	}
	if role == "" {
		role = model.RoleUser
	}
	if !model.ValidRole(role) {
		return model.PublicUser{}, apierror.New("BAD_REQUEST", "invalid role", role, http.StatusBadRequest)
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return model.PublicUser{}, err
	}
	if exists {
		return model.PublicUser{}, apierror.New("EMAIL_EXIST", "email already registered", email, http.StatusBadRequest)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return model.PublicUser{}, err
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return model.PublicUser{}, err
	}

	return user.Public(), nil
}

func (s *AuthService) Login(ctx context.Context, email string, password string) (model.Session, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if isNotFound(err) {
			return model.Session{}, invalidCredentials()
		}
		return model.Session{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return model.Session{}, invalidCredentials()
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return model.Session{}, err
	}

	// Overwrites any prior value: a second login anywhere invalidates the
	// first device's refresh token.
	if err := s.users.SetRefreshToken(ctx, user.ID, &pair.RefreshToken); err != nil {
		return model.Session{}, err
	}

	return model.Session{
		Tokens: model.TokenPair{
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
			TokenType:    "Bearer",
			ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
		},
		User: user.Public(),
	}, nil
}

// Refresh mints a new access token for a presented refresh token. The
// refresh token itself is deliberately not rotated: it stays valid until
// logout or the next login.
func (s *AuthService) Refresh(ctx context.Context, presented string) (string, error) {
	if strings.TrimSpace(presented) == "" {
		return "", tokenInvalid()
	}

	claims, err := s.tokens.Verify(presented, token.Refresh)
	if err != nil {
		return "", err
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if isNotFound(err) {
			return "", tokenInvalid()
		}
		return "", err
	}

	if user.RefreshToken == nil || *user.RefreshToken != presented {
		return "", tokenInvalid()
	}

	return s.tokens.SignAccess(user.ID)
}

// Logout clears the refresh-token slot. Logging out an already-logged-out
// user is not an error.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.users.SetRefreshToken(ctx, userID, nil); err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

// GetCurrentUser is a pure projection of the identity the middleware
// attached; token verification already happened upstream.
func (s *AuthService) GetCurrentUser(actor model.Actor) model.PublicUser {
	return model.PublicUser{ID: actor.ID, Email: actor.Email, Name: actor.Name, Role: actor.Role}
}

func (s *AuthService) GetUserByID(ctx context.Context, id string) (model.PublicUser, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}

func (s *AuthService) AccessTTLSeconds() int64 {
	return int64(s.tokens.AccessTTL().Seconds())
}

func (s *AuthService) ListUsers(ctx context.Context) ([]model.PublicUser, error) {
	return s.users.List(ctx)
}

func (s *AuthService) UpdateUser(ctx context.Context, actor model.Actor, targetID string, req model.UpdateUserRequest) (model.PublicUser, error) {
	// Existence is checked before authorization, so a missing target is
	// reported as USER_NOT_FOUND even to a forbidden actor.
	user, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return model.PublicUser{}, err
	}

	if !authz.CanMutateUser(actor, user.ID) {
		return model.PublicUser{}, forbidden()
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return model.PublicUser{}, apierror.New("BAD_REQUEST", "name cannot be empty", "name", http.StatusBadRequest)
		}
		user.Name = name
	}

	if req.Password != nil {
		if len(*req.Password) < 6 {
			return model.PublicUser{}, apierror.New("BAD_REQUEST", "password must be at least 6 characters", "password", http.StatusBadRequest)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcryptCost)
		if err != nil {
			return model.PublicUser{}, err
		}
		user.PasswordHash = string(hash)
	}

	if req.Role != nil {
		role := strings.ToLower(strings.TrimSpace(*req.Role))
		if !model.ValidRole(role) {
			return model.PublicUser{}, apierror.New("BAD_REQUEST", "invalid role", role, http.StatusBadRequest)
		}
		// Only admins may change roles, including their own.
		if !actor.IsAdmin() {
			return model.PublicUser{}, forbidden()
		}
		user.Role = role
	}

	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return model.PublicUser{}, err
	}

	return user.Public(), nil
}

func (s *AuthService) DeleteUser(ctx context.Context, targetID string) error {
	return s.users.Delete(ctx, targetID)
}

func invalidCredentials() error {
	return apierror.New("INVALID_CREDENTIALS", model.ErrInvalidCredentials.Error(), "", http.StatusUnauthorized)
}

func tokenInvalid() error {
	return apierror.New("TOKEN_INVALID", model.ErrTokenInvalid.Error(), "", http.StatusUnauthorized)
}

func forbidden() error {
	return apierror.New("FORBIDDEN", model.ErrForbidden.Error(), "", http.StatusForbidden)
}

func isNotFound(err error) bool {
	var apiErr *apierror.APIError
	return errors.As(err, &apiErr) && apiErr.HTTPStatus == http.StatusNotFound
}
