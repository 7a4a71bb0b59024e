package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"projecthub/internal/model"
	"projecthub/internal/token"
	"projecthub/pkg/apierror"
)

func newTestAuthService(t *testing.T) (*AuthService, *memUserStore, *token.Manager) {
	t.Helper()

	manager, err := token.NewManager(token.Config{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
	})
	require.NoError(t, err)

	users := newMemUserStore()
	return NewAuthService(users, manager), users, manager
}

func errCode(t *testing.T, err error) string {
	t.Helper()

	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	return apiErr.Code
}

func registerReq(email string) model.RegisterRequest {
	return model.RegisterRequest{Email: email, Password: "secret123", Name: "Alice"}
}

func TestRegister(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("stores a hash, never the plaintext password", func(t *testing.T) {
		svc, users, _ := newTestAuthService(t)

		created, err := svc.Register(ctx, registerReq("alice@example.com"))
		require.NoError(t, err)
		require.Equal(t, "alice@example.com", created.Email)
		require.Equal(t, model.RoleUser, created.Role)

		stored, err := users.FindByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotEqual(t, "secret123", stored.PasswordHash)
		require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret123")))
		require.Nil(t, stored.RefreshToken)
	})

	t.Run("duplicate email fails with EMAIL_EXIST", func(t *testing.T) {
		svc, _, _ := newTestAuthService(t)

		_, err := svc.Register(ctx, registerReq("alice@example.com"))
		require.NoError(t, err)

		_, err = svc.Register(ctx, registerReq("Alice@Example.com"))
		require.Equal(t, "EMAIL_EXIST", errCode(t, err))
	})

	t.Run("rejects short passwords and unknown roles", func(t *testing.T) {
		svc, _, _ := newTestAuthService(t)

		req := registerReq("bob@example.com")
		req.Password = "short"
		_, err := svc.Register(ctx, req)
		require.Equal(t, "BAD_REQUEST", errCode(t, err))

		req = registerReq("bob@example.com")
		req.Role = "superuser"
		_, err = svc.Register(ctx, req)
		require.Equal(t, "BAD_REQUEST", errCode(t, err))
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("wrong password fails with INVALID_CREDENTIALS", func(t *testing.T) {
		svc, _, _ := newTestAuthService(t)
		_, err := svc.Register(ctx, registerReq("alice@example.com"))
		require.NoError(t, err)

		_, err = svc.Login(ctx, "alice@example.com", "wrong-password")
		require.Equal(t, "INVALID_CREDENTIALS", errCode(t, err))
	})

	t.Run("unknown email fails with INVALID_CREDENTIALS, not USER_NOT_FOUND", func(t *testing.T) {
		svc, _, _ := newTestAuthService(t)

		_, err := svc.Login(ctx, "nobody@example.com", "whatever")
		require.Equal(t, "INVALID_CREDENTIALS", errCode(t, err))
	})

	t.Run("success returns verifiable tokens and persists the refresh token", func(t *testing.T) {
		svc, users, manager := newTestAuthService(t)
		created, err := svc.Register(ctx, registerReq("alice@example.com"))
		require.NoError(t, err)

		session, err := svc.Login(ctx, "alice@example.com", "secret123")
		require.NoError(t, err)
		require.Equal(t, created.ID, session.User.ID)

		claims, err := manager.Verify(session.Tokens.AccessToken, token.Access)
		require.NoError(t, err)
		require.Equal(t, created.ID, claims.Subject)

		stored, err := users.FindByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.RefreshToken)
		require.Equal(t, session.Tokens.RefreshToken, *stored.RefreshToken)
	})
}

func TestRefresh(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("issues a new access token; refresh token is not one-time-use", func(t *testing.T) {
		svc, _, manager := newTestAuthService(t)
		created, err := svc.Register(ctx, registerReq("alice@example.com"))
		require.NoError(t, err)

		session, err := svc.Login(ctx, "alice@example.com", "secret123")
		require.NoError(t, err)

		access1, err := svc.Refresh(ctx, session.Tokens.RefreshToken)
		require.NoError(t, err)
		claims, err := manager.Verify(access1, token.Access)
		require.NoError(t, err)
		require.Equal(t, created.ID, claims.Subject)

		// The original access token and the refresh token itself both stay
		// usable after a refresh.
		_, err = manager.Verify(session.Tokens.AccessToken, token.Access)
		require.NoError(t, err)

		_, err = svc.Refresh(ctx, session.Tokens.RefreshToken)
		require.NoError(t, err)
	})

	t.Run("rejects missing, garbage and wrong-class tokens", func(t *testing.T) {
		svc, _, _ := newTestAuthService(t)
		_, err := svc.Register(ctx, registerReq("alice@example.com"))
		require.NoError(t, err)

		session, err := svc.Login(ctx, "alice@example.com", "secret123")
		require.NoError(t, err)

		_, err = svc.Refresh(ctx, "")
		require.Equal(t, "TOKEN_INVALID", errCode(t, err))

		_, err = svc.Refresh(ctx, "garbage")
		require.Equal(t, "TOKEN_INVALID", errCode(t, err))

		// Access tokens are signed with the access secret; presenting one
		// where the refresh secret is expected must fail.
		_, err = svc.Refresh(ctx, session.Tokens.AccessToken)
		require.Equal(t, "TOKEN_INVALID", errCode(t, err))
	})

	t.Run("second login invalidates the first refresh token", func(t *testing.T) {
		svc, _, _ := newTestAuthService(t)
		_, err := svc.Register(ctx, registerReq("alice@example.com"))
		require.NoError(t, err)

		first, err := svc.Login(ctx, "alice@example.com", "secret123")
		require.NoError(t, err)
		second, err := svc.Login(ctx, "alice@example.com", "secret123")
		require.NoError(t, err)
		// Holds even when both logins land within the same second.
		require.NotEqual(t, first.Tokens.RefreshToken, second.Tokens.RefreshToken)

		_, err = svc.Refresh(ctx, first.Tokens.RefreshToken)
		require.Equal(t, "TOKEN_INVALID", errCode(t, err))

		_, err = svc.Refresh(ctx, second.Tokens.RefreshToken)
		require.NoError(t, err)
	})

	t.Run("logout invalidates the persisted refresh token", func(t *testing.T) {
		svc, _, _ := newTestAuthService(t)
		created, err := svc.Register(ctx, registerReq("alice@example.com"))
		require.NoError(t, err)

		session, err := svc.Login(ctx, "alice@example.com", "secret123")
		require.NoError(t, err)

		require.NoError(t, svc.Logout(ctx, created.ID))

		_, err = svc.Refresh(ctx, session.Tokens.RefreshToken)
		require.Equal(t, "TOKEN_INVALID", errCode(t, err))

		// Logging out again is not an error.
		require.NoError(t, svc.Logout(ctx, created.ID))
	})
}

func TestUpdateUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	setup := func(t *testing.T) (*AuthService, model.PublicUser, model.PublicUser, model.Actor) {
		svc, _, _ := newTestAuthService(t)

		alice, err := svc.Register(ctx, registerReq("alice@example.com"))
		require.NoError(t, err)
		bob, err := svc.Register(ctx, model.RegisterRequest{Email: "bob@example.com", Password: "secret123", Name: "Bob"})
		require.NoError(t, err)
		admin := model.Actor{ID: "admin-id", Role: model.RoleAdmin}

		return svc, alice, bob, admin
	}

	t.Run("non-admin cannot update another user's record", func(t *testing.T) {
		svc, alice, bob, _ := setup(t)

		name := "Mallory"
		actor := model.Actor{ID: alice.ID, Role: model.RoleUser}
		_, err := svc.UpdateUser(ctx, actor, bob.ID, model.UpdateUserRequest{Name: &name})
		require.Equal(t, "FORBIDDEN", errCode(t, err))
	})

	t.Run("user updates own record", func(t *testing.T) {
		svc, alice, _, _ := setup(t)

		name := "Alice Cooper"
		actor := model.Actor{ID: alice.ID, Role: model.RoleUser}
		updated, err := svc.UpdateUser(ctx, actor, alice.ID, model.UpdateUserRequest{Name: &name})
		require.NoError(t, err)
		require.Equal(t, "Alice Cooper", updated.Name)
	})

	t.Run("admin updates any record", func(t *testing.T) {
		svc, _, bob, admin := setup(t)

		role := model.RoleAdmin
		updated, err := svc.UpdateUser(ctx, admin, bob.ID, model.UpdateUserRequest{Role: &role})
		require.NoError(t, err)
		require.Equal(t, model.RoleAdmin, updated.Role)
	})

	t.Run("non-admin cannot change roles, even their own", func(t *testing.T) {
		svc, alice, _, _ := setup(t)

		role := model.RoleAdmin
		actor := model.Actor{ID: alice.ID, Role: model.RoleUser}
		_, err := svc.UpdateUser(ctx, actor, alice.ID, model.UpdateUserRequest{Role: &role})
		require.Equal(t, "FORBIDDEN", errCode(t, err))
	})

	t.Run("missing target reported before the authorization check", func(t *testing.T) {
		svc, alice, _, _ := setup(t)

		name := "Ghost"
		actor := model.Actor{ID: alice.ID, Role: model.RoleUser}
		_, err := svc.UpdateUser(ctx, actor, "no-such-user", model.UpdateUserRequest{Name: &name})
		require.Equal(t, "USER_NOT_FOUND", errCode(t, err))
	})
}
