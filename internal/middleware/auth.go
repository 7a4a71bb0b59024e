package middleware

import (
	"context"
	"net/http"
	"strings"

	"projecthub/internal/authz"
	"projecthub/internal/model"
	"projecthub/internal/token"
)

type tokenVerifier interface {
	Verify(tokenString string, class token.Class) (token.Claims, error)
}

type userSource interface {
	GetUserByID(ctx context.Context, id string) (model.PublicUser, error)
}

type contextKey string

const actorContextKey contextKey = "actor"

type AuthMiddleware struct {
	tokens tokenVerifier
	users  userSource
}

func NewAuthMiddleware(tokens tokenVerifier, users userSource) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// RequireAuth verifies the bearer access token and loads the user record so
// downstream handlers see the actor's current role, not the role at token
// issue time.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			writeAuthError(w, "NOT_AUTHORIZED", "missing or invalid authorization header", http.StatusUnauthorized)
			return
		}

		claims, err := m.tokens.Verify(strings.TrimSpace(header[7:]), token.Access)
		if err != nil {
			writeAuthError(w, "TOKEN_INVALID", "invalid or expired token", http.StatusUnauthorized)
			return
		}

		user, err := m.users.GetUserByID(r.Context(), claims.Subject)
		if err != nil {
			writeAuthError(w, "TOKEN_INVALID", "invalid or expired token", http.StatusUnauthorized)
			return
		}

		actor := model.Actor{ID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role}
		ctx := context.WithValue(r.Context(), actorContextKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) RequireRoles(allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				writeAuthError(w, "NOT_AUTHORIZED", "authentication required", http.StatusUnauthorized)
				return
			}

			if !authz.RoleAllowed(actor.Role, allowedRoles...) {
				writeAuthError(w, "FORBIDDEN", "insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ActorFromContext(ctx context.Context) (model.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey).(model.Actor)
	return actor, ok
}

func writeAuthError(w http.ResponseWriter, code string, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = jsonEncode(w, model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    code,
			Message: message,
		},
	})
}
