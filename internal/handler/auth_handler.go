package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"projecthub/internal/middleware"
	"projecthub/internal/model"
	"projecthub/internal/service"
	"projecthub/pkg/apierror"
)

const refreshCookieName = "refresh_token"

type AuthHandler struct {
	service      *service.AuthService
	audit        *service.AuditService
	cookieSecure bool
	refreshTTL   time.Duration
}

func NewAuthHandler(svc *service.AuthService, audit *service.AuditService, cookieSecure bool, refreshTTL time.Duration) *AuthHandler {
	return &AuthHandler{service: svc, audit: audit, cookieSecure: cookieSecure, refreshTTL: refreshTTL}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	user, err := h.service.Register(r.Context(), payload)
	if err != nil {
		h.audit.Log(r.Context(), "auth.register", auditActorFromRequest(r), "denied", payload.Email, err.Error())
		writeError(w, err)
		return
	}

	h.audit.Log(r.Context(), "auth.register", auditActorFromRequest(r), "success", user.Email, "")
	writeSuccess(w, http.StatusCreated, user, nil)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	session, err := h.service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		h.audit.Log(r.Context(), "auth.login", auditActorFromRequest(r), "denied", payload.Email, err.Error())
		writeError(w, err)
		return
	}

	h.setRefreshCookie(w, session.Tokens.RefreshToken)
	h.audit.Log(r.Context(), "auth.login", model.AuditActor{
		UserID: session.User.ID,
		Email:  session.User.Email,
		Role:   session.User.Role,
		IP:     clientIP(r),
	}, "success", session.User.Email, "")

	writeSuccess(w, http.StatusOK, model.LoginResponse{
		AccessToken: session.Tokens.AccessToken,
		TokenType:   session.Tokens.TokenType,
		ExpiresIn:   session.Tokens.ExpiresIn,
		User:        session.User,
	}, nil)
}

// Refresh reads the refresh token from its HTTP-only cookie; it is never
// accepted from a request body.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		writeError(w, apierror.New("TOKEN_INVALID", "refresh token is missing", "", http.StatusUnauthorized))
		return
	}

	accessToken, err := h.service.Refresh(r.Context(), cookie.Value)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.RefreshResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   h.service.AccessTTLSeconds(),
	}, nil)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeError(w, apierror.New("NOT_AUTHORIZED", "authentication required", "", http.StatusUnauthorized))
		return
	}

	if err := h.service.Logout(r.Context(), actor.ID); err != nil {
		writeError(w, err)
		return
	}

	h.clearRefreshCookie(w)
	h.audit.Log(r.Context(), "auth.logout", auditActorFromRequest(r), "success", actor.Email, "")
	writeSuccess(w, http.StatusOK, map[string]any{"logged_out": true}, nil)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeError(w, apierror.New("NOT_AUTHORIZED", "authentication required", "", http.StatusUnauthorized))
		return
	}

	writeSuccess(w, http.StatusOK, h.service.GetCurrentUser(actor), nil)
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, refreshToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    refreshToken,
		Path:     "/api/auth",
		MaxAge:   int(h.refreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/api/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}
