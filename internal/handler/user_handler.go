package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"projecthub/internal/middleware"
	"projecthub/internal/model"
	"projecthub/internal/service"
	"projecthub/pkg/apierror"
)

type UserHandler struct {
	service *service.AuthService
	audit   *service.AuditService
}

func NewUserHandler(svc *service.AuthService, audit *service.AuditService) *UserHandler {
	return &UserHandler{service: svc, audit: audit}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.UserList{Users: users}, nil)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	userID := chi.URLParam(r, "id")
	if userID == "" {
		writeError(w, apierror.New("BAD_REQUEST", "user id is required", "id", http.StatusBadRequest))
		return
	}

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeError(w, apierror.New("NOT_AUTHORIZED", "authentication required", "", http.StatusUnauthorized))
		return
	}

	var payload model.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	user, err := h.service.UpdateUser(r.Context(), actor, userID, payload)
	if err != nil {
		h.audit.Log(r.Context(), "user.update", auditActorFromRequest(r), "denied", userID, err.Error())
		writeError(w, err)
		return
	}

	h.audit.Log(r.Context(), "user.update", auditActorFromRequest(r), "success", userID, "")
	writeSuccess(w, http.StatusOK, user, nil)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		writeError(w, apierror.New("BAD_REQUEST", "user id is required", "id", http.StatusBadRequest))
		return
	}

	if err := h.service.DeleteUser(r.Context(), userID); err != nil {
		h.audit.Log(r.Context(), "user.delete", auditActorFromRequest(r), "denied", userID, err.Error())
		writeError(w, err)
		return
	}

	h.audit.Log(r.Context(), "user.delete", auditActorFromRequest(r), "success", userID, "")
	writeSuccess(w, http.StatusOK, map[string]any{"deleted": true}, nil)
}
