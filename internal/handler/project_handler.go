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

type ProjectHandler struct {
	service *service.ProjectService
	audit   *service.AuditService
}

func NewProjectHandler(svc *service.ProjectService, audit *service.AuditService) *ProjectHandler {
	return &ProjectHandler{service: svc, audit: audit}
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeError(w, apierror.New("NOT_AUTHORIZED", "authentication required", "", http.StatusUnauthorized))
		return
	}

	var payload model.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	project, err := h.service.Create(r.Context(), actor, payload)
	if err != nil {
		h.audit.Log(r.Context(), "project.create", auditActorFromRequest(r), "denied", payload.Name, err.Error())
		writeError(w, err)
		return
	}

	h.audit.Log(r.Context(), "project.create", auditActorFromRequest(r), "success", project.ID, "")
	writeSuccess(w, http.StatusCreated, project, nil)
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeError(w, apierror.New("NOT_AUTHORIZED", "authentication required", "", http.StatusUnauthorized))
		return
	}

	projects, err := h.service.List(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.ProjectList{Projects: projects}, nil)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	projectID := chi.URLParam(r, "id")
	if projectID == "" {
		writeError(w, apierror.New("BAD_REQUEST", "project id is required", "id", http.StatusBadRequest))
		return
	}

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeError(w, apierror.New("NOT_AUTHORIZED", "authentication required", "", http.StatusUnauthorized))
		return
	}

	var payload model.UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	project, err := h.service.Update(r.Context(), actor, projectID, payload)
	if err != nil {
		h.audit.Log(r.Context(), "project.update", auditActorFromRequest(r), "denied", projectID, err.Error())
		writeError(w, err)
		return
	}

	h.audit.Log(r.Context(), "project.update", auditActorFromRequest(r), "success", projectID, "")
	writeSuccess(w, http.StatusOK, project, nil)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")
	if projectID == "" {
		writeError(w, apierror.New("BAD_REQUEST", "project id is required", "id", http.StatusBadRequest))
		return
	}

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeError(w, apierror.New("NOT_AUTHORIZED", "authentication required", "", http.StatusUnauthorized))
		return
	}

	if err := h.service.Delete(r.Context(), actor, projectID); err != nil {
		h.audit.Log(r.Context(), "project.delete", auditActorFromRequest(r), "denied", projectID, err.Error())
		writeError(w, err)
		return
	}

	h.audit.Log(r.Context(), "project.delete", auditActorFromRequest(r), "success", projectID, "")
	writeSuccess(w, http.StatusOK, map[string]any{"deleted": true}, nil)
}
