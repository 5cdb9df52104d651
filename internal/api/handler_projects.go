package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"platform-registry/internal/domain"
)

func (h *Handler) createProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	project, err := h.projects.Create(r.Context(), &domain.CreateProjectRequest{
		Code:            req.Code,
		Name:            req.Name,
		Description:     req.Description,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		InvolvedUserIDs: req.InvolvedUserIDs,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, projectToAPI(*project))
}

func (h *Handler) listProjects(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	projects, total, err := h.projects.List(r.Context(), page)
	if err != nil {
		respondError(w, err)
		return
	}
	items := make([]projectPayload, 0, len(projects))
	for _, p := range projects {
		items = append(items, projectToAPI(p))
	}
	respondJSON(w, http.StatusOK, listResponse[projectPayload]{
		Items:         items,
		TotalCount:    total,
		NextPageToken: domain.NextPageToken(page.Offset(), page.Limit(), total),
	})
}

func (h *Handler) getProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.projects.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, projectToAPI(*project))
}

func (h *Handler) patchProject(w http.ResponseWriter, r *http.Request) {
	var req patchProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	project, err := h.projects.Patch(r.Context(), chi.URLParam(r, "id"), &domain.PatchProjectRequest{
		Name:            req.Name,
		Description:     req.Description,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		InvolvedUserIDs: req.InvolvedUserIDs,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, projectToAPI(*project))
}

func (h *Handler) deleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.projects.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) shareProject(w http.ResponseWriter, r *http.Request) {
	var req shareProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	recipients := make([]domain.ShareRecipient, 0, len(req.Recipients))
	for _, rec := range req.Recipients {
		recipients = append(recipients, domain.ShareRecipient{
			PlatformID: rec.PlatformID,
			ReadOnly:   rec.ReadOnly,
		})
	}
	grants, err := h.projects.Share(r.Context(), chi.URLParam(r, "id"), &domain.ShareProjectRequest{Recipients: recipients})
	if err != nil {
		respondError(w, err)
		return
	}
	items := make([]shareGrantPayload, 0, len(grants))
	for _, g := range grants {
		items = append(items, grantToAPI(g))
	}
	respondJSON(w, http.StatusCreated, items)
}

func (h *Handler) listProjectGrants(w http.ResponseWriter, r *http.Request) {
	grants, err := h.projects.Grants(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	items := make([]shareGrantPayload, 0, len(grants))
	for _, g := range grants {
		items = append(items, grantToAPI(g))
	}
	respondJSON(w, http.StatusOK, items)
}
