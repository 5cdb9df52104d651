package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"platform-registry/internal/domain"
)

func (h *Handler) createRole(w http.ResponseWriter, r *http.Request) {
	var req createRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	role, err := h.roles.Create(r.Context(), &domain.CreateRoleRequest{
		Name:             req.Name,
		IsRegistryAdmin:  req.IsRegistryAdmin,
		IsPlatform:       req.IsPlatform,
		ManageUsers:      req.ManageUsers,
		ManageRoles:      req.ManageRoles,
		ManagePlatforms:  req.ManagePlatforms,
		ManageAccessKeys: req.ManageAccessKeys,
		ManageProjects:   req.ManageProjects,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, roleToAPI(*role))
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.roles.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	items := make([]rolePayload, 0, len(roles))
	for _, role := range roles {
		items = append(items, roleToAPI(role))
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handler) getRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.roles.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, roleToAPI(*role))
}

func (h *Handler) patchRole(w http.ResponseWriter, r *http.Request) {
	var req patchRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	role, err := h.roles.Patch(r.Context(), chi.URLParam(r, "id"), &domain.PatchRoleRequest{
		ManageUsers:      req.ManageUsers,
		ManageRoles:      req.ManageRoles,
		ManagePlatforms:  req.ManagePlatforms,
		ManageAccessKeys: req.ManageAccessKeys,
		ManageProjects:   req.ManageProjects,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, roleToAPI(*role))
}
