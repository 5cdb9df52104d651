package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"platform-registry/internal/domain"
)

func (h *Handler) issueAccessKey(w http.ResponseWriter, r *http.Request) {
	var req createAccessKeyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	key, err := h.keys.Issue(r.Context(), &domain.CreateAccessKeyRequest{PlatformID: req.PlatformID})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, issuedKeyToAPI(*key))
}

func (h *Handler) listAccessKeys(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	keys, total, err := h.keys.List(r.Context(), page)
	if err != nil {
		respondError(w, err)
		return
	}
	items := make([]accessKeyPayload, 0, len(keys))
	for _, k := range keys {
		items = append(items, accessKeyToAPI(k))
	}
	respondJSON(w, http.StatusOK, listResponse[accessKeyPayload]{
		Items:         items,
		TotalCount:    total,
		NextPageToken: domain.NextPageToken(page.Offset(), page.Limit(), total),
	})
}

func (h *Handler) getAccessKey(w http.ResponseWriter, r *http.Request) {
	key, err := h.keys.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, accessKeyToAPI(*key))
}

func (h *Handler) patchAccessKey(w http.ResponseWriter, r *http.Request) {
	var req patchAccessKeyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	key, err := h.keys.Patch(r.Context(), chi.URLParam(r, "id"), &domain.PatchAccessKeyRequest{
		StartAt: req.StartAt,
		EndAt:   req.EndAt,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, accessKeyToAPI(*key))
}

func (h *Handler) archiveAccessKey(w http.ResponseWriter, r *http.Request) {
	if err := h.keys.Archive(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
