package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"platform-registry/internal/domain"
)

func (h *Handler) createPlatform(w http.ResponseWriter, r *http.Request) {
	var req createPlatformRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	setup, err := h.platforms.Setup(r.Context(), &domain.CreatePlatformRequest{Name: req.Name})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, setupToAPI(setup))
}

func (h *Handler) listPlatforms(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	platforms, total, err := h.platforms.List(r.Context(), page)
	if err != nil {
		respondError(w, err)
		return
	}
	items := make([]platformPayload, 0, len(platforms))
	for _, p := range platforms {
		items = append(items, platformToAPI(p))
	}
	respondJSON(w, http.StatusOK, listResponse[platformPayload]{
		Items:         items,
		TotalCount:    total,
		NextPageToken: domain.NextPageToken(page.Offset(), page.Limit(), total),
	})
}

func (h *Handler) listShareCandidates(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	platforms, total, err := h.platforms.ListShareCandidates(r.Context(), page)
	if err != nil {
		respondError(w, err)
		return
	}
	items := make([]platformPayload, 0, len(platforms))
	for _, p := range platforms {
		items = append(items, platformToAPI(p))
	}
	respondJSON(w, http.StatusOK, listResponse[platformPayload]{
		Items:         items,
		TotalCount:    total,
		NextPageToken: domain.NextPageToken(page.Offset(), page.Limit(), total),
	})
}

func (h *Handler) getPlatform(w http.ResponseWriter, r *http.Request) {
	platform, err := h.platforms.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, platformToAPI(*platform))
}

func (h *Handler) deletePlatform(w http.ResponseWriter, r *http.Request) {
	if err := h.platforms.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
