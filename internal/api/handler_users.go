package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"platform-registry/internal/domain"
)

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	var expiration time.Time
	if req.ExpirationDate != nil {
		expiration = *req.ExpirationDate
	}
	user, err := h.principals.Create(r.Context(), &domain.CreatePrincipalRequest{
		Username:       req.Username,
		Email:          req.Email,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Password:       req.Password,
		ExpirationDate: expiration,
		RoleID:         req.RoleID,
		PlatformID:     req.PlatformID,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, userToAPI(*user))
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	users, total, err := h.principals.List(r.Context(), page)
	if err != nil {
		respondError(w, err)
		return
	}
	respondUserList(w, users, total, page)
}

func (h *Handler) listRegularUsers(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	users, total, err := h.principals.ListRegular(r.Context(), page)
	if err != nil {
		respondError(w, err)
		return
	}
	respondUserList(w, users, total, page)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.principals.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, userToAPI(*user))
}

func (h *Handler) patchUser(w http.ResponseWriter, r *http.Request) {
	var req patchUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	user, err := h.principals.Patch(r.Context(), chi.URLParam(r, "id"), &domain.PatchPrincipalRequest{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, userToAPI(*user))
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.principals.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func respondUserList(w http.ResponseWriter, users []domain.Principal, total int64, page domain.PageRequest) {
	items := make([]userPayload, 0, len(users))
	for _, u := range users {
		items = append(items, userToAPI(u))
	}
	respondJSON(w, http.StatusOK, listResponse[userPayload]{
		Items:         items,
		TotalCount:    total,
		NextPageToken: domain.NextPageToken(page.Offset(), page.Limit(), total),
	})
}
