package api

import (
	"net/http"

	"platform-registry/internal/domain"
)

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	token, summary, err := h.identity.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		Identity: identityPayload{
			Username:  summary.Username,
			RoleName:  summary.RoleName,
			IsAdmin:   summary.IsAdmin,
			LastLogin: summary.LastLogin,
		},
	})
}

func (h *Handler) whoAmI(w http.ResponseWriter, r *http.Request) {
	p, ok := domain.PrincipalFromContext(r.Context())
	if !ok {
		respondError(w, domain.ErrUnauthenticated("authentication required"))
		return
	}
	respondJSON(w, http.StatusOK, identityPayload{
		Username: p.Username,
		RoleName: p.Kind.String(),
		IsAdmin:  p.Kind == domain.RoleRegistryAdmin,
	})
}
