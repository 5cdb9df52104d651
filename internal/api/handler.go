// Package api provides HTTP handlers for the platform registry REST API.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"platform-registry/internal/domain"
	"platform-registry/internal/service/registry"
	"platform-registry/internal/service/security"
)

// Handler holds the service dependencies of every route.
type Handler struct {
	identity   *security.IdentityService
	keys       *security.AccessKeyService
	platforms  *registry.PlatformService
	projects   *registry.ProjectService
	principals *registry.PrincipalService
	roles      *registry.RoleService
	audit      *registry.AuditService
}

// NewHandler creates a Handler with all required service dependencies.
func NewHandler(
	identity *security.IdentityService,
	keys *security.AccessKeyService,
	platforms *registry.PlatformService,
	projects *registry.ProjectService,
	principals *registry.PrincipalService,
	roles *registry.RoleService,
	audit *registry.AuditService,
) *Handler {
	return &Handler{
		identity:   identity,
		keys:       keys,
		platforms:  platforms,
		projects:   projects,
		principals: principals,
		roles:      roles,
		audit:      audit,
	}
}

// PublicRoutes registers the routes that require no authentication.
func (h *Handler) PublicRoutes(r chi.Router) {
	r.Post("/auth/login", h.login)
}

// Routes registers the authenticated API routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/auth/me", h.whoAmI)

	r.Route("/platforms", func(r chi.Router) {
		r.Post("/", h.createPlatform)
		r.Get("/", h.listPlatforms)
		r.Get("/share-candidates", h.listShareCandidates)
		r.Get("/{id}", h.getPlatform)
		r.Delete("/{id}", h.deletePlatform)
	})

	r.Route("/access-keys", func(r chi.Router) {
		r.Post("/", h.issueAccessKey)
		r.Get("/", h.listAccessKeys)
		r.Get("/{id}", h.getAccessKey)
		r.Patch("/{id}", h.patchAccessKey)
		r.Delete("/{id}", h.archiveAccessKey)
	})

	r.Route("/projects", func(r chi.Router) {
		r.Post("/", h.createProject)
		r.Get("/", h.listProjects)
		r.Get("/{id}", h.getProject)
		r.Patch("/{id}", h.patchProject)
		r.Delete("/{id}", h.deleteProject)
		r.Post("/{id}/share", h.shareProject)
		r.Get("/{id}/grants", h.listProjectGrants)
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.createUser)
		r.Get("/", h.listUsers)
		r.Get("/regular", h.listRegularUsers)
		r.Get("/{id}", h.getUser)
		r.Patch("/{id}", h.patchUser)
		r.Delete("/{id}", h.deleteUser)
	})

	r.Route("/roles", func(r chi.Router) {
		r.Post("/", h.createRole)
		r.Get("/", h.listRoles)
		r.Get("/{id}", h.getRole)
		r.Patch("/{id}", h.patchRole)
	})

	r.Get("/audit", h.listAudit)
}

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// respondError writes a domain error as a JSON error envelope.
func respondError(w http.ResponseWriter, err error) {
	status := httpStatusFromDomainError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	respondJSON(w, status, errorResponse{Code: status, Message: msg})
}

// decodeJSON decodes the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return domain.ErrValidation("invalid request body: %v", err)
	}
	return nil
}

// pageFromQuery extracts a PageRequest from max_results/page_token params.
func pageFromQuery(r *http.Request) domain.PageRequest {
	p := domain.PageRequest{PageToken: r.URL.Query().Get("page_token")}
	if v := r.URL.Query().Get("max_results"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			p.MaxResults = n
		}
	}
	return p
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
