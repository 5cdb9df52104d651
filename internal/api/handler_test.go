package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "platform-registry/internal/db"
	"platform-registry/internal/db/repository"
	"platform-registry/internal/domain"
	"platform-registry/internal/middleware"
	"platform-registry/internal/service/registry"
	"platform-registry/internal/service/security"
)

const testAdminPassword = "admin-pass"

type testEnv struct {
	router     http.Handler
	adminToken string
}

// newTestEnv wires the full HTTP stack against a fresh database: real
// repositories, real services, the auth middleware, and a seeded admin.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, _ := internaldb.OpenTestSQLite(t)

	principalRepo := repository.NewPrincipalRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	platformRepo := repository.NewPlatformRepo(db)
	projectRepo := repository.NewProjectRepo(db)
	keyRepo := repository.NewAccessKeyRepo(db)
	auditRepo := repository.NewAuditRepo(db)

	signer, err := security.NewTokenSigner(security.TokenConfig{Secret: "test-secret", Lifetime: time.Hour})
	require.NoError(t, err)
	identity := security.NewIdentityService(principalRepo, roleRepo, signer, auditRepo)
	keys := security.NewAccessKeyService(keyRepo, platformRepo, principalRepo, auditRepo, 30*24*time.Hour)

	h := NewHandler(
		identity,
		keys,
		registry.NewPlatformService(platformRepo, principalRepo, roleRepo, keys, auditRepo),
		registry.NewProjectService(projectRepo, platformRepo, principalRepo, auditRepo),
		registry.NewPrincipalService(principalRepo, roleRepo, platformRepo, auditRepo),
		registry.NewRoleService(roleRepo, auditRepo),
		registry.NewAuditService(auditRepo),
	)

	r := chi.NewRouter()
	r.Route("/v1", func(r chi.Router) {
		h.PublicRoutes(r)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(identity, nil))
			h.Routes(r)
		})
	})

	ctx := context.Background()
	adminRole, err := roleRepo.Create(ctx, &domain.Role{ID: domain.NewID(), Name: "Registry Admin", IsRegistryAdmin: true})
	require.NoError(t, err)
	_, err = roleRepo.Create(ctx, &domain.Role{ID: domain.NewID(), Name: "Platform", IsPlatform: true})
	require.NoError(t, err)

	hashed, err := security.HashSecret(testAdminPassword)
	require.NoError(t, err)
	_, err = principalRepo.Create(ctx, &domain.Principal{
		ID:             domain.NewID(),
		Username:       "admin",
		Email:          "admin@registry.local",
		HashedPassword: hashed,
		RoleID:         &adminRole.ID,
	})
	require.NoError(t, err)

	env := &testEnv{router: r}
	env.adminToken = env.login(t, "admin", testAdminPassword)
	return env
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"username": username, "password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"username": "admin", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid username or password")

	rec = env.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"username": "nobody", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid username or password")

	rec = env.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"username": "admin", "password": testAdminPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[loginResponse](t, rec)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.True(t, resp.Identity.IsAdmin)
}

func TestWhoAmI(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/auth/me", env.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	identity := decodeBody[identityPayload](t, rec)
	assert.Equal(t, "admin", identity.Username)
	assert.Equal(t, "registry_admin", identity.RoleName)
}

func TestPlatformLifecycle(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/v1/platforms", env.adminToken, map[string]string{"name": "Acme Corp"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	setup := decodeBody[platformSetupPayload](t, rec)
	assert.Equal(t, "Acme Corp", setup.Platform.Name)
	assert.Equal(t, "acme-corp", setup.Account.Username)
	require.NotEmpty(t, setup.InitialKey.Secret, "the secret appears once, at setup")

	// The key listing never exposes the secret again.
	rec = env.do(t, http.MethodGet, "/v1/access-keys", env.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	keyList := decodeBody[listResponse[accessKeyPayload]](t, rec)
	require.Len(t, keyList.Items, 1)
	assert.Empty(t, keyList.Items[0].Secret)

	// The platform account logs in with the key secret.
	platformToken := env.login(t, "acme-corp", setup.InitialKey.Secret)
	rec = env.do(t, http.MethodGet, "/v1/auth/me", platformToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	identity := decodeBody[identityPayload](t, rec)
	assert.Equal(t, "platform", identity.RoleName)
	assert.False(t, identity.IsAdmin)

	// Platform accounts cannot provision tenants.
	rec = env.do(t, http.MethodPost, "/v1/platforms", platformToken, map[string]string{"name": "Intruder"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodDelete, "/v1/platforms/"+setup.Platform.ID, env.adminToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/platforms/"+setup.Platform.ID, env.adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreatePlatform_Errors(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/v1/platforms", env.adminToken, map[string]string{"name": "Acme Corp"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/v1/platforms", env.adminToken, map[string]string{"name": "Acme Corp"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/v1/platforms", env.adminToken, map[string]string{"title": "Acme"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unknown fields are rejected")
}

func TestProjectSharingOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/v1/platforms", env.adminToken, map[string]string{"name": "Owner Corp"})
	require.Equal(t, http.StatusCreated, rec.Code)
	owner := decodeBody[platformSetupPayload](t, rec)
	ownerToken := env.login(t, owner.Account.Username, owner.InitialKey.Secret)

	rec = env.do(t, http.MethodPost, "/v1/platforms", env.adminToken, map[string]string{"name": "Recipient Corp"})
	require.Equal(t, http.StatusCreated, rec.Code)
	recipient := decodeBody[platformSetupPayload](t, rec)
	recipientToken := env.login(t, recipient.Account.Username, recipient.InitialKey.Secret)

	rec = env.do(t, http.MethodPost, "/v1/projects", ownerToken, map[string]string{
		"code": "PRJ-1", "name": "Project One",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	project := decodeBody[projectPayload](t, rec)
	assert.Equal(t, owner.Platform.ID, project.OwnerPlatformID)

	// Not shared yet.
	rec = env.do(t, http.MethodGet, "/v1/projects/"+project.ID, recipientToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Share candidates exclude the caller's own tenant.
	rec = env.do(t, http.MethodGet, "/v1/platforms/share-candidates", ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	candidates := decodeBody[listResponse[platformPayload]](t, rec)
	require.Len(t, candidates.Items, 1)
	assert.Equal(t, recipient.Platform.ID, candidates.Items[0].ID)

	rec = env.do(t, http.MethodPost, fmt.Sprintf("/v1/projects/%s/share", project.ID), ownerToken, map[string]any{
		"recipients": []map[string]any{{"platform_id": recipient.Platform.ID, "read_only": true}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/v1/projects/"+project.ID, recipientToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Readonly recipients cannot patch.
	rec = env.do(t, http.MethodPatch, "/v1/projects/"+project.ID, recipientToken, map[string]string{"name": "renamed"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/v1/projects/%s/grants", project.ID), ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var grants []shareGrantPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &grants))
	require.Len(t, grants, 1)
	assert.True(t, grants[0].ReadOnly)
}

func TestAuditEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/v1/platforms", env.adminToken, map[string]string{"name": "Acme Corp"})
	require.Equal(t, http.StatusCreated, rec.Code)
	setup := decodeBody[platformSetupPayload](t, rec)

	rec = env.do(t, http.MethodGet, "/v1/audit?action=CREATE_PLATFORM", env.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	entries := decodeBody[listResponse[auditEntryPayload]](t, rec)
	require.Len(t, entries.Items, 1)
	assert.Equal(t, "admin", entries.Items[0].PrincipalName)

	platformToken := env.login(t, setup.Account.Username, setup.InitialKey.Secret)
	rec = env.do(t, http.MethodGet, "/v1/audit", platformToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRolesEndpoint_AdminOnly(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/roles", env.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	roles := decodeBody[[]rolePayload](t, rec)
	assert.Len(t, roles, 2)
}
