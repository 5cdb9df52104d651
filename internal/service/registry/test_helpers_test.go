package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	internaldb "platform-registry/internal/db"
	"platform-registry/internal/db/repository"
	"platform-registry/internal/domain"
	"platform-registry/internal/service/security"
)

type fixture struct {
	platforms  *PlatformService
	projects   *ProjectService
	principals *PrincipalService
	roles      *RoleService
	audits     *AuditService

	platformRepo  *repository.PlatformRepo
	principalRepo *repository.PrincipalRepo
	roleRepo      *repository.RoleRepo
	projectRepo   *repository.ProjectRepo
	keyRepo       *repository.AccessKeyRepo
	auditRepo     *repository.AuditRepo
}

// setup wires the full service stack against a fresh database and provisions
// the two singleton roles, mirroring what the application seed does at boot.
func setup(t *testing.T) *fixture {
	t.Helper()
	db, _ := internaldb.OpenTestSQLite(t)
	f := &fixture{
		platformRepo:  repository.NewPlatformRepo(db),
		principalRepo: repository.NewPrincipalRepo(db),
		roleRepo:      repository.NewRoleRepo(db),
		projectRepo:   repository.NewProjectRepo(db),
		keyRepo:       repository.NewAccessKeyRepo(db),
		auditRepo:     repository.NewAuditRepo(db),
	}
	keys := security.NewAccessKeyService(f.keyRepo, f.platformRepo, f.principalRepo, f.auditRepo, 30*24*time.Hour)
	f.platforms = NewPlatformService(f.platformRepo, f.principalRepo, f.roleRepo, keys, f.auditRepo)
	f.projects = NewProjectService(f.projectRepo, f.platformRepo, f.principalRepo, f.auditRepo)
	f.principals = NewPrincipalService(f.principalRepo, f.roleRepo, f.platformRepo, f.auditRepo)
	f.roles = NewRoleService(f.roleRepo, f.auditRepo)
	f.audits = NewAuditService(f.auditRepo)

	ctx := context.Background()
	_, err := f.roleRepo.Create(ctx, &domain.Role{ID: domain.NewID(), Name: "Registry Admin", IsRegistryAdmin: true})
	require.NoError(t, err)
	_, err = f.roleRepo.Create(ctx, &domain.Role{ID: domain.NewID(), Name: "Platform", IsPlatform: true})
	require.NoError(t, err)
	return f
}

// setupPlatform provisions a tenant through the real setup flow and returns
// it together with a context authenticated as its account principal.
func (f *fixture) setupPlatform(t *testing.T, name string) (*domain.Platform, context.Context) {
	t.Helper()
	result, err := f.platforms.Setup(adminCtx(), &domain.CreatePlatformRequest{Name: name})
	require.NoError(t, err)
	ctx := domain.WithPrincipal(context.Background(), domain.ContextPrincipal{
		ID:         result.Account.ID,
		Username:   result.Account.Username,
		Kind:       domain.RolePlatform,
		PlatformID: result.Platform.ID,
	})
	return result.Platform, ctx
}

// createRegularUser registers a roleless principal.
func (f *fixture) createRegularUser(t *testing.T, username string) *domain.Principal {
	t.Helper()
	p, err := f.principals.Create(adminCtx(), &domain.CreatePrincipalRequest{
		Username: username,
		Email:    username + "@example.com",
	})
	require.NoError(t, err)
	return p
}

func adminCtx() context.Context {
	return domain.WithPrincipal(context.Background(), domain.ContextPrincipal{
		ID: "admin-id", Username: "admin", Kind: domain.RoleRegistryAdmin,
	})
}

func platformCtx(platformID string) context.Context {
	return domain.WithPrincipal(context.Background(), domain.ContextPrincipal{
		ID: "account-" + platformID, Username: "account-" + platformID,
		Kind: domain.RolePlatform, PlatformID: platformID,
	})
}
