package app

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"platform-registry/internal/config"
	internaldb "platform-registry/internal/db"
	"platform-registry/internal/db/repository"
	"platform-registry/internal/domain"
	"platform-registry/internal/service/security"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSeed(t *testing.T) {
	db, _ := internaldb.OpenTestSQLite(t)
	roles := repository.NewRoleRepo(db)
	principals := repository.NewPrincipalRepo(db)
	ctx := context.Background()

	deps := SeedDeps{Roles: roles, Principals: principals, AdminPassword: "hunter2", Logger: discardLogger()}
	require.NoError(t, Seed(ctx, deps))

	adminRole, err := roles.GetByConfiguration(ctx, true, false)
	require.NoError(t, err)
	assert.True(t, adminRole.ManageUsers)

	platformRole, err := roles.GetByConfiguration(ctx, false, true)
	require.NoError(t, err)
	assert.True(t, platformRole.ManageAccessKeys)
	assert.False(t, platformRole.ManageUsers)

	admin, err := principals.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, security.VerifySecret("hunter2", admin.HashedPassword))

	// Idempotent: a second run changes nothing, even with a new password.
	deps.AdminPassword = "different"
	require.NoError(t, Seed(ctx, deps))
	again, err := principals.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, admin.HashedPassword, again.HashedPassword)
}

func TestSeed_NoAdminPassword(t *testing.T) {
	db, _ := internaldb.OpenTestSQLite(t)
	roles := repository.NewRoleRepo(db)
	principals := repository.NewPrincipalRepo(db)
	ctx := context.Background()

	require.NoError(t, Seed(ctx, SeedDeps{Roles: roles, Principals: principals, Logger: discardLogger()}))

	_, err := principals.GetByUsername(ctx, "admin")
	assert.Error(t, err, "admin is not seeded without a password")

	_, err = roles.GetByConfiguration(ctx, true, false)
	assert.NoError(t, err, "roles are seeded regardless")
}

func TestNew_WiresServices(t *testing.T) {
	writeDB, readDB := internaldb.OpenTestSQLite(t)

	cfg := &config.Config{
		AdminPassword: "hunter2",
		Auth:          config.AuthConfig{JWTSecret: "test-secret"},
	}
	application, err := New(context.Background(), Deps{
		Cfg:     cfg,
		WriteDB: writeDB,
		ReadDB:  readDB,
		Logger:  discardLogger(),
	})
	require.NoError(t, err)

	require.NotNil(t, application.Services.Identity)
	require.NotNil(t, application.Services.Platform)

	// The seeded admin can log in through the wired identity service.
	token, summary, err := application.Services.Identity.Login(context.Background(), "admin", "hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, summary.IsAdmin)

	// The audit service runs on the read pool, so the login recorded through
	// the write pool must be visible from it.
	adminCtx := domain.WithPrincipal(context.Background(), domain.ContextPrincipal{
		ID: "admin-id", Username: "admin", Kind: domain.RoleRegistryAdmin,
	})
	action := "LOGIN"
	entries, total, err := application.Services.Audit.List(adminCtx, domain.AuditFilter{Action: &action})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, "admin", entries[0].PrincipalName)
	assert.Equal(t, "ALLOWED", entries[0].Status)
}
