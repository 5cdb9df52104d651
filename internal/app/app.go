// Package app provides application-level wiring and dependency injection
// for the platform registry.
package app

import (
	"context"
	"database/sql"
	"log/slog"

	"platform-registry/internal/config"
	"platform-registry/internal/db/repository"
	"platform-registry/internal/service/registry"
	"platform-registry/internal/service/security"
)

// Deps holds the external dependencies that main() must provide: database
// handles, config and the logger.
type Deps struct {
	Cfg     *config.Config
	WriteDB *sql.DB
	ReadDB  *sql.DB
	Logger  *slog.Logger
}

// Services groups all service pointers that the API handler needs.
type Services struct {
	Identity  *security.IdentityService
	AccessKey *security.AccessKeyService
	Platform  *registry.PlatformService
	Project   *registry.ProjectService
	Principal *registry.PrincipalService
	Role      *registry.RoleService
	Audit     *registry.AuditService
}

// App holds the fully wired application.
type App struct {
	Services Services
}

// New wires repositories and services from the provided deps and seeds the
// role singletons and the registry admin.
func New(ctx context.Context, deps Deps) (*App, error) {
	cfg := deps.Cfg

	// Mutations of principals and access keys must ride the serialized
	// write pool: key issuance depends on it for the one-valid-key check.
	principalRepo := repository.NewPrincipalRepo(deps.WriteDB)
	roleRepo := repository.NewRoleRepo(deps.WriteDB)
	platformRepo := repository.NewPlatformRepo(deps.WriteDB)
	accessKeyRepo := repository.NewAccessKeyRepo(deps.WriteDB)
	projectRepo := repository.NewProjectRepo(deps.WriteDB)
	auditRepo := repository.NewAuditRepo(deps.WriteDB)

	// Services that only ever read through a repository get an instance on
	// the concurrent read pool instead of queueing behind writers.
	principalReadRepo := repository.NewPrincipalRepo(deps.ReadDB)
	roleReadRepo := repository.NewRoleRepo(deps.ReadDB)
	platformReadRepo := repository.NewPlatformRepo(deps.ReadDB)
	auditReadRepo := repository.NewAuditRepo(deps.ReadDB)

	signer, err := security.NewTokenSigner(security.TokenConfig{
		Secret:   cfg.Auth.JWTSecret,
		Lifetime: cfg.Auth.TokenLifetime(),
	})
	if err != nil {
		return nil, err
	}

	identitySvc := security.NewIdentityService(principalRepo, roleReadRepo, signer, auditRepo)
	keySvc := security.NewAccessKeyService(accessKeyRepo, platformReadRepo, principalReadRepo, auditRepo, cfg.AccessKeyLifespan())
	platformSvc := registry.NewPlatformService(platformRepo, principalRepo, roleReadRepo, keySvc, auditRepo)
	projectSvc := registry.NewProjectService(projectRepo, platformReadRepo, principalReadRepo, auditRepo)
	principalSvc := registry.NewPrincipalService(principalRepo, roleReadRepo, platformReadRepo, auditRepo)
	roleSvc := registry.NewRoleService(roleRepo, auditRepo)
	auditSvc := registry.NewAuditService(auditReadRepo)

	if err := Seed(ctx, SeedDeps{
		Roles:         roleRepo,
		Principals:    principalRepo,
		AdminPassword: cfg.AdminPassword,
		Logger:        deps.Logger,
	}); err != nil {
		return nil, err
	}

	return &App{
		Services: Services{
			Identity:  identitySvc,
			AccessKey: keySvc,
			Platform:  platformSvc,
			Project:   projectSvc,
			Principal: principalSvc,
			Role:      roleSvc,
			Audit:     auditSvc,
		},
	}, nil
}
