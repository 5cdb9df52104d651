package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"platform-registry/internal/domain"
	"platform-registry/internal/service/security"
)

// SeedDeps holds what seeding needs.
type SeedDeps struct {
	Roles         domain.RoleRepository
	Principals    domain.PrincipalRepository
	AdminPassword string
	Logger        *slog.Logger
}

// Seed provisions the two singleton roles and the registry admin principal.
// Idempotent: existing rows are left untouched, and a missing admin password
// only skips admin creation on an otherwise empty registry.
func Seed(ctx context.Context, deps SeedDeps) error {
	adminRole, err := ensureRole(ctx, deps.Roles, &domain.Role{
		ID:               domain.NewID(),
		Name:             "Registry Admin",
		IsRegistryAdmin:  true,
		ManageUsers:      true,
		ManageRoles:      true,
		ManagePlatforms:  true,
		ManageAccessKeys: true,
		ManageProjects:   true,
	})
	if err != nil {
		return fmt.Errorf("seed admin role: %w", err)
	}

	if _, err := ensureRole(ctx, deps.Roles, &domain.Role{
		ID:               domain.NewID(),
		Name:             "Platform",
		IsPlatform:       true,
		ManageAccessKeys: true,
		ManageProjects:   true,
	}); err != nil {
		return fmt.Errorf("seed platform role: %w", err)
	}

	if _, err := deps.Principals.GetByUsername(ctx, "admin"); err == nil {
		return nil
	} else if !errors.As(err, new(*domain.NotFoundError)) {
		return fmt.Errorf("seed admin lookup: %w", err)
	}
	if deps.AdminPassword == "" {
		deps.Logger.Warn("no admin principal exists and ADMIN_PASSWORD is not set; skipping admin seed")
		return nil
	}

	hashed, err := security.HashSecret(deps.AdminPassword)
	if err != nil {
		return fmt.Errorf("seed admin password: %w", err)
	}
	if _, err := deps.Principals.Create(ctx, &domain.Principal{
		ID:             domain.NewID(),
		Username:       "admin",
		Email:          "admin@registry.local",
		HashedPassword: hashed,
		RoleID:         &adminRole.ID,
	}); err != nil {
		return fmt.Errorf("seed admin principal: %w", err)
	}
	deps.Logger.Info("seeded registry admin principal", "username", "admin")
	return nil
}

// ensureRole returns the existing role of the given configuration or creates
// it.
func ensureRole(ctx context.Context, roles domain.RoleRepository, role *domain.Role) (*domain.Role, error) {
	existing, err := roles.GetByConfiguration(ctx, role.IsRegistryAdmin, role.IsPlatform)
	if err == nil {
		return existing, nil
	}
	if !errors.As(err, new(*domain.NotFoundError)) {
		return nil, err
	}
	return roles.Create(ctx, role)
}
