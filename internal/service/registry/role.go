package registry

import (
	"context"

	"platform-registry/internal/domain"
	"platform-registry/internal/service/security"
)

// RoleService manages the two singleton role configurations. All operations
// are registry admin only.
type RoleService struct {
	roles domain.RoleRepository
	audit domain.AuditRepository
}

// NewRoleService creates the role service.
func NewRoleService(roles domain.RoleRepository, audit domain.AuditRepository) *RoleService {
	return &RoleService{roles: roles, audit: audit}
}

// Create registers a role configuration. At most one role per configuration
// pair may exist; a duplicate yields a ConflictError.
func (s *RoleService) Create(ctx context.Context, req *domain.CreateRoleRequest) (*domain.Role, error) {
	if _, err := security.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	created, err := s.roles.Create(ctx, &domain.Role{
		ID:               domain.NewID(),
		Name:             req.Name,
		IsRegistryAdmin:  req.IsRegistryAdmin,
		IsPlatform:       req.IsPlatform,
		ManageUsers:      req.ManageUsers,
		ManageRoles:      req.ManageRoles,
		ManagePlatforms:  req.ManagePlatforms,
		ManageAccessKeys: req.ManageAccessKeys,
		ManageProjects:   req.ManageProjects,
	})
	if err != nil {
		return nil, err
	}
	_ = s.audit.Insert(ctx, &domain.AuditEntry{
		PrincipalName: callerName(ctx),
		Action:        "CREATE_ROLE",
		ResourceType:  strPtr("role"),
		ResourceID:    strPtr(created.ID),
		Status:        "ALLOWED",
	})
	return created, nil
}

// Get returns a role by ID. Registry admin only.
func (s *RoleService) Get(ctx context.Context, id string) (*domain.Role, error) {
	if _, err := security.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.roles.GetByID(ctx, id)
}

// List returns every role. Registry admin only.
func (s *RoleService) List(ctx context.Context) ([]domain.Role, error) {
	if _, err := security.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.roles.List(ctx)
}

// Patch updates a role's capability flags. The configuration pair itself is
// immutable.
func (s *RoleService) Patch(ctx context.Context, id string, req *domain.PatchRoleRequest) (*domain.Role, error) {
	if _, err := security.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	role, err := s.roles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.ManageUsers != nil {
		role.ManageUsers = *req.ManageUsers
	}
	if req.ManageRoles != nil {
		role.ManageRoles = *req.ManageRoles
	}
	if req.ManagePlatforms != nil {
		role.ManagePlatforms = *req.ManagePlatforms
	}
	if req.ManageAccessKeys != nil {
		role.ManageAccessKeys = *req.ManageAccessKeys
	}
	if req.ManageProjects != nil {
		role.ManageProjects = *req.ManageProjects
	}
	if err := s.roles.Update(ctx, role); err != nil {
		return nil, err
	}
	_ = s.audit.Insert(ctx, &domain.AuditEntry{
		PrincipalName: callerName(ctx),
		Action:        "UPDATE_ROLE",
		ResourceType:  strPtr("role"),
		ResourceID:    strPtr(id),
		Status:        "ALLOWED",
	})
	return s.roles.GetByID(ctx, id)
}
