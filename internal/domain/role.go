package domain

import "time"

// RoleKind is the closed classification of an authenticated (or referenced)
// principal. A principal maps to exactly one kind; invalid flag combinations
// on the underlying role row are rejected at creation time.
type RoleKind int

const (
	// RoleUnauthenticated is the zero kind: no credential presented.
	RoleUnauthenticated RoleKind = iota
	// RoleRegularUser is a principal with no role. It never authenticates and
	// exists only to be referenced by project involvement records.
	RoleRegularUser
	// RolePlatform is a platform (tenant) account authenticating via its
	// current access key.
	RolePlatform
	// RoleRegistryAdmin is the registry superuser role.
	RoleRegistryAdmin
)

// String returns the role kind name used in API responses and audit entries.
func (k RoleKind) String() string {
	switch k {
	case RoleRegularUser:
		return "regular_user"
	case RolePlatform:
		return "platform"
	case RoleRegistryAdmin:
		return "registry_admin"
	default:
		return "unauthenticated"
	}
}

// Role is one of the two singleton role configurations that may exist
// system-wide: Registry Admin or Platform. At most one role of each
// configuration exists, enforced by a uniqueness constraint over the
// (is_registry_admin, is_platform) pair.
type Role struct {
	ID              string
	Name            string
	IsRegistryAdmin bool
	IsPlatform      bool

	// Capability flags. Mutable after creation, unlike the configuration pair.
	ManageUsers      bool
	ManageRoles      bool
	ManagePlatforms  bool
	ManageAccessKeys bool
	ManageProjects   bool

	CreatedAt  time.Time
	ModifiedAt time.Time
}

// Kind maps the role row to its closed classification.
func (r *Role) Kind() RoleKind {
	switch {
	case r == nil:
		return RoleRegularUser
	case r.IsRegistryAdmin:
		return RoleRegistryAdmin
	case r.IsPlatform:
		return RolePlatform
	default:
		return RoleRegularUser
	}
}

// CreateRoleRequest holds parameters for creating a role.
type CreateRoleRequest struct {
	Name             string
	IsRegistryAdmin  bool
	IsPlatform       bool
	ManageUsers      bool
	ManageRoles      bool
	ManagePlatforms  bool
	ManageAccessKeys bool
	ManageProjects   bool
}

// Validate checks that the request describes exactly one role configuration.
func (r *CreateRoleRequest) Validate() error {
	if r.Name == "" {
		return ErrValidation("role name is required")
	}
	if !r.IsRegistryAdmin && !r.IsPlatform {
		return ErrValidation("role must be either Platform or Registry Admin")
	}
	if r.IsRegistryAdmin && r.IsPlatform {
		return ErrValidation("role must be either Platform or Registry Admin, not both")
	}
	return nil
}

// PatchRoleRequest holds the mutable capability flags of a role. Nil fields
// are left unchanged; the configuration pair itself is immutable.
type PatchRoleRequest struct {
	ManageUsers      *bool
	ManageRoles      *bool
	ManagePlatforms  *bool
	ManageAccessKeys *bool
	ManageProjects   *bool
}
