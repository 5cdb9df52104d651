package security

import (
	"platform-registry/internal/domain"
)

// Project authorization decisions. All three are pure: they reason over the
// caller, the project and the project's share grants, and never touch storage.
//
// Registry admins can read every project but never write or share one.
// Writing and sharing are platform concerns: the owner holds both, and a
// share grant extends read, and optionally write, to another platform.

// CanReadProject reports whether the caller may view the project.
func CanReadProject(caller domain.ContextPrincipal, project *domain.Project, grants []domain.ShareGrant) bool {
	switch caller.Kind {
	case domain.RoleRegistryAdmin:
		return true
	case domain.RolePlatform:
		if caller.PlatformID == project.OwnerPlatformID {
			return true
		}
		canRead, _ := domain.EffectiveScope(grants, caller.PlatformID)
		return canRead
	default:
		return false
	}
}

// CanWriteProject reports whether the caller may modify the project.
func CanWriteProject(caller domain.ContextPrincipal, project *domain.Project, grants []domain.ShareGrant) bool {
	if caller.Kind != domain.RolePlatform {
		return false
	}
	if caller.PlatformID == project.OwnerPlatformID {
		return true
	}
	_, canWrite := domain.EffectiveScope(grants, caller.PlatformID)
	return canWrite
}

// CanShareProject reports whether the caller may grant other platforms
// access to the project. Only the owning platform can share; a write grant
// does not carry the right to re-share.
func CanShareProject(caller domain.ContextPrincipal, project *domain.Project) bool {
	return caller.Kind == domain.RolePlatform && caller.PlatformID == project.OwnerPlatformID
}
