package security

import (
	"context"

	"platform-registry/internal/domain"
)

// Caller returns the authenticated principal from context.
// Returns UnauthenticatedError if the request carries no principal.
func Caller(ctx context.Context) (domain.ContextPrincipal, error) {
	p, ok := domain.PrincipalFromContext(ctx)
	if !ok {
		return domain.ContextPrincipal{}, domain.ErrUnauthenticated("authentication required")
	}
	return p, nil
}

// RequireAdmin checks that the caller is a registry admin.
func RequireAdmin(ctx context.Context) (domain.ContextPrincipal, error) {
	p, err := Caller(ctx)
	if err != nil {
		return p, err
	}
	if p.Kind != domain.RoleRegistryAdmin {
		return p, domain.ErrAccessDenied("registry admin privileges required")
	}
	return p, nil
}

// RequirePlatform checks that the caller is a platform account.
func RequirePlatform(ctx context.Context) (domain.ContextPrincipal, error) {
	p, err := Caller(ctx)
	if err != nil {
		return p, err
	}
	if p.Kind != domain.RolePlatform || p.PlatformID == "" {
		return p, domain.ErrAccessDenied("platform privileges required")
	}
	return p, nil
}

// RequirePlatformOrAdmin checks that the caller is either a platform
// account or a registry admin.
func RequirePlatformOrAdmin(ctx context.Context) (domain.ContextPrincipal, error) {
	p, err := Caller(ctx)
	if err != nil {
		return p, err
	}
	switch p.Kind {
	case domain.RoleRegistryAdmin, domain.RolePlatform:
		return p, nil
	default:
		return p, domain.ErrAccessDenied("platform or registry admin privileges required")
	}
}

// callerName returns the username of the authenticated principal, if any.
func callerName(ctx context.Context) string {
	p, _ := domain.PrincipalFromContext(ctx)
	return p.Username
}
