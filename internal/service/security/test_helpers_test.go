package security

import (
	"context"

	"platform-registry/internal/domain"
)

// adminCtx returns a context with a registry admin principal for testing.
func adminCtx() context.Context {
	return domain.WithPrincipal(context.Background(), domain.ContextPrincipal{
		ID: "admin-id", Username: "admin", Kind: domain.RoleRegistryAdmin,
	})
}

// platformCtx returns a context with a platform account principal.
func platformCtx(platformID string) context.Context {
	return domain.WithPrincipal(context.Background(), domain.ContextPrincipal{
		ID: "account-" + platformID, Username: "account-" + platformID,
		Kind: domain.RolePlatform, PlatformID: platformID,
	})
}

// regularCtx returns a context with a roleless principal.
func regularCtx() context.Context {
	return domain.WithPrincipal(context.Background(), domain.ContextPrincipal{
		ID: "user-id", Username: "some-user", Kind: domain.RoleRegularUser,
	})
}

// contextWithoutPrincipal returns a bare context carrying no identity.
func contextWithoutPrincipal() context.Context {
	return context.Background()
}
