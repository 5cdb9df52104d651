package domain

import (
	"strings"
	"time"
)

// Principal represents any actor the registry knows about: the registry
// admin, a platform account, or a regular user record referenced by project
// involvement.
type Principal struct {
	ID             string
	Username       string
	Email          string
	FirstName      string
	LastName       string
	HashedPassword string // empty for regular users: no credential is ever issued
	ExpirationDate time.Time
	LastLogin      *time.Time
	RoleID         *string
	PlatformID     *string
	CreatedAt      time.Time
	ModifiedAt     time.Time
}

// AuthPrincipal is a principal resolved together with its role row. It is the
// input to every authorization decision.
type AuthPrincipal struct {
	Principal
	Role *Role // nil for regular users
}

// Kind returns the closed role classification of the principal.
func (p *AuthPrincipal) Kind() RoleKind {
	if p == nil {
		return RoleUnauthenticated
	}
	return p.Role.Kind()
}

// IsAdmin reports whether the principal is the registry admin.
func (p *AuthPrincipal) IsAdmin() bool { return p.Kind() == RoleRegistryAdmin }

// IsPlatform reports whether the principal is a platform account.
func (p *AuthPrincipal) IsPlatform() bool { return p.Kind() == RolePlatform }

// OwnsPlatform reports whether the principal is the account of the given
// platform.
func (p *AuthPrincipal) OwnsPlatform(platformID string) bool {
	return p.IsPlatform() && p.PlatformID != nil && *p.PlatformID == platformID
}

// CreatePrincipalRequest holds parameters for creating a principal.
type CreatePrincipalRequest struct {
	Username       string
	Email          string
	FirstName      string
	LastName       string
	Password       string // ignored (and must be empty) for regular users
	ExpirationDate time.Time
	RoleID         *string
	PlatformID     *string
}

// Validate checks that the request is well-formed. Role/platform linkage
// invariants depend on the resolved role and are enforced by the service.
func (r *CreatePrincipalRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return ErrValidation("username is required")
	}
	if strings.TrimSpace(r.Email) == "" {
		return ErrValidation("email is required")
	}
	if r.RoleID == nil && r.Password != "" {
		return ErrValidation("a user without a role cannot hold a credential")
	}
	return nil
}

// PatchPrincipalRequest holds the patchable fields of a regular user record.
type PatchPrincipalRequest struct {
	Email     *string
	FirstName *string
	LastName  *string
}

// IdentitySummary is the minimal identity description returned by a
// successful login.
type IdentitySummary struct {
	Username  string
	RoleName  string
	IsAdmin   bool
	LastLogin *time.Time
}
