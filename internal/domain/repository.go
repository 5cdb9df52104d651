package domain

import "context"

// PrincipalRepository provides persistence for principals.
type PrincipalRepository interface {
	Create(ctx context.Context, p *Principal) (*Principal, error)
	GetByID(ctx context.Context, id string) (*Principal, error)
	GetByUsername(ctx context.Context, username string) (*Principal, error)
	// GetAccountForPlatform returns the platform-account principal of the
	// given platform, if one exists.
	GetAccountForPlatform(ctx context.Context, platformID string) (*Principal, error)
	List(ctx context.Context, page PageRequest) ([]Principal, int64, error)
	// ListRegular returns principals with no role attached.
	ListRegular(ctx context.Context, page PageRequest) ([]Principal, int64, error)
	Update(ctx context.Context, p *Principal) error
	UpdateLastLogin(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// RoleRepository provides persistence for the two singleton roles.
type RoleRepository interface {
	Create(ctx context.Context, r *Role) (*Role, error)
	GetByID(ctx context.Context, id string) (*Role, error)
	// GetByConfiguration returns the role matching the flag pair, or a
	// NotFoundError when it has not been created yet.
	GetByConfiguration(ctx context.Context, isRegistryAdmin, isPlatform bool) (*Role, error)
	List(ctx context.Context) ([]Role, error)
	Update(ctx context.Context, r *Role) error
}

// PlatformRepository provides persistence for platforms.
type PlatformRepository interface {
	Create(ctx context.Context, p *Platform) (*Platform, error)
	GetByID(ctx context.Context, id string) (*Platform, error)
	GetByName(ctx context.Context, name string) (*Platform, error)
	List(ctx context.Context, page PageRequest) ([]Platform, int64, error)
	// ListExcept returns all platforms other than the given one. Used when a
	// platform account lists candidate share recipients.
	ListExcept(ctx context.Context, platformID string, page PageRequest) ([]Platform, int64, error)
	Delete(ctx context.Context, id string) error
}

// AccessKeyRepository provides persistence for access keys.
//
// Issue is the single mutation path that creates a key: it must check the
// at-most-one-valid invariant and insert the key — and, when
// accountPrincipalID is non-empty, replace that principal's stored credential
// hash — inside one transaction. A currently valid key yields a
// ConflictError and nothing is written.
type AccessKeyRepository interface {
	Issue(ctx context.Context, key *AccessKey, accountPrincipalID, hashedSecret string) (*AccessKey, error)
	GetByID(ctx context.Context, id string) (*AccessKey, error)
	List(ctx context.Context, page PageRequest) ([]AccessKey, int64, error)
	ListByPlatform(ctx context.Context, platformID string, page PageRequest) ([]AccessKey, int64, error)
	// CurrentValid returns the platform's currently valid key, or a
	// NotFoundError when none is valid right now. The same predicate, run
	// inside Issue's transaction, enforces the at-most-one-valid invariant.
	CurrentValid(ctx context.Context, platformID string) (*AccessKey, error)
	UpdateWindow(ctx context.Context, id string, key *AccessKey) error
	Archive(ctx context.Context, id string) error
}

// ProjectRepository provides persistence for projects and their share grants.
type ProjectRepository interface {
	Create(ctx context.Context, p *Project) (*Project, error)
	GetByID(ctx context.Context, id string) (*Project, error)
	Update(ctx context.Context, p *Project) error
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context, page PageRequest) ([]Project, int64, error)
	// ListVisible returns the union of projects owned by the platform and
	// projects with at least one share grant naming it.
	ListVisible(ctx context.Context, platformID string, page PageRequest) ([]Project, int64, error)
	// GrantsForProject returns every share grant on the project, duplicates
	// included; scope reduction happens in the sharing engine.
	GrantsForProject(ctx context.Context, projectID string) ([]ShareGrant, error)
	AddShareGrant(ctx context.Context, g *ShareGrant) (*ShareGrant, error)
}

// AuditRepository provides operations for audit log entries.
type AuditRepository interface {
	Insert(ctx context.Context, e *AuditEntry) error
	List(ctx context.Context, filter AuditFilter) ([]AuditEntry, int64, error)
}
