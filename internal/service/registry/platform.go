// Package registry implements the tenant-facing resource services: platforms,
// projects, principals and roles. Authorization guards and credential
// handling live in the security package; this package composes them.
package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"platform-registry/internal/domain"
	"platform-registry/internal/service/security"
)

// accountLifespan is the credential validity of a freshly provisioned
// platform account principal.
const accountLifespan = 365 * 24 * time.Hour

// PlatformSetup is the result of provisioning a platform: the tenant itself,
// its account principal and the first access key. The key's secret appears
// here once and is never retrievable again in plain form.
type PlatformSetup struct {
	Platform   *domain.Platform
	Account    *domain.Principal
	InitialKey *domain.AccessKey
}

// PlatformService manages platform tenants.
type PlatformService struct {
	platforms  domain.PlatformRepository
	principals domain.PrincipalRepository
	roles      domain.RoleRepository
	keys       *security.AccessKeyService
	audit      domain.AuditRepository
	now        func() time.Time
}

// NewPlatformService creates the platform service.
func NewPlatformService(platforms domain.PlatformRepository, principals domain.PrincipalRepository, roles domain.RoleRepository, keys *security.AccessKeyService, audit domain.AuditRepository) *PlatformService {
	return &PlatformService{
		platforms:  platforms,
		principals: principals,
		roles:      roles,
		keys:       keys,
		audit:      audit,
		now:        time.Now,
	}
}

// Setup provisions a new tenant in one operation: the platform row, an
// account principal carrying the platform role, and the first access key
// whose secret becomes the account's credential. Registry admin only.
func (s *PlatformService) Setup(ctx context.Context, req *domain.CreatePlatformRequest) (*PlatformSetup, error) {
	if _, err := security.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.platforms.GetByName(ctx, req.Name); err == nil {
		return nil, domain.ErrConflict("platform %q already exists", req.Name)
	} else if !errors.As(err, new(*domain.NotFoundError)) {
		return nil, err
	}

	platformRole, err := s.roles.GetByConfiguration(ctx, false, true)
	if err != nil {
		return nil, fmt.Errorf("platform role is not provisioned: %w", err)
	}

	platform, err := s.platforms.Create(ctx, &domain.Platform{
		ID:   domain.NewID(),
		Name: req.Name,
	})
	if err != nil {
		return nil, err
	}

	username := platform.AccountUsername()
	account, err := s.principals.Create(ctx, &domain.Principal{
		ID:             domain.NewID(),
		Username:       username,
		Email:          username + "@registry.local",
		ExpirationDate: s.now().Add(accountLifespan),
		RoleID:         &platformRole.ID,
		PlatformID:     &platform.ID,
	})
	if err != nil {
		return nil, err
	}

	key, err := s.keys.Issue(ctx, &domain.CreateAccessKeyRequest{PlatformID: platform.ID})
	if err != nil {
		return nil, err
	}

	_ = s.audit.Insert(ctx, &domain.AuditEntry{
		PrincipalName: callerName(ctx),
		Action:        "CREATE_PLATFORM",
		ResourceType:  strPtr("platform"),
		ResourceID:    strPtr(platform.ID),
		Status:        "ALLOWED",
	})
	return &PlatformSetup{Platform: platform, Account: account, InitialKey: key}, nil
}

// Get returns a platform. Platform accounts can only read their own tenant.
func (s *PlatformService) Get(ctx context.Context, id string) (*domain.Platform, error) {
	caller, err := security.RequirePlatformOrAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if caller.Kind == domain.RolePlatform && caller.PlatformID != id {
		return nil, domain.ErrAccessDenied("cannot view another platform")
	}
	return s.platforms.GetByID(ctx, id)
}

// List returns the platforms visible to the caller: every tenant for a
// registry admin, only its own tenant for a platform account.
func (s *PlatformService) List(ctx context.Context, page domain.PageRequest) ([]domain.Platform, int64, error) {
	caller, err := security.RequirePlatformOrAdmin(ctx)
	if err != nil {
		return nil, 0, err
	}
	if caller.Kind == domain.RoleRegistryAdmin {
		return s.platforms.List(ctx, page)
	}
	own, err := s.platforms.GetByID(ctx, caller.PlatformID)
	if err != nil {
		return nil, 0, err
	}
	return []domain.Platform{*own}, 1, nil
}

// ListShareCandidates returns every platform except the caller's own, the
// candidate recipients when sharing a project.
func (s *PlatformService) ListShareCandidates(ctx context.Context, page domain.PageRequest) ([]domain.Platform, int64, error) {
	caller, err := security.RequirePlatform(ctx)
	if err != nil {
		return nil, 0, err
	}
	return s.platforms.ListExcept(ctx, caller.PlatformID, page)
}

// Delete removes a platform and, through cascading deletes, its account
// principal, access keys and owned projects. Registry admin only.
func (s *PlatformService) Delete(ctx context.Context, id string) error {
	if _, err := security.RequireAdmin(ctx); err != nil {
		return err
	}
	if err := s.platforms.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.audit.Insert(ctx, &domain.AuditEntry{
		PrincipalName: callerName(ctx),
		Action:        "DELETE_PLATFORM",
		ResourceType:  strPtr("platform"),
		ResourceID:    strPtr(id),
		Status:        "ALLOWED",
	})
	return nil
}

func callerName(ctx context.Context) string {
	p, _ := domain.PrincipalFromContext(ctx)
	return p.Username
}

func strPtr(s string) *string { return &s }
