package registry

import (
	"context"
	"errors"

	"platform-registry/internal/domain"
	"platform-registry/internal/service/security"
)

// PrincipalService manages principal records. All mutations are registry
// admin operations; platform accounts may only list regular users, which
// they need when marking project involvement.
type PrincipalService struct {
	principals domain.PrincipalRepository
	roles      domain.RoleRepository
	platforms  domain.PlatformRepository
	audit      domain.AuditRepository
}

// NewPrincipalService creates the principal service.
func NewPrincipalService(principals domain.PrincipalRepository, roles domain.RoleRepository, platforms domain.PlatformRepository, audit domain.AuditRepository) *PrincipalService {
	return &PrincipalService{
		principals: principals,
		roles:      roles,
		platforms:  platforms,
		audit:      audit,
	}
}

// Create registers a principal. Regular users carry no role, no platform and
// no credential. Role-bearing principals must satisfy the linkage invariants
// of their role: platform accounts bind to exactly one platform, admins bind
// to none.
func (s *PrincipalService) Create(ctx context.Context, req *domain.CreatePrincipalRequest) (*domain.Principal, error) {
	if _, err := security.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p := &domain.Principal{
		ID:             domain.NewID(),
		Username:       req.Username,
		Email:          req.Email,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		ExpirationDate: req.ExpirationDate,
		RoleID:         req.RoleID,
		PlatformID:     req.PlatformID,
	}

	if req.RoleID == nil {
		if req.PlatformID != nil {
			return nil, domain.ErrValidation("a regular user cannot be bound to a platform")
		}
	} else {
		role, err := s.roles.GetByID(ctx, *req.RoleID)
		if err != nil {
			return nil, err
		}
		switch {
		case role.IsPlatform:
			if req.PlatformID == nil {
				return nil, domain.ErrValidation("a platform account requires a platform_id")
			}
			if _, err := s.platforms.GetByID(ctx, *req.PlatformID); err != nil {
				return nil, err
			}
			if _, err := s.principals.GetAccountForPlatform(ctx, *req.PlatformID); err == nil {
				return nil, domain.ErrConflict("platform already has an account principal")
			} else if !errors.As(err, new(*domain.NotFoundError)) {
				return nil, err
			}
		case role.IsRegistryAdmin:
			if req.PlatformID != nil {
				return nil, domain.ErrValidation("a registry admin cannot be bound to a platform")
			}
			if req.Password == "" {
				return nil, domain.ErrValidation("a registry admin requires a password")
			}
		}
		if req.Password != "" {
			hashed, err := security.HashSecret(req.Password)
			if err != nil {
				return nil, err
			}
			p.HashedPassword = hashed
		}
	}

	created, err := s.principals.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	_ = s.audit.Insert(ctx, &domain.AuditEntry{
		PrincipalName: callerName(ctx),
		Action:        "CREATE_PRINCIPAL",
		ResourceType:  strPtr("principal"),
		ResourceID:    strPtr(created.ID),
		Status:        "ALLOWED",
	})
	return created, nil
}

// Get returns a principal. Admins can read anyone; other callers only
// themselves.
func (s *PrincipalService) Get(ctx context.Context, id string) (*domain.Principal, error) {
	caller, err := security.Caller(ctx)
	if err != nil {
		return nil, err
	}
	if caller.Kind != domain.RoleRegistryAdmin && caller.ID != id {
		return nil, domain.ErrAccessDenied("cannot view another principal")
	}
	return s.principals.GetByID(ctx, id)
}

// List returns all principals. Registry admin only.
func (s *PrincipalService) List(ctx context.Context, page domain.PageRequest) ([]domain.Principal, int64, error) {
	if _, err := security.RequireAdmin(ctx); err != nil {
		return nil, 0, err
	}
	return s.principals.List(ctx, page)
}

// ListRegular returns principals without a role. Platforms use this to pick
// users for project involvement.
func (s *PrincipalService) ListRegular(ctx context.Context, page domain.PageRequest) ([]domain.Principal, int64, error) {
	if _, err := security.RequirePlatformOrAdmin(ctx); err != nil {
		return nil, 0, err
	}
	return s.principals.ListRegular(ctx, page)
}

// Patch updates a regular user's descriptive fields. Role-bearing principals
// are managed through their own lifecycles and cannot be patched here.
func (s *PrincipalService) Patch(ctx context.Context, id string, req *domain.PatchPrincipalRequest) (*domain.Principal, error) {
	if _, err := security.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	p, err := s.principals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.RoleID != nil {
		return nil, domain.ErrValidation("only regular users can be updated")
	}
	if req.Email != nil {
		p.Email = *req.Email
	}
	if req.FirstName != nil {
		p.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		p.LastName = *req.LastName
	}
	if err := s.principals.Update(ctx, p); err != nil {
		return nil, err
	}
	_ = s.audit.Insert(ctx, &domain.AuditEntry{
		PrincipalName: callerName(ctx),
		Action:        "UPDATE_PRINCIPAL",
		ResourceType:  strPtr("principal"),
		ResourceID:    strPtr(id),
		Status:        "ALLOWED",
	})
	return s.principals.GetByID(ctx, id)
}

// Delete removes a principal. Registry admin only.
func (s *PrincipalService) Delete(ctx context.Context, id string) error {
	caller, err := security.RequireAdmin(ctx)
	if err != nil {
		return err
	}
	if caller.ID == id {
		return domain.ErrValidation("cannot delete your own principal")
	}
	if err := s.principals.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.audit.Insert(ctx, &domain.AuditEntry{
		PrincipalName: callerName(ctx),
		Action:        "DELETE_PRINCIPAL",
		ResourceType:  strPtr("principal"),
		ResourceID:    strPtr(id),
		Status:        "ALLOWED",
	})
	return nil
}
