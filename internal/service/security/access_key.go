package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	"platform-registry/internal/domain"
)

// AccessKeyService manages the access-key lifecycle: issuance, window
// adjustment and archival. Platform accounts operate on their own keys only;
// registry admins operate on any platform's keys.
type AccessKeyService struct {
	keys       domain.AccessKeyRepository
	platforms  domain.PlatformRepository
	principals domain.PrincipalRepository
	audit      domain.AuditRepository
	lifespan   time.Duration
	now        func() time.Time
}

// NewAccessKeyService creates the access-key service. lifespan is the
// validity window of newly issued keys.
func NewAccessKeyService(keys domain.AccessKeyRepository, platforms domain.PlatformRepository, principals domain.PrincipalRepository, audit domain.AuditRepository, lifespan time.Duration) *AccessKeyService {
	return &AccessKeyService{
		keys:       keys,
		platforms:  platforms,
		principals: principals,
		audit:      audit,
		lifespan:   lifespan,
		now:        time.Now,
	}
}

// Issue mints a new key for the platform. The secret is generated here and
// returned exactly once in the created key; only its hash reaches the
// platform account's credential. Issuing while another key is still valid
// fails with a ConflictError.
func (s *AccessKeyService) Issue(ctx context.Context, req *domain.CreateAccessKeyRequest) (*domain.AccessKey, error) {
	caller, err := RequirePlatformOrAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if caller.Kind == domain.RolePlatform && caller.PlatformID != req.PlatformID {
		return nil, domain.ErrAccessDenied("cannot manage access keys of another platform")
	}
	platform, err := s.platforms.GetByID(ctx, req.PlatformID)
	if err != nil {
		return nil, err
	}

	secret, err := GenerateSecret()
	if err != nil {
		return nil, err
	}
	hashed, err := HashSecret(secret)
	if err != nil {
		return nil, err
	}

	// The platform account, when one exists, gets the new secret as its
	// credential in the same transaction that inserts the key.
	accountID := ""
	account, err := s.principals.GetAccountForPlatform(ctx, platform.ID)
	switch {
	case err == nil:
		accountID = account.ID
	case errors.As(err, new(*domain.NotFoundError)):
	default:
		return nil, err
	}

	// Validity windows are compared in SQL, so they must be stored in UTC:
	// a local-zone timestamp would text-compare against the wrong instant.
	start := s.now().UTC()
	key := &domain.AccessKey{
		ID:         domain.NewID(),
		Label:      keyLabel(platform.ID, start),
		Secret:     secret,
		StartAt:    start,
		EndAt:      start.Add(s.lifespan),
		PlatformID: platform.ID,
	}
	created, err := s.keys.Issue(ctx, key, accountID, hashed)
	if err != nil {
		return nil, err
	}
	_ = s.audit.Insert(ctx, &domain.AuditEntry{
		PrincipalName: callerName(ctx),
		Action:        "ISSUE_ACCESS_KEY",
		ResourceType:  strPtr("access_key"),
		ResourceID:    strPtr(created.ID),
		Status:        "ALLOWED",
	})
	return created, nil
}

// Get returns a key by ID, scoped to the caller's platform unless the
// caller is a registry admin.
func (s *AccessKeyService) Get(ctx context.Context, id string) (*domain.AccessKey, error) {
	caller, err := RequirePlatformOrAdmin(ctx)
	if err != nil {
		return nil, err
	}
	key, err := s.keys.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller.Kind == domain.RolePlatform && key.PlatformID != caller.PlatformID {
		return nil, domain.ErrAccessDenied("access key belongs to another platform")
	}
	return key, nil
}

// List returns keys visible to the caller: all keys for registry admins, the
// platform's own keys otherwise.
func (s *AccessKeyService) List(ctx context.Context, page domain.PageRequest) ([]domain.AccessKey, int64, error) {
	caller, err := RequirePlatformOrAdmin(ctx)
	if err != nil {
		return nil, 0, err
	}
	if caller.Kind == domain.RoleRegistryAdmin {
		return s.keys.List(ctx, page)
	}
	return s.keys.ListByPlatform(ctx, caller.PlatformID, page)
}

// Patch adjusts the validity window of a key. Archived keys cannot be
// reopened.
func (s *AccessKeyService) Patch(ctx context.Context, id string, req *domain.PatchAccessKeyRequest) (*domain.AccessKey, error) {
	key, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if key.Archived() {
		return nil, domain.ErrConflict("access key is archived")
	}
	if req.StartAt != nil {
		key.StartAt = req.StartAt.UTC()
	}
	if req.EndAt != nil {
		key.EndAt = req.EndAt.UTC()
	}
	if !key.EndAt.After(key.StartAt) {
		return nil, domain.ErrValidation("end date must be after start date")
	}
	if err := s.keys.UpdateWindow(ctx, id, key); err != nil {
		return nil, err
	}
	_ = s.audit.Insert(ctx, &domain.AuditEntry{
		PrincipalName: callerName(ctx),
		Action:        "UPDATE_ACCESS_KEY",
		ResourceType:  strPtr("access_key"),
		ResourceID:    strPtr(id),
		Status:        "ALLOWED",
	})
	return s.keys.GetByID(ctx, id)
}

// Archive retires a key immediately. Archiving an already archived key is a
// no-op.
func (s *AccessKeyService) Archive(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.keys.Archive(ctx, id); err != nil {
		return err
	}
	_ = s.audit.Insert(ctx, &domain.AuditEntry{
		PrincipalName: callerName(ctx),
		Action:        "ARCHIVE_ACCESS_KEY",
		ResourceType:  strPtr("access_key"),
		ResourceID:    strPtr(id),
		Status:        "ALLOWED",
	})
	return nil
}

// keyLabel derives the display label of a freshly issued key from the
// platform ID prefix and the issue month, e.g. "0198c2f1_202608_key".
func keyLabel(platformID string, at time.Time) string {
	prefix := platformID
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return fmt.Sprintf("%s_%s_key", prefix, at.Format("200601"))
}

func strPtr(s string) *string { return &s }
