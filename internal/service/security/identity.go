package security

import (
	"context"
	"errors"
	"time"

	"platform-registry/internal/domain"
)

// IdentityService authenticates principals and resolves bearer tokens back
// to the principal that owns them.
type IdentityService struct {
	principals domain.PrincipalRepository
	roles      domain.RoleRepository
	signer     *TokenSigner
	audit      domain.AuditRepository
	now        func() time.Time
}

// NewIdentityService creates the identity service.
func NewIdentityService(principals domain.PrincipalRepository, roles domain.RoleRepository, signer *TokenSigner, audit domain.AuditRepository) *IdentityService {
	return &IdentityService{
		principals: principals,
		roles:      roles,
		signer:     signer,
		audit:      audit,
		now:        time.Now,
	}
}

// Login verifies a username/password pair and returns a session token plus a
// summary of the authenticated identity. An unknown username and a wrong
// password produce the same error so the response does not reveal which
// usernames exist.
func (s *IdentityService) Login(ctx context.Context, username, password string) (string, *domain.IdentitySummary, error) {
	p, err := s.principals.GetByUsername(ctx, username)
	if err != nil {
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			return "", nil, domain.ErrUnauthenticated("invalid username or password")
		}
		return "", nil, err
	}
	if p.HashedPassword == "" || !VerifySecret(password, p.HashedPassword) {
		_ = s.audit.Insert(ctx, &domain.AuditEntry{
			PrincipalName: username,
			Action:        "LOGIN",
			Status:        "DENIED",
			ErrorMessage:  strPtr("invalid credentials"),
		})
		return "", nil, domain.ErrUnauthenticated("invalid username or password")
	}
	if expired(p, s.now()) {
		// The audit trail records the real reason; the response must not
		// distinguish an expired account from a bad credential.
		_ = s.audit.Insert(ctx, &domain.AuditEntry{
			PrincipalName: username,
			Action:        "LOGIN",
			Status:        "DENIED",
			ErrorMessage:  strPtr("account expired"),
		})
		return "", nil, domain.ErrUnauthenticated("invalid username or password")
	}

	role, err := s.roleFor(ctx, p)
	if err != nil {
		return "", nil, err
	}

	token, err := s.signer.Issue(p.Username)
	if err != nil {
		return "", nil, err
	}
	if err := s.principals.UpdateLastLogin(ctx, p.ID); err != nil {
		return "", nil, err
	}
	_ = s.audit.Insert(ctx, &domain.AuditEntry{
		PrincipalName: p.Username,
		Action:        "LOGIN",
		Status:        "ALLOWED",
	})

	summary := &domain.IdentitySummary{
		Username:  p.Username,
		RoleName:  (&domain.AuthPrincipal{Principal: *p, Role: role}).Kind().String(),
		IsAdmin:   role != nil && role.IsRegistryAdmin,
		LastLogin: p.LastLogin,
	}
	return token, summary, nil
}

// ResolveBearer validates a session token and loads the principal it was
// issued for. Deleted and expired principals fail exactly like a bad token.
func (s *IdentityService) ResolveBearer(ctx context.Context, token string) (*domain.AuthPrincipal, error) {
	username, err := s.signer.Parse(token)
	if err != nil {
		return nil, err
	}
	return s.ResolveUsername(ctx, username)
}

// ResolveUsername loads a principal by username with its role attached,
// applying the same expiry policy as token resolution. Used by the bearer
// path above and by the OIDC path where the subject claim is the username.
func (s *IdentityService) ResolveUsername(ctx context.Context, username string) (*domain.AuthPrincipal, error) {
	p, err := s.principals.GetByUsername(ctx, username)
	if err != nil {
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			return nil, domain.ErrUnauthenticated("invalid or expired token")
		}
		return nil, err
	}
	if expired(p, s.now()) {
		return nil, domain.ErrUnauthenticated("invalid or expired token")
	}
	role, err := s.roleFor(ctx, p)
	if err != nil {
		return nil, err
	}
	return &domain.AuthPrincipal{Principal: *p, Role: role}, nil
}

func (s *IdentityService) roleFor(ctx context.Context, p *domain.Principal) (*domain.Role, error) {
	if p.RoleID == nil {
		return nil, nil
	}
	return s.roles.GetByID(ctx, *p.RoleID)
}

func expired(p *domain.Principal, now time.Time) bool {
	return !p.ExpirationDate.IsZero() && !p.ExpirationDate.After(now)
}
