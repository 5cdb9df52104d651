package registry

import (
	"context"

	"platform-registry/internal/domain"
	"platform-registry/internal/service/security"
)

// AuditService exposes the audit log to registry admins.
type AuditService struct {
	audit domain.AuditRepository
}

// NewAuditService creates the audit service.
func NewAuditService(audit domain.AuditRepository) *AuditService {
	return &AuditService{audit: audit}
}

// List returns audit entries matching the filter. Registry admin only.
func (s *AuditService) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int64, error) {
	if _, err := security.RequireAdmin(ctx); err != nil {
		return nil, 0, err
	}
	return s.audit.List(ctx, filter)
}
