package domain

import (
	"strings"
	"time"
)

// Platform is an organizational tenant. It owns projects and access keys and
// holds at most one platform-account principal used purely as an
// authentication identity.
type Platform struct {
	ID         string
	Name       string
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// AccountUsername derives the login username of the platform's account
// principal from its display name.
func (p *Platform) AccountUsername() string {
	return strings.ToLower(strings.ReplaceAll(p.Name, " ", "-"))
}

// CreatePlatformRequest holds parameters for provisioning a platform.
type CreatePlatformRequest struct {
	Name string
}

// Validate checks that the request is well-formed.
func (r *CreatePlatformRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrValidation("platform name is required")
	}
	return nil
}
