package domain

import (
	"strings"
	"time"
)

// Project is a resource owned by exactly one platform. Ownership is immutable
// after creation: no transfer operation exists.
type Project struct {
	ID              string
	Code            string
	Name            string
	Description     string
	StartDate       *time.Time
	EndDate         *time.Time
	OwnerPlatformID string
	InvolvedUserIDs []string // regular-user principals referenced by the project
	CreatedAt       time.Time
	ModifiedAt      time.Time
}

// ShareGrant is a directed visibility edge from a project to a non-owning
// platform. Multiple grants for the same (project, platform) pair may exist;
// the effective scope for a recipient is the union of its grants.
type ShareGrant struct {
	ID         string
	ProjectID  string
	PlatformID string
	ReadOnly   bool
	CreatedAt  time.Time
}

// EffectiveScope reduces a recipient's grant set to its union: any grant at
// all yields read, any non-readonly grant yields write.
func EffectiveScope(grants []ShareGrant, platformID string) (canRead, canWrite bool) {
	for _, g := range grants {
		if g.PlatformID != platformID {
			continue
		}
		canRead = true
		if !g.ReadOnly {
			canWrite = true
		}
	}
	return canRead, canWrite
}

// CreateProjectRequest holds parameters for creating a project.
type CreateProjectRequest struct {
	Code            string
	Name            string
	Description     string
	StartDate       *time.Time
	EndDate         *time.Time
	InvolvedUserIDs []string
}

// Validate checks that the request is well-formed.
func (r *CreateProjectRequest) Validate() error {
	if strings.TrimSpace(r.Code) == "" {
		return ErrValidation("project code is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return ErrValidation("project name is required")
	}
	if r.StartDate != nil && r.EndDate != nil && !r.StartDate.Before(*r.EndDate) {
		return ErrValidation("project end date must be after start date")
	}
	return nil
}

// PatchProjectRequest holds the patchable fields of a project. Nil fields are
// left unchanged; ownership is not patchable.
type PatchProjectRequest struct {
	Name            *string
	Description     *string
	StartDate       *time.Time
	EndDate         *time.Time
	InvolvedUserIDs []string // nil leaves involvement unchanged
}

// ShareRecipient names one platform a project is being shared with and the
// scope of the grant.
type ShareRecipient struct {
	PlatformID string
	ReadOnly   bool
}

// ShareProjectRequest holds parameters for sharing a project with one or more
// platforms.
type ShareProjectRequest struct {
	Recipients []ShareRecipient
}

// Validate checks that the request is well-formed.
func (r *ShareProjectRequest) Validate() error {
	if len(r.Recipients) == 0 {
		return ErrValidation("at least one recipient platform is required")
	}
	for _, rec := range r.Recipients {
		if rec.PlatformID == "" {
			return ErrValidation("recipient platform_id is required")
		}
	}
	return nil
}
