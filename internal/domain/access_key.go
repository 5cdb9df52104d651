package domain

import "time"

// AccessKey is a time-boxed opaque secret bound to exactly one platform. At
// any instant at most one key per platform is valid; the platform account
// authenticates by presenting the current secret as its password.
type AccessKey struct {
	ID         string
	Label      string
	Secret     string // opaque url-safe token, generated, never derived from tenant data
	StartAt    time.Time
	EndAt      time.Time
	PlatformID string
	CreatedAt  time.Time
	ModifiedAt time.Time
	DeletedAt  *time.Time // archive marker; an archived key never validates again
}

// Archived reports whether the key has been archived.
func (k *AccessKey) Archived() bool { return k.DeletedAt != nil }

// ValidAt reports whether the key authenticates at the given instant:
// start <= t < end and not archived.
func (k *AccessKey) ValidAt(t time.Time) bool {
	return !k.Archived() && !t.Before(k.StartAt) && t.Before(k.EndAt)
}

// CreateAccessKeyRequest holds parameters for issuing a new access key.
type CreateAccessKeyRequest struct {
	PlatformID string
}

// Validate checks that the request is well-formed.
func (r *CreateAccessKeyRequest) Validate() error {
	if r.PlatformID == "" {
		return ErrValidation("platform_id is required")
	}
	return nil
}

// PatchAccessKeyRequest holds the patchable validity window of a key. Nil
// fields are left unchanged.
type PatchAccessKeyRequest struct {
	StartAt *time.Time
	EndAt   *time.Time
}
