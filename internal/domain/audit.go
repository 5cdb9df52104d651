package domain

import "time"

// AuditEntry represents a single audit log record.
type AuditEntry struct {
	ID            string
	PrincipalName string
	Action        string
	ResourceType  *string
	ResourceID    *string
	Status        string // "ALLOWED", "DENIED", "ERROR"
	ErrorMessage  *string
	CreatedAt     time.Time
}

// AuditFilter holds filter parameters for querying audit logs.
type AuditFilter struct {
	PrincipalName *string
	Action        *string
	Status        *string
	Since         *time.Time
	Page          PageRequest
}
