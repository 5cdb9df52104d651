package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"platform-registry/internal/domain"
)

func TestAuditService_List(t *testing.T) {
	f := setup(t)
	_, _ = f.setupPlatform(t, "Acme Corp")

	entries, total, err := f.audits.List(adminCtx(), domain.AuditFilter{})
	require.NoError(t, err)
	assert.Positive(t, total)
	require.NotEmpty(t, entries)

	// Provisioning writes CREATE_PLATFORM and ISSUE_ACCESS_KEY entries.
	actions := make(map[string]bool)
	for _, e := range entries {
		actions[e.Action] = true
	}
	assert.True(t, actions["CREATE_PLATFORM"])
	assert.True(t, actions["ISSUE_ACCESS_KEY"])
}

func TestAuditService_List_Filtered(t *testing.T) {
	f := setup(t)
	_, _ = f.setupPlatform(t, "Acme Corp")

	action := "CREATE_PLATFORM"
	entries, total, err := f.audits.List(adminCtx(), domain.AuditFilter{Action: &action})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, entries, 1)
	assert.Equal(t, "admin", entries[0].PrincipalName)
}

func TestAuditService_List_AdminOnly(t *testing.T) {
	f := setup(t)

	_, _, err := f.audits.List(platformCtx("p1"), domain.AuditFilter{})
	var denied *domain.AccessDeniedError
	assert.ErrorAs(t, err, &denied)
}
