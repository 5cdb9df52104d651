package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"platform-registry/internal/domain"
)

func TestProjectService_Create(t *testing.T) {
	f := setup(t)
	platform, platCtx := f.setupPlatform(t, "Owner Corp")
	user := f.createRegularUser(t, "jdoe")

	project, err := f.projects.Create(platCtx, &domain.CreateProjectRequest{
		Code:            "PRJ-1",
		Name:            "Project One",
		Description:     "first project",
		InvolvedUserIDs: []string{user.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, platform.ID, project.OwnerPlatformID, "ownership is fixed to the caller")
	assert.Equal(t, []string{user.ID}, project.InvolvedUserIDs)
}

func TestProjectService_Create_PlatformOnly(t *testing.T) {
	f := setup(t)

	_, err := f.projects.Create(adminCtx(), &domain.CreateProjectRequest{Code: "PRJ-1", Name: "Project One"})
	var denied *domain.AccessDeniedError
	assert.ErrorAs(t, err, &denied)
}

func TestProjectService_Create_InvolvedUserChecks(t *testing.T) {
	f := setup(t)
	_, platCtx := f.setupPlatform(t, "Owner Corp")

	_, err := f.projects.Create(platCtx, &domain.CreateProjectRequest{
		Code: "PRJ-1", Name: "Project One",
		InvolvedUserIDs: []string{"no-such-user"},
	})
	var invalid *domain.ValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, err.Error(), "does not exist")

	// A role-bearing principal cannot be marked as involved.
	admin, err := f.principalRepo.GetByUsername(adminCtx(), "owner-corp")
	require.NoError(t, err)
	_, err = f.projects.Create(platCtx, &domain.CreateProjectRequest{
		Code: "PRJ-2", Name: "Project Two",
		InvolvedUserIDs: []string{admin.ID},
	})
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, err.Error(), "not a regular user")
}

func TestProjectService_Get_Visibility(t *testing.T) {
	f := setup(t)
	_, ownerCtx := f.setupPlatform(t, "Owner Corp")
	_, strangerCtx := f.setupPlatform(t, "Stranger Corp")

	project, err := f.projects.Create(ownerCtx, &domain.CreateProjectRequest{Code: "PRJ-1", Name: "Project One"})
	require.NoError(t, err)

	_, err = f.projects.Get(strangerCtx, project.ID)
	var denied *domain.AccessDeniedError
	assert.ErrorAs(t, err, &denied)

	got, err := f.projects.Get(ownerCtx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, project.ID, got.ID)

	// Admins read everything.
	got, err = f.projects.Get(adminCtx(), project.ID)
	require.NoError(t, err)
	assert.Equal(t, project.ID, got.ID)
}

func TestProjectService_Share_EnablesRead(t *testing.T) {
	f := setup(t)
	_, ownerCtx := f.setupPlatform(t, "Owner Corp")
	recipient, recipientCtx := f.setupPlatform(t, "Recipient Corp")

	project, err := f.projects.Create(ownerCtx, &domain.CreateProjectRequest{Code: "PRJ-1", Name: "Project One"})
	require.NoError(t, err)

	grants, err := f.projects.Share(ownerCtx, project.ID, &domain.ShareProjectRequest{
		Recipients: []domain.ShareRecipient{{PlatformID: recipient.ID, ReadOnly: true}},
	})
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.True(t, grants[0].ReadOnly)

	got, err := f.projects.Get(recipientCtx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, project.ID, got.ID)

	// A readonly grant does not allow writes.
	name := "renamed"
	_, err = f.projects.Patch(recipientCtx, project.ID, &domain.PatchProjectRequest{Name: &name})
	var denied *domain.AccessDeniedError
	assert.ErrorAs(t, err, &denied)
}

func TestProjectService_Share_WriteGrant(t *testing.T) {
	f := setup(t)
	_, ownerCtx := f.setupPlatform(t, "Owner Corp")
	recipient, recipientCtx := f.setupPlatform(t, "Recipient Corp")
	third, _ := f.setupPlatform(t, "Third Corp")

	project, err := f.projects.Create(ownerCtx, &domain.CreateProjectRequest{Code: "PRJ-1", Name: "Project One"})
	require.NoError(t, err)

	_, err = f.projects.Share(ownerCtx, project.ID, &domain.ShareProjectRequest{
		Recipients: []domain.ShareRecipient{{PlatformID: recipient.ID, ReadOnly: false}},
	})
	require.NoError(t, err)

	name := "renamed"
	patched, err := f.projects.Patch(recipientCtx, project.ID, &domain.PatchProjectRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "renamed", patched.Name)

	// A write grant does not confer the right to share onward.
	_, err = f.projects.Share(recipientCtx, project.ID, &domain.ShareProjectRequest{
		Recipients: []domain.ShareRecipient{{PlatformID: third.ID}},
	})
	var denied *domain.AccessDeniedError
	assert.ErrorAs(t, err, &denied)
}

func TestProjectService_Share_SelfShareRejected(t *testing.T) {
	f := setup(t)
	owner, ownerCtx := f.setupPlatform(t, "Owner Corp")

	project, err := f.projects.Create(ownerCtx, &domain.CreateProjectRequest{Code: "PRJ-1", Name: "Project One"})
	require.NoError(t, err)

	_, err = f.projects.Share(ownerCtx, project.ID, &domain.ShareProjectRequest{
		Recipients: []domain.ShareRecipient{{PlatformID: owner.ID}},
	})
	var invalid *domain.ValidationError
	assert.ErrorAs(t, err, &invalid)
}

func TestProjectService_Share_DuplicateGrantsUnion(t *testing.T) {
	f := setup(t)
	_, ownerCtx := f.setupPlatform(t, "Owner Corp")
	recipient, recipientCtx := f.setupPlatform(t, "Recipient Corp")

	project, err := f.projects.Create(ownerCtx, &domain.CreateProjectRequest{Code: "PRJ-1", Name: "Project One"})
	require.NoError(t, err)

	// Readonly first, then a second grant widening to write.
	_, err = f.projects.Share(ownerCtx, project.ID, &domain.ShareProjectRequest{
		Recipients: []domain.ShareRecipient{{PlatformID: recipient.ID, ReadOnly: true}},
	})
	require.NoError(t, err)
	_, err = f.projects.Share(ownerCtx, project.ID, &domain.ShareProjectRequest{
		Recipients: []domain.ShareRecipient{{PlatformID: recipient.ID, ReadOnly: false}},
	})
	require.NoError(t, err)

	grants, err := f.projects.Grants(ownerCtx, project.ID)
	require.NoError(t, err)
	assert.Len(t, grants, 2)

	name := "renamed"
	_, err = f.projects.Patch(recipientCtx, project.ID, &domain.PatchProjectRequest{Name: &name})
	assert.NoError(t, err, "the widest grant wins")
}

func TestProjectService_AdminCannotWrite(t *testing.T) {
	f := setup(t)
	_, ownerCtx := f.setupPlatform(t, "Owner Corp")
	recipient, _ := f.setupPlatform(t, "Recipient Corp")

	project, err := f.projects.Create(ownerCtx, &domain.CreateProjectRequest{Code: "PRJ-1", Name: "Project One"})
	require.NoError(t, err)

	name := "renamed"
	_, err = f.projects.Patch(adminCtx(), project.ID, &domain.PatchProjectRequest{Name: &name})
	var denied *domain.AccessDeniedError
	assert.ErrorAs(t, err, &denied)

	_, err = f.projects.Share(adminCtx(), project.ID, &domain.ShareProjectRequest{
		Recipients: []domain.ShareRecipient{{PlatformID: recipient.ID}},
	})
	assert.ErrorAs(t, err, &denied)
}

func TestProjectService_Patch_DateOrder(t *testing.T) {
	f := setup(t)
	_, ownerCtx := f.setupPlatform(t, "Owner Corp")

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(30 * 24 * time.Hour)
	project, err := f.projects.Create(ownerCtx, &domain.CreateProjectRequest{
		Code: "PRJ-1", Name: "Project One", StartDate: &start, EndDate: &end,
	})
	require.NoError(t, err)

	badEnd := start.Add(-time.Hour)
	_, err = f.projects.Patch(ownerCtx, project.ID, &domain.PatchProjectRequest{EndDate: &badEnd})
	var invalid *domain.ValidationError
	assert.ErrorAs(t, err, &invalid)
}

func TestProjectService_List_Visibility(t *testing.T) {
	f := setup(t)
	_, ownerCtx := f.setupPlatform(t, "Owner Corp")
	recipient, recipientCtx := f.setupPlatform(t, "Recipient Corp")

	shared, err := f.projects.Create(ownerCtx, &domain.CreateProjectRequest{Code: "PRJ-1", Name: "Shared"})
	require.NoError(t, err)
	_, err = f.projects.Create(ownerCtx, &domain.CreateProjectRequest{Code: "PRJ-2", Name: "Private"})
	require.NoError(t, err)
	_, err = f.projects.Share(ownerCtx, shared.ID, &domain.ShareProjectRequest{
		Recipients: []domain.ShareRecipient{{PlatformID: recipient.ID, ReadOnly: true}},
	})
	require.NoError(t, err)

	visible, total, err := f.projects.List(recipientCtx, domain.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, visible, 1)
	assert.Equal(t, shared.ID, visible[0].ID)

	all, total, err := f.projects.List(adminCtx(), domain.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)

	mine, total, err := f.projects.List(ownerCtx, domain.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, mine, 2)
}

func TestProjectService_Delete_OwnerOnly(t *testing.T) {
	f := setup(t)
	_, ownerCtx := f.setupPlatform(t, "Owner Corp")
	recipient, recipientCtx := f.setupPlatform(t, "Recipient Corp")

	project, err := f.projects.Create(ownerCtx, &domain.CreateProjectRequest{Code: "PRJ-1", Name: "Project One"})
	require.NoError(t, err)

	// Even a write grant does not include deletion.
	_, err = f.projects.Share(ownerCtx, project.ID, &domain.ShareProjectRequest{
		Recipients: []domain.ShareRecipient{{PlatformID: recipient.ID, ReadOnly: false}},
	})
	require.NoError(t, err)

	err = f.projects.Delete(recipientCtx, project.ID)
	var denied *domain.AccessDeniedError
	assert.ErrorAs(t, err, &denied)

	require.NoError(t, f.projects.Delete(ownerCtx, project.ID))

	_, err = f.projects.Get(ownerCtx, project.ID)
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}
