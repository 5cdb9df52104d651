package api

import (
	"time"

	"platform-registry/internal/domain"
	"platform-registry/internal/service/registry"
)

// --- request bodies ---

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type createPlatformRequest struct {
	Name string `json:"name"`
}

type createAccessKeyRequest struct {
	PlatformID string `json:"platform_id"`
}

type patchAccessKeyRequest struct {
	StartAt *time.Time `json:"start_at,omitempty"`
	EndAt   *time.Time `json:"end_at,omitempty"`
}

type createProjectRequest struct {
	Code            string     `json:"code"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	InvolvedUserIDs []string   `json:"involved_user_ids,omitempty"`
}

type patchProjectRequest struct {
	Name            *string    `json:"name,omitempty"`
	Description     *string    `json:"description,omitempty"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	InvolvedUserIDs []string   `json:"involved_user_ids,omitempty"`
}

type shareRecipient struct {
	PlatformID string `json:"platform_id"`
	ReadOnly   bool   `json:"read_only"`
}

type shareProjectRequest struct {
	Recipients []shareRecipient `json:"recipients"`
}

type createUserRequest struct {
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	FirstName      string     `json:"first_name,omitempty"`
	LastName       string     `json:"last_name,omitempty"`
	Password       string     `json:"password,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
	RoleID         *string    `json:"role_id,omitempty"`
	PlatformID     *string    `json:"platform_id,omitempty"`
}

type patchUserRequest struct {
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

type createRoleRequest struct {
	Name             string `json:"name"`
	IsRegistryAdmin  bool   `json:"is_registry_admin"`
	IsPlatform       bool   `json:"is_platform"`
	ManageUsers      bool   `json:"manage_users"`
	ManageRoles      bool   `json:"manage_roles"`
	ManagePlatforms  bool   `json:"manage_platforms"`
	ManageAccessKeys bool   `json:"manage_access_keys"`
	ManageProjects   bool   `json:"manage_projects"`
}

type patchRoleRequest struct {
	ManageUsers      *bool `json:"manage_users,omitempty"`
	ManageRoles      *bool `json:"manage_roles,omitempty"`
	ManagePlatforms  *bool `json:"manage_platforms,omitempty"`
	ManageAccessKeys *bool `json:"manage_access_keys,omitempty"`
	ManageProjects   *bool `json:"manage_projects,omitempty"`
}

// --- response bodies ---

type loginResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	Identity    identityPayload `json:"identity"`
}

type identityPayload struct {
	Username  string     `json:"username"`
	RoleName  string     `json:"role_name"`
	IsAdmin   bool       `json:"is_admin"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

type platformPayload struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

type platformSetupPayload struct {
	Platform   platformPayload  `json:"platform"`
	Account    userPayload      `json:"account"`
	InitialKey accessKeyPayload `json:"initial_key"`
}

type accessKeyPayload struct {
	ID         string     `json:"id"`
	Label      string     `json:"label"`
	Secret     string     `json:"secret,omitempty"`
	StartAt    time.Time  `json:"start_at"`
	EndAt      time.Time  `json:"end_at"`
	PlatformID string     `json:"platform_id"`
	Archived   bool       `json:"archived"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type projectPayload struct {
	ID              string     `json:"id"`
	Code            string     `json:"code"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	OwnerPlatformID string     `json:"owner_platform_id"`
	InvolvedUserIDs []string   `json:"involved_user_ids"`
	CreatedAt       time.Time  `json:"created_at"`
	ModifiedAt      time.Time  `json:"modified_at"`
}

type shareGrantPayload struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"project_id"`
	PlatformID string    `json:"platform_id"`
	ReadOnly   bool      `json:"read_only"`
	CreatedAt  time.Time `json:"created_at"`
}

type userPayload struct {
	ID             string     `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	FirstName      string     `json:"first_name,omitempty"`
	LastName       string     `json:"last_name,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
	RoleID         *string    `json:"role_id,omitempty"`
	PlatformID     *string    `json:"platform_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type rolePayload struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	IsRegistryAdmin  bool      `json:"is_registry_admin"`
	IsPlatform       bool      `json:"is_platform"`
	ManageUsers      bool      `json:"manage_users"`
	ManageRoles      bool      `json:"manage_roles"`
	ManagePlatforms  bool      `json:"manage_platforms"`
	ManageAccessKeys bool      `json:"manage_access_keys"`
	ManageProjects   bool      `json:"manage_projects"`
	CreatedAt        time.Time `json:"created_at"`
	ModifiedAt       time.Time `json:"modified_at"`
}

type auditEntryPayload struct {
	ID            string    `json:"id"`
	PrincipalName string    `json:"principal_name"`
	Action        string    `json:"action"`
	ResourceType  *string   `json:"resource_type,omitempty"`
	ResourceID    *string   `json:"resource_id,omitempty"`
	Status        string    `json:"status"`
	ErrorMessage  *string   `json:"error_message,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type listResponse[T any] struct {
	Items         []T    `json:"items"`
	TotalCount    int64  `json:"total_count"`
	NextPageToken string `json:"next_page_token,omitempty"`
}

// --- mapping helpers ---

func platformToAPI(p domain.Platform) platformPayload {
	return platformPayload{ID: p.ID, Name: p.Name, CreatedAt: p.CreatedAt, ModifiedAt: p.ModifiedAt}
}

// accessKeyToAPI maps a key without exposing its secret. The secret is only
// ever serialized once, at issuance, via issuedKeyToAPI.
func accessKeyToAPI(k domain.AccessKey) accessKeyPayload {
	return accessKeyPayload{
		ID:         k.ID,
		Label:      k.Label,
		StartAt:    k.StartAt,
		EndAt:      k.EndAt,
		PlatformID: k.PlatformID,
		Archived:   k.Archived(),
		DeletedAt:  k.DeletedAt,
		CreatedAt:  k.CreatedAt,
	}
}

func issuedKeyToAPI(k domain.AccessKey) accessKeyPayload {
	p := accessKeyToAPI(k)
	p.Secret = k.Secret
	return p
}

func projectToAPI(p domain.Project) projectPayload {
	users := p.InvolvedUserIDs
	if users == nil {
		users = []string{}
	}
	return projectPayload{
		ID:              p.ID,
		Code:            p.Code,
		Name:            p.Name,
		Description:     p.Description,
		StartDate:       p.StartDate,
		EndDate:         p.EndDate,
		OwnerPlatformID: p.OwnerPlatformID,
		InvolvedUserIDs: users,
		CreatedAt:       p.CreatedAt,
		ModifiedAt:      p.ModifiedAt,
	}
}

func grantToAPI(g domain.ShareGrant) shareGrantPayload {
	return shareGrantPayload{
		ID:         g.ID,
		ProjectID:  g.ProjectID,
		PlatformID: g.PlatformID,
		ReadOnly:   g.ReadOnly,
		CreatedAt:  g.CreatedAt,
	}
}

func userToAPI(p domain.Principal) userPayload {
	out := userPayload{
		ID:         p.ID,
		Username:   p.Username,
		Email:      p.Email,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		LastLogin:  p.LastLogin,
		RoleID:     p.RoleID,
		PlatformID: p.PlatformID,
		CreatedAt:  p.CreatedAt,
	}
	if !p.ExpirationDate.IsZero() {
		exp := p.ExpirationDate
		out.ExpirationDate = &exp
	}
	return out
}

func roleToAPI(r domain.Role) rolePayload {
	return rolePayload{
		ID:               r.ID,
		Name:             r.Name,
		IsRegistryAdmin:  r.IsRegistryAdmin,
		IsPlatform:       r.IsPlatform,
		ManageUsers:      r.ManageUsers,
		ManageRoles:      r.ManageRoles,
		ManagePlatforms:  r.ManagePlatforms,
		ManageAccessKeys: r.ManageAccessKeys,
		ManageProjects:   r.ManageProjects,
		CreatedAt:        r.CreatedAt,
		ModifiedAt:       r.ModifiedAt,
	}
}

func auditToAPI(e domain.AuditEntry) auditEntryPayload {
	return auditEntryPayload{
		ID:            e.ID,
		PrincipalName: e.PrincipalName,
		Action:        e.Action,
		ResourceType:  e.ResourceType,
		ResourceID:    e.ResourceID,
		Status:        e.Status,
		ErrorMessage:  e.ErrorMessage,
		CreatedAt:     e.CreatedAt,
	}
}

func setupToAPI(s *registry.PlatformSetup) platformSetupPayload {
	return platformSetupPayload{
		Platform:   platformToAPI(*s.Platform),
		Account:    userToAPI(*s.Account),
		InitialKey: issuedKeyToAPI(*s.InitialKey),
	}
}
