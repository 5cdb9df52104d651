package registry

import (
	"context"
	"errors"
	"time"

	"platform-registry/internal/domain"
	"platform-registry/internal/service/security"
)

// ProjectService manages projects and their share grants.
type ProjectService struct {
	projects   domain.ProjectRepository
	platforms  domain.PlatformRepository
	principals domain.PrincipalRepository
	audit      domain.AuditRepository
}

// NewProjectService creates the project service.
func NewProjectService(projects domain.ProjectRepository, platforms domain.PlatformRepository, principals domain.PrincipalRepository, audit domain.AuditRepository) *ProjectService {
	return &ProjectService{
		projects:   projects,
		platforms:  platforms,
		principals: principals,
		audit:      audit,
	}
}

// Create registers a new project owned by the calling platform. Ownership is
// fixed here and cannot be changed afterwards.
func (s *ProjectService) Create(ctx context.Context, req *domain.CreateProjectRequest) (*domain.Project, error) {
	caller, err := security.RequirePlatform(ctx)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkInvolvedUsers(ctx, req.InvolvedUserIDs); err != nil {
		return nil, err
	}

	project, err := s.projects.Create(ctx, &domain.Project{
		ID:              domain.NewID(),
		Code:            req.Code,
		Name:            req.Name,
		Description:     req.Description,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		OwnerPlatformID: caller.PlatformID,
		InvolvedUserIDs: req.InvolvedUserIDs,
	})
	if err != nil {
		return nil, err
	}
	_ = s.audit.Insert(ctx, &domain.AuditEntry{
		PrincipalName: callerName(ctx),
		Action:        "CREATE_PROJECT",
		ResourceType:  strPtr("project"),
		ResourceID:    strPtr(project.ID),
		Status:        "ALLOWED",
	})
	return project, nil
}

// Get returns a project the caller is allowed to read: any project for a
// registry admin, owned or shared projects for a platform.
func (s *ProjectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	caller, err := security.RequirePlatformOrAdmin(ctx)
	if err != nil {
		return nil, err
	}
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	grants, err := s.projects.GrantsForProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if !security.CanReadProject(caller, project, grants) {
		return nil, domain.ErrAccessDenied("project is not shared with your platform")
	}
	return project, nil
}

// List returns the projects visible to the caller.
func (s *ProjectService) List(ctx context.Context, page domain.PageRequest) ([]domain.Project, int64, error) {
	caller, err := security.RequirePlatformOrAdmin(ctx)
	if err != nil {
		return nil, 0, err
	}
	if caller.Kind == domain.RoleRegistryAdmin {
		return s.projects.ListAll(ctx, page)
	}
	return s.projects.ListVisible(ctx, caller.PlatformID, page)
}

// Patch updates a project. The caller needs write access: ownership or a
// non-readonly share grant. Registry admins cannot write projects.
func (s *ProjectService) Patch(ctx context.Context, id string, req *domain.PatchProjectRequest) (*domain.Project, error) {
	caller, err := security.RequirePlatform(ctx)
	if err != nil {
		return nil, err
	}
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	grants, err := s.projects.GrantsForProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if !security.CanWriteProject(caller, project, grants) {
		return nil, domain.ErrAccessDenied("write access to project denied")
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.StartDate != nil {
		project.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		project.EndDate = req.EndDate
	}
	if err := checkDateOrder(project.StartDate, project.EndDate); err != nil {
		return nil, err
	}
	if req.InvolvedUserIDs != nil {
		if err := s.checkInvolvedUsers(ctx, req.InvolvedUserIDs); err != nil {
			return nil, err
		}
		project.InvolvedUserIDs = req.InvolvedUserIDs
	}

	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}
	_ = s.audit.Insert(ctx, &domain.AuditEntry{
		PrincipalName: callerName(ctx),
		Action:        "UPDATE_PROJECT",
		ResourceType:  strPtr("project"),
		ResourceID:    strPtr(id),
		Status:        "ALLOWED",
	})
	return s.projects.GetByID(ctx, id)
}

// Share grants one or more platforms access to a project. Only the owning
// platform can share. Sharing with the owner itself is rejected; repeating an
// existing grant simply widens the recipient's effective scope.
func (s *ProjectService) Share(ctx context.Context, id string, req *domain.ShareProjectRequest) ([]domain.ShareGrant, error) {
	caller, err := security.RequirePlatform(ctx)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !security.CanShareProject(caller, project) {
		return nil, domain.ErrAccessDenied("only the owning platform can share a project")
	}

	for _, rec := range req.Recipients {
		if rec.PlatformID == project.OwnerPlatformID {
			return nil, domain.ErrValidation("cannot share a project with its owning platform")
		}
		if _, err := s.platforms.GetByID(ctx, rec.PlatformID); err != nil {
			return nil, err
		}
	}

	created := make([]domain.ShareGrant, 0, len(req.Recipients))
	for _, rec := range req.Recipients {
		grant, err := s.projects.AddShareGrant(ctx, &domain.ShareGrant{
			ID:         domain.NewID(),
			ProjectID:  project.ID,
			PlatformID: rec.PlatformID,
			ReadOnly:   rec.ReadOnly,
		})
		if err != nil {
			return nil, err
		}
		created = append(created, *grant)
	}
	_ = s.audit.Insert(ctx, &domain.AuditEntry{
		PrincipalName: callerName(ctx),
		Action:        "SHARE_PROJECT",
		ResourceType:  strPtr("project"),
		ResourceID:    strPtr(id),
		Status:        "ALLOWED",
	})
	return created, nil
}

// Grants returns the share grants on a project the caller can read.
func (s *ProjectService) Grants(ctx context.Context, id string) ([]domain.ShareGrant, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.projects.GrantsForProject(ctx, id)
}

// Delete removes a project. Owner only; a write grant does not include
// deletion.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	caller, err := security.RequirePlatform(ctx)
	if err != nil {
		return err
	}
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !security.CanShareProject(caller, project) {
		return domain.ErrAccessDenied("only the owning platform can delete a project")
	}
	if err := s.projects.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.audit.Insert(ctx, &domain.AuditEntry{
		PrincipalName: callerName(ctx),
		Action:        "DELETE_PROJECT",
		ResourceType:  strPtr("project"),
		ResourceID:    strPtr(id),
		Status:        "ALLOWED",
	})
	return nil
}

// checkInvolvedUsers verifies that every referenced principal exists and is a
// regular user.
func (s *ProjectService) checkInvolvedUsers(ctx context.Context, userIDs []string) error {
	for _, id := range userIDs {
		p, err := s.principals.GetByID(ctx, id)
		if err != nil {
			if errors.As(err, new(*domain.NotFoundError)) {
				return domain.ErrValidation("involved user %s does not exist", id)
			}
			return err
		}
		if p.RoleID != nil {
			return domain.ErrValidation("involved user %s is not a regular user", id)
		}
	}
	return nil
}

func checkDateOrder(start, end *time.Time) error {
	if start != nil && end != nil && !start.Before(*end) {
		return domain.ErrValidation("project end date must be after start date")
	}
	return nil
}
