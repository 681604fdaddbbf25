package iam

import (
	"context"
	"strings"

	"github.com/jrsteele09/kogase-admin/apiclient"
	interrors "github.com/jrsteele09/kogase-admin/internal/errors"
	"github.com/jrsteele09/kogase-admin/roles"
	"github.com/pkg/errors"
)

func (s *Service) Roles(ctx context.Context) ([]roles.Role, error) {
	return apiclient.Get[[]roles.Role](ctx, s.client, "iam/roles")
}

func (s *Service) Role(ctx context.Context, roleID string) (*roles.Role, error) {
	p, err := path("Service.Role", "iam/roles", roleID)
	if err != nil {
		return nil, err
	}
	role, err := apiclient.Get[roles.Role](ctx, s.client, p)
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (s *Service) CreateRole(ctx context.Context, req roles.Request) (*roles.Role, error) {
	role, err := apiclient.Post[roles.Role](ctx, s.client, "iam/roles", req)
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (s *Service) UpdateRole(ctx context.Context, roleID string, req roles.Request) (*roles.Role, error) {
	p, err := path("Service.UpdateRole", "iam/roles", roleID)
	if err != nil {
		return nil, err
	}
	role, err := apiclient.Put[roles.Role](ctx, s.client, p, req)
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (s *Service) DeleteRole(ctx context.Context, roleID string) error {
	p, err := path("Service.DeleteRole", "iam/roles", roleID)
	if err != nil {
		return err
	}
	return apiclient.Delete(ctx, s.client, p)
}

func (s *Service) ProjectRoles(ctx context.Context, projectID string) ([]roles.Role, error) {
	p, err := path("Service.ProjectRoles", "iam/projects", projectID, "roles")
	if err != nil {
		return nil, err
	}
	return apiclient.Get[[]roles.Role](ctx, s.client, p)
}

// UserRoles lists a user's role assignments across all projects.
func (s *Service) UserRoles(ctx context.Context, userID string) ([]roles.UserRole, error) {
	p, err := path("Service.UserRoles", "iam/users", userID, "roles")
	if err != nil {
		return nil, err
	}
	return apiclient.Get[[]roles.UserRole](ctx, s.client, p)
}

func (s *Service) UserProjectRoles(ctx context.Context, projectID, userID string) ([]roles.UserRole, error) {
	p, err := path("Service.UserProjectRoles", "iam/projects", projectID, "users", userID, "roles")
	if err != nil {
		return nil, err
	}
	return apiclient.Get[[]roles.UserRole](ctx, s.client, p)
}

type assignRoleRequest struct {
	RoleID string `json:"roleId"`
}

func (s *Service) AssignRole(ctx context.Context, projectID, userID, roleID string) (*roles.UserRole, error) {
	p, err := path("Service.AssignRole", "iam/projects", projectID, "users", userID, "roles")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(roleID) == "" {
		return nil, errors.Wrap(interrors.ErrMissingID, "Service.AssignRole roleId")
	}
	assignment, err := apiclient.Post[roles.UserRole](ctx, s.client, p, assignRoleRequest{RoleID: roleID})
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// RemoveRole deletes a role assignment by its own ID, as returned by
// AssignRole and the role listings.
func (s *Service) RemoveRole(ctx context.Context, userRoleID string) error {
	p, err := path("Service.RemoveRole", "iam/user-roles", userRoleID)
	if err != nil {
		return err
	}
	return apiclient.Delete(ctx, s.client, p)
}
