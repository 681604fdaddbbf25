package iam

import (
	"context"
	"net/http"

	"github.com/jrsteele09/kogase-admin/apiclient"
	"github.com/jrsteele09/kogase-admin/users"
)

// Users lists one page of users. Non-positive page or pageSize fall back to
// 1 and 10.
func (s *Service) Users(ctx context.Context, page, pageSize int) ([]users.User, error) {
	if page <= 0 {
		page = DefaultPage
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return apiclient.Get[[]users.User](ctx, s.client,
		apiclient.WithQuery("iam/users", apiclient.Filters{"page": page, "pageSize": pageSize}))
}

func (s *Service) User(ctx context.Context, userID string, opts ...apiclient.RequestOption) (*users.User, error) {
	p, err := path("Service.User", "iam/users", userID)
	if err != nil {
		return nil, err
	}
	user, err := apiclient.Get[users.User](ctx, s.client, p, opts...)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) CreateUser(ctx context.Context, req users.CreateUserRequest) (*users.User, error) {
	user, err := apiclient.Post[users.User](ctx, s.client, "iam/users", req)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// RegisterUser is the unauthenticated self-registration variant of
// CreateUser.
func (s *Service) RegisterUser(ctx context.Context, req users.RegisterRequest) (*users.User, error) {
	user, err := apiclient.Post[users.User](ctx, s.client, "iam/users", req, apiclient.WithoutAuth())
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) UpdateUser(ctx context.Context, userID string, req users.UpdateUserRequest) (*users.User, error) {
	p, err := path("Service.UpdateUser", "iam/users", userID)
	if err != nil {
		return nil, err
	}
	user, err := apiclient.Put[users.User](ctx, s.client, p, req)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) ActivateUser(ctx context.Context, userID string) error {
	return s.setUserStatus(ctx, userID, "activate")
}

func (s *Service) DeactivateUser(ctx context.Context, userID string) error {
	return s.setUserStatus(ctx, userID, "deactivate")
}

func (s *Service) SuspendUser(ctx context.Context, userID string) error {
	return s.setUserStatus(ctx, userID, "suspend")
}

func (s *Service) setUserStatus(ctx context.Context, userID, action string) error {
	p, err := path("Service.setUserStatus", "iam/users", userID, action)
	if err != nil {
		return err
	}
	return s.client.Do(ctx, http.MethodPut, p, struct{}{}, nil)
}

func (s *Service) ProjectUsers(ctx context.Context, projectID string) ([]users.User, error) {
	p, err := path("Service.ProjectUsers", "iam/projects", projectID, "users")
	if err != nil {
		return nil, err
	}
	return apiclient.Get[[]users.User](ctx, s.client, p)
}
