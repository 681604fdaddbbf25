package iam

import (
	"context"

	"github.com/jrsteele09/kogase-admin/apiclient"
	"github.com/jrsteele09/kogase-admin/projects"
)

func (s *Service) Projects(ctx context.Context) ([]projects.Project, error) {
	return apiclient.Get[[]projects.Project](ctx, s.client, "iam/projects")
}

func (s *Service) Project(ctx context.Context, projectID string) (*projects.Project, error) {
	p, err := path("Service.Project", "iam/projects", projectID)
	if err != nil {
		return nil, err
	}
	project, err := apiclient.Get[projects.Project](ctx, s.client, p)
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *Service) CreateProject(ctx context.Context, req projects.CreateRequest) (*projects.Project, error) {
	project, err := apiclient.Post[projects.Project](ctx, s.client, "iam/projects", req)
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *Service) UpdateProject(ctx context.Context, projectID string, req projects.UpdateRequest) (*projects.Project, error) {
	p, err := path("Service.UpdateProject", "iam/projects", projectID)
	if err != nil {
		return nil, err
	}
	project, err := apiclient.Put[projects.Project](ctx, s.client, p, req)
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *Service) DeleteProject(ctx context.Context, projectID string) error {
	p, err := path("Service.DeleteProject", "iam/projects", projectID)
	if err != nil {
		return err
	}
	return apiclient.Delete(ctx, s.client, p)
}
