package telemetry

import (
	"context"

	"github.com/jrsteele09/kogase-admin/apiclient"
)

func (s *Service) EventDefinitions(ctx context.Context, projectID string) ([]EventDefinition, error) {
	p, err := path("Service.EventDefinitions", "telemetry/projects", projectID, "event-definitions")
	if err != nil {
		return nil, err
	}
	return apiclient.Get[[]EventDefinition](ctx, s.client, p)
}

func (s *Service) EventDefinition(ctx context.Context, projectID, definitionID string) (*EventDefinition, error) {
	p, err := path("Service.EventDefinition", "telemetry/projects", projectID, "event-definitions", definitionID)
	if err != nil {
		return nil, err
	}
	def, err := apiclient.Get[EventDefinition](ctx, s.client, p)
	if err != nil {
		return nil, err
	}
	return &def, nil
}

func (s *Service) CreateEventDefinition(ctx context.Context, projectID string, req EventDefinitionRequest) (*EventDefinition, error) {
	p, err := path("Service.CreateEventDefinition", "telemetry/projects", projectID, "event-definitions")
	if err != nil {
		return nil, err
	}
	def, err := apiclient.Post[EventDefinition](ctx, s.client, p, req)
	if err != nil {
		return nil, err
	}
	return &def, nil
}

func (s *Service) UpdateEventDefinition(ctx context.Context, projectID, definitionID string, req EventDefinitionRequest) (*EventDefinition, error) {
	p, err := path("Service.UpdateEventDefinition", "telemetry/projects", projectID, "event-definitions", definitionID)
	if err != nil {
		return nil, err
	}
	def, err := apiclient.Put[EventDefinition](ctx, s.client, p, req)
	if err != nil {
		return nil, err
	}
	return &def, nil
}

func (s *Service) DeleteEventDefinition(ctx context.Context, projectID, definitionID string) error {
	p, err := path("Service.DeleteEventDefinition", "telemetry/projects", projectID, "event-definitions", definitionID)
	if err != nil {
		return err
	}
	return apiclient.Delete(ctx, s.client, p)
}
