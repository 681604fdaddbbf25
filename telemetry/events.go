package telemetry

import (
	"context"
	"time"

	"github.com/jrsteele09/kogase-admin/apiclient"
)

// EventFilter narrows a project event listing. Zero fields are not sent.
type EventFilter struct {
	EventDefinitionID string
	PlaySessionID     string
	UserID            string
	DeviceID          string
	StartDate         time.Time
	EndDate           time.Time
	Page              int
	PageSize          int
}

func (f EventFilter) Filters() apiclient.Filters {
	return apiclient.Filters{
		"eventDefinitionId": f.EventDefinitionID,
		"playSessionId":     f.PlaySessionID,
		"userId":            f.UserID,
		"deviceId":          f.DeviceID,
		"startDate":         f.StartDate,
		"endDate":           f.EndDate,
		"page":              f.Page,
		"pageSize":          f.PageSize,
	}
}

func (s *Service) TrackEvent(ctx context.Context, projectID, sessionID string, req TrackEventRequest) (*Event, error) {
	p, err := path("Service.TrackEvent", "telemetry/projects", projectID, "sessions", sessionID, "events")
	if err != nil {
		return nil, err
	}
	if req.Parameters == nil {
		req.Parameters = map[string]any{}
	}
	event, err := apiclient.Post[Event](ctx, s.client, p, req)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *Service) SessionEvents(ctx context.Context, projectID, sessionID string) ([]Event, error) {
	p, err := path("Service.SessionEvents", "telemetry/projects", projectID, "sessions", sessionID, "events")
	if err != nil {
		return nil, err
	}
	return apiclient.Get[[]Event](ctx, s.client, p)
}

func (s *Service) ProjectEvents(ctx context.Context, projectID string, filter EventFilter) ([]Event, error) {
	p, err := path("Service.ProjectEvents", "telemetry/projects", projectID, "events")
	if err != nil {
		return nil, err
	}
	return apiclient.Get[[]Event](ctx, s.client, apiclient.WithQuery(p, filter.Filters()))
}

// Event fetches a single event by ID. Event IDs are global, so no project
// is needed.
func (s *Service) Event(ctx context.Context, eventID string) (*Event, error) {
	p, err := path("Service.Event", "telemetry/events", eventID)
	if err != nil {
		return nil, err
	}
	event, err := apiclient.Get[Event](ctx, s.client, p)
	if err != nil {
		return nil, err
	}
	return &event, nil
}
