package telemetry

import (
	"context"
	"strings"
	"time"

	"github.com/jrsteele09/kogase-admin/apiclient"
	interrors "github.com/jrsteele09/kogase-admin/internal/errors"
	"github.com/pkg/errors"
)

// SessionFilter narrows a play session listing. Zero fields are not sent.
type SessionFilter struct {
	ProjectID  string
	UserID     string
	DeviceID   string
	Platform   string
	ActiveOnly bool
	StartDate  time.Time
	EndDate    time.Time
	Page       int
	PageSize   int
}

func (f SessionFilter) Filters() apiclient.Filters {
	return apiclient.Filters{
		"projectId": f.ProjectID,
		"userId":    f.UserID,
		"deviceId":  f.DeviceID,
		"platform":  f.Platform,
		"isActive":  f.ActiveOnly,
		"startDate": f.StartDate,
		"endDate":   f.EndDate,
		"page":      f.Page,
		"pageSize":  f.PageSize,
	}
}

func (s *Service) PlaySessions(ctx context.Context, projectID string, filter SessionFilter) ([]PlaySession, error) {
	p, err := path("Service.PlaySessions", "telemetry/projects", projectID, "sessions")
	if err != nil {
		return nil, err
	}
	filter.ProjectID = ""
	return apiclient.Get[[]PlaySession](ctx, s.client, apiclient.WithQuery(p, filter.Filters()))
}

// AllPlaySessions lists sessions across every project the operator can see.
func (s *Service) AllPlaySessions(ctx context.Context, filter SessionFilter) ([]PlaySession, error) {
	return apiclient.Get[[]PlaySession](ctx, s.client, apiclient.WithQuery("telemetry/sessions", filter.Filters()))
}

func (s *Service) PlaySession(ctx context.Context, projectID, sessionID string) (*PlaySession, error) {
	p, err := path("Service.PlaySession", "telemetry/projects", projectID, "sessions", sessionID)
	if err != nil {
		return nil, err
	}
	session, err := apiclient.Get[PlaySession](ctx, s.client, p)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// StartPlaySession opens a session for deviceID. userID may be empty for an
// anonymous session.
func (s *Service) StartPlaySession(ctx context.Context, projectID, deviceID, userID string) (*PlaySession, error) {
	p, err := path("Service.StartPlaySession", "telemetry/projects", projectID, "sessions")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(deviceID) == "" {
		return nil, errors.Wrap(interrors.ErrMissingID, "Service.StartPlaySession deviceId")
	}
	req := StartSessionRequest{
		DeviceID:   deviceID,
		UserID:     userID,
		StartedAt:  NewTime(s.nowFunc().UTC()),
		Platform:   s.platform,
		AppVersion: s.appVersion,
	}
	session, err := apiclient.Post[PlaySession](ctx, s.client, p, req)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Service) EndPlaySession(ctx context.Context, projectID, sessionID string) (*PlaySession, error) {
	p, err := path("Service.EndPlaySession", "telemetry/projects", projectID, "sessions", sessionID, "end")
	if err != nil {
		return nil, err
	}
	session, err := apiclient.Put[PlaySession](ctx, s.client, p, endSessionRequest{EndedAt: NewTime(s.nowFunc().UTC())})
	if err != nil {
		return nil, err
	}
	return &session, nil
}
