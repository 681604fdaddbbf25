// Package telemetry maps event definition, event, play session and metric
// operations onto the backend's telemetry/* endpoints.
package telemetry

import (
	"runtime"
	"time"

	"github.com/jrsteele09/kogase-admin/apiclient"
	"github.com/pkg/errors"
)

const DefaultAppVersion = "1.0.0"

type Service struct {
	client     *apiclient.Client
	nowFunc    func() time.Time
	platform   string
	appVersion string
}

type Option func(*Service)

// WithNowTime sets the clock used to stamp session starts and ends
func WithNowTime(now func() time.Time) Option {
	return func(s *Service) {
		s.nowFunc = now
	}
}

// WithClientInfo sets the platform and app version reported when starting
// a session
func WithClientInfo(platform, appVersion string) Option {
	return func(s *Service) {
		s.platform = platform
		s.appVersion = appVersion
	}
}

func NewService(client *apiclient.Client, options ...Option) (*Service, error) {
	if client == nil {
		return nil, errors.New("[telemetry.NewService] client is required")
	}
	s := &Service{
		client:     client,
		nowFunc:    time.Now,
		platform:   runtime.GOOS,
		appVersion: DefaultAppVersion,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

func path(op, base string, segments ...string) (string, error) {
	p, err := apiclient.ResourcePath(base, segments...)
	if err != nil {
		return "", errors.Wrap(err, op)
	}
	return p, nil
}
