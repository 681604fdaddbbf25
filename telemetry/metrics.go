package telemetry

import (
	"context"
	"strings"
	"time"

	"github.com/jrsteele09/kogase-admin/apiclient"
	interrors "github.com/jrsteele09/kogase-admin/internal/errors"
	"github.com/pkg/errors"
)

// MetricsQuery selects pre-aggregated metric buckets. MetricName, Period,
// StartDate and EndDate are required.
type MetricsQuery struct {
	MetricName     string
	Period         string
	StartDate      time.Time
	EndDate        time.Time
	Dimension      string
	DimensionValue string
}

func (q MetricsQuery) Validate() error {
	if strings.TrimSpace(q.MetricName) == "" || strings.TrimSpace(q.Period) == "" ||
		q.StartDate.IsZero() || q.EndDate.IsZero() {
		return interrors.ErrMissingMetric
	}
	return nil
}

func (q MetricsQuery) Filters() apiclient.Filters {
	return apiclient.Filters{
		"metricName":     q.MetricName,
		"period":         q.Period,
		"startDate":      q.StartDate,
		"endDate":        q.EndDate,
		"dimension":      q.Dimension,
		"dimensionValue": q.DimensionValue,
	}
}

func (s *Service) Metrics(ctx context.Context, projectID string, q MetricsQuery) ([]MetricAggregate, error) {
	p, err := path("Service.Metrics", "telemetry/projects", projectID, "metrics")
	if err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, errors.Wrap(err, "Service.Metrics")
	}
	return apiclient.Get[[]MetricAggregate](ctx, s.client, apiclient.WithQuery(p, q.Filters()))
}

func (s *Service) AvailableMetrics(ctx context.Context, projectID string) ([]string, error) {
	p, err := path("Service.AvailableMetrics", "telemetry/projects", projectID, "metrics", "available")
	if err != nil {
		return nil, err
	}
	return apiclient.Get[[]string](ctx, s.client, p)
}

func (s *Service) MetricDimensions(ctx context.Context, projectID, metricName string) ([]string, error) {
	p, err := path("Service.MetricDimensions", "telemetry/projects", projectID, "metrics", metricName, "dimensions")
	if err != nil {
		return nil, err
	}
	return apiclient.Get[[]string](ctx, s.client, p)
}
