package telemetry

import (
	"time"

	"github.com/jrsteele09/kogase-admin/internal/utils"
)

// EventDefinition declares an event type a game may send and the parameters
// it carries.
type EventDefinition struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	ProjectID   string   `json:"projectId"`
	Parameters  []string `json:"parameters"`
	IsActive    bool     `json:"isActive"`
	CreatedAt   Time     `json:"createdAt"`
	UpdatedAt   Time     `json:"updatedAt"`
}

type EventDefinitionRequest struct {
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Parameters  []string `json:"parameters,omitempty"`
	IsActive    *bool    `json:"isActive,omitempty"`
}

// Event is a single tracked occurrence of an EventDefinition.
type Event struct {
	ID                string         `json:"id"`
	EventDefinitionID string         `json:"eventDefinitionId"`
	PlaySessionID     string         `json:"playSessionId"`
	ProjectID         string         `json:"projectId"`
	DeviceID          string         `json:"deviceId"`
	UserID            string         `json:"userId,omitempty"`
	Timestamp         Time           `json:"timestamp"`
	Parameters        map[string]any `json:"parameters"`
	CreatedAt         Time           `json:"createdAt"`
	UpdatedAt         Time           `json:"updatedAt"`
}

type TrackEventRequest struct {
	EventDefinitionID string         `json:"eventDefinitionId"`
	Parameters        map[string]any `json:"parameters"`
}

// PlaySession is one run of a game on a device. A session without a user is
// anonymous; one without an end time is still in progress.
type PlaySession struct {
	ID            string `json:"id"`
	DeviceID      string `json:"deviceId"`
	UserID        string `json:"userId,omitempty"`
	ProjectID     string `json:"projectId"`
	StartedAt     Time   `json:"startedAt"`
	EndedAt       Time   `json:"endedAt"`
	Duration      Number `json:"duration"`
	SessionNumber Number `json:"sessionNumber"`
	Platform      string `json:"platform"`
	AppVersion    string `json:"appVersion"`
	IsActive      bool   `json:"isActive"`
	CreatedAt     Time   `json:"createdAt"`
	UpdatedAt     Time   `json:"updatedAt"`
}

func (s *PlaySession) HasUser() bool {
	return s.UserID != ""
}

func (s *PlaySession) HasEnded() bool {
	return !s.EndedAt.IsZero()
}

// Length is the time between start and end. ok is false while the session
// is in progress, when either timestamp is unknown or when the end precedes
// the start.
func (s *PlaySession) Length() (d time.Duration, ok bool) {
	if s.StartedAt.IsZero() || !s.HasEnded() {
		return 0, false
	}
	d = s.EndedAt.Sub(s.StartedAt.Time)
	if d < 0 {
		return 0, false
	}
	return d, true
}

type StartSessionRequest struct {
	DeviceID   string `json:"deviceId"`
	UserID     string `json:"userId,omitempty"`
	StartedAt  Time   `json:"startedAt"`
	Platform   string `json:"platform"`
	AppVersion string `json:"appVersion"`
}

type endSessionRequest struct {
	EndedAt Time `json:"endedAt"`
}

// MetricAggregate is a backend pre-aggregated metric bucket.
type MetricAggregate struct {
	ID             string  `json:"id"`
	ProjectID      string  `json:"projectId"`
	MetricName     string  `json:"metricName"`
	Dimension      string  `json:"dimension,omitempty"`
	DimensionValue string  `json:"dimensionValue,omitempty"`
	Period         string  `json:"period"`
	StartDate      Time    `json:"startDate"`
	EndDate        Time    `json:"endDate"`
	Count          Number  `json:"count"`
	Sum            *Number `json:"sum,omitempty"`
	Min            *Number `json:"min,omitempty"`
	Max            *Number `json:"max,omitempty"`
	Avg            *Number `json:"avg,omitempty"`
	CreatedAt      Time    `json:"createdAt"`
	UpdatedAt      Time    `json:"updatedAt"`
}

// Values returns the optional statistics with absent ones as 0.
func (m *MetricAggregate) Values() (sum, minimum, maximum, avg float64) {
	return utils.Value(m.Sum).Float(),
		utils.Value(m.Min).Float(),
		utils.Value(m.Max).Float(),
		utils.Value(m.Avg).Float()
}
