package analytics

import (
	"context"
	"time"

	"github.com/jrsteele09/kogase-admin/projects"
	"github.com/jrsteele09/kogase-admin/telemetry"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// AllProjects is the scope aggregating every project.
const AllProjects = "all"

type ProjectLister interface {
	Projects(ctx context.Context) ([]projects.Project, error)
}

type TelemetryReader interface {
	PlaySessions(ctx context.Context, projectID string, filter telemetry.SessionFilter) ([]telemetry.PlaySession, error)
	ProjectEvents(ctx context.Context, projectID string, filter telemetry.EventFilter) ([]telemetry.Event, error)
}

// Report is everything the analytics view shows for one scope and
// timeframe.
type Report struct {
	Scope             string    `json:"scope"`
	Timeframe         Timeframe `json:"timeframe"`
	Window            Window    `json:"window"`
	Summary           Summary   `json:"summary"`
	Series            Series    `json:"series"`
	DAUMAURatio       string    `json:"dauMauRatio"`
	AvgSessionsPerDay float64   `json:"avgSessionsPerDay"`
	AvgSessionLength  string    `json:"avgSessionLength"`
}

// Loader fetches sessions and events for a scope and aggregates them.
type Loader struct {
	projects  ProjectLister
	telemetry TelemetryReader
	nowFunc   func() time.Time
	log       zerolog.Logger
}

type LoaderOption func(*Loader)

// WithNowTime sets the clock the window end is taken from (primarily for testing)
func WithNowTime(now func() time.Time) LoaderOption {
	return func(l *Loader) {
		l.nowFunc = now
	}
}

func WithLogger(log zerolog.Logger) LoaderOption {
	return func(l *Loader) {
		l.log = log
	}
}

func NewLoader(projectLister ProjectLister, reader TelemetryReader, options ...LoaderOption) (*Loader, error) {
	if projectLister == nil {
		return nil, errors.New("[NewLoader] project lister is required")
	}
	if reader == nil {
		return nil, errors.New("[NewLoader] telemetry reader is required")
	}
	l := &Loader{
		projects:  projectLister,
		telemetry: reader,
		nowFunc:   time.Now,
		log:       zerolog.Nop(),
	}
	for _, opt := range options {
		opt(l)
	}
	return l, nil
}

// Load aggregates scope, a project ID or AllProjects, over timeframe.
// Projects are fetched one after the other; the first failure aborts the
// load.
func (l *Loader) Load(ctx context.Context, scope string, tf Timeframe) (*Report, error) {
	if scope == "" {
		scope = AllProjects
	}
	window := tf.Window(l.nowFunc())

	list, err := l.projects.Projects(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "Loader.Load Projects")
	}

	targets := list
	if scope != AllProjects {
		targets = []projects.Project{{ID: scope, Name: projects.NameOf(list, scope)}}
	}

	data := make([]ProjectData, 0, len(targets))
	var sessions []telemetry.PlaySession
	for _, p := range targets {
		pd, err := l.loadProject(ctx, p, window)
		if err != nil {
			return nil, err
		}
		data = append(data, pd)
		sessions = append(sessions, pd.Sessions...)
	}

	summary := Summarize(data, window)
	series := BuildSeries(sessions, window, tf)
	l.log.Debug().
		Str("scope", scope).
		Str("timeframe", string(tf)).
		Int("projects", len(data)).
		Int("sessions", len(sessions)).
		Int("users", summary.TotalUsers).
		Msg("analytics loaded")

	return &Report{
		Scope:             scope,
		Timeframe:         tf,
		Window:            window,
		Summary:           summary,
		Series:            series,
		DAUMAURatio:       DAUMAURatio(summary),
		AvgSessionsPerDay: series.AvgSessionsPerDay(),
		AvgSessionLength:  FormatDuration(summary.AvgSessionDuration),
	}, nil
}

func (l *Loader) loadProject(ctx context.Context, p projects.Project, w Window) (ProjectData, error) {
	sessions, err := l.telemetry.PlaySessions(ctx, p.ID, telemetry.SessionFilter{StartDate: w.Start, EndDate: w.End})
	if err != nil {
		return ProjectData{}, errors.Wrapf(err, "Loader.Load PlaySessions %s", p.ID)
	}
	events, err := l.telemetry.ProjectEvents(ctx, p.ID, telemetry.EventFilter{StartDate: w.Start, EndDate: w.End})
	if err != nil {
		return ProjectData{}, errors.Wrapf(err, "Loader.Load ProjectEvents %s", p.ID)
	}
	return ProjectData{Project: p, Sessions: sessions, Events: events}, nil
}
