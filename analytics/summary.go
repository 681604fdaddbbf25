package analytics

import (
	"math"
	"sort"

	"github.com/jrsteele09/kogase-admin/projects"
	"github.com/jrsteele09/kogase-admin/telemetry"
)

// Activity thresholds in days before the window end.
const (
	dailyActiveDays   = 0
	weeklyActiveDays  = 7
	monthlyActiveDays = 30
)

// ProjectData is the raw material fetched for one project.
type ProjectData struct {
	Project  projects.Project
	Sessions []telemetry.PlaySession
	Events   []telemetry.Event
}

type ProjectComparison struct {
	ProjectID    string `json:"projectId"`
	ProjectName  string `json:"projectName"`
	UserCount    int    `json:"userCount"`
	SessionCount int    `json:"sessionCount"`
	EventCount   int    `json:"eventCount"`
}

// Summary is the derived metric snapshot of a window. It is recomputed on
// every load and never persisted.
type Summary struct {
	DAU        int `json:"dau"`
	WAU        int `json:"wau"`
	MAU        int `json:"mau"`
	TotalUsers int `json:"totalUsers"`
	NewUsers   int `json:"newUsers"`
	// Retention is daily active over total users, as a percentage to one
	// decimal place.
	Retention       float64 `json:"retention"`
	SessionsPerUser float64 `json:"sessionsPerUser"`
	// AvgSessionDuration is in seconds, over ended sessions only.
	AvgSessionDuration float64             `json:"avgSessionDuration"`
	ProjectComparison  []ProjectComparison `json:"projectComparison"`
}

type userSet map[string]struct{}

func (s userSet) add(id string) {
	s[id] = struct{}{}
}

// Summarize computes the activity metrics of data relative to w.
//
// A user counts at most once per class. Sessions without a user count only
// toward session totals. Sessions with an unknown start count toward total
// users but toward no time-based class. Sessions still in progress are left
// out of the average duration.
func Summarize(data []ProjectData, w Window) Summary {
	total, daily, weekly, monthly, fresh := userSet{}, userSet{}, userSet{}, userSet{}, userSet{}
	comparison := make([]ProjectComparison, 0, len(data))

	var (
		sessionCount  int
		totalDuration float64
		completed     int
	)

	for _, pd := range data {
		projectUsers := userSet{}
		for i := range pd.Sessions {
			s := &pd.Sessions[i]
			sessionCount++

			if d, ok := s.Length(); ok && d > 0 {
				totalDuration += d.Seconds()
				completed++
			}

			if !s.HasUser() {
				continue
			}
			projectUsers.add(s.UserID)
			total.add(s.UserID)

			if s.StartedAt.IsZero() {
				continue
			}
			days := w.DaysBefore(s.StartedAt.Time)
			if days == dailyActiveDays {
				daily.add(s.UserID)
			}
			if days <= weeklyActiveDays {
				weekly.add(s.UserID)
			}
			if days <= monthlyActiveDays {
				monthly.add(s.UserID)
			}
			if !s.StartedAt.Before(w.Start) {
				fresh.add(s.UserID)
			}
		}

		comparison = append(comparison, ProjectComparison{
			ProjectID:    pd.Project.ID,
			ProjectName:  pd.Project.Name,
			UserCount:    len(projectUsers),
			SessionCount: len(pd.Sessions),
			EventCount:   len(pd.Events),
		})
	}
	sort.SliceStable(comparison, func(i, j int) bool {
		return comparison[i].UserCount > comparison[j].UserCount
	})

	summary := Summary{
		DAU:               len(daily),
		WAU:               len(weekly),
		MAU:               len(monthly),
		TotalUsers:        len(total),
		NewUsers:          len(fresh),
		ProjectComparison: comparison,
	}
	if summary.TotalUsers > 0 {
		summary.Retention = round(float64(summary.DAU)/float64(summary.TotalUsers)*100, 1)
		summary.SessionsPerUser = round(float64(sessionCount)/float64(summary.TotalUsers), 2)
	}
	if completed > 0 {
		summary.AvgSessionDuration = totalDuration / float64(completed)
	}
	return summary
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
