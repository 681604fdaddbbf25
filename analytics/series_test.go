package analytics_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/kogase-admin/analytics"
	"github.com/jrsteele09/kogase-admin/telemetry"
	"github.com/stretchr/testify/require"
)

func names(points []analytics.Point) []string {
	out := make([]string, len(points))
	for i, p := range points {
		out[i] = p.Name
	}
	return out
}

func values(points []analytics.Point) []int {
	out := make([]int, len(points))
	for i, p := range points {
		out[i] = p.Value
	}
	return out
}

func TestBuildSeries_Weekly(t *testing.T) {
	w := analytics.Timeframe7d.Window(reference)
	sessions := []telemetry.PlaySession{
		session("a", 0, 0),
		session("a", 0.1, 0),
		session("b", 0.2, 0),
		session("", 0.3, 0),
		session("c", 2, 0),
		{UserID: "ghost"},
	}

	s := analytics.BuildSeries(sessions, w, analytics.Timeframe7d)

	require.Equal(t, []string{"Sat", "Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}, names(s.DailyUsers))
	require.Equal(t, []int{0, 0, 0, 0, 0, 1, 0, 2}, values(s.DailyUsers))
	require.Equal(t, []int{0, 0, 0, 0, 0, 1, 0, 4}, values(s.DailySessions))
	require.Equal(t, []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"}, names(s.MonthlyUsers))
	require.Equal(t, []int{0, 0, 0, 0, 0, 3}, values(s.MonthlyUsers))
	require.Equal(t, 0.6, s.AvgSessionsPerDay())
}

func TestBuildSeries_MonthlyLabels(t *testing.T) {
	w := analytics.Timeframe30d.Window(reference)
	s := analytics.BuildSeries([]telemetry.PlaySession{session("a", 20, 0), session("b", 25, 0)}, w, analytics.Timeframe30d)

	require.Len(t, s.DailyUsers, 31)
	require.Equal(t, "May 16", s.DailyUsers[0].Name)
	require.Equal(t, "Jun 15", s.DailyUsers[30].Name)
	require.Equal(t, []int{0, 0, 0, 0, 2, 0}, values(s.MonthlyUsers))
}

func TestBuildSeries_MonthsCrossYearEnd(t *testing.T) {
	end := time.Date(2024, 3, 31, 9, 0, 0, 0, time.UTC)
	s := analytics.BuildSeries(nil, analytics.Timeframe7d.Window(end), analytics.Timeframe7d)
	require.Equal(t, []string{"Oct", "Nov", "Dec", "Jan", "Feb", "Mar"}, names(s.MonthlyUsers))
}

func TestSeries_AvgSessionsPerDayEmpty(t *testing.T) {
	require.Zero(t, analytics.Series{}.AvgSessionsPerDay())
}
