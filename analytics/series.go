package analytics

import (
	"time"

	"github.com/jrsteele09/kogase-admin/telemetry"
)

const monthsOfHistory = 6

// Point is one labelled chart value.
type Point struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type Series struct {
	DailyUsers    []Point `json:"dailyUsers"`
	MonthlyUsers  []Point `json:"monthlyUsers"`
	DailySessions []Point `json:"dailySessions"`
}

// AvgSessionsPerDay is the mean of the daily session counts, to one decimal
// place.
func (s Series) AvgSessionsPerDay() float64 {
	if len(s.DailySessions) == 0 {
		return 0
	}
	sum := 0
	for _, p := range s.DailySessions {
		sum += p.Value
	}
	return round(float64(sum)/float64(len(s.DailySessions)), 1)
}

// BuildSeries buckets sessions, in chronological order, into each calendar
// day of w (unique users and raw session counts) and into the six calendar
// months up to and including the month of w.End (unique users). Days and
// months are taken in w.End's location. Sessions with an unknown start fall
// in no bucket.
func BuildSeries(sessions []telemetry.PlaySession, w Window, tf Timeframe) Series {
	loc := w.End.Location()
	dayLabel := "Jan 02"
	if tf == Timeframe7d {
		dayLabel = "Mon"
	}

	var series Series
	first := startOfDay(w.Start.In(loc))
	last := startOfDay(w.End)
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		next := day.AddDate(0, 0, 1)
		users, count := bucket(sessions, day, next)
		series.DailyUsers = append(series.DailyUsers, Point{Name: day.Format(dayLabel), Value: users})
		series.DailySessions = append(series.DailySessions, Point{Name: day.Format(dayLabel), Value: count})
	}

	thisMonth := startOfMonth(w.End)
	for i := monthsOfHistory - 1; i >= 0; i-- {
		month := thisMonth.AddDate(0, -i, 0)
		users, _ := bucket(sessions, month, month.AddDate(0, 1, 0))
		series.MonthlyUsers = append(series.MonthlyUsers, Point{Name: month.Format("Jan"), Value: users})
	}
	return series
}

// bucket counts the unique users and the sessions started in [from, to).
func bucket(sessions []telemetry.PlaySession, from, to time.Time) (users, count int) {
	seen := userSet{}
	for i := range sessions {
		s := &sessions[i]
		if s.StartedAt.IsZero() || s.StartedAt.Before(from) || !s.StartedAt.Before(to) {
			continue
		}
		count++
		if s.HasUser() {
			seen.add(s.UserID)
		}
	}
	return len(seen), count
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}
