package telemetry_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jrsteele09/kogase-admin/telemetry"
	"github.com/stretchr/testify/require"
)

func TestPlaySession_LenientDecode(t *testing.T) {
	raw := `{
		"id": "s-1",
		"userId": null,
		"startedAt": "2024-05-01T10:00:00",
		"endedAt": "not a date",
		"duration": "12.5",
		"sessionNumber": "abc",
		"isActive": true
	}`

	var s telemetry.PlaySession
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	require.Equal(t, "s-1", s.ID)
	require.False(t, s.HasUser())
	require.True(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC).Equal(s.StartedAt.Time))
	require.False(t, s.HasEnded())
	require.Equal(t, 12.5, s.Duration.Float())
	require.Zero(t, s.SessionNumber.Int())

	_, ok := s.Length()
	require.False(t, ok)
}

func TestPlaySession_Length(t *testing.T) {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	s := telemetry.PlaySession{StartedAt: telemetry.NewTime(start), EndedAt: telemetry.NewTime(start.Add(90 * time.Second))}
	d, ok := s.Length()
	require.True(t, ok)
	require.Equal(t, 90*time.Second, d)

	s.EndedAt = telemetry.NewTime(start.Add(-time.Second))
	_, ok = s.Length()
	require.False(t, ok)

	s = telemetry.PlaySession{EndedAt: telemetry.NewTime(start)}
	_, ok = s.Length()
	require.False(t, ok)
}

func TestTime_Marshal(t *testing.T) {
	out, err := json.Marshal(struct {
		A telemetry.Time `json:"a"`
		B telemetry.Time `json:"b"`
	}{B: telemetry.NewTime(time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600)))})
	require.NoError(t, err)
	require.JSONEq(t, `{"a":null,"b":"2024-01-02T02:04:05Z"}`, string(out))
}

func TestParseTime(t *testing.T) {
	require.True(t, telemetry.ParseTime("").IsZero())
	require.True(t, telemetry.ParseTime("yesterday").IsZero())
	require.Equal(t, 2024, telemetry.ParseTime("2024-02-03").Year())
	require.Equal(t, 7, telemetry.ParseTime("2024-02-03T07:00:00.123Z").Hour())
}

func TestMetricAggregate_Values(t *testing.T) {
	var m telemetry.MetricAggregate
	require.NoError(t, json.Unmarshal([]byte(`{"count": 4, "sum": 10, "min": null, "avg": "2.5", "max": "x"}`), &m))

	sum, minV, maxV, avg := m.Values()
	require.Equal(t, 4.0, m.Count.Float())
	require.Equal(t, 10.0, sum)
	require.Zero(t, minV)
	require.Zero(t, maxV)
	require.Equal(t, 2.5, avg)
}
