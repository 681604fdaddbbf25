package analytics

import (
	"strings"
	"time"

	interrors "github.com/jrsteele09/kogase-admin/internal/errors"
	"github.com/pkg/errors"
)

// Timeframe is the look-back period of an analytics view.
type Timeframe string

const (
	Timeframe7d  Timeframe = "7d"
	Timeframe30d Timeframe = "30d"
	Timeframe90d Timeframe = "90d"

	DefaultTimeframe = Timeframe7d
)

// ParseTimeframe accepts "7d", "30d" and "90d". An empty string selects the
// default.
func ParseTimeframe(s string) (Timeframe, error) {
	switch tf := Timeframe(strings.ToLower(strings.TrimSpace(s))); tf {
	case "":
		return DefaultTimeframe, nil
	case Timeframe7d, Timeframe30d, Timeframe90d:
		return tf, nil
	}
	return "", errors.Wrapf(interrors.ErrInvalidTimeframe, "%q", s)
}

func (t Timeframe) Days() int {
	switch t {
	case Timeframe30d:
		return 30
	case Timeframe90d:
		return 90
	}
	return 7
}

// Window ending at end and reaching back the timeframe's number of days.
func (t Timeframe) Window(end time.Time) Window {
	return Window{Start: end.AddDate(0, 0, -t.Days()), End: end}
}

// Window is the reference period of an aggregation. End is the point
// activity is measured from.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// DaysBefore is the number of whole days from t to the window end,
// truncated toward zero. Sessions after the end yield negative values.
func (w Window) DaysBefore(t time.Time) int {
	return int(w.End.Sub(t) / (24 * time.Hour))
}
