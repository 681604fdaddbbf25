package telemetry

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Time is a timestamp that decodes leniently: null, empty or unparseable
// values become the zero time instead of failing the whole record.
type Time struct {
	time.Time
}

// timestamps without a zone are UTC
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func NewTime(t time.Time) Time {
	return Time{Time: t}
}

// ParseTime parses s with the lenient rules of Time.
func ParseTime(s string) Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Time{Time: t}
		}
	}
	return Time{}
}

func (t *Time) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*t = Time{}
		return nil
	}
	*t = ParseTime(s)
	return nil
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// Number is a numeric field that decodes leniently: null, quoted numbers and
// garbage are accepted, anything unreadable becoming 0.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	raw := string(bytes.Trim(bytes.TrimSpace(data), `"`))
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = Number(f)
	return nil
}

func (n Number) Float() float64 {
	return float64(n)
}

func (n Number) Int() int {
	return int(n)
}
