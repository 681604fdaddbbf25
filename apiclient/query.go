package apiclient

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	interrors "github.com/jrsteele09/kogase-admin/internal/errors"
)

// TimeLayout is the ISO-8601 form the backend accepts for query timestamps.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Filters are optional query parameters. Only truthy values are sent:
// non-empty strings, non-zero numbers, true, non-zero times and non-nil
// pointers to any of those.
type Filters map[string]any

// Encode returns the query string without the leading "?", keys sorted.
func (f Filters) Encode() string {
	q := url.Values{}
	for k, v := range f {
		if s, ok := queryValue(v); ok {
			q.Set(k, s)
		}
	}
	return q.Encode()
}

// WithQuery appends the encoded filters to path.
func WithQuery(path string, f Filters) string {
	if qs := f.Encode(); qs != "" {
		return path + "?" + qs
	}
	return path
}

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func queryValue(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, x != ""
	case bool:
		return "true", x
	case int:
		return fmt.Sprint(x), x != 0
	case int32:
		return fmt.Sprint(x), x != 0
	case int64:
		return fmt.Sprint(x), x != 0
	case float64:
		return fmt.Sprint(x), x != 0
	case time.Time:
		return FormatTime(x), !x.IsZero()
	case *string:
		if x == nil {
			return "", false
		}
		return queryValue(*x)
	case *bool:
		if x == nil {
			return "", false
		}
		return queryValue(*x)
	case *int:
		if x == nil {
			return "", false
		}
		return queryValue(*x)
	case *time.Time:
		if x == nil {
			return "", false
		}
		return queryValue(*x)
	case fmt.Stringer:
		s := x.String()
		return s, s != ""
	}
	s := fmt.Sprint(v)
	return s, s != ""
}

// ResourcePath appends escaped segments to base. An empty segment is a
// missing identifier and yields ErrMissingID without building a path.
func ResourcePath(base string, segments ...string) (string, error) {
	var b strings.Builder
	b.WriteString(strings.TrimSuffix(base, "/"))
	for _, s := range segments {
		if strings.TrimSpace(s) == "" {
			return "", interrors.ErrMissingID
		}
		b.WriteString("/")
		b.WriteString(url.PathEscape(s))
	}
	return b.String(), nil
}
