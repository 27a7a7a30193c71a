package post

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// errUnsupportedDate marks values that are not date-like at all, as opposed
// to date-like text that fails to parse.
var errUnsupportedDate = errors.New("unsupported date type")

var (
	digitsOnly = regexp.MustCompile(`^[0-9]+$`)
	fullYear   = regexp.MustCompile(`(^|[^0-9])[0-9]{4}([^0-9]|$)`)
)

// coerceDate converts a frontmatter value into an instant.
// Numbers are Unix epoch milliseconds. Text must parse unambiguously.
func coerceDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		if d.IsZero() {
			return time.Time{}, fmt.Errorf("zero time")
		}
		return d, nil
	case *time.Time:
		if d == nil || d.IsZero() {
			return time.Time{}, fmt.Errorf("zero time")
		}
		return *d, nil
	case string:
		return parseDateText(d)
	case int:
		return time.UnixMilli(int64(d)).UTC(), nil
	case int64:
		return time.UnixMilli(d).UTC(), nil
	case uint64:
		if d > math.MaxInt64 {
			return time.Time{}, fmt.Errorf("timestamp %d out of range", d)
		}
		return time.UnixMilli(int64(d)).UTC(), nil
	case float64:
		if math.IsNaN(d) || math.IsInf(d, 0) || d != math.Trunc(d) {
			return time.Time{}, fmt.Errorf("timestamp %v is not a whole number", d)
		}
		return time.UnixMilli(int64(d)).UTC(), nil
	case fmt.Stringer:
		// TOML local dates and similar decoder types.
		return parseDateText(d.String())
	default:
		return time.Time{}, fmt.Errorf("%w %T", errUnsupportedDate, v)
	}
}

func parseDateText(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if !strings.ContainsAny(s, "0123456789") {
		return time.Time{}, fmt.Errorf("cannot parse %q: no digits", s)
	}
	// Epoch values are only accepted as numbers, where they are milliseconds.
	if digitsOnly.MatchString(s) {
		return time.Time{}, fmt.Errorf("cannot parse %q: bare number in text", s)
	}
	// Fast path for the canonical layouts.
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if !fullYear.MatchString(s) {
		return time.Time{}, fmt.Errorf("cannot parse %q: no four digit year", s)
	}
	t, err := dateparse.ParseStrict(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("cannot parse %q: %w", s, err)
	}
	if t.Year() == 0 {
		return time.Time{}, fmt.Errorf("cannot parse %q: no year", s)
	}
	return t, nil
}

// checkURL reports whether s is an absolute URL with both scheme and host.
func checkURL(s string) error {
	if strings.TrimSpace(s) != s || s == "" {
		return fmt.Errorf("%q is not a url", s)
	}
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("%q is not a url: %w", s, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%q must have a scheme and a host", s)
	}
	return nil
}

// asPair returns the two elements of a tuple-encoded field.
// ok is false when v is not a list at all.
func asPair(v any) (items []any, ok bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []string:
		items = make([]any, len(t))
		for i, s := range t {
			items[i] = s
		}
		return items, true
	default:
		return nil, false
	}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "text"
	case bool:
		return "boolean"
	case int, int64, uint64, float64:
		return "number"
	case []any, []string:
		return "list"
	case map[string]any, map[any]any:
		return "mapping"
	case time.Time:
		return "timestamp"
	default:
		return fmt.Sprintf("%T", v)
	}
}
