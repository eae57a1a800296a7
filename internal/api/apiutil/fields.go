package apiutil

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

func ParsePositiveInt64Field(raw string, field string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", field)
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", field)
	}
	return value, nil
}

// PathID parses the named path wildcard as a positive id.
func PathID(r *http.Request, name string) (int64, error) {
	return ParsePositiveInt64Field(r.PathValue(name), name)
}

// ParseTime accepts RFC 3339 timestamps, or local date/minute layouts read in loc.
// The result is in UTC.
func ParseTime(raw string, field string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%s is required", field)
	}
	if loc == nil {
		loc = time.UTC
	}

	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04",
		"2006-01-02 15:04",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if layout == time.RFC3339 {
			parsed, err := time.Parse(layout, raw)
			if err == nil {
				return parsed.UTC(), nil
			}
			continue
		}
		parsed, err := time.ParseInLocation(layout, raw, loc)
		if err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%s must be a valid time", field)
}

// TimeWindow reads the from/to query parameters. A missing from defaults to
// now and a missing to defaults to from+span.
func TimeWindow(r *http.Request, now time.Time, span time.Duration) (time.Time, time.Time, error) {
	query := r.URL.Query()
	from := now.UTC()
	if raw := query.Get("from"); strings.TrimSpace(raw) != "" {
		parsed, err := ParseTime(raw, "from", time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = parsed
	}
	to := from.Add(span)
	if raw := query.Get("to"); strings.TrimSpace(raw) != "" {
		parsed, err := ParseTime(raw, "to", time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = parsed
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("from must be before to")
	}
	return from, to, nil
}
