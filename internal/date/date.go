// Package date parses and formats the schedule values users type on the
// command line: start timestamps and durations.
package date

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Layout is the short, minute-precision form used for display and input.
const Layout = "2006-01-02 15:04"

// inputLayouts are tried in order by ParseTime.
var inputLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	Layout,
	"2006-01-02",
}

// ParseTime parses a start time. RFC 3339 values keep their offset; the
// shorter forms are read in loc (time.Local when nil).
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	for _, layout := range inputLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q: expected YYYY-MM-DD HH:MM or RFC 3339", s)
}

// ParseDuration parses a Go duration ("1h30m") or a bare number of minutes
// ("90"). Zero and negative values are rejected.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}

	var d time.Duration
	if n, err := strconv.Atoi(s); err == nil {
		d = time.Duration(n) * time.Minute
	} else {
		d, err = time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: expected e.g. 90m, 1h30m or minutes", s)
		}
	}

	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %s", d)
	}
	return d, nil
}

// Format renders t in Layout, or "" for nil.
func Format(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(Layout)
}

// FormatDuration renders a duration compactly ("1h30m", "45m", "2d 3h").
func FormatDuration(d time.Duration) string {
	const day = 24 * time.Hour
	if d >= day {
		days := int(d / day)
		hours := int((d % day) / time.Hour)
		return strconv.Itoa(days) + "d " + strconv.Itoa(hours) + "h"
	}
	s := d.Truncate(time.Minute).String()
	s = strings.TrimSuffix(s, "0s")
	if strings.HasSuffix(s, "h0m") {
		s = strings.TrimSuffix(s, "0m")
	}
	if s == "" {
		return "0m"
	}
	return s
}
