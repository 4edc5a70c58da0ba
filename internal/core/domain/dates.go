package domain

import (
	"regexp"
	"strings"
	"time"
)

const (
	displayLayout       = "01/02/2006"
	dateInputLayout     = "2006-01-02"
	dateTimeInputLayout = "2006-01-02T15:04"
	visitLayout         = "2006-01-02 15:04:05"

	// NoValue is what the display formatter renders for an absent date.
	NoValue = "N/A"
)

var dateOnlyPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Layouts carrying their own zone; parsed as given.
var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC1123,
	time.RFC1123Z,
	time.RFC850,
	"Mon, 2 Jan 2006 15:04:05 MST",
}

// Layouts without a zone; they name a wall-clock time in the console location.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	time.ANSIC,
}

// ParseDate normalizes the date shapes the API produces. Plain YYYY-MM-DD
// values become UTC midnight of that day. Strings carrying a zone marker or a
// T separator are parsed as given, zone-less ones in loc. Anything else is
// read as a date at UTC midnight. Blank or unparseable input yields false.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}

	if dateOnlyPattern.MatchString(s) {
		t, err := time.Parse(dateInputLayout, s)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}

	if strings.ContainsAny(s, "+-T") || strings.Contains(s, "GMT") || strings.Contains(s, "UTC") {
		for _, layout := range zonedLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		for _, layout := range localLayouts {
			if t, err := time.ParseInLocation(layout, s, loc); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	}

	t, err := time.Parse(time.RFC3339, s+"T00:00:00Z")
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseDatePtr is ParseDate for nullable API fields.
func ParseDatePtr(s *string, loc *time.Location) (time.Time, bool) {
	if s == nil {
		return time.Time{}, false
	}
	return ParseDate(*s, loc)
}

// UTCMidnight truncates t to the start of its UTC calendar day.
func UTCMidnight(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate renders MM/DD/YYYY from the UTC calendar fields, or N/A for the
// zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return NoValue
	}
	return t.UTC().Format(displayLayout)
}

// FormatDateForInput renders YYYY-MM-DD from the UTC calendar fields.
func FormatDateForInput(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateInputLayout)
}

// FormatDateTimeLocalForInput renders YYYY-MM-DDTHH:MM from the wall clock in
// loc. Unlike the date-only formatters this reads local fields.
func FormatDateTimeLocalForInput(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return inLocation(t, loc).Format(dateTimeInputLayout)
}

// FormatVisitTimestamp renders the naive local timestamp POST /add_visit expects.
func FormatVisitTimestamp(t time.Time, loc *time.Location) string {
	return inLocation(t, loc).Format(visitLayout)
}

// ParseDateTimeInput reads the value of a datetime-local form field.
func ParseDateTimeInput(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range []string{dateTimeInputLayout, "2006-01-02T15:04:05", visitLayout} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DisplayDate parses and formats a nullable API date in one step.
func DisplayDate(s *string) string {
	t, ok := ParseDatePtr(s, time.UTC)
	if !ok {
		return NoValue
	}
	return FormatDate(t)
}

// InputDate parses a nullable API date into a date-input value.
func InputDate(s *string) string {
	t, ok := ParseDatePtr(s, time.UTC)
	if !ok {
		return ""
	}
	return FormatDateForInput(t)
}

func inLocation(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		return t
	}
	return t.In(loc)
}
