package domain

import (
	"sort"
	"time"
)

// Month is a displayed calendar month. It is always anchored on day 1 so
// stepping never overflows into a neighbouring month.
type Month struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// MonthOf returns the month containing t in loc.
func MonthOf(t time.Time, loc *time.Location) Month {
	t = inLocation(t, loc)
	return Month{Year: t.Year(), Month: t.Month()}
}

func (m Month) first(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, loc)
}

// Prev returns the month before m.
func (m Month) Prev() Month {
	t := m.first(time.UTC).AddDate(0, -1, 0)
	return Month{Year: t.Year(), Month: t.Month()}
}

// Next returns the month after m.
func (m Month) Next() Month {
	t := m.first(time.UTC).AddDate(0, 1, 0)
	return Month{Year: t.Year(), Month: t.Month()}
}

func (m Month) String() string {
	return m.first(time.UTC).Format("January 2006")
}

// CalendarDay is one numbered cell of the month grid.
type CalendarDay struct {
	Day       int  `json:"day"`
	IsToday   bool `json:"is_today"`
	IsVisited bool `json:"is_visited"`
}

// Calendar is a 7-column month grid. LeadingBlanks empty cells precede day 1;
// Sunday is column 0.
type Calendar struct {
	Year          int           `json:"year"`
	Month         time.Month    `json:"month"`
	Title         string        `json:"title"`
	LeadingBlanks int           `json:"leading_blanks"`
	DaysInMonth   int           `json:"days_in_month"`
	Days          []CalendarDay `json:"days"`
}

// MonthGrid lays out m and marks today and every day holding a visit. Visits
// and today are compared by their calendar date in loc.
func MonthGrid(m Month, visits []time.Time, now time.Time, loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	first := m.first(loc)
	// Day 0 of the next month is the last day of this one.
	daysInMonth := time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, loc).Day()

	visited := make(map[int]bool)
	for _, v := range visits {
		lv := v.In(loc)
		if lv.Year() == m.Year && lv.Month() == m.Month {
			visited[lv.Day()] = true
		}
	}

	ln := now.In(loc)
	cal := Calendar{
		Year:          m.Year,
		Month:         m.Month,
		Title:         m.String(),
		LeadingBlanks: int(first.Weekday()),
		DaysInMonth:   daysInMonth,
		Days:          make([]CalendarDay, 0, daysInMonth),
	}
	for day := 1; day <= daysInMonth; day++ {
		cal.Days = append(cal.Days, CalendarDay{
			Day:       day,
			IsToday:   ln.Year() == m.Year && ln.Month() == m.Month && ln.Day() == day,
			IsVisited: visited[day],
		})
	}
	return cal
}

// VisitsSince counts visits at or after start. A zero start counts every visit.
func VisitsSince(visits []time.Time, start time.Time) int {
	if start.IsZero() {
		return len(visits)
	}
	n := 0
	for _, v := range visits {
		if !v.Before(start) {
			n++
		}
	}
	return n
}

// HistoryEntry is one line of a member's visit history.
type HistoryEntry struct {
	Number int    `json:"number"`
	Date   string `json:"date"`
	Time   string `json:"time"`
}

// VisitHistory lists visits newest first, numbered from the total down to 1.
// The date column goes through the UTC display formatter while the time
// column shows the local wall clock.
func VisitHistory(visits []time.Time, loc *time.Location) []HistoryEntry {
	sorted := make([]time.Time, len(visits))
	copy(sorted, visits)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].After(sorted[j]) })

	entries := make([]HistoryEntry, 0, len(sorted))
	for i, v := range sorted {
		entries = append(entries, HistoryEntry{
			Number: len(sorted) - i,
			Date:   FormatDate(v),
			Time:   inLocation(v, loc).Format("15:04"),
		})
	}
	return entries
}

// ParseVisits normalizes the timestamp strings of GET /visits/...; entries
// that do not parse are dropped.
func ParseVisits(raw []string, loc *time.Location) []time.Time {
	out := make([]time.Time, 0, len(raw))
	for _, s := range raw {
		if t, ok := ParseDate(s, loc); ok {
			out = append(out, t)
		}
	}
	return out
}
