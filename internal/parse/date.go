package parse

import (
	"fmt"
	"strings"
	"time"
)

// Day layouts accepted in historical records. "2/1/2006" also accepts
// zero-padded days and months.
var dayLayouts = []string{
	"2/1/2006",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Date parses a day/month/year date (or an ISO timestamp) as a UTC day.
func Date(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %q", raw)
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the absolute number of whole days between a and b.
func DaysBetween(a, b time.Time) int {
	diff := Day(a).Sub(Day(b))
	if diff < 0 {
		diff = -diff
	}
	return int(diff.Hours() / 24)
}

// FormatDay renders t the way dates are shown in the workshop: DD/MM/YYYY.
func FormatDay(t time.Time) string {
	return t.Format("02/01/2006")
}
