package notification

import (
	"fmt"
	"time"
)

// RelativeTime renders ts relative to now the way the dashboard displays
// notification ages: "just now", "5 min ago", "3 hours ago", "2 days ago",
// falling back to a short absolute date past a week.
func RelativeTime(ts, now time.Time) string {
	age := now.Sub(ts)
	if age < 0 {
		age = 0
	}
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		return fmt.Sprintf("%d min ago", int(age/time.Minute))
	case age < 24*time.Hour:
		return plural(int(age/time.Hour), "hour")
	case age < 7*24*time.Hour:
		return plural(int(age/(24*time.Hour)), "day")
	default:
		return ts.Format("Jan 2, 2006")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
