package state

import "time"

// DateKeyLayout is the ISO-8601 full-date form used for completed-day keys.
const DateKeyLayout = "2006-01-02"

// DateKey returns the local calendar day of t as YYYY-MM-DD. Every
// completed-day lookup goes through this, so two instants on the same local
// day always share a key.
func DateKey(t time.Time) string {
	return startOfDay(t).Format(DateKeyLayout)
}

// ParseDateKey parses a YYYY-MM-DD key as local midnight.
func ParseDateKey(key string) (time.Time, error) {
	return time.ParseInLocation(DateKeyLayout, key, time.Local)
}

// IsValidDateKey reports whether key is a canonical YYYY-MM-DD date.
func IsValidDateKey(key string) bool {
	t, err := ParseDateKey(key)
	return err == nil && t.Format(DateKeyLayout) == key
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Local().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

// daysBetween counts calendar days from a to b using civil dates, so DST
// transitions never produce a 23 or 25 hour "day".
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from) / (24 * time.Hour))
}

// IsSameDay reports whether a and b fall on the same local calendar day.
func IsSameDay(a, b time.Time) bool {
	return DateKey(a) == DateKey(b)
}
