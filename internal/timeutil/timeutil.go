// Package timeutil formats timestamps and sizes for list views.
package timeutil

import (
	"fmt"
	"time"
)

const day = 24 * time.Hour

// RelativeTime formats t relative to now in local time. Recent times get
// minutes or a day name; older ones a month and day; anything beyond half a
// year an ISO date.
func RelativeTime(now, t time.Time) string {
	if t.After(now) {
		return "the future"
	}

	t = t.In(now.Location())
	diff := now.Sub(t)

	switch {
	case diff > 180*day:
		return t.Format("2006-01-02")
	case diff < time.Hour:
		return fmt.Sprintf("%d mins. ago", int(diff.Minutes()))
	case diff < 7*day:
		daysBack := (int(now.Weekday()) + 7 - int(t.Weekday())) % 7
		switch {
		case daysBack == 0 && diff < day:
			return t.Format("Today 15:04")
		case daysBack == 1:
			return t.Format("Yest. 15:04")
		default:
			return t.Format("Mon. 15:04")
		}
	default:
		return t.Format("January 02")
	}
}

var sizeSuffixes = [...]string{"B", "KiB", "MiB", "GiB"}

// FormatByteSize renders size with a binary unit suffix. Sizes of a KiB and
// above get two decimals.
func FormatByteSize(size int64) string {
	value := float64(size)
	i := 0
	for value >= 1024 && i < len(sizeSuffixes)-1 {
		value /= 1024
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%d %s", size, sizeSuffixes[i])
	}
	return fmt.Sprintf("%.2f %s", value, sizeSuffixes[i])
}
