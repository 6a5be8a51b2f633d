package timeutil

import "time"

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// FarFuture is the instant unparseable date/time pairs compare as. A bad
// upstream row loses every "what's next" comparison.
var FarFuture = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)

// DateString formats t as a facility-local calendar date.
func DateString(t time.Time) string {
	return t.Format(DateLayout)
}

// ClockString formats t as a facility-local HH:MM clock value.
func ClockString(t time.Time) string {
	return t.Format(ClockLayout)
}

// Combine parses a YYYY-MM-DD date and an optional HH:MM clock into a single
// instant in loc. A missing clock means midnight. ok is false when either
// part fails to parse.
func Combine(date, clock string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	if date == "" {
		return time.Time{}, false
	}
	layout := DateLayout
	value := date
	if clock != "" {
		layout = DateLayout + " " + ClockLayout
		value = date + " " + clock
	}
	t, err := time.ParseInLocation(layout, value, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// CombineOrFuture is Combine with unparseable input mapped to FarFuture.
func CombineOrFuture(date, clock string, loc *time.Location) time.Time {
	if t, ok := Combine(date, clock, loc); ok {
		return t
	}
	return FarFuture
}
