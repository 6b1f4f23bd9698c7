package reminder

import "time"

var dueLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
}

// ParseDue parses a due-time string. datetime-local values are read in local
// time. Unparseable input yields the zero time, which never compares after
// now and so is never scheduled.
func ParseDue(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	for _, layout := range dueLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}
