package station

import "time"

// MonthStart returns the first instant of t's UTC month: the
// synchronization epoch every listener measures elapsed time from. It is
// recomputed from the clock on each use so a month rollover is picked up
// by the very next query, bounding replay distance to about 31 days.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
