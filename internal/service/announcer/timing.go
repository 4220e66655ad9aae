package announcer

import "time"

// WaitDuration returns how long to wait from now until an event starting at
// start is due under offset. Overdue events yield zero and overdue is true.
func WaitDuration(now time.Time, offset time.Duration, start time.Time) (wait time.Duration, overdue bool) {
	wait = start.Add(offset).Sub(now)
	if wait < 0 {
		return 0, true
	}

	return wait, false
}
