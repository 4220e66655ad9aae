package announcer

import "time"

// DefaultRefreshInterval is how often the schedule is fetched again.
const DefaultRefreshInterval = 60 * time.Second

// idleRecheckInterval bounds how long Poll waits when no event is pending.
const idleRecheckInterval = 60 * time.Second

// Settings controls the announcer timing.
type Settings struct {
	// RefreshInterval is the period of the schedule refresh ticker.
	RefreshInterval time.Duration
	// StartOffset shifts every event start before it is compared to the
	// clock. Positive values delay announcements, negative values announce early.
	StartOffset time.Duration
}

// DefaultSettings returns a 60s refresh with no offset.
func DefaultSettings() Settings {
	return Settings{
		RefreshInterval: DefaultRefreshInterval,
	}
}

// withDefaults fills unset fields.
func (s Settings) withDefaults() Settings {
	if s.RefreshInterval <= 0 {
		s.RefreshInterval = DefaultRefreshInterval
	}

	return s
}
