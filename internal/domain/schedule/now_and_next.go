package schedule

import "time"

// NowAndNext is a per-venue guide of what is running and what is coming up.
type NowAndNext struct {
	Now   time.Time                  `json:"now"`
	Guide map[string]VenueNowAndNext `json:"guide"`
}

// VenueNowAndNext is the guide entry for a single venue.
type VenueNowAndNext struct {
	// Now lists events whose start and end enclose the query time.
	Now []Event `json:"now"`
	// Next lists every event sharing the start time of the first event
	// beginning after the query time.
	Next []Event `json:"next"`
}

// NowAndNext builds the guide for now. Events should be in canonical order.
func (s *Schedule) NowAndNext(now time.Time) *NowAndNext {
	result := &NowAndNext{
		Now:   now,
		Guide: make(map[string]VenueNowAndNext),
	}

	for _, venue := range uniqueVenues(s.Events) {
		entry := VenueNowAndNext{
			Now:  make([]Event, 0),
			Next: make([]Event, 0),
		}

		var (
			nextStart time.Time
			haveNext  bool
		)

		for i := range s.Events {
			e := &s.Events[i]
			if e.Venue != venue {
				continue
			}

			switch e.RelativeTo(now) {
			case Now:
				entry.Now = append(entry.Now, *e)
			case Future:
				if !haveNext {
					nextStart, haveNext = e.Start, true
				}
			case Past:
			}
		}

		if haveNext {
			for i := range s.Events {
				e := &s.Events[i]
				if e.Venue == venue && e.Start.Equal(nextStart) {
					entry.Next = append(entry.Next, *e)
				}
			}
		}

		result.Guide[venue] = entry
	}

	return result
}
