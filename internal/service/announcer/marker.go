package announcer

import (
	"time"

	"github.com/oshokin/emf-schedule/internal/domain/schedule"
)

// marker identifies the last delivered event by value.
type marker struct {
	start time.Time
	id    uint32
}

func markerOf(e *schedule.Event) *marker {
	return &marker{
		start: e.Start,
		id:    e.ID,
	}
}

// matches reports whether e is the marked event. A moved event does not match.
func (m *marker) matches(e *schedule.Event) bool {
	return m.start.Equal(e.Start) && m.id == e.ID
}

// selection names the rule nextEvent applied, for logging.
type selection string

const (
	selectionColdStart selection = "cold_start"
	selectionSuccessor selection = "successor"
	selectionResync    selection = "resync"
)

// nextEvent picks the event to announce next from canonically sorted events.
//
// Without a marker it takes the first event whose offset start is not before
// now. With a marker it takes the successor of the marked event or, when the
// marked event is gone, the first event starting strictly after it.
func nextEvent(
	events []schedule.Event,
	offset time.Duration,
	last *marker,
	now time.Time,
) (*schedule.Event, selection) {
	if last == nil {
		for i := range events {
			if !events[i].Start.Add(offset).Before(now) {
				return &events[i], selectionColdStart
			}
		}

		return nil, selectionColdStart
	}

	for i := range events {
		if !last.matches(&events[i]) {
			continue
		}

		if i+1 < len(events) {
			return &events[i+1], selectionSuccessor
		}

		return nil, selectionSuccessor
	}

	for i := range events {
		if events[i].Start.After(last.start) {
			return &events[i], selectionResync
		}
	}

	return nil, selectionResync
}
