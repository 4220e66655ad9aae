package schedule

import (
	"slices"
)

// Schedule is one snapshot of the upstream event list.
type Schedule struct {
	Events []Event
}

// New wraps events in a Schedule without copying them.
func New(events []Event) *Schedule {
	return &Schedule{Events: events}
}

// Sort puts the events in canonical order. The sort is stable, so events
// sharing start and venue keep their upstream order.
func (s *Schedule) Sort() {
	slices.SortStableFunc(s.Events, func(a, b Event) int {
		return Compare(&a, &b)
	})
}

// IsSorted reports whether the events are in canonical order.
func (s *Schedule) IsSorted() bool {
	return slices.IsSortedFunc(s.Events, func(a, b Event) int {
		return Compare(&a, &b)
	})
}

// Equal reports whether both snapshots hold equal events in the same order.
func (s *Schedule) Equal(other *Schedule) bool {
	if s == nil || other == nil {
		return s == other
	}

	return slices.EqualFunc(s.Events, other.Events, func(a, b Event) bool {
		return a.Equal(&b)
	})
}

// Mutate replaces the events with the result of applying mutators in order.
func (s *Schedule) Mutate(mutators Mutators) {
	s.Events = mutators.Apply(s.Events)
}

// Venues returns the distinct venue names in lexical order.
func (s *Schedule) Venues() []string {
	return uniqueVenues(s.Events)
}

// FindByID returns the event with the given id.
func (s *Schedule) FindByID(id uint32) (Event, bool) {
	idx := slices.IndexFunc(s.Events, func(e Event) bool {
		return e.ID == id
	})
	if idx < 0 {
		return Event{}, false
	}

	return s.Events[idx], true
}

func uniqueVenues(events []Event) []string {
	venues := make([]string, 0, len(events))
	for _, e := range events {
		venues = append(venues, e.Venue)
	}

	slices.Sort(venues)

	return slices.Compact(venues)
}
