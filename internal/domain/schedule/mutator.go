package schedule

import (
	"slices"
	"time"
)

// Mutator is one step of an event pipeline. It must not modify its input
// slice and returns the events that remain, possibly altered.
type Mutator func(events []Event) []Event

// Mutators is an ordered pipeline of Mutator steps.
type Mutators []Mutator

// Apply runs every step in order.
func (m Mutators) Apply(events []Event) []Event {
	for _, step := range m {
		events = step(events)
	}

	return events
}

// SortedByStartTime orders events canonically.
func SortedByStartTime() Mutator {
	return func(events []Event) []Event {
		s := New(slices.Clone(events))
		s.Sort()

		return s.Events
	}
}

// AtVenues keeps events taking place at one of venues.
func AtVenues(venues ...string) Mutator {
	return keep(func(e *Event) bool {
		return slices.Contains(venues, e.Venue)
	})
}

// StartsAfter keeps events starting strictly after t.
func StartsAfter(t time.Time) Mutator {
	return keep(func(e *Event) bool {
		return e.Start.After(t)
	})
}

// StartsBefore keeps events starting strictly before t.
func StartsBefore(t time.Time) Mutator {
	return keep(func(e *Event) bool {
		return e.Start.Before(t)
	})
}

// EndsAfter keeps events ending strictly after t.
func EndsAfter(t time.Time) Mutator {
	return keep(func(e *Event) bool {
		return e.End.After(t)
	})
}

// FakeStartEpoch shifts every timestamp so that the first event starts at
// epoch, keeping relative spacing. Input must already be sorted by start.
// Used to replay a past schedule as if it were happening now.
func FakeStartEpoch(epoch time.Time) Mutator {
	return func(events []Event) []Event {
		if len(events) == 0 {
			return events
		}

		first := events[0].Start
		shifted := make([]Event, len(events))

		for i, e := range events {
			e.Start = epoch.Add(e.Start.Sub(first))
			e.End = epoch.Add(e.End.Sub(first))
			shifted[i] = e
		}

		return shifted
	}
}

func keep(pred func(e *Event) bool) Mutator {
	return func(events []Event) []Event {
		kept := make([]Event, 0, len(events))

		for i := range events {
			if pred(&events[i]) {
				kept = append(kept, events[i])
			}
		}

		return kept
	}
}
