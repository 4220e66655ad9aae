package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func threeEvents(t *testing.T) []Event {
	t.Helper()

	return []Event{
		atVenue(dummyEvent(0, mustTime(t, "2024-03-12T20:00:00Z")), "venue 1"),
		atVenue(dummyEvent(1, mustTime(t, "2024-03-12T20:00:00Z")), "venue 2"),
		atVenue(dummyEvent(2, mustTime(t, "2024-03-12T21:00:00Z")), "venue 1"),
	}
}

// TestAtVenues keeps only listed venues.
func TestAtVenues(t *testing.T) {
	t.Parallel()

	got := AtVenues("venue 1")(threeEvents(t))
	require.Equal(t, []uint32{0, 2}, ids(got))

	require.Empty(t, AtVenues()(threeEvents(t)))
}

// TestTimeFilters checks strict comparisons of the start and end filters.
func TestTimeFilters(t *testing.T) {
	t.Parallel()

	events := threeEvents(t)
	at20 := mustTime(t, "2024-03-12T20:00:00Z")

	require.Equal(t, []uint32{2}, ids(StartsAfter(at20)(events)))
	require.Empty(t, StartsBefore(at20)(events))
	require.Equal(t, []uint32{0, 1}, ids(StartsBefore(at20.Add(time.Minute))(events)))

	// Events at 20:00 end at 21:00, strictly after excludes them at 21:00.
	require.Equal(t, []uint32{2}, ids(EndsAfter(mustTime(t, "2024-03-12T21:00:00Z"))(events)))
}

// TestFakeStartEpoch shifts starts and ends relative to the first event.
func TestFakeStartEpoch(t *testing.T) {
	t.Parallel()

	events := []Event{
		dummyEvent(0, mustTime(t, "2024-03-12T20:00:00Z")),
		dummyEvent(1, mustTime(t, "2024-03-12T21:00:00Z")),
		dummyEvent(2, mustTime(t, "2024-03-12T22:00:00Z")),
	}

	epoch := mustTime(t, "2024-02-01T12:00:00Z")
	got := FakeStartEpoch(epoch)(events)

	require.Len(t, got, 3)

	for i, wantStart := range []string{"2024-02-01T12:00:00Z", "2024-02-01T13:00:00Z", "2024-02-01T14:00:00Z"} {
		require.True(t, got[i].Start.Equal(mustTime(t, wantStart)), "start %d", i)
		require.True(t, got[i].End.Equal(got[i].Start.Add(time.Hour)), "end %d", i)
	}

	// Input is untouched.
	require.True(t, events[0].Start.Equal(mustTime(t, "2024-03-12T20:00:00Z")))

	require.Empty(t, FakeStartEpoch(epoch)(nil))
}

// TestMutators_Apply runs steps in declaration order.
func TestMutators_Apply(t *testing.T) {
	t.Parallel()

	events := threeEvents(t)
	events[0], events[2] = events[2], events[0]

	pipeline := Mutators{
		SortedByStartTime(),
		AtVenues("venue 1"),
		FakeStartEpoch(mustTime(t, "2030-01-01T00:00:00Z")),
	}

	got := pipeline.Apply(events)
	require.Equal(t, []uint32{0, 2}, ids(got))
	require.True(t, got[0].Start.Equal(mustTime(t, "2030-01-01T00:00:00Z")))
	require.True(t, got[1].Start.Equal(mustTime(t, "2030-01-01T01:00:00Z")))

	s := New(events)
	s.Mutate(pipeline)
	require.Equal(t, []uint32{0, 2}, ids(s.Events))
}
