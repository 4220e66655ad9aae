package schedule

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestNowAndNext_Basic groups running and upcoming events per venue.
func TestNowAndNext_Basic(t *testing.T) {
	t.Parallel()

	s := New(threeEvents(t))
	now := mustTime(t, "2024-03-12T20:30:00Z")

	guide := s.NowAndNext(now)

	require.True(t, guide.Now.Equal(now))
	require.Len(t, guide.Guide, 2)

	require.Equal(t, []uint32{0}, ids(guide.Guide["venue 1"].Now))
	require.Equal(t, []uint32{2}, ids(guide.Guide["venue 1"].Next))
	require.Equal(t, []uint32{1}, ids(guide.Guide["venue 2"].Now))
	require.Empty(t, guide.Guide["venue 2"].Next)
}

// TestNowAndNext_SharedNextStart lists every event sharing the next start time.
func TestNowAndNext_SharedNextStart(t *testing.T) {
	t.Parallel()

	base := mustTime(t, "2024-03-12T20:00:00Z")
	s := New([]Event{
		atVenue(dummyEvent(0, base), "Field"),
		atVenue(dummyEvent(1, base.Add(2*time.Hour)), "Field"),
		atVenue(dummyEvent(2, base.Add(2*time.Hour)), "Field"),
		atVenue(dummyEvent(3, base.Add(3*time.Hour)), "Field"),
	})

	guide := s.NowAndNext(base.Add(90 * time.Minute))

	require.Empty(t, guide.Guide["Field"].Now)
	require.Equal(t, []uint32{1, 2}, ids(guide.Guide["Field"].Next))
}

// TestNowAndNext_JSONShape encodes empty lists as arrays, not null.
func TestNowAndNext_JSONShape(t *testing.T) {
	t.Parallel()

	s := New(threeEvents(t))
	data, err := json.Marshal(s.NowAndNext(mustTime(t, "2024-03-12T23:00:00Z")))
	require.NoError(t, err)
	require.Contains(t, string(data), `"venue 2":{"now":[],"next":[]}`)
}
