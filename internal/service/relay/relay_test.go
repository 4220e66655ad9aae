package relay

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/emf-schedule/internal/domain/schedule"
	"github.com/oshokin/emf-schedule/internal/metrics"
	"github.com/oshokin/emf-schedule/internal/service/announcer"
)

// scriptedPoller hands out results in order, then blocks until canceled.
type scriptedPoller struct {
	results []*announcer.PollResult
	err     error
}

func (p *scriptedPoller) Poll(ctx context.Context) (*announcer.PollResult, error) {
	if len(p.results) > 0 {
		result := p.results[0]
		p.results = p.results[1:]

		return result, nil
	}

	if p.err != nil {
		return nil, p.err
	}

	<-ctx.Done()

	return nil, ctx.Err()
}

// recordingSink remembers what it was given.
type recordingSink struct {
	mu      sync.Mutex
	name    string
	fail    error
	events  []uint32
	changes int
}

func (s *recordingSink) Labels() (string, string) {
	return s.name, SizeFull
}

func (s *recordingSink) Announce(_ context.Context, e *schedule.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, e.ID)

	return s.fail
}

// notifyingSink also listens for schedule changes.
type notifyingSink struct {
	recordingSink
}

func (s *notifyingSink) ScheduleChanged(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.changes++

	return nil
}

func event(id uint32) schedule.Event {
	return schedule.Event{
		ID:    id,
		Title: "Talk",
		Venue: "Stage A",
		Start: time.Date(2024, 5, 30, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 5, 30, 11, 0, 0, 0, time.UTC),
	}
}

// runLoop runs the relay until the poller has nothing left.
func runLoop(t *testing.T, r *Relay) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	require.NoError(t, r.Loop(ctx))
}

// TestLoop_FansOutEvents gives every event to every sink in order.
func TestLoop_FansOutEvents(t *testing.T) {
	t.Parallel()

	first := &recordingSink{name: "first"}
	second := &recordingSink{name: "second"}
	poller := &scriptedPoller{results: []*announcer.PollResult{
		announcer.EventResult(event(1)),
		announcer.RefreshedResult(announcer.NoChanges),
		announcer.EventResult(event(2)),
	}}

	runLoop(t, New(poller, nil, first, second))

	require.Equal(t, []uint32{1, 2}, first.events)
	require.Equal(t, []uint32{1, 2}, second.events)
}

// TestLoop_SinkFailureDoesNotStop keeps delivering after a sink error and counts it.
func TestLoop_SinkFailureDoesNotStop(t *testing.T) {
	t.Parallel()

	broken := &recordingSink{name: "broken", fail: errors.New("offline")}
	healthy := &recordingSink{name: "healthy"}
	m := metrics.New()
	poller := &scriptedPoller{results: []*announcer.PollResult{
		announcer.EventResult(event(1)),
		announcer.EventResult(event(2)),
	}}

	runLoop(t, New(poller, m, broken, healthy))

	require.Equal(t, []uint32{1, 2}, broken.events)
	require.Equal(t, []uint32{1, 2}, healthy.events)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `schedule_relay_announcements_total{result="error",sink="broken",size="full"} 2`)
	require.Contains(t, string(body), `schedule_relay_announcements_total{result="success",sink="healthy",size="full"} 2`)
}

// TestLoop_NotifiesChanges tells change listeners only when the schedule changed.
func TestLoop_NotifiesChanges(t *testing.T) {
	t.Parallel()

	listener := &notifyingSink{recordingSink: recordingSink{name: "listener"}}
	plain := &recordingSink{name: "plain"}
	poller := &scriptedPoller{results: []*announcer.PollResult{
		announcer.RefreshedResult(announcer.NoChanges),
		announcer.RefreshedResult(announcer.Changes),
		announcer.RefreshedResult(announcer.Changes),
	}}

	runLoop(t, New(poller, nil, listener, plain))

	require.Equal(t, 2, listener.changes)
	require.Empty(t, plain.events)
}

// TestLoop_PollError returns a poll failure that is not a cancellation.
func TestLoop_PollError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	poller := &scriptedPoller{err: boom}

	err := New(poller, nil).Loop(context.Background())
	require.ErrorIs(t, err, boom)
}
