package announcer

import (
	"context"
	"fmt"
	"time"

	"github.com/oshokin/emf-schedule/internal/domain/schedule"
	"github.com/oshokin/emf-schedule/internal/logger"
	"github.com/oshokin/emf-schedule/internal/metrics"
	repository "github.com/oshokin/emf-schedule/internal/repository/schedule"
)

// ScheduleChanges tells whether a refresh produced a different snapshot.
type ScheduleChanges int

const (
	// NoChanges means the refreshed snapshot equals the previous one.
	NoChanges ScheduleChanges = iota
	// Changes means the refreshed snapshot differs from the previous one.
	Changes
)

// String implements fmt.Stringer.
func (c ScheduleChanges) String() string {
	if c == Changes {
		return "Changes"
	}

	return "NoChanges"
}

// ResultKind discriminates PollResult.
type ResultKind int

const (
	// ResultEvent carries an event that is due.
	ResultEvent ResultKind = iota + 1
	// ResultScheduleRefreshed reports a completed refresh.
	ResultScheduleRefreshed
)

// PollResult is what a single Poll produced. Event is set for ResultEvent,
// Changes for ResultScheduleRefreshed.
type PollResult struct {
	Kind    ResultKind
	Event   schedule.Event
	Changes ScheduleChanges
}

// EventResult wraps a due event.
func EventResult(e schedule.Event) *PollResult {
	return &PollResult{Kind: ResultEvent, Event: e}
}

// RefreshedResult wraps a refresh outcome.
func RefreshedResult(c ScheduleChanges) *PollResult {
	return &PollResult{Kind: ResultScheduleRefreshed, Changes: c}
}

// String implements fmt.Stringer.
func (r *PollResult) String() string {
	switch r.Kind {
	case ResultEvent:
		return fmt.Sprintf("Event(%d)", r.Event.ID)
	case ResultScheduleRefreshed:
		return fmt.Sprintf("ScheduleRefreshed(%s)", r.Changes)
	default:
		return "Unknown"
	}
}

// Announcer hands out due events one at a time, refreshing the schedule in
// between. Poll must not be called concurrently.
type Announcer struct {
	settings Settings
	source   repository.Source
	metrics  *metrics.Metrics

	// snapshot is the current canonically sorted schedule.
	snapshot *schedule.Schedule
	// last marks the most recently delivered event, nil before the first one.
	last *marker
	// refresh fires every settings.RefreshInterval.
	refresh *time.Ticker
}

// Option configures an Announcer.
type Option func(*Announcer)

// WithMetrics records announcer metrics into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Announcer) {
		a.metrics = m
	}
}

// New fetches the first snapshot and starts the refresh ticker. The first
// refresh happens one full interval after New returns.
func New(ctx context.Context, settings Settings, source repository.Source, opts ...Option) (*Announcer, error) {
	a := &Announcer{
		settings: settings.withDefaults(),
		source:   source,
	}

	for _, opt := range opts {
		opt(a)
	}

	snapshot, err := a.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("initial schedule: %w", err)
	}

	a.snapshot = snapshot
	a.refresh = time.NewTicker(a.settings.RefreshInterval)

	logger.InfoKV(ctx, "Announcer started",
		"events", len(snapshot.Events),
		"refresh_interval", a.settings.RefreshInterval.String(),
		"start_offset", a.settings.StartOffset.String())

	return a, nil
}

// Close stops the refresh ticker.
func (a *Announcer) Close() {
	a.refresh.Stop()
}

// Schedule returns the current snapshot. Callers must not modify it.
func (a *Announcer) Schedule() *schedule.Schedule {
	return a.snapshot
}

// Poll blocks until either the next event is due or the schedule has been
// refreshed. Failed refreshes are logged and waited out. The only error
// returned is the context error, in which case no state has changed.
func (a *Announcer) Poll(ctx context.Context) (*PollResult, error) {
	for {
		candidate, rule := nextEvent(a.snapshot.Events, a.settings.StartOffset, a.last, time.Now())

		wait := idleRecheckInterval

		if candidate != nil {
			var overdue bool

			wait, overdue = WaitDuration(time.Now(), a.settings.StartOffset, candidate.Start)
			if overdue {
				logger.WarnKV(ctx, "Next event is already overdue", "id", candidate.ID, "start", candidate.Start)
			}

			logger.DebugKV(ctx, "Next event selected", "id", candidate.ID, "rule", string(rule), "wait", wait.String())
		} else {
			logger.DebugKV(ctx, "No event pending", "rule", string(rule), "recheck", wait.String())
		}

		a.metrics.TimeToNextEvent(wait)

		result, err := a.race(ctx, candidate, wait)
		if err != nil {
			return nil, err
		}

		if result != nil {
			return result, nil
		}
	}
}

// race waits for whichever of the refresh tick, the event timer or ctx comes
// first. It returns nil, nil when the iteration produced nothing to report.
func (a *Announcer) race(ctx context.Context, candidate *schedule.Event, wait time.Duration) (*PollResult, error) {
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-a.refresh.C:
		changes, err := a.update(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}

			logger.WarnKV(ctx, "Failed to refresh schedule", "error", err)
			a.metrics.ScheduleUpdated(metrics.ResultError, metrics.ChangesNA)

			return nil, nil
		}

		return RefreshedResult(changes), nil
	case <-timer.C:
		if candidate == nil {
			return nil, nil
		}

		a.last = markerOf(candidate)
		a.metrics.EventAnnounced()

		return EventResult(*candidate), nil
	}
}

// update replaces the snapshot with a fresh one.
func (a *Announcer) update(ctx context.Context) (ScheduleChanges, error) {
	snapshot, err := a.fetch(ctx)
	if err != nil {
		return NoChanges, err
	}

	changes := NoChanges
	if !a.snapshot.Equal(snapshot) {
		changes = Changes
	}

	a.snapshot = snapshot

	if changes == Changes {
		logger.InfoKV(ctx, "Schedule changed", "events", len(snapshot.Events))
		a.metrics.ScheduleUpdated(metrics.ResultSuccess, metrics.ChangesYes)
	} else {
		logger.Debug(ctx, "Schedule unchanged")
		a.metrics.ScheduleUpdated(metrics.ResultSuccess, metrics.ChangesNo)
	}

	return changes, nil
}

func (a *Announcer) fetch(ctx context.Context) (*schedule.Schedule, error) {
	snapshot, err := a.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	snapshot.Sort()

	return snapshot, nil
}
