package relay

import (
	"context"

	"github.com/oshokin/emf-schedule/internal/logger"
	"github.com/oshokin/emf-schedule/internal/metrics"
	"github.com/oshokin/emf-schedule/internal/service/announcer"
)

// Poller yields announcer results one at a time.
type Poller interface {
	Poll(ctx context.Context) (*announcer.PollResult, error)
}

// Relay forwards announcer results to sinks.
type Relay struct {
	poller  Poller
	sinks   []Sink
	metrics *metrics.Metrics
}

// New creates a relay over poller.
func New(poller Poller, m *metrics.Metrics, sinks ...Sink) *Relay {
	return &Relay{
		poller:  poller,
		sinks:   sinks,
		metrics: m,
	}
}

// Loop polls and forwards until ctx is canceled.
func (r *Relay) Loop(ctx context.Context) error {
	for {
		result, err := r.poller.Poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			return err
		}

		r.handle(ctx, result)
	}
}

// handle forwards a single result. Sink failures are logged and counted.
func (r *Relay) handle(ctx context.Context, result *announcer.PollResult) {
	switch result.Kind {
	case announcer.ResultEvent:
		e := &result.Event
		logger.InfoKV(ctx, "Announcing event", "id", e.ID, "title", e.Title, "venue", e.Venue, "start", e.Start)

		for _, sink := range r.sinks {
			name, size := sink.Labels()

			err := sink.Announce(ctx, e)
			if err != nil {
				logger.ErrorKV(ctx, "Failed to announce event", "sink", name, "size", size, "id", e.ID, "error", err)
			}

			r.metrics.Announcement(name, size, err)
		}
	case announcer.ResultScheduleRefreshed:
		logger.DebugKV(ctx, "Schedule refreshed", "changes", result.Changes.String())

		if result.Changes != announcer.Changes {
			return
		}

		for _, sink := range r.sinks {
			notifier, ok := sink.(ChangeNotifier)
			if !ok {
				continue
			}

			if err := notifier.ScheduleChanged(ctx); err != nil {
				name, _ := sink.Labels()
				logger.WarnKV(ctx, "Failed to notify schedule change", "sink", name, "error", err)
			}
		}
	}
}
