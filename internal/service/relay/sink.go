package relay

import (
	"context"
	"fmt"

	"github.com/oshokin/emf-schedule/internal/api/grpc/announcements"
	"github.com/oshokin/emf-schedule/internal/api/websocket"
	"github.com/oshokin/emf-schedule/internal/domain/schedule"
)

// Payload sizes used as metric labels.
const (
	SizeFull = "full"
	SizeSmol = "smol"
)

// Sink receives every delivered event.
type Sink interface {
	// Labels names the sink and the payload size it sends, for metrics.
	Labels() (sink, size string)
	Announce(ctx context.Context, e *schedule.Event) error
}

// ChangeNotifier is implemented by sinks that want to hear about schedule changes.
type ChangeNotifier interface {
	ScheduleChanged(ctx context.Context) error
}

// hubSink broadcasts compact events to WebSocket displays.
type hubSink struct {
	hub *websocket.Hub
}

// NewHubSink wraps a WebSocket hub.
func NewHubSink(hub *websocket.Hub) Sink {
	return &hubSink{hub: hub}
}

func (s *hubSink) Labels() (string, string) {
	return "websocket", SizeSmol
}

func (s *hubSink) Announce(_ context.Context, e *schedule.Event) error {
	return s.hub.Broadcast(websocket.TypeEvent, e.Smol())
}

func (s *hubSink) ScheduleChanged(context.Context) error {
	return s.hub.Broadcast(websocket.TypeScheduleChanged, nil)
}

// streamSink publishes compact events to gRPC subscribers.
type streamSink struct {
	server *announcements.Server
}

// NewStreamSink wraps an announcement stream server.
func NewStreamSink(server *announcements.Server) Sink {
	return &streamSink{server: server}
}

func (s *streamSink) Labels() (string, string) {
	return "grpc", SizeSmol
}

func (s *streamSink) Announce(ctx context.Context, e *schedule.Event) error {
	if _, err := s.server.Publish(ctx, e.Smol().Fields()); err != nil {
		return fmt.Errorf("publish to subscribers: %w", err)
	}

	return nil
}
