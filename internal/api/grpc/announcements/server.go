package announcements

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/emf-schedule/internal/logger"
)

// subscriberBuffer is how many announcements a subscriber may lag behind
// before new ones are dropped for it.
const subscriberBuffer = 16

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("announcement server closed")

// Server fans published announcements out to every open Subscribe stream.
type Server struct {
	// mu protects subscribers, nextID and closed.
	mu          sync.Mutex
	subscribers map[uint64]chan *structpb.Struct
	nextID      uint64
	closed      bool
	// done is closed by Close to end every stream.
	done chan struct{}
}

// NewServer creates a server with no subscribers.
func NewServer() *Server {
	return &Server{
		subscribers: make(map[uint64]chan *structpb.Struct),
		done:        make(chan struct{}),
	}
}

// Publish sends fields to every subscriber. Subscribers whose buffer is
// full miss this announcement. It returns the number of subscribers that
// received it.
func (s *Server) Publish(_ context.Context, fields map[string]any) (int, error) {
	message, err := structpb.NewStruct(fields)
	if err != nil {
		return 0, fmt.Errorf("encode announcement: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}

	delivered := 0

	for _, ch := range s.subscribers {
		select {
		case ch <- message:
			delivered++
		default:
		}
	}

	return delivered, nil
}

// Subscribers returns the number of open streams.
func (s *Server) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.subscribers)
}

// Close ends every stream and rejects further publishing.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.closed = true
	close(s.done)
}

// Subscribe streams announcements until the client goes away or the server closes.
func (s *Server) Subscribe(_ *emptypb.Empty, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	id, ch, err := s.add()
	if err != nil {
		return status.Error(codes.Unavailable, err.Error())
	}
	defer s.remove(id)

	ctx := logger.WithKV(logger.WithName(stream.Context(), "announcement-stream"), "subscriber", id)

	logger.Debug(ctx, "Subscriber attached")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.done:
			return flush(stream, ch)
		case message := <-ch:
			if err := stream.Send(message); err != nil {
				logger.WarnKV(ctx, "Failed to send announcement", "error", err)
				return err
			}
		}
	}
}

func (s *Server) add() (uint64, chan *structpb.Struct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, nil, ErrClosed
	}

	s.nextID++
	ch := make(chan *structpb.Struct, subscriberBuffer)
	s.subscribers[s.nextID] = ch

	return s.nextID, ch, nil
}

func (s *Server) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.subscribers, id)
}

// flush sends whatever is still buffered for a subscriber.
func flush(stream grpc.ServerStreamingServer[structpb.Struct], ch <-chan *structpb.Struct) error {
	for {
		select {
		case message := <-ch:
			if err := stream.Send(message); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}
