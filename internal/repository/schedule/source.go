package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	domain "github.com/oshokin/emf-schedule/internal/domain/schedule"
	"github.com/oshokin/emf-schedule/internal/logger"
	"github.com/oshokin/emf-schedule/internal/version"
)

// Source yields the current schedule snapshot.
type Source interface {
	Fetch(ctx context.Context) (*domain.Schedule, error)
}

// ErrFetch wraps every failure to obtain a snapshot: transport, status and decoding.
var ErrFetch = errors.New("fetch schedule")

// maxBodySize caps the upstream response size.
const maxBodySize = 32 << 20

// HTTPSource fetches the schedule with an HTTP GET. It holds no mutable
// state and is safe for concurrent use.
type HTTPSource struct {
	// url is the schedule document location.
	url string
	// client performs the requests.
	client *http.Client
}

// Option configures an HTTPSource.
type Option func(*HTTPSource)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *HTTPSource) {
		if client != nil {
			s.client = client
		}
	}
}

// WithTimeout sets the request timeout on a copy of the underlying client,
// leaving a client passed to WithHTTPClient untouched.
func WithTimeout(timeout time.Duration) Option {
	return func(s *HTTPSource) {
		if timeout > 0 {
			client := *s.client
			client.Timeout = timeout
			s.client = &client
		}
	}
}

// NewHTTPSource creates a source reading the schedule from url.
func NewHTTPSource(url string, opts ...Option) *HTTPSource {
	source := &HTTPSource{
		url:    url,
		client: &http.Client{},
	}

	for _, opt := range opts {
		opt(source)
	}

	return source
}

// URL returns the configured schedule location.
func (s *HTTPSource) URL() string {
	return s.url
}

// Fetch downloads and decodes the schedule. Events that end before they
// start are kept and logged.
func (s *HTTPSource) Fetch(ctx context.Context) (*domain.Schedule, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrFetch, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))

		return nil, fmt.Errorf("%w: unexpected status %s", ErrFetch, resp.Status)
	}

	var events []domain.Event
	if err = json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&events); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrFetch, err)
	}

	for i := range events {
		if err = events[i].Validate(); err != nil {
			logger.WarnKV(ctx, "Upstream event is inconsistent", "id", events[i].ID, "error", err)
		}
	}

	logger.DebugKV(ctx, "Fetched schedule", "url", s.url, "events", len(events))

	return domain.New(events), nil
}
