package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"

	domain "github.com/oshokin/emf-schedule/internal/domain/schedule"
	"github.com/oshokin/emf-schedule/internal/logger"
	"github.com/oshokin/emf-schedule/internal/metrics"
	repository "github.com/oshokin/emf-schedule/internal/repository/schedule"
)

// Endpoint labels used for request metrics.
const (
	EndpointSchedule   = "schedule"
	EndpointNowAndNext = "now_and_next"
	EndpointVenues     = "venues"
)

const scheduleCacheKey = "schedule"

// errBadQuery marks query parameters that could not be parsed.
var errBadQuery = errors.New("bad query")

// Handler answers schedule queries from a Source, optionally caching the
// upstream document.
type Handler struct {
	source  repository.Source
	cache   *cache.Cache
	metrics *metrics.Metrics
	// now returns the current time, replaced in tests.
	now func() time.Time
}

// NewHandler creates a handler. A zero ttl disables caching.
func NewHandler(source repository.Source, ttl time.Duration, m *metrics.Metrics) *Handler {
	h := &Handler{
		source:  source,
		metrics: m,
		now:     time.Now,
	}

	if ttl > 0 {
		h.cache = cache.New(ttl, 2*ttl)
	}

	return h
}

// Routes builds the router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/schedule", h.schedule)
	r.Get("/now-and-next", h.nowAndNext)
	r.Get("/venues", h.venues)
	r.Get("/healthz", Healthz)
	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())

	return r
}

func (h *Handler) schedule(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithName(r.Context(), "adapter")
	h.metrics.AdapterRequest(EndpointSchedule)

	mutators, err := scheduleMutators(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	snapshot, ok := h.fetch(ctx, w)
	if !ok {
		return
	}

	writeJSON(ctx, w, mutators.Apply(snapshot.Events))
}

func (h *Handler) nowAndNext(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithName(r.Context(), "adapter")
	h.metrics.AdapterRequest(EndpointNowAndNext)

	query := r.URL.Query()

	mutators, err := nowAndNextMutators(query)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	now, err := optionalTime(query, "now")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if now.IsZero() {
		now = h.now()
	}

	snapshot, ok := h.fetch(ctx, w)
	if !ok {
		return
	}

	filtered := domain.New(mutators.Apply(snapshot.Events))

	writeJSON(ctx, w, filtered.NowAndNext(now))
}

func (h *Handler) venues(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithName(r.Context(), "adapter")
	h.metrics.AdapterRequest(EndpointVenues)

	snapshot, ok := h.fetch(ctx, w)
	if !ok {
		return
	}

	writeJSON(ctx, w, snapshot.Venues())
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

// fetch returns the upstream schedule, answering 500 itself on failure.
// The returned snapshot is shared with the cache and must not be modified.
func (h *Handler) fetch(ctx context.Context, w http.ResponseWriter) (*domain.Schedule, bool) {
	if h.cache != nil {
		if cached, found := h.cache.Get(scheduleCacheKey); found {
			if snapshot, ok := cached.(*domain.Schedule); ok {
				return snapshot, true
			}
		}
	}

	snapshot, err := h.source.Fetch(ctx)
	if err != nil {
		logger.ErrorKV(ctx, "Upstream schedule unavailable", "error", err)
		h.metrics.UpstreamFailure()
		writeError(w, http.StatusInternalServerError, errors.New("upstream schedule unavailable"))

		return nil, false
	}

	if h.cache != nil {
		h.cache.SetDefault(scheduleCacheKey, snapshot)
	}

	return snapshot, true
}

// scheduleMutators turns /schedule parameters into a pipeline: sort, fake
// epoch, starts after, starts before, ends after, venues.
func scheduleMutators(query url.Values) (domain.Mutators, error) {
	mutators := domain.Mutators{domain.SortedByStartTime()}

	epoch, err := optionalTime(query, "fake_epoch")
	if err != nil {
		return nil, err
	}

	if !epoch.IsZero() {
		mutators = append(mutators, domain.FakeStartEpoch(epoch))
	}

	for _, step := range []struct {
		param string
		build func(time.Time) domain.Mutator
	}{
		{param: "starting_after", build: domain.StartsAfter},
		{param: "starting_before", build: domain.StartsBefore},
		{param: "ending_after", build: domain.EndsAfter},
	} {
		t, err := optionalTime(query, step.param)
		if err != nil {
			return nil, err
		}

		if !t.IsZero() {
			mutators = append(mutators, step.build(t))
		}
	}

	if venues, ok := query["venue"]; ok {
		mutators = append(mutators, domain.AtVenues(venues...))
	}

	return mutators, nil
}

// nowAndNextMutators turns /now-and-next parameters into a pipeline: sort,
// fake epoch, venues.
func nowAndNextMutators(query url.Values) (domain.Mutators, error) {
	mutators := domain.Mutators{domain.SortedByStartTime()}

	epoch, err := optionalTime(query, "fake_epoch")
	if err != nil {
		return nil, err
	}

	if !epoch.IsZero() {
		mutators = append(mutators, domain.FakeStartEpoch(epoch))
	}

	if venues, ok := query["venue"]; ok {
		mutators = append(mutators, domain.AtVenues(venues...))
	}

	return mutators, nil
}

// optionalTime parses an RFC3339 parameter, returning the zero time when absent.
func optionalTime(query url.Values, name string) (time.Time, error) {
	raw := query.Get(name)
	if raw == "" {
		return time.Time{}, nil
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be an RFC3339 timestamp", errBadQuery, name)
	}

	return t, nil
}

func writeJSON(ctx context.Context, w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.WarnKV(ctx, "Failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
