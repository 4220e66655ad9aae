package listing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/oshokin/emf-schedule/internal/cmdutil"
	"github.com/oshokin/emf-schedule/internal/config"
	domain "github.com/oshokin/emf-schedule/internal/domain/schedule"
	"github.com/oshokin/emf-schedule/internal/format"
	repository "github.com/oshokin/emf-schedule/internal/repository/schedule"
)

// ErrEventNotFound is returned by Details for an unknown event ID.
var ErrEventNotFound = errors.New("event not found")

// TableOptions shape listing tables.
type TableOptions struct {
	// Venues limits the listing to these venues when not empty.
	Venues []string
	// Columns are the table columns, the defaults when empty.
	Columns []format.Column
	// MaxWidth caps the table width.
	MaxWidth int
}

// Lister fetches the schedule and prints views of it.
type Lister struct {
	source repository.Source
	out    io.Writer
}

// New creates a lister printing to out.
func New(source repository.Source, out io.Writer) *Lister {
	return &Lister{source: source, out: out}
}

// Options selects the upstream for the CLI. Non-empty fields override the
// configuration file.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// URL overrides the upstream schedule location.
	URL string
	// LogLevel overrides the configured log level.
	LogLevel string
}

// NewFromConfig builds a lister over the configured upstream.
func NewFromConfig(opts *Options, out io.Writer) (*Lister, error) {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	if opts.URL != "" {
		settings.APIURL = opts.URL
	}

	if opts.LogLevel != "" {
		settings.LogLevel = opts.LogLevel
	}

	if err = config.Validate(settings); err != nil {
		return nil, fmt.Errorf("validate configuration: %w", err)
	}

	if err = cmdutil.ConfigureLogger(settings.LogLevel); err != nil {
		return nil, err
	}

	return New(repository.NewHTTPSource(settings.APIURL, repository.WithTimeout(settings.Timeout)), out), nil
}

// Full prints every event in start order.
func (l *Lister) Full(ctx context.Context, opts TableOptions) error {
	s, err := l.fetch(ctx, venueFilter(opts.Venues, domain.SortedByStartTime()))
	if err != nil {
		return err
	}

	return format.Events(l.out, s.Events, opts.Columns, opts.MaxWidth)
}

// Upcoming prints events that have not finished by now.
func (l *Lister) Upcoming(ctx context.Context, opts TableOptions, now time.Time) error {
	s, err := l.fetch(ctx, venueFilter(opts.Venues, domain.EndsAfter(now), domain.SortedByStartTime()))
	if err != nil {
		return err
	}

	return format.Events(l.out, s.Events, opts.Columns, opts.MaxWidth)
}

// NowNext prints the per-venue guide at now.
func (l *Lister) NowNext(ctx context.Context, opts TableOptions, now time.Time) error {
	s, err := l.fetch(ctx, venueFilter(opts.Venues, domain.SortedByStartTime()))
	if err != nil {
		return err
	}

	return format.NowAndNext(l.out, s.NowAndNext(now), opts.MaxWidth)
}

// Details prints the card of the event with the given ID.
func (l *Lister) Details(ctx context.Context, id uint32, colored bool) error {
	s, err := l.fetch(ctx, nil)
	if err != nil {
		return err
	}

	e, ok := s.FindByID(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrEventNotFound, id)
	}

	return format.Details(l.out, &e, colored)
}

// Venues prints the venue names.
func (l *Lister) Venues(ctx context.Context) error {
	s, err := l.fetch(ctx, nil)
	if err != nil {
		return err
	}

	return format.Venues(l.out, s.Venues())
}

func (l *Lister) fetch(ctx context.Context, mutators domain.Mutators) (*domain.Schedule, error) {
	s, err := l.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	s.Mutate(mutators)

	return s, nil
}

// venueFilter prepends a venue filter when venues are given.
func venueFilter(venues []string, rest ...domain.Mutator) domain.Mutators {
	if len(venues) == 0 {
		return rest
	}

	return append(domain.Mutators{domain.AtVenues(venues...)}, rest...)
}
