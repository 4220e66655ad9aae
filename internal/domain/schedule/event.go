package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Kind is the upstream event type.
type Kind string

const (
	// KindTalk is a talk on one of the stages.
	KindTalk Kind = "talk"
	// KindWorkshop is a hands-on workshop, see Workshop for extra fields.
	KindWorkshop Kind = "workshop"
	// KindYouthWorkshop is a workshop aimed at younger attendees.
	KindYouthWorkshop Kind = "youthworkshop"
	// KindPerformance is a performance or show.
	KindPerformance Kind = "performance"
)

// String returns the human readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindTalk:
		return "Talk"
	case KindWorkshop:
		return "Workshop"
	case KindYouthWorkshop:
		return "Youth Workshop"
	case KindPerformance:
		return "Performance"
	default:
		return string(k)
	}
}

// Workshop holds the fields only workshops carry.
type Workshop struct {
	Cost string `json:"cost"`
	// Equiptment keeps the upstream spelling.
	Equiptment *string `json:"equiptment"`
	AgeRange   string  `json:"age_range"`
	Attendees  *string `json:"attendees"`
}

// RelativeTime places an event relative to a point in time.
type RelativeTime string

const (
	// Past means the event ended before the point in time.
	Past RelativeTime = "Past"
	// Now means the point in time falls within the event.
	Now RelativeTime = "Now"
	// Future means the event starts after the point in time.
	Future RelativeTime = "Future"
)

var (
	// ErrInvalidTimes reports an event whose end precedes its start.
	ErrInvalidTimes = errors.New("event ends before it starts")
	// ErrMissingID reports an upstream event without an id.
	ErrMissingID = errors.New("event has no id")
)

// Event is a single schedule entry.
type Event struct {
	ID               uint32
	Slug             string
	Start            time.Time
	End              time.Time
	Venue            string
	MapLink          *string
	Title            string
	Speaker          string
	Pronouns         *string
	Description      string
	Kind             Kind
	Workshop         *Workshop
	MayRecord        *bool
	IsFamilyFriendly *bool
	Link             string
	// Extra keeps every upstream field not modelled above.
	Extra map[string]any
}

// wireEvent mirrors the upstream JSON document.
type wireEvent struct {
	ID               uint32  `json:"id"`
	Slug             string  `json:"slug"`
	StartDate        string  `json:"start_date"`
	EndDate          string  `json:"end_date"`
	Venue            string  `json:"venue"`
	MapLink          *string `json:"map_link"`
	Title            string  `json:"title"`
	Speaker          string  `json:"speaker"`
	Pronouns         *string `json:"pronouns"`
	Description      string  `json:"description"`
	Type             Kind    `json:"type"`
	Cost             string  `json:"cost"`
	Equiptment       *string `json:"equiptment"`
	AgeRange         string  `json:"age_range"`
	Attendees        *string `json:"attendees"`
	MayRecord        *bool   `json:"may_record"`
	IsFamilyFriendly *bool   `json:"is_family_friendly"`
	Link             string  `json:"link"`
}

//nolint:gochecknoglobals // Read-only key sets.
var (
	commonKeys = []string{
		"id", "slug", "start_date", "end_date", "venue", "map_link", "title",
		"speaker", "pronouns", "description", "type", "may_record",
		"is_family_friendly", "link",
	}
	workshopKeys = []string{"cost", "equiptment", "age_range", "attendees"}
)

// UnmarshalJSON decodes an upstream event, parsing both timestamps and
// collecting unknown fields into Extra.
func (e *Event) UnmarshalJSON(data []byte) error {
	var wire wireEvent
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	if id, ok := fields["id"]; !ok || string(id) == "null" {
		return ErrMissingID
	}

	start, err := ParseTimestamp(wire.StartDate)
	if err != nil {
		return fmt.Errorf("event %d start_date: %w", wire.ID, err)
	}

	end, err := ParseTimestamp(wire.EndDate)
	if err != nil {
		return fmt.Errorf("event %d end_date: %w", wire.ID, err)
	}

	*e = Event{
		ID:               wire.ID,
		Slug:             wire.Slug,
		Start:            start,
		End:              end,
		Venue:            wire.Venue,
		MapLink:          noneAsEmpty(wire.MapLink),
		Title:            wire.Title,
		Speaker:          wire.Speaker,
		Pronouns:         noneAsEmpty(wire.Pronouns),
		Description:      wire.Description,
		Kind:             wire.Type,
		MayRecord:        wire.MayRecord,
		IsFamilyFriendly: wire.IsFamilyFriendly,
		Link:             wire.Link,
	}

	for _, key := range commonKeys {
		delete(fields, key)
	}

	if wire.Type == KindWorkshop {
		e.Workshop = &Workshop{
			Cost:       wire.Cost,
			Equiptment: wire.Equiptment,
			AgeRange:   wire.AgeRange,
			Attendees:  wire.Attendees,
		}

		for _, key := range workshopKeys {
			delete(fields, key)
		}
	}

	if len(fields) == 0 {
		return nil
	}

	e.Extra = make(map[string]any, len(fields))

	for key, raw := range fields {
		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			return fmt.Errorf("event %d field %q: %w", wire.ID, key, err)
		}

		e.Extra[key] = value
	}

	return nil
}

// MarshalJSON encodes the event back into the upstream shape, Extra included.
func (e Event) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(commonKeys)+len(workshopKeys)+len(e.Extra))

	for key, value := range e.Extra {
		out[key] = value
	}

	out["id"] = e.ID
	out["slug"] = e.Slug
	out["start_date"] = FormatTimestamp(e.Start)
	out["end_date"] = FormatTimestamp(e.End)
	out["venue"] = e.Venue
	out["map_link"] = emptyAsNone(e.MapLink)
	out["title"] = e.Title
	out["speaker"] = e.Speaker
	out["pronouns"] = emptyAsNone(e.Pronouns)
	out["description"] = e.Description
	out["type"] = e.Kind
	out["may_record"] = e.MayRecord
	out["is_family_friendly"] = e.IsFamilyFriendly
	out["link"] = e.Link

	e.Workshop.flatten(out)

	return json.Marshal(out)
}

// Validate reports ErrInvalidTimes when the event ends before it starts.
func (e *Event) Validate() error {
	if e.End.Before(e.Start) {
		return fmt.Errorf("event %d: %w", e.ID, ErrInvalidTimes)
	}

	return nil
}

// Duration returns how long the event runs.
func (e *Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// RelativeTo places the event relative to t. Both ends are inclusive for Now.
func (e *Event) RelativeTo(t time.Time) RelativeTime {
	switch {
	case e.End.Before(t):
		return Past
	case e.Start.After(t):
		return Future
	default:
		return Now
	}
}

// Equal reports whether both events carry the same data. Instants are
// compared with time.Time.Equal so differing zone pointers do not matter.
func (e *Event) Equal(other *Event) bool {
	if e == nil || other == nil {
		return e == other
	}

	return e.ID == other.ID &&
		e.Slug == other.Slug &&
		e.Start.Equal(other.Start) &&
		e.End.Equal(other.End) &&
		e.Venue == other.Venue &&
		equalPtr(e.MapLink, other.MapLink) &&
		e.Title == other.Title &&
		e.Speaker == other.Speaker &&
		equalPtr(e.Pronouns, other.Pronouns) &&
		e.Description == other.Description &&
		e.Kind == other.Kind &&
		equalWorkshop(e.Workshop, other.Workshop) &&
		equalPtr(e.MayRecord, other.MayRecord) &&
		equalPtr(e.IsFamilyFriendly, other.IsFamilyFriendly) &&
		e.Link == other.Link &&
		equalExtra(e.Extra, other.Extra)
}

// Compare orders events canonically: ascending start, ties broken by venue.
func Compare(a, b *Event) int {
	if c := a.Start.Compare(b.Start); c != 0 {
		return c
	}

	return strings.Compare(a.Venue, b.Venue)
}

func noneAsEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}

	return s
}

func emptyAsNone(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}

func equalWorkshop(a, b *Workshop) bool {
	if a == nil || b == nil {
		return a == b
	}

	return a.Cost == b.Cost &&
		equalPtr(a.Equiptment, b.Equiptment) &&
		a.AgeRange == b.AgeRange &&
		equalPtr(a.Attendees, b.Attendees)
}

func equalExtra(a, b map[string]any) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}

	return reflect.DeepEqual(a, b)
}
