package schedule

import (
	"encoding/json"
	"time"
)

// Smol is the compact form of an event sent to small displays such as LED
// matrix signs. Workshops also carry their workshop fields, flattened next
// to the others.
type Smol struct {
	ID       uint32
	Type     Kind
	Start    time.Time
	End      time.Time
	Venue    string
	Title    string
	Speaker  string
	Workshop *Workshop
}

// Smol returns the compact form of e.
func (e *Event) Smol() Smol {
	return Smol{
		ID:       e.ID,
		Type:     e.Kind,
		Start:    e.Start,
		End:      e.End,
		Venue:    e.Venue,
		Title:    e.Title,
		Speaker:  e.Speaker,
		Workshop: e.Workshop,
	}
}

// MarshalJSON encodes the compact form with the workshop fields flattened.
func (s Smol) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.fields(s.Start, s.End))
}

// Fields returns s as a plain map with RFC3339 timestamps and no pointers,
// suitable for generic structured encodings.
func (s Smol) Fields() map[string]any {
	return s.fields(FormatTimestamp(s.Start), FormatTimestamp(s.End))
}

func (s Smol) fields(start, end any) map[string]any {
	out := map[string]any{
		"id":      s.ID,
		"type":    string(s.Type),
		"start":   start,
		"end":     end,
		"venue":   s.Venue,
		"title":   s.Title,
		"speaker": s.Speaker,
	}

	s.Workshop.flatten(out)

	return out
}

// flatten adds the workshop keys to out. A nil workshop adds nothing.
func (w *Workshop) flatten(out map[string]any) {
	if w == nil {
		return
	}

	out["cost"] = w.Cost
	out["equiptment"] = optional(w.Equiptment)
	out["age_range"] = w.AgeRange
	out["attendees"] = optional(w.Attendees)
}

// optional unwraps p, nil when absent.
func optional(p *string) any {
	if p == nil {
		return nil
	}

	return *p
}
