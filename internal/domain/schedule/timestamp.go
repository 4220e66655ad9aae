package schedule

import (
	"errors"
	"fmt"
	"time"
)

// naiveLayout is the local-naive fallback format served by the upstream API.
const naiveLayout = "2006-01-02 15:04:05"

// naiveSkew is subtracted from naive timestamps before tagging them with naiveZone.
const naiveSkew = time.Hour

// ErrInvalidTimestamp is returned when a timestamp matches no supported format.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

//nolint:gochecknoglobals // Immutable fixed zone shared by all naive timestamps.
var naiveZone = time.FixedZone("", int(time.Hour/time.Second))

// ParseTimestamp parses an RFC3339 timestamp, falling back to the naive
// "YYYY-MM-DD HH:MM:SS" form. Naive values are read as UTC, moved back one
// hour and presented at +01:00, matching what the upstream schedule means.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}

	t, err := time.ParseInLocation(naiveLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
	}

	return t.Add(-naiveSkew).In(naiveZone), nil
}

// FormatTimestamp renders t as RFC3339 keeping its offset.
func FormatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339)
}
