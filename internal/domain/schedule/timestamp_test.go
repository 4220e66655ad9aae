package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestParseTimestamp covers the strict RFC3339 path, the naive fallback and rejects.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		input      string
		wantUTC    time.Time
		wantOffset int
		wantErr    bool
	}{
		{
			name:       "rfc3339 utc",
			input:      "2024-05-30T10:00:00Z",
			wantUTC:    time.Date(2024, 5, 30, 10, 0, 0, 0, time.UTC),
			wantOffset: 0,
		},
		{
			name:       "rfc3339 with offset",
			input:      "2024-05-30T10:00:00+01:00",
			wantUTC:    time.Date(2024, 5, 30, 9, 0, 0, 0, time.UTC),
			wantOffset: 3600,
		},
		{
			name:       "naive fallback is skewed and tagged +01:00",
			input:      "2024-05-30 10:00:00",
			wantUTC:    time.Date(2024, 5, 30, 9, 0, 0, 0, time.UTC),
			wantOffset: 3600,
		},
		{
			name:       "naive fallback across midnight",
			input:      "2024-05-31 00:30:00",
			wantUTC:    time.Date(2024, 5, 30, 23, 30, 0, 0, time.UTC),
			wantOffset: 3600,
		},
		{name: "garbage", input: "tomorrow-ish", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "date only", input: "2024-05-30", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseTimestamp(tc.input)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidTimestamp)

				return
			}

			require.NoError(t, err)
			require.True(t, got.Equal(tc.wantUTC), "got %s", got)

			_, offset := got.Zone()
			require.Equal(t, tc.wantOffset, offset)
		})
	}
}

// TestParseTimestamp_NaiveWallClock pins the displayed wall clock of a naive timestamp.
func TestParseTimestamp_NaiveWallClock(t *testing.T) {
	t.Parallel()

	got, err := ParseTimestamp("2024-05-30 10:00:00")
	require.NoError(t, err)
	require.Equal(t, "2024-05-30T10:00:00+01:00", FormatTimestamp(got))
}
