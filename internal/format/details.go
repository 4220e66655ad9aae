package format

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/oshokin/emf-schedule/internal/domain/schedule"
)

// ColorMode decides whether the details card is coloured.
type ColorMode string

// Supported colour modes.
const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

const detailsTimeLayout = "2006-01-02 15:04:05 -07:00"

var errUnknownColorMode = errors.New("unknown color mode")

// ParseColorMode validates a colour mode name.
func ParseColorMode(s string) (ColorMode, error) {
	mode := ColorMode(strings.ToLower(s))
	switch mode {
	case ColorAuto, ColorAlways, ColorNever:
		return mode, nil
	case "":
		return ColorAuto, nil
	default:
		return "", fmt.Errorf("%w: %q", errUnknownColorMode, s)
	}
}

// Enabled reports whether output to f should be coloured. Auto colours
// terminals only.
func (m ColorMode) Enabled(f *os.File) bool {
	switch m {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return f != nil && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
	}
}

// Details writes the verbose event card followed by the description.
func Details(w io.Writer, e *schedule.Event, colored bool) error {
	paint := func(attr color.Attribute) *color.Color {
		c := color.New(attr)
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}

		return c
	}

	speaker := e.Speaker
	if e.Pronouns != nil && *e.Pronouns != "" {
		speaker = fmt.Sprintf("%s (%s)", e.Speaker, *e.Pronouns)
	}

	lines := []struct {
		attr  color.Attribute
		label string
		value string
	}{
		{color.FgMagenta, "ID/slug", fmt.Sprintf("%d / %s", e.ID, e.Slug)},
		{color.FgYellow, "Title", e.Title},
		{color.FgYellow, "Speaker", speaker},
		{color.FgGreen, "Type", e.Kind.String()},
		{color.FgBlue, "Start", e.Start.Format(detailsTimeLayout)},
		{color.FgBlue, "End", e.End.Format(detailsTimeLayout)},
		{color.FgBlue, "Duration", fmt.Sprintf("%dm", int(e.Duration().Minutes()))},
		{color.FgRed, "Venue", e.Venue},
		{color.FgMagenta, "URL", e.Link},
	}

	for _, line := range lines {
		if _, err := paint(line.attr).Fprintf(w, "%-9s: %s\n", line.label, line.value); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "\n%s\n", e.Description)

	return err
}
