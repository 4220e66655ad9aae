package format

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/oshokin/emf-schedule/internal/domain/schedule"
)

// Column is a single listing column.
type Column string

// Supported columns.
const (
	ColumnID           Column = "id"
	ColumnSlug         Column = "slug"
	ColumnType         Column = "type"
	ColumnStart        Column = "start"
	ColumnStartVerbose Column = "start-verbose"
	ColumnEnd          Column = "end"
	ColumnEndVerbose   Column = "end-verbose"
	ColumnVenue        Column = "venue"
	ColumnPresenter    Column = "presenter"
	ColumnTitle        Column = "title"
	ColumnLink         Column = "link"
)

const (
	// shortTimeLayout is the weekday and clock time.
	shortTimeLayout = "Mon 15:04"
	// verboseTimeLayout is the full date and clock time.
	verboseTimeLayout = "2006-01-02 15:04"
	// clockLayout is used in the now-and-next guide.
	clockLayout = "15:04"
)

var errUnknownColumn = errors.New("unknown column")

// AllColumns lists every supported column in display order.
func AllColumns() []Column {
	return []Column{
		ColumnID, ColumnSlug, ColumnType, ColumnStart, ColumnStartVerbose,
		ColumnEnd, ColumnEndVerbose, ColumnVenue, ColumnPresenter, ColumnTitle, ColumnLink,
	}
}

// DefaultColumns is the listing shown when no columns are requested.
func DefaultColumns() []Column {
	return []Column{ColumnID, ColumnStart, ColumnEnd, ColumnVenue, ColumnType, ColumnTitle}
}

// ParseColumns converts column names, returning the defaults for an empty list.
func ParseColumns(names []string) ([]Column, error) {
	if len(names) == 0 {
		return DefaultColumns(), nil
	}

	columns := make([]Column, 0, len(names))

	for _, name := range names {
		column := Column(strings.ToLower(strings.TrimSpace(name)))
		if !column.valid() {
			return nil, fmt.Errorf("%w: %q", errUnknownColumn, name)
		}

		columns = append(columns, column)
	}

	return columns, nil
}

func (c Column) valid() bool {
	for _, known := range AllColumns() {
		if c == known {
			return true
		}
	}

	return false
}

// Header is the table heading of the column.
func (c Column) Header() string {
	switch c {
	case ColumnID:
		return "ID"
	case ColumnSlug:
		return "Slug"
	case ColumnType:
		return "Type"
	case ColumnStart, ColumnStartVerbose:
		return "Start"
	case ColumnEnd, ColumnEndVerbose:
		return "End"
	case ColumnVenue:
		return "Venue"
	case ColumnPresenter:
		return "Presenter"
	case ColumnTitle:
		return "Title"
	case ColumnLink:
		return "Link"
	default:
		return string(c)
	}
}

// Cell renders the column for e.
func (c Column) Cell(e *schedule.Event) string {
	switch c {
	case ColumnID:
		return strconv.FormatUint(uint64(e.ID), 10)
	case ColumnSlug:
		return e.Slug
	case ColumnType:
		return e.Kind.String()
	case ColumnStart:
		return e.Start.Format(shortTimeLayout)
	case ColumnStartVerbose:
		return e.Start.Format(verboseTimeLayout)
	case ColumnEnd:
		return e.End.Format(shortTimeLayout)
	case ColumnEndVerbose:
		return e.End.Format(verboseTimeLayout)
	case ColumnVenue:
		return e.Venue
	case ColumnPresenter:
		return e.Speaker
	case ColumnTitle:
		return e.Title
	case ColumnLink:
		return e.Link
	default:
		return ""
	}
}
