package format

import (
	"fmt"
	"io"
	"slices"

	"github.com/olekukonko/tablewriter"

	"github.com/oshokin/emf-schedule/internal/domain/schedule"
)

// DefaultMaxWidth is the table width used when none is given.
const DefaultMaxWidth = 120

// Events writes a table of events with the given columns.
func Events(w io.Writer, events []schedule.Event, columns []Column, maxWidth int) error {
	if len(columns) == 0 {
		columns = DefaultColumns()
	}

	headers := make([]any, len(columns))
	for i, column := range columns {
		headers[i] = column.Header()
	}

	rows := make([][]any, 0, len(events))

	for i := range events {
		row := make([]any, len(columns))
		for j, column := range columns {
			row[j] = column.Cell(&events[i])
		}

		rows = append(rows, row)
	}

	return render(w, maxWidth, headers, rows)
}

// NowAndNext writes the guide as a Venue | Now | Next table, venues in
// alphabetical order.
func NowAndNext(w io.Writer, guide *schedule.NowAndNext, maxWidth int) error {
	if _, err := fmt.Fprintf(w, "Now: %s\n", guide.Now.Format(detailsTimeLayout)); err != nil {
		return err
	}

	venues := make([]string, 0, len(guide.Guide))
	for venue := range guide.Guide {
		venues = append(venues, venue)
	}

	slices.Sort(venues)

	rows := make([][]any, 0, len(venues))

	for _, venue := range venues {
		entry := guide.Guide[venue]
		rows = append(rows, []any{venue, nowCell(entry.Now), nextCell(entry.Next)})
	}

	return render(w, maxWidth, []any{"Venue", "Now", "Next"}, rows)
}

// Venues writes one venue per line.
func Venues(w io.Writer, venues []string) error {
	for _, venue := range venues {
		if _, err := fmt.Fprintln(w, venue); err != nil {
			return err
		}
	}

	return nil
}

// nowCell shows when the running event ends.
func nowCell(events []schedule.Event) string {
	if len(events) == 0 {
		return ""
	}

	e := events[0]

	return fmt.Sprintf(">%s [%d] %s", e.End.Format(clockLayout), e.ID, e.Title)
}

// nextCell shows when the next event starts.
func nextCell(events []schedule.Event) string {
	if len(events) == 0 {
		return ""
	}

	e := events[0]

	return fmt.Sprintf("@%s [%d] %s", e.Start.Format(clockLayout), e.ID, e.Title)
}

func render(w io.Writer, maxWidth int, headers []any, rows [][]any) error {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}

	table := tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{MaxWidth: maxWidth}))
	table.Header(headers...)

	for _, row := range rows {
		if err := table.Append(row...); err != nil {
			return fmt.Errorf("append row: %w", err)
		}
	}

	return table.Render()
}
