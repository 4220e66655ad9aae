// Package format renders schedule events for the terminal: listing tables,
// the now-and-next guide, venue lists and the detailed event card.
package format
