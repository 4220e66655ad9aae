// Package schedule defines the conference schedule model: events, the
// upstream timestamp quirks, the canonical event order, snapshot equality,
// venue listings, the per-venue now-and-next guide and composable filters.
//
// Everything here is pure; fetching lives in repository/schedule and
// announcing in service/announcer.
package schedule
