// Package schedule fetches schedule snapshots from the upstream API.
//
// Source is the interface the announcer and adapter depend on; HTTPSource is
// the production implementation backed by a plain HTTP GET of a JSON array.
package schedule
