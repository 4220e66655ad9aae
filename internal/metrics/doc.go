// Package metrics owns the Prometheus collectors shared by the schedule
// binaries and exposes them over HTTP.
package metrics
