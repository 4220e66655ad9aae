// Package httpapi serves filtered schedule queries over HTTP with chi.
//
// Routes:
//
//	GET /schedule      filtered, sorted event list
//	GET /now-and-next  per-venue guide of running and upcoming events
//	GET /venues        sorted venue names
//	GET /healthz       liveness probe
//	GET /metrics       Prometheus metrics
package httpapi
