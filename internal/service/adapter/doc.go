// Package adapter runs the schedule-adapter HTTP service, which serves
// filtered views of the upstream schedule.
package adapter
