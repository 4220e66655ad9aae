// Package cmdutil holds the glue shared by the cobra roots: .env loading,
// SCHEDULE_* environment overrides for flags and logger setup.
package cmdutil
