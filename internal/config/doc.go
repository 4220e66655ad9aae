// Package config defines the settings shared by the schedule binaries and
// provides helpers to load, validate and save them in YAML format.
//
// Config holds the upstream schedule location and timing, the announcer
// listeners, the MQTT broker and the HTTP adapter settings.
package config
