// Package relay runs the schedule-announcer service: it drives the
// announcer loop and fans every delivered event out to MQTT, WebSocket
// displays and gRPC subscribers.
package relay
