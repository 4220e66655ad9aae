// Package websocket pushes announcements to display clients over WebSocket.
//
// A Hub tracks connected clients and fans broadcast messages out to them.
// Handler upgrades HTTP requests and registers the resulting clients.
package websocket
