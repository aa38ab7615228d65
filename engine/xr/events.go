package xr

import (
	"github.com/yohamta/donburi/features/events"
)

// SessionInitialized is published once a session is bound and its frame loop is running.
type SessionInitialized struct {
	Mode   Mode
	Origin Origin
}

// SessionEnded is published when the platform ends the running session.
type SessionEnded struct {
	Mode Mode
}

var (
	// SessionInitializedEvent carries SessionInitialized through the engine world.
	SessionInitializedEvent = events.NewEventType[SessionInitialized]()
	// SessionEndedEvent carries SessionEnded through the engine world.
	SessionEndedEvent = events.NewEventType[SessionEnded]()
)
