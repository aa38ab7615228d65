package engine

import (
	"github.com/Carmen-Shannon/oxy-xr/engine/platform"
)

// Message is anything posted to the engine queue. The consumer loop handles the message types
// below and ignores anything else.
type Message any

// XRFrame is the platform frame published for exactly one update.
type XRFrame struct {
	// Time is the platform timestamp of the frame in milliseconds.
	Time float64
	// Frame is the platform frame, valid only during the update it is published for.
	Frame platform.Frame
	// ReferenceSpace is the space every pose of this session is resolved relative to.
	ReferenceSpace platform.Space
}

// DriveFrame asks the consumer to run one update with Frame published. Done is closed when the
// update has finished and the frame is retracted, including when the update panicked.
type DriveFrame struct {
	Frame XRFrame
	Done  chan struct{}
}

// NewDriveFrame creates a DriveFrame message with a fresh Done channel.
func NewDriveFrame(f XRFrame) DriveFrame {
	return DriveFrame{Frame: f, Done: make(chan struct{})}
}

// Tick asks the consumer to run one update without a frame. The self-paced runner posts it.
type Tick struct{}

// Call runs Fn on the consumer goroutine between updates. It is how work finishing on other
// goroutines touches the store or world.
type Call struct {
	Fn func(e Engine)
}

// Shutdown asks the consumer to quit.
type Shutdown struct{}
