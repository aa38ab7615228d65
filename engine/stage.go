package engine

// Stage is an ordered phase of an update.
type Stage int

const (
	// StagePreInput runs the controller and camera synchronizers.
	StagePreInput Stage = iota
	// StageInput runs the hand synchronizer and input consumers.
	StageInput
	// StageUpdate runs game logic.
	StageUpdate
	// StagePostUpdate runs rendering.
	StagePostUpdate

	stageCount
)

func (s Stage) String() string {
	switch s {
	case StagePreInput:
		return "pre-input"
	case StageInput:
		return "input"
	case StageUpdate:
		return "update"
	case StagePostUpdate:
		return "post-update"
	default:
		return "unknown"
	}
}

// System is one unit of work run in a stage every update.
type System func(ctx *UpdateContext)

type namedSystem struct {
	name string
	run  System
}
