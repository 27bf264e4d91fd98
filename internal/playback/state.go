package playback

import "slices"

// StateType represents the current state of the player.
type StateType int

const (
	// StateIdle indicates nothing is being spoken.
	StateIdle StateType = iota
	// StateRequesting indicates an utterance was submitted but the engine
	// has not confirmed it started.
	StateRequesting
	// StatePlaying indicates the engine is speaking.
	StatePlaying
	// StatePaused indicates speech is paused mid-utterance.
	StatePaused
	// StateError indicates the last request never started.
	StateError
)

// String returns the string representation of the state.
func (s StateType) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Active reports whether a session exists in this state.
func (s StateType) Active() bool {
	return s == StateRequesting || s == StatePlaying || s == StatePaused
}

// transitions lists the valid next states for each state. Entering
// Requesting from an active state supersedes the current session.
var transitions = map[StateType][]StateType{
	StateIdle:       {StateRequesting},
	StateRequesting: {StatePlaying, StateIdle, StateError, StateRequesting},
	StatePlaying:    {StatePaused, StateIdle, StateRequesting},
	StatePaused:     {StatePlaying, StateIdle, StateRequesting},
	StateError:      {StateRequesting, StateIdle},
}

// CanTransition reports whether moving from one state to another is allowed.
func CanTransition(from, to StateType) bool {
	return slices.Contains(transitions[from], to)
}
