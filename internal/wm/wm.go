// Package wm holds the window and focus model shared by the display
// backend, the search engine and the supervisor.
package wm

import "time"

// Window is an X11 window identifier. Windows are created and destroyed by
// the display server; a Window value carries no ownership.
type Window uint32

// None is the null window.
const None Window = 0

// FocusState describes whether a window holds input focus.
type FocusState int

const (
	FocusUnknown FocusState = iota
	Focused
	Unfocused
)

func (s FocusState) String() string {
	switch s {
	case Focused:
		return "focused"
	case Unfocused:
		return "unfocused"
	default:
		return "unknown"
	}
}

// FocusEvent is an accepted focus transition on a tracked window.
type FocusEvent struct {
	Window Window     `json:"window"`
	State  FocusState `json:"state"`
	Time   time.Time  `json:"time"`
}

// Info is a human-readable window description, used by the CLI output.
type Info struct {
	ID        uint32 `json:"id"`
	Title     string `json:"title"`
	Class     string `json:"class"`
	ClassName string `json:"class_name"`
	PID       int    `json:"pid"`
	Desktop   int64  `json:"desktop"`
	Visible   bool   `json:"visible"`
}
