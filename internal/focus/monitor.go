// Package focus tracks whether a target window holds input focus. Two
// monitor implementations satisfy the same filtering contract: one driven
// by display-server focus notifications, one polling the server-wide input
// focus at a fixed interval.
package focus

import (
	"context"
	"errors"
	"time"

	"gamewrap/internal/logger"
	"gamewrap/internal/wm"
)

// ErrTargetGone is returned by a monitor when the tracked window has been
// destroyed. The session ends rather than re-resolving the window.
var ErrTargetGone = errors.New("target window destroyed")

// Mode mirrors the X focus-notification modes.
type Mode byte

const (
	ModeNormal Mode = iota
	ModeGrab
	ModeUngrab
	ModeWhileGrabbed
)

// Detail mirrors the X focus-notification details.
type Detail byte

const (
	DetailAncestor Detail = iota
	DetailVirtual
	DetailInferior
	DetailNonlinear
	DetailNonlinearVirtual
	DetailPointer
	DetailPointerRoot
	DetailNone
)

// Notify is a raw focus-change notification as delivered by the display
// server, before filtering.
type Notify struct {
	Window    wm.Window
	Gained    bool
	Mode      Mode
	Detail    Detail
	Destroyed bool
}

// Monitor delivers accepted focus transitions for one target window,
// at-most-once and in chronological order.
type Monitor interface {
	// Next blocks until the next accepted transition. It returns
	// ErrTargetGone when the window has been destroyed and ctx.Err() when
	// the session is cancelled.
	Next(ctx context.Context) (wm.FocusEvent, error)
}

// Source delivers raw focus notifications for subscribed windows.
type Source interface {
	SubscribeFocus(wins ...wm.Window) error
	WaitFocus() (Notify, error)
}

// EventMonitor consumes focus-change notifications pushed by the display
// server.
type EventMonitor struct {
	source Source
	target wm.Window
	state  wm.FocusState
}

// NewEventMonitor subscribes to focus changes on target. The initial state
// seeds transition deduplication; pass wm.FocusUnknown to accept the first
// notification of either direction.
func NewEventMonitor(source Source, target wm.Window, initial wm.FocusState) (*EventMonitor, error) {
	if err := source.SubscribeFocus(target); err != nil {
		return nil, err
	}
	return &EventMonitor{source: source, target: target, state: initial}, nil
}

// Next blocks until the next accepted transition.
//
// A gained notification is accepted only in mode normal or while-grabbed; a
// lost notification additionally requires that focus did not merely move to
// a descendant of the target. Grab-induced churn is ignored entirely.
func (m *EventMonitor) Next(ctx context.Context) (wm.FocusEvent, error) {
	for {
		if err := ctx.Err(); err != nil {
			return wm.FocusEvent{}, err
		}
		n, err := m.source.WaitFocus()
		if err != nil {
			return wm.FocusEvent{}, err
		}
		if n.Destroyed {
			if n.Window == m.target {
				return wm.FocusEvent{}, ErrTargetGone
			}
			continue
		}
		if n.Window != m.target {
			continue
		}
		if n.Mode != ModeNormal && n.Mode != ModeWhileGrabbed {
			continue
		}
		if n.Gained {
			if m.state == wm.Focused {
				continue
			}
			m.state = wm.Focused
		} else {
			if n.Detail == DetailInferior {
				// focus moved to a child of the same logical window
				continue
			}
			if m.state == wm.Unfocused {
				continue
			}
			m.state = wm.Unfocused
		}
		return wm.FocusEvent{Window: m.target, State: m.state, Time: time.Now()}, nil
	}
}

// Querier answers which window currently holds input focus server-wide.
type Querier interface {
	InputFocus() (wm.Window, error)
}

// DefaultPollInterval is the cadence of the polling monitor.
const DefaultPollInterval = time.Second

// PollMonitor compares the server-wide input focus against the target at a
// fixed interval; a change in that comparison is the transition signal.
type PollMonitor struct {
	querier  Querier
	target   wm.Window
	interval time.Duration
	state    wm.FocusState
}

// NewPollMonitor returns a polling monitor. interval <= 0 selects
// DefaultPollInterval.
func NewPollMonitor(querier Querier, target wm.Window, initial wm.FocusState, interval time.Duration) *PollMonitor {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &PollMonitor{querier: querier, target: target, interval: interval, state: initial}
}

// Next blocks until the focus comparison against the target changes.
func (m *PollMonitor) Next(ctx context.Context) (wm.FocusEvent, error) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return wm.FocusEvent{}, ctx.Err()
		case <-ticker.C:
		}

		current, err := m.querier.InputFocus()
		if err != nil {
			logger.WithComponent("focus").Debug().Err(err).Msg("failed to query input focus")
			continue
		}
		state := wm.Unfocused
		if current == m.target {
			state = wm.Focused
		}
		if state == m.state {
			continue
		}
		m.state = state
		return wm.FocusEvent{Window: m.target, State: state, Time: time.Now()}, nil
	}
}
