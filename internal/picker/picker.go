// Package picker lets the operator select a window with a single pointer
// click and resolves the selection to the real client window, looking
// through virtual-root and window-manager frame indirection.
package picker

import (
	"errors"
	"fmt"

	"gamewrap/internal/logger"
	"gamewrap/internal/wm"
)

// ErrCancelled is returned when the operator aborts selection with a
// non-primary button. It is a normal outcome, not a failure.
var ErrCancelled = errors.New("selection cancelled")

// Button is a pointer-button event observed while the grab is held. Window
// is the subwindow under the pointer, or wm.None when the pointer is over
// the root itself.
type Button struct {
	Press   bool
	Primary bool
	Window  wm.Window
}

// Display is the subset of display-server operations the picker needs.
type Display interface {
	DefaultRoot() wm.Window
	GrabPointer(root wm.Window) error
	UngrabPointer()
	NextButton() (Button, error)
	// PointerChild returns the child of win directly under the pointer.
	PointerChild(win wm.Window) (wm.Window, error)
	// VirtualRoots lists window-manager stand-ins for the screen root.
	VirtualRoots() []wm.Window
	// HasWindowState reports whether win carries the WM_STATE client
	// marker.
	HasWindowState(win wm.Window) bool
	// StackedChildren returns direct children topmost first.
	StackedChildren(win wm.Window) ([]wm.Window, error)
	Visible(win wm.Window) bool
}

// Pick blocks until the operator clicks a window and returns the resolved
// client window. A press of any non-primary button cancels the selection.
func Pick(d Display) (wm.Window, error) {
	root := d.DefaultRoot()
	if err := d.GrabPointer(root); err != nil {
		return wm.None, fmt.Errorf("failed to grab pointer: %w", err)
	}

	chosen, err := awaitClick(d, root)
	d.UngrabPointer()
	if err != nil {
		return wm.None, err
	}

	// some window managers interpose a virtual root; the click then lands
	// on the virtual root rather than the application window under it
	for _, vroot := range d.VirtualRoots() {
		if chosen != vroot {
			continue
		}
		if child, cerr := d.PointerChild(chosen); cerr == nil && child != wm.None {
			chosen = child
		}
		break
	}

	client := findClient(d, chosen)
	if client != chosen {
		logger.WithComponent("picker").Debug().
			Uint32("selected", uint32(chosen)).
			Uint32("client", uint32(client)).
			Msg("resolved frame window to client")
	}
	return client, nil
}

func awaitClick(d Display, root wm.Window) (wm.Window, error) {
	for {
		b, err := d.NextButton()
		if err != nil {
			return wm.None, err
		}
		if !b.Press {
			continue
		}
		if !b.Primary {
			return wm.None, ErrCancelled
		}
		if b.Window == wm.None {
			return root, nil
		}
		return b.Window, nil
	}
}

// findClient unwinds window-manager decoration: unless the selection
// already carries WM_STATE, the first viewable descendant holding it is
// the client window. With no such descendant the raw selection stands.
func findClient(d Display, win wm.Window) wm.Window {
	if d.HasWindowState(win) {
		return win
	}
	if client, ok := descend(d, win); ok {
		return client
	}
	return win
}

func descend(d Display, win wm.Window) (wm.Window, bool) {
	children, err := d.StackedChildren(win)
	if err != nil {
		return wm.None, false
	}
	// direct inspection first: topmost viewable child carrying the marker
	for _, child := range children {
		if d.Visible(child) && d.HasWindowState(child) {
			return child, true
		}
	}
	for _, child := range children {
		if !d.Visible(child) {
			continue
		}
		if client, ok := descend(d, child); ok {
			return client, true
		}
	}
	return wm.None, false
}
