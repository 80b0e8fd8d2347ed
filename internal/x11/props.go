package x11

import (
	"errors"
	"strings"

	"github.com/BurntSushi/xgb/xproto"

	"gamewrap/internal/logger"
	"gamewrap/internal/wm"
)

// ErrDesktopUnsupported is reported when the window manager does not
// advertise _NET_WM_DESKTOP in _NET_SUPPORTED. Desktop queries are never
// guessed in that case.
var ErrDesktopUnsupported = errors.New("window manager does not support _NET_WM_DESKTOP")

// stickyDesktop is the _NET_WM_DESKTOP value for a window shown on all
// desktops.
const stickyDesktop = 0xFFFFFFFF

// property reads a named property of win. A vanished window or an unset
// property both come back as ok=false; neither is fatal.
func (d *Display) property(win wm.Window, name string) (value []byte, ok bool) {
	atom, err := d.Atom(name)
	if err != nil {
		return nil, false
	}
	reply, err := xproto.GetProperty(
		d.conn,
		false,
		xproto.Window(win),
		atom,
		xproto.GetPropertyTypeAny,
		0,
		(1<<32)-1,
	).Reply()
	if err != nil || reply.ValueLen == 0 {
		return nil, false
	}
	return reply.Value, true
}

// cardinal decodes the first 32-bit item of a property value.
func cardinal(value []byte) (uint32, bool) {
	if len(value) < 4 {
		return 0, false
	}
	return uint32(value[0]) |
		uint32(value[1])<<8 |
		uint32(value[2])<<16 |
		uint32(value[3])<<24, true
}

// Name returns the window-manager-visible title, preferring _NET_WM_NAME
// over the legacy WM_NAME. Windows without a title report an empty string.
func (d *Display) Name(win wm.Window) string {
	if value, ok := d.property(win, atomNetWMName); ok {
		return string(value)
	}
	if value, ok := d.property(win, atomWMName); ok {
		return string(value)
	}
	return ""
}

// ClassHint returns the two WM_CLASS strings: the instance ("class name" in
// search criteria) and the class. Both are empty when the property is unset.
func (d *Display) ClassHint(win wm.Window) (instance, class string) {
	value, ok := d.property(win, atomWMClass)
	if !ok {
		return "", ""
	}
	// WM_CLASS is two null-terminated strings: instance\0class\0
	parts := strings.Split(string(value), "\x00")
	if len(parts) >= 1 {
		instance = parts[0]
	}
	if len(parts) >= 2 {
		class = parts[1]
	}
	return instance, class
}

// PID returns the process id advertised via _NET_WM_PID.
func (d *Display) PID(win wm.Window) (uint32, bool) {
	value, ok := d.property(win, atomNetWMPID)
	if !ok {
		return 0, false
	}
	return cardinal(value)
}

// GameID returns the STEAM_GAME tag set on windows of Steam games.
func (d *Display) GameID(win wm.Window) (uint32, bool) {
	value, ok := d.property(win, atomSteamGame)
	if !ok {
		return 0, false
	}
	return cardinal(value)
}

// Visible reports whether the window is currently viewable. A vanished
// window is not visible.
func (d *Display) Visible(win wm.Window) bool {
	reply, err := xproto.GetWindowAttributes(d.conn, xproto.Window(win)).Reply()
	if err != nil {
		return false
	}
	return reply.MapState == xproto.MapStateViewable
}

// HasWindowState reports whether the window carries the WM_STATE marker
// property that window managers set on client windows.
func (d *Display) HasWindowState(win wm.Window) bool {
	_, ok := d.property(win, atomWMState)
	return ok
}

// DesktopSupported reports whether the window manager advertises
// _NET_WM_DESKTOP support. Checked once per connection.
func (d *Display) DesktopSupported() bool {
	d.desktopOnce.Do(func() {
		featureAtom, err := d.Atom(atomNetWMDesktop)
		if err != nil {
			return
		}
		value, ok := d.property(wm.Window(d.root), atomNetSupported)
		if !ok {
			logger.WithComponent("x11").Debug().Msg("window manager advertises no _NET_SUPPORTED")
			return
		}
		for i := 0; i+4 <= len(value); i += 4 {
			atom, _ := cardinal(value[i : i+4])
			if xproto.Atom(atom) == featureAtom {
				d.desktopSupported = true
				return
			}
		}
	})
	return d.desktopSupported
}

// Desktop returns the desktop index the window is on, or -1 for a sticky
// window shown on all desktops. Returns ErrDesktopUnsupported when the
// window manager does not implement the convention.
func (d *Display) Desktop(win wm.Window) (int64, error) {
	if !d.DesktopSupported() {
		return 0, ErrDesktopUnsupported
	}
	value, ok := d.property(win, atomNetWMDesktop)
	if !ok {
		return -1, nil
	}
	desktop, ok := cardinal(value)
	if !ok || desktop == stickyDesktop {
		return -1, nil
	}
	return int64(desktop), nil
}

// Children returns the direct children of win in the order the server
// reports them (bottom-to-top stacking). The error indicates the window
// vanished; callers abandon that branch.
func (d *Display) Children(win wm.Window) ([]wm.Window, error) {
	reply, err := xproto.QueryTree(d.conn, xproto.Window(win)).Reply()
	if err != nil {
		return nil, err
	}
	children := make([]wm.Window, 0, len(reply.Children))
	for _, child := range reply.Children {
		children = append(children, wm.Window(child))
	}
	return children, nil
}

// StackedChildren returns the direct children of win topmost first.
func (d *Display) StackedChildren(win wm.Window) ([]wm.Window, error) {
	children, err := d.Children(win)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(children)-1; i < j; i, j = i+1, j-1 {
		children[i], children[j] = children[j], children[i]
	}
	return children, nil
}

// VirtualRoots returns the window-manager stand-ins for the screen root, if
// the window manager uses them to implement virtual desktops.
func (d *Display) VirtualRoots() []wm.Window {
	value, ok := d.property(wm.Window(d.root), atomVirtualRoots)
	if !ok {
		return nil
	}
	var roots []wm.Window
	for i := 0; i+4 <= len(value); i += 4 {
		id, _ := cardinal(value[i : i+4])
		roots = append(roots, wm.Window(id))
	}
	return roots
}

// InputFocus returns the window that currently holds input focus.
func (d *Display) InputFocus() (wm.Window, error) {
	reply, err := xproto.GetInputFocus(d.conn).Reply()
	if err != nil {
		return wm.None, err
	}
	return wm.Window(reply.Focus), nil
}

// Info collects the human-readable description of a window for CLI output.
func (d *Display) Info(win wm.Window) wm.Info {
	instance, class := d.ClassHint(win)
	info := wm.Info{
		ID:        uint32(win),
		Title:     d.Name(win),
		Class:     class,
		ClassName: instance,
		Visible:   d.Visible(win),
		Desktop:   -1,
	}
	if pid, ok := d.PID(win); ok {
		info.PID = int(pid)
	}
	if desktop, err := d.Desktop(win); err == nil {
		info.Desktop = desktop
	}
	return info
}
