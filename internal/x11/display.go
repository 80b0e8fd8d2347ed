// Package x11 wraps the display-server connection used by the search
// engine, the picker and the focus monitor. It owns the process-wide atom
// cache and the raw property accessors.
package x11

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"gamewrap/internal/wm"
)

// Well-known property names.
const (
	atomNetWMName    = "_NET_WM_NAME"
	atomWMName       = "WM_NAME"
	atomWMClass      = "WM_CLASS"
	atomWMState      = "WM_STATE"
	atomNetWMPID     = "_NET_WM_PID"
	atomNetWMDesktop = "_NET_WM_DESKTOP"
	atomNetSupported = "_NET_SUPPORTED"
	atomVirtualRoots = "_NET_VIRTUAL_ROOTS"
	atomSteamGame    = "STEAM_GAME"
)

// Display is a live connection to the X server. It is not safe for
// concurrent use; a supervision session owns exactly one Display.
type Display struct {
	conn  *xgb.Conn
	setup *xproto.SetupInfo
	root  xproto.Window

	atoms struct {
		mu     sync.Mutex
		byName map[string]xproto.Atom
	}

	desktopOnce      sync.Once
	desktopSupported bool
}

// Connect opens a connection to the X server named by $DISPLAY.
func Connect() (*Display, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	setup := xproto.Setup(conn)
	d := &Display{
		conn:  conn,
		setup: setup,
		root:  setup.DefaultScreen(conn).Root,
	}
	d.atoms.byName = make(map[string]xproto.Atom)
	return d, nil
}

// Close closes the X11 connection.
func (d *Display) Close() {
	d.conn.Close()
}

// Conn returns the underlying connection.
func (d *Display) Conn() *xgb.Conn {
	return d.conn
}

// DefaultRoot returns the root window of the default screen.
func (d *Display) DefaultRoot() wm.Window {
	return wm.Window(d.root)
}

// Screens returns the root window of every screen in ascending screen
// index order.
func (d *Display) Screens() []wm.Window {
	roots := make([]wm.Window, 0, len(d.setup.Roots))
	for _, screen := range d.setup.Roots {
		roots = append(roots, wm.Window(screen.Root))
	}
	return roots
}

// Atom resolves a property name to its server-assigned identifier. Results
// are cached for the lifetime of the connection; the mapping is immutable
// for a display-server session.
func (d *Display) Atom(name string) (xproto.Atom, error) {
	d.atoms.mu.Lock()
	defer d.atoms.mu.Unlock()

	if atom, ok := d.atoms.byName[name]; ok {
		return atom, nil
	}
	reply, err := xproto.InternAtom(d.conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("failed to intern atom %s: %w", name, err)
	}
	d.atoms.byName[name] = reply.Atom
	return reply.Atom, nil
}
