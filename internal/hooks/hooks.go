// Package hooks holds the side-effect hooks the supervisor fires on
// session and focus transitions. Hooks are synchronous and expected to be
// fast local operations; a slow hook stalls focus-transition delivery.
package hooks

import (
	"fmt"
	"strings"

	"gamewrap/internal/notify"
)

// Hook receives supervision lifecycle callbacks. Failures are logged by the
// hook itself; the supervisor consumes no return values.
type Hook interface {
	OnStart()
	OnStop()
	OnFocus()
	OnUnfocus()
}

// Set fans callbacks out to every loaded hook, in load order.
type Set []Hook

func (s Set) OnStart() {
	for _, h := range s {
		h.OnStart()
	}
}

func (s Set) OnStop() {
	for _, h := range s {
		h.OnStop()
	}
}

func (s Set) OnFocus() {
	for _, h := range s {
		h.OnFocus()
	}
}

func (s Set) OnUnfocus() {
	for _, h := range s {
		h.OnUnfocus()
	}
}

// Env carries what hook constructors need.
type Env struct {
	Game     string
	DataDir  string
	Notifier *notify.Server
}

// Load builds the named hooks. A name may carry an argument after a colon,
// e.g. "pause-helper:xcape".
func Load(names []string, env Env) (Set, error) {
	var set Set
	for _, name := range names {
		arg := ""
		if i := strings.IndexByte(name, ':'); i >= 0 {
			name, arg = name[:i], name[i+1:]
		}
		switch name {
		case "playtime":
			set = append(set, newPlaytimeLog(env))
		case "pause-helper":
			if arg == "" {
				return nil, fmt.Errorf("hook pause-helper needs a process pattern, e.g. pause-helper:xcape")
			}
			set = append(set, newPauseHelper(arg))
		case "notify":
			set = append(set, &notifyHook{game: env.Game, server: env.Notifier})
		default:
			return nil, fmt.Errorf("unknown hook: %s", name)
		}
	}
	return set, nil
}

// notifyHook announces session start and end on the desktop.
type notifyHook struct {
	game   string
	server *notify.Server
}

func (h *notifyHook) OnStart() {
	if h.server != nil {
		_ = h.server.Info(h.game + " started")
	}
}

func (h *notifyHook) OnStop() {
	if h.server != nil {
		_ = h.server.Info(h.game + " stopped")
	}
}

func (h *notifyHook) OnFocus()   {}
func (h *notifyHook) OnUnfocus() {}
