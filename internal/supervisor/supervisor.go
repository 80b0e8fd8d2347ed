// Package supervisor runs the supervision session for a launched game: it
// resolves the monitored process (through launcher indirection when
// configured), resolves the game window once, and tracks focus and process
// liveness until the game exits, firing side-effect hooks on the way.
package supervisor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"gamewrap/internal/focus"
	"gamewrap/internal/hooks"
	"gamewrap/internal/logger"
	"gamewrap/internal/search"
	"gamewrap/internal/wm"
)

// State names the phases of a supervision session.
type State int

const (
	StateStarting State = iota
	StateResolvingProcess
	StateResolvingWindow
	StateTracking
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateResolvingProcess:
		return "resolving-process"
	case StateResolvingWindow:
		return "resolving-window"
	case StateTracking:
		return "tracking"
	default:
		return "stopped"
	}
}

// Status is the terminal outcome of a session.
type Status int

const (
	StatusNormal Status = iota
	StatusProcessNotFound
	StatusWindowNotFound
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusNormal:
		return "normal"
	case StatusProcessNotFound:
		return "process-not-found"
	case StatusWindowNotFound:
		return "window-not-found"
	default:
		return "cancelled"
	}
}

var (
	// ErrProcessNotFound is reported when the bounded retry for the real
	// game process is exhausted.
	ErrProcessNotFound = errors.New("game process not found")
	// ErrWindowNotFound is reported when the game window does not appear
	// within the window wait budget.
	ErrWindowNotFound = errors.New("game window not found")
	// errAmbiguousWindow means more than one window matched the tracking
	// criteria; tracking is skipped rather than guessing.
	errAmbiguousWindow = errors.New("multiple windows match tracking criteria")
)

// Windows is the display-side collaborator: window search, focus query and
// focus monitoring.
type Windows interface {
	Search(crit search.Criteria) ([]wm.Window, error)
	InputFocus() (wm.Window, error)
	Monitor(target wm.Window, initial wm.FocusState) (focus.Monitor, error)
}

// Processes answers liveness and name-lookup questions.
type Processes interface {
	Alive(pid int32) bool
	FindByName(pattern string) ([]int32, error)
}

// Notifier surfaces fatal session errors to the operator.
type Notifier interface {
	Notify(msg string) error
}

// Defaults for the session timing knobs.
const (
	DefaultProcessRetries       = 10
	DefaultProcessRetryInterval = 2 * time.Second
	DefaultLivenessInterval     = time.Second
	DefaultWindowWait           = 2 * time.Minute
	defaultWindowPollInterval   = 100 * time.Millisecond
)

// Options configures one supervision session.
type Options struct {
	// LaunchedPID is the process started by the external launcher.
	LaunchedPID int32
	// ProcessName, when set, names the real game process: the launched
	// process is only a launcher and the session polls for this name.
	ProcessName string
	// Criteria selects the window to track; nil disables focus tracking
	// and the session degrades to liveness-only supervision.
	Criteria *search.Criteria

	ProcessRetries       int
	ProcessRetryInterval time.Duration
	LivenessInterval     time.Duration
	WindowWait           time.Duration
	WindowPollInterval   time.Duration
}

func (o *Options) fillDefaults() {
	if o.ProcessRetries <= 0 {
		o.ProcessRetries = DefaultProcessRetries
	}
	if o.ProcessRetryInterval <= 0 {
		o.ProcessRetryInterval = DefaultProcessRetryInterval
	}
	if o.LivenessInterval <= 0 {
		o.LivenessInterval = DefaultLivenessInterval
	}
	if o.WindowWait <= 0 {
		o.WindowWait = DefaultWindowWait
	}
	if o.WindowPollInterval <= 0 {
		o.WindowPollInterval = defaultWindowPollInterval
	}
}

// Snapshot is a point-in-time view of the session, served by the status
// API.
type Snapshot struct {
	State        string    `json:"state"`
	Status       string    `json:"status,omitempty"`
	LaunchedPID  int32     `json:"launched_pid"`
	MonitoredPID int32     `json:"monitored_pid,omitempty"`
	Window       uint32    `json:"window,omitempty"`
	Focus        string    `json:"focus"`
	StartedAt    time.Time `json:"started_at"`
}

// Session supervises one launched process. The Run loop is the sole writer
// of session state; Snapshot and Subscribe are safe from other goroutines.
type Session struct {
	opts    Options
	windows Windows
	procs   Processes
	hooks   hooks.Hook
	notify  Notifier

	mu          sync.Mutex
	state       State
	status      Status
	monitored   int32
	target      wm.Window
	focusState  wm.FocusState
	startedAt   time.Time
	subscribers []chan wm.FocusEvent
}

// New creates a session. hookSet and notifier may be nil.
func New(opts Options, windows Windows, procs Processes, hookSet hooks.Hook, notifier Notifier) *Session {
	opts.fillDefaults()
	if hookSet == nil {
		hookSet = hooks.Set(nil)
	}
	return &Session{
		opts:    opts,
		windows: windows,
		procs:   procs,
		hooks:   hookSet,
		notify:  notifier,
	}
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	logger.WithComponent("supervisor").Debug().Stringer("state", state).Msg("state change")
}

// Snapshot returns the current session view.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		State:        s.state.String(),
		LaunchedPID:  s.opts.LaunchedPID,
		MonitoredPID: s.monitored,
		Window:       uint32(s.target),
		Focus:        s.focusState.String(),
		StartedAt:    s.startedAt,
	}
	if s.state == StateStopped {
		snap.Status = s.status.String()
	}
	return snap
}

// Subscribe returns a channel receiving accepted focus transitions. Slow
// consumers drop events rather than stalling the tracking loop.
func (s *Session) Subscribe() chan wm.FocusEvent {
	ch := make(chan wm.FocusEvent, 16)
	s.mu.Lock()
	s.subscribers = append(s.subscribers, ch)
	s.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a subscription channel.
func (s *Session) Unsubscribe(ch chan wm.FocusEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subscribers {
		if sub == ch {
			s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
			close(ch)
			return
		}
	}
}

func (s *Session) publish(ev wm.FocusEvent) {
	s.mu.Lock()
	s.focusState = ev.State
	subs := make([]chan wm.FocusEvent, len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()
	for _, sub := range subs {
		select {
		case sub <- ev:
		default:
		}
	}
}

func (s *Session) notifyOperator(msg string) {
	if s.notify == nil {
		return
	}
	if err := s.notify.Notify(msg); err != nil {
		logger.WithComponent("supervisor").Warn().Err(err).Msg("failed to notify operator")
	}
}

// Run drives the session to completion and returns its terminal status.
// Teardown hooks run exactly once on every path out.
func (s *Session) Run(ctx context.Context) Status {
	log := logger.WithComponent("supervisor")

	s.mu.Lock()
	s.startedAt = time.Now()
	s.mu.Unlock()
	s.setState(StateStarting)
	s.hooks.OnStart()

	status := s.run(ctx, log)

	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
	s.setState(StateStopped)
	s.hooks.OnStop()
	log.Info().Stringer("status", status).Msg("session stopped")
	return status
}

func (s *Session) run(ctx context.Context, log *zerolog.Logger) Status {
	pid := s.opts.LaunchedPID
	if s.opts.ProcessName != "" {
		s.setState(StateResolvingProcess)
		resolved, err := s.resolveProcess(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return StatusCancelled
			}
			log.Error().Err(err).Str("name", s.opts.ProcessName).Msg("failed to resolve game process")
			s.notifyOperator("Failed to find game process, quitting")
			return StatusProcessNotFound
		}
		pid = resolved
	}
	s.mu.Lock()
	s.monitored = pid
	s.mu.Unlock()
	log.Debug().Int32("pid", pid).Msg("monitoring process")

	var mon focus.Monitor
	if s.opts.Criteria != nil {
		s.setState(StateResolvingWindow)
		win, err := s.resolveWindow(ctx)
		switch {
		case ctx.Err() != nil:
			return StatusCancelled
		case errors.Is(err, errAmbiguousWindow):
			// tracking would be wrong for an arbitrary pick; supervise
			// liveness only
			log.Error().Err(err).Msg("focus tracking disabled")
		case err != nil:
			log.Error().Err(err).Msg("failed to resolve game window")
			s.notifyOperator("Game window not found, quitting")
			return StatusWindowNotFound
		default:
			mon = s.startTracking(win, log)
		}
	}

	s.setState(StateTracking)
	return s.track(ctx, mon)
}

// startTracking records the target, fires the hook for the initial focus
// state, and builds the monitor.
func (s *Session) startTracking(win wm.Window, log *zerolog.Logger) focus.Monitor {
	s.mu.Lock()
	s.target = win
	s.mu.Unlock()
	log.Debug().Uint32("window", uint32(win)).Msg("tracking window")

	initial := wm.FocusUnknown
	if current, err := s.windows.InputFocus(); err == nil {
		if current == win {
			initial = wm.Focused
			s.hooks.OnFocus()
		} else {
			initial = wm.Unfocused
			s.hooks.OnUnfocus()
		}
		s.publish(wm.FocusEvent{Window: win, State: initial, Time: time.Now()})
	}

	mon, err := s.windows.Monitor(win, initial)
	if err != nil {
		log.Error().Err(err).Msg("failed to start focus monitor; supervising liveness only")
		return nil
	}
	return mon
}

// resolveProcess polls for a process matching the configured name, sleeping
// between bounded attempts. Cancellation interrupts the sleep.
func (s *Session) resolveProcess(ctx context.Context) (int32, error) {
	log := logger.WithComponent("supervisor")
	for attempt := 0; attempt < s.opts.ProcessRetries; attempt++ {
		pids, err := s.procs.FindByName(s.opts.ProcessName)
		if err != nil {
			return 0, err
		}
		switch {
		case len(pids) == 1:
			return pids[0], nil
		case len(pids) > 1:
			log.Error().Ints32("pids", pids).Msg("multiple matching processes")
			return 0, ErrProcessNotFound
		}
		if err := sleep(ctx, s.opts.ProcessRetryInterval); err != nil {
			return 0, err
		}
	}
	return 0, ErrProcessNotFound
}

// resolveWindow searches for the tracking target until it appears or the
// window wait budget runs out. The window is resolved exactly once per
// session.
func (s *Session) resolveWindow(ctx context.Context) (wm.Window, error) {
	deadline := time.Now().Add(s.opts.WindowWait)
	for {
		wins, err := s.windows.Search(*s.opts.Criteria)
		if err != nil {
			return wm.None, err
		}
		switch {
		case len(wins) == 1:
			return wins[0], nil
		case len(wins) > 1:
			return wm.None, errAmbiguousWindow
		}
		if time.Now().After(deadline) {
			return wm.None, ErrWindowNotFound
		}
		if err := sleep(ctx, s.opts.WindowPollInterval); err != nil {
			return wm.None, err
		}
	}
}

// track consumes focus transitions while a liveness probe confirms the
// monitored process is still running. mon may be nil (degraded mode).
func (s *Session) track(ctx context.Context, mon focus.Monitor) Status {
	log := logger.WithComponent("supervisor")

	events := make(chan wm.FocusEvent)
	monErr := make(chan error, 1)
	if mon != nil {
		mctx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			for {
				ev, err := mon.Next(mctx)
				if err != nil {
					monErr <- err
					return
				}
				select {
				case events <- ev:
				case <-mctx.Done():
					return
				}
			}
		}()
	}

	ticker := time.NewTicker(s.opts.LivenessInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return StatusCancelled
		case ev := <-events:
			if ev.State == wm.Focused {
				log.Debug().Msg("window focused")
				s.hooks.OnFocus()
			} else {
				log.Debug().Msg("window unfocused")
				s.hooks.OnUnfocus()
			}
			s.publish(ev)
		case err := <-monErr:
			if errors.Is(err, focus.ErrTargetGone) {
				// the game window is gone and is never re-resolved;
				// treat it as the session ending
				log.Info().Msg("game window closed; ending session")
				return StatusNormal
			}
			if ctx.Err() != nil {
				return StatusCancelled
			}
			log.Error().Err(err).Msg("focus monitor failed; supervising liveness only")
		case <-ticker.C:
			if !s.procs.Alive(s.monitoredPID()) {
				log.Debug().Msg("monitored process exited")
				return StatusNormal
			}
		}
	}
}

func (s *Session) monitoredPID() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.monitored
}

// sleep waits for d or until ctx is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
