package supervisor

import (
	"context"
	"errors"
	"testing"
	"time"

	"gamewrap/internal/focus"
	"gamewrap/internal/search"
	"gamewrap/internal/wm"
)

const testWindow wm.Window = 42

// fastOptions keeps the timing knobs short enough for tests.
func fastOptions() Options {
	return Options{
		LaunchedPID:          1000,
		ProcessRetries:       3,
		ProcessRetryInterval: time.Millisecond,
		LivenessInterval:     time.Millisecond,
		WindowWait:           20 * time.Millisecond,
		WindowPollInterval:   time.Millisecond,
	}
}

type fakeWindows struct {
	searches     [][]wm.Window
	searchCalls  int
	focusHolder  wm.Window
	monitor      focus.Monitor
	monitorErr   error
	monitorCalls int
}

func (w *fakeWindows) Search(crit search.Criteria) ([]wm.Window, error) {
	i := w.searchCalls
	w.searchCalls++
	if i >= len(w.searches) {
		if len(w.searches) == 0 {
			return nil, nil
		}
		i = len(w.searches) - 1
	}
	return w.searches[i], nil
}

func (w *fakeWindows) InputFocus() (wm.Window, error) {
	return w.focusHolder, nil
}

func (w *fakeWindows) Monitor(target wm.Window, initial wm.FocusState) (focus.Monitor, error) {
	w.monitorCalls++
	if w.monitorErr != nil {
		return nil, w.monitorErr
	}
	return w.monitor, nil
}

// scriptMonitor replays events, then returns its final error forever.
type scriptMonitor struct {
	events []wm.FocusEvent
	final  error
}

func (m *scriptMonitor) Next(ctx context.Context) (wm.FocusEvent, error) {
	if len(m.events) == 0 {
		if m.final != nil {
			return wm.FocusEvent{}, m.final
		}
		<-ctx.Done()
		return wm.FocusEvent{}, ctx.Err()
	}
	ev := m.events[0]
	m.events = m.events[1:]
	return ev, nil
}

type fakeProcs struct {
	alive     bool
	aliveFor  int
	findPIDs  [][]int32
	findCalls int
}

func (p *fakeProcs) Alive(pid int32) bool {
	if p.aliveFor > 0 {
		p.aliveFor--
		return true
	}
	return p.alive
}

func (p *fakeProcs) FindByName(pattern string) ([]int32, error) {
	i := p.findCalls
	p.findCalls++
	if i >= len(p.findPIDs) {
		if len(p.findPIDs) == 0 {
			return nil, nil
		}
		i = len(p.findPIDs) - 1
	}
	return p.findPIDs[i], nil
}

type hookRecorder struct {
	starts, stops, focuses, unfocuses int
}

func (h *hookRecorder) OnStart()   { h.starts++ }
func (h *hookRecorder) OnStop()    { h.stops++ }
func (h *hookRecorder) OnFocus()   { h.focuses++ }
func (h *hookRecorder) OnUnfocus() { h.unfocuses++ }

type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) Notify(msg string) error {
	n.messages = append(n.messages, msg)
	return nil
}

func trackingCriteria() *search.Criteria {
	crit := search.New()
	crit.Name = "^game$"
	crit.Mask = search.MatchName | search.MatchOnlyVisible
	crit.Require = search.RequireAll
	return &crit
}

func TestRunLivenessOnly(t *testing.T) {
	hooks := &hookRecorder{}
	session := New(fastOptions(), &fakeWindows{}, &fakeProcs{alive: false}, hooks, nil)

	status := session.Run(context.Background())
	if status != StatusNormal {
		t.Fatalf("Run = %v, want StatusNormal", status)
	}
	if hooks.starts != 1 || hooks.stops != 1 {
		t.Errorf("starts=%d stops=%d, want 1 and 1", hooks.starts, hooks.stops)
	}
	if hooks.focuses != 0 || hooks.unfocuses != 0 {
		t.Errorf("focus hooks fired without a tracked window")
	}
}

func TestRunProcessNotFoundAfterBoundedRetries(t *testing.T) {
	opts := fastOptions()
	opts.ProcessName = "game\\.exe"
	procs := &fakeProcs{}
	hooks := &hookRecorder{}
	notifier := &recordingNotifier{}
	session := New(opts, &fakeWindows{}, procs, hooks, notifier)

	status := session.Run(context.Background())
	if status != StatusProcessNotFound {
		t.Fatalf("Run = %v, want StatusProcessNotFound", status)
	}
	if procs.findCalls != opts.ProcessRetries {
		t.Errorf("findCalls = %d, want %d", procs.findCalls, opts.ProcessRetries)
	}
	if len(notifier.messages) != 1 {
		t.Errorf("notifications = %v, want exactly one", notifier.messages)
	}
	if hooks.stops != 1 {
		t.Errorf("stops = %d, want 1", hooks.stops)
	}
}

func TestRunAmbiguousProcessFailsFast(t *testing.T) {
	opts := fastOptions()
	opts.ProcessName = "game"
	procs := &fakeProcs{findPIDs: [][]int32{{10, 11}}}
	session := New(opts, &fakeWindows{}, procs, &hookRecorder{}, nil)

	status := session.Run(context.Background())
	if status != StatusProcessNotFound {
		t.Fatalf("Run = %v, want StatusProcessNotFound", status)
	}
	if procs.findCalls != 1 {
		t.Errorf("findCalls = %d, want 1 (no retry on ambiguity)", procs.findCalls)
	}
}

func TestRunResolvesProcessThroughLauncher(t *testing.T) {
	opts := fastOptions()
	opts.ProcessName = "game\\.exe"
	procs := &fakeProcs{findPIDs: [][]int32{nil, nil, {2000}}}
	session := New(opts, &fakeWindows{}, procs, &hookRecorder{}, nil)

	status := session.Run(context.Background())
	if status != StatusNormal {
		t.Fatalf("Run = %v, want StatusNormal", status)
	}
	if got := session.Snapshot().MonitoredPID; got != 2000 {
		t.Errorf("MonitoredPID = %d, want 2000", got)
	}
}

func TestRunWindowNotFound(t *testing.T) {
	opts := fastOptions()
	opts.Criteria = trackingCriteria()
	windows := &fakeWindows{}
	notifier := &recordingNotifier{}
	hooks := &hookRecorder{}
	session := New(opts, windows, &fakeProcs{alive: true}, hooks, notifier)

	status := session.Run(context.Background())
	if status != StatusWindowNotFound {
		t.Fatalf("Run = %v, want StatusWindowNotFound", status)
	}
	if windows.searchCalls < 2 {
		t.Errorf("searchCalls = %d, want repeated polling", windows.searchCalls)
	}
	if len(notifier.messages) != 1 {
		t.Errorf("notifications = %v, want exactly one", notifier.messages)
	}
	if hooks.stops != 1 {
		t.Errorf("stops = %d, want 1", hooks.stops)
	}
}

func TestRunAmbiguousWindowDegradesToLiveness(t *testing.T) {
	opts := fastOptions()
	opts.Criteria = trackingCriteria()
	windows := &fakeWindows{searches: [][]wm.Window{{41, 42}}}
	session := New(opts, windows, &fakeProcs{aliveFor: 3}, &hookRecorder{}, nil)

	status := session.Run(context.Background())
	if status != StatusNormal {
		t.Fatalf("Run = %v, want StatusNormal", status)
	}
	if windows.monitorCalls != 0 {
		t.Errorf("monitorCalls = %d, want 0 (tracking skipped on ambiguity)", windows.monitorCalls)
	}
}

func TestRunFocusTransitionsFireHooks(t *testing.T) {
	opts := fastOptions()
	opts.Criteria = trackingCriteria()
	mon := &scriptMonitor{
		events: []wm.FocusEvent{
			{Window: testWindow, State: wm.Unfocused},
			{Window: testWindow, State: wm.Focused},
		},
		final: focus.ErrTargetGone,
	}
	windows := &fakeWindows{
		searches:    [][]wm.Window{{testWindow}},
		focusHolder: testWindow,
		monitor:     mon,
	}
	hooks := &hookRecorder{}
	session := New(opts, windows, &fakeProcs{alive: true}, hooks, nil)

	status := session.Run(context.Background())
	if status != StatusNormal {
		t.Fatalf("Run = %v, want StatusNormal", status)
	}
	// initial focus plus the scripted regain
	if hooks.focuses != 2 {
		t.Errorf("focuses = %d, want 2", hooks.focuses)
	}
	if hooks.unfocuses != 1 {
		t.Errorf("unfocuses = %d, want 1", hooks.unfocuses)
	}
	if hooks.stops != 1 {
		t.Errorf("stops = %d, want 1", hooks.stops)
	}
}

func TestRunWindowDestroyedEndsSession(t *testing.T) {
	opts := fastOptions()
	opts.Criteria = trackingCriteria()
	windows := &fakeWindows{
		searches:    [][]wm.Window{{testWindow}},
		focusHolder: 7,
		monitor:     &scriptMonitor{final: focus.ErrTargetGone},
	}
	session := New(opts, windows, &fakeProcs{alive: true}, &hookRecorder{}, nil)

	status := session.Run(context.Background())
	if status != StatusNormal {
		t.Fatalf("Run = %v, want StatusNormal", status)
	}
}

func TestRunMonitorFailureDegrades(t *testing.T) {
	opts := fastOptions()
	opts.Criteria = trackingCriteria()
	windows := &fakeWindows{
		searches:    [][]wm.Window{{testWindow}},
		focusHolder: testWindow,
		monitorErr:  errors.New("subscription refused"),
	}
	session := New(opts, windows, &fakeProcs{aliveFor: 3}, &hookRecorder{}, nil)

	status := session.Run(context.Background())
	if status != StatusNormal {
		t.Fatalf("Run = %v, want StatusNormal", status)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	hooks := &hookRecorder{}
	session := New(fastOptions(), &fakeWindows{}, &fakeProcs{alive: true}, hooks, nil)

	status := session.Run(ctx)
	if status != StatusCancelled {
		t.Fatalf("Run = %v, want StatusCancelled", status)
	}
	if hooks.starts != 1 || hooks.stops != 1 {
		t.Errorf("starts=%d stops=%d, want 1 and 1", hooks.starts, hooks.stops)
	}
}

func TestSubscribeReceivesTransitions(t *testing.T) {
	opts := fastOptions()
	opts.Criteria = trackingCriteria()
	windows := &fakeWindows{
		searches:    [][]wm.Window{{testWindow}},
		focusHolder: testWindow,
		monitor: &scriptMonitor{
			events: []wm.FocusEvent{{Window: testWindow, State: wm.Unfocused}},
			final:  focus.ErrTargetGone,
		},
	}
	session := New(opts, windows, &fakeProcs{alive: true}, &hookRecorder{}, nil)

	events := session.Subscribe()
	defer session.Unsubscribe(events)

	if status := session.Run(context.Background()); status != StatusNormal {
		t.Fatalf("Run = %v, want StatusNormal", status)
	}

	// initial state then the scripted loss
	first := <-events
	if first.State != wm.Focused {
		t.Errorf("first event = %v, want Focused", first.State)
	}
	second := <-events
	if second.State != wm.Unfocused {
		t.Errorf("second event = %v, want Unfocused", second.State)
	}
}

func TestSnapshotLifecycle(t *testing.T) {
	session := New(fastOptions(), &fakeWindows{}, &fakeProcs{alive: false}, nil, nil)

	before := session.Snapshot()
	if before.Status != "" {
		t.Errorf("Status before run = %q, want empty", before.Status)
	}

	session.Run(context.Background())

	after := session.Snapshot()
	if after.State != StateStopped.String() {
		t.Errorf("State = %q, want %q", after.State, StateStopped.String())
	}
	if after.Status != StatusNormal.String() {
		t.Errorf("Status = %q, want %q", after.Status, StatusNormal.String())
	}
	if after.LaunchedPID != 1000 {
		t.Errorf("LaunchedPID = %d, want 1000", after.LaunchedPID)
	}
}
