package search

import (
	"errors"
	"testing"

	"gamewrap/internal/wm"
)

// fakeTree is an in-memory window hierarchy for traversal and predicate
// tests.
type fakeTree struct {
	screens  []wm.Window
	children map[wm.Window][]wm.Window
	vanished map[wm.Window]bool

	names     map[wm.Window]string
	instances map[wm.Window]string
	classes   map[wm.Window]string
	pids      map[wm.Window]uint32
	gameIDs   map[wm.Window]uint32
	invisible map[wm.Window]bool
	desktops  map[wm.Window]int64
	noDesktop bool
}

func newFakeTree(screens ...wm.Window) *fakeTree {
	return &fakeTree{
		screens:   screens,
		children:  map[wm.Window][]wm.Window{},
		vanished:  map[wm.Window]bool{},
		names:     map[wm.Window]string{},
		instances: map[wm.Window]string{},
		classes:   map[wm.Window]string{},
		pids:      map[wm.Window]uint32{},
		gameIDs:   map[wm.Window]uint32{},
		invisible: map[wm.Window]bool{},
		desktops:  map[wm.Window]int64{},
	}
}

func (t *fakeTree) Screens() []wm.Window { return t.screens }

func (t *fakeTree) Children(win wm.Window) ([]wm.Window, error) {
	if t.vanished[win] {
		return nil, errors.New("window vanished")
	}
	return t.children[win], nil
}

func (t *fakeTree) Name(win wm.Window) string { return t.names[win] }

func (t *fakeTree) ClassHint(win wm.Window) (string, string) {
	return t.instances[win], t.classes[win]
}

func (t *fakeTree) PID(win wm.Window) (uint32, bool) {
	pid, ok := t.pids[win]
	return pid, ok
}

func (t *fakeTree) GameID(win wm.Window) (uint32, bool) {
	id, ok := t.gameIDs[win]
	return id, ok
}

func (t *fakeTree) Visible(win wm.Window) bool { return !t.invisible[win] }

func (t *fakeTree) Desktop(win wm.Window) (int64, error) {
	if t.noDesktop {
		return 0, errors.New("desktop placement unsupported")
	}
	d, ok := t.desktops[win]
	if !ok {
		return -1, nil
	}
	return d, nil
}

func TestCompileInvalidPattern(t *testing.T) {
	crit := New()
	crit.Name = "("
	crit.Mask = MatchName
	if _, err := Compile(crit); !errors.Is(err, ErrInvalidPattern) {
		t.Fatalf("Compile(() err = %v, want ErrInvalidPattern", err)
	}
}

func TestMatchAll(t *testing.T) {
	tree := newFakeTree()
	const win wm.Window = 10
	tree.names[win] = "osu!"
	tree.instances[win] = "osu!.exe"
	tree.classes[win] = "Wine"
	tree.pids[win] = 4242

	tests := []struct {
		name string
		crit func() Criteria
		want bool
	}{
		{
			name: "class name exact",
			crit: func() Criteria {
				c := New()
				c.Require = RequireAll
				c.ClassName = `^osu!\.exe$`
				c.Mask = MatchClassName | MatchOnlyVisible
				return c
			},
			want: true,
		},
		{
			name: "case insensitive",
			crit: func() Criteria {
				c := New()
				c.Require = RequireAll
				c.ClassName = `^OSU!\.EXE$`
				c.Mask = MatchClassName
				return c
			},
			want: true,
		},
		{
			name: "every requested field must hold",
			crit: func() Criteria {
				c := New()
				c.Require = RequireAll
				c.ClassName = `^osu!\.exe$`
				c.PID = 1
				c.Mask = MatchClassName | MatchPID
				return c
			},
			want: false,
		},
		{
			name: "unrequested fields are ignored",
			crit: func() Criteria {
				c := New()
				c.Require = RequireAll
				c.PID = 4242
				c.Mask = MatchPID
				return c
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred, err := Compile(tt.crit())
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			if got := pred.Match(tree, win); got != tt.want {
				t.Errorf("Match = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchAnyNeedsOneRequestedField(t *testing.T) {
	tree := newFakeTree()
	const win wm.Window = 11
	tree.names[win] = "Limbo"
	tree.pids[win] = 99

	crit := New()
	crit.Require = RequireAny
	crit.Name = "^Limbo$"
	crit.PID = 12345
	crit.Mask = MatchName | MatchPID | MatchOnlyVisible

	pred, err := Compile(crit)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !pred.Match(tree, win) {
		t.Error("Match = false, want true (name matches even though pid does not)")
	}
}

func TestVisibilityGatesBothModes(t *testing.T) {
	tree := newFakeTree()
	const win wm.Window = 12
	tree.names[win] = "Limbo"
	tree.invisible[win] = true

	for _, req := range []Requirement{RequireAll, RequireAny} {
		crit := New()
		crit.Require = req
		crit.Name = "^Limbo$"
		crit.Mask = MatchName | MatchOnlyVisible

		pred, err := Compile(crit)
		if err != nil {
			t.Fatalf("Compile: %v", err)
		}
		if pred.Match(tree, win) {
			t.Errorf("Match(require=%v) = true for invisible window, want false", req)
		}
	}
}

func TestDesktopRequiredUnderAny(t *testing.T) {
	tree := newFakeTree()
	const win wm.Window = 13
	tree.names[win] = "Limbo"
	tree.desktops[win] = 2

	crit := New()
	crit.Require = RequireAny
	crit.Name = "^Limbo$"
	crit.Desktop = 5
	crit.Mask = MatchName | MatchDesktop

	pred, err := Compile(crit)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if pred.Match(tree, win) {
		t.Error("Match = true on wrong desktop, want false (desktop is always required)")
	}

	crit.Desktop = 2
	pred, err = Compile(crit)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !pred.Match(tree, win) {
		t.Error("Match = false on right desktop, want true")
	}
}

func TestDesktopErrorFailsPredicate(t *testing.T) {
	tree := newFakeTree()
	tree.noDesktop = true
	const win wm.Window = 14
	tree.names[win] = "Limbo"

	crit := New()
	crit.Require = RequireAll
	crit.Name = "^Limbo$"
	crit.Desktop = 0
	crit.Mask = MatchName | MatchDesktop

	pred, err := Compile(crit)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if pred.Match(tree, win) {
		t.Error("Match = true with undetermined desktop, want false")
	}
}

func TestAbsentPatternMatchesEmptyProperty(t *testing.T) {
	tree := newFakeTree()
	const untitled wm.Window = 15
	const titled wm.Window = 16
	tree.names[titled] = "xterm"

	crit := New()
	crit.Require = RequireAll
	crit.Mask = MatchName // requested with no pattern

	pred, err := Compile(crit)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !pred.Match(tree, untitled) {
		t.Error("Match(untitled) = false, want true")
	}
	if pred.Match(tree, titled) {
		t.Error("Match(titled) = true, want false")
	}
}

func TestMissingNumericPropertyNeverMatches(t *testing.T) {
	tree := newFakeTree()
	const win wm.Window = 17

	crit := New()
	crit.Require = RequireAll
	crit.PID = 0
	crit.Mask = MatchPID

	pred, err := Compile(crit)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if pred.Match(tree, win) {
		t.Error("Match = true for window without a pid property, want false")
	}
}
