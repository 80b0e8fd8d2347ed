// Package search locates windows matching composable multi-criteria
// queries: regex matchers over window text properties, equality checks over
// numeric properties, combined under an ALL or ANY requirement, evaluated
// over the window tree.
package search

import (
	"gamewrap/internal/wm"
)

// Mask marks which Criteria fields are actually constrained. Fields absent
// from the mask are trivially satisfied.
type Mask uint32

const (
	MatchClass Mask = 1 << iota
	MatchName
	MatchPID
	MatchOnlyVisible
	MatchScreen
	MatchClassName
	MatchDesktop
	MatchGameID
)

// Requirement selects how the requested predicates combine.
type Requirement int

const (
	// RequireAny keeps a window when any requested predicate holds.
	// Visibility and desktop, when requested, are still required: they are
	// ANDed in regardless. This asymmetry is long-standing observed
	// behavior and is preserved deliberately.
	RequireAny Requirement = iota
	// RequireAll keeps a window only when every requested predicate holds.
	RequireAll
)

// UnboundedDepth disables the traversal depth limit.
const UnboundedDepth = -1

// Criteria is an immutable window query. Construct with New and set only
// the fields named by Mask.
type Criteria struct {
	// Regex patterns, matched case-insensitively. Name matches the
	// window-manager-visible title, Class the WM_CLASS class string,
	// ClassName the WM_CLASS instance string.
	Name      string
	Class     string
	ClassName string

	PID     uint32
	Desktop int64
	GameID  uint32

	// Screen restricts the search to one screen's root; meaningful only
	// with MatchScreen.
	Screen int

	// MaxDepth bounds descent below each root; 0 restricts results to the
	// roots themselves, UnboundedDepth disables the bound.
	MaxDepth int

	// Limit caps the number of results; 0 means unbounded.
	Limit int

	Require Requirement
	Mask    Mask
}

// New returns Criteria with no fields constrained and unbounded traversal.
func New() Criteria {
	return Criteria{MaxDepth: UnboundedDepth}
}

func (c Criteria) want(m Mask) bool {
	return c.Mask&m != 0
}

// Inspector reads the window state predicates evaluate against. A missing
// property reads as its zero value; implementations must treat a vanished
// window the same way, never as a fatal condition.
type Inspector interface {
	// Name returns the window-manager-visible title, empty when unset.
	Name(win wm.Window) string
	// ClassHint returns the WM_CLASS instance and class strings.
	ClassHint(win wm.Window) (instance, class string)
	PID(win wm.Window) (uint32, bool)
	GameID(win wm.Window) (uint32, bool)
	Visible(win wm.Window) bool
	// Desktop returns the desktop index of the window (-1 when sticky). An
	// error means desktop placement could not be determined; desktop
	// predicates then fail deterministically.
	Desktop(win wm.Window) (int64, error)
}

// Tree enumerates the window hierarchy on top of an Inspector.
type Tree interface {
	Inspector
	// Screens returns the per-screen root windows in ascending screen
	// index order.
	Screens() []wm.Window
	// Children returns the direct children of win in server order. An
	// error means the window vanished mid-traversal; the branch is
	// abandoned, not the query.
	Children(win wm.Window) ([]wm.Window, error)
}
