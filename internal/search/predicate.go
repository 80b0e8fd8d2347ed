package search

import (
	"errors"
	"fmt"
	"regexp"

	"gamewrap/internal/wm"
)

// ErrInvalidPattern is reported when a configured regex fails to compile.
// It fails the whole query before any traversal.
var ErrInvalidPattern = errors.New("invalid search pattern")

// Predicate is a compiled Criteria, evaluable per window.
type Predicate struct {
	crit      Criteria
	name      *regexp.Regexp
	class     *regexp.Regexp
	className *regexp.Regexp
}

// emptyOnly matches exactly the empty string. An absent pattern compiles to
// this so that a window lacking the property still matches trivially, but a
// window carrying a non-empty value does not.
var emptyOnly = regexp.MustCompile(`^$`)

func compilePattern(expr string) (*regexp.Regexp, error) {
	if expr == "" {
		return emptyOnly, nil
	}
	re, err := regexp.Compile(`(?i)` + expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, expr, err)
	}
	return re, nil
}

// Compile turns Criteria into an evaluable Predicate. Textual patterns are
// compiled case-insensitively; any compilation failure returns
// ErrInvalidPattern.
func Compile(crit Criteria) (*Predicate, error) {
	p := &Predicate{crit: crit}
	var err error
	if p.name, err = compilePattern(crit.Name); err != nil {
		return nil, err
	}
	if p.class, err = compilePattern(crit.Class); err != nil {
		return nil, err
	}
	if p.className, err = compilePattern(crit.ClassName); err != nil {
		return nil, err
	}
	return p, nil
}

// Match evaluates the predicate on one window. Per-field evaluation yields
// independent booleans which combine under the criteria's Requirement.
// Visibility is a hard gate: when requested, an invisible window is
// rejected immediately regardless of mode or other fields.
func (p *Predicate) Match(ins Inspector, win wm.Window) bool {
	crit := &p.crit

	visibleOK := true
	pidOK := true
	nameOK := true
	classOK := true
	classNameOK := true
	desktopOK := true
	gameOK := true

	if crit.want(MatchDesktop) {
		desktop, err := ins.Desktop(win)
		desktopOK = err == nil && desktop == crit.Desktop
	}

	if crit.want(MatchOnlyVisible) && !ins.Visible(win) {
		return false
	}

	if crit.want(MatchPID) {
		pid, ok := ins.PID(win)
		pidOK = ok && pid == crit.PID
	}

	if crit.want(MatchGameID) {
		id, ok := ins.GameID(win)
		gameOK = ok && id == crit.GameID
	}

	instance, class := "", ""
	if crit.want(MatchClass) || crit.want(MatchClassName) {
		instance, class = ins.ClassHint(win)
	}
	if crit.want(MatchName) {
		nameOK = p.name.MatchString(ins.Name(win))
	}
	if crit.want(MatchClass) {
		classOK = p.class.MatchString(class)
	}
	if crit.want(MatchClassName) {
		classNameOK = p.className.MatchString(instance)
	}

	switch crit.Require {
	case RequireAll:
		return visibleOK && pidOK && nameOK && classOK && classNameOK &&
			desktopOK && gameOK
	default: // RequireAny
		return visibleOK && desktopOK &&
			((crit.want(MatchPID) && pidOK) ||
				(crit.want(MatchName) && nameOK) ||
				(crit.want(MatchClass) && classOK) ||
				(crit.want(MatchClassName) && classNameOK) ||
				(crit.want(MatchGameID) && gameOK))
	}
}
