package search

import (
	"fmt"

	"gamewrap/internal/logger"
	"gamewrap/internal/wm"
)

// Windows enumerates the windows matching crit, in discovery order: each
// scope root first, then its subtree with every direct child of a window
// tested before any of them is descended into.
func Windows(tree Tree, crit Criteria) ([]wm.Window, error) {
	pred, err := Compile(crit)
	if err != nil {
		return nil, err
	}

	roots := tree.Screens()
	if crit.want(MatchScreen) {
		if crit.Screen < 0 || crit.Screen >= len(roots) {
			return nil, fmt.Errorf("no such screen: %d", crit.Screen)
		}
		roots = roots[crit.Screen : crit.Screen+1]
	}

	w := &walker{tree: tree, pred: pred, maxDepth: crit.MaxDepth, limit: crit.Limit}
	for _, root := range roots {
		if w.full() {
			break
		}
		if pred.Match(tree, root) {
			w.matches = append(w.matches, root)
		}
		// the root itself sits at depth 0; its children at depth 1
		w.descend(root, 1)
	}
	return w.matches, nil
}

// walker threads the traversal context: remaining limit, depth bound and
// the accumulated match list.
type walker struct {
	tree     Tree
	pred     *Predicate
	maxDepth int
	limit    int
	matches  []wm.Window
}

func (w *walker) full() bool {
	return w.limit > 0 && len(w.matches) >= w.limit
}

func (w *walker) descend(win wm.Window, depth int) {
	if w.full() {
		return
	}
	if w.maxDepth != UnboundedDepth && depth > w.maxDepth {
		return
	}

	children, err := w.tree.Children(win)
	if err != nil {
		// window vanished mid-traversal; abandon the branch, not the query
		logger.WithComponent("search").Debug().
			Uint32("window", uint32(win)).
			Err(err).
			Msg("failed to list children, skipping branch")
		return
	}

	// test all direct children before recursing into any of them, so
	// matches at this tree level precede deeper ones in the result order
	for _, child := range children {
		if !w.pred.Match(w.tree, child) {
			continue
		}
		w.matches = append(w.matches, child)
		if w.full() {
			return
		}
	}

	if w.maxDepth == UnboundedDepth || depth+1 <= w.maxDepth {
		for _, child := range children {
			w.descend(child, depth+1)
		}
	}
}
