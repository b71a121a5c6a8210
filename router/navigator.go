package router

import "errors"

// ErrNoHistory is returned when traversing past either end of the history.
var ErrNoHistory = errors.New("no history entry in that direction")

// Position is a document scroll offset.
type Position struct {
	Top  int
	Left int
}

// ScrollBehavior picks the scroll offset after a navigation: the saved
// offset for history traversals that have one, the top otherwise.
func ScrollBehavior(traversal bool, saved *Position) Position {
	if traversal && saved != nil {
		return *saved
	}
	return Position{Top: 0}
}

type historyEntry struct {
	match *Match
	saved *Position
}

// Navigation describes a completed navigation.
type Navigation struct {
	To        *Match
	From      *Match
	Traversal bool
	Scroll    Position
}

// Navigator keeps a browser-style history over a Table and applies
// ScrollBehavior on every navigation. It is not safe for concurrent use.
type Navigator struct {
	table   *Table
	entries []historyEntry
	index   int
}

// NewNavigator creates a navigator with an empty history.
func NewNavigator(table *Table) *Navigator {
	return &Navigator{table: table, index: -1}
}

// Current returns the active match, or nil before the first navigation.
func (n *Navigator) Current() *Match {
	if n.index < 0 {
		return nil
	}
	return n.entries[n.index].match
}

// Len returns the number of history entries.
func (n *Navigator) Len() int {
	return len(n.entries)
}

// CanGoBack reports whether Back would succeed.
func (n *Navigator) CanGoBack() bool {
	return n.index > 0
}

// CanGoForward reports whether Forward would succeed.
func (n *Navigator) CanGoForward() bool {
	return n.index >= 0 && n.index < len(n.entries)-1
}

// Push navigates to path as a fresh link. current is the scroll offset of the
// page being left; forward history is discarded.
func (n *Navigator) Push(path string, current Position) (*Navigation, error) {
	m, err := n.table.Resolve(path)
	if err != nil {
		return nil, err
	}

	from := n.leave(current)
	n.entries = append(n.entries[:n.index+1], historyEntry{match: m})
	n.index = len(n.entries) - 1

	return &Navigation{To: m, From: from, Scroll: ScrollBehavior(false, nil)}, nil
}

// Replace swaps the active entry for path without adding history.
func (n *Navigator) Replace(path string) (*Navigation, error) {
	if n.index < 0 {
		return n.Push(path, Position{})
	}

	m, err := n.table.Resolve(path)
	if err != nil {
		return nil, err
	}

	from := n.entries[n.index].match
	n.entries[n.index] = historyEntry{match: m}

	return &Navigation{To: m, From: from, Scroll: ScrollBehavior(false, nil)}, nil
}

// Back moves one entry back in history.
func (n *Navigator) Back(current Position) (*Navigation, error) {
	return n.Go(-1, current)
}

// Forward moves one entry forward in history.
func (n *Navigator) Forward(current Position) (*Navigation, error) {
	return n.Go(1, current)
}

// Go moves delta entries through history.
func (n *Navigator) Go(delta int, current Position) (*Navigation, error) {
	target := n.index + delta
	if delta == 0 || n.index < 0 || target < 0 || target >= len(n.entries) {
		return nil, ErrNoHistory
	}

	from := n.leave(current)
	n.index = target
	entry := n.entries[target]

	return &Navigation{
		To:        entry.match,
		From:      from,
		Traversal: true,
		Scroll:    ScrollBehavior(true, entry.saved),
	}, nil
}

// leave records the scroll offset of the active entry and returns its match.
func (n *Navigator) leave(current Position) *Match {
	if n.index < 0 {
		return nil
	}
	saved := current
	n.entries[n.index].saved = &saved
	return n.entries[n.index].match
}
