// Package alerts tracks per-tab alert state: command-result flashes and
// persistent notifications, advanced by a shared tick timer.
package alerts

import "errors"

// ErrUnknownTab is returned when a report targets a position that no
// current tab occupies. Callers decide whether that is fatal; the
// sidebar drops such reports silently.
var ErrUnknownTab = errors.New("no tab at position")

// Kind discriminates the two alert variants.
type Kind int

const (
	// CommandResult flashes indefinitely until its tab is visited.
	CommandResult Kind = iota
	// Notification flashes a bounded number of times, then either
	// disappears or (when persistent) stays lit until visited.
	Notification
)

// State is the alert attached to one tab position. Exactly one variant
// is live per position; the renderer needs a single lookup per tab.
type State struct {
	Kind           Kind  `json:"kind"`
	Success        bool  `json:"success,omitempty"`
	FlashCount     uint8 `json:"flash_count,omitempty"`
	Persistent     bool  `json:"persistent,omitempty"`
	AlternateColor bool  `json:"alternate_color"`
}

// Engine owns the position -> alert mapping. It is advanced by external
// events only (reports, ticks, activations) and is safe to consult from
// rendering at any point between them.
type Engine struct {
	entries map[int]State
	known   map[int]bool
	active  int
}

func NewEngine() *Engine {
	return &Engine{
		entries: make(map[int]State),
		known:   make(map[int]bool),
		active:  -1,
	}
}

// SetTabs records the current tab positions and which one is active.
// Activating a tab clears its alert: an indicator on the tab you are
// looking at is meaningless.
func (e *Engine) SetTabs(positions []int, active int) {
	e.known = make(map[int]bool, len(positions))
	for _, p := range positions {
		e.known[p] = true
	}
	e.active = active
	e.ClearOnActivation(active)
}

// Active returns the currently active tab position, -1 before the first
// SetTabs.
func (e *Engine) Active() int { return e.active }

// ReportCommandResult inserts (or overwrites) a command-result alert for
// the given position, starting in the alternate color phase. The first
// return is true iff the map was empty before the call, which is the
// caller's cue to arm the tick timer.
func (e *Engine) ReportCommandResult(pos int, success bool) (first bool, err error) {
	if !e.known[pos] {
		return false, ErrUnknownTab
	}
	first = len(e.entries) == 0
	e.entries[pos] = State{
		Kind:           CommandResult,
		Success:        success,
		AlternateColor: true,
	}
	return first, nil
}

// ReportNotification inserts a persistent notification for the given
// position. It refuses (no mutation) when the position is the active
// tab. The notification starts in the off phase; the first tick turns
// it on.
func (e *Engine) ReportNotification(pos int, flashUnits uint8) bool {
	if pos == e.active || !e.known[pos] {
		return false
	}
	e.entries[pos] = State{
		Kind:       Notification,
		FlashCount: flashUnits,
		Persistent: true,
	}
	return true
}

// Tick advances every entry one timer step and reports which positions
// were removed plus whether any entry still needs future ticks. A tick
// on an empty map is a no-op with more=false, so the caller never rearms
// the timer into an infinite idle render loop.
//
// Command results toggle color forever. Notifications toggle color and
// burn one flash unit on each on->off transition; at zero they are
// deleted unless persistent, in which case they stay lit steadily and
// stop requesting ticks.
func (e *Engine) Tick() (removed []int, more bool) {
	if len(e.entries) == 0 {
		return nil, false
	}
	for pos, st := range e.entries {
		switch st.Kind {
		case CommandResult:
			st.AlternateColor = !st.AlternateColor
			e.entries[pos] = st
			more = true
		case Notification:
			if st.FlashCount == 0 {
				// Persistent remainder, steady, nothing left to drive.
				continue
			}
			wasOn := st.AlternateColor
			st.AlternateColor = !st.AlternateColor
			if wasOn {
				st.FlashCount--
			}
			if st.FlashCount == 0 && !st.Persistent {
				delete(e.entries, pos)
				removed = append(removed, pos)
				continue
			}
			e.entries[pos] = st
			if st.FlashCount > 0 {
				more = true
			}
		}
	}
	return removed, more
}

// ClearOnActivation removes any alert for the given position.
func (e *Engine) ClearOnActivation(pos int) {
	delete(e.entries, pos)
}

// Get returns the alert for a position, if any.
func (e *Engine) Get(pos int) (State, bool) {
	st, ok := e.entries[pos]
	return st, ok
}

// Empty reports whether no alerts are live.
func (e *Engine) Empty() bool { return len(e.entries) == 0 }

// Snapshot returns a copy of the alert map for rendering or for
// serializing into a broadcast payload.
func (e *Engine) Snapshot() map[int]State {
	out := make(map[int]State, len(e.entries))
	for pos, st := range e.entries {
		out[pos] = st
	}
	return out
}

// Restore replaces the whole alert map, dropping any entry for the
// active tab. Used by the broadcast catch-up path.
func (e *Engine) Restore(m map[int]State) {
	e.entries = make(map[int]State, len(m))
	for pos, st := range m {
		if pos == e.active {
			continue
		}
		e.entries[pos] = st
	}
}
