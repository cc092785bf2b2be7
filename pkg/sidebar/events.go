package sidebar

import "time"

// Tab is the per-render-cycle view of one tab, supplied by the host and
// never mutated by the core. Position is the 0-based identity key for
// alerts; pane IDs let command-result reports find their owning tab.
type Tab struct {
	Position int
	Name     string
	Active   bool
	// DefaultName marks a host-generated name, eligible for decoration.
	DefaultName bool
	PaneIDs     []int
}

// Event is the closed set of host events the controller dispatches on.
type Event interface{ isEvent() }

// TabsUpdated replaces the tab snapshot wholesale.
type TabsUpdated struct{ Tabs []Tab }

// ModeChanged reports the host input mode (NORMAL, LOCKED, ...).
type ModeChanged struct{ Mode string }

// TimerFired is one alert tick.
type TimerFired struct{}

// MouseClick is a left click at a sidebar cell.
type MouseClick struct{ Row, Col int }

// WheelUp and WheelDown scroll through tabs.
type WheelUp struct{}
type WheelDown struct{}

// KeyPressed is a key press while the sidebar has focus.
type KeyPressed struct{ Key string }

// PermissionResult closes the host permission handshake.
type PermissionResult struct{ Granted bool }

// BroadcastReceived carries a sibling's serialized alert map.
type BroadcastReceived struct{ Payload []byte }

func (TabsUpdated) isEvent()       {}
func (ModeChanged) isEvent()       {}
func (TimerFired) isEvent()        {}
func (MouseClick) isEvent()        {}
func (WheelUp) isEvent()           {}
func (WheelDown) isEvent()         {}
func (KeyPressed) isEvent()        {}
func (PermissionResult) isEvent()  {}
func (BroadcastReceived) isEvent() {}

// Request is the closed set of inbound pipe requests.
type Request interface{ isRequest() }

// CommandResultRequest reports a finished command in some pane. Fields
// arrive as strings; malformed numbers drop the request.
type CommandResultRequest struct {
	PaneID   string
	ExitCode string
}

// NotificationRequest raises a notification on a tab addressed by
// 1-based number or by name. Flash 0 means the configured default.
type NotificationRequest struct {
	Target string
	Flash  uint8
}

func (CommandResultRequest) isRequest() {}
func (NotificationRequest) isRequest()  {}

// Action is an outbound host effect requested by a dispatch. The
// controller never performs side effects itself; the caller executes
// these, which keeps dispatch testable without a live host.
type Action interface{ isAction() }

// SwitchTab asks the host to activate a tab by 1-based number.
type SwitchTab struct{ Number int }

// SwapLayout asks the host to adapt the surrounding geometry to the new
// collapse state.
type SwapLayout struct{ Collapsed bool }

// SendBroadcast ships the serialized alert map to sibling instances.
type SendBroadcast struct{ Data []byte }

func (SwitchTab) isAction()     {}
func (SwapLayout) isAction()    {}
func (SendBroadcast) isAction() {}

// Outcome is what every dispatch returns: whether to repaint, whether
// (and with what delay) to rearm the alert tick timer, and which host
// actions to perform. A nil RearmTick means the timer is left alone;
// the tick handler returning a nil RearmTick after ticking is how the
// timer disarms.
type Outcome struct {
	Render    bool
	RearmTick *time.Duration
	Actions   []Action
}
