package sidebar

import (
	"log"
	"strconv"
	"time"

	"github.com/b/zj-sidebar/pkg/alerts"
	"github.com/b/zj-sidebar/pkg/collapse"
	"github.com/b/zj-sidebar/pkg/config"
	"github.com/b/zj-sidebar/pkg/names"
	"github.com/b/zj-sidebar/pkg/relay"
)

// Controller owns the sidebar state machine. It is single-goroutine:
// the caller serializes events into Handle and executes the returned
// Outcome, so no field needs locking.
type Controller struct {
	cfg    *config.Config
	logger *log.Logger

	tabs      []Tab
	activePos int
	mode      string
	granted   bool

	engine   *alerts.Engine
	collapse *collapse.Sync
	relay    *relay.Relay
	names    *names.Cache

	tick time.Duration
}

// New wires a controller from config and a collapse store. sessionName
// seeds the decorative name generator.
func New(cfg *config.Config, store collapse.Store, sessionName string, logger *log.Logger) *Controller {
	engine := alerts.NewEngine()
	c := &Controller{
		cfg:       cfg,
		logger:    logger,
		activePos: -1,
		engine:    engine,
		relay:     relay.New(engine),
		names:     names.NewCache(sessionName),
		tick:      time.Duration(cfg.Alerts.TickMs) * time.Millisecond,
	}
	c.collapse = collapse.New(store, collapse.Options{
		Floor:   time.Duration(cfg.Poll.FloorMs) * time.Millisecond,
		Ceiling: time.Duration(cfg.Poll.CeilingMs) * time.Millisecond,
		Growth:  cfg.Poll.Growth,
	})
	return c
}

// Collapsed reports the current collapse belief.
func (c *Controller) Collapsed() bool { return c.collapse.Desired() }

// Width is the sidebar's desired column count for the current state.
func (c *Controller) Width() int {
	if c.collapse.Desired() {
		return c.cfg.Sidebar.CollapsedWidth
	}
	return c.cfg.Sidebar.Width
}

// NextPollDelay is the sleep before the next collapse-file poll.
func (c *Controller) NextPollDelay() time.Duration { return c.collapse.NextPollDelay() }

// Handle dispatches one host event and returns the declarative outcome.
// Until a granted PermissionResult arrives the controller is inert:
// every other event is swallowed without touching state.
func (c *Controller) Handle(ev Event) Outcome {
	if pr, ok := ev.(PermissionResult); ok {
		if !pr.Granted {
			c.logger.Printf("host permissions denied, sidebar will be inert")
			return Outcome{}
		}
		c.granted = true
		return Outcome{}
	}
	if !c.granted {
		return Outcome{}
	}
	switch e := ev.(type) {
	case TabsUpdated:
		return c.onTabs(e.Tabs)
	case ModeChanged:
		if e.Mode == c.mode {
			return Outcome{}
		}
		c.mode = e.Mode
		return Outcome{Render: true}
	case TimerFired:
		return c.onTick()
	case MouseClick:
		return c.onClick(e.Row)
	case WheelUp:
		return c.switchRelative(+1)
	case WheelDown:
		return c.switchRelative(-1)
	case KeyPressed:
		if e.Key != c.cfg.Sidebar.ToggleKey {
			return Outcome{}
		}
		rec := c.collapse.Toggle()
		return Outcome{Render: true, Actions: []Action{SwapLayout{Collapsed: rec.Collapsed}}}
	case BroadcastReceived:
		if !c.relay.OnBroadcast(e.Payload) {
			return Outcome{}
		}
		return Outcome{Render: true, RearmTick: c.rearm()}
	}
	return Outcome{}
}

// HandleRequest dispatches one inbound pipe request. Dropped while
// permissions are pending, like every other input.
func (c *Controller) HandleRequest(req Request) Outcome {
	if !c.granted {
		return Outcome{}
	}
	switch r := req.(type) {
	case CommandResultRequest:
		return c.onCommandResult(r)
	case NotificationRequest:
		return c.onNotification(r)
	}
	return Outcome{}
}

// PollCollapse runs one poll of the shared collapse file. A remote
// change repaints and swaps the layout just like a local toggle.
func (c *Controller) PollCollapse() Outcome {
	collapsed, changed := c.collapse.PollOnce()
	if !changed {
		return Outcome{}
	}
	return Outcome{Render: true, Actions: []Action{SwapLayout{Collapsed: collapsed}}}
}

func (c *Controller) onTabs(tabs []Tab) Outcome {
	active := -1
	for _, t := range tabs {
		if t.Active {
			active = t.Position
			break
		}
	}
	if active == -1 {
		c.logger.Printf("tab update carried no active tab, keeping previous snapshot")
		return Outcome{}
	}
	changed := active != c.activePos || !tabsEqual(tabs, c.tabs)
	c.tabs = tabs
	c.activePos = active
	positions := make([]int, len(tabs))
	for i, t := range tabs {
		positions[i] = t.Position
	}
	c.engine.SetTabs(positions, active)
	return Outcome{Render: changed}
}

func (c *Controller) onTick() Outcome {
	// A tick with nothing alive is a stale timer; swallow it without
	// painting or rearming.
	if c.engine.Empty() {
		return Outcome{}
	}
	_, more := c.engine.Tick()
	out := Outcome{Render: true}
	if more {
		out.RearmTick = c.rearm()
	}
	if frame, ok := c.relay.Frame(); ok {
		out.Actions = append(out.Actions, SendBroadcast{Data: frame})
	}
	return out
}

func (c *Controller) onClick(row int) Outcome {
	idx := row - HeaderRows
	if idx < 0 || idx >= len(c.tabs) {
		return Outcome{}
	}
	return Outcome{Actions: []Action{SwitchTab{Number: idx + 1}}}
}

func (c *Controller) switchRelative(delta int) Outcome {
	if len(c.tabs) == 0 || c.activePos < 0 {
		return Outcome{}
	}
	n := c.activePos + 1 + delta
	if n < 1 {
		n = 1
	}
	if n > len(c.tabs) {
		n = len(c.tabs)
	}
	if n == c.activePos+1 {
		return Outcome{}
	}
	return Outcome{Actions: []Action{SwitchTab{Number: n}}}
}

func (c *Controller) onCommandResult(r CommandResultRequest) Outcome {
	pane, err := strconv.Atoi(r.PaneID)
	if err != nil {
		c.logger.Printf("dropping command result with bad pane id %q", r.PaneID)
		return Outcome{}
	}
	code, err := strconv.Atoi(r.ExitCode)
	if err != nil {
		c.logger.Printf("dropping command result with bad exit code %q", r.ExitCode)
		return Outcome{}
	}
	pos, ok := c.tabForPane(pane)
	if !ok {
		return Outcome{}
	}
	first, err := c.engine.ReportCommandResult(pos, code == 0)
	if err != nil {
		return Outcome{}
	}
	if !first {
		return Outcome{}
	}
	return Outcome{Render: true, RearmTick: c.rearm()}
}

func (c *Controller) onNotification(r NotificationRequest) Outcome {
	pos, ok := c.resolveTarget(r.Target)
	if !ok {
		c.logger.Printf("dropping notification for unknown target %q", r.Target)
		return Outcome{}
	}
	flash := r.Flash
	if flash == 0 {
		flash = c.cfg.Alerts.DefaultFlash
	}
	wasEmpty := c.engine.Empty()
	if !c.engine.ReportNotification(pos, flash) {
		return Outcome{}
	}
	out := Outcome{Render: true}
	if wasEmpty {
		out.RearmTick = c.rearm()
	}
	return out
}

// tabForPane finds the tab owning a pane, skipping the active tab:
// results landing on the watched tab would flash at the user about
// output they are already looking at.
func (c *Controller) tabForPane(pane int) (int, bool) {
	for _, t := range c.tabs {
		if t.Position == c.activePos {
			continue
		}
		for _, id := range t.PaneIDs {
			if id == pane {
				return t.Position, true
			}
		}
	}
	return 0, false
}

// resolveTarget maps a 1-based tab number or a tab name to a position.
func (c *Controller) resolveTarget(target string) (int, bool) {
	if n, err := strconv.Atoi(target); err == nil {
		if n >= 1 && n <= len(c.tabs) {
			return n - 1, true
		}
		return 0, false
	}
	for _, t := range c.tabs {
		if t.Name == target {
			return t.Position, true
		}
	}
	return 0, false
}

func (c *Controller) rearm() *time.Duration {
	d := c.tick
	return &d
}

func tabsEqual(a, b []Tab) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Position != b[i].Position || a[i].Name != b[i].Name || a[i].Active != b[i].Active || a[i].DefaultName != b[i].DefaultName {
			return false
		}
		if len(a[i].PaneIDs) != len(b[i].PaneIDs) {
			return false
		}
		for j := range a[i].PaneIDs {
			if a[i].PaneIDs[j] != b[i].PaneIDs[j] {
				return false
			}
		}
	}
	return true
}
