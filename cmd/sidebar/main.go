package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"regexp"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"

	"github.com/b/zj-sidebar/pkg/bus"
	"github.com/b/zj-sidebar/pkg/collapse"
	"github.com/b/zj-sidebar/pkg/config"
	"github.com/b/zj-sidebar/pkg/host"
	"github.com/b/zj-sidebar/pkg/paths"
	"github.com/b/zj-sidebar/pkg/perf"
	"github.com/b/zj-sidebar/pkg/sidebar"
)

const refreshEvery = 2 * time.Second

type model struct {
	ctrl   *sidebar.Controller
	cfg    *config.Config
	client *bus.Client
	logger *log.Logger

	// hostTabs is the last snapshot from tmux, kept to map sidebar
	// positions back onto window indexes for SwitchTab.
	hostTabs []host.Tab
	selfPane string

	// vp scrolls the tab list when it outgrows the pane.
	vp     viewport.Model
	width  int
	height int
}

type refreshMsg struct{}

type reloadConfigMsg struct{}

type alertTickMsg struct{}

type pollMsg struct{}

type busMsg struct{ msg bus.Message }

func triggerRefresh() tea.Cmd {
	return func() tea.Msg { return refreshMsg{} }
}

func scheduleRefresh() tea.Cmd {
	return tea.Tick(refreshEvery, func(time.Time) tea.Msg { return refreshMsg{} })
}

func scheduleAlertTick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return alertTickMsg{} })
}

func schedulePoll(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return pollMsg{} })
}

func (m model) Init() tea.Cmd {
	return tea.Batch(triggerRefresh(), schedulePoll(m.ctrl.NextPollDelay()))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.vp.Width = msg.Width
		m.vp.Height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}
		out := m.ctrl.Handle(sidebar.KeyPressed{Key: msg.String()})
		return m, m.apply(out)

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress {
			switch msg.Button {
			case tea.MouseButtonLeft:
				row := msg.Y + m.scrollOffset()
				return m, m.apply(m.ctrl.Handle(sidebar.MouseClick{Row: row, Col: msg.X}))
			case tea.MouseButtonWheelUp:
				return m, m.apply(m.ctrl.Handle(sidebar.WheelUp{}))
			case tea.MouseButtonWheelDown:
				return m, m.apply(m.ctrl.Handle(sidebar.WheelDown{}))
			}
		}
		return m, nil

	case refreshMsg:
		tabs, err := host.ListTabs()
		if err != nil {
			m.logger.Printf("tab refresh failed: %v", err)
			return m, scheduleRefresh()
		}
		m.hostTabs = tabs
		out := m.ctrl.Handle(sidebar.TabsUpdated{Tabs: toSidebarTabs(tabs)})
		return m, tea.Batch(m.apply(out), scheduleRefresh())

	case alertTickMsg:
		return m, m.apply(m.ctrl.Handle(sidebar.TimerFired{}))

	case pollMsg:
		out := m.ctrl.PollCollapse()
		// The poll timer never stops; only its delay adapts.
		return m, tea.Batch(m.apply(out), schedulePoll(m.ctrl.NextPollDelay()))

	case busMsg:
		return m, m.apply(m.dispatchBus(msg.msg))

	case reloadConfigMsg:
		fresh, err := config.Load(paths.ConfigPath())
		if err != nil {
			m.logger.Printf("config reload rejected: %v", err)
			return m, nil
		}
		*m.cfg = *fresh
		return m, triggerRefresh()
	}
	return m, nil
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	defer perf.Span("render")()

	height := m.height
	if needed := m.ctrl.RowsNeeded(); needed > height {
		height = needed
	}
	lines := m.ctrl.Render(height, m.width)
	if perf.Enabled() {
		for i, line := range lines {
			if w := runewidth.StringWidth(ansiPattern.ReplaceAllString(line, "")); w != m.width {
				perf.Log("row %d spans %d columns, pane has %d", i, w, m.width)
			}
		}
	}
	if height <= m.height {
		return strings.Join(lines, "\n")
	}

	// More tabs than rows: scroll so the active tab stays in view.
	vp := m.vp
	vp.SetContent(strings.Join(lines, "\n"))
	vp.SetYOffset(m.scrollOffset())
	return vp.View()
}

// scrollOffset derives the viewport scroll purely from the active row,
// so mouse coordinates can be mapped back without shared state.
func (m model) scrollOffset() int {
	needed := m.ctrl.RowsNeeded()
	if needed <= m.height {
		return 0
	}
	active := m.ctrl.ActiveRow()
	if active < m.height {
		return 0
	}
	off := active - m.height + 1
	if limit := needed - m.height; off > limit {
		off = limit
	}
	return off
}

// dispatchBus translates broker traffic into controller inputs.
func (m model) dispatchBus(msg bus.Message) sidebar.Outcome {
	switch msg.Type {
	case bus.MsgAlertReport:
		var p bus.AlertReportPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			m.logger.Printf("bad alert report payload: %v", err)
			return sidebar.Outcome{}
		}
		return m.ctrl.HandleRequest(sidebar.CommandResultRequest{PaneID: p.PaneID, ExitCode: p.ExitCode})
	case bus.MsgNotify:
		var p bus.NotifyPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			m.logger.Printf("bad notify payload: %v", err)
			return sidebar.Outcome{}
		}
		return m.ctrl.HandleRequest(sidebar.NotificationRequest{Target: p.Target, Flash: p.Flash})
	case bus.MsgAlertSync:
		var p bus.AlertSyncPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return sidebar.Outcome{}
		}
		return m.ctrl.Handle(sidebar.BroadcastReceived{Payload: p.Alerts})
	}
	return sidebar.Outcome{}
}

// apply executes a dispatch outcome: host actions plus timer rearms.
// Rendering happens implicitly through View on the next frame.
func (m model) apply(out sidebar.Outcome) tea.Cmd {
	var cmds []tea.Cmd
	for _, a := range out.Actions {
		switch act := a.(type) {
		case sidebar.SwitchTab:
			m.switchTab(act.Number)
		case sidebar.SwapLayout:
			if m.selfPane != "" {
				if err := host.ResizePane(m.selfPane, m.ctrl.Width()); err != nil {
					m.logger.Printf("layout swap failed: %v", err)
				}
			}
		case sidebar.SendBroadcast:
			if m.client == nil {
				continue
			}
			msg := bus.NewMessage(bus.MsgAlertSync, m.client.ID(), bus.AlertSyncPayload{Alerts: act.Data})
			if err := m.client.Send(msg); err != nil {
				m.logger.Printf("alert broadcast failed: %v", err)
			}
		}
	}
	if out.RearmTick != nil {
		cmds = append(cmds, scheduleAlertTick(*out.RearmTick))
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func (m model) switchTab(number int) {
	idx := number - 1
	if idx < 0 || idx >= len(m.hostTabs) {
		return
	}
	if err := host.SelectWindow(m.hostTabs[idx].Index); err != nil {
		m.logger.Printf("tab switch to %d failed: %v", number, err)
	}
}

func toSidebarTabs(tabs []host.Tab) []sidebar.Tab {
	out := make([]sidebar.Tab, len(tabs))
	for i, t := range tabs {
		st := sidebar.Tab{
			Position:    t.Position,
			Name:        t.Name,
			Active:      t.Active,
			DefaultName: t.DefaultName,
		}
		for _, p := range t.Panes {
			st.PaneIDs = append(st.PaneIDs, p.ID)
		}
		out[i] = st
	}
	return out
}

func watchConfig(p *tea.Program, configPath string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return
	}
	_ = watcher.Add(configPath)
	go func() {
		for {
			select {
			case event := <-watcher.Events:
				if event.Op&fsnotify.Write == fsnotify.Write {
					p.Send(reloadConfigMsg{})
				}
			case <-watcher.Errors:
				return
			}
		}
	}()
}

func initEventLog(session string) *log.Logger {
	f, err := os.OpenFile(fmt.Sprintf("/tmp/zj-sidebar-%s.log", session), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stderr, "", log.LstdFlags)
	}
	return log.New(f, "", log.LstdFlags|log.Lmicroseconds)
}

func initCrashLog(session string) *log.Logger {
	f, err := os.OpenFile(fmt.Sprintf("/tmp/zj-sidebar-%s-crash.log", session), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stderr, "[CRASH] ", log.LstdFlags)
	}
	return log.New(f, "", log.LstdFlags|log.Lmicroseconds)
}

func main() {
	// Force ANSI256 color mode to avoid partial 24-bit escape code issues
	lipgloss.SetColorProfile(termenv.ANSI256)

	session := host.SessionName()
	logger := initEventLog(session)
	crashLog := initCrashLog(session)
	defer func() {
		if r := recover(); r != nil {
			crashLog.Printf("panic: %v\n%s", r, debug.Stack())
			panic(r)
		}
	}()

	cfg, err := config.Load(paths.ConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	if _, err := paths.EnsureStateDir(); err != nil {
		fmt.Fprintf(os.Stderr, "state dir: %v\n", err)
		os.Exit(1)
	}
	store := collapse.NewFileStore(paths.CollapsePath(session))
	ctrl := sidebar.New(cfg, store, session, logger)

	// A dead bus is not fatal: rendering, local alerts, and collapse
	// convergence (which goes through the file store) all work without
	// it. Only inbound CLI requests and sibling catch-up are lost.
	clientID := fmt.Sprintf("sidebar-%d", os.Getpid())
	client, broker, err := bus.Open(session, clientID, bus.KindSidebar)
	if err != nil {
		logger.Printf("bus unavailable, running standalone: %v", err)
		client = nil
	}
	if client != nil {
		defer client.Close()
	}
	if broker != nil {
		defer broker.Stop()
		logger.Printf("hosting alert broker for session %s", session)
	}

	m := model{
		ctrl:     ctrl,
		cfg:      cfg,
		client:   client,
		logger:   logger,
		selfPane: os.Getenv("TMUX_PANE"),
		vp:       viewport.New(0, 0),
	}
	ctrl.Handle(sidebar.PermissionResult{Granted: true})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGUSR1)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	watchConfig(p, paths.ConfigPath())

	if client != nil {
		client.OnMessage = func(msg bus.Message) { p.Send(busMsg{msg: msg}) }
		go client.Listen()
	}

	go func() {
		for range sigChan {
			p.Send(refreshMsg{})
		}
	}()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
