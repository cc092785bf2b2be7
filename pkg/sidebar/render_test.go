package sidebar

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/b/zj-sidebar/pkg/layout"
)

func TestBuildRowsShape(t *testing.T) {
	c := newTestController(t)
	c.Handle(TabsUpdated{Tabs: threeTabs()})
	c.Handle(ModeChanged{Mode: "normal"})

	rows := c.BuildRows(10, 25)
	require.Len(t, rows, 10)
	for i, r := range rows {
		require.Equal(t, 25, layout.Width(r.Text), "row %d must span the pane exactly", i)
	}

	require.Equal(t, strings.Repeat(" ", 25), rows[0].Text)
	require.Equal(t, "NORMAL", strings.TrimSpace(rows[1].Text))
	require.True(t, rows[1].Bold)
	require.Equal(t, strings.Repeat("─", 25), rows[2].Text)

	require.Equal(t, "1 editor", strings.TrimSpace(rows[HeaderRows].Text))
	require.Equal(t, "3 logs", strings.TrimSpace(rows[HeaderRows+2].Text))

	// Rows past the tabs are blank filler.
	require.Equal(t, strings.Repeat(" ", 25), rows[HeaderRows+3].Text)
}

func TestBuildRowsNeverExceedsHeight(t *testing.T) {
	c := newTestController(t)
	c.Handle(TabsUpdated{Tabs: threeTabs()})

	for height := 1; height <= HeaderRows+4; height++ {
		rows := c.BuildRows(height, 20)
		require.Len(t, rows, height, "height %d", height)
	}
}

func TestBuildRowsEmptyTabs(t *testing.T) {
	c := newTestController(t)
	require.Nil(t, c.BuildRows(10, 25))
}

func TestBuildRowsActiveStyling(t *testing.T) {
	c := newTestController(t)
	c.Handle(TabsUpdated{Tabs: threeTabs()})

	rows := c.BuildRows(8, 25)
	active, inactive := rows[HeaderRows], rows[HeaderRows+1]

	require.True(t, active.Bold)
	require.False(t, active.Italic)
	require.Equal(t, c.cfg.Colors.ActiveBg, active.Bg)

	require.True(t, inactive.Italic)
	require.Equal(t, c.cfg.Colors.Bg, inactive.Bg)
}

func TestBuildRowsAlertPhases(t *testing.T) {
	c := newTestController(t)
	c.Handle(TabsUpdated{Tabs: threeTabs()})
	c.HandleRequest(CommandResultRequest{PaneID: "2", ExitCode: "0"})

	// Fresh command results start in the accent-background phase.
	row := c.BuildRows(8, 25)[HeaderRows+1]
	require.Equal(t, c.cfg.Colors.Success, row.Bg)
	require.Equal(t, c.cfg.Colors.Bg, row.Fg)

	c.Handle(TimerFired{})
	row = c.BuildRows(8, 25)[HeaderRows+1]
	require.Equal(t, c.cfg.Colors.Success, row.Fg)
	require.Equal(t, c.cfg.Colors.Bg, row.Bg)
}

func TestBuildRowsFailureAndNotifyAccents(t *testing.T) {
	c := newTestController(t)
	c.Handle(TabsUpdated{Tabs: threeTabs()})
	c.HandleRequest(CommandResultRequest{PaneID: "2", ExitCode: "127"})
	c.HandleRequest(NotificationRequest{Target: "logs"})

	rows := c.BuildRows(8, 25)
	require.Equal(t, c.cfg.Colors.Failure, rows[HeaderRows+1].Bg)
	// Notifications start in the off phase.
	require.Equal(t, c.cfg.Colors.Notify, rows[HeaderRows+2].Fg)
}

func TestBuildRowsCollapsedLabels(t *testing.T) {
	c := newTestController(t)
	tabs := threeTabs()
	tabs[1].Name = "🦊 build"
	c.Handle(TabsUpdated{Tabs: tabs})
	c.Handle(KeyPressed{Key: c.cfg.Sidebar.ToggleKey})

	w := c.Width()
	rows := c.BuildRows(8, w)
	for _, r := range rows {
		require.Equal(t, w, layout.Width(r.Text))
	}
	require.Equal(t, "2 🦊", strings.TrimSpace(rows[HeaderRows+1].Text))
	require.Equal(t, "1 e", strings.TrimSpace(rows[HeaderRows].Text))
}

func TestBuildRowsDecoratesDefaultNames(t *testing.T) {
	c := newTestController(t)
	c.cfg.Names.Decorate = true
	tabs := threeTabs()
	tabs[1].Name = "Tab #2"
	tabs[1].DefaultName = true
	c.Handle(TabsUpdated{Tabs: tabs})

	row := c.BuildRows(8, 30)[HeaderRows+1]
	require.NotContains(t, row.Text, "Tab #2")
	require.True(t, strings.HasPrefix(strings.TrimSpace(row.Text), "2 "))
}

func TestRenderKeepsLineCount(t *testing.T) {
	lipgloss.SetColorProfile(termenv.TrueColor)
	c := newTestController(t)
	c.Handle(TabsUpdated{Tabs: threeTabs()})

	lines := c.Render(6, 20)
	require.Len(t, lines, 6)
	for _, l := range lines {
		require.Contains(t, l, "\x1b[", "styled output should carry escapes")
	}
}
