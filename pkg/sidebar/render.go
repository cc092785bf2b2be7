package sidebar

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/b/zj-sidebar/pkg/alerts"
	"github.com/b/zj-sidebar/pkg/layout"
)

// HeaderRows is the fixed header: one blank line, the mode line, and a
// separator rule. Mouse rows at or past this index map onto tabs.
const HeaderRows = 3

// Row is one fully laid out sidebar line with its resolved style. Text
// is already exactly as wide as the pane; styling never changes widths.
type Row struct {
	Text   string
	Fg     string
	Bg     string
	Bold   bool
	Italic bool
}

// RowsNeeded is how many lines a full, unclipped sidebar occupies.
// Callers with shorter panes scroll, keeping the active tab in view.
func (c *Controller) RowsNeeded() int {
	if len(c.tabs) == 0 {
		return 0
	}
	return HeaderRows + len(c.tabs)
}

// ActiveRow is the line index of the active tab, 0 when unknown.
func (c *Controller) ActiveRow() int {
	for i, t := range c.tabs {
		if t.Position == c.activePos {
			return HeaderRows + i
		}
	}
	return 0
}

// BuildRows lays the sidebar out into height lines of width columns.
// It is pure with respect to the terminal: no escapes, no host calls,
// which is what the layout tests lean on.
func (c *Controller) BuildRows(height, width int) []Row {
	if len(c.tabs) == 0 || height <= 0 || width <= 0 {
		return nil
	}
	cl := c.cfg.Colors

	rows := make([]Row, 0, height)
	blank := Row{Text: strings.Repeat(" ", width), Fg: cl.Fg, Bg: cl.Bg}
	rows = append(rows, blank)
	rows = append(rows, Row{
		Text: layout.Center(strings.ToUpper(c.mode), width),
		Fg:   cl.Bg,
		Bg:   cl.Mode,
		Bold: true,
	})
	rows = append(rows, Row{
		Text: strings.Repeat("─", width),
		Fg:   cl.Separator,
		Bg:   cl.Bg,
	})

	for _, t := range c.tabs {
		if len(rows) >= height {
			break
		}
		rows = append(rows, c.tabRow(t, width))
	}
	for len(rows) < height {
		rows = append(rows, blank)
	}
	// A pane shorter than the header still gets exactly height lines.
	if len(rows) > height {
		rows = rows[:height]
	}
	return rows
}

// Render paints the rows with ANSI styling for the terminal.
func (c *Controller) Render(height, width int) []string {
	rows := c.BuildRows(height, width)
	lines := make([]string, len(rows))
	for i, r := range rows {
		style := lipgloss.NewStyle().
			Foreground(lipgloss.Color(r.Fg)).
			Background(lipgloss.Color(r.Bg)).
			Bold(r.Bold).
			Italic(r.Italic)
		lines[i] = style.Render(r.Text)
	}
	return lines
}

func (c *Controller) tabRow(t Tab, width int) Row {
	name := t.Name
	if c.cfg.Names.Decorate && t.DefaultName {
		name = c.names.Get(t.Position)
	}
	if c.collapse.Desired() {
		name = layout.FirstCluster(name)
	}
	label := fmt.Sprintf("%d %s", t.Position+1, name)

	// One leading column of margin, then exact-width content.
	text := " " + layout.Fit(label, width-1)

	cl := c.cfg.Colors
	row := Row{Text: text, Fg: cl.Fg, Bg: cl.Bg, Italic: !t.Active}
	if t.Active {
		row.Fg = cl.ActiveFg
		row.Bg = cl.ActiveBg
		row.Bold = true
		row.Italic = false
		return row
	}
	if st, ok := c.engine.Get(t.Position); ok {
		accent := alertAccent(st, cl.Success, cl.Failure, cl.Notify)
		if st.AlternateColor {
			row.Fg = cl.Bg
			row.Bg = accent
		} else {
			row.Fg = accent
			row.Bg = cl.Bg
		}
	}
	return row
}

// alertAccent picks the accent color for an alert: green or red by
// exit status for command results, the notify color otherwise.
func alertAccent(st alerts.State, success, failure, notify string) string {
	if st.Kind == alerts.CommandResult {
		if st.Success {
			return success
		}
		return failure
	}
	return notify
}
