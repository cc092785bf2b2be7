// Package host adapts the terminal multiplexer (tmux) into the tab
// snapshot and outbound actions the sidebar core works with. Everything
// goes through the tmux CLI; failures surface as errors but the caller
// treats them as "keep last known good state".
package host

import (
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// ansiEscapeRegex matches ANSI escape sequences.
var ansiEscapeRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]|\x1b\].*?(?:\x07|\x1b\\)`)

func stripANSI(s string) string {
	return ansiEscapeRegex.ReplaceAllString(s, "")
}

// Pane is one pane inside a tab. IDs are the numeric part of tmux pane
// IDs, which is what command-result reports address.
type Pane struct {
	ID      int
	Active  bool
	Command string
}

// Tab is one window of the session. Position is the 0-based slot in
// assignment order and is the identity key for alerts; Index is the
// host's own window index, used when switching.
type Tab struct {
	Position    int
	Index       int
	Name        string
	Active      bool
	DefaultName bool // host-assigned automatic name, candidate for decoration
	Panes       []Pane
}

// ListTabs returns the session's windows with their panes, in
// assignment order.
func ListTabs() ([]Tab, error) {
	out, err := exec.Command("tmux", "list-windows", "-F",
		"#{window_index}\x1f#{window_name}\x1f#{window_active}\x1f#{?automatic-rename,1,0}").Output()
	if err != nil {
		return nil, fmt.Errorf("tmux list-windows failed: %w", err)
	}

	var tabs []Tab
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if line == "" {
			continue
		}
		parts := strings.Split(line, "\x1f")
		if len(parts) < 4 {
			continue
		}
		index, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		tab := Tab{
			Position:    len(tabs),
			Index:       index,
			Name:        stripANSI(parts[1]),
			Active:      parts[2] == "1",
			DefaultName: parts[3] == "1",
		}
		tab.Panes, _ = listPanes(index)
		tabs = append(tabs, tab)
	}
	return tabs, nil
}

// listPanes returns the panes of one window, skipping the sidebar's own
// pane so reports never resolve to the sidebar itself.
func listPanes(windowIndex int) ([]Pane, error) {
	out, err := exec.Command("tmux", "list-panes", "-t", fmt.Sprintf(":%d", windowIndex), "-F",
		"#{pane_id}\x1f#{pane_active}\x1f#{pane_current_command}").Output()
	if err != nil {
		return nil, err
	}

	var panes []Pane
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if line == "" {
			continue
		}
		parts := strings.Split(line, "\x1f")
		if len(parts) < 3 {
			continue
		}
		command := stripANSI(parts[2])
		if command == "sidebar" || command == "zj-sidebar" {
			continue
		}
		id, err := parsePaneID(parts[0])
		if err != nil {
			continue
		}
		panes = append(panes, Pane{
			ID:      id,
			Active:  parts[1] == "1",
			Command: command,
		})
	}
	return panes, nil
}

// parsePaneID strips the "%" prefix from tmux pane IDs.
func parsePaneID(raw string) (int, error) {
	return strconv.Atoi(strings.TrimPrefix(raw, "%"))
}

// SelectWindow switches the session to the given window index.
func SelectWindow(index int) error {
	if err := exec.Command("tmux", "select-window", "-t", fmt.Sprintf(":%d", index)).Run(); err != nil {
		return fmt.Errorf("tmux select-window failed: %w", err)
	}
	return nil
}

// ResizePane swaps the surrounding layout after a collapse toggle by
// resizing the sidebar's own pane to the new width.
func ResizePane(paneID string, width int) error {
	if err := exec.Command("tmux", "resize-pane", "-t", paneID, "-x", strconv.Itoa(width)).Run(); err != nil {
		return fmt.Errorf("tmux resize-pane failed: %w", err)
	}
	return nil
}

// SessionName returns the attached session's name, used to seed the
// decorative name generator identically across instances.
func SessionName() string {
	out, err := exec.Command("tmux", "display-message", "-p", "#{session_name}").Output()
	if err != nil {
		return "default"
	}
	return strings.TrimSpace(string(out))
}
