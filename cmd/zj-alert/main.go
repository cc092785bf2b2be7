package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/b/zj-sidebar/pkg/bus"
	"github.com/b/zj-sidebar/pkg/collapse"
	"github.com/b/zj-sidebar/pkg/host"
	"github.com/b/zj-sidebar/pkg/paths"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "zj-alert",
	Short: "Send alerts to the zj-sidebar instances of this session",
	Long: `zj-alert talks to the per-session sidebar broker. Shell hooks call it
to flag finished commands, scripts call it to raise notifications, and
keybindings call it to collapse or expand every sidebar at once.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Report a finished command's exit status",
	Long: `Report tells the sidebars that a command finished in some pane. Wire it
into your shell prompt hook:

  zj-alert report --exit-code $?

The owning tab flashes green or red until it is next activated.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pane, _ := cmd.Flags().GetString("pane")
		code, _ := cmd.Flags().GetString("exit-code")
		if pane == "" {
			pane = strings.TrimPrefix(os.Getenv("TMUX_PANE"), "%")
		}
		if pane == "" {
			return fmt.Errorf("no pane id: pass --pane or run inside tmux")
		}
		return send(bus.MsgAlertReport, bus.AlertReportPayload{PaneID: pane, ExitCode: code})
	},
}

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Raise a notification on a tab",
	Long: `Notify flashes a tab addressed by its 1-based number or by name. The
flash fades after the configured number of cycles but the highlight
stays until the tab is visited.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tab, _ := cmd.Flags().GetInt("tab")
		name, _ := cmd.Flags().GetString("name")
		flash, _ := cmd.Flags().GetUint8("flash")
		var target string
		switch {
		case tab > 0 && name != "":
			return fmt.Errorf("--tab and --name are mutually exclusive")
		case tab > 0:
			target = fmt.Sprintf("%d", tab)
		case name != "":
			target = name
		default:
			return fmt.Errorf("address the tab with --tab or --name")
		}
		return send(bus.MsgNotify, bus.NotifyPayload{Target: target, Flash: flash})
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Collapse or expand all sidebars of this session",
	Long: `Toggle flips the shared collapse slot. Every running sidebar picks the
change up through its poll loop, so one keybinding folds them all.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		session := sessionID()
		store := collapse.NewFileStore(paths.CollapsePath(session))
		rec, err := store.Read()
		if err != nil && !errors.Is(err, collapse.ErrNoRecord) {
			return err
		}
		next := collapse.Record{Timestamp: time.Now().UnixMilli(), Collapsed: !rec.Collapsed}
		if err := store.Write(next); err != nil {
			return err
		}
		if next.Collapsed {
			fmt.Println("collapsed")
		} else {
			fmt.Println("expanded")
		}
		return nil
	},
}

func sessionID() string {
	if s := rootCmd.Flag("session").Value.String(); s != "" {
		return s
	}
	return host.SessionName()
}

func send(t bus.MessageType, payload any) error {
	session := sessionID()
	clientID := fmt.Sprintf("cli-%d", os.Getpid())
	client, err := bus.Dial(session, clientID, bus.KindCLI)
	if err != nil {
		return fmt.Errorf("no sidebar broker for session %q: %w", session, err)
	}
	defer client.Close()
	return client.Send(bus.NewMessage(t, clientID, payload))
}

func init() {
	rootCmd.PersistentFlags().String("session", "", "session to target (default: current tmux session)")
	reportCmd.Flags().String("pane", "", "pane id, without the leading % (default: $TMUX_PANE)")
	reportCmd.Flags().String("exit-code", "0", "exit status of the finished command")
	notifyCmd.Flags().Int("tab", 0, "1-based tab number to notify")
	notifyCmd.Flags().String("name", "", "tab name to notify")
	notifyCmd.Flags().Uint8("flash", 0, "flash cycles before settling (0 = configured default)")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(notifyCmd)
	rootCmd.AddCommand(toggleCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
