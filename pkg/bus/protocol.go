// Package bus is the per-session rendezvous for sidebar instances and
// the zj-alert CLI: a unix-socket broker relaying newline-delimited JSON
// messages. Sidebars use it to receive inbound requests and to exchange
// private alert-map broadcasts with their siblings. Everything here is
// best effort; a sidebar without a bus still renders and toggles.
package bus

import (
	"encoding/json"

	"github.com/b/zj-sidebar/pkg/paths"
)

// MessageType identifies the type of message.
type MessageType string

const (
	MsgHello       MessageType = "hello"
	MsgAlertReport MessageType = "alert_report" // CLI -> sidebars: command finished in a pane
	MsgNotify      MessageType = "notify"       // CLI -> sidebars: raise a notification on a tab
	MsgAlertSync   MessageType = "alert_sync"   // sidebar -> sibling sidebars: current alert map
	MsgPing        MessageType = "ping"
	MsgPong        MessageType = "pong"
)

// Client kinds announced in the hello message. Only sidebars receive
// relayed traffic; CLI connections are fire-and-forget senders.
const (
	KindSidebar = "sidebar"
	KindCLI     = "cli"
)

// Message is the envelope for all bus traffic.
type Message struct {
	Type     MessageType     `json:"type"`
	ClientID string          `json:"client_id,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// HelloPayload announces a client to the broker.
type HelloPayload struct {
	Kind string `json:"kind"`
}

// AlertReportPayload carries a command-result report. Fields stay
// strings on the wire; the sidebar parses them and drops the request on
// malformed numbers.
type AlertReportPayload struct {
	PaneID   string `json:"pane_id"`
	ExitCode string `json:"exit_code"`
}

// NotifyPayload addresses a tab by 1-based number or by name. Flash 0
// means "use the configured default".
type NotifyPayload struct {
	Target string `json:"target"`
	Flash  uint8  `json:"flash,omitempty"`
}

// AlertSyncPayload wraps a serialized alert map so late-starting
// instances can catch up.
type AlertSyncPayload struct {
	Alerts json.RawMessage `json:"alerts"`
}

// NewMessage wraps a payload into an envelope. Marshal failures can't
// happen for the payload types above, so they are swallowed into an
// empty payload.
func NewMessage(t MessageType, clientID string, payload any) Message {
	msg := Message{Type: t, ClientID: clientID}
	if payload != nil {
		if data, err := json.Marshal(payload); err == nil {
			msg.Payload = data
		}
	}
	return msg
}

// SocketPath returns the bus socket path for a session.
func SocketPath(sessionID string) string {
	return paths.SocketPath(sessionID)
}

// PidPath returns the broker pidfile path for a session.
func PidPath(sessionID string) string {
	return paths.PidPath(sessionID)
}
