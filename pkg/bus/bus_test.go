package bus

import (
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"
)

func startTestBroker(t *testing.T) (string, *Server) {
	t.Helper()
	session := fmt.Sprintf("test-%d-%d", os.Getpid(), time.Now().UnixNano()%100000)
	server := NewServer(session)
	if err := server.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	t.Cleanup(server.Stop)
	return session, server
}

func dialSidebar(t *testing.T, session, id string) (*Client, chan Message) {
	t.Helper()
	c, err := Dial(session, id, KindSidebar)
	if err != nil {
		t.Fatalf("Dial(%s) error: %v", id, err)
	}
	t.Cleanup(func() { c.Close() })
	inbox := make(chan Message, 16)
	c.OnMessage = func(m Message) { inbox <- m }
	go c.Listen()
	// A ping/pong round trip guarantees the broker has processed the
	// hello before the test relays anything at this client.
	if err := c.Send(Message{Type: MsgPing, ClientID: id}); err != nil {
		t.Fatalf("ping: %v", err)
	}
	waitFor(t, inbox, MsgPong)
	return c, inbox
}

func waitFor(t *testing.T, inbox chan Message, want MessageType) Message {
	t.Helper()
	select {
	case msg := <-inbox:
		if msg.Type != want {
			t.Fatalf("got message type %q, want %q", msg.Type, want)
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %q", want)
		return Message{}
	}
}

func TestAlertReportFansOutToAllSidebars(t *testing.T) {
	session, _ := startTestBroker(t)
	_, inboxA := dialSidebar(t, session, "sidebar-a")
	_, inboxB := dialSidebar(t, session, "sidebar-b")

	cli, err := Dial(session, "cli-1", KindCLI)
	if err != nil {
		t.Fatalf("Dial(cli) error: %v", err)
	}
	defer cli.Close()

	report := AlertReportPayload{PaneID: "7", ExitCode: "1"}
	if err := cli.Send(NewMessage(MsgAlertReport, "cli-1", report)); err != nil {
		t.Fatalf("Send() error: %v", err)
	}

	for _, inbox := range []chan Message{inboxA, inboxB} {
		msg := waitFor(t, inbox, MsgAlertReport)
		var got AlertReportPayload
		if err := json.Unmarshal(msg.Payload, &got); err != nil {
			t.Fatalf("payload: %v", err)
		}
		if got != report {
			t.Fatalf("payload = %+v, want %+v", got, report)
		}
	}
}

func TestAlertSyncSkipsSender(t *testing.T) {
	session, _ := startTestBroker(t)
	a, inboxA := dialSidebar(t, session, "sidebar-a")
	_, inboxB := dialSidebar(t, session, "sidebar-b")

	sync := AlertSyncPayload{Alerts: json.RawMessage(`{"1":{"kind":0,"alternate_color":true}}`)}
	if err := a.Send(NewMessage(MsgAlertSync, "sidebar-a", sync)); err != nil {
		t.Fatalf("Send() error: %v", err)
	}

	waitFor(t, inboxB, MsgAlertSync)

	select {
	case msg := <-inboxA:
		t.Fatalf("sender received its own broadcast: %+v", msg)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestSecondBrokerRefusesToStart(t *testing.T) {
	session, _ := startTestBroker(t)
	second := NewServer(session)
	if err := second.Start(); err == nil {
		second.Stop()
		t.Fatalf("second broker claimed an owned session")
	}
}

func TestOpenFallsBackToClientWhenBrokerAlive(t *testing.T) {
	session, _ := startTestBroker(t)
	client, server, err := Open(session, "sidebar-x", KindSidebar)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer client.Close()
	if server != nil {
		server.Stop()
		t.Fatalf("Open() started a second broker")
	}
}

func TestPingPong(t *testing.T) {
	session, _ := startTestBroker(t)
	c, inbox := dialSidebar(t, session, "sidebar-a")
	if err := c.Send(Message{Type: MsgPing, ClientID: "sidebar-a"}); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	waitFor(t, inbox, MsgPong)
}
