package bus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// Client is one end of a bus connection. Messages arrive on the
// receive loop and are handed to OnMessage; sends are synchronous with
// a short write deadline.
type Client struct {
	conn     net.Conn
	clientID string

	// OnMessage is invoked from the receive goroutine for every relayed
	// message. Set it before calling Listen.
	OnMessage func(Message)
}

// Dial connects to the session broker and announces the client.
func Dial(sessionID, clientID, kind string) (*Client, error) {
	conn, err := net.DialTimeout("unix", SocketPath(sessionID), time.Second)
	if err != nil {
		return nil, fmt.Errorf("dial bus: %w", err)
	}
	c := &Client{conn: conn, clientID: clientID}
	if err := c.Send(NewMessage(MsgHello, clientID, HelloPayload{Kind: kind})); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

// Open joins the session bus, hosting the broker when none is alive.
// The hosting instance talks to its own broker through a loopback
// connection like everyone else, so relay semantics are uniform. The
// returned server is nil for non-hosting clients.
func Open(sessionID, clientID, kind string) (*Client, *Server, error) {
	server := NewServer(sessionID)
	if err := server.Start(); err != nil {
		server = nil
	}

	client, err := Dial(sessionID, clientID, kind)
	if err != nil {
		if server != nil {
			server.Stop()
		}
		return nil, nil, err
	}
	return client, server, nil
}

// ID returns the identifier this client registered with.
func (c *Client) ID() string { return c.clientID }

// Send writes one message to the broker.
func (c *Client) Send(msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	c.conn.SetWriteDeadline(time.Now().Add(time.Second))
	if _, err := c.conn.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("bus send: %w", err)
	}
	return nil
}

// Listen runs the receive loop until the connection drops. Malformed
// lines are skipped; the loop is meant to live in its own goroutine.
func (c *Client) Listen() {
	scanner := bufio.NewScanner(c.conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		var msg Message
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			continue
		}
		if c.OnMessage != nil {
			c.OnMessage(msg)
		}
	}
}

// Close tears the connection down; Listen returns shortly after.
func (c *Client) Close() error {
	return c.conn.Close()
}
