package bus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"
)

// clientInfo tracks one connected bus client.
type clientInfo struct {
	conn net.Conn
	kind string
}

// Server is the per-session broker. Exactly one is alive per session;
// whichever sidebar instance starts first claims the pidfile and hosts
// it, the rest dial in as plain clients.
type Server struct {
	socketPath string
	pidPath    string
	listener   net.Listener
	clients    map[string]*clientInfo
	clientsMu  sync.RWMutex
	done       chan struct{}
}

// NewServer creates a broker for a session.
func NewServer(sessionID string) *Server {
	return &Server{
		socketPath: SocketPath(sessionID),
		pidPath:    PidPath(sessionID),
		clients:    make(map[string]*clientInfo),
		done:       make(chan struct{}),
	}
}

// Start claims the session pidfile and begins accepting connections.
// It fails when another broker is already alive for this session.
func (s *Server) Start() error {
	if err := s.checkAndClaimPid(); err != nil {
		return err
	}

	// Safe to clear a stale socket now that we own the pidfile.
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		os.Remove(s.pidPath)
		return fmt.Errorf("failed to listen on socket: %w", err)
	}
	s.listener = listener

	go s.acceptLoop()
	return nil
}

// checkAndClaimPid checks for a live broker and claims the pidfile.
func (s *Server) checkAndClaimPid() error {
	if data, err := os.ReadFile(s.pidPath); err == nil {
		pidStr := strings.TrimSpace(string(data))
		if pid, err := strconv.Atoi(pidStr); err == nil && pid > 0 {
			if process, err := os.FindProcess(pid); err == nil {
				// FindProcess always succeeds on unix; signal 0 probes
				// whether the process is actually alive.
				if err := process.Signal(syscall.Signal(0)); err == nil {
					return fmt.Errorf("broker already running with pid %d", pid)
				}
			}
		}
		os.Remove(s.pidPath)
	}

	pid := os.Getpid()
	if err := os.WriteFile(s.pidPath, []byte(strconv.Itoa(pid)), 0644); err != nil {
		return fmt.Errorf("failed to write pidfile: %w", err)
	}
	return nil
}

// Stop shuts the broker down and releases the socket and pidfile.
func (s *Server) Stop() {
	close(s.done)
	if s.listener != nil {
		s.listener.Close()
	}
	s.clientsMu.Lock()
	for id, client := range s.clients {
		client.conn.Close()
		delete(s.clients, id)
	}
	s.clientsMu.Unlock()
	os.Remove(s.socketPath)
	os.Remove(s.pidPath)
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

func (s *Server) acceptLoop() {
	for {
		select {
		case <-s.done:
			return
		default:
		}

		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				continue
			}
		}

		go s.handleClient(conn)
	}
}

// handleClient reads one client's messages and relays them. Relay
// rules: alert reports and notify requests fan out to every sidebar;
// alert-sync frames fan out to every sidebar except the sender, which
// keeps the sibling broadcast private to the plugin's own instances.
func (s *Server) handleClient(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	var clientID string

	for scanner.Scan() {
		var msg Message
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			continue
		}

		switch msg.Type {
		case MsgHello:
			clientID = msg.ClientID
			kind := KindCLI
			var hello HelloPayload
			if msg.Payload != nil && json.Unmarshal(msg.Payload, &hello) == nil && hello.Kind != "" {
				kind = hello.Kind
			}
			s.clientsMu.Lock()
			s.clients[clientID] = &clientInfo{conn: conn, kind: kind}
			s.clientsMu.Unlock()

		case MsgAlertReport, MsgNotify:
			s.relay(msg, "")

		case MsgAlertSync:
			s.relay(msg, clientID)

		case MsgPing:
			s.send(conn, Message{Type: MsgPong})
		}
	}

	if clientID != "" {
		s.clientsMu.Lock()
		delete(s.clients, clientID)
		s.clientsMu.Unlock()
	}
}

// relay forwards a message to every connected sidebar, skipping the
// excluded client ID (the sender, for sibling broadcasts).
func (s *Server) relay(msg Message, exclude string) {
	s.clientsMu.RLock()
	targets := make([]net.Conn, 0, len(s.clients))
	for id, client := range s.clients {
		if client.kind != KindSidebar || id == exclude {
			continue
		}
		targets = append(targets, client.conn)
	}
	s.clientsMu.RUnlock()

	for _, conn := range targets {
		s.send(conn, msg)
	}
}

func (s *Server) send(conn net.Conn, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(time.Second))
	_, err = conn.Write(append(data, '\n'))
	return err
}
