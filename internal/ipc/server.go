package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/Trissilein/helltime/internal/overlay"
	"github.com/Trissilein/helltime/internal/runtimepath"
	"github.com/Trissilein/helltime/internal/schedule"
	"github.com/Trissilein/helltime/internal/visibility"
)

// Deps are the daemon components the server exposes over the socket.
type Deps struct {
	Overlay    overlay.Manager
	Visibility *visibility.Manager
	Schedule   *schedule.Fetcher
	// ReminderActive reports whether the reminder loop is enabled. May be
	// nil.
	ReminderActive func() bool
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	deps         Deps
	startTime    time.Time
	reloadChan   chan struct{}
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server
func NewServer(deps Deps, reloadChan chan struct{}) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		deps:       deps,
		startTime:  time.Now(),
		reloadChan: reloadChan,
	}, nil
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	// Accept connections
	go s.acceptLoop()

	return nil
}

// Stop shuts the listener down and removes the socket.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	// Parse request
	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	// Handle command
	resp := s.handleCommand(req)

	// Send response
	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandReload:
		return s.handleReload()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandGetSchedule:
		return s.handleGetSchedule()
	case CommandOverlayShow:
		return s.handleOverlayShow(req.Payload)
	case CommandOverlayHide:
		return s.okOrError(s.deps.Overlay.Hide())
	case CommandOverlayEnterCfg:
		return s.handleOverlayEnterConfig(req.Payload)
	case CommandOverlayExitCfg:
		return s.okOrError(s.deps.Overlay.ExitConfig())
	case CommandOverlayGetPos:
		return s.handleOverlayGetPosition()
	case CommandOverlaySetPos:
		return s.handleOverlaySetPosition(req.Payload)
	case CommandWindowRestore:
		s.deps.Visibility.Restore()
		return s.ok(nil)
	case CommandWindowHide:
		s.deps.Visibility.HideToTray()
		return s.ok(nil)
	case CommandWindowToggle:
		s.deps.Visibility.Toggle()
		return s.ok(nil)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleReload() *Response {
	select {
	case s.reloadChan <- struct{}{}:
	default:
		// A reload is already pending.
	}
	return s.ok(nil)
}

func (s *Server) handleGetStatus() *Response {
	data := StatusData{
		DaemonRunning: true,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		WindowState:   s.deps.Visibility.State().String(),
		Overlay:       s.deps.Overlay.Status(),
	}
	if s.deps.ReminderActive != nil {
		data.ReminderActive = s.deps.ReminderActive()
	}
	return s.ok(data)
}

func (s *Server) handleGetSchedule() *Response {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	sched, err := s.deps.Schedule.Get(ctx)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return s.ok(sched)
}

func (s *Server) handleOverlayShow(raw json.RawMessage) *Response {
	var payload ShowPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid show payload: %v", err))
	}
	if payload.Toast.Title == "" && payload.Toast.Body == "" {
		return NewErrorResponse("toast requires a title or body")
	}
	return s.okOrError(s.deps.Overlay.Show(payload.Toast, payload.Position))
}

func (s *Server) handleOverlayEnterConfig(raw json.RawMessage) *Response {
	var payload EnterConfigPayload
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid enter-config payload: %v", err))
		}
	}
	return s.okOrError(s.deps.Overlay.EnterConfig(payload.Position))
}

func (s *Server) handleOverlayGetPosition() *Response {
	return s.ok(PositionData{Position: s.deps.Overlay.GetPosition()})
}

func (s *Server) handleOverlaySetPosition(raw json.RawMessage) *Response {
	var pos overlay.Position
	if err := json.Unmarshal(raw, &pos); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid position payload: %v", err))
	}
	return s.okOrError(s.deps.Overlay.SetPosition(pos))
}

func (s *Server) ok(data interface{}) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func (s *Server) okOrError(err error) *Response {
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return s.ok(nil)
}

func (s *Server) sendError(conn net.Conn, msg string) {
	resp := NewErrorResponse(msg)
	data, err := resp.Marshal()
	if err != nil {
		return
	}
	data = append(data, '\n')
	conn.Write(data)
}
