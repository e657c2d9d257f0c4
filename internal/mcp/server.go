// Package mcp exposes the daemon's overlay and window commands as MCP tools
// over stdio, proxying each call through the IPC client to the running
// daemon.
package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Trissilein/helltime/internal/config"
	"github.com/Trissilein/helltime/internal/ipc"
	"github.com/Trissilein/helltime/internal/overlay"
	"github.com/Trissilein/helltime/internal/schedule"
)

const (
	ServerName    = "helltime"
	ServerVersion = "0.1.0"
)

// Daemon is the slice of the IPC client the tools need. Narrowed to an
// interface so tests can run without a live daemon.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	GetSchedule() (*schedule.Schedule, error)
	OverlayShow(toast overlay.Payload, pos *overlay.Position) error
	OverlayHide() error
	OverlayEnterConfig(pos *overlay.Position) error
	OverlayExitConfig() error
	OverlaySetPosition(pos overlay.Position) error
	WindowRestore() error
	WindowHide() error
	WindowToggle() error
}

// Server is the MCP server for helltime overlay control.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
	cfg       *config.Config
}

// NewServer creates an MCP server proxying to the daemon socket.
func NewServer(cfg *config.Config) *Server {
	return NewServerWithDaemon(cfg, ipc.NewClient())
}

// NewServerWithDaemon creates an MCP server with an explicit daemon client.
func NewServerWithDaemon(cfg *config.Config, daemon Daemon) *Server {
	s := &Server{daemon: daemon, cfg: cfg}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "overlay_show",
		Description: "Show a toast on the desktop overlay. The toast auto-hides after about five seconds unless shown again. Category selects the text color; color, opacity and scale override the configured defaults for this toast only.",
	}, s.handleOverlayShow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "overlay_hide",
		Description: "Hide the overlay toast immediately.",
	}, s.handleOverlayHide)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "overlay_status",
		Description: "Report the overlay's current state: whether the native surface is supported and running, visibility, config mode, last error and position, plus the host window's tracked visibility.",
	}, s.handleOverlayStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "overlay_enter_config",
		Description: "Make the overlay surface interactive so the user can drag it to a new position. Exit config mode to restore click-through behavior.",
	}, s.handleOverlayEnterConfig)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "overlay_exit_config",
		Description: "Leave config mode and restore the overlay's click-through toast behavior.",
	}, s.handleOverlayExitConfig)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "overlay_set_position",
		Description: "Move the overlay surface to an explicit screen coordinate.",
	}, s.handleOverlaySetPosition)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "window_toggle",
		Description: "Toggle the host window between visible and hidden-to-tray.",
	}, s.handleWindowToggle)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "schedule_get",
		Description: "Fetch the upcoming event schedule (helltide, legion, world boss). Served from a short-lived cache.",
	}, s.handleScheduleGet)
}

func (s *Server) handleOverlayShow(_ context.Context, _ *mcpsdk.CallToolRequest, args OverlayShowInput) (*mcpsdk.CallToolResult, OverlayShowOutput, error) {
	if args.Title == "" && args.Body == "" {
		return nil, OverlayShowOutput{}, fmt.Errorf("toast requires a title or body")
	}

	toast := overlay.Payload{
		Title:    args.Title,
		Body:     args.Body,
		Category: overlay.Category(args.Category),
	}
	if args.BackgroundColor != "" {
		rgb, err := config.ParseHexColor(args.BackgroundColor)
		if err != nil {
			return nil, OverlayShowOutput{}, err
		}
		toast.BackgroundRGB = rgb
	}
	if args.BackgroundAlpha != nil {
		toast.BackgroundAlpha = overlay.ClampAlpha(*args.BackgroundAlpha)
	}
	if args.Scale != nil {
		toast.Scale = overlay.ClampScale(*args.Scale)
	}

	var pos *overlay.Position
	if args.X != nil && args.Y != nil {
		pos = &overlay.Position{X: *args.X, Y: *args.Y}
	}

	if err := s.daemon.OverlayShow(toast, pos); err != nil {
		return nil, OverlayShowOutput{}, err
	}
	return nil, OverlayShowOutput{Shown: true}, nil
}

func (s *Server) handleOverlayHide(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, AckOutput, error) {
	if err := s.daemon.OverlayHide(); err != nil {
		return nil, AckOutput{}, err
	}
	return nil, AckOutput{OK: true}, nil
}

func (s *Server) handleOverlayStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, OverlayStatusOutput, error) {
	status, err := s.daemon.GetStatus()
	if err != nil {
		return nil, OverlayStatusOutput{}, err
	}

	out := OverlayStatusOutput{
		Supported:   status.Overlay.Supported,
		Running:     status.Overlay.Running,
		Visible:     status.Overlay.Visible,
		ConfigMode:  status.Overlay.ConfigMode,
		LastError:   status.Overlay.LastError,
		WindowState: status.WindowState,
	}
	if p := status.Overlay.Position; p != nil {
		out.X = &p.X
		out.Y = &p.Y
	}
	return nil, out, nil
}

func (s *Server) handleOverlayEnterConfig(_ context.Context, _ *mcpsdk.CallToolRequest, args EnterConfigInput) (*mcpsdk.CallToolResult, AckOutput, error) {
	var pos *overlay.Position
	if args.X != nil && args.Y != nil {
		pos = &overlay.Position{X: *args.X, Y: *args.Y}
	}
	if err := s.daemon.OverlayEnterConfig(pos); err != nil {
		return nil, AckOutput{}, err
	}
	return nil, AckOutput{OK: true}, nil
}

func (s *Server) handleOverlayExitConfig(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, AckOutput, error) {
	if err := s.daemon.OverlayExitConfig(); err != nil {
		return nil, AckOutput{}, err
	}
	return nil, AckOutput{OK: true}, nil
}

func (s *Server) handleOverlaySetPosition(_ context.Context, _ *mcpsdk.CallToolRequest, args PositionInput) (*mcpsdk.CallToolResult, AckOutput, error) {
	if err := s.daemon.OverlaySetPosition(overlay.Position{X: args.X, Y: args.Y}); err != nil {
		return nil, AckOutput{}, err
	}
	return nil, AckOutput{OK: true}, nil
}

func (s *Server) handleWindowToggle(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, AckOutput, error) {
	if err := s.daemon.WindowToggle(); err != nil {
		return nil, AckOutput{}, err
	}
	return nil, AckOutput{OK: true}, nil
}

func (s *Server) handleScheduleGet(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ScheduleOutput, error) {
	sched, err := s.daemon.GetSchedule()
	if err != nil {
		return nil, ScheduleOutput{}, err
	}

	out := ScheduleOutput{
		WorldBoss: toEventInfos(sched.WorldBoss),
		Legion:    toEventInfos(sched.Legion),
		Helltide:  toEventInfos(sched.Helltide),
	}
	return nil, out, nil
}

func toEventInfos(events []schedule.Event) []ScheduleEventInfo {
	infos := make([]ScheduleEventInfo, 0, len(events))
	for _, e := range events {
		infos = append(infos, ScheduleEventInfo{Name: e.Name, Time: e.Time})
	}
	return infos
}
