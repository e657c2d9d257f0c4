package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/Trissilein/helltime/internal/overlay"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload          CommandType = "RELOAD"
	CommandGetStatus       CommandType = "GET_STATUS"
	CommandGetSchedule     CommandType = "GET_SCHEDULE"
	CommandOverlayShow     CommandType = "OVERLAY_SHOW"
	CommandOverlayHide     CommandType = "OVERLAY_HIDE"
	CommandOverlayEnterCfg CommandType = "OVERLAY_ENTER_CONFIG"
	CommandOverlayExitCfg  CommandType = "OVERLAY_EXIT_CONFIG"
	CommandOverlayGetPos   CommandType = "OVERLAY_GET_POSITION"
	CommandOverlaySetPos   CommandType = "OVERLAY_SET_POSITION"
	CommandWindowRestore   CommandType = "WINDOW_RESTORE"
	CommandWindowHide      CommandType = "WINDOW_HIDE"
	CommandWindowToggle    CommandType = "WINDOW_TOGGLE"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	DaemonRunning  bool           `json:"daemon_running"`
	UptimeSeconds  int64          `json:"uptime_seconds"`
	WindowState    string         `json:"window_state"`
	Overlay        overlay.Status `json:"overlay"`
	ReminderActive bool           `json:"reminder_active"`
}

// ShowPayload represents the payload for OVERLAY_SHOW
type ShowPayload struct {
	Toast    overlay.Payload   `json:"toast"`
	Position *overlay.Position `json:"position,omitempty"`
}

// EnterConfigPayload represents the payload for OVERLAY_ENTER_CONFIG
type EnterConfigPayload struct {
	Position *overlay.Position `json:"position,omitempty"`
}

// PositionData represents the data returned by OVERLAY_GET_POSITION
type PositionData struct {
	Position *overlay.Position `json:"position,omitempty"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
