package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/Trissilein/helltime/internal/overlay"
	"github.com/Trissilein/helltime/internal/runtimepath"
	"github.com/Trissilein/helltime/internal/schedule"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}

	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	// Connect to socket
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	// Set deadline
	conn.SetDeadline(time.Now().Add(c.timeout))

	// Marshal request
	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	// Send request
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	// Read response
	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// Parse response
	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	// Check for error response
	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	_, err := c.sendRequest(&Request{Command: CommandReload})
	return err
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetStatus})
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}

	return &status, nil
}

// GetSchedule retrieves the cached event schedule
func (c *Client) GetSchedule() (*schedule.Schedule, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetSchedule})
	if err != nil {
		return nil, err
	}

	var sched schedule.Schedule
	if err := json.Unmarshal(resp.Data, &sched); err != nil {
		return nil, fmt.Errorf("failed to parse schedule data: %w", err)
	}

	return &sched, nil
}

// OverlayShow shows a toast
func (c *Client) OverlayShow(toast overlay.Payload, pos *overlay.Position) error {
	payload, err := json.Marshal(ShowPayload{Toast: toast, Position: pos})
	if err != nil {
		return fmt.Errorf("failed to marshal show payload: %w", err)
	}

	_, err = c.sendRequest(&Request{Command: CommandOverlayShow, Payload: payload})
	return err
}

// OverlayHide hides the toast
func (c *Client) OverlayHide() error {
	_, err := c.sendRequest(&Request{Command: CommandOverlayHide})
	return err
}

// OverlayEnterConfig makes the overlay draggable
func (c *Client) OverlayEnterConfig(pos *overlay.Position) error {
	payload, err := json.Marshal(EnterConfigPayload{Position: pos})
	if err != nil {
		return fmt.Errorf("failed to marshal enter-config payload: %w", err)
	}

	_, err = c.sendRequest(&Request{Command: CommandOverlayEnterCfg, Payload: payload})
	return err
}

// OverlayExitConfig restores click-through behavior
func (c *Client) OverlayExitConfig() error {
	_, err := c.sendRequest(&Request{Command: CommandOverlayExitCfg})
	return err
}

// OverlayGetPosition retrieves the overlay's last known position
func (c *Client) OverlayGetPosition() (*overlay.Position, error) {
	resp, err := c.sendRequest(&Request{Command: CommandOverlayGetPos})
	if err != nil {
		return nil, err
	}

	var data PositionData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse position data: %w", err)
	}

	return data.Position, nil
}

// OverlaySetPosition moves the overlay
func (c *Client) OverlaySetPosition(pos overlay.Position) error {
	payload, err := json.Marshal(pos)
	if err != nil {
		return fmt.Errorf("failed to marshal position payload: %w", err)
	}

	_, err = c.sendRequest(&Request{Command: CommandOverlaySetPos, Payload: payload})
	return err
}

// WindowRestore shows and focuses the host window
func (c *Client) WindowRestore() error {
	_, err := c.sendRequest(&Request{Command: CommandWindowRestore})
	return err
}

// WindowHide hides the host window to the tray
func (c *Client) WindowHide() error {
	_, err := c.sendRequest(&Request{Command: CommandWindowHide})
	return err
}

// WindowToggle flips host window visibility
func (c *Client) WindowToggle() error {
	_, err := c.sendRequest(&Request{Command: CommandWindowToggle})
	return err
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
