package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// HostWindow is a handle to the tracked application window. It implements
// the visibility manager's toolkit interface.
type HostWindow struct {
	conn *Connection
	win  xproto.Window
}

// Window returns the underlying X window id.
func (w *HostWindow) Window() xproto.Window {
	return w.win
}

// FindByClass locates a client window whose WM_CLASS instance or class
// matches the given name, case-insensitively.
func FindByClass(conn *Connection, class string) (*HostWindow, error) {
	clients, err := ewmh.ClientListGet(conn.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to list client windows: %w", err)
	}

	want := strings.ToLower(class)
	for _, client := range clients {
		wmClass, err := icccm.WmClassGet(conn.XUtil, client)
		if err != nil {
			continue
		}
		if strings.ToLower(wmClass.Instance) == want || strings.ToLower(wmClass.Class) == want {
			return &HostWindow{conn: conn, win: client}, nil
		}
	}
	return nil, fmt.Errorf("no window with class %q", class)
}

// Wrap returns a HostWindow for a known window id.
func Wrap(conn *Connection, win xproto.Window) *HostWindow {
	return &HostWindow{conn: conn, win: win}
}

// Show maps the window and asks the window manager to activate it.
func (w *HostWindow) Show() error {
	if err := xproto.MapWindowChecked(w.conn.XUtil.Conn(), w.win).Check(); err != nil {
		return fmt.Errorf("failed to map window: %w", err)
	}
	return ewmh.ActiveWindowReq(w.conn.XUtil, w.win)
}

// Hide unmaps the window.
func (w *HostWindow) Hide() error {
	if err := xproto.UnmapWindowChecked(w.conn.XUtil.Conn(), w.win).Check(); err != nil {
		return fmt.Errorf("failed to unmap window: %w", err)
	}
	return nil
}

// Unminimize clears the iconified state.
func (w *HostWindow) Unminimize() error {
	if err := ewmh.WmStateReq(w.conn.XUtil, w.win, ewmh.StateRemove, "_NET_WM_STATE_HIDDEN"); err != nil {
		return fmt.Errorf("failed to clear hidden state: %w", err)
	}
	return nil
}

// SetSkipTaskbar adds or removes the window's taskbar representation.
func (w *HostWindow) SetSkipTaskbar(skip bool) error {
	action := ewmh.StateRemove
	if skip {
		action = ewmh.StateAdd
	}
	if err := ewmh.WmStateReq(w.conn.XUtil, w.win, action, "_NET_WM_STATE_SKIP_TASKBAR"); err != nil {
		return fmt.Errorf("failed to update taskbar state: %w", err)
	}
	return nil
}

// Focus asks the window manager to activate the window.
func (w *HostWindow) Focus() error {
	if err := ewmh.ActiveWindowReq(w.conn.XUtil, w.win); err != nil {
		return fmt.Errorf("failed to focus window: %w", err)
	}
	return nil
}
