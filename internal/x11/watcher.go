package x11

import (
	"fmt"
	"log/slog"

	"github.com/BurntSushi/xgb/xproto"
)

// Events are the host-window signals forwarded to the visibility manager.
// Nil callbacks are skipped.
type Events struct {
	FocusGained    func()
	ZeroResize     func()
	CloseRequested func()
}

// Watch subscribes to the host window's structure and focus events and
// dispatches them on a background goroutine until the connection closes.
//
// An unmap is treated the same as a zero-size resize: both are the
// toolkit's proxy for "user minimized or hid the window".
func (w *HostWindow) Watch(ev Events, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	conn := w.conn.XUtil.Conn()

	mask := uint32(xproto.EventMaskStructureNotify | xproto.EventMaskFocusChange)
	err := xproto.ChangeWindowAttributesChecked(conn, w.win, xproto.CwEventMask, []uint32{mask}).Check()
	if err != nil {
		return fmt.Errorf("failed to select window events: %w", err)
	}

	go func() {
		log := logger.With("component", "hostwatch")
		for {
			event, err := conn.WaitForEvent()
			if event == nil && err == nil {
				log.Info("x connection closed, watcher exiting")
				return
			}
			if err != nil {
				log.Debug("x event error", "error", err)
				continue
			}
			switch e := event.(type) {
			case xproto.FocusInEvent:
				if e.Event == w.win && ev.FocusGained != nil {
					ev.FocusGained()
				}
			case xproto.ConfigureNotifyEvent:
				if e.Window == w.win && e.Width <= 1 && e.Height <= 1 && ev.ZeroResize != nil {
					ev.ZeroResize()
				}
			case xproto.UnmapNotifyEvent:
				if e.Window == w.win && ev.ZeroResize != nil {
					ev.ZeroResize()
				}
			case xproto.DestroyNotifyEvent:
				if e.Window == w.win && ev.CloseRequested != nil {
					ev.CloseRequested()
				}
			}
		}
	}()
	return nil
}
