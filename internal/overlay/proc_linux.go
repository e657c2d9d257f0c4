//go:build linux

package overlay

import (
	"fmt"
	"log/slog"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// runLoop owns the X connection, the overlay window and every native
// resource. It is the only goroutine that touches them. Callers communicate
// via cmds; the event pump goroutine forwards X events via events.
type runLoop struct {
	toastLoop

	mgr  *x11Manager
	opts Options
	log  *slog.Logger

	cmds   chan procCmd
	events chan xgb.Event
	done   chan struct{}

	xu     *xgbutil.XUtil
	conn   *xgb.Conn
	screen *xproto.ScreenInfo
	win    xproto.Window
	gc     xproto.Gcontext

	dragging   bool
	dragRootX  int16
	dragRootY  int16
	dragOrigin Position
}

func newRunLoop(m *x11Manager, opts Options) *runLoop {
	rl := &runLoop{
		mgr:    m,
		opts:   opts,
		log:    m.log,
		cmds:   make(chan procCmd, 16),
		events: make(chan xgb.Event, 32),
		done:   make(chan struct{}),
		toastLoop: toastLoop{
			shared:   &m.state,
			defScale: opts.Scale,
			defRGB:   opts.BackgroundRGB,
			defAlpha: opts.BackgroundAlpha,
			scale:    opts.Scale,
			bgRGB:    opts.BackgroundRGB,
			bgAlpha:  opts.BackgroundAlpha,
		},
	}
	rl.surface = rl
	return rl
}

// run connects to X, creates the surface and services commands and events
// until the connection dies. The handshake carries the result of resource
// creation back to the initializing caller; the handle is published before
// the handshake so a caller that already timed out can still adopt it.
func (rl *runLoop) run(handshake chan<- error) {
	var exitErr error
	defer func() {
		close(rl.done)
		if rl.conn != nil {
			rl.conn.Close()
		}
		rl.mgr.onLoopExit(rl, exitErr)
	}()

	if err := rl.setup(); err != nil {
		handshake <- err
		return
	}
	rl.mgr.adopt(rl)
	handshake <- nil

	go rl.pumpEvents()

	rl.timer = rl.mgr.clock.NewTimer(AutoHideDelay)
	rl.timer.Stop()

	for {
		select {
		case cmd := <-rl.cmds:
			rl.handleCommand(cmd)
		case ev, ok := <-rl.events:
			if !ok {
				exitErr = fmt.Errorf("x connection lost")
				return
			}
			rl.handleEvent(ev)
		case <-rl.timer.Chan():
			rl.handleAutoHide()
		}
	}
}

// setup creates the override-redirect surface and its graphics context. The
// window starts unmapped and click-through.
func (rl *runLoop) setup() error {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return fmt.Errorf("connect to X: %w", err)
	}
	rl.xu = xu
	rl.conn = xu.Conn()
	rl.screen = xu.Screen()

	if err := shape.Init(rl.conn); err != nil {
		return fmt.Errorf("shape extension: %w", err)
	}

	wid, err := xproto.NewWindowId(rl.conn)
	if err != nil {
		return fmt.Errorf("allocate window id: %w", err)
	}

	w, h := SurfaceSize(rl.scale)
	pos := rl.initialPosition(w)

	eventMask := uint32(xproto.EventMaskExposure |
		xproto.EventMaskButtonPress |
		xproto.EventMaskButtonRelease |
		xproto.EventMaskPointerMotion |
		xproto.EventMaskStructureNotify)

	// Value list order follows the bit positions of the mask (low to high):
	// CwBackPixel, CwOverrideRedirect, CwEventMask.
	err = xproto.CreateWindowChecked(
		rl.conn,
		rl.screen.RootDepth,
		wid,
		xu.RootWin(),
		int16(pos.X), int16(pos.Y),
		uint16(w), uint16(h),
		0,
		xproto.WindowClassInputOutput,
		rl.screen.RootVisual,
		xproto.CwBackPixel|xproto.CwOverrideRedirect|xproto.CwEventMask,
		[]uint32{rl.bgRGB, 1, eventMask},
	).Check()
	if err != nil {
		return fmt.Errorf("create overlay window: %w", err)
	}
	rl.win = wid

	gc, err := xproto.NewGcontextId(rl.conn)
	if err != nil {
		xproto.DestroyWindow(rl.conn, wid)
		return fmt.Errorf("allocate gc id: %w", err)
	}
	err = xproto.CreateGCChecked(
		rl.conn,
		gc,
		xproto.Drawable(wid),
		xproto.GcForeground|xproto.GcGraphicsExposures,
		[]uint32{0xffffff, 0},
	).Check()
	if err != nil {
		xproto.DestroyWindow(rl.conn, wid)
		return fmt.Errorf("create gc: %w", err)
	}
	rl.gc = gc

	rl.setClickThrough(true)
	rl.applyOpacity(rl.bgAlpha)
	rl.mgr.state.setPosition(pos)
	return nil
}

func (rl *runLoop) initialPosition(width int) Position {
	if p := rl.mgr.state.getPosition(); p != nil {
		return *p
	}
	x := int(rl.screen.WidthInPixels) - width - 24
	if x < 0 {
		x = 0
	}
	return Position{X: x, Y: 24}
}

// pumpEvents forwards X events to the run loop. WaitForEvent returning
// (nil, nil) means the connection closed.
func (rl *runLoop) pumpEvents() {
	for {
		ev, err := rl.conn.WaitForEvent()
		if ev == nil && err == nil {
			close(rl.events)
			return
		}
		if err != nil {
			rl.log.Debug("x event error", "error", err)
			continue
		}
		select {
		case rl.events <- ev:
		case <-rl.done:
			return
		}
	}
}

func (rl *runLoop) handleEvent(ev xgb.Event) {
	switch e := ev.(type) {
	case xproto.ExposeEvent:
		if e.Count == 0 && rl.phase != stateHidden {
			rl.paint()
		}
	case xproto.ButtonPressEvent:
		if rl.phase != stateConfigMode || e.Detail != xproto.ButtonIndex1 {
			return
		}
		rl.dragging = true
		rl.dragRootX = e.RootX
		rl.dragRootY = e.RootY
		if p := rl.mgr.state.getPosition(); p != nil {
			rl.dragOrigin = *p
		}
	case xproto.MotionNotifyEvent:
		if !rl.dragging {
			return
		}
		x := rl.dragOrigin.X + int(e.RootX-rl.dragRootX)
		y := rl.dragOrigin.Y + int(e.RootY-rl.dragRootY)
		rl.moveSurface(x, y)
	case xproto.ButtonReleaseEvent:
		if !rl.dragging || e.Detail != xproto.ButtonIndex1 {
			return
		}
		rl.dragging = false
		if p := rl.mgr.state.getPosition(); p != nil && rl.opts.OnPositionChanged != nil {
			rl.opts.OnPositionChanged(*p)
		}
	case xproto.ConfigureNotifyEvent:
		rl.mgr.state.setPosition(Position{X: int(e.X), Y: int(e.Y)})
	}
}

// showToastSurface prepares the surface for a toast: positioned, blended,
// click-through and painted.
func (rl *runLoop) showToastSurface() {
	rl.dragging = false
	rl.applyGeometry()
	rl.applyOpacity(rl.bgAlpha)
	rl.setClickThrough(true)
	rl.mapSurface()
	rl.paint()
}

// showConfigSurface is the interactive variant: input stays enabled so the
// user can drag.
func (rl *runLoop) showConfigSurface() {
	rl.applyGeometry()
	rl.applyOpacity(rl.bgAlpha)
	rl.setClickThrough(false)
	rl.mapSurface()
	rl.paint()
}

func (rl *runLoop) hideSurface() {
	rl.dragging = false
	rl.setClickThrough(true)
	rl.unmapSurface()
}

// applyGeometry re-applies position and size at the current scale and
// raises the surface.
func (rl *runLoop) applyGeometry() {
	w, h := SurfaceSize(rl.scale)
	pos := rl.initialPosition(w)
	xproto.ConfigureWindow(
		rl.conn,
		rl.win,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight|xproto.ConfigWindowStackMode,
		[]uint32{uint32(pos.X), uint32(pos.Y), uint32(w), uint32(h), xproto.StackModeAbove},
	)
	rl.mgr.state.setPosition(pos)
}

func (rl *runLoop) moveSurface(x, y int) {
	xproto.ConfigureWindow(
		rl.conn,
		rl.win,
		xproto.ConfigWindowX|xproto.ConfigWindowY,
		[]uint32{uint32(x), uint32(y)},
	)
	rl.mgr.state.setPosition(Position{X: x, Y: y})
}

func (rl *runLoop) mapSurface() {
	xproto.MapWindow(rl.conn, rl.win)
	xproto.ConfigureWindow(rl.conn, rl.win, xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove})
}

func (rl *runLoop) unmapSurface() {
	xproto.UnmapWindow(rl.conn, rl.win)
}

// setClickThrough toggles the input shape. An empty input region lets
// pointer events pass to whatever is beneath; resetting the mask to None
// restores normal input.
func (rl *runLoop) setClickThrough(on bool) {
	if on {
		shape.Rectangles(
			rl.conn,
			shape.SoSet,
			shape.SkInput,
			0,
			rl.win,
			0, 0,
			[]xproto.Rectangle{},
		)
		return
	}
	shape.Mask(
		rl.conn,
		shape.SoSet,
		shape.SkInput,
		rl.win,
		0, 0,
		xproto.PixmapNone,
	)
}
