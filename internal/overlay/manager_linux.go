//go:build linux

package overlay

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

// Options configure a native overlay manager. Zero values select defaults.
type Options struct {
	// Position is the initial top-left corner, typically loaded from
	// config. Nil means "near the top-right of the screen".
	Position *Position
	// Scale, BackgroundRGB and BackgroundAlpha are the defaults applied
	// when a payload does not override them.
	Scale           float64
	BackgroundRGB   uint32
	BackgroundAlpha float64
	// OnPositionChanged is invoked from the overlay's background context
	// after the user finishes dragging in config mode. May be nil.
	OnPositionChanged func(Position)

	Clock  clockwork.Clock
	Logger *slog.Logger
}

// initialization timing
const (
	initHandshakeTimeout = 2 * time.Second
	initPollInterval     = 20 * time.Millisecond
	initPollAttempts     = 50
)

// x11Manager is the native Manager. The X connection and all window
// resources are owned by a single background goroutine (the run loop);
// callers talk to it exclusively through a command channel. The surface is
// created lazily on the first write command.
//
// current is the loop that holds the single-surface claim, set under initMu
// before its goroutine starts. ready is the subset of current whose native
// resources exist. A handshake timeout leaves current in place: the loop may
// still come up, and if it does a later caller adopts it rather than
// spawning a second surface.
type x11Manager struct {
	state sharedState
	clock clockwork.Clock
	log   *slog.Logger
	opts  Options

	initMu  sync.Mutex
	current atomic.Pointer[runLoop]
	ready   atomic.Pointer[runLoop]

	spawn func(*runLoop, chan<- error)
}

// New returns the native overlay manager. No X connection is made until the
// first write command arrives.
func New(opts Options) Manager {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Scale == 0 {
		opts.Scale = 1.0
	}
	if opts.BackgroundRGB == 0 {
		opts.BackgroundRGB = DefaultBackgroundRGB
	}
	if opts.BackgroundAlpha == 0 {
		opts.BackgroundAlpha = DefaultBackgroundAlpha
	}
	m := &x11Manager{clock: opts.Clock, log: opts.Logger.With("component", "overlay"), opts: opts}
	m.spawn = func(rl *runLoop, handshake chan<- error) {
		go rl.run(handshake)
	}
	if opts.Position != nil {
		m.state.setPosition(*opts.Position)
	}
	return m
}

func (m *x11Manager) Status() Status {
	return m.state.snapshot(true)
}

func (m *x11Manager) GetPosition() *Position {
	return m.state.getPosition()
}

func (m *x11Manager) Show(payload Payload, pos *Position) error {
	m.state.setPayload(payload)
	if pos != nil {
		m.state.setPosition(*pos)
	}
	if err := m.post(procCmd{kind: cmdShow, payload: payload, pos: pos}); err != nil {
		return err
	}
	m.state.clearError()
	return nil
}

func (m *x11Manager) Hide() error {
	return m.post(procCmd{kind: cmdHide})
}

func (m *x11Manager) EnterConfig(pos *Position) error {
	if pos != nil {
		m.state.setPosition(*pos)
	}
	if err := m.post(procCmd{kind: cmdEnterConfig, pos: pos}); err != nil {
		return err
	}
	m.state.clearError()
	return nil
}

func (m *x11Manager) ExitConfig() error {
	return m.post(procCmd{kind: cmdExitConfig})
}

func (m *x11Manager) SetPosition(pos Position) error {
	m.state.setPosition(pos)
	return m.post(procCmd{kind: cmdSetPosition, pos: &pos})
}

// post delivers a command to the run loop, initializing it first if needed.
// Delivery never blocks: a dead loop or a full command buffer reports
// ErrCommandDelivery instead of stalling the caller.
func (m *x11Manager) post(cmd procCmd) error {
	rl, err := m.ensureStarted()
	if err != nil {
		return err
	}
	select {
	case <-rl.done:
		m.state.setError(ErrCommandDelivery.Error())
		return ErrCommandDelivery
	default:
	}
	select {
	case rl.cmds <- cmd:
		return nil
	default:
		m.state.setError(ErrCommandDelivery.Error())
		return ErrCommandDelivery
	}
}

// ensureStarted returns the live run loop, creating it on first use. Exactly
// one loop ever holds the claim; callers that find a claimed but unpublished
// loop poll briefly for the handle instead of blocking on the init mutex.
func (m *x11Manager) ensureStarted() (*runLoop, error) {
	if rl := m.ready.Load(); rl != nil {
		return rl, nil
	}
	if m.current.Load() != nil {
		return m.awaitReady()
	}

	m.initMu.Lock()
	defer m.initMu.Unlock()
	if rl := m.ready.Load(); rl != nil {
		return rl, nil
	}
	if m.current.Load() != nil {
		return m.awaitReady()
	}

	handshake := make(chan error, 1)
	rl := newRunLoop(m, m.opts)
	m.current.Store(rl)
	m.spawn(rl, handshake)

	select {
	case err := <-handshake:
		if err != nil {
			m.current.CompareAndSwap(rl, nil)
			m.state.setError(err.Error())
			m.log.Error("overlay init failed", "error", err)
			return nil, fmt.Errorf("%w: %v", ErrInitFailed, err)
		}
	case <-m.clock.After(initHandshakeTimeout):
		// Keep the claim: the loop may still come up, and the next
		// caller then adopts it instead of starting a second surface.
		m.state.setError(ErrInitTimeout.Error())
		m.log.Error("overlay init timed out")
		return nil, ErrInitTimeout
	}
	return rl, nil
}

// adopt publishes a run loop whose native resources exist. Called from the
// loop goroutine before the handshake completes so a caller that already
// timed out still finds the handle.
func (m *x11Manager) adopt(rl *runLoop) {
	m.ready.Store(rl)
	m.state.setRunning(true)
	m.state.clearError()
	m.log.Info("overlay started")
}

// awaitReady is the path for callers that raced a concurrent initializer.
func (m *x11Manager) awaitReady() (*runLoop, error) {
	for i := 0; i < initPollAttempts; i++ {
		if rl := m.ready.Load(); rl != nil {
			return rl, nil
		}
		m.clock.Sleep(initPollInterval)
	}
	m.state.setError(ErrInitTimeout.Error())
	return nil, ErrInitTimeout
}

// onLoopExit is called by a run loop when it terminates. Only the loop that
// still holds the claim releases it; a loop whose claim was already revoked
// must not clobber a successor's handle.
func (m *x11Manager) onLoopExit(rl *runLoop, err error) {
	m.ready.CompareAndSwap(rl, nil)
	if !m.current.CompareAndSwap(rl, nil) {
		return
	}
	m.state.setRunning(false)
	m.state.setVisible(false)
	m.state.setConfigMode(false)
	if err != nil {
		m.state.setError(err.Error())
		m.log.Error("overlay loop exited", "error", err)
		return
	}
	m.log.Info("overlay loop exited")
}
