// Package visibility coordinates the host window's visible/hidden lifecycle
// against tray interactions and host toolkit events. It debounces duplicate
// tray clicks, serializes show/hide sequences, and guards against the
// toolkit's own synthetic follow-up events re-triggering a transition that
// is already in progress.
package visibility

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Trissilein/helltime/internal/overlay"
)

// State is the tracked visibility of the host window.
type State int

const (
	Visible State = iota
	Hidden
)

func (s State) String() string {
	if s == Hidden {
		return "hidden"
	}
	return "visible"
}

// HostWindow abstracts the native toolkit calls the manager issues. Every
// method is best-effort: a failure is logged and the remaining steps of a
// transition still run.
type HostWindow interface {
	Show() error
	Hide() error
	Unminimize() error
	SetSkipTaskbar(skip bool) error
	Focus() error
}

// DefaultDebounce is the duplicate-suppression window for tray actions.
const DefaultDebounce = 50 * time.Millisecond

// Manager tracks host window visibility. The operation lock serializes full
// transition sequences across callers; the transition flag stops a
// transition's own side effects from re-entering it.
type Manager struct {
	win     HostWindow
	overlay overlay.Manager
	clock   clockwork.Clock
	log     *slog.Logger

	debounce time.Duration

	opMu         sync.Mutex
	inTransition atomic.Bool

	stateMu sync.Mutex
	state   State

	trayMu   sync.Mutex
	lastTray time.Time
}

// New returns a manager starting in the Visible state. overlayMgr may be
// nil when no overlay surface exists.
func New(win HostWindow, overlayMgr overlay.Manager, clock clockwork.Clock, logger *slog.Logger) *Manager {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		win:      win,
		overlay:  overlayMgr,
		clock:    clock,
		log:      logger.With("component", "visibility"),
		debounce: DefaultDebounce,
		state:    Visible,
	}
}

// SetDebounce overrides the tray-action debounce window.
func (m *Manager) SetDebounce(d time.Duration) {
	if d > 0 {
		m.debounce = d
	}
}

// State returns the tracked visibility.
func (m *Manager) State() State {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	return m.state
}

func (m *Manager) setState(s State) {
	m.stateMu.Lock()
	m.state = s
	m.stateMu.Unlock()
}

// ShouldProcessTrayAction reports whether a tray event should be acted on.
// Events within the debounce window of the previous accepted event are
// dropped; an accepted event records a fresh timestamp.
func (m *Manager) ShouldProcessTrayAction() bool {
	m.trayMu.Lock()
	defer m.trayMu.Unlock()
	now := m.clock.Now()
	if !m.lastTray.IsZero() && now.Sub(m.lastTray) < m.debounce {
		return false
	}
	m.lastTray = now
	return true
}

// Restore makes the host window visible. Already-visible windows are only
// re-focused, without taking the operation lock.
func (m *Manager) Restore() {
	if m.State() == Visible {
		m.tryStep("focus", m.win.Focus)
		return
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()
	if !m.inTransition.CompareAndSwap(false, true) {
		m.log.Debug("restore skipped, transition in progress")
		return
	}
	defer m.inTransition.Store(false)

	m.tryStep("show", m.win.Show)
	m.tryStep("unminimize", m.win.Unminimize)
	m.tryStep("taskbar", func() error { return m.win.SetSkipTaskbar(false) })
	m.tryStep("focus", m.win.Focus)
	m.setState(Visible)
	m.log.Info("window restored")
}

// HideToTray hides the host window and any overlay surface. A no-op if
// already hidden.
func (m *Manager) HideToTray() {
	if m.State() == Hidden {
		return
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()
	if !m.inTransition.CompareAndSwap(false, true) {
		m.log.Debug("hide skipped, transition in progress")
		return
	}
	defer m.inTransition.Store(false)

	m.tryStep("hide", m.win.Hide)
	if m.overlay != nil && m.overlay.Status().Running {
		m.tryStep("hide overlay", m.overlay.Hide)
	}
	m.tryStep("taskbar", func() error { return m.win.SetSkipTaskbar(true) })
	m.setState(Hidden)
	m.log.Info("window hidden to tray")
}

// Toggle dispatches to Restore or HideToTray based on tracked state.
func (m *Manager) Toggle() {
	if m.State() == Visible {
		m.HideToTray()
		return
	}
	m.Restore()
}

// HandleFocusGained reconciles tracked state with the OS. Focus on a window
// we believe is hidden means the tracked state is stale; the OS wins.
func (m *Manager) HandleFocusGained() {
	if m.State() != Hidden {
		return
	}
	m.opMu.Lock()
	defer m.opMu.Unlock()
	if m.State() != Hidden {
		return
	}
	m.setState(Visible)
	m.tryStep("taskbar", func() error { return m.win.SetSkipTaskbar(false) })
	m.log.Info("state reconciled to visible on focus")
}

// HandleZeroResize treats a 0x0 resize, the toolkit's proxy for "user
// minimized", as an implicit hide-to-tray request.
func (m *Manager) HandleZeroResize() {
	m.HideToTray()
}

// HandleCloseRequested intercepts a window close and converts it to
// hide-to-tray so the process keeps running.
func (m *Manager) HandleCloseRequested() {
	m.HideToTray()
}

// tryStep runs one toolkit call, logging failure without aborting the
// surrounding transition.
func (m *Manager) tryStep(name string, fn func() error) {
	if err := fn(); err != nil {
		m.log.Warn("toolkit call failed", "step", name, "error", err)
	}
}
