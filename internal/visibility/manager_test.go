package visibility

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Trissilein/helltime/internal/overlay"
)

type fakeWindow struct {
	mu          sync.Mutex
	shows       int
	hides       int
	unminimizes int
	focuses     int
	skipTaskbar []bool
	failHide    bool
}

func (w *fakeWindow) Show() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.shows++
	return nil
}

func (w *fakeWindow) Hide() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.hides++
	if w.failHide {
		return errors.New("hide failed")
	}
	return nil
}

func (w *fakeWindow) Unminimize() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.unminimizes++
	return nil
}

func (w *fakeWindow) SetSkipTaskbar(skip bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.skipTaskbar = append(w.skipTaskbar, skip)
	return nil
}

func (w *fakeWindow) Focus() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.focuses++
	return nil
}

func (w *fakeWindow) counts() (shows, hides, focuses int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.shows, w.hides, w.focuses
}

func newTestManager(t *testing.T) (*Manager, *fakeWindow, *clockwork.FakeClock) {
	t.Helper()
	win := &fakeWindow{}
	clock := clockwork.NewFakeClock()
	return New(win, nil, clock, nil), win, clock
}

func TestShouldProcessTrayActionDebounce(t *testing.T) {
	m, _, clock := newTestManager(t)

	if !m.ShouldProcessTrayAction() {
		t.Fatal("first action must be accepted")
	}
	clock.Advance(20 * time.Millisecond)
	if m.ShouldProcessTrayAction() {
		t.Fatal("action within 50ms must be dropped")
	}
	clock.Advance(50 * time.Millisecond)
	if !m.ShouldProcessTrayAction() {
		t.Fatal("action after 50ms must be accepted")
	}
}

func TestDebounceMeasuresFromAcceptedAction(t *testing.T) {
	m, _, clock := newTestManager(t)

	m.ShouldProcessTrayAction()
	// A burst of dropped events must not extend the window.
	for i := 0; i < 4; i++ {
		clock.Advance(10 * time.Millisecond)
		m.ShouldProcessTrayAction()
	}
	clock.Advance(10 * time.Millisecond)
	if !m.ShouldProcessTrayAction() {
		t.Fatal("50ms after accepted action, next must be accepted")
	}
}

func TestHideToTrayThenRestore(t *testing.T) {
	m, win, _ := newTestManager(t)

	m.HideToTray()
	if m.State() != Hidden {
		t.Fatal("state must be hidden")
	}
	_, hides, _ := win.counts()
	if hides != 1 {
		t.Fatalf("hide calls = %d", hides)
	}

	m.Restore()
	if m.State() != Visible {
		t.Fatal("state must be visible")
	}
	shows, _, focuses := win.counts()
	if shows != 1 || focuses != 1 {
		t.Fatalf("shows=%d focuses=%d", shows, focuses)
	}
}

func TestRestoreWhileVisibleOnlyFocuses(t *testing.T) {
	m, win, _ := newTestManager(t)

	m.Restore()
	shows, _, focuses := win.counts()
	if shows != 0 {
		t.Fatalf("already-visible restore must not show, got %d", shows)
	}
	if focuses != 1 {
		t.Fatalf("focuses = %d", focuses)
	}
}

func TestHideToTrayWhileHiddenIsNoop(t *testing.T) {
	m, win, _ := newTestManager(t)

	m.HideToTray()
	m.HideToTray()
	m.HideToTray()
	_, hides, _ := win.counts()
	if hides != 1 {
		t.Fatalf("hide must run once, got %d", hides)
	}
}

func TestToggleFlipsState(t *testing.T) {
	m, _, _ := newTestManager(t)

	m.Toggle()
	if m.State() != Hidden {
		t.Fatal("toggle from visible must hide")
	}
	m.Toggle()
	if m.State() != Visible {
		t.Fatal("toggle from hidden must restore")
	}
}

func TestZeroResizeHidesExactlyOnce(t *testing.T) {
	m, win, _ := newTestManager(t)

	// The toolkit may deliver the synthetic resize several times.
	m.HandleZeroResize()
	m.HandleZeroResize()
	m.HandleZeroResize()

	if m.State() != Hidden {
		t.Fatal("state must be hidden")
	}
	_, hides, _ := win.counts()
	if hides != 1 {
		t.Fatalf("hide ran %d times, want 1", hides)
	}
}

func TestFocusGainedReconcilesHiddenState(t *testing.T) {
	m, win, _ := newTestManager(t)

	m.HideToTray()
	m.HandleFocusGained()

	if m.State() != Visible {
		t.Fatal("focus must reconcile state to visible")
	}
	win.mu.Lock()
	last := win.skipTaskbar[len(win.skipTaskbar)-1]
	win.mu.Unlock()
	if last {
		t.Fatal("taskbar entry must be restored on reconciliation")
	}
}

func TestFocusGainedWhileVisibleIsNoop(t *testing.T) {
	m, win, _ := newTestManager(t)

	m.HandleFocusGained()
	win.mu.Lock()
	n := len(win.skipTaskbar)
	win.mu.Unlock()
	if n != 0 {
		t.Fatal("focus while visible must not touch the taskbar")
	}
}

func TestCloseRequestedHidesToTray(t *testing.T) {
	m, _, _ := newTestManager(t)

	m.HandleCloseRequested()
	if m.State() != Hidden {
		t.Fatal("close request must hide to tray")
	}
}

func TestOverlayHiddenAlongsideWindow(t *testing.T) {
	win := &fakeWindow{}
	ov := overlay.NewNoop()
	m := New(win, ov, clockwork.NewFakeClock(), nil)

	ov.Show(overlay.Payload{Title: "Helltide"}, nil)
	m.HideToTray()

	// The noop overlay reports Running=false, so the manager must not
	// have touched it.
	if !ov.Status().Visible {
		t.Fatal("non-running overlay must be left alone")
	}
}

func TestFailedStepDoesNotAbortTransition(t *testing.T) {
	win := &fakeWindow{failHide: true}
	m := New(win, nil, clockwork.NewFakeClock(), nil)

	m.HideToTray()
	if m.State() != Hidden {
		t.Fatal("transition must complete despite a failing step")
	}
	win.mu.Lock()
	taskbarSteps := len(win.skipTaskbar)
	win.mu.Unlock()
	if taskbarSteps != 1 {
		t.Fatal("later steps must still run after a failure")
	}
}
