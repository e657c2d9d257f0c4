package overlay

import (
	"testing"

	"github.com/jonboulle/clockwork"
)

// fakeSurface records drawing operations so transitions are checkable
// without an X server.
type fakeSurface struct {
	toastShows  int
	configShows int
	hides       int
	geometries  int
}

func (s *fakeSurface) showToastSurface()  { s.toastShows++ }
func (s *fakeSurface) showConfigSurface() { s.configShows++ }
func (s *fakeSurface) hideSurface()       { s.hides++ }
func (s *fakeSurface) applyGeometry()     { s.geometries++ }

func newTestLoop(clk clockwork.Clock) (*toastLoop, *fakeSurface) {
	fs := &fakeSurface{}
	l := &toastLoop{
		shared:   &sharedState{},
		surface:  fs,
		defScale: 1.0,
		defRGB:   DefaultBackgroundRGB,
		defAlpha: DefaultBackgroundAlpha,
		scale:    1.0,
		bgRGB:    DefaultBackgroundRGB,
		bgAlpha:  DefaultBackgroundAlpha,
	}
	timer := clk.NewTimer(AutoHideDelay)
	timer.Stop()
	l.timer = timer
	return l, fs
}

// fireTimer drains an elapsed auto-hide timer and runs the handler,
// mirroring the run loop's select arm.
func fireTimer(t *testing.T, l *toastLoop) {
	t.Helper()
	select {
	case <-l.timer.Chan():
		l.handleAutoHide()
	default:
		t.Fatal("auto-hide timer did not fire")
	}
}

func expectNoFire(t *testing.T, l *toastLoop) {
	t.Helper()
	select {
	case <-l.timer.Chan():
		t.Fatal("auto-hide timer fired early")
	default:
	}
}

func TestToastAutoHides(t *testing.T) {
	clk := clockwork.NewFakeClock()
	l, fs := newTestLoop(clk)

	l.handleCommand(procCmd{kind: cmdShow, payload: Payload{Title: "Helltide"}})
	if !l.shared.snapshot(true).Visible {
		t.Fatal("visible after show")
	}

	clk.Advance(AutoHideDelay)
	fireTimer(t, l)

	if l.shared.snapshot(true).Visible {
		t.Fatal("still visible after the auto-hide delay")
	}
	if fs.hides != 1 {
		t.Fatalf("hideSurface calls = %d, want 1", fs.hides)
	}
}

func TestShowResetsAutoHideTimer(t *testing.T) {
	clk := clockwork.NewFakeClock()
	l, _ := newTestLoop(clk)

	l.handleCommand(procCmd{kind: cmdShow, payload: Payload{Title: "first"}})
	clk.Advance(AutoHideDelay / 2)

	l.handleCommand(procCmd{kind: cmdShow, payload: Payload{Title: "second"}})
	clk.Advance(AutoHideDelay / 2)
	expectNoFire(t, l)
	if !l.shared.snapshot(true).Visible {
		t.Fatal("second toast hidden before its own delay elapsed")
	}

	clk.Advance(AutoHideDelay / 2)
	fireTimer(t, l)
	if l.shared.snapshot(true).Visible {
		t.Fatal("visible after the second toast's delay")
	}
}

func TestHideCancelsAutoHide(t *testing.T) {
	clk := clockwork.NewFakeClock()
	l, fs := newTestLoop(clk)

	l.handleCommand(procCmd{kind: cmdShow, payload: Payload{Title: "t"}})
	l.handleCommand(procCmd{kind: cmdHide})
	if fs.hides != 1 {
		t.Fatalf("hideSurface calls = %d, want 1", fs.hides)
	}

	clk.Advance(2 * AutoHideDelay)
	expectNoFire(t, l)
}

func TestShowRestoresConfiguredDefaults(t *testing.T) {
	clk := clockwork.NewFakeClock()
	l, _ := newTestLoop(clk)

	l.handleCommand(procCmd{kind: cmdShow, payload: Payload{
		Title:           "styled",
		Scale:           2.0,
		BackgroundRGB:   0xff0000,
		BackgroundAlpha: 0.3,
	}})
	if l.scale != 2.0 || l.bgRGB != 0xff0000 || l.bgAlpha != 0.3 {
		t.Fatalf("overrides not applied: scale=%v rgb=%#x alpha=%v", l.scale, l.bgRGB, l.bgAlpha)
	}

	// A payload that leaves appearance fields zero gets the configured
	// defaults, not the previous toast's overrides.
	l.handleCommand(procCmd{kind: cmdShow, payload: Payload{Title: "plain"}})
	if l.scale != 1.0 || l.bgRGB != DefaultBackgroundRGB || l.bgAlpha != DefaultBackgroundAlpha {
		t.Fatalf("defaults not restored: scale=%v rgb=%#x alpha=%v", l.scale, l.bgRGB, l.bgAlpha)
	}
}

func TestExitConfigRestoresPreviousVisibility(t *testing.T) {
	clk := clockwork.NewFakeClock()

	t.Run("toast visible before config", func(t *testing.T) {
		l, _ := newTestLoop(clk)
		l.handleCommand(procCmd{kind: cmdShow, payload: Payload{Title: "t"}})
		l.handleCommand(procCmd{kind: cmdEnterConfig})
		l.handleCommand(procCmd{kind: cmdExitConfig})
		st := l.shared.snapshot(true)
		if !st.Visible || st.ConfigMode {
			t.Fatalf("after exit: %+v", st)
		}
	})

	t.Run("hidden before config", func(t *testing.T) {
		l, _ := newTestLoop(clk)
		l.handleCommand(procCmd{kind: cmdEnterConfig})
		l.handleCommand(procCmd{kind: cmdExitConfig})
		st := l.shared.snapshot(true)
		if st.Visible || st.ConfigMode {
			t.Fatalf("after exit: %+v", st)
		}
	})

	t.Run("show arrives during config", func(t *testing.T) {
		l, fs := newTestLoop(clk)
		l.handleCommand(procCmd{kind: cmdEnterConfig})
		l.handleCommand(procCmd{kind: cmdShow, payload: Payload{Title: "queued"}})
		if fs.toastShows != 0 {
			t.Fatal("toast painted over config guidance")
		}
		l.handleCommand(procCmd{kind: cmdExitConfig})
		st := l.shared.snapshot(true)
		if !st.Visible || st.ConfigMode {
			t.Fatalf("after exit: %+v", st)
		}
		if fs.toastShows != 1 {
			t.Fatalf("toastShows = %d, want 1", fs.toastShows)
		}
	})
}
