package overlay

import "testing"

func TestClampScale(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 1.0},
		{0.1, 0.6},
		{0.6, 0.6},
		{1.3, 1.3},
		{2.0, 2.0},
		{5.0, 2.0},
	}
	for _, c := range cases {
		if got := ClampScale(c.in); got != c.want {
			t.Errorf("ClampScale(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestClampAlpha(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, DefaultBackgroundAlpha},
		{0.05, 0.2},
		{0.5, 0.5},
		{1.0, 1.0},
		{1.7, 1.0},
	}
	for _, c := range cases {
		if got := ClampAlpha(c.in); got != c.want {
			t.Errorf("ClampAlpha(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestSurfaceSizeScales(t *testing.T) {
	w, h := SurfaceSize(1.0)
	if w != BaseWidth || h != BaseHeight {
		t.Fatalf("unit scale size = %dx%d, want %dx%d", w, h, BaseWidth, BaseHeight)
	}
	w2, h2 := SurfaceSize(2.0)
	if w2 != 2*BaseWidth || h2 != 2*BaseHeight {
		t.Fatalf("double scale size = %dx%d", w2, h2)
	}
	// Out-of-range input is clamped before sizing.
	w3, _ := SurfaceSize(100)
	if w3 != 2*BaseWidth {
		t.Fatalf("oversized scale not clamped: width %d", w3)
	}
}

func TestNoopStatusTransitions(t *testing.T) {
	m := NewNoop()

	st := m.Status()
	if st.Supported {
		t.Fatal("noop manager must report supported=false")
	}
	if st.Visible || st.ConfigMode {
		t.Fatal("initial state must be hidden")
	}

	if err := m.Show(Payload{Title: "Helltide"}, &Position{X: 10, Y: 20}); err != nil {
		t.Fatalf("show: %v", err)
	}
	st = m.Status()
	if !st.Visible {
		t.Fatal("visible after show")
	}
	if st.Position == nil || st.Position.X != 10 || st.Position.Y != 20 {
		t.Fatalf("position after show = %+v", st.Position)
	}

	if err := m.Hide(); err != nil {
		t.Fatalf("hide: %v", err)
	}
	if m.Status().Visible {
		t.Fatal("hidden after hide")
	}
}

func TestNoopConfigModeRoundTrip(t *testing.T) {
	m := NewNoop()

	if err := m.EnterConfig(nil); err != nil {
		t.Fatalf("enter config: %v", err)
	}
	st := m.Status()
	if !st.ConfigMode || !st.Visible {
		t.Fatalf("after enter config: %+v", st)
	}

	if err := m.ExitConfig(); err != nil {
		t.Fatalf("exit config: %v", err)
	}
	st = m.Status()
	if st.ConfigMode {
		t.Fatal("config mode must clear on exit")
	}
}

func TestNoopExitConfigRestoresPriorVisibility(t *testing.T) {
	m := NewNoop()

	// A toast shown before config mode comes back when config exits.
	if err := m.Show(Payload{Title: "t"}, nil); err != nil {
		t.Fatalf("show: %v", err)
	}
	m.EnterConfig(nil)
	m.ExitConfig()
	if !m.Status().Visible {
		t.Fatal("toast not restored after config exit")
	}

	// Hidden before config stays hidden after.
	m.Hide()
	m.EnterConfig(nil)
	m.ExitConfig()
	if m.Status().Visible {
		t.Fatal("visible after config exit from hidden")
	}

	// A show that arrives during config mode surfaces on exit.
	m.EnterConfig(nil)
	if err := m.Show(Payload{Title: "queued"}, nil); err != nil {
		t.Fatalf("show during config: %v", err)
	}
	if !m.Status().ConfigMode {
		t.Fatal("show during config must not leave config mode")
	}
	m.ExitConfig()
	st := m.Status()
	if !st.Visible || st.ConfigMode {
		t.Fatalf("after exit: %+v", st)
	}
}

func TestSetPositionRoundTrip(t *testing.T) {
	m := NewNoop()
	if got := m.GetPosition(); got != nil {
		t.Fatalf("position before placement = %+v, want nil", got)
	}

	want := Position{X: 640, Y: 48}
	if err := m.SetPosition(want); err != nil {
		t.Fatalf("set position: %v", err)
	}
	got := m.GetPosition()
	if got == nil || *got != want {
		t.Fatalf("get position = %+v, want %+v", got, want)
	}

	// Returned position is a copy, not shared storage.
	got.X = 0
	if again := m.GetPosition(); again.X != want.X {
		t.Fatal("GetPosition exposes internal storage")
	}
}

func TestSharedStateErrorLifecycle(t *testing.T) {
	var s sharedState
	s.setError("overlay init timed out")
	if st := s.snapshot(true); st.LastError == "" {
		t.Fatal("error must be retained in snapshots")
	}
	s.clearError()
	if st := s.snapshot(true); st.LastError != "" {
		t.Fatalf("error survived clear: %q", st.LastError)
	}
}
