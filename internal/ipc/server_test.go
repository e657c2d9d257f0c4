package ipc

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Trissilein/helltime/internal/overlay"
	"github.com/Trissilein/helltime/internal/schedule"
	"github.com/Trissilein/helltime/internal/visibility"
)

type nullWindow struct{}

func (nullWindow) Show() error               { return nil }
func (nullWindow) Hide() error               { return nil }
func (nullWindow) Unminimize() error         { return nil }
func (nullWindow) SetSkipTaskbar(bool) error { return nil }
func (nullWindow) Focus() error              { return nil }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"helltide": [{"time": 1700000100}]}`))
	}))
	t.Cleanup(srv.Close)

	deps := Deps{
		Overlay:        overlay.NewNoop(),
		Visibility:     visibility.New(nullWindow{}, nil, clockwork.NewFakeClock(), nil),
		Schedule:       schedule.NewFetcher(srv.URL, time.Second, nil),
		ReminderActive: func() bool { return true },
	}
	s, err := NewServer(deps, make(chan struct{}, 1))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return s
}

func mustPayload(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestHandleGetStatus(t *testing.T) {
	s := newTestServer(t)

	resp := s.handleCommand(&Request{Command: CommandGetStatus})
	if resp.Status != "OK" {
		t.Fatalf("status response: %+v", resp)
	}

	var data StatusData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("parse status: %v", err)
	}
	if !data.DaemonRunning {
		t.Error("daemon_running must be true")
	}
	if data.WindowState != "visible" {
		t.Errorf("window_state = %q", data.WindowState)
	}
	if !data.ReminderActive {
		t.Error("reminder_active must reflect the callback")
	}
}

func TestOverlayShowThenStatus(t *testing.T) {
	s := newTestServer(t)

	payload := mustPayload(t, ShowPayload{
		Toast:    overlay.Payload{Title: "Helltide", Category: overlay.CategoryHelltide},
		Position: &overlay.Position{X: 100, Y: 50},
	})
	resp := s.handleCommand(&Request{Command: CommandOverlayShow, Payload: payload})
	if resp.Status != "OK" {
		t.Fatalf("show failed: %s", resp.Error)
	}

	if !s.deps.Overlay.Status().Visible {
		t.Fatal("overlay must be visible after show")
	}

	resp = s.handleCommand(&Request{Command: CommandOverlayHide})
	if resp.Status != "OK" {
		t.Fatalf("hide failed: %s", resp.Error)
	}
	if s.deps.Overlay.Status().Visible {
		t.Fatal("overlay must be hidden after hide")
	}
}

func TestOverlayShowRejectsEmptyToast(t *testing.T) {
	s := newTestServer(t)

	payload := mustPayload(t, ShowPayload{})
	resp := s.handleCommand(&Request{Command: CommandOverlayShow, Payload: payload})
	if resp.Status != "ERROR" {
		t.Fatal("empty toast must be rejected")
	}
}

func TestOverlayPositionRoundTrip(t *testing.T) {
	s := newTestServer(t)

	pos := overlay.Position{X: 320, Y: 240}
	resp := s.handleCommand(&Request{Command: CommandOverlaySetPos, Payload: mustPayload(t, pos)})
	if resp.Status != "OK" {
		t.Fatalf("set position failed: %s", resp.Error)
	}

	resp = s.handleCommand(&Request{Command: CommandOverlayGetPos})
	if resp.Status != "OK" {
		t.Fatalf("get position failed: %s", resp.Error)
	}
	var data PositionData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatal(err)
	}
	if data.Position == nil || *data.Position != pos {
		t.Fatalf("position = %+v, want %+v", data.Position, pos)
	}
}

func TestWindowCommands(t *testing.T) {
	s := newTestServer(t)

	s.handleCommand(&Request{Command: CommandWindowHide})
	if s.deps.Visibility.State() != visibility.Hidden {
		t.Fatal("WINDOW_HIDE must hide")
	}
	s.handleCommand(&Request{Command: CommandWindowRestore})
	if s.deps.Visibility.State() != visibility.Visible {
		t.Fatal("WINDOW_RESTORE must restore")
	}
	s.handleCommand(&Request{Command: CommandWindowToggle})
	if s.deps.Visibility.State() != visibility.Hidden {
		t.Fatal("WINDOW_TOGGLE must flip state")
	}
}

func TestGetScheduleProxiesFetcher(t *testing.T) {
	s := newTestServer(t)

	resp := s.handleCommand(&Request{Command: CommandGetSchedule})
	if resp.Status != "OK" {
		t.Fatalf("schedule failed: %s", resp.Error)
	}
	var sched schedule.Schedule
	if err := json.Unmarshal(resp.Data, &sched); err != nil {
		t.Fatal(err)
	}
	if len(sched.Helltide) != 1 {
		t.Fatalf("schedule = %+v", sched)
	}
}

func TestUnknownCommand(t *testing.T) {
	s := newTestServer(t)

	resp := s.handleCommand(&Request{Command: "NOPE"})
	if resp.Status != "ERROR" {
		t.Fatal("unknown command must error")
	}
}

func TestEnterExitConfig(t *testing.T) {
	s := newTestServer(t)

	resp := s.handleCommand(&Request{Command: CommandOverlayEnterCfg})
	if resp.Status != "OK" {
		t.Fatalf("enter config failed: %s", resp.Error)
	}
	if !s.deps.Overlay.Status().ConfigMode {
		t.Fatal("config mode must be set")
	}

	resp = s.handleCommand(&Request{Command: CommandOverlayExitCfg})
	if resp.Status != "OK" {
		t.Fatalf("exit config failed: %s", resp.Error)
	}
	if s.deps.Overlay.Status().ConfigMode {
		t.Fatal("config mode must clear")
	}
}
