package schedule

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Trissilein/helltime/internal/overlay"
)

type recordingOverlay struct {
	overlay.Manager
	mu    sync.Mutex
	shown []overlay.Payload
}

func newRecordingOverlay() *recordingOverlay {
	return &recordingOverlay{Manager: overlay.NewNoop()}
}

func (r *recordingOverlay) Show(p overlay.Payload, pos *overlay.Position) error {
	r.mu.Lock()
	r.shown = append(r.shown, p)
	r.mu.Unlock()
	return r.Manager.Show(p, pos)
}

func (r *recordingOverlay) payloads() []overlay.Payload {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]overlay.Payload(nil), r.shown...)
}

func scheduleServer(t *testing.T, clock clockwork.Clock, offsets map[string]time.Duration) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		doc := "{"
		first := true
		for family, off := range offsets {
			if !first {
				doc += ","
			}
			first = false
			doc += fmt.Sprintf(`"%s": [{"time": %d}]`, family, clock.Now().Add(off).Unix())
		}
		doc += "}"
		w.Write([]byte(doc))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestReminderFiresWithinLeadWindow(t *testing.T) {
	clock := clockwork.NewFakeClock()
	srv := scheduleServer(t, clock, map[string]time.Duration{"helltide": 2 * time.Minute})

	ov := newRecordingOverlay()
	r := NewReminder(NewFetcher(srv.URL, 0, clock), ov, 5*time.Minute, 30*time.Second, clock, nil)

	r.check(context.Background())

	shown := ov.payloads()
	require.Len(t, shown, 1)
	assert.Equal(t, overlay.CategoryHelltide, shown[0].Category)
	assert.Equal(t, "reminder", shown[0].Kind)
	assert.Contains(t, shown[0].Body, "starts in")
}

func TestReminderIgnoresDistantEvents(t *testing.T) {
	clock := clockwork.NewFakeClock()
	srv := scheduleServer(t, clock, map[string]time.Duration{"world_boss": time.Hour})

	ov := newRecordingOverlay()
	r := NewReminder(NewFetcher(srv.URL, 0, clock), ov, 5*time.Minute, 30*time.Second, clock, nil)

	r.check(context.Background())
	assert.Empty(t, ov.payloads())
}

func TestReminderFiresOncePerEvent(t *testing.T) {
	clock := clockwork.NewFakeClock()
	srv := scheduleServer(t, clock, map[string]time.Duration{"legion": 3 * time.Minute})

	ov := newRecordingOverlay()
	r := NewReminder(NewFetcher(srv.URL, time.Millisecond, clock), ov, 5*time.Minute, 30*time.Second, clock, nil)

	r.check(context.Background())
	r.check(context.Background())
	r.check(context.Background())

	require.Len(t, ov.payloads(), 1, "one event must produce one toast")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "5m", formatDuration(5*time.Minute))
	assert.Equal(t, "2m 30s", formatDuration(150*time.Second))
	assert.Equal(t, "45s", formatDuration(45*time.Second))
	assert.Equal(t, "0s", formatDuration(-time.Second))
}
