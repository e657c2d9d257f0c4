package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Trissilein/helltime/internal/overlay"
)

// Reminder polls the schedule and shows a toast when an event is about to
// start. Each (family, start time) pair fires at most once.
type Reminder struct {
	fetcher *Fetcher
	overlay overlay.Manager
	clock   clockwork.Clock
	log     *slog.Logger

	lead time.Duration
	poll time.Duration

	fired map[string]struct{}
}

// NewReminder returns a reminder loop. lead is how far ahead of an event
// the toast appears; poll is the schedule check interval.
func NewReminder(fetcher *Fetcher, overlayMgr overlay.Manager, lead, poll time.Duration, clock clockwork.Clock, logger *slog.Logger) *Reminder {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if lead <= 0 {
		lead = 5 * time.Minute
	}
	if poll <= 0 {
		poll = 30 * time.Second
	}
	return &Reminder{
		fetcher: fetcher,
		overlay: overlayMgr,
		clock:   clock,
		log:     logger.With("component", "reminder"),
		lead:    lead,
		poll:    poll,
		fired:   make(map[string]struct{}),
	}
}

// Run polls until ctx is cancelled.
func (r *Reminder) Run(ctx context.Context) {
	ticker := r.clock.NewTicker(r.poll)
	defer ticker.Stop()

	r.check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			r.check(ctx)
		}
	}
}

// check fetches the schedule and shows toasts for imminent events.
func (r *Reminder) check(ctx context.Context) {
	s, err := r.fetcher.Get(ctx)
	if err != nil {
		r.log.Warn("schedule fetch failed", "error", err)
		return
	}

	now := r.clock.Now()
	r.announce(CategoryLabelHelltide, overlay.CategoryHelltide, s.Helltide, now)
	r.announce(CategoryLabelLegion, overlay.CategoryLegion, s.Legion, now)
	r.announce(CategoryLabelWorldBoss, overlay.CategoryWorldBoss, s.WorldBoss, now)
}

// Display labels for the toast title per event family.
const (
	CategoryLabelHelltide  = "Helltide"
	CategoryLabelLegion    = "Legion"
	CategoryLabelWorldBoss = "World Boss"
)

func (r *Reminder) announce(label string, category overlay.Category, events []Event, now time.Time) {
	next := NextEvent(events, now)
	if next == nil {
		return
	}
	until := time.Unix(next.Time, 0).Sub(now)
	if until > r.lead {
		return
	}

	key := fmt.Sprintf("%s/%d", category, next.Time)
	if _, done := r.fired[key]; done {
		return
	}
	r.fired[key] = struct{}{}

	title := label
	if next.Name != "" {
		title = fmt.Sprintf("%s: %s", label, next.Name)
	}
	payload := overlay.Payload{
		Title:    title,
		Body:     fmt.Sprintf("starts in %s", formatDuration(until)),
		Kind:     "reminder",
		Category: category,
	}
	if err := r.overlay.Show(payload, nil); err != nil {
		r.log.Warn("reminder toast failed", "category", category, "error", err)
		return
	}
	r.log.Info("reminder shown", "category", category, "starts_in", until.Round(time.Second))
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	if m == 0 {
		return fmt.Sprintf("%ds", s)
	}
	if s == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dm %ds", m, s)
}
