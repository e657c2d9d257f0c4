// Package schedule fetches the upcoming event timetable and drives the
// reminder loop that surfaces toasts ahead of events.
package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultURL is the public event schedule endpoint.
	DefaultURL = "https://helltides.com/api/schedule"
	// DefaultTTL bounds how stale a cached schedule may be served.
	DefaultTTL = 30 * time.Second

	requestTimeout = 10 * time.Second
	userAgent      = "helltime/0.1 (+https://github.com/Trissilein/helltime)"
)

// Event is a single scheduled occurrence. Time is unix seconds.
type Event struct {
	Name string `json:"name,omitempty"`
	Time int64  `json:"time"`
}

// Schedule is the parsed timetable grouped by event family.
type Schedule struct {
	WorldBoss []Event `json:"world_boss"`
	Legion    []Event `json:"legion"`
	Helltide  []Event `json:"helltide"`
}

// Fetcher memoizes schedule fetches with a TTL. Concurrent callers during a
// cache miss share one in-flight request.
type Fetcher struct {
	url    string
	ttl    time.Duration
	client *http.Client
	clock  clockwork.Clock

	group singleflight.Group

	mu        sync.Mutex
	cached    *Schedule
	fetchedAt time.Time
}

// NewFetcher returns a fetcher for url. Zero ttl selects the default.
func NewFetcher(url string, ttl time.Duration, clock clockwork.Clock) *Fetcher {
	if url == "" {
		url = DefaultURL
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Fetcher{
		url:    url,
		ttl:    ttl,
		client: &http.Client{Timeout: requestTimeout},
		clock:  clock,
	}
}

// Get returns the schedule, serving the cached copy while it is fresh.
func (f *Fetcher) Get(ctx context.Context) (*Schedule, error) {
	f.mu.Lock()
	if f.cached != nil && f.clock.Since(f.fetchedAt) < f.ttl {
		s := f.cached
		f.mu.Unlock()
		return s, nil
	}
	f.mu.Unlock()

	v, err, _ := f.group.Do("schedule", func() (any, error) {
		s, err := f.fetch(ctx)
		if err != nil {
			return nil, err
		}
		f.mu.Lock()
		f.cached = s
		f.fetchedAt = f.clock.Now()
		f.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Schedule), nil
}

func (f *Fetcher) fetch(ctx context.Context) (*Schedule, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build schedule request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("schedule endpoint returned %s", resp.Status)
	}

	var s Schedule
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse schedule: %w", err)
	}
	return &s, nil
}

// NextEvent returns the earliest event at or after now within a family,
// or nil when none is scheduled.
func NextEvent(events []Event, now time.Time) *Event {
	var next *Event
	for i := range events {
		e := events[i]
		if e.Time < now.Unix() {
			continue
		}
		if next == nil || e.Time < next.Time {
			next = &e
		}
	}
	return next
}
