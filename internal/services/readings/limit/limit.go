// Package limit implements the two-lane admission controller
//
// Each client identity gets an independent token bucket per lane
// (golang.org/x/time/rate) with burst equal to the window cap and a refill
// rate of cap tokens per window. An identity therefore gets exactly cap
// instant admissions per cold window; sustained traffic is bounded by
// cap + refill, which keeps any window overshoot within the allowed
// off-by-one at a window boundary
package limit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Kind selects which lane an admission check runs against
type Kind int

const (
	// General covers all inbound API traffic
	General Kind = iota
	// Oracle covers requests that would reach the dispatcher
	Oracle
)

// String names the lane for error payloads and logs
func (k Kind) String() string {
	if k == Oracle {
		return "oracle"
	}
	return "general"
}

// staleAfter controls when idle identities are reaped from a lane
const staleAfterWindows = 10

type client struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

type lane struct {
	mu      sync.Mutex
	window  time.Duration
	cap     int
	clients map[string]*client
	admits  int // cleanup cadence counter
	now     func() time.Time
}

func newLane(window time.Duration, capacity int, now func() time.Time) *lane {
	if capacity <= 0 {
		capacity = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &lane{
		window:  window,
		cap:     capacity,
		clients: make(map[string]*client),
		now:     now,
	}
}

func (l *lane) admit(identity string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.clients[identity]
	if !ok {
		c = &client{
			lim: rate.NewLimiter(rate.Limit(float64(l.cap)/l.window.Seconds()), l.cap),
		}
		l.clients[identity] = c
	}
	now := l.now()
	c.lastSeen = now

	l.admits++
	if l.admits%256 == 0 {
		l.reapLocked(now)
	}

	r := c.lim.ReserveN(now, 1)
	if !r.OK() {
		return false, l.window
	}
	delay := r.DelayFrom(now)
	if delay > 0 {
		// not admissible right now; hand the tokens back and report the wait
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// reapLocked drops identities idle for many windows so the map stays bounded
func (l *lane) reapLocked(now time.Time) {
	cutoff := now.Add(-time.Duration(staleAfterWindows) * l.window)
	for id, c := range l.clients {
		if c.lastSeen.Before(cutoff) {
			delete(l.clients, id)
		}
	}
}

// Config carries both lanes' windows and caps
type Config struct {
	GeneralWindow time.Duration
	GeneralCap    int
	OracleWindow  time.Duration
	OracleCap     int
}

// Set is the two-lane admission controller
type Set struct {
	general *lane
	oracle  *lane
}

// New builds a Set with the given lane configuration
func New(cfg Config) *Set {
	return &Set{
		general: newLane(cfg.GeneralWindow, cfg.GeneralCap, time.Now),
		oracle:  newLane(cfg.OracleWindow, cfg.OracleCap, time.Now),
	}
}

// WithNow swaps the clock on both lanes, used by tests
func (s *Set) WithNow(now func() time.Time) *Set {
	s.general.mu.Lock()
	s.general.now = now
	s.general.mu.Unlock()
	s.oracle.mu.Lock()
	s.oracle.now = now
	s.oracle.mu.Unlock()
	return s
}

// Admit reports whether identity may proceed on lane k
// A denial returns the wait until the next token becomes available
func (s *Set) Admit(identity string, k Kind) (bool, time.Duration) {
	if k == Oracle {
		return s.oracle.admit(identity)
	}
	return s.general.admit(identity)
}
