// Package throttle limits how fast a single feed client may request sectors.
package throttle

import (
	"sync"
	"time"
)

// Config holds request rate limiting configuration
type Config struct {
	Enabled     bool          // Whether limiting is enabled
	MaxRequests int           // Max requests allowed in the window
	Window      time.Duration // Sliding window for rate limiting
}

// DefaultConfig returns 20 requests per second
func DefaultConfig() Config {
	return Config{
		Enabled:     true,
		MaxRequests: 20,
		Window:      time.Second,
	}
}

// Tracker tracks request times for a single client
type Tracker struct {
	mu       sync.Mutex
	config   Config
	requests []time.Time
	now      func() time.Time
}

// NewTracker creates a tracker. Non-positive limits fall back to the defaults.
func NewTracker(config Config) *Tracker {
	def := DefaultConfig()
	if config.MaxRequests <= 0 {
		config.MaxRequests = def.MaxRequests
	}
	if config.Window <= 0 {
		config.Window = def.Window
	}
	return &Tracker{
		config:   config,
		requests: make([]time.Time, 0, config.MaxRequests),
		now:      time.Now,
	}
}

// CheckResult contains the result of a rate check
type CheckResult struct {
	Allowed bool
	Wait    time.Duration // How long until a request would be allowed
}

// Check records a request if it fits in the window
func (t *Tracker) Check() CheckResult {
	if !t.config.Enabled {
		return CheckResult{Allowed: true}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.cleanup(now)

	if len(t.requests) >= t.config.MaxRequests {
		return CheckResult{Wait: t.requests[0].Add(t.config.Window).Sub(now)}
	}

	t.requests = append(t.requests, now)
	return CheckResult{Allowed: true}
}

// cleanup drops requests older than the window
func (t *Tracker) cleanup(now time.Time) {
	cutoff := now.Add(-t.config.Window)
	kept := t.requests[:0]
	for _, at := range t.requests {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}
	t.requests = kept
}

// Reset clears all tracking data
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.requests = t.requests[:0]
}
