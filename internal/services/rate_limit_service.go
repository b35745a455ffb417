package services

import (
	"sync"
	"time"

	"github.com/BradenHooton/wakeguard/internal/models"
)

// RateLimiter counts requests per key in fixed windows. Each key's window is
// anchored at the first request seen for it, not at a calendar boundary.
type RateLimiter struct {
	name     string
	max      int
	window   time.Duration
	mu       sync.Mutex
	counters map[string]*models.RateWindowCounter
	now      func() time.Time
}

// NewRateLimiter creates a limiter allowing max requests per window per key
func NewRateLimiter(name string, max int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		name:     name,
		max:      max,
		window:   window,
		counters: make(map[string]*models.RateWindowCounter),
		now:      time.Now,
	}
}

// Name identifies the limiter in logs
func (l *RateLimiter) Name() string {
	return l.name
}

// Allow counts one request for key. It returns false once the count exceeds
// max inside the current window, along with the time left in that window.
func (l *RateLimiter) Allow(key string) (bool, time.Duration) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	counter, ok := l.counters[key]
	if !ok || now.Sub(counter.WindowStart) >= l.window {
		counter = &models.RateWindowCounter{Key: key, WindowStart: now}
		l.counters[key] = counter
	}

	counter.Count++
	if counter.Count > l.max {
		return false, counter.ResetAt(l.window).Sub(now)
	}
	return true, 0
}

// Sweep drops counters whose window has closed and returns how many
func (l *RateLimiter) Sweep() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, counter := range l.counters {
		if now.Sub(counter.WindowStart) >= l.window {
			delete(l.counters, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.counters)
}
