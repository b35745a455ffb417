package services

import (
	"sync"
	"time"

	"github.com/BradenHooton/wakeguard/internal/models"
)

// BruteForceTracker counts failed logins per source IP. Unlike RateLimiter it
// only sees failures, so interleaving valid and invalid PINs does not reset it.
type BruteForceTracker struct {
	threshold int
	window    time.Duration
	mu        sync.Mutex
	records   map[string]*models.FailedAttemptRecord
	now       func() time.Time
}

// NewBruteForceTracker creates a tracker that flags an IP after threshold
// failures inside window
func NewBruteForceTracker(threshold int, window time.Duration) *BruteForceTracker {
	return &BruteForceTracker{
		threshold: threshold,
		window:    window,
		records:   make(map[string]*models.FailedAttemptRecord),
		now:       time.Now,
	}
}

// RecordFailure counts a failed login from ip and returns the running count.
// A record whose window has elapsed is restarted rather than accumulated.
func (t *BruteForceTracker) RecordFailure(ip string) int {
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	record, ok := t.records[ip]
	if !ok || record.IsExpired(now, t.window) {
		record = &models.FailedAttemptRecord{IP: ip, WindowStart: now}
		t.records[ip] = record
	}
	record.Count++
	record.LastAttempt = now
	return record.Count
}

// IsSuspect reports whether ip reached the threshold inside a live window
func (t *BruteForceTracker) IsSuspect(ip string) bool {
	blocked, _ := t.Check(ip)
	return blocked
}

// Check is IsSuspect plus the time until the window closes
func (t *BruteForceTracker) Check(ip string) (bool, time.Duration) {
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	record, ok := t.records[ip]
	if !ok || record.IsExpired(now, t.window) || record.Count < t.threshold {
		return false, 0
	}
	return true, record.WindowStart.Add(t.window).Sub(now)
}

// Clear forgets ip, after a successful login
func (t *BruteForceTracker) Clear(ip string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.records, ip)
}

// Threshold returns the failure count that triggers a block
func (t *BruteForceTracker) Threshold() int {
	return t.threshold
}

// Sweep drops records whose window elapsed and returns how many
func (t *BruteForceTracker) Sweep() int {
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for ip, record := range t.records {
		if record.IsExpired(now, t.window) {
			delete(t.records, ip)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked IPs
func (t *BruteForceTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}
