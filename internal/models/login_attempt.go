package models

import "time"

// FailedAttemptRecord counts failed logins from one source IP inside a window
// anchored at the first failure of the run
type FailedAttemptRecord struct {
	IP          string    `json:"ip"`
	Count       int       `json:"count"`
	WindowStart time.Time `json:"windowStart"`
	LastAttempt time.Time `json:"lastAttempt"`
}

// IsExpired reports whether the record's window has elapsed
func (r *FailedAttemptRecord) IsExpired(now time.Time, window time.Duration) bool {
	return now.Sub(r.WindowStart) > window
}

// RateWindowCounter counts requests from one key in a fixed window anchored
// at the first request seen for that key
type RateWindowCounter struct {
	Key         string
	Count       int
	WindowStart time.Time
}

// ResetAt is when the current window closes
func (c *RateWindowCounter) ResetAt(window time.Duration) time.Time {
	return c.WindowStart.Add(window)
}
