package models

import "time"

// Session is the server-held record proving a client passed authentication
type Session struct {
	Token         string    `json:"-"`
	Authenticated bool      `json:"authenticated"`
	CreatedAt     time.Time `json:"createdAt"`
	LastActivity  time.Time `json:"lastActivity"`
	OriginIP      string    `json:"originIp"`
	UserAgent     string    `json:"-"`
}

// IsIdle reports whether the session has been inactive for longer than timeout
func (s *Session) IsIdle(now time.Time, timeout time.Duration) bool {
	return now.Sub(s.LastActivity) > timeout
}

// IsPastMaxAge reports whether the session outlived its absolute bound
func (s *Session) IsPastMaxAge(now time.Time, maxAge time.Duration) bool {
	return maxAge > 0 && now.Sub(s.CreatedAt) > maxAge
}

// Age is the time elapsed since creation
func (s *Session) Age(now time.Time) time.Duration {
	return now.Sub(s.CreatedAt)
}
