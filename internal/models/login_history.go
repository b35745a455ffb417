package models

import "time"

// LoginHistoryCapacity bounds the login history ledger
const LoginHistoryCapacity = 100

// LoginHistoryEntry records one successful login
type LoginHistoryEntry struct {
	ID          string    `json:"id"`
	IP          string    `json:"ip"`
	UserAgent   string    `json:"userAgent"`
	LoginTime   string    `json:"loginTime"` // RFC 3339, for display
	Timestamp   int64     `json:"timestamp"` // Unix milliseconds, for sorting
	IsNewDevice bool      `json:"isNewDevice"`
	At          time.Time `json:"-"`
}
