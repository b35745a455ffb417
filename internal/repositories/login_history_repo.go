package repositories

import (
	"context"
	"sync"

	"github.com/BradenHooton/wakeguard/internal/models"
)

// LoginHistoryRepository is an append-only ring buffer of successful logins.
// When full, appending evicts the oldest entry.
type LoginHistoryRepository struct {
	mu      sync.RWMutex
	entries []models.LoginHistoryEntry
	next    int // slot the next entry is written to
	size    int
}

// NewLoginHistoryRepository creates a ledger holding at most capacity entries
func NewLoginHistoryRepository(capacity int) *LoginHistoryRepository {
	if capacity <= 0 {
		capacity = models.LoginHistoryCapacity
	}
	return &LoginHistoryRepository{
		entries: make([]models.LoginHistoryEntry, capacity),
	}
}

// Append records a login
func (r *LoginHistoryRepository) Append(ctx context.Context, entry models.LoginHistoryEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[r.next] = entry
	r.next = (r.next + 1) % len(r.entries)
	if r.size < len(r.entries) {
		r.size++
	}
}

// List returns up to limit entries, newest first. limit <= 0 returns all.
func (r *LoginHistoryRepository) List(ctx context.Context, limit int) []models.LoginHistoryEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > r.size {
		limit = r.size
	}

	out := make([]models.LoginHistoryEntry, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (r.next - i + len(r.entries)) % len(r.entries)
		out = append(out, r.entries[idx])
	}
	return out
}

// ContainsIP reports whether any retained entry came from ip
func (r *LoginHistoryRepository) ContainsIP(ctx context.Context, ip string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := 1; i <= r.size; i++ {
		idx := (r.next - i + len(r.entries)) % len(r.entries)
		if r.entries[idx].IP == ip {
			return true
		}
	}
	return false
}

// Len returns the number of retained entries
func (r *LoginHistoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.size
}

// Capacity returns the maximum number of retained entries
func (r *LoginHistoryRepository) Capacity() int {
	return len(r.entries)
}
