package services

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// SearchLimiter budgets how many scrapes the backend performs: a short burst
// limiter plus a calendar-day quota that resets at local midnight. It is an
// explicit collaborator injected into the handler rather than ambient global
// state, so it can be swapped or reset in tests.
type SearchLimiter struct {
	burst *rate.Limiter

	mu       sync.Mutex
	dayLimit int
	count    int
	day      string

	now func() time.Time
}

// NewSearchLimiter allows up to perSecond searches per second and dayLimit
// searches per calendar day. A dayLimit of zero disables the daily quota.
func NewSearchLimiter(perSecond float64, burst, dayLimit int) *SearchLimiter {
	return &SearchLimiter{
		burst:    rate.NewLimiter(rate.Limit(perSecond), burst),
		dayLimit: dayLimit,
		now:      time.Now,
	}
}

// Allow reports whether another search may start now, consuming one unit of
// the budget when it does.
func (l *SearchLimiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	today := l.now().Format("2006-01-02")
	if today != l.day {
		l.day = today
		l.count = 0
	}
	if l.dayLimit > 0 && l.count >= l.dayLimit {
		return false
	}
	if !l.burst.Allow() {
		return false
	}
	l.count++
	return true
}

// Remaining returns how much of today's quota is left. Negative means
// unlimited.
func (l *SearchLimiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.dayLimit <= 0 {
		return -1
	}
	if l.now().Format("2006-01-02") != l.day {
		return l.dayLimit
	}
	return l.dayLimit - l.count
}
