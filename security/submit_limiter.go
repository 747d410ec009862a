package security

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// SubmitLimiter caps form submission attempts per client IP inside a fixed
// window. Records are process-local with no persistence; the limiter exists
// to dampen abuse, not to keep security-critical accounting. Every attempt
// consumes a slot regardless of whether later gate checks pass.
type SubmitLimiter struct {
	mu      sync.Mutex
	records map[string]*windowRecord
	max     int
	window  time.Duration
	now     func() time.Time
}

type windowRecord struct {
	count       int
	windowStart time.Time
}

// NewSubmitLimiter creates a limiter allowing max attempts per window.
// A nil clock means time.Now; tests inject a fake clock.
func NewSubmitLimiter(max int, window time.Duration, clock func() time.Time) *SubmitLimiter {
	if clock == nil {
		clock = time.Now
	}
	sl := &SubmitLimiter{
		records: make(map[string]*windowRecord),
		max:     max,
		window:  window,
		now:     clock,
	}

	go sl.cleanupExpired()

	return sl
}

// Allow records one attempt for the IP and reports whether it is still within
// the ceiling. The check and the increment happen under one lock so two
// concurrent requests from the same IP cannot both observe a stale
// under-limit count.
func (sl *SubmitLimiter) Allow(ip string) bool {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	now := sl.now()

	rec, ok := sl.records[ip]
	if !ok || now.Sub(rec.windowStart) > sl.window {
		sl.records[ip] = &windowRecord{count: 1, windowStart: now}
		return true
	}

	rec.count++
	if rec.count > sl.max {
		log.Warn().
			Str("ip", ip).
			Int("attempts", rec.count).
			Msg("Submission rate limit exceeded")
		return false
	}

	return true
}

// cleanupExpired periodically drops records whose window has lapsed.
func (sl *SubmitLimiter) cleanupExpired() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		sl.mu.Lock()
		now := sl.now()
		for ip, rec := range sl.records {
			if now.Sub(rec.windowStart) > sl.window {
				delete(sl.records, ip)
			}
		}
		remaining := len(sl.records)
		sl.mu.Unlock()

		log.Debug().Int("tracked_ips", remaining).Msg("Cleaned up submission limiter records")
	}
}
