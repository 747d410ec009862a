package security

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// AbuseTracker records gate rejections in Redis for operator dashboards.
// Tracking is best-effort: a nil client disables it and Redis errors are
// ignored so a tracking outage never affects the submission path.
type AbuseTracker struct {
	redis *redis.Client
}

// NewAbuseTracker creates a tracker backed by rdb; rdb may be nil.
func NewAbuseTracker(rdb *redis.Client) *AbuseTracker {
	return &AbuseTracker{redis: rdb}
}

// RecordRejection counts a gate rejection against the offending IP and the
// reason bucket (rate_limit, token_mismatch, too_fast, honeypot,
// validation, dispatch_failure).
func (at *AbuseTracker) RecordRejection(ip, form, reason string) {
	if at == nil || at.redis == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	now := time.Now().Unix()

	at.redis.Incr(ctx, "security:gate_rejections")
	at.redis.ZAdd(ctx, "security:gate_rejections_timeline", &redis.Z{
		Score:  float64(now),
		Member: ip,
	})
	at.redis.ZIncrBy(ctx, "security:rejected_ips", 1, ip)
	at.redis.ZIncrBy(ctx, "security:rejection_reasons", 1, reason)
	at.redis.ZIncrBy(ctx, "security:rejections_by_form", 1, form)
}
