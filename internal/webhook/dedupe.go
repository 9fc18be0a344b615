package webhook

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// Deduper remembers deliveries that were fully processed so provider retries
// can be acknowledged without touching the store. It is an optimisation on
// top of ledger idempotency: any Redis failure falls through to processing.
type Deduper struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewDeduper(client *redis.Client, ttl time.Duration) *Deduper {
	if client == nil {
		return nil
	}
	return &Deduper{redis: client, ttl: ttl}
}

func dedupeKey(provider, deliveryID string) string {
	return "webhook:" + provider + ":" + deliveryID
}

// Seen reports whether the delivery was already processed.
func (d *Deduper) Seen(ctx context.Context, provider, deliveryID string) bool {
	if d == nil || deliveryID == "" {
		return false
	}
	n, err := d.redis.Exists(ctx, dedupeKey(provider, deliveryID)).Result()
	if err != nil {
		log.Printf("[WEBHOOK] Dedupe lookup failed for %s/%s: %v", provider, deliveryID, err)
		return false
	}
	return n > 0
}

// Mark records a successfully processed delivery.
func (d *Deduper) Mark(ctx context.Context, provider, deliveryID string) {
	if d == nil || deliveryID == "" {
		return
	}
	if err := d.redis.Set(ctx, dedupeKey(provider, deliveryID), "processed", d.ttl).Err(); err != nil {
		log.Printf("[WEBHOOK] Dedupe mark failed for %s/%s: %v", provider, deliveryID, err)
	}
}
