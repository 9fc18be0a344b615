package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/imaginify/backend/internal/models"
)

// CreditEventsQueue is the Redis list that receives committed balance changes.
const CreditEventsQueue = "credit_events"

// CreditPublisher announces committed balance changes. Delivery is best effort.
type CreditPublisher interface {
	Publish(ctx context.Context, event models.CreditEvent) error
}

// RedisCreditPublisher pushes credit events onto a Redis list.
type RedisCreditPublisher struct {
	redis *redis.Client
	queue string
}

func NewRedisCreditPublisher(client *redis.Client) *RedisCreditPublisher {
	return &RedisCreditPublisher{redis: client, queue: CreditEventsQueue}
}

func (p *RedisCreditPublisher) Publish(ctx context.Context, event models.CreditEvent) error {
	if p == nil || p.redis == nil {
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal credit event: %w", err)
	}
	return p.redis.RPush(ctx, p.queue, data).Err()
}
