// Package redis AccountEvents 事件总线操作
package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"afro-class/internal/shared/eventbus"
	"afro-class/internal/shared/model"
)

func streamKey(role model.Role) string {
	return eventbus.KeyAccountEvents + string(role)
}

// PublishAccountEvent 发布账号事件
func (s *Store) PublishAccountEvent(ctx context.Context, role model.Role, event *eventbus.AccountEvent) error {
	args := &redis.XAddArgs{
		Stream: streamKey(role),
		MaxLen: eventbus.MaxStreamLength,
		Approx: true,
		Values: map[string]interface{}{
			"type":      string(event.Type),
			"person_id": event.PersonID,
			"email":     event.Email,
			"timestamp": event.Timestamp.Format(time.RFC3339Nano),
		},
	}

	id, err := s.client.XAdd(ctx, args).Result()
	if err != nil {
		return fmt.Errorf("failed to publish account event: %w", err)
	}
	event.ID = id

	log.Printf("[Redis/EventBus] Published account event: %s seq=%s type=%s", role, id, event.Type)
	return nil
}

// ListAccountEvents 获取账号事件列表
func (s *Store) ListAccountEvents(ctx context.Context, role model.Role, count int64) ([]*eventbus.AccountEvent, error) {
	var msgs []redis.XMessage
	var err error
	if count > 0 {
		msgs, err = s.client.XRangeN(ctx, streamKey(role), "-", "+", count).Result()
	} else {
		msgs, err = s.client.XRange(ctx, streamKey(role), "-", "+").Result()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account events: %w", err)
	}

	events := make([]*eventbus.AccountEvent, 0, len(msgs))
	for _, msg := range msgs {
		event := &eventbus.AccountEvent{ID: msg.ID}
		if v, ok := msg.Values["type"].(string); ok {
			event.Type = eventbus.AccountEventType(v)
		}
		if v, ok := msg.Values["person_id"].(string); ok {
			event.PersonID = v
		}
		if v, ok := msg.Values["email"].(string); ok {
			event.Email = v
		}
		if ts, ok := msg.Values["timestamp"].(string); ok {
			if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
				event.Timestamp = t
			}
		}
		events = append(events, event)
	}
	return events, nil
}
