package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"bookshare/pkg/domain"
)

func TestRedisNotifyQueuePublishAndConsume(t *testing.T) {
	redis := miniredis.RunT(t)
	q, err := NewRedisNotifyQueue(RedisNotifyQueueConfig{
		Addr:   redis.Addr(),
		Stream: "test:notifications",
		Group:  "test-delivery",
		Block:  100 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("new queue: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan Event, 1)
	q.Start(ctx, 1, func(ctx context.Context, e Event) error {
		events <- e
		return nil
	})

	n := domain.Notification{
		ID:      "n-1",
		UserID:  "u-1",
		Content: "Your book has been requested",
		Meta:    domain.NotificationMeta{AdID: "ad-1", TransactionID: "tx-1"},
	}
	if err := q.Publish(ctx, n); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case got := <-events:
		if got.NotificationID != "n-1" || got.UserID != "u-1" {
			t.Fatalf("unexpected event: %+v", got)
		}
		if got.AdID != "ad-1" || got.TransactionID != "tx-1" {
			t.Fatalf("meta fields not carried: %+v", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("event not delivered")
	}
}

func TestRedisNotifyQueueRequiresAddr(t *testing.T) {
	if _, err := NewRedisNotifyQueue(RedisNotifyQueueConfig{}); err == nil {
		t.Fatalf("expected error for missing addr")
	}
}
