// Package queue fans stored notifications out to delivery consumers over a
// Redis stream. The database row written by the application core is the
// source of truth; publishing here is best-effort and a lost event only means
// a delayed push, never a lost notification.
package queue

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"bookshare/internal/util"
	"bookshare/pkg/domain"
)

// Event is one notification delivery request on the stream.
type Event struct {
	NotificationID string
	UserID         string
	Content        string
	AdID           string
	TransactionID  string
}

// RedisNotifyQueue publishes and consumes notification events via a Redis
// stream with a consumer group.
type RedisNotifyQueue struct {
	client       *redis.Client
	stream       string
	group        string
	consumerBase string
	block        time.Duration
	maxLen       int64
	readCount    int64
	once         sync.Once
}

// RedisNotifyQueueConfig configures the queue; zero values get defaults.
type RedisNotifyQueueConfig struct {
	Addr      string
	Password  string
	Stream    string
	Group     string
	Consumer  string
	Block     time.Duration
	MaxLen    int64
	ReadCount int64
}

// NewRedisNotifyQueue builds the queue.
func NewRedisNotifyQueue(cfg RedisNotifyQueueConfig) (*RedisNotifyQueue, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, errors.New("redis addr required")
	}
	stream := strings.TrimSpace(cfg.Stream)
	if stream == "" {
		stream = "bookshare:notifications"
	}
	group := strings.TrimSpace(cfg.Group)
	if group == "" {
		group = "delivery"
	}
	consumer := strings.TrimSpace(cfg.Consumer)
	if consumer == "" {
		consumer = util.NewID()
	}
	block := cfg.Block
	if block <= 0 {
		block = 5 * time.Second
	}
	maxLen := cfg.MaxLen
	if maxLen <= 0 {
		maxLen = 10000
	}
	readCount := cfg.ReadCount
	if readCount <= 0 {
		readCount = 10
	}
	return &RedisNotifyQueue{
		client:       redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Password}),
		stream:       stream,
		group:        group,
		consumerBase: consumer,
		block:        block,
		maxLen:       maxLen,
		readCount:    readCount,
	}, nil
}

// Publish puts a notification event on the stream.
func (q *RedisNotifyQueue) Publish(ctx context.Context, n domain.Notification) error {
	return q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		MaxLen: q.maxLen,
		Approx: true,
		Values: map[string]any{
			"notification_id": n.ID,
			"user_id":         n.UserID,
			"content":         n.Content,
			"ad_id":           n.Meta.AdID,
			"transaction_id":  n.Meta.TransactionID,
		},
	}).Err()
}

// Start launches consumer goroutines that invoke handler per event.
// Handler errors leave the message unacked so another consumer can retry it.
func (q *RedisNotifyQueue) Start(ctx context.Context, concurrency int, handler func(context.Context, Event) error) {
	if concurrency <= 0 {
		concurrency = 1
	}
	q.ensureGroup(ctx)
	for i := 0; i < concurrency; i++ {
		consumer := q.consumerBase + "-" + strconv.Itoa(i)
		go q.consumeLoop(ctx, consumer, handler)
	}
}

func (q *RedisNotifyQueue) ensureGroup(ctx context.Context) {
	q.once.Do(func() {
		// BUSYGROUP means the group already exists; anything else will
		// surface again on the first XReadGroup call.
		_ = q.client.XGroupCreateMkStream(ctx, q.stream, q.group, "$").Err()
	})
}

func (q *RedisNotifyQueue) consumeLoop(ctx context.Context, consumer string, handler func(context.Context, Event) error) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    q.group,
			Consumer: consumer,
			Streams:  []string{q.stream, ">"},
			Count:    q.readCount,
			Block:    q.block,
		}).Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			continue
		}
		for _, stream := range streams {
			for _, msg := range stream.Messages {
				event := decodeEvent(msg)
				if event.NotificationID == "" {
					q.ack(ctx, msg.ID)
					continue
				}
				if err := handler(ctx, event); err != nil {
					continue
				}
				q.ack(ctx, msg.ID)
			}
		}
	}
}

func (q *RedisNotifyQueue) ack(ctx context.Context, msgID string) {
	_, _ = q.client.XAck(ctx, q.stream, q.group, msgID).Result()
	_, _ = q.client.XDel(ctx, q.stream, msgID).Result()
}

func decodeEvent(msg redis.XMessage) Event {
	get := func(key string) string {
		v, _ := msg.Values[key].(string)
		return v
	}
	return Event{
		NotificationID: get("notification_id"),
		UserID:         get("user_id"),
		Content:        get("content"),
		AdID:           get("ad_id"),
		TransactionID:  get("transaction_id"),
	}
}
