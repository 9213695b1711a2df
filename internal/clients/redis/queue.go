package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/varzia/worldcup-backend/internal/logger"
	"github.com/varzia/worldcup-backend/internal/types"
	"github.com/varzia/worldcup-backend/internal/utils"
)

// BatchQueue is the durable transport between the trigger side and the
// scoring workers. Backed by a redis stream with a consumer group: messages
// are acked only after the handler returns nil, anything left pending past
// the idle threshold is reclaimed, so delivery is at-least-once and batch
// handling has to tolerate replays.
type BatchQueue interface {
	Publish(ctx context.Context, msg types.BatchMessage) error
	Consume(ctx context.Context, handler func(context.Context, types.BatchMessage) error) error
	Close() error
}

type batchQueue struct {
	log          *logger.Logger
	rdb          *goredis.Client
	stream       string
	group        string
	consumer     string
	block        time.Duration
	claimMinIdle time.Duration
}

func NewBatchQueue(log *logger.Logger) (BatchQueue, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(utils.GetEnv("REDIS_ADDR", "localhost:6379", log))
	password := utils.GetEnv("REDIS_PASSWORD", "", log)
	stream := utils.GetEnv("QUEUE_STREAM", "process-batch", log)
	group := utils.GetEnv("QUEUE_GROUP", "prediction-workers", log)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "worker"
	}
	consumer := fmt.Sprintf("%s-%s", hostname, uuid.NewString()[:8])

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &batchQueue{
		log:          log.With("service", "BatchQueue", "stream", stream, "consumer", consumer),
		rdb:          rdb,
		stream:       stream,
		group:        group,
		consumer:     consumer,
		block:        5 * time.Second,
		claimMinIdle: 2 * time.Minute,
	}, nil
}

// Publish is fire-and-forget: it does not wait for any consumer.
func (q *batchQueue) Publish(ctx context.Context, msg types.BatchMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode batch message: %w", err)
	}
	if err := q.rdb.XAdd(ctx, &goredis.XAddArgs{
		Stream: q.stream,
		Values: map[string]any{"payload": payload},
	}).Err(); err != nil {
		return fmt.Errorf("publish batch %d: %w", msg.BatchNumber, err)
	}
	return nil
}

// Consume blocks and dispatches messages to handler until ctx is cancelled.
func (q *batchQueue) Consume(ctx context.Context, handler func(context.Context, types.BatchMessage) error) error {
	if err := q.ensureGroup(ctx); err != nil {
		return err
	}
	q.log.Info("Consuming batch messages", "group", q.group)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		q.claimStale(ctx, handler)

		streams, err := q.rdb.XReadGroup(ctx, &goredis.XReadGroupArgs{
			Group:    q.group,
			Consumer: q.consumer,
			Streams:  []string{q.stream, ">"},
			Count:    1,
			Block:    q.block,
		}).Result()
		if err == goredis.Nil {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			q.log.Warn("Read from stream failed", "error", err)
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range streams {
			for _, message := range stream.Messages {
				q.handleMessage(ctx, handler, message)
			}
		}
	}
}

func (q *batchQueue) ensureGroup(ctx context.Context) error {
	err := q.rdb.XGroupCreateMkStream(ctx, q.stream, q.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create consumer group %s: %w", q.group, err)
	}
	return nil
}

// claimStale picks up messages another consumer took but never acked, which
// is how a crash mid-batch turns into redelivery.
func (q *batchQueue) claimStale(ctx context.Context, handler func(context.Context, types.BatchMessage) error) {
	messages, _, err := q.rdb.XAutoClaim(ctx, &goredis.XAutoClaimArgs{
		Stream:   q.stream,
		Group:    q.group,
		Consumer: q.consumer,
		MinIdle:  q.claimMinIdle,
		Start:    "0",
		Count:    10,
	}).Result()
	if err != nil && err != goredis.Nil {
		q.log.Warn("Autoclaim failed", "error", err)
		return
	}
	for _, message := range messages {
		q.handleMessage(ctx, handler, message)
	}
}

func (q *batchQueue) handleMessage(ctx context.Context, handler func(context.Context, types.BatchMessage) error, message goredis.XMessage) {
	raw, ok := message.Values["payload"].(string)
	if !ok {
		q.log.Error("Message without payload field, acking as poison", "message_id", message.ID)
		q.ack(ctx, message.ID)
		return
	}

	var msg types.BatchMessage
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		q.log.Error("Undecodable batch message, acking as poison", "message_id", message.ID, "error", err)
		q.ack(ctx, message.ID)
		return
	}

	if err := handler(ctx, msg); err != nil {
		// No ack: the entry stays pending and will be reclaimed later.
		q.log.Error("Batch handler failed, leaving message pending", "message_id", message.ID, "batch_number", msg.BatchNumber, "error", err)
		return
	}
	q.ack(ctx, message.ID)
}

func (q *batchQueue) ack(ctx context.Context, messageID string) {
	if err := q.rdb.XAck(ctx, q.stream, q.group, messageID).Err(); err != nil {
		q.log.Warn("Ack failed", "message_id", messageID, "error", err)
	}
}

func (q *batchQueue) Close() error {
	return q.rdb.Close()
}
