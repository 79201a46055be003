package changefeed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Handler processes one delivered batch of mutation records. Returning an
// error leaves the batch unacknowledged so the group redelivers it.
type Handler func(ctx context.Context, records []Record) error

// Consumer reads session mutation records from the feed stream through a
// consumer group. Delivery is at-least-once: entries are acknowledged only
// after the handler returns.
type Consumer struct {
	client    *redis.Client
	stream    string
	group     string
	name      string
	batchSize int64
	block     time.Duration
	logger    *zap.Logger
}

// NewConsumer builds a group consumer for the feed stream.
func NewConsumer(client *redis.Client, stream, group, name string, batchSize int64, block time.Duration, logger *zap.Logger) *Consumer {
	if batchSize <= 0 {
		batchSize = 32
	}
	if block <= 0 {
		block = 5 * time.Second
	}
	return &Consumer{
		client:    client,
		stream:    stream,
		group:     group,
		name:      name,
		batchSize: batchSize,
		block:     block,
		logger:    logger,
	}
}

// Run consumes the stream until ctx is cancelled. Entries that were delivered
// to this consumer before a crash are drained first, then the loop follows
// new entries.
func (c *Consumer) Run(ctx context.Context, handler Handler) error {
	if err := c.ensureGroup(ctx); err != nil {
		return err
	}

	cursor := "0" // drain own pending entries before tailing
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.group,
			Consumer: c.name,
			Streams:  []string{c.stream, cursor},
			Count:    c.batchSize,
			Block:    c.block,
		}).Result()
		if errors.Is(err, redis.Nil) {
			cursor = ">"
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error("changefeed read failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
			continue
		}

		delivered := 0
		for _, stream := range streams {
			delivered += len(stream.Messages)
			c.process(ctx, handler, stream.Messages)
		}
		if delivered == 0 {
			cursor = ">"
		}
	}
}

func (c *Consumer) process(ctx context.Context, handler Handler, messages []redis.XMessage) {
	if len(messages) == 0 {
		return
	}

	records := make([]Record, 0, len(messages))
	ids := make([]string, 0, len(messages))
	for _, msg := range messages {
		ids = append(ids, msg.ID)
		payload, ok := msg.Values[payloadField].(string)
		if !ok {
			c.logger.Warn("changefeed entry missing payload field", zap.String("id", msg.ID))
			continue
		}
		rec, err := DecodeRecord(payload)
		if err != nil {
			c.logger.Warn("changefeed entry undecodable", zap.String("id", msg.ID), zap.Error(err))
			continue
		}
		records = append(records, rec)
	}

	if len(records) > 0 {
		if err := handler(ctx, records); err != nil {
			// Leave the batch pending; the group redelivers it.
			c.logger.Error("changefeed batch handler failed", zap.Error(err))
			return
		}
	}

	if err := c.client.XAck(ctx, c.stream, c.group, ids...).Err(); err != nil {
		c.logger.Warn("changefeed ack failed", zap.Error(err))
	}
}

func (c *Consumer) ensureGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}
