package changefeed

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const payloadField = "record"

// Publisher appends session mutation records to a redis stream. A single
// stream keeps mutations totally ordered, which preserves the per-session
// ordering the dispatcher depends on.
type Publisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewPublisher returns a stream-backed publisher. maxLen bounds the stream
// with approximate trimming; <= 0 disables trimming.
func NewPublisher(client *redis.Client, stream string, maxLen int64) *Publisher {
	return &Publisher{client: client, stream: stream, maxLen: maxLen}
}

// Publish appends one mutation record to the feed.
func (p *Publisher) Publish(ctx context.Context, rec Record) error {
	payload, err := rec.Encode()
	if err != nil {
		return fmt.Errorf("changefeed: encode record: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{payloadField: payload},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("changefeed: xadd: %w", err)
	}
	return nil
}
