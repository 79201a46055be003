package transport

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"carpark/backend/services/notifications-service/internal/dispatcher"
)

// Publisher pushes payment notifications onto the outbound topic. Delivery
// to subscribed endpoints is fan-out done by an external worker listening on
// the topic; from here it is fire-and-forget.
type Publisher struct {
	client *redis.Client
	topic  string
}

// NewPublisher returns topic-backed publisher.
func NewPublisher(client *redis.Client, topic string) *Publisher {
	return &Publisher{client: client, topic: topic}
}

type envelope struct {
	Subject string                  `json:"subject"`
	Message dispatcher.Notification `json:"message"`
}

// Publish sends one notification to the topic.
func (p *Publisher) Publish(ctx context.Context, subject string, notification dispatcher.Notification) error {
	payload, err := json.Marshal(envelope{Subject: subject, Message: notification})
	if err != nil {
		return fmt.Errorf("transport: encode notification: %w", err)
	}
	if err := p.client.Publish(ctx, p.topic, payload).Err(); err != nil {
		return fmt.Errorf("transport: publish: %w", err)
	}
	return nil
}
