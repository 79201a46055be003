package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Subscriptions records notification topic subscribers. The delivery worker
// reading the topic resolves recipient endpoints from this set.
type Subscriptions struct {
	client *redis.Client
	topic  string
}

// NewSubscriptions returns topic subscriber registry.
func NewSubscriptions(client *redis.Client, topic string) *Subscriptions {
	return &Subscriptions{client: client, topic: topic}
}

// Subscribe adds the email endpoint to the topic's subscriber set. Adding an
// already subscribed email is a no-op.
func (s *Subscriptions) Subscribe(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return errors.New("notify: email required")
	}
	return s.client.SAdd(ctx, s.key(), email).Err()
}

func (s *Subscriptions) key() string {
	return fmt.Sprintf("%s:subscribers", s.topic)
}
