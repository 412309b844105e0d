package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/projecthub-dev/projecthub-backend/internal/logging"
)

// Publisher is what services depend on to announce writes.
type Publisher interface {
	Publish(ctx context.Context, ev Event, channels ...string)
}

// Broker fans change events out over Redis Pub/Sub.
type Broker struct {
	client    redis.UniversalClient
	keepAlive time.Duration
	now       func() time.Time
}

func NewBroker(client redis.UniversalClient) *Broker {
	return &Broker{client: client, keepAlive: 15 * time.Second, now: time.Now}
}

// Publish sends ev to every channel. Failures are logged; the write that
// produced the event has already succeeded.
func (b *Broker) Publish(ctx context.Context, ev Event, channels ...string) {
	if len(channels) == 0 {
		return
	}
	if ev.At.IsZero() {
		ev.At = b.now().UTC()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		logging.New(ctx).Error("realtime.publish", fmt.Errorf("failed to marshal event: %w", err))
		return
	}

	pipe := b.client.Pipeline()
	for _, ch := range channels {
		pipe.Publish(ctx, ch, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logging.New(ctx).Warnf("realtime.publish", "entity=%s id=%s error=%v", ev.Entity, ev.ID, err)
	}
}

// Subscription is a live Pub/Sub subscription decoded into Events.
type Subscription struct {
	pubsub *redis.PubSub
	events chan Event
}

// Subscribe listens on channels until ctx ends or Close is called.
func (b *Broker) Subscribe(ctx context.Context, channels ...string) (*Subscription, error) {
	pubsub := b.client.Subscribe(ctx, channels...)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	sub := &Subscription{pubsub: pubsub, events: make(chan Event, 16)}
	go sub.pump(ctx)
	return sub, nil
}

func (s *Subscription) pump(ctx context.Context) {
	defer close(s.events)
	msgs := s.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				logging.New(ctx).Warnf("realtime.subscribe", "channel=%s bad payload: %v", msg.Channel, err)
				continue
			}
			select {
			case s.events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Events is closed when the subscription ends.
func (s *Subscription) Events() <-chan Event { return s.events }

func (s *Subscription) Close() error { return s.pubsub.Close() }
