package chat

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"

	"fxacademy/internal/logging"
)

// DefaultChannel is the Redis pub/sub channel instances exchange deliveries on.
const DefaultChannel = "chat:deliveries"

// Delivery addresses a rendered frame to local connections. Exactly one of Room, UserID or
// Broadcast selects the audience.
type Delivery struct {
	Room       string          `json:"room,omitempty"`
	ExceptUser string          `json:"except_user,omitempty"`
	UserID     string          `json:"user_id,omitempty"`
	SkipRoom   string          `json:"skip_room,omitempty"`
	Broadcast  bool            `json:"broadcast,omitempty"`
	Payload    json.RawMessage `json:"payload"`
}

// Broker fans deliveries out to every hub subscribed to it, the publishing one included.
type Broker interface {
	Publish(ctx context.Context, d Delivery) error
	// Subscribe starts handing deliveries to handle and returns once the subscription is live.
	Subscribe(ctx context.Context, handle func(Delivery)) error
	Close() error
}

// LocalBroker delivers in-process, synchronously on the publisher's goroutine.
type LocalBroker struct {
	mu     sync.RWMutex
	handle func(Delivery)
}

func NewLocalBroker() *LocalBroker {
	return &LocalBroker{}
}

func (b *LocalBroker) Publish(_ context.Context, d Delivery) error {
	b.mu.RLock()
	handle := b.handle
	b.mu.RUnlock()
	if handle != nil {
		handle(d)
	}
	return nil
}

func (b *LocalBroker) Subscribe(_ context.Context, handle func(Delivery)) error {
	b.mu.Lock()
	b.handle = handle
	b.mu.Unlock()
	return nil
}

func (b *LocalBroker) Close() error {
	b.mu.Lock()
	b.handle = nil
	b.mu.Unlock()
	return nil
}

// RedisBroker shares deliveries between API instances over Redis pub/sub.
type RedisBroker struct {
	client  *redis.Client
	channel string
	log     *logging.Logger

	mu     sync.Mutex
	pubsub *redis.PubSub
	done   chan struct{}
}

func NewRedisBroker(client *redis.Client, channel string, log *logging.Logger) *RedisBroker {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBroker{client: client, channel: channel, log: log}
}

func (b *RedisBroker) Publish(ctx context.Context, d Delivery) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.channel, raw).Err()
}

func (b *RedisBroker) Subscribe(ctx context.Context, handle func(Delivery)) error {
	ps := b.client.Subscribe(ctx, b.channel)
	// Wait for the subscription confirmation so nothing published afterwards is missed.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return err
	}

	done := make(chan struct{})
	b.mu.Lock()
	b.pubsub = ps
	b.done = done
	b.mu.Unlock()

	go func() {
		defer close(done)
		for msg := range ps.Channel() {
			var d Delivery
			if err := json.Unmarshal([]byte(msg.Payload), &d); err != nil {
				b.log.Error("chat_delivery_decode_failed", err, map[string]any{"component": "chat", "channel": b.channel})
				continue
			}
			handle(d)
		}
	}()
	return nil
}

// Close ends the subscription and waits for the receive loop to drain.
func (b *RedisBroker) Close() error {
	b.mu.Lock()
	ps, done := b.pubsub, b.done
	b.pubsub, b.done = nil, nil
	b.mu.Unlock()
	if ps == nil {
		return nil
	}
	err := ps.Close()
	<-done
	return err
}
