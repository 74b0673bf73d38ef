package event

import (
	"context"
	"encoding/json"
	"log"

	"github.com/mitchellh/mapstructure"
	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the Redis channel events are relayed on.
const DefaultChannel = "commerce:events"

// envelope is the wire form of a relayed event: the name selects the
// concrete type on the consuming side.
type envelope struct {
	Name    string                 `json:"name"`
	Payload map[string]interface{} `json:"payload"`
}

func encodeEnvelope(e Event) ([]byte, error) {
	payload := map[string]interface{}{}
	if err := mapstructure.Decode(e, &payload); err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Name: e.Name(), Payload: payload})
}

func decodeEnvelope(raw []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	return Decode(env.Name, env.Payload)
}

// RedisRelay mirrors committed domain events onto a Redis channel so
// other processes can react without polling the database. It is a
// Notifier, so it attaches to the bus like any other; delivery is
// pub/sub fire-and-forget and consumers must be idempotent.
type RedisRelay struct {
	client  *redis.Client
	channel string
}

func NewRedisRelay(client *redis.Client, channel string) *RedisRelay {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisRelay{client: client, channel: channel}
}

// Notify publishes the event envelope on the relay channel.
func (r *RedisRelay) Notify(e Event) error {
	raw, err := encodeEnvelope(e)
	if err != nil {
		return err
	}
	return r.client.Publish(context.Background(), r.channel, raw).Err()
}

// Listen consumes the channel until ctx ends, rebuilding each envelope
// into its typed event and handing it to n. Malformed messages are
// logged and dropped, never fatal.
func (r *RedisRelay) Listen(ctx context.Context, n Notifier) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-sub.Channel():
			if !ok {
				return nil
			}
			e, err := decodeEnvelope([]byte(msg.Payload))
			if err != nil {
				log.Printf("event: dropping relay message: %v", err)
				continue
			}
			if err := n.Notify(e); err != nil {
				log.Printf("event: relay notify %s failed: %v", e.Name(), err)
			}
		}
	}
}
