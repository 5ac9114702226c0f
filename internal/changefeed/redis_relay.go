package changefeed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const relayPublishTimeout = 2 * time.Second

// RedisRelay mirrors hub events through a redis pub/sub channel so that every
// instance behind a load balancer refreshes its live lists.
type RedisRelay struct {
	client  *redis.Client
	channel string
	origin  string
	hub     *Hub
	logger  RelayLogger
}

type RelayLogger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

func NewRedisRelay(client *redis.Client, channel string, hub *Hub, logger RelayLogger) *RedisRelay {
	return &RedisRelay{
		client:  client,
		channel: channel,
		origin:  uuid.NewString(),
		hub:     hub,
		logger:  logger,
	}
}

func (r *RedisRelay) Forward(ev Event) error {
	ev.Origin = r.origin
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), relayPublishTimeout)
	defer cancel()
	return r.client.Publish(ctx, r.channel, payload).Err()
}

// Run consumes the channel until ctx is done, delivering events produced by
// other instances to the local hub.
func (r *RedisRelay) Run(ctx context.Context) error {
	pubsub := r.client.Subscribe(ctx, r.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}
	r.logger.Info("change feed relay subscribed", "channel", r.channel, "origin", r.origin)

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			r.handle(msg.Payload)
		}
	}
}

func (r *RedisRelay) handle(payload string) {
	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		r.logger.Warn("dropping malformed change event", "error", err)
		return
	}
	if ev.Origin == r.origin {
		return
	}
	r.hub.Deliver(ev)
}
