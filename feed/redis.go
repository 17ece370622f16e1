// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package feed

import (
	"context"
	"strings"

	"github.com/go-redis/redis"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack"

	"github.com/danielhkuo/livepoll/metrics"
	"github.com/danielhkuo/livepoll/models"
)

// DefaultChannelPrefix namespaces relay channels; the poll id is appended.
const DefaultChannelPrefix = "livepoll:feed:"

// RedisRelay shares notifications between instances over Redis pub/sub.
// Messages are msgpack-encoded Notifications published on prefix+pollID.
type RedisRelay struct {
	client *redis.Client
	broker *Broker
	prefix string
}

// NewRedisClient connects to url and verifies the connection.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	client := redis.NewClient(opts)
	if err := client.Ping().Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "ping redis")
	}
	return client, nil
}

// NewRedisRelay attaches a relay to broker.
func NewRedisRelay(client *redis.Client, broker *Broker) *RedisRelay {
	r := &RedisRelay{client: client, broker: broker, prefix: DefaultChannelPrefix}
	broker.SetForwarder(r)
	return r
}

// Forward publishes n for other instances. Failures are logged; local
// subscribers already have the notification.
func (r *RedisRelay) Forward(n models.Notification) {
	data, err := msgpack.Marshal(&n)
	if err != nil {
		log.Error().Err(err).Str("poll_id", n.PollID).Msg("encode notification")
		return
	}
	if err := r.client.Publish(r.prefix+n.PollID, data).Err(); err != nil {
		log.Warn().Err(err).Str("poll_id", n.PollID).Msg("relay publish failed")
	}
}

// Run delivers notifications from other instances to the local broker until
// ctx is done.
func (r *RedisRelay) Run(ctx context.Context) error {
	pubsub := r.client.PSubscribe(r.prefix + "*")
	defer pubsub.Close()

	// wait for the subscription to be confirmed
	if _, err := pubsub.Receive(); err != nil {
		return errors.Wrap(err, "subscribe to relay")
	}
	log.Info().Str("pattern", r.prefix+"*").Msg("relay subscribed")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return errors.New("relay subscription closed")
			}
			r.handle(msg)
		}
	}
}

func (r *RedisRelay) handle(msg *redis.Message) {
	var n models.Notification
	if err := msgpack.Unmarshal([]byte(msg.Payload), &n); err != nil {
		log.Warn().Err(err).Str("channel", msg.Channel).Msg("dropping malformed relay message")
		return
	}
	if n.Origin == r.broker.Origin() {
		return
	}
	if n.PollID == "" {
		n.PollID = strings.TrimPrefix(msg.Channel, r.prefix)
	}
	metrics.NotificationsRelayed.Add(1)
	r.broker.Deliver(n)
}
