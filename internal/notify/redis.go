package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/horlartundhey/servisbet-sub001/internal/services"
)

// DefaultChannel is the pub/sub channel used when none is configured.
const DefaultChannel = "servisbet:events"

// RedisOptions configures the Redis publisher.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// Redis publishes events as JSON on a Redis pub/sub channel, where the
// dashboard and push workers subscribe.
type Redis struct {
	client  *redis.Client
	channel string
	logger  zerolog.Logger
}

// NewRedis connects to Redis and verifies the connection with PING.
func NewRedis(ctx context.Context, opts RedisOptions, logger zerolog.Logger) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewRedisFromClient(rdb, opts.Channel, logger), nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(rdb *redis.Client, channel string, logger zerolog.Logger) *Redis {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Redis{client: rdb, channel: channel, logger: logger}
}

// Notify implements services.Notifier.
func (r *Redis) Notify(ctx context.Context, ev services.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		r.logger.Error().Err(err).Str("event", string(ev.Type)).Msg("encode event")
		return
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		r.logger.Error().Err(err).Str("event", string(ev.Type)).Str("channel", r.channel).Msg("publish event")
	}
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
