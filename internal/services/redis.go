package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bengalurutaxi/btc-backend/pkg/log"
	"github.com/redis/go-redis/v9"
)

// RideUpdatesChannel carries every RideEvent as JSON.
const RideUpdatesChannel = "ride:updates"

// InitRedis connects to the server at redisURL and checks it answers.
func InitRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	client := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %v", err)
	}
	return client, nil
}

// RedisPublisher publishes ride events for consumers outside this process.
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) RideChanged(ctx context.Context, event RideEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.GetLogger().Error("RedisPublisher.RideChanged", err.Error(), "marshal", fmt.Sprint(event.RideID))
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := p.client.Publish(ctx, RideUpdatesChannel, data).Err(); err != nil {
		log.GetLogger().Warn("RedisPublisher.RideChanged", err.Error(), "publish", fmt.Sprint(event.RideID))
	}
}
