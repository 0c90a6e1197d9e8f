package queue

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"

	"github.com/Yaro-bit/SimpleSalesman/internal/config"
	"github.com/Yaro-bit/SimpleSalesman/internal/model"
)

// Producer pushes import jobs onto the ingestion list.
type Producer struct {
	client *redis.Client
	queue  string
}

func NewProducer(redisClient *RedisClient, cfg *config.Config) *Producer {
	return &Producer{
		client: redisClient.Client(),
		queue:  cfg.Redis.IngestionQueue,
	}
}

func (p *Producer) EnqueueImport(ctx context.Context, job model.ImportJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return p.client.LPush(ctx, p.queue, data).Err()
}

// Depth returns the number of jobs waiting in the ingestion list.
func (p *Producer) Depth(ctx context.Context) (int64, error) {
	return p.client.LLen(ctx, p.queue).Result()
}
