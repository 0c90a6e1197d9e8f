package queue

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"github.com/Yaro-bit/SimpleSalesman/internal/config"
	"github.com/Yaro-bit/SimpleSalesman/internal/logger"
)

const pollTimeout = 5 * time.Second

type MessageHandler func(ctx context.Context, data []byte) error

// DeadLetter is what lands in the dead letter list for a message that could
// not be processed.
type DeadLetter struct {
	Message  json.RawMessage `json:"message"`
	Error    string          `json:"error"`
	FailedAt time.Time       `json:"failed_at"`
}

type Consumer struct {
	client *redis.Client
	queue  string
	dlq    string
	log    zerolog.Logger
}

func NewConsumer(redisClient *RedisClient, cfg *config.Config) *Consumer {
	return &Consumer{
		client: redisClient.Client(),
		queue:  cfg.Redis.IngestionQueue,
		dlq:    cfg.Redis.IngestionQueue + cfg.Redis.DLQSuffix,
		log:    logger.Component("queue_consumer"),
	}
}

// Consume blocks on the ingestion list until ctx is cancelled. Messages the
// handler rejects go to the dead letter list.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	c.log.Info().Str("queue", c.queue).Msg("Consuming import jobs")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		result, err := c.client.BRPop(ctx, pollTimeout, c.queue).Result()
		if err != nil {
			if stderrors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Error().Err(err).Str("queue", c.queue).Msg("Failed to consume message")
			time.Sleep(time.Second)
			continue
		}

		if len(result) < 2 {
			continue
		}

		message := []byte(result[1])
		if err := handler(ctx, message); err != nil {
			c.log.Error().Err(err).Str("queue", c.queue).Msg("Failed to process message")
			c.DeadLetter(ctx, message, err)
		}
	}
}

// DeadLetter moves a message to the dead letter list together with the
// reason it failed.
func (c *Consumer) DeadLetter(ctx context.Context, message []byte, cause error) {
	entry := DeadLetter{Message: message, Error: cause.Error(), FailedAt: time.Now().UTC()}
	if !json.Valid(message) {
		quoted, _ := json.Marshal(string(message))
		entry.Message = quoted
	}

	data, err := json.Marshal(entry)
	if err != nil {
		c.log.Error().Err(err).Msg("Failed to encode dead letter")
		return
	}
	if err := c.client.LPush(ctx, c.dlq, data).Err(); err != nil {
		c.log.Error().Err(err).Str("dlq", c.dlq).Msg("Failed to move message to DLQ")
	}
}
