package queue

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/akorchak/urlstash-server/internal/config"
	"github.com/akorchak/urlstash-server/internal/logger"
)

// MessageHandler processes one raw queue message. A returned error sends the
// message to the dead-letter list; it is never redelivered to a worker.
type MessageHandler func(ctx context.Context, data []byte) error

type Consumer struct {
	client *redis.Client
	cfg    config.Redis
	logger *logger.Logger
}

func NewConsumer(redisClient *RedisClient, cfg config.Redis, logger *logger.Logger) *Consumer {
	return &Consumer{
		client: redisClient.Client(),
		cfg:    cfg,
		logger: logger,
	}
}

// ConsumeFetchQueue blocks on the fetch queue until ctx is cancelled. Each
// popped message is handed to exactly one handler invocation.
func (c *Consumer) ConsumeFetchQueue(ctx context.Context, handler MessageHandler) error {
	return c.consume(ctx, c.cfg.FetchQueue, handler)
}

func (c *Consumer) consume(ctx context.Context, queueName string, handler MessageHandler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			result, err := c.client.BRPop(ctx, 5*time.Second, queueName).Result()
			if err != nil {
				if err == redis.Nil {
					continue // poll timeout
				}
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.logger.Error("failed to consume message", "queue", queueName, "error", err)
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(time.Second):
				}
				continue
			}

			if len(result) < 2 {
				continue
			}

			message := result[1]
			if err := handler(ctx, []byte(message)); err != nil {
				c.logger.Error("failed to process message", "queue", queueName, "error", err)
				dlqName := queueName + c.cfg.DLQSuffix
				if dlqErr := c.client.LPush(ctx, dlqName, message).Err(); dlqErr != nil {
					c.logger.Error("failed to move message to dlq", "dlq", dlqName, "error", dlqErr)
				}
			}
		}
	}
}
