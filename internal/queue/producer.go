package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/akorchak/urlstash-server/internal/config"
	"github.com/akorchak/urlstash-server/internal/model"
)

var _ model.JobQueue = (*Producer)(nil)

type Producer struct {
	client *redis.Client
	cfg    config.Redis
}

func NewProducer(redisClient *RedisClient, cfg config.Redis) *Producer {
	return &Producer{
		client: redisClient.Client(),
		cfg:    cfg,
	}
}

// EnqueueFetchJob pushes one fetch job onto the queue. Fire-and-forget: the
// caller never observes job completion.
func (p *Producer) EnqueueFetchJob(ctx context.Context, job model.FetchJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal fetch job: %w", err)
	}

	if err := p.client.LPush(ctx, p.cfg.FetchQueue, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue fetch job: %w", err)
	}
	return nil
}
