package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/akorchak/urlstash-server/internal/logger"
	"github.com/akorchak/urlstash-server/internal/queue"
)

// Runner drives a fixed number of concurrent queue consumers, each feeding
// the fetcher. The queue hands every job to exactly one consumer; a blocked
// consumer simply leaves jobs on the queue instead of dropping them.
type Runner struct {
	consumer *queue.Consumer
	fetcher  *Fetcher
	count    int
	logger   *logger.Logger
	wg       sync.WaitGroup
}

func NewRunner(consumer *queue.Consumer, fetcher *Fetcher, count int, logger *logger.Logger) *Runner {
	if count < 1 {
		count = 1
	}
	return &Runner{
		consumer: consumer,
		fetcher:  fetcher,
		count:    count,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled and every consumer has drained.
func (r *Runner) Run(ctx context.Context) {
	r.logger.Info("starting fetch workers", "count", r.count)

	for i := 0; i < r.count; i++ {
		r.wg.Add(1)
		go func(id int) {
			defer r.wg.Done()
			err := r.consumer.ConsumeFetchQueue(ctx, r.fetcher.HandleMessage)
			if err != nil && !errors.Is(err, context.Canceled) {
				r.logger.Error("fetch consumer stopped", "worker_id", id, "error", err)
			}
		}(i)
	}

	r.wg.Wait()
	r.logger.Info("fetch workers stopped")
}
