package model

import (
	"context"

	"github.com/google/uuid"
)

// JobQueue dispatches fetch jobs to the worker pool. Enqueue must not block
// on anything slower than the queue itself; the coordinator never observes
// job completion.
type JobQueue interface {
	EnqueueFetchJob(ctx context.Context, job FetchJob) error
}

// FetchJob is the wire shape of one queued download. Delivery is
// at-least-once with no ordering guarantee.
type FetchJob struct {
	SourceURL  string    `json:"source_url"`
	FileID     uuid.UUID `json:"file_id"`
	StorageKey string    `json:"storage_key"`
}
