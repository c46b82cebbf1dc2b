package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/akorchak/urlstash-server/internal/logger"
	"github.com/akorchak/urlstash-server/internal/model"
)

// httpDoer is the slice of http.Client the fetcher needs.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher downloads the bytes behind one fetch job and reconciles the file
// catalog with the outcome: success sets the real size, an unrecoverable
// fetch purges the row. Absence of the row is the only failure signal a
// client ever sees.
type Fetcher struct {
	fileStore model.FileStore
	storage   model.Storage
	client    httpDoer
	logger    *logger.Logger
}

// NewFetcher builds a fetcher whose remote requests are bounded by timeout;
// zero means no bound.
func NewFetcher(
	fileStore model.FileStore,
	storage model.Storage,
	timeout time.Duration,
	logger *logger.Logger,
) *Fetcher {
	return &Fetcher{
		fileStore: fileStore,
		storage:   storage,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

// HandleMessage adapts queue messages to fetch jobs.
func (f *Fetcher) HandleMessage(ctx context.Context, data []byte) error {
	var job model.FetchJob
	if err := json.Unmarshal(data, &job); err != nil {
		return fmt.Errorf("failed to unmarshal fetch job: %w", err)
	}
	return f.Process(ctx, job)
}

// Process executes one job. A non-2xx response or transport error is
// terminally handled here (row purged, nil returned, no retry); errors
// after bytes were committed are returned to the consumer's failure
// channel, leaving the stored bytes in place.
func (f *Fetcher) Process(ctx context.Context, job model.FetchJob) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, job.SourceURL, nil)
	if err != nil {
		f.purge(ctx, job, fmt.Sprintf("bad source url: %v", err))
		return nil
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.purge(ctx, job, fmt.Sprintf("fetch failed: %v", err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		f.purge(ctx, job, fmt.Sprintf("remote returned status %d", resp.StatusCode))
		return nil
	}

	size, err := f.storage.Upload(ctx, job.StorageKey, resp.Body)
	if err != nil {
		return fmt.Errorf("failed to store fetched bytes: %w", err)
	}

	// No-op when the owner deleted the file while the download ran; the
	// stored bytes become an untracked orphan in that window.
	if err := f.fileStore.UpdateSize(ctx, job.FileID, size); err != nil {
		return fmt.Errorf("failed to update file size: %w", err)
	}

	f.logger.Info("fetch completed",
		"file_id", job.FileID, "storage_key", job.StorageKey, "size", size)

	return nil
}

// purge removes the catalog row of a failed fetch. The job is considered
// handled either way.
func (f *Fetcher) purge(ctx context.Context, job model.FetchJob, reason string) {
	f.logger.Info("fetch unrecoverable, purging file record",
		"file_id", job.FileID, "source_url", job.SourceURL, "reason", reason)

	if err := f.fileStore.DeleteByID(ctx, job.FileID); err != nil {
		f.logger.Error("failed to purge file record",
			"file_id", job.FileID, "error", err)
	}
}
