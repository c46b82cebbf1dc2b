package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"

	"github.com/google/uuid"

	"github.com/akorchak/urlstash-server/internal/logger"
	"github.com/akorchak/urlstash-server/internal/model"
)

// File implements the ingestion coordinator and the owner-scoped file
// lifecycle. Upload registers a placeholder row and dispatches a fetch job;
// it never waits for the download.
type File struct {
	fileStore model.FileStore
	userStore model.UserStore
	storage   model.Storage
	queue     model.JobQueue
	logger    *logger.Logger
}

func NewFile(
	fileStore model.FileStore,
	userStore model.UserStore,
	storage model.Storage,
	queue model.JobQueue,
	logger *logger.Logger,
) *File {
	return &File{
		fileStore: fileStore,
		userStore: userStore,
		storage:   storage,
		queue:     queue,
		logger:    logger,
	}
}

// Upload registers sourceURL for the owner and enqueues the background
// fetch. Returns model.ErrConflict when the owner already has a file with
// the derived name, before any job is dispatched.
func (s *File) Upload(ctx context.Context, ownerID uuid.UUID, sourceURL string) error {
	filename, err := FilenameFromURL(sourceURL)
	if err != nil {
		return err
	}

	if _, err := s.userStore.GetByID(ctx, ownerID); err != nil {
		return fmt.Errorf("failed to get user by id: %w", err)
	}

	file := model.File{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		Filename:   filename,
		Size:       0,
		StorageKey: StorageKey(ownerID, filename),
	}

	created, err := s.fileStore.Create(ctx, file)
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			return model.ErrConflict
		}
		return fmt.Errorf("failed to create file record: %w", err)
	}

	job := model.FetchJob{
		SourceURL:  sourceURL,
		FileID:     created.ID,
		StorageKey: created.StorageKey,
	}
	if err := s.queue.EnqueueFetchJob(ctx, job); err != nil {
		// Without a job the placeholder would shadow every retry of the
		// same URL, so take it back out.
		if delErr := s.fileStore.DeleteByID(ctx, created.ID); delErr != nil {
			s.logger.Error("failed to roll back file record after enqueue failure",
				"file_id", created.ID, "error", delErr)
		}
		return fmt.Errorf("failed to enqueue fetch job: %w", err)
	}

	s.logger.Info("fetch job enqueued",
		"file_id", created.ID, "owner_id", ownerID, "filename", filename)

	return nil
}

// List returns all files of the owner. An owner with no files gets
// model.ErrNotFound, not an empty list.
func (s *File) List(ctx context.Context, ownerID uuid.UUID) ([]model.File, error) {
	files, err := s.fileStore.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	if len(files) == 0 {
		return nil, model.ErrNotFound
	}
	return files, nil
}

// Info returns metadata of one file owned by ownerID.
func (s *File) Info(ctx context.Context, ownerID uuid.UUID, fileID uuid.UUID) (model.File, error) {
	file, err := s.fileStore.GetByIDAndOwner(ctx, fileID, ownerID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.File{}, model.ErrNotFound
		}
		return model.File{}, fmt.Errorf("failed to get file by id: %w", err)
	}
	return file, nil
}

// Download resolves the file and opens its stored bytes. A row whose bytes
// are not on storage yet (fetch in flight, or failed before the purge) is
// indistinguishable from a missing row: both are model.ErrNotFound.
func (s *File) Download(ctx context.Context, ownerID uuid.UUID, fileID uuid.UUID) (model.File, io.ReadCloser, error) {
	file, err := s.Info(ctx, ownerID, fileID)
	if err != nil {
		return model.File{}, nil, err
	}

	exists, err := s.storage.Exists(ctx, file.StorageKey)
	if err != nil {
		return model.File{}, nil, fmt.Errorf("failed to check storage: %w", err)
	}
	if !exists {
		return model.File{}, nil, model.ErrNotFound
	}

	reader, err := s.storage.Download(ctx, file.StorageKey)
	if err != nil {
		return model.File{}, nil, fmt.Errorf("failed to download from storage: %w", err)
	}

	return file, reader, nil
}

// Delete removes the catalog row, then best-effort deletes the stored
// bytes. The row delete is authoritative: storage failures are logged and
// the operation still succeeds.
func (s *File) Delete(ctx context.Context, ownerID uuid.UUID, fileID uuid.UUID) error {
	file, err := s.Info(ctx, ownerID, fileID)
	if err != nil {
		return err
	}

	if err := s.fileStore.DeleteByIDAndOwner(ctx, fileID, ownerID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrNotFound
		}
		return fmt.Errorf("failed to delete file record: %w", err)
	}

	exists, err := s.storage.Exists(ctx, file.StorageKey)
	if err != nil {
		s.logger.Error("failed to check storage during delete",
			"file_id", fileID, "storage_key", file.StorageKey, "error", err)
		return nil
	}
	if !exists {
		s.logger.Error("stored bytes missing during delete",
			"file_id", fileID, "storage_key", file.StorageKey)
		return nil
	}
	if err := s.storage.Delete(ctx, file.StorageKey); err != nil {
		s.logger.Error("failed to delete object from storage",
			"file_id", fileID, "storage_key", file.StorageKey, "error", err)
	}

	return nil
}

// FilenameFromURL derives the stored filename from the last path segment of
// an absolute http(s) URL.
func FilenameFromURL(sourceURL string) (string, error) {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return "", model.ErrInvalidSourceURL
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", model.ErrInvalidSourceURL
	}

	filename := path.Base(u.Path)
	if filename == "." || filename == "/" || filename == "" {
		return "", model.ErrInvalidSourceURL
	}
	return filename, nil
}

// StorageKey is the deterministic location of one owner's file. Uniqueness
// of (owner, filename) is enforced through uniqueness of this key.
func StorageKey(ownerID uuid.UUID, filename string) string {
	return fmt.Sprintf("%s/%s", ownerID, filename)
}
