package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// FileStore defines persistence operations for file records.
type FileStore interface {
	Create(ctx context.Context, file File) (File, error)
	GetByIDAndOwner(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) (File, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]File, error)
	// UpdateSize sets the byte count of a fetched file. A vanished row is
	// not an error: the owner may have deleted the file mid-fetch.
	UpdateSize(ctx context.Context, id uuid.UUID, size int64) error
	DeleteByID(ctx context.Context, id uuid.UUID) error
	DeleteByIDAndOwner(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error
}

// File represents one ingestion attempt. A row exists only if an ingestion
// was at least started; a failed fetch removes the row, so absence is the
// failure signal.
type File struct {
	ID         uuid.UUID
	OwnerID    uuid.UUID
	Filename   string
	// Size stays 0 until the fetch worker confirms completion. Consumers
	// must treat 0 as "pending", not as an empty file.
	Size       int64
	StorageKey string
	UploadedAt time.Time
}
