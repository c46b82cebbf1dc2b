package model

import (
	"context"
	"io"
)

// Storage abstracts the object store holding fetched file bytes.
type Storage interface {
	// Upload streams reader to key and returns the number of bytes written.
	Upload(ctx context.Context, key string, reader io.Reader) (int64, error)
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
