package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/akorchak/urlstash-server/internal/model"
)

var _ model.FileStore = (*FileRepository)(nil)

type FileRepository struct {
	db *Connection
}

func NewFileRepository(db *Connection) *FileRepository {
	return &FileRepository{
		db: db,
	}
}

// Create inserts a placeholder row. A storage_key collision means the owner
// already has a file with this name, pending or completed.
func (r *FileRepository) Create(ctx context.Context, file model.File) (model.File, error) {
	query := `INSERT INTO files (id, owner_id, filename, size, storage_key)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id, owner_id, filename, size, storage_key, uploaded_at`

	var savedFile model.File
	err := r.db.QueryRow(ctx, query,
		file.ID, file.OwnerID, file.Filename, file.Size, file.StorageKey,
	).Scan(
		&savedFile.ID, &savedFile.OwnerID, &savedFile.Filename,
		&savedFile.Size, &savedFile.StorageKey, &savedFile.UploadedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.File{}, model.ErrConflict
		}
		return model.File{}, fmt.Errorf("failed to create file: %w", err)
	}

	return savedFile, nil
}

func (r *FileRepository) GetByIDAndOwner(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) (model.File, error) {
	query := `SELECT id, owner_id, filename, size, storage_key, uploaded_at
			  FROM files WHERE id = $1 AND owner_id = $2`

	var file model.File
	err := r.db.QueryRow(ctx, query, id, ownerID).Scan(
		&file.ID, &file.OwnerID, &file.Filename,
		&file.Size, &file.StorageKey, &file.UploadedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.File{}, model.ErrNotFound
		}
		return model.File{}, fmt.Errorf("failed to get file by id: %w", err)
	}

	return file, nil
}

func (r *FileRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.File, error) {
	query := `SELECT id, owner_id, filename, size, storage_key, uploaded_at
			  FROM files WHERE owner_id = $1
			  ORDER BY uploaded_at DESC`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	var files []model.File
	for rows.Next() {
		var file model.File
		err := rows.Scan(
			&file.ID, &file.OwnerID, &file.Filename,
			&file.Size, &file.StorageKey, &file.UploadedAt,
		)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return files, nil
}

// UpdateSize records the fetched byte count. Zero rows affected is silently
// accepted: the row may have been deleted while the download was in flight.
func (r *FileRepository) UpdateSize(ctx context.Context, id uuid.UUID, size int64) error {
	const query = `UPDATE files SET size = $2 WHERE id = $1`
	if _, err := r.db.Exec(ctx, query, id, size); err != nil {
		return fmt.Errorf("failed to update file size: %w", err)
	}
	return nil
}

// DeleteByID removes a row regardless of owner. Used by the fetch worker to
// purge a record whose download failed; a missing row is not an error there
// either.
func (r *FileRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM files WHERE id = $1`
	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (r *FileRepository) DeleteByIDAndOwner(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error {
	const query = `DELETE FROM files WHERE id = $1 AND owner_id = $2`
	cmd, err := r.db.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
