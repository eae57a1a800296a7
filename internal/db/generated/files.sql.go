// Bindings for queries/files.sql.

package dbgen

import (
	"context"
	"database/sql"
)

const createFile = `-- name: CreateFile :one
INSERT INTO files (id, storage_key, content_type, size_bytes, width, height, uploaded_by)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id, storage_key, content_type, size_bytes, width, height, uploaded_by, created_at
`

type CreateFileParams struct {
	ID          string        `json:"id"`
	StorageKey  string        `json:"storage_key"`
	ContentType string        `json:"content_type"`
	SizeBytes   int64         `json:"size_bytes"`
	Width       sql.NullInt64 `json:"width"`
	Height      sql.NullInt64 `json:"height"`
	UploadedBy  sql.NullInt64 `json:"uploaded_by"`
}

func (q *Queries) CreateFile(ctx context.Context, arg CreateFileParams) (File, error) {
	row := q.db.QueryRowContext(ctx, createFile,
		arg.ID,
		arg.StorageKey,
		arg.ContentType,
		arg.SizeBytes,
		arg.Width,
		arg.Height,
		arg.UploadedBy,
	)
	var i File
	err := row.Scan(
		&i.ID,
		&i.StorageKey,
		&i.ContentType,
		&i.SizeBytes,
		&i.Width,
		&i.Height,
		&i.UploadedBy,
		&i.CreatedAt,
	)
	return i, err
}

const getFile = `-- name: GetFile :one
SELECT id, storage_key, content_type, size_bytes, width, height, uploaded_by, created_at FROM files
WHERE id = ?
`

func (q *Queries) GetFile(ctx context.Context, id string) (File, error) {
	row := q.db.QueryRowContext(ctx, getFile, id)
	var i File
	err := row.Scan(
		&i.ID,
		&i.StorageKey,
		&i.ContentType,
		&i.SizeBytes,
		&i.Width,
		&i.Height,
		&i.UploadedBy,
		&i.CreatedAt,
	)
	return i, err
}
