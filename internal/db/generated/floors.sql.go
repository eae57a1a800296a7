// Bindings for queries/floors.sql.

package dbgen

import (
	"context"
	"database/sql"
)

const createFloor = `-- name: CreateFloor :one
INSERT INTO floors (building_id, level, map_file_id, image_width, image_height)
VALUES (?, ?, ?, ?, ?)
RETURNING id, building_id, level, map_file_id, image_width, image_height, created_at, updated_at
`

type CreateFloorParams struct {
	BuildingID  int64          `json:"building_id"`
	Level       int64          `json:"level"`
	MapFileID   sql.NullString `json:"map_file_id"`
	ImageWidth  int64          `json:"image_width"`
	ImageHeight int64          `json:"image_height"`
}

func (q *Queries) CreateFloor(ctx context.Context, arg CreateFloorParams) (Floor, error) {
	row := q.db.QueryRowContext(ctx, createFloor,
		arg.BuildingID,
		arg.Level,
		arg.MapFileID,
		arg.ImageWidth,
		arg.ImageHeight,
	)
	var i Floor
	err := row.Scan(
		&i.ID,
		&i.BuildingID,
		&i.Level,
		&i.MapFileID,
		&i.ImageWidth,
		&i.ImageHeight,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const deleteFloor = `-- name: DeleteFloor :execrows
DELETE FROM floors
WHERE id = ? AND building_id = ?
`

type DeleteFloorParams struct {
	ID         int64 `json:"id"`
	BuildingID int64 `json:"building_id"`
}

func (q *Queries) DeleteFloor(ctx context.Context, arg DeleteFloorParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteFloor, arg.ID, arg.BuildingID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getFloor = `-- name: GetFloor :one
SELECT id, building_id, level, map_file_id, image_width, image_height, created_at, updated_at FROM floors
WHERE id = ? AND building_id = ?
`

type GetFloorParams struct {
	ID         int64 `json:"id"`
	BuildingID int64 `json:"building_id"`
}

func (q *Queries) GetFloor(ctx context.Context, arg GetFloorParams) (Floor, error) {
	row := q.db.QueryRowContext(ctx, getFloor, arg.ID, arg.BuildingID)
	var i Floor
	err := row.Scan(
		&i.ID,
		&i.BuildingID,
		&i.Level,
		&i.MapFileID,
		&i.ImageWidth,
		&i.ImageHeight,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listFloorsByBuilding = `-- name: ListFloorsByBuilding :many
SELECT id, building_id, level, map_file_id, image_width, image_height, created_at, updated_at FROM floors
WHERE building_id = ?
ORDER BY level
`

func (q *Queries) ListFloorsByBuilding(ctx context.Context, buildingID int64) ([]Floor, error) {
	rows, err := q.db.QueryContext(ctx, listFloorsByBuilding, buildingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Floor{}
	for rows.Next() {
		var i Floor
		if err := rows.Scan(
			&i.ID,
			&i.BuildingID,
			&i.Level,
			&i.MapFileID,
			&i.ImageWidth,
			&i.ImageHeight,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateFloor = `-- name: UpdateFloor :one
UPDATE floors
SET level = ?,
    map_file_id = ?,
    image_width = ?,
    image_height = ?,
    updated_at = CURRENT_TIMESTAMP
WHERE id = ? AND building_id = ?
RETURNING id, building_id, level, map_file_id, image_width, image_height, created_at, updated_at
`

type UpdateFloorParams struct {
	Level       int64          `json:"level"`
	MapFileID   sql.NullString `json:"map_file_id"`
	ImageWidth  int64          `json:"image_width"`
	ImageHeight int64          `json:"image_height"`
	ID          int64          `json:"id"`
	BuildingID  int64          `json:"building_id"`
}

func (q *Queries) UpdateFloor(ctx context.Context, arg UpdateFloorParams) (Floor, error) {
	row := q.db.QueryRowContext(ctx, updateFloor,
		arg.Level,
		arg.MapFileID,
		arg.ImageWidth,
		arg.ImageHeight,
		arg.ID,
		arg.BuildingID,
	)
	var i Floor
	err := row.Scan(
		&i.ID,
		&i.BuildingID,
		&i.Level,
		&i.MapFileID,
		&i.ImageWidth,
		&i.ImageHeight,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
