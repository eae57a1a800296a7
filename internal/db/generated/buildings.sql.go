// Bindings for queries/buildings.sql.

package dbgen

import (
	"context"
	"database/sql"
)

const addBuildingPhoto = `-- name: AddBuildingPhoto :exec
INSERT INTO building_photos (building_id, file_id, position)
VALUES (?, ?, ?)
`

type AddBuildingPhotoParams struct {
	BuildingID int64  `json:"building_id"`
	FileID     string `json:"file_id"`
	Position   int64  `json:"position"`
}

func (q *Queries) AddBuildingPhoto(ctx context.Context, arg AddBuildingPhotoParams) error {
	_, err := q.db.ExecContext(ctx, addBuildingPhoto, arg.BuildingID, arg.FileID, arg.Position)
	return err
}

const clearBuildingPhotos = `-- name: ClearBuildingPhotos :exec
DELETE FROM building_photos
WHERE building_id = ?
`

func (q *Queries) ClearBuildingPhotos(ctx context.Context, buildingID int64) error {
	_, err := q.db.ExecContext(ctx, clearBuildingPhotos, buildingID)
	return err
}

const createBuilding = `-- name: CreateBuilding :one
INSERT INTO buildings (name, description, address, latitude, longitude, open_hour, close_hour, timezone)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id, name, description, address, latitude, longitude, open_hour, close_hour, timezone, created_at, updated_at
`

type CreateBuildingParams struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Address     string        `json:"address"`
	Latitude    float64       `json:"latitude"`
	Longitude   float64       `json:"longitude"`
	OpenHour    sql.NullInt64 `json:"open_hour"`
	CloseHour   sql.NullInt64 `json:"close_hour"`
	Timezone    string        `json:"timezone"`
}

func (q *Queries) CreateBuilding(ctx context.Context, arg CreateBuildingParams) (Building, error) {
	row := q.db.QueryRowContext(ctx, createBuilding,
		arg.Name,
		arg.Description,
		arg.Address,
		arg.Latitude,
		arg.Longitude,
		arg.OpenHour,
		arg.CloseHour,
		arg.Timezone,
	)
	var i Building
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.Address,
		&i.Latitude,
		&i.Longitude,
		&i.OpenHour,
		&i.CloseHour,
		&i.Timezone,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const deleteBuilding = `-- name: DeleteBuilding :execrows
DELETE FROM buildings
WHERE id = ?
`

func (q *Queries) DeleteBuilding(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteBuilding, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getBuilding = `-- name: GetBuilding :one
SELECT id, name, description, address, latitude, longitude, open_hour, close_hour, timezone, created_at, updated_at FROM buildings
WHERE id = ?
`

func (q *Queries) GetBuilding(ctx context.Context, id int64) (Building, error) {
	row := q.db.QueryRowContext(ctx, getBuilding, id)
	var i Building
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.Address,
		&i.Latitude,
		&i.Longitude,
		&i.OpenHour,
		&i.CloseHour,
		&i.Timezone,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listBuildingPhotos = `-- name: ListBuildingPhotos :many
SELECT file_id FROM building_photos
WHERE building_id = ?
ORDER BY position
`

func (q *Queries) ListBuildingPhotos(ctx context.Context, buildingID int64) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listBuildingPhotos, buildingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []string{}
	for rows.Next() {
		var file_id string
		if err := rows.Scan(&file_id); err != nil {
			return nil, err
		}
		items = append(items, file_id)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listBuildings = `-- name: ListBuildings :many
SELECT id, name, description, address, latitude, longitude, open_hour, close_hour, timezone, created_at, updated_at FROM buildings
ORDER BY name, id
`

func (q *Queries) ListBuildings(ctx context.Context) ([]Building, error) {
	rows, err := q.db.QueryContext(ctx, listBuildings)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Building{}
	for rows.Next() {
		var i Building
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Description,
			&i.Address,
			&i.Latitude,
			&i.Longitude,
			&i.OpenHour,
			&i.CloseHour,
			&i.Timezone,
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

const updateBuilding = `-- name: UpdateBuilding :one
UPDATE buildings
SET name = ?,
    description = ?,
    address = ?,
    latitude = ?,
    longitude = ?,
    open_hour = ?,
    close_hour = ?,
    timezone = ?,
    updated_at = CURRENT_TIMESTAMP
WHERE id = ?
RETURNING id, name, description, address, latitude, longitude, open_hour, close_hour, timezone, created_at, updated_at
`

type UpdateBuildingParams struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Address     string        `json:"address"`
	Latitude    float64       `json:"latitude"`
	Longitude   float64       `json:"longitude"`
	OpenHour    sql.NullInt64 `json:"open_hour"`
	CloseHour   sql.NullInt64 `json:"close_hour"`
	Timezone    string        `json:"timezone"`
	ID          int64         `json:"id"`
}

func (q *Queries) UpdateBuilding(ctx context.Context, arg UpdateBuildingParams) (Building, error) {
	row := q.db.QueryRowContext(ctx, updateBuilding,
		arg.Name,
		arg.Description,
		arg.Address,
		arg.Latitude,
		arg.Longitude,
		arg.OpenHour,
		arg.CloseHour,
		arg.Timezone,
		arg.ID,
	)
	var i Building
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.Address,
		&i.Latitude,
		&i.Longitude,
		&i.OpenHour,
		&i.CloseHour,
		&i.Timezone,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
