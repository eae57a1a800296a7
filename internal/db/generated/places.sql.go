// Bindings for queries/places.sql.

package dbgen

import (
	"context"
	"database/sql"
	"time"
)

const createPlace = `-- name: CreatePlace :one
INSERT INTO places (floor_id, name, features, x, y, size, rotation, photo_file_id)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id, floor_id, name, features, x, y, size, rotation, photo_file_id, created_at, updated_at
`

type CreatePlaceParams struct {
	FloorID     int64          `json:"floor_id"`
	Name        string         `json:"name"`
	Features    string         `json:"features"`
	X           float64        `json:"x"`
	Y           float64        `json:"y"`
	Size        float64        `json:"size"`
	Rotation    float64        `json:"rotation"`
	PhotoFileID sql.NullString `json:"photo_file_id"`
}

func (q *Queries) CreatePlace(ctx context.Context, arg CreatePlaceParams) (Place, error) {
	row := q.db.QueryRowContext(ctx, createPlace,
		arg.FloorID,
		arg.Name,
		arg.Features,
		arg.X,
		arg.Y,
		arg.Size,
		arg.Rotation,
		arg.PhotoFileID,
	)
	var i Place
	err := row.Scan(
		&i.ID,
		&i.FloorID,
		&i.Name,
		&i.Features,
		&i.X,
		&i.Y,
		&i.Size,
		&i.Rotation,
		&i.PhotoFileID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const countPlaces = `-- name: CountPlaces :one
SELECT COUNT(*) FROM places p
JOIN floors f ON f.id = p.floor_id
WHERE (? = 0 OR f.building_id = ?)
`

type CountPlacesParams struct {
	BuildingID int64 `json:"building_id"`
}

func (q *Queries) CountPlaces(ctx context.Context, arg CountPlacesParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countPlaces, arg.BuildingID, arg.BuildingID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const deletePlace = `-- name: DeletePlace :execrows
DELETE FROM places
WHERE id = ?
  AND floor_id IN (SELECT id FROM floors WHERE building_id = ?)
`

type DeletePlaceParams struct {
	ID         int64 `json:"id"`
	BuildingID int64 `json:"building_id"`
}

func (q *Queries) DeletePlace(ctx context.Context, arg DeletePlaceParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deletePlace, arg.ID, arg.BuildingID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getPlaceInBuilding = `-- name: GetPlaceInBuilding :one
SELECT p.id, p.floor_id, p.name, p.features, p.x, p.y, p.size, p.rotation, p.photo_file_id, p.created_at, p.updated_at FROM places p
JOIN floors f ON f.id = p.floor_id
WHERE p.id = ? AND f.building_id = ?
`

type GetPlaceInBuildingParams struct {
	ID         int64 `json:"id"`
	BuildingID int64 `json:"building_id"`
}

func (q *Queries) GetPlaceInBuilding(ctx context.Context, arg GetPlaceInBuildingParams) (Place, error) {
	row := q.db.QueryRowContext(ctx, getPlaceInBuilding, arg.ID, arg.BuildingID)
	var i Place
	err := row.Scan(
		&i.ID,
		&i.FloorID,
		&i.Name,
		&i.Features,
		&i.X,
		&i.Y,
		&i.Size,
		&i.Rotation,
		&i.PhotoFileID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listBusyPlaceIDs = `-- name: ListBusyPlaceIDs :many
SELECT DISTINCT v.place_id FROM visits v
JOIN places p ON p.id = v.place_id
JOIN floors f ON f.id = p.floor_id
WHERE f.building_id = ?
  AND v.status != 'cancelled'
  AND v.start_time < ?
  AND v.end_time > ?
`

type ListBusyPlaceIDsParams struct {
	BuildingID  int64     `json:"building_id"`
	WindowEnd   time.Time `json:"window_end"`
	WindowStart time.Time `json:"window_start"`
}

func (q *Queries) ListBusyPlaceIDs(ctx context.Context, arg ListBusyPlaceIDsParams) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, listBusyPlaceIDs, arg.BuildingID, arg.WindowEnd, arg.WindowStart)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []int64{}
	for rows.Next() {
		var place_id int64
		if err := rows.Scan(&place_id); err != nil {
			return nil, err
		}
		items = append(items, place_id)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listPlacesByBuilding = `-- name: ListPlacesByBuilding :many
SELECT p.id, p.floor_id, p.name, p.features, p.x, p.y, p.size, p.rotation, p.photo_file_id, p.created_at, p.updated_at FROM places p
JOIN floors f ON f.id = p.floor_id
WHERE f.building_id = ?
ORDER BY p.floor_id, p.name, p.id
`

func (q *Queries) ListPlacesByBuilding(ctx context.Context, buildingID int64) ([]Place, error) {
	rows, err := q.db.QueryContext(ctx, listPlacesByBuilding, buildingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Place{}
	for rows.Next() {
		var i Place
		if err := rows.Scan(
			&i.ID,
			&i.FloorID,
			&i.Name,
			&i.Features,
			&i.X,
			&i.Y,
			&i.Size,
			&i.Rotation,
			&i.PhotoFileID,
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

const listPlacesByFloor = `-- name: ListPlacesByFloor :many
SELECT id, floor_id, name, features, x, y, size, rotation, photo_file_id, created_at, updated_at FROM places
WHERE floor_id = ?
ORDER BY name, id
`

func (q *Queries) ListPlacesByFloor(ctx context.Context, floorID int64) ([]Place, error) {
	rows, err := q.db.QueryContext(ctx, listPlacesByFloor, floorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Place{}
	for rows.Next() {
		var i Place
		if err := rows.Scan(
			&i.ID,
			&i.FloorID,
			&i.Name,
			&i.Features,
			&i.X,
			&i.Y,
			&i.Size,
			&i.Rotation,
			&i.PhotoFileID,
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

const updatePlace = `-- name: UpdatePlace :one
UPDATE places
SET name = ?,
    features = ?,
    x = ?,
    y = ?,
    size = ?,
    rotation = ?,
    photo_file_id = ?,
    updated_at = CURRENT_TIMESTAMP
WHERE id = ?
RETURNING id, floor_id, name, features, x, y, size, rotation, photo_file_id, created_at, updated_at
`

type UpdatePlaceParams struct {
	Name        string         `json:"name"`
	Features    string         `json:"features"`
	X           float64        `json:"x"`
	Y           float64        `json:"y"`
	Size        float64        `json:"size"`
	Rotation    float64        `json:"rotation"`
	PhotoFileID sql.NullString `json:"photo_file_id"`
	ID          int64          `json:"id"`
}

func (q *Queries) UpdatePlace(ctx context.Context, arg UpdatePlaceParams) (Place, error) {
	row := q.db.QueryRowContext(ctx, updatePlace,
		arg.Name,
		arg.Features,
		arg.X,
		arg.Y,
		arg.Size,
		arg.Rotation,
		arg.PhotoFileID,
		arg.ID,
	)
	var i Place
	err := row.Scan(
		&i.ID,
		&i.FloorID,
		&i.Name,
		&i.Features,
		&i.X,
		&i.Y,
		&i.Size,
		&i.Rotation,
		&i.PhotoFileID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
