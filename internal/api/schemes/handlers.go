// Package schemes serves floor plans ("schemes") of a coworking and the
// places positioned on them.
package schemes

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/api/apiutil"
	appdb "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db"
	dbgen "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db/generated"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/models"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/storage"
)

const (
	schemesQueryTimeout = 5 * time.Second
	// statusWindow is the default window place status is computed for: "now".
	statusWindow = time.Second
)

var (
	store    *appdb.DB
	objects  storage.Store
	initOnce sync.Once
	nowFunc  = time.Now
)

// InitHandlers must be called during server startup before handling requests.
// objects serves floor images for previews and may be nil.
func InitHandlers(database *appdb.DB, objectStore storage.Store) {
	if database == nil {
		return
	}
	initOnce.Do(func() {
		store = database
		objects = objectStore
	})
}

func ensureBuilding(ctx context.Context, q *dbgen.Queries, buildingID int64) (dbgen.Building, error) {
	row, err := q.GetBuilding(ctx, buildingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.Building{}, apiutil.HandlerError{Status: http.StatusNotFound, Message: "Coworking not found", Err: err}
		}
		return dbgen.Building{}, err
	}
	return row, nil
}

func loadFloor(ctx context.Context, q *dbgen.Queries, buildingID, floorID int64) (dbgen.Floor, error) {
	row, err := q.GetFloor(ctx, dbgen.GetFloorParams{ID: floorID, BuildingID: buildingID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.Floor{}, apiutil.HandlerError{Status: http.StatusNotFound, Message: "Floor not found", Err: err}
		}
		return dbgen.Floor{}, err
	}
	return row, nil
}

func loadPlace(ctx context.Context, q *dbgen.Queries, buildingID, placeID int64) (dbgen.Place, error) {
	row, err := q.GetPlaceInBuilding(ctx, dbgen.GetPlaceInBuildingParams{ID: placeID, BuildingID: buildingID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.Place{}, apiutil.HandlerError{Status: http.StatusNotFound, Message: "Place not found", Err: err}
		}
		return dbgen.Place{}, err
	}
	return row, nil
}

// busyPlaces returns the set of places in the building with a non-cancelled
// visit overlapping [from, to).
func busyPlaces(ctx context.Context, q *dbgen.Queries, buildingID int64, from, to time.Time) (map[int64]bool, error) {
	ids, err := q.ListBusyPlaceIDs(ctx, dbgen.ListBusyPlaceIDsParams{
		BuildingID:  buildingID,
		WindowEnd:   to.UTC(),
		WindowStart: from.UTC(),
	})
	if err != nil {
		return nil, err
	}
	busy := make(map[int64]bool, len(ids))
	for _, id := range ids {
		busy[id] = true
	}
	return busy, nil
}

// buildFloors groups places under their floors and marks occupied places.
func buildFloors(floors []dbgen.Floor, places []dbgen.Place, busy map[int64]bool) []models.Floor {
	byFloor := make(map[int64][]models.Place, len(floors))
	for _, p := range places {
		byFloor[p.FloorID] = append(byFloor[p.FloorID], models.PlaceFromDB(p, busy[p.ID], apiutil.FileURL))
	}
	result := make([]models.Floor, 0, len(floors))
	for _, f := range floors {
		result = append(result, models.FloorFromDB(f, byFloor[f.ID], apiutil.FileURL))
	}
	return result
}

// mapImageSize resolves the intrinsic size of an uploaded floor image.
func mapImageSize(ctx context.Context, q *dbgen.Queries, fileID string) (int64, int64, error) {
	file, err := q.GetFile(ctx, fileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "map file not found", Err: err}
		}
		return 0, 0, err
	}
	if !file.Width.Valid || !file.Height.Valid {
		return 0, 0, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "map file must be an image"}
	}
	return file.Width.Int64, file.Height.Int64, nil
}
