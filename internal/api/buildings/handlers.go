// internal/api/buildings/handlers.go
package buildings

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/api/apiutil"
	appdb "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db"
	dbgen "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db/generated"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/models"
)

const buildingsQueryTimeout = 5 * time.Second

var (
	store    *appdb.DB
	initOnce sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(database *appdb.DB) {
	if database == nil {
		return
	}
	initOnce.Do(func() {
		store = database
	})
}

func loadQueries() *dbgen.Queries {
	if store == nil {
		return nil
	}
	return store.Queries
}

// GET /buildings
func HandleListBuildings(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Building handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), buildingsQueryTimeout)
	defer cancel()

	rows, err := q.ListBuildings(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list buildings")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to load coworkings")
		return
	}

	buildings := make([]models.Building, 0, len(rows))
	for _, row := range rows {
		photos, err := q.ListBuildingPhotos(ctx, row.ID)
		if err != nil {
			logger.Error().Err(err).Int64("building_id", row.ID).Msg("Failed to list building photos")
			apiutil.WriteError(w, http.StatusInternalServerError, "Failed to load coworkings")
			return
		}
		buildings = append(buildings, models.BuildingFromDB(row, photos, apiutil.FileURL))
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, buildings); err != nil {
		logger.Error().Err(err).Msg("Failed to write buildings response")
	}
}

// GET /buildings/{id}
func HandleGetBuilding(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Building handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	buildingID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), buildingsQueryTimeout)
	defer cancel()

	building, err := LoadBuilding(ctx, q, buildingID)
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to load coworking")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, building); err != nil {
		logger.Error().Err(err).Int64("building_id", buildingID).Msg("Failed to write building response")
	}
}

// POST /buildings
func HandleCreateBuilding(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if !apiutil.RequireStaff(w, r) {
		return
	}
	database := store
	if database == nil {
		logger.Error().Msg("Building handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	var in models.BuildingInput
	if err := apiutil.DecodeJSON(r, &in); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	in, err := in.Normalize()
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), buildingsQueryTimeout)
	defer cancel()

	var created dbgen.Building
	err = database.RunInTx(ctx, func(txdb *appdb.DB) error {
		var err error
		created, err = txdb.Queries.CreateBuilding(ctx, dbgen.CreateBuildingParams{
			Name:        in.Name,
			Description: in.Description,
			Address:     in.Address,
			Latitude:    in.Latitude,
			Longitude:   in.Longitude,
			OpenHour:    apiutil.ToNullIntFromInt(in.OpenHour),
			CloseHour:   apiutil.ToNullIntFromInt(in.CloseHour),
			Timezone:    in.Timezone,
		})
		if err != nil {
			return err
		}
		return replacePhotos(ctx, txdb.Queries, created.ID, in.Photos)
	})
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to create coworking")
		return
	}

	logger.Info().Int64("building_id", created.ID).Str("name", created.Name).Msg("Building created")
	building := models.BuildingFromDB(created, in.Photos, apiutil.FileURL)
	if err := apiutil.WriteJSON(w, http.StatusCreated, building); err != nil {
		logger.Error().Err(err).Int64("building_id", created.ID).Msg("Failed to write building response")
	}
}

// PATCH /buildings/{id}
func HandleUpdateBuilding(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if !apiutil.RequireStaff(w, r) {
		return
	}
	database := store
	if database == nil {
		logger.Error().Msg("Building handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	buildingID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var patch models.BuildingPatch
	if err := apiutil.DecodeJSON(r, &patch); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), buildingsQueryTimeout)
	defer cancel()

	var building models.Building
	err = database.RunInTx(ctx, func(txdb *appdb.DB) error {
		current, err := LoadBuilding(ctx, txdb.Queries, buildingID)
		if err != nil {
			return err
		}
		in, err := patch.Apply(current).Normalize()
		if err != nil {
			return apiutil.HandlerError{Status: http.StatusBadRequest, Message: err.Error(), Err: err}
		}

		updated, err := txdb.Queries.UpdateBuilding(ctx, dbgen.UpdateBuildingParams{
			Name:        in.Name,
			Description: in.Description,
			Address:     in.Address,
			Latitude:    in.Latitude,
			Longitude:   in.Longitude,
			OpenHour:    apiutil.ToNullIntFromInt(in.OpenHour),
			CloseHour:   apiutil.ToNullIntFromInt(in.CloseHour),
			Timezone:    in.Timezone,
			ID:          buildingID,
		})
		if err != nil {
			return err
		}
		if patch.Photos != nil {
			if err := replacePhotos(ctx, txdb.Queries, buildingID, in.Photos); err != nil {
				return err
			}
		}
		building = models.BuildingFromDB(updated, in.Photos, apiutil.FileURL)
		return nil
	})
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to update coworking")
		return
	}

	logger.Info().Int64("building_id", buildingID).Msg("Building updated")
	if err := apiutil.WriteJSON(w, http.StatusOK, building); err != nil {
		logger.Error().Err(err).Int64("building_id", buildingID).Msg("Failed to write building response")
	}
}

// DELETE /buildings/{id}
func HandleDeleteBuilding(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if !apiutil.RequireStaff(w, r) {
		return
	}
	q := loadQueries()
	if q == nil {
		logger.Error().Msg("Building handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	buildingID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), buildingsQueryTimeout)
	defer cancel()

	deleted, err := q.DeleteBuilding(ctx, buildingID)
	if err != nil {
		logger.Error().Err(err).Int64("building_id", buildingID).Msg("Failed to delete building")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to delete coworking")
		return
	}
	if deleted == 0 {
		apiutil.WriteError(w, http.StatusNotFound, "Coworking not found")
		return
	}

	logger.Info().Int64("building_id", buildingID).Msg("Building deleted")
	w.WriteHeader(http.StatusNoContent)
}

// LoadBuilding reads a building with its photos. A missing building is
// reported as a 404 HandlerError.
func LoadBuilding(ctx context.Context, q *dbgen.Queries, buildingID int64) (models.Building, error) {
	row, err := q.GetBuilding(ctx, buildingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Building{}, apiutil.HandlerError{Status: http.StatusNotFound, Message: "Coworking not found", Err: err}
		}
		return models.Building{}, err
	}
	photos, err := q.ListBuildingPhotos(ctx, buildingID)
	if err != nil {
		return models.Building{}, err
	}
	return models.BuildingFromDB(row, photos, apiutil.FileURL), nil
}

func replacePhotos(ctx context.Context, q *dbgen.Queries, buildingID int64, photos []string) error {
	if err := q.ClearBuildingPhotos(ctx, buildingID); err != nil {
		return err
	}
	for i, fileID := range photos {
		err := q.AddBuildingPhoto(ctx, dbgen.AddBuildingPhotoParams{
			BuildingID: buildingID,
			FileID:     fileID,
			Position:   int64(i),
		})
		if err != nil {
			if appdb.IsForeignKeyViolation(err) {
				return apiutil.HandlerError{Status: http.StatusBadRequest, Message: "photo file " + fileID + " not found", Err: err}
			}
			return err
		}
	}
	return nil
}
