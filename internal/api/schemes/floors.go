package schemes

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/api/apiutil"
	appdb "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db"
	dbgen "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db/generated"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/floorplan"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/models"
)

// GET /buildings/{id}/schemes
func HandleListFloors(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	database := store
	if database == nil {
		logger.Error().Msg("Scheme handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	buildingID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	from, to, err := apiutil.TimeWindow(r, nowFunc(), statusWindow)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), schemesQueryTimeout)
	defer cancel()

	if _, err := ensureBuilding(ctx, database.Queries, buildingID); err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to load floors")
		return
	}
	floors, err := database.Queries.ListFloorsByBuilding(ctx, buildingID)
	if err != nil {
		logger.Error().Err(err).Int64("building_id", buildingID).Msg("Failed to list floors")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to load floors")
		return
	}
	places, err := database.Queries.ListPlacesByBuilding(ctx, buildingID)
	if err != nil {
		logger.Error().Err(err).Int64("building_id", buildingID).Msg("Failed to list places")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to load floors")
		return
	}
	busy, err := busyPlaces(ctx, database.Queries, buildingID, from, to)
	if err != nil {
		logger.Error().Err(err).Int64("building_id", buildingID).Msg("Failed to load place occupancy")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to load floors")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, buildFloors(floors, places, busy)); err != nil {
		logger.Error().Err(err).Int64("building_id", buildingID).Msg("Failed to write floors response")
	}
}

// GET /buildings/{id}/schemes/{floorId}?layout=dom|canvas|geo
func HandleGetFloor(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	database := store
	if database == nil {
		logger.Error().Msg("Scheme handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	buildingID, floorID, ok := floorPath(w, r)
	if !ok {
		return
	}
	from, to, err := apiutil.TimeWindow(r, nowFunc(), statusWindow)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	var space floorplan.Space
	if raw := r.URL.Query().Get("layout"); raw != "" {
		if space, err = floorplan.ParseSpace(raw); err != nil {
			apiutil.WriteError(w, http.StatusBadRequest, "layout must be one of dom, canvas, geo")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), schemesQueryTimeout)
	defer cancel()

	floor, err := loadFloorWithPlaces(ctx, database.Queries, buildingID, floorID, func() (map[int64]bool, error) {
		return busyPlaces(ctx, database.Queries, buildingID, from, to)
	})
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to load floor")
		return
	}
	if space != "" {
		layout, err := floor.ProjectLayout(space)
		if err != nil {
			logger.Error().Err(err).Int64("floor_id", floorID).Msg("Failed to project floor layout")
			apiutil.WriteError(w, http.StatusInternalServerError, "Failed to load floor")
			return
		}
		floor.Layout = &layout
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, floor); err != nil {
		logger.Error().Err(err).Int64("floor_id", floorID).Msg("Failed to write floor response")
	}
}

// POST /buildings/{id}/schemes
func HandleCreateFloor(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if !apiutil.RequireStaff(w, r) {
		return
	}
	database := store
	if database == nil {
		logger.Error().Msg("Scheme handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	buildingID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var in models.FloorInput
	if err := apiutil.DecodeJSON(r, &in); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if in.Level == nil {
		apiutil.WriteError(w, http.StatusBadRequest, "level is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), schemesQueryTimeout)
	defer cancel()

	var created dbgen.Floor
	err = database.RunInTx(ctx, func(txdb *appdb.DB) error {
		if _, err := ensureBuilding(ctx, txdb.Queries, buildingID); err != nil {
			return err
		}
		params := dbgen.CreateFloorParams{BuildingID: buildingID, Level: *in.Level}
		if in.MapFileID.Set && in.MapFileID.Value != nil {
			width, height, err := mapImageSize(ctx, txdb.Queries, *in.MapFileID.Value)
			if err != nil {
				return err
			}
			params.MapFileID = apiutil.ToNullString(in.MapFileID.Value)
			params.ImageWidth, params.ImageHeight = width, height
		}
		var err error
		created, err = txdb.Queries.CreateFloor(ctx, params)
		if err != nil {
			if appdb.IsUniqueViolation(err) {
				return apiutil.HandlerError{Status: http.StatusConflict, Message: "floor level already exists", Err: err}
			}
			return err
		}
		return nil
	})
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to create floor")
		return
	}

	logger.Info().Int64("building_id", buildingID).Int64("floor_id", created.ID).Int64("level", created.Level).Msg("Floor created")
	if err := apiutil.WriteJSON(w, http.StatusCreated, models.FloorFromDB(created, nil, apiutil.FileURL)); err != nil {
		logger.Error().Err(err).Int64("floor_id", created.ID).Msg("Failed to write floor response")
	}
}

// PATCH /buildings/{id}/schemes/{floorId}
func HandleUpdateFloor(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if !apiutil.RequireStaff(w, r) {
		return
	}
	database := store
	if database == nil {
		logger.Error().Msg("Scheme handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	buildingID, floorID, ok := floorPath(w, r)
	if !ok {
		return
	}

	var in models.FloorInput
	if err := apiutil.DecodeJSON(r, &in); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), schemesQueryTimeout)
	defer cancel()

	var floor models.Floor
	err := database.RunInTx(ctx, func(txdb *appdb.DB) error {
		current, err := loadFloor(ctx, txdb.Queries, buildingID, floorID)
		if err != nil {
			return err
		}
		params := dbgen.UpdateFloorParams{
			Level:       current.Level,
			MapFileID:   current.MapFileID,
			ImageWidth:  current.ImageWidth,
			ImageHeight: current.ImageHeight,
			ID:          floorID,
			BuildingID:  buildingID,
		}
		if in.Level != nil {
			params.Level = *in.Level
		}
		if in.MapFileID.Set {
			if in.MapFileID.Value == nil || *in.MapFileID.Value == "" {
				params.MapFileID = sql.NullString{}
				params.ImageWidth, params.ImageHeight = 0, 0
			} else {
				width, height, err := mapImageSize(ctx, txdb.Queries, *in.MapFileID.Value)
				if err != nil {
					return err
				}
				params.MapFileID = apiutil.ToNullString(in.MapFileID.Value)
				params.ImageWidth, params.ImageHeight = width, height
			}
		}

		updated, err := txdb.Queries.UpdateFloor(ctx, params)
		if err != nil {
			if appdb.IsUniqueViolation(err) {
				return apiutil.HandlerError{Status: http.StatusConflict, Message: "floor level already exists", Err: err}
			}
			return err
		}
		places, err := txdb.Queries.ListPlacesByFloor(ctx, floorID)
		if err != nil {
			return err
		}
		floor = buildFloors([]dbgen.Floor{updated}, places, nil)[0]
		return nil
	})
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to update floor")
		return
	}

	logger.Info().Int64("building_id", buildingID).Int64("floor_id", floorID).Msg("Floor updated")
	if err := apiutil.WriteJSON(w, http.StatusOK, floor); err != nil {
		logger.Error().Err(err).Int64("floor_id", floorID).Msg("Failed to write floor response")
	}
}

// DELETE /buildings/{id}/schemes/{floorId}
func HandleDeleteFloor(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if !apiutil.RequireStaff(w, r) {
		return
	}
	database := store
	if database == nil {
		logger.Error().Msg("Scheme handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	buildingID, floorID, ok := floorPath(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), schemesQueryTimeout)
	defer cancel()

	deleted, err := database.Queries.DeleteFloor(ctx, dbgen.DeleteFloorParams{ID: floorID, BuildingID: buildingID})
	if err != nil {
		logger.Error().Err(err).Int64("floor_id", floorID).Msg("Failed to delete floor")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to delete floor")
		return
	}
	if deleted == 0 {
		apiutil.WriteError(w, http.StatusNotFound, "Floor not found")
		return
	}

	logger.Info().Int64("building_id", buildingID).Int64("floor_id", floorID).Msg("Floor deleted")
	w.WriteHeader(http.StatusNoContent)
}

func floorPath(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	buildingID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return 0, 0, false
	}
	floorID, err := apiutil.PathID(r, "floorId")
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return 0, 0, false
	}
	return buildingID, floorID, true
}

func loadFloorWithPlaces(ctx context.Context, q *dbgen.Queries, buildingID, floorID int64, occupancy func() (map[int64]bool, error)) (models.Floor, error) {
	row, err := loadFloor(ctx, q, buildingID, floorID)
	if err != nil {
		return models.Floor{}, err
	}
	places, err := q.ListPlacesByFloor(ctx, floorID)
	if err != nil {
		return models.Floor{}, err
	}
	var busy map[int64]bool
	if occupancy != nil {
		busy, err = occupancy()
		if err != nil {
			return models.Floor{}, err
		}
	}
	return buildFloors([]dbgen.Floor{row}, places, busy)[0], nil
}
