package schemes

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/api/apiutil"
	appdb "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db"
	dbgen "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db/generated"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/models"
)

// POST /buildings/{id}/schemes/{floorId}/places
func HandleCreatePlace(w http.ResponseWriter, r *http.Request) {
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

	var in models.PlaceInput
	if err := apiutil.DecodeJSON(r, &in); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), schemesQueryTimeout)
	defer cancel()

	var created dbgen.Place
	err := database.RunInTx(ctx, func(txdb *appdb.DB) error {
		floor, err := loadFloor(ctx, txdb.Queries, buildingID, floorID)
		if err != nil {
			return err
		}
		edit, err := resolvePointer(in, models.PlaceFields{Size: models.DefaultPlaceSize}, floor)
		if err != nil {
			return err
		}
		fields, err := models.NewPlaceFields(edit)
		if err != nil {
			return apiutil.HandlerError{Status: http.StatusBadRequest, Message: err.Error(), Err: err}
		}
		created, err = txdb.Queries.CreatePlace(ctx, dbgen.CreatePlaceParams{
			FloorID:     floorID,
			Name:        fields.Name,
			Features:    models.EncodeFeatures(fields.Features),
			X:           fields.X,
			Y:           fields.Y,
			Size:        fields.Size,
			Rotation:    fields.Rotation,
			PhotoFileID: apiutil.ToNullString(fields.PhotoFileID),
		})
		return placeWriteError(err)
	})
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to create place")
		return
	}

	logger.Info().Int64("floor_id", floorID).Int64("place_id", created.ID).Msg("Place created")
	if err := apiutil.WriteJSON(w, http.StatusCreated, models.PlaceFromDB(created, false, apiutil.FileURL)); err != nil {
		logger.Error().Err(err).Int64("place_id", created.ID).Msg("Failed to write place response")
	}
}

// GET /buildings/{id}/schemes/places/{placeId}
func HandleGetPlace(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	database := store
	if database == nil {
		logger.Error().Msg("Scheme handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	buildingID, placeID, ok := placePath(w, r)
	if !ok {
		return
	}
	from, to, err := apiutil.TimeWindow(r, nowFunc(), statusWindow)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), schemesQueryTimeout)
	defer cancel()

	row, err := loadPlace(ctx, database.Queries, buildingID, placeID)
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to load place")
		return
	}
	visits, err := database.Queries.ListVisitsForPlace(ctx, dbgen.ListVisitsForPlaceParams{
		PlaceID:     placeID,
		WindowEnd:   to,
		WindowStart: from,
	})
	if err != nil {
		logger.Error().Err(err).Int64("place_id", placeID).Msg("Failed to load place occupancy")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to load place")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, models.PlaceFromDB(row, len(visits) > 0, apiutil.FileURL)); err != nil {
		logger.Error().Err(err).Int64("place_id", placeID).Msg("Failed to write place response")
	}
}

// PATCH /buildings/{id}/schemes/places/{placeId}
func HandleUpdatePlace(w http.ResponseWriter, r *http.Request) {
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
	buildingID, placeID, ok := placePath(w, r)
	if !ok {
		return
	}

	var in models.PlaceInput
	if err := apiutil.DecodeJSON(r, &in); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), schemesQueryTimeout)
	defer cancel()

	var updated dbgen.Place
	err := database.RunInTx(ctx, func(txdb *appdb.DB) error {
		current, err := loadPlace(ctx, txdb.Queries, buildingID, placeID)
		if err != nil {
			return err
		}
		edit := in
		if in.Pointer != nil {
			floor, err := loadFloor(ctx, txdb.Queries, buildingID, current.FloorID)
			if err != nil {
				return err
			}
			if edit, err = resolvePointer(in, models.PlaceFieldsFromDB(current), floor); err != nil {
				return err
			}
		}
		fields, err := edit.Apply(models.PlaceFieldsFromDB(current))
		if err != nil {
			return apiutil.HandlerError{Status: http.StatusBadRequest, Message: err.Error(), Err: err}
		}
		updated, err = txdb.Queries.UpdatePlace(ctx, dbgen.UpdatePlaceParams{
			Name:        fields.Name,
			Features:    models.EncodeFeatures(fields.Features),
			X:           fields.X,
			Y:           fields.Y,
			Size:        fields.Size,
			Rotation:    fields.Rotation,
			PhotoFileID: apiutil.ToNullString(fields.PhotoFileID),
			ID:          placeID,
		})
		return placeWriteError(err)
	})
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to update place")
		return
	}

	logger.Info().Int64("place_id", placeID).Msg("Place updated")
	if err := apiutil.WriteJSON(w, http.StatusOK, models.PlaceFromDB(updated, false, apiutil.FileURL)); err != nil {
		logger.Error().Err(err).Int64("place_id", placeID).Msg("Failed to write place response")
	}
}

// DELETE /buildings/{id}/schemes/places/{placeId}
func HandleDeletePlace(w http.ResponseWriter, r *http.Request) {
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
	buildingID, placeID, ok := placePath(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), schemesQueryTimeout)
	defer cancel()

	deleted, err := database.Queries.DeletePlace(ctx, dbgen.DeletePlaceParams{ID: placeID, BuildingID: buildingID})
	if err != nil {
		logger.Error().Err(err).Int64("place_id", placeID).Msg("Failed to delete place")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to delete place")
		return
	}
	if deleted == 0 {
		apiutil.WriteError(w, http.StatusNotFound, "Place not found")
		return
	}

	logger.Info().Int64("building_id", buildingID).Int64("place_id", placeID).Msg("Place deleted")
	w.WriteHeader(http.StatusNoContent)
}

func placePath(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	buildingID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return 0, 0, false
	}
	placeID, err := apiutil.PathID(r, "placeId")
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return 0, 0, false
	}
	return buildingID, placeID, true
}

// resolvePointer converts a pointer edit against the floor's plan image.
func resolvePointer(in models.PlaceInput, current models.PlaceFields, floorRow dbgen.Floor) (models.PlaceInput, error) {
	if in.Pointer == nil {
		return in, nil
	}
	floor := models.FloorFromDB(floorRow, nil, nil)
	edit, err := in.ResolvePointer(current, floor.ImageSize(), floor.HasImage())
	if err != nil {
		return in, apiutil.HandlerError{Status: http.StatusBadRequest, Message: err.Error(), Err: err}
	}
	return edit, nil
}

func placeWriteError(err error) error {
	if err != nil && appdb.IsForeignKeyViolation(err) {
		return apiutil.HandlerError{Status: http.StatusBadRequest, Message: "photo file not found", Err: err}
	}
	return err
}
