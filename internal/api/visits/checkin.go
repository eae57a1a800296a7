package visits

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/api/apiutil"
	appdb "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db"
	dbgen "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db/generated"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/models"
)

func newCheckinCode() string {
	return uuid.NewString()
}

// POST /buildings/{id}/visits/checkin
func HandleCheckin(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if !apiutil.RequireStaff(w, r) {
		return
	}
	database := store
	if database == nil {
		logger.Error().Msg("Visit handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	buildingID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req models.CheckinRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	code, err := models.ParseCheckinPayload(req.Code)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), visitsQueryTimeout)
	defer cancel()

	var visited dbgen.Visit
	err = database.RunInTx(ctx, func(txdb *appdb.DB) error {
		row, err := txdb.Queries.GetVisitByCheckinCode(ctx, dbgen.GetVisitByCheckinCodeParams{
			CheckinCode: code,
			BuildingID:  buildingID,
		})
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apiutil.HandlerError{Status: http.StatusNotFound, Message: "Visit not found", Err: err}
			}
			return err
		}
		now := nowFunc()
		if err := models.CanCheckIn(row, now); err != nil {
			return bookingError(err)
		}
		visited, err = txdb.Queries.MarkVisitVisited(ctx, dbgen.MarkVisitVisitedParams{
			VisitedAt: apiutil.ToNullTime(now),
			ID:        row.ID,
		})
		return err
	})
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to check in visit")
		return
	}

	logger.Info().Int64("building_id", buildingID).Int64("visit_id", visited.ID).Msg("Visitor checked in")
	if err := apiutil.WriteJSON(w, http.StatusOK, models.VisitFromDB(visited, true)); err != nil {
		logger.Error().Err(err).Int64("visit_id", visited.ID).Msg("Failed to write visit response")
	}
}
