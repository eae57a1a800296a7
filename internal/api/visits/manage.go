package visits

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"

	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/api/apiutil"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/api/authz"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/api/buildings"
	appdb "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db"
	dbgen "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db/generated"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/email"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/models"
)

const (
	defaultQRSize = 256
	minQRSize     = 64
	maxQRSize     = 1024
)

// visitChange is the state a mutation needs for its response and email.
type visitChange struct {
	building models.Building
	place    dbgen.Place
	visit    dbgen.Visit
}

// loadForChange resolves building, place and visit in one transaction and
// checks that the caller may act on the visit.
func loadForChange(ctx context.Context, q *dbgen.Queries, caller *authz.AuthUser, buildingID, placeID, visitID int64) (visitChange, error) {
	building, err := buildings.LoadBuilding(ctx, q, buildingID)
	if err != nil {
		return visitChange{}, err
	}
	place, err := loadPlace(ctx, q, buildingID, placeID)
	if err != nil {
		return visitChange{}, err
	}
	visit, err := loadVisit(ctx, q, placeID, visitID)
	if err != nil {
		return visitChange{}, err
	}
	if err := authz.CanActOnVisit(caller, visit.UserID); err != nil {
		return visitChange{}, err
	}
	return visitChange{building: building, place: place, visit: visit}, nil
}

// PATCH /buildings/{id}/places/{placeId}/visits/{visitId}
func HandleRescheduleVisit(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	current, ok := apiutil.RequireUser(w, r)
	if !ok {
		return
	}
	database := store
	if database == nil {
		logger.Error().Msg("Visit handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	buildingID, placeID, visitID, ok := visitPath(w, r)
	if !ok {
		return
	}
	req, ok := decodeVisitRequest(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), visitsQueryTimeout)
	defer cancel()

	var change visitChange
	err := database.RunInTx(ctx, func(txdb *appdb.DB) error {
		var err error
		change, err = loadForChange(ctx, txdb.Queries, current, buildingID, placeID, visitID)
		if err != nil {
			return err
		}
		if err := models.CanChange(change.visit, nowFunc()); err != nil {
			return bookingError(err)
		}
		if err := policy.Check(req.Start, req.End, nowFunc(), change.building.OpenHours, change.building.Location()); err != nil {
			return bookingError(err)
		}
		change.visit, err = models.ScheduleVisit(ctx, txdb.Queries, models.ScheduleVisitParams{
			VisitID: visitID,
			PlaceID: placeID,
			UserID:  change.visit.UserID,
			Start:   req.Start,
			End:     req.End,
			Status:  policy.InitialStatus(),
		})
		return bookingError(err)
	})
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to reschedule visit")
		return
	}

	logger.Info().Int64("visit_id", visitID).Int64("user_id", current.ID).Msg("Visit rescheduled")
	notify(ctx, database.Queries, change.visit, change.building, change.place.Name, email.BuildVisitConfirmation, logger)

	if err := apiutil.WriteJSON(w, http.StatusOK, models.VisitFromDB(change.visit, true)); err != nil {
		logger.Error().Err(err).Int64("visit_id", visitID).Msg("Failed to write visit response")
	}
}

// DELETE /buildings/{id}/places/{placeId}/visits/{visitId}
func HandleCancelVisit(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	current, ok := apiutil.RequireUser(w, r)
	if !ok {
		return
	}
	database := store
	if database == nil {
		logger.Error().Msg("Visit handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	buildingID, placeID, visitID, ok := visitPath(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), visitsQueryTimeout)
	defer cancel()

	var change visitChange
	err := database.RunInTx(ctx, func(txdb *appdb.DB) error {
		var err error
		change, err = loadForChange(ctx, txdb.Queries, current, buildingID, placeID, visitID)
		if err != nil {
			return err
		}
		if err := models.CanChange(change.visit, nowFunc()); err != nil {
			return bookingError(err)
		}
		change.visit, err = txdb.Queries.CancelVisit(ctx, dbgen.CancelVisitParams{
			CancelledAt: apiutil.ToNullTime(nowFunc()),
			ID:          visitID,
		})
		return err
	})
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to cancel visit")
		return
	}

	logger.Info().Int64("visit_id", visitID).Int64("user_id", current.ID).Msg("Visit cancelled")
	notify(ctx, database.Queries, change.visit, change.building, change.place.Name, email.BuildVisitCancellation, logger)
	w.WriteHeader(http.StatusNoContent)
}

// POST /buildings/{id}/places/{placeId}/visits/{visitId}/confirm
func HandleConfirmVisit(w http.ResponseWriter, r *http.Request) {
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
	buildingID, placeID, visitID, ok := visitPath(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), visitsQueryTimeout)
	defer cancel()

	caller := authz.UserFromContext(r.Context())
	var change visitChange
	err := database.RunInTx(ctx, func(txdb *appdb.DB) error {
		var err error
		change, err = loadForChange(ctx, txdb.Queries, caller, buildingID, placeID, visitID)
		if err != nil {
			return err
		}
		change.visit, err = txdb.Queries.ConfirmVisit(ctx, visitID)
		if errors.Is(err, sql.ErrNoRows) {
			return bookingError(models.ErrVisitNotPending)
		}
		return err
	})
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to confirm visit")
		return
	}

	logger.Info().Int64("visit_id", visitID).Msg("Visit confirmed")
	notify(ctx, database.Queries, change.visit, change.building, change.place.Name, email.BuildVisitConfirmation, logger)

	if err := apiutil.WriteJSON(w, http.StatusOK, models.VisitFromDB(change.visit, true)); err != nil {
		logger.Error().Err(err).Int64("visit_id", visitID).Msg("Failed to write visit response")
	}
}

// GET /buildings/{id}/places/{placeId}/visits/{visitId}/qr
func HandleVisitQR(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	current, ok := apiutil.RequireUser(w, r)
	if !ok {
		return
	}
	database := store
	if database == nil {
		logger.Error().Msg("Visit handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	buildingID, placeID, visitID, ok := visitPath(w, r)
	if !ok {
		return
	}
	size := defaultQRSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < minQRSize || parsed > maxQRSize {
			apiutil.WriteError(w, http.StatusBadRequest, "size must be between 64 and 1024")
			return
		}
		size = parsed
	}

	ctx, cancel := context.WithTimeout(r.Context(), visitsQueryTimeout)
	defer cancel()

	if _, err := loadPlace(ctx, database.Queries, buildingID, placeID); err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to load visit")
		return
	}
	visit, err := loadVisit(ctx, database.Queries, placeID, visitID)
	if err == nil {
		err = authz.CanActOnVisit(current, visit.UserID)
	}
	if err == nil && models.VisitStatus(visit.Status) == models.VisitCancelled {
		err = bookingError(models.ErrVisitCancelled)
	}
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to load visit")
		return
	}

	png, err := qrcode.Encode(models.CheckinPayload(visit.CheckinCode), qrcode.Medium, size)
	if err != nil {
		logger.Error().Err(err).Int64("visit_id", visitID).Msg("Failed to encode QR code")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to render QR code")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		logger.Error().Err(err).Int64("visit_id", visitID).Msg("Failed to write QR code")
	}
}
