// Package visits books, reschedules and cancels place visits, and checks
// visitors in by the code from their QR pass.
package visits

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/api/apiutil"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/api/authz"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/api/buildings"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/config"
	appdb "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db"
	dbgen "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db/generated"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/email"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/models"
)

const (
	visitsQueryTimeout = 5 * time.Second
	defaultListWindow  = 24 * time.Hour
)

// Options configures the visit handlers.
type Options struct {
	Policy models.BookingPolicy
	// Sender delivers booking emails; nil disables them.
	Sender email.EmailSender
}

var (
	store    *appdb.DB
	policy   models.BookingPolicy
	mailer   email.EmailSender
	initOnce sync.Once
	nowFunc  = time.Now
	// sendEmail is replaced in tests to observe notifications synchronously.
	sendEmail = email.SendAsync
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(database *appdb.DB, opts Options) {
	if database == nil {
		return
	}
	initOnce.Do(func() {
		store = database
		policy = opts.Policy
		mailer = opts.Sender
	})
}

// PolicyFromConfig builds the booking rules from the booking config section.
func PolicyFromConfig(cfg config.BookingConfig) models.BookingPolicy {
	return models.BookingPolicy{
		MinDuration:         cfg.MinVisitDuration(),
		Horizon:             cfg.Horizon(),
		RequireConfirmation: cfg.RequireConfirmation,
	}
}

// GET /buildings/{id}/places/{placeId}/visits
func HandleListPlaceVisits(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	database := store
	if database == nil {
		logger.Error().Msg("Visit handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	buildingID, placeID, ok := placePath(w, r)
	if !ok {
		return
	}
	from, to, err := apiutil.TimeWindow(r, nowFunc(), defaultListWindow)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), visitsQueryTimeout)
	defer cancel()

	if _, err := loadPlace(ctx, database.Queries, buildingID, placeID); err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to load visits")
		return
	}
	rows, err := database.Queries.ListVisitsForPlace(ctx, dbgen.ListVisitsForPlaceParams{
		PlaceID:     placeID,
		WindowEnd:   to,
		WindowStart: from,
	})
	if err != nil {
		logger.Error().Err(err).Int64("place_id", placeID).Msg("Failed to list visits")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to load visits")
		return
	}

	caller := authz.UserFromContext(r.Context())
	result := make([]models.Visit, 0, len(rows))
	for _, row := range rows {
		result = append(result, models.VisitFromDB(row, canSeeOwner(caller, row)))
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, result); err != nil {
		logger.Error().Err(err).Int64("place_id", placeID).Msg("Failed to write visits response")
	}
}

// POST /buildings/{id}/places/{placeId}/visits
func HandleCreateVisit(w http.ResponseWriter, r *http.Request) {
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
	buildingID, placeID, ok := placePath(w, r)
	if !ok {
		return
	}
	req, ok := decodeVisitRequest(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), visitsQueryTimeout)
	defer cancel()

	var (
		building models.Building
		place    dbgen.Place
		created  dbgen.Visit
	)
	err := database.RunInTx(ctx, func(txdb *appdb.DB) error {
		var err error
		building, err = buildings.LoadBuilding(ctx, txdb.Queries, buildingID)
		if err != nil {
			return err
		}
		place, err = loadPlace(ctx, txdb.Queries, buildingID, placeID)
		if err != nil {
			return err
		}
		if err := policy.Check(req.Start, req.End, nowFunc(), building.OpenHours, building.Location()); err != nil {
			return bookingError(err)
		}
		created, err = models.ScheduleVisit(ctx, txdb.Queries, models.ScheduleVisitParams{
			PlaceID:     placeID,
			UserID:      current.ID,
			Start:       req.Start,
			End:         req.End,
			Status:      policy.InitialStatus(),
			CheckinCode: newCheckinCode(),
		})
		return bookingError(err)
	})
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to book place")
		return
	}

	logger.Info().
		Int64("visit_id", created.ID).
		Int64("place_id", placeID).
		Int64("user_id", current.ID).
		Str("status", created.Status).
		Msg("Visit booked")
	notify(ctx, database.Queries, created, building, place.Name, email.BuildVisitConfirmation, logger)

	if err := apiutil.WriteJSON(w, http.StatusCreated, models.VisitFromDB(created, true)); err != nil {
		logger.Error().Err(err).Int64("visit_id", created.ID).Msg("Failed to write visit response")
	}
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

func visitPath(w http.ResponseWriter, r *http.Request) (int64, int64, int64, bool) {
	buildingID, placeID, ok := placePath(w, r)
	if !ok {
		return 0, 0, 0, false
	}
	visitID, err := apiutil.PathID(r, "visitId")
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return 0, 0, 0, false
	}
	return buildingID, placeID, visitID, true
}

func decodeVisitRequest(w http.ResponseWriter, r *http.Request) (models.VisitRequest, bool) {
	var req models.VisitRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return req, false
	}
	if req.Start.IsZero() || req.End.IsZero() {
		apiutil.WriteError(w, http.StatusBadRequest, "start and end are required")
		return req, false
	}
	req.Start, req.End = req.Start.UTC(), req.End.UTC()
	return req, true
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

// loadVisit returns the visit only when it belongs to the place.
func loadVisit(ctx context.Context, q *dbgen.Queries, placeID, visitID int64) (dbgen.Visit, error) {
	row, err := q.GetVisit(ctx, visitID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.Visit{}, apiutil.HandlerError{Status: http.StatusNotFound, Message: "Visit not found", Err: err}
		}
		return dbgen.Visit{}, err
	}
	if row.PlaceID != placeID {
		return dbgen.Visit{}, apiutil.HandlerError{Status: http.StatusNotFound, Message: "Visit not found"}
	}
	return row, nil
}

func canSeeOwner(caller *authz.AuthUser, row dbgen.Visit) bool {
	return authz.CanActOnVisit(caller, row.UserID) == nil
}

func bookingError(err error) error {
	if err == nil {
		return nil
	}
	if herr, ok := apiutil.BookingError(err); ok {
		return herr
	}
	return err
}

// notify emails the visit owner after a committed change. Failures are logged only.
func notify(ctx context.Context, q *dbgen.Queries, visit dbgen.Visit, building models.Building, placeName string, build func(email.VisitDetails) (email.Message, error), logger *zerolog.Logger) {
	if mailer == nil {
		return
	}
	user, err := q.GetUserByID(ctx, visit.UserID)
	if err != nil {
		logger.Warn().Err(err).Int64("visit_id", visit.ID).Msg("Failed to load visit owner for email")
		return
	}
	org, err := models.LoadOrganization(ctx, q, nil)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to load branding for email; using defaults")
	}
	msg, err := build(email.VisitDetails{
		OrganizationName: org.Name,
		AccentColor:      org.AccentColor,
		UserName:         user.Name,
		BuildingName:     building.Name,
		PlaceName:        placeName,
		Start:            visit.StartTime,
		End:              visit.EndTime,
		Location:         building.Location(),
		Pending:          models.VisitStatus(visit.Status) == models.VisitPending,
	})
	if err != nil {
		logger.Error().Err(err).Int64("visit_id", visit.ID).Msg("Failed to build visit email")
		return
	}
	sendEmail(ctx, mailer, user.Email, msg, logger)
}
