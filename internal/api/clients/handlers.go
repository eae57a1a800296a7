// internal/api/clients/handlers.go
package clients

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/api/apiutil"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/api/auth"
	appdb "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db"
	dbgen "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db/generated"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/models"
)

const clientsQueryTimeout = 5 * time.Second

var (
	store    *appdb.DB
	initOnce sync.Once
	nowFunc  = time.Now
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

// GET /clients/@me
func HandleGetMe(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	current, ok := apiutil.RequireUser(w, r)
	if !ok {
		return
	}
	database := store
	if database == nil {
		logger.Error().Msg("Client handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), clientsQueryTimeout)
	defer cancel()

	row, err := database.Queries.GetUserByID(ctx, current.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			apiutil.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		logger.Error().Err(err).Int64("user_id", current.ID).Msg("Failed to load current user")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, models.UserFromDB(row)); err != nil {
		logger.Error().Err(err).Int64("user_id", current.ID).Msg("Failed to write profile response")
	}
}

// PATCH /clients/@me
func HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	current, ok := apiutil.RequireUser(w, r)
	if !ok {
		return
	}
	database := store
	if database == nil {
		logger.Error().Msg("Client handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	var req models.UpdateProfileRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var passwordHash string
	if req.Password != nil {
		if err := models.ValidatePassword(*req.Password); err != nil {
			apiutil.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to hash password")
			apiutil.WriteError(w, http.StatusInternalServerError, "Failed to update profile")
			return
		}
		passwordHash = hash
	}

	ctx, cancel := context.WithTimeout(r.Context(), clientsQueryTimeout)
	defer cancel()

	var updated dbgen.User
	err := database.RunInTx(ctx, func(txdb *appdb.DB) error {
		row, err := txdb.Queries.GetUserByID(ctx, current.ID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apiutil.HandlerError{Status: http.StatusUnauthorized, Message: "Unauthorized", Err: err}
			}
			return err
		}

		params, err := applyProfile(row, req)
		if err != nil {
			return apiutil.HandlerError{Status: http.StatusBadRequest, Message: err.Error(), Err: err}
		}
		if params.Email != row.Email || passwordHash != "" {
			if err := checkCurrentPassword(row, req.CurrentPassword); err != nil {
				return apiutil.HandlerError{Status: http.StatusBadRequest, Message: err.Error(), Err: err}
			}
		}
		updated, err = txdb.Queries.UpdateUserProfile(ctx, params)
		if err != nil {
			if appdb.IsUniqueViolation(err) {
				return apiutil.HandlerError{Status: http.StatusConflict, Message: "email is already registered", Err: err}
			}
			return err
		}

		if passwordHash != "" {
			if err := txdb.Queries.UpdateUserPassword(ctx, dbgen.UpdateUserPasswordParams{
				PasswordHash: passwordHash,
				ID:           current.ID,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to update profile")
		return
	}

	logger.Info().Int64("user_id", current.ID).Bool("password_changed", passwordHash != "").Msg("Profile updated")
	if err := apiutil.WriteJSON(w, http.StatusOK, models.UserFromDB(updated)); err != nil {
		logger.Error().Err(err).Int64("user_id", current.ID).Msg("Failed to write profile response")
	}
}

// GET /clients/@me/visits
func HandleListMyVisits(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	current, ok := apiutil.RequireUser(w, r)
	if !ok {
		return
	}
	database := store
	if database == nil {
		logger.Error().Msg("Client handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	statusFilter := models.VisitStatus(r.URL.Query().Get("status"))
	switch statusFilter {
	case "", models.VisitConfirmed, models.VisitPending, models.VisitCancelled:
	default:
		apiutil.WriteError(w, http.StatusBadRequest, "status must be one of confirmed, pending, cancelled")
		return
	}
	upcomingOnly := r.URL.Query().Get("upcoming") == "true"

	ctx, cancel := context.WithTimeout(r.Context(), clientsQueryTimeout)
	defer cancel()

	rows, err := database.Queries.ListUserVisits(ctx, current.ID)
	if err != nil {
		logger.Error().Err(err).Int64("user_id", current.ID).Msg("Failed to list user visits")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to load visits")
		return
	}

	now := nowFunc().UTC()
	visits := make([]models.VisitDetails, 0, len(rows))
	for _, row := range rows {
		if statusFilter != "" && models.VisitStatus(row.Status) != statusFilter {
			continue
		}
		if upcomingOnly && !row.EndTime.After(now) {
			continue
		}
		visits = append(visits, models.VisitDetailsFromDB(row))
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, visits); err != nil {
		logger.Error().Err(err).Int64("user_id", current.ID).Msg("Failed to write visits response")
	}
}

var (
	errCurrentPasswordRequired = errors.New("currentPassword is required to change email or password")
	errCurrentPasswordWrong    = errors.New("current password is incorrect")
)

// Wrong credentials are a 400 here since clients drop their session on 401.
func checkCurrentPassword(row dbgen.User, current *string) error {
	if current == nil || *current == "" {
		return errCurrentPasswordRequired
	}
	if !auth.VerifyPassword(row.PasswordHash, *current) {
		return errCurrentPasswordWrong
	}
	return nil
}

func applyProfile(row dbgen.User, req models.UpdateProfileRequest) (dbgen.UpdateUserProfileParams, error) {
	params := dbgen.UpdateUserProfileParams{
		Name:  row.Name,
		Email: row.Email,
		Phone: row.Phone,
		ID:    row.ID,
	}
	if req.Name != nil {
		name, err := models.NormalizeName(*req.Name)
		if err != nil {
			return params, err
		}
		params.Name = name
	}
	if req.Email != nil {
		email, err := models.NormalizeEmail(*req.Email)
		if err != nil {
			return params, err
		}
		params.Email = email
	}
	if req.Phone != nil {
		phone, err := models.NormalizePhone(*req.Phone)
		if err != nil {
			return params, err
		}
		params.Phone = apiutil.ToNullString(&phone)
	}
	return params, nil
}
