// Package admins lets owners grant and revoke the admin and owner roles.
package admins

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/api/apiutil"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/api/authz"
	appdb "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db"
	dbgen "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db/generated"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/models"
)

const adminsQueryTimeout = 5 * time.Second

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

// GET /admin
func HandleListAdmins(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if !apiutil.RequireStaff(w, r) {
		return
	}
	database := store
	if database == nil {
		logger.Error().Msg("Admin handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), adminsQueryTimeout)
	defer cancel()

	rows, err := database.Queries.ListStaffUsers(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list admins")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to load admins")
		return
	}
	result := make([]models.User, 0, len(rows))
	for _, row := range rows {
		result = append(result, models.UserFromDB(row))
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, result); err != nil {
		logger.Error().Err(err).Msg("Failed to write admins response")
	}
}

// POST /admin
func HandleGrantRole(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if !apiutil.RequireOwner(w, r) {
		return
	}
	database := store
	if database == nil {
		logger.Error().Msg("Admin handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	var req models.GrantRoleRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	role := models.RoleAdmin
	if req.Role != "" {
		parsed, err := models.ParseRole(string(req.Role))
		if err != nil || !parsed.IsStaff() {
			apiutil.WriteError(w, http.StatusBadRequest, "role must be admin or owner")
			return
		}
		role = parsed
	}
	if req.UserID <= 0 && req.Email == "" {
		apiutil.WriteError(w, http.StatusBadRequest, "userId or email is required")
		return
	}
	var email string
	if req.UserID <= 0 {
		normalized, err := models.NormalizeEmail(req.Email)
		if err != nil {
			apiutil.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		email = normalized
	}

	ctx, cancel := context.WithTimeout(r.Context(), adminsQueryTimeout)
	defer cancel()

	var granted dbgen.User
	err := database.RunInTx(ctx, func(txdb *appdb.DB) error {
		target, err := findUser(ctx, txdb.Queries, req.UserID, email)
		if err != nil {
			return err
		}
		if err := authz.CanChangeRole(authz.UserFromContext(ctx), target.ID, role); err != nil {
			return err
		}
		granted, err = txdb.Queries.UpdateUserRole(ctx, dbgen.UpdateUserRoleParams{Role: string(role), ID: target.ID})
		return err
	})
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to grant role")
		return
	}

	caller := authz.UserFromContext(r.Context())
	logger.Info().Int64("user_id", granted.ID).Int64("granted_by", caller.ID).Str("role", granted.Role).Msg("Role granted")
	if err := apiutil.WriteJSON(w, http.StatusOK, models.UserFromDB(granted)); err != nil {
		logger.Error().Err(err).Int64("user_id", granted.ID).Msg("Failed to write admin response")
	}
}

// DELETE /admin/{userId}
func HandleRevokeRole(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if !apiutil.RequireOwner(w, r) {
		return
	}
	database := store
	if database == nil {
		logger.Error().Msg("Admin handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	userID, err := apiutil.PathID(r, "userId")
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	caller := authz.UserFromContext(r.Context())
	if err := authz.CanChangeRole(caller, userID, models.RoleUser); err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to revoke role")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), adminsQueryTimeout)
	defer cancel()

	err = database.RunInTx(ctx, func(txdb *appdb.DB) error {
		target, err := findUser(ctx, txdb.Queries, userID, "")
		if err != nil {
			return err
		}
		if !models.Role(target.Role).IsStaff() {
			return apiutil.HandlerError{Status: http.StatusNotFound, Message: "Admin not found"}
		}
		_, err = txdb.Queries.UpdateUserRole(ctx, dbgen.UpdateUserRoleParams{Role: string(models.RoleUser), ID: userID})
		return err
	})
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to revoke role")
		return
	}

	logger.Info().Int64("user_id", userID).Int64("revoked_by", caller.ID).Msg("Role revoked")
	w.WriteHeader(http.StatusNoContent)
}

func findUser(ctx context.Context, q *dbgen.Queries, userID int64, email string) (dbgen.User, error) {
	var (
		row dbgen.User
		err error
	)
	if userID > 0 {
		row, err = q.GetUserByID(ctx, userID)
	} else {
		row, err = q.GetUserByEmail(ctx, email)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.User{}, apiutil.HandlerError{Status: http.StatusNotFound, Message: "User not found", Err: err}
		}
		return dbgen.User{}, err
	}
	return row, nil
}
