// Package system serves organization branding and booking metrics.
package system

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/api/apiutil"
	appdb "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db"
	dbgen "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db/generated"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/models"
)

const systemQueryTimeout = 5 * time.Second

// Options carries the public client configuration returned with settings.
type Options struct {
	MapProvider string
	MapAPIKey   string
}

var (
	store    *appdb.DB
	options  Options
	initOnce sync.Once
	nowFunc  = time.Now
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(database *appdb.DB, opts Options) {
	if database == nil {
		log.Warn().Msg("InitHandlers called with nil database; system handlers will be unavailable")
		return
	}
	initOnce.Do(func() {
		store = database
		options = opts
	})
}

// GET /system/settings
//
// Branding that cannot be loaded falls back to the defaults so clients can
// always render.
func HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	database := store
	if database == nil {
		logger.Error().Msg("System handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), systemQueryTimeout)
	defer cancel()

	org, err := models.LoadOrganization(ctx, database.Queries, apiutil.FileURL)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load organization settings; serving defaults")
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, settingsResponse(org)); err != nil {
		logger.Error().Err(err).Msg("Failed to write settings response")
	}
}

// PATCH /system/settings
func HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if !apiutil.RequireStaff(w, r) {
		return
	}
	database := store
	if database == nil {
		logger.Error().Msg("System handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	var patch models.SettingsPatch
	if err := apiutil.DecodeJSON(r, &patch); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), systemQueryTimeout)
	defer cancel()

	var saved models.Organization
	err := database.RunInTx(ctx, func(txdb *appdb.DB) error {
		current, err := models.LoadOrganization(ctx, txdb.Queries, nil)
		if err != nil {
			return err
		}
		next := patch.Apply(current)
		next.Name = strings.TrimSpace(next.Name)
		next.AccentColor = strings.ToUpper(strings.TrimSpace(next.AccentColor))
		if next.LogoFileID != nil && strings.TrimSpace(*next.LogoFileID) == "" {
			next.LogoFileID = nil
		}
		if err := next.Validate(); err != nil {
			return apiutil.HandlerError{Status: http.StatusBadRequest, Message: err.Error(), Err: err}
		}

		row, err := txdb.Queries.UpsertSystemSettings(ctx, dbgen.UpsertSystemSettingsParams{
			OrganizationName: next.Name,
			LogoFileID:       apiutil.ToNullString(next.LogoFileID),
			AccentColor:      next.AccentColor,
		})
		if err != nil {
			if appdb.IsForeignKeyViolation(err) {
				return apiutil.HandlerError{Status: http.StatusBadRequest, Message: "logo file not found", Err: err}
			}
			return err
		}
		saved = models.OrganizationFromDB(row, apiutil.FileURL)
		return nil
	})
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to update settings")
		return
	}

	logger.Info().Str("organization", saved.Name).Str("accent_color", saved.AccentColor).Msg("Organization settings updated")
	if err := apiutil.WriteJSON(w, http.StatusOK, settingsResponse(saved)); err != nil {
		logger.Error().Err(err).Msg("Failed to write settings response")
	}
}

func settingsResponse(org models.Organization) models.Settings {
	return models.Settings{
		Organization: org,
		MapProvider:  options.MapProvider,
		MapAPIKey:    options.MapAPIKey,
	}
}
