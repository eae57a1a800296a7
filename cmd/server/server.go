// cmd/server/server.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/api"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/api/admins"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/api/apiutil"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/api/auth"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/api/buildings"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/api/clients"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/api/files"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/api/schemes"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/api/system"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/api/visits"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/config"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/email"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/ratelimit"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/scheduler"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/storage"
)

const healthCheckTimeout = 2 * time.Second

type services struct {
	limiter *ratelimit.Limiter
}

// initServices wires every handler package. It must run before newServer.
func initServices(ctx context.Context, cfg *config.Config, database *db.DB) (*services, error) {
	apiutil.SetFileBaseURL(cfg.App.BaseURL)

	objects, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	var sender email.EmailSender
	if cfg.Email.Enabled {
		ses, err := email.NewSESClient(ctx, cfg.Email)
		if err != nil {
			return nil, fmt.Errorf("init email: %w", err)
		}
		sender = ses
	} else {
		log.Info().Msg("Email disabled; notifications will not be sent")
	}

	limiter := ratelimit.New(nil)
	auth.InitHandlers(database, auth.Options{
		Tokens:     auth.NewTokenIssuer(cfg.App.SecretKey, cfg.TokenTTL()),
		Limiter:    limiter,
		TrustProxy: cfg.App.TrustProxy,
	})
	clients.InitHandlers(database)
	buildings.InitHandlers(database)
	schemes.InitHandlers(database, objects)
	visits.InitHandlers(database, visits.Options{
		Policy: visits.PolicyFromConfig(cfg.Booking),
		Sender: sender,
	})
	files.InitHandlers(database, objects, cfg.MaxUploadBytes())
	system.InitHandlers(database, system.Options{
		MapProvider: cfg.Map.Provider,
		MapAPIKey:   cfg.Map.APIKey,
	})
	admins.InitHandlers(database)

	if cfg.Features.EnableScheduler {
		if err := scheduler.Init(); err != nil {
			limiter.Close()
			return nil, fmt.Errorf("init scheduler: %w", err)
		}
		jobs := scheduler.BookingJobs{
			DB:           database,
			Sender:       sender,
			ReminderLead: cfg.Booking.ReminderLead(),
		}
		if err := jobs.Register(); err != nil {
			limiter.Close()
			return nil, fmt.Errorf("register booking jobs: %w", err)
		}
	}

	return &services{limiter: limiter}, nil
}

func newServer(cfg *config.Config, database *db.DB) *http.Server {
	router := http.NewServeMux()
	registerRoutes(router, database)

	// Listed innermost first.
	handler := api.ChainMiddleware(
		router,
		api.WithAuth,
		api.WithContentType,
		api.WithCORS(cfg.CORS.AllowedOrigins),
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
	)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux, database *db.DB) {
	mux.HandleFunc("GET /health", handleHealth(database))

	// Auth and profile
	mux.HandleFunc("POST /auth/register", auth.HandleRegister)
	mux.HandleFunc("POST /auth/login", auth.HandleLogin)
	mux.HandleFunc("GET /clients/@me", clients.HandleGetMe)
	mux.HandleFunc("PATCH /clients/@me", clients.HandleUpdateMe)
	mux.HandleFunc("GET /clients/@me/visits", clients.HandleListMyVisits)

	// Coworkings
	mux.HandleFunc("GET /buildings", buildings.HandleListBuildings)
	mux.HandleFunc("POST /buildings", buildings.HandleCreateBuilding)
	mux.HandleFunc("GET /buildings/{id}", buildings.HandleGetBuilding)
	mux.HandleFunc("PATCH /buildings/{id}", buildings.HandleUpdateBuilding)
	mux.HandleFunc("DELETE /buildings/{id}", buildings.HandleDeleteBuilding)

	// Floors and places
	mux.HandleFunc("GET /buildings/{id}/schemes", schemes.HandleListFloors)
	mux.HandleFunc("POST /buildings/{id}/schemes", schemes.HandleCreateFloor)
	mux.HandleFunc("GET /buildings/{id}/schemes/{floorId}", schemes.HandleGetFloor)
	mux.HandleFunc("PATCH /buildings/{id}/schemes/{floorId}", schemes.HandleUpdateFloor)
	mux.HandleFunc("DELETE /buildings/{id}/schemes/{floorId}", schemes.HandleDeleteFloor)
	mux.HandleFunc("POST /buildings/{id}/schemes/{floorId}/places", schemes.HandleCreatePlace)
	mux.HandleFunc("GET /buildings/{id}/schemes/places/{placeId}", schemes.HandleGetPlace)
	mux.HandleFunc("PATCH /buildings/{id}/schemes/places/{placeId}", schemes.HandleUpdatePlace)
	mux.HandleFunc("DELETE /buildings/{id}/schemes/places/{placeId}", schemes.HandleDeletePlace)
	mux.HandleFunc("GET /buildings/{id}/previews/{floorId}", schemes.HandleFloorPreview)

	// Visits
	mux.HandleFunc("GET /buildings/{id}/places/{placeId}/visits", visits.HandleListPlaceVisits)
	mux.HandleFunc("POST /buildings/{id}/places/{placeId}/visits", visits.HandleCreateVisit)
	mux.HandleFunc("PATCH /buildings/{id}/places/{placeId}/visits/{visitId}", visits.HandleRescheduleVisit)
	mux.HandleFunc("DELETE /buildings/{id}/places/{placeId}/visits/{visitId}", visits.HandleCancelVisit)
	mux.HandleFunc("POST /buildings/{id}/places/{placeId}/visits/{visitId}/confirm", visits.HandleConfirmVisit)
	mux.HandleFunc("GET /buildings/{id}/places/{placeId}/visits/{visitId}/qr", visits.HandleVisitQR)
	mux.HandleFunc("POST /buildings/{id}/visits/checkin", visits.HandleCheckin)

	// Files
	mux.HandleFunc("POST /files", files.HandleUpload)
	mux.HandleFunc("GET /files/{id}", files.HandleDownload)

	// System
	mux.HandleFunc("GET /system/settings", system.HandleGetSettings)
	mux.HandleFunc("PATCH /system/settings", system.HandleUpdateSettings)
	mux.HandleFunc("GET /system/metrics", system.HandleMetrics)

	// Staff management
	mux.HandleFunc("GET /admin", admins.HandleListAdmins)
	mux.HandleFunc("POST /admin", admins.HandleGrantRole)
	mux.HandleFunc("DELETE /admin/{userId}", admins.HandleRevokeRole)
}

// handleHealth reports whether the database answers.
func handleHealth(database *db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		if err := database.PingContext(ctx); err != nil {
			log.Ctx(r.Context()).Error().Err(err).Msg("Health check failed")
			apiutil.WriteError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		_ = apiutil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
