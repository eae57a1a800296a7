package schemes

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/api/apiutil"
	dbgen "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db/generated"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/floorplan"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/models"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/storage"
)

const maxPreviewWidth = 2000

// GET /buildings/{id}/previews/{floorId}
func HandleFloorPreview(w http.ResponseWriter, r *http.Request) {
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
	width := 0
	if raw := r.URL.Query().Get("width"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > maxPreviewWidth {
			apiutil.WriteError(w, http.StatusBadRequest, "width must be between 1 and 2000")
			return
		}
		width = parsed
	}
	from, to, err := apiutil.TimeWindow(r, nowFunc(), statusWindow)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
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

	base, err := loadFloorImage(ctx, database.Queries, floor)
	if err != nil {
		logger.Warn().Err(err).Int64("floor_id", floorID).Msg("Rendering preview without floor image")
	}

	org, err := models.LoadOrganization(ctx, database.Queries, nil)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to load branding for preview")
	}
	accent, err := models.ParseHexColor(org.AccentColor)
	if err != nil {
		accent, _ = models.ParseHexColor(models.DefaultAccentColor)
	}

	renderer, err := floorplan.NewRasterRenderer(floor.ImageSize(), width, accent)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create preview renderer")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to render preview")
		return
	}
	markers := make([]floorplan.Marker, 0, len(floor.Places))
	for _, place := range floor.Places {
		markers = append(markers, place.Marker())
	}
	img, err := renderer.Render(base, markers)
	if err != nil {
		logger.Error().Err(err).Int64("floor_id", floorID).Msg("Failed to render preview")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to render preview")
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		logger.Error().Err(err).Int64("floor_id", floorID).Msg("Failed to encode preview")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to render preview")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Error().Err(err).Int64("floor_id", floorID).Msg("Failed to write preview")
	}
}

// loadFloorImage returns nil without error when the floor has no map.
func loadFloorImage(ctx context.Context, q *dbgen.Queries, floor models.Floor) (image.Image, error) {
	if floor.MapFileID == nil {
		return nil, nil
	}
	if objects == nil {
		return nil, errors.New("object storage not configured")
	}
	file, err := q.GetFile(ctx, *floor.MapFileID)
	if err != nil {
		return nil, err
	}
	rc, err := objects.Open(ctx, file.StorageKey)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return storage.DecodeImage(rc)
}
