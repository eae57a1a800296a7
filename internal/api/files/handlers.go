// Package files accepts image uploads (building photos, floor maps, logos)
// and serves them back from object storage.
package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/api/apiutil"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/api/authz"
	appdb "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db"
	dbgen "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db/generated"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/models"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/storage"
)

const (
	filesQueryTimeout   = 5 * time.Second
	filesStorageTimeout = 30 * time.Second
	formField           = "file"
	// DefaultMaxUploadBytes applies when InitHandlers gets a non-positive limit.
	DefaultMaxUploadBytes = 10 << 20
)

var (
	store          *appdb.DB
	objects        storage.Store
	maxUploadBytes int64 = DefaultMaxUploadBytes
	initOnce       sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(database *appdb.DB, objectStore storage.Store, maxBytes int64) {
	if database == nil || objectStore == nil {
		return
	}
	initOnce.Do(func() {
		store = database
		objects = objectStore
		if maxBytes > 0 {
			maxUploadBytes = maxBytes
		}
	})
}

// POST /files
func HandleUpload(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if !apiutil.RequireStaff(w, r) {
		return
	}
	database, objectStore := store, objects
	if database == nil || objectStore == nil {
		logger.Error().Msg("File handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	data, err := readUpload(w, r)
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to read upload")
		return
	}
	contentType, ok := storage.SniffContentType(data)
	if !ok {
		apiutil.WriteError(w, http.StatusUnsupportedMediaType, "file must be a PNG, JPEG, GIF or WebP image")
		return
	}
	info, err := storage.InspectImage(data)
	if errors.Is(err, storage.ErrImageTooLarge) {
		apiutil.WriteError(w, http.StatusRequestEntityTooLarge, "image dimensions are too large")
		return
	}
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "file is not a readable image")
		return
	}

	id := uuid.NewString()
	key := storage.ObjectKey(id)

	storeCtx, cancelStore := context.WithTimeout(r.Context(), filesStorageTimeout)
	defer cancelStore()
	if err := objectStore.Put(storeCtx, key, contentType, data); err != nil {
		logger.Error().Err(err).Str("file_id", id).Msg("Failed to store upload")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to store file")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), filesQueryTimeout)
	defer cancel()

	params := dbgen.CreateFileParams{
		ID:          id,
		StorageKey:  key,
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
		Width:       sql.NullInt64{Int64: int64(info.Width), Valid: true},
		Height:      sql.NullInt64{Int64: int64(info.Height), Valid: true},
	}
	if user := authz.UserFromContext(r.Context()); user != nil {
		params.UploadedBy = sql.NullInt64{Int64: user.ID, Valid: true}
	}
	row, err := database.Queries.CreateFile(ctx, params)
	if err != nil {
		logger.Error().Err(err).Str("file_id", id).Msg("Failed to record upload")
		if delErr := objectStore.Delete(storeCtx, key); delErr != nil {
			logger.Warn().Err(delErr).Str("file_id", id).Msg("Failed to remove orphaned upload")
		}
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to store file")
		return
	}

	logger.Info().
		Str("file_id", id).
		Str("content_type", contentType).
		Int("size", len(data)).
		Int("width", info.Width).
		Int("height", info.Height).
		Msg("File uploaded")
	if err := apiutil.WriteJSON(w, http.StatusCreated, models.FileFromDB(row, apiutil.FileURL)); err != nil {
		logger.Error().Err(err).Str("file_id", id).Msg("Failed to write file response")
	}
}

// GET /files/{id}
func HandleDownload(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	database, objectStore := store, objects
	if database == nil || objectStore == nil {
		logger.Error().Msg("File handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		apiutil.WriteError(w, http.StatusNotFound, "File not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), filesStorageTimeout)
	defer cancel()

	row, err := database.Queries.GetFile(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			apiutil.WriteError(w, http.StatusNotFound, "File not found")
			return
		}
		logger.Error().Err(err).Str("file_id", id).Msg("Failed to load file")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to load file")
		return
	}
	body, err := objectStore.Open(ctx, row.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			logger.Warn().Str("file_id", id).Msg("File record without stored object")
			apiutil.WriteError(w, http.StatusNotFound, "File not found")
			return
		}
		logger.Error().Err(err).Str("file_id", id).Msg("Failed to open file")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to load file")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", row.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(row.SizeBytes, 10))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		logger.Error().Err(err).Str("file_id", id).Msg("Failed to stream file")
	}
}

func readUpload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	limit := maxUploadBytes
	// Multipart framing adds a little on top of the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apiutil.HandlerError{Status: http.StatusRequestEntityTooLarge, Message: tooLargeMessage(limit), Err: err}
		}
		return nil, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "request must be multipart/form-data", Err: err}
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(formField)
	if err != nil {
		return nil, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "file is required", Err: err}
	}
	defer file.Close()
	if header.Size > limit {
		return nil, apiutil.HandlerError{Status: http.StatusRequestEntityTooLarge, Message: tooLargeMessage(limit)}
	}

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, apiutil.HandlerError{Status: http.StatusRequestEntityTooLarge, Message: tooLargeMessage(limit)}
	}
	if len(data) == 0 {
		return nil, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "file is empty"}
	}
	return data, nil
}

func tooLargeMessage(limit int64) string {
	return fmt.Sprintf("file must be %d MB or smaller", limit>>20)
}
