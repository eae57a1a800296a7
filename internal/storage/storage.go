// Package storage keeps uploaded files on local disk or in S3.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/config"
)

var ErrNotFound = errors.New("object not found")

// Store persists file bodies by key. Metadata lives in the files table.
type Store interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// New builds the store selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocalStore(cfg.Dir)
	case "s3":
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}

// ObjectKey is the storage key of an uploaded file.
func ObjectKey(fileID string) string {
	return "files/" + fileID
}

func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("storage key is required")
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return fmt.Errorf("storage key %q is invalid", key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return fmt.Errorf("storage key %q is invalid", key)
		}
	}
	return nil
}
