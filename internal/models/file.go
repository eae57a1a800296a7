package models

import (
	"fmt"

	dbgen "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db/generated"
)

type File struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	Width       *int64 `json:"width,omitempty"`
	Height      *int64 `json:"height,omitempty"`
}

func (f File) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("file id is required")
	}
	return nil
}

func FileFromDB(row dbgen.File, fileURL func(string) string) File {
	f := File{
		ID:          row.ID,
		ContentType: row.ContentType,
		Size:        row.SizeBytes,
	}
	if fileURL != nil {
		f.URL = fileURL(row.ID)
	}
	if row.Width.Valid && row.Height.Valid {
		w, h := row.Width.Int64, row.Height.Int64
		f.Width, f.Height = &w, &h
	}
	return f
}
