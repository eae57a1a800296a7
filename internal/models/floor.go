package models

import (
	"fmt"

	dbgen "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db/generated"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/floorplan"
)

// Floor is a building level with its plan image. Place positions are
// percentages of ImageWidth x ImageHeight.
type Floor struct {
	ID          int64        `json:"id"`
	BuildingID  int64        `json:"buildingId"`
	Level       int64        `json:"level"`
	MapFileID   *string      `json:"mapFileId,omitempty"`
	MapURL      string       `json:"mapUrl,omitempty"`
	ImageWidth  int64        `json:"imageWidth"`
	ImageHeight int64        `json:"imageHeight"`
	Places      []Place      `json:"places"`
	Layout      *FloorLayout `json:"layout,omitempty"`
}

func (f Floor) Validate() error {
	if f.ID <= 0 {
		return fmt.Errorf("floor id must be positive")
	}
	for _, p := range f.Places {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("place %d: %w", p.ID, err)
		}
	}
	return nil
}

// HasImage reports whether the plan image size is known.
func (f Floor) HasImage() bool {
	return f.ImageWidth > 0 && f.ImageHeight > 0
}

func (f Floor) ImageSize() floorplan.Size {
	return floorplan.Size{Width: float64(f.ImageWidth), Height: float64(f.ImageHeight)}
}

func FloorFromDB(row dbgen.Floor, places []Place, fileURL func(string) string) Floor {
	f := Floor{
		ID:          row.ID,
		BuildingID:  row.BuildingID,
		Level:       row.Level,
		ImageWidth:  row.ImageWidth,
		ImageHeight: row.ImageHeight,
		Places:      places,
	}
	if f.Places == nil {
		f.Places = []Place{}
	}
	if row.MapFileID.Valid {
		id := row.MapFileID.String
		f.MapFileID = &id
		if fileURL != nil {
			f.MapURL = fileURL(id)
		}
	}
	return f
}

// FloorInput creates a floor or partially updates one. Level is required on create.
type FloorInput struct {
	Level     *int64           `json:"level,omitempty"`
	MapFileID Optional[string] `json:"mapFileId,omitzero"`
}
