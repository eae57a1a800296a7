package models

import (
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/floorplan"
)

// FloorLayout is a floor's places projected into one renderer's coordinate
// space, so clients can draw markers without their own mapping math.
type FloorLayout struct {
	Space      floorplan.Space      `json:"space"`
	Image      floorplan.Size       `json:"image"`
	Bounds     *floorplan.GeoBounds `json:"bounds,omitempty"`
	Placements []PlacePlacement     `json:"placements"`
}

type PlacePlacement struct {
	PlaceID  int64 `json:"placeId"`
	Occupied bool  `json:"occupied"`
	floorplan.Placement
}

// ProjectLayout projects every place of f into space. Canvas placements use an
// unzoomed stage, which is intrinsic image pixels.
func (f Floor) ProjectLayout(space floorplan.Space) (FloorLayout, error) {
	image := f.ImageSize()
	renderer, err := floorplan.NewRenderer(space, image, floorplan.Viewport{Scale: 1})
	if err != nil {
		return FloorLayout{}, err
	}
	layout := FloorLayout{
		Space:      space,
		Image:      image.Normalized(),
		Placements: make([]PlacePlacement, 0, len(f.Places)),
	}
	if geo, ok := renderer.(floorplan.GeoRenderer); ok {
		bounds := geo.Bounds
		layout.Bounds = &bounds
	}
	for _, p := range f.Places {
		layout.Placements = append(layout.Placements, PlacePlacement{
			PlaceID:   p.ID,
			Occupied:  p.Status == PlaceOccupied,
			Placement: renderer.Project(p.Marker()),
		})
	}
	return layout, nil
}
