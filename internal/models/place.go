package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	dbgen "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db/generated"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/floorplan"
)

const (
	maxPlaceNameLength   = 100
	maxPlaceFeatures     = 20
	maxPlaceFeatureChars = 40

	DefaultPlaceSize = 1.0
)

type PlaceStatus string

const (
	PlaceAvailable PlaceStatus = "available"
	PlaceOccupied  PlaceStatus = "occupied"
)

type Place struct {
	ID          int64       `json:"id"`
	FloorID     int64       `json:"floorId"`
	Name        string      `json:"name"`
	Features    []string    `json:"features"`
	X           float64     `json:"x"`
	Y           float64     `json:"y"`
	Size        float64     `json:"size"`
	Rotation    float64     `json:"rotation"`
	Status      PlaceStatus `json:"status"`
	PhotoFileID *string     `json:"photoFileId,omitempty"`
	PhotoURL    string      `json:"photoUrl,omitempty"`
}

func (p Place) Validate() error {
	if p.ID <= 0 {
		return fmt.Errorf("place id must be positive")
	}
	if p.X < floorplan.MinPercent || p.X > floorplan.MaxPercent || p.Y < floorplan.MinPercent || p.Y > floorplan.MaxPercent {
		return fmt.Errorf("place position must be within 0..100")
	}
	if p.Size < floorplan.DefaultMinSize {
		return fmt.Errorf("place size must be at least %.1f", floorplan.DefaultMinSize)
	}
	switch p.Status {
	case PlaceAvailable, PlaceOccupied:
	default:
		return fmt.Errorf("place status %q is unknown", p.Status)
	}
	return nil
}

func (p Place) Position() floorplan.Percent {
	return floorplan.Percent{X: p.X, Y: p.Y}
}

// Marker adapts the place for the floor plan renderers.
func (p Place) Marker() floorplan.Marker {
	return floorplan.Marker{
		ID:       p.ID,
		Label:    p.Name,
		Position: p.Position(),
		Size:     p.Size,
		Rotation: p.Rotation,
		Occupied: p.Status == PlaceOccupied,
	}
}

func PlaceFromDB(row dbgen.Place, occupied bool, fileURL func(string) string) Place {
	p := Place{
		ID:       row.ID,
		FloorID:  row.FloorID,
		Name:     row.Name,
		Features: DecodeFeatures(row.Features),
		X:        row.X,
		Y:        row.Y,
		Size:     row.Size,
		Rotation: row.Rotation,
		Status:   PlaceAvailable,
	}
	if occupied {
		p.Status = PlaceOccupied
	}
	if row.PhotoFileID.Valid {
		id := row.PhotoFileID.String
		p.PhotoFileID = &id
		if fileURL != nil {
			p.PhotoURL = fileURL(id)
		}
	}
	return p
}

// PlaceFields is the full, normalized editable state of a place.
type PlaceFields struct {
	Name        string
	Features    []string
	X           float64
	Y           float64
	Size        float64
	Rotation    float64
	PhotoFileID *string
}

// PlaceInput creates a place or partially updates one. Positions are clamped
// into the image, sizes raised to the minimum and rotation wrapped to [0,360).
type PlaceInput struct {
	Name        *string          `json:"name,omitempty"`
	Features    *[]string        `json:"features,omitempty"`
	X           *float64         `json:"x,omitempty"`
	Y           *float64         `json:"y,omitempty"`
	Size        *float64         `json:"size,omitempty"`
	Rotation    *float64         `json:"rotation,omitempty"`
	PhotoFileID Optional[string] `json:"photoFileId,omitzero"`
	Pointer     *PlacePointer    `json:"pointer,omitempty"`
}

// PlacePointer is an editor gesture in a renderer's coordinates instead of
// stored percentages. Pixel or LatLng moves the place; Handle is where a
// resize handle was released, in the same stage pixels as Pixel.
type PlacePointer struct {
	Pixel    *floorplan.Pixel   `json:"pixel,omitempty"`
	LatLng   *floorplan.LatLng  `json:"latLng,omitempty"`
	Handle   *floorplan.Pixel   `json:"handle,omitempty"`
	Viewport floorplan.Viewport `json:"viewport"`
}

var ErrPointerNeedsImage = errors.New("pointer edits need a floor plan image")

// ResolvePointer rewrites a pointer edit into x, y and size against the
// floor image. current is the place being edited, or the defaults for a new one.
func (in PlaceInput) ResolvePointer(current PlaceFields, image floorplan.Size, hasImage bool) (PlaceInput, error) {
	ptr := in.Pointer
	if ptr == nil {
		return in, nil
	}
	in.Pointer = nil
	if !hasImage {
		return in, ErrPointerNeedsImage
	}
	if ptr.Pixel == nil && ptr.LatLng == nil && ptr.Handle == nil {
		return in, fmt.Errorf("pointer needs pixel, latLng or handle")
	}
	if ptr.Pixel != nil && ptr.LatLng != nil {
		return in, fmt.Errorf("pointer takes pixel or latLng, not both")
	}
	if (ptr.Pixel != nil || ptr.LatLng != nil) && (in.X != nil || in.Y != nil) {
		return in, fmt.Errorf("pointer position conflicts with x and y")
	}
	if ptr.Handle != nil && in.Size != nil {
		return in, fmt.Errorf("pointer handle conflicts with size")
	}

	center := floorplan.Percent{X: current.X, Y: current.Y}
	if in.X != nil {
		center.X = *in.X
	}
	if in.Y != nil {
		center.Y = *in.Y
	}
	switch {
	case ptr.Pixel != nil:
		center = floorplan.FromPixel(*ptr.Pixel, image, ptr.Viewport)
	case ptr.LatLng != nil:
		center = floorplan.FromLatLng(*ptr.LatLng, floorplan.BoundsForImage(image))
	}
	if ptr.Pixel != nil || ptr.LatLng != nil {
		x, y := center.X, center.Y
		in.X, in.Y = &x, &y
	}
	if ptr.Handle != nil {
		handle := floorplan.FromPixel(*ptr.Handle, image, ptr.Viewport)
		size := floorplan.ResizeFromPointer(center, handle, image, floorplan.DefaultResizeConfig())
		in.Size = &size
	}
	return in, nil
}

// NewPlaceFields applies in to defaults. Name, x and y are required.
func NewPlaceFields(in PlaceInput) (PlaceFields, error) {
	if in.Name == nil {
		return PlaceFields{}, fmt.Errorf("name is required")
	}
	if in.X == nil || in.Y == nil {
		return PlaceFields{}, fmt.Errorf("x and y are required")
	}
	return in.Apply(PlaceFields{Size: DefaultPlaceSize})
}

// Apply merges in onto current and normalizes the result. A pointer edit
// must be resolved first.
func (in PlaceInput) Apply(current PlaceFields) (PlaceFields, error) {
	if in.Pointer != nil {
		return current, ErrPointerNeedsImage
	}
	next := current
	if in.Name != nil {
		next.Name = *in.Name
	}
	if in.Features != nil {
		next.Features = *in.Features
	}
	if in.X != nil {
		next.X = *in.X
	}
	if in.Y != nil {
		next.Y = *in.Y
	}
	if in.Size != nil {
		next.Size = *in.Size
	}
	if in.Rotation != nil {
		next.Rotation = *in.Rotation
	}
	if in.PhotoFileID.Set {
		next.PhotoFileID = in.PhotoFileID.Value
	}

	next.Name = strings.TrimSpace(next.Name)
	if next.Name == "" {
		return current, fmt.Errorf("name is required")
	}
	if len(next.Name) > maxPlaceNameLength {
		return current, fmt.Errorf("name must be %d characters or fewer", maxPlaceNameLength)
	}
	features, err := normalizeFeatures(next.Features)
	if err != nil {
		return current, err
	}
	next.Features = features
	pos := floorplan.Percent{X: next.X, Y: next.Y}.Clamp()
	next.X, next.Y = pos.X, pos.Y
	next.Size = floorplan.ClampSize(next.Size)
	next.Rotation = floorplan.NormalizeRotation(next.Rotation)
	if next.PhotoFileID != nil && strings.TrimSpace(*next.PhotoFileID) == "" {
		next.PhotoFileID = nil
	}
	return next, nil
}

func PlaceFieldsFromDB(row dbgen.Place) PlaceFields {
	fields := PlaceFields{
		Name:     row.Name,
		Features: DecodeFeatures(row.Features),
		X:        row.X,
		Y:        row.Y,
		Size:     row.Size,
		Rotation: row.Rotation,
	}
	if row.PhotoFileID.Valid {
		id := row.PhotoFileID.String
		fields.PhotoFileID = &id
	}
	return fields
}

// EncodeFeatures stores feature tags as a JSON array.
func EncodeFeatures(features []string) string {
	if len(features) == 0 {
		return "[]"
	}
	data, err := json.Marshal(features)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func DecodeFeatures(raw string) []string {
	var features []string
	if err := json.Unmarshal([]byte(raw), &features); err != nil || features == nil {
		return []string{}
	}
	return features
}

func normalizeFeatures(raw []string) ([]string, error) {
	seen := make(map[string]struct{}, len(raw))
	features := make([]string, 0, len(raw))
	for _, f := range raw {
		tag := strings.ToLower(strings.TrimSpace(f))
		if tag == "" {
			continue
		}
		if len(tag) > maxPlaceFeatureChars {
			return nil, fmt.Errorf("feature %q must be %d characters or fewer", tag, maxPlaceFeatureChars)
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		features = append(features, tag)
	}
	if len(features) > maxPlaceFeatures {
		return nil, fmt.Errorf("at most %d features are allowed", maxPlaceFeatures)
	}
	return features, nil
}
