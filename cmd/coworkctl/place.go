package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/client"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/floorplan"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/models"
)

// placeGesture is a pointer gesture replayed against the floor plan of one place.
type placeGesture struct {
	buildingID int64
	place      models.Place
	floor      models.Floor
	renderer   floorplan.MarkerRenderer
	path       []floorplan.Point
}

func cmdPlace(ctx context.Context, e *env, args []string) error {
	if len(args) == 0 {
		return errors.New("place requires a subcommand: move or resize")
	}
	switch args[0] {
	case "move":
		return placeMove(ctx, e, args[1:])
	case "resize":
		return placeResize(ctx, e, args[1:])
	default:
		return fmt.Errorf("unknown place subcommand %q (use move or resize)", args[0])
	}
}

func loadPlaceGesture(ctx context.Context, e *env, name string, args []string) (*placeGesture, error) {
	fs := newFlagSet("place "+name, e)
	buildingID := fs.Int64("building", 0, "Coworking id")
	placeID := fs.Int64("place", 0, "Place id")
	spaceRaw := fs.String("space", string(floorplan.SpaceCanvas), "Pointer coordinates: canvas (stage pixels), dom (percent) or geo (lng,lat)")
	zoom := fs.Float64("zoom", 1, "Canvas zoom")
	panRaw := fs.String("pan", "0,0", "Canvas pan as x,y stage pixels")
	pathRaw := fs.String("path", "", "Pointer positions as \"x,y x,y ...\"; the last one is where the pointer is released")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *buildingID <= 0 || *placeID <= 0 || *pathRaw == "" {
		return nil, fmt.Errorf("place %s requires -building, -place and -path", name)
	}
	space, err := floorplan.ParseSpace(*spaceRaw)
	if err != nil {
		return nil, err
	}
	pan, err := parsePoint(*panRaw)
	if err != nil {
		return nil, fmt.Errorf("-pan: %w", err)
	}
	path, err := parsePath(*pathRaw)
	if err != nil {
		return nil, fmt.Errorf("-path: %w", err)
	}

	place, err := e.api.Place(ctx, *buildingID, *placeID, client.Window{})
	if err != nil {
		return nil, err
	}
	floor, err := e.api.Floor(ctx, *buildingID, place.FloorID, client.Window{})
	if err != nil {
		return nil, err
	}
	if !floor.HasImage() {
		return nil, models.ErrPointerNeedsImage
	}
	renderer, err := floorplan.NewRenderer(space, floor.ImageSize(), floorplan.Viewport{Scale: *zoom, PanX: pan.X, PanY: pan.Y})
	if err != nil {
		return nil, err
	}
	return &placeGesture{buildingID: *buildingID, place: place, floor: floor, renderer: renderer, path: path}, nil
}

func placeMove(ctx context.Context, e *env, args []string) error {
	g, err := loadPlaceGesture(ctx, e, "move", args)
	if err != nil {
		return err
	}
	drag := floorplan.NewDragGesture(g.renderer)
	if err := drag.Begin(g.place.Position()); err != nil {
		return err
	}
	for _, pt := range g.path {
		drag.Move(pt)
	}
	pos := drag.End()

	updated, err := e.api.UpdatePlace(ctx, g.buildingID, g.place.ID, models.PlaceInput{X: &pos.X, Y: &pos.Y})
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Moved place %d (%s) to %s%%, %s%%\n", updated.ID, updated.Name, formatNumber(updated.X), formatNumber(updated.Y))
	return nil
}

func placeResize(ctx context.Context, e *env, args []string) error {
	g, err := loadPlaceGesture(ctx, e, "resize", args)
	if err != nil {
		return err
	}
	resize := floorplan.NewResizeGesture(g.renderer, g.floor.ImageSize(), floorplan.DefaultResizeConfig())
	if err := resize.Begin(g.place.Position(), g.place.Size); err != nil {
		return err
	}
	for _, pt := range g.path {
		resize.Move(pt)
	}
	size := resize.End()

	updated, err := e.api.UpdatePlace(ctx, g.buildingID, g.place.ID, models.PlaceInput{Size: &size})
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Resized place %d (%s) to %s\n", updated.ID, updated.Name, formatNumber(updated.Size))
	return nil
}

func parsePath(raw string) ([]floorplan.Point, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ' ' || r == ';' })
	if len(fields) == 0 {
		return nil, errors.New("no points")
	}
	path := make([]floorplan.Point, 0, len(fields))
	for _, field := range fields {
		pt, err := parsePoint(field)
		if err != nil {
			return nil, err
		}
		path = append(path, pt)
	}
	return path, nil
}

func parsePoint(raw string) (floorplan.Point, error) {
	xs, ys, ok := strings.Cut(strings.TrimSpace(raw), ",")
	if !ok {
		return floorplan.Point{}, fmt.Errorf("point %q is not x,y", raw)
	}
	x, errX := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if errX != nil || errY != nil {
		return floorplan.Point{}, fmt.Errorf("point %q is not numeric", raw)
	}
	return floorplan.Point{X: x, Y: y}, nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
