package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/models"
)

// Window limits place status and visit listings to [From, To). Zero values
// leave the server defaults in place.
type Window struct {
	From time.Time
	To   time.Time
}

func (w Window) query() url.Values {
	query := url.Values{}
	if !w.From.IsZero() {
		query.Set("from", w.From.UTC().Format(time.RFC3339))
	}
	if !w.To.IsZero() {
		query.Set("to", w.To.UTC().Format(time.RFC3339))
	}
	return query
}

func (c *Client) Buildings(ctx context.Context) ([]models.Building, error) {
	var buildings []models.Building
	if err := c.get(ctx, "/buildings", nil, &buildings); err != nil {
		return nil, err
	}
	return buildings, validateEach(buildings)
}

func (c *Client) Building(ctx context.Context, id int64) (models.Building, error) {
	var building models.Building
	err := c.get(ctx, idPath("buildings", id), nil, &building)
	return building, err
}

func (c *Client) CreateBuilding(ctx context.Context, in models.BuildingInput) (models.Building, error) {
	var building models.Building
	err := c.send(ctx, http.MethodPost, "/buildings", in, &building)
	return building, err
}

func (c *Client) UpdateBuilding(ctx context.Context, id int64, patch models.BuildingPatch) (models.Building, error) {
	var building models.Building
	err := c.send(ctx, http.MethodPatch, idPath("buildings", id), patch, &building)
	return building, err
}

func (c *Client) DeleteBuilding(ctx context.Context, id int64) error {
	return c.send(ctx, http.MethodDelete, idPath("buildings", id), nil, nil)
}

// Floors lists a building's floors with place status for the window.
func (c *Client) Floors(ctx context.Context, buildingID int64, window Window) ([]models.Floor, error) {
	var floors []models.Floor
	if err := c.get(ctx, idPath("buildings", buildingID, "schemes"), window.query(), &floors); err != nil {
		return nil, err
	}
	return floors, validateEach(floors)
}

func (c *Client) Floor(ctx context.Context, buildingID, floorID int64, window Window) (models.Floor, error) {
	var floor models.Floor
	err := c.get(ctx, idPath("buildings", buildingID, "schemes", floorID), window.query(), &floor)
	return floor, err
}

func (c *Client) CreateFloor(ctx context.Context, buildingID int64, in models.FloorInput) (models.Floor, error) {
	var floor models.Floor
	err := c.send(ctx, http.MethodPost, idPath("buildings", buildingID, "schemes"), in, &floor)
	return floor, err
}

func (c *Client) UpdateFloor(ctx context.Context, buildingID, floorID int64, in models.FloorInput) (models.Floor, error) {
	var floor models.Floor
	err := c.send(ctx, http.MethodPatch, idPath("buildings", buildingID, "schemes", floorID), in, &floor)
	return floor, err
}

func (c *Client) DeleteFloor(ctx context.Context, buildingID, floorID int64) error {
	return c.send(ctx, http.MethodDelete, idPath("buildings", buildingID, "schemes", floorID), nil, nil)
}

// FloorPreview renders the floor plan with its places as a PNG at most width
// pixels wide. A zero width uses the server default.
func (c *Client) FloorPreview(ctx context.Context, buildingID, floorID int64, width int, window Window) ([]byte, error) {
	query := window.query()
	if width > 0 {
		query.Set("width", strconv.Itoa(width))
	}
	var png []byte
	err := c.get(ctx, idPath("buildings", buildingID, "previews", floorID), query, &png)
	return png, err
}

func (c *Client) CreatePlace(ctx context.Context, buildingID, floorID int64, in models.PlaceInput) (models.Place, error) {
	var place models.Place
	err := c.send(ctx, http.MethodPost, idPath("buildings", buildingID, "schemes", floorID, "places"), in, &place)
	return place, err
}

func (c *Client) Place(ctx context.Context, buildingID, placeID int64, window Window) (models.Place, error) {
	var place models.Place
	err := c.get(ctx, idPath("buildings", buildingID, "schemes", "places", placeID), window.query(), &place)
	return place, err
}

func (c *Client) UpdatePlace(ctx context.Context, buildingID, placeID int64, in models.PlaceInput) (models.Place, error) {
	var place models.Place
	err := c.send(ctx, http.MethodPatch, idPath("buildings", buildingID, "schemes", "places", placeID), in, &place)
	return place, err
}

func (c *Client) DeletePlace(ctx context.Context, buildingID, placeID int64) error {
	return c.send(ctx, http.MethodDelete, idPath("buildings", buildingID, "schemes", "places", placeID), nil, nil)
}
