package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/models"
)

func visitsPath(buildingID, placeID int64, rest ...any) string {
	return idPath(append([]any{"buildings", buildingID, "places", placeID, "visits"}, rest...)...)
}

// PlaceVisits lists the visits of a place overlapping the window. Owner
// details are only filled in for the caller's own visits unless the caller is
// staff.
func (c *Client) PlaceVisits(ctx context.Context, buildingID, placeID int64, window Window) ([]models.Visit, error) {
	var visits []models.Visit
	if err := c.get(ctx, visitsPath(buildingID, placeID), window.query(), &visits); err != nil {
		return nil, err
	}
	return visits, validateEach(visits)
}

// Book creates a visit. Conflicts come back as a 409 APIError.
func (c *Client) Book(ctx context.Context, buildingID, placeID int64, start, end time.Time) (models.Visit, error) {
	var visit models.Visit
	err := c.send(ctx, http.MethodPost, visitsPath(buildingID, placeID), models.VisitRequest{Start: start.UTC(), End: end.UTC()}, &visit)
	return visit, err
}

func (c *Client) Reschedule(ctx context.Context, buildingID, placeID, visitID int64, start, end time.Time) (models.Visit, error) {
	var visit models.Visit
	err := c.send(ctx, http.MethodPatch, visitsPath(buildingID, placeID, visitID), models.VisitRequest{Start: start.UTC(), End: end.UTC()}, &visit)
	return visit, err
}

func (c *Client) CancelVisit(ctx context.Context, buildingID, placeID, visitID int64) error {
	return c.send(ctx, http.MethodDelete, visitsPath(buildingID, placeID, visitID), nil, nil)
}

// ConfirmVisit moves a pending visit to confirmed. Staff only.
func (c *Client) ConfirmVisit(ctx context.Context, buildingID, placeID, visitID int64) (models.Visit, error) {
	var visit models.Visit
	err := c.send(ctx, http.MethodPost, visitsPath(buildingID, placeID, visitID, "confirm"), nil, &visit)
	return visit, err
}

// VisitQR returns the check-in QR code as a PNG of size x size pixels. A zero
// size uses the server default.
func (c *Client) VisitQR(ctx context.Context, buildingID, placeID, visitID int64, size int) ([]byte, error) {
	var query url.Values
	if size > 0 {
		query = url.Values{"size": {strconv.Itoa(size)}}
	}
	var png []byte
	err := c.get(ctx, visitsPath(buildingID, placeID, visitID, "qr"), query, &png)
	return png, err
}

// Checkin marks the visit behind a scanned QR payload (or bare code) as
// visited. Staff only.
func (c *Client) Checkin(ctx context.Context, buildingID int64, payload string) (models.Visit, error) {
	var visit models.Visit
	err := c.send(ctx, http.MethodPost, idPath("buildings", buildingID, "visits", "checkin"), models.CheckinRequest{Code: payload}, &visit)
	return visit, err
}
