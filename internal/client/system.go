package client

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"

	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/models"
)

// UploadFile sends data as a multipart upload. Uploads are not retried.
func (c *Client) UploadFile(ctx context.Context, name string, data []byte) (models.File, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(name))
	if err != nil {
		return models.File{}, fmt.Errorf("build upload: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return models.File{}, fmt.Errorf("build upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return models.File{}, fmt.Errorf("build upload: %w", err)
	}

	var file models.File
	err = c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/files",
		body:        body.Bytes(),
		contentType: writer.FormDataContentType(),
		out:         &file,
	})
	return file, err
}

func (c *Client) DownloadFile(ctx context.Context, id string) ([]byte, error) {
	var data []byte
	err := c.get(ctx, idPath("files", id), nil, &data)
	return data, err
}

// Settings loads the public settings and caches the branding in the session.
func (c *Client) Settings(ctx context.Context) (models.Settings, error) {
	var settings models.Settings
	if err := c.get(ctx, "/system/settings", nil, &settings); err != nil {
		return models.Settings{}, err
	}
	c.cacheOrganization(settings.Organization)
	return settings, nil
}

// Branding returns the organization to render. When settings cannot be
// fetched it falls back to the cached branding, then to the default brand.
func (c *Client) Branding(ctx context.Context) models.Organization {
	settings, err := c.Settings(ctx)
	if err == nil {
		return settings.Organization
	}
	c.logger.Warn().Err(err).Msg("Failed to load settings; using fallback branding")
	if c.session != nil {
		if org, ok := c.session.Organization(); ok {
			return org
		}
	}
	return models.DefaultOrganization()
}

func (c *Client) UpdateSettings(ctx context.Context, patch models.SettingsPatch) (models.Settings, error) {
	var settings models.Settings
	if err := c.send(ctx, http.MethodPatch, "/system/settings", patch, &settings); err != nil {
		return models.Settings{}, err
	}
	c.cacheOrganization(settings.Organization)
	return settings, nil
}

func (c *Client) cacheOrganization(org models.Organization) {
	if c.session == nil {
		return
	}
	if err := c.session.SetOrganization(org); err != nil {
		c.logger.Error().Err(err).Msg("Failed to cache branding")
	}
}

// MetricsQuery selects the metrics range. Either Preset or both dates are set;
// dates use the YYYY-MM-DD layout.
type MetricsQuery struct {
	BuildingID  int64
	Preset      string
	StartDate   string
	EndDate     string
	Granularity string
}

func (c *Client) Metrics(ctx context.Context, q MetricsQuery) (models.Metrics, error) {
	query := url.Values{}
	if q.BuildingID > 0 {
		query.Set("building_id", strconv.FormatInt(q.BuildingID, 10))
	}
	if q.Preset != "" {
		query.Set("date_range", q.Preset)
	}
	if q.StartDate != "" {
		query.Set("start_date", q.StartDate)
	}
	if q.EndDate != "" {
		query.Set("end_date", q.EndDate)
	}
	if q.Granularity != "" {
		query.Set("granularity", q.Granularity)
	}
	var metrics models.Metrics
	err := c.get(ctx, "/system/metrics", query, &metrics)
	return metrics, err
}

// Admins lists admins and owners.
func (c *Client) Admins(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.get(ctx, "/admin", nil, &users); err != nil {
		return nil, err
	}
	return users, validateEach(users)
}

// GrantRole makes a user an admin or owner. Owners only.
func (c *Client) GrantRole(ctx context.Context, req models.GrantRoleRequest) (models.User, error) {
	var user models.User
	err := c.send(ctx, http.MethodPost, "/admin", req, &user)
	return user, err
}

// RevokeRole demotes a staff member back to a regular user. Owners only.
func (c *Client) RevokeRole(ctx context.Context, userID int64) error {
	return c.send(ctx, http.MethodDelete, idPath("admin", userID), nil, nil)
}
