package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/models"
)

// Register creates an account and stores the returned token in the session.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.send(ctx, http.MethodPost, "/auth/register", req, &resp); err != nil {
		return models.AuthResponse{}, err
	}
	return resp, c.saveAuth(resp)
}

// Login exchanges credentials for a token and stores it in the session.
func (c *Client) Login(ctx context.Context, email, password string) (models.AuthResponse, error) {
	var resp models.AuthResponse
	err := c.send(ctx, http.MethodPost, "/auth/login", models.LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return models.AuthResponse{}, err
	}
	return resp, c.saveAuth(resp)
}

// Logout forgets the token locally. Tokens are stateless so the server is
// not contacted.
func (c *Client) Logout() error {
	if c.session == nil {
		return nil
	}
	return c.session.Clear()
}

func (c *Client) saveAuth(resp models.AuthResponse) error {
	if c.session == nil {
		return nil
	}
	if err := c.session.SetAuth(resp.Token, resp.User); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Me loads the current user and refreshes the cached copy.
func (c *Client) Me(ctx context.Context) (models.User, error) {
	var user models.User
	if err := c.get(ctx, "/clients/@me", nil, &user); err != nil {
		return models.User{}, err
	}
	return user, c.cacheUser(user)
}

// UpdateMe applies a partial profile update. A password change revokes the
// current token, so the client logs in again with the new password.
func (c *Client) UpdateMe(ctx context.Context, req models.UpdateProfileRequest) (models.User, error) {
	var user models.User
	if err := c.send(ctx, http.MethodPatch, "/clients/@me", req, &user); err != nil {
		return models.User{}, err
	}
	if req.Password != nil {
		resp, err := c.Login(ctx, user.Email, *req.Password)
		if err != nil {
			return user, fmt.Errorf("log in after password change: %w", err)
		}
		return resp.User, nil
	}
	return user, c.cacheUser(user)
}

func (c *Client) cacheUser(user models.User) error {
	if c.session == nil || c.session.Token() == "" {
		return nil
	}
	if err := c.session.SetAuth(c.session.Token(), user); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// MyVisitsFilter narrows the personal bookings list.
type MyVisitsFilter struct {
	Status       models.VisitStatus
	UpcomingOnly bool
}

// MyVisits lists the current user's bookings.
func (c *Client) MyVisits(ctx context.Context, filter MyVisitsFilter) ([]models.VisitDetails, error) {
	query := url.Values{}
	if filter.Status != "" {
		query.Set("status", string(filter.Status))
	}
	if filter.UpcomingOnly {
		query.Set("upcoming", "true")
	}
	var visits []models.VisitDetails
	if err := c.get(ctx, "/clients/@me/visits", query, &visits); err != nil {
		return nil, err
	}
	return visits, validateEach(visits)
}
