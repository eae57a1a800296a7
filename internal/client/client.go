// Package client is a typed Go client for the coworking REST API.
//
// Responses decode into internal/models types and are validated before they
// are returned. A 401 or 403 from the server clears the session (forced
// logout) and surfaces as ErrUnauthorized or ErrForbidden. Idempotent
// requests are retried with exponential backoff on network errors, 5xx and
// 429 responses.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/models"
)

const (
	defaultTimeout        = 30 * time.Second
	defaultMaxRetries     = 3
	defaultInitialBackoff = 250 * time.Millisecond
	defaultMaxBackoff     = 5 * time.Second
	maxErrorBodyBytes     = 64 << 10
)

var (
	ErrUnauthorized = errors.New("not signed in or session expired")
	ErrForbidden    = errors.New("not allowed")
)

// APIError is a non-2xx response other than 401/403.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Session is the client-side state the client reads the token from and
// writes auth results and branding to.
type Session interface {
	Token() string
	SetAuth(token string, user models.User) error
	SetOrganization(org models.Organization) error
	Organization() (models.Organization, bool)
	Clear() error
}

type Options struct {
	HTTPClient *http.Client
	// Session may be nil for anonymous use.
	Session Session
	// OnLogout runs after a forced logout with the error that caused it.
	OnLogout       func(error)
	MaxRetries     uint64
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Logger         *zerolog.Logger
}

type Client struct {
	baseURL        *url.URL
	http           *http.Client
	session        Session
	onLogout       func(error)
	maxRetries     uint64
	initialBackoff time.Duration
	maxBackoff     time.Duration
	logger         zerolog.Logger
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts Options) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http or https")
	}

	c := &Client{
		baseURL:        parsed,
		http:           opts.HTTPClient,
		session:        opts.Session,
		onLogout:       opts.OnLogout,
		maxRetries:     opts.MaxRetries,
		initialBackoff: opts.InitialBackoff,
		maxBackoff:     opts.MaxBackoff,
		logger:         zerolog.Nop(),
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: defaultTimeout}
	}
	if c.maxRetries == 0 {
		c.maxRetries = defaultMaxRetries
	}
	if c.initialBackoff <= 0 {
		c.initialBackoff = defaultInitialBackoff
	}
	if c.maxBackoff <= 0 {
		c.maxBackoff = defaultMaxBackoff
	}
	if opts.Logger != nil {
		c.logger = opts.Logger.With().Str("component", "api_client").Logger()
	}
	return c, nil
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
	// out receives the decoded JSON body, or the raw bytes when it is a *[]byte.
	out any
}

type validator interface {
	Validate() error
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, request{method: http.MethodGet, path: path, query: query, out: out})
}

func (c *Client) send(ctx context.Context, method, path string, in, out any) error {
	req := request{method: method, path: path, out: out}
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		req.body = data
		req.contentType = "application/json"
	}
	return c.do(ctx, req)
}

func (c *Client) do(ctx context.Context, req request) error {
	idempotent := isIdempotent(req.method)
	attempt := 0

	operation := func() error {
		attempt++
		err := c.once(ctx, req)
		if err == nil {
			return nil
		}
		if !idempotent || !isTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.initialBackoff
	policy.MaxInterval = c.maxBackoff
	policy.MaxElapsedTime = 0

	notify := func(err error, wait time.Duration) {
		c.logger.Warn().Err(err).
			Str("method", req.method).
			Str("path", req.path).
			Int("attempt", attempt).
			Dur("retry_in", wait).
			Msg("Retrying request")
	}

	return backoff.RetryNotify(operation, backoff.WithContext(backoff.WithMaxRetries(policy, c.maxRetries), ctx), notify)
}

func (c *Client) once(ctx context.Context, req request) error {
	target := c.baseURL.JoinPath(req.path)
	if len(req.query) > 0 {
		target.RawQuery = req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, target.String(), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if c.session != nil {
		if token := c.session.Token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return &transportError{err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return c.forceLogout(ErrUnauthorized, resp)
	case resp.StatusCode == http.StatusForbidden:
		return c.forceLogout(ErrForbidden, resp)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return readAPIError(resp)
	}

	if req.out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if raw, ok := req.out.(*[]byte); ok {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return &transportError{err: err}
		}
		*raw = data
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(req.out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", req.method, req.path, err)
	}
	if v, ok := req.out.(validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("invalid %s %s response: %w", req.method, req.path, err)
		}
	}
	return nil
}

// forceLogout clears the session and reports sentinel wrapped with the
// server's message.
func (c *Client) forceLogout(sentinel error, resp *http.Response) error {
	apiErr := readAPIError(resp)
	err := fmt.Errorf("%w: %s", sentinel, apiErr.Message)
	if c.session != nil && c.session.Token() != "" {
		if clearErr := c.session.Clear(); clearErr != nil {
			c.logger.Error().Err(clearErr).Msg("Failed to clear session")
		}
		if c.onLogout != nil {
			c.onLogout(err)
		}
	}
	return err
}

func readAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
		apiErr.Message = payload.Error
	} else {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

type transportError struct {
	err error
}

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var tErr *transportError
	if errors.As(err, &tErr) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusTooManyRequests || apiErr.Status >= http.StatusInternalServerError
	}
	return false
}

func isIdempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete, http.MethodOptions:
		return true
	default:
		return false
	}
}

func validateEach[T validator](items []T) error {
	for i, item := range items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}

func idPath(parts ...any) string {
	segments := make([]string, len(parts))
	for i, p := range parts {
		segments[i] = fmt.Sprint(p)
	}
	return "/" + strings.Join(segments, "/")
}
