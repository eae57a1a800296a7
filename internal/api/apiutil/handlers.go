package apiutil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/api/authz"
)

type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

type HandlerError struct {
	Status  int
	Message string
	Err     error
}

func (e HandlerError) Error() string {
	return e.Message
}

func (e HandlerError) Unwrap() error {
	return e.Err
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MaxJSONBodyBytes bounds every JSON request body.
const MaxJSONBodyBytes = 1 << 20

var ErrBodyTooLarge = errors.New("request body too large")

// DecodeJSON decodes exactly one JSON document of at most MaxJSONBodyBytes
// into dst, rejecting unknown fields.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, MaxJSONBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ErrBodyTooLarge
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("missing request body")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteError writes {"error": message} with the given status.
func WriteError(w http.ResponseWriter, status int, message string) {
	_ = WriteJSON(w, status, ErrorResponse{Error: message})
}

// WriteHandlerError maps err onto a JSON error response. HandlerErrors keep
// their status and message, authz sentinels become 401/403 and anything else
// is logged and answered with fallback as a 500.
func WriteHandlerError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	logger := log.Ctx(r.Context())

	var herr HandlerError
	if errors.As(err, &herr) {
		if herr.Status >= http.StatusInternalServerError {
			logger.Error().Err(herr.Err).Msg(herr.Message)
		}
		WriteError(w, herr.Status, herr.Message)
		return
	}

	var ferr FieldError
	if errors.As(err, &ferr) {
		WriteError(w, http.StatusBadRequest, ferr.Error())
		return
	}

	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		WriteError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, authz.ErrForbidden):
		WriteError(w, http.StatusForbidden, "Forbidden")
	default:
		logger.Error().Err(err).Msg(fallback)
		WriteError(w, http.StatusInternalServerError, fallback)
	}
}

// RequireUser writes 401 and returns false when the request is anonymous.
func RequireUser(w http.ResponseWriter, r *http.Request) (*authz.AuthUser, bool) {
	user, err := authz.RequireUser(r.Context())
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	return user, true
}

// RequireStaff writes 401/403 and returns false unless the caller is an admin or owner.
func RequireStaff(w http.ResponseWriter, r *http.Request) bool {
	return requireRole(w, r, "staff", authz.RequireStaff)
}

// RequireOwner writes 401/403 and returns false unless the caller is an owner.
func RequireOwner(w http.ResponseWriter, r *http.Request) bool {
	return requireRole(w, r, "owner", authz.RequireOwner)
}

func requireRole(w http.ResponseWriter, r *http.Request, role string, check func(context.Context) error) bool {
	logger := log.Ctx(r.Context())
	user := authz.UserFromContext(r.Context())
	if err := check(r.Context()); err != nil {
		logEvent := logger.Warn().Str("required_role", role)
		if user != nil {
			logEvent = logEvent.Int64("user_id", user.ID)
		}
		switch {
		case errors.Is(err, authz.ErrUnauthenticated):
			logEvent.Msg("Access denied: unauthenticated")
			WriteError(w, http.StatusUnauthorized, "Unauthorized")
		case errors.Is(err, authz.ErrForbidden):
			logEvent.Msg("Access denied: forbidden")
			WriteError(w, http.StatusForbidden, "Forbidden")
		default:
			logger.Error().Err(err).Msg("Access check failed")
			WriteError(w, http.StatusInternalServerError, "Failed to authorize request")
		}
		return false
	}
	return true
}
