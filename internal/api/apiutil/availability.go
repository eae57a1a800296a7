package apiutil

import (
	"errors"
	"net/http"

	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/models"
)

// BookingError converts a booking rule violation into a HandlerError.
// It returns false for errors that are not booking rule violations.
func BookingError(err error) (HandlerError, bool) {
	switch {
	case errors.Is(err, models.ErrPlaceBusy), errors.Is(err, models.ErrUserBusy):
		return HandlerError{Status: http.StatusConflict, Message: err.Error(), Err: err}, true
	case errors.Is(err, models.ErrInvalidVisitWindow),
		errors.Is(err, models.ErrVisitTooShort),
		errors.Is(err, models.ErrVisitInPast),
		errors.Is(err, models.ErrVisitTooFarAhead),
		errors.Is(err, models.ErrOutsideOpenHours):
		return HandlerError{Status: http.StatusBadRequest, Message: err.Error(), Err: err}, true
	case errors.Is(err, models.ErrVisitCancelled),
		errors.Is(err, models.ErrVisitNotPending),
		errors.Is(err, models.ErrCheckinNotOpen),
		errors.Is(err, models.ErrAlreadyVisited),
		errors.Is(err, models.ErrVisitNotConfirmed),
		errors.Is(err, models.ErrVisitEnded):
		return HandlerError{Status: http.StatusConflict, Message: err.Error(), Err: err}, true
	default:
		return HandlerError{}, false
	}
}
