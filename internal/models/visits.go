// internal/models/visits.go
package models

import (
	"context"
	"fmt"
	"time"

	dbgen "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db/generated"
)

// VisitQuerier is the subset of queries ScheduleVisit needs.
type VisitQuerier interface {
	CountPlaceOverlaps(ctx context.Context, arg dbgen.CountPlaceOverlapsParams) (int64, error)
	CountUserOverlaps(ctx context.Context, arg dbgen.CountUserOverlapsParams) (int64, error)
	CreateVisit(ctx context.Context, arg dbgen.CreateVisitParams) (dbgen.Visit, error)
	RescheduleVisit(ctx context.Context, arg dbgen.RescheduleVisitParams) (dbgen.Visit, error)
}

type ScheduleVisitParams struct {
	// VisitID is zero for a new booking and the rescheduled visit otherwise.
	VisitID     int64
	PlaceID     int64
	UserID      int64
	Start       time.Time
	End         time.Time
	Status      VisitStatus
	CheckinCode string
}

// ScheduleVisit books or reschedules a visit after checking that neither the
// place nor the user has an overlapping non-cancelled visit.
// Callers must pass a transactional querier so the check and write are atomic.
func ScheduleVisit(ctx context.Context, q VisitQuerier, params ScheduleVisitParams) (dbgen.Visit, error) {
	if q == nil {
		return dbgen.Visit{}, fmt.Errorf("queries are required")
	}
	if params.PlaceID <= 0 {
		return dbgen.Visit{}, fmt.Errorf("place_id must be a positive integer")
	}
	if params.UserID <= 0 {
		return dbgen.Visit{}, fmt.Errorf("user_id must be a positive integer")
	}
	if !params.Start.Before(params.End) {
		return dbgen.Visit{}, ErrInvalidVisitWindow
	}
	if params.Status == "" {
		params.Status = VisitConfirmed
	}

	start, end := params.Start.UTC(), params.End.UTC()

	placeOverlaps, err := q.CountPlaceOverlaps(ctx, dbgen.CountPlaceOverlapsParams{
		PlaceID:     params.PlaceID,
		WindowEnd:   end,
		WindowStart: start,
		ExcludeID:   params.VisitID,
	})
	if err != nil {
		return dbgen.Visit{}, err
	}
	if placeOverlaps > 0 {
		return dbgen.Visit{}, ErrPlaceBusy
	}

	userOverlaps, err := q.CountUserOverlaps(ctx, dbgen.CountUserOverlapsParams{
		UserID:      params.UserID,
		WindowEnd:   end,
		WindowStart: start,
		ExcludeID:   params.VisitID,
	})
	if err != nil {
		return dbgen.Visit{}, err
	}
	if userOverlaps > 0 {
		return dbgen.Visit{}, ErrUserBusy
	}

	if params.VisitID > 0 {
		return q.RescheduleVisit(ctx, dbgen.RescheduleVisitParams{
			StartTime: start,
			EndTime:   end,
			Status:    string(params.Status),
			ID:        params.VisitID,
		})
	}

	if params.CheckinCode == "" {
		return dbgen.Visit{}, fmt.Errorf("checkin_code is required")
	}
	return q.CreateVisit(ctx, dbgen.CreateVisitParams{
		PlaceID:     params.PlaceID,
		UserID:      params.UserID,
		StartTime:   start,
		EndTime:     end,
		Status:      string(params.Status),
		CheckinCode: params.CheckinCode,
	})
}
