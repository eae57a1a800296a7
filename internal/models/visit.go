package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	dbgen "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db/generated"
)

type VisitStatus string

const (
	VisitConfirmed VisitStatus = "confirmed"
	VisitPending   VisitStatus = "pending"
	VisitCancelled VisitStatus = "cancelled"
)

const (
	// CheckinLeadTime is how early before start a visitor may check in.
	CheckinLeadTime = 15 * time.Minute
	// CheckinPayloadPrefix prefixes the check-in code inside QR codes.
	CheckinPayloadPrefix = "visit:"
)

var (
	ErrInvalidVisitWindow = errors.New("visit start must be before end")
	ErrVisitTooShort      = errors.New("visit is shorter than the minimum duration")
	ErrVisitInPast        = errors.New("visit cannot start in the past")
	ErrVisitTooFarAhead   = errors.New("visit starts beyond the booking horizon")
	ErrOutsideOpenHours   = errors.New("visit is outside the building's open hours")
	ErrPlaceBusy          = errors.New("place is already booked for this time")
	ErrUserBusy           = errors.New("you already have a booking at this time")
	ErrVisitCancelled     = errors.New("visit is cancelled")
	ErrVisitNotPending    = errors.New("visit is not pending")
	ErrCheckinNotOpen     = errors.New("check-in is not open for this visit")
	ErrAlreadyVisited     = errors.New("visit is already checked in")
	ErrVisitNotConfirmed  = errors.New("visit is not confirmed yet")
	ErrVisitEnded         = errors.New("visit has already ended")
)

type Visit struct {
	ID          int64       `json:"id"`
	PlaceID     int64       `json:"placeId"`
	UserID      *int64      `json:"userId,omitempty"`
	Start       time.Time   `json:"start"`
	End         time.Time   `json:"end"`
	Status      VisitStatus `json:"status"`
	Visited     bool        `json:"visited"`
	VisitedAt   *time.Time  `json:"visitedAt,omitempty"`
	CheckinCode string      `json:"checkinCode,omitempty"`
}

func (v Visit) Validate() error {
	if v.ID <= 0 {
		return fmt.Errorf("visit id must be positive")
	}
	if !v.Start.Before(v.End) {
		return ErrInvalidVisitWindow
	}
	switch v.Status {
	case VisitConfirmed, VisitPending, VisitCancelled:
		return nil
	default:
		return fmt.Errorf("visit status %q is unknown", v.Status)
	}
}

// VisitFromDB converts a stored visit. Owner details (user id and check-in
// code) are only included when showOwner is set.
func VisitFromDB(row dbgen.Visit, showOwner bool) Visit {
	v := Visit{
		ID:      row.ID,
		PlaceID: row.PlaceID,
		Start:   row.StartTime.UTC(),
		End:     row.EndTime.UTC(),
		Status:  VisitStatus(row.Status),
		Visited: row.Visited,
	}
	if row.VisitedAt.Valid {
		at := row.VisitedAt.Time.UTC()
		v.VisitedAt = &at
	}
	if showOwner {
		userID := row.UserID
		v.UserID = &userID
		v.CheckinCode = row.CheckinCode
	}
	return v
}

// VisitDetails is a visit with the names of where it takes place, used by
// the personal bookings list.
type VisitDetails struct {
	Visit
	PlaceName    string `json:"placeName"`
	FloorID      int64  `json:"floorId"`
	FloorLevel   int64  `json:"floorLevel"`
	BuildingID   int64  `json:"buildingId"`
	BuildingName string `json:"buildingName"`
	Timezone     string `json:"timezone"`
}

func VisitDetailsFromDB(row dbgen.ListUserVisitsRow) VisitDetails {
	visit := VisitFromDB(dbgen.Visit{
		ID:          row.ID,
		PlaceID:     row.PlaceID,
		UserID:      row.UserID,
		StartTime:   row.StartTime,
		EndTime:     row.EndTime,
		Status:      row.Status,
		Visited:     row.Visited,
		VisitedAt:   row.VisitedAt,
		CheckinCode: row.CheckinCode,
	}, true)
	return VisitDetails{
		Visit:        visit,
		PlaceName:    row.PlaceName,
		FloorID:      row.FloorID,
		FloorLevel:   row.FloorLevel,
		BuildingID:   row.BuildingID,
		BuildingName: row.BuildingName,
		Timezone:     row.Timezone,
	}
}

type VisitRequest struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type CheckinRequest struct {
	Code string `json:"code"`
}

// BookingPolicy holds the booking rules enforced on create and reschedule.
type BookingPolicy struct {
	MinDuration         time.Duration
	Horizon             time.Duration
	RequireConfirmation bool
}

// Check validates a requested window against the policy and the building's
// open hours. Times are compared in UTC; hours in loc.
func (p BookingPolicy) Check(start, end, now time.Time, hours OpenHours, loc *time.Location) error {
	if !start.Before(end) {
		return ErrInvalidVisitWindow
	}
	if p.MinDuration > 0 && end.Sub(start) < p.MinDuration {
		return ErrVisitTooShort
	}
	if start.Before(now) {
		return ErrVisitInPast
	}
	if p.Horizon > 0 && start.After(now.Add(p.Horizon)) {
		return ErrVisitTooFarAhead
	}
	if !hours.Contains(start, end, loc) {
		return ErrOutsideOpenHours
	}
	return nil
}

// InitialStatus is the status of a freshly booked or rescheduled visit.
func (p BookingPolicy) InitialStatus() VisitStatus {
	if p.RequireConfirmation {
		return VisitPending
	}
	return VisitConfirmed
}

// CanCheckIn reports whether the visit accepts a check-in at now: from
// CheckinLeadTime before start until end, for confirmed visits only.
func CanCheckIn(row dbgen.Visit, now time.Time) error {
	switch {
	case VisitStatus(row.Status) == VisitCancelled:
		return ErrVisitCancelled
	case VisitStatus(row.Status) == VisitPending:
		return ErrVisitNotConfirmed
	case row.Visited:
		return ErrAlreadyVisited
	case now.Before(row.StartTime.Add(-CheckinLeadTime)) || !now.Before(row.EndTime):
		return ErrCheckinNotOpen
	default:
		return nil
	}
}

// CanChange reports whether a visit may still be cancelled or rescheduled at
// now. Cancelled, checked-in and finished visits are final.
func CanChange(row dbgen.Visit, now time.Time) error {
	switch {
	case VisitStatus(row.Status) == VisitCancelled:
		return ErrVisitCancelled
	case row.Visited:
		return ErrAlreadyVisited
	case !now.Before(row.EndTime):
		return ErrVisitEnded
	default:
		return nil
	}
}

// CheckinPayload is the text encoded into a visit's QR code.
func CheckinPayload(code string) string {
	return CheckinPayloadPrefix + code
}

// ParseCheckinPayload accepts a scanned QR payload or a bare code.
func ParseCheckinPayload(raw string) (string, error) {
	code := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), CheckinPayloadPrefix))
	if code == "" {
		return "", fmt.Errorf("code is required")
	}
	return code, nil
}
