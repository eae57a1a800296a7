// Bindings for queries/visits.sql.

package dbgen

import (
	"context"
	"database/sql"
	"time"
)

const cancelExpiredPendingVisits = `-- name: CancelExpiredPendingVisits :execrows
UPDATE visits
SET status = 'cancelled',
    cancelled_at = ?,
    updated_at = CURRENT_TIMESTAMP
WHERE status = 'pending'
  AND start_time <= ?
`

type CancelExpiredPendingVisitsParams struct {
	CancelledAt sql.NullTime `json:"cancelled_at"`
	Before      time.Time    `json:"before"`
}

func (q *Queries) CancelExpiredPendingVisits(ctx context.Context, arg CancelExpiredPendingVisitsParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, cancelExpiredPendingVisits, arg.CancelledAt, arg.Before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const cancelVisit = `-- name: CancelVisit :one
UPDATE visits
SET status = 'cancelled',
    cancelled_at = ?,
    updated_at = CURRENT_TIMESTAMP
WHERE id = ?
RETURNING id, place_id, user_id, start_time, end_time, status, visited, visited_at, checkin_code, reminder_sent_at, cancelled_at, created_at, updated_at
`

type CancelVisitParams struct {
	CancelledAt sql.NullTime `json:"cancelled_at"`
	ID          int64        `json:"id"`
}

func (q *Queries) CancelVisit(ctx context.Context, arg CancelVisitParams) (Visit, error) {
	row := q.db.QueryRowContext(ctx, cancelVisit, arg.CancelledAt, arg.ID)
	var i Visit
	err := row.Scan(
		&i.ID,
		&i.PlaceID,
		&i.UserID,
		&i.StartTime,
		&i.EndTime,
		&i.Status,
		&i.Visited,
		&i.VisitedAt,
		&i.CheckinCode,
		&i.ReminderSentAt,
		&i.CancelledAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const confirmVisit = `-- name: ConfirmVisit :one
UPDATE visits
SET status = 'confirmed',
    updated_at = CURRENT_TIMESTAMP
WHERE id = ? AND status = 'pending'
RETURNING id, place_id, user_id, start_time, end_time, status, visited, visited_at, checkin_code, reminder_sent_at, cancelled_at, created_at, updated_at
`

func (q *Queries) ConfirmVisit(ctx context.Context, id int64) (Visit, error) {
	row := q.db.QueryRowContext(ctx, confirmVisit, id)
	var i Visit
	err := row.Scan(
		&i.ID,
		&i.PlaceID,
		&i.UserID,
		&i.StartTime,
		&i.EndTime,
		&i.Status,
		&i.Visited,
		&i.VisitedAt,
		&i.CheckinCode,
		&i.ReminderSentAt,
		&i.CancelledAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const countPlaceOverlaps = `-- name: CountPlaceOverlaps :one
SELECT COUNT(*) FROM visits
WHERE place_id = ?
  AND status != 'cancelled'
  AND start_time < ?
  AND end_time > ?
  AND id != ?
`

type CountPlaceOverlapsParams struct {
	PlaceID     int64     `json:"place_id"`
	WindowEnd   time.Time `json:"window_end"`
	WindowStart time.Time `json:"window_start"`
	ExcludeID   int64     `json:"exclude_id"`
}

func (q *Queries) CountPlaceOverlaps(ctx context.Context, arg CountPlaceOverlapsParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countPlaceOverlaps,
		arg.PlaceID,
		arg.WindowEnd,
		arg.WindowStart,
		arg.ExcludeID,
	)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countUserOverlaps = `-- name: CountUserOverlaps :one
SELECT COUNT(*) FROM visits
WHERE user_id = ?
  AND status != 'cancelled'
  AND start_time < ?
  AND end_time > ?
  AND id != ?
`

type CountUserOverlapsParams struct {
	UserID      int64     `json:"user_id"`
	WindowEnd   time.Time `json:"window_end"`
	WindowStart time.Time `json:"window_start"`
	ExcludeID   int64     `json:"exclude_id"`
}

func (q *Queries) CountUserOverlaps(ctx context.Context, arg CountUserOverlapsParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countUserOverlaps,
		arg.UserID,
		arg.WindowEnd,
		arg.WindowStart,
		arg.ExcludeID,
	)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createVisit = `-- name: CreateVisit :one
INSERT INTO visits (place_id, user_id, start_time, end_time, status, checkin_code)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id, place_id, user_id, start_time, end_time, status, visited, visited_at, checkin_code, reminder_sent_at, cancelled_at, created_at, updated_at
`

type CreateVisitParams struct {
	PlaceID     int64     `json:"place_id"`
	UserID      int64     `json:"user_id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Status      string    `json:"status"`
	CheckinCode string    `json:"checkin_code"`
}

func (q *Queries) CreateVisit(ctx context.Context, arg CreateVisitParams) (Visit, error) {
	row := q.db.QueryRowContext(ctx, createVisit,
		arg.PlaceID,
		arg.UserID,
		arg.StartTime,
		arg.EndTime,
		arg.Status,
		arg.CheckinCode,
	)
	var i Visit
	err := row.Scan(
		&i.ID,
		&i.PlaceID,
		&i.UserID,
		&i.StartTime,
		&i.EndTime,
		&i.Status,
		&i.Visited,
		&i.VisitedAt,
		&i.CheckinCode,
		&i.ReminderSentAt,
		&i.CancelledAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getVisit = `-- name: GetVisit :one
SELECT id, place_id, user_id, start_time, end_time, status, visited, visited_at, checkin_code, reminder_sent_at, cancelled_at, created_at, updated_at FROM visits
WHERE id = ?
`

func (q *Queries) GetVisit(ctx context.Context, id int64) (Visit, error) {
	row := q.db.QueryRowContext(ctx, getVisit, id)
	var i Visit
	err := row.Scan(
		&i.ID,
		&i.PlaceID,
		&i.UserID,
		&i.StartTime,
		&i.EndTime,
		&i.Status,
		&i.Visited,
		&i.VisitedAt,
		&i.CheckinCode,
		&i.ReminderSentAt,
		&i.CancelledAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getVisitByCheckinCode = `-- name: GetVisitByCheckinCode :one
SELECT v.id, v.place_id, v.user_id, v.start_time, v.end_time, v.status, v.visited, v.visited_at, v.checkin_code, v.reminder_sent_at, v.cancelled_at, v.created_at, v.updated_at FROM visits v
JOIN places p ON p.id = v.place_id
JOIN floors f ON f.id = p.floor_id
WHERE v.checkin_code = ? AND f.building_id = ?
`

type GetVisitByCheckinCodeParams struct {
	CheckinCode string `json:"checkin_code"`
	BuildingID  int64  `json:"building_id"`
}

func (q *Queries) GetVisitByCheckinCode(ctx context.Context, arg GetVisitByCheckinCodeParams) (Visit, error) {
	row := q.db.QueryRowContext(ctx, getVisitByCheckinCode, arg.CheckinCode, arg.BuildingID)
	var i Visit
	err := row.Scan(
		&i.ID,
		&i.PlaceID,
		&i.UserID,
		&i.StartTime,
		&i.EndTime,
		&i.Status,
		&i.Visited,
		&i.VisitedAt,
		&i.CheckinCode,
		&i.ReminderSentAt,
		&i.CancelledAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listUserVisits = `-- name: ListUserVisits :many
SELECT v.id, v.place_id, v.user_id, v.start_time, v.end_time, v.status, v.visited, v.visited_at, v.checkin_code, v.reminder_sent_at, v.cancelled_at, v.created_at, v.updated_at, p.name AS place_name, f.id AS floor_id, f.level AS floor_level, b.id AS building_id, b.name AS building_name, b.timezone FROM visits v
JOIN places p ON p.id = v.place_id
JOIN floors f ON f.id = p.floor_id
JOIN buildings b ON b.id = f.building_id
WHERE v.user_id = ?
ORDER BY v.start_time DESC
`

func (q *Queries) ListUserVisits(ctx context.Context, userID int64) ([]ListUserVisitsRow, error) {
	rows, err := q.db.QueryContext(ctx, listUserVisits, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListUserVisitsRow{}
	for rows.Next() {
		var i ListUserVisitsRow
		if err := rows.Scan(
			&i.ID,
			&i.PlaceID,
			&i.UserID,
			&i.StartTime,
			&i.EndTime,
			&i.Status,
			&i.Visited,
			&i.VisitedAt,
			&i.CheckinCode,
			&i.ReminderSentAt,
			&i.CancelledAt,
			&i.CreatedAt,
			&i.UpdatedAt,
			&i.PlaceName,
			&i.FloorID,
			&i.FloorLevel,
			&i.BuildingID,
			&i.BuildingName,
			&i.Timezone,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listVisitsForPlace = `-- name: ListVisitsForPlace :many
SELECT id, place_id, user_id, start_time, end_time, status, visited, visited_at, checkin_code, reminder_sent_at, cancelled_at, created_at, updated_at FROM visits
WHERE place_id = ?
  AND status != 'cancelled'
  AND start_time < ?
  AND end_time > ?
ORDER BY start_time
`

type ListVisitsForPlaceParams struct {
	PlaceID     int64     `json:"place_id"`
	WindowEnd   time.Time `json:"window_end"`
	WindowStart time.Time `json:"window_start"`
}

func (q *Queries) ListVisitsForPlace(ctx context.Context, arg ListVisitsForPlaceParams) ([]Visit, error) {
	rows, err := q.db.QueryContext(ctx, listVisitsForPlace, arg.PlaceID, arg.WindowEnd, arg.WindowStart)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Visit{}
	for rows.Next() {
		var i Visit
		if err := rows.Scan(
			&i.ID,
			&i.PlaceID,
			&i.UserID,
			&i.StartTime,
			&i.EndTime,
			&i.Status,
			&i.Visited,
			&i.VisitedAt,
			&i.CheckinCode,
			&i.ReminderSentAt,
			&i.CancelledAt,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listVisitsInRange = `-- name: ListVisitsInRange :many
SELECT v.id, v.place_id, v.user_id, v.start_time, v.end_time, v.status, v.visited, v.visited_at, v.checkin_code, v.reminder_sent_at, v.cancelled_at, v.created_at, v.updated_at, f.building_id FROM visits v
JOIN places p ON p.id = v.place_id
JOIN floors f ON f.id = p.floor_id
WHERE (? = 0 OR f.building_id = ?)
  AND v.start_time < ?
  AND v.end_time > ?
ORDER BY v.start_time
`

type ListVisitsInRangeParams struct {
	BuildingID  int64     `json:"building_id"`
	WindowEnd   time.Time `json:"window_end"`
	WindowStart time.Time `json:"window_start"`
}

func (q *Queries) ListVisitsInRange(ctx context.Context, arg ListVisitsInRangeParams) ([]ListVisitsInRangeRow, error) {
	rows, err := q.db.QueryContext(ctx, listVisitsInRange, arg.BuildingID, arg.BuildingID, arg.WindowEnd, arg.WindowStart)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListVisitsInRangeRow{}
	for rows.Next() {
		var i ListVisitsInRangeRow
		if err := rows.Scan(
			&i.ID,
			&i.PlaceID,
			&i.UserID,
			&i.StartTime,
			&i.EndTime,
			&i.Status,
			&i.Visited,
			&i.VisitedAt,
			&i.CheckinCode,
			&i.ReminderSentAt,
			&i.CancelledAt,
			&i.CreatedAt,
			&i.UpdatedAt,
			&i.BuildingID,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listVisitsNeedingReminder = `-- name: ListVisitsNeedingReminder :many
SELECT v.id, v.start_time, v.end_time, u.name AS user_name, u.email AS user_email, p.name AS place_name, b.name AS building_name, b.timezone FROM visits v
JOIN users u ON u.id = v.user_id
JOIN places p ON p.id = v.place_id
JOIN floors f ON f.id = p.floor_id
JOIN buildings b ON b.id = f.building_id
WHERE v.status = 'confirmed'
  AND v.reminder_sent_at IS NULL
  AND v.start_time >= ?
  AND v.start_time < ?
ORDER BY v.start_time
`

type ListVisitsNeedingReminderParams struct {
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
}

func (q *Queries) ListVisitsNeedingReminder(ctx context.Context, arg ListVisitsNeedingReminderParams) ([]ListVisitsNeedingReminderRow, error) {
	rows, err := q.db.QueryContext(ctx, listVisitsNeedingReminder, arg.WindowStart, arg.WindowEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListVisitsNeedingReminderRow{}
	for rows.Next() {
		var i ListVisitsNeedingReminderRow
		if err := rows.Scan(
			&i.ID,
			&i.StartTime,
			&i.EndTime,
			&i.UserName,
			&i.UserEmail,
			&i.PlaceName,
			&i.BuildingName,
			&i.Timezone,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const markVisitVisited = `-- name: MarkVisitVisited :one
UPDATE visits
SET visited = 1,
    visited_at = ?,
    updated_at = CURRENT_TIMESTAMP
WHERE id = ?
RETURNING id, place_id, user_id, start_time, end_time, status, visited, visited_at, checkin_code, reminder_sent_at, cancelled_at, created_at, updated_at
`

type MarkVisitVisitedParams struct {
	VisitedAt sql.NullTime `json:"visited_at"`
	ID        int64        `json:"id"`
}

func (q *Queries) MarkVisitVisited(ctx context.Context, arg MarkVisitVisitedParams) (Visit, error) {
	row := q.db.QueryRowContext(ctx, markVisitVisited, arg.VisitedAt, arg.ID)
	var i Visit
	err := row.Scan(
		&i.ID,
		&i.PlaceID,
		&i.UserID,
		&i.StartTime,
		&i.EndTime,
		&i.Status,
		&i.Visited,
		&i.VisitedAt,
		&i.CheckinCode,
		&i.ReminderSentAt,
		&i.CancelledAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const markVisitReminderSent = `-- name: MarkVisitReminderSent :execrows
UPDATE visits
SET reminder_sent_at = ?
WHERE id = ?
  AND start_time = ?
  AND reminder_sent_at IS NULL
`

type MarkVisitReminderSentParams struct {
	ReminderSentAt sql.NullTime `json:"reminder_sent_at"`
	ID             int64        `json:"id"`
	StartTime      time.Time    `json:"start_time"`
}

func (q *Queries) MarkVisitReminderSent(ctx context.Context, arg MarkVisitReminderSentParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, markVisitReminderSent, arg.ReminderSentAt, arg.ID, arg.StartTime)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const rescheduleVisit = `-- name: RescheduleVisit :one
UPDATE visits
SET start_time = ?,
    end_time = ?,
    status = ?,
    reminder_sent_at = NULL,
    updated_at = CURRENT_TIMESTAMP
WHERE id = ?
RETURNING id, place_id, user_id, start_time, end_time, status, visited, visited_at, checkin_code, reminder_sent_at, cancelled_at, created_at, updated_at
`

type RescheduleVisitParams struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    string    `json:"status"`
	ID        int64     `json:"id"`
}

func (q *Queries) RescheduleVisit(ctx context.Context, arg RescheduleVisitParams) (Visit, error) {
	row := q.db.QueryRowContext(ctx, rescheduleVisit, arg.StartTime, arg.EndTime, arg.Status, arg.ID)
	var i Visit
	err := row.Scan(
		&i.ID,
		&i.PlaceID,
		&i.UserID,
		&i.StartTime,
		&i.EndTime,
		&i.Status,
		&i.Visited,
		&i.VisitedAt,
		&i.CheckinCode,
		&i.ReminderSentAt,
		&i.CancelledAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

type ListUserVisitsRow struct {
	ID             int64        `json:"id"`
	PlaceID        int64        `json:"place_id"`
	UserID         int64        `json:"user_id"`
	StartTime      time.Time    `json:"start_time"`
	EndTime        time.Time    `json:"end_time"`
	Status         string       `json:"status"`
	Visited        bool         `json:"visited"`
	VisitedAt      sql.NullTime `json:"visited_at"`
	CheckinCode    string       `json:"checkin_code"`
	ReminderSentAt sql.NullTime `json:"reminder_sent_at"`
	CancelledAt    sql.NullTime `json:"cancelled_at"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
	PlaceName      string       `json:"place_name"`
	FloorID        int64        `json:"floor_id"`
	FloorLevel     int64        `json:"floor_level"`
	BuildingID     int64        `json:"building_id"`
	BuildingName   string       `json:"building_name"`
	Timezone       string       `json:"timezone"`
}

type ListVisitsInRangeRow struct {
	ID             int64        `json:"id"`
	PlaceID        int64        `json:"place_id"`
	UserID         int64        `json:"user_id"`
	StartTime      time.Time    `json:"start_time"`
	EndTime        time.Time    `json:"end_time"`
	Status         string       `json:"status"`
	Visited        bool         `json:"visited"`
	VisitedAt      sql.NullTime `json:"visited_at"`
	CheckinCode    string       `json:"checkin_code"`
	ReminderSentAt sql.NullTime `json:"reminder_sent_at"`
	CancelledAt    sql.NullTime `json:"cancelled_at"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
	BuildingID     int64        `json:"building_id"`
}

type ListVisitsNeedingReminderRow struct {
	ID           int64     `json:"id"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	UserName     string    `json:"user_name"`
	UserEmail    string    `json:"user_email"`
	PlaceName    string    `json:"place_name"`
	BuildingName string    `json:"building_name"`
	Timezone     string    `json:"timezone"`
}
