package system

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/api/apiutil"
	dbgen "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db/generated"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/models"
)

const (
	metricsDateLayout   = "2006-01-02"
	defaultRangeDays    = 30
	dateRangeToday      = "today"
	dateRangeLast7Days  = "last_7_days"
	dateRangeLast30Days = "last_30_days"
	dateRangeThisMonth  = "this_month"
	dateRangeThisYear   = "this_year"
	dateRangeCustom     = "custom"

	granularityDay   = "day"
	granularityWeek  = "week"
	granularityMonth = "month"
)

// dateRange is a half-open span of whole local days.
type dateRange struct {
	start     time.Time
	end       time.Time
	preset    string
	startDate string
	endDate   string
}

func (d dateRange) days() float64 {
	return math.Round(d.end.Sub(d.start).Hours() / 24)
}

func (d dateRange) label() string {
	return fmt.Sprintf("%s to %s", d.startDate, d.endDate)
}

// GET /system/metrics
func HandleMetrics(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if !apiutil.RequireStaff(w, r) {
		return
	}
	database := store
	if database == nil {
		logger.Error().Msg("System handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	var buildingID int64
	if raw := strings.TrimSpace(r.URL.Query().Get("building_id")); raw != "" && raw != "0" {
		id, err := apiutil.ParsePositiveInt64Field(raw, "building_id")
		if err != nil {
			apiutil.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		buildingID = id
	}
	granularity, err := parseGranularity(r.URL.Query().Get("granularity"))
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), systemQueryTimeout)
	defer cancel()

	buildings, err := metricsBuildings(ctx, database.Queries, buildingID)
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to load metrics")
		return
	}
	loc := time.UTC
	if buildingID > 0 {
		loc = buildings[0].Location()
	}

	window, err := parseDateRange(r, nowFunc(), loc)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := database.Queries.ListVisitsInRange(ctx, dbgen.ListVisitsInRangeParams{
		BuildingID:  buildingID,
		WindowEnd:   window.end.UTC(),
		WindowStart: window.start.UTC(),
	})
	if err != nil {
		logger.Error().Err(err).Int64("building_id", buildingID).Msg("Failed to list visits for metrics")
		apiutil.WriteError(w, http.StatusInternalServerError, "Failed to load metrics")
		return
	}

	metrics := summarizeVisits(rows, window, loc, granularity, nowFunc())
	metrics.BuildingID = buildingID
	for _, b := range buildings {
		places, err := database.Queries.CountPlaces(ctx, dbgen.CountPlacesParams{BuildingID: b.ID})
		if err != nil {
			logger.Error().Err(err).Int64("building_id", b.ID).Msg("Failed to count places for metrics")
			apiutil.WriteError(w, http.StatusInternalServerError, "Failed to load metrics")
			return
		}
		metrics.Places += places
		metrics.AvailableHours += float64(places) * b.DailyHours() * window.days()
	}
	if metrics.AvailableHours > 0 {
		metrics.UtilizationRate = math.Min(1, metrics.BookedHours/metrics.AvailableHours)
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, metrics); err != nil {
		logger.Error().Err(err).Int64("building_id", buildingID).Msg("Failed to write metrics response")
	}
}

// metricsBuildings returns the one requested building, or all of them when
// buildingID is zero.
func metricsBuildings(ctx context.Context, q *dbgen.Queries, buildingID int64) ([]models.Building, error) {
	if buildingID > 0 {
		row, err := q.GetBuilding(ctx, buildingID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, apiutil.HandlerError{Status: http.StatusNotFound, Message: "Coworking not found", Err: err}
			}
			return nil, err
		}
		return []models.Building{models.BuildingFromDB(row, nil, nil)}, nil
	}
	rows, err := q.ListBuildings(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]models.Building, 0, len(rows))
	for _, row := range rows {
		result = append(result, models.BuildingFromDB(row, nil, nil))
	}
	return result, nil
}

// summarizeVisits computes counts, rates and per-bucket totals. Visits are
// bucketed by their local start; booked hours only count the part of a visit
// inside the window.
func summarizeVisits(rows []dbgen.ListVisitsInRangeRow, window dateRange, loc *time.Location, granularity string, now time.Time) models.Metrics {
	metrics := models.Metrics{
		DateRange:   window.label(),
		Preset:      window.preset,
		StartDate:   window.startDate,
		EndDate:     window.endDate,
		Granularity: granularity,
		Buckets:     emptyBuckets(window, loc, granularity),
	}
	bucketIndex := make(map[int64]int, len(metrics.Buckets))
	for i, b := range metrics.Buckets {
		bucketIndex[b.Start.Unix()] = i
	}

	var endedConfirmed, noShows int64
	for _, row := range rows {
		metrics.TotalVisits++
		status := models.VisitStatus(row.Status)
		switch status {
		case models.VisitConfirmed:
			metrics.Confirmed++
		case models.VisitPending:
			metrics.Pending++
		case models.VisitCancelled:
			metrics.Cancelled++
		}
		if row.Visited {
			metrics.Checkins++
		}
		if status == models.VisitConfirmed && !row.EndTime.After(now) {
			endedConfirmed++
			if !row.Visited {
				noShows++
			}
		}
		if status != models.VisitCancelled {
			start := maxTime(row.StartTime, window.start)
			end := minTime(row.EndTime, window.end)
			if end.After(start) {
				metrics.BookedHours += end.Sub(start).Hours()
			}
		}

		idx, ok := bucketIndex[bucketStart(row.StartTime.In(loc), granularity).Unix()]
		if !ok {
			continue
		}
		bucket := &metrics.Buckets[idx]
		if status == models.VisitCancelled {
			bucket.Cancelled++
		} else {
			bucket.Visits++
		}
		if row.Visited {
			bucket.Checkins++
		}
	}

	if metrics.TotalVisits > 0 {
		metrics.CancellationRate = float64(metrics.Cancelled) / float64(metrics.TotalVisits)
	}
	if endedConfirmed > 0 {
		metrics.NoShowRate = float64(noShows) / float64(endedConfirmed)
	}
	metrics.BookedHours = math.Round(metrics.BookedHours*100) / 100
	return metrics
}

func emptyBuckets(window dateRange, loc *time.Location, granularity string) []models.MetricsBucket {
	var buckets []models.MetricsBucket
	for start := bucketStart(window.start.In(loc), granularity); start.Before(window.end); start = nextBucket(start, granularity) {
		buckets = append(buckets, models.MetricsBucket{
			Label: bucketLabel(start, granularity),
			Start: start,
		})
	}
	return buckets
}

func bucketStart(t time.Time, granularity string) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	switch granularity {
	case granularityWeek:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case granularityMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	default:
		return day
	}
}

func nextBucket(start time.Time, granularity string) time.Time {
	switch granularity {
	case granularityWeek:
		return start.AddDate(0, 0, 7)
	case granularityMonth:
		return start.AddDate(0, 1, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}

func bucketLabel(start time.Time, granularity string) string {
	if granularity == granularityMonth {
		return start.Format("2006-01")
	}
	return start.Format(metricsDateLayout)
}

func parseDateRange(r *http.Request, now time.Time, loc *time.Location) (dateRange, error) {
	query := r.URL.Query()
	preset := strings.ToLower(strings.TrimSpace(query.Get("date_range")))
	startRaw := strings.TrimSpace(query.Get("start_date"))
	endRaw := strings.TrimSpace(query.Get("end_date"))

	if preset != "" && preset != dateRangeCustom {
		startDate, endDate := presetDateRange(preset, now, loc)
		if startDate.IsZero() || endDate.IsZero() {
			return dateRange{}, fmt.Errorf("invalid date_range")
		}
		return newDateRange(startDate, endDate, preset), nil
	}

	if startRaw == "" && endRaw == "" {
		if preset == dateRangeCustom {
			return dateRange{}, fmt.Errorf("start_date and end_date are required")
		}
		startDate, endDate := presetDateRange(dateRangeLast30Days, now, loc)
		return newDateRange(startDate, endDate, dateRangeLast30Days), nil
	}
	if startRaw == "" || endRaw == "" {
		return dateRange{}, fmt.Errorf("start_date and end_date are required")
	}

	startDate, err := time.ParseInLocation(metricsDateLayout, startRaw, loc)
	if err != nil {
		return dateRange{}, fmt.Errorf("start_date must be in YYYY-MM-DD format")
	}
	endDate, err := time.ParseInLocation(metricsDateLayout, endRaw, loc)
	if err != nil {
		return dateRange{}, fmt.Errorf("end_date must be in YYYY-MM-DD format")
	}
	if endDate.Before(startDate) {
		return dateRange{}, fmt.Errorf("end_date must be after start_date")
	}
	if endDate.Sub(startDate) > 366*24*time.Hour {
		return dateRange{}, fmt.Errorf("date range must not exceed one year")
	}
	return newDateRange(startDate, endDate, dateRangeCustom), nil
}

// newDateRange turns inclusive first and last days into a half-open range.
func newDateRange(startDate, endDate time.Time, preset string) dateRange {
	return dateRange{
		start:     startDate,
		end:       endDate.AddDate(0, 0, 1),
		preset:    preset,
		startDate: startDate.Format(metricsDateLayout),
		endDate:   endDate.Format(metricsDateLayout),
	}
}

func presetDateRange(preset string, now time.Time, loc *time.Location) (time.Time, time.Time) {
	now = now.In(loc)
	endDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	switch preset {
	case dateRangeToday:
		return endDate, endDate
	case dateRangeLast7Days:
		return endDate.AddDate(0, 0, -6), endDate
	case dateRangeLast30Days:
		return endDate.AddDate(0, 0, -(defaultRangeDays - 1)), endDate
	case dateRangeThisMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc), endDate
	case dateRangeThisYear:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc), endDate
	default:
		return time.Time{}, time.Time{}
	}
}

func parseGranularity(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "day", "daily":
		return granularityDay, nil
	case "week", "weekly":
		return granularityWeek, nil
	case "month", "monthly":
		return granularityMonth, nil
	default:
		return "", fmt.Errorf("invalid granularity")
	}
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
