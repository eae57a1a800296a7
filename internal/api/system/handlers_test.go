package system

// NOTE: Tests cannot use t.Parallel() due to shared package state.

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/api/apiutil"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/api/authz"
	appdb "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db"
	dbgen "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db/generated"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/models"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/testutil"
)

var fixedNow = time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)

func setupSystemTest(t *testing.T) *appdb.DB {
	t.Helper()
	database := testutil.NewTestDB(t)

	resetState := func() {
		store = nil
		options = Options{}
		initOnce = sync.Once{}
		nowFunc = time.Now
	}
	resetState()
	t.Cleanup(resetState)

	InitHandlers(database, Options{MapProvider: "yandex", MapAPIKey: "map-key"})
	nowFunc = func() time.Time { return fixedNow }
	return database
}

func newRequest(method, target, body string, role models.Role) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if role != "" {
		req = req.WithContext(authz.ContextWithUser(req.Context(), &authz.AuthUser{ID: 1, Role: role}))
	}
	return req
}

func decodeSettings(t *testing.T, recorder *httptest.ResponseRecorder) models.Settings {
	t.Helper()
	var s models.Settings
	if err := json.NewDecoder(recorder.Body).Decode(&s); err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	return s
}

func TestGetSettingsDefaults(t *testing.T) {
	setupSystemTest(t)

	recorder := httptest.NewRecorder()
	HandleGetSettings(recorder, newRequest(http.MethodGet, "/system/settings", "", ""))
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
	}
	settings := decodeSettings(t, recorder)
	if settings.Organization != models.DefaultOrganization() {
		t.Fatalf("organization = %+v, want defaults", settings.Organization)
	}
	if settings.MapProvider != "yandex" || settings.MapAPIKey != "map-key" {
		t.Fatalf("map settings = %q / %q", settings.MapProvider, settings.MapAPIKey)
	}
}

func TestUpdateSettings(t *testing.T) {
	database := setupSystemTest(t)
	apiutil.SetFileBaseURL("https://api.example.com")
	t.Cleanup(func() { apiutil.SetFileBaseURL("") })

	if _, err := database.Queries.CreateFile(context.Background(), dbgen.CreateFileParams{
		ID:          "logo-1",
		StorageKey:  "files/logo-1",
		ContentType: "image/png",
		SizeBytes:   10,
	}); err != nil {
		t.Fatalf("create file: %v", err)
	}

	recorder := httptest.NewRecorder()
	HandleUpdateSettings(recorder, newRequest(http.MethodPatch, "/", `{"organizationName":"Hub"}`, models.RoleUser))
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("user status = %d, want 403", recorder.Code)
	}

	recorder = httptest.NewRecorder()
	HandleUpdateSettings(recorder, newRequest(http.MethodPatch, "/",
		`{"organizationName":"  Hub  ","logoFileId":"logo-1","accentColor":"#0f766e"}`, models.RoleAdmin))
	if recorder.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", recorder.Code, recorder.Body.String())
	}
	org := decodeSettings(t, recorder).Organization
	if org.Name != "Hub" || org.AccentColor != "#0F766E" || org.LogoURL != "https://api.example.com/files/logo-1" {
		t.Fatalf("organization = %+v", org)
	}

	recorder = httptest.NewRecorder()
	HandleGetSettings(recorder, newRequest(http.MethodGet, "/", "", ""))
	if got := decodeSettings(t, recorder).Organization; got.Name != "Hub" || got.LogoFileID == nil {
		t.Fatalf("persisted organization = %+v", got)
	}

	recorder = httptest.NewRecorder()
	HandleUpdateSettings(recorder, newRequest(http.MethodPatch, "/", `{"logoFileId":null}`, models.RoleOwner))
	if recorder.Code != http.StatusOK {
		t.Fatalf("clear logo status = %d, body = %s", recorder.Code, recorder.Body.String())
	}
	if got := decodeSettings(t, recorder).Organization; got.LogoFileID != nil || got.Name != "Hub" {
		t.Fatalf("organization after clearing logo = %+v", got)
	}

	tests := []struct {
		name string
		body string
	}{
		{"bad color", `{"accentColor":"blue"}`},
		{"empty name", `{"organizationName":"   "}`},
		{"unknown logo", `{"logoFileId":"missing"}`},
		{"unknown field", `{"theme":"dark"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			HandleUpdateSettings(recorder, newRequest(http.MethodPatch, "/", tt.body, models.RoleAdmin))
			if recorder.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400, body = %s", recorder.Code, recorder.Body.String())
			}
		})
	}
}

func TestMetrics(t *testing.T) {
	database := setupSystemTest(t)
	seed := testutil.SeedPlace(t, database)
	anna := testutil.CreateUser(t, database, "Anna", "anna@example.com", "user")
	boris := testutil.CreateUser(t, database, "Boris", "boris@example.com", "user")

	day := func(d, h int) time.Time { return time.Date(2026, 6, d, h, 0, 0, 0, time.UTC) }
	visited := testutil.CreateVisit(t, database, seed.PlaceID, anna.ID, day(9, 10), day(9, 12), "confirmed")
	if _, err := database.Queries.MarkVisitVisited(context.Background(), dbgen.MarkVisitVisitedParams{
		VisitedAt: apiutil.ToNullTime(day(9, 10)),
		ID:        visited.ID,
	}); err != nil {
		t.Fatalf("mark visited: %v", err)
	}
	testutil.CreateVisit(t, database, seed.PlaceID, boris.ID, day(9, 13), day(9, 14), "confirmed")
	testutil.CreateVisit(t, database, seed.PlaceID, boris.ID, day(8, 10), day(8, 11), "cancelled")
	testutil.CreateVisit(t, database, seed.PlaceID, anna.ID, day(11, 10), day(11, 11), "pending")

	recorder := httptest.NewRecorder()
	HandleMetrics(recorder, newRequest(http.MethodGet, "/system/metrics?date_range=last_7_days", "", models.RoleAdmin))
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
	}
	var metrics models.Metrics
	if err := json.NewDecoder(recorder.Body).Decode(&metrics); err != nil {
		t.Fatalf("decode metrics: %v", err)
	}

	if metrics.StartDate != "2026-06-04" || metrics.EndDate != "2026-06-10" || metrics.Preset != "last_7_days" {
		t.Fatalf("range = %s..%s (%s)", metrics.StartDate, metrics.EndDate, metrics.Preset)
	}
	if metrics.TotalVisits != 3 || metrics.Confirmed != 2 || metrics.Cancelled != 1 || metrics.Pending != 0 || metrics.Checkins != 1 {
		t.Fatalf("counts = %+v", metrics)
	}
	if metrics.NoShowRate != 0.5 || math.Abs(metrics.CancellationRate-1.0/3) > 1e-9 {
		t.Fatalf("rates: no-show %v, cancellation %v", metrics.NoShowRate, metrics.CancellationRate)
	}
	if metrics.BookedHours != 3 || metrics.Places != 1 || metrics.AvailableHours != 168 {
		t.Fatalf("hours: booked %v, available %v, places %d", metrics.BookedHours, metrics.AvailableHours, metrics.Places)
	}
	if len(metrics.Buckets) != 7 {
		t.Fatalf("buckets = %d, want 7", len(metrics.Buckets))
	}
	june8, june9 := metrics.Buckets[4], metrics.Buckets[5]
	if june8.Label != "2026-06-08" || june8.Cancelled != 1 || june8.Visits != 0 {
		t.Fatalf("june 8 bucket = %+v", june8)
	}
	if june9.Label != "2026-06-09" || june9.Visits != 2 || june9.Checkins != 1 {
		t.Fatalf("june 9 bucket = %+v", june9)
	}
}

func TestMetricsValidation(t *testing.T) {
	setupSystemTest(t)

	tests := []struct {
		name   string
		query  string
		role   models.Role
		status int
	}{
		{"anonymous", "", "", http.StatusUnauthorized},
		{"regular user", "", models.RoleUser, http.StatusForbidden},
		{"unknown preset", "?date_range=forever", models.RoleAdmin, http.StatusBadRequest},
		{"half custom range", "?start_date=2026-06-01", models.RoleAdmin, http.StatusBadRequest},
		{"reversed range", "?start_date=2026-06-05&end_date=2026-06-01", models.RoleAdmin, http.StatusBadRequest},
		{"bad granularity", "?granularity=hourly", models.RoleAdmin, http.StatusBadRequest},
		{"unknown building", "?building_id=999", models.RoleAdmin, http.StatusNotFound},
		{"custom range", "?start_date=2026-05-01&end_date=2026-05-31&granularity=week", models.RoleAdmin, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			HandleMetrics(recorder, newRequest(http.MethodGet, "/system/metrics"+tt.query, "", tt.role))
			if recorder.Code != tt.status {
				t.Fatalf("status = %d, want %d, body = %s", recorder.Code, tt.status, recorder.Body.String())
			}
		})
	}
}

func TestBucketStart(t *testing.T) {
	wednesday := time.Date(2026, 6, 10, 15, 30, 0, 0, time.UTC)
	tests := []struct {
		granularity string
		want        time.Time
	}{
		{granularityDay, time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)},
		{granularityWeek, time.Date(2026, 6, 8, 0, 0, 0, 0, time.UTC)},
		{granularityMonth, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.granularity, func(t *testing.T) {
			if got := bucketStart(wednesday, tt.granularity); !got.Equal(tt.want) {
				t.Fatalf("bucketStart() = %v, want %v", got, tt.want)
			}
		})
	}
}
