package schemes

// NOTE: Tests cannot use t.Parallel() due to shared package state.

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/api/authz"
	appdb "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db"
	dbgen "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db/generated"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/models"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/storage"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/testutil"
)

var fixedNow = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

func setupSchemesTest(t *testing.T) (*appdb.DB, storage.Store) {
	t.Helper()
	database := testutil.NewTestDB(t)
	objectStore, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}

	resetState := func() {
		store = nil
		objects = nil
		initOnce = sync.Once{}
		nowFunc = time.Now
	}
	resetState()
	t.Cleanup(resetState)

	InitHandlers(database, objectStore)
	nowFunc = func() time.Time { return fixedNow }
	return database, objectStore
}

type pathValues map[string]int64

func newRequest(method, target, body string, role models.Role, values pathValues) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	for name, id := range values {
		req.SetPathValue(name, strconv.FormatInt(id, 10))
	}
	if role != "" {
		req = req.WithContext(authz.ContextWithUser(req.Context(), &authz.AuthUser{ID: 1, Role: role}))
	}
	return req
}

func storeMapImage(t *testing.T, database *appdb.DB, objectStore storage.Store, id string, width, height int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		img.Set(x, 0, color.RGBA{A: 0xff})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	key := storage.ObjectKey(id)
	if err := objectStore.Put(context.Background(), key, "image/png", buf.Bytes()); err != nil {
		t.Fatalf("put image: %v", err)
	}
	if _, err := database.Queries.CreateFile(context.Background(), dbgen.CreateFileParams{
		ID:          id,
		StorageKey:  key,
		ContentType: "image/png",
		SizeBytes:   int64(buf.Len()),
		Width:       sql.NullInt64{Int64: int64(width), Valid: true},
		Height:      sql.NullInt64{Int64: int64(height), Valid: true},
	}); err != nil {
		t.Fatalf("create file: %v", err)
	}
}

func TestFloorLifecycle(t *testing.T) {
	database, objectStore := setupSchemesTest(t)
	seed := testutil.SeedPlace(t, database)
	storeMapImage(t, database, objectStore, "map-2", 400, 200)

	recorder := httptest.NewRecorder()
	HandleCreateFloor(recorder, newRequest(http.MethodPost, "/", `{"level":2,"mapFileId":"map-2"}`, models.RoleAdmin, pathValues{"id": seed.BuildingID}))
	if recorder.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", recorder.Code, recorder.Body.String())
	}
	var floor models.Floor
	if err := json.NewDecoder(recorder.Body).Decode(&floor); err != nil {
		t.Fatalf("decode floor: %v", err)
	}
	if floor.Level != 2 || floor.ImageWidth != 400 || floor.ImageHeight != 200 || floor.MapURL != "/files/map-2" {
		t.Fatalf("floor = %+v", floor)
	}

	recorder = httptest.NewRecorder()
	HandleCreateFloor(recorder, newRequest(http.MethodPost, "/", `{"level":2}`, models.RoleAdmin, pathValues{"id": seed.BuildingID}))
	if recorder.Code != http.StatusConflict {
		t.Fatalf("duplicate level status = %d, want 409", recorder.Code)
	}

	recorder = httptest.NewRecorder()
	HandleCreateFloor(recorder, newRequest(http.MethodPost, "/", `{"level":3,"mapFileId":"missing"}`, models.RoleAdmin, pathValues{"id": seed.BuildingID}))
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("missing map status = %d, want 400", recorder.Code)
	}

	recorder = httptest.NewRecorder()
	HandleCreateFloor(recorder, newRequest(http.MethodPost, "/", `{"level":3}`, models.RoleUser, pathValues{"id": seed.BuildingID}))
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("user create status = %d, want 403", recorder.Code)
	}

	recorder = httptest.NewRecorder()
	HandleUpdateFloor(recorder, newRequest(http.MethodPatch, "/", `{"mapFileId":null,"level":5}`, models.RoleAdmin,
		pathValues{"id": seed.BuildingID, "floorId": floor.ID}))
	if recorder.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", recorder.Code, recorder.Body.String())
	}
	var updated models.Floor
	if err := json.NewDecoder(recorder.Body).Decode(&updated); err != nil {
		t.Fatalf("decode floor: %v", err)
	}
	if updated.Level != 5 || updated.MapFileID != nil || updated.ImageWidth != 0 {
		t.Fatalf("updated = %+v", updated)
	}

	recorder = httptest.NewRecorder()
	HandleDeleteFloor(recorder, newRequest(http.MethodDelete, "/", "", models.RoleAdmin, pathValues{"id": seed.BuildingID, "floorId": floor.ID}))
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", recorder.Code)
	}
	recorder = httptest.NewRecorder()
	HandleGetFloor(recorder, newRequest(http.MethodGet, "/", "", "", pathValues{"id": seed.BuildingID, "floorId": floor.ID}))
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("get deleted status = %d, want 404", recorder.Code)
	}
}

func TestListFloorsMarksOccupiedPlaces(t *testing.T) {
	database, _ := setupSchemesTest(t)
	seed := testutil.SeedPlace(t, database)
	user := testutil.CreateUser(t, database, "Anna", "anna@example.com", "user")
	testutil.CreateVisit(t, database, seed.PlaceID, user.ID, fixedNow.Add(-time.Hour), fixedNow.Add(time.Hour), "confirmed")

	list := func(query string) []models.Floor {
		t.Helper()
		recorder := httptest.NewRecorder()
		HandleListFloors(recorder, newRequest(http.MethodGet, "/buildings/x/schemes"+query, "", "", pathValues{"id": seed.BuildingID}))
		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
		}
		var floors []models.Floor
		if err := json.NewDecoder(recorder.Body).Decode(&floors); err != nil {
			t.Fatalf("decode floors: %v", err)
		}
		if len(floors) != 1 || len(floors[0].Places) != 1 {
			t.Fatalf("floors = %+v", floors)
		}
		return floors
	}

	if status := list("")[0].Places[0].Status; status != models.PlaceOccupied {
		t.Fatalf("status now = %q, want occupied", status)
	}
	if status := list("?from=2026-06-01T12:00:00Z&to=2026-06-01T13:00:00Z")[0].Places[0].Status; status != models.PlaceAvailable {
		t.Fatalf("status later = %q, want available", status)
	}

	recorder := httptest.NewRecorder()
	HandleListFloors(recorder, newRequest(http.MethodGet, "/", "", "", pathValues{"id": 999}))
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("unknown building status = %d, want 404", recorder.Code)
	}
}

func TestPlaceLifecycle(t *testing.T) {
	database, _ := setupSchemesTest(t)
	seed := testutil.SeedPlace(t, database)

	recorder := httptest.NewRecorder()
	HandleCreatePlace(recorder, newRequest(http.MethodPost, "/",
		`{"name":"B-2","features":["Window"," window ","Monitor"],"x":150,"y":-5,"size":0.05,"rotation":-90}`,
		models.RoleAdmin, pathValues{"id": seed.BuildingID, "floorId": seed.FloorID}))
	if recorder.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", recorder.Code, recorder.Body.String())
	}
	var place models.Place
	if err := json.NewDecoder(recorder.Body).Decode(&place); err != nil {
		t.Fatalf("decode place: %v", err)
	}
	if place.X != 100 || place.Y != 0 || place.Size != 0.2 || place.Rotation != 270 {
		t.Fatalf("place geometry = %+v", place)
	}
	if len(place.Features) != 2 || place.Features[0] != "window" {
		t.Fatalf("features = %v", place.Features)
	}

	recorder = httptest.NewRecorder()
	HandleUpdatePlace(recorder, newRequest(http.MethodPatch, "/", `{"x":25.5,"rotation":725}`, models.RoleAdmin,
		pathValues{"id": seed.BuildingID, "placeId": place.ID}))
	if recorder.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", recorder.Code, recorder.Body.String())
	}
	var updated models.Place
	if err := json.NewDecoder(recorder.Body).Decode(&updated); err != nil {
		t.Fatalf("decode place: %v", err)
	}
	if updated.X != 25.5 || updated.Y != 0 || updated.Rotation != 5 || updated.Name != "B-2" {
		t.Fatalf("updated = %+v", updated)
	}

	recorder = httptest.NewRecorder()
	HandleUpdatePlace(recorder, newRequest(http.MethodPatch, "/", `{"photoFileId":"missing"}`, models.RoleAdmin,
		pathValues{"id": seed.BuildingID, "placeId": place.ID}))
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("missing photo status = %d, want 400", recorder.Code)
	}

	recorder = httptest.NewRecorder()
	HandleGetPlace(recorder, newRequest(http.MethodGet, "/", "", "", pathValues{"id": seed.BuildingID + 1, "placeId": place.ID}))
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("place in other building status = %d, want 404", recorder.Code)
	}

	recorder = httptest.NewRecorder()
	HandleDeletePlace(recorder, newRequest(http.MethodDelete, "/", "", models.RoleAdmin, pathValues{"id": seed.BuildingID, "placeId": place.ID}))
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", recorder.Code)
	}
	recorder = httptest.NewRecorder()
	HandleGetPlace(recorder, newRequest(http.MethodGet, "/", "", "", pathValues{"id": seed.BuildingID, "placeId": place.ID}))
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("get deleted status = %d, want 404", recorder.Code)
	}
}

func TestCreatePlaceRequiresFields(t *testing.T) {
	database, _ := setupSchemesTest(t)
	seed := testutil.SeedPlace(t, database)

	for _, body := range []string{`{"x":1,"y":1}`, `{"name":"A"}`, `{"name":" ","x":1,"y":1}`} {
		recorder := httptest.NewRecorder()
		HandleCreatePlace(recorder, newRequest(http.MethodPost, "/", body, models.RoleAdmin, pathValues{"id": seed.BuildingID, "floorId": seed.FloorID}))
		if recorder.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, recorder.Code)
		}
	}
}

func TestFloorPreview(t *testing.T) {
	database, objectStore := setupSchemesTest(t)
	seed := testutil.SeedPlace(t, database)
	storeMapImage(t, database, objectStore, "map-1", 1000, 500)
	if _, err := database.Queries.UpdateFloor(context.Background(), dbgen.UpdateFloorParams{
		Level:       1,
		MapFileID:   sql.NullString{String: "map-1", Valid: true},
		ImageWidth:  1000,
		ImageHeight: 500,
		ID:          seed.FloorID,
		BuildingID:  seed.BuildingID,
	}); err != nil {
		t.Fatalf("update floor: %v", err)
	}

	recorder := httptest.NewRecorder()
	HandleFloorPreview(recorder, newRequest(http.MethodGet, "/preview?width=500", "", "", pathValues{"id": seed.BuildingID, "floorId": seed.FloorID}))
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
	}
	if ct := recorder.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content type = %q", ct)
	}
	img, err := png.Decode(recorder.Body)
	if err != nil {
		t.Fatalf("decode preview: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 500 || b.Dy() != 250 {
		t.Fatalf("preview size = %v, want 500x250", b)
	}

	recorder = httptest.NewRecorder()
	HandleFloorPreview(recorder, newRequest(http.MethodGet, "/preview?width=0", "", "", pathValues{"id": seed.BuildingID, "floorId": seed.FloorID}))
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("width=0 status = %d, want 400", recorder.Code)
	}
}

func TestGetFloorLayout(t *testing.T) {
	database, _ := setupSchemesTest(t)
	seed := testutil.SeedPlace(t, database)

	getFloor := func(query string) (int, models.Floor) {
		t.Helper()
		recorder := httptest.NewRecorder()
		HandleGetFloor(recorder, newRequest(http.MethodGet, "/"+query, "", "", pathValues{"id": seed.BuildingID, "floorId": seed.FloorID}))
		var floor models.Floor
		if recorder.Code == http.StatusOK {
			if err := json.NewDecoder(recorder.Body).Decode(&floor); err != nil {
				t.Fatalf("decode floor: %v", err)
			}
		}
		return recorder.Code, floor
	}

	if code, floor := getFloor(""); code != http.StatusOK || floor.Layout != nil {
		t.Fatalf("plain floor = %d, layout %+v", code, floor.Layout)
	}
	if code, _ := getFloor("?layout=svg"); code != http.StatusBadRequest {
		t.Fatalf("unknown layout status = %d, want 400", code)
	}

	tests := []struct {
		layout string
		point  [2]float64
		style  string
	}{
		{"dom", [2]float64{50, 50}, "left:50%; top:50%"},
		{"canvas", [2]float64{500, 250}, ""},
		{"geo", [2]float64{0, 0}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.layout, func(t *testing.T) {
			code, floor := getFloor("?layout=" + tt.layout)
			if code != http.StatusOK || floor.Layout == nil {
				t.Fatalf("status = %d, layout = %+v", code, floor.Layout)
			}
			if len(floor.Layout.Placements) != 1 {
				t.Fatalf("placements = %+v", floor.Layout.Placements)
			}
			got := floor.Layout.Placements[0]
			if got.PlaceID != seed.PlaceID || got.Point.X != tt.point[0] || got.Point.Y != tt.point[1] || got.Style != tt.style {
				t.Fatalf("placement = %+v", got)
			}
			if tt.layout == "geo" {
				b := floor.Layout.Bounds
				if b == nil || b.North != 50 || b.East != 100 {
					t.Fatalf("geo bounds = %+v", b)
				}
			}
		})
	}
}

func TestPlacePointerEdits(t *testing.T) {
	database, _ := setupSchemesTest(t)
	seed := testutil.SeedPlace(t, database)

	patch := func(body string) (int, models.Place) {
		t.Helper()
		recorder := httptest.NewRecorder()
		HandleUpdatePlace(recorder, newRequest(http.MethodPatch, "/", body, models.RoleAdmin,
			pathValues{"id": seed.BuildingID, "placeId": seed.PlaceID}))
		var place models.Place
		if recorder.Code == http.StatusOK {
			if err := json.NewDecoder(recorder.Body).Decode(&place); err != nil {
				t.Fatalf("decode place: %v", err)
			}
		}
		return recorder.Code, place
	}

	// Stage zoomed 2x: pixel (500,250) is intrinsic (250,125) on a 1000x500 plan.
	code, place := patch(`{"pointer":{"pixel":{"x":500,"y":250},"handle":{"x":700,"y":250},"viewport":{"scale":2}}}`)
	if code != http.StatusOK {
		t.Fatalf("pixel edit status = %d", code)
	}
	if place.X != 25 || place.Y != 25 || place.Size != 2 {
		t.Fatalf("pixel edit place = %+v", place)
	}

	code, place = patch(`{"pointer":{"latLng":{"lat":50,"lng":100}}}`)
	if code != http.StatusOK || place.X != 100 || place.Y != 0 || place.Size != 2 {
		t.Fatalf("geo edit = %d, %+v", code, place)
	}

	for _, body := range []string{
		`{"pointer":{}}`,
		`{"x":1,"pointer":{"pixel":{"x":1,"y":1}}}`,
		`{"size":3,"pointer":{"handle":{"x":1,"y":1}}}`,
		`{"pointer":{"pixel":{"x":1,"y":1},"latLng":{"lat":0,"lng":0}}}`,
	} {
		if code, _ := patch(body); code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, code)
		}
	}

	recorder := httptest.NewRecorder()
	HandleCreatePlace(recorder, newRequest(http.MethodPost, "/", `{"name":"C-3","pointer":{"latLng":{"lat":0,"lng":0}}}`,
		models.RoleAdmin, pathValues{"id": seed.BuildingID, "floorId": seed.FloorID}))
	if recorder.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", recorder.Code, recorder.Body.String())
	}
	var created models.Place
	if err := json.NewDecoder(recorder.Body).Decode(&created); err != nil {
		t.Fatalf("decode place: %v", err)
	}
	if created.X != 50 || created.Y != 50 || created.Size != models.DefaultPlaceSize {
		t.Fatalf("created = %+v", created)
	}

	bare, err := database.Queries.CreateFloor(context.Background(), dbgen.CreateFloorParams{BuildingID: seed.BuildingID, Level: 9})
	if err != nil {
		t.Fatalf("create floor: %v", err)
	}
	recorder = httptest.NewRecorder()
	HandleCreatePlace(recorder, newRequest(http.MethodPost, "/", `{"name":"D-4","pointer":{"pixel":{"x":10,"y":10}}}`,
		models.RoleAdmin, pathValues{"id": seed.BuildingID, "floorId": bare.ID}))
	if recorder.Code != http.StatusBadRequest || !strings.Contains(recorder.Body.String(), "floor plan image") {
		t.Fatalf("imageless floor = %d, %s", recorder.Code, recorder.Body.String())
	}
}
