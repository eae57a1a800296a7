package visits

// NOTE: Tests cannot use t.Parallel() due to shared package state.

import (
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/api/authz"
	appdb "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/email"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/models"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/testutil"
)

var fixedNow = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

type nopSender struct{}

func (nopSender) Send(context.Context, string, email.Message) error { return nil }

type sentEmail struct {
	to      string
	subject string
}

type emailLog struct {
	mu   sync.Mutex
	sent []sentEmail
}

func (l *emailLog) all() []sentEmail {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]sentEmail(nil), l.sent...)
}

type visitsFixture struct {
	db    *appdb.DB
	seed  testutil.Seed
	anna  *authz.AuthUser
	boris *authz.AuthUser
	admin *authz.AuthUser
	mail  *emailLog
}

func setupVisitsTest(t *testing.T, p models.BookingPolicy) visitsFixture {
	t.Helper()
	database := testutil.NewTestDB(t)

	resetState := func() {
		store = nil
		policy = models.BookingPolicy{}
		mailer = nil
		initOnce = sync.Once{}
		nowFunc = time.Now
		sendEmail = email.SendAsync
	}
	resetState()
	t.Cleanup(resetState)

	mail := &emailLog{}
	sendEmail = func(_ context.Context, _ email.EmailSender, recipient string, msg email.Message, _ *zerolog.Logger) <-chan struct{} {
		mail.mu.Lock()
		mail.sent = append(mail.sent, sentEmail{to: recipient, subject: msg.Subject})
		mail.mu.Unlock()
		done := make(chan struct{})
		close(done)
		return done
	}
	InitHandlers(database, Options{Policy: p, Sender: nopSender{}})
	nowFunc = func() time.Time { return fixedNow }

	anna := testutil.CreateUser(t, database, "Anna", "anna@example.com", "user")
	boris := testutil.CreateUser(t, database, "Boris", "boris@example.com", "user")
	admin := testutil.CreateUser(t, database, "Admin", "admin@example.com", "admin")
	return visitsFixture{
		db:    database,
		seed:  testutil.SeedPlace(t, database),
		anna:  &authz.AuthUser{ID: anna.ID, Email: anna.Email, Role: models.RoleUser},
		boris: &authz.AuthUser{ID: boris.ID, Email: boris.Email, Role: models.RoleUser},
		admin: &authz.AuthUser{ID: admin.ID, Email: admin.Email, Role: models.RoleAdmin},
		mail:  mail,
	}
}

func defaultPolicy() models.BookingPolicy {
	return models.BookingPolicy{MinDuration: 30 * time.Minute, Horizon: 30 * 24 * time.Hour}
}

func (f visitsFixture) request(method, target, body string, user *authz.AuthUser, visitID int64) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	req.SetPathValue("id", strconv.FormatInt(f.seed.BuildingID, 10))
	req.SetPathValue("placeId", strconv.FormatInt(f.seed.PlaceID, 10))
	if visitID > 0 {
		req.SetPathValue("visitId", strconv.FormatInt(visitID, 10))
	}
	if user != nil {
		req = req.WithContext(authz.ContextWithUser(req.Context(), user))
	}
	return req
}

func (f visitsFixture) book(t *testing.T, user *authz.AuthUser, start, end string) *httptest.ResponseRecorder {
	t.Helper()
	recorder := httptest.NewRecorder()
	body := `{"start":"` + start + `","end":"` + end + `"}`
	HandleCreateVisit(recorder, f.request(http.MethodPost, "/", body, user, 0))
	return recorder
}

func decodeVisit(t *testing.T, recorder *httptest.ResponseRecorder) models.Visit {
	t.Helper()
	var v models.Visit
	if err := json.NewDecoder(recorder.Body).Decode(&v); err != nil {
		t.Fatalf("decode visit: %v", err)
	}
	return v
}

func TestCreateVisit(t *testing.T) {
	f := setupVisitsTest(t, defaultPolicy())

	if recorder := f.book(t, nil, "2026-06-01T12:00:00Z", "2026-06-01T13:00:00Z"); recorder.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d, want 401", recorder.Code)
	}

	recorder := f.book(t, f.anna, "2026-06-01T12:00:00Z", "2026-06-01T13:00:00Z")
	if recorder.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", recorder.Code, recorder.Body.String())
	}
	visit := decodeVisit(t, recorder)
	if visit.Status != models.VisitConfirmed || visit.CheckinCode == "" || visit.UserID == nil || *visit.UserID != f.anna.ID {
		t.Fatalf("visit = %+v", visit)
	}
	sent := f.mail.all()
	if len(sent) != 1 || sent[0].to != "anna@example.com" || sent[0].subject != "Booking confirmed - Tower" {
		t.Fatalf("emails = %+v", sent)
	}

	tests := []struct {
		name   string
		user   *authz.AuthUser
		start  string
		end    string
		status int
	}{
		{"place already booked", f.boris, "2026-06-01T12:30:00Z", "2026-06-01T14:00:00Z", http.StatusConflict},
		{"too short", f.boris, "2026-06-01T14:00:00Z", "2026-06-01T14:15:00Z", http.StatusBadRequest},
		{"in the past", f.boris, "2026-06-01T08:00:00Z", "2026-06-01T09:00:00Z", http.StatusBadRequest},
		{"end before start", f.boris, "2026-06-01T15:00:00Z", "2026-06-01T14:00:00Z", http.StatusBadRequest},
		{"beyond horizon", f.boris, "2026-08-01T12:00:00Z", "2026-08-01T13:00:00Z", http.StatusBadRequest},
		{"adjacent slot", f.boris, "2026-06-01T13:00:00Z", "2026-06-01T14:00:00Z", http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := f.book(t, tt.user, tt.start, tt.end)
			if recorder.Code != tt.status {
				t.Fatalf("status = %d, want %d, body = %s", recorder.Code, tt.status, recorder.Body.String())
			}
		})
	}
}

func TestCreateVisitPendingUntilConfirmed(t *testing.T) {
	p := defaultPolicy()
	p.RequireConfirmation = true
	f := setupVisitsTest(t, p)

	recorder := f.book(t, f.anna, "2026-06-01T12:00:00Z", "2026-06-01T13:00:00Z")
	if recorder.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", recorder.Code, recorder.Body.String())
	}
	visit := decodeVisit(t, recorder)
	if visit.Status != models.VisitPending {
		t.Fatalf("status = %q, want pending", visit.Status)
	}

	recorder = httptest.NewRecorder()
	HandleConfirmVisit(recorder, f.request(http.MethodPost, "/", "", f.anna, visit.ID))
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("user confirm status = %d, want 403", recorder.Code)
	}

	recorder = httptest.NewRecorder()
	HandleConfirmVisit(recorder, f.request(http.MethodPost, "/", "", f.admin, visit.ID))
	if recorder.Code != http.StatusOK {
		t.Fatalf("confirm status = %d, body = %s", recorder.Code, recorder.Body.String())
	}
	if confirmed := decodeVisit(t, recorder); confirmed.Status != models.VisitConfirmed {
		t.Fatalf("status = %q, want confirmed", confirmed.Status)
	}

	recorder = httptest.NewRecorder()
	HandleConfirmVisit(recorder, f.request(http.MethodPost, "/", "", f.admin, visit.ID))
	if recorder.Code != http.StatusConflict {
		t.Fatalf("second confirm status = %d, want 409", recorder.Code)
	}

	sent := f.mail.all()
	if len(sent) != 2 || sent[0].subject != "Booking received - Tower" || sent[1].subject != "Booking confirmed - Tower" {
		t.Fatalf("emails = %+v", sent)
	}
}

func TestListPlaceVisitsHidesOtherOwners(t *testing.T) {
	f := setupVisitsTest(t, defaultPolicy())
	testutil.CreateVisit(t, f.db, f.seed.PlaceID, f.anna.ID, fixedNow.Add(2*time.Hour), fixedNow.Add(3*time.Hour), "confirmed")
	testutil.CreateVisit(t, f.db, f.seed.PlaceID, f.boris.ID, fixedNow.Add(4*time.Hour), fixedNow.Add(5*time.Hour), "cancelled")

	list := func(user *authz.AuthUser) []models.Visit {
		t.Helper()
		recorder := httptest.NewRecorder()
		HandleListPlaceVisits(recorder, f.request(http.MethodGet, "/visits", "", user, 0))
		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
		}
		var visits []models.Visit
		if err := json.NewDecoder(recorder.Body).Decode(&visits); err != nil {
			t.Fatalf("decode visits: %v", err)
		}
		if len(visits) != 1 {
			t.Fatalf("visits = %+v, want only the active one", visits)
		}
		return visits
	}

	if v := list(nil)[0]; v.UserID != nil || v.CheckinCode != "" {
		t.Fatalf("anonymous sees owner: %+v", v)
	}
	if v := list(f.boris)[0]; v.UserID != nil {
		t.Fatalf("other user sees owner: %+v", v)
	}
	if v := list(f.anna)[0]; v.UserID == nil || v.CheckinCode == "" {
		t.Fatalf("owner does not see own visit details: %+v", v)
	}
	if v := list(f.admin)[0]; v.UserID == nil {
		t.Fatalf("admin does not see owner: %+v", v)
	}
}

func TestRescheduleAndCancelVisit(t *testing.T) {
	f := setupVisitsTest(t, defaultPolicy())
	visit := testutil.CreateVisit(t, f.db, f.seed.PlaceID, f.anna.ID, fixedNow.Add(2*time.Hour), fixedNow.Add(3*time.Hour), "confirmed")
	testutil.CreateVisit(t, f.db, f.seed.PlaceID, f.boris.ID, fixedNow.Add(6*time.Hour), fixedNow.Add(7*time.Hour), "confirmed")

	reschedule := func(user *authz.AuthUser, body string) *httptest.ResponseRecorder {
		recorder := httptest.NewRecorder()
		HandleRescheduleVisit(recorder, f.request(http.MethodPatch, "/", body, user, visit.ID))
		return recorder
	}

	if recorder := reschedule(f.boris, `{"start":"2026-06-01T13:00:00Z","end":"2026-06-01T14:00:00Z"}`); recorder.Code != http.StatusForbidden {
		t.Fatalf("other user status = %d, want 403", recorder.Code)
	}
	if recorder := reschedule(f.anna, `{"start":"2026-06-01T15:30:00Z","end":"2026-06-01T16:30:00Z"}`); recorder.Code != http.StatusConflict {
		t.Fatalf("overlap status = %d, want 409", recorder.Code)
	}
	recorder := reschedule(f.anna, `{"start":"2026-06-01T12:30:00Z","end":"2026-06-01T14:00:00Z"}`)
	if recorder.Code != http.StatusOK {
		t.Fatalf("reschedule status = %d, body = %s", recorder.Code, recorder.Body.String())
	}
	moved := decodeVisit(t, recorder)
	if !moved.Start.Equal(fixedNow.Add(150*time.Minute)) || !moved.End.Equal(fixedNow.Add(4*time.Hour)) {
		t.Fatalf("moved = %+v", moved)
	}

	recorder = httptest.NewRecorder()
	HandleCancelVisit(recorder, f.request(http.MethodDelete, "/", "", f.admin, visit.ID))
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("cancel status = %d, body = %s", recorder.Code, recorder.Body.String())
	}
	recorder = httptest.NewRecorder()
	HandleCancelVisit(recorder, f.request(http.MethodDelete, "/", "", f.anna, visit.ID))
	if recorder.Code != http.StatusConflict {
		t.Fatalf("second cancel status = %d, want 409", recorder.Code)
	}
	if recorder := reschedule(f.anna, `{"start":"2026-06-01T12:30:00Z","end":"2026-06-01T14:00:00Z"}`); recorder.Code != http.StatusConflict {
		t.Fatalf("reschedule cancelled status = %d, want 409", recorder.Code)
	}

	recorder = httptest.NewRecorder()
	HandleCancelVisit(recorder, f.request(http.MethodDelete, "/", "", f.anna, visit.ID+100))
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("unknown visit status = %d, want 404", recorder.Code)
	}

	sent := f.mail.all()
	if len(sent) != 2 || sent[1].subject != "Booking cancelled - Tower" {
		t.Fatalf("emails = %+v", sent)
	}
}

func TestFinishedVisitsAreFinal(t *testing.T) {
	f := setupVisitsTest(t, defaultPolicy())
	ended := testutil.CreateVisit(t, f.db, f.seed.PlaceID, f.anna.ID, fixedNow.Add(-3*time.Hour), fixedNow.Add(-2*time.Hour), "confirmed")
	current := testutil.CreateVisit(t, f.db, f.seed.PlaceID, f.anna.ID, fixedNow.Add(5*time.Minute), fixedNow.Add(time.Hour), "confirmed")
	pending := testutil.CreateVisit(t, f.db, f.seed.PlaceID, f.boris.ID, fixedNow.Add(5*time.Minute), fixedNow.Add(time.Hour), "pending")

	cancelVisit := func(user *authz.AuthUser, visitID int64) int {
		recorder := httptest.NewRecorder()
		HandleCancelVisit(recorder, f.request(http.MethodDelete, "/", "", user, visitID))
		return recorder.Code
	}
	checkin := func(code string) int {
		recorder := httptest.NewRecorder()
		HandleCheckin(recorder, f.request(http.MethodPost, "/", `{"code":"`+code+`"}`, f.admin, 0))
		return recorder.Code
	}

	if code := cancelVisit(f.anna, ended.ID); code != http.StatusConflict {
		t.Fatalf("cancel ended visit status = %d, want 409", code)
	}
	if code := cancelVisit(nil, current.ID); code != http.StatusUnauthorized {
		t.Fatalf("anonymous cancel status = %d, want 401", code)
	}
	if code := checkin(pending.CheckinCode); code != http.StatusConflict {
		t.Fatalf("pending checkin status = %d, want 409", code)
	}
	if code := checkin(current.CheckinCode); code != http.StatusOK {
		t.Fatalf("checkin status = %d, want 200", code)
	}
	if code := cancelVisit(f.admin, current.ID); code != http.StatusConflict {
		t.Fatalf("cancel visited status = %d, want 409", code)
	}

	recorder := httptest.NewRecorder()
	HandleRescheduleVisit(recorder, f.request(http.MethodPatch, "/", `{"start":"2026-06-01T12:00:00Z","end":"2026-06-01T13:00:00Z"}`, f.anna, current.ID))
	if recorder.Code != http.StatusConflict {
		t.Fatalf("reschedule visited status = %d, want 409", recorder.Code)
	}

	row, err := f.db.Queries.GetVisit(context.Background(), ended.ID)
	if err != nil {
		t.Fatalf("GetVisit() error = %v", err)
	}
	if row.Status != "confirmed" {
		t.Fatalf("ended visit status = %q, want unchanged", row.Status)
	}
}

func TestVisitQR(t *testing.T) {
	f := setupVisitsTest(t, defaultPolicy())
	visit := testutil.CreateVisit(t, f.db, f.seed.PlaceID, f.anna.ID, fixedNow.Add(time.Hour), fixedNow.Add(2*time.Hour), "confirmed")

	recorder := httptest.NewRecorder()
	HandleVisitQR(recorder, f.request(http.MethodGet, "/qr?size=128", "", f.anna, visit.ID))
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
	}
	if ct := recorder.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content type = %q", ct)
	}
	img, err := png.Decode(recorder.Body)
	if err != nil {
		t.Fatalf("decode qr: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 128 {
		t.Fatalf("qr width = %d, want 128", b.Dx())
	}

	recorder = httptest.NewRecorder()
	HandleVisitQR(recorder, f.request(http.MethodGet, "/qr", "", f.boris, visit.ID))
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("other user status = %d, want 403", recorder.Code)
	}

	recorder = httptest.NewRecorder()
	HandleVisitQR(recorder, f.request(http.MethodGet, "/qr?size=10", "", f.anna, visit.ID))
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("tiny size status = %d, want 400", recorder.Code)
	}
}

func TestCheckin(t *testing.T) {
	f := setupVisitsTest(t, defaultPolicy())
	soon := testutil.CreateVisit(t, f.db, f.seed.PlaceID, f.anna.ID, fixedNow.Add(10*time.Minute), fixedNow.Add(time.Hour), "confirmed")
	later := testutil.CreateVisit(t, f.db, f.seed.PlaceID, f.boris.ID, fixedNow.Add(3*time.Hour), fixedNow.Add(4*time.Hour), "confirmed")

	checkin := func(user *authz.AuthUser, buildingID int64, code string) *httptest.ResponseRecorder {
		recorder := httptest.NewRecorder()
		req := f.request(http.MethodPost, "/", `{"code":"`+code+`"}`, user, 0)
		req.SetPathValue("id", strconv.FormatInt(buildingID, 10))
		HandleCheckin(recorder, req)
		return recorder
	}

	if recorder := checkin(f.anna, f.seed.BuildingID, soon.CheckinCode); recorder.Code != http.StatusForbidden {
		t.Fatalf("user checkin status = %d, want 403", recorder.Code)
	}

	recorder := checkin(f.admin, f.seed.BuildingID, models.CheckinPayload(soon.CheckinCode))
	if recorder.Code != http.StatusOK {
		t.Fatalf("checkin status = %d, body = %s", recorder.Code, recorder.Body.String())
	}
	if v := decodeVisit(t, recorder); !v.Visited || v.VisitedAt == nil || !v.VisitedAt.Equal(fixedNow) {
		t.Fatalf("visit = %+v", v)
	}

	tests := []struct {
		name       string
		buildingID int64
		code       string
		status     int
	}{
		{"already visited", f.seed.BuildingID, soon.CheckinCode, http.StatusConflict},
		{"too early", f.seed.BuildingID, later.CheckinCode, http.StatusConflict},
		{"unknown code", f.seed.BuildingID, "nope", http.StatusNotFound},
		{"other building", f.seed.BuildingID + 1, later.CheckinCode, http.StatusNotFound},
		{"empty code", f.seed.BuildingID, "visit:", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if recorder := checkin(f.admin, tt.buildingID, tt.code); recorder.Code != tt.status {
				t.Fatalf("status = %d, want %d, body = %s", recorder.Code, tt.status, recorder.Body.String())
			}
		})
	}
}
