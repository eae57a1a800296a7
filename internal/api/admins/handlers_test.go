package admins

// NOTE: Tests cannot use t.Parallel() due to shared package state.

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/api/authz"
	appdb "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/models"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/testutil"
)

func setupAdminsTest(t *testing.T) *appdb.DB {
	t.Helper()
	database := testutil.NewTestDB(t)

	resetState := func() {
		store = nil
		initOnce = sync.Once{}
	}
	resetState()
	t.Cleanup(resetState)

	InitHandlers(database)
	return database
}

func newRequest(method, target, body string, caller *authz.AuthUser) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if caller != nil {
		req = req.WithContext(authz.ContextWithUser(req.Context(), caller))
	}
	return req
}

func revokeRequest(userID int64, caller *authz.AuthUser) *http.Request {
	req := newRequest(http.MethodDelete, "/admin/"+strconv.FormatInt(userID, 10), "", caller)
	req.SetPathValue("userId", strconv.FormatInt(userID, 10))
	return req
}

func TestGrantListRevoke(t *testing.T) {
	database := setupAdminsTest(t)
	ownerRow := testutil.CreateUser(t, database, "Olga", "olga@example.com", "owner")
	anna := testutil.CreateUser(t, database, "Anna", "anna@example.com", "user")
	owner := &authz.AuthUser{ID: ownerRow.ID, Role: models.RoleOwner}

	recorder := httptest.NewRecorder()
	HandleGrantRole(recorder, newRequest(http.MethodPost, "/admin", `{"email":"Anna@Example.com"}`, owner))
	if recorder.Code != http.StatusOK {
		t.Fatalf("grant status = %d, body = %s", recorder.Code, recorder.Body.String())
	}
	var granted models.User
	if err := json.NewDecoder(recorder.Body).Decode(&granted); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if granted.ID != anna.ID || granted.Role != models.RoleAdmin {
		t.Fatalf("granted = %+v, want anna as admin", granted)
	}

	recorder = httptest.NewRecorder()
	HandleListAdmins(recorder, newRequest(http.MethodGet, "/admin", "", &authz.AuthUser{ID: anna.ID, Role: models.RoleAdmin}))
	if recorder.Code != http.StatusOK {
		t.Fatalf("list status = %d, body = %s", recorder.Code, recorder.Body.String())
	}
	var staff []models.User
	if err := json.NewDecoder(recorder.Body).Decode(&staff); err != nil {
		t.Fatalf("decode admins: %v", err)
	}
	if len(staff) != 2 {
		t.Fatalf("admins = %+v, want 2", staff)
	}

	recorder = httptest.NewRecorder()
	HandleRevokeRole(recorder, revokeRequest(anna.ID, owner))
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("revoke status = %d, body = %s", recorder.Code, recorder.Body.String())
	}
	row, err := database.Queries.GetUserByID(context.Background(), anna.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if row.Role != string(models.RoleUser) {
		t.Fatalf("role after revoke = %q, want user", row.Role)
	}

	recorder = httptest.NewRecorder()
	HandleRevokeRole(recorder, revokeRequest(anna.ID, owner))
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("second revoke status = %d, want 404", recorder.Code)
	}
}

func TestGrantRoleValidation(t *testing.T) {
	database := setupAdminsTest(t)
	ownerRow := testutil.CreateUser(t, database, "Olga", "olga@example.com", "owner")
	anna := testutil.CreateUser(t, database, "Anna", "anna@example.com", "user")
	owner := &authz.AuthUser{ID: ownerRow.ID, Role: models.RoleOwner}
	admin := &authz.AuthUser{ID: 99, Role: models.RoleAdmin}

	tests := []struct {
		name   string
		body   string
		caller *authz.AuthUser
		status int
	}{
		{"anonymous", `{"userId":` + strconv.FormatInt(anna.ID, 10) + `}`, nil, http.StatusUnauthorized},
		{"admin cannot grant", `{"userId":` + strconv.FormatInt(anna.ID, 10) + `}`, admin, http.StatusForbidden},
		{"no target", `{"role":"admin"}`, owner, http.StatusBadRequest},
		{"user role", `{"userId":` + strconv.FormatInt(anna.ID, 10) + `,"role":"user"}`, owner, http.StatusBadRequest},
		{"bad email", `{"email":"not-an-email"}`, owner, http.StatusBadRequest},
		{"unknown user", `{"email":"ghost@example.com"}`, owner, http.StatusNotFound},
		{"self demotion", `{"userId":` + strconv.FormatInt(ownerRow.ID, 10) + `,"role":"admin"}`, owner, http.StatusForbidden},
		{"promote to owner", `{"userId":` + strconv.FormatInt(anna.ID, 10) + `,"role":"owner"}`, owner, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			HandleGrantRole(recorder, newRequest(http.MethodPost, "/admin", tt.body, tt.caller))
			if recorder.Code != tt.status {
				t.Fatalf("status = %d, want %d, body = %s", recorder.Code, tt.status, recorder.Body.String())
			}
		})
	}
}

func TestRevokeRoleRules(t *testing.T) {
	database := setupAdminsTest(t)
	ownerRow := testutil.CreateUser(t, database, "Olga", "olga@example.com", "owner")
	adminRow := testutil.CreateUser(t, database, "Igor", "igor@example.com", "admin")
	owner := &authz.AuthUser{ID: ownerRow.ID, Role: models.RoleOwner}

	tests := []struct {
		name   string
		target int64
		caller *authz.AuthUser
		status int
	}{
		{"admin cannot revoke", ownerRow.ID, &authz.AuthUser{ID: adminRow.ID, Role: models.RoleAdmin}, http.StatusForbidden},
		{"owner cannot revoke self", ownerRow.ID, owner, http.StatusForbidden},
		{"unknown user", 4040, owner, http.StatusNotFound},
		{"owner revokes admin", adminRow.ID, owner, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			HandleRevokeRole(recorder, revokeRequest(tt.target, tt.caller))
			if recorder.Code != tt.status {
				t.Fatalf("status = %d, want %d, body = %s", recorder.Code, tt.status, recorder.Body.String())
			}
		})
	}
}
