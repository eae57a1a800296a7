package auth

// NOTE: Tests cannot use t.Parallel() due to shared package state.

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	appdb "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db"
	dbgen "github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/db/generated"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/models"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/ratelimit"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/testutil"
)

func setupAuthTest(t *testing.T, limiterCfg *ratelimit.Config) *appdb.DB {
	t.Helper()

	database := testutil.NewTestDB(t)

	resetState := func() {
		store = nil
		tokens = nil
		limiter = nil
		trustProxy = false
		initOnce = sync.Once{}
	}
	resetState()
	t.Cleanup(resetState)

	var l *ratelimit.Limiter
	if limiterCfg != nil {
		l = ratelimit.New(limiterCfg)
		t.Cleanup(l.Close)
	}
	InitHandlers(database, Options{
		Tokens:  NewTokenIssuer("test-secret", time.Hour),
		Limiter: l,
	})
	return database
}

func postJSON(t *testing.T, handler http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	handler(recorder, req)
	return recorder
}

func decodeAuthResponse(t *testing.T, recorder *httptest.ResponseRecorder) models.AuthResponse {
	t.Helper()
	var resp models.AuthResponse
	if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
		t.Fatalf("decode auth response: %v", err)
	}
	if err := resp.Validate(); err != nil {
		t.Fatalf("invalid auth response: %v", err)
	}
	return resp
}

func TestRegisterFirstUserBecomesOwner(t *testing.T) {
	setupAuthTest(t, nil)

	first := postJSON(t, HandleRegister, "/auth/register",
		`{"name":"Anna","email":"Anna@Example.com","password":"secret123","phone":"8 (912) 345-67-89"}`)
	if first.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", first.Code, first.Body.String())
	}
	owner := decodeAuthResponse(t, first)
	if owner.User.Role != models.RoleOwner {
		t.Fatalf("first user role = %q, want owner", owner.User.Role)
	}
	if owner.User.Email != "anna@example.com" {
		t.Fatalf("email = %q, want lowercased", owner.User.Email)
	}
	if owner.User.Phone != "+79123456789" {
		t.Fatalf("phone = %q, want E.164", owner.User.Phone)
	}

	second := postJSON(t, HandleRegister, "/auth/register",
		`{"name":"Boris","email":"boris@example.com","password":"secret123"}`)
	if second.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", second.Code, second.Body.String())
	}
	if user := decodeAuthResponse(t, second); user.User.Role != models.RoleUser {
		t.Fatalf("second user role = %q, want user", user.User.Role)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	setupAuthTest(t, nil)

	body := `{"name":"Anna","email":"anna@example.com","password":"secret123"}`
	if rec := postJSON(t, HandleRegister, "/auth/register", body); rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	rec := postJSON(t, HandleRegister, "/auth/register",
		`{"name":"Anna 2","email":"ANNA@example.com","password":"secret123"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409; body = %s", rec.Code, rec.Body.String())
	}
}

func TestRegisterValidation(t *testing.T) {
	setupAuthTest(t, nil)

	tests := []struct {
		name string
		body string
	}{
		{name: "short password", body: `{"name":"A","email":"a@example.com","password":"short"}`},
		{name: "bad email", body: `{"name":"A","email":"nope","password":"secret123"}`},
		{name: "missing name", body: `{"email":"a@example.com","password":"secret123"}`},
		{name: "unknown field", body: `{"name":"A","email":"a@example.com","password":"secret123","role":"owner"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, HandleRegister, "/auth/register", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	setupAuthTest(t, nil)
	postJSON(t, HandleRegister, "/auth/register", `{"name":"Anna","email":"anna@example.com","password":"secret123"}`)

	rec := postJSON(t, HandleLogin, "/auth/login", `{"email":" ANNA@example.com ","password":"secret123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeAuthResponse(t, rec)

	req := httptest.NewRequest(http.MethodGet, "/clients/@me", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	user, err := UserFromRequest(req)
	if err != nil {
		t.Fatalf("UserFromRequest() error = %v", err)
	}
	if user == nil || user.ID != resp.User.ID || user.Role != models.RoleOwner {
		t.Fatalf("user = %+v", user)
	}

	rec = postJSON(t, HandleLogin, "/auth/login", `{"email":"anna@example.com","password":"wrong-password"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	rec = postJSON(t, HandleLogin, "/auth/login", `{"email":"ghost@example.com","password":"secret123"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestLoginLockout(t *testing.T) {
	setupAuthTest(t, &ratelimit.Config{
		RegisterMaxIPPerHour: 10,
		LoginMaxFailures:     2,
		LoginLockout:         time.Minute,
		LoginMaxIPPerHour:    100,
	})
	postJSON(t, HandleRegister, "/auth/register", `{"name":"Anna","email":"anna@example.com","password":"secret123"}`)

	for i := 0; i < 2; i++ {
		rec := postJSON(t, HandleLogin, "/auth/login", `{"email":"anna@example.com","password":"wrong-password"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d status = %d", i+1, rec.Code)
		}
	}

	rec := postJSON(t, HandleLogin, "/auth/login", `{"email":"anna@example.com","password":"secret123"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After header")
	}
}

func TestUserFromRequest(t *testing.T) {
	setupAuthTest(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	user, err := UserFromRequest(req)
	if err != nil || user != nil {
		t.Fatalf("anonymous = %+v, %v", user, err)
	}

	req.Header.Set("Authorization", "Bearer not-a-token")
	if _, err := UserFromRequest(req); err == nil {
		t.Fatal("expected invalid token error")
	}

	token, err := IssueToken(models.User{ID: 999, Email: "gone@example.com", Role: models.RoleUser}, 0)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if _, err := UserFromRequest(req); err != ErrInvalidToken {
		t.Fatalf("deleted user error = %v, want ErrInvalidToken", err)
	}
}

func TestPasswordChangeRevokesTokens(t *testing.T) {
	database := setupAuthTest(t, nil)

	rec := postJSON(t, HandleRegister, "/auth/register",
		`{"name":"Anna","email":"anna@example.com","password":"secret123"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeAuthResponse(t, rec)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	if user, err := UserFromRequest(req); err != nil || user == nil {
		t.Fatalf("fresh token = %+v, %v", user, err)
	}

	hash, err := HashPassword("another-secret")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if err := database.Queries.UpdateUserPassword(context.Background(), dbgen.UpdateUserPasswordParams{
		PasswordHash: hash,
		ID:           resp.User.ID,
	}); err != nil {
		t.Fatalf("UpdateUserPassword() error = %v", err)
	}

	if _, err := UserFromRequest(req); err != ErrInvalidToken {
		t.Fatalf("stale token error = %v, want ErrInvalidToken", err)
	}

	login := postJSON(t, HandleLogin, "/auth/login",
		`{"email":"anna@example.com","password":"another-secret"}`)
	if login.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", login.Code, login.Body.String())
	}
	fresh := decodeAuthResponse(t, login)
	req.Header.Set("Authorization", "Bearer "+fresh.Token)
	if user, err := UserFromRequest(req); err != nil || user == nil {
		t.Fatalf("relogin token = %+v, %v", user, err)
	}
}
