//go:build smoke

package smoke

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/client"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/client/session"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/models"
	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/testutil"
)

// runningServer is a built cowork-server process listening on a local port.
type runningServer struct {
	baseURL string
	output  *bytes.Buffer
	exited  <-chan error
}

func (s *runningServer) logs() string {
	return s.output.String()
}

func startServer(t *testing.T) *runningServer {
	t.Helper()
	workDir := t.TempDir()

	binary := filepath.Join(workDir, "cowork-server")
	build := exec.Command("go", "build", "-o", binary, "./cmd/server")
	build.Dir = moduleRoot(t)
	if out, err := build.CombinedOutput(); err != nil {
		t.Fatalf("go build ./cmd/server: %v\n%s", err, out)
	}

	port := freePort(t)
	configPath := filepath.Join(workDir, "app.yaml")
	config := fmt.Sprintf(`app:
  name: "Cowork"
  environment: "development"
  port: %d
  base_url: "http://127.0.0.1:%d"

database:
  driver: "sqlite"
  filename: %q

storage:
  driver: "local"
  dir: %q

booking:
  min_visit_minutes: 30
  max_advance_booking_days: 14
  require_confirmation: false

features:
  enable_scheduler: false
`, port, port,
		filepath.ToSlash(filepath.Join(workDir, "data", "cowork.db")),
		filepath.ToSlash(filepath.Join(workDir, "files")))
	if err := os.WriteFile(configPath, []byte(config), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	output := &bytes.Buffer{}
	cmd := exec.Command(binary, "-config", configPath)
	cmd.Dir = workDir
	cmd.Env = append(os.Environ(), "APP_SECRET_KEY=cowork-smoke-secret")
	cmd.Stdout = output
	cmd.Stderr = output
	if err := cmd.Start(); err != nil {
		t.Fatalf("start server: %v", err)
	}

	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()
	t.Cleanup(func() {
		_ = cmd.Process.Signal(os.Interrupt)
		select {
		case <-exited:
		case <-time.After(5 * time.Second):
			_ = cmd.Process.Kill()
		}
	})

	srv := &runningServer{
		baseURL: fmt.Sprintf("http://127.0.0.1:%d", port),
		output:  output,
		exited:  exited,
	}
	srv.waitHealthy(t)
	return srv
}

func (s *runningServer) waitHealthy(t *testing.T) {
	t.Helper()
	hc := &http.Client{Timeout: 500 * time.Millisecond}
	deadline := time.Now().Add(15 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case err := <-s.exited:
			t.Fatalf("server exited during startup: %v\n%s", err, s.logs())
		default:
		}
		resp, err := hc.Get(s.baseURL + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server never became healthy\n%s", s.logs())
}

func (s *runningServer) newClient(t *testing.T) *client.Client {
	t.Helper()
	store, err := session.Open(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	c, err := client.New(s.baseURL, client.Options{Session: store, MaxRetries: 1})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func moduleRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("go.mod not found above test directory")
		}
		dir = parent
	}
}

func ptr[T any](v T) *T { return &v }

func TestBookingLifecycle(t *testing.T) {
	srv := startServer(t)
	ctx := context.Background()

	owner := srv.newClient(t)
	ownerAuth, err := owner.Register(ctx, models.RegisterRequest{Name: "Olga", Email: "olga@example.com", Password: "owner-pass"})
	if err != nil {
		t.Fatalf("register owner: %v\n%s", err, srv.logs())
	}
	if ownerAuth.User.Role != models.RoleOwner {
		t.Fatalf("first account role = %q, want owner", ownerAuth.User.Role)
	}

	building, err := owner.CreateBuilding(ctx, models.BuildingInput{Name: "Tower", Address: "1 Main St", Timezone: "UTC"})
	if err != nil {
		t.Fatalf("create building: %v", err)
	}
	floor, err := owner.CreateFloor(ctx, building.ID, models.FloorInput{Level: ptr(int64(2))})
	if err != nil {
		t.Fatalf("create floor: %v", err)
	}
	place, err := owner.CreatePlace(ctx, building.ID, floor.ID, models.PlaceInput{
		Name: ptr("A-1"),
		X:    ptr(25.0),
		Y:    ptr(40.0),
	})
	if err != nil {
		t.Fatalf("create place: %v", err)
	}

	member := srv.newClient(t)
	if _, err := member.Register(ctx, models.RegisterRequest{Name: "Boris", Email: "boris@example.com", Password: "member-pass"}); err != nil {
		t.Fatalf("register member: %v", err)
	}

	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Hour)
	end := start.Add(2 * time.Hour)
	visit, err := member.Book(ctx, building.ID, place.ID, start, end)
	if err != nil {
		t.Fatalf("book: %v\n%s", err, srv.logs())
	}
	if visit.Status != models.VisitConfirmed {
		t.Fatalf("visit status = %q, want confirmed", visit.Status)
	}

	_, err = owner.Book(ctx, building.ID, place.ID, start.Add(time.Hour), end.Add(time.Hour))
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusConflict {
		t.Fatalf("overlapping booking error = %v, want 409", err)
	}

	mine, err := member.MyVisits(ctx, client.MyVisitsFilter{UpcomingOnly: true})
	if err != nil {
		t.Fatalf("my visits: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != visit.ID || mine[0].PlaceName != "A-1" {
		t.Fatalf("my visits = %+v", mine)
	}

	if err := member.CancelVisit(ctx, building.ID, place.ID, visit.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := owner.Book(ctx, building.ID, place.ID, start, end); err != nil {
		t.Fatalf("rebook freed slot: %v", err)
	}
	cancelled, err := member.MyVisits(ctx, client.MyVisitsFilter{Status: models.VisitCancelled})
	if err != nil {
		t.Fatalf("cancelled visits: %v", err)
	}
	if len(cancelled) != 1 {
		t.Fatalf("cancelled visits = %+v", cancelled)
	}
}

func TestMemberCannotManageBuildings(t *testing.T) {
	srv := startServer(t)
	ctx := context.Background()

	owner := srv.newClient(t)
	if _, err := owner.Register(ctx, models.RegisterRequest{Name: "Olga", Email: "olga@example.com", Password: "owner-pass"}); err != nil {
		t.Fatalf("register owner: %v", err)
	}
	member := srv.newClient(t)
	if _, err := member.Register(ctx, models.RegisterRequest{Name: "Boris", Email: "boris@example.com", Password: "member-pass"}); err != nil {
		t.Fatalf("register member: %v", err)
	}

	_, err := member.CreateBuilding(ctx, models.BuildingInput{Name: "Annex", Address: "2 Main St"})
	if !errors.Is(err, client.ErrForbidden) {
		t.Fatalf("member create building error = %v, want forbidden", err)
	}
}

func TestSchemaConstraints(t *testing.T) {
	db := testutil.NewTestDB(t)

	var tokenVersion int
	if err := db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('users') WHERE name = 'token_version'`).Scan(&tokenVersion); err != nil {
		t.Fatalf("inspect users columns: %v", err)
	}
	if tokenVersion != 1 {
		t.Fatal("users.token_version missing after migrations")
	}

	if _, err := db.Exec(`INSERT INTO floors (building_id, level) VALUES (9999, 1)`); err == nil {
		t.Fatal("floor with unknown building was accepted")
	}
}
