package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/talgya/wavemap/internal/persistence"
	"github.com/talgya/wavemap/internal/solver"
	"github.com/talgya/wavemap/internal/terrain"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()

	db, err := persistence.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cat := terrain.Default()
	eng, err := solver.New(solver.Config{Width: 4, Height: 4, Catalog: cat, Seed: 21})
	if err != nil {
		t.Fatalf("New engine: %v", err)
	}
	eng.Solve()

	run := persistence.Run{
		ID:      persistence.NewRunID(),
		Seed:    21,
		Width:   4,
		Height:  4,
		Outcome: "complete",
		Steps:   16,
	}
	if err := db.SaveRun(run, eng.Grid()); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	return &Server{DB: db, Catalog: cat}, run.ID
}

func TestListRuns(t *testing.T) {
	srv, id := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), id) {
		t.Errorf("response does not mention run %s", id)
	}
}

func TestRunDetail(t *testing.T) {
	srv, id := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/"+id, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Run   persistence.Run       `json:"run"`
		Cells []persistence.CellRow `json:"cells"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Run.ID != id {
		t.Errorf("run id = %s, want %s", body.Run.ID, id)
	}
	if len(body.Cells) == 0 {
		t.Error("detail should include committed cells")
	}
}

func TestRunPNG(t *testing.T) {
	srv, id := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/"+id+"/map.png?scale=2", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", got)
	}
	if rec.Body.Len() == 0 {
		t.Error("empty PNG body")
	}
}

func TestRunNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/no-such-run", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv, id := newTestServer(t)

	for _, path := range []string{"/api/v1/runs", "/api/v1/runs/" + id} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("POST %s status = %d, want 405", path, rec.Code)
		}
	}
}
