package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	phttp "github.com/NightBlad/Tarotbot/internal/platform/net/http"
	"github.com/NightBlad/Tarotbot/internal/services/readings/domain"
)

type fakeStatus struct{ configured bool }

func (f *fakeStatus) Status() domain.StatusSnapshot { return domain.StatusSnapshot{} }
func (f *fakeStatus) OracleConfigured() bool        { return f.configured }

func newTestServer(st domain.StatusPort) *httptest.Server {
	mux := chi.NewRouter()
	Register(phttp.AdaptChi(mux), Deps{
		ServiceName: "tarot-api",
		StartedAt:   time.Now().Add(-time.Minute),
		Readings:    st,
	})
	return httptest.NewServer(mux)
}

func getEnvelope(t *testing.T, srv *httptest.Server, path string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("get %s: %v", path, err)
	}
	defer resp.Body.Close()
	var env struct {
		StatusCode int            `json:"status_code"`
		Data       map[string]any `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return resp.StatusCode, env.Data
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&fakeStatus{configured: true})
	defer srv.Close()

	status, data := getEnvelope(t, srv, "/health")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if data["ok"] != true || data["service"] != "tarot-api" {
		t.Fatalf("health = %+v", data)
	}
}

func TestReadyOK(t *testing.T) {
	srv := newTestServer(&fakeStatus{configured: true})
	defer srv.Close()

	_, data := getEnvelope(t, srv, "/ready")
	if data["status"] != "ok" {
		t.Fatalf("ready status = %v", data["status"])
	}
}

func TestReadyDegradedWhenOracleUnconfigured(t *testing.T) {
	srv := newTestServer(&fakeStatus{configured: false})
	defer srv.Close()

	_, data := getEnvelope(t, srv, "/ready")
	if data["status"] != "degraded" {
		t.Fatalf("ready status = %v, want degraded", data["status"])
	}
}

func TestVersion(t *testing.T) {
	srv := newTestServer(&fakeStatus{configured: true})
	defer srv.Close()

	status, data := getEnvelope(t, srv, "/version")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if data["service"] != "tarot-api" {
		t.Fatalf("version = %+v", data)
	}
}

func TestService(t *testing.T) {
	srv := newTestServer(&fakeStatus{configured: true})
	defer srv.Close()

	_, data := getEnvelope(t, srv, "/service")
	if data["name"] != "tarot-api" {
		t.Fatalf("service = %+v", data)
	}
	if up, ok := data["uptime"].(float64); !ok || up < 59 {
		t.Fatalf("uptime = %v", data["uptime"])
	}
}
