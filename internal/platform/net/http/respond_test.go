package http

import (
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	perr "github.com/NightBlad/Tarotbot/internal/platform/errors"
)

func record(t *testing.T, resp Response) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(stdhttp.MethodGet, "/", nil)
	Handle(func(*stdhttp.Request) Response { return resp })(w, r)

	var body map[string]any
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("body is not JSON: %v (%s)", err, w.Body.String())
		}
	}
	return w, body
}

func TestOKEnvelope(t *testing.T) {
	w, body := record(t, OK(map[string]any{"k": "v"}))
	if w.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body["status_code"] != float64(200) {
		t.Fatalf("envelope status_code = %v", body["status_code"])
	}
	data, _ := body["data"].(map[string]any)
	if data["k"] != "v" {
		t.Fatalf("data = %v", body["data"])
	}
}

func TestErrorEnvelope(t *testing.T) {
	w, body := record(t, Error(perr.NotFoundf("no such card")))
	if w.Code != stdhttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if body["error"] != "no such card" {
		t.Fatalf("error = %v", body["error"])
	}
}

func TestRawBypassesEnvelope(t *testing.T) {
	w, body := record(t, Raw(stdhttp.StatusTooManyRequests, map[string]any{"error": "slow down"}))
	if w.Code != stdhttp.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if _, ok := body["status_code"]; ok {
		t.Fatalf("raw response carried an envelope: %v", body)
	}
	if body["error"] != "slow down" {
		t.Fatalf("body = %v", body)
	}
}

func TestNoContent(t *testing.T) {
	w, _ := record(t, NoContent())
	if w.Code != stdhttp.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Fatalf("204 carried a body: %s", w.Body.String())
	}
}

func TestZeroStatusDefaultsToOK(t *testing.T) {
	w, _ := record(t, Response{Body: "x"})
	if w.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}
