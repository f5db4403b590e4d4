package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/NightBlad/Tarotbot/internal/core/draw"
	phttp "github.com/NightBlad/Tarotbot/internal/platform/net/http"
)

func newTestServer() *httptest.Server {
	mux := chi.NewRouter()
	Register(phttp.AdaptChi(mux), draw.NewSeeded(1))
	return httptest.NewServer(mux)
}

type wire struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func get(t *testing.T, srv *httptest.Server, path string) (int, wire) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("get %s: %v", path, err)
	}
	defer resp.Body.Close()
	var w wire
	if err := json.NewDecoder(resp.Body).Decode(&w); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return resp.StatusCode, w
}

func TestDrawOne(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	status, w := get(t, srv, "/draw/one")
	if status != http.StatusOK || !w.Success {
		t.Fatalf("status = %d success = %v", status, w.Success)
	}
	var card struct {
		NameShort   string `json:"name_short"`
		Orientation string `json:"orientation"`
		Image       string `json:"image"`
	}
	if err := json.Unmarshal(w.Data, &card); err != nil {
		t.Fatalf("decode card: %v", err)
	}
	if card.NameShort == "" || card.Orientation == "" {
		t.Fatalf("card = %+v", card)
	}
	if !strings.HasPrefix(card.Image, "./images/") || !strings.HasSuffix(card.Image, ".jpeg") {
		t.Fatalf("image = %q", card.Image)
	}
}

func TestDrawSpreadDefaultAndN(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	_, w := get(t, srv, "/draw/spread")
	var cards []json.RawMessage
	if err := json.Unmarshal(w.Data, &cards); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cards) != 3 {
		t.Fatalf("default spread = %d cards, want 3", len(cards))
	}

	_, w = get(t, srv, "/draw/spread?n=7")
	if err := json.Unmarshal(w.Data, &cards); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cards) != 7 {
		t.Fatalf("spread n=7 = %d cards", len(cards))
	}
}

func TestDrawAllKnownKinds(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	for _, kind := range draw.Kinds() {
		status, w := get(t, srv, "/draw/"+kind)
		if status != http.StatusOK || !w.Success {
			t.Fatalf("kind %q: status = %d success = %v", kind, status, w.Success)
		}
	}
}

func TestDrawUnknownType(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	status, w := get(t, srv, "/draw/tarot")
	if status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", status)
	}
	if w.Success {
		t.Fatalf("success = true for unknown type")
	}
	if w.Error != "Unknown spread type: tarot" {
		t.Fatalf("error = %q", w.Error)
	}
}

func TestDrawExtrasQuery(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	_, w := get(t, srv, "/draw/release-retain?extras=money,%20health%20,,")
	var positions []struct {
		Position string `json:"position"`
	}
	if err := json.Unmarshal(w.Data, &positions); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(positions) != 4 {
		t.Fatalf("positions = %d, want 4", len(positions))
	}
	if positions[2].Position != "extra: money" || positions[3].Position != "extra: health" {
		t.Fatalf("extra positions = %q, %q", positions[2].Position, positions[3].Position)
	}
}

func TestDrawLawOfAttractionSigQuery(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	_, w := get(t, srv, "/draw/law-of-attraction?sig=ar00")
	var positions []struct {
		Position string `json:"position"`
		Card     struct {
			NameShort string `json:"name_short"`
		} `json:"card"`
	}
	if err := json.Unmarshal(w.Data, &positions); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if positions[0].Position != "SIGNIFICATOR" || positions[0].Card.NameShort != "ar00" {
		t.Fatalf("significator = %+v", positions[0])
	}
}

func TestPostLawOfAttraction(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/draw/law-of-attraction", "application/json",
		strings.NewReader(`{"significator":"ar01"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	var w wire
	if err := json.NewDecoder(resp.Body).Decode(&w); err != nil {
		t.Fatalf("decode: %v", err)
	}
	var positions []struct {
		Card struct {
			NameShort string `json:"name_short"`
		} `json:"card"`
	}
	if err := json.Unmarshal(w.Data, &positions); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if positions[0].Card.NameShort != "ar01" {
		t.Fatalf("significator = %q, want ar01", positions[0].Card.NameShort)
	}
}

func TestPostReleaseRetainEmptyBody(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/draw/release-retain", "application/json", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 on empty body", resp.StatusCode)
	}
	var w wire
	if err := json.NewDecoder(resp.Body).Decode(&w); err != nil {
		t.Fatalf("decode: %v", err)
	}
	var positions []json.RawMessage
	if err := json.Unmarshal(w.Data, &positions); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(positions) != 2 {
		t.Fatalf("positions = %d, want 2", len(positions))
	}
}

func TestCards(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	status, w := get(t, srv, "/cards")
	if status != http.StatusOK || !w.Success {
		t.Fatalf("status = %d success = %v", status, w.Success)
	}
	var cards []struct {
		NameShort string `json:"name_short"`
	}
	if err := json.Unmarshal(w.Data, &cards); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cards) != 78 {
		t.Fatalf("cards = %d, want 78", len(cards))
	}
}
