package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	phttp "github.com/NightBlad/Tarotbot/internal/platform/net/http"
	"github.com/NightBlad/Tarotbot/internal/services/readings/domain"
)

type fakeService struct {
	text     string
	err      error
	identity string
	flow     string
	req      domain.OracleRequest
}

func (f *fakeService) Ask(_ context.Context, identity, flowID string, req domain.OracleRequest) (string, error) {
	f.identity, f.flow, f.req = identity, flowID, req
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type fakeStatus struct{ snap domain.StatusSnapshot }

func (f *fakeStatus) Status() domain.StatusSnapshot { return f.snap }
func (f *fakeStatus) OracleConfigured() bool        { return true }

func newTestServer(svc domain.ServicePort, st domain.StatusPort) *httptest.Server {
	mux := chi.NewRouter()
	Register(phttp.AdaptChi(mux), svc, st)
	return httptest.NewServer(mux)
}

func TestOracleSuccess(t *testing.T) {
	svc := &fakeService{text: "a reading"}
	srv := newTestServer(svc, &fakeStatus{})
	defer srv.Close()

	body := `{"spreadKind":"three","question":"hi"}`
	resp, err := http.Post(srv.URL+"/oracle/my-flow", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Text != "a reading" {
		t.Fatalf("text = %q", out.Text)
	}
	if svc.flow != "my-flow" {
		t.Fatalf("flow = %q", svc.flow)
	}
	if svc.req.SpreadKind != "three" || svc.req.Question != "hi" {
		t.Fatalf("req = %+v", svc.req)
	}
}

func TestOracleIdentityIncludesSessionToken(t *testing.T) {
	svc := &fakeService{text: "x"}
	srv := newTestServer(svc, &fakeStatus{})
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/oracle/f", strings.NewReader(`{"spreadKind":"one"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Session-Token", "tok123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	resp.Body.Close()

	if !strings.HasSuffix(svc.identity, "|tok123") {
		t.Fatalf("identity = %q, want session token suffix", svc.identity)
	}
}

func TestOracleValidationError(t *testing.T) {
	srv := newTestServer(&fakeService{}, &fakeStatus{})
	defer srv.Close()

	// missing required spreadKind
	resp, err := http.Post(srv.URL+"/oracle/f", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity && resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 422 or 400", resp.StatusCode)
	}
	var out struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Error == "" {
		t.Fatalf("error message missing")
	}
}

func TestOracleMalformedJSON(t *testing.T) {
	srv := newTestServer(&fakeService{}, &fakeStatus{})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/oracle/f", "application/json", strings.NewReader(`{nope`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestOracleRateLimited(t *testing.T) {
	svc := &fakeService{err: &domain.RateLimitedError{
		Limiter:    "oracle",
		RetryAfter: 30 * time.Second,
		QueueLen:   4,
	}}
	srv := newTestServer(svc, &fakeStatus{})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/oracle/f", "application/json", strings.NewReader(`{"spreadKind":"one"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
	var out struct {
		Error             string `json:"error"`
		RetryAfterSeconds int    `json:"retryAfterSeconds"`
		QueueLength       int    `json:"queueLength"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.RetryAfterSeconds != 30 || out.QueueLength != 4 {
		t.Fatalf("denied payload = %+v", out)
	}
	if out.Error == "" {
		t.Fatalf("error message missing")
	}
}

func TestStatusEndpoint(t *testing.T) {
	st := &fakeStatus{snap: domain.StatusSnapshot{
		UptimeSeconds: 42,
		TotalRequests: 10,
		CacheHits:     6,
		CacheMisses:   4,
		CacheHitRate:  0.6,
		CacheCapacity: 500,
	}}
	srv := newTestServer(&fakeService{}, st)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/status")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var out domain.StatusSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != st.snap {
		t.Fatalf("snapshot = %+v, want %+v", out, st.snap)
	}
}
