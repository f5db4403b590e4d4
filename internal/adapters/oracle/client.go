// Package oracle provides the HTTP client for the upstream oracle run API
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	perr "github.com/NightBlad/Tarotbot/internal/platform/errors"
	"github.com/NightBlad/Tarotbot/internal/platform/logger"

	"github.com/google/uuid"
)

const (
	defaultTimeout  = 60 * time.Second
	defaultUA       = "tarot-api"
	defaultInputMax = 1024
)

// ErrNoOutput reports a 2xx oracle response that carried no extractable text
// Callers treat this as a successful call with an empty reading
var ErrNoOutput = errors.New("oracle: no output text in response")

// Options configures the Client
type Options struct {
	// URL is the run endpoint. Accepted forms:
	// a full run URL, a template containing {flow}, a bare base host,
	// or a URL|TOKEN pair
	URL string

	// APIKey overrides any token embedded in the URL pair
	APIKey string

	// AuthHeader names the header carrying the token, default Authorization
	// Authorization gets a Bearer prefix, custom headers get the raw token
	AuthHeader string

	UserAgent string
	Timeout   time.Duration
	Debug     bool

	// InputMax caps input_value length, default 1024
	InputMax int
}

// Client posts run requests to the oracle. No internal retries; the caller
// owns retry policy and this client reports typed errors instead
type Client struct {
	http *http.Client
	opts Options
	log  logger.Logger

	// session id seam for tests
	newSession func() string
	now        func() time.Time
}

// NewClient creates a Client with sane defaults
func NewClient(o Options) *Client {
	if o.AuthHeader == "" {
		o.AuthHeader = "Authorization"
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.InputMax <= 0 {
		o.InputMax = defaultInputMax
	}
	return &Client{
		http:       &http.Client{Timeout: o.Timeout},
		opts:       o,
		log:        *logger.Named("oracle"),
		newSession: uuid.NewString,
		now:        time.Now,
	}
}

// Configured reports whether a run URL is set at all
func (c *Client) Configured() bool { return strings.TrimSpace(c.opts.URL) != "" }

// payload is the run API request body
type payload struct {
	OutputType string `json:"output_type"`
	InputType  string `json:"input_type"`
	InputValue string `json:"input_value"`
	SessionID  string `json:"session_id,omitempty"`
}

// ResolveRunURL expands the configured URL for a flow id and returns the
// effective run URL and auth token. The explicit APIKey wins over a token
// embedded in a URL|TOKEN pair
func (c *Client) ResolveRunURL(flow string) (runURL, token string, err error) {
	raw := strings.TrimSpace(c.opts.URL)
	if raw == "" {
		return "", "", perr.Configf("oracle URL is not set; set it to a full run URL (e.g. https://host/api/v1/run/{flow})")
	}
	if !strings.HasPrefix(strings.ToLower(raw), "http") {
		return "", "", perr.Configf("oracle URL must start with http/https, or be a URL and token separated by a pipe (URL|TOKEN)")
	}

	urlPart := raw
	tokenPart := ""
	if strings.Contains(raw, "|") {
		var parts []string
		for _, p := range strings.Split(raw, "|") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		urlPart = parts[0]
		for _, p := range parts {
			if strings.HasPrefix(strings.ToLower(p), "http") {
				urlPart = p
				break
			}
		}
		for _, p := range parts {
			if !strings.HasPrefix(strings.ToLower(p), "http") {
				tokenPart = p
				break
			}
		}
	}

	cleaned := strings.TrimSuffix(urlPart, "/")
	esc := url.PathEscape(flow)
	switch {
	case strings.Contains(cleaned, "{flow}"):
		runURL = strings.ReplaceAll(cleaned, "{flow}", esc)
	case strings.Contains(cleaned, "/api/v1/run"):
		// a trailing segment after /api/v1/run means the URL already names a flow
		if strings.HasSuffix(cleaned, "/api/v1/run") {
			runURL = cleaned + "/" + esc
		} else {
			runURL = cleaned
		}
	default:
		runURL = cleaned + "/api/v1/run/" + esc
	}

	token = tokenPart
	if k := strings.TrimSpace(c.opts.APIKey); k != "" {
		token = k
	}
	return runURL, token, nil
}

// authorize sets the auth header when a token is configured
// Authorization gets a Bearer prefix unless one is already present
func (c *Client) authorize(req *http.Request, token string) {
	if token == "" {
		return
	}
	name := c.opts.AuthHeader
	if strings.EqualFold(name, "Authorization") {
		if !hasBearerPrefix(token) {
			token = "Bearer " + token
		}
	}
	req.Header.Set(name, token)
}

func hasBearerPrefix(s string) bool {
	if len(s) < 7 || !strings.EqualFold(s[:6], "bearer") {
		return false
	}
	switch s[6] {
	case ' ', '\t':
		return true
	}
	return false
}

// maskToken hides the token body for debug logs
func maskToken(t string) string {
	if len(t) <= 8 {
		return "****"
	}
	return t[:4] + "..." + t[len(t)-4:]
}

// Call posts input to the flow's run URL and returns the extracted text
// A 2xx response without extractable text returns ErrNoOutput
func (c *Client) Call(ctx context.Context, flow, input string) (string, error) {
	runURL, token, err := c.ResolveRunURL(flow)
	if err != nil {
		return "", err
	}

	body := payload{
		OutputType: "text",
		InputType:  "chat",
		InputValue: ReduceInput(input, c.opts.InputMax),
		SessionID:  c.newSession(),
	}
	buf, err := json.Marshal(body)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnknown, "oracle marshal payload failed")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, runURL, bytes.NewReader(buf))
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnknown, "oracle new request failed")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.opts.UserAgent)
	c.authorize(req, token)

	if c.opts.Debug {
		c.log.Debug().
			Str("flow", flow).
			Str("header", c.opts.AuthHeader).
			Str("token", maskToken(token)).
			Int("input_len", len(body.InputValue)).
			Msg("oracle request")
	}

	start := c.now()
	resp, err := c.http.Do(req)
	lat := c.now().Sub(start)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", perr.Wrapf(err, perr.ErrorCodeTimeout, "oracle call timed out")
		}
		return "", perr.Wrapf(err, perr.ErrorCodeUnavailable, "oracle call failed")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
	}()

	c.log.Debug().
		Str("flow", flow).
		Int("status", resp.StatusCode).
		Dur("latency", lat).
		Msg("oracle http response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		tail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", perr.Upstreamf("oracle %d %s: %s", resp.StatusCode, http.StatusText(resp.StatusCode), strings.TrimSpace(string(tail)))
	}

	var out any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		// a plain text body is still a valid answer
		return "", ErrNoOutput
	}
	text, ok := ExtractText(out)
	if !ok || strings.TrimSpace(text) == "" {
		return "", ErrNoOutput
	}
	return strings.TrimSpace(text), nil
}
