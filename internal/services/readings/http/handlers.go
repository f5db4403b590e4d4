// Package http provides the oracle transport for readings
// These endpoints keep their original bare wire shapes (no envelope):
// 200 {text}, 429 {error, retryAfterSeconds, queueLength}, 5xx {error}
package http

import (
	"net"
	stdhttp "net/http"

	"github.com/NightBlad/Tarotbot/internal/modkit/httpkit"
	perr "github.com/NightBlad/Tarotbot/internal/platform/errors"
	"github.com/NightBlad/Tarotbot/internal/platform/net/http/bind"
	"github.com/NightBlad/Tarotbot/internal/services/readings/domain"
)

// Register mounts the oracle and status endpoints on the given router
func Register(r httpkit.Router, svc domain.ServicePort, status domain.StatusPort) {
	h := &handlers{svc: svc, status: status}

	r.Post("/oracle/{flowId}", httpkit.Handle(h.oracle))
	r.Get("/status", httpkit.Handle(h.statusSnapshot))
}

type handlers struct {
	svc    domain.ServicePort
	status domain.StatusPort
}

type textWire struct {
	Text string `json:"text"`
}

type errorWire struct {
	Error string `json:"error"`
}

type deniedWire struct {
	Error             string `json:"error"`
	RetryAfterSeconds int    `json:"retryAfterSeconds"`
	QueueLength       int    `json:"queueLength,omitempty"`
}

// clientIdentity derives the rate-limit subject from the request:
// the RealIP-resolved remote host plus an opaque session token when present
func clientIdentity(r *stdhttp.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if tok := r.Header.Get("X-Session-Token"); tok != "" {
		return host + "|" + tok
	}
	return host
}

func (h *handlers) oracle(r *stdhttp.Request) httpkit.Response {
	flowID := httpkit.Param(r, "flowId")
	if flowID == "" {
		return httpkit.Raw(stdhttp.StatusNotFound, errorWire{Error: "missing flow id"})
	}

	req, err := bind.ParseJSON[domain.OracleRequest](r)
	if err != nil {
		return httpkit.Raw(perr.HTTPStatus(err), errorWire{Error: err.Error()})
	}

	text, err := h.svc.Ask(r.Context(), clientIdentity(r), flowID, req)
	if err != nil {
		var denied *domain.RateLimitedError
		if bind.As(err, &denied) {
			return httpkit.Raw(stdhttp.StatusTooManyRequests, deniedWire{
				Error:             "rate limit exceeded, try again later",
				RetryAfterSeconds: denied.RetryAfterSeconds(),
				QueueLength:       denied.QueueLen,
			})
		}
		return httpkit.Raw(perr.HTTPStatus(err), errorWire{Error: err.Error()})
	}
	return httpkit.Raw(stdhttp.StatusOK, textWire{Text: text})
}

func (h *handlers) statusSnapshot(_ *stdhttp.Request) httpkit.Response {
	return httpkit.Raw(stdhttp.StatusOK, h.status.Status())
}
