// Package http provides the draw transport
// The draw surface keeps its original wire shape:
// {success:true, data} on success, {success:false, error} on failure
package http

import (
	"encoding/json"
	"io"
	stdhttp "net/http"
	"strconv"
	"strings"

	"github.com/NightBlad/Tarotbot/internal/core/deck"
	"github.com/NightBlad/Tarotbot/internal/core/draw"
	"github.com/NightBlad/Tarotbot/internal/modkit/httpkit"
)

// Register mounts the draw endpoints on the given router
func Register(r httpkit.Router, engine *draw.Engine) {
	h := &handlers{engine: engine}

	r.Get("/draw/{type}", httpkit.Handle(h.drawByType))
	r.Post("/draw/law-of-attraction", httpkit.Handle(h.postLawOfAttraction))
	r.Post("/draw/release-retain", httpkit.Handle(h.postReleaseRetain))
	r.Post("/draw/asset-hindrance", httpkit.Handle(h.postAssetHindrance))
	r.Get("/cards", httpkit.Handle(h.cards))
}

type handlers struct {
	engine *draw.Engine
}

type okWire struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errWire struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func ok(data any) httpkit.Response {
	return httpkit.Raw(stdhttp.StatusOK, okWire{Success: true, Data: data})
}

func fail(status int, msg string) httpkit.Response {
	return httpkit.Raw(status, errWire{Success: false, Error: msg})
}

// decodeLoose best-effort decodes a JSON body into dst
// Missing or malformed bodies leave dst zero valued, matching the
// permissive behavior of the original draw endpoints
func decodeLoose(r *stdhttp.Request, dst any) {
	if r.Body == nil {
		return
	}
	defer func() { _ = r.Body.Close() }()
	_ = json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(dst)
}

// splitExtras parses the comma separated extras query parameter
func splitExtras(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// drawByType maps a spread type to its drawing routine
// the optional q query parameter (free-text question) is accepted and ignored
// by the sampler, mirroring the historical surface
func (h *handlers) drawByType(r *stdhttp.Request) httpkit.Response {
	kind := httpkit.Param(r, "type")
	if !draw.KnownKind(kind) {
		return fail(stdhttp.StatusNotFound, "Unknown spread type: "+kind)
	}

	q := r.URL.Query()
	p := draw.Params{
		Significator:   q.Get("sig"),
		ExtraQuestions: splitExtras(q.Get("extras")),
	}
	if raw := q.Get("n"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			p.N = n
		}
	}

	data, err := h.engine.Draw(kind, p)
	if err != nil {
		return fail(stdhttp.StatusInternalServerError, "Internal server error")
	}
	return ok(data)
}

type lawOfAttractionBody struct {
	Significator string `json:"significator"`
}

type extrasBody struct {
	ExtraQuestions []string `json:"extraQuestions"`
}

func (h *handlers) postLawOfAttraction(r *stdhttp.Request) httpkit.Response {
	var body lawOfAttractionBody
	decodeLoose(r, &body)
	return ok(h.engine.LawOfAttraction(body.Significator))
}

func (h *handlers) postReleaseRetain(r *stdhttp.Request) httpkit.Response {
	var body extrasBody
	decodeLoose(r, &body)
	return ok(h.engine.ReleaseRetain(body.ExtraQuestions))
}

func (h *handlers) postAssetHindrance(r *stdhttp.Request) httpkit.Response {
	var body extrasBody
	decodeLoose(r, &body)
	return ok(h.engine.AssetHindrance(body.ExtraQuestions))
}

// cards lists the full embedded deck
func (h *handlers) cards(_ *stdhttp.Request) httpkit.Response {
	return ok(deck.All())
}
