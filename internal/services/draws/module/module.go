// Package module wires the draw surface into the API using modkit
package module

import (
	"net/http"

	"github.com/NightBlad/Tarotbot/internal/core/draw"
	modkit "github.com/NightBlad/Tarotbot/internal/modkit"
	"github.com/NightBlad/Tarotbot/internal/modkit/httpkit"
	str "github.com/NightBlad/Tarotbot/internal/platform/strings"
	drawhttp "github.com/NightBlad/Tarotbot/internal/services/draws/http"
)

// Ports exposed by the draws module
type Ports struct {
	Engine *draw.Engine
}

// Module implements the draws service module
type Module struct {
	deps modkit.Deps
	name string

	mws      []func(http.Handler) http.Handler
	ports    Ports
	register func(httpkit.Router)

	imagesDir string
}

// New constructs the draws module from env configuration
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("draws")}, opts...)...)

	engine := draw.New()
	m := &Module{
		deps:      deps,
		name:      b.Name,
		mws:       b.Mw,
		ports:     Ports{Engine: engine},
		imagesDir: deps.Cfg.MayString("DRAWS_IMAGES_DIR", "./images"),
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		drawhttp.Register(r, engine)
		if m.imagesDir != "" {
			fs := http.StripPrefix("/images/", http.FileServer(http.Dir(m.imagesDir)))
			r.Handle("/images/*", fs)
		}
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes mounts the module routes on the given router
// the draw surface keeps its original top level paths, so no prefix is applied
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Group(func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }
