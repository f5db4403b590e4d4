// Package module wires the readings pipeline into the API using modkit
package module

import (
	"net/http"

	"github.com/NightBlad/Tarotbot/internal/adapters/oracle"
	"github.com/NightBlad/Tarotbot/internal/core/draw"
	modkit "github.com/NightBlad/Tarotbot/internal/modkit"
	"github.com/NightBlad/Tarotbot/internal/modkit/httpkit"
	str "github.com/NightBlad/Tarotbot/internal/platform/strings"
	"github.com/NightBlad/Tarotbot/internal/services/readings/cache"
	"github.com/NightBlad/Tarotbot/internal/services/readings/domain"
	readhttp "github.com/NightBlad/Tarotbot/internal/services/readings/http"
	"github.com/NightBlad/Tarotbot/internal/services/readings/limit"
	"github.com/NightBlad/Tarotbot/internal/services/readings/queue"
	"github.com/NightBlad/Tarotbot/internal/services/readings/service"
)

// Ports exposed by the readings module
type Ports struct {
	Service domain.ServicePort
	Status  domain.StatusPort
}

// Module implements the readings service module
type Module struct {
	deps modkit.Deps
	name string

	mws      []func(http.Handler) http.Handler
	ports    Ports
	register func(httpkit.Router)

	svc *service.Svc
}

// New constructs the readings module from env configuration
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("readings")}, opts...)...)

	o := FromConfig(deps.Cfg)

	gw := oracle.NewClient(oracle.Options{
		URL:        o.OracleURL,
		APIKey:     o.OracleAPIKey,
		AuthHeader: o.OracleAuthHeader,
		Debug:      o.OracleDebug,
		Timeout:    o.OracleTimeout,
		InputMax:   o.OracleInputMax,
	})
	svc := service.New(
		cache.New[string](o.CacheCapacity, o.CacheTTL),
		limit.New(limit.Config{
			GeneralWindow: o.GeneralWindow,
			GeneralCap:    o.GeneralCap,
			OracleWindow:  o.OracleWindow,
			OracleCap:     o.OracleCap,
		}),
		queue.New(o.Concurrency, o.OracleTimeout),
		gw,
		draw.New(),
	)

	m := &Module{
		deps: deps,
		name: b.Name,
		mws:  b.Mw,
		svc:  svc,
	}
	m.ports = Ports{Service: svc, Status: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		readhttp.Register(r, m.svc, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes mounts the module routes on the given router
// readings keeps its original top level paths, so no prefix is applied
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
