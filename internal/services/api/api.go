// Package api provides the HTTP API for the application
package api

import (
	"github.com/NightBlad/Tarotbot/internal/platform/config"
	"github.com/NightBlad/Tarotbot/internal/platform/logger"
	phttp "github.com/NightBlad/Tarotbot/internal/platform/net/http"

	modkit "github.com/NightBlad/Tarotbot/internal/modkit"
	"github.com/NightBlad/Tarotbot/internal/modkit/httpkit"
	"github.com/NightBlad/Tarotbot/internal/modkit/module"
	"github.com/NightBlad/Tarotbot/internal/modkit/swaggerkit"

	drawsmod "github.com/NightBlad/Tarotbot/internal/services/draws/module"
	metamod "github.com/NightBlad/Tarotbot/internal/services/meta/module"
	"github.com/NightBlad/Tarotbot/internal/services/readings/domain"
	readingsmod "github.com/NightBlad/Tarotbot/internal/services/readings/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	deps := modkit.Deps{
		Cfg: opt.Config,
	}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}

	// Construct readings first and extract its status port for meta probes
	readings := readingsmod.New(deps)
	status := module.MustPortsOf[domain.StatusPort](readings)

	meta := metamod.New(deps, modkit.WithPorts(metamod.Ports{
		Readings: status,
	}))
	draws := drawsmod.New(deps)

	swaggerkit.Mount(r, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	mods := []module.Module{readings, draws, meta}
	for _, m := range mods {
		module.Register(m.Name(), m.Ports())
	}

	// versioned surface with the common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		meta.MountRoutes(api)
	})

	// the oracle and draw surfaces keep their original top level paths
	httpkit.MountRoot(r, httpkit.CommonStack(), func(root httpkit.Router) {
		readings.MountRoutes(root)
		draws.MountRoutes(root)
	})
}
