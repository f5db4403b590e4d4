// @title         Tarotbot API
// @version       0.1.0
// @description   Tarot draws and oracle readings over HTTP

package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/NightBlad/Tarotbot/internal/platform/config"
	"github.com/NightBlad/Tarotbot/internal/platform/logger"
	phttp "github.com/NightBlad/Tarotbot/internal/platform/net/http"

	"github.com/NightBlad/Tarotbot/internal/services/api"
)

func main() {
	// .env is optional, real env always wins
	_ = godotenv.Load()

	logger.Init(logger.FromEnv())
	l := logger.Get()

	// service-scoped config for HTTP etc (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	// http server (reads CORE_API_API_PORT)
	srv := phttp.NewServer(apiCfg)

	api.Mount(
		srv.Router(),
		api.Options{
			Config:         root,
			Logger:         l,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", true),
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	select {
	case <-ctx.Done():
		l.Info().Msg("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			l.Error().Err(err).Msg("graceful shutdown failed")
		}
		<-done
	case err := <-done:
		if err != nil {
			l.Panic().Err(err).Msg("http server stopped")
		}
	}
}
