package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"github.com/NightBlad/Tarotbot/internal/platform/net/middleware"
)

// CommonStack returns a baseline per module middleware slice
// the timeout must stay comfortably above the oracle job timeout so queued
// requests are not cut off while waiting for a dispatch slot
func CommonStack() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		// tracing / correlation
		middleware.RequestID(),
		middleware.RealIP(),

		// safety
		middleware.RecoverJSON,

		// cache / freshness
		middleware.NoCache(),

		// observability
		middleware.AccessLogZerolog(middleware.AccessLogOptions{Slow: 5 * time.Second}),

		// cross-origin (tweak config in main if needed)
		middleware.CORS(middleware.CORSOptions{}),
		middleware.Compress(flate.BestSpeed),
		middleware.Heartbeat("/health"),
		middleware.RedirectSlashes(),
		middleware.StripSlashes(),
		middleware.Timeout(2 * time.Minute),
	}
}
