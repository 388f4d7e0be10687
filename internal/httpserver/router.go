package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/lanzy-lanzy/LansonesScan-sub000/internal/handlers"
	"github.com/lanzy-lanzy/LansonesScan-sub000/internal/metrics"
	"github.com/lanzy-lanzy/LansonesScan-sub000/internal/middleware"
)

func SetupRouter(r *chi.Mux, baseLogger *zap.Logger, scanHandler *handlers.ScanHandler) {
	r.Use(metrics.Middleware)

	// base middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)

	r.Use(middleware.LoggingContext(baseLogger))
	r.Use(middleware.Recoverer())
	// Analysis can take two model round-trips plus a variety call.
	r.Use(middleware.Timeout(3 * time.Minute))
	r.Use(middleware.MaxBodySize(8 * 1024 * 1024)) // 8 MB max upload

	// routes
	r.Route("/v1", func(r chi.Router) {
		r.Post("/scans", scanHandler.CreateScan)
		r.Get("/cache/stats", scanHandler.CacheStats)
		r.Delete("/cache", scanHandler.ClearCache)
	})

	// health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Handle("/metrics", metrics.Handler())
}
