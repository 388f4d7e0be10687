package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lanzy-lanzy/LansonesScan-sub000/internal/analysis"
	"github.com/lanzy-lanzy/LansonesScan-sub000/internal/cache"
	"github.com/lanzy-lanzy/LansonesScan-sub000/internal/gateway"
	"github.com/lanzy-lanzy/LansonesScan-sub000/internal/handlers"
	"github.com/lanzy-lanzy/LansonesScan-sub000/internal/httpserver"
	"github.com/lanzy-lanzy/LansonesScan-sub000/internal/imaging"
	"github.com/lanzy-lanzy/LansonesScan-sub000/internal/metrics"
	"github.com/lanzy-lanzy/LansonesScan-sub000/pkg/logging"
)

type Config struct {
	Port         string
	CacheBackend string // "memory" or "redis"
	RedisAddr    string
	GeminiAPIKey string
	GeminiModel  string
}

func LoadConfig() Config {
	return Config{
		Port:         getenv("PORT", "8080"),
		CacheBackend: getenv("CACHE_BACKEND", "memory"),
		RedisAddr:    getenv("REDIS_ADDR", "127.0.0.1:6379"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getenv("GEMINI_MODEL", "gemini-1.5-flash"),
	}
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("lansonesscan exited with error: %v", err)
	}
}

func run() error {
	// ----- Logger -----
	logger := logging.Default()
	defer logger.Sync()

	// ----- Metrics -----
	metrics.Register()

	// ----- Config -----
	cfg := LoadConfig()

	logger.Info("loaded config",
		zap.String("port", cfg.Port),
		zap.String("cache_backend", cfg.CacheBackend),
		zap.String("gemini_model", cfg.GeminiModel),
	)

	// ----- Redis client (only if needed) -----
	var redisClient *redis.Client
	if cfg.CacheBackend == "redis" {
		redisClient = redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
		})

		// Fail fast if Redis is misconfigured
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Error("redis connection failed", zap.Error(err))
			return err
		}
		logger.Info("redis connection established",
			zap.String("addr", cfg.RedisAddr),
		)
	}

	// ----- Outcome cache -----
	outcomeCache := cache.NewOutcomeCache(cache.Config{
		Backend: cfg.CacheBackend,
		Prefix:  "lansones",
	}, redisClient)
	outcomeCache = cache.NewLoggingOutcomeCache(outcomeCache)

	// ----- Model gateway -----
	if cfg.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}

	gw, err := gateway.NewGemini(context.Background(), gateway.Config{
		APIKey: cfg.GeminiAPIKey,
		Model:  cfg.GeminiModel,
	}, logger)
	if err != nil {
		return err
	}
	defer gw.Close()

	// ----- Analyzer -----
	analyzer := analysis.NewAnalyzer(
		gw,
		outcomeCache,
		cache.NewImageCache(cache.DefaultImageCapacity),
		imaging.NewPreprocessor(),
		&analysis.Counters{},
		logger,
	)

	// ----- Handlers -----
	scanHandler := handlers.NewScanHandler(analyzer)

	// ----- Router + middleware -----
	r := chi.NewRouter()
	httpserver.SetupRouter(r, logger, scanHandler)

	// ----- HTTP server -----
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      3 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("starting lansonesscan",
		zap.String("addr", srv.Addr),
		zap.String("cache_backend", cfg.CacheBackend),
	)

	// Start server in background
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", zap.Error(err))
		}
	}()

	// ----- Graceful shutdown -----
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return err
	}

	logger.Info("server shutdown complete")
	return nil
}

// getenv returns the value of the environment variable key or def if not set.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
