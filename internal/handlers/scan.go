package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/lanzy-lanzy/LansonesScan-sub000/internal/analysis"
	"github.com/lanzy-lanzy/LansonesScan-sub000/internal/gateway"
	"github.com/lanzy-lanzy/LansonesScan-sub000/pkg/logging"
)

// Analyzer is the slice of the analysis core the HTTP layer needs.
type Analyzer interface {
	Analyze(ctx context.Context, raw []byte, mimeType string) (*analysis.Outcome, error)
	ClearCaches(ctx context.Context) error
	Stats(ctx context.Context) (analysis.CacheStats, error)
}

// ScanHandler serves the /v1/scans and cache management endpoints.
type ScanHandler struct {
	analyzer Analyzer
}

func NewScanHandler(analyzer Analyzer) *ScanHandler {
	return &ScanHandler{analyzer: analyzer}
}

// CreateScan handles POST /v1/scans. The image arrives either as a
// multipart "image" field or as the raw request body with an image/*
// content type.
func (h *ScanHandler) CreateScan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.L(ctx)

	raw, mimeType, err := readImage(r)
	if err != nil {
		logger.Warn("bad scan request", zap.Error(err))
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	outcome, err := h.analyzer.Analyze(ctx, raw, mimeType)
	if err != nil {
		status, category := classifyAnalysisError(err)
		logger.Warn("analysis failed",
			zap.String("category", category),
			zap.Error(err),
		)
		writeError(w, status, category, "analysis failed")
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}

// CacheStats handles GET /v1/cache/stats.
func (h *ScanHandler) CacheStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analyzer.Stats(r.Context())
	if err != nil {
		logging.L(r.Context()).Error("cache stats failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "unknown", "cache stats unavailable")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ClearCache handles DELETE /v1/cache.
func (h *ScanHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.analyzer.ClearCaches(r.Context()); err != nil {
		logging.L(r.Context()).Error("cache clear failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "unknown", "cache clear failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func readImage(r *http.Request) ([]byte, string, error) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		file, header, err := r.FormFile("image")
		if err != nil {
			return nil, "", errors.New("multipart request needs an \"image\" field")
		}
		defer file.Close()

		raw, err := io.ReadAll(file)
		if err != nil {
			return nil, "", err
		}
		return raw, header.Header.Get("Content-Type"), nil
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, "", err
	}
	return raw, contentType, nil
}

// classifyAnalysisError maps the analysis error taxonomy onto an HTTP
// status and a stable, user-presentable category string. Raw provider text
// never reaches the response.
func classifyAnalysisError(err error) (int, string) {
	if errors.Is(err, analysis.ErrEmptyImage) {
		return http.StatusBadRequest, "empty_image"
	}

	var gwErr *gateway.Error
	if errors.As(err, &gwErr) {
		switch gwErr.Kind {
		case gateway.KindRateLimited:
			return http.StatusTooManyRequests, gwErr.Kind.String()
		case gateway.KindOverloaded:
			return http.StatusServiceUnavailable, gwErr.Kind.String()
		case gateway.KindNetwork, gateway.KindAuth:
			return http.StatusBadGateway, gwErr.Kind.String()
		case gateway.KindInvalidInput:
			return http.StatusBadRequest, gwErr.Kind.String()
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, "timeout"
	}
	return http.StatusInternalServerError, "unknown"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, category, message string) {
	writeJSON(w, status, map[string]string{
		"error":   category,
		"message": message,
	})
}
