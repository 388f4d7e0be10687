package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lanzy-lanzy/LansonesScan-sub000/internal/cache"
	"github.com/lanzy-lanzy/LansonesScan-sub000/internal/fingerprint"
	"github.com/lanzy-lanzy/LansonesScan-sub000/internal/gateway"
	"github.com/lanzy-lanzy/LansonesScan-sub000/internal/imaging"
	"github.com/lanzy-lanzy/LansonesScan-sub000/internal/metrics"
)

// ErrEmptyImage is returned when Analyze receives no image bytes. The
// caller must re-prompt for an image.
var ErrEmptyImage = errors.New("empty image input")

// Analyzer orchestrates one analysis request: fingerprint, cache probe,
// preprocessing, detection, category-routed analysis, best-effort variety
// identification, and cache population. Safe for concurrent use; no cache
// lock is ever held across a gateway call.
type Analyzer struct {
	gateway   gateway.Gateway
	outcomes  cache.OutcomeCache
	artifacts *cache.ImageCache
	prep      *imaging.Preprocessor
	counters  *Counters
	logger    *zap.Logger

	now   func() time.Time
	newID func() string
}

func NewAnalyzer(
	gw gateway.Gateway,
	outcomes cache.OutcomeCache,
	artifacts *cache.ImageCache,
	prep *imaging.Preprocessor,
	counters *Counters,
	logger *zap.Logger,
) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if counters == nil {
		counters = &Counters{}
	}
	return &Analyzer{
		gateway:   gw,
		outcomes:  outcomes,
		artifacts: artifacts,
		prep:      prep,
		counters:  counters,
		logger:    logger.Named("analyzer"),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Analyze resolves one image to an outcome. A repeat image is served from
// the outcome cache without touching the network. mimeType may be empty;
// the content type is then sniffed from the bytes.
func (a *Analyzer) Analyze(ctx context.Context, raw []byte, mimeType string) (*Outcome, error) {
	start := a.now()

	if len(raw) == 0 {
		return nil, ErrEmptyImage
	}

	fp := fingerprint.Sum(raw)
	logger := a.logger.With(zap.String("fingerprint", fp.Short()))

	if outcome := a.probeOutcomeCache(ctx, fp, logger); outcome != nil {
		a.counters.CacheHits.Add(1)
		metrics.AnalyzeDurationSeconds.WithLabelValues("hit").Observe(time.Since(start).Seconds())
		logger.Info("analysis served from cache")
		return outcome, nil
	}
	a.counters.CacheMisses.Add(1)

	artifact := a.preprocess(fp, raw, mimeType, logger)

	// Detection step. A gateway failure here degrades to a neutral outcome
	// instead of blocking the request; the degraded outcome is not cached so
	// a transient failure cannot poison the cache for 24 hours.
	detectText, err := a.submit(ctx, "detect", artifact, detectionPrompt)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		logger.Warn("detection step failed, degrading to neutral outcome", zap.Error(err))
		return a.neutralOutcome(""), nil
	}

	category := interpretDetection(detectText)
	logger = logger.With(zap.String("category", string(category)))

	// Category-routed analysis. Failure here is fatal to the request.
	analysisText, err := a.submit(ctx, "analyze", artifact, analysisPromptFor(category))
	if err != nil {
		return nil, fmt.Errorf("analysis call: %w", err)
	}

	p := interpret(analysisText, category)

	outcome := &Outcome{
		ID:              a.newID(),
		ItemCategory:    category,
		DiseaseDetected: p.diseaseDetected,
		DiseaseName:     p.diseaseName,
		Confidence:      p.confidence,
		Symptoms:        p.symptoms,
		Recommendations: p.recommendations,
		Severity:        p.severity,
		RawModelText:    analysisText,
		AnalyzedAt:      a.now(),
	}

	if category == CategoryFruit {
		outcome.Variety = a.identifyVariety(ctx, artifact, logger)
	}

	if err := outcome.Validate(); err != nil {
		// Repair guarantees this never fires; if it does, the interpreter
		// has a bug and we must not serve the record.
		logger.Error("outcome failed invariant check", zap.Error(err))
		return nil, fmt.Errorf("inconsistent outcome: %w", err)
	}

	a.storeOutcome(ctx, fp, outcome, logger)

	metrics.AnalyzeDurationSeconds.WithLabelValues("miss").Observe(time.Since(start).Seconds())
	logger.Info("analysis completed",
		zap.Bool("disease_detected", outcome.DiseaseDetected),
		zap.String("severity", string(outcome.Severity)),
		zap.Duration("duration", time.Since(start)),
	)
	return outcome, nil
}

// ClearCaches empties both the outcome and preprocessed-image caches.
func (a *Analyzer) ClearCaches(ctx context.Context) error {
	a.artifacts.Clear()
	return a.outcomes.Clear(ctx)
}

// CacheStats reports occupancy of both caches plus the request counters.
type CacheStats struct {
	Outcomes cache.Stats     `json:"outcomes"`
	Images   cache.Stats     `json:"images"`
	Counters CounterSnapshot `json:"counters"`
}

func (a *Analyzer) Stats(ctx context.Context) (CacheStats, error) {
	outcomeStats, err := a.outcomes.Stats(ctx)
	if err != nil {
		return CacheStats{}, err
	}
	return CacheStats{
		Outcomes: outcomeStats,
		Images:   a.artifacts.Stats(),
		Counters: a.counters.Snapshot(),
	}, nil
}

// probeOutcomeCache returns a validated cached outcome or nil. Cache errors
// and undecodable entries are logged and treated as misses.
func (a *Analyzer) probeOutcomeCache(ctx context.Context, fp fingerprint.Fingerprint, logger *zap.Logger) *Outcome {
	data, hit, err := a.outcomes.Get(ctx, fp)
	if err != nil {
		logger.Warn("outcome cache lookup failed", zap.Error(err))
		return nil
	}
	if !hit {
		return nil
	}

	var outcome Outcome
	if err := json.Unmarshal(data, &outcome); err != nil {
		logger.Warn("cached outcome undecodable, treating as miss", zap.Error(err))
		return nil
	}
	if err := outcome.Validate(); err != nil {
		logger.Warn("cached outcome violates invariants, treating as miss", zap.Error(err))
		return nil
	}
	return &outcome
}

// preprocess returns the normalized artifact for the image, served from the
// artifact cache when possible. Normalization failure degrades to the raw
// bytes rather than failing the request.
func (a *Analyzer) preprocess(fp fingerprint.Fingerprint, raw []byte, mimeType string, logger *zap.Logger) cache.Artifact {
	if artifact, hit := a.artifacts.Get(fp); hit {
		return artifact
	}

	data, mime, err := a.prep.Normalize(raw)
	if err != nil {
		logger.Warn("image normalization failed, submitting raw bytes", zap.Error(err))
		if mimeType == "" {
			mimeType = http.DetectContentType(raw)
		}
		return cache.Artifact{Data: raw, MIMEType: mimeType}
	}

	artifact := cache.Artifact{Data: data, MIMEType: mime}
	a.artifacts.Put(fp, artifact)
	return artifact
}

// submit wraps one gateway call with counters and metrics.
func (a *Analyzer) submit(ctx context.Context, step string, artifact cache.Artifact, prompt string) (string, error) {
	a.counters.GatewayCalls.Add(1)
	text, err := a.gateway.Submit(ctx, artifact.Data, artifact.MIMEType, prompt)
	if err != nil {
		a.counters.GatewayFailures.Add(1)
		metrics.GatewayCallsTotal.WithLabelValues(step, "error").Inc()
		return "", err
	}
	metrics.GatewayCallsTotal.WithLabelValues(step, "ok").Inc()
	return text, nil
}

// identifyVariety runs the secondary variety call for fruit outcomes.
// Failure is swallowed: variety information never fails the primary result.
func (a *Analyzer) identifyVariety(ctx context.Context, artifact cache.Artifact, logger *zap.Logger) *VarietyResult {
	text, err := a.submit(ctx, "variety", artifact, varietyPrompt)
	if err != nil {
		a.counters.VarietyFailures.Add(1)
		logger.Warn("variety identification failed", zap.Error(err))
		return nil
	}
	return interpretVariety(text)
}

// storeOutcome writes the assembled outcome to the cache. Store failures
// are logged only; the outcome is still returned to the caller.
func (a *Analyzer) storeOutcome(ctx context.Context, fp fingerprint.Fingerprint, outcome *Outcome, logger *zap.Logger) {
	data, err := json.Marshal(outcome)
	if err != nil {
		logger.Warn("marshal outcome for cache failed", zap.Error(err))
		return
	}
	if err := a.outcomes.Put(ctx, fp, data); err != nil {
		logger.Warn("outcome cache store failed", zap.Error(err))
	}
}

func analysisPromptFor(category ItemCategory) string {
	switch category {
	case CategoryFruit:
		return fruitAnalysisPrompt
	case CategoryLeaf:
		return leafAnalysisPrompt
	default:
		return neutralObservationPrompt
	}
}

// neutralOutcome is the degraded result when the detection step cannot
// reach the gateway: non-judgmental, no disease fields, not cached.
func (a *Analyzer) neutralOutcome(rawText string) *Outcome {
	return &Outcome{
		ID:              a.newID(),
		ItemCategory:    CategoryUnrelated,
		DiseaseDetected: false,
		Confidence:      0,
		Symptoms:        []string{},
		Recommendations: []string{
			"The analysis service could not be reached. Check your connection and try again.",
		},
		Severity:     SeverityNone,
		RawModelText: rawText,
		AnalyzedAt:   a.now(),
	}
}
