package gateway

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"net"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
)

// generateWithRetry attempts the model call up to MaxRetries+1 times.
// Only transient failures (network, overloaded, rate-limited) are retried;
// auth and invalid-input failures return immediately. Context cancellation
// is respected both between attempts and during backoff.
func (g *Gemini) generateWithRetry(ctx context.Context, parts []genai.Part) (string, error) {
	maxAttempts := g.cfg.MaxRetries + 1
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr *Error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		start := time.Now()
		resp, err := g.model.GenerateContent(ctx, parts...)
		duration := time.Since(start)

		if err == nil {
			text := firstText(resp)
			if text == "" {
				return "", &Error{Kind: KindUnknown, Op: "generate", Err: errors.New("empty model response")}
			}
			return text, nil
		}

		// Context errors pass through unclassified so callers can
		// distinguish abandonment from provider failure.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}

		kind := classify(err)
		lastErr = &Error{Kind: kind, Op: "generate", Err: err}

		g.logger.Debug("gemini attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", maxAttempts),
			zap.String("kind", kind.String()),
			zap.Duration("duration", duration),
			zap.Error(err),
		)

		if !retryable(kind) || attempt == maxAttempts-1 {
			break
		}

		backoff := computeBackoff(g.cfg.BaseBackoff, attempt)
		g.logger.Debug("backing off before retry",
			zap.Duration("backoff", backoff),
			zap.Int("next_attempt", attempt+2),
		)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
	}

	g.logger.Warn("gemini request exhausted retries",
		zap.Int("attempts", maxAttempts),
		zap.Error(lastErr),
	)
	return "", lastErr
}

func retryable(k Kind) bool {
	switch k {
	case KindNetwork, KindOverloaded, KindRateLimited:
		return true
	default:
		return false
	}
}

// classify maps a provider error onto the stable Kind taxonomy.
func classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.Code)
	}

	if isTransientNetError(err) {
		return KindNetwork
	}

	// Wrapped errors sometimes hide the status; fall back to string matching.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api key") || strings.Contains(msg, "unauthenticated") || strings.Contains(msg, "permission"):
		return KindAuth
	case strings.Contains(msg, "quota") || strings.Contains(msg, "resource exhausted") || strings.Contains(msg, "429"):
		return KindRateLimited
	case strings.Contains(msg, "overloaded") || strings.Contains(msg, "unavailable") || strings.Contains(msg, "503"):
		return KindOverloaded
	default:
		return KindUnknown
	}
}

func classifyStatus(code int) Kind {
	switch {
	case code == 400:
		return KindInvalidInput
	case code == 401 || code == 403:
		return KindAuth
	case code == 429:
		return KindRateLimited
	case code >= 500 && code <= 599:
		return KindOverloaded
	default:
		return KindUnknown
	}
}

// isTransientNetError reports whether a network error is worth retrying.
func isTransientNetError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTimeout || dnsErr.IsTemporary
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		switch opErr.Op {
		case "dial", "read", "write":
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"no such host",
		"temporary failure",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// computeBackoff calculates exponential backoff with full jitter:
// a random wait in [0, base * 2^attempt), capped.
func computeBackoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = 200 * time.Millisecond
	}

	const maxExponent = 10
	if attempt > maxExponent {
		attempt = maxExponent
	}

	backoff := time.Duration(float64(base) * math.Pow(2, float64(attempt)))

	const maxAllowed = 30 * time.Second
	if backoff > maxAllowed {
		backoff = maxAllowed
	}

	return time.Duration(rand.Float64() * float64(backoff))
}
