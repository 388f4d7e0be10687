package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const maxImageSize = 4 * 1024 * 1024 // 4MB per submitted image

// Config holds Gemini gateway settings.
type Config struct {
	// Required fields.
	APIKey string
	Model  string

	UpstreamTimeout time.Duration // per-request timeout (default: 60s)
	MaxRetries      int           // retry attempts (default: 2)
	BaseBackoff     time.Duration // initial backoff (default: 200ms)
}

// Validate checks required fields only.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("APIKey is required")
	}
	if c.Model == "" {
		return errors.New("Model is required")
	}
	return nil
}

// WithDefaults returns a copy of Config with sane defaults applied.
func (c *Config) WithDefaults() Config {
	cfg := *c
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.Model = strings.TrimSpace(cfg.Model)

	if cfg.UpstreamTimeout <= 0 {
		cfg.UpstreamTimeout = 60 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 2
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 200 * time.Millisecond
	}
	return cfg
}

// Gemini implements Gateway against the Google generative AI API.
type Gemini struct {
	cfg    Config
	client *genai.Client
	model  *genai.GenerativeModel
	logger *zap.Logger
}

// NewGemini creates a Gemini-backed gateway. The generative model is
// configured once: temperature 0 and a JSON response MIME type, though the
// interpreter downstream never trusts that the response actually is JSON.
func NewGemini(ctx context.Context, cfg Config, logger *zap.Logger) (*Gemini, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "application/json",
	}

	return &Gemini{
		cfg:    cfg,
		client: client,
		model:  model,
		logger: logger.Named("gemini"),
	}, nil
}

// Submit sends one image and one prompt, returning the model's raw text.
// Transient failures are retried with jittered exponential backoff; the
// final failure is returned as a classified *Error.
func (g *Gemini) Submit(parentCtx context.Context, image []byte, mimeType string, prompt string) (string, error) {
	start := time.Now()

	if len(image) == 0 {
		return "", &Error{Kind: KindInvalidInput, Op: "submit", Err: errors.New("empty image")}
	}
	if len(image) > maxImageSize {
		return "", &Error{
			Kind: KindInvalidInput,
			Op:   "submit",
			Err:  fmt.Errorf("image too large (%d bytes, max %d)", len(image), maxImageSize),
		}
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	ctx, cancel := context.WithTimeout(parentCtx, g.cfg.UpstreamTimeout)
	defer cancel()

	parts := []genai.Part{
		genai.Text(prompt),
		&genai.Blob{MIMEType: mimeType, Data: image},
	}

	text, err := g.generateWithRetry(ctx, parts)
	if err != nil {
		g.logger.Error("gemini request failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return "", err
	}

	g.logger.Info("gemini request completed",
		zap.String("model", g.cfg.Model),
		zap.Int("image_bytes", len(image)),
		zap.Int("response_chars", len(text)),
		zap.Duration("duration", time.Since(start)),
	)
	return text, nil
}

// Close releases the underlying API client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

// firstText concatenates the text parts of the first candidate.
func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand.Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}

func ptrFloat32(v float32) *float32 { return &v }
