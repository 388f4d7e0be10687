package gateway

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"google.golang.org/api/googleapi"
)

func TestClassifyStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code int
		want Kind
	}{
		{400, KindInvalidInput},
		{401, KindAuth},
		{403, KindAuth},
		{429, KindRateLimited},
		{500, KindOverloaded},
		{503, KindOverloaded},
		{404, KindUnknown},
	}

	for _, tc := range cases {
		if got := classifyStatus(tc.code); got != tc.want {
			t.Errorf("classifyStatus(%d) = %s, want %s", tc.code, got, tc.want)
		}
	}
}

func TestClassifyGoogleAPIError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("call failed: %w", &googleapi.Error{Code: 429, Message: "quota exceeded"})
	if got := classify(err); got != KindRateLimited {
		t.Fatalf("classify wrapped googleapi 429 = %s, want rate_limited", got)
	}
}

func TestClassifyStringFallback(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want Kind
	}{
		{errors.New("rpc error: API key not valid"), KindAuth},
		{errors.New("the model is overloaded, try again later"), KindOverloaded},
		{errors.New("resource exhausted"), KindRateLimited},
		{errors.New("dial tcp: connection refused"), KindNetwork},
		{errors.New("something inexplicable"), KindUnknown},
	}

	for _, tc := range cases {
		if got := classify(tc.err); got != tc.want {
			t.Errorf("classify(%q) = %s, want %s", tc.err, got, tc.want)
		}
	}
}

func TestRetryable(t *testing.T) {
	t.Parallel()

	if retryable(KindAuth) || retryable(KindInvalidInput) || retryable(KindUnknown) {
		t.Fatalf("auth, invalid input and unknown failures must not be retried")
	}
	for _, k := range []Kind{KindNetwork, KindOverloaded, KindRateLimited} {
		if !retryable(k) {
			t.Fatalf("expected %s to be retryable", k)
		}
	}
}

func TestComputeBackoffBounds(t *testing.T) {
	t.Parallel()

	base := 200 * time.Millisecond
	for attempt := 0; attempt < 15; attempt++ {
		got := computeBackoff(base, attempt)
		if got < 0 {
			t.Fatalf("negative backoff at attempt %d: %v", attempt, got)
		}
		if got > 30*time.Second {
			t.Fatalf("backoff exceeds cap at attempt %d: %v", attempt, got)
		}
	}
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	err := &Error{Kind: KindOverloaded, Op: "generate", Err: errors.New("boom")}

	var gwErr *Error
	if !errors.As(fmt.Errorf("analysis call: %w", err), &gwErr) {
		t.Fatalf("expected errors.As to find *Error through wrapping")
	}
	if gwErr.Kind != KindOverloaded {
		t.Fatalf("unexpected kind: %s", gwErr.Kind)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	cfg := Config{}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error for empty config")
	}

	cfg = Config{APIKey: "k", Model: "gemini-1.5-flash"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	withDefaults := cfg.WithDefaults()
	if withDefaults.UpstreamTimeout <= 0 || withDefaults.MaxRetries <= 0 || withDefaults.BaseBackoff <= 0 {
		t.Fatalf("defaults not applied: %+v", withDefaults)
	}
}
