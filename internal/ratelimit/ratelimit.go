package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/zaydhassan/AspireOn/internal/ai"
)

// NewLimiter returns a token bucket that allows requestsPerMinute calls with
// a burst of one. A non-positive rate means unlimited.
func NewLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
}

// RateLimitedProvider is a decorator that waits for a token before
// delegating to the wrapped LLMProvider.
type RateLimitedProvider struct {
	inner   ai.LLMProvider
	limiter *rate.Limiter
}

// NewRateLimitedProvider wraps an LLMProvider with a shared limiter.
// All providers hitting the same API key should share the same limiter.
func NewRateLimitedProvider(inner ai.LLMProvider, limiter *rate.Limiter) *RateLimitedProvider {
	return &RateLimitedProvider{
		inner:   inner,
		limiter: limiter,
	}
}

var _ ai.LLMProvider = (*RateLimitedProvider)(nil)

// Complete blocks until the limiter allows a request, then delegates.
func (p *RateLimitedProvider) Complete(ctx context.Context, prompt string) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait: %w", err)
	}
	return p.inner.Complete(ctx, prompt)
}
