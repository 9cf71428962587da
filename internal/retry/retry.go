package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net"
	"net/http"
	"time"

	"github.com/zaydhassan/AspireOn/internal/ai"
	"github.com/zaydhassan/AspireOn/internal/model"
)

// Policy bounds how a failed LLM request is retried.
type Policy struct {
	// MaxRetries is the number of attempts after the first; 0 disables retrying.
	MaxRetries int
	// BaseDelay is the wait before the first retry, doubled for each later one.
	BaseDelay time.Duration
	// MaxDelay caps a single wait, Retry-After included. Zero means no cap.
	MaxDelay time.Duration
}

// wait returns how long to sleep before retry number n (1-based). A
// Retry-After on the failure replaces the exponential step.
func (p Policy) wait(n int, err error) time.Duration {
	var d time.Duration
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		d = httpErr.RetryAfter
	} else {
		d = p.BaseDelay
		for i := 1; i < n && (p.MaxDelay <= 0 || d < p.MaxDelay); i++ {
			d *= 2
		}
		// ±30% jitter keeps concurrent industries from retrying in lockstep.
		d += time.Duration((rand.Float64()*2 - 1) * 0.3 * float64(d))
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// RetryProvider wraps an LLM provider and repeats requests that failed for
// transient reasons: throttling, server errors and transport timeouts.
type RetryProvider struct {
	inner  ai.LLMProvider
	policy Policy
	logger *slog.Logger
}

// NewRetryProvider wraps inner with policy. logger should already carry the
// provider's identity (model, endpoint).
func NewRetryProvider(inner ai.LLMProvider, policy Policy, logger *slog.Logger) *RetryProvider {
	if policy.MaxRetries < 0 {
		policy.MaxRetries = 0
	}
	return &RetryProvider{inner: inner, policy: policy, logger: logger}
}

var _ ai.LLMProvider = (*RetryProvider)(nil)

// Complete runs the request until it succeeds, fails permanently or the
// policy is spent. When ctx ends first the returned error wraps both ctx.Err()
// and the last request failure.
func (p *RetryProvider) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	maxAttempts := p.policy.MaxRetries + 1

	for attempt := 1; ; attempt++ {
		out, err := p.inner.Complete(ctx, prompt)
		if err == nil {
			if attempt > 1 {
				p.logger.Info("llm request recovered",
					"attempt", attempt,
					"elapsed", time.Since(start).Round(time.Millisecond).String(),
				)
			}
			return out, nil
		}
		if ctx.Err() != nil {
			return "", fmt.Errorf("llm request abandoned after attempt %d: %w: %w", attempt, ctx.Err(), err)
		}
		if !retryable(ctx, err) {
			return "", err
		}
		if attempt >= maxAttempts {
			if maxAttempts > 1 {
				p.logger.Warn("llm request failed, retries exhausted",
					failureAttrs(err,
						"attempts", attempt,
						"elapsed", time.Since(start).Round(time.Millisecond).String(),
					)...,
				)
			}
			return "", err
		}

		delay := p.policy.wait(attempt, err)
		p.logger.Warn("llm request failed, retrying",
			failureAttrs(err,
				"attempt", attempt,
				"max_attempts", maxAttempts,
				"delay", delay.String(),
				"elapsed", time.Since(start).Round(time.Millisecond).String(),
			)...,
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", fmt.Errorf("llm request abandoned after attempt %d: %w: %w", attempt, ctx.Err(), err)
		case <-timer.C:
		}
	}
}

// failureAttrs appends the HTTP status, when there is one, and the error.
func failureAttrs(err error, attrs ...any) []any {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		attrs = append(attrs, "status", httpErr.StatusCode)
	}
	return append(attrs, "error", err)
}

// retryable reports whether err is worth another attempt while ctx is live.
// A deadline error under a live ctx came from the per-request timeout, so it
// is retried like any other slow upstream.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	// Dial, DNS, reset and client-timeout failures all surface as net.Error.
	var netErr net.Error
	return errors.As(err, &netErr)
}
