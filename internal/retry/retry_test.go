package retry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zaydhassan/AspireOn/internal/ai"
	"github.com/zaydhassan/AspireOn/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockProvider calls a function on each invocation, tracking call count.
type mockProvider struct {
	calls int
	fn    func(attempt int) (string, error)
}

func (m *mockProvider) Complete(_ context.Context, _ string) (string, error) {
	m.calls++
	return m.fn(m.calls)
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	mock := &mockProvider{fn: func(_ int) (string, error) {
		return `{"growthRate":1}`, nil
	}}

	rp := NewRetryProvider(mock, Policy{MaxRetries: 2, BaseDelay: 10 * time.Millisecond}, discardLogger())
	got, err := rp.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"growthRate":1}` {
		t.Fatalf("unexpected output: %q", got)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call, got %d", mock.calls)
	}
}

func TestRetry_RetriesOn5xx_SucceedsOnSecondAttempt(t *testing.T) {
	mock := &mockProvider{fn: func(attempt int) (string, error) {
		if attempt == 1 {
			return "", &model.HTTPError{StatusCode: 503, Err: errors.New("service unavailable")}
		}
		return "ok", nil
	}}

	rp := NewRetryProvider(mock, Policy{MaxRetries: 2, BaseDelay: 10 * time.Millisecond}, discardLogger())
	got, err := rp.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Fatalf("got %q, want ok", got)
	}
	if mock.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.calls)
	}
}

func TestRetry_HonorsRetryAfter(t *testing.T) {
	mock := &mockProvider{fn: func(attempt int) (string, error) {
		if attempt == 1 {
			return "", &model.HTTPError{StatusCode: 429, RetryAfter: 20 * time.Millisecond}
		}
		return "ok", nil
	}}

	rp := NewRetryProvider(mock, Policy{MaxRetries: 1, BaseDelay: time.Hour}, discardLogger())
	start := time.Now()
	if _, err := rp.Complete(context.Background(), "prompt"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Retry-After should override base delay, waited %v", elapsed)
	}
}

func TestRetry_DoesNotRetryOn4xx(t *testing.T) {
	mock := &mockProvider{fn: func(_ int) (string, error) {
		return "", &model.HTTPError{StatusCode: 401, Err: errors.New("bad key")}
	}}

	rp := NewRetryProvider(mock, Policy{MaxRetries: 2, BaseDelay: 10 * time.Millisecond}, discardLogger())
	_, err := rp.Complete(context.Background(), "prompt")
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 401 {
		t.Fatalf("expected HTTPError with status 401, got %v", err)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call (no retry), got %d", mock.calls)
	}
}

func TestRetry_ZeroRetriesMakesSingleAttempt(t *testing.T) {
	mock := &mockProvider{fn: func(_ int) (string, error) {
		return "", &model.HTTPError{StatusCode: 500}
	}}

	rp := NewRetryProvider(mock, Policy{BaseDelay: 10 * time.Millisecond}, discardLogger())
	if _, err := rp.Complete(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error")
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call, got %d", mock.calls)
	}
}

func TestRetry_GivesUpAfterMaxRetries(t *testing.T) {
	mock := &mockProvider{fn: func(_ int) (string, error) {
		return "", &model.HTTPError{StatusCode: 500, Err: errors.New("internal error")}
	}}

	rp := NewRetryProvider(mock, Policy{MaxRetries: 2, BaseDelay: 10 * time.Millisecond}, discardLogger())
	if _, err := rp.Complete(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error after max retries, got nil")
	}
	// 1 initial + 2 retries = 3
	if mock.calls != 3 {
		t.Fatalf("expected 3 calls (1 + 2 retries), got %d", mock.calls)
	}
}

func TestRetry_RespectsContextCancellation(t *testing.T) {
	mock := &mockProvider{fn: func(_ int) (string, error) {
		return "", &model.HTTPError{StatusCode: 500, Err: errors.New("internal error")}
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rp := NewRetryProvider(mock, Policy{MaxRetries: 2, BaseDelay: time.Second}, discardLogger())
	_, err := rp.Complete(ctx, "prompt")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call before cancellation, got %d", mock.calls)
	}
}

func TestRetry_RetriesClientTimeoutWhileCallerIsLive(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	t.Cleanup(srv.Close)

	client := &http.Client{Timeout: 50 * time.Millisecond}
	provider := ai.NewOpenAIProvider(srv.URL, "k", "m", false, client)
	rp := NewRetryProvider(provider, Policy{MaxRetries: 1, BaseDelay: time.Millisecond}, discardLogger())

	got, err := rp.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("timeout should have been retried, got %v", err)
	}
	if got != "ok" {
		t.Errorf("got %q, want ok", got)
	}
}

func TestRetry_RetriesDeadlineErrorOnLiveContext(t *testing.T) {
	mock := &mockProvider{fn: func(attempt int) (string, error) {
		if attempt == 1 {
			return "", fmt.Errorf("llm request: %w", context.DeadlineExceeded)
		}
		return "ok", nil
	}}

	rp := NewRetryProvider(mock, Policy{MaxRetries: 1, BaseDelay: time.Millisecond}, discardLogger())
	if _, err := rp.Complete(context.Background(), "prompt"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.calls)
	}
}

func TestRetry_DoesNotRetryApplicationErrors(t *testing.T) {
	mock := &mockProvider{fn: func(_ int) (string, error) {
		return "", errors.New("llm returned no choices")
	}}

	rp := NewRetryProvider(mock, Policy{MaxRetries: 3, BaseDelay: time.Millisecond}, discardLogger())
	if _, err := rp.Complete(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error")
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call, got %d", mock.calls)
	}
}

func TestRetry_CancelDuringBackoffKeepsLastError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	mock := &mockProvider{fn: func(_ int) (string, error) {
		time.AfterFunc(10*time.Millisecond, cancel)
		return "", &model.HTTPError{StatusCode: 503}
	}}

	rp := NewRetryProvider(mock, Policy{MaxRetries: 2, BaseDelay: time.Hour}, discardLogger())
	_, err := rp.Complete(ctx, "prompt")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 503 {
		t.Errorf("expected last HTTPError to be wrapped, got %v", err)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call, got %d", mock.calls)
	}
}

func TestRetry_LogsAttemptContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil)).With("llm_model", "gemini-1.5-flash")
	mock := &mockProvider{fn: func(attempt int) (string, error) {
		if attempt == 1 {
			return "", &model.HTTPError{StatusCode: 429}
		}
		return "ok", nil
	}}

	rp := NewRetryProvider(mock, Policy{MaxRetries: 2, BaseDelay: time.Millisecond}, logger)
	if _, err := rp.Complete(context.Background(), "prompt"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"llm_model=gemini-1.5-flash", "attempt=1", "max_attempts=3", "status=429", "elapsed=", "llm request recovered"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestPolicy_WaitIsCapped(t *testing.T) {
	p := Policy{MaxRetries: 10, BaseDelay: time.Second, MaxDelay: 5 * time.Second}

	if d := p.wait(8, errors.New("reset")); d > 5*time.Second {
		t.Errorf("wait(8) = %v, want at most 5s", d)
	}
	if d := p.wait(1, &model.HTTPError{StatusCode: 429, RetryAfter: time.Minute}); d != 5*time.Second {
		t.Errorf("Retry-After wait = %v, want capped at 5s", d)
	}
	if d := p.wait(1, errors.New("reset")); d < 700*time.Millisecond || d > 1300*time.Millisecond {
		t.Errorf("wait(1) = %v, want 1s ±30%%", d)
	}
}
