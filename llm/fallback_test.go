package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type scriptedClient struct {
	calls   []Request
	results map[string]Result
	errs    map[string]error
	delay   time.Duration
}

func (c *scriptedClient) Chat(ctx context.Context, req Request) (Result, error) {
	c.calls = append(c.calls, req)
	if c.delay > 0 {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-time.After(c.delay):
		}
	}
	if err, ok := c.errs[req.Model]; ok {
		return Result{}, err
	}
	if res, ok := c.results[req.Model]; ok {
		return res, nil
	}
	return Result{}, fmt.Errorf("unknown model %s", req.Model)
}

func newTestFallback(t *testing.T, base Client, models ...string) *FallbackClient {
	t.Helper()
	c, err := NewFallbackClient(base, FallbackConfig{
		Models:      models,
		Temperature: 0.7,
		MaxTokens:   500,
	}, nil)
	if err != nil {
		t.Fatalf("NewFallbackClient: %v", err)
	}
	return c
}

func TestFallbackUsesThirdModelAfterTwoFailures(t *testing.T) {
	t.Parallel()

	base := &scriptedClient{
		errs: map[string]error{
			"m1": errors.New("timeout"),
			"m2": errors.New("http 502"),
		},
		results: map[string]Result{
			"m3": {Text: "answer"},
		},
	}
	c := newTestFallback(t, base, "m1", "m2", "m3")

	text, err := c.Complete(context.Background(), 42, []Message{{Role: RoleUser, Content: "q"}})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if text != "answer" {
		t.Fatalf("got %q, want %q", text, "answer")
	}
	if len(base.calls) != 3 {
		t.Fatalf("got %d attempts, want 3", len(base.calls))
	}
	for i, want := range []string{"m1", "m2", "m3"} {
		if base.calls[i].Model != want {
			t.Errorf("attempt %d used %q, want %q", i, base.calls[i].Model, want)
		}
	}
}

func TestFallbackStopsAtFirstSuccess(t *testing.T) {
	t.Parallel()

	base := &scriptedClient{
		results: map[string]Result{
			"m1": {Text: "first"},
			"m2": {Text: "second"},
		},
	}
	c := newTestFallback(t, base, "m1", "m2")

	text, err := c.Complete(context.Background(), 1, []Message{{Role: RoleUser, Content: "q"}})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if text != "first" {
		t.Fatalf("got %q, want %q", text, "first")
	}
	if len(base.calls) != 1 {
		t.Fatalf("got %d attempts, want 1", len(base.calls))
	}
}

func TestFallbackExhaustionReturnsUnavailable(t *testing.T) {
	t.Parallel()

	base := &scriptedClient{
		errs: map[string]error{
			"m1": errors.New("down"),
			"m2": errors.New("down"),
			"m3": errors.New("down"),
		},
	}
	c := newTestFallback(t, base, "m1", "m2", "m3")

	_, err := c.Complete(context.Background(), 7, []Message{{Role: RoleUser, Content: "q"}})
	var unavail *UnavailableError
	if !errors.As(err, &unavail) {
		t.Fatalf("got %v, want *UnavailableError", err)
	}
	if unavail.Attempts != 3 {
		t.Fatalf("got %d attempts, want 3", unavail.Attempts)
	}
	if len(base.calls) != 3 {
		t.Fatalf("base saw %d calls, want 3 (no retries beyond the chain)", len(base.calls))
	}
}

func TestFallbackTreatsEmptyCompletionAsFailure(t *testing.T) {
	t.Parallel()

	base := &scriptedClient{
		results: map[string]Result{
			"m1": {Text: "   \n"},
			"m2": {Text: "real answer"},
		},
	}
	c := newTestFallback(t, base, "m1", "m2")

	text, err := c.Complete(context.Background(), 9, []Message{{Role: RoleUser, Content: "q"}})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if text != "real answer" {
		t.Fatalf("got %q, want %q", text, "real answer")
	}
}

func TestFallbackAttemptTimeout(t *testing.T) {
	t.Parallel()

	base := &scriptedClient{
		delay: 200 * time.Millisecond,
		results: map[string]Result{
			"slow": {Text: "never in time"},
		},
	}
	c, err := NewFallbackClient(base, FallbackConfig{
		Models:         []string{"slow"},
		AttemptTimeout: 10 * time.Millisecond,
	}, nil)
	if err != nil {
		t.Fatalf("NewFallbackClient: %v", err)
	}

	_, err = c.Complete(context.Background(), 3, []Message{{Role: RoleUser, Content: "q"}})
	var unavail *UnavailableError
	if !errors.As(err, &unavail) {
		t.Fatalf("got %v, want *UnavailableError", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected wrapped deadline error, got %v", err)
	}
}

func TestFallbackRequestCarriesConfig(t *testing.T) {
	t.Parallel()

	base := &scriptedClient{
		results: map[string]Result{"m1": {Text: "ok"}},
	}
	c := newTestFallback(t, base, "m1")

	if _, err := c.Complete(context.Background(), 5, []Message{{Role: RoleUser, Content: "q"}}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	req := base.calls[0]
	if req.Temperature != 0.7 {
		t.Errorf("temperature = %v, want 0.7", req.Temperature)
	}
	if req.MaxTokens != 500 {
		t.Errorf("max tokens = %d, want 500", req.MaxTokens)
	}
}

func TestNewFallbackClientRejectsEmptyModelList(t *testing.T) {
	t.Parallel()

	if _, err := NewFallbackClient(&scriptedClient{}, FallbackConfig{Models: []string{"", "  "}}, nil); err == nil {
		t.Fatal("expected error for empty model list")
	}
}
