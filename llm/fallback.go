package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UnavailableError is returned when every candidate model has been tried and
// failed. It is the only failure that crosses the fallback client's boundary.
type UnavailableError struct {
	Attempts int
	Last     error
}

func (e *UnavailableError) Error() string {
	if e.Last != nil {
		return fmt.Sprintf("llm unavailable after %d attempts: %v", e.Attempts, e.Last)
	}
	return fmt.Sprintf("llm unavailable after %d attempts", e.Attempts)
}

func (e *UnavailableError) Unwrap() error { return e.Last }

// FallbackConfig is resolved once at startup, not re-read per call.
type FallbackConfig struct {
	// Models is the ordered candidate list, primary first.
	Models      []string
	Temperature float64
	MaxTokens   int
	// AttemptTimeout bounds each model attempt. Zero means no extra bound
	// beyond the caller's context.
	AttemptTimeout time.Duration
}

// FallbackClient tries the configured models in order and stops at the first
// success. A given call makes at most len(Models) attempts.
type FallbackClient struct {
	base   Client
	cfg    FallbackConfig
	logger *slog.Logger
}

func NewFallbackClient(base Client, cfg FallbackConfig, logger *slog.Logger) (*FallbackClient, error) {
	if base == nil {
		return nil, errors.New("llm: nil base client")
	}
	models := make([]string, 0, len(cfg.Models))
	for _, m := range cfg.Models {
		m = strings.TrimSpace(m)
		if m != "" {
			models = append(models, m)
		}
	}
	if len(models) == 0 {
		return nil, errors.New("llm: no candidate models configured")
	}
	cfg.Models = models
	return &FallbackClient{base: base, cfg: cfg, logger: logger}, nil
}

// Models returns the configured candidate list, primary first.
func (c *FallbackClient) Models() []string {
	return append([]string(nil), c.cfg.Models...)
}

// Complete runs the fallback chain for one user turn and returns the first
// successful completion text. chatID is carried only for logging.
func (c *FallbackClient) Complete(ctx context.Context, chatID int64, messages []Message) (string, error) {
	callID := uuid.NewString()
	var lastErr error
	attempts := 0
	for i, model := range c.cfg.Models {
		attempts++
		text, err := c.attempt(ctx, model, messages)
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		c.log(chatID, callID, model, i, outcome, err)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			// The caller is gone; further candidates would fail the same way.
			break
		}
	}
	return "", &UnavailableError{Attempts: attempts, Last: lastErr}
}

func (c *FallbackClient) attempt(ctx context.Context, model string, messages []Message) (string, error) {
	attemptCtx := ctx
	if c.cfg.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, c.cfg.AttemptTimeout)
		defer cancel()
	}
	res, err := c.base.Chat(attemptCtx, Request{
		Model:       model,
		Messages:    messages,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(res.Text)
	if text == "" {
		return "", fmt.Errorf("model %s returned an empty completion", model)
	}
	return text, nil
}

func (c *FallbackClient) log(chatID int64, callID, model string, attempt int, outcome string, err error) {
	if c.logger == nil {
		return
	}
	if err != nil {
		c.logger.Warn("llm_attempt",
			"chat_id", chatID,
			"call_id", callID,
			"model", model,
			"attempt", attempt+1,
			"outcome", outcome,
			"error", err.Error(),
		)
		return
	}
	c.logger.Info("llm_attempt",
		"chat_id", chatID,
		"call_id", callID,
		"model", model,
		"attempt", attempt+1,
		"outcome", outcome,
	)
}
