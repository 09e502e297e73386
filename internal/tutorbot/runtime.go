// Package tutorbot wires the Telegram transport to the dialog store, the
// prompt builder and the LLM fallback chain, and routes inbound updates.
package tutorbot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dmitrievaaxx/ml-tutor-bot/dialog"
	"github.com/dmitrievaaxx/ml-tutor-bot/internal/worker"
	"github.com/dmitrievaaxx/ml-tutor-bot/progress"
	"github.com/dmitrievaaxx/ml-tutor-bot/prompt"
)

type Config struct {
	BotToken       string
	BaseURL        string
	PollTimeout    time.Duration
	TaskTimeout    time.Duration
	MaxConcurrency int
}

type Dependencies struct {
	Logger    *slog.Logger
	Store     *dialog.Store
	Suggester *prompt.Suggester
	LLM       Completer
	Progress  *progress.Store // optional; nil disables progress tracking
}

// Completer is the LLM client surface Run requires. *llm.FallbackClient
// satisfies it.
type Completer = completer

type chatJob struct {
	ChatID int64
	UserID int64
	Text   string
}

type chatWorker struct {
	Jobs chan chatJob
}

// textMessage extracts a routable text message from an update. Callback
// queries, bot-authored messages, empty texts, and edited messages yield nil;
// answering an edit would re-run an already-answered question.
func textMessage(u telegramUpdate) *telegramMessage {
	msg := u.Message
	if msg == nil || msg.Chat == nil {
		return nil
	}
	if msg.From != nil && msg.From.IsBot {
		return nil
	}
	if strings.TrimSpace(msg.Text) == "" {
		return nil
	}
	return msg
}

// Run starts the long-poll loop and blocks until ctx is canceled or startup
// fails. A canceled context is a graceful stop, not an error.
func Run(ctx context.Context, cfg Config, deps Dependencies) error {
	token := strings.TrimSpace(cfg.BotToken)
	if token == "" {
		return fmt.Errorf("missing telegram.bot_token (set via --telegram-bot-token or ML_TUTOR_BOT_TELEGRAM_BOT_TOKEN)")
	}
	if deps.Logger == nil || deps.Store == nil || deps.Suggester == nil || deps.LLM == nil {
		return fmt.Errorf("tutorbot: incomplete dependencies")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}
	pollTimeout := cfg.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = 30 * time.Second
	}
	taskTimeout := cfg.TaskTimeout
	if taskTimeout <= 0 {
		taskTimeout = 3 * time.Minute
	}
	maxConc := cfg.MaxConcurrency
	if maxConc <= 0 {
		maxConc = 3
	}

	logger := deps.Logger
	api := newTelegramAPI(nil, baseURL, token)

	var me *telegramUser
	for {
		var err error
		me, err = api.getMe(ctx)
		if err == nil {
			break
		}
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			logger.Info("telegram_stop", "reason", "context_canceled")
			return nil
		}
		logger.Warn("telegram_get_me_error", "error", err.Error())
		select {
		case <-ctx.Done():
			logger.Info("telegram_stop", "reason", "context_canceled")
			return nil
		case <-time.After(2 * time.Second):
		}
	}

	h := &handler{
		logger:   logger,
		store:    deps.Store,
		suggest:  deps.Suggester,
		llm:      deps.LLM,
		progress: deps.Progress,
		send:     api,
	}

	sem := make(chan struct{}, maxConc)
	workersCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	var (
		mu      sync.Mutex
		workers = make(map[int64]*chatWorker)
		offset  int64
	)

	getOrStartWorkerLocked := func(chatID int64) *chatWorker {
		if w, ok := workers[chatID]; ok && w != nil {
			return w
		}
		w := &chatWorker{Jobs: make(chan chatJob, 16)}
		workers[chatID] = w

		worker.Start(worker.StartOptions[chatJob]{
			Ctx:  workersCtx,
			Sem:  sem,
			Jobs: w.Jobs,
			Handle: func(workerCtx context.Context, job chatJob) {
				runCtx, cancel := context.WithTimeout(workerCtx, taskTimeout)
				h.handleText(runCtx, job.ChatID, job.UserID, job.Text)
				cancel()
			},
		})
		return w
	}

	logger.Info("telegram_start",
		"base_url", baseURL,
		"bot_username", me.Username,
		"bot_id", me.ID,
		"poll_timeout", pollTimeout.String(),
		"task_timeout", taskTimeout.String(),
		"max_concurrency", maxConc,
	)

	for {
		updates, nextOffset, err := api.getUpdates(ctx, offset, pollTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				logger.Info("telegram_stop", "reason", "context_canceled")
				return nil
			}
			logger.Warn("telegram_get_updates_error", "error", err.Error())
			time.Sleep(1 * time.Second)
			continue
		}
		offset = nextOffset

		for _, u := range updates {
			if u.CallbackQuery != nil {
				h.handleCallback(ctx, u.CallbackQuery)
				continue
			}

			msg := textMessage(u)
			if msg == nil {
				continue
			}
			chatID := msg.Chat.ID
			userID := int64(0)
			if msg.From != nil {
				userID = msg.From.ID
			}
			text := strings.TrimSpace(msg.Text)

			// Commands and questions alike go through the chat's worker,
			// so a /clear can never race a question already in flight.
			mu.Lock()
			w := getOrStartWorkerLocked(chatID)
			mu.Unlock()

			logger.Info("message_enqueued", "chat_id", chatID, "user_id", userID, "text_len", len(text))
			if err := worker.Enqueue(ctx, workersCtx, w.Jobs, chatJob{ChatID: chatID, UserID: userID, Text: text}); err != nil {
				logger.Warn("message_enqueue_error", "chat_id", chatID, "error", err.Error())
			}
		}
	}
}
