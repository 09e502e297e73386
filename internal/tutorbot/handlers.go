package tutorbot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dmitrievaaxx/ml-tutor-bot/dialog"
	"github.com/dmitrievaaxx/ml-tutor-bot/internal/telegramutil"
	"github.com/dmitrievaaxx/ml-tutor-bot/llm"
	"github.com/dmitrievaaxx/ml-tutor-bot/progress"
	"github.com/dmitrievaaxx/ml-tutor-bot/prompt"
)

const levelCallbackPrefix = "level:"

// transport is the outbound Telegram surface the handlers need. telegramAPI
// implements it; tests substitute a recorder.
type transport interface {
	sendMessage(ctx context.Context, chatID int64, text string) error
	sendMessageWithKeyboard(ctx context.Context, chatID int64, text string, kb *inlineKeyboardMarkup) error
	editMessageText(ctx context.Context, chatID, messageID int64, text string) error
	answerCallbackQuery(ctx context.Context, callbackQueryID string) error
	sendChatAction(ctx context.Context, chatID int64, action string) error
}

// completer is the free-text path's view of the LLM fallback client.
type completer interface {
	Complete(ctx context.Context, chatID int64, messages []llm.Message) (string, error)
}

type handler struct {
	logger   *slog.Logger
	store    *dialog.Store
	suggest  *prompt.Suggester
	llm      completer
	progress *progress.Store // optional
	send     transport
}

func levelKeyboard() *inlineKeyboardMarkup {
	return &inlineKeyboardMarkup{
		InlineKeyboard: [][]inlineKeyboardButton{
			{
				{Text: "🟢 Новичок", CallbackData: levelCallbackPrefix + string(dialog.LevelNovice)},
				{Text: "🟡 Базовый", CallbackData: levelCallbackPrefix + string(dialog.LevelBasic)},
			},
			{
				{Text: "🔴 Продвинутый", CallbackData: levelCallbackPrefix + string(dialog.LevelAdvanced)},
			},
		},
	}
}

// handleText is the single entry point for a chat's inbound text. It runs on
// that chat's worker goroutine, so commands and questions for one chat are
// applied to the session strictly in arrival order.
func (h *handler) handleText(ctx context.Context, chatID, userID int64, text string) {
	cmdWord, _ := splitCommand(text)
	if cmd := normalizeSlashCommand(cmdWord); cmd != "" {
		h.logger.Info("command", "name", strings.TrimPrefix(cmd, "/"), "chat_id", chatID, "user_id", userID)
		switch cmd {
		case "/start":
			h.handleStart(ctx, chatID)
			return
		case "/level":
			h.handleLevelCommand(ctx, chatID)
			return
		case "/learn":
			h.handleLearn(ctx, chatID, userID)
			return
		case "/status":
			h.handleStatus(ctx, chatID, userID)
			return
		case "/clear":
			h.handleClear(ctx, chatID)
			return
		case "/help":
			h.handleHelp(ctx, chatID)
			return
		}
	}

	// Typed level names work without the inline menu too.
	if level, err := dialog.ParseLevel(text); err == nil {
		if err := h.store.SetLevel(chatID, level); err == nil {
			h.logger.Info("level_changed", "chat_id", chatID, "level", string(level))
			if sendErr := h.send.sendMessage(ctx, chatID, levelChangedMessage(level)); sendErr != nil {
				h.logger.Warn("telegram_send_error", "chat_id", chatID, "error", sendErr.Error())
			}
			return
		}
	}

	h.handleFreeText(ctx, chatID, userID, text)
}

func (h *handler) handleStart(ctx context.Context, chatID int64) {
	// Start over with a clean history; the chosen level survives.
	h.store.Clear(chatID)
	if err := h.send.sendMessageWithKeyboard(ctx, chatID, welcomeMessage, levelKeyboard()); err != nil {
		h.logger.Warn("telegram_send_error", "chat_id", chatID, "error", err.Error())
	}
}

func (h *handler) handleLevelCommand(ctx context.Context, chatID int64) {
	if err := h.send.sendMessageWithKeyboard(ctx, chatID, levelMenuMessage, levelKeyboard()); err != nil {
		h.logger.Warn("telegram_send_error", "chat_id", chatID, "error", err.Error())
	}
}

func (h *handler) handleStatus(ctx context.Context, chatID, userID int64) {
	level := h.store.Level(chatID)
	st := h.store.Stats(chatID)
	topicsStudied := 0
	if h.progress != nil && userID > 0 {
		n, err := h.progress.CompletedCount(ctx, userID)
		if err != nil {
			h.logger.Warn("progress_read_error", "user_id", userID, "error", err.Error())
		} else {
			topicsStudied = n
		}
	}
	if err := h.send.sendMessage(ctx, chatID, statusMessage(level, st, topicsStudied)); err != nil {
		h.logger.Warn("telegram_send_error", "chat_id", chatID, "error", err.Error())
	}
}

// handleLearn shows the course plans with the user's completion marks.
// Without the progress store the plans are shown unmarked.
func (h *handler) handleLearn(ctx context.Context, chatID, userID int64) {
	completed := make(map[string]bool)
	if h.progress != nil && userID > 0 {
		topics, err := h.progress.Completed(ctx, userID)
		if err != nil {
			h.logger.Warn("progress_read_error", "user_id", userID, "error", err.Error())
		} else {
			for _, id := range topics {
				completed[id] = true
			}
		}
	}
	if err := h.send.sendMessage(ctx, chatID, learnMessage(completed)); err != nil {
		h.logger.Warn("telegram_send_error", "chat_id", chatID, "error", err.Error())
	}
}

func (h *handler) handleHelp(ctx context.Context, chatID int64) {
	if err := h.send.sendMessage(ctx, chatID, helpMessage); err != nil {
		h.logger.Warn("telegram_send_error", "chat_id", chatID, "error", err.Error())
	}
}

func (h *handler) handleClear(ctx context.Context, chatID int64) {
	h.store.Clear(chatID)
	if err := h.send.sendMessage(ctx, chatID, clearedMessage); err != nil {
		h.logger.Warn("telegram_send_error", "chat_id", chatID, "error", err.Error())
	}
}

// handleCallback processes inline-keyboard presses, currently only level
// selection.
func (h *handler) handleCallback(ctx context.Context, cb *telegramCallbackQuery) {
	if cb == nil || cb.Message == nil || cb.Message.Chat == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	defer func() {
		if err := h.send.answerCallbackQuery(ctx, cb.ID); err != nil {
			h.logger.Warn("telegram_callback_answer_error", "chat_id", chatID, "error", err.Error())
		}
	}()

	data := strings.TrimSpace(cb.Data)
	if !strings.HasPrefix(data, levelCallbackPrefix) {
		h.logger.Debug("telegram_callback_ignored", "chat_id", chatID, "data", data)
		return
	}

	level, err := dialog.ParseLevel(strings.TrimPrefix(data, levelCallbackPrefix))
	if err == nil {
		err = h.store.SetLevel(chatID, level)
	}
	if err != nil {
		if errors.Is(err, dialog.ErrInvalidLevel) {
			h.logger.Warn("invalid_level_selected", "chat_id", chatID, "data", data)
			if sendErr := h.send.sendMessageWithKeyboard(ctx, chatID, unknownLevelMessage, levelKeyboard()); sendErr != nil {
				h.logger.Warn("telegram_send_error", "chat_id", chatID, "error", sendErr.Error())
			}
			return
		}
		h.logger.Error("level_set_error", "chat_id", chatID, "error", err.Error())
		return
	}

	h.logger.Info("level_changed", "chat_id", chatID, "level", string(level))
	if err := h.send.editMessageText(ctx, chatID, cb.Message.MessageID, levelChangedMessage(level)); err != nil {
		// The original menu may already be gone; tell the user anyway.
		if sendErr := h.send.sendMessage(ctx, chatID, levelChangedMessage(level)); sendErr != nil {
			h.logger.Warn("telegram_send_error", "chat_id", chatID, "error", sendErr.Error())
		}
	}
}

// handleFreeText is the hard path: history snapshot, prompt assembly, the
// fallback chain, history write-back, reply. No failure in here may escape;
// anything unexpected becomes a generic apology.
func (h *handler) handleFreeText(ctx context.Context, chatID, userID int64, text string) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("message_handler_panic", "chat_id", chatID, "panic", fmt.Sprint(r))
			if err := h.send.sendMessage(ctx, chatID, genericErrorMessage); err != nil {
				h.logger.Warn("telegram_send_error", "chat_id", chatID, "error", err.Error())
			}
		}
	}()

	stopTyping := startTypingTicker(ctx, h.send, chatID, 4*time.Second)
	defer stopTyping()

	level := h.store.Level(chatID)
	snapshot := h.store.History(chatID)
	messages := prompt.Build(level, snapshot, text)

	// The user did ask something: the turn is kept even if the call below
	// fails. Only the assistant turn is withheld on failure.
	h.store.AppendUser(chatID, text)

	answer, err := h.llm.Complete(ctx, chatID, messages)
	if err != nil {
		var unavail *llm.UnavailableError
		if errors.As(err, &unavail) {
			h.logger.Warn("llm_unavailable", "chat_id", chatID, "attempts", unavail.Attempts, "error", err.Error())
			if sendErr := h.send.sendMessage(ctx, chatID, llmUnavailableMessage); sendErr != nil {
				h.logger.Warn("telegram_send_error", "chat_id", chatID, "error", sendErr.Error())
			}
			return
		}
		h.logger.Error("message_handler_error", "chat_id", chatID, "error", err.Error())
		if sendErr := h.send.sendMessage(ctx, chatID, genericErrorMessage); sendErr != nil {
			h.logger.Warn("telegram_send_error", "chat_id", chatID, "error", sendErr.Error())
		}
		return
	}

	answer = telegramutil.CleanAnswer(answer)
	h.store.AppendAssistant(chatID, answer)

	if h.progress != nil && userID > 0 {
		if err := h.progress.Observe(ctx, userID, text); err != nil {
			h.logger.Warn("progress_write_error", "user_id", userID, "error", err.Error())
		}
	}

	reply := answer
	if topics := h.suggest.Suggest(answer, level); topics != nil {
		var b strings.Builder
		b.WriteString(answer)
		b.WriteString("\n\n")
		b.WriteString(suggestionsHeader)
		for _, topic := range topics {
			b.WriteString("\n• ")
			b.WriteString(topic)
		}
		reply = b.String()
	}
	if err := h.send.sendMessage(ctx, chatID, reply); err != nil {
		h.logger.Warn("telegram_send_error", "chat_id", chatID, "error", err.Error())
	}
}
