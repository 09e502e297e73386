// Package prompt translates a chat's level and history into the ordered
// message list the completion API expects, and proposes follow-up topics for
// each answer.
package prompt

import (
	"github.com/dmitrievaaxx/ml-tutor-bot/dialog"
	"github.com/dmitrievaaxx/ml-tutor-bot/llm"
)

const (
	basePrompt = "Ты — дружелюбный репетитор по машинному обучению. " +
		"Отвечай на русском языке, по существу и без лишней воды. " +
		"Если вопрос не относится к машинному обучению, математике или программированию, " +
		"вежливо верни разговор к теме обучения."

	noviceStyle = "Пользователь — новичок. Объясняй просто, через аналогии из повседневной жизни, " +
		"без формул и без жаргона. Каждый термин раскрывай при первом упоминании."

	basicStyle = "Пользователь знаком с основами. Используй базовую терминологию, " +
		"приводи простые примеры и при необходимости несложные формулы."

	advancedStyle = "Пользователь — продвинутый. Используй точную терминологию, " +
		"математические выкладки и ссылки на алгоритмы; не упрощай в ущерб строгости."
)

// SystemInstruction returns the level-specific system prompt.
func SystemInstruction(level dialog.Level) string {
	switch level {
	case dialog.LevelNovice:
		return basePrompt + "\n\n" + noviceStyle
	case dialog.LevelAdvanced:
		return basePrompt + "\n\n" + advancedStyle
	default:
		return basePrompt + "\n\n" + basicStyle
	}
}

// Build assembles the request payload: one system message, then the stored
// history, then the new user message. The ordering is a strict contract with
// the completion client and is never reordered.
func Build(level dialog.Level, history []dialog.Turn, userText string) []llm.Message {
	out := make([]llm.Message, 0, len(history)+2)
	out = append(out, llm.Message{Role: llm.RoleSystem, Content: SystemInstruction(level)})
	for _, turn := range history {
		out = append(out, llm.Message{Role: turn.Role, Content: turn.Content})
	}
	out = append(out, llm.Message{Role: llm.RoleUser, Content: userText})
	return out
}
