// Package dialog holds per-chat conversational state: the user's selected
// explanation level and the running message history. All state is in-memory
// and lives for the process lifetime only.
package dialog

import (
	"errors"
	"fmt"
	"strings"
)

// Level is the user-selected explanation-depth tier.
type Level string

const (
	LevelNovice   Level = "novice"
	LevelBasic    Level = "basic"
	LevelAdvanced Level = "advanced"
)

// DefaultLevel applies until a chat explicitly picks a level.
const DefaultLevel = LevelBasic

var ErrInvalidLevel = errors.New("dialog: invalid level")

// Levels returns the enumerated levels in menu order.
func Levels() []Level {
	return []Level{LevelNovice, LevelBasic, LevelAdvanced}
}

func (l Level) Valid() bool {
	switch l {
	case LevelNovice, LevelBasic, LevelAdvanced:
		return true
	}
	return false
}

// Label returns the user-facing Russian name of the level.
func (l Level) Label() string {
	switch l {
	case LevelNovice:
		return "Новичок"
	case LevelBasic:
		return "Базовый"
	case LevelAdvanced:
		return "Продвинутый"
	}
	return string(l)
}

// ParseLevel accepts both the wire value and the Russian label, ignoring
// case and surrounding whitespace.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(LevelNovice), "новичок":
		return LevelNovice, nil
	case string(LevelBasic), "базовый":
		return LevelBasic, nil
	case string(LevelAdvanced), "продвинутый":
		return LevelAdvanced, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidLevel, s)
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message in a conversation history. Immutable once appended.
type Turn struct {
	Role    string
	Content string
}

// Stats is a coarse summary of a chat's history, for /status.
type Stats struct {
	User      int
	Assistant int
	Total     int
}

// LevelResolver is the pure read path for level resolution. It must never
// mutate stored state, which keeps the level lookup safely callable from
// anywhere in the message path.
type LevelResolver interface {
	Level(chatID int64) Level
}

// HistoryWriter appends turns. Kept separate from LevelResolver so the append
// path can never be re-entered from a level read.
type HistoryWriter interface {
	AppendUser(chatID int64, text string)
	AppendAssistant(chatID int64, text string)
}

// HistoryReader returns an ordered snapshot of a chat's history.
type HistoryReader interface {
	History(chatID int64) []Turn
}
