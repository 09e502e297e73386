package dialog

import (
	"sync"
	"unicode/utf8"
)

// Config bounds the stored history. Both limits apply; oldest turns are
// evicted first once either is exceeded.
type Config struct {
	// MaxTurns caps the number of stored turns per chat.
	MaxTurns int
	// MaxChars caps the summed rune count of stored turns per chat, as a
	// cheap stand-in for a token budget.
	MaxChars int
}

const (
	defaultMaxTurns = 20
	defaultMaxChars = 16000
)

// Store is the authoritative process-wide mapping from chat id to session.
// Created empty at startup, mutated only through its methods, discarded at
// shutdown. Sessions are created lazily on first write and never destroyed.
type Store struct {
	mu       sync.Mutex
	cfg      Config
	sessions map[int64]*session
}

type session struct {
	level    Level
	levelSet bool
	history  []Turn
}

var (
	_ LevelResolver = (*Store)(nil)
	_ HistoryWriter = (*Store)(nil)
	_ HistoryReader = (*Store)(nil)
)

func NewStore(cfg Config) *Store {
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = defaultMaxTurns
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = defaultMaxChars
	}
	return &Store{
		cfg:      cfg,
		sessions: make(map[int64]*session),
	}
}

// Level returns the chat's selected level, or DefaultLevel if the chat has
// not picked one. Pure read: it never creates or mutates a session.
func (s *Store) Level(chatID int64) Level {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[chatID]
	if !ok || !sess.levelSet {
		return DefaultLevel
	}
	return sess.level
}

// SetLevel overwrites the chat's level. The previous value is kept on error.
func (s *Store) SetLevel(chatID int64, level Level) error {
	if !level.Valid() {
		return ErrInvalidLevel
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.ensureLocked(chatID)
	sess.level = level
	sess.levelSet = true
	return nil
}

func (s *Store) AppendUser(chatID int64, text string) {
	s.append(chatID, Turn{Role: RoleUser, Content: text})
}

func (s *Store) AppendAssistant(chatID int64, text string) {
	s.append(chatID, Turn{Role: RoleAssistant, Content: text})
}

func (s *Store) append(chatID int64, turn Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.ensureLocked(chatID)
	sess.history = append(sess.history, turn)
	sess.history = trimTurns(sess.history, s.cfg.MaxTurns, s.cfg.MaxChars)
}

// History returns an ordered snapshot. Mutating the result does not affect
// the store.
func (s *Store) History(chatID int64) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[chatID]
	if !ok {
		return nil
	}
	return append([]Turn(nil), sess.history...)
}

// Clear drops the chat's history and keeps its level. Clearing an unknown or
// already-empty chat is a no-op.
func (s *Store) Clear(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[chatID]; ok {
		sess.history = nil
	}
}

func (s *Store) Stats(chatID int64) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	var st Stats
	sess, ok := s.sessions[chatID]
	if !ok {
		return st
	}
	for _, turn := range sess.history {
		switch turn.Role {
		case RoleUser:
			st.User++
		case RoleAssistant:
			st.Assistant++
		}
	}
	st.Total = len(sess.history)
	return st
}

func (s *Store) ensureLocked(chatID int64) *session {
	sess, ok := s.sessions[chatID]
	if !ok {
		sess = &session{}
		s.sessions[chatID] = sess
	}
	return sess
}

// trimTurns evicts oldest-first until both bounds hold. The most recent turn
// is always kept, even when it alone exceeds the char budget.
func trimTurns(turns []Turn, maxTurns, maxChars int) []Turn {
	if len(turns) > maxTurns {
		turns = turns[len(turns)-maxTurns:]
	}
	total := 0
	for _, t := range turns {
		total += utf8.RuneCountInString(t.Content)
	}
	for len(turns) > 1 && total > maxChars {
		total -= utf8.RuneCountInString(turns[0].Content)
		turns = turns[1:]
	}
	return turns
}
