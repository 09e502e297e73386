package dialog

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestLevelDefaultsToBasicWithoutCreatingSession(t *testing.T) {
	t.Parallel()

	s := NewStore(Config{})
	if got := s.Level(1001); got != LevelBasic {
		t.Fatalf("Level = %v, want %v", got, LevelBasic)
	}
	// The default read must not have persisted anything: an explicit set is
	// still the first write.
	if got := len(s.sessions); got != 0 {
		t.Fatalf("sessions created on read: %d", got)
	}
	if err := s.SetLevel(1001, LevelAdvanced); err != nil {
		t.Fatalf("SetLevel: %v", err)
	}
	if got := s.Level(1001); got != LevelAdvanced {
		t.Fatalf("Level after set = %v, want %v", got, LevelAdvanced)
	}
}

func TestSetLevelInvalidKeepsPrior(t *testing.T) {
	t.Parallel()

	s := NewStore(Config{})
	if err := s.SetLevel(5, LevelNovice); err != nil {
		t.Fatalf("SetLevel: %v", err)
	}
	err := s.SetLevel(5, Level("expert"))
	if !errors.Is(err, ErrInvalidLevel) {
		t.Fatalf("got %v, want ErrInvalidLevel", err)
	}
	if got := s.Level(5); got != LevelNovice {
		t.Fatalf("level changed to %v after invalid set", got)
	}
}

func TestFIFOEvictionByTurnCount(t *testing.T) {
	t.Parallel()

	s := NewStore(Config{MaxTurns: 4})
	for i := 0; i < 7; i++ {
		s.AppendUser(1, fmt.Sprintf("msg-%d", i))
	}
	h := s.History(1)
	if len(h) != 4 {
		t.Fatalf("history length = %d, want 4", len(h))
	}
	// Most recent turns survive in original relative order.
	for i, want := range []string{"msg-3", "msg-4", "msg-5", "msg-6"} {
		if h[i].Content != want {
			t.Errorf("h[%d] = %q, want %q", i, h[i].Content, want)
		}
	}
}

func TestEvictionByCharBudget(t *testing.T) {
	t.Parallel()

	s := NewStore(Config{MaxTurns: 100, MaxChars: 25})
	s.AppendUser(1, strings.Repeat("a", 10))
	s.AppendAssistant(1, strings.Repeat("b", 10))
	s.AppendUser(1, strings.Repeat("c", 10))
	h := s.History(1)
	if len(h) != 2 {
		t.Fatalf("history length = %d, want 2", len(h))
	}
	if h[0].Content[0] != 'b' || h[1].Content[0] != 'c' {
		t.Fatalf("wrong turns survived: %q, %q", h[0].Content, h[1].Content)
	}
}

func TestOversizedSingleTurnIsKept(t *testing.T) {
	t.Parallel()

	s := NewStore(Config{MaxTurns: 10, MaxChars: 5})
	s.AppendUser(1, "a much longer message than the budget")
	if got := len(s.History(1)); got != 1 {
		t.Fatalf("history length = %d, want 1", got)
	}
}

func TestClearIsIdempotentAndKeepsLevel(t *testing.T) {
	t.Parallel()

	s := NewStore(Config{})
	if err := s.SetLevel(9, LevelAdvanced); err != nil {
		t.Fatalf("SetLevel: %v", err)
	}
	s.AppendUser(9, "вопрос")
	s.AppendAssistant(9, "ответ")

	s.Clear(9)
	s.Clear(9)

	if got := len(s.History(9)); got != 0 {
		t.Fatalf("history length after clear = %d, want 0", got)
	}
	if got := s.Level(9); got != LevelAdvanced {
		t.Fatalf("level after clear = %v, want %v", got, LevelAdvanced)
	}
	// Clearing a chat that never existed must not create one.
	s.Clear(777)
	if _, ok := s.sessions[777]; ok {
		t.Fatal("clear created a session")
	}
}

func TestHistorySnapshotIsIsolated(t *testing.T) {
	t.Parallel()

	s := NewStore(Config{})
	s.AppendUser(2, "original")
	h := s.History(2)
	h[0].Content = "mutated"
	if got := s.History(2)[0].Content; got != "original" {
		t.Fatalf("store history mutated through snapshot: %q", got)
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	s := NewStore(Config{})
	s.AppendUser(3, "a")
	s.AppendAssistant(3, "b")
	s.AppendUser(3, "c")
	st := s.Stats(3)
	if st.User != 2 || st.Assistant != 1 || st.Total != 3 {
		t.Fatalf("stats = %+v", st)
	}
	if st := s.Stats(404); st.Total != 0 {
		t.Fatalf("stats for unknown chat = %+v", st)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "novice", want: LevelNovice},
		{in: "Новичок", want: LevelNovice},
		{in: "basic", want: LevelBasic},
		{in: "Базовый", want: LevelBasic},
		{in: "advanced", want: LevelAdvanced},
		{in: "Продвинутый", want: LevelAdvanced},
		{in: "  продвинутый ", want: LevelAdvanced},
		{in: "NOVICE", want: LevelNovice},
		{in: "expert", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidLevel) {
				t.Errorf("ParseLevel(%q) err = %v, want ErrInvalidLevel", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}
