package telegramutil

import "testing"

func TestEscapeMarkdownV2(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain_identifier",
			in:   "k_means",
			want: "k\\_means",
		},
		{
			name: "special_chars",
			in:   "_*[]()~`>#+-=|{}.!\\",
			want: "\\_\\*\\[\\]\\(\\)\\~\\`\\>\\#\\+\\-\\=\\|\\{\\}\\.\\!\\\\",
		},
		{
			name: "non_specials",
			in:   "привет мир",
			want: "привет мир",
		},
		{
			name: "blank",
			in:   "   ",
			want: "   ",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := EscapeMarkdownV2(tt.in); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCleanAnswer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bold_and_italic",
			in:   "**Нейронная сеть** — это *модель*.",
			want: "Нейронная сеть — это модель.",
		},
		{
			name: "heading",
			in:   "## Введение\nТекст",
			want: "Введение\nТекст",
		},
		{
			name: "lists",
			in:   "- первый\n- второй\n1. третий",
			want: "первый\nвторой\nтретий",
		},
		{
			name: "blank_and_space_runs",
			in:   "а\n\n\n\nб   в",
			want: "а\n\nб в",
		},
		{
			name: "already_plain",
			in:   "обычный текст",
			want: "обычный текст",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CleanAnswer(tt.in); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}
