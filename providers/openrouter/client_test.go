package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmitrievaaxx/ml-tutor-bot/llm"
)

func TestChatSuccess(t *testing.T) {
	t.Parallel()

	var gotBody chatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer key-1" {
			t.Errorf("auth header = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hi there"}}],"usage":{"prompt_tokens":12,"completion_tokens":3,"total_tokens":15}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "key-1")
	res, err := c.Chat(context.Background(), llm.Request{
		Model:       "qwen/qwen-2-7b-instruct:free",
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: "hello"}},
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if res.Text != "hi there" {
		t.Errorf("text = %q", res.Text)
	}
	if res.Usage.TotalTokens != 15 {
		t.Errorf("total tokens = %d, want 15", res.Usage.TotalTokens)
	}
	if gotBody.Model != "qwen/qwen-2-7b-instruct:free" {
		t.Errorf("model = %q", gotBody.Model)
	}
	if gotBody.Temperature != 0.7 {
		t.Errorf("temperature = %v", gotBody.Temperature)
	}
	if gotBody.MaxTokens != 500 {
		t.Errorf("max_tokens = %d", gotBody.MaxTokens)
	}
}

func TestChatErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantSub string
	}{
		{
			name:    "http_error_with_message",
			status:  http.StatusTooManyRequests,
			body:    `{"error":{"message":"rate limited","code":429}}`,
			wantSub: "rate limited",
		},
		{
			name:    "http_error_raw_body",
			status:  http.StatusBadGateway,
			body:    `{"oops":true}`,
			wantSub: "http 502",
		},
		{
			name:    "malformed_body",
			status:  http.StatusOK,
			body:    `{"choices":[`,
			wantSub: "malformed",
		},
		{
			name:    "empty_choices",
			status:  http.StatusOK,
			body:    `{"choices":[]}`,
			wantSub: "empty choices",
		},
		{
			name:    "upstream_error_in_200",
			status:  http.StatusOK,
			body:    `{"error":{"message":"model is overloaded"}}`,
			wantSub: "overloaded",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := New(srv.URL, "")
			_, err := c.Chat(context.Background(), llm.Request{
				Model:    "m",
				Messages: []llm.Message{{Role: llm.RoleUser, Content: "q"}},
			})
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Fatalf("error %q does not contain %q", err.Error(), tt.wantSub)
			}
		})
	}
}

func TestNewDefaultsToOpenRouter(t *testing.T) {
	t.Parallel()

	c := New("", "k")
	if c.BaseURL != "https://openrouter.ai/api" {
		t.Fatalf("base url = %q", c.BaseURL)
	}
}
