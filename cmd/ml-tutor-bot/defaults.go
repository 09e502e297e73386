package main

import (
	"time"

	"github.com/spf13/viper"
)

func initViperDefaults() {
	viper.SetDefault("telegram.bot_token", "")
	viper.SetDefault("telegram.base_url", "https://api.telegram.org")
	viper.SetDefault("telegram.poll_timeout", 30*time.Second)
	viper.SetDefault("telegram.task_timeout", 3*time.Minute)
	viper.SetDefault("telegram.max_concurrency", 3)

	viper.SetDefault("llm.endpoint", "https://openrouter.ai/api")
	viper.SetDefault("llm.api_key", "")
	viper.SetDefault("llm.models", []string{
		"deepseek/deepseek-chat-v3-0324:free",
		"qwen/qwen3-14b:free",
		"meta-llama/llama-3.3-70b-instruct:free",
	})
	viper.SetDefault("llm.temperature", 0.7)
	viper.SetDefault("llm.max_tokens", 500)
	viper.SetDefault("llm.request_timeout", 90*time.Second)
	viper.SetDefault("llm.attempt_timeout", 60*time.Second)

	viper.SetDefault("dialog.history_max_turns", 20)
	viper.SetDefault("dialog.history_max_chars", 16000)

	viper.SetDefault("progress.enabled", true)
	viper.SetDefault("progress.db_path", "")
}
