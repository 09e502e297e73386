package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dmitrievaaxx/ml-tutor-bot/dialog"
	"github.com/dmitrievaaxx/ml-tutor-bot/internal/logutil"
	"github.com/dmitrievaaxx/ml-tutor-bot/internal/tutorbot"
	"github.com/dmitrievaaxx/ml-tutor-bot/llm"
	"github.com/dmitrievaaxx/ml-tutor-bot/progress"
	"github.com/dmitrievaaxx/ml-tutor-bot/prompt"
	"github.com/dmitrievaaxx/ml-tutor-bot/providers/openrouter"
)

const envPrefix = "ML_TUTOR_BOT"

func Execute() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ml-tutor-bot",
		Short: "Telegram tutor bot for machine learning questions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd)
		},
		SilenceUsage: true,
	}

	cobra.OnInitialize(initConfig)

	cmd.PersistentFlags().String("config", "", "Config file path (optional).")
	_ = viper.BindPFlag("config", cmd.PersistentFlags().Lookup("config"))

	cmd.PersistentFlags().String("log-level", "", "Logging level: debug|info|warn|error (defaults to info).")
	cmd.PersistentFlags().String("log-format", "text", "Logging format: text|json.")
	cmd.PersistentFlags().Bool("log-add-source", false, "Include source file:line in logs.")
	_ = viper.BindPFlag("logging.level", cmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", cmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("logging.add_source", cmd.PersistentFlags().Lookup("log-add-source"))

	cmd.Flags().String("telegram-bot-token", "", "Telegram bot token.")
	cmd.Flags().Duration("telegram-poll-timeout", 0, "Long-poll timeout for getUpdates.")
	cmd.Flags().Int("telegram-max-concurrency", 0, "Max concurrently processed questions across all chats.")
	_ = viper.BindPFlag("telegram.bot_token", cmd.Flags().Lookup("telegram-bot-token"))
	_ = viper.BindPFlag("telegram.poll_timeout", cmd.Flags().Lookup("telegram-poll-timeout"))
	_ = viper.BindPFlag("telegram.max_concurrency", cmd.Flags().Lookup("telegram-max-concurrency"))

	cmd.Flags().String("llm-endpoint", "", "OpenRouter-compatible API base URL.")
	cmd.Flags().String("llm-api-key", "", "API key for the LLM endpoint.")
	cmd.Flags().StringSlice("llm-model", nil, "Model id to try, in order (repeatable).")
	_ = viper.BindPFlag("llm.endpoint", cmd.Flags().Lookup("llm-endpoint"))
	_ = viper.BindPFlag("llm.api_key", cmd.Flags().Lookup("llm-api-key"))
	_ = viper.BindPFlag("llm.models", cmd.Flags().Lookup("llm-model"))

	cmd.Flags().String("progress-db", "", "Path to the progress SQLite database.")
	_ = viper.BindPFlag("progress.db_path", cmd.Flags().Lookup("progress-db"))

	cmd.AddCommand(newVersionCmd())

	return cmd
}

func runBot(cmd *cobra.Command) error {
	logger, err := logutil.LoggerFromViper()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	apiKey := strings.TrimSpace(viper.GetString("llm.api_key"))
	if apiKey == "" {
		return fmt.Errorf("missing llm.api_key (set via --llm-api-key or %s_LLM_API_KEY)", envPrefix)
	}

	base := openrouter.New(viper.GetString("llm.endpoint"), apiKey)
	if t := viper.GetDuration("llm.request_timeout"); t > 0 {
		base.HTTP.Timeout = t
	}

	fallback, err := llm.NewFallbackClient(base, llm.FallbackConfig{
		Models:         viper.GetStringSlice("llm.models"),
		Temperature:    viper.GetFloat64("llm.temperature"),
		MaxTokens:      viper.GetInt("llm.max_tokens"),
		AttemptTimeout: viper.GetDuration("llm.attempt_timeout"),
	}, logger)
	if err != nil {
		return fmt.Errorf("init llm client: %w", err)
	}

	suggester, err := prompt.NewSuggester()
	if err != nil {
		return fmt.Errorf("init suggester: %w", err)
	}

	store := dialog.NewStore(dialog.Config{
		MaxTurns: viper.GetInt("dialog.history_max_turns"),
		MaxChars: viper.GetInt("dialog.history_max_chars"),
	})

	var progressStore *progress.Store
	if viper.GetBool("progress.enabled") {
		progressStore, err = progress.Open(viper.GetString("progress.db_path"))
		if err != nil {
			// The bot is still useful without /status topic counts.
			logger.Warn("progress_store_disabled", "error", err.Error())
		} else {
			defer func() { _ = progressStore.Close() }()
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("bot_starting", "models", strings.Join(fallback.Models(), ","))

	return tutorbot.Run(ctx, tutorbot.Config{
		BotToken:       viper.GetString("telegram.bot_token"),
		BaseURL:        viper.GetString("telegram.base_url"),
		PollTimeout:    viper.GetDuration("telegram.poll_timeout"),
		TaskTimeout:    viper.GetDuration("telegram.task_timeout"),
		MaxConcurrency: viper.GetInt("telegram.max_concurrency"),
	}, tutorbot.Dependencies{
		Logger:    logger,
		Store:     store,
		Suggester: suggester,
		LLM:       fallback,
		Progress:  progressStore,
	})
}

func initConfig() {
	initViperDefaults()

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	cfgFile := strings.TrimSpace(viper.GetString("config"))
	if cfgFile == "" {
		return
	}

	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to read config: %v\n", err)
	}
}
