package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pavelanni/studybuddy/internal/genai"
	"github.com/pavelanni/studybuddy/internal/handler"
	"github.com/pavelanni/studybuddy/internal/model"
	"github.com/pavelanni/studybuddy/internal/service"
	"github.com/pavelanni/studybuddy/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "studybuddy",
		Short: "Study material generator powered by LLMs",
	}

	serve := serveCmd()
	root.AddCommand(serve)

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `studybuddy --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP study server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "studybuddy.db", "SQLite database path")
	f.String("llm-url", "http://localhost:11434/v1", "OpenAI-compatible API base URL")
	f.String("llm-key", "ollama", "API key for LLM")
	f.String("llm-model", "llama3.2", "LLM model name")
	f.String("image-url", "", "Image API base URL (defaults to llm-url)")
	f.String("image-key", "", "API key for image generation (defaults to llm-key)")
	f.String("image-model", "", "Image model name")
	f.Bool("enable-images", false, "Render images for summary illustration prompts")
	f.Int("max-new-tokens", 1024, "Token budget for a single generation call")
	f.Float32("temperature", 0.7, "Sampling temperature for free-text generation")
	f.Int("history-max-messages", 20, "Chat turns kept when compacting history")
	f.Int("history-max-chars", 5000, "Character budget for compacted chat history")
	f.Int("context-max-chars", 12000, "Character budget for assembled document context")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("STUDYBUDDY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("studybuddy")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/studybuddy")
	v.AddConfigPath("/etc/studybuddy")
	v.AddConfigPath("/data")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	textClient := genai.New(
		v.GetString("llm-url"),
		v.GetString("llm-key"),
		v.GetString("llm-model"),
	)
	if err := textClient.Ping(context.Background()); err != nil {
		return fmt.Errorf("LLM health check: %w", err)
	}
	slog.Info("LLM endpoint OK", "url", v.GetString("llm-url"), "model", v.GetString("llm-model"))

	imageURL := v.GetString("image-url")
	if imageURL == "" {
		imageURL = v.GetString("llm-url")
	}
	imageKey := v.GetString("image-key")
	if imageKey == "" {
		imageKey = v.GetString("llm-key")
	}
	enableImages := v.GetBool("enable-images") && v.GetString("image-model") != ""
	imageClient := genai.NewImageClient(imageURL, imageKey, v.GetString("image-model"), enableImages)

	cfg := model.Config{
		MaxNewTokens:       v.GetInt("max-new-tokens"),
		Temperature:        float32(v.GetFloat64("temperature")),
		EnableImages:       enableImages,
		HistoryMaxMessages: v.GetInt("history-max-messages"),
		HistoryMaxChars:    v.GetInt("history-max-chars"),
		ContextMaxChars:    v.GetInt("context-max-chars"),
	}

	svc := service.New(db, textClient, imageClient, cfg)
	h := handler.New(svc, v.GetString("llm-model"), v.GetString("image-model"))

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	h.Routes(r)

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"model", v.GetString("llm-model"),
		"llm_url", v.GetString("llm-url"),
		"image_model", v.GetString("image-model"),
		"enable_images", enableImages,
		"max_new_tokens", cfg.MaxNewTokens,
		"temperature", cfg.Temperature,
	)
	return http.ListenAndServe(addr, r)
}
