package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"psybot/internal/audio"
	"psybot/internal/bot"
	"psybot/internal/config"
	"psybot/internal/crisis"
	"psybot/internal/psychologist"
	"psybot/internal/storage"
	"psybot/internal/transcribe"
	"psybot/internal/tts"
	"psybot/pkg/cache"
	"psybot/pkg/logger"

	"github.com/joho/godotenv"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

func main() {
	// Load .env file first
	_ = godotenv.Load()

	// Initialize the logger first
	debug := os.Getenv("DEBUG") != ""
	if err := logger.Init(debug); err != nil {
		panic("Failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	logger.Info("Starting psybot service")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
		return
	}

	openaiClient := openai.NewClient(cfg.OpenAI.APIKey)

	// Redis keeps the per-chat /stop flags
	redisCache, err := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
		return
	}
	defer redisCache.Close()

	logger.Info("Redis connection established")

	// The exchange journal is optional: no DSN, no persistence.
	var journal bot.ExchangeJournal
	if cfg.Postgres.DSN != "" {
		db, err := storage.NewPostgresStorage(cfg.Postgres.DSN)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
			return
		}
		defer db.Close()
		journal = db

		logger.Info("Database connection established, exchange journal enabled")
	}

	filter := crisis.NewFilter(cfg.Crisis.Enabled, cfg.Crisis.ExtraWords)
	converter := audio.NewConverter(cfg.Audio.FFmpegPath, cfg.Audio.SampleRate, cfg.Audio.ConvertTimeout)
	transcriber := transcribe.NewWhisper(openaiClient, cfg.OpenAI.WhisperModel)
	responder := psychologist.NewGenerator(openaiClient, cfg.OpenAI.ChatModel, cfg.OpenAI.MaxTokens, cfg.OpenAI.Temperature)

	var synth bot.Synthesizer
	if cfg.Reply.VoiceEnabled {
		synth = tts.NewSynthesizer(openaiClient, cfg.Reply.VoiceMaxChars)
		logger.Info("Voice replies enabled")
	}

	botInstance, err := bot.NewBot(cfg, redisCache, filter, converter, transcriber, responder, synth, journal)
	if err != nil {
		logger.Fatal("Failed to initialize bot", zap.Error(err))
		return
	}

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start bot in a goroutine
	go func() {
		logger.Info("Starting Telegram bot")
		botInstance.Start()
	}()

	select {
	case sig := <-sigChan:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	// Graceful shutdown
	cancel()
	botInstance.Stop()

	logger.Info("Bot service shutdown complete")
}
