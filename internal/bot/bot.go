package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"psybot/internal/config"
	"psybot/internal/crisis"
	"psybot/pkg/cache"
	"psybot/pkg/logger"
	"psybot/pkg/model"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v4"
)

// VoiceFetcher pulls a remote voice file onto local disk. The caller
// owns the returned file and must remove it.
type VoiceFetcher interface {
	Fetch(fileID string) (string, error)
}

// AudioConverter normalizes a compressed voice file to PCM WAV.
type AudioConverter interface {
	Convert(ctx context.Context, oggPath string) (string, error)
}

// Transcriber turns a WAV file into text; an empty result means the
// speech was not recognized.
type Transcriber interface {
	Transcribe(ctx context.Context, wavPath string) (string, error)
}

// Responder generates the persona reply. It never fails: provider
// errors come back as a fixed fallback string.
type Responder interface {
	Reply(ctx context.Context, userText string) string
}

// Synthesizer renders reply text as a voice clip on disk.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (string, error)
}

// ExchangeJournal persists completed exchanges. May be nil.
type ExchangeJournal interface {
	CreateExchange(ctx context.Context, e *model.Exchange) error
}

type Bot struct {
	cfg         *config.Config
	tb          *tele.Bot
	cache       cache.Cache
	filter      *crisis.Filter
	fetcher     VoiceFetcher
	converter   AudioConverter
	transcriber Transcriber
	responder   Responder
	synth       Synthesizer
	journal     ExchangeJournal
}

func NewBot(
	cfg *config.Config,
	redisCache cache.Cache,
	filter *crisis.Filter,
	converter AudioConverter,
	transcriber Transcriber,
	responder Responder,
	synth Synthesizer,
	journal ExchangeJournal,
) (*Bot, error) {
	logger.Info("Starting bot initialization")

	pref := tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: newPoller(cfg),
	}

	tb, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Info("Bot created successfully")

	bot := &Bot{
		cfg:         cfg,
		tb:          tb,
		cache:       redisCache,
		filter:      filter,
		fetcher:     newTelegramFetcher(tb),
		converter:   converter,
		transcriber: transcriber,
		responder:   responder,
		synth:       synth,
		journal:     journal,
	}

	bot.registerHandlers()
	return bot, nil
}

// newPoller selects webhook delivery when a public URL is configured,
// long polling otherwise. The bot token ends up in the webhook path as
// an implicit shared secret, alongside the optional header secret.
func newPoller(cfg *config.Config) tele.Poller {
	if cfg.Telegram.WebhookURL == "" {
		return &tele.LongPoller{
			Timeout: 10 * time.Second,
		}
	}

	publicURL := strings.TrimRight(cfg.Telegram.WebhookURL, "/") + "/" + cfg.Telegram.Token

	logger.Info("Using webhook delivery",
		zap.Int("port", cfg.Telegram.ListenPort))

	return &tele.Webhook{
		Listen:      fmt.Sprintf(":%d", cfg.Telegram.ListenPort),
		SecretToken: cfg.Telegram.WebhookSecret,
		Endpoint: &tele.WebhookEndpoint{
			PublicURL: publicURL,
		},
	}
}

func (b *Bot) registerHandlers() {
	b.tb.Use(b.recoverMiddleware)
	b.tb.Handle("/start", b.handleStart)
	b.tb.Handle("/stop", b.handleStop)
	b.tb.Handle(tele.OnVoice, b.handleVoice)
	b.tb.Handle(tele.OnText, b.handleText)
}

// recoverMiddleware isolates each handler invocation: a panic or a
// returned error is logged and the user gets one generic apology. One
// message's failure must never take the process down.
func (b *Bot) recoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Handler panic",
					zap.Any("panic", r),
					zap.Int64("chat_id", chatID(c)))
				_ = c.Send(msgUnexpectedError)
			}
		}()

		if err := next(c); err != nil {
			logger.Error("Handler error",
				zap.Error(err),
				zap.Int64("chat_id", chatID(c)))
			_ = c.Send(msgUnexpectedError)
		}

		return nil
	}
}

func chatID(c tele.Context) int64 {
	if chat := c.Chat(); chat != nil {
		return chat.ID
	}
	return 0
}

// handleStart resumes the chat and sends the welcome text
func (b *Bot) handleStart(c tele.Context) error {
	id := chatID(c)
	ctx := context.Background()

	key := cache.ChatStoppedCacheKey(id)
	if err := b.cache.Delete(ctx, key); err != nil {
		logger.Error("Failed to clear chat stopped state", zap.Error(err))
	}

	logger.Info("Bot activated for chat", zap.Int64("chat_id", id))

	return c.Send(msgWelcome)
}

// handleStop suspends voice and text processing for the chat
func (b *Bot) handleStop(c tele.Context) error {
	id := chatID(c)
	ctx := context.Background()

	key := cache.ChatStoppedCacheKey(id)
	if err := b.cache.SetWithTTL(ctx, key, "true", 30*24*time.Hour); err != nil {
		logger.Error("Failed to save chat stopped state", zap.Error(err))
	}

	logger.Info("Bot deactivated for chat", zap.Int64("chat_id", id))

	return c.Send(msgStopped)
}

// isStopped reports whether the chat opted out via /stop. Cache errors
// fail open: an unreachable Redis must not silence the bot.
func (b *Bot) isStopped(id int64) bool {
	ctx := context.Background()
	key := cache.ChatStoppedCacheKey(id)

	var value string
	if err := b.cache.Get(ctx, key, &value); err != nil {
		return false
	}

	return value == "true"
}

func (b *Bot) Start() {
	logger.Info("Bot started")
	b.tb.Start()
}

func (b *Bot) Stop() {
	b.tb.Stop()
	logger.Info("Bot stopped")
}
