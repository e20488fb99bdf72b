package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
	"unicode/utf8"

	"psybot/internal/crisis"
	"psybot/internal/psychologist"
	"psybot/pkg/logger"
	"psybot/pkg/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v4"
)

func (b *Bot) handleText(c tele.Context) error {
	msg := c.Message()
	if msg == nil || msg.Text == "" {
		return nil
	}

	if b.isStopped(msg.Chat.ID) {
		logger.Info("Ignoring text message from stopped chat",
			zap.Int64("chat_id", msg.Chat.ID),
			zap.Int("message_id", msg.ID))
		return nil
	}

	ctx := context.Background()

	reply, crisisHit := b.respond(ctx, msg.Text)
	if err := c.Send(reply); err != nil {
		logger.Error("Failed to send reply",
			zap.Error(err),
			zap.Int64("chat_id", msg.Chat.ID))
		return nil
	}

	b.journalExchange(ctx, msg, model.MessageKindText, msg.Text, reply, crisisHit, nil)
	return nil
}

func (b *Bot) handleVoice(c tele.Context) error {
	msg := c.Message()
	if msg == nil || msg.Voice == nil {
		return nil
	}

	if b.isStopped(msg.Chat.ID) {
		logger.Info("Ignoring voice message from stopped chat",
			zap.Int64("chat_id", msg.Chat.ID),
			zap.Int("message_id", msg.ID))
		return nil
	}

	if err := c.Reply(msgProcessing); err != nil {
		logger.Error("Failed to send processing message", zap.Error(err))
	}

	ctx := context.Background()

	oggPath, err := b.fetcher.Fetch(msg.Voice.FileID)
	if err != nil {
		logger.Error("Failed to download voice file",
			zap.Error(err),
			zap.Int64("chat_id", msg.Chat.ID),
			zap.String("file_id", msg.Voice.FileID))
		return nil
	}
	defer os.Remove(oggPath)

	wavPath, err := b.converter.Convert(ctx, oggPath)
	if err != nil {
		logger.Error("Voice conversion failed",
			zap.Error(err),
			zap.Int64("chat_id", msg.Chat.ID))
		return c.Send(msgConversionFailed)
	}
	defer os.Remove(wavPath)

	text, err := b.transcriber.Transcribe(ctx, wavPath)
	if err != nil || utf8.RuneCountInString(text) < b.cfg.Reply.MinTranscriptLen {
		// Unrecognized speech is a normal outcome, not an error: prompt
		// the user to retype.
		return c.Send(msgNotRecognized)
	}

	if b.cfg.Reply.EchoTranscript {
		if err := c.Reply(fmt.Sprintf(echoTemplate, text), tele.ModeMarkdown); err != nil {
			logger.Error("Failed to echo transcript", zap.Error(err))
		}
	}

	// Voice-derived text goes through the same crisis filter as typed
	// text.
	reply, crisisHit := b.respond(ctx, text)
	if err := c.Send(reply); err != nil {
		logger.Error("Failed to send reply",
			zap.Error(err),
			zap.Int64("chat_id", msg.Chat.ID))
		return nil
	}

	b.journalExchange(ctx, msg, model.MessageKindVoice, text, reply, crisisHit, model.JSONB{
		"voice_duration": msg.Voice.Duration,
		"file_size":      msg.Voice.FileSize,
		"mime_type":      msg.Voice.MIME,
	})

	if b.synth != nil && !crisisHit {
		b.sendVoiceReply(ctx, c, reply)
	}

	return nil
}

// respond short-circuits on crisis phrases; otherwise the message goes
// to the response generator. The second result reports a crisis match.
func (b *Bot) respond(ctx context.Context, text string) (string, bool) {
	if b.filter.Match(text) {
		logger.Warn("Crisis phrase detected, safety message sent")
		return crisis.SafetyMessage, true
	}

	return b.responder.Reply(ctx, text), false
}

// telegramFetcher downloads voice files from the Telegram file API
// into temp .ogg files.
type telegramFetcher struct {
	tb         *tele.Bot
	httpClient *http.Client
}

func newTelegramFetcher(tb *tele.Bot) *telegramFetcher {
	return &telegramFetcher{
		tb: tb,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (f *telegramFetcher) Fetch(fileID string) (string, error) {
	file, err := f.tb.FileByID(fileID)
	if err != nil {
		return "", fmt.Errorf("failed to get file info: %w", err)
	}

	fileURL := f.tb.URL + "/file/bot" + f.tb.Token + "/" + file.FilePath

	resp, err := f.httpClient.Get(fileURL)
	if err != nil {
		return "", fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download file: status=%d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "voice-*.ogg")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to save voice file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close voice file: %w", err)
	}

	return tmp.Name(), nil
}

// sendVoiceReply synthesizes and sends the spoken reply. Every failure
// here is absorbed: the text reply has already been delivered.
func (b *Bot) sendVoiceReply(ctx context.Context, c tele.Context, text string) {
	clipPath, err := b.synth.Synthesize(ctx, text)
	if err != nil {
		logger.Warn("Voice reply skipped", zap.Error(err))
		return
	}
	defer os.Remove(clipPath)

	voice := &tele.Voice{File: tele.FromDisk(clipPath)}
	if err := c.Send(voice); err != nil {
		logger.Warn("Failed to send voice reply", zap.Error(err))
	}
}

func (b *Bot) journalExchange(
	ctx context.Context,
	msg *tele.Message,
	kind model.MessageKind,
	userText, reply string,
	crisisHit bool,
	meta model.JSONB,
) {
	if b.journal == nil {
		return
	}

	e := &model.Exchange{
		ID:                uuid.New().String(),
		ChatID:            msg.Chat.ID,
		TelegramMessageID: int64(msg.ID),
		Kind:              kind,
		UserText:          userText,
		ReplyText:         reply,
		Crisis:            crisisHit,
		Fallback:          reply == psychologist.Fallback,
		Meta:              meta,
		CreatedAt:         time.Now(),
	}

	if err := b.journal.CreateExchange(ctx, e); err != nil {
		logger.Error("Failed to journal exchange",
			zap.Error(err),
			zap.String("exchange_id", e.ID))
	}
}
