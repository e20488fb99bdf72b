package tts

import (
	"context"
	"fmt"
	"io"
	"os"

	"psybot/pkg/logger"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// SpeechSynthesizer is the slice of the OpenAI client used for TTS.
type SpeechSynthesizer interface {
	CreateSpeech(ctx context.Context, request openai.CreateSpeechRequest) (openai.RawResponse, error)
}

// Synthesizer converts reply text into an opus voice clip. Synthesis is
// best effort: the text reply has already been sent when it runs, so
// callers absorb every failure silently.
type Synthesizer struct {
	client   SpeechSynthesizer
	maxChars int
}

func NewSynthesizer(client SpeechSynthesizer, maxChars int) *Synthesizer {
	return &Synthesizer{
		client:   client,
		maxChars: maxChars,
	}
}

// Synthesize writes the spoken reply to a temp .ogg file and returns
// its path. The caller owns the file and must remove it.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) (string, error) {
	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          Truncate(text, s.maxChars),
		Voice:          openai.VoiceAlloy,
		ResponseFormat: openai.SpeechResponseFormatOpus,
	})
	if err != nil {
		return "", fmt.Errorf("speech synthesis failed: %w", err)
	}
	defer resp.Close()

	f, err := os.CreateTemp("", "reply-*.ogg")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(f, resp); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write audio: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to close audio file: %w", err)
	}

	logger.Debug("Voice reply synthesized", zap.String("file", f.Name()))

	return f.Name(), nil
}

// Truncate cuts text to max runes, marking the cut with an ellipsis.
func Truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
