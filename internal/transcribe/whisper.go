package transcribe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"psybot/pkg/logger"
	"psybot/pkg/resilience"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// AudioTranscriber is the slice of the OpenAI client the adapter needs.
type AudioTranscriber interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
}

// Whisper delegates waveform-to-text conversion to the OpenAI
// transcription API. An empty result with a nil error means the speech
// was not recognized; callers must treat that as a normal outcome.
type Whisper struct {
	client   AudioTranscriber
	model    string
	language string
}

func NewWhisper(client AudioTranscriber, model string) *Whisper {
	return &Whisper{
		client:   client,
		model:    model,
		language: "ru",
	}
}

// Transcribe sends the wav file for recognition. Transient provider
// failures get one retry; after that the error is returned for the
// caller to collapse into the user-facing "retype" prompt.
func (w *Whisper) Transcribe(ctx context.Context, wavPath string) (string, error) {
	var resp openai.AudioResponse

	err := resilience.Retry(ctx, 2, 500*time.Millisecond, func() error {
		var reqErr error
		resp, reqErr = w.client.CreateTranscription(ctx, openai.AudioRequest{
			Model:    w.model,
			FilePath: wavPath,
			Language: w.language,
		})
		return reqErr
	})
	if err != nil {
		logger.Error("Transcription request failed",
			zap.Error(err),
			zap.String("file", wavPath))
		return "", fmt.Errorf("transcription failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text)

	logger.Info("Transcription completed",
		zap.String("file", wavPath),
		zap.Int("text_length", len(text)))

	return text, nil
}
