package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"psybot/pkg/logger"

	"go.uber.org/zap"
)

// ErrConversionFailed covers every transcoding failure: nonzero exit,
// timeout, or a missing/empty output file.
var ErrConversionFailed = errors.New("audio conversion failed")

// Converter turns a compressed Telegram voice file into linear PCM WAV
// at the rate the transcription provider expects, by shelling out to
// ffmpeg.
type Converter struct {
	ffmpegPath string
	sampleRate int
	timeout    time.Duration
}

func NewConverter(ffmpegPath string, sampleRate int, timeout time.Duration) *Converter {
	return &Converter{
		ffmpegPath: ffmpegPath,
		sampleRate: sampleRate,
		timeout:    timeout,
	}
}

// Convert transcodes oggPath into a sibling .wav file and returns its
// path. On failure no output file is left behind; the caller still owns
// the input file and the returned wav on success.
func (c *Converter) Convert(ctx context.Context, oggPath string) (string, error) {
	wavPath := strings.TrimSuffix(oggPath, ".ogg") + ".wav"

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.ffmpegPath,
		"-y",
		"-i", oggPath,
		"-ar", strconv.Itoa(c.sampleRate),
		"-ac", "1",
		"-c:a", "pcm_s16le",
		wavPath,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		os.Remove(wavPath)

		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: timeout after %s", ErrConversionFailed, c.timeout)
		}

		logger.Error("Transcoder exited with error",
			zap.Error(err),
			zap.String("input", oggPath),
			zap.ByteString("output", output))

		return "", fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}

	info, err := os.Stat(wavPath)
	if err != nil || info.Size() == 0 {
		os.Remove(wavPath)
		return "", fmt.Errorf("%w: transcoder produced no output", ErrConversionFailed)
	}

	logger.Debug("Voice file converted",
		zap.String("input", oggPath),
		zap.String("output", wavPath),
		zap.Int64("size", info.Size()))

	return wavPath, nil
}
