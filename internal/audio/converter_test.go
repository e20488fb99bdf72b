package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"psybot/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if err := logger.Init(true); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// writeFakeTranscoder creates a shell script standing in for ffmpeg.
// The converter invokes it as: -y -i IN -ar RATE -ac 1 -c:a pcm_s16le OUT,
// so IN is $3 and OUT is ${10}.
func writeFakeTranscoder(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "transcoder.sh")
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func writeInputFile(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "voice.ogg")
	require.NoError(t, os.WriteFile(path, []byte("fake ogg data"), 0o644))
	return path
}

func TestConverter_Convert(t *testing.T) {
	transcoder := writeFakeTranscoder(t, `cp "$3" "${10}"`)
	oggPath := writeInputFile(t)

	c := NewConverter(transcoder, 16000, 30*time.Second)

	wavPath, err := c.Convert(context.Background(), oggPath)
	require.NoError(t, err)
	defer os.Remove(wavPath)

	assert.Equal(t, filepath.Join(filepath.Dir(oggPath), "voice.wav"), wavPath)

	data, err := os.ReadFile(wavPath)
	require.NoError(t, err)
	assert.Equal(t, "fake ogg data", string(data))
}

func TestConverter_NonzeroExit(t *testing.T) {
	transcoder := writeFakeTranscoder(t, `exit 1`)
	oggPath := writeInputFile(t)

	c := NewConverter(transcoder, 16000, 30*time.Second)

	_, err := c.Convert(context.Background(), oggPath)
	assert.True(t, errors.Is(err, ErrConversionFailed))

	// No partial wav may survive a failed conversion.
	wavPath := filepath.Join(filepath.Dir(oggPath), "voice.wav")
	_, statErr := os.Stat(wavPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestConverter_PartialOutputRemoved(t *testing.T) {
	transcoder := writeFakeTranscoder(t, `echo partial > "${10}"; exit 1`)
	oggPath := writeInputFile(t)

	c := NewConverter(transcoder, 16000, 30*time.Second)

	_, err := c.Convert(context.Background(), oggPath)
	assert.True(t, errors.Is(err, ErrConversionFailed))

	wavPath := filepath.Join(filepath.Dir(oggPath), "voice.wav")
	_, statErr := os.Stat(wavPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestConverter_MissingOutput(t *testing.T) {
	transcoder := writeFakeTranscoder(t, `exit 0`)
	oggPath := writeInputFile(t)

	c := NewConverter(transcoder, 16000, 30*time.Second)

	_, err := c.Convert(context.Background(), oggPath)
	assert.True(t, errors.Is(err, ErrConversionFailed))
}

func TestConverter_Timeout(t *testing.T) {
	transcoder := writeFakeTranscoder(t, `sleep 5`)
	oggPath := writeInputFile(t)

	c := NewConverter(transcoder, 16000, 100*time.Millisecond)

	start := time.Now()
	_, err := c.Convert(context.Background(), oggPath)

	assert.True(t, errors.Is(err, ErrConversionFailed))
	assert.Less(t, time.Since(start), 3*time.Second)
}
