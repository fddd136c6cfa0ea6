package media

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFFmpegDecodesWAV(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}
	samples := make([]int16, 8000)
	for i := range samples {
		samples[i] = int16((i % 50) * 100)
	}
	in := &PCM{Samples: samples, SampleRate: 8000}

	out, err := NewFFmpeg("", 16000).Decode(context.Background(), bytes.NewReader(in.WAV()), "wav")
	require.NoError(t, err)
	assert.Equal(t, 16000, out.SampleRate)
	assert.InDelta(t, 1000, out.DurationMs(), 20)
}

func TestFFmpegReportsGarbage(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}
	_, err := NewFFmpeg("", 0).Decode(context.Background(), bytes.NewReader([]byte("not audio")), "mp3")
	assert.Error(t, err)
}

func TestFFmpegMissingBinary(t *testing.T) {
	_, err := NewFFmpeg("/nonexistent/ffmpeg", 0).Decode(context.Background(), bytes.NewReader(nil), "wav")
	assert.Error(t, err)
}

func TestFFmpegArgs(t *testing.T) {
	f := NewFFmpeg("", 16000)

	assert.Equal(t, []string{"-hide_banner", "-loglevel", "error", "-f", "mp3", "-i", "pipe:0",
		"-vn", "-ac", "1", "-ar", "16000", "-f", "s16le", "-acodec", "pcm_s16le", "pipe:1"}, f.args("mp3", "pipe:0"))

	args := f.args("m4a", "/tmp/audio-1")
	assert.Equal(t, []string{"-hide_banner", "-loglevel", "error", "-i", "/tmp/audio-1"}, args[:5])

	args = f.args("pcm", "pipe:0")
	assert.Equal(t, []string{"-f", "s16le", "-ar", "16000", "-ac", "1", "-i", "pipe:0"}, args[3:11])
}

func TestFFmpegDecodesM4AWithTrailingIndex(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}
	dir := t.TempDir()
	samples := make([]int16, 16000)
	for i := range samples {
		samples[i] = int16((i % 40) * 200)
	}
	wav := filepath.Join(dir, "in.wav")
	require.NoError(t, os.WriteFile(wav, (&PCM{Samples: samples, SampleRate: 16000}).WAV(), 0o600))
	m4a := filepath.Join(dir, "out.m4a")
	out, err := exec.Command("ffmpeg", "-hide_banner", "-loglevel", "error", "-i", wav, "-c:a", "aac", m4a).CombinedOutput()
	require.NoError(t, err, string(out))

	in, err := os.Open(m4a)
	require.NoError(t, err)
	defer in.Close()

	pcm, err := NewFFmpeg("", 16000).Decode(context.Background(), in, "M4A")
	require.NoError(t, err)
	assert.InDelta(t, 1000, pcm.DurationMs(), 100)
}
