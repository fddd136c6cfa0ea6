package media

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

const DefaultSampleRate = 16000

// demuxers maps upload extensions to an ffmpeg input format. Extensions not
// listed here are left to ffmpeg's probing.
var demuxers = map[string]string{
	"wav":  "wav",
	"mp3":  "mp3",
	"aac":  "aac",
	"ogg":  "ogg",
	"flac": "flac",
	"aiff": "aiff",
	"aif":  "aiff",
	"wma":  "asf",
	"webm": "webm",
}

// seekInput lists MP4-family extensions whose index may trail the media data;
// ffmpeg reads these from a temp file since it cannot seek a pipe.
var seekInput = map[string]bool{
	"m4a":  true,
	"alac": true,
}

// SupportedFormats lists the extensions accepted for upload.
var SupportedFormats = map[string]bool{
	"wav": true, "mp3": true, "aac": true, "ogg": true, "flac": true, "alac": true,
	"pcm": true, "aiff": true, "aif": true, "wma": true, "m4a": true, "webm": true,
}

// FFmpeg decodes any supported container to mono 16-bit PCM by piping through ffmpeg.
type FFmpeg struct {
	Path       string
	SampleRate int
}

func NewFFmpeg(path string, sampleRate int) *FFmpeg {
	if path == "" {
		path = "ffmpeg"
	}
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &FFmpeg{Path: path, SampleRate: sampleRate}
}

// Decode reads the whole input and returns its PCM samples. format is the
// file extension without the dot.
func (f *FFmpeg) Decode(ctx context.Context, r io.Reader, format string) (*PCM, error) {
	format = strings.ToLower(format)
	input := "pipe:0"
	if seekInput[format] {
		path, err := spool(r)
		if err != nil {
			return nil, err
		}
		defer os.Remove(path)
		input, r = path, nil
	}

	cmd := exec.CommandContext(ctx, f.Path, f.args(format, input)...)
	if r != nil {
		cmd.Stdin = r
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("ffmpeg decode failed: %s", strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("ffmpeg: %w", err)
	}

	raw := stdout.Bytes()
	samples := make([]int16, len(raw)/2)
	if err := binary.Read(bytes.NewReader(raw[:len(samples)*2]), binary.LittleEndian, samples); err != nil {
		return nil, fmt.Errorf("read pcm samples failed: %w", err)
	}
	return &PCM{Samples: samples, SampleRate: f.SampleRate}, nil
}

// args builds: ffmpeg [input flags] -i <input> -ac 1 -ar <rate> -f s16le pipe:1
func (f *FFmpeg) args(format, input string) []string {
	rate := strconv.Itoa(f.SampleRate)
	args := []string{"-hide_banner", "-loglevel", "error"}
	switch {
	case format == "pcm":
		// raw uploads are expected as s16le mono at the configured rate
		args = append(args, "-f", "s16le", "-ar", rate, "-ac", "1")
	case demuxers[format] != "":
		args = append(args, "-f", demuxers[format])
	}
	return append(args, "-i", input, "-vn", "-ac", "1", "-ar", rate, "-f", "s16le", "-acodec", "pcm_s16le", "pipe:1")
}

func spool(r io.Reader) (string, error) {
	tmp, err := os.CreateTemp("", "audio-*")
	if err != nil {
		return "", fmt.Errorf("create temp audio file failed: %w", err)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("spool audio failed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("spool audio failed: %w", err)
	}
	return tmp.Name(), nil
}
