package transcribe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"audio-vectorize/internal/media"
)

var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Decoder turns an encoded audio stream into PCM.
type Decoder interface {
	Decode(ctx context.Context, r io.Reader, format string) (*media.PCM, error)
}

type Transcriber struct {
	decoder    Decoder
	recognizer Recognizer
	silence    SilenceConfig
}

func NewTranscriber(decoder Decoder, recognizer Recognizer, silence SilenceConfig) *Transcriber {
	return &Transcriber{decoder: decoder, recognizer: recognizer, silence: silence.withDefaults()}
}

// Supported reports whether a file name carries an accepted audio extension.
func Supported(format string) bool {
	return media.SupportedFormats[strings.ToLower(format)]
}

// Transcribe decodes the upload, splits it on silence and recognizes each
// segment in order. The first failing segment aborts the whole transcription.
func (t *Transcriber) Transcribe(ctx context.Context, r io.Reader, format string) (string, error) {
	format = strings.ToLower(format)
	if !Supported(format) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	pcm, err := t.decoder.Decode(ctx, r, format)
	if err != nil {
		return "", fmt.Errorf("decode audio failed: %w", err)
	}

	segments := SplitOnSilence(pcm, t.silence)
	log.Printf("transcribe: %d ms of audio split into %d segments", pcm.DurationMs(), len(segments))

	texts := make([]string, 0, len(segments))
	for i, seg := range segments {
		text, err := t.recognizer.Recognize(ctx, seg)
		if err != nil {
			return "", fmt.Errorf("segment %d: %w", i, err)
		}
		if text = strings.TrimSpace(text); text != "" {
			texts = append(texts, text)
		}
	}
	return strings.Join(texts, " "), nil
}
