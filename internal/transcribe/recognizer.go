package transcribe

import (
	"context"
	"fmt"

	"audio-vectorize/internal/ai"
	"audio-vectorize/internal/media"
)

// Recognizer turns one short clip of speech into text.
type Recognizer interface {
	Recognize(ctx context.Context, clip *media.PCM) (string, error)
}

// OpenAIRecognizer sends each clip to an OpenAI-compatible /audio/transcriptions endpoint.
type OpenAIRecognizer struct {
	client *ai.OpenAICompatibleClient
	cfg    ai.TranscriptionConfig
}

func NewOpenAIRecognizer(client *ai.OpenAICompatibleClient, cfg ai.TranscriptionConfig) *OpenAIRecognizer {
	if cfg.Model == "" {
		cfg.Model = "whisper-1"
	}
	return &OpenAIRecognizer{client: client, cfg: cfg}
}

func (r *OpenAIRecognizer) Recognize(ctx context.Context, clip *media.PCM) (string, error) {
	text, err := r.client.Transcribe(ctx, r.cfg, "segment.wav", clip.WAV())
	if err != nil {
		return "", fmt.Errorf("openai recognize failed: %w", err)
	}
	return text, nil
}
