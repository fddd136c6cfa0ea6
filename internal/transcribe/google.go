package transcribe

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	speech "google.golang.org/api/speech/v1"

	"audio-vectorize/internal/media"
)

type GoogleConfig struct {
	APIKey          string
	CredentialsFile string
	LanguageCode    string

	// Endpoint overrides the API base URL.
	Endpoint string
}

// GoogleRecognizer calls the Cloud Speech-to-Text v1 synchronous recognize method.
type GoogleRecognizer struct {
	svc      *speech.Service
	language string
}

func NewGoogleRecognizer(ctx context.Context, cfg GoogleConfig, extra ...option.ClientOption) (*GoogleRecognizer, error) {
	var opts []option.ClientOption
	switch {
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	opts = append(opts, extra...)

	svc, err := speech.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create speech service failed: %w", err)
	}
	lang := cfg.LanguageCode
	if lang == "" {
		lang = "en-US"
	}
	return &GoogleRecognizer{svc: svc, language: lang}, nil
}

func (g *GoogleRecognizer) Recognize(ctx context.Context, clip *media.PCM) (string, error) {
	req := &speech.RecognizeRequest{
		Config: &speech.RecognitionConfig{
			Encoding:        "LINEAR16",
			SampleRateHertz: int64(clip.SampleRate),
			LanguageCode:    g.language,
		},
		Audio: &speech.RecognitionAudio{
			Content: base64.StdEncoding.EncodeToString(clip.WAV()),
		},
	}
	resp, err := g.svc.Speech.Recognize(req).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("google recognize failed: %w", err)
	}

	parts := make([]string, 0, len(resp.Results))
	for _, res := range resp.Results {
		if len(res.Alternatives) == 0 {
			continue
		}
		if t := strings.TrimSpace(res.Alternatives[0].Transcript); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " "), nil
}
