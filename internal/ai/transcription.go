package ai

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
)

// TranscriptionConfig configures an OpenAI-compatible speech-to-text endpoint.
type TranscriptionConfig struct {
	BaseURL  string
	APIKey   string
	Model    string
	Language string
}

// Transcribe uploads one audio clip to /audio/transcriptions and returns the recognized text.
func (c *OpenAICompatibleClient) Transcribe(ctx context.Context, cfg TranscriptionConfig, filename string, audio []byte) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("build multipart failed: %w", err)
	}
	if _, err := fw.Write(audio); err != nil {
		return "", fmt.Errorf("build multipart failed: %w", err)
	}
	fields := map[string]string{"model": cfg.Model, "response_format": "json"}
	if cfg.Language != "" {
		fields["language"] = cfg.Language
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return "", fmt.Errorf("build multipart failed: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("build multipart failed: %w", err)
	}

	url := strings.TrimRight(cfg.BaseURL, "/") + "/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", fmt.Errorf("build request failed: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	}

	var parsed struct {
		Text string `json:"text"`
	}
	if err := c.do(req, &parsed); err != nil {
		return "", fmt.Errorf("transcription %w", err)
	}
	return strings.TrimSpace(parsed.Text), nil
}
