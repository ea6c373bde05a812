package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Synthesizer converts text into audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// OpenAISynthesizer implements Synthesizer using the OpenAI speech API.
type OpenAISynthesizer struct {
	baseURL    string
	apiKey     string
	model      string
	voice      string
	httpClient *http.Client
}

// TTSOption configures the synthesizer.
type TTSOption func(*OpenAISynthesizer)

// WithTTSHTTPClient sets a custom HTTP client.
func WithTTSHTTPClient(c *http.Client) TTSOption {
	return func(s *OpenAISynthesizer) { s.httpClient = c }
}

// WithTTSBaseURL points the synthesizer at a non-default endpoint.
func WithTTSBaseURL(baseURL string) TTSOption {
	return func(s *OpenAISynthesizer) { s.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithVoice selects the synthesis voice.
func WithVoice(voice string) TTSOption {
	return func(s *OpenAISynthesizer) { s.voice = voice }
}

// NewOpenAISynthesizer creates a synthesizer for the OpenAI API.
func NewOpenAISynthesizer(apiKey string, opts ...TTSOption) *OpenAISynthesizer {
	s := &OpenAISynthesizer{
		baseURL:    "https://api.openai.com/v1",
		apiKey:     apiKey,
		model:      "tts-1",
		voice:      "alloy",
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize renders the text as MP3 audio bytes.
func (s *OpenAISynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	payload, err := json.Marshal(map[string]string{
		"model": s.model,
		"voice": s.voice,
		"input": text,
	})
	if err != nil {
		return nil, fmt.Errorf("tts: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/audio/speech", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("tts: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tts: HTTP %d", resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tts: read audio: %w", err)
	}
	return audio, nil
}
