// Package speech wraps the external speech-to-text and text-to-speech
// services as opaque clients. Failures are recoverable: a turn still
// completes in text when audio handling fails.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
)

// Transcriber converts audio bytes into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, language string) (string, error)
}

// GroqTranscriber implements Transcriber using the Groq Whisper
// transcription API.
type GroqTranscriber struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// GroqOption configures the Groq transcriber.
type GroqOption func(*GroqTranscriber)

// WithGroqHTTPClient sets a custom HTTP client.
func WithGroqHTTPClient(c *http.Client) GroqOption {
	return func(g *GroqTranscriber) { g.httpClient = c }
}

// WithGroqBaseURL points the transcriber at a non-default endpoint.
func WithGroqBaseURL(baseURL string) GroqOption {
	return func(g *GroqTranscriber) { g.baseURL = strings.TrimRight(baseURL, "/") }
}

// NewGroqTranscriber creates a transcriber for the Groq API.
func NewGroqTranscriber(apiKey string, opts ...GroqOption) *GroqTranscriber {
	g := &GroqTranscriber{
		baseURL:    "https://api.groq.com/openai/v1",
		apiKey:     apiKey,
		model:      "whisper-large-v3-turbo",
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Transcribe sends the audio for transcription at temperature zero.
func (g *GroqTranscriber) Transcribe(ctx context.Context, audio []byte, language string) (string, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part, err := form.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", fmt.Errorf("stt: build form: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("stt: build form: %w", err)
	}
	_ = form.WriteField("model", g.model)
	_ = form.WriteField("response_format", "json")
	_ = form.WriteField("temperature", "0")
	if language != "" {
		_ = form.WriteField("language", language)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("stt: build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return "", fmt.Errorf("stt: create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("stt: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("stt: HTTP %d", resp.StatusCode)
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("stt: decode response: %w", err)
	}
	return out.Text, nil
}
