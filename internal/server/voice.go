package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
)

var errTranscriptionDisabled = errors.New("transcription is not configured")

func (s *Server) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	if s.synth == nil {
		writeFailure(w, http.StatusServiceUnavailable, "Speech synthesis is not configured")
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		writeFailure(w, http.StatusBadRequest, "text is required")
		return
	}

	audio, err := s.synth.Synthesize(r.Context(), req.Text)
	if err != nil {
		s.logger.Error("speech synthesis failed", "error", err)
		writeFailure(w, http.StatusBadGateway, "Speech synthesis failed")
		return
	}
	writeSuccess(w, http.StatusOK, "Audio generated", map[string]interface{}{
		"audio_base64": base64.StdEncoding.EncodeToString(audio),
	})
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if s.transcriber == nil {
		writeFailure(w, http.StatusServiceUnavailable, "Transcription is not configured")
		return
	}

	var req struct {
		AudioBase64 string `json:"audio_base64"`
		Language    string `json:"language,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AudioBase64 == "" {
		writeFailure(w, http.StatusBadRequest, "audio_base64 is required")
		return
	}
	audio, err := base64.StdEncoding.DecodeString(req.AudioBase64)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "audio_base64 is not valid base64")
		return
	}

	lang := req.Language
	if lang == "" {
		lang = "en"
	}
	text, err := s.transcriber.Transcribe(r.Context(), audio, lang)
	if err != nil {
		s.logger.Error("transcription failed", "error", err)
		writeFailure(w, http.StatusBadGateway, "Transcription failed")
		return
	}
	writeSuccess(w, http.StatusOK, "Audio transcribed", map[string]interface{}{
		"text": text,
	})
}
