// Package server exposes the consultation backend over HTTP.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/glovera/consult/internal/chat"
	"github.com/glovera/consult/internal/llm"
	"github.com/glovera/consult/internal/session"
	"github.com/glovera/consult/internal/speech"
	"github.com/glovera/consult/internal/tools"
)

// Server is the conversation HTTP server.
type Server struct {
	client     llm.Client
	registry   *tools.Registry
	translator chat.Translator
	lookup     chat.Lookup
	sessions   session.Store
	chatModel  string

	synth       speech.Synthesizer
	transcriber speech.Transcriber

	apiKey    string
	logger    *slog.Logger
	startTime time.Time

	// turnLocks serializes turns per conversation. Concurrent turns on
	// the same session would interleave histories.
	turnLocks sync.Map

	mux    *http.ServeMux
	server *http.Server
}

// ServerOption configures the Server.
type ServerOption func(*Server)

// WithAPIKey sets the API key for authentication.
func WithAPIKey(key string) ServerOption {
	return func(s *Server) { s.apiKey = key }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) { s.logger = logger }
}

// WithSynthesizer enables spoken replies. A failing synthesizer never
// fails a turn; audio is simply omitted.
func WithSynthesizer(synth speech.Synthesizer) ServerOption {
	return func(s *Server) { s.synth = synth }
}

// WithTranscriber enables audio input on conversation messages.
func WithTranscriber(t speech.Transcriber) ServerOption {
	return func(s *Server) { s.transcriber = t }
}

// NewServer creates the conversation HTTP server.
func NewServer(client llm.Client, registry *tools.Registry, tr chat.Translator, lookup chat.Lookup, sessions session.Store, chatModel string, opts ...ServerOption) *Server {
	s := &Server{
		client:     client,
		registry:   registry,
		translator: tr,
		lookup:     lookup,
		sessions:   sessions,
		chatModel:  chatModel,
		logger:     slog.Default(),
		startTime:  time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /v1/conversations", s.handleCreateConversation)
	mux.HandleFunc("GET /v1/conversations", s.handleListConversations)
	mux.HandleFunc("GET /v1/conversations/{id}", s.handleGetConversation)
	mux.HandleFunc("POST /v1/conversations/{id}/messages", s.handleConversationMessage)
	mux.HandleFunc("POST /v1/tts", s.handleSynthesize)
	mux.HandleFunc("POST /v1/transcriptions", s.handleTranscribe)

	s.mux = mux
	return s
}

// Handler returns the HTTP handler for use with httptest or custom servers.
func (s *Server) Handler() http.Handler {
	return s.authMiddleware(s.mux)
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.authMiddleware(s.mux),
	}
	s.logger.Info("server starting", "addr", addr, "model", s.chatModel)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Health and metrics don't require auth
		if r.URL.Path == "/healthz" || r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		if s.apiKey == "" {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get("X-API-Key")
		if key == "" {
			auth := r.Header.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				key = auth[7:]
			}
		}

		if key != s.apiKey {
			writeFailure(w, http.StatusUnauthorized, "Missing or invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, "healthy", map[string]interface{}{
		"uptime": time.Since(s.startTime).String(),
		"model":  s.chatModel,
	})
}

// lockTurn acquires the per-conversation turn lock.
func (s *Server) lockTurn(id string) func() {
	v, _ := s.turnLocks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// releaseTurnLock drops a conversation's turn lock once it is closed
// and can no longer accept turns. Without this the lock map grows for
// the lifetime of the server.
func (s *Server) releaseTurnLock(id string) {
	s.turnLocks.Delete(id)
}

// envelope is the uniform response shape: every endpoint reports
// success, a human-readable message, and an operation-specific payload.
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Message: message})
}
