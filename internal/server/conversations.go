package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/glovera/consult/internal/catalog"
	"github.com/glovera/consult/internal/chat"
	"github.com/glovera/consult/internal/profile"
	"github.com/glovera/consult/internal/session"
	"github.com/glovera/consult/internal/telemetry"
	"github.com/glovera/consult/internal/tools"
	"github.com/glovera/consult/internal/translator"
)

const defaultTitle = "Study Abroad Consultation"

func (s *Server) newController(prof profile.Profile) *chat.Controller {
	return chat.NewController(s.client, s.registry, s.translator, s.lookup, s.chatModel,
		chat.WithSystemPrompt(chat.PersonalizedSystemPrompt(prof)),
		chat.WithProfile(prof),
		chat.WithLogger(s.logger),
	)
}

func (s *Server) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID  string            `json:"user_id"`
		Title   string            `json:"title,omitempty"`
		Profile map[string]string `json:"profile,omitempty"`
		Speak   bool              `json:"speak,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" {
		writeFailure(w, http.StatusBadRequest, "user_id is required")
		return
	}

	prof := profile.Profile(req.Profile)
	ctrl := s.newController(prof)
	ctrl.Start(chat.InitialGreeting)

	title := req.Title
	if title == "" {
		title = defaultTitle
	}
	sess := session.New(req.UserID, title, ctrl.History(), prof)
	if err := s.sessions.Insert(r.Context(), sess); err != nil {
		s.logger.Error("insert session", "error", err)
		writeFailure(w, http.StatusInternalServerError, "Could not create conversation")
		return
	}

	logger := telemetry.RequestLogger(s.logger, r.Context(), sess.ID)
	logger.Info("conversation started", "owner_id", sess.OwnerID)

	data := map[string]interface{}{
		"conversation_id": sess.ID,
		"reply":           chat.InitialGreeting,
		"status":          sess.Status,
	}
	if req.Speak {
		if audio := s.speak(r.Context(), logger, chat.InitialGreeting); audio != "" {
			data["audio_base64"] = audio
		}
	}
	writeSuccess(w, http.StatusCreated, "Conversation started", data)
}

func (s *Server) handleConversationMessage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	unlock := s.lockTurn(id)
	defer unlock()

	logger := telemetry.RequestLogger(s.logger, r.Context(), id)

	sess, err := s.sessions.FindByID(r.Context(), id)
	if err != nil {
		if session.IsNotFound(err) {
			writeFailure(w, http.StatusNotFound, "Conversation not found")
			return
		}
		logger.Error("load session", "error", err)
		writeFailure(w, http.StatusInternalServerError, "Could not load conversation")
		return
	}
	if sess.Status == session.StatusClosed {
		s.releaseTurnLock(id)
		writeFailure(w, http.StatusConflict, "Conversation is closed")
		return
	}

	var req struct {
		Message     string `json:"message,omitempty"`
		AudioBase64 string `json:"audio_base64,omitempty"`
		Speak       bool   `json:"speak,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	text := req.Message
	if text == "" && req.AudioBase64 != "" {
		text, err = s.transcribeInput(r.Context(), req.AudioBase64)
		if err != nil {
			logger.Error("transcribe input", "error", err)
			writeFailure(w, http.StatusBadRequest, "Could not transcribe audio input")
			return
		}
	}

	ctrl := s.newController(sess.Profile)
	if err := ctrl.Restore(sess.Messages); err != nil {
		logger.Error("restore history", "error", err)
		writeFailure(w, http.StatusInternalServerError, "Stored conversation history is invalid")
		return
	}

	before := len(sess.Messages)
	reply, err := ctrl.SubmitUserTurn(r.Context(), text)
	if err != nil {
		logger.Error("turn failed", "error", err)
		writeFailure(w, turnErrorStatus(err), turnErrorMessage(err))
		return
	}

	appended := ctrl.History()[before:]
	if err := s.sessions.AppendMessages(r.Context(), id, appended); err != nil {
		logger.Error("append messages", "error", err)
		writeFailure(w, http.StatusInternalServerError, "Could not persist conversation")
		return
	}

	status := sess.Status
	if reply == chat.EndSentinel {
		if err := s.sessions.SetStatus(r.Context(), id, session.StatusClosed); err != nil {
			logger.Error("close session", "error", err)
		} else {
			status = session.StatusClosed
			s.releaseTurnLock(id)
		}
	}

	data := map[string]interface{}{
		"conversation_id": id,
		"reply":           reply,
		"status":          status,
	}
	if req.Speak {
		if audio := s.speak(r.Context(), logger, reply); audio != "" {
			data["audio_base64"] = audio
		}
	}
	writeSuccess(w, http.StatusOK, "Message processed", data)
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if session.IsNotFound(err) {
			writeFailure(w, http.StatusNotFound, "Conversation not found")
			return
		}
		s.logger.Error("load session", "error", err)
		writeFailure(w, http.StatusInternalServerError, "Could not load conversation")
		return
	}
	writeSuccess(w, http.StatusOK, "Conversation retrieved", sess)
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("user_id")
	if ownerID == "" {
		writeFailure(w, http.StatusBadRequest, "user_id query parameter is required")
		return
	}
	sessions, err := s.sessions.ListByOwner(r.Context(), ownerID)
	if err != nil {
		s.logger.Error("list sessions", "error", err)
		writeFailure(w, http.StatusInternalServerError, "Could not list conversations")
		return
	}
	writeSuccess(w, http.StatusOK, "Conversations retrieved", map[string]interface{}{
		"conversations": sessions,
	})
}

// speak renders a reply to audio. Synthesis failures degrade to a
// text-only response.
func (s *Server) speak(ctx context.Context, logger *slog.Logger, text string) string {
	if s.synth == nil {
		return ""
	}
	audio, err := s.synth.Synthesize(ctx, text)
	if err != nil {
		logger.Warn("speech synthesis failed", "error", err)
		return ""
	}
	return base64.StdEncoding.EncodeToString(audio)
}

func (s *Server) transcribeInput(ctx context.Context, audioBase64 string) (string, error) {
	if s.transcriber == nil {
		return "", errTranscriptionDisabled
	}
	audio, err := base64.StdEncoding.DecodeString(audioBase64)
	if err != nil {
		return "", err
	}
	return s.transcriber.Transcribe(ctx, audio, "en")
}

func turnErrorStatus(err error) int {
	switch {
	case chat.IsInvalidInputError(err):
		return http.StatusBadRequest
	case chat.IsModelCallError(err), translator.IsTranslationError(err), tools.IsArgumentParseError(err):
		return http.StatusBadGateway
	case catalog.IsLookupError(err):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func turnErrorMessage(err error) string {
	switch {
	case chat.IsInvalidInputError(err):
		return "Invalid message: " + err.Error()
	case chat.IsModelCallError(err):
		return "The language model is unavailable, please retry"
	case translator.IsTranslationError(err):
		return "Could not interpret the program search, please rephrase"
	case tools.IsArgumentParseError(err):
		return "The assistant produced an invalid tool request, please retry"
	case catalog.IsLookupError(err):
		return "Program catalog lookup failed, please retry"
	default:
		return "Could not process the message"
	}
}
