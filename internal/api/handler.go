// Package api provides HTTP handlers for the tutoring chat API.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ashureev/adaptutor/internal/chatlog"
	"github.com/ashureev/adaptutor/internal/domain"
	"github.com/ashureev/adaptutor/internal/llm"
	"github.com/ashureev/adaptutor/internal/tutor"
)

// maxRequestBodySize caps inbound JSON bodies (1MB).
const maxRequestBodySize = 1 << 20

// Handler serves the tutoring chat endpoints.
type Handler struct {
	sessions *tutor.Manager
	invoker  llm.Invoker
	log      chatlog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(sessions *tutor.Manager, invoker llm.Invoker, log chatlog.Logger) *Handler {
	if log == nil {
		log = mustNoopLogger()
	}
	return &Handler{sessions: sessions, invoker: invoker, log: log}
}

func mustNoopLogger() chatlog.Logger {
	l, _ := chatlog.New(chatlog.Config{Enabled: false}, nil)
	return l
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// RegisterRoutes registers the chat API routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/session/start", h.StartSession)
		r.Post("/chat", h.Chat)
		r.Get("/progress/{sessionID}", h.Progress)
		r.Post("/history", h.History)
		r.Post("/difficulty", h.SetDifficulty)
	})
}

// StartSession allocates a new session identifier and initializes its record.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	sessionID := uuid.NewString()

	if err := h.sessions.Init(r.Context(), sessionID); err != nil {
		slog.Error("Failed to start session", "session_id", sessionID, "error", err)
		Error(w, http.StatusInternalServerError, "Failed to start session")
		return
	}

	slog.Info("Session started", "session_id", sessionID)
	JSON(w, http.StatusOK, map[string]string{
		"sessionId": sessionID,
		"message":   "Session started. Ask me anything to begin!",
	})
}

type chatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// Chat handles one tutoring exchange: read history and tier, call the model,
// then record the completed pair. A failed model call answers with a static
// apology and leaves session state untouched.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.SessionID == "" || req.Message == "" {
		Error(w, http.StatusBadRequest, "Missing sessionId or message")
		return
	}

	history, level, err := h.sessions.History(r.Context(), req.SessionID)
	if err != nil {
		slog.Error("Failed to load session history", "session_id", req.SessionID, "error", err)
		Error(w, http.StatusInternalServerError, "Failed to load session")
		return
	}

	response, err := h.invoker.Invoke(r.Context(), tutor.SystemPrompt(level), tutor.PromptWindow(history), req.Message)
	if err != nil {
		// No assistant content was produced, so nothing is recorded and the
		// score is untouched. The client still gets a conversational reply.
		slog.Warn("Model invocation failed, returning fallback",
			"session_id", req.SessionID, "error", err)
		JSON(w, http.StatusOK, map[string]string{
			"response":  llm.Fallback,
			"sessionId": req.SessionID,
		})
		return
	}

	if err := h.sessions.AddMessage(r.Context(), req.SessionID, req.Message, response); err != nil {
		if errors.Is(err, tutor.ErrNotInitialized) {
			slog.Error("Chat for uninitialized session", "session_id", req.SessionID)
			Error(w, http.StatusInternalServerError, "Session not initialized")
			return
		}
		slog.Error("Failed to record exchange", "session_id", req.SessionID, "error", err)
		Error(w, http.StatusInternalServerError, "Failed to save message")
		return
	}

	h.log.Log(chatlog.Event{
		SessionID: req.SessionID,
		Role:      string(domain.RoleUser),
		Content:   req.Message,
		Meta:      map[string]any{"difficulty": string(level)},
	})
	h.log.Log(chatlog.Event{
		SessionID: req.SessionID,
		Role:      string(domain.RoleAssistant),
		Content:   response,
	})

	slog.Info("Chat exchange completed",
		"session_id", req.SessionID,
		"message_length", len(req.Message),
		"response_length", len(response),
	)
	JSON(w, http.StatusOK, map[string]string{
		"response":  response,
		"sessionId": req.SessionID,
	})
}

// Progress returns the session's metrics snapshot.
func (h *Handler) Progress(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	metrics, messageCount, sessionAge, err := h.sessions.Progress(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, tutor.ErrSessionNotFound) {
			Error(w, http.StatusNotFound, "Session not found")
			return
		}
		slog.Error("Failed to load progress", "session_id", sessionID, "error", err)
		Error(w, http.StatusInternalServerError, "Failed to load progress")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"metrics":      metrics,
		"messageCount": messageCount,
		"sessionAge":   sessionAge,
	})
}

type historyRequest struct {
	SessionID string `json:"sessionId"`
}

// History returns the session's turns and current difficulty tier. Unknown
// sessions behave as brand-new rather than erroring.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req historyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.SessionID == "" {
		Error(w, http.StatusBadRequest, "Missing sessionId")
		return
	}

	history, level, err := h.sessions.History(r.Context(), req.SessionID)
	if err != nil {
		slog.Error("Failed to load history", "session_id", req.SessionID, "error", err)
		Error(w, http.StatusInternalServerError, "Failed to load history")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"history":         history,
		"difficultyLevel": level,
	})
}

type difficultyRequest struct {
	SessionID string `json:"sessionId"`
	Level     string `json:"level"`
}

// SetDifficulty manually overrides the difficulty tier.
func (h *Handler) SetDifficulty(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req difficultyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.SessionID == "" || req.Level == "" {
		Error(w, http.StatusBadRequest, "Missing sessionId or level")
		return
	}

	level, err := domain.ParseLevel(req.Level)
	if err != nil {
		Error(w, http.StatusBadRequest, "Invalid difficulty level")
		return
	}

	if err := h.sessions.SetDifficulty(r.Context(), req.SessionID, level); err != nil {
		if errors.Is(err, tutor.ErrSessionNotFound) {
			Error(w, http.StatusNotFound, "Session not found")
			return
		}
		slog.Error("Failed to set difficulty", "session_id", req.SessionID, "error", err)
		Error(w, http.StatusInternalServerError, "Failed to set difficulty")
		return
	}

	slog.Info("Difficulty overridden", "session_id", req.SessionID, "level", level)
	JSON(w, http.StatusOK, map[string]string{
		"message": "Difficulty set to " + string(level),
		"level":   string(level),
	})
}

// NotFound is the JSON 404 handler for unmatched routes.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	Error(w, http.StatusNotFound, "Not found")
}

// MethodNotAllowed is the JSON 405 handler.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	Error(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// nowMillis is the timestamp used in health responses.
func nowMillis() int64 { return time.Now().UnixMilli() }
