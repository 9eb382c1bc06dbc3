// Package server exposes the HTTP surface: reminder CRUD, the chat proxy,
// nearby-hospital lookup, voice chat, and the live-push websocket.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/arimitra/healthmate/internal/chat"
	"github.com/arimitra/healthmate/internal/hub"
	"github.com/arimitra/healthmate/internal/model"
	"github.com/arimitra/healthmate/internal/places"
	"github.com/arimitra/healthmate/internal/reminder"
	"github.com/arimitra/healthmate/internal/speech"
	"github.com/arimitra/healthmate/internal/store"
)

const maxVoiceUploadBytes = 10 << 20

// Server holds the handlers' collaborators.
type Server struct {
	reminders *reminder.Service
	chat      *chat.Client
	places    *places.Client
	speech    *speech.Client
	hub       *hub.Hub
	logger    *log.Logger
}

func New(reminders *reminder.Service, chatClient *chat.Client, placesClient *places.Client, speechClient *speech.Client, h *hub.Hub, logger *log.Logger) *Server {
	return &Server{
		reminders: reminders,
		chat:      chatClient,
		places:    placesClient,
		speech:    speechClient,
		hub:       h,
		logger:    logger,
	}
}

// Routes builds the full route table.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/reminders", s.handleListReminders)
	mux.HandleFunc("POST /api/reminders", s.handleCreateReminder)
	mux.HandleFunc("DELETE /api/reminders/{id}", s.handleDeleteReminder)
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("POST /find_hospitals", s.handleFindHospitals)
	mux.HandleFunc("POST /api/voice-chat", s.handleVoiceChat)
	mux.Handle("GET /ws", s.hub)
	return mux
}

func (s *Server) handleListReminders(w http.ResponseWriter, r *http.Request) {
	list, err := s.reminders.List(r.Context())
	if err != nil {
		s.reminderError(w, err)
		return
	}
	if list == nil {
		list = []model.ReminderSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"reminders": list, "success": true})
}

func (s *Server) handleCreateReminder(w http.ResponseWriter, r *http.Request) {
	var req reminder.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	rec, err := s.reminders.Create(r.Context(), req)
	if err != nil {
		s.reminderError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"reminder": rec, "success": true})
}

func (s *Server) handleDeleteReminder(w http.ResponseWriter, r *http.Request) {
	if err := s.reminders.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.reminderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Reminder deleted", "success": true})
}

// reminderError maps service errors onto the response taxonomy. Dependency
// failures are logged in full but reported generically.
func (s *Server) reminderError(w http.ResponseWriter, err error) {
	switch {
	case reminder.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Reminder not found")
	case errors.Is(err, store.ErrUnavailable):
		s.logger.Printf("server: reminder store unavailable: %v", err)
		writeError(w, http.StatusInternalServerError, "Reminder store unavailable")
	default:
		s.logger.Printf("server: reminder request failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message   string `json:"message"`
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeError(w, http.StatusBadRequest, "No message provided")
		return
	}
	if !s.chat.Configured() {
		writeError(w, http.StatusInternalServerError, "Chat service not configured")
		return
	}

	reply, err := s.chat.Send(r.Context(), req.SessionID, req.Message)
	if err != nil {
		s.logger.Printf("server: chat: %v", err)
		writeError(w, http.StatusInternalServerError, "Chat request failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"response": reply, "success": true})
}

func (s *Server) handleFindHospitals(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Latitude == nil || req.Longitude == nil {
		writeError(w, http.StatusBadRequest, "Latitude and Longitude are required")
		return
	}
	if !s.places.Configured() {
		writeError(w, http.StatusInternalServerError, "Places service not configured")
		return
	}

	hospitals, err := s.places.FindNearby(r.Context(), *req.Latitude, *req.Longitude)
	if err != nil {
		s.logger.Printf("server: places lookup: %v", err)
		writeError(w, http.StatusInternalServerError, "Hospital search failed")
		return
	}
	if hospitals == nil {
		hospitals = []places.Hospital{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"hospitals": hospitals, "success": true})
}

// handleVoiceChat runs the full voice round trip: transcribe the uploaded
// audio, ask the chat model, and return the synthesized reply as MP3.
func (s *Server) handleVoiceChat(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxVoiceUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "No audio file provided")
		return
	}
	file, _, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No audio file provided")
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unable to read audio file")
		return
	}

	transcript, err := s.speech.Transcribe(r.Context(), audio)
	if err != nil || transcript == "" {
		if err != nil {
			s.logger.Printf("server: transcribe: %v", err)
		}
		writeError(w, http.StatusInternalServerError, "Speech recognition failed")
		return
	}

	reply, err := s.chat.Send(r.Context(), "voice", transcript)
	if err != nil {
		s.logger.Printf("server: voice chat: %v", err)
		writeError(w, http.StatusInternalServerError, "Chat request failed")
		return
	}

	speechBytes, err := s.speech.Synthesize(r.Context(), reply)
	if err != nil {
		s.logger.Printf("server: synthesize: %v", err)
		writeError(w, http.StatusInternalServerError, "TTS synthesis failed")
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(speechBytes); err != nil {
		s.logger.Printf("server: write audio response: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("server: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message, "success": false})
}
