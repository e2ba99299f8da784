// Package server exposes the chat service over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Cyclone1070/fincoach/internal/chat"
	"github.com/Cyclone1070/fincoach/internal/domain"
	"github.com/Cyclone1070/fincoach/internal/metadata"
	"github.com/Cyclone1070/fincoach/internal/store"
	"go.uber.org/zap"
)

// Responder handles one chat turn. *chat.Service satisfies it.
type Responder interface {
	Respond(ctx context.Context, req chat.Request) (chat.Response, error)
}

// Handler serves the chat API.
type Handler struct {
	responder Responder
	convos    store.ConversationStore
	meta      *metadata.Store
	log       *zap.Logger
}

// New builds the API handler.
func New(responder Responder, convos store.ConversationStore, meta *metadata.Store, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{responder: responder, convos: convos, meta: meta, log: log}
}

// Routes returns the configured request mux.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", h.handleChat)
	mux.HandleFunc("GET /api/history", h.handleHistory)
	mux.HandleFunc("GET /api/history/{convoId}", h.handleMessages)
	mux.HandleFunc("GET /api/metadata", h.handleMetadata)
	return h.logRequests(mux)
}

type chatRequest struct {
	UserID   string            `json:"userId"`
	ConvoID  string            `json:"convoId"`
	UserText string            `json:"user_text"`
	History  []domain.Exchange `json:"history"`
}

type chatResponse struct {
	BotReply string `json:"bot_reply"`
	ConvoID  string `json:"convoId"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var body chatRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid JSON body"})
		return
	}
	if strings.TrimSpace(body.UserText) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "user_text must not be empty"})
		return
	}

	resp, err := h.responder.Respond(r.Context(), chat.Request{
		UserID:   body.UserID,
		ConvoID:  body.ConvoID,
		UserText: body.UserText,
		History:  body.History,
	})
	if err != nil {
		h.log.Error("chat turn failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "An unexpected error occurred."})
		return
	}
	if resp.Rejected {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: resp.Reason})
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{BotReply: resp.BotReply, ConvoID: resp.ConvoID})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		userID = "demo-user"
	}

	convos, err := h.convos.Conversations(r.Context(), userID)
	if err != nil {
		h.log.Error("history lookup failed", zap.String("userId", userID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "An unexpected error occurred."})
		return
	}
	if convos == nil {
		convos = []store.Conversation{}
	}
	writeJSON(w, http.StatusOK, convos)
}

func (h *Handler) handleMessages(w http.ResponseWriter, r *http.Request) {
	convoID := r.PathValue("convoId")
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		userID = "demo-user"
	}

	owner, err := h.convos.Owner(r.Context(), convoID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Detail: "conversation not found"})
		return
	case err != nil:
		h.log.Error("owner lookup failed", zap.String("convoId", convoID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "An unexpected error occurred."})
		return
	case owner != userID:
		writeJSON(w, http.StatusForbidden, errorResponse{Detail: "conversation belongs to another user"})
		return
	}

	messages, err := h.convos.Messages(r.Context(), convoID)
	if err != nil {
		h.log.Error("messages lookup failed", zap.String("convoId", convoID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "An unexpected error occurred."})
		return
	}
	if messages == nil {
		messages = []store.Message{}
	}
	writeJSON(w, http.StatusOK, messages)
}

func (h *Handler) handleMetadata(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.meta.Get())
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		h.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
