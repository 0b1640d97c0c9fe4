package http

import (
	"encoding/json"
	"net/http"

	"github.com/cwrk-planet/chat-service/internal/presence"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	registry *presence.Registry
	index    *presence.Index
}

func NewHandler(registry *presence.Registry, index *presence.Index) *Handler {
	return &Handler{registry: registry, index: index}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type OnlineUsersResponse struct {
	RoomID  string   `json:"roomId"`
	UserIDs []string `json:"userIds"`
}

type UserOnlineResponse struct {
	UserID string `json:"userId"`
	Online bool   `json:"online"`
}

type StatsResponse struct {
	Connections int `json:"connections"`
}

// GET /rooms/{id}/online
func (h *Handler) RoomOnline(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	if roomID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing room id"})
		return
	}

	writeJSON(w, http.StatusOK, OnlineUsersResponse{
		RoomID:  roomID,
		UserIDs: h.index.OnlineUsers(roomID),
	})
}

// GET /users/{id}/online
func (h *Handler) UserOnline(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing user id"})
		return
	}

	writeJSON(w, http.StatusOK, UserOnlineResponse{
		UserID: userID,
		Online: h.registry.IsOnline(userID),
	})
}

// GET /stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatsResponse{Connections: h.registry.ConnectionCount()})
}
