package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/draftdex/draftdex/internal/session"
)

// Handler serves the HTTP surface: state reads, pick submissions, and the
// WebSocket upgrade.
type Handler struct {
	sessions *session.Manager
	cm       *ConnectionManager
}

// NewHandler wires the HTTP surface to the session registry and connection
// manager.
func NewHandler(sessions *session.Manager, cm *ConnectionManager) *Handler {
	return &Handler{sessions: sessions, cm: cm}
}

// RegisterRoutes attaches all gateway routes to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/rooms/", h.handleRooms)
	mux.HandleFunc("/ws", h.handleWebSocket)
	mux.HandleFunc("/health", h.handleHealth)
}

// handleRooms routes /api/rooms/{code}/state and /api/rooms/{code}/picks.
func (h *Handler) handleRooms(w http.ResponseWriter, r *http.Request) {
	roomCode, action, ok := parseRoomPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	switch action {
	case "state":
		h.handleState(w, r, roomCode)
	case "picks":
		h.handleMakePick(w, r, roomCode)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request, roomCode string) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess, ok := h.sessions.Get(roomCode)
	if !ok {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}

	view := BuildStateView(sess)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(view); err != nil {
		log.Error().Err(err).Str("room_code", roomCode).Msg("failed to encode state view")
	}
}

type makePickRequest struct {
	UserID    uuid.UUID `json:"user_id"`
	PokemonID string    `json:"pokemon_id"`
}

func (h *Handler) handleMakePick(w http.ResponseWriter, r *http.Request, roomCode string) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess, ok := h.sessions.Get(roomCode)
	if !ok {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}

	var req makePickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == uuid.Nil || req.PokemonID == "" {
		http.Error(w, "user_id and pokemon_id are required", http.StatusBadRequest)
		return
	}

	pick, err := sess.Engine.MakePick(r.Context(), req.UserID, req.PokemonID)
	if err != nil {
		status := pickErrorStatus(err)
		log.Warn().
			Err(err).
			Str("room_code", roomCode).
			Str("user_id", req.UserID.String()).
			Str("pokemon_id", req.PokemonID).
			Msg("pick rejected")
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(pick); err != nil {
		log.Error().Err(err).Msg("failed to encode pick response")
	}
}

func pickErrorStatus(err error) int {
	switch {
	case errors.Is(err, session.ErrNoDraft), errors.Is(err, session.ErrTeamNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrNotYourTurn),
		errors.Is(err, session.ErrDraftNotActive),
		errors.Is(err, session.ErrPokemonTaken),
		errors.Is(err, session.ErrRosterFull),
		errors.Is(err, session.ErrInsufficientBudget):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

// handleWebSocket upgrades GET /ws?room_code=X&user_id=Y to a live feed.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	roomCode := r.URL.Query().Get("room_code")
	if roomCode == "" {
		http.Error(w, "room_code is required", http.StatusBadRequest)
		return
	}

	userID, err := uuid.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		http.Error(w, "valid user_id is required", http.StatusBadRequest)
		return
	}

	if _, ok := h.sessions.Get(roomCode); !ok {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}

	if err := h.cm.Upgrade(w, r, userID, roomCode); err != nil {
		// Upgrade already wrote the HTTP error response.
		return
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"sessions": h.sessions.Len(),
	})
}

// parseRoomPath splits /api/rooms/{code}/{action} into its parts.
func parseRoomPath(path string) (roomCode, action string, ok bool) {
	const prefix = "/api/rooms/"
	if !strings.HasPrefix(path, prefix) {
		return "", "", false
	}
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
