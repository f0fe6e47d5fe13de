package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"learnitquick/internal/app"
	"learnitquick/internal/domain"
	"learnitquick/internal/generator"

	"github.com/rs/zerolog"
)

// APIHandler serves the JSON endpoints next to the game socket.
type APIHandler struct {
	service *app.GameService
	log     zerolog.Logger
}

func NewAPIHandler(service *app.GameService, log zerolog.Logger) *APIHandler {
	return &APIHandler{service: service, log: log.With().Str("component", "api").Logger()}
}

// Register mounts the endpoints on mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/modes", h.ServeModes)
	mux.HandleFunc("/profile", h.ServeProfile)
}

// ServeModes lists the game modes for the menu.
func (h *APIHandler) ServeModes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, http.StatusOK, generator.Catalogue())
}

// ServeProfile returns the player's profile on GET and sets name and avatar
// on PUT.
func (h *APIHandler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("playerId")
	if playerID == "" {
		http.Error(w, "missing playerId", http.StatusBadRequest)
		return
	}

	var (
		profile domain.Profile
		err     error
	)
	switch r.Method {
	case http.MethodGet:
		profile, err = h.service.Profile(r.Context(), playerID)
	case http.MethodPut, http.MethodPost:
		var payload profilePayload
		if decodeErr := json.NewDecoder(r.Body).Decode(&payload); decodeErr != nil {
			http.Error(w, "invalid profile payload", http.StatusBadRequest)
			return
		}
		profile, err = h.service.UpdateProfile(r.Context(), playerID, payload.Name, payload.Avatar)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if errors.Is(err, domain.ErrMissingPlayer) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("player", playerID).Msg("profile request failed")
		http.Error(w, "profile unavailable", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, profile)
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Debug().Err(err).Msg("write response")
	}
}
