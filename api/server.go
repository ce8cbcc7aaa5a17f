package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/mkowalska/anime-security-training/game/service"
	"github.com/mkowalska/anime-security-training/game/world"
	"github.com/mkowalska/anime-security-training/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.WorldService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server
func NewServer(worldService service.WorldService, hub *websocket.Hub) *Server {
	s := &Server{
		service: worldService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// World state and input
	api.HandleFunc("/state", s.handleGetState).Methods("GET")
	api.HandleFunc("/intent", s.handleIntent).Methods("POST")

	// Save slots
	api.HandleFunc("/game/new", s.handleNewGame).Methods("POST")
	api.HandleFunc("/game/save", s.handleSaveGame).Methods("POST")
	api.HandleFunc("/game/load", s.handleLoadGame).Methods("POST")
	api.HandleFunc("/saves", s.handleListSlots).Methods("GET")

	// Content
	api.HandleFunc("/maps", s.handleListMaps).Methods("GET")
	api.HandleFunc("/maps/{id}", s.handleGetMap).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)

	// Health check
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")

	// Static files (if needed)
	s.router.PathPrefix("/").Handler(http.FileServer(http.Dir("./static/")))
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// World Handlers

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.GetState(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleIntent(w http.ResponseWriter, r *http.Request) {
	var in world.Intent
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.service.ApplyIntent(r.Context(), in); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// Save Slot Handlers

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.NewGame(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if s.hub != nil {
		s.hub.Publish(snap)
	}

	respondJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleSaveGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Slot string `json:"slot,omitempty"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	if err := s.service.SaveGame(r.Context(), req.Slot); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (s *Server) handleLoadGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Slot string `json:"slot,omitempty"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	snap, err := s.service.LoadGame(r.Context(), req.Slot)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if s.hub != nil {
		s.hub.Publish(snap)
	}

	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleListSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := s.service.ListSlots(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if slots == nil {
		slots = []string{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(slots),
		"slots": slots,
	})
}

// Content Handlers

func (s *Server) handleListMaps(w http.ResponseWriter, r *http.Request) {
	ids, err := s.service.ListMaps(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if ids == nil {
		ids = []string{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(ids),
		"maps":  ids,
	})
}

func (s *Server) handleGetMap(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	doc, err := s.service.GetMap(r.Context(), vars["id"])
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, doc)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "websocket not enabled", http.StatusNotImplemented)
		return
	}
	s.hub.ServeWS(w, r)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
