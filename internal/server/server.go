package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"rps/internal/game"
	"rps/internal/notify"
	"rps/internal/service"
)

// statLimit caps the leaderboard response.
const statLimit = 10

// Server is the HTTP server.
type Server struct {
	mux      *http.ServeMux
	service  *service.Service
	registry *notify.Registry
}

// New creates a server with all routes.
func New(svc *service.Service, registry *notify.Registry) *Server {
	s := &Server{
		mux:      http.NewServeMux(),
		service:  svc,
		registry: registry,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/game", s.handleCreateGame)
	s.mux.HandleFunc("GET /api/game/{gameId}", s.handleGetGame)
	s.mux.HandleFunc("POST /api/game/{gameId}/join", s.handleJoin)
	s.mux.HandleFunc("POST /api/game/{gameId}/action", s.handleAction)
	s.mux.HandleFunc("GET /api/stat", s.handleStat)
	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Printf("[%s] %s", r.Method, r.URL.Path)
	s.mux.ServeHTTP(w, r)
}

type createGameRequest struct {
	Nickname  string          `json:"nickname"`
	MaxRounds json.RawMessage `json:"max_rounds"`
}

type createGameResponse struct {
	GameID string `json:"game_id"`
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &game.ValidationError{Message: "invalid request body"})
		return
	}
	maxRounds, err := parseMaxRounds(req.MaxRounds)
	if err != nil {
		writeError(w, err)
		return
	}

	g, err := s.service.CreateGame(r.Context(), req.Nickname, maxRounds)
	if err != nil {
		writeError(w, err)
		return
	}
	log.Printf("a new game has been created: %s", g.ID)
	writeJSON(w, http.StatusCreated, createGameResponse{GameID: g.ID})
}

// parseMaxRounds accepts a JSON number or a numeric string, as clients
// send both.
func parseMaxRounds(raw json.RawMessage) (int, error) {
	v := strings.TrimSpace(string(raw))
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		v = v[1 : len(v)-1]
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &game.ValidationError{Message: `Please specify valid "max_rounds" parameter`}
	}
	return n, nil
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("gameId")
	g, err := s.service.GetGame(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

type joinRequest struct {
	Nickname string `json:"nickname"`
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("gameId")
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &game.ValidationError{Message: "invalid request body"})
		return
	}
	if err := s.service.Join(r.Context(), id, req.Nickname); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

type actionRequest struct {
	Nickname string `json:"nickname"`
	Action   string `json:"action"`
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("gameId")
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &game.ValidationError{Message: "invalid request body"})
		return
	}
	if err := s.service.SubmitAction(r.Context(), id, req.Nickname, req.Action); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (s *Server) handleStat(w http.ResponseWriter, r *http.Request) {
	top, err := s.service.TopStats(r.Context(), statLimit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, top)
}

type errorBody struct {
	Code  int    `json:"code"`
	Error string `json:"error"`
}

// writeError maps the domain error taxonomy onto HTTP statuses. Anything
// outside it is a store or encoding failure: logged and answered with an
// opaque 500, never retried.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	var (
		validationErr   *game.ValidationError
		notFoundErr     *game.NotFoundError
		invalidStateErr *game.InvalidStateError
		conflictErr     *game.ConflictError
	)
	switch {
	case errors.As(err, &validationErr),
		errors.As(err, &invalidStateErr),
		errors.As(err, &conflictErr):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.As(err, &notFoundErr):
		status = http.StatusNotFound
		message = err.Error()
	default:
		log.Printf("internal error: %v", err)
	}
	writeJSON(w, status, errorBody{Code: status, Error: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
