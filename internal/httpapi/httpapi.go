// Package httpapi serves the JSON table API under /api/truco/.
package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"truco-lite/internal/ledger"
	"truco-lite/internal/lobby"
	"truco-lite/truco"
)

type Server struct {
	lobby  *lobby.Lobby
	ledger ledger.Service
}

func New(lby *lobby.Lobby, svc ledger.Service) *Server {
	return &Server{lobby: lby, ledger: svc}
}

// Register mounts all routes on r.
func (s *Server) Register(r *mux.Router) {
	api := r.PathPrefix("/api/truco").Subrouter()
	api.HandleFunc("/tables", s.handleCreateTable).Methods(http.MethodPost)
	api.HandleFunc("/tables", s.handleListTables).Methods(http.MethodGet)
	api.HandleFunc("/tables/{id}/join", s.handleJoin).Methods(http.MethodPost)
	api.HandleFunc("/tables/{id}/bot", s.handleAddBot).Methods(http.MethodPost)
	api.HandleFunc("/tables/{id}/leave", s.handleLeave).Methods(http.MethodPost)
	api.HandleFunc("/tables/{id}/start", s.handleStart).Methods(http.MethodPost)
	api.HandleFunc("/tables/{id}/play", s.handlePlay).Methods(http.MethodPost)
	api.HandleFunc("/tables/{id}/action", s.handleAction).Methods(http.MethodPost)
	api.HandleFunc("/tables/{id}/state", s.handleState).Methods(http.MethodGet)
	api.HandleFunc("/players/{id}/balance", s.handleBalance).Methods(http.MethodGet)
	api.HandleFunc("/players/{id}/journal", s.handleJournal).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
}

type createTableRequest struct {
	Name     string `json:"name"`
	PlayerID string `json:"playerId"`
	Display  string `json:"displayName"`
	Bet      int64  `json:"bet"`
}

type tableRequest struct {
	PlayerID  string `json:"playerId"`
	Display   string `json:"displayName"`
	CardIndex int    `json:"cardIndex"`
	Action    string `json:"action"`
	RequestID string `json:"requestId"`
}

func (s *Server) handleCreateTable(w http.ResponseWriter, r *http.Request) {
	var req createTableRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.PlayerID) == "" {
		writeError(w, http.StatusBadRequest, "playerId required")
		return
	}
	if req.Display == "" {
		req.Display = req.PlayerID
	}
	g, err := s.lobby.CreateTable(req.Name, req.PlayerID, req.Display, req.Bet)
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, g.SnapshotFor(req.PlayerID))
}

func (s *Server) handleListTables(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"tables": s.lobby.ListTables()})
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	g, req, ok := s.tableAndBody(w, r)
	if !ok {
		return
	}
	display := req.Display
	if display == "" {
		display = req.PlayerID
	}
	if err := g.Join(req.PlayerID, display); err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g.SnapshotFor(req.PlayerID))
}

func (s *Server) handleAddBot(w http.ResponseWriter, r *http.Request) {
	g, req, ok := s.tableAndBody(w, r)
	if !ok {
		return
	}
	if err := g.AddBot(nil); err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g.SnapshotFor(req.PlayerID))
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	g, req, ok := s.tableAndBody(w, r)
	if !ok {
		return
	}
	if empty := g.Leave(req.PlayerID); empty {
		s.lobby.RemoveTable(g.ID)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "left"})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	g, req, ok := s.tableAndBody(w, r)
	if !ok {
		return
	}
	if err := g.StartMatch(req.PlayerID); err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g.SnapshotFor(req.PlayerID))
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	g, req, ok := s.tableAndBody(w, r)
	if !ok {
		return
	}
	if err := g.PlayCard(req.PlayerID, req.CardIndex); err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g.SnapshotFor(req.PlayerID))
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	g, req, ok := s.tableAndBody(w, r)
	if !ok {
		return
	}
	if err := g.SubmitAction(req.PlayerID, truco.Action(req.Action), req.RequestID); err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g.SnapshotFor(req.PlayerID))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	g := s.lobby.GetTable(mux.Vars(r)["id"])
	if g == nil {
		writeError(w, http.StatusNotFound, "no such table")
		return
	}
	writeJSON(w, http.StatusOK, g.SnapshotFor(r.URL.Query().Get("player")))
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	playerID := mux.Vars(r)["id"]
	bal, err := s.ledger.GetBalance(r.Context(), playerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"playerId": playerID, "balance": bal})
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	playerID := mux.Vars(r)["id"]
	entries, err := s.ledger.History(r.Context(), playerID, 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"playerId": playerID, "journal": entries})
}

func (s *Server) tableAndBody(w http.ResponseWriter, r *http.Request) (*truco.Game, tableRequest, bool) {
	var req tableRequest
	g := s.lobby.GetTable(mux.Vars(r)["id"])
	if g == nil {
		writeError(w, http.StatusNotFound, "no such table")
		return nil, req, false
	}
	if !decodeBody(w, r, &req) {
		return nil, req, false
	}
	if strings.TrimSpace(req.PlayerID) == "" {
		writeError(w, http.StatusBadRequest, "playerId required")
		return nil, req, false
	}
	return g, req, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}

// writeGameError maps engine errors onto HTTP statuses.
func writeGameError(w http.ResponseWriter, err error) {
	var insufficient *truco.InsufficientFundsError
	switch {
	case errors.As(err, &insufficient):
		writeJSON(w, http.StatusPaymentRequired, map[string]string{
			"error":    insufficient.Error(),
			"playerId": insufficient.PlayerID,
		})
	case errors.Is(err, truco.ErrNotAuthorized):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, truco.ErrUnknownPlayer):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, truco.ErrIllegalIndex), errors.Is(err, truco.ErrUnknownAction):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, truco.ErrTableFull), errors.Is(err, truco.ErrAlreadyStarted),
		errors.Is(err, truco.ErrIllegalState):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[API] encode response failed: %v", err)
	}
}
