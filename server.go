package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/gmllt/kboard/kanban"
)

const maxBodyBytes = 1 << 20

// Server exposes the boards over HTTP. The kanban model is not safe for
// concurrent use, so every handler holds mu while touching it.
type Server struct {
	mu      sync.Mutex
	boards  []*kanban.Board
	store   BoardStore
	newForm func() *kanban.CardForm
}

func NewServer(ctx context.Context, store BoardStore) (*Server, error) {
	boards, err := store.LoadBoards(ctx)
	if err != nil {
		return nil, err
	}
	return &Server{
		boards:  boards,
		store:   store,
		newForm: kanban.NewCardForm,
	}, nil
}

type newColumnRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type newCardRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ColumnID    string `json:"columnId"`
}

type moveCardRequest struct {
	Position int `json:"position"`
}

// Router wires the API routes, falling back to static files under staticDir.
func (s *Server) Router(staticDir string) *mux.Router {
	r := mux.NewRouter()
	r.Use(requestLogger)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/boards", s.listBoards).Methods(http.MethodGet)
	api.HandleFunc("/boards/{boardID}", s.getBoard).Methods(http.MethodGet)
	api.HandleFunc("/boards/{boardID}/columns", s.addColumn).Methods(http.MethodPost)
	api.HandleFunc("/boards/{boardID}/columns/{columnID}", s.removeColumn).Methods(http.MethodDelete)
	api.HandleFunc("/boards/{boardID}/cards", s.createCard).Methods(http.MethodPost)
	api.HandleFunc("/boards/{boardID}/columns/{columnID}/cards/{cardID}/position", s.moveCard).Methods(http.MethodPut)
	api.HandleFunc("/boards/{boardID}/columns/{columnID}/cards/{cardID}", s.removeCard).Methods(http.MethodDelete)

	if staticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(staticDir)))
	}
	return r
}

func (s *Server) listBoards(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.boards)
}

func (s *Server) getBoard(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	board, _, ok := s.board(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (s *Server) addColumn(w http.ResponseWriter, r *http.Request) {
	var req newColumnRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ID == "" || req.Name == "" {
		http.Error(w, "column id and name are required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	board, _, ok := s.board(w, r)
	if !ok {
		return
	}
	if _, exists := board.Column(req.ID); exists {
		http.Error(w, "column already exists", http.StatusConflict)
		return
	}
	col := kanban.NewColumn(req.ID, req.Name)
	board.AddColumn(col)
	if !s.save(w, r) {
		return
	}
	log.WithFields(log.Fields{"board": board.ID, "column": col.ID}).Info("Column added")
	writeJSON(w, http.StatusCreated, col)
}

func (s *Server) removeColumn(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	board, _, ok := s.board(w, r)
	if !ok {
		return
	}
	columnID := mux.Vars(r)["columnID"]
	if _, exists := board.Column(columnID); !exists {
		http.Error(w, "column not found", http.StatusNotFound)
		return
	}
	board.RemoveColumn(columnID)
	if !s.save(w, r) {
		return
	}
	log.WithFields(log.Fields{"board": board.ID, "column": columnID}).Info("Column removed")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) createCard(w http.ResponseWriter, r *http.Request) {
	var req newCardRequest
	if !decodeBody(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	board, idx, ok := s.board(w, r)
	if !ok {
		return
	}

	form := s.newForm()
	form.Open(board, req.ColumnID)
	if req.ColumnID != "" {
		form.SelectColumn(req.ColumnID)
	}
	form.SetTitle(req.Title)
	form.SetDescription(req.Description)
	next, card, err := form.Submit(board)
	if err != nil {
		log.WithError(err).WithField("board", board.ID).Info("Card rejected")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.boards[idx] = next
	if !s.save(w, r) {
		return
	}
	log.WithFields(log.Fields{"board": board.ID, "card": card.ID, "status": card.Status}).Info("Card created")
	writeJSON(w, http.StatusCreated, card)
}

func (s *Server) moveCard(w http.ResponseWriter, r *http.Request) {
	var req moveCardRequest
	if !decodeBody(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	col, cardID, ok := s.card(w, r)
	if !ok {
		return
	}
	col.MoveCard(cardID, req.Position)
	if !s.save(w, r) {
		return
	}
	log.WithFields(log.Fields{"column": col.ID, "card": cardID, "position": req.Position}).Info("Card moved")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) removeCard(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	col, cardID, ok := s.card(w, r)
	if !ok {
		return
	}
	col.RemoveCard(cardID)
	if !s.save(w, r) {
		return
	}
	log.WithFields(log.Fields{"column": col.ID, "card": cardID}).Info("Card deleted")
	w.WriteHeader(http.StatusNoContent)
}

// board resolves the {boardID} route variable, writing a 404 when it is unknown.
func (s *Server) board(w http.ResponseWriter, r *http.Request) (*kanban.Board, int, bool) {
	id := mux.Vars(r)["boardID"]
	for i, b := range s.boards {
		if b.ID == id {
			return b, i, true
		}
	}
	http.Error(w, "board not found", http.StatusNotFound)
	return nil, -1, false
}

func (s *Server) card(w http.ResponseWriter, r *http.Request) (*kanban.Column, string, bool) {
	board, _, ok := s.board(w, r)
	if !ok {
		return nil, "", false
	}
	vars := mux.Vars(r)
	col, ok := board.Column(vars["columnID"])
	if !ok {
		http.Error(w, "column not found", http.StatusNotFound)
		return nil, "", false
	}
	cardID := vars["cardID"]
	if _, ok := col.Card(cardID); !ok {
		http.Error(w, "card not found", http.StatusNotFound)
		return nil, "", false
	}
	return col, cardID, true
}

func (s *Server) save(w http.ResponseWriter, r *http.Request) bool {
	if err := s.store.SaveBoards(r.Context(), s.boards); err != nil {
		log.WithError(err).Error("Error saving boards")
		http.Error(w, "failed to save boards", http.StatusInternalServerError)
		return false
	}
	return true
}

// decodeBody reads a JSON request body of at most maxBodyBytes into v,
// writing a 400 or 413 response when it cannot.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}
	log.WithError(err).WithField("path", r.URL.Path).Warn("Error decoding request body")
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
		return false
	}
	http.Error(w, "invalid payload", http.StatusBadRequest)
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("Error encoding response")
	}
}
