package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gmllt/kboard/kanban"
)

// recordingStore serves the default board and remembers every save.
type recordingStore struct {
	saves   int
	saveErr error
	last    []*kanban.Board
}

func (s *recordingStore) LoadBoards(context.Context) ([]*kanban.Board, error) {
	return defaultBoards(), nil
}

func (s *recordingStore) SaveBoards(_ context.Context, boards []*kanban.Board) error {
	s.saves++
	s.last = boards
	return s.saveErr
}

func newTestServer(t *testing.T, store BoardStore) (*Server, http.Handler) {
	t.Helper()
	srv, err := NewServer(context.Background(), store)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv, srv.Router("")
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestListBoards(t *testing.T) {
	_, h := newTestServer(t, memoryStore{})
	rec := do(t, h, http.MethodGet, "/api/boards", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var boards []kanban.Board
	if err := json.NewDecoder(rec.Body).Decode(&boards); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(boards) != 1 || boards[0].ID != "board-1" || len(boards[0].Columns) != 3 {
		t.Fatalf("boards = %+v", boards)
	}
}

func TestGetBoardNotFound(t *testing.T) {
	_, h := newTestServer(t, memoryStore{})
	if rec := do(t, h, http.MethodGet, "/api/boards/board-9", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestCreateCard(t *testing.T) {
	store := &recordingStore{}
	srv, h := newTestServer(t, store)
	before := srv.boards[0]

	rec := do(t, h, http.MethodPost, "/api/boards/board-1/cards",
		newCardRequest{Title: "Buy milk", ColumnID: "column-todo"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var card kanban.Card
	if err := json.NewDecoder(rec.Body).Decode(&card); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if card.Title != "Buy milk" || card.Status != "To Do" || card.ID == "" {
		t.Fatalf("card = %+v", card)
	}

	after := srv.boards[0]
	if after == before {
		t.Fatal("board pointer not replaced")
	}
	for i := range before.Columns {
		if after.Columns[i] != before.Columns[i] {
			t.Fatalf("column %d replaced", i)
		}
	}
	if after.Columns[0].Len() != 1 {
		t.Fatalf("todo cards = %d", after.Columns[0].Len())
	}
	if store.saves != 1 || store.last[0] != after {
		t.Fatalf("saves = %d", store.saves)
	}
}

func TestCreateCardDefaultsToFirstColumn(t *testing.T) {
	srv, h := newTestServer(t, memoryStore{})
	rec := do(t, h, http.MethodPost, "/api/boards/board-1/cards", newCardRequest{Title: "x"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	if srv.boards[0].Columns[0].Len() != 1 {
		t.Fatal("card not added to first column")
	}
}

func TestCreateCardRejected(t *testing.T) {
	tests := []struct {
		name string
		req  newCardRequest
	}{
		{"blank title", newCardRequest{Title: "   ", ColumnID: "column-todo"}},
		{"unknown column", newCardRequest{Title: "x", ColumnID: "column-nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &recordingStore{}
			srv, h := newTestServer(t, store)
			before := srv.boards[0]
			rec := do(t, h, http.MethodPost, "/api/boards/board-1/cards", tt.req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d", rec.Code)
			}
			if srv.boards[0] != before || store.saves != 0 {
				t.Fatal("rejected card mutated state")
			}
			for _, col := range before.Columns {
				if col.Len() != 0 {
					t.Fatalf("column %s mutated", col.ID)
				}
			}
		})
	}
}

func TestCreateCardBadJSON(t *testing.T) {
	_, h := newTestServer(t, memoryStore{})
	req := httptest.NewRequest(http.MethodPost, "/api/boards/board-1/cards", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestCreateCardBodyTooLarge(t *testing.T) {
	store := &recordingStore{}
	srv, h := newTestServer(t, store)
	rec := do(t, h, http.MethodPost, "/api/boards/board-1/cards",
		newCardRequest{Title: strings.Repeat("x", maxBodyBytes+1), ColumnID: "column-todo"})
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d", rec.Code)
	}
	if srv.boards[0].Columns[0].Len() != 0 || store.saves != 0 {
		t.Fatal("oversized request mutated state")
	}
}

func seedCards(t *testing.T, h http.Handler, titles ...string) []string {
	t.Helper()
	ids := make([]string, 0, len(titles))
	for _, title := range titles {
		rec := do(t, h, http.MethodPost, "/api/boards/board-1/cards",
			newCardRequest{Title: title, ColumnID: "column-todo"})
		if rec.Code != http.StatusCreated {
			t.Fatalf("seed %s: status = %d", title, rec.Code)
		}
		var card kanban.Card
		if err := json.NewDecoder(rec.Body).Decode(&card); err != nil {
			t.Fatalf("decode: %v", err)
		}
		ids = append(ids, card.ID)
	}
	return ids
}

func newSequentialServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	srv, h := newTestServer(t, memoryStore{})
	n := 0
	srv.newForm = func() *kanban.CardForm {
		f := kanban.NewCardForm()
		n++
		id := []string{"", "c1", "c2", "c3", "c4"}[n]
		f.IDFunc = func(time.Time) string { return id }
		return f
	}
	return srv, h
}

func TestMoveCard(t *testing.T) {
	srv, h := newSequentialServer(t)
	seedCards(t, h, "a", "b", "c")

	rec := do(t, h, http.MethodPut, "/api/boards/board-1/columns/column-todo/cards/c3/position",
		moveCardRequest{Position: 0})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	var got []string
	for _, c := range srv.boards[0].Columns[0].Cards {
		got = append(got, c.ID)
	}
	if len(got) != 3 || got[0] != "c3" || got[1] != "c1" || got[2] != "c2" {
		t.Fatalf("order = %v", got)
	}

	rec = do(t, h, http.MethodPut, "/api/boards/board-1/columns/column-todo/cards/missing/position",
		moveCardRequest{Position: 0})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown card status = %d", rec.Code)
	}
}

func TestRemoveCard(t *testing.T) {
	srv, h := newSequentialServer(t)
	seedCards(t, h, "a", "b")

	rec := do(t, h, http.MethodDelete, "/api/boards/board-1/columns/column-todo/cards/c1", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	col := srv.boards[0].Columns[0]
	if col.Len() != 1 || col.Cards[0].ID != "c2" {
		t.Fatalf("cards = %+v", col.Cards)
	}

	rec = do(t, h, http.MethodDelete, "/api/boards/board-1/columns/column-done/cards/c2", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("wrong column status = %d", rec.Code)
	}
}

func TestColumns(t *testing.T) {
	srv, h := newTestServer(t, memoryStore{})

	rec := do(t, h, http.MethodPost, "/api/boards/board-1/columns", newColumnRequest{ID: "column-review", Name: "Review"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add status = %d", rec.Code)
	}
	if _, ok := srv.boards[0].Column("column-review"); !ok {
		t.Fatal("column not added")
	}

	rec = do(t, h, http.MethodPost, "/api/boards/board-1/columns", newColumnRequest{ID: "column-review", Name: "Again"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d", rec.Code)
	}
	rec = do(t, h, http.MethodPost, "/api/boards/board-1/columns", newColumnRequest{ID: "x"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing name status = %d", rec.Code)
	}

	rec = do(t, h, http.MethodDelete, "/api/boards/board-1/columns/column-review", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("remove status = %d", rec.Code)
	}
	if len(srv.boards[0].Columns) != 3 {
		t.Fatalf("columns = %d", len(srv.boards[0].Columns))
	}
	rec = do(t, h, http.MethodDelete, "/api/boards/board-1/columns/column-review", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("remove missing status = %d", rec.Code)
	}
}

func TestSaveFailure(t *testing.T) {
	store := &recordingStore{saveErr: errors.New("bucket gone")}
	_, h := newTestServer(t, store)
	rec := do(t, h, http.MethodPost, "/api/boards/board-1/cards", newCardRequest{Title: "x"})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
}

type failingLoadStore struct{ memoryStore }

func (failingLoadStore) LoadBoards(context.Context) ([]*kanban.Board, error) {
	return nil, errors.New("unreachable")
}

func TestNewServerLoadError(t *testing.T) {
	if _, err := NewServer(context.Background(), failingLoadStore{}); err == nil {
		t.Fatal("expected load error")
	}
}
