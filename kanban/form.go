package kanban

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	ErrFormClosed = errors.New("card form is not open")
	ErrEmptyTitle = errors.New("card title is required")
	ErrNoColumn   = errors.New("no column selected")
)

type FormState int

const (
	FormClosed FormState = iota
	FormOpen
)

func (s FormState) String() string {
	if s == FormOpen {
		return "open"
	}
	return "closed"
}

// Draft is the uncommitted input of an open CardForm.
type Draft struct {
	Title       string
	Description string
	ColumnID    string
}

// CardForm drives card creation: Open, edit the draft, then Submit or Cancel.
type CardForm struct {
	// IDFunc derives a card id from its creation time.
	IDFunc func(time.Time) string
	// Now returns the creation time of submitted cards.
	Now func() time.Time
	// OnChange, if set, receives the new board after every successful Submit.
	OnChange func(*Board)

	state FormState
	draft Draft
}

func NewCardForm() *CardForm {
	return &CardForm{
		IDFunc: TimeID,
		Now:    time.Now,
	}
}

// TimeID formats t as a decimal nanosecond timestamp.
func TimeID(t time.Time) string {
	return strconv.FormatInt(t.UnixNano(), 10)
}

func (f *CardForm) State() FormState {
	return f.state
}

func (f *CardForm) Draft() Draft {
	return f.draft
}

// Open shows the form for board, preselecting columnID when the board has
// it and the first column otherwise.
func (f *CardForm) Open(board *Board, columnID string) {
	f.draft = Draft{ColumnID: defaultColumnID(board)}
	if _, ok := board.Column(columnID); ok {
		f.draft.ColumnID = columnID
	}
	f.state = FormOpen
}

func (f *CardForm) SetTitle(title string) {
	if f.state == FormOpen {
		f.draft.Title = title
	}
}

func (f *CardForm) SetDescription(description string) {
	if f.state == FormOpen {
		f.draft.Description = description
	}
}

func (f *CardForm) SelectColumn(columnID string) {
	if f.state == FormOpen {
		f.draft.ColumnID = columnID
	}
}

// Submit appends a card built from the draft to the selected column and
// returns a new Board value wrapping the same columns. When the draft is
// rejected nothing is mutated, the form stays open and board is returned
// unchanged along with the reason.
func (f *CardForm) Submit(board *Board) (*Board, *Card, error) {
	if f.state != FormOpen {
		return board, nil, ErrFormClosed
	}
	title := strings.TrimSpace(f.draft.Title)
	if title == "" {
		return board, nil, ErrEmptyTitle
	}
	if f.draft.ColumnID == "" {
		return board, nil, ErrNoColumn
	}
	col, ok := board.Column(f.draft.ColumnID)
	if !ok {
		return board, nil, ErrNoColumn
	}

	now := f.now()
	card := NewCard(f.newID(now), title,
		WithDescription(strings.TrimSpace(f.draft.Description)),
		WithStatus(col.Name),
		WithCreatedAt(now),
	)
	col.AddCard(card)
	next := board.Clone()

	f.reset()
	if f.OnChange != nil {
		f.OnChange(next)
	}
	return next, card, nil
}

// Cancel discards the draft and closes the form.
func (f *CardForm) Cancel() {
	f.reset()
}

func (f *CardForm) reset() {
	f.draft = Draft{}
	f.state = FormClosed
}

func (f *CardForm) now() time.Time {
	if f.Now == nil {
		return time.Now()
	}
	return f.Now()
}

func (f *CardForm) newID(t time.Time) string {
	if f.IDFunc == nil {
		return TimeID(t)
	}
	return f.IDFunc(t)
}

func defaultColumnID(board *Board) string {
	if len(board.Columns) == 0 {
		return ""
	}
	return board.Columns[0].ID
}
