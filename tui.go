package main

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gmllt/kboard/kanban"
)

type formField int

const (
	fieldTitle formField = iota
	fieldDescription
)

type savedMsg struct {
	err error
}

// boardModel is the terminal client: a column list plus the card form.
type boardModel struct {
	ctx      context.Context
	store    BoardStore
	boards   []*kanban.Board
	index    int // board shown
	form     *kanban.CardForm
	selected int // column under the cursor
	focus    formField
	err      error // last rejected submit
	saveErr  error
}

func newBoardModel(ctx context.Context, store BoardStore, boards []*kanban.Board) *boardModel {
	return &boardModel{
		ctx:    ctx,
		store:  store,
		boards: boards,
		form:   kanban.NewCardForm(),
	}
}

func runTUI(ctx context.Context, store BoardStore) error {
	boards, err := store.LoadBoards(ctx)
	if err != nil {
		return err
	}
	program := tea.NewProgram(newBoardModel(ctx, store, boards), tea.WithAltScreen(), tea.WithContext(ctx))
	finalModel, err := program.Run()
	if err != nil {
		return err
	}
	if m, ok := finalModel.(*boardModel); ok && m.saveErr != nil {
		return fmt.Errorf("save boards: %w", m.saveErr)
	}
	return nil
}

func (m *boardModel) board() *kanban.Board {
	return m.boards[m.index]
}

func (m *boardModel) Init() tea.Cmd {
	return nil
}

func (m *boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.form.State() == kanban.FormOpen {
			return m.updateForm(msg)
		}
		return m.updateBoard(msg)
	case savedMsg:
		m.saveErr = msg.err
	}
	return m, nil
}

func (m *boardModel) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cols := len(m.board().Columns)
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "left", "h":
		if m.selected > 0 {
			m.selected--
		}
	case "right", "l":
		if m.selected < cols-1 {
			m.selected++
		}
	case "a", "n":
		columnID := ""
		if m.selected < cols {
			columnID = m.board().Columns[m.selected].ID
		}
		m.form.Open(m.board(), columnID)
		m.focus = fieldTitle
		m.err = nil
	}
	return m, nil
}

func (m *boardModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.form.Cancel()
		m.err = nil
	case tea.KeyEnter:
		next, _, err := m.form.Submit(m.board())
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.boards[m.index] = next
		return m, m.saveCmd()
	case tea.KeyTab:
		if m.focus == fieldTitle {
			m.focus = fieldDescription
		} else {
			m.focus = fieldTitle
		}
	case tea.KeyUp, tea.KeyDown:
		m.cycleDraftColumn(msg.Type == tea.KeyDown)
	case tea.KeyBackspace:
		m.editField(func(s string) string {
			r := []rune(s)
			if len(r) == 0 {
				return s
			}
			return string(r[:len(r)-1])
		})
	case tea.KeySpace:
		m.editField(func(s string) string { return s + " " })
	case tea.KeyRunes:
		text := string(msg.Runes)
		m.editField(func(s string) string { return s + text })
	}
	return m, nil
}

func (m *boardModel) editField(edit func(string) string) {
	draft := m.form.Draft()
	if m.focus == fieldTitle {
		m.form.SetTitle(edit(draft.Title))
		return
	}
	m.form.SetDescription(edit(draft.Description))
}

func (m *boardModel) cycleDraftColumn(forward bool) {
	cols := m.board().Columns
	if len(cols) == 0 {
		return
	}
	current := 0
	for i, col := range cols {
		if col.ID == m.form.Draft().ColumnID {
			current = i
			break
		}
	}
	if forward {
		current = (current + 1) % len(cols)
	} else {
		current = (current - 1 + len(cols)) % len(cols)
	}
	m.form.SelectColumn(cols[current].ID)
}

// saveCmd copies the boards on the update loop; bubbletea runs the
// returned command on its own goroutine while Update keeps mutating.
func (m *boardModel) saveCmd() tea.Cmd {
	snapshot, err := snapshotBoards(m.boards)
	if err != nil {
		return func() tea.Msg { return savedMsg{err: err} }
	}
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		return savedMsg{err: store.SaveBoards(ctx, snapshot)}
	}
}

func (m *boardModel) View() string {
	var b strings.Builder
	board := m.board()
	b.WriteString(board.Name + "\n\n")

	for i, col := range board.Columns {
		cursor := "  "
		if i == m.selected {
			cursor = "> "
		}
		b.WriteString(fmt.Sprintf("%s%s (%d)\n", cursor, col.Name, col.Len()))
		for _, card := range col.Cards {
			b.WriteString("    - " + card.Title)
			if card.Description != "" {
				b.WriteString(": " + card.Description)
			}
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	if m.form.State() == kanban.FormOpen {
		writeForm(&b, m.form.Draft(), board, m.focus)
	} else {
		b.WriteString("←/→ column  a add card  q quit\n")
	}
	if m.err != nil {
		b.WriteString("\n" + m.err.Error() + "\n")
	}
	if m.saveErr != nil {
		b.WriteString("\nsave failed: " + m.saveErr.Error() + "\n")
	}
	return b.String()
}

func writeForm(b *strings.Builder, draft kanban.Draft, board *kanban.Board, focus formField) {
	columnName := ""
	if col, ok := board.Column(draft.ColumnID); ok {
		columnName = col.Name
	}
	titleMark, descMark := "  ", "  "
	if focus == fieldTitle {
		titleMark = "> "
	} else {
		descMark = "> "
	}
	b.WriteString("New card\n")
	b.WriteString(fmt.Sprintf("%sTitle *: %s\n", titleMark, draft.Title))
	b.WriteString(fmt.Sprintf("%sDescription: %s\n", descMark, draft.Description))
	b.WriteString(fmt.Sprintf("  Status *: %s\n", columnName))
	b.WriteString("tab field  ↑/↓ status  enter create  esc cancel\n")
}
