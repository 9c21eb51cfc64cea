// Package kanban holds the board model: a Board owns ordered Columns, a
// Column owns ordered Cards. There are no back references; every lookup
// scans the owning slice for a matching id.
//
// The model is not safe for concurrent use.
package kanban

const (
	DefaultBoardID   = "board-1"
	DefaultBoardName = "Board 1"
)

type Board struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Columns []*Column `json:"columns"`
}

func NewBoard(id, name string, columns ...*Column) *Board {
	owned := make([]*Column, len(columns))
	copy(owned, columns)
	return &Board{ID: id, Name: name, Columns: owned}
}

// DefaultBoard returns a fresh board with the three standard columns and no cards.
func DefaultBoard() *Board {
	return NewBoard(DefaultBoardID, DefaultBoardName,
		NewColumn("column-todo", "To Do"),
		NewColumn("column-in-progress", "In Progress"),
		NewColumn("column-done", "Done"),
	)
}

// AddColumn appends column. Ids are not checked.
func (b *Board) AddColumn(column *Column) {
	b.Columns = append(b.Columns, column)
}

// RemoveColumn drops the first column with the given id. Unknown ids are ignored.
func (b *Board) RemoveColumn(columnID string) {
	for i, col := range b.Columns {
		if col.ID == columnID {
			b.Columns = append(b.Columns[:i], b.Columns[i+1:]...)
			return
		}
	}
}

// Column returns the first column with the given id.
func (b *Board) Column(columnID string) (*Column, bool) {
	for _, col := range b.Columns {
		if col.ID == columnID {
			return col, true
		}
	}
	return nil, false
}

// Clone returns a new Board sharing the same Column pointers. Callers
// holding the old pointer can compare identities to detect a change.
func (b *Board) Clone() *Board {
	return NewBoard(b.ID, b.Name, b.Columns...)
}
