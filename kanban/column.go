package kanban

// Column is a named lane. Cards are displayed in slice order.
type Column struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Cards []*Card `json:"cards"`
}

// NewColumn returns a column owning a copy of the given card slice.
func NewColumn(id, name string, cards ...*Card) *Column {
	owned := make([]*Card, len(cards))
	copy(owned, cards)
	return &Column{ID: id, Name: name, Cards: owned}
}

func (c *Column) Len() int {
	return len(c.Cards)
}

// AddCard appends card to the end of the column. Ids are not checked.
func (c *Column) AddCard(card *Card) {
	c.Cards = append(c.Cards, card)
}

// Card returns the first card with the given id.
func (c *Column) Card(cardID string) (*Card, bool) {
	i := c.indexOf(cardID)
	if i == -1 {
		return nil, false
	}
	return c.Cards[i], true
}

// RemoveCard drops the first card with the given id. Unknown ids are ignored.
func (c *Column) RemoveCard(cardID string) {
	i := c.indexOf(cardID)
	if i == -1 {
		return
	}
	c.Cards = append(c.Cards[:i], c.Cards[i+1:]...)
}

// MoveCard reorders a card within the column. targetIndex is clamped to
// [0, len] where len is counted after the card has been taken out.
func (c *Column) MoveCard(cardID string, targetIndex int) {
	i := c.indexOf(cardID)
	if i == -1 {
		return
	}
	card := c.Cards[i]
	c.Cards = append(c.Cards[:i], c.Cards[i+1:]...)

	pos := targetIndex
	if pos < 0 {
		pos = 0
	}
	if pos > len(c.Cards) {
		pos = len(c.Cards)
	}
	c.Cards = append(c.Cards, nil)
	copy(c.Cards[pos+1:], c.Cards[pos:])
	c.Cards[pos] = card
}

func (c *Column) indexOf(cardID string) int {
	for i, card := range c.Cards {
		if card.ID == cardID {
			return i
		}
	}
	return -1
}
