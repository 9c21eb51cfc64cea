package kanban

import "time"

// DefaultStatus is the status given to cards created without one.
const DefaultStatus = "To Do"

type Card struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"` // column name when the card was created
	CreatedAt   time.Time `json:"createdAt"`
}

// CardOption sets an optional Card field at construction.
type CardOption func(*Card)

func WithDescription(description string) CardOption {
	return func(c *Card) {
		c.Description = description
	}
}

func WithStatus(status string) CardOption {
	return func(c *Card) {
		c.Status = status
	}
}

func WithCreatedAt(t time.Time) CardOption {
	return func(c *Card) {
		c.CreatedAt = t
	}
}

// NewCard builds a card. Nothing is validated here, an empty title is allowed.
func NewCard(id, title string, opts ...CardOption) *Card {
	c := &Card{
		ID:        id,
		Title:     title,
		Status:    DefaultStatus,
		CreatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
