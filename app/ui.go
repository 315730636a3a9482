// Package app is the per-chat ordering client: session state, the event
// loop that mutates it and the renderer that turns it into cards.
package app

import "context"

type Level int

const (
	LevelInfo Level = iota
	LevelError
)

// Notice is a one-off message to the user.
type Notice struct {
	Level Level
	Text  string
}

// Confirmation asks a yes/no question. The answer arrives later as a
// Decision event carrying the same ID.
type Confirmation struct {
	ID     string
	Prompt string
}

type CardButton struct {
	Text   string
	Action string
}

// Card is one independently updated block of the screen.
type Card struct {
	Key     string
	Text    string
	Buttons [][]CardButton
	Hidden  bool
}

// Screen is the full rendered view, cards in display order.
type Screen struct {
	Cards []Card
}

// Card returns the card with the given key.
func (s Screen) Card(key string) (Card, bool) {
	for _, c := range s.Cards {
		if c.Key == key {
			return c, true
		}
	}
	return Card{}, false
}

// UI is what a Session needs from its transport.
type UI interface {
	Render(ctx context.Context, screen Screen) error
	Notify(ctx context.Context, notice Notice) error
	Confirm(ctx context.Context, c Confirmation) error
}
