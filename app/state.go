package app

import (
	"context"
	"time"

	"menu-telegram/models"
	"menu-telegram/services"
)

// Modal is the open customization dialog.
type Modal struct {
	Item     models.MenuItem
	Quantity int
	Selected map[string]string
}

func newModal(item models.MenuItem) *Modal {
	m := &Modal{Item: item, Quantity: 1, Selected: make(map[string]string)}
	for _, g := range item.Options {
		if g.Required && len(g.Choices) > 0 {
			m.Selected[g.Name] = g.Choices[0].Label
		}
	}
	return m
}

// Entry is the cart entry the modal would add right now.
func (m *Modal) Entry() services.CartEntry {
	return services.CartEntry{
		MenuItemID:      m.Item.ID,
		Name:            m.Item.Name,
		Quantity:        m.Quantity,
		SelectedOptions: m.Selected,
		BasePriceCents:  m.Item.PriceCents,
		Options:         m.Item.Options,
	}
}

// MenuForm is the master's create/update form. Editing nil means create mode.
type MenuForm struct {
	Editing *models.MenuItem
}

func (f *MenuForm) Reset() {
	f.Editing = nil
}

// State is everything one chat session knows. Only the session goroutine
// touches it.
type State struct {
	ChatID   int64
	Gate     services.Gate
	Menu     []models.MenuItem
	Cart     *services.Cart
	Orders   []models.Order
	Users    []models.User
	Modal    *Modal
	Form     MenuForm
	Location *time.Location

	pending map[string]func(context.Context) error
}

func NewState(chatID int64) *State {
	return &State{
		ChatID:   chatID,
		Cart:     services.NewCart(),
		Location: time.Local,
		pending:  make(map[string]func(context.Context) error),
	}
}

func (s *State) User() *models.User {
	return s.Gate.User()
}

func (s *State) menuItem(id int64) (models.MenuItem, bool) {
	for _, it := range s.Menu {
		if it.ID == id {
			return it, true
		}
	}
	return models.MenuItem{}, false
}

func (s *State) user(id int64) (models.User, bool) {
	for _, u := range s.Users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}
