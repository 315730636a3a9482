package app

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menu-telegram/models"
)

func strPtr(s string) *string { return &s }

func hasAction(c Card, action string) bool {
	for _, row := range c.Buttons {
		for _, b := range row {
			if b.Action == action {
				return true
			}
		}
	}
	return false
}

func TestRender_CardOrder(t *testing.T) {
	screen := Render(NewState(1))
	var keys []string
	for _, c := range screen.Cards {
		keys = append(keys, c.Key)
	}
	assert.Equal(t, []string{CardIdentity, CardAuth, CardMenu, CardModal, CardCart, CardMenuForm, CardOrders, CardUsers}, keys)
}

func TestRender_GuestHidesMasterControls(t *testing.T) {
	st := NewState(1)
	st.Menu = []models.MenuItem{{ID: 7, Name: "Soup", Category: "Starters", PriceCents: 450}}

	screen := Render(st)

	id, _ := screen.Card(CardIdentity)
	assert.Equal(t, "Guest", id.Text)
	menu, _ := screen.Card(CardMenu)
	assert.Contains(t, menu.Text, "Soup · $4.50")
	assert.True(t, hasAction(menu, "open:7"))
	assert.False(t, hasAction(menu, "edit:7"))
	assert.False(t, hasAction(menu, "del:7"))
	for _, key := range []string{CardModal, CardMenuForm, CardOrders, CardUsers} {
		c, _ := screen.Card(key)
		assert.True(t, c.Hidden, key)
	}
}

func TestRender_MasterPanels(t *testing.T) {
	st := NewState(1)
	st.Location = time.UTC
	st.Gate.Enter(&models.User{ID: 1, Email: "boss@b.c", IsMaster: true})
	st.Menu = []models.MenuItem{{ID: 7, Name: "Soup", Category: "Starters", PriceCents: 450}}
	st.Orders = []models.Order{
		{
			ID:         3,
			Items:      []models.OrderLine{{Name: "Soup", Quantity: 2}},
			TotalCents: 900,
			CreatedAt:  models.Timestamp{Time: time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)},
		},
		{ID: 4, Name: strPtr("Table 2"), Served: true, TotalCents: 100},
	}
	st.Users = []models.User{{ID: 1, Email: "boss@b.c", IsMaster: true}, {ID: 2, Email: "u@b.c"}}

	screen := Render(st)

	menu, _ := screen.Card(CardMenu)
	assert.True(t, hasAction(menu, "edit:7"))
	assert.True(t, hasAction(menu, "del:7"))

	orders, _ := screen.Card(CardOrders)
	assert.False(t, orders.Hidden)
	assert.Contains(t, orders.Text, "Order · 2024-03-01 12:30")
	assert.Contains(t, orders.Text, "• 2x Soup")
	assert.Contains(t, orders.Text, "Total: $9.00")
	assert.Contains(t, orders.Text, "Table 2")
	assert.Contains(t, orders.Text, "Served")
	assert.True(t, hasAction(orders, "served:3"))
	assert.False(t, hasAction(orders, "served:4"))
	assert.True(t, hasAction(orders, "clearorders"))

	users, _ := screen.Card(CardUsers)
	assert.Contains(t, users.Text, "boss@b.c · Master")
	assert.Contains(t, users.Text, "u@b.c · User")
	assert.True(t, hasAction(users, "deluser:2"))

	id, _ := screen.Card(CardIdentity)
	assert.False(t, hasAction(id, "master"))
	assert.True(t, hasAction(id, "logout"))
}

func TestRender_EmptyLists(t *testing.T) {
	st := NewState(1)
	st.Gate.Enter(&models.User{ID: 1, Email: "boss@b.c", IsMaster: true})

	screen := Render(st)

	orders, _ := screen.Card(CardOrders)
	assert.Contains(t, orders.Text, "No orders yet.")
	users, _ := screen.Card(CardUsers)
	assert.Contains(t, users.Text, "No accounts yet.")
	cart, _ := screen.Card(CardCart)
	assert.Contains(t, cart.Text, "Total: $0.00")
}

func TestRender_Modal(t *testing.T) {
	st := NewState(1)
	item := models.MenuItem{
		ID:         1,
		Name:       "Coffee",
		PriceCents: 800,
		Options: []models.OptionGroup{
			{Name: "Size", Choices: []models.Choice{{Label: "Small"}, {Label: "Large", PriceCents: 200}}},
			{Name: "Milk", Required: true, Choices: []models.Choice{{Label: "Whole"}, {Label: "Oat", PriceCents: 50}}},
		},
	}
	st.Modal = newModal(item)
	st.Modal.Selected["Size"] = "Large"
	st.Modal.Quantity = 2

	modal, _ := Render(st).Card(CardModal)

	require.False(t, modal.Hidden)
	assert.Contains(t, modal.Text, "Size: Large")
	assert.Contains(t, modal.Text, "Milk: Whole")
	assert.Contains(t, modal.Text, "Quantity: 2")
	assert.Contains(t, modal.Text, "Price: $20.00")
	require.GreaterOrEqual(t, len(modal.Buttons), 2)
	assert.Equal(t, "No preference", modal.Buttons[0][0].Text)
	assert.Equal(t, "✓ Large (+$2.00)", modal.Buttons[0][2].Text)
	assert.Equal(t, "✓ Whole", modal.Buttons[1][0].Text)
	assert.False(t, hasAction(modal, "noopt:1"))
	assert.True(t, hasAction(modal, "add"))
}

func TestRender_CartLines(t *testing.T) {
	st := NewState(1)
	item := models.MenuItem{
		ID:         1,
		Name:       "Coffee",
		PriceCents: 800,
		Options:    []models.OptionGroup{{Name: "Size", Choices: []models.Choice{{Label: "Large", PriceCents: 200}}}},
	}
	st.Cart.Add(item, 2, map[string]string{"Size": "Large"})
	st.Cart.Add(models.MenuItem{ID: 2, Name: "Soup", PriceCents: 500}, 3, nil)

	cart, _ := Render(st).Card(CardCart)

	assert.Contains(t, cart.Text, "1. Coffee\nSize: Large\nQty 2 · $20.00")
	assert.Contains(t, cart.Text, "2. Soup\nQty 3 · $15.00")
	assert.Contains(t, cart.Text, "Total: $35.00")
	assert.True(t, hasAction(cart, "rm:0"))
	assert.True(t, hasAction(cart, "rm:1"))
}

func TestRender_MenuFormModes(t *testing.T) {
	st := NewState(1)
	st.Gate.Enter(&models.User{ID: 1, Email: "boss@b.c", IsMaster: true})

	form, _ := Render(st).Card(CardMenuForm)
	assert.True(t, strings.HasSuffix(form.Text, "Add to Menu"))
	assert.False(t, hasAction(form, "canceledit"))

	st.Form.Editing = &models.MenuItem{ID: 5, Name: "Soup", Category: "Starters", PriceCents: 450,
		Options: []models.OptionGroup{{Name: "Size", Choices: []models.Choice{{Label: "Bowl"}}}}}
	form, _ = Render(st).Card(CardMenuForm)
	assert.Contains(t, form.Text, "Update menu item #5")
	assert.Contains(t, form.Text, "name: Soup")
	assert.Contains(t, form.Text, "options: [\n  {")
	assert.True(t, strings.HasSuffix(form.Text, "Update Menu Item"))
	assert.True(t, hasAction(form, "canceledit"))
}
