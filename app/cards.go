package app

import (
	"fmt"
	"strings"
	"time"

	"menu-telegram/lang"
	"menu-telegram/models"
	"menu-telegram/services"
)

// Card keys, in display order.
const (
	CardIdentity = "identity"
	CardAuth     = "auth"
	CardMenu     = "menu"
	CardModal    = "modal"
	CardCart     = "cart"
	CardMenuForm = "menu_form"
	CardOrders   = "orders"
	CardUsers    = "users"
)

func msg(key string, args ...interface{}) string {
	return lang.T(lang.En, key, args...)
}

// Render builds the whole screen from state. Cards that do not apply are
// returned Hidden so the transport can remove them.
func Render(s *State) Screen {
	master := s.Gate.IsMaster()
	return Screen{Cards: []Card{
		identityCard(s),
		authCard(s),
		menuCard(s.Menu, master),
		modalCard(s.Modal),
		cartCard(s.Cart),
		menuFormCard(s.Form, master),
		ordersCard(s, master),
		usersCard(s.Users, master),
	}}
}

func identityCard(s *State) Card {
	u := s.User()
	if u == nil {
		return Card{
			Key:     CardIdentity,
			Text:    msg("guest"),
			Buttons: [][]CardButton{{{Text: msg("become_master"), Action: Action(BecomeMaster{})}}},
		}
	}
	role := msg("role_user")
	if s.Gate.IsMaster() {
		role = msg("role_master")
	}
	row := []CardButton{{Text: msg("logout"), Action: Action(Logout{})}}
	if !s.Gate.IsMaster() {
		row = append(row, CardButton{Text: msg("become_master"), Action: Action(BecomeMaster{})})
	}
	return Card{
		Key:     CardIdentity,
		Text:    fmt.Sprintf("%s (%s)", msg("signed_in_as", u.Email), role),
		Buttons: [][]CardButton{row},
	}
}

func authCard(s *State) Card {
	return Card{Key: CardAuth, Text: msg("auth_help"), Hidden: s.User() != nil}
}

func menuCard(items []models.MenuItem, master bool) Card {
	c := Card{Key: CardMenu}
	if len(items) == 0 {
		c.Text = msg("menu_header") + "\n\n" + msg("menu_empty")
		return c
	}
	var b strings.Builder
	b.WriteString(msg("menu_header"))
	for _, it := range items {
		fmt.Fprintf(&b, "\n\n%s · %s\n[%s]", it.Name, services.FormatPrice(it.PriceCents), it.Category)
		if d := it.DescriptionText(); d != "" {
			b.WriteString("\n" + d)
		}
		row := []CardButton{{Text: msg("customize", it.Name), Action: Action(OpenItem{ItemID: it.ID})}}
		if master {
			row = append(row,
				CardButton{Text: msg("edit", it.Name), Action: Action(StartEdit{ItemID: it.ID})},
				CardButton{Text: msg("delete", it.Name), Action: Action(DeleteItem{ItemID: it.ID})},
			)
		}
		c.Buttons = append(c.Buttons, row)
	}
	c.Text = b.String()
	return c
}

func modalCard(m *Modal) Card {
	if m == nil {
		return Card{Key: CardModal, Hidden: true}
	}
	var b strings.Builder
	b.WriteString(m.Item.Name)
	if d := m.Item.DescriptionText(); d != "" {
		b.WriteString("\n" + d)
	}
	var rows [][]CardButton
	for gi, g := range m.Item.Options {
		selected := m.Selected[g.Name]
		shown := selected
		if shown == "" {
			shown = msg("no_preference")
		}
		fmt.Fprintf(&b, "\n%s: %s", g.Name, shown)

		var row []CardButton
		if !g.Required {
			row = append(row, CardButton{Text: mark(msg("no_preference"), selected == ""), Action: Action(ClearChoice{Group: gi})})
		}
		for ci, ch := range g.Choices {
			row = append(row, CardButton{Text: mark(choiceLabel(ch), ch.Label == selected), Action: Action(SelectChoice{Group: gi, Choice: ci})})
		}
		rows = append(rows, row)
	}
	fmt.Fprintf(&b, "\n%s\n%s", msg("modal_quantity", m.Quantity), msg("modal_price", services.FormatPrice(services.LineTotal(m.Entry()))))
	rows = append(rows,
		[]CardButton{
			{Text: "−", Action: Action(AdjustQuantity{Delta: -1})},
			{Text: "+", Action: Action(AdjustQuantity{Delta: 1})},
		},
		[]CardButton{
			{Text: msg("add_to_order"), Action: Action(AddToCart{})},
			{Text: msg("close"), Action: Action(CloseModal{})},
		},
	)
	return Card{Key: CardModal, Text: b.String(), Buttons: rows}
}

func choiceLabel(ch models.Choice) string {
	if ch.PriceCents > 0 {
		return fmt.Sprintf("%s (+%s)", ch.Label, services.FormatPrice(ch.PriceCents))
	}
	return ch.Label
}

func mark(text string, selected bool) string {
	if selected {
		return "✓ " + text
	}
	return text
}

func cartCard(cart *services.Cart) Card {
	c := Card{Key: CardCart}
	var b strings.Builder
	b.WriteString(msg("cart_header"))
	entries := cart.Entries()
	if len(entries) == 0 {
		b.WriteString("\n\n" + msg("cart_empty_hint"))
	}
	for i, e := range entries {
		fmt.Fprintf(&b, "\n\n%d. %s", i+1, e.Name)
		if opts := services.OptionSummary(e); len(opts) > 0 {
			b.WriteString("\n" + strings.Join(opts, " | "))
		}
		fmt.Fprintf(&b, "\n%s · %s", msg("cart_qty", e.Quantity), services.FormatPrice(services.LineTotal(e)))
		c.Buttons = append(c.Buttons, []CardButton{{Text: msg("cart_remove", e.Name), Action: Action(RemoveFromCart{Index: i})}})
	}
	fmt.Fprintf(&b, "\n\n%s", msg("cart_total", services.FormatPrice(services.CartTotal(entries))))
	if len(entries) > 0 {
		b.WriteString("\n" + msg("cart_order_hint"))
	}
	c.Text = b.String()
	return c
}

func menuFormCard(f MenuForm, master bool) Card {
	if !master {
		return Card{Key: CardMenuForm, Hidden: true}
	}
	clearBtn := CardButton{Text: msg("clear_menu"), Action: Action(ClearMenu{})}
	if f.Editing == nil {
		return Card{
			Key:     CardMenuForm,
			Text:    msg("form_create_header") + "\n\n" + msg("form_help") + "\n\n" + msg("form_submit_create"),
			Buttons: [][]CardButton{{clearBtn}},
		}
	}
	return Card{
		Key: CardMenuForm,
		Text: msg("form_update_header", f.Editing.ID) + "\n\n" + FormatMenuForm(*f.Editing) +
			"\n\n" + msg("form_help") + "\n\n" + msg("form_submit_update"),
		Buttons: [][]CardButton{{{Text: msg("cancel_edit"), Action: Action(CancelEdit{})}, clearBtn}},
	}
}

func ordersCard(s *State, master bool) Card {
	if !master {
		return Card{Key: CardOrders, Hidden: true}
	}
	c := Card{Key: CardOrders}
	var b strings.Builder
	b.WriteString(msg("orders_header"))
	if len(s.Orders) == 0 {
		b.WriteString("\n\n" + msg("orders_empty"))
	}
	for _, o := range s.Orders {
		b.WriteString("\n\n" + orderText(o, s))
		if !o.Served {
			c.Buttons = append(c.Buttons, []CardButton{{Text: msg("order_served_button", o.DisplayName()), Action: Action(MarkServed{OrderID: o.ID})}})
		}
	}
	c.Buttons = append(c.Buttons, []CardButton{{Text: msg("clear_orders"), Action: Action(ClearOrders{})}})
	c.Text = b.String()
	return c
}

func orderText(o models.Order, s *State) string {
	var b strings.Builder
	b.WriteString(o.DisplayName())
	if !o.CreatedAt.IsZero() {
		loc := s.Location
		if loc == nil {
			loc = time.Local
		}
		b.WriteString(" · " + o.CreatedAt.In(loc).Format("2006-01-02 15:04"))
	}
	for _, it := range o.Items {
		fmt.Fprintf(&b, "\n• %dx %s", it.Quantity, it.Name)
	}
	fmt.Fprintf(&b, "\n%s", msg("order_items_total", services.FormatPrice(o.TotalCents)))
	if o.Served {
		b.WriteString(" · " + msg("served_badge"))
	}
	return b.String()
}

func usersCard(users []models.User, master bool) Card {
	if !master {
		return Card{Key: CardUsers, Hidden: true}
	}
	c := Card{Key: CardUsers}
	var b strings.Builder
	b.WriteString(msg("users_header"))
	if len(users) == 0 {
		b.WriteString("\n\n" + msg("users_empty"))
	}
	for _, u := range users {
		role := msg("role_user")
		if u.IsMaster {
			role = msg("role_master")
		}
		fmt.Fprintf(&b, "\n%s · %s", u.Email, role)
		c.Buttons = append(c.Buttons, []CardButton{{Text: msg("delete", u.Email), Action: Action(DeleteUser{UserID: u.ID})}})
	}
	c.Text = b.String()
	return c
}
