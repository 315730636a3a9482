package services

import (
	"errors"

	"menu-telegram/models"
)

var ErrCartIndex = errors.New("cart index out of range")

// MaxQuantity caps a single line so totals stay well inside int64.
const MaxQuantity = 999

// ClampQuantity bounds q to 1..MaxQuantity.
func ClampQuantity(q int) int {
	switch {
	case q < 1:
		return 1
	case q > MaxQuantity:
		return MaxQuantity
	}
	return q
}

// CartEntry snapshots a menu item at add time. MenuItemID is a reference only:
// the item may change or disappear server-side before checkout.
type CartEntry struct {
	MenuItemID      int64
	Name            string
	Quantity        int
	SelectedOptions map[string]string
	BasePriceCents  int64
	Options         []models.OptionGroup
}

// Cart is the in-memory, per-session list of entries in insertion order.
// It is never persisted.
type Cart struct {
	entries []CartEntry
}

func NewCart() *Cart {
	return &Cart{}
}

// Add appends a snapshot of item with quantity clamped to 1..MaxQuantity.
func (c *Cart) Add(item models.MenuItem, quantity int, selected map[string]string) CartEntry {
	quantity = ClampQuantity(quantity)
	sel := make(map[string]string, len(selected))
	for k, v := range selected {
		if v != "" {
			sel[k] = v
		}
	}
	opts := make([]models.OptionGroup, len(item.Options))
	for i, g := range item.Options {
		opts[i] = models.OptionGroup{
			Name:     g.Name,
			Required: g.Required,
			Choices:  append([]models.Choice(nil), g.Choices...),
		}
	}
	entry := CartEntry{
		MenuItemID:      item.ID,
		Name:            item.Name,
		Quantity:        quantity,
		SelectedOptions: sel,
		BasePriceCents:  item.PriceCents,
		Options:         opts,
	}
	c.entries = append(c.entries, entry)
	return entry
}

// Remove deletes the entry at index; later entries shift down by one.
func (c *Cart) Remove(index int) error {
	if index < 0 || index >= len(c.entries) {
		return ErrCartIndex
	}
	c.entries = append(c.entries[:index], c.entries[index+1:]...)
	return nil
}

func (c *Cart) Clear() {
	c.entries = nil
}

func (c *Cart) Len() int {
	return len(c.entries)
}

// Entries returns a copy of the entries.
func (c *Cart) Entries() []CartEntry {
	return append([]CartEntry(nil), c.entries...)
}

func (c *Cart) Total() int64 {
	return CartTotal(c.entries)
}

// OrderItems builds the POST /orders item list.
func (c *Cart) OrderItems() []models.OrderItemInput {
	items := make([]models.OrderItemInput, len(c.entries))
	for i, e := range c.entries {
		sel := make(map[string]string, len(e.SelectedOptions))
		for k, v := range e.SelectedOptions {
			sel[k] = v
		}
		items[i] = models.OrderItemInput{
			MenuItemID:      e.MenuItemID,
			Quantity:        e.Quantity,
			SelectedOptions: sel,
		}
	}
	return items
}
