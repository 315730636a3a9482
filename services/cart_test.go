package services

import (
	"errors"
	"testing"

	"menu-telegram/models"
)

func TestCart_AddRemove(t *testing.T) {
	c := NewCart()
	item := models.MenuItem{ID: 1, Name: "Coffee", PriceCents: 800, Options: []models.OptionGroup{sizeGroup}}

	c.Add(item, 2, map[string]string{"Size": "Large"})
	if c.Len() != 1 || c.Total() != 2000 {
		t.Fatalf("after add: len=%d total=%d", c.Len(), c.Total())
	}
	if err := c.Remove(0); err != nil {
		t.Fatalf("Remove(0): %v", err)
	}
	if c.Len() != 0 || c.Total() != 0 {
		t.Errorf("after remove: len=%d total=%d, want empty", c.Len(), c.Total())
	}
}

func TestCart_RemoveShiftsIndexes(t *testing.T) {
	c := NewCart()
	for i, name := range []string{"A", "B", "C"} {
		c.Add(models.MenuItem{ID: int64(i + 1), Name: name, PriceCents: 100}, 1, nil)
	}
	if err := c.Remove(1); err != nil {
		t.Fatalf("Remove(1): %v", err)
	}
	entries := c.Entries()
	if len(entries) != 2 || entries[0].Name != "A" || entries[1].Name != "C" {
		t.Errorf("entries after Remove(1) = %+v", entries)
	}
	for _, i := range []int{-1, 2, 10} {
		if err := c.Remove(i); !errors.Is(err, ErrCartIndex) {
			t.Errorf("Remove(%d) = %v, want ErrCartIndex", i, err)
		}
	}
}

func TestCart_AddSnapshotsItem(t *testing.T) {
	c := NewCart()
	item := models.MenuItem{ID: 1, Name: "Coffee", PriceCents: 800, Options: []models.OptionGroup{
		{Name: "Size", Choices: []models.Choice{{Label: "Large", PriceCents: 200}}},
	}}
	selected := map[string]string{"Size": "Large", "Milk": ""}

	c.Add(item, 0, selected)

	item.PriceCents = 1
	item.Options[0].Choices[0].PriceCents = 9999
	selected["Size"] = "Small"

	e := c.Entries()[0]
	if e.Quantity != 1 {
		t.Errorf("Quantity = %d, want 1", e.Quantity)
	}
	if _, ok := e.SelectedOptions["Milk"]; ok {
		t.Error("empty selection kept")
	}
	if got := LineTotal(e); got != 1000 {
		t.Errorf("LineTotal = %d, want 1000 (snapshot)", got)
	}
}

func TestCart_OrderItems(t *testing.T) {
	c := NewCart()
	c.Add(models.MenuItem{ID: 4, Name: "Coffee", PriceCents: 800, Options: []models.OptionGroup{sizeGroup}}, 2, map[string]string{"Size": "Large"})
	c.Add(models.MenuItem{ID: 5, Name: "Soup", PriceCents: 500}, 1, nil)

	items := c.OrderItems()
	if len(items) != 2 {
		t.Fatalf("OrderItems len = %d", len(items))
	}
	if items[0].MenuItemID != 4 || items[0].Quantity != 2 || items[0].SelectedOptions["Size"] != "Large" {
		t.Errorf("items[0] = %+v", items[0])
	}
	if items[1].SelectedOptions == nil {
		t.Error("items[1].SelectedOptions is nil; want empty object")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d", c.Len())
	}
}

func TestCart_AddCapsQuantity(t *testing.T) {
	c := NewCart()
	e := c.Add(models.MenuItem{ID: 1, Name: "Soup", PriceCents: 500}, 99999999999999999, nil)

	if e.Quantity != MaxQuantity {
		t.Errorf("Quantity = %d, want %d", e.Quantity, MaxQuantity)
	}
	if got, want := c.Total(), int64(500*MaxQuantity); got != want {
		t.Errorf("Total = %d, want %d", got, want)
	}
	if got := FormatPrice(c.Total()); got != "$4995.00" {
		t.Errorf("FormatPrice = %q", got)
	}
}

func TestClampQuantity(t *testing.T) {
	tests := []struct{ in, want int }{
		{-5, 1}, {0, 1}, {1, 1}, {42, 42}, {MaxQuantity, MaxQuantity}, {MaxQuantity + 1, MaxQuantity},
	}
	for _, tt := range tests {
		if got := ClampQuantity(tt.in); got != tt.want {
			t.Errorf("ClampQuantity(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
